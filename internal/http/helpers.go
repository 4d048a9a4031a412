package http

import (
	"strings"

	"financeiro/internal/analytics"
	"financeiro/internal/core"
)

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// barWidth scales v against max into a CSS percentage. Non-zero values keep
// a minimum width so they stay visible.
func barWidth(v, max int64) int {
	if v <= 0 || max <= 0 {
		return 0
	}
	w := int((v*100 + max/2) / max)
	if w < 2 {
		w = 2
	}
	if w > 100 {
		w = 100
	}
	return w
}

type categoryBar struct {
	Name   string
	Amount string
	Width  int
}

type monthRow struct {
	Key          string
	Income       string
	Expense      string
	Balance      string
	Negative     bool
	IncomeWidth  int
	ExpenseWidth int
}

type transactionRow struct {
	Date        string
	Description string
	Amount      string
	Category    string
	Kind        string
}

// dashboardView is the template model for the index page and the summary
// partial.
type dashboardView struct {
	Count           int
	TotalIncome     string
	TotalExpense    string
	Balance         string
	BalanceNegative bool
	Categories      []categoryBar
	Months          []monthRow
	Recommendation  string
	Transactions    []transactionRow

	Today           string
	CategoryOptions []core.Category
	KindOptions     []core.Kind
}

func buildDashboardView(sum analytics.Summary, records []core.Transaction) dashboardView {
	v := dashboardView{
		Count:           sum.Count,
		TotalIncome:     sum.TotalIncome.String(),
		TotalExpense:    sum.TotalExpense.String(),
		Balance:         sum.Balance.String(),
		BalanceNegative: sum.Balance.Cents < 0,
		Recommendation:  sum.Recommendation.String(),
		CategoryOptions: core.Categories(),
		KindOptions:     core.Kinds(),
	}

	var maxCat int64
	for _, c := range sum.ByCategory {
		if c.Amount.Cents > maxCat {
			maxCat = c.Amount.Cents
		}
	}
	for _, c := range sum.ByCategory {
		v.Categories = append(v.Categories, categoryBar{
			Name:   string(c.Category),
			Amount: c.Amount.String(),
			Width:  barWidth(c.Amount.Cents, maxCat),
		})
	}

	var maxMonth int64
	for _, m := range sum.Monthly {
		if m.Income.Cents > maxMonth {
			maxMonth = m.Income.Cents
		}
		if m.Expense.Cents > maxMonth {
			maxMonth = m.Expense.Cents
		}
	}
	for _, m := range sum.Monthly {
		v.Months = append(v.Months, monthRow{
			Key:          m.Key,
			Income:       m.Income.String(),
			Expense:      m.Expense.String(),
			Balance:      m.Balance.String(),
			Negative:     m.Balance.Cents < 0,
			IncomeWidth:  barWidth(m.Income.Cents, maxMonth),
			ExpenseWidth: barWidth(m.Expense.Cents, maxMonth),
		})
	}

	for _, t := range records {
		v.Transactions = append(v.Transactions, transactionRow{
			Date:        t.Date.String(),
			Description: t.Description,
			Amount:      t.Amount.String(),
			Category:    string(t.Category),
			Kind:        string(t.Kind),
		})
	}
	return v
}

type transactionJSON struct {
	Date        string `json:"date"`
	Description string `json:"description"`
	AmountCents int64  `json:"amount_cents"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Kind        string `json:"kind"`
}

type categoryJSON struct {
	Category    string `json:"category"`
	AmountCents int64  `json:"amount_cents"`
}

type monthJSON struct {
	Month        string `json:"month"`
	IncomeCents  int64  `json:"income_cents"`
	ExpenseCents int64  `json:"expense_cents"`
	BalanceCents int64  `json:"balance_cents"`
}

type summaryJSON struct {
	Count             int            `json:"count"`
	TotalIncomeCents  int64          `json:"total_income_cents"`
	TotalExpenseCents int64          `json:"total_expense_cents"`
	BalanceCents      int64          `json:"balance_cents"`
	ByCategory        []categoryJSON `json:"by_category"`
	Monthly           []monthJSON    `json:"monthly"`
	Recommendation    string         `json:"recommendation"`
}

func toTransactionJSON(t core.Transaction) transactionJSON {
	return transactionJSON{
		Date:        t.Date.String(),
		Description: t.Description,
		AmountCents: t.Amount.Cents,
		Amount:      t.Amount.Decimal().StringFixed(2),
		Category:    string(t.Category),
		Kind:        string(t.Kind),
	}
}

func toSummaryJSON(sum analytics.Summary) summaryJSON {
	out := summaryJSON{
		Count:             sum.Count,
		TotalIncomeCents:  sum.TotalIncome.Cents,
		TotalExpenseCents: sum.TotalExpense.Cents,
		BalanceCents:      sum.Balance.Cents,
		ByCategory:        make([]categoryJSON, 0, len(sum.ByCategory)),
		Monthly:           make([]monthJSON, 0, len(sum.Monthly)),
		Recommendation:    sum.Recommendation.String(),
	}
	for _, c := range sum.ByCategory {
		out.ByCategory = append(out.ByCategory, categoryJSON{Category: string(c.Category), AmountCents: c.Amount.Cents})
	}
	for _, m := range sum.Monthly {
		out.Monthly = append(out.Monthly, monthJSON{
			Month:        m.Key,
			IncomeCents:  m.Income.Cents,
			ExpenseCents: m.Expense.Cents,
			BalanceCents: m.Balance.Cents,
		})
	}
	return out
}
