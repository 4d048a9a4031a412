// Package analytics derives dashboard metrics from a ledger's records.
//
// Every function is pure: it reads the given sequence and never retains it.
package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"financeiro/internal/core"
)

// investShare is the fraction of a positive surplus suggested for investing.
var investShare = decimal.RequireFromString("0.3")

// Summary is a snapshot of every metric shown on the dashboard.
type Summary struct {
	Count          int
	TotalIncome    core.Money
	TotalExpense   core.Money
	Balance        core.Money
	ByCategory     []core.CategoryAmount
	Monthly        []core.MonthBalance
	Recommendation core.Recommendation
}

// TotalIncome sums the amounts of income records.
func TotalIncome(records []core.Transaction) core.Money {
	return sumKind(records, core.Income)
}

// TotalExpense sums the amounts of expense records.
func TotalExpense(records []core.Transaction) core.Money {
	return sumKind(records, core.Expense)
}

// Balance is total income minus total expense and may be negative.
func Balance(records []core.Transaction) core.Money {
	return TotalIncome(records).Sub(TotalExpense(records))
}

func sumKind(records []core.Transaction, kind core.Kind) core.Money {
	var cents int64
	for _, r := range records {
		if r.Kind == kind {
			cents += r.Amount.Cents
		}
	}
	return core.Money{Cents: cents}
}

// ExpenseByCategory sums expenses per category, largest first. Categories
// without expenses are omitted. Equal totals keep the order in which their
// category first appears in records.
func ExpenseByCategory(records []core.Transaction) []core.CategoryAmount {
	var out []core.CategoryAmount
	index := map[core.Category]int{}
	for _, r := range records {
		if r.Kind != core.Expense {
			continue
		}
		i, ok := index[r.Category]
		if !ok {
			i = len(out)
			index[r.Category] = i
			out = append(out, core.CategoryAmount{Category: r.Category})
		}
		out[i].Amount.Cents += r.Amount.Cents
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Amount.Cents > out[j].Amount.Cents
	})
	return out
}

// MonthlyBreakdown groups records by YYYY-MM in chronological order. Income
// and expense are zero-filled independently for every month present.
func MonthlyBreakdown(records []core.Transaction) []core.MonthBalance {
	byKey := map[string]*core.MonthBalance{}
	for _, r := range records {
		key := r.Date.MonthKey()
		mb, ok := byKey[key]
		if !ok {
			mb = &core.MonthBalance{Key: key}
			byKey[key] = mb
		}
		switch r.Kind {
		case core.Income:
			mb.Income.Cents += r.Amount.Cents
		case core.Expense:
			mb.Expense.Cents += r.Amount.Cents
		}
	}
	out := make([]core.MonthBalance, 0, len(byKey))
	for _, mb := range byKey {
		mb.Balance = mb.Income.Sub(mb.Expense)
		out = append(out, *mb)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Recommend builds the spending suggestion. totalIncome is supplied by the
// caller, which normally passes TotalIncome(records).
func Recommend(records []core.Transaction, totalIncome core.Money) core.Recommendation {
	if len(records) == 0 {
		return core.Recommendation{Empty: true}
	}

	var rec core.Recommendation
	if cats := ExpenseByCategory(records); len(cats) > 0 {
		rec.Reduction = core.ReductionClause(cats[0].Category)
	}

	surplus := totalIncome.Sub(TotalExpense(records))
	if surplus.Cents > 0 {
		invest := surplus.Decimal().Mul(investShare)
		rec.Investment = core.InvestmentClause(invest.StringFixed(2))
	} else {
		rec.Investment = core.AdjustClause
	}
	return rec
}

// Summarize computes every dashboard metric in one pass over the analytics
// functions.
func Summarize(records []core.Transaction) Summary {
	income := TotalIncome(records)
	expense := TotalExpense(records)
	return Summary{
		Count:          len(records),
		TotalIncome:    income,
		TotalExpense:   expense,
		Balance:        income.Sub(expense),
		ByCategory:     ExpenseByCategory(records),
		Monthly:        MonthlyBreakdown(records),
		Recommendation: Recommend(records, income),
	}
}
