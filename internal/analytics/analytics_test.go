package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"financeiro/internal/core"
)

func tx(date core.Date, kind core.Kind, cents int64, cat core.Category) core.Transaction {
	return core.Transaction{Date: date, Kind: kind, Amount: core.Money{Cents: cents}, Category: cat}
}

func scenarioB() []core.Transaction {
	d := core.NewDate(2024, 5, 10)
	return []core.Transaction{
		tx(d, core.Income, 100000, core.Other),
		tx(d, core.Expense, 30000, core.Food),
		tx(d, core.Expense, 20000, core.Transport),
	}
}

func TestEmptyLedger(t *testing.T) {
	var records []core.Transaction

	assert.Equal(t, int64(0), TotalIncome(records).Cents)
	assert.Equal(t, int64(0), TotalExpense(records).Cents)
	assert.Equal(t, int64(0), Balance(records).Cents)
	assert.Empty(t, ExpenseByCategory(records))
	assert.Empty(t, MonthlyBreakdown(records))

	rec := Recommend(records, TotalIncome(records))
	assert.True(t, rec.Empty)
	assert.Equal(t, core.NoDataMessage, rec.String())
}

func TestScenarioIncomeAndTwoExpenses(t *testing.T) {
	records := scenarioB()

	assert.Equal(t, int64(100000), TotalIncome(records).Cents)
	assert.Equal(t, int64(50000), TotalExpense(records).Cents)
	assert.Equal(t, int64(50000), Balance(records).Cents)

	rec := Recommend(records, TotalIncome(records))
	assert.Equal(t, "Reduce spending in 'Food'", rec.Reduction)
	assert.Equal(t, "Invest up to R$150.00 (30% of the surplus)", rec.Investment)
	assert.Equal(t, "Reduce spending in 'Food' | Invest up to R$150.00 (30% of the surplus)", rec.String())
}

func TestOnlyIncome(t *testing.T) {
	d := core.NewDate(2024, 1, 2)
	records := []core.Transaction{
		tx(d, core.Income, 12345, core.Other),
		tx(d, core.Income, 10000, core.Leisure),
	}

	rec := Recommend(records, TotalIncome(records))
	assert.False(t, rec.Empty)
	assert.Empty(t, rec.Reduction)
	// 223.45 * 0.3 = 67.035
	assert.Equal(t, "Invest up to R$67.04 (30% of the surplus)", rec.Investment)
	assert.Equal(t, " | Invest up to R$67.04 (30% of the surplus)", rec.String())
}

func TestNoSurplus(t *testing.T) {
	d := core.NewDate(2024, 1, 2)
	records := []core.Transaction{
		tx(d, core.Income, 10000, core.Other),
		tx(d, core.Expense, 10000, core.Housing),
	}
	rec := Recommend(records, TotalIncome(records))
	assert.Equal(t, "Reduce spending in 'Housing' | Adjust spending before investing", rec.String())

	records = append(records, tx(d, core.Expense, 1, core.Health))
	assert.Equal(t, int64(-1), Balance(records).Cents)
	assert.Equal(t, core.AdjustClause, Recommend(records, TotalIncome(records)).Investment)
}

func TestRecommendUsesSuppliedIncome(t *testing.T) {
	records := scenarioB()
	rec := Recommend(records, core.Money{Cents: 40000})
	assert.Equal(t, core.AdjustClause, rec.Investment)
}

func TestExpenseByCategory(t *testing.T) {
	d := core.NewDate(2024, 3, 1)
	records := []core.Transaction{
		tx(d, core.Expense, 500, core.Leisure),
		tx(d, core.Income, 99999, core.Food),
		tx(d, core.Expense, 700, core.Housing),
		tx(d, core.Expense, 200, core.Housing),
		tx(d, core.Expense, 900, core.Health),
		tx(d, core.Expense, 400, core.Leisure),
	}

	got := ExpenseByCategory(records)
	require.Len(t, got, 3)
	// Housing, Leisure and Health all sum to 900: first-seen order wins.
	assert.Equal(t, core.Leisure, got[0].Category)
	assert.Equal(t, core.Housing, got[1].Category)
	assert.Equal(t, core.Health, got[2].Category)

	var sum int64
	for _, c := range got {
		assert.Equal(t, int64(900), c.Amount.Cents)
		sum += c.Amount.Cents
	}
	assert.Equal(t, TotalExpense(records).Cents, sum)

	rec := Recommend(records, TotalIncome(records))
	assert.Equal(t, "Reduce spending in 'Leisure'", rec.Reduction)
}

func TestExpenseByCategoryDescending(t *testing.T) {
	d := core.NewDate(2024, 3, 1)
	records := []core.Transaction{
		tx(d, core.Expense, 100, core.Food),
		tx(d, core.Expense, 300, core.Transport),
		tx(d, core.Expense, 200, core.Other),
	}
	got := ExpenseByCategory(records)
	require.Len(t, got, 3)
	assert.Equal(t, []core.Category{core.Transport, core.Other, core.Food},
		[]core.Category{got[0].Category, got[1].Category, got[2].Category})
}

func TestMonthlyBreakdownSameMonth(t *testing.T) {
	records := []core.Transaction{
		tx(core.NewDate(2024, 7, 1), core.Income, 5000, core.Other),
		tx(core.NewDate(2024, 7, 28), core.Expense, 1200, core.Food),
	}
	got := MonthlyBreakdown(records)
	require.Len(t, got, 1)
	assert.Equal(t, "2024-07", got[0].Key)
	assert.Equal(t, int64(5000), got[0].Income.Cents)
	assert.Equal(t, int64(1200), got[0].Expense.Cents)
	assert.Equal(t, int64(3800), got[0].Balance.Cents)
}

func TestMonthlyBreakdownZeroFillAndOrder(t *testing.T) {
	records := []core.Transaction{
		tx(core.NewDate(2024, 3, 5), core.Expense, 700, core.Food),
		tx(core.NewDate(2023, 12, 31), core.Income, 1000, core.Other),
		tx(core.NewDate(2024, 1, 15), core.Income, 300, core.Other),
		tx(core.NewDate(2024, 1, 20), core.Expense, 900, core.Leisure),
	}
	got := MonthlyBreakdown(records)
	require.Len(t, got, 3)

	assert.Equal(t, "2023-12", got[0].Key)
	assert.Equal(t, int64(1000), got[0].Income.Cents)
	assert.Equal(t, int64(0), got[0].Expense.Cents)

	assert.Equal(t, "2024-01", got[1].Key)
	assert.Equal(t, int64(-600), got[1].Balance.Cents)

	assert.Equal(t, "2024-03", got[2].Key)
	assert.Equal(t, int64(0), got[2].Income.Cents)
	assert.Equal(t, int64(-700), got[2].Balance.Cents)

	for _, m := range got {
		assert.Equal(t, m.Income.Cents-m.Expense.Cents, m.Balance.Cents, m.Key)
	}
}

func TestBalanceIdentity(t *testing.T) {
	ledgers := [][]core.Transaction{
		nil,
		scenarioB(),
		{tx(core.NewDate(2020, 2, 2), core.Expense, 42, core.Other)},
		{tx(core.NewDate(2020, 2, 2), core.Income, 0, core.Other)},
	}
	for _, records := range ledgers {
		assert.Equal(t, TotalIncome(records).Cents-TotalExpense(records).Cents, Balance(records).Cents)

		var sum int64
		for _, c := range ExpenseByCategory(records) {
			sum += c.Amount.Cents
		}
		assert.Equal(t, TotalExpense(records).Cents, sum)
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(scenarioB())
	assert.Equal(t, 3, s.Count)
	assert.Equal(t, int64(100000), s.TotalIncome.Cents)
	assert.Equal(t, int64(50000), s.TotalExpense.Cents)
	assert.Equal(t, int64(50000), s.Balance.Cents)
	require.Len(t, s.ByCategory, 2)
	require.Len(t, s.Monthly, 1)
	assert.Equal(t, "2024-05", s.Monthly[0].Key)
	assert.Equal(t, "Reduce spending in 'Food'", s.Recommendation.Reduction)

	empty := Summarize(nil)
	assert.Equal(t, core.NoDataMessage, empty.Recommendation.String())
}
