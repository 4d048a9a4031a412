package core

import (
	"fmt"
	"strings"
)

// CategoryAmount represents an expense total aggregated by category.
type CategoryAmount struct {
	Category Category
	Amount   Money
}

// MonthBalance is the income/expense summary for a YYYY-MM key.
type MonthBalance struct {
	Key     string
	Income  Money
	Expense Money
	Balance Money
}

// NoDataMessage is shown instead of a recommendation for an empty ledger.
const NoDataMessage = "Add transactions to see the analysis."

// RecommendationSeparator joins the reduction and investment clauses.
const RecommendationSeparator = " | "

// Recommendation is the two-clause spending suggestion.
type Recommendation struct {
	Empty      bool
	Reduction  string
	Investment string
}

// String renders the recommendation text. An empty reduction clause still
// keeps the separator.
func (r Recommendation) String() string {
	if r.Empty {
		return NoDataMessage
	}
	return r.Reduction + RecommendationSeparator + r.Investment
}

// ReductionClause names the category to cut.
func ReductionClause(c Category) string {
	return fmt.Sprintf("Reduce spending in '%s'", c)
}

// InvestmentClause reports how much of the surplus may be invested.
func InvestmentClause(amount string) string {
	return fmt.Sprintf("Invest up to R$%s (30%% of the surplus)", strings.TrimSpace(amount))
}

// AdjustClause is emitted when there is no surplus.
const AdjustClause = "Adjust spending before investing"
