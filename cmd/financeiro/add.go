package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"financeiro/internal/core"
)

type addOptions struct {
	date        string
	description string
	amount      string
	category    string
	kind        string
}

func newAddCmd(flags *rootFlags) *cobra.Command {
	opts := &addOptions{}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a transaction",
		Example: `  financeiro add --amount 3000 --kind Income --category Other --description Salary
  financeiro add --date 2024-01-20 --amount 1200 --category Housing --description Rent`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			candidate, err := opts.transaction(time.Now())
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			a, err := newApp(ctx, cmd, flags, true)
			if err != nil {
				return err
			}
			defer a.close()

			records, err := a.svc.Record(ctx, candidate)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Saved! %d transactions in %s\n", len(records), a.svc.Location())
			fmt.Fprintln(out, a.svc.Dashboard(ctx).Recommendation.String())
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.date, "date", "", "transaction date YYYY-MM-DD (default today)")
	f.StringVar(&opts.description, "description", "", "free-text description")
	f.StringVar(&opts.amount, "amount", "", "non-negative amount, e.g. 12.34")
	f.StringVar(&opts.category, "category", string(core.Other), fmt.Sprintf("category %v", core.Categories()))
	f.StringVar(&opts.kind, "kind", string(core.Expense), fmt.Sprintf("kind %v", core.Kinds()))
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

// transaction parses the flags into a candidate record.
func (o *addOptions) transaction(now time.Time) (core.Transaction, error) {
	var t core.Transaction

	if strings.TrimSpace(o.date) == "" {
		t.Date = core.NewDate(now.Year(), int(now.Month()), now.Day())
	} else {
		d, err := core.ParseDate(o.date)
		if err != nil {
			return t, &core.ValidationError{Field: "date", Err: err}
		}
		t.Date = d
	}

	t.Description = strings.TrimSpace(o.description)

	cents, err := core.ParseDecimalToCents(o.amount)
	if err != nil {
		return t, &core.ValidationError{Field: "amount", Err: err}
	}
	t.Amount = core.Money{Cents: cents}

	if t.Category, err = core.ParseCategory(o.category); err != nil {
		return t, &core.ValidationError{Field: "category", Err: err}
	}
	if t.Kind, err = core.ParseKind(o.kind); err != nil {
		return t, &core.ValidationError{Field: "kind", Err: err}
	}
	return t, nil
}
