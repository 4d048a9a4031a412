package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"financeiro/internal/core"
	"financeiro/internal/log"
	"financeiro/internal/ofx"
)

func newImportCmd(flags *rootFlags) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import [files...]",
		Short: "Import transactions from OFX/QFX statements",
		Long: `Import transactions from OFX or QFX files exported from your bank.

Credits are recorded as Income and debits as Expense. Statements carry no
category, so every imported record is filed under Other.`,
		Example: `  financeiro import ~/Downloads/extrato_jan.ofx
  financeiro import --dry-run ~/Downloads/*.qfx`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, cmd, flags, true)
			if err != nil {
				return err
			}
			defer a.close()

			files, err := expandFiles(args)
			if err != nil {
				return err
			}

			parser := ofx.NewParser(a.logger)
			var candidates []core.Transaction
			for _, path := range files {
				txs, err := parseOFXFile(cmd, parser, path)
				if err != nil {
					a.logger.Error("Failed to parse OFX file", "file", path, log.FieldError, err)
					continue
				}
				candidates = append(candidates, txs...)
			}

			out := cmd.OutOrStdout()
			if len(candidates) == 0 {
				fmt.Fprintln(out, "No transactions found.")
				return nil
			}
			if dryRun {
				fmt.Fprintf(out, "Dry run: %d transactions would be imported into %s\n", len(candidates), a.svc.Location())
				return nil
			}

			bar := progressbar.NewOptions(len(candidates),
				progressbar.OptionSetWriter(cmd.ErrOrStderr()),
				progressbar.OptionSetDescription("Importing"),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
			res, err := a.svc.RecordAll(ctx, candidates, func(int) { _ = bar.Add(1) })
			_ = bar.Finish()

			fmt.Fprintf(out, "Imported %d of %d transactions into %s\n", res.Recorded, len(candidates), a.svc.Location())
			for _, skipped := range res.Skipped {
				fmt.Fprintf(out, "  skipped: %v\n", skipped)
			}
			return err
		},
	}
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "d", false, "parse and count without saving")
	return cmd
}

// expandFiles resolves glob patterns; plain paths are kept as given.
func expandFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(pattern); err != nil {
				return nil, fmt.Errorf("no files match %s", pattern)
			}
			matches = []string{pattern}
		}
		files = append(files, matches...)
	}
	return files, nil
}

func parseOFXFile(cmd *cobra.Command, parser *ofx.Parser, path string) ([]core.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parser.ParseFile(cmd.Context(), f)
}
