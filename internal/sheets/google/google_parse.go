package google

import (
	"fmt"
	"strings"

	"financeiro/internal/core"
	"financeiro/internal/ledger"
)

// parseRows converts a values matrix (as returned by Sheets API) into
// transactions. The Sheets API drops trailing empty cells, so short rows are
// padded back to the full column count.
func parseRows(values [][]interface{}) ([]core.Transaction, error) {
	rows := make([][]string, 0, len(values))
	for _, v := range values {
		row := toStrings(v)
		for len(row) < len(ledger.Header) {
			row = append(row, "")
		}
		rows = append(rows, row)
	}
	return ledger.DecodeRows(rows)
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func toValues(rows [][]string) [][]interface{} {
	out := make([][]interface{}, len(rows))
	for i, row := range rows {
		cells := make([]interface{}, len(row))
		for j, c := range row {
			cells[j] = c
		}
		out[i] = cells
	}
	return out
}
