// pkg/cleaner/duplicates.go

package cleaner

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mayursurani/datapipe/pkg/model"
)

// removeDuplicates drops rows whose duplicate key has been seen before.
// The key is the configured subset of columns, or all columns when unset.
func (c *Cleaner) removeDuplicates(tbl *model.Table, report *model.CleaningReport) {
	before := len(tbl.Rows)

	keyCols := c.config.Duplicates.Subset
	if len(keyCols) == 0 {
		keyCols = tbl.ColumnNames()
	}

	rows := tbl.Rows
	if c.config.Duplicates.Keep == KeepLast {
		rows = reverseRows(rows)
	}

	seen := make(map[string]bool, len(rows))
	kept := rows[:0]
	for _, row := range rows {
		key := duplicateKey(row, keyCols)
		if seen[key] {
			continue
		}
		seen[key] = true
		kept = append(kept, row)
	}

	if c.config.Duplicates.Keep == KeepLast {
		kept = reverseRows(kept)
	}
	tbl.Rows = kept

	removed := before - len(tbl.Rows)
	report.LogStep("remove_duplicates", map[string]interface{}{
		"before":  before,
		"after":   len(tbl.Rows),
		"removed": removed,
	})
	if removed > 0 {
		report.RecordOp(model.CleaningOperation{
			TableName:     tbl.Name,
			ColumnName:    strings.Join(keyCols, ","),
			NewValue:      fmt.Sprintf("%d rows removed", removed),
			RowIdentifier: "*",
			Operation:     "remove_duplicates",
			Reason:        "duplicate_rows",
		})
	}

	c.logger.Info("duplicates removed",
		zap.Int("before", before),
		zap.Int("after", len(tbl.Rows)),
		zap.Int("removed", removed),
	)
}

// countDuplicates counts rows beyond the first occurrence of each key.
func countDuplicates(tbl *model.Table, keyCols []string) int {
	if len(keyCols) == 0 {
		keyCols = tbl.ColumnNames()
	}
	seen := make(map[string]bool, len(tbl.Rows))
	dups := 0
	for _, row := range tbl.Rows {
		key := duplicateKey(row, keyCols)
		if seen[key] {
			dups++
			continue
		}
		seen[key] = true
	}
	return dups
}

// duplicateKey builds a stable string key from the given columns.
func duplicateKey(row model.Record, cols []string) string {
	parts := make([]string, len(cols))
	for i, col := range cols {
		parts[i] = fmt.Sprintf("%v", row[col])
	}
	return strings.Join(parts, "\x1f")
}

func reverseRows(rows []model.Record) []model.Record {
	out := make([]model.Record, len(rows))
	for i, row := range rows {
		out[len(rows)-1-i] = row
	}
	return out
}
