// pkg/cleaner/text.go

package cleaner

import (
	"strings"

	"go.uber.org/zap"

	"github.com/mayursurani/datapipe/pkg/model"
	"github.com/mayursurani/datapipe/pkg/transform"
)

// cleanText standardizes email, name and phone columns, matched by name
// substring.
func (c *Cleaner) cleanText(tbl *model.Table, report *model.CleaningReport) {
	var emailCols, nameCols, phoneCols []string

	for _, col := range tbl.ColumnNames() {
		lower := strings.ToLower(col)
		switch {
		case strings.Contains(lower, "email") && c.config.Text.LowercaseEmails:
			emailCols = append(emailCols, col)
			c.transformColumn(tbl, col, report, "lowercase_email", func(s string) string {
				return strings.ToLower(strings.TrimSpace(s))
			})
		case strings.Contains(lower, "phone") && c.config.Text.StandardizePhones:
			phoneCols = append(phoneCols, col)
			c.transformColumn(tbl, col, report, "standardize_phone", standardizePhone)
		case strings.Contains(lower, "name") && c.config.Text.TitleCaseNames:
			nameCols = append(nameCols, col)
			c.transformColumn(tbl, col, report, "title_case_name", transform.TitleCase)
		}
	}

	report.LogStep("clean_text", map[string]interface{}{
		"email_cols": emailCols,
		"name_cols":  nameCols,
		"phone_cols": phoneCols,
	})

	c.logger.Info("text columns cleaned",
		zap.Strings("email_cols", emailCols),
		zap.Strings("name_cols", nameCols),
		zap.Strings("phone_cols", phoneCols),
	)
}

// transformColumn applies fn to every non-missing string cell and records
// an operation for each cell that changed.
func (c *Cleaner) transformColumn(tbl *model.Table, col string, report *model.CleaningReport, operation string, fn func(string) string) {
	for i, row := range tbl.Rows {
		s, ok := row[col].(string)
		if !ok || model.IsMissing(s) {
			continue
		}
		cleaned := fn(s)
		if cleaned == s {
			continue
		}
		row[col] = cleaned
		report.RecordOp(model.CleaningOperation{
			TableName:     tbl.Name,
			ColumnName:    col,
			OriginalValue: s,
			NewValue:      cleaned,
			RowIdentifier: rowIdentifier(i),
			Operation:     operation,
			Reason:        "text_standardization",
		})
	}
}

// standardizePhone reduces a phone value to its 10-digit national form,
// dropping a leading 91 country code. Values that do not reduce to 10
// digits are left as bare digits.
func standardizePhone(s string) string {
	digits := transform.DigitsOnly(s)
	if len(digits) > 10 && strings.HasPrefix(digits, "91") {
		digits = digits[len(digits)-10:]
	}
	return digits
}
