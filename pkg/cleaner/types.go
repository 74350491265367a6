// pkg/cleaner/types.go

package cleaner

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mayursurani/datapipe/pkg/model"
	"github.com/mayursurani/datapipe/pkg/transform"
)

// convertTypes converts text columns whose values all parse as numbers,
// booleans or dates, and updates the declared column types to match.
func (c *Cleaner) convertTypes(tbl *model.Table, report *model.CleaningReport) {
	converted := make(map[string]interface{})

	for _, col := range tbl.CategoricalColumns() {
		target, ok := detectColumnType(tbl, col)
		if !ok {
			continue
		}

		for i, row := range tbl.Rows {
			s, isStr := row[col].(string)
			if !isStr || model.IsMissing(row[col]) {
				continue
			}
			value, newValue, parsed := parseAs(s, target)
			if !parsed {
				continue
			}
			row[col] = value
			report.RecordOp(model.CleaningOperation{
				TableName:     tbl.Name,
				ColumnName:    col,
				OriginalValue: s,
				NewValue:      newValue,
				RowIdentifier: rowIdentifier(i),
				Operation:     "type_conversion",
				Reason:        "converted_to_" + target,
			})
		}

		if colDef := tbl.GetColumnByName(col); colDef != nil {
			colDef.DataType = target
		}
		converted[col] = target
	}

	report.LogStep("convert_types", converted)
	c.logger.Info("column types converted", zap.Int("columns", len(converted)))
}

// detectColumnType returns the type every non-missing value of a text
// column parses as, if there is one.
func detectColumnType(tbl *model.Table, col string) (string, bool) {
	candidates := map[string]bool{
		model.TypeInteger:   true,
		model.TypeBoolean:   true,
		model.TypeTimestamp: true,
	}
	seen := false

	for _, row := range tbl.Rows {
		s, ok := row[col].(string)
		if !ok || model.IsMissing(row[col]) {
			continue
		}
		seen = true

		if candidates[model.TypeInteger] || candidates[model.TypeFloat] {
			f, numOK := parseNumericString(s)
			switch {
			case !numOK:
				delete(candidates, model.TypeInteger)
				delete(candidates, model.TypeFloat)
			case f != float64(int64(f)) || candidates[model.TypeFloat]:
				delete(candidates, model.TypeInteger)
				candidates[model.TypeFloat] = true
			}
		}
		if candidates[model.TypeBoolean] {
			if _, ok := parseBoolString(s); !ok {
				delete(candidates, model.TypeBoolean)
			}
		}
		if candidates[model.TypeTimestamp] {
			if _, ok := transform.ParseDate(s); !ok {
				delete(candidates, model.TypeTimestamp)
			}
		}
	}

	if !seen {
		return "", false
	}
	// Prefer the most specific interpretation.
	for _, t := range []string{model.TypeBoolean, model.TypeInteger, model.TypeFloat, model.TypeTimestamp} {
		if candidates[t] {
			return t, true
		}
	}
	return "", false
}

// parseAs converts a string cell to the target type.
func parseAs(s, target string) (value interface{}, newValue string, ok bool) {
	switch target {
	case model.TypeInteger:
		f, numOK := parseNumericString(s)
		if !numOK {
			return nil, "", false
		}
		n := int64(f)
		return n, strconv.FormatInt(n, 10), true
	case model.TypeFloat:
		f, numOK := parseNumericString(s)
		if !numOK {
			return nil, "", false
		}
		return f, strconv.FormatFloat(f, 'f', -1, 64), true
	case model.TypeBoolean:
		b, boolOK := parseBoolString(s)
		if !boolOK {
			return nil, "", false
		}
		return b, strconv.FormatBool(b), true
	case model.TypeTimestamp:
		t, dateOK := transform.ParseDate(s)
		if !dateOK {
			return nil, "", false
		}
		return t, t.Format("2006-01-02"), true
	default:
		return nil, "", false
	}
}

// parseNumericString parses human-entered numbers: currency symbols,
// thousand separators and a k/K thousands suffix.
func parseNumericString(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "₹")
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	multiplier := 1.0
	if strings.HasSuffix(s, "k") || strings.HasSuffix(s, "K") {
		multiplier = 1000
		s = s[:len(s)-1]
	}
	if s == "" {
		return 0, false
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f * multiplier, true
}

func parseBoolString(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "yes", "y", "1":
		return true, true
	case "false", "f", "no", "n", "0":
		return false, true
	default:
		return false, false
	}
}
