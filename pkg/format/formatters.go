// pkg/format/formatters.go

// Package format provides display formatting utilities for reports and
// exported summaries.
package format

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// DefaultCurrencySymbol is used when no symbol is supplied.
const DefaultCurrencySymbol = "₹"

// Currency formats an amount with a currency symbol, thousand separators
// and exactly the given number of decimals.
func Currency(amount float64, symbol string, decimals int) string {
	if symbol == "" {
		symbol = DefaultCurrencySymbol
	}
	return symbol + Number(amount, decimals)
}

// Percentage formats a value as a percentage. Values between 0 and 1 are
// treated as ratios and scaled by 100.
func Percentage(value float64, decimals int) string {
	if value >= 0 && value <= 1 {
		value *= 100
	}
	return fmt.Sprintf("%.*f%%", decimals, value)
}

// Number formats a number with thousand separators and exactly the given
// number of decimals, rounding half to even. Trailing zeros are kept, so
// Number(999.5, 2) is "999.50".
func Number(number float64, decimals int) string {
	s := strconv.FormatFloat(number, 'f', decimals, 64)

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, fracPart := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i:]
	}

	return sign + groupThousands(intPart) + fracPart
}

// groupThousands inserts commas into a plain digit string.
func groupThousands(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}

	var sb strings.Builder
	sb.Grow(n + (n-1)/3)
	lead := n % 3
	if lead > 0 {
		sb.WriteString(digits[:lead])
	}
	for i := lead; i < n; i += 3 {
		if sb.Len() > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(digits[i : i+3])
	}
	return sb.String()
}

// Date formats a time using the given layout, defaulting to 2006-01-02.
func Date(t time.Time, layout string) string {
	if layout == "" {
		layout = "2006-01-02"
	}
	return t.Format(layout)
}

// Phone formats a 10-digit Indian mobile number as "+91 XXXXX XXXXX".
// Inputs that do not reduce to 10 digits are returned unchanged.
func Phone(phone string) string {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	if len(d) != 10 {
		return phone
	}
	return fmt.Sprintf("+91 %s %s", d[:5], d[5:])
}

// FileSize formats a byte count in human-readable binary units.
func FileSize(sizeBytes int64) string {
	return humanize.IBytes(uint64(sizeBytes))
}

// Duration formats a duration in seconds, minutes or hours depending on
// magnitude.
func Duration(d time.Duration) string {
	seconds := d.Seconds()
	switch {
	case seconds < 60:
		return fmt.Sprintf("%.2f seconds", seconds)
	case seconds < 3600:
		return fmt.Sprintf("%.2f minutes", seconds/60)
	default:
		return fmt.Sprintf("%.2f hours", seconds/3600)
	}
}

// Table renders rows as an aligned ASCII table. When headers is nil the
// keys of the first row are used in arbitrary order, so callers that care
// about ordering should pass headers explicitly.
func Table(rows []map[string]interface{}, headers []string) string {
	if len(rows) == 0 {
		return "No data to display"
	}

	if headers == nil {
		for key := range rows[0] {
			headers = append(headers, key)
		}
	}

	widths := make(map[string]int, len(headers))
	for _, h := range headers {
		widths[h] = len(h)
	}
	for _, row := range rows {
		for _, h := range headers {
			if cell := cellString(row[h]); len(cell) > widths[h] {
				widths[h] = len(cell)
			}
		}
	}

	var sb strings.Builder
	headerCells := make([]string, len(headers))
	for i, h := range headers {
		headerCells[i] = pad(h, widths[h])
	}
	headerLine := strings.Join(headerCells, " | ")
	sb.WriteString(headerLine)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", len(headerLine)))

	for _, row := range rows {
		cells := make([]string, len(headers))
		for i, h := range headers {
			cells[i] = pad(cellString(row[h]), widths[h])
		}
		sb.WriteString("\n")
		sb.WriteString(strings.Join(cells, " | "))
	}

	return sb.String()
}

func cellString(v interface{}) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
