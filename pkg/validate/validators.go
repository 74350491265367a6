// pkg/validate/validators.go

// Package validate implements field and record level validation for sales
// data flowing through the ingestion and cleaning pipelines.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/mayursurani/datapipe/pkg/model"
)

var (
	emailRE       = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	indianPhoneRE = regexp.MustCompile(`^[6-9]\d{9}$`)
)

// Email reports whether the address has a plausible mailbox@domain shape.
func Email(email string) bool {
	return emailRE.MatchString(email)
}

// Phone reports whether the value is a valid Indian mobile number:
// 10 digits starting with 6-9, ignoring spaces and dashes.
func Phone(phone string) bool {
	phone = strings.NewReplacer(" ", "", "-", "").Replace(phone)
	return indianPhoneRE.MatchString(phone)
}

// Price checks a price against the allowed range.
func Price(price, min, max float64) error {
	if price < 0 {
		return fmt.Errorf("price cannot be negative: %v", price)
	}
	if price < min {
		return fmt.Errorf("price below minimum: ₹%v", price)
	}
	if price > max {
		return fmt.Errorf("price above maximum: ₹%v", price)
	}
	return nil
}

// Quantity checks a quantity against the allowed range.
func Quantity(quantity, min, max int) error {
	if quantity < min {
		return fmt.Errorf("quantity below minimum: %d", quantity)
	}
	if quantity > max {
		return fmt.Errorf("quantity above maximum: %d", quantity)
	}
	return nil
}

// Date parses a date string against the given layout, defaulting to
// 2006-01-02.
func Date(dateStr, layout string) (time.Time, error) {
	if layout == "" {
		layout = "2006-01-02"
	}
	t, err := time.Parse(layout, strings.TrimSpace(dateStr))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected layout %s", dateStr, layout)
	}
	return t, nil
}

// CustomerID checks the C-prefixed numeric customer identifier format.
func CustomerID(customerID string) error {
	id := strings.ToUpper(strings.TrimSpace(customerID))
	if id == "" {
		return fmt.Errorf("customer ID is required")
	}
	if !strings.HasPrefix(id, "C") {
		return fmt.Errorf("customer ID must start with 'C': %s", customerID)
	}
	if len(id) < 4 {
		return fmt.Errorf("customer ID too short (min 4): %s", customerID)
	}
	for _, r := range id[1:] {
		if r < '0' || r > '9' {
			return fmt.Errorf("customer ID must end with numbers: %s", customerID)
		}
	}
	return nil
}

// Region checks membership in the allowed region list.
func Region(region string, validRegions []string) error {
	if region == "" {
		return fmt.Errorf("region is required")
	}
	for _, v := range validRegions {
		if region == v {
			return nil
		}
	}
	return fmt.Errorf("invalid region %q, must be one of: %s", region, strings.Join(validRegions, ", "))
}

// TableSchema verifies that the table carries every required column.
func TableSchema(tbl *model.Table, requiredColumns []string) error {
	var missing []string
	for _, col := range requiredColumns {
		if tbl.GetColumnByName(col) == nil {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("table %s missing columns: %s", tbl.Name, strings.Join(missing, ", "))
	}
	return nil
}
