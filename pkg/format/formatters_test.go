package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCurrency(t *testing.T) {
	assert.Equal(t, "₹1,234,567.89", Currency(1234567.89, "", 2))
	assert.Equal(t, "$999.50", Currency(999.5, "$", 2))
	assert.Equal(t, "₹50,000.00", Currency(50000, "", 2))
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, "15.6%", Percentage(0.156, 1))
	assert.Equal(t, "85.7%", Percentage(85.7, 1))
	assert.Equal(t, "100.00%", Percentage(1.0, 2))
}

func TestNumber(t *testing.T) {
	assert.Equal(t, "1,234,567", Number(1234567, 0))
	assert.Equal(t, "1,234.57", Number(1234.5678, 2))
	assert.Equal(t, "1,234.57", Number(1234.567, 2))
	assert.Equal(t, "1,000.00", Number(1000, 2))
	assert.Equal(t, "-12,345.6", Number(-12345.64, 1))
	assert.Equal(t, "999", Number(999, 0))
}

func TestDate(t *testing.T) {
	d := time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)
	assert.Equal(t, "2025-01-15", Date(d, ""))
	assert.Equal(t, "15/01/2025", Date(d, "02/01/2006"))
}

func TestPhone(t *testing.T) {
	assert.Equal(t, "+91 98765 43210", Phone("9876543210"))
	assert.Equal(t, "+91 98765 43210", Phone("98765-43210"))
	assert.Equal(t, "123", Phone("123"))
}

func TestFileSize(t *testing.T) {
	assert.Equal(t, "1.0 KiB", FileSize(1024))
	assert.Equal(t, "1.0 MiB", FileSize(1048576))
}

func TestDuration(t *testing.T) {
	assert.Equal(t, "45.00 seconds", Duration(45*time.Second))
	assert.Equal(t, "2.50 minutes", Duration(150*time.Second))
	assert.Equal(t, "1.50 hours", Duration(90*time.Minute))
}

func TestTable(t *testing.T) {
	rows := []map[string]interface{}{
		{"name": "Mayur", "exp": 3},
		{"name": "Priya", "exp": 8},
	}
	got := Table(rows, []string{"name", "exp"})

	assert.Contains(t, got, "name  | exp")
	assert.Contains(t, got, "Mayur | 3")
	assert.Contains(t, got, "Priya | 8")
}

func TestTableEmpty(t *testing.T) {
	assert.Equal(t, "No data to display", Table(nil, nil))
}
