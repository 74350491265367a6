package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mayursurani/datapipe/pkg/model"
)

func validRecord() model.Record {
	return model.Record{
		"product":     "Laptop",
		"price":       75000.0,
		"quantity":    2,
		"customer_id": "C001",
		"region":      "West",
	}
}

func TestValidateRecordValid(t *testing.T) {
	rv, err := NewRecordValidator(Config{})
	require.NoError(t, err)

	errs, warns := rv.ValidateRecord(validRecord())
	assert.Empty(t, errs)
	assert.Empty(t, warns)
}

func TestValidateRecordMissingFields(t *testing.T) {
	rv, err := NewRecordValidator(Config{})
	require.NoError(t, err)

	rec := validRecord()
	delete(rec, "price")
	rec["region"] = ""

	errs, _ := rv.ValidateRecord(rec)
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0], "price")
	assert.Contains(t, errs[1], "region")
}

func TestValidateRecordPriceBounds(t *testing.T) {
	rv, err := NewRecordValidator(Config{})
	require.NoError(t, err)

	rec := validRecord()
	rec["price"] = -500.0
	errs, _ := rv.ValidateRecord(rec)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "negative")

	rec["price"] = 1200000.0
	errs, _ = rv.ValidateRecord(rec)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "above maximum")
}

func TestValidateRecordQuantityWarning(t *testing.T) {
	rv, err := NewRecordValidator(Config{})
	require.NoError(t, err)

	rec := validRecord()
	rec["quantity"] = 0
	errs, _ := rv.ValidateRecord(rec)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "below minimum")

	// Above the maximum is a warning, not an error.
	rec["quantity"] = 15000
	rec["price"] = 10.0
	errs, warns := rv.ValidateRecord(rec)
	assert.Empty(t, errs)
	require.Len(t, warns, 1)
	assert.Contains(t, warns[0], "high quantity")
}

func TestValidateRecordHighValueWarning(t *testing.T) {
	rv, err := NewRecordValidator(Config{})
	require.NoError(t, err)

	rec := validRecord()
	rec["price"] = 300000.0
	rec["quantity"] = 2

	errs, warns := rv.ValidateRecord(rec)
	assert.Empty(t, errs)
	require.Len(t, warns, 1)
	assert.Contains(t, warns[0], "high-value order")
}

func TestValidateRecordHighValueWarningWithErrors(t *testing.T) {
	rv, err := NewRecordValidator(Config{})
	require.NoError(t, err)

	// A bad region does not suppress the approval warning.
	rec := validRecord()
	rec["price"] = 300000.0
	rec["quantity"] = 2
	rec["region"] = "Central"

	errs, warns := rv.ValidateRecord(rec)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "region")
	require.Len(t, warns, 1)
	assert.Contains(t, warns[0], "high-value order")
}

func TestValidateRecordAppliesRules(t *testing.T) {
	rv, err := NewRecordValidator(Config{})
	require.NoError(t, err)

	rec := validRecord()
	rec["customer_id"] = "INVALID"

	errs, _ := rv.ValidateRecord(rec)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "customer_id")
	assert.Contains(t, errs[0], "failed rule")
}

func TestValidateRecordCustomRules(t *testing.T) {
	rv, err := NewRecordValidator(Config{
		Rules: map[string]interface{}{
			"customer_id":   "required,customer_id",
			"contact_phone": "required,indian_phone",
		},
	})
	require.NoError(t, err)

	rec := validRecord()
	rec["contact_phone"] = "12345"

	errs, _ := rv.ValidateRecord(rec)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "contact_phone")

	rec["contact_phone"] = "9876543210"
	errs, _ = rv.ValidateRecord(rec)
	assert.Empty(t, errs)
}

func TestValidateRecordInvalidFormats(t *testing.T) {
	rv, err := NewRecordValidator(Config{})
	require.NoError(t, err)

	rec := validRecord()
	rec["product"] = "X"
	rec["customer_id"] = "INVALID"
	rec["region"] = "InvalidRegion"

	errs, _ := rv.ValidateRecord(rec)
	assert.Len(t, errs, 3)
}

func TestValidateTable(t *testing.T) {
	rv, err := NewRecordValidator(Config{})
	require.NoError(t, err)

	rows := []model.Record{
		validRecord(),
		{"product": "Mouse", "price": -500.0, "quantity": 5, "customer_id": "C002", "region": "East"},
		{"product": "", "price": 1500.0, "quantity": 1, "customer_id": "C003", "region": "North"},
	}
	tbl := model.NewTable("sales", []string{"product", "price", "quantity", "customer_id", "region"}, rows)

	valid, invalid, report, err := rv.ValidateTable(tbl)
	require.NoError(t, err)

	assert.Equal(t, 3, report.TotalRecords)
	assert.Equal(t, 1, report.ValidRecords)
	assert.Equal(t, 2, report.InvalidRecords)
	assert.InDelta(t, 33.3, report.ValidRate(), 0.1)

	require.Len(t, valid.Rows, 1)
	require.Len(t, invalid.Rows, 2)

	assert.Equal(t, 2, invalid.Rows[0]["record_num"])
	assert.Contains(t, invalid.Rows[0]["errors"], "negative")
	assert.NotNil(t, invalid.GetColumnByName("errors"))
}

func TestValidateTableNil(t *testing.T) {
	rv, err := NewRecordValidator(Config{})
	require.NoError(t, err)

	_, _, _, err = rv.ValidateTable(nil)
	assert.Error(t, err)
}

func TestRuleValidator(t *testing.T) {
	rv, err := NewRuleValidator(nil)
	require.NoError(t, err)

	assert.Empty(t, rv.Check(validRecord()))

	rec := validRecord()
	rec["customer_id"] = "INVALID"
	rec["region"] = "Central"

	messages := rv.Check(rec)
	require.Len(t, messages, 2)
	assert.Contains(t, messages[0], "customer_id")
	assert.Contains(t, messages[1], "region")
}
