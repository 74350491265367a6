package validate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mayursurani/datapipe/pkg/model"
)

func TestEmail(t *testing.T) {
	for _, email := range []string{
		"mayur@example.com",
		"test.user@company.co.in",
		"admin@test-domain.com",
		"user123@example.org",
	} {
		assert.True(t, Email(email), email)
	}

	for _, email := range []string{
		"invalid",
		"missing@domain",
		"@nodomain.com",
		"spaces in@email.com",
		"",
	} {
		assert.False(t, Email(email), email)
	}
}

func TestPhone(t *testing.T) {
	for _, phone := range []string{"9876543210", "8765432109", "7654321098", "6543210987", "98765 43210", "98765-43210"} {
		assert.True(t, Phone(phone), phone)
	}

	for _, phone := range []string{"123", "12345", "1234567890", "5876543210", ""} {
		assert.False(t, Phone(phone), phone)
	}
}

func TestPrice(t *testing.T) {
	assert.NoError(t, Price(100, 0, 1000000))
	assert.NoError(t, Price(0, 0, 1000000))
	assert.Error(t, Price(-100, 0, 1000000))
	assert.Error(t, Price(50, 100, 1000000))
	assert.Error(t, Price(1000, 0, 500))
}

func TestQuantity(t *testing.T) {
	assert.NoError(t, Quantity(5, 1, 10000))
	assert.Error(t, Quantity(0, 1, 10000))
	assert.Error(t, Quantity(15000, 1, 10000))
}

func TestDate(t *testing.T) {
	parsed, err := Date("2025-01-15", "")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), parsed)

	_, err = Date("15/01/2025", "")
	assert.Error(t, err)
}

func TestCustomerID(t *testing.T) {
	for _, id := range []string{"C001", "C1234", "C999999"} {
		assert.NoError(t, CustomerID(id), id)
	}

	for _, id := range []string{"INVALID", "C", "C12A", ""} {
		assert.Error(t, CustomerID(id), id)
	}
}

func TestRegion(t *testing.T) {
	regions := []string{"North", "South", "East", "West"}
	assert.NoError(t, Region("North", regions))
	assert.Error(t, Region("Central", regions))
	assert.Error(t, Region("", regions))
}

func TestTableSchema(t *testing.T) {
	tbl := model.NewTable("sales", []string{"product", "price"}, nil)

	assert.NoError(t, TableSchema(tbl, []string{"product", "price"}))

	err := TableSchema(tbl, []string{"product", "price", "region"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "region")
}
