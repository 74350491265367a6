package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTableInfersTypes(t *testing.T) {
	rows := []Record{
		{"product": "Laptop", "price": 75000.0, "quantity": int64(2), "active": true, "sold_at": time.Now()},
		{"product": "Mouse", "price": 500.0, "quantity": int64(5), "active": false, "sold_at": time.Now()},
	}
	table := NewTable("sales", []string{"product", "price", "quantity", "active", "sold_at"}, rows)

	require.Len(t, table.Columns, 5)
	assert.Equal(t, TypeText, table.GetColumnByName("product").DataType)
	assert.Equal(t, TypeFloat, table.GetColumnByName("price").DataType)
	assert.Equal(t, TypeInteger, table.GetColumnByName("quantity").DataType)
	assert.Equal(t, TypeBoolean, table.GetColumnByName("active").DataType)
	assert.Equal(t, TypeTimestamp, table.GetColumnByName("sold_at").DataType)
}

func TestInferColumnTypeMixedNumericIsFloat(t *testing.T) {
	rows := []Record{
		{"amount": int64(10)},
		{"amount": 10.5},
		{"amount": nil},
	}
	table := NewTable("t", []string{"amount"}, rows)
	assert.Equal(t, TypeFloat, table.Columns[0].DataType)
}

func TestInferColumnTypeMixedKindsIsText(t *testing.T) {
	rows := []Record{
		{"v": int64(10)},
		{"v": "ten"},
	}
	table := NewTable("t", []string{"v"}, rows)
	assert.Equal(t, TypeText, table.Columns[0].DataType)
}

func TestGetColumnByNameCaseInsensitive(t *testing.T) {
	table := NewTable("t", []string{"Price"}, []Record{{"Price": 1.0}})
	require.NotNil(t, table.GetColumnByName("price"))
	assert.Nil(t, table.GetColumnByName("missing"))
}

func TestCopyIsDeep(t *testing.T) {
	table := NewTable("t", []string{"name"}, []Record{{"name": "original"}})
	dup := table.Copy()
	dup.Rows[0]["name"] = "changed"

	assert.Equal(t, "original", table.Rows[0]["name"])
	assert.Equal(t, "changed", dup.Rows[0]["name"])
}

func TestMissingCount(t *testing.T) {
	rows := []Record{
		{"a": "x", "b": nil},
		{"a": "  ", "b": 1.0},
	}
	table := NewTable("t", []string{"a", "b"}, rows)
	assert.Equal(t, 2, table.MissingCount())
}

func TestIsMissing(t *testing.T) {
	assert.True(t, IsMissing(nil))
	assert.True(t, IsMissing(""))
	assert.True(t, IsMissing("   "))
	assert.False(t, IsMissing("x"))
	assert.False(t, IsMissing(0.0))
}

func TestAddAndDropColumn(t *testing.T) {
	table := NewTable("t", []string{"price"}, []Record{{"price": 100.0}, {"price": 200.0}})
	table.AddColumn("source", TypeText, func(Record) interface{} { return "csv" })

	require.Len(t, table.Columns, 2)
	assert.Equal(t, "csv", table.Rows[0]["source"])

	table.DropColumn("source")
	require.Len(t, table.Columns, 1)
	_, exists := table.Rows[0]["source"]
	assert.False(t, exists)
}

func TestAsFloat(t *testing.T) {
	got, ok := AsFloat(int64(3))
	require.True(t, ok)
	assert.Equal(t, 3.0, got)

	_, ok = AsFloat("3")
	assert.False(t, ok)
}
