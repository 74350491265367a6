package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mayursurani/datapipe/pkg/model"
)

func TestScaleMinMax(t *testing.T) {
	tbl := purchasesTable()
	require.NoError(t, NewEngineer().Scale(tbl, ScaleMinMax, "amount"))

	// amounts 10000, 30000, 50000, 20000 map onto [0,1].
	want := []float64{0, 0.5, 1, 0.25}
	for i, w := range want {
		got, ok := model.AsFloat(tbl.Rows[i]["amount"])
		require.True(t, ok)
		assert.InDelta(t, w, got, 1e-9)
	}

	// Only the named column is touched.
	assert.Equal(t, int64(800000), tbl.Rows[0]["salary"])
	assert.Equal(t, model.TypeFloat, tbl.GetColumnByName("amount").DataType)
}

func TestScaleZScore(t *testing.T) {
	tbl := purchasesTable()
	require.NoError(t, NewEngineer().Scale(tbl, ScaleZScore, "amount"))

	// mean 27500, std ~14790.2
	got, ok := model.AsFloat(tbl.Rows[0]["amount"])
	require.True(t, ok)
	assert.InDelta(t, -1.1832, got, 1e-3)

	got, ok = model.AsFloat(tbl.Rows[2]["amount"])
	require.True(t, ok)
	assert.InDelta(t, 1.5213, got, 1e-3)
}

func TestScaleRobust(t *testing.T) {
	tbl := purchasesTable()
	require.NoError(t, NewEngineer().Scale(tbl, ScaleRobust, "amount"))

	// median 25000, IQR 17500
	got, ok := model.AsFloat(tbl.Rows[0]["amount"])
	require.True(t, ok)
	assert.InDelta(t, -0.857143, got, 1e-5)

	got, ok = model.AsFloat(tbl.Rows[2]["amount"])
	require.True(t, ok)
	assert.InDelta(t, 1.428571, got, 1e-5)
}

func TestScaleAllNumericColumns(t *testing.T) {
	tbl := purchasesTable()
	require.NoError(t, NewEngineer().Scale(tbl, ScaleMinMax))

	got, ok := model.AsFloat(tbl.Rows[0]["salary"])
	require.True(t, ok)
	assert.InDelta(t, 0.2222, got, 1e-3)

	// Text columns stay untouched.
	assert.Equal(t, "Pune", tbl.Rows[0]["city"])
}

func TestScaleConstantAndMissing(t *testing.T) {
	tbl := model.NewTable("t", []string{"flat", "gappy"}, []model.Record{
		{"flat": int64(7), "gappy": int64(10)},
		{"flat": int64(7), "gappy": nil},
		{"flat": int64(7), "gappy": int64(20)},
	})
	require.NoError(t, NewEngineer().Scale(tbl, ScaleZScore))

	for _, row := range tbl.Rows {
		got, ok := model.AsFloat(row["flat"])
		require.True(t, ok)
		assert.InDelta(t, 0, got, 1e-9)
	}
	assert.Nil(t, tbl.Rows[1]["gappy"])
}

func TestScaleErrors(t *testing.T) {
	eng := NewEngineer()
	tbl := purchasesTable()

	assert.Error(t, eng.Scale(nil, ScaleZScore))
	assert.Error(t, eng.Scale(tbl, "logistic"))
	assert.Error(t, eng.Scale(tbl, ScaleMinMax, "name"))
	assert.Error(t, eng.Scale(tbl, ScaleMinMax, "no_such_column"))
}
