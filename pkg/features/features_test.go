package features

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mayursurani/datapipe/pkg/model"
)

func purchasesTable() *model.Table {
	return model.NewTable("purchases",
		[]string{"customer_id", "name", "city", "purchase_date", "amount", "salary"},
		[]model.Record{
			{"customer_id": "C001", "name": "Mayurkumar Surani", "city": "Pune", "purchase_date": time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC), "amount": int64(10000), "salary": int64(800000)},
			{"customer_id": "C001", "name": "Mayurkumar Surani", "city": "Pune", "purchase_date": time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC), "amount": int64(30000), "salary": int64(800000)},
			{"customer_id": "C002", "name": "Rahul Sharma", "city": "Mumbai", "purchase_date": time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC), "amount": int64(50000), "salary": int64(1500000)},
			{"customer_id": "C003", "name": "Priya Patel", "city": "Pune", "purchase_date": time.Date(2024, 11, 2, 0, 0, 0, 0, time.UTC), "amount": int64(20000), "salary": int64(600000)},
		})
}

func TestDateFeatures(t *testing.T) {
	tbl := purchasesTable()
	eng := NewEngineer()

	require.NoError(t, eng.DateFeatures(tbl, "purchase_date"))

	// 2024-01-06 is a Saturday in Winter.
	first := tbl.Rows[0]
	assert.Equal(t, int64(2024), first["purchase_date_year"])
	assert.Equal(t, int64(1), first["purchase_date_month"])
	assert.Equal(t, int64(6), first["purchase_date_day"])
	assert.Equal(t, int64(5), first["purchase_date_weekday"])
	assert.Equal(t, int64(1), first["purchase_date_quarter"])
	assert.Equal(t, int64(1), first["purchase_date_is_weekend"])
	assert.Equal(t, "Winter", first["purchase_date_season"])

	// 2024-07-15 is a Monday in Monsoon.
	third := tbl.Rows[2]
	assert.Equal(t, int64(0), third["purchase_date_weekday"])
	assert.Equal(t, int64(0), third["purchase_date_is_weekend"])
	assert.Equal(t, int64(3), third["purchase_date_quarter"])
	assert.Equal(t, "Monsoon", third["purchase_date_season"])
}

func TestDateFeaturesParsesStrings(t *testing.T) {
	tbl := model.NewTable("t", []string{"d"}, []model.Record{
		{"d": "2024-11-02"},
		{"d": "not a date"},
		{"d": nil},
	})

	require.NoError(t, NewEngineer().DateFeatures(tbl, "d"))
	assert.Equal(t, "Autumn", tbl.Rows[0]["d_season"])
	assert.Nil(t, tbl.Rows[1]["d_season"])
	assert.Nil(t, tbl.Rows[2]["d_year"])
}

func TestSeason(t *testing.T) {
	assert.Equal(t, "Winter", Season(time.December))
	assert.Equal(t, "Summer", Season(time.April))
	assert.Equal(t, "Monsoon", Season(time.September))
	assert.Equal(t, "Autumn", Season(time.October))
}

func TestLog1p(t *testing.T) {
	tbl := purchasesTable()
	eng := NewEngineer()

	require.NoError(t, eng.Log1p(tbl, "amount"))
	got, ok := model.AsFloat(tbl.Rows[0]["amount_log"])
	require.True(t, ok)
	assert.InDelta(t, 9.2104, got, 0.0005)

	assert.Error(t, eng.Log1p(tbl, "name"), "text column is not numeric")
	assert.Error(t, eng.Log1p(tbl, "no_such_column"))
}

func TestRatioAndInteraction(t *testing.T) {
	tbl := purchasesTable()
	eng := NewEngineer()

	require.NoError(t, eng.Ratio(tbl, "amount_to_salary", "amount", "salary"))
	got, ok := model.AsFloat(tbl.Rows[0]["amount_to_salary"])
	require.True(t, ok)
	assert.InDelta(t, 0.0125, got, 1e-9)

	require.NoError(t, eng.Interaction(tbl, "amount_x_salary", "amount", "salary"))
	got, ok = model.AsFloat(tbl.Rows[0]["amount_x_salary"])
	require.True(t, ok)
	assert.InDelta(t, 8e9, got, 1)
}

func TestRatioZeroDenominator(t *testing.T) {
	tbl := model.NewTable("t", []string{"a", "b"}, []model.Record{
		{"a": int64(10), "b": int64(0)},
	})

	require.NoError(t, NewEngineer().Ratio(tbl, "r", "a", "b"))
	assert.Nil(t, tbl.Rows[0]["r"])
}

func TestBin(t *testing.T) {
	tbl := model.NewTable("t", []string{"age"}, []model.Record{
		{"age": int64(22)},
		{"age": int64(30)},
		{"age": int64(40)},
		{"age": int64(70)},
		{"age": int64(120)}, // above last edge
	})
	eng := NewEngineer()

	err := eng.Bin(tbl, "age", "age_group",
		[]float64{0, 25, 35, 45, 100},
		[]string{"Young", "Adult", "Middle-aged", "Senior"})
	require.NoError(t, err)

	assert.Equal(t, "Young", tbl.Rows[0]["age_group"])
	assert.Equal(t, "Adult", tbl.Rows[1]["age_group"])
	assert.Equal(t, "Middle-aged", tbl.Rows[2]["age_group"])
	assert.Equal(t, "Senior", tbl.Rows[3]["age_group"])
	assert.Nil(t, tbl.Rows[4]["age_group"])
}

func TestBinRejectsBadEdges(t *testing.T) {
	tbl := model.NewTable("t", []string{"x"}, []model.Record{{"x": int64(1)}})
	eng := NewEngineer()

	assert.Error(t, eng.Bin(tbl, "x", "", []float64{0, 10}, []string{"a", "b"}))
	assert.Error(t, eng.Bin(tbl, "x", "", []float64{10, 0, 20}, []string{"a", "b"}))
}

func TestOneHot(t *testing.T) {
	tbl := purchasesTable()
	require.NoError(t, NewEngineer().OneHot(tbl, "city", "city"))

	assert.NotNil(t, tbl.GetColumnByName("city_pune"))
	assert.NotNil(t, tbl.GetColumnByName("city_mumbai"))

	assert.Equal(t, int64(1), tbl.Rows[0]["city_pune"])
	assert.Equal(t, int64(0), tbl.Rows[0]["city_mumbai"])
	assert.Equal(t, int64(1), tbl.Rows[2]["city_mumbai"])
}

func TestFrequencyEncode(t *testing.T) {
	tbl := purchasesTable()
	require.NoError(t, NewEngineer().FrequencyEncode(tbl, "city"))

	got, ok := model.AsFloat(tbl.Rows[0]["city_frequency"])
	require.True(t, ok)
	assert.InDelta(t, 0.75, got, 1e-9) // Pune appears in 3 of 4 rows

	got, ok = model.AsFloat(tbl.Rows[2]["city_frequency"])
	require.True(t, ok)
	assert.InDelta(t, 0.25, got, 1e-9)
}

func TestTextFeatures(t *testing.T) {
	tbl := purchasesTable()
	require.NoError(t, NewEngineer().TextFeatures(tbl, "name"))

	assert.Equal(t, int64(17), tbl.Rows[0]["name_length"])
	assert.Equal(t, int64(2), tbl.Rows[0]["name_word_count"])
}

func TestAggregate(t *testing.T) {
	tbl := purchasesTable()
	stats, err := NewEngineer().Aggregate(tbl, "customer_id", "amount")
	require.NoError(t, err)
	require.Len(t, stats, 3)

	first := stats[0]
	assert.Equal(t, "C001", first.Key)
	assert.Equal(t, 2, first.Count)
	assert.InDelta(t, 40000, first.Sum, 1e-9)
	assert.InDelta(t, 20000, first.Mean, 1e-9)
	assert.InDelta(t, 10000, first.Min, 1e-9)
	assert.InDelta(t, 30000, first.Max, 1e-9)
}

func TestAggregateTable(t *testing.T) {
	tbl := purchasesTable()
	agg, err := NewEngineer().AggregateTable(tbl, "city", "amount")
	require.NoError(t, err)

	assert.Equal(t, "purchases_by_city", agg.Name)
	require.Len(t, agg.Rows, 2)
	assert.Equal(t, "Mumbai", agg.Rows[0]["city"])
	assert.Equal(t, int64(1), agg.Rows[0]["amount_count"])
	assert.Equal(t, "Pune", agg.Rows[1]["city"])
	assert.Equal(t, int64(3), agg.Rows[1]["amount_count"])
}

func TestMergeAggregates(t *testing.T) {
	tbl := purchasesTable()
	require.NoError(t, NewEngineer().MergeAggregates(tbl, "customer_id", "amount"))

	assert.Equal(t, int64(2), tbl.Rows[0]["amount_count"])
	assert.Equal(t, int64(2), tbl.Rows[1]["amount_count"])
	assert.Equal(t, int64(1), tbl.Rows[2]["amount_count"])

	mean, ok := model.AsFloat(tbl.Rows[0]["amount_mean"])
	require.True(t, ok)
	assert.InDelta(t, 20000, mean, 1e-9)
}
