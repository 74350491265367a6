package ingest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mayursurani/datapipe/pkg/model"
)

func TestParquetArchiveRoundTrip(t *testing.T) {
	tbl := model.NewTable("sales", []string{"product", "price"}, []model.Record{
		{"product": "Laptop", "price": 75000.5},
		{"product": "Mouse", "price": 500.0},
	})

	path := filepath.Join(t.TempDir(), "sales.parquet")
	require.NoError(t, WriteArchive(path, "csv:sales", tbl))

	records, err := ReadArchive(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "csv:sales", records[0].Source)
	assert.NotZero(t, records[0].IngestedAt)

	got, err := ArchiveToTable("sales", records)
	require.NoError(t, err)
	require.Len(t, got.Rows, 2)
	assert.Equal(t, "Laptop", got.Rows[0]["product"])
	assert.Equal(t, 75000.5, got.Rows[0]["price"])
}

func TestParquetSource(t *testing.T) {
	tbl := model.NewTable("t", []string{"id"}, []model.Record{{"id": int64(7)}})

	path := filepath.Join(t.TempDir(), "t.parquet")
	require.NoError(t, WriteArchive(path, "test", tbl))

	src, err := NewParquetSource("archive", path)
	require.NoError(t, err)

	got, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, got.Rows, 1)
	assert.Equal(t, int64(7), got.Rows[0]["id"])
}
