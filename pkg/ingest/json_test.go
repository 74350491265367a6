package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mayursurani/datapipe/pkg/model"
)

func TestReadJSONArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "customers.json")
	content := `[{"id":"C001","age":30},{"id":"C002","age":42.5}]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	tbl, err := ReadJSON(path, "")
	require.NoError(t, err)

	assert.Equal(t, "customers", tbl.Name)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, int64(30), tbl.Rows[0]["age"])
	assert.Equal(t, 42.5, tbl.Rows[1]["age"])
}

func TestReadJSONDataWrapper(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resp.json")
	content := `{"status":"ok","data":[{"id":"C001"}]}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	tbl, err := ReadJSON(path, "api")
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, "C001", tbl.Rows[0]["id"])
}

func TestReadJSONInvalidShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"rows":[]}`), 0o644))

	_, err := ReadJSON(path, "")
	assert.Error(t, err)
}

func TestJSONLRoundTrip(t *testing.T) {
	tbl := model.NewTable("events", []string{"id", "kind"}, []model.Record{
		{"id": int64(1), "kind": "click"},
		{"id": int64(2), "kind": "view"},
	})

	path := filepath.Join(t.TempDir(), "events.jsonl")
	require.NoError(t, WriteJSONL(path, tbl))

	got, err := ReadJSONL(path, "events")
	require.NoError(t, err)
	require.Len(t, got.Rows, 2)
	assert.Equal(t, int64(1), got.Rows[0]["id"])
	assert.Equal(t, "view", got.Rows[1]["kind"])
}

func TestJSONRoundTrip(t *testing.T) {
	tbl := model.NewTable("t", []string{"name", "score"}, []model.Record{
		{"name": "a", "score": 1.5},
	})

	path := filepath.Join(t.TempDir(), "t.json")
	require.NoError(t, WriteJSON(path, tbl))

	got, err := ReadJSON(path, "t")
	require.NoError(t, err)
	require.Len(t, got.Rows, 1)
	assert.Equal(t, 1.5, got.Rows[0]["score"])
}

func TestJSONSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":1}]`), 0o644))

	src, err := NewJSONSource("api_orders", path, false)
	require.NoError(t, err)
	assert.Equal(t, "api_orders", src.Name())

	tbl, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, tbl.Rows, 1)
}
