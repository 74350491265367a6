package pipeline

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mayursurani/datapipe/pkg/config"
	"github.com/mayursurani/datapipe/pkg/model"
)

type stubSource struct {
	name  string
	tbl   *model.Table
	err   error
	calls int32
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Fetch(ctx context.Context) (*model.Table, error) {
	atomic.AddInt32(&s.calls, 1)
	if s.err != nil {
		return nil, s.err
	}
	// Fresh copy per fetch so provenance stamping doesn't leak between runs.
	return s.tbl.Copy(), nil
}

func testConfig() *config.Config {
	return &config.Config{
		ChunkSize:      1000,
		RetryAttempts:  1,
		RetryDelay:     time.Millisecond,
		WorkerPoolSize: 2,
		OutputDir:      "output",
	}
}

func salesTable(name string, rows int) *model.Table {
	records := make([]model.Record, rows)
	for i := range records {
		records[i] = model.Record{"product": "Laptop", "price": 75000.5}
	}
	return model.NewTable(name, []string{"product", "price"}, records)
}

func TestPipelineRunFanOut(t *testing.T) {
	p, err := NewPipeline(testConfig())
	require.NoError(t, err)

	require.NoError(t, p.Register(&stubSource{name: "csv_sales", tbl: salesTable("sales", 3)}))
	require.NoError(t, p.Register(&stubSource{name: "api_orders", tbl: salesTable("orders", 2)}))

	tables, summary, err := p.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, tables, 2)
	assert.Equal(t, int64(5), summary.TotalRows)
	assert.Equal(t, 100.0, summary.SuccessRate())
	assert.Empty(t, summary.FailedSources)

	// Fetched tables carry provenance columns.
	sales := tables["csv_sales"]
	require.NotNil(t, sales)
	assert.Equal(t, "csv_sales", sales.Rows[0]["data_source"])
	assert.NotNil(t, sales.Rows[0]["ingested_at"])
}

func TestPipelineRunPartialFailure(t *testing.T) {
	p, err := NewPipeline(testConfig())
	require.NoError(t, err)

	broken := &stubSource{name: "broken", err: errors.New("boom")}
	require.NoError(t, p.Register(&stubSource{name: "good", tbl: salesTable("sales", 2)}))
	require.NoError(t, p.Register(broken))

	tables, summary, err := p.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, tables, 1)
	assert.Contains(t, tables, "good")
	assert.Contains(t, summary.FailedSources, "broken")
	assert.Equal(t, 50.0, summary.SuccessRate())
	assert.Equal(t, int64(2), summary.TotalRows)
}

func TestPipelineRetriesRecoverableFailures(t *testing.T) {
	p, err := NewPipeline(testConfig())
	require.NoError(t, err)

	broken := &stubSource{name: "flaky", err: errors.New("connection refused")}
	require.NoError(t, p.Register(broken))

	_, summary, err := p.Run(context.Background())
	require.NoError(t, err)

	// RetryAttempts=1 means one initial attempt plus one retry.
	assert.Equal(t, int32(2), atomic.LoadInt32(&broken.calls))
	assert.Contains(t, summary.FailedSources, "flaky")
}

func TestPipelineRegisterRejectsDuplicates(t *testing.T) {
	p, err := NewPipeline(testConfig())
	require.NoError(t, err)

	require.NoError(t, p.Register(&stubSource{name: "a", tbl: salesTable("a", 1)}))
	assert.Error(t, p.Register(&stubSource{name: "a", tbl: salesTable("a", 1)}))
	assert.Error(t, p.Register(nil))
}

func TestPipelineRunRequiresSources(t *testing.T) {
	p, err := NewPipeline(testConfig())
	require.NoError(t, err)

	_, _, err = p.Run(context.Background())
	assert.Error(t, err)
}

func TestFetchOne(t *testing.T) {
	p, err := NewPipeline(testConfig())
	require.NoError(t, err)

	require.NoError(t, p.Register(&stubSource{name: "only", tbl: salesTable("t", 4)}))

	tbl, err := p.FetchOne(context.Background(), "only")
	require.NoError(t, err)
	assert.Len(t, tbl.Rows, 4)

	_, err = p.FetchOne(context.Background(), "missing")
	assert.Error(t, err)
}

func TestMergeTables(t *testing.T) {
	tables := map[string]*model.Table{
		"a": model.NewTable("a", []string{"id", "price"}, []model.Record{{"id": int64(1), "price": 10.0}}),
		"b": model.NewTable("b", []string{"id", "region"}, []model.Record{{"id": int64(2), "region": "North"}}),
	}

	merged := MergeTables("combined", tables, []string{"a", "b"})

	assert.Equal(t, []string{"id", "price", "region"}, merged.ColumnNames())
	require.Len(t, merged.Rows, 2)
	assert.Equal(t, int64(1), merged.Rows[0]["id"])
	assert.Equal(t, "North", merged.Rows[1]["region"])
}
