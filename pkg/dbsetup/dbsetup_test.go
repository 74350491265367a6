package dbsetup

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mayursurani/datapipe/pkg/config"
	"github.com/mayursurani/datapipe/pkg/connector"
)

func openTestDB(t *testing.T) *connector.SQLiteConnector {
	t.Helper()
	conn, err := connector.NewSQLiteConnector(context.Background(), &config.SQLiteConfig{
		Path: filepath.Join(t.TempDir(), "sample.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestNewSetupValidation(t *testing.T) {
	_, err := NewSetup(nil, DialectSQLite)
	assert.Error(t, err)

	_, err = NewSetup(openTestDB(t), "mysql")
	assert.Error(t, err)
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "$1, $2, $3", placeholders(DialectPostgres, 3))
	assert.Equal(t, "?, ?", placeholders(DialectSQLite, 2))
	assert.Equal(t, "", placeholders(DialectSQLite, 0))
}

func TestRunProvisionsSampleDatabase(t *testing.T) {
	conn := openTestDB(t)
	setup, err := NewSetup(conn, DialectSQLite)
	require.NoError(t, err)

	counts, err := setup.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(len(sampleCategories)), counts["categories"])
	assert.Equal(t, int64(len(sampleProducts)), counts["products"])
	assert.Equal(t, int64(sampleCustomerCount), counts["customers"])

	// Each customer places 1-5 orders with 1-4 items apiece.
	assert.GreaterOrEqual(t, counts["orders"], int64(sampleCustomerCount))
	assert.LessOrEqual(t, counts["orders"], int64(sampleCustomerCount*5))
	assert.GreaterOrEqual(t, counts["order_items"], counts["orders"])
}

func TestSampleDataIntegrity(t *testing.T) {
	conn := openTestDB(t)
	setup, err := NewSetup(conn, DialectSQLite)
	require.NoError(t, err)

	_, err = setup.Run(context.Background())
	require.NoError(t, err)

	// Every order has items and its total matches their line totals.
	var mismatched int
	row := conn.DB().QueryRow(`
		SELECT COUNT(*) FROM orders o
		WHERE ABS(o.total_amount - (
			SELECT COALESCE(SUM(i.line_total), -1) FROM order_items i WHERE i.order_id = o.order_id
		)) > 0.01`)
	require.NoError(t, row.Scan(&mismatched))
	assert.Zero(t, mismatched)

	// Every order item references a real product.
	var orphans int
	row = conn.DB().QueryRow(`
		SELECT COUNT(*) FROM order_items i
		LEFT JOIN products p ON p.product_id = i.product_id
		WHERE p.product_id IS NULL`)
	require.NoError(t, row.Scan(&orphans))
	assert.Zero(t, orphans)
}

func TestRunIsRepeatable(t *testing.T) {
	conn := openTestDB(t)

	setup, err := NewSetup(conn, DialectSQLite)
	require.NoError(t, err)
	first, err := setup.Run(context.Background())
	require.NoError(t, err)

	// A fresh provisioner reseeds the rng, so a second run rebuilds the
	// identical dataset on top of the dropped tables.
	setup, err = NewSetup(conn, DialectSQLite)
	require.NoError(t, err)
	second, err := setup.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
