package connector

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mayursurani/datapipe/pkg/config"
)

func openTestConnector(t *testing.T) *SQLiteConnector {
	t.Helper()

	conn, err := NewSQLiteConnector(context.Background(), &config.SQLiteConfig{
		Path: filepath.Join(t.TempDir(), "connector_test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestSQLiteQueryWithTimeoutOutlivesReturn(t *testing.T) {
	conn := openTestConnector(t)
	ctx := context.Background()

	_, err := conn.ExecWithTimeout(ctx, "CREATE TABLE items (id INTEGER PRIMARY KEY, name TEXT)", 5*time.Second)
	require.NoError(t, err)
	for _, name := range []string{"pen", "book", "lamp"} {
		_, err := conn.ExecWithTimeout(ctx, "INSERT INTO items (name) VALUES (?)", 5*time.Second, name)
		require.NoError(t, err)
	}

	rows, err := conn.QueryWithTimeout(ctx, "SELECT id, name FROM items ORDER BY id", 5*time.Second)
	require.NoError(t, err)
	defer rows.Close()

	// Consume the rows slowly after QueryWithTimeout has returned; the
	// query context must stay live for the whole iteration.
	var names []string
	for rows.Next() {
		var id int64
		var name string
		require.NoError(t, rows.Scan(&id, &name))
		names = append(names, name)
		time.Sleep(20 * time.Millisecond)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"pen", "book", "lamp"}, names)
}

func TestSQLiteQueryWithTimeoutCancelledParent(t *testing.T) {
	conn := openTestConnector(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := conn.QueryWithTimeout(ctx, "SELECT 1", 5*time.Second)
	assert.Error(t, err)
}
