// pkg/cleaner/tracking.go

package cleaner

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mayursurani/datapipe/pkg/model"
)

// Tracker persists cleaning operations to a cleaning_log table so every
// modification made during ingestion stays auditable.
type Tracker struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewTracker creates a tracker and ensures the cleaning_log table exists.
func NewTracker(db *sql.DB) (*Tracker, error) {
	if db == nil {
		return nil, errors.New("database connection cannot be nil")
	}

	t := &Tracker{
		db:     db,
		logger: zap.L().Named("cleaner.tracker"),
	}
	if err := t.setupTable(); err != nil {
		return nil, fmt.Errorf("failed to setup cleaning_log table: %w", err)
	}
	return t, nil
}

func (t *Tracker) setupTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	createTableSQL := `
		CREATE TABLE IF NOT EXISTS public.cleaning_log (
			id SERIAL PRIMARY KEY,
			table_name TEXT NOT NULL,
			column_name TEXT NOT NULL,
			original_value TEXT,
			new_value TEXT NOT NULL,
			row_identifier TEXT NOT NULL,
			operation TEXT NOT NULL,
			reason TEXT NOT NULL,
			cleaned_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
		)
	`
	if _, err := t.db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("failed to create tracking table: %w", err)
	}

	t.logger.Info("ensured cleaning_log table exists")
	return nil
}

// Record batch inserts cleaning operations inside a transaction.
func (t *Tracker) Record(ctx context.Context, operations []model.CleaningOperation) error {
	if len(operations) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				t.logger.Error("failed to rollback transaction",
					zap.Error(rbErr),
					zap.NamedError("cause", err))
			}
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO public.cleaning_log
		(table_name, column_name, original_value, new_value,
		 row_identifier, operation, reason, cleaned_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, op := range operations {
		_, err = stmt.ExecContext(ctx,
			op.TableName,
			op.ColumnName,
			toNullableString(op.OriginalValue),
			op.NewValue,
			op.RowIdentifier,
			op.Operation,
			op.Reason,
			op.CleanedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert cleaning operation: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	t.logger.Info("recorded cleaning operations", zap.Int("count", len(operations)))
	return nil
}

// toNullableString keeps SQL nulls distinct from empty strings.
func toNullableString(v interface{}) *string {
	if v == nil {
		return nil
	}
	s := fmt.Sprintf("%v", v)
	return &s
}
