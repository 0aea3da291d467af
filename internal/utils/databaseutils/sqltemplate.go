package databaseutils

import (
	"context"
	"database/sql"
	"time"
)

// SQLTemplate runs statements on the executor found in the context (the
// active transaction, if any) and bounds each one with Timeout.
type SQLTemplate struct {
	DB      *sql.DB
	Timeout time.Duration
}

func NewSQLTemplate(db *sql.DB, timeout time.Duration) *SQLTemplate {
	return &SQLTemplate{
		DB:      db,
		Timeout: timeout,
	}
}

func (sqlTemplate *SQLTemplate) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if sqlTemplate.Timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, sqlTemplate.Timeout)
}

func ExecuteQuery[T any](sqlTemplate *SQLTemplate, ctx context.Context, sql string, extractor func(rows *sql.Rows) (T, error), args ...any) ([]T, error) {
	ctx, cancel := sqlTemplate.withTimeout(ctx)
	defer cancel()
	rows, err := GetSQLExecutor(ctx, sqlTemplate.DB).QueryContext(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []T
	for rows.Next() {
		t, err := extractor(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return results, nil
}

// ExecuteSingleQuery returns the first row, or sql.ErrNoRows when there is none.
func ExecuteSingleQuery[T any](sqlTemplate *SQLTemplate, ctx context.Context, query string, extractor func(rows *sql.Rows) (T, error), args ...any) (T, error) {
	var zero T
	results, err := ExecuteQuery(sqlTemplate, ctx, query, extractor, args...)
	if err != nil {
		return zero, err
	}
	if len(results) == 0 {
		return zero, sql.ErrNoRows
	}
	return results[0], nil
}

// ExecuteCount scans a single integer, as returned by SELECT COUNT(*).
func ExecuteCount(sqlTemplate *SQLTemplate, ctx context.Context, query string, args ...any) (int64, error) {
	ctx, cancel := sqlTemplate.withTimeout(ctx)
	defer cancel()

	var count int64
	if err := GetSQLExecutor(ctx, sqlTemplate.DB).QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// Execute runs a statement that returns no rows and reports the affected row count.
func Execute(sqlTemplate *SQLTemplate, ctx context.Context, query string, args ...any) (int64, error) {
	ctx, cancel := sqlTemplate.withTimeout(ctx)
	defer cancel()

	result, err := GetSQLExecutor(ctx, sqlTemplate.DB).ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
