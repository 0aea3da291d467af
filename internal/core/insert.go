package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/mdobak/go-xerrors"

	"github.com/siahsang/conduit/internal/schema"
	"github.com/siahsang/conduit/internal/utils/databaseutils"
)

// record holds one row by column name.
type record map[string]any

// rowValues orders a record by the columns of table. The record must carry
// exactly those columns.
func rowValues(table schema.Table, r record) ([]any, error) {
	columns := table.ColumnNames()
	if len(r) != len(columns) {
		return nil, xerrors.Newf("%s: record has %d values for %d columns", table.Name, len(r), len(columns))
	}

	values := make([]any, len(columns))
	for i, column := range columns {
		value, ok := r[column]
		if !ok {
			return nil, xerrors.Newf("%s: record has no value for column %s", table.Name, column)
		}
		values[i] = value
	}
	return values, nil
}

// insertRecords inserts records in one statement, skipping rows that collide
// with an existing key. The statement looks like:
// INSERT INTO tagged (article_id, tag) VALUES ($1, $2), ($3, $4) ON CONFLICT DO NOTHING
func (c *Core) insertRecords(ctx context.Context, tableName string, records []record) error {
	if len(records) == 0 {
		return nil
	}

	table, ok := schema.Lookup(tableName)
	if !ok {
		return xerrors.Newf("insert into %s: %w", tableName, schema.ErrUnknownTable)
	}

	valueStrings := make([]string, 0, len(records))
	valueArgs := make([]any, 0, len(records)*len(table.Columns))
	for _, r := range records {
		values, err := rowValues(table, r)
		if err != nil {
			return xerrors.Newf("insert into %w", err)
		}
		placeholders := make([]string, len(values))
		for i, value := range values {
			valueArgs = append(valueArgs, value)
			placeholders[i] = fmt.Sprintf("$%d", len(valueArgs))
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ", ")+")")
	}

	insertSQL := fmt.Sprintf(`INSERT INTO %s (%s) VALUES %s ON CONFLICT DO NOTHING`,
		table.Name, strings.Join(table.ColumnNames(), ", "), strings.Join(valueStrings, ", "))

	if _, err := databaseutils.Execute(c.sqlTemplate, ctx, insertSQL, valueArgs...); err != nil {
		return xerrors.Newf("insert into %s: %w", table.Name, err)
	}
	return nil
}
