package schema

import (
	"fmt"
	"strings"

	"github.com/siahsang/conduit/internal/database"
)

// CreateTableSQL renders one CREATE TABLE IF NOT EXISTS statement: columns
// first, then the composite primary key, then foreign keys.
func CreateTableSQL(dialect database.Dialect, table Table) string {
	definitions := make([]string, 0, len(table.Columns)+len(table.ForeignKeys)+1)

	for _, column := range table.Columns {
		definitions = append(definitions, columnSQL(dialect, column))
	}
	if len(table.PrimaryKey) > 0 {
		definitions = append(definitions, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(table.PrimaryKey, ", ")))
	}
	for _, key := range table.ForeignKeys {
		definitions = append(definitions, foreignKeySQL(key))
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)", table.Name, strings.Join(definitions, ",\n\t"))
}

func CreateIndexSQL(table Table, index Index) string {
	fragments := []string{"CREATE"}
	if index.Unique {
		fragments = append(fragments, "UNIQUE")
	}
	fragments = append(fragments,
		"INDEX IF NOT EXISTS", index.Name,
		"ON", table.Name,
		fmt.Sprintf("(%s)", strings.Join(index.Columns, ", ")))

	return strings.Join(fragments, " ")
}

func columnSQL(dialect database.Dialect, column Column) string {
	fragments := []string{column.Name, dialect.TypeName(column.Type)}
	if column.PrimaryKey {
		fragments = append(fragments, "PRIMARY KEY")
	}
	if column.NotNull {
		fragments = append(fragments, "NOT NULL")
	}
	return strings.Join(fragments, " ")
}

func foreignKeySQL(key ForeignKey) string {
	fragments := []string{
		"FOREIGN KEY",
		fmt.Sprintf("(%s)", strings.Join(key.Columns, ", ")),
		"REFERENCES",
		key.RefTable,
		fmt.Sprintf("(%s)", strings.Join(key.RefColumns, ", ")),
	}
	if key.OnUpdate != "" {
		fragments = append(fragments, "ON UPDATE", string(key.OnUpdate))
	}
	if key.OnDelete != "" {
		fragments = append(fragments, "ON DELETE", string(key.OnDelete))
	}
	return strings.Join(fragments, " ")
}
