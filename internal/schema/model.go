// Package schema describes the relational layout of the store and
// materializes it with idempotent CREATE ... IF NOT EXISTS statements.
package schema

import (
	"slices"

	"github.com/mdobak/go-xerrors"

	"github.com/siahsang/conduit/internal/database"
)

// Action is a referential action of a foreign key.
type Action string

const (
	NoAction Action = "NO ACTION"
	Restrict Action = "RESTRICT"
	Cascade  Action = "CASCADE"
	SetNull  Action = "SET NULL"
)

type Column struct {
	Name       string
	Type       database.ColumnType
	PrimaryKey bool
	NotNull    bool
}

type ForeignKey struct {
	Columns    []string
	RefTable   string
	RefColumns []string
	OnUpdate   Action
	OnDelete   Action
}

type Index struct {
	Name    string
	Columns []string
	Unique  bool
}

type Table struct {
	Name    string
	Columns []Column
	// PrimaryKey is set only for composite keys; a single-column key is a column flag.
	PrimaryKey  []string
	ForeignKeys []ForeignKey
	Indexes     []Index
}

func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, column := range t.Columns {
		names[i] = column.Name
	}
	return names
}

func (t Table) HasColumn(name string) bool {
	return slices.ContainsFunc(t.Columns, func(c Column) bool { return c.Name == name })
}

type RelationKind int

const (
	OneToMany RelationKind = iota
	ManyToMany
)

// Relation links two tables. For OneToMany, To.ToColumn references
// From.FromColumn. For ManyToMany, Through holds one row per pair, with
// ThroughFrom referencing From.FromColumn and ThroughTo referencing To.ToColumn.
type Relation struct {
	Name        string
	Kind        RelationKind
	From        string
	FromColumn  string
	To          string
	ToColumn    string
	Through     string
	ThroughFrom string
	ThroughTo   string
}

// TableBuilder assembles a Table column by column.
type TableBuilder struct {
	table Table
}

type ColumnOption func(*Column)

func NotNull(c *Column) { c.NotNull = true }

func NewTable(name string) *TableBuilder {
	return &TableBuilder{table: Table{Name: name}}
}

func (b *TableBuilder) Column(name string, columnType database.ColumnType, options ...ColumnOption) *TableBuilder {
	column := Column{Name: name, Type: columnType}
	for _, option := range options {
		option(&column)
	}
	b.table.Columns = append(b.table.Columns, column)
	return b
}

// PrimaryKey marks the key columns, which are always NOT NULL.
func (b *TableBuilder) PrimaryKey(columns ...string) *TableBuilder {
	for i := range b.table.Columns {
		if slices.Contains(columns, b.table.Columns[i].Name) {
			b.table.Columns[i].NotNull = true
			b.table.Columns[i].PrimaryKey = len(columns) == 1
		}
	}
	if len(columns) > 1 {
		b.table.PrimaryKey = columns
	}
	return b
}

func (b *TableBuilder) References(column, refTable, refColumn string) *TableBuilder {
	return b.ForeignKey(ForeignKey{Columns: []string{column}, RefTable: refTable, RefColumns: []string{refColumn}})
}

func (b *TableBuilder) ForeignKey(key ForeignKey) *TableBuilder {
	b.table.ForeignKeys = append(b.table.ForeignKeys, key)
	return b
}

func (b *TableBuilder) Index(name string, columns ...string) *TableBuilder {
	b.table.Indexes = append(b.table.Indexes, Index{Name: name, Columns: columns})
	return b
}

func (b *TableBuilder) UniqueIndex(name string, columns ...string) *TableBuilder {
	b.table.Indexes = append(b.table.Indexes, Index{Name: name, Columns: columns, Unique: true})
	return b
}

func (b *TableBuilder) Build() Table {
	return b.table
}

var (
	ErrUnknownTable  = xerrors.Message("unknown table")
	ErrUnknownColumn = xerrors.Message("unknown column")
	ErrCyclicSchema  = xerrors.Message("cyclic foreign keys")
)

// Validate checks that every key, index and relation names declared tables and columns.
func Validate(tables []Table, relations []Relation) error {
	byName := make(map[string]Table, len(tables))
	for _, table := range tables {
		byName[table.Name] = table
	}

	hasColumn := func(tableName, column string) error {
		table, ok := byName[tableName]
		if !ok {
			return xerrors.Newf("%w: %s", ErrUnknownTable, tableName)
		}
		if !table.HasColumn(column) {
			return xerrors.Newf("%w: %s.%s", ErrUnknownColumn, tableName, column)
		}
		return nil
	}

	for _, table := range tables {
		for _, column := range table.PrimaryKey {
			if err := hasColumn(table.Name, column); err != nil {
				return err
			}
		}
		for _, key := range table.ForeignKeys {
			for i, column := range key.Columns {
				if err := hasColumn(table.Name, column); err != nil {
					return err
				}
				if err := hasColumn(key.RefTable, key.RefColumns[i]); err != nil {
					return err
				}
			}
		}
		for _, index := range table.Indexes {
			for _, column := range index.Columns {
				if err := hasColumn(table.Name, column); err != nil {
					return err
				}
			}
		}
	}

	for _, relation := range relations {
		if err := hasColumn(relation.From, relation.FromColumn); err != nil {
			return err
		}
		if err := hasColumn(relation.To, relation.ToColumn); err != nil {
			return err
		}
		if relation.Kind == ManyToMany {
			if err := hasColumn(relation.Through, relation.ThroughFrom); err != nil {
				return err
			}
			if err := hasColumn(relation.Through, relation.ThroughTo); err != nil {
				return err
			}
		}
	}

	return nil
}

// Ordered returns the tables so that every referenced table precedes the
// tables referencing it. Ties keep the declared order.
func Ordered(tables []Table) ([]Table, error) {
	ordered := make([]Table, 0, len(tables))
	placed := make(map[string]bool, len(tables))

	for len(ordered) < len(tables) {
		progressed := false
		for _, table := range tables {
			if placed[table.Name] || !dependenciesPlaced(table, placed) {
				continue
			}
			ordered = append(ordered, table)
			placed[table.Name] = true
			progressed = true
		}
		if !progressed {
			return nil, xerrors.New(ErrCyclicSchema)
		}
	}

	return ordered, nil
}

func dependenciesPlaced(table Table, placed map[string]bool) bool {
	for _, key := range table.ForeignKeys {
		if key.RefTable != table.Name && !placed[key.RefTable] {
			return false
		}
	}
	return true
}
