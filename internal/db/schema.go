package db

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
)

// Queryer is satisfied by *sql.DB, *sql.Tx and sqlmock connections.
type Queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,63}$`)

// Ident quotes a table/column name. Names come from config and probes, never from request input,
// but anything outside [A-Za-z0-9_] is still rejected.
func Ident(name string) (string, error) {
	if !identRe.MatchString(name) {
		return "", fmt.Errorf("invalid identifier %q", name)
	}
	return "`" + name + "`", nil
}

// Schema is the column set of one table as seen by a zero-row probe.
type Schema struct {
	Table   string
	Columns []string
	Types   map[string]string
	set     map[string]bool
}

func NewSchema(table string, columns []string, types map[string]string) Schema {
	set := make(map[string]bool, len(columns))
	for _, c := range columns {
		set[strings.ToLower(c)] = true
	}
	if types == nil {
		types = map[string]string{}
	}
	return Schema{Table: table, Columns: columns, Types: types, set: set}
}

// Known reports whether the column set was actually introspected.
// An unknown schema accepts every column.
func (s Schema) Known() bool {
	return s.set != nil
}

func (s Schema) Has(column string) bool {
	if !s.Known() {
		return true
	}
	return s.set[strings.ToLower(column)]
}

// IsIntegerColumn reports whether the probe saw an integer type for column.
func (s Schema) IsIntegerColumn(column string) bool {
	t := strings.ToUpper(s.Types[column])
	return strings.Contains(t, "INT")
}

// ProbeColumns runs `SELECT * FROM t LIMIT 0` and reads the result set's column metadata.
// A missing or inaccessible table surfaces as an error.
func ProbeColumns(ctx context.Context, q Queryer, table string) (Schema, error) {
	quoted, err := Ident(table)
	if err != nil {
		return Schema{}, err
	}
	rows, err := q.QueryContext(ctx, "SELECT * FROM "+quoted+" LIMIT 0")
	if err != nil {
		return Schema{}, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return Schema{}, err
	}
	types := map[string]string{}
	if cts, err := rows.ColumnTypes(); err == nil {
		for _, ct := range cts {
			if name := ct.DatabaseTypeName(); name != "" {
				types[ct.Name()] = name
			}
		}
	}
	return NewSchema(table, cols, types), rows.Err()
}

// HasTable checks information_schema for the table in the current database.
func HasTable(ctx context.Context, q Queryer, table string) bool {
	var name sql.NullString
	err := q.QueryRowContext(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = DATABASE()
		  AND table_name = ?
		LIMIT 1
	`, table).Scan(&name)
	if err != nil {
		return false
	}
	return name.Valid && name.String != ""
}

func HasColumn(ctx context.Context, q Queryer, table, column string) bool {
	var name sql.NullString
	err := q.QueryRowContext(ctx, `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_schema = DATABASE()
		  AND table_name = ?
		  AND column_name = ?
		LIMIT 1
	`, table, column).Scan(&name)
	if err != nil {
		return false
	}
	return name.Valid && name.String != ""
}

// Placeholders returns "?, ?, ?" for n values.
func Placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
