package migrations

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Dialect holds the parts of SQL that differ between the supported databases.
type Dialect struct {
	Driver string
	// Quote wraps an identifier so that it can be used as a table or column name.
	Quote func(ident string) string
	// Placeholder returns the bind parameter for the n-th (1-based) argument.
	Placeholder func(n int) string
}

func doubleQuote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func backtick(ident string) string {
	return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
}

func questionMark(int) string {
	return "?"
}

func dollar(n int) string {
	return fmt.Sprintf("$%d", n)
}

var (
	SQLite   = Dialect{Driver: "sqlite", Quote: doubleQuote, Placeholder: questionMark}
	LibSQL   = Dialect{Driver: "libsql", Quote: doubleQuote, Placeholder: questionMark}
	Postgres = Dialect{Driver: "postgres", Quote: doubleQuote, Placeholder: dollar}
	MySQL    = Dialect{Driver: "mysql", Quote: backtick, Placeholder: questionMark}
)

func (d Dialect) columnList(columns []string) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = d.Quote(c)
	}
	return strings.Join(quoted, ", ")
}

// CreateTable returns the DDL for a table with every column typed as TEXT.
func (d Dialect) CreateTable(table string, columns []string) string {
	defs := make([]string, len(columns))
	for i, c := range columns {
		defs[i] = fmt.Sprintf("%s TEXT", d.Quote(c))
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", d.Quote(table), strings.Join(defs, ", "))
}

func (d Dialect) DropTable(table string) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s", d.Quote(table))
}

func (d Dialect) Insert(table string, columns []string) string {
	placeholders := make([]string, len(columns))
	for i := range columns {
		placeholders[i] = d.Placeholder(i + 1)
	}
	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		d.Quote(table),
		d.columnList(columns),
		strings.Join(placeholders, ", "),
	)
}

func (d Dialect) Select(table string, columns []string) string {
	return fmt.Sprintf("SELECT %s FROM %s", d.columnList(columns), d.Quote(table))
}

// RecreateTable drops the table if it exists and creates it again with the given columns.
func (d Dialect) RecreateTable(ctx context.Context, tx *sql.Tx, table string, columns []string) error {
	_, err := tx.ExecContext(ctx, d.DropTable(table))
	if err != nil {
		return fmt.Errorf("drop table %s: %w", table, err)
	}
	_, err = tx.ExecContext(ctx, d.CreateTable(table, columns))
	if err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}
	return nil
}
