package sink

import (
	"context"
	"database/sql"
	"fmt"

	"plugin-harvester/internal/fieldmap"
	"plugin-harvester/pkg/migrations"
)

const DefaultTable = "plugins"

// Relational writes the records into a table that is dropped and recreated on every
// write, all columns are TEXT. The database is picked from the DSN, see
// migrations.ParseDSN.
type Relational struct {
	dsn     string
	source  string
	table   string
	dialect migrations.Dialect
}

func NewRelational(dsn, table string) Relational {
	if table == "" {
		table = DefaultTable
	}
	dialect, source := migrations.ParseDSN(dsn)
	return Relational{
		dsn:     dsn,
		source:  source,
		table:   table,
		dialect: dialect,
	}
}

func (r Relational) Name() string {
	return fmt.Sprintf("%s(%s)", r.dialect.Driver, r.table)
}

func (r Relational) Table() string {
	return r.table
}

func (r Relational) open() (*sql.DB, error) {
	return migrations.OpenDB(r.dialect, r.source)
}

func (r Relational) Write(ctx context.Context, columns []string, rows []fieldmap.FlatRecord) error {
	db, err := r.open()
	if err != nil {
		return fmt.Errorf("%s: %w", r.Name(), err)
	}
	defer db.Close()

	err = r.write(ctx, db, columns, rows)
	if err != nil {
		return fmt.Errorf("%s: %w", r.Name(), err)
	}
	return nil
}

func (r Relational) write(ctx context.Context, db *sql.DB, columns []string, rows []fieldmap.FlatRecord) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// mysql commits DROP and CREATE implicitly, a failed insert there leaves a partial table
	err = r.dialect.RecreateTable(ctx, tx, r.table, columns)
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, r.dialect.Insert(r.table, columns))
	if err != nil {
		return err
	}
	defer stmt.Close()

	args := make([]any, len(columns))
	for i, row := range rows {
		for j := range args {
			args[j] = ""
			if j < len(row) {
				args[j] = row[j]
			}
		}
		_, err = stmt.ExecContext(ctx, args...)
		if err != nil {
			return fmt.Errorf("insert row %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// Read returns every row of the table with the given columns, in insertion order
// where the database preserves it.
func (r Relational) Read(ctx context.Context, columns []string) ([]fieldmap.FlatRecord, error) {
	db, err := r.open()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", r.Name(), err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, r.dialect.Select(r.table, columns))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", r.Name(), err)
	}
	defer rows.Close()

	var out []fieldmap.FlatRecord
	for rows.Next() {
		values := make([]sql.NullString, len(columns))
		dest := make([]any, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}
		err = rows.Scan(dest...)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", r.Name(), err)
		}

		row := make(fieldmap.FlatRecord, len(columns))
		for i, v := range values {
			row[i] = v.String
		}
		out = append(out, row)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", r.Name(), err)
	}
	return out, nil
}
