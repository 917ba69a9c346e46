package migrations

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDSN(t *testing.T) {
	testCases := []struct {
		dsn    string
		driver string
		source string
	}{
		{dsn: "plugins.db", driver: "sqlite", source: "plugins.db"},
		{dsn: "sqlite://out/plugins.db", driver: "sqlite", source: "out/plugins.db"},
		{dsn: "file:plugins.db?cache=shared", driver: "sqlite", source: "file:plugins.db?cache=shared"},
		{dsn: "libsql://db.turso.io?authToken=x", driver: "libsql", source: "libsql://db.turso.io?authToken=x"},
		{dsn: "http://127.0.0.1:8080", driver: "libsql", source: "http://127.0.0.1:8080"},
		{dsn: "postgres://u:p@localhost/db", driver: "postgres", source: "postgres://u:p@localhost/db"},
		{dsn: "postgresql://localhost/db", driver: "postgres", source: "postgresql://localhost/db"},
		{dsn: "mysql://u:p@tcp(localhost:3306)/db", driver: "mysql", source: "u:p@tcp(localhost:3306)/db"},
	}
	for _, test := range testCases {
		dialect, source := ParseDSN(test.dsn)
		require.Equal(t, test.driver, dialect.Driver, test.dsn)
		require.Equal(t, test.source, source, test.dsn)
	}
}

func TestDialectStatements(t *testing.T) {
	columns := []string{"id", "weird\"name"}

	require.Equal(t,
		`CREATE TABLE "plugins" ("id" TEXT, "weird""name" TEXT)`,
		SQLite.CreateTable("plugins", columns),
	)
	require.Equal(t,
		`INSERT INTO "plugins" ("id", "weird""name") VALUES ($1, $2)`,
		Postgres.Insert("plugins", columns),
	)
	require.Equal(t,
		"INSERT INTO `plugins` (`id`, `weird\"name`) VALUES (?, ?)",
		MySQL.Insert("plugins", columns),
	)
	require.Equal(t, `DROP TABLE IF EXISTS "plugins"`, LibSQL.DropTable("plugins"))
}

func TestRecreateTable(t *testing.T) {
	db, err := OpenDB(SQLite, filepath.Join(t.TempDir(), "nested", "test.db"))
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		tx, err := db.BeginTx(ctx, nil)
		require.NoError(t, err)
		require.NoError(t, SQLite.RecreateTable(ctx, tx, "plugins", []string{"id", "name"}))
		_, err = tx.ExecContext(ctx, SQLite.Insert("plugins", []string{"id", "name"}), "1", "a")
		require.NoError(t, err)
		require.NoError(t, tx.Commit())
	}

	var count int
	err = db.QueryRow(`SELECT COUNT(*) FROM "plugins"`).Scan(&count)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestOpenDBMemory(t *testing.T) {
	db, err := OpenDB(SQLite, ":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Close())
}
