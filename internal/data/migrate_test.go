package data

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMigrateCreatesSchema(t *testing.T) {
	db := newTestDB(t)

	v, err := SchemaVersion(db)
	require.NoError(t, err)
	require.Equal(t, LatestVersion(), v)

	for _, table := range []string{
		"customer", "product", "product_variation", "product_link", "quotation", "quote_item",
		"payment", "company_settings", "employee", "assignment", "schema_migration",
	} {
		require.Truef(t, tableExists(t, db, table), "expected table %s to exist", table)
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))

	pending, err := PendingMigrations(db)
	require.NoError(t, err)
	require.Empty(t, pending)

	var n int
	require.NoError(t, db.Get(&n, `SELECT COUNT(*) FROM schema_migration`))
	require.Equal(t, len(Migrations()), n)
}

func TestMigrationFailureLeavesNoPartialSchema(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "curtains.db"))
	require.NoError(t, err)
	defer func() { require.NoError(t, db.Close()) }()

	xs := []Migration{
		{Version: 1, Name: "a", SQL: `CREATE TABLE a (a_id INTEGER PRIMARY KEY);`},
		{Version: 2, Name: "broken", SQL: `CREATE TABLE b (b_id INTEGER PRIMARY KEY); CREATE TABLE oops (;`},
	}
	err = runMigrations(db, xs)
	require.Error(t, err)
	require.Contains(t, err.Error(), "broken")

	v, err := SchemaVersion(db)
	require.NoError(t, err)
	require.Equal(t, 1, v)
	require.True(t, tableExists(t, db, "a"))
	require.False(t, tableExists(t, db, "b"))

	xs[1].SQL = `CREATE TABLE b (b_id INTEGER PRIMARY KEY);`
	require.NoError(t, runMigrations(db, xs))
	require.True(t, tableExists(t, db, "b"))
}

func TestMigrationsAreOrdered(t *testing.T) {
	xs := Migrations()
	for i := 1; i < len(xs); i++ {
		require.Less(t, xs[i-1].Version, xs[i].Version)
	}
}
