package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SophieEDesign/marketinghub-sub007/internal/testutil"
	"github.com/SophieEDesign/marketinghub-sub007/pkg/core"
)

func openTestSQLite(t *testing.T) *SQLite {
	t.Helper()
	ctx := context.Background()
	s, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "hub.db"), testutil.NewTestLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.InitCatalog(ctx))
	return s
}

func TestSQLiteCatalogRoundTrip(t *testing.T) {
	s := openTestSQLite(t)
	ctx := context.Background()

	_, err := s.InsertRow(ctx, "hub_tables", map[string]any{
		"id":                  "t-deals",
		"physical_store_name": "crm_deals",
		"primary_field_name":  "name",
	})
	require.NoError(t, err)
	_, err = s.InsertRow(ctx, "hub_fields", map[string]any{
		"id":       "f-contacts",
		"table_id": "t-deals",
		"name":     "contacts",
		"type":     "link_to_table",
		"position": 1,
		"options":  `{"linked_table_id": "t-contacts", "relationship_type": "one-to-many"}`,
	})
	require.NoError(t, err)

	table, err := s.GetTable(ctx, "t-deals")
	require.NoError(t, err)
	assert.Equal(t, "crm_deals", table.PhysicalStoreName)
	assert.Equal(t, "name", table.PrimaryFieldName)

	fields, err := s.ListFields(ctx, "t-deals")
	require.NoError(t, err)
	require.Len(t, fields, 1)
	require.NotNil(t, fields[0].Options.Link)
	assert.Equal(t, "t-contacts", fields[0].Options.Link.LinkedTableID)

	_, err = s.GetTable(ctx, "missing")
	require.ErrorIs(t, err, core.ErrTableNotFound)
}

func TestSQLiteCaseInsensitiveSearch(t *testing.T) {
	s := openTestSQLite(t)
	ctx := context.Background()

	_, err := s.DB.ExecContext(ctx, `CREATE TABLE crm_deals (id TEXT PRIMARY KEY, name TEXT)`)
	require.NoError(t, err)
	_, err = s.InsertRow(ctx, "crm_deals", map[string]any{"id": "r1", "name": "Acme Corp"})
	require.NoError(t, err)
	_, err = s.InsertRow(ctx, "crm_deals", map[string]any{"id": "r2", "name": "Beta LLC"})
	require.NoError(t, err)

	rows, err := s.SelectRows(ctx, core.SelectQuery{
		Table:   "crm_deals",
		Filters: []core.Filter{core.ILike("name", "acme%")},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "r1", rows[0]["id"])
}

func TestSQLiteUpdateMissingRow(t *testing.T) {
	s := openTestSQLite(t)
	ctx := context.Background()

	_, err := s.DB.ExecContext(ctx, `CREATE TABLE crm_deals (id TEXT PRIMARY KEY, name TEXT)`)
	require.NoError(t, err)

	err = s.UpdateRow(ctx, "crm_deals", "missing", map[string]any{"name": "x"})
	require.ErrorIs(t, err, core.ErrRowNotFound)
}
