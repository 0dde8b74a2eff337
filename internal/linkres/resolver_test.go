package linkres

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SophieEDesign/marketinghub-sub007/internal/store"
	"github.com/SophieEDesign/marketinghub-sub007/internal/testutil"
	"github.com/SophieEDesign/marketinghub-sub007/pkg/core"
)

const contactsTableID = "tbl-contacts"

// newContactsFixture builds a memory store with a contacts table and a
// link field pointing at it.
func newContactsFixture(t *testing.T, multi bool) (*store.Memory, *Resolver, core.Field) {
	t.Helper()
	m := store.NewMemory()
	m.AddTable(
		core.Table{ID: contactsTableID, PhysicalStoreName: "contacts", PrimaryFieldName: "name"},
		[]core.Field{
			{ID: "fc-name", Name: "name", Type: core.FieldTypeText, Position: 0},
			{ID: "fc-email", Name: "email", Type: core.FieldTypeEmail, Position: 1},
			{ID: "fc-score", Name: "score", Type: core.FieldTypeNumber, Position: 2},
		},
	)

	rel := core.RelationshipType("")
	if multi {
		rel = core.RelationshipManyToMany
	}
	field := core.Field{
		ID:   "fd-contacts",
		Name: "contacts",
		Type: core.FieldTypeLink,
		Options: core.FieldOptions{Link: &core.LinkOptions{
			LinkedTableID:    contactsTableID,
			RelationshipType: rel,
		}},
	}
	return m, New(m, testutil.NewTestLogger(t)), field
}

func TestLinkedTableMetadata_CachesAfterFirstFetch(t *testing.T) {
	m, r, _ := newContactsFixture(t, true)

	first, err := r.LinkedTableMetadata(context.Background(), contactsTableID)
	require.NoError(t, err)
	assert.Equal(t, "contacts", first.Table.PhysicalStoreName)

	// Break the underlying store; the cache must answer.
	m.GetTableErr = errors.New("store offline")
	second, err := r.LinkedTableMetadata(context.Background(), contactsTableID)
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestLinkedTableMetadata_FailureIsRetried(t *testing.T) {
	m, r, _ := newContactsFixture(t, true)

	m.GetTableErr = errors.New("store offline")
	_, err := r.LinkedTableMetadata(context.Background(), contactsTableID)
	require.Error(t, err)

	// A failed fetch caches nothing, so recovery is observed.
	m.GetTableErr = nil
	meta, err := r.LinkedTableMetadata(context.Background(), contactsTableID)
	require.NoError(t, err)
	assert.Equal(t, "contacts", meta.Table.PhysicalStoreName)
}

func TestLinkedTableMetadata_ConcurrentCallersShareResult(t *testing.T) {
	_, r, _ := newContactsFixture(t, true)

	const callers = 16
	results := make([]*TableMetadata, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			meta, err := r.LinkedTableMetadata(context.Background(), contactsTableID)
			require.NoError(t, err)
			results[i] = meta
		}(i)
	}
	wg.Wait()

	for i := 1; i < callers; i++ {
		assert.Same(t, results[0], results[i])
	}
}

func TestDisplayField_FallbackChain(t *testing.T) {
	fields := []core.Field{
		{ID: "f-id", Name: "id", Type: core.FieldTypeText, Position: 0},
		{ID: "f-title", Name: "title", Type: core.FieldTypeText, Position: 1},
		{ID: "f-notes", Name: "notes", Type: core.FieldTypeLongText, Position: 2},
	}

	// Configured primary field wins.
	meta := &TableMetadata{Table: core.Table{PrimaryFieldName: "notes"}, Fields: fields}
	assert.Equal(t, "notes", DisplayField(meta, "").Name)

	// Configured primary of "id" is ignored; structural inference picks
	// the first non-system field.
	meta = &TableMetadata{Table: core.Table{PrimaryFieldName: "id"}, Fields: fields}
	assert.Equal(t, "title", DisplayField(meta, "").Name)

	// A stale primary name falls through to inference.
	meta = &TableMetadata{Table: core.Table{PrimaryFieldName: "renamed_away"}, Fields: fields}
	assert.Equal(t, "title", DisplayField(meta, "").Name)

	// Only system fields: no display field.
	meta = &TableMetadata{Fields: []core.Field{{ID: "f-id", Name: "id", Type: core.FieldTypeText}}}
	assert.Nil(t, DisplayField(meta, ""))
}

func TestResolveDisplay(t *testing.T) {
	m, r, field := newContactsFixture(t, true)
	a := m.SeedRow("contacts", map[string]any{"name": "Alice"})
	b := m.SeedRow("contacts", map[string]any{"name": "Bob"})

	label := r.ResolveDisplay(context.Background(), field, []string{a, b})
	assert.Equal(t, "Alice, Bob", label)
}

func TestResolveDisplay_LegacyValuesAppendedUnresolved(t *testing.T) {
	m, r, field := newContactsFixture(t, true)
	a := m.SeedRow("contacts", map[string]any{"name": "Alice"})

	label := r.ResolveDisplay(context.Background(), field, []string{a, "Old Label"})
	assert.Equal(t, "Alice, Old Label", label)
}

func TestResolveDisplay_MetadataFailureFallsBackToIDs(t *testing.T) {
	m, r, field := newContactsFixture(t, true)
	m.GetTableErr = errors.New("store offline")

	id := "0f8fad5b-d9cb-469f-a165-70867728950e"
	label := r.ResolveDisplay(context.Background(), field, id)
	assert.Equal(t, id, label)
}

func TestResolveDisplayMap_EveryInputHasAnEntry(t *testing.T) {
	m, r, field := newContactsFixture(t, true)
	a := m.SeedRow("contacts", map[string]any{"name": "Alice"})
	missing := "11111111-2222-4333-8444-555555555555"

	out := r.ResolveDisplayMap(context.Background(), field, []string{a, missing, "legacy"})
	assert.Equal(t, "Alice", out[a])
	assert.Equal(t, missing, out[missing])
	assert.Equal(t, "legacy", out["legacy"])
}

func TestResolvePastedValue_ExactMatch(t *testing.T) {
	m, r, field := newContactsFixture(t, true)
	a := m.SeedRow("contacts", map[string]any{"name": "Alice"})

	ids, errs := r.ResolvePastedValue(context.Background(), field, "Alice")
	require.Empty(t, errs)
	assert.Equal(t, []string{a}, ids)

	// Determinism: the same text resolves to the same id.
	again, _ := r.ResolvePastedValue(context.Background(), field, "Alice")
	assert.Equal(t, ids, again)
}

func TestResolvePastedValue_CanonicalIDVerified(t *testing.T) {
	m, r, field := newContactsFixture(t, true)
	a := m.SeedRow("contacts", map[string]any{"name": "Alice"})

	ids, errs := r.ResolvePastedValue(context.Background(), field, a)
	require.Empty(t, errs)
	assert.Equal(t, []string{a}, ids)

	_, errs = r.ResolvePastedValue(context.Background(), field, "0f8fad5b-d9cb-469f-a165-708677289999")
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "not found")
}

func TestResolvePastedValue_CaseInsensitiveSingleHit(t *testing.T) {
	m, r, field := newContactsFixture(t, true)
	a := m.SeedRow("contacts", map[string]any{"name": "Alice Johnson"})

	ids, errs := r.ResolvePastedValue(context.Background(), field, "alice johnson")
	require.Empty(t, errs)
	assert.Equal(t, []string{a}, ids)
}

func TestResolvePastedValue_AmbiguousFailsClosed(t *testing.T) {
	m, r, field := newContactsFixture(t, true)
	m.SeedRow("contacts", map[string]any{"name": "ALICE"})
	m.SeedRow("contacts", map[string]any{"name": "alice"})

	ids, errs := r.ResolvePastedValue(context.Background(), field, "Alice")
	assert.Nil(t, ids)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "ambiguous")
}

func TestResolvePastedValue_ExactTiebreakAmongCaseVariants(t *testing.T) {
	m, r, field := newContactsFixture(t, true)
	m.SeedRow("contacts", map[string]any{"name": "ALICE"})
	a := m.SeedRow("contacts", map[string]any{"name": "Alice"})

	// "Alice" matches both case-insensitively but exactly one exactly.
	ids, errs := r.ResolvePastedValue(context.Background(), field, "Alice")
	require.Empty(t, errs)
	assert.Equal(t, []string{a}, ids)
}

func TestResolvePastedValue_NotFound(t *testing.T) {
	_, r, field := newContactsFixture(t, true)

	ids, errs := r.ResolvePastedValue(context.Background(), field, "Nobody")
	assert.Nil(t, ids)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "no record matching")
}

func TestResolvePastedValue_SingleLinkCardinality(t *testing.T) {
	m, r, field := newContactsFixture(t, false)
	m.SeedRow("contacts", map[string]any{"name": "42"})
	m.SeedRow("contacts", map[string]any{"name": "43"})

	ids, errs := r.ResolvePastedValue(context.Background(), field, "42,43")
	assert.Nil(t, ids)
	require.Len(t, errs, 1)
	assert.Equal(t, "Single-link field cannot accept multiple values. Found: 2 records", errs[0])
}

func TestResolvePastedValue_MultiLinkList(t *testing.T) {
	m, r, field := newContactsFixture(t, true)
	a := m.SeedRow("contacts", map[string]any{"name": "Alice"})
	b := m.SeedRow("contacts", map[string]any{"name": "Bob"})

	ids, errs := r.ResolvePastedValue(context.Background(), field, "Alice\nBob")
	require.Empty(t, errs)
	assert.Equal(t, []string{a, b}, ids)
}

func TestResolvePastedValue_UnconfiguredField(t *testing.T) {
	_, r, _ := newContactsFixture(t, true)
	bare := core.Field{Name: "contacts", Type: core.FieldTypeLink}

	ids, errs := r.ResolvePastedValue(context.Background(), bare, "Alice")
	assert.Nil(t, ids)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "no target table configured")
}
