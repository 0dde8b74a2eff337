package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SophieEDesign/marketinghub-sub007/internal/linkres"
	"github.com/SophieEDesign/marketinghub-sub007/internal/reciprocal"
	"github.com/SophieEDesign/marketinghub-sub007/internal/store"
	"github.com/SophieEDesign/marketinghub-sub007/internal/testutil"
	"github.com/SophieEDesign/marketinghub-sub007/pkg/core"
)

func newTestContext(t *testing.T) (*commandContext, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	logger := testutil.NewTestLogger(t)
	resolver := linkres.New(mem, logger)
	return &commandContext{
		Store:    mem,
		Resolver: resolver,
		Sync:     reciprocal.New(mem, resolver, logger),
		Logger:   logger,
	}, mem
}

func seedDealsTable(t *testing.T, mem *store.Memory) (r1, r2 string) {
	t.Helper()
	mem.AddTable(
		core.Table{ID: "t-deals", PhysicalStoreName: "crm_deals", PrimaryFieldName: "name"},
		[]core.Field{
			{ID: "f-name", Name: "name", Type: core.FieldTypeText, Position: 1, Required: true},
			{ID: "f-amount", Name: "amount", Type: core.FieldTypeNumber, Position: 2},
		},
	)
	r1 = mem.SeedRow("crm_deals", map[string]any{"name": "Old A", "amount": 1.0})
	r2 = mem.SeedRow("crm_deals", map[string]any{"name": "Old B", "amount": 2.0})
	return r1, r2
}

func TestPasteGridFromAnchorCell(t *testing.T) {
	cc, mem := newTestContext(t)
	r1, r2 := seedDealsTable(t, mem)

	var out bytes.Buffer
	target := pasteTarget{anchorRow: r1, anchorCol: "f-name"}
	err := runPaste(context.Background(), cc, "t-deals", target,
		strings.NewReader("Acme\t100\nBeta\t200\n"), &out)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "4 applied, 0 failed")
	assert.Equal(t, "Acme", mem.Row("crm_deals", r1)["name"])
	assert.Equal(t, 100.0, mem.Row("crm_deals", r1)["amount"])
	assert.Equal(t, "Beta", mem.Row("crm_deals", r2)["name"])
	assert.Equal(t, 200.0, mem.Row("crm_deals", r2)["amount"])
}

func TestPasteColumnSelection(t *testing.T) {
	cc, mem := newTestContext(t)
	r1, r2 := seedDealsTable(t, mem)

	var out bytes.Buffer
	target := pasteTarget{column: "f-amount"}
	err := runPaste(context.Background(), cc, "t-deals", target,
		strings.NewReader("10\n20\n"), &out)
	require.NoError(t, err)

	assert.Equal(t, 10.0, mem.Row("crm_deals", r1)["amount"])
	assert.Equal(t, 20.0, mem.Row("crm_deals", r2)["amount"])
}

func TestPasteReportsCellErrors(t *testing.T) {
	cc, mem := newTestContext(t)
	r1, _ := seedDealsTable(t, mem)

	var out bytes.Buffer
	target := pasteTarget{anchorRow: r1, anchorCol: "f-amount"}
	err := runPaste(context.Background(), cc, "t-deals", target,
		strings.NewReader("not-a-number\n"), &out)
	require.Error(t, err)

	assert.Contains(t, err.Error(), "1 of 1 cells failed")
	assert.Contains(t, out.String(), "amount")
	assert.Contains(t, out.String(), "0 applied, 1 failed")
	assert.Equal(t, 1.0, mem.Row("crm_deals", r1)["amount"])
}

func TestPasteRequiresTarget(t *testing.T) {
	cc, _ := newTestContext(t)

	var out bytes.Buffer
	err := runPaste(context.Background(), cc, "t-deals", pasteTarget{},
		strings.NewReader("x"), &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "paste target is required")
}

func TestPasteUnknownTable(t *testing.T) {
	cc, _ := newTestContext(t)

	var out bytes.Buffer
	target := pasteTarget{column: "f-amount"}
	err := runPaste(context.Background(), cc, "missing", target,
		strings.NewReader("x"), &out)
	require.ErrorIs(t, err, core.ErrTableNotFound)
}

func TestFieldsListsCatalog(t *testing.T) {
	cc, mem := newTestContext(t)
	mem.AddTable(
		core.Table{ID: "t-deals", PhysicalStoreName: "crm_deals"},
		[]core.Field{
			{ID: "f-name", Name: "name", Type: core.FieldTypeText, Position: 1, Required: true},
			{ID: "f-contacts", Name: "contacts", Type: core.FieldTypeLink, Position: 2, Options: core.FieldOptions{
				Link: &core.LinkOptions{LinkedTableID: "t-contacts", RelationshipType: "one-to-one"},
			}},
		},
	)

	var out bytes.Buffer
	require.NoError(t, runFields(context.Background(), cc, "t-deals", &out))

	s := out.String()
	assert.Contains(t, s, "name")
	assert.Contains(t, s, "contacts")
	assert.Contains(t, s, "t-contacts (single)")
}

func TestCopyRendersLinkLabels(t *testing.T) {
	cc, mem := newTestContext(t)

	mem.AddTable(
		core.Table{ID: "t-contacts", PhysicalStoreName: "crm_contacts", PrimaryFieldName: "name"},
		[]core.Field{{ID: "fc-name", Name: "name", Type: core.FieldTypeText, Position: 1}},
	)
	cid := mem.SeedRow("crm_contacts", map[string]any{"name": "Jane Doe"})

	mem.AddTable(
		core.Table{ID: "t-deals", PhysicalStoreName: "crm_deals", PrimaryFieldName: "name"},
		[]core.Field{
			{ID: "f-name", Name: "name", Type: core.FieldTypeText, Position: 1},
			{ID: "f-contacts", Name: "contacts", Type: core.FieldTypeLink, Position: 2, Options: core.FieldOptions{
				Link: &core.LinkOptions{LinkedTableID: "t-contacts", RelationshipType: "one-to-many"},
			}},
		},
	)
	mem.SeedRow("crm_deals", map[string]any{"name": "Acme", "contacts": []string{cid}})

	var out bytes.Buffer
	err := runCopy(context.Background(), cc, "t-deals", nil, nil, true, &out)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "name\tcontacts", lines[0])
	assert.Equal(t, "Acme\tJane Doe", lines[1])
}

func TestCopySelectsRowsAndColumns(t *testing.T) {
	cc, mem := newTestContext(t)
	r1, _ := seedDealsTable(t, mem)

	var out bytes.Buffer
	err := runCopy(context.Background(), cc, "t-deals", []string{r1}, []string{"name"}, false, &out)
	require.NoError(t, err)

	assert.Equal(t, "Old A\n", out.String())
}

func TestCopyUnknownColumn(t *testing.T) {
	cc, mem := newTestContext(t)
	seedDealsTable(t, mem)

	var out bytes.Buffer
	err := runCopy(context.Background(), cc, "t-deals", nil, []string{"bogus"}, false, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown field "bogus"`)
}
