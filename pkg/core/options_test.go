package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeLinkOptions(t *testing.T) {
	opts, err := DecodeOptions(FieldTypeLink, map[string]any{
		"linked_table_id":   "t-contacts",
		"linked_field_id":   "f-deals",
		"relationship_type": "many-to-many",
		"max_selections":    "3",
	})
	require.NoError(t, err)

	require.NotNil(t, opts.Link)
	assert.Nil(t, opts.Select)
	assert.Nil(t, opts.Number)
	assert.Equal(t, "t-contacts", opts.Link.LinkedTableID)
	assert.Equal(t, "f-deals", opts.Link.LinkedFieldID)
	assert.Equal(t, RelationshipManyToMany, opts.Link.RelationshipType)
	assert.Equal(t, 3, opts.Link.MaxSelections)
}

func TestDecodeSelectOptionsBothShapes(t *testing.T) {
	opts, err := DecodeOptions(FieldTypeSingleSelect, map[string]any{
		"choices": []any{"red", "green"},
		"selectOptions": []any{
			map[string]any{"id": "1", "label": "blue"},
		},
	})
	require.NoError(t, err)

	require.NotNil(t, opts.Select)
	// Legacy choices take precedence over the structured list.
	assert.Equal(t, []string{"red", "green"}, opts.Select.Labels())
}

func TestSelectLabelsFallsBackToStructuredList(t *testing.T) {
	sel := &SelectOptions{SelectOptions: []SelectChoice{{ID: "1", Label: "blue"}, {ID: "2", Label: "red"}}}
	assert.Equal(t, []string{"blue", "red"}, sel.Labels())

	assert.Nil(t, (&SelectOptions{}).Labels())
	assert.Nil(t, (*SelectOptions)(nil).Labels())
}

func TestDecodeOptionsIgnoresBagForOptionlessTypes(t *testing.T) {
	opts, err := DecodeOptions(FieldTypeText, map[string]any{"linked_table_id": "t1"})
	require.NoError(t, err)
	assert.Equal(t, FieldOptions{}, opts)
}

func TestDecodeOptionsUnknownKeysIgnored(t *testing.T) {
	opts, err := DecodeOptions(FieldTypeNumber, map[string]any{
		"precision": 2,
		"legacy_ui": map[string]any{"width": 120},
	})
	require.NoError(t, err)
	require.NotNil(t, opts.Number)
	require.NotNil(t, opts.Number.Precision)
	assert.Equal(t, 2, *opts.Number.Precision)
}

func TestAllowsMultiple(t *testing.T) {
	tests := []struct {
		name string
		opts *LinkOptions
		want bool
	}{
		{"nil options", nil, false},
		{"implicit one-to-one", &LinkOptions{}, false},
		{"one-to-many", &LinkOptions{RelationshipType: RelationshipOneToMany}, true},
		{"many-to-many", &LinkOptions{RelationshipType: RelationshipManyToMany}, true},
		{"max selections one wins", &LinkOptions{RelationshipType: RelationshipManyToMany, MaxSelections: 1}, false},
		{"unknown relationship", &LinkOptions{RelationshipType: "one-to-one"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.opts.AllowsMultiple())
		})
	}
}
