package core

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// RelationshipType describes the cardinality of a link field.
type RelationshipType string

// Relationship type constants. An empty relationship type means an
// implicit one-to-one link.
const (
	RelationshipOneToMany  RelationshipType = "one-to-many"
	RelationshipManyToMany RelationshipType = "many-to-many"
)

// FieldOptions is the per-type configuration variant for a field.
// Exactly one member is set, matching the field's Type; every member is
// nil for types that carry no options. Decoding an options bag for one
// type never populates another type's variant.
type FieldOptions struct {
	Link   *LinkOptions
	Select *SelectOptions
	Number *NumberOptions
}

// LinkOptions configures a link_to_table field.
type LinkOptions struct {
	// LinkedTableID identifies the target table. Must reference an
	// existing table.
	LinkedTableID string `mapstructure:"linked_table_id"`
	// LinkedFieldID identifies the reciprocal field in the target
	// table. Set only on the reverse side of a link pair; empty on the
	// forward field and on one-way links.
	LinkedFieldID string `mapstructure:"linked_field_id"`
	// RelationshipType is the declared cardinality. Empty means an
	// implicit one-to-one link.
	RelationshipType RelationshipType `mapstructure:"relationship_type"`
	// MaxSelections caps how many records the field may hold.
	// A value of 1 forces single-link behavior regardless of the
	// relationship type.
	MaxSelections int `mapstructure:"max_selections"`
}

// AllowsMultiple reports whether the link field holds an ordered list of
// record ids rather than a single id.
func (o *LinkOptions) AllowsMultiple() bool {
	if o == nil {
		return false
	}
	if o.MaxSelections == 1 {
		return false
	}
	switch o.RelationshipType {
	case RelationshipOneToMany, RelationshipManyToMany:
		return true
	}
	return false
}

// SelectChoice is one entry of a select field's option list.
type SelectChoice struct {
	ID    string `mapstructure:"id"`
	Label string `mapstructure:"label"`
}

// SelectOptions configures single_select and multi_select fields.
type SelectOptions struct {
	// Choices is the legacy flat list of valid values.
	Choices []string `mapstructure:"choices"`
	// SelectOptions is the structured option list that superseded
	// Choices. When both are present, Choices wins for validation to
	// preserve legacy behavior.
	SelectOptions []SelectChoice `mapstructure:"selectOptions"`
}

// Labels returns the valid values for the select field, preferring the
// legacy Choices list when present. Returns nil when the field has no
// constrained option list.
func (o *SelectOptions) Labels() []string {
	if o == nil {
		return nil
	}
	if len(o.Choices) > 0 {
		return o.Choices
	}
	if len(o.SelectOptions) == 0 {
		return nil
	}
	labels := make([]string, 0, len(o.SelectOptions))
	for _, c := range o.SelectOptions {
		labels = append(labels, c.Label)
	}
	return labels
}

// NumberOptions configures number, percent, and currency fields.
type NumberOptions struct {
	// Precision is the number of decimal places values are rounded to.
	// Nil leaves values unrounded.
	Precision *int `mapstructure:"precision"`
}

// DecodeOptions decodes a raw options bag into the typed variant for the
// given field type. Unknown and extra keys are ignored. Types that carry
// no options return the zero FieldOptions regardless of the bag contents.
func DecodeOptions(fieldType FieldType, raw map[string]any) (FieldOptions, error) {
	var opts FieldOptions
	if len(raw) == 0 {
		return opts, nil
	}

	decode := func(target any) error {
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           target,
			WeaklyTypedInput: true,
		})
		if err != nil {
			return err
		}
		return dec.Decode(raw)
	}

	switch fieldType {
	case FieldTypeLink:
		var link LinkOptions
		if err := decode(&link); err != nil {
			return opts, fmt.Errorf("failed to decode link options: %w", err)
		}
		opts.Link = &link
	case FieldTypeSingleSelect, FieldTypeMultiSelect:
		var sel SelectOptions
		if err := decode(&sel); err != nil {
			return opts, fmt.Errorf("failed to decode select options: %w", err)
		}
		opts.Select = &sel
	case FieldTypeNumber, FieldTypePercent, FieldTypeCurrency:
		var num NumberOptions
		if err := decode(&num); err != nil {
			return opts, fmt.Errorf("failed to decode number options: %w", err)
		}
		opts.Number = &num
	}

	return opts, nil
}
