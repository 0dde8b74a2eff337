package core

// FieldType represents the declared type of a table column.
type FieldType string

// Field type constants.
const (
	FieldTypeText         FieldType = "text"
	FieldTypeLongText     FieldType = "long_text"
	FieldTypeURL          FieldType = "url"
	FieldTypeEmail        FieldType = "email"
	FieldTypeNumber       FieldType = "number"
	FieldTypePercent      FieldType = "percent"
	FieldTypeCurrency     FieldType = "currency"
	FieldTypeDate         FieldType = "date"
	FieldTypeCheckbox     FieldType = "checkbox"
	FieldTypeSingleSelect FieldType = "single_select"
	FieldTypeMultiSelect  FieldType = "multi_select"
	FieldTypeLink         FieldType = "link_to_table"
	FieldTypeLookup       FieldType = "lookup"
	FieldTypeFormula      FieldType = "formula"
	FieldTypeAttachment   FieldType = "attachment"
	FieldTypeJSON         FieldType = "json"
)

// Field describes a single column of a table.
// Type is immutable once records exist for the owning table.
type Field struct {
	// ID is the field's stable identifier.
	ID string
	// Name is the column name as stored in the physical table.
	Name string
	// Type selects the validation and rendering rules for values.
	Type FieldType
	// Required rejects absent values during validation.
	Required bool
	// Position is the column's ordinal in the table definition.
	Position int
	// Options carries the per-type configuration variant.
	Options FieldOptions
}

// IsLink reports whether the field references records in another table.
func (f Field) IsLink() bool {
	return f.Type == FieldTypeLink
}

// IsComputed reports whether the field's values are derived and read-only.
func (f Field) IsComputed() bool {
	return f.Type == FieldTypeFormula || f.Type == FieldTypeLookup
}

// IsTextLike reports whether the field stores free-form text suitable
// for use as a display label.
func (f Field) IsTextLike() bool {
	switch f.Type {
	case FieldTypeText, FieldTypeLongText, FieldTypeEmail, FieldTypeURL:
		return true
	}
	return false
}

// IsNumeric reports whether the field stores a floating-point value.
func (f Field) IsNumeric() bool {
	switch f.Type {
	case FieldTypeNumber, FieldTypePercent, FieldTypeCurrency:
		return true
	}
	return false
}
