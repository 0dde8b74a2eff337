package core

// Table describes one user-defined table.
type Table struct {
	// ID is the table's stable identifier.
	ID string
	// PhysicalStoreName is the name of the backing relation in the
	// remote store.
	PhysicalStoreName string
	// PrimaryFieldName names the field used as the human-readable label
	// for records of this table when referenced from elsewhere. Empty or
	// "id" means records are displayed by identifier.
	PrimaryFieldName string
}

// systemFieldNames are columns managed by the platform, never candidates
// for a primary display field.
var systemFieldNames = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"created_by": true,
	"updated_by": true,
}

// IsSystemField reports whether name is a platform-managed column.
func IsSystemField(name string) bool {
	return systemFieldNames[name]
}

// InferPrimaryField returns the structurally-inferred primary field: the
// first field in position order that is not a system field. Returns nil
// when no such field exists.
func InferPrimaryField(fields []Field) *Field {
	best := -1
	for i, f := range fields {
		if IsSystemField(f.Name) {
			continue
		}
		if best == -1 || f.Position < fields[best].Position {
			best = i
		}
	}
	if best == -1 {
		return nil
	}
	return &fields[best]
}

// FieldByName returns the field with the given name, or nil.
func FieldByName(fields []Field, name string) *Field {
	for i := range fields {
		if fields[i].Name == name {
			return &fields[i]
		}
	}
	return nil
}

// FieldByID returns the field with the given id, or nil.
func FieldByID(fields []Field, id string) *Field {
	for i := range fields {
		if fields[i].ID == id {
			return &fields[i]
		}
	}
	return nil
}
