package core

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Record is one row of a table: an opaque identifier plus a mapping of
// field name to value. Link-field values are a single record id, an
// ordered list of record ids, or absent.
type Record struct {
	ID     string
	Values map[string]any
}

// NewRecordID generates a fresh canonical record id.
func NewRecordID() string {
	return uuid.New().String()
}

// IsRecordID reports whether s has the canonical record id shape:
// 36-character hyphenated 8-4-4-4-12 hexadecimal. Case is ignored on
// input; use CanonicalID where the id is stored or compared.
func IsRecordID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

// CanonicalID lowercases a record id into its canonical form.
func CanonicalID(s string) string {
	return strings.ToLower(s)
}

// ValueToString renders an arbitrary cell value as text.
func ValueToString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// NormalizeIDList coerces a link-field value to a list of record ids.
// Accepts a single id, a list of ids, or a stringified JSON list (the
// remote store can return list-typed columns as text). Canonical ids are
// lowercased; legacy values keep their original text. Absent and empty
// values normalize to nil.
func NormalizeIDList(value any) []string {
	switch v := value.(type) {
	case nil:
		return nil
	case []string:
		out := make([]string, 0, len(v))
		for _, s := range v {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, normalizeEntry(s))
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s := strings.TrimSpace(ValueToString(e)); s != "" {
				out = append(out, normalizeEntry(s))
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil
		}
		if strings.HasPrefix(s, "[") {
			var list []any
			if err := json.Unmarshal([]byte(s), &list); err == nil {
				return NormalizeIDList(list)
			}
		}
		return []string{normalizeEntry(s)}
	default:
		return []string{normalizeEntry(ValueToString(v))}
	}
}

// normalizeEntry canonicalizes record ids and leaves legacy values as
// they were stored.
func normalizeEntry(s string) string {
	if IsRecordID(s) {
		return CanonicalID(s)
	}
	return s
}

// DiffIDLists returns the ids present in next but not prev, and the ids
// present in prev but not next, preserving order.
func DiffIDLists(prev, next []string) (added, removed []string) {
	prevSet := make(map[string]bool, len(prev))
	for _, id := range prev {
		prevSet[id] = true
	}
	nextSet := make(map[string]bool, len(next))
	for _, id := range next {
		nextSet[id] = true
	}
	for _, id := range next {
		if !prevSet[id] {
			added = append(added, id)
		}
	}
	for _, id := range prev {
		if !nextSet[id] {
			removed = append(removed, id)
		}
	}
	return added, removed
}
