// Package validate implements per-field-type value validation and
// normalization for cell writes.
package validate

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/SophieEDesign/marketinghub-sub007/pkg/core"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Date layouts accepted for string input, tried in order.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Validate checks a single raw value against a field's declared type and
// options and returns the normalized value to write. Absent input is
// valid unless the field is required. Validation never panics; every
// rejection is a structured result.
func Validate(field core.Field, raw any) core.ValidationResult {
	if isAbsent(raw) {
		if field.Required {
			return invalid(fmt.Sprintf("field %q is required", field.Name))
		}
		return valid(nil)
	}

	switch field.Type {
	case core.FieldTypeText, core.FieldTypeLongText:
		return valid(core.ValueToString(raw))
	case core.FieldTypeEmail:
		return validateEmail(raw)
	case core.FieldTypeURL:
		return validateURL(raw)
	case core.FieldTypeNumber, core.FieldTypePercent, core.FieldTypeCurrency:
		return validateNumber(field, raw)
	case core.FieldTypeDate:
		return validateDate(raw)
	case core.FieldTypeCheckbox:
		return valid(toCheckbox(raw))
	case core.FieldTypeSingleSelect:
		return validateSingleSelect(field, raw)
	case core.FieldTypeMultiSelect:
		return validateMultiSelect(field, raw)
	case core.FieldTypeLink:
		return validateLink(raw)
	case core.FieldTypeAttachment, core.FieldTypeJSON:
		return validateJSON(raw)
	case core.FieldTypeFormula, core.FieldTypeLookup:
		return invalid(fmt.Sprintf("field %q is computed and read-only", field.Name))
	default:
		// Unknown type: pass through unchanged for forward compatibility.
		return valid(raw)
	}
}

func isAbsent(raw any) bool {
	if raw == nil {
		return true
	}
	if s, ok := raw.(string); ok && s == "" {
		return true
	}
	return false
}

func valid(normalized any) core.ValidationResult {
	return core.ValidationResult{Valid: true, NormalizedValue: normalized}
}

func invalid(msg string) core.ValidationResult {
	return core.ValidationResult{Valid: false, Error: msg}
}

func validateEmail(raw any) core.ValidationResult {
	s := core.ValueToString(raw)
	if !emailPattern.MatchString(s) {
		return invalid(fmt.Sprintf("%q is not a valid email address", s))
	}
	return valid(s)
}

func validateURL(raw any) core.ValidationResult {
	s := core.ValueToString(raw)
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return invalid(fmt.Sprintf("%q is not a valid absolute URL", s))
	}
	return valid(s)
}

func validateNumber(field core.Field, raw any) core.ValidationResult {
	var f float64
	switch v := raw.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return invalid(fmt.Sprintf("%q is not a number", v.String()))
		}
		f = parsed
	default:
		s := strings.TrimSpace(core.ValueToString(raw))
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return invalid(fmt.Sprintf("%q is not a number", s))
		}
		f = parsed
	}

	if opts := field.Options.Number; opts != nil && opts.Precision != nil {
		f = roundTo(f, *opts.Precision)
	}
	return valid(f)
}

func roundTo(f float64, places int) float64 {
	shift := math.Pow(10, float64(places))
	return math.Round(f*shift) / shift
}

// validateDate accepts a timestamp, an ISO string, or a time value and
// normalizes to an ISO-8601 UTC instant string.
func validateDate(raw any) core.ValidationResult {
	switch v := raw.(type) {
	case time.Time:
		return valid(v.UTC().Format(time.RFC3339))
	case float64:
		return valid(time.UnixMilli(int64(v)).UTC().Format(time.RFC3339))
	case int:
		return valid(time.UnixMilli(int64(v)).UTC().Format(time.RFC3339))
	case int64:
		return valid(time.UnixMilli(v).UTC().Format(time.RFC3339))
	}

	s := strings.TrimSpace(core.ValueToString(raw))
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return valid(t.UTC().Format(time.RFC3339))
		}
	}
	return invalid(fmt.Sprintf("%q is not a recognizable date", s))
}

// toCheckbox maps the truthy set {true, "true", 1, "1", "yes"} to true
// and everything else to false. Checkbox validation never fails.
func toCheckbox(raw any) bool {
	switch v := raw.(type) {
	case bool:
		return v
	case string:
		return v == "true" || v == "1" || v == "yes"
	case int:
		return v == 1
	case int64:
		return v == 1
	case float64:
		return v == 1
	}
	return false
}

func validateSingleSelect(field core.Field, raw any) core.ValidationResult {
	s := core.ValueToString(raw)
	choices := field.Options.Select.Labels()
	if len(choices) == 0 {
		return valid(s)
	}
	for _, c := range choices {
		if s == c {
			return valid(s)
		}
	}
	return invalid(fmt.Sprintf("%q is not a valid choice; valid choices: %s", s, strings.Join(choices, ", ")))
}

func validateMultiSelect(field core.Field, raw any) core.ValidationResult {
	values := toStringList(raw)
	choices := field.Options.Select.Labels()

	if len(choices) > 0 {
		choiceSet := make(map[string]bool, len(choices))
		for _, c := range choices {
			choiceSet[c] = true
		}
		var bad []string
		for _, v := range values {
			if !choiceSet[v] {
				bad = append(bad, v)
			}
		}
		if len(bad) > 0 {
			return invalid(fmt.Sprintf("invalid choices: %s; valid choices: %s",
				strings.Join(bad, ", "), strings.Join(choices, ", ")))
		}
	}

	// De-duplicate preserving first-seen order.
	seen := make(map[string]bool, len(values))
	deduped := make([]string, 0, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			deduped = append(deduped, v)
		}
	}
	return valid(deduped)
}

func toStringList(raw any) []string {
	switch v := raw.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			out = append(out, core.ValueToString(e))
		}
		return out
	case string:
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	default:
		return []string{core.ValueToString(raw)}
	}
}

// validateLink accepts values that already look like canonical record
// ids. Anything else is a display label and must go through the
// asynchronous resolution path instead of this synchronous validator.
func validateLink(raw any) core.ValidationResult {
	switch v := raw.(type) {
	case string:
		if core.IsRecordID(v) {
			return valid(core.CanonicalID(v))
		}
	case []string, []any:
		ids := core.NormalizeIDList(v)
		allIDs := len(ids) > 0
		for _, id := range ids {
			if !core.IsRecordID(id) {
				allIDs = false
				break
			}
		}
		if allIDs {
			return valid(ids)
		}
	}
	return core.ValidationResult{
		Valid:           false,
		Error:           "link value is not a record id and needs resolution",
		NeedsResolution: true,
	}
}

func validateJSON(raw any) core.ValidationResult {
	switch v := raw.(type) {
	case map[string]any, []any:
		return valid(v)
	case string:
		var parsed any
		if err := json.Unmarshal([]byte(v), &parsed); err != nil {
			return invalid(fmt.Sprintf("value is not valid JSON: %v", err))
		}
		switch parsed.(type) {
		case map[string]any, []any:
			return valid(parsed)
		}
		return invalid("JSON value must be an object or array")
	}
	return invalid("value must be a JSON object, array, or JSON text")
}
