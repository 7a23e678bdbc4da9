package catalog

import (
	"strconv"
)

// Raw is one loosely-typed record as returned by the catalog provider.
// The provider's schema is not contractually stable: any key may be absent,
// a scalar, or a list, and numeric fields occasionally arrive as strings.
// Every accessor degrades a mismatch to "absent" instead of failing.
type Raw map[string]any

// FieldKind discriminates the three shapes a raw field can take.
type FieldKind int

const (
	FieldAbsent FieldKind = iota
	FieldScalar
	FieldList
)

// Field is the resolved variant for a single key.
type Field struct {
	Kind   FieldKind
	Scalar any
	List   []any
}

// Field resolves the variant for key. A nil value counts as absent.
func (r Raw) Field(key string) Field {
	v, ok := r[key]
	if !ok || v == nil {
		return Field{Kind: FieldAbsent}
	}
	if list, ok := v.([]any); ok {
		return Field{Kind: FieldList, List: list}
	}
	return Field{Kind: FieldScalar, Scalar: v}
}

// first returns the scalar value, or the first list element in source order.
func (f Field) first() (any, bool) {
	switch f.Kind {
	case FieldScalar:
		return f.Scalar, true
	case FieldList:
		if len(f.List) == 0 {
			return nil, false
		}
		return f.List[0], true
	}
	return nil, false
}

// String returns the field as a string, taking the first element of a list.
func (r Raw) String(key string) (string, bool) {
	v, ok := r.Field(key).first()
	if !ok {
		return "", false
	}
	switch s := v.(type) {
	case string:
		return s, true
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), true
	case int:
		return strconv.Itoa(s), true
	case bool:
		return strconv.FormatBool(s), true
	}
	return "", false
}

// Int returns the field as an int. JSON numbers decode as float64; string
// values are parsed. Anything else is treated as absent.
func (r Raw) Int(key string) (int, bool) {
	v, ok := r.Field(key).first()
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return 0, false
		}
		return i, true
	}
	return 0, false
}

// Float returns the field as a float64.
func (r Raw) Float(key string) (float64, bool) {
	v, ok := r.Field(key).first()
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// List returns the field's elements; a scalar is not promoted to a list.
func (r Raw) List(key string) ([]any, bool) {
	f := r.Field(key)
	if f.Kind != FieldList {
		return nil, false
	}
	return f.List, true
}

// NonEmptyList reports whether key holds a list with at least one element.
func (r Raw) NonEmptyList(key string) bool {
	list, ok := r.List(key)
	return ok && len(list) > 0
}
