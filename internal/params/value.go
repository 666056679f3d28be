package params

import (
	"math"
	"strconv"
	"strings"
)

// #region kind

// Kind is the recognized type of a parameter value.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindList
)

// #endregion kind

// #region value

// Value is a typed parameter value. Values parse as int, then float, then
// comma-separated float list; anything else stays a string. Coercion
// failure is silent and benign: the solver's own parser decides what a
// string means.
type Value struct {
	kind Kind
	i    int64
	f    float64
	s    string
	list []float64
}

// Int wraps an integer value.
func Int(v int64) Value { return Value{kind: KindInt, i: v} }

// Float wraps a float value.
func Float(v float64) Value { return Value{kind: KindFloat, f: v} }

// Str wraps a string value.
func Str(v string) Value { return Value{kind: KindString, s: v} }

// List wraps a numeric list value.
func List(v []float64) Value { return Value{kind: KindList, list: v} }

// Kind reports the value's recognized type.
func (v Value) Kind() Kind { return v.kind }

// AsInt converts to int, truncating floats; ok is false for strings and
// lists.
func (v Value) AsInt() (int64, bool) {
	switch v.kind {
	case KindInt:
		return v.i, true
	case KindFloat:
		return int64(v.f), true
	}
	return 0, false
}

// AsFloat converts to float64; ok is false for strings and lists.
func (v Value) AsFloat() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	}
	return 0, false
}

// AsList returns the numeric list; ok is false for other kinds.
func (v Value) AsList() ([]float64, bool) {
	if v.kind != KindList {
		return nil, false
	}
	return v.list, true
}

// Equal reports whether two values have the same kind and content.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f
	case KindString:
		return v.s == o.s
	case KindList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if v.list[i] != o.list[i] {
				return false
			}
		}
		return true
	}
	return false
}

// NumericEqual reports whether two values are identical, or both numeric
// with the same magnitude. Rewriting an int-declared line with the same
// quantity as a float is not a real change and must not dirty the line.
func (v Value) NumericEqual(o Value) bool {
	if v.Equal(o) {
		return true
	}
	vf, ok1 := v.AsFloat()
	of, ok2 := o.AsFloat()
	return ok1 && ok2 && vf == of
}

// String renders the value the way the solver's configuration dialect
// expects: floats keep a decimal point, lists are comma-joined without
// parentheses.
func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return formatFloat(v.f)
	case KindList:
		parts := make([]string, len(v.list))
		for i, f := range v.list {
			parts[i] = formatFloat(f)
		}
		return strings.Join(parts, ", ")
	}
	return v.s
}

// formatFloat renders a float with an explicit decimal point so the
// solver's parser never mistakes it for an integer field.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") && !math.IsInf(f, 0) && !math.IsNaN(f) {
		s += ".0"
	}
	return s
}

// #endregion value

// #region parse-value

// parseValue types a raw right-hand side: int, float, comma-separated
// float list, or string fallback.
func parseValue(raw string) Value {
	raw = strings.TrimSpace(raw)
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return Int(i)
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return Float(f)
	}
	if list, ok := parseList(raw); ok {
		return List(list)
	}
	return Str(raw)
}

func parseList(raw string) ([]float64, bool) {
	inner := strings.TrimSpace(raw)
	if strings.HasPrefix(inner, "(") && strings.HasSuffix(inner, ")") {
		inner = inner[1 : len(inner)-1]
	}
	parts := strings.Split(inner, ",")
	if len(parts) < 2 {
		return nil, false
	}
	list := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, false
		}
		list = append(list, f)
	}
	if len(list) < 2 {
		return nil, false
	}
	return list, true
}

// #endregion parse-value
