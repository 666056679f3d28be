// Package params is the registry for the solver's line-oriented parameter
// file. The file dialect is strict and undocumented beyond its patterns, so
// the registry keeps every original line verbatim and rewrites only the
// value suffix of lines whose parameter was actually changed. Re-serializing
// an unmodified set reproduces the input byte for byte.
package params

import (
	"fmt"
	"os"
	"strings"
)

// #region set-struct

// Set is an ordered, line-addressed parameter store: the raw line sequence
// of the configuration text, an index from parameter name to the line that
// declared it, the typed values, and the set of names mutated since parse.
//
// Names assigned that were never declared in the text land in the overflow:
// readable through Get, never serialized. The solver only accepts
// parameters on their original lines.
type Set struct {
	lines    []string       // raw lines, line endings preserved
	index    map[string]int // name -> 0-based position in lines
	values   map[string]Value
	dirty    map[string]bool
	overflow map[string]Value
}

// #endregion set-struct

// #region parse

// Parse builds a Set from configuration text, line by line:
//
//   - lines whose first non-blank character is '#' are skipped;
//   - "description_(NAME) = value" declares the last parenthesized group;
//   - "NAME = value" declares the text before the first '=';
//   - the value is always the text after the last '=';
//   - any other line is the end-of-parameters sentinel and stops the scan.
//
// A repeated name keeps the later line for write-back.
func Parse(text string) *Set {
	s := &Set{
		lines:    splitKeepEndings(text),
		index:    make(map[string]int),
		values:   make(map[string]Value),
		dirty:    make(map[string]bool),
		overflow: make(map[string]Value),
	}

	for i, raw := range s.lines {
		line := strings.TrimSpace(trimEnding(raw))
		if strings.HasPrefix(line, "#") {
			continue
		}

		var name string
		switch {
		case strings.Contains(line, "("):
			name = lastParenGroup(line)
			if name == "" || !strings.Contains(line, "=") {
				return s // sentinel: paren without a usable declaration
			}
		case strings.Contains(line, "="):
			name = strings.TrimSpace(line[:strings.Index(line, "=")])
		default:
			return s // sentinel: end of parameters
		}

		value := line[strings.LastIndex(line, "=")+1:]
		s.index[name] = i
		s.values[name] = parseValue(value)
	}
	return s
}

// Load reads and parses a parameter file.
func Load(path string) (*Set, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load parameter file %s: %w", path, err)
	}
	return Parse(string(raw)), nil
}

// lastParenGroup returns the content of the last (...) group on the line.
func lastParenGroup(line string) string {
	close := strings.LastIndex(line, ")")
	if close < 0 {
		return ""
	}
	open := strings.LastIndex(line[:close], "(")
	if open < 0 {
		return ""
	}
	return line[open+1 : close]
}

// #endregion parse

// #region access

// Get returns the current value of a parameter, declared or overflow.
func (s *Set) Get(name string) (Value, bool) {
	if v, ok := s.values[name]; ok {
		return v, true
	}
	v, ok := s.overflow[name]
	return v, ok
}

// Has reports whether the parameter was declared in the parsed text.
func (s *Set) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// GetInt reads an integer parameter, falling back to def when the name is
// unknown or not numeric.
func (s *Set) GetInt(name string, def int) int {
	if v, ok := s.Get(name); ok {
		if i, ok := v.AsInt(); ok {
			return int(i)
		}
	}
	return def
}

// GetFloat reads a float parameter with a default.
func (s *Set) GetFloat(name string, def float64) float64 {
	if v, ok := s.Get(name); ok {
		if f, ok := v.AsFloat(); ok {
			return f
		}
	}
	return def
}

// GetString reads a string parameter with a default.
func (s *Set) GetString(name string, def string) string {
	if v, ok := s.Get(name); ok && v.Kind() == KindString {
		return v.String()
	}
	return def
}

// #endregion access

// #region mutate

// Set assigns a parameter value. Declared names are marked for line
// rewrite only when the value actually changed, preserving byte fidelity
// of untouched lines. Unknown names go to the overflow.
func (s *Set) Set(name string, v Value) {
	if _, declared := s.index[name]; !declared {
		s.overflow[name] = v
		return
	}
	if cur, ok := s.values[name]; ok && cur.NumericEqual(v) {
		return
	}
	s.values[name] = v
	s.dirty[name] = true
}

// SetInt assigns an integer parameter.
func (s *Set) SetInt(name string, v int) { s.Set(name, Int(int64(v))) }

// SetFloat assigns a float parameter.
func (s *Set) SetFloat(name string, v float64) { s.Set(name, Float(v)) }

// SetString assigns a string parameter.
func (s *Set) SetString(name, v string) { s.Set(name, Str(v)) }

// #endregion mutate

// #region serialize

// Serialize re-emits the configuration text. Only lines whose parameter
// was mutated are rewritten: everything before the final '=' is kept, the
// suffix becomes "= " plus the stringified value, and the original line
// ending survives.
func (s *Set) Serialize() string {
	out := make([]string, len(s.lines))
	copy(out, s.lines)

	for name := range s.dirty {
		i := s.index[name]
		content := trimEnding(out[i])
		ending := out[i][len(content):]
		eq := strings.LastIndex(content, "=")
		out[i] = content[:eq] + "= " + s.values[name].String() + ending
	}
	return strings.Join(out, "")
}

// WriteFile serializes the set to disk.
func (s *Set) WriteFile(path string) error {
	if err := os.WriteFile(path, []byte(s.Serialize()), 0o644); err != nil {
		return fmt.Errorf("write parameter file %s: %w", path, err)
	}
	return nil
}

// #endregion serialize

// #region line-helpers

// splitKeepEndings splits text into lines that retain their "\n" (or
// "\r\n") terminators so Join reproduces the input exactly.
func splitKeepEndings(text string) []string {
	if text == "" {
		return nil
	}
	var lines []string
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			lines = append(lines, text[start:i+1])
			start = i + 1
		}
	}
	if start < len(text) {
		lines = append(lines, text[start:])
	}
	return lines
}

func trimEnding(line string) string {
	return strings.TrimRight(line, "\r\n")
}

// #endregion line-helpers
