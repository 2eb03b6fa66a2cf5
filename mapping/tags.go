package mapping

import (
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"
)

// tagName is the struct tag key read by the mapping context.
const tagName = "neo4j"

// tagOptions is a parsed `neo4j:"..."` tag: a comma separated list of flags and
// key:value pairs. The first element may be a bare value (a label on marker fields).
type tagOptions struct {
	bare   string
	flags  map[string]bool
	values map[string]string
}

func parseTag(tag string) tagOptions {
	opts := tagOptions{flags: map[string]bool{}, values: map[string]string{}}
	if strings.TrimSpace(tag) == "" {
		return opts
	}

	for i, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if key, value, ok := strings.Cut(part, ":"); ok {
			opts.values[strings.TrimSpace(key)] = strings.TrimSpace(value)
			continue
		}
		if i == 0 && !knownFlags[part] {
			opts.bare = part
			continue
		}
		opts.flags[part] = true
	}
	return opts
}

var knownFlags = map[string]bool{
	"id":              true,
	"generated":       true,
	"readonly":        true,
	"composite":       true,
	"dynamicLabels":   true,
	"targetNode":      true,
	"sourceNode":      true,
	"persistTypeInfo": true,
	"relationship":    true,
}

func (o tagOptions) has(flag string) bool { return o.flags[flag] }

func (o tagOptions) value(key string) (string, bool) {
	v, ok := o.values[key]
	return v, ok
}

// list splits a `|` separated tag value.
func (o tagOptions) list(key string) []string {
	v, ok := o.values[key]
	if !ok || v == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(v, "|") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// propertyName derives the default graph property name from a Go field name.
func propertyName(field string) string {
	r, size := utf8.DecodeRuneInString(field)
	if r == utf8.RuneError {
		return field
	}
	// Leading acronyms are lowered as a whole: ID -> id, URLPath -> urlPath.
	upper := 0
	for _, c := range field {
		if !unicode.IsUpper(c) {
			break
		}
		upper++
	}
	if upper > 1 {
		if upper == utf8.RuneCountInString(field) {
			return strings.ToLower(field)
		}
		runes := []rune(field)
		return strings.ToLower(string(runes[:upper-1])) + string(runes[upper-1:])
	}
	return string(unicode.ToLower(r)) + field[size:]
}

// relationshipType derives the default relationship type from a Go field name,
// e.g. ActedIn -> ACTED_IN.
func relationshipType(field string) string {
	var b strings.Builder
	runes := []rune(field)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prevLower := unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if prevLower || (nextLower && unicode.IsUpper(runes[i-1])) {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

// ResultColumn returns the column a projection field is filled from. A
// `neo4j:"column:<name>"` tag names it explicitly; otherwise the property tag or the
// default property name is used. ok is false for unexported and `neo4j:"-"` fields.
func ResultColumn(f reflect.StructField) (column string, explicit bool, ok bool) {
	if !f.IsExported() {
		return "", false, false
	}
	tag := f.Tag.Get(tagName)
	if tag == "-" {
		return "", false, false
	}
	opts := parseTag(tag)
	if c, found := opts.value("column"); found && c != "" {
		return c, true, true
	}
	if p, found := opts.value("property"); found && p != "" {
		return p, false, true
	}
	return propertyName(f.Name), false, true
}
