package convert

import (
	"encoding"
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Phase tells a KeyTransformation which direction a key is travelling.
type Phase int

const (
	// PhaseWrite transforms a map key into the suffix of a graph property name.
	PhaseWrite Phase = iota
	// PhaseRead transforms the suffix of a graph property name back into a map key.
	PhaseRead
)

func (p Phase) String() string {
	if p == PhaseRead {
		return "READ"
	}
	return "WRITE"
}

// KeyTransformation rewrites composite map keys on their way into and out of the graph.
type KeyTransformation func(phase Phase, key string) string

// IdentityKeys leaves keys untouched.
func IdentityKeys(_ Phase, key string) string { return key }

// UpperCaseKeys stores keys upper-cased and reads them back lower-cased.
func UpperCaseKeys(phase Phase, key string) string {
	if phase == PhaseWrite {
		return strings.ToUpper(key)
	}
	return strings.ToLower(key)
}

// LowerCaseKeys stores keys lower-cased and reads them back upper-cased.
func LowerCaseKeys(phase Phase, key string) string {
	if phase == PhaseWrite {
		return strings.ToLower(key)
	}
	return strings.ToUpper(key)
}

// CompositeMapper turns a non-map domain value into a flat property map and back.
type CompositeMapper interface {
	// DomainType is the field type the mapper handles.
	DomainType() reflect.Type
	Decompose(value reflect.Value) (map[string]any, error)
	Compose(properties map[string]any) (reflect.Value, error)
}

// CompositeConverter flattens a map-like field into several graph properties named
// prefix + delimiter + key. It is bound to one field and immutable once built.
type CompositeConverter struct {
	prefix    string
	delimiter string
	fieldType reflect.Type
	transform KeyTransformation
	mapper    CompositeMapper
	registry  *Registry
}

// NewCompositeConverter binds a composite converter to a field of type fieldType.
// Without a mapper the field must be a map whose keys have a string kind.
func NewCompositeConverter(r *Registry, fieldType reflect.Type, prefix, delimiter string, transform KeyTransformation, mapper CompositeMapper) (*CompositeConverter, error) {
	if transform == nil {
		transform = IdentityKeys
	}
	if delimiter == "" {
		delimiter = "."
	}
	if mapper != nil {
		if mapper.DomainType() != fieldType {
			return nil, fmt.Errorf("%w: composite mapper handles %s, not %s", ErrConversion, mapper.DomainType(), fieldType)
		}
	} else if fieldType.Kind() != reflect.Map || fieldType.Key().Kind() != reflect.String {
		return nil, fmt.Errorf("%w: composite properties need a map with string or enum keys, got %s", ErrConversion, fieldType)
	}

	return &CompositeConverter{
		prefix:    prefix,
		delimiter: delimiter,
		fieldType: fieldType,
		transform: transform,
		mapper:    mapper,
		registry:  r,
	}, nil
}

// PropertyPrefix is the prefix every flattened property name starts with.
func (c *CompositeConverter) PropertyPrefix() string {
	return c.prefix + c.delimiter
}

// Write flattens value. Nil entries produce no property, so a key removed from the map
// disappears from the node on the next full property write.
func (c *CompositeConverter) Write(value reflect.Value) (map[string]any, error) {
	out := make(map[string]any)
	if !value.IsValid() || isNil(value) {
		return out, nil
	}

	if c.mapper != nil {
		parts, err := c.mapper.Decompose(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConversion, err)
		}
		for key, part := range parts {
			if part == nil {
				continue
			}
			graph, err := c.registry.WriteValue(reflect.ValueOf(part), nil)
			if err != nil {
				return nil, fmt.Errorf("composite key %s: %w", key, err)
			}
			if graph != nil {
				out[c.PropertyPrefix()+c.transform(PhaseWrite, key)] = graph
			}
		}
		return out, nil
	}

	iter := value.MapRange()
	for iter.Next() {
		key, err := keyString(iter.Key())
		if err != nil {
			return nil, err
		}
		graph, err := c.registry.WriteValue(iter.Value(), nil)
		if err != nil {
			return nil, fmt.Errorf("composite key %s: %w", key, err)
		}
		if graph == nil {
			continue
		}
		out[c.PropertyPrefix()+c.transform(PhaseWrite, key)] = graph
	}
	return out, nil
}

// Read collects every property starting with the prefix and rebuilds the field value.
// A node without any such property yields the zero value of the field type.
func (c *CompositeConverter) Read(properties map[string]any) (reflect.Value, error) {
	parts := make(map[string]any)
	for _, name := range sortedKeys(properties) {
		if !strings.HasPrefix(name, c.PropertyPrefix()) {
			continue
		}
		parts[c.transform(PhaseRead, strings.TrimPrefix(name, c.PropertyPrefix()))] = properties[name]
	}
	if len(parts) == 0 {
		return reflect.Zero(c.fieldType), nil
	}

	if c.mapper != nil {
		v, err := c.mapper.Compose(parts)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("%w: %v", ErrConversion, err)
		}
		return v, nil
	}

	out := reflect.MakeMapWithSize(c.fieldType, len(parts))
	for key, graph := range parts {
		k, err := keyValue(key, c.fieldType.Key())
		if err != nil {
			return reflect.Value{}, err
		}
		v, err := c.registry.ReadValue(graph, c.fieldType.Elem(), nil)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("composite key %s: %w", key, err)
		}
		out.SetMapIndex(k, v)
	}
	return out, nil
}

func keyString(k reflect.Value) (string, error) {
	if m, ok := k.Interface().(encoding.TextMarshaler); ok {
		text, err := m.MarshalText()
		if err != nil {
			return "", fmt.Errorf("%w: composite key: %v", ErrConversion, err)
		}
		return string(text), nil
	}
	return k.String(), nil
}

// keyValue parses a key back into the map key type, using UnmarshalText for enum-like
// key types so unknown constants are rejected.
func keyValue(key string, t reflect.Type) (reflect.Value, error) {
	if reflect.PointerTo(t).Implements(textUnmarshalerType) {
		ptr := reflect.New(t)
		if err := ptr.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(key)); err != nil {
			return reflect.Value{}, fmt.Errorf("%w: composite key %q: %v", ErrConversion, key, err)
		}
		return ptr.Elem(), nil
	}
	return reflect.ValueOf(key).Convert(t), nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
