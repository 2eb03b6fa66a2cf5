// Package convert translates between Go field values and the value types the Neo4j
// driver understands.
//
// A value is converted by the first match of:
//
//  1. a per-property converter (named converter or composite converter),
//  2. a converter registered for the exact Go type,
//  3. a registered Factory whose Supports reports true (more than one match is an error),
//  4. a built-in converter (time.Duration, uuid.UUID, []byte as Base64, encoding.TextMarshaler,
//     named string/integer "enum" types),
//  5. the native driver representation (numbers, strings, temporal and spatial types, lists).
//
// Anything else fails with ErrNoConverter.
package convert

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
)

var (
	// ErrNoConverter means no step of the resolution order can handle a type.
	ErrNoConverter = errors.New("no converter found")
	// ErrAmbiguousConverter means more than one Factory claims a type.
	ErrAmbiguousConverter = errors.New("ambiguous converter")
	// ErrConversion wraps failures of a converter that was found but rejected the value.
	ErrConversion = errors.New("conversion failed")
)

// TypeConverter converts one Go type to a graph value and back.
type TypeConverter interface {
	// Write turns a non-nil domain value into a driver value.
	Write(value reflect.Value) (any, error)
	// Read turns a non-nil driver value into a value assignable to target.
	Read(graph any, target reflect.Type) (reflect.Value, error)
}

// Factory provides converters for a family of types, e.g. every type implementing an interface.
type Factory interface {
	Supports(t reflect.Type) bool
	Converter(t reflect.Type) TypeConverter
}

// Funcs adapts two plain functions to a TypeConverter.
type Funcs struct {
	WriteFunc func(value reflect.Value) (any, error)
	ReadFunc  func(graph any, target reflect.Type) (reflect.Value, error)
}

func (f Funcs) Write(value reflect.Value) (any, error) { return f.WriteFunc(value) }

func (f Funcs) Read(graph any, target reflect.Type) (reflect.Value, error) {
	return f.ReadFunc(graph, target)
}

// Typed builds a TypeConverter from strongly typed functions. D is the domain type and
// G the graph type the driver hands back.
func Typed[D, G any](write func(D) (G, error), read func(G) (D, error)) TypeConverter {
	return typed[D, G]{write: write, read: read}
}

type typed[D, G any] struct {
	write func(D) (G, error)
	read  func(G) (D, error)
}

func (c typed[D, G]) Write(value reflect.Value) (any, error) {
	d, ok := value.Interface().(D)
	if !ok {
		return nil, fmt.Errorf("%w: expected %T, got %s", ErrConversion, *new(D), value.Type())
	}
	return c.write(d)
}

func (c typed[D, G]) Read(graph any, target reflect.Type) (reflect.Value, error) {
	g, ok := graph.(G)
	if !ok {
		return reflect.Value{}, fmt.Errorf("%w: expected graph value %T, got %T", ErrConversion, *new(G), graph)
	}
	d, err := c.read(g)
	if err != nil {
		return reflect.Value{}, err
	}
	out := reflect.ValueOf(&d).Elem()
	if out.Type() != target && out.Type().ConvertibleTo(target) {
		out = out.Convert(target)
	}
	return out, nil
}

// Registry resolves converters. It is safe for concurrent use once built; the Register*
// methods exist for setup code and take a lock.
type Registry struct {
	mu         sync.RWMutex
	exact      map[reflect.Type]TypeConverter
	factories  []Factory
	named      map[string]TypeConverter
	mappers    map[string]CompositeMapper
	transforms map[string]KeyTransformation
}

// Option configures a Registry.
type Option func(*Registry)

// WithConverter registers a converter for exactly the type t.
func WithConverter(t reflect.Type, c TypeConverter) Option {
	return func(r *Registry) { r.exact[t] = c }
}

// WithFactory registers a converter factory.
func WithFactory(f Factory) Option {
	return func(r *Registry) { r.factories = append(r.factories, f) }
}

// WithNamedConverter registers a converter that properties select with convertWith:<name>.
func WithNamedConverter(name string, c TypeConverter) Option {
	return func(r *Registry) { r.named[name] = c }
}

// WithCompositeMapper registers a mapper that composite properties select with converter:<name>.
func WithCompositeMapper(name string, m CompositeMapper) Option {
	return func(r *Registry) { r.mappers[name] = m }
}

// WithKeyTransformation registers a key transformation for transformKeysWith:<name>.
func WithKeyTransformation(name string, t KeyTransformation) Option {
	return func(r *Registry) { r.transforms[name] = t }
}

// NewRegistry creates a registry holding the built-in defaults plus the given options.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		exact:   make(map[reflect.Type]TypeConverter),
		named:   make(map[string]TypeConverter),
		mappers: make(map[string]CompositeMapper),
		transforms: map[string]KeyTransformation{
			"identity": IdentityKeys,
			"upper":    UpperCaseKeys,
			"lower":    LowerCaseKeys,
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds an exact-type converter after construction.
func (r *Registry) Register(t reflect.Type, c TypeConverter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exact[t] = c
}

// RegisterFactory adds a factory after construction.
func (r *Registry) RegisterFactory(f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories = append(r.factories, f)
}

// Named returns the converter registered under name.
func (r *Registry) Named(name string) (TypeConverter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.named[name]
	return c, ok
}

// CompositeMapper returns the composite mapper registered under name.
func (r *Registry) CompositeMapper(name string) (CompositeMapper, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.mappers[name]
	return m, ok
}

// KeyTransformation returns the key transformation registered under name.
func (r *Registry) KeyTransformation(name string) (KeyTransformation, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.transforms[name]
	return t, ok
}

// WriteValue converts a domain value into a driver value. A non-nil override is used
// instead of the registry lookup. Nil pointers, interfaces, maps and slices become nil.
func (r *Registry) WriteValue(value reflect.Value, override TypeConverter) (any, error) {
	if !value.IsValid() || isNil(value) {
		return nil, nil
	}
	if override != nil {
		return override.Write(value)
	}
	return r.write(value)
}

// ReadValue converts a driver value into a value of type target. A nil graph value
// yields the zero value of target.
func (r *Registry) ReadValue(graph any, target reflect.Type, override TypeConverter) (reflect.Value, error) {
	if graph == nil {
		return reflect.Zero(target), nil
	}
	if override != nil {
		return override.Read(graph, target)
	}
	return r.read(graph, target)
}

func (r *Registry) write(v reflect.Value) (any, error) {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, nil
		}
		c, err := r.lookup(v.Type())
		if err != nil {
			return nil, err
		}
		if c != nil {
			return c.Write(v)
		}
		v = v.Elem()
	}

	c, err := r.lookup(v.Type())
	if err != nil {
		return nil, err
	}
	if c != nil {
		return c.Write(v)
	}
	return r.writeNative(v)
}

func (r *Registry) read(graph any, target reflect.Type) (reflect.Value, error) {
	if graph == nil {
		return reflect.Zero(target), nil
	}

	c, err := r.lookup(target)
	if err != nil {
		return reflect.Value{}, err
	}
	if c != nil {
		return c.Read(graph, target)
	}

	if target.Kind() == reflect.Pointer {
		elem, err := r.read(graph, target.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		ptr := reflect.New(target.Elem())
		ptr.Elem().Set(elem)
		return ptr, nil
	}
	return r.readNative(graph, target)
}

// lookup implements steps 2 to 4 of the resolution order. A nil converter with a nil
// error means the native representation applies.
func (r *Registry) lookup(t reflect.Type) (TypeConverter, error) {
	r.mu.RLock()
	c, ok := r.exact[t]
	factories := r.factories
	r.mu.RUnlock()
	if ok {
		return c, nil
	}

	var match Factory
	for _, f := range factories {
		if !f.Supports(t) {
			continue
		}
		if match != nil {
			return nil, fmt.Errorf("%w: more than one converter factory supports %s", ErrAmbiguousConverter, t)
		}
		match = f
	}
	if match != nil {
		return match.Converter(t), nil
	}

	return builtinFor(t), nil
}

// Supports reports whether values of t can be written and read without a per-property converter.
func (r *Registry) Supports(t reflect.Type) bool {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	c, err := r.lookup(t)
	if err != nil {
		return false
	}
	if c != nil {
		return true
	}
	if t.Kind() == reflect.Slice || t.Kind() == reflect.Array {
		return r.Supports(t.Elem())
	}
	return nativeKind(t)
}

func isNil(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}
