// Package mapping builds the persistent-entity model from tagged Go structs: labels,
// ids, properties, relationships, composite properties and dynamic labels.
//
// Entities are described with the `neo4j` struct tag:
//
//	type Movie struct {
//		mapping.Node `neo4j:"Movie"`
//
//		ID      string            `neo4j:"id,generated,generator:uuid"`
//		Title   string            `neo4j:"property:title"`
//		Info    map[string]string `neo4j:"composite,prefix:info"`
//		Labels  []string          `neo4j:"dynamicLabels"`
//		Actors  []*Role           `neo4j:"relationship:ACTED_IN,direction:INCOMING"`
//		Secret  string            `neo4j:"-"`
//	}
//
// A MappingContext parses each type once and caches the result; the cached
// PersistentEntity values are immutable and safe to share between goroutines.
package mapping

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/saulfrancisco-ruizacevedo/neopersist-ogm/convert"
	"github.com/saulfrancisco-ruizacevedo/neopersist-ogm/logging"
)

// ErrMetadata is wrapped by every error caused by an invalid entity declaration.
var ErrMetadata = errors.New("invalid mapping metadata")

// MappingContext holds the persistent entities of an application.
type MappingContext struct {
	conversions *convert.Registry
	generators  map[string]IDGenerator
	log         *logging.Logger

	// entities caches *PersistentEntity by struct type to avoid repeated reflection.
	entities sync.Map
	// buildMu serialises builds so that mutually referencing entities are published together.
	buildMu sync.Mutex
}

// Option configures a MappingContext.
type Option func(*MappingContext)

// WithConversions sets the conversion registry used for property converters.
func WithConversions(r *convert.Registry) Option {
	return func(c *MappingContext) { c.conversions = r }
}

// WithIDGenerator registers a generator for generatorRef:<name>.
func WithIDGenerator(name string, g IDGenerator) Option {
	return func(c *MappingContext) { c.generators[name] = g }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *MappingContext) { c.log = l }
}

// NewMappingContext creates an empty mapping context.
func NewMappingContext(opts ...Option) *MappingContext {
	c := &MappingContext{
		generators: map[string]IDGenerator{"uuid": UUIDGenerator{}},
		log:        logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.conversions == nil {
		c.conversions = convert.NewRegistry()
	}
	c.log = c.log.Named("mapping")
	return c
}

// Conversions returns the registry shared by all entities of this context.
func (c *MappingContext) Conversions() *convert.Registry { return c.conversions }

// Register builds the given types up front so that declaration errors surface at startup.
// Values may be struct values, pointers or reflect.Type.
func (c *MappingContext) Register(types ...any) error {
	for _, t := range types {
		typ, ok := t.(reflect.Type)
		if !ok {
			typ = reflect.TypeOf(t)
		}
		if _, err := c.PersistentEntity(typ); err != nil {
			return err
		}
	}
	return nil
}

// PersistentEntity returns the entity for t, building and caching it on first use.
func (c *MappingContext) PersistentEntity(t reflect.Type) (*PersistentEntity, error) {
	t = indirect(t)
	if cached, ok := c.entities.Load(t); ok {
		return cached.(*PersistentEntity), nil
	}

	c.buildMu.Lock()
	defer c.buildMu.Unlock()
	if cached, ok := c.entities.Load(t); ok {
		return cached.(*PersistentEntity), nil
	}

	building := make(map[reflect.Type]*PersistentEntity)
	e, err := c.build(t, building)
	if err != nil {
		return nil, err
	}
	// Publish the whole batch only after every entity in it is valid.
	for typ, ent := range building {
		c.entities.Store(typ, ent)
		c.log.Debug("registered entity", "type", typ.String(), "labels", ent.StaticLabels(), "relationships", len(ent.relationships))
	}
	return e, nil
}

// RequiredNodeDescription returns the entity for t and fails unless t is a node entity.
func (c *MappingContext) RequiredNodeDescription(t reflect.Type) (*PersistentEntity, error) {
	e, err := c.PersistentEntity(t)
	if err != nil {
		return nil, err
	}
	if e.IsRelationshipProperties() {
		return nil, fmt.Errorf("%w: %s holds relationship properties and is not a node entity", ErrMetadata, e.Name())
	}
	return e, nil
}

// Entities lists every entity built so far, sorted by type name.
func (c *MappingContext) Entities() []*PersistentEntity {
	var out []*PersistentEntity
	c.entities.Range(func(_, v any) bool {
		out = append(out, v.(*PersistentEntity))
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Type.String() < out[j].Type.String() })
	return out
}

// IsEntity reports whether t is a struct embedding Node or RelationshipProperties.
func IsEntity(t reflect.Type) bool {
	t = indirect(t)
	return t.Kind() == reflect.Struct && (hasMarker(t, nodeMarkerType) || hasMarker(t, relPropMarkerType))
}

func indirect(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

func hasMarker(t reflect.Type, marker reflect.Type) bool {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Type == marker {
			return true
		}
		if f.Anonymous && f.Type.Kind() == reflect.Struct && hasMarker(f.Type, marker) {
			return true
		}
	}
	return false
}

func metadataError(e *PersistentEntity, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrMetadata, e.Type.Name(), fmt.Sprintf(format, args...))
}
