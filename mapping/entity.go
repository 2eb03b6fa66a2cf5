package mapping

import (
	"fmt"
	"reflect"

	"github.com/saulfrancisco-ruizacevedo/neopersist-ogm/convert"
)

// Node is embedded in a struct to mark it as a node entity. Its tag carries the labels:
//
//	type Person struct {
//		mapping.Node `neo4j:"primaryLabel:Person,labels:Human|Mammal"`
//	}
//
// A bare tag value (`neo4j:"Person"`) is the primary label. Without a tag the struct
// name is used. Embedding another node entity by value inherits its labels.
type Node struct{}

// RelationshipProperties is embedded in a struct that holds the properties of a
// relationship together with a reference to its target node.
type RelationshipProperties struct{}

var (
	nodeMarkerType    = reflect.TypeOf(Node{})
	relPropMarkerType = reflect.TypeOf(RelationshipProperties{})
)

// Direction of a relationship as seen from the entity declaring it.
type Direction int

const (
	Outgoing Direction = iota
	Incoming
	Undirected
)

func (d Direction) String() string {
	switch d {
	case Incoming:
		return "INCOMING"
	case Undirected:
		return "UNDIRECTED"
	}
	return "OUTGOING"
}

// Inverse is the direction as seen from the other end.
func (d Direction) Inverse() Direction {
	switch d {
	case Outgoing:
		return Incoming
	case Incoming:
		return Outgoing
	}
	return Undirected
}

func parseDirection(s string) (Direction, error) {
	switch s {
	case "", "OUTGOING":
		return Outgoing, nil
	case "INCOMING":
		return Incoming, nil
	case "UNDIRECTED":
		return Undirected, nil
	}
	return Outgoing, fmt.Errorf("unknown relationship direction %q", s)
}

// IDStrategy says where the value of an entity's id comes from.
type IDStrategy int

const (
	// AssignedID values are set by the application.
	AssignedID IDStrategy = iota
	// InternalID values are the database's own node or relationship ids.
	InternalID
	// GeneratedID values are produced by an IDGenerator before the first save.
	GeneratedID
)

// IDDescription describes how an entity is identified.
type IDDescription struct {
	Strategy IDStrategy
	// Property is the graph property holding assigned and generated ids. It is empty
	// for internal ids.
	Property string
	// ElementID is set for internal ids held in a string field; they are element ids
	// (elementId(n)) rather than legacy numeric ids (id(n)).
	ElementID bool
	Generator IDGenerator
	field     *PersistentProperty
}

// IsInternal reports whether the id is the database's own id.
func (d *IDDescription) IsInternal() bool { return d.Strategy == InternalID }

// IsElementID reports whether the id is read with elementId(n) instead of id(n).
func (d *IDDescription) IsElementID() bool { return d.Strategy == InternalID && d.ElementID }

// Field is the id field.
func (d *IDDescription) Field() *PersistentProperty { return d.field }

// PersistentProperty is one mapped field.
type PersistentProperty struct {
	// FieldName is the Go field name.
	FieldName string
	// Name is the graph property name.
	Name     string
	Type     reflect.Type
	Index    []int
	ReadOnly bool
	// IsID marks the id field; for internal ids it is not written as a property.
	IsID bool
	// Converter is the per-property converter selected with convertWith.
	Converter convert.TypeConverter
	// Composite is set for composite properties.
	Composite *convert.CompositeConverter
}

// IsCollection reports whether the property holds a list.
func (p *PersistentProperty) IsCollection() bool { return convert.IsCollection(p.Type) }

// ComponentType is the element type for collections and the property type otherwise.
func (p *PersistentProperty) ComponentType() reflect.Type {
	t := p.Type
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if p.IsCollection() && t.Kind() != reflect.Map {
		return t.Elem()
	}
	return t
}

// IsComposite reports whether the property is flattened into several graph properties.
func (p *PersistentProperty) IsComposite() bool { return p.Composite != nil }

// Value returns the field of the struct value v (not a pointer).
func (p *PersistentProperty) Value(v reflect.Value) reflect.Value {
	return v.FieldByIndex(p.Index)
}

// RelationshipDescription is one mapped association.
type RelationshipDescription struct {
	FieldName      string
	Index          []int
	Type           string
	Direction      Direction
	CascadeUpdates bool
	// Collection is set for slice fields and unset for a single pointer.
	Collection bool
	// FieldType is the declared type of the field.
	FieldType reflect.Type
	// Source is the entity declaring the relationship.
	Source *PersistentEntity
	// Target is the node entity at the other end.
	Target *PersistentEntity
	// Properties is the relationship-properties entity, if the field holds one.
	Properties *PersistentEntity
}

// HasProperties reports whether the relationship carries a relationship-properties entity.
func (r *RelationshipDescription) HasProperties() bool { return r.Properties != nil }

// Value returns the field of the struct value v (not a pointer).
func (r *RelationshipDescription) Value(v reflect.Value) reflect.Value {
	return v.FieldByIndex(r.Index)
}

// ElementType is the struct type of the related objects (node or relationship properties).
func (r *RelationshipDescription) ElementType() reflect.Type {
	t := r.FieldType
	if r.Collection {
		t = t.Elem()
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

// PersistentEntity is the mapping of one struct type. It is built once by a
// MappingContext and read-only afterwards.
type PersistentEntity struct {
	Type reflect.Type

	primaryLabel     string
	additionalLabels []string
	parentLabels     []string
	id               *IDDescription
	properties       []*PersistentProperty
	byName           map[string]*PersistentProperty
	byField          map[string]*PersistentProperty
	relationships    []*RelationshipDescription
	relsByField      map[string]*RelationshipDescription
	dynamicLabels    []int

	relationshipProperties bool
	persistTypeInfo        bool
	targetNode             []int
	targetType             reflect.Type
	sourceNode             []int
}

// Name is the struct name.
func (e *PersistentEntity) Name() string { return e.Type.Name() }

// PrimaryLabel is the label every node of this entity carries first.
func (e *PersistentEntity) PrimaryLabel() string { return e.primaryLabel }

// AdditionalLabels are the labels besides the primary one: own extra labels first,
// then the labels inherited from embedded node entities.
func (e *PersistentEntity) AdditionalLabels() []string {
	out := make([]string, 0, len(e.additionalLabels)+len(e.parentLabels))
	seen := map[string]bool{e.primaryLabel: true}
	for _, l := range append(append([]string(nil), e.additionalLabels...), e.parentLabels...) {
		if !seen[l] {
			seen[l] = true
			out = append(out, l)
		}
	}
	return out
}

// StaticLabels are all labels explained by the type itself.
func (e *PersistentEntity) StaticLabels() []string {
	return append([]string{e.primaryLabel}, e.AdditionalLabels()...)
}

// IDDescription describes the id of the entity. It is nil for relationship-properties
// entities without an id.
func (e *PersistentEntity) IDDescription() *IDDescription { return e.id }

// Properties are the mapped fields in declaration order, id included.
func (e *PersistentEntity) Properties() []*PersistentProperty { return e.properties }

// Property looks up a property by graph property name.
func (e *PersistentEntity) Property(name string) (*PersistentProperty, bool) {
	p, ok := e.byName[name]
	return p, ok
}

// PropertyByField looks up a property by Go field name.
func (e *PersistentEntity) PropertyByField(field string) (*PersistentProperty, bool) {
	p, ok := e.byField[field]
	return p, ok
}

// Relationships are the mapped associations in declaration order.
func (e *PersistentEntity) Relationships() []*RelationshipDescription { return e.relationships }

// RelationshipByField looks up a relationship by Go field name.
func (e *PersistentEntity) RelationshipByField(field string) (*RelationshipDescription, bool) {
	r, ok := e.relsByField[field]
	return r, ok
}

// HasDynamicLabels reports whether the entity declares a dynamicLabels field.
func (e *PersistentEntity) HasDynamicLabels() bool { return e.dynamicLabels != nil }

// DynamicLabels returns the dynamic labels field of v (a struct value).
func (e *PersistentEntity) DynamicLabels(v reflect.Value) reflect.Value {
	return v.FieldByIndex(e.dynamicLabels)
}

// IsRelationshipProperties reports whether the entity holds relationship properties.
func (e *PersistentEntity) IsRelationshipProperties() bool { return e.relationshipProperties }

// PersistTypeInfo reports whether the struct name is stored with relationship properties.
func (e *PersistentEntity) PersistTypeInfo() bool { return e.persistTypeInfo }

// TargetNode returns the target node field of a relationship-properties value.
func (e *PersistentEntity) TargetNode(v reflect.Value) reflect.Value {
	return v.FieldByIndex(e.targetNode)
}

// TargetType is the struct type of the target node of a relationship-properties entity.
func (e *PersistentEntity) TargetType() reflect.Type { return e.targetType }

// SourceNode returns the source node field of a relationship-properties value and
// whether the entity declares one.
func (e *PersistentEntity) SourceNode(v reflect.Value) (reflect.Value, bool) {
	if e.sourceNode == nil {
		return reflect.Value{}, false
	}
	return v.FieldByIndex(e.sourceNode), true
}

// IDValue returns the id field of v (a struct value).
func (e *PersistentEntity) IDValue(v reflect.Value) reflect.Value {
	return v.FieldByIndex(e.id.field.Index)
}

// IsNew reports whether v has not been saved yet, judged by a zero id.
func (e *PersistentEntity) IsNew(v reflect.Value) bool {
	if e.id == nil {
		return true
	}
	return e.IDValue(v).IsZero()
}

func (e *PersistentEntity) String() string {
	return fmt.Sprintf("PersistentEntity(%s:%s)", e.Type, e.primaryLabel)
}
