package mapping

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"

	"github.com/saulfrancisco-ruizacevedo/neopersist-ogm/convert"
)

var stringSliceType = reflect.TypeOf([]string(nil))

// labelDecl is one Node marker found while walking a struct and its embedded structs.
type labelDecl struct {
	depth int
	owner reflect.Type
	opts  tagOptions
}

func (d labelDecl) primary() string {
	if v, ok := d.opts.value("primaryLabel"); ok && v != "" {
		return v
	}
	if d.opts.bare != "" {
		return d.opts.bare
	}
	return d.owner.Name()
}

// scanner collects the declarations of one struct type.
type scanner struct {
	ctx      *MappingContext
	entity   *PersistentEntity
	building map[reflect.Type]*PersistentEntity

	labels      []labelDecl
	targetNodes int
	sourceNodes int
}

func (c *MappingContext) build(t reflect.Type, building map[reflect.Type]*PersistentEntity) (*PersistentEntity, error) {
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: type %s is not a struct", ErrMetadata, t)
	}
	if cached, ok := c.entities.Load(t); ok {
		return cached.(*PersistentEntity), nil
	}
	// An entity still being built is returned as is; this is what ends the recursion
	// for mutually referencing types.
	if e, ok := building[t]; ok {
		return e, nil
	}

	e := &PersistentEntity{
		Type:        t,
		byName:      make(map[string]*PersistentProperty),
		byField:     make(map[string]*PersistentProperty),
		relsByField: make(map[string]*RelationshipDescription),
	}
	building[t] = e

	s := &scanner{ctx: c, entity: e, building: building}
	if err := s.fields(t, nil, 0); err != nil {
		return nil, err
	}
	if err := s.finish(); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *scanner) fields(t reflect.Type, index []int, depth int) error {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		idx := append(append([]int(nil), index...), i)
		tag, tagged := f.Tag.Lookup(tagName)
		opts := parseTag(tag)

		switch {
		case f.Type == nodeMarkerType:
			s.labels = append(s.labels, labelDecl{depth: depth, owner: t, opts: opts})
		case f.Type == relPropMarkerType:
			s.entity.relationshipProperties = true
			s.entity.persistTypeInfo = opts.has("persistTypeInfo")
		case tag == "-":
		case f.Anonymous && f.Type.Kind() == reflect.Struct && !tagged:
			if err := s.fields(f.Type, idx, depth+1); err != nil {
				return err
			}
		case f.Anonymous, !f.IsExported():
		default:
			if err := s.field(f, idx, opts); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *scanner) field(f reflect.StructField, idx []int, opts tagOptions) error {
	e := s.entity
	switch {
	case opts.has("dynamicLabels"):
		if f.Type != stringSliceType {
			return metadataError(e, "dynamic labels field %s must be []string, got %s", f.Name, f.Type)
		}
		if e.dynamicLabels != nil {
			return metadataError(e, "more than one dynamic labels field")
		}
		e.dynamicLabels = idx
		return nil
	case opts.has("targetNode"):
		return s.targetNode(f, idx)
	case opts.has("sourceNode"):
		if indirect(f.Type).Kind() != reflect.Struct || f.Type.Kind() != reflect.Pointer {
			return metadataError(e, "source node field %s must be a pointer to a node entity", f.Name)
		}
		s.sourceNodes++
		e.sourceNode = idx
		return nil
	case isRelationshipField(f, opts):
		return s.relationship(f, idx, opts)
	}
	return s.property(f, idx, opts)
}

func isRelationshipField(f reflect.StructField, opts tagOptions) bool {
	if opts.has("relationship") {
		return true
	}
	if _, ok := opts.value("relationship"); ok {
		return true
	}
	if _, ok := opts.value("property"); ok {
		return false
	}
	t := f.Type
	if t.Kind() == reflect.Slice {
		t = t.Elem()
	}
	return t.Kind() == reflect.Pointer && IsEntity(t.Elem())
}

func (s *scanner) targetNode(f reflect.StructField, idx []int) error {
	e := s.entity
	if f.Type.Kind() != reflect.Pointer || f.Type.Elem().Kind() != reflect.Struct {
		return metadataError(e, "target node field %s must be a pointer to a node entity", f.Name)
	}
	s.targetNodes++
	e.targetNode = idx
	e.targetType = f.Type.Elem()
	if _, err := s.ctx.build(e.targetType, s.building); err != nil {
		return err
	}
	return nil
}

func (s *scanner) relationship(f reflect.StructField, idx []int, opts tagOptions) error {
	e := s.entity

	collection := f.Type.Kind() == reflect.Slice
	elem := f.Type
	if collection {
		elem = elem.Elem()
	}
	if elem.Kind() != reflect.Pointer || elem.Elem().Kind() != reflect.Struct {
		return metadataError(e, "relationship field %s must be *T or []*T, got %s", f.Name, f.Type)
	}
	elem = elem.Elem()

	relType, ok := opts.value("relationship")
	if !ok || relType == "" {
		relType = relationshipType(f.Name)
	}
	dir, err := parseDirection(opts.values["direction"])
	if err != nil {
		return metadataError(e, "field %s: %v", f.Name, err)
	}
	cascade := true
	if v, ok := opts.value("cascadeUpdates"); ok {
		if cascade, err = strconv.ParseBool(v); err != nil {
			return metadataError(e, "field %s: cascadeUpdates must be true or false, got %q", f.Name, v)
		}
	}

	rd := &RelationshipDescription{
		FieldName:      f.Name,
		Index:          idx,
		Type:           relType,
		Direction:      dir,
		CascadeUpdates: cascade,
		Collection:     collection,
		FieldType:      f.Type,
		Source:         e,
	}

	related, err := s.ctx.build(elem, s.building)
	if err != nil {
		return err
	}
	if hasMarker(elem, relPropMarkerType) {
		rd.Properties = related
		targetType, ok := targetNodeType(elem)
		if !ok {
			return metadataError(related, "relationship properties must declare exactly one targetNode field")
		}
		if rd.Target, err = s.ctx.build(targetType, s.building); err != nil {
			return err
		}
	} else {
		rd.Target = related
	}

	if _, dup := e.relsByField[f.Name]; dup {
		return metadataError(e, "duplicate relationship field %s", f.Name)
	}
	e.relationships = append(e.relationships, rd)
	e.relsByField[f.Name] = rd
	return nil
}

// targetNodeType finds the targetNode field type without requiring the entity to be complete.
func targetNodeType(t reflect.Type) (reflect.Type, bool) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if parseTag(f.Tag.Get(tagName)).has("targetNode") && f.Type.Kind() == reflect.Pointer {
			return f.Type.Elem(), true
		}
		if f.Anonymous && f.Type.Kind() == reflect.Struct {
			if tt, ok := targetNodeType(f.Type); ok {
				return tt, true
			}
		}
	}
	return nil, false
}

func (s *scanner) property(f reflect.StructField, idx []int, opts tagOptions) error {
	e := s.entity
	conversions := s.ctx.conversions

	name, ok := opts.value("property")
	if !ok || name == "" {
		name = propertyName(f.Name)
	}
	p := &PersistentProperty{
		FieldName: f.Name,
		Name:      name,
		Type:      f.Type,
		Index:     idx,
		ReadOnly:  opts.has("readonly"),
	}

	if opts.has("id") {
		if err := s.id(p, opts); err != nil {
			return err
		}
	}

	if converter, ok := opts.value("convertWith"); ok {
		c, found := conversions.Named(converter)
		if !found {
			return metadataError(e, "field %s: no converter registered as %q", f.Name, converter)
		}
		p.Converter = c
	}

	if opts.has("composite") {
		if err := s.composite(p, opts); err != nil {
			return err
		}
	}

	if _, dup := e.byName[p.Name]; dup {
		return metadataError(e, "duplicate property %s", p.Name)
	}
	e.properties = append(e.properties, p)
	e.byName[p.Name] = p
	e.byField[p.FieldName] = p
	return nil
}

func (s *scanner) id(p *PersistentProperty, opts tagOptions) error {
	e := s.entity
	if e.id != nil {
		return metadataError(e, "more than one id field (%s and %s)", e.id.field.FieldName, p.FieldName)
	}
	p.IsID = true
	d := &IDDescription{Strategy: AssignedID, Property: p.Name, field: p}

	if opts.has("generated") {
		genName, hasGen := opts.value("generator")
		if ref, hasRef := opts.value("generatorRef"); hasRef {
			genName, hasGen = ref, true
		}
		if hasGen {
			g, ok := s.ctx.generators[genName]
			if !ok {
				return metadataError(e, "field %s: no id generator registered as %q", p.FieldName, genName)
			}
			d.Strategy = GeneratedID
			d.Generator = g
		} else {
			switch indirect(p.Type).Kind() {
			case reflect.Int64:
			case reflect.String:
				d.ElementID = true
			default:
				return metadataError(e, "internal id field %s must be int64 or string, got %s", p.FieldName, p.Type)
			}
			d.Strategy = InternalID
			d.Property = ""
		}
	}
	e.id = d
	return nil
}

func (s *scanner) composite(p *PersistentProperty, opts tagOptions) error {
	e := s.entity
	conversions := s.ctx.conversions

	var mapper convert.CompositeMapper
	if name, ok := opts.value("converter"); ok {
		m, found := conversions.CompositeMapper(name)
		if !found {
			return metadataError(e, "field %s: no composite converter registered as %q", p.FieldName, name)
		}
		mapper = m
	}

	if mapper == nil {
		if p.Type.Kind() != reflect.Map {
			return fmt.Errorf("%w: @CompositeProperty can only be used on Map properties without additional configuration. Was used on `%s` in `%s`",
				ErrMetadata, p.FieldName, e.Type.Name())
		}
		if p.Type.Key().Kind() != reflect.String {
			return fmt.Errorf("%w: @CompositeProperty can only be used on Map properties with a key type of String or enum. Was used on `%s` in `%s`",
				ErrMetadata, p.FieldName, e.Type.Name())
		}
	} else if mapper.DomainType() != p.Type {
		return metadataError(e, "composite converter for field %s handles %s, but the field is %s", p.FieldName, mapper.DomainType(), p.Type)
	}

	var transform convert.KeyTransformation
	if name, ok := opts.value("transformKeysWith"); ok {
		t, found := conversions.KeyTransformation(name)
		if !found {
			return metadataError(e, "field %s: no key transformation registered as %q", p.FieldName, name)
		}
		transform = t
	}

	prefix, ok := opts.value("prefix")
	if !ok || prefix == "" {
		prefix = p.Name
	}
	cc, err := convert.NewCompositeConverter(conversions, p.Type, prefix, opts.values["delimiter"], transform, mapper)
	if err != nil {
		return metadataError(e, "field %s: %v", p.FieldName, err)
	}
	p.Composite = cc
	return nil
}

func (s *scanner) finish() error {
	e := s.entity

	sort.SliceStable(s.labels, func(i, j int) bool { return s.labels[i].depth < s.labels[j].depth })
	e.primaryLabel = e.Type.Name()
	seenAt := map[int]labelDecl{}
	for _, d := range s.labels {
		if prev, ok := seenAt[d.depth]; ok && prev.primary() != d.primary() {
			return metadataError(e, "ambiguous inheritance: conflicting primary labels %s and %s", prev.primary(), d.primary())
		}
		seenAt[d.depth] = d

		if d.depth == 0 {
			e.primaryLabel = d.primary()
			e.additionalLabels = d.opts.list("labels")
			continue
		}
		e.parentLabels = append(e.parentLabels, d.primary())
		e.parentLabels = append(e.parentLabels, d.opts.list("labels")...)
	}

	if e.relationshipProperties {
		if len(s.labels) > 0 {
			return metadataError(e, "relationship properties must not be annotated as a node")
		}
		if s.targetNodes != 1 {
			return metadataError(e, "relationship properties must declare exactly one targetNode field, found %d", s.targetNodes)
		}
		if s.sourceNodes > 1 {
			return metadataError(e, "relationship properties may declare at most one sourceNode field")
		}
		if e.id == nil || e.id.Strategy != InternalID {
			return metadataError(e, "relationship properties must declare exactly one generated id field holding the relationship id")
		}
		return nil
	}

	if s.targetNodes > 0 || s.sourceNodes > 0 {
		return metadataError(e, "targetNode and sourceNode are only valid on relationship properties")
	}
	if e.id == nil {
		return metadataError(e, "missing id field; tag one field with `neo4j:\"id\"`")
	}
	return nil
}
