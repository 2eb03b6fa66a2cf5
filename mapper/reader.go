// Package mapper turns driver records into mapped objects and mapped objects into
// statement parameters.
//
// Reading happens in passes. A Pass owns an identity map keyed by element id, so a
// node reached through several records or relationship paths becomes one object, and
// cycles between objects terminate.
package mapper

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/saulfrancisco-ruizacevedo/neopersist-ogm/convert"
	"github.com/saulfrancisco-ruizacevedo/neopersist-ogm/logging"
	"github.com/saulfrancisco-ruizacevedo/neopersist-ogm/mapping"
	"github.com/saulfrancisco-ruizacevedo/neopersist-ogm/statement"
)

// Reader reconstructs objects from records. It holds no per-read state and is safe
// for concurrent use; each read runs in its own Pass.
type Reader struct {
	conversions *convert.Registry
	log         *logging.Logger
}

// Option configures a Reader.
type Option func(*Reader)

// WithLogger sets the logger used for skipped relationships.
func WithLogger(l *logging.Logger) Option {
	return func(r *Reader) { r.log = l }
}

// NewReader creates a reader using the conversions of ctx.
func NewReader(ctx *mapping.MappingContext, opts ...Option) *Reader {
	r := &Reader{conversions: ctx.Conversions(), log: logging.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.Named("mapper")
	return r
}

type objectKey struct {
	elementID string
	typ       reflect.Type
}

// relKey identifies a relationship-properties object. The owner is part of the key
// because the target node depends on which end the relationship is read from.
type relKey struct {
	elementID string
	owner     string
}

type linkKey struct {
	owner objectKey
	field string
}

type link struct {
	values []reflect.Value
	seen   map[string]bool
}

// Pass is one reconstruction with its own identity map. It is not safe for
// concurrent use.
type Pass struct {
	r     *Reader
	depth int
	nodes map[objectKey]reflect.Value
	rels  map[relKey]reflect.Value
	links map[linkKey]*link
	roots map[string]bool
}

// PassOption configures a Pass.
type PassOption func(*Pass)

// Depth limits wiring to objects fewer than depth hops away from the root. Objects
// at exactly depth hops are the frontier of a load: their relationships were not
// fetched, so their relationship fields stay nil. A negative depth wires everything
// the records contain.
func Depth(depth int) PassOption {
	return func(p *Pass) { p.depth = depth }
}

// NewPass starts a reconstruction.
func (r *Reader) NewPass(opts ...PassOption) *Pass {
	p := &Pass{
		r:     r,
		depth: -1,
		nodes: make(map[objectKey]reflect.Value),
		rels:  make(map[relKey]reflect.Value),
		links: make(map[linkKey]*link),
		roots: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ReadAll maps records in one pass and returns the distinct roots, as pointers to
// e.Type, in result order.
func (r *Reader) ReadAll(e *mapping.PersistentEntity, records []*neo4j.Record, opts ...PassOption) ([]reflect.Value, error) {
	p := r.NewPass(opts...)
	out := make([]reflect.Value, 0, len(records))
	for i, rec := range records {
		v, first, err := p.Read(e, rec)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if first {
			out = append(out, v)
		}
	}
	return out, nil
}

// Read maps one record: the root node of e and everything reachable from it through
// mapped relationships among the record's nodes, relationships and paths. first is
// false when an earlier record of the pass already returned the same root.
func (p *Pass) Read(e *mapping.PersistentEntity, rec *neo4j.Record) (root reflect.Value, first bool, err error) {
	node, ok := rootNode(e, rec)
	if !ok {
		return reflect.Value{}, false, fmt.Errorf("%w: no %s node in record with columns %v", ErrNullResult, e.PrimaryLabel(), rec.Keys)
	}
	g := collect(rec)
	g.addNode(node)

	root, err = p.node(e, node)
	if err != nil {
		return reflect.Value{}, false, err
	}
	if err := p.wire(e, node, root, g); err != nil {
		return reflect.Value{}, false, err
	}
	first = !p.roots[node.ElementId]
	p.roots[node.ElementId] = true
	return root, first, nil
}

// rootNode is the value of the n column, or the first node carrying the primary label.
func rootNode(e *mapping.PersistentEntity, rec *neo4j.Record) (dbtype.Node, bool) {
	if v, ok := rec.Get(statement.NameOfRootNode); ok {
		n, isNode := v.(dbtype.Node)
		return n, isNode
	}
	for _, v := range rec.Values {
		if n, ok := v.(dbtype.Node); ok && slices.Contains(n.Labels, e.PrimaryLabel()) {
			return n, true
		}
	}
	return dbtype.Node{}, false
}

// node returns the object for n, creating and populating it on first sight.
func (p *Pass) node(e *mapping.PersistentEntity, n dbtype.Node) (reflect.Value, error) {
	key := objectKey{n.ElementId, e.Type}
	if v, ok := p.nodes[key]; ok {
		return v, nil
	}
	v := reflect.New(e.Type)
	// Registered before population so that cycles resolve to this instance.
	p.nodes[key] = v

	if err := p.r.populate(e, v.Elem(), n.Props); err != nil {
		return reflect.Value{}, err
	}
	if err := p.r.setInternalID(e, v.Elem(), n.Id, n.ElementId); err != nil {
		return reflect.Value{}, err
	}
	if e.HasDynamicLabels() {
		static := e.StaticLabels()
		var dynamic []string
		for _, l := range n.Labels {
			if !slices.Contains(static, l) {
				dynamic = append(dynamic, l)
			}
		}
		field := e.DynamicLabels(v.Elem())
		field.Set(reflect.ValueOf(dynamic).Convert(field.Type()))
	}
	return v, nil
}

func (p *Pass) relationshipProperties(rd *mapping.RelationshipDescription, rel dbtype.Relationship, owner reflect.Value, ownerID string, target reflect.Value) (reflect.Value, error) {
	key := relKey{rel.ElementId, ownerID}
	if v, ok := p.rels[key]; ok {
		return v, nil
	}
	e := rd.Properties
	v := reflect.New(e.Type)
	p.rels[key] = v

	if err := p.r.populate(e, v.Elem(), rel.Props); err != nil {
		return reflect.Value{}, err
	}
	if err := p.r.setInternalID(e, v.Elem(), rel.Id, rel.ElementId); err != nil {
		return reflect.Value{}, err
	}
	if tn := e.TargetNode(v.Elem()); target.Type().AssignableTo(tn.Type()) {
		tn.Set(target)
	}
	if sn, ok := e.SourceNode(v.Elem()); ok && owner.Type().AssignableTo(sn.Type()) {
		sn.Set(owner)
	}
	return v, nil
}

type pending struct {
	e    *mapping.PersistentEntity
	node dbtype.Node
	obj  reflect.Value
	hops int
}

// wire walks the mapped relationships breadth first from the root and assigns the
// relationship fields of every object it reaches inside the pass depth.
func (p *Pass) wire(e *mapping.PersistentEntity, node dbtype.Node, obj reflect.Value, g *graph) error {
	queue := []pending{{e, node, obj, 0}}
	visited := map[objectKey]bool{}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		key := objectKey{cur.node.ElementId, cur.e.Type}
		if visited[key] {
			continue
		}
		visited[key] = true
		if p.depth >= 0 && cur.hops >= p.depth {
			continue
		}

		for _, rd := range cur.e.Relationships() {
			for _, rel := range g.relationshipsOf(cur.node.ElementId, rd) {
				otherID := rel.EndElementId
				if otherID == cur.node.ElementId {
					otherID = rel.StartElementId
				}
				other, ok := g.nodes[otherID]
				if !ok || !slices.Contains(other.Labels, rd.Target.PrimaryLabel()) {
					p.r.log.Debug("skipping unmappable relationship", "type", rel.Type, "field", rd.FieldName, "labels", other.Labels)
					continue
				}
				target, err := p.node(rd.Target, other)
				if err != nil {
					return err
				}
				value, id := target, other.ElementId
				if rd.HasProperties() {
					if value, err = p.relationshipProperties(rd, rel, cur.obj, cur.node.ElementId, target); err != nil {
						return err
					}
					id = rel.ElementId
				}
				p.link(key, cur.obj, rd, id, value)
				queue = append(queue, pending{rd.Target, other, target, cur.hops + 1})
			}
		}
	}
	return nil
}

// link adds value to the relationship field of obj. Values already linked in this
// pass are skipped; the field always holds everything the pass has linked so far.
func (p *Pass) link(owner objectKey, obj reflect.Value, rd *mapping.RelationshipDescription, id string, value reflect.Value) {
	k := linkKey{owner, rd.FieldName}
	l := p.links[k]
	if l == nil {
		l = &link{seen: map[string]bool{}}
		p.links[k] = l
	}
	if l.seen[id] {
		return
	}
	l.seen[id] = true
	l.values = append(l.values, value)

	field := rd.Value(obj.Elem())
	if !rd.Collection {
		if len(l.values) == 1 {
			field.Set(value)
		} else {
			p.r.log.Debug("ignoring additional relationship for single valued field", "field", rd.FieldName, "type", rd.Type)
		}
		return
	}
	s := reflect.MakeSlice(rd.FieldType, len(l.values), len(l.values))
	for i, v := range l.values {
		s.Index(i).Set(v)
	}
	field.Set(s)
}

// populate copies the graph properties into the struct value v. A failed conversion
// fails the whole object.
func (r *Reader) populate(e *mapping.PersistentEntity, v reflect.Value, props map[string]any) error {
	id := e.IDDescription()
	for _, prop := range e.Properties() {
		if prop.IsID && id != nil && id.IsInternal() {
			continue
		}
		field := prop.Value(v)
		if prop.IsComposite() {
			value, err := prop.Composite.Read(props)
			if err != nil {
				return mappingError("%s.%s: %w", e.Name(), prop.FieldName, err)
			}
			field.Set(value)
			continue
		}
		graph, ok := props[prop.Name]
		if !ok {
			continue
		}
		value, err := r.conversions.ReadValue(graph, prop.Type, prop.Converter)
		if err != nil {
			return mappingError("%s.%s: %w", e.Name(), prop.FieldName, err)
		}
		field.Set(value)
	}
	return nil
}

func (r *Reader) setInternalID(e *mapping.PersistentEntity, v reflect.Value, id int64, elementID string) error {
	d := e.IDDescription()
	if d == nil || !d.IsInternal() {
		return nil
	}
	var graph any = id
	if d.IsElementID() {
		graph = elementID
	}
	return r.setID(e, v, graph)
}

func (r *Reader) setID(e *mapping.PersistentEntity, v reflect.Value, graph any) error {
	d := e.IDDescription()
	value, err := r.conversions.ReadValue(graph, d.Field().Type, nil)
	if err != nil {
		return mappingError("%s.%s: %w", e.Name(), d.Field().FieldName, err)
	}
	e.IDValue(v).Set(value)
	return nil
}

// ApplyID copies the id returned by a save statement in the __id__ column into the
// struct value v. Only internal ids are assigned by the database.
func (r *Reader) ApplyID(e *mapping.PersistentEntity, v reflect.Value, rec *neo4j.Record) error {
	d := e.IDDescription()
	if d == nil || !d.IsInternal() {
		return nil
	}
	graph, ok := rec.Get(statement.NameOfIDParam)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoSuchColumn, statement.NameOfIDParam)
	}
	return r.setID(e, v, graph)
}

// graph indexes the nodes and relationships found anywhere in a record.
type graph struct {
	nodes  map[string]dbtype.Node
	rels   map[string]dbtype.Relationship
	byNode map[string][]string
}

func collect(rec *neo4j.Record) *graph {
	g := &graph{
		nodes:  map[string]dbtype.Node{},
		rels:   map[string]dbtype.Relationship{},
		byNode: map[string][]string{},
	}
	for _, v := range rec.Values {
		g.add(v)
	}
	return g
}

func (g *graph) add(v any) {
	switch v := v.(type) {
	case dbtype.Node:
		g.addNode(v)
	case dbtype.Relationship:
		g.addRelationship(v)
	case dbtype.Path:
		for _, n := range v.Nodes {
			g.addNode(n)
		}
		for _, r := range v.Relationships {
			g.addRelationship(r)
		}
	case []any:
		for _, item := range v {
			g.add(item)
		}
	}
}

func (g *graph) addNode(n dbtype.Node) { g.nodes[n.ElementId] = n }

func (g *graph) addRelationship(r dbtype.Relationship) {
	if _, ok := g.rels[r.ElementId]; ok {
		return
	}
	g.rels[r.ElementId] = r
	g.byNode[r.StartElementId] = append(g.byNode[r.StartElementId], r.ElementId)
	if r.EndElementId != r.StartElementId {
		g.byNode[r.EndElementId] = append(g.byNode[r.EndElementId], r.ElementId)
	}
}

// relationshipsOf lists the relationships of the node that match rd by type and by
// direction as seen from the node.
func (g *graph) relationshipsOf(elementID string, rd *mapping.RelationshipDescription) []dbtype.Relationship {
	var out []dbtype.Relationship
	for _, id := range g.byNode[elementID] {
		r := g.rels[id]
		if r.Type != rd.Type {
			continue
		}
		switch rd.Direction {
		case mapping.Outgoing:
			if r.StartElementId != elementID {
				continue
			}
		case mapping.Incoming:
			if r.EndElementId != elementID {
				continue
			}
		}
		out = append(out, r)
	}
	return out
}
