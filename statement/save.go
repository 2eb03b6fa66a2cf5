package statement

import (
	"fmt"

	"github.com/saulfrancisco-ruizacevedo/neopersist-ogm/cypher"
	"github.com/saulfrancisco-ruizacevedo/neopersist-ogm/mapping"
)

func readOnlyProperties(e *mapping.PersistentEntity) []string {
	var names []string
	for _, p := range e.Properties() {
		if p.ReadOnly && !p.IsComposite() {
			names = append(names, p.Name)
		}
	}
	return names
}

// setProperties replaces all properties of the root node with source while keeping
// read-only properties as stored.
func setProperties(st *cypher.Statement, e *mapping.PersistentEntity, source cypher.Expression) *cypher.Statement {
	n := root()
	ro := readOnlyProperties(e)
	if len(ro) == 0 {
		return st.Set(cypher.SetTo(n, source))
	}
	return st.With(n, cypher.As(source, nameOfProps)).
		Set(cypher.SetTo(n, cypher.ProjectAllWith(nameOfProps, n, ro...)))
}

func returnIDs(st *cypher.Statement, e *mapping.PersistentEntity) *cypher.Statement {
	n := root()
	return st.Return(cypher.As(n.ElementID(), NameOfInternalID), cypher.As(IDExpression(e), NameOfIDParam))
}

// PrepareSaveOf writes one entity from $__id__ and $__properties__.
//
// Assigned and generated ids merge on the id property. Internal ids create a node when
// isNew is set and match by id otherwise. labelsToAdd and labelsToRemove reconcile
// the dynamic labels; both may be empty. The statement returns the element id as
// __internalNeo4jId__ and the id value as __id__.
func (b *Builder) PrepareSaveOf(e *mapping.PersistentEntity, isNew bool, labelsToAdd, labelsToRemove []string) *cypher.Statement {
	n := root()
	var st *cypher.Statement
	d := e.IDDescription()

	switch {
	case !d.IsInternal():
		st = cypher.Merge(cypher.NewNode(NameOfRootNode, e.PrimaryLabel()).WithProperty(d.Property, cypher.Param(NameOfIDParam))).
			SetLabels(n, e.AdditionalLabels()...)
	case isNew:
		st = cypher.Create(cypher.NewNode(NameOfRootNode, e.StaticLabels()...))
	default:
		st = cypher.Match(RootNode(e)).Where(IDCondition(e))
	}

	st = setProperties(st, e, cypher.Param(NameOfPropertiesParam))
	st = st.SetLabels(n, labelsToAdd...).RemoveLabels(n, labelsToRemove...)
	return returnIDs(st, e)
}

// PrepareSaveAllOf writes a batch of entities from $__entities__, a list of maps with
// __id__ and __properties__ keys. Only entities with assigned or generated ids and
// without dynamic labels can be saved in a batch.
func (b *Builder) PrepareSaveAllOf(e *mapping.PersistentEntity) (*cypher.Statement, error) {
	d := e.IDDescription()
	if d.IsInternal() || e.HasDynamicLabels() {
		return nil, fmt.Errorf("%s cannot be saved in a batch: internal ids and dynamic labels need one statement per entity", e.Name())
	}
	entity := cypher.Name(nameOfEntity)
	st := cypher.Unwind(cypher.Param(NameOfEntitiesParam), nameOfEntity).
		Merge(cypher.NewNode(NameOfRootNode, e.PrimaryLabel()).WithProperty(d.Property, cypher.Property(entity, NameOfIDParam))).
		SetLabels(root(), e.AdditionalLabels()...)
	st = setProperties(st, e, cypher.Property(entity, NameOfPropertiesParam))
	return returnIDs(st, e), nil
}

// CreateStatementReturningDynamicLabels reads the labels of the stored node that are
// not in $__staticLabels__.
func (b *Builder) CreateStatementReturningDynamicLabels(e *mapping.PersistentEntity) *cypher.Statement {
	return cypher.Match(RootNode(e)).
		Where(IDCondition(e)).
		Return(cypher.As(cypher.Raw("[l IN labels(n) WHERE NOT l IN $"+NameOfStaticLabelsParam+"]"), NameOfLabelsResult))
}

func relationshipBetween(rel *mapping.RelationshipDescription, start, end *cypher.Node) *cypher.Relationship {
	if rel.Direction == mapping.Incoming {
		return start.RelationshipFrom(end, rel.Type)
	}
	return start.RelationshipTo(end, rel.Type)
}

// CreateRelationshipCreateQuery links the nodes with element ids $fromId and $toId.
// Plain relationships are merged. Relationships with properties are created and get
// their properties from $__properties__; the statement returns the relationship's
// element id as __internalNeo4jId__ and its id as __id__.
func (b *Builder) CreateRelationshipCreateQuery(rel *mapping.RelationshipDescription) *cypher.Statement {
	start, end := cypher.AnyNode(nameOfStartNode), cypher.AnyNode(nameOfEndNode)
	st := cypher.Match(start, end).Where(cypher.And(
		cypher.Eq(start.ElementID(), cypher.Param(NameOfFromIDParam)),
		cypher.Eq(end.ElementID(), cypher.Param(NameOfToIDParam)),
	))
	r := relationshipBetween(rel, start, end).Named(nameOfRelationship)
	if !rel.HasProperties() {
		return st.Merge(r).Return(cypher.As(cypher.ElementID(r), NameOfInternalID))
	}
	return st.Create(r).
		Set(cypher.SetTo(r, cypher.Param(NameOfPropertiesParam))).
		Return(cypher.As(cypher.ElementID(r), NameOfInternalID), cypher.As(idExpressionOf(rel.Properties, r), NameOfIDParam))
}

// CreateRelationshipRemoveQuery deletes every relationship of the mapped type from the
// node with element id $fromId to nodes of the target entity.
func (b *Builder) CreateRelationshipRemoveQuery(rel *mapping.RelationshipDescription) *cypher.Statement {
	start := cypher.AnyNode(nameOfStartNode)
	end := cypher.AnonymousNode(rel.Target.PrimaryLabel())
	var r *cypher.Relationship
	if rel.Direction == mapping.Undirected {
		r = start.RelationshipBetween(end, rel.Type)
	} else {
		r = relationshipBetween(rel, start, end)
	}
	r = r.Named(nameOfRelationship)
	return cypher.Match(r).
		Where(cypher.Eq(start.ElementID(), cypher.Param(NameOfFromIDParam))).
		Delete(r)
}
