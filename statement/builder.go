// Package statement renders the entity-aware Cypher statements used by repositories:
// matching, loading with relationships, saving, deleting and relationship maintenance.
//
// Every statement binds the root entity to the symbolic name n. Statement parameters
// are referenced by the NameOf* constants; callers supply the values.
package statement

import (
	"errors"
	"fmt"
	"sync"

	"github.com/saulfrancisco-ruizacevedo/neopersist-ogm/cypher"
	"github.com/saulfrancisco-ruizacevedo/neopersist-ogm/domain"
	"github.com/saulfrancisco-ruizacevedo/neopersist-ogm/mapping"
)

const (
	NameOfRootNode          = "n"
	NameOfIDParam           = "__id__"
	NameOfPropertiesParam   = "__properties__"
	NameOfStaticLabelsParam = "__staticLabels__"
	NameOfLabelsResult      = "__labels__"
	NameOfInternalID        = "__internalNeo4jId__"
	NameOfEntitiesParam     = "__entities__"
	NameOfIDsParam          = "__ids__"
	NameOfPaths             = "__paths__"
	NameOfFromIDParam       = "fromId"
	NameOfToIDParam         = "toId"

	nameOfEntity       = "entity"
	nameOfStartNode    = "startNode"
	nameOfEndNode      = "endNode"
	nameOfRelationship = "relProps"
	nameOfProps        = "__props__"
	nameOfPath         = "p"
)

// ErrInvalidSort is returned when a sort order names a property the entity does not map.
var ErrInvalidSort = errors.New("invalid sort property")

// Builder renders statements for persistent entities. It caches the relationship
// types reachable from each entity and is safe for concurrent use.
type Builder struct {
	types sync.Map // *mapping.PersistentEntity -> []string
}

// NewBuilder creates a statement builder.
func NewBuilder() *Builder { return &Builder{} }

func root() *cypher.Node { return cypher.AnyNode(NameOfRootNode) }

// RootNode is the entity's node pattern, matched on its primary label.
func RootNode(e *mapping.PersistentEntity) *cypher.Node {
	return cypher.NewNode(NameOfRootNode, e.PrimaryLabel())
}

// IDExpression is how the id of the root node is read: id(n), elementId(n) or n.<property>.
func IDExpression(e *mapping.PersistentEntity) cypher.Expression {
	return idExpressionOf(e, root())
}

func idExpressionOf(e *mapping.PersistentEntity, ref cypher.Expression) cypher.Expression {
	d := e.IDDescription()
	switch {
	case d.IsElementID():
		return cypher.ElementID(ref)
	case d.IsInternal():
		return cypher.ID(ref)
	}
	return cypher.Property(ref, d.Property)
}

// IDCondition matches the root node against $__id__.
func IDCondition(e *mapping.PersistentEntity) cypher.Condition {
	return cypher.Eq(IDExpression(e), cypher.Param(NameOfIDParam))
}

// IDsCondition matches the root node against any id in $__ids__.
func IDsCondition(e *mapping.PersistentEntity) cypher.Condition {
	return cypher.In(IDExpression(e), cypher.Param(NameOfIDsParam))
}

// PrepareMatchOf matches the entity's nodes under a condition. The caller adds the return clause.
func (b *Builder) PrepareMatchOf(e *mapping.PersistentEntity, condition cypher.Condition, patterns ...cypher.PatternElement) *cypher.Statement {
	return cypher.Match(append([]cypher.PatternElement{RootNode(e)}, patterns...)...).Where(condition)
}

// PrepareDeleteOf deletes the matching nodes and their relationships.
func (b *Builder) PrepareDeleteOf(e *mapping.PersistentEntity, condition cypher.Condition, patterns ...cypher.PatternElement) *cypher.Statement {
	return b.PrepareMatchOf(e, condition, patterns...).WithDistinct(root()).DetachDelete(root())
}

// PrepareDeleteCountOf deletes the matching nodes and returns how many were deleted.
func (b *Builder) PrepareDeleteCountOf(e *mapping.PersistentEntity, condition cypher.Condition, patterns ...cypher.PatternElement) *cypher.Statement {
	return b.PrepareDeleteOf(e, condition, patterns...).Return(cypher.Count(cypher.Star))
}

// PrepareCount counts the matching nodes.
func (b *Builder) PrepareCount(e *mapping.PersistentEntity, condition cypher.Condition, patterns ...cypher.PatternElement) *cypher.Statement {
	return b.PrepareMatchOf(e, condition, patterns...).Return(cypher.CountDistinct(root()))
}

// PrepareExists reports whether any node matches.
func (b *Builder) PrepareExists(e *mapping.PersistentEntity, condition cypher.Condition, patterns ...cypher.PatternElement) *cypher.Statement {
	return b.PrepareMatchOf(e, condition, patterns...).Return(cypher.Gt(cypher.Count(root()), cypher.Literal(0)))
}

// OrderBy maps sort orders onto properties of the root node. Orders may name a Go
// field or a graph property; anything else fails with ErrInvalidSort.
func OrderBy(e *mapping.PersistentEntity, sort domain.Sort) ([]cypher.SortItem, error) {
	items := make([]cypher.SortItem, 0, len(sort))
	for _, o := range sort {
		p, ok := e.PropertyByField(o.Property)
		if !ok {
			p, ok = e.Property(o.Property)
		}
		if !ok || p.IsComposite() {
			return nil, fmt.Errorf("%w: %s has no property %q", ErrInvalidSort, e.Name(), o.Property)
		}
		var expr cypher.Expression
		if p.IsID && e.IDDescription().IsInternal() {
			expr = IDExpression(e)
		} else {
			expr = root().Property(p.Name)
		}
		if o.IgnoreCase {
			expr = cypher.ToLower(expr)
		}
		if o.Direction == domain.Descending {
			items = append(items, cypher.Desc(expr))
		} else {
			items = append(items, cypher.Asc(expr))
		}
	}
	return items, nil
}

// Paging appends SKIP and LIMIT for a paged request; unpaged requests add nothing.
func Paging(st *cypher.Statement, p domain.Pageable) *cypher.Statement {
	if !p.IsPaged() {
		return st
	}
	return st.Skip(p.Offset()).Limit(int64(p.Size))
}
