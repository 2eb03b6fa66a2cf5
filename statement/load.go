package statement

import (
	"github.com/saulfrancisco-ruizacevedo/neopersist-ogm/cypher"
	"github.com/saulfrancisco-ruizacevedo/neopersist-ogm/domain"
	"github.com/saulfrancisco-ruizacevedo/neopersist-ogm/mapping"
)

// DefaultDepth is how many relationship hops are loaded around each root node.
const DefaultDepth = 1

// Load describes a read of whole entities.
type Load struct {
	Condition cypher.Condition
	// Patterns are additional patterns matched next to the root node, e.g. relationship
	// traversals needed by the condition.
	Patterns []cypher.PatternElement
	Sort     domain.Sort
	// SortItems come before Sort; they are already rendered.
	SortItems []cypher.SortItem
	Page      domain.Pageable
	// Limit caps the number of roots when Page is unpaged. Zero means no cap.
	Limit int64
	// Depth is the number of hops loaded; zero loads only the roots and a negative
	// value loads the whole reachable graph.
	Depth int
}

// PrepareLoad reads the matching root nodes together with every path of mapped
// relationship types up to the requested depth:
//
//	MATCH (n:`L`) WHERE … WITH DISTINCT n ORDER BY … SKIP … LIMIT …
//	OPTIONAL MATCH p = (n)-[:`T1`|`T2`*0..depth]-() RETURN n, collect(DISTINCT p) AS __paths__
//
// Ordering is repeated after the aggregation so the returned rows keep it.
func (b *Builder) PrepareLoad(e *mapping.PersistentEntity, l Load) (*cypher.Statement, error) {
	sortItems, err := OrderBy(e, l.Page.Sort.And(l.Sort))
	if err != nil {
		return nil, err
	}
	sortItems = append(append([]cypher.SortItem(nil), l.SortItems...), sortItems...)

	n := root()
	st := b.PrepareMatchOf(e, l.Condition, l.Patterns...).WithDistinct(n).OrderBy(sortItems...)
	switch {
	case l.Page.IsPaged():
		st = Paging(st, l.Page)
	case l.Limit > 0:
		st = st.Limit(l.Limit)
	}

	types := b.RelationshipTypes(e)
	if l.Depth == 0 || len(types) == 0 {
		return st.Return(n, cypher.As(cypher.Literal([]any{}), NameOfPaths)).OrderBy(sortItems...), nil
	}
	rel := n.RelationshipBetween(cypher.AnonymousNode(), types...)
	if l.Depth < 0 {
		rel = rel.Length(0, -1)
	} else {
		rel = rel.Length(0, l.Depth)
	}
	return st.OptionalMatch(cypher.Path(nameOfPath, rel)).
		Return(n, cypher.As(cypher.CollectDistinct(cypher.Name(nameOfPath)), NameOfPaths)).
		OrderBy(sortItems...), nil
}

// RelationshipTypes lists the relationship types reachable from e through mapped
// relationships, transitively, in the order they are found.
func (b *Builder) RelationshipTypes(e *mapping.PersistentEntity) []string {
	if cached, ok := b.types.Load(e); ok {
		return cached.([]string)
	}
	seen := map[*mapping.PersistentEntity]bool{}
	typeSet := map[string]bool{}
	var types []string
	queue := []*mapping.PersistentEntity{e}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if seen[cur] {
			continue
		}
		seen[cur] = true
		for _, r := range cur.Relationships() {
			if !typeSet[r.Type] {
				typeSet[r.Type] = true
				types = append(types, r.Type)
			}
			queue = append(queue, r.Target)
		}
	}
	b.types.Store(e, types)
	return types
}

// PrepareProjection reads the matching roots as flat rows: one column per mapped
// property, named after the graph property, plus the element id as __internalNeo4jId__.
func (b *Builder) PrepareProjection(e *mapping.PersistentEntity, l Load) (*cypher.Statement, error) {
	sortItems, err := OrderBy(e, l.Page.Sort.And(l.Sort))
	if err != nil {
		return nil, err
	}
	sortItems = append(append([]cypher.SortItem(nil), l.SortItems...), sortItems...)

	n := root()
	st := b.PrepareMatchOf(e, l.Condition, l.Patterns...).WithDistinct(n).OrderBy(sortItems...)
	switch {
	case l.Page.IsPaged():
		st = Paging(st, l.Page)
	case l.Limit > 0:
		st = st.Limit(l.Limit)
	}

	columns := []cypher.Expression{cypher.As(n.ElementID(), NameOfInternalID)}
	for _, p := range e.Properties() {
		switch {
		case p.IsComposite():
		case p.IsID && e.IDDescription().IsInternal():
			columns = append(columns, cypher.As(IDExpression(e), p.Name))
		default:
			columns = append(columns, cypher.As(n.Property(p.Name), p.Name))
		}
	}
	return st.Return(columns...), nil
}
