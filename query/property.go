package query

import (
	"strings"
	"unicode"

	"github.com/saulfrancisco-ruizacevedo/neopersist-ogm/cypher"
	"github.com/saulfrancisco-ruizacevedo/neopersist-ogm/mapping"
	"github.com/saulfrancisco-ruizacevedo/neopersist-ogm/statement"
)

// PropertyPath is a property reached from the root entity, possibly through relationships.
type PropertyPath struct {
	// Relationships are traversed in order before reaching the leaf.
	Relationships []*mapping.RelationshipDescription
	Leaf          *mapping.PersistentProperty
	// OnRelationship is set when the leaf is a property of the last relationship
	// rather than of its target node.
	OnRelationship bool
}

// segmentName is the variable suffix of the first i+1 traversed relationships.
func (p *PropertyPath) segmentName(i int) string {
	names := make([]string, i+1)
	for j := 0; j <= i; j++ {
		names[j] = strings.ToLower(p.Relationships[j].FieldName)
	}
	return strings.Join(names, "_")
}

// Owner is the expression the leaf property is read from.
func (p *PropertyPath) Owner() cypher.Expression {
	if len(p.Relationships) == 0 {
		return cypher.Name(statement.NameOfRootNode)
	}
	last := len(p.Relationships) - 1
	if p.OnRelationship {
		return cypher.Name("r_" + p.segmentName(last))
	}
	return cypher.Name(statement.NameOfRootNode + "_" + p.segmentName(last))
}

// Patterns are the relationship patterns, one per traversed relationship.
func (p *PropertyPath) Patterns() []cypher.PatternElement {
	patterns := make([]cypher.PatternElement, len(p.Relationships))
	from := cypher.AnyNode(statement.NameOfRootNode)
	for i, rel := range p.Relationships {
		to := cypher.NewNode(statement.NameOfRootNode+"_"+p.segmentName(i), rel.Target.PrimaryLabel())
		var r *cypher.Relationship
		switch rel.Direction {
		case mapping.Incoming:
			r = from.RelationshipFrom(to, rel.Type)
		case mapping.Undirected:
			r = from.RelationshipBetween(to, rel.Type)
		default:
			r = from.RelationshipTo(to, rel.Type)
		}
		patterns[i] = r.Named("r_" + p.segmentName(i))
		from = to.Ref()
	}
	return patterns
}

// resolvePath resolves a property path such as DirectorName or Director_Name against e.
// Properties of e win; otherwise the longest leading relationship field is traversed.
func resolvePath(e *mapping.PersistentEntity, name string) (*PropertyPath, bool) {
	if head, rest, ok := strings.Cut(name, "_"); ok {
		rel, found := e.RelationshipByField(upperFirst(head))
		if !found {
			return nil, false
		}
		return traverse(rel, rest)
	}
	if p, ok := lookupProperty(e, name); ok {
		return &PropertyPath{Leaf: p}, true
	}
	for i := len(name) - 1; i > 0; i-- {
		if !unicode.IsUpper(rune(name[i])) {
			continue
		}
		rel, found := e.RelationshipByField(upperFirst(name[:i]))
		if !found {
			continue
		}
		if path, ok := traverse(rel, name[i:]); ok {
			return path, true
		}
	}
	return nil, false
}

func traverse(rel *mapping.RelationshipDescription, rest string) (*PropertyPath, bool) {
	if rel.HasProperties() {
		if p, ok := lookupProperty(rel.Properties, rest); ok {
			return &PropertyPath{Relationships: []*mapping.RelationshipDescription{rel}, Leaf: p, OnRelationship: true}, true
		}
	}
	tail, ok := resolvePath(rel.Target, rest)
	if !ok {
		return nil, false
	}
	tail.Relationships = append([]*mapping.RelationshipDescription{rel}, tail.Relationships...)
	return tail, true
}

func lookupProperty(e *mapping.PersistentEntity, name string) (*mapping.PersistentProperty, bool) {
	if p, ok := e.PropertyByField(upperFirst(name)); ok {
		return p, true
	}
	return e.Property(lowerFirst(name))
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
