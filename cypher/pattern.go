package cypher

import (
	"strconv"
	"strings"
)

// PatternElement is something that can appear in MATCH, MERGE or CREATE.
type PatternElement interface {
	Pattern() string
}

type propertyPair struct {
	key   string
	value Expression
}

func renderProperties(props []propertyPair) string {
	if len(props) == 0 {
		return ""
	}
	items := make([]string, len(props))
	for i, p := range props {
		items[i] = Escape(p.key) + ": " + p.value.Cypher()
	}
	return " {" + strings.Join(items, ", ") + "}"
}

func renderLabels(labels []string) string {
	var b strings.Builder
	for _, l := range labels {
		b.WriteString(":")
		b.WriteString(Quote(l))
	}
	return b.String()
}

// Node is a node pattern bound to a symbolic name.
type Node struct {
	name   string
	labels []string
	props  []propertyPair
}

// NewNode creates a node pattern named name with the given labels.
func NewNode(name string, labels ...string) *Node {
	return &Node{name: name, labels: labels}
}

// AnonymousNode is a labeled node pattern without a variable.
func AnonymousNode(labels ...string) *Node { return &Node{labels: labels} }

// AnyNode references an unlabeled node, usually one bound earlier in the statement.
func AnyNode(name string) *Node { return &Node{name: name} }

// WithProperty returns a copy of n with an inline property constraint.
func (n *Node) WithProperty(key string, value Expression) *Node {
	c := *n
	c.props = append(append([]propertyPair(nil), n.props...), propertyPair{key: key, value: value})
	return &c
}

// Ref returns a label-less reference to the same variable.
func (n *Node) Ref() *Node { return AnyNode(n.name) }

func (n *Node) Name() string { return n.name }

func (n *Node) Cypher() string { return Escape(n.name) }

func (n *Node) Pattern() string {
	name := ""
	if n.name != "" {
		name = Escape(n.name)
	}
	return "(" + name + renderLabels(n.labels) + renderProperties(n.props) + ")"
}

func (n *Node) Property(name string) Expression { return Property(n, name) }

func (n *Node) InternalID() Expression { return ID(n) }

func (n *Node) ElementID() Expression { return ElementID(n) }

func (n *Node) RelationshipTo(other *Node, types ...string) *Relationship {
	return &Relationship{start: n, end: other, types: types, direction: "->"}
}

func (n *Node) RelationshipFrom(other *Node, types ...string) *Relationship {
	return &Relationship{start: n, end: other, types: types, direction: "<-"}
}

func (n *Node) RelationshipBetween(other *Node, types ...string) *Relationship {
	return &Relationship{start: n, end: other, types: types, direction: "-"}
}

// Relationship is a single-hop or variable-length relationship pattern.
type Relationship struct {
	start, end *Node
	name       string
	types      []string
	direction  string
	hops       string
	props      []propertyPair
}

func (r *Relationship) clone() *Relationship {
	c := *r
	c.props = append([]propertyPair(nil), r.props...)
	return &c
}

// Named binds the relationship to a variable.
func (r *Relationship) Named(name string) *Relationship {
	c := r.clone()
	c.name = name
	return c
}

// Length makes the relationship variable length. A negative max leaves the upper bound open.
func (r *Relationship) Length(min, max int) *Relationship {
	c := r.clone()
	c.hops = "*" + strconv.Itoa(min) + ".."
	if max >= 0 {
		c.hops += strconv.Itoa(max)
	}
	return c
}

// Unbounded renders `*`.
func (r *Relationship) Unbounded() *Relationship {
	c := r.clone()
	c.hops = "*"
	return c
}

func (r *Relationship) WithProperty(key string, value Expression) *Relationship {
	c := r.clone()
	c.props = append(c.props, propertyPair{key: key, value: value})
	return c
}

func (r *Relationship) Name() string { return r.name }

func (r *Relationship) Cypher() string { return Escape(r.name) }

func (r *Relationship) Property(name string) Expression { return Property(r, name) }

func (r *Relationship) Pattern() string {
	var detail strings.Builder
	if r.name != "" {
		detail.WriteString(Escape(r.name))
	}
	for i, t := range r.types {
		if i == 0 {
			detail.WriteString(":")
		} else {
			detail.WriteString("|")
		}
		detail.WriteString(Quote(t))
	}
	detail.WriteString(r.hops)
	detail.WriteString(renderProperties(r.props))

	body := ""
	if detail.Len() > 0 {
		body = "[" + detail.String() + "]"
	}
	left, right := "-", "-"
	switch r.direction {
	case "->":
		right = "->"
	case "<-":
		left = "<-"
	}
	return r.start.Pattern() + left + body + right + r.end.Pattern()
}

type namedPath struct {
	name    string
	element PatternElement
}

func (p namedPath) Pattern() string { return Escape(p.name) + " = " + p.element.Pattern() }

// Path binds a pattern to a path variable.
func Path(name string, element PatternElement) PatternElement {
	return namedPath{name: name, element: element}
}
