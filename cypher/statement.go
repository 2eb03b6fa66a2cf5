package cypher

import (
	"strconv"
	"strings"
)

// SortItem is one ORDER BY entry.
type SortItem struct {
	expr Expression
	desc bool
}

func Asc(e Expression) SortItem  { return SortItem{expr: e} }
func Desc(e Expression) SortItem { return SortItem{expr: e, desc: true} }

func (s SortItem) Cypher() string {
	if s.desc {
		return s.expr.Cypher() + " DESC"
	}
	return s.expr.Cypher() + " ASC"
}

// Statement accumulates clauses. The zero value is an empty statement; every method
// appends to the receiver and returns it for chaining.
type Statement struct {
	clauses []string
}

func patterns(elements []PatternElement) string {
	parts := make([]string, len(elements))
	for i, e := range elements {
		parts[i] = e.Pattern()
	}
	return strings.Join(parts, ", ")
}

func expressions(items []Expression) string {
	parts := make([]string, len(items))
	for i, e := range items {
		parts[i] = e.Cypher()
	}
	return strings.Join(parts, ", ")
}

func (s *Statement) add(clause string) *Statement {
	s.clauses = append(s.clauses, clause)
	return s
}

func Match(elements ...PatternElement) *Statement { return new(Statement).Match(elements...) }

func OptionalMatch(elements ...PatternElement) *Statement {
	return new(Statement).OptionalMatch(elements...)
}

func Merge(elements ...PatternElement) *Statement  { return new(Statement).Merge(elements...) }
func Create(elements ...PatternElement) *Statement { return new(Statement).Create(elements...) }

func Unwind(list Expression, alias string) *Statement { return new(Statement).Unwind(list, alias) }

func (s *Statement) Match(elements ...PatternElement) *Statement {
	return s.add("MATCH " + patterns(elements))
}

func (s *Statement) OptionalMatch(elements ...PatternElement) *Statement {
	return s.add("OPTIONAL MATCH " + patterns(elements))
}

func (s *Statement) Merge(elements ...PatternElement) *Statement {
	return s.add("MERGE " + patterns(elements))
}

func (s *Statement) Create(elements ...PatternElement) *Statement {
	return s.add("CREATE " + patterns(elements))
}

func (s *Statement) Unwind(list Expression, alias string) *Statement {
	return s.add("UNWIND " + list.Cypher() + " AS " + Escape(alias))
}

// Where adds a WHERE clause unless c is empty.
func (s *Statement) Where(c Condition) *Statement {
	if IsEmpty(c) {
		return s
	}
	return s.add("WHERE " + c.Cypher())
}

func (s *Statement) With(items ...Expression) *Statement {
	return s.add("WITH " + expressions(items))
}

func (s *Statement) WithDistinct(items ...Expression) *Statement {
	return s.add("WITH DISTINCT " + expressions(items))
}

// SetTo renders `target = value`.
func SetTo(target, value Expression) Expression { return binary{left: target, op: "=", right: value} }

// MutateWith renders `target += value`.
func MutateWith(target, value Expression) Expression {
	return binary{left: target, op: "+=", right: value}
}

func (s *Statement) Set(items ...Expression) *Statement {
	if len(items) == 0 {
		return s
	}
	return s.add("SET " + expressions(items))
}

// SetLabels adds labels to a bound node.
func (s *Statement) SetLabels(n *Node, labels ...string) *Statement {
	if len(labels) == 0 {
		return s
	}
	return s.add("SET " + Escape(n.name) + renderLabels(labels))
}

// RemoveLabels removes labels from a bound node.
func (s *Statement) RemoveLabels(n *Node, labels ...string) *Statement {
	if len(labels) == 0 {
		return s
	}
	return s.add("REMOVE " + Escape(n.name) + renderLabels(labels))
}

func (s *Statement) Delete(items ...Expression) *Statement {
	return s.add("DELETE " + expressions(items))
}

func (s *Statement) DetachDelete(items ...Expression) *Statement {
	return s.add("DETACH DELETE " + expressions(items))
}

func (s *Statement) Return(items ...Expression) *Statement {
	return s.add("RETURN " + expressions(items))
}

func (s *Statement) ReturnDistinct(items ...Expression) *Statement {
	return s.add("RETURN DISTINCT " + expressions(items))
}

// OrderBy adds ORDER BY unless no items are given.
func (s *Statement) OrderBy(items ...SortItem) *Statement {
	if len(items) == 0 {
		return s
	}
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = it.Cypher()
	}
	return s.add("ORDER BY " + strings.Join(parts, ", "))
}

func (s *Statement) Skip(n int64) *Statement {
	return s.add("SKIP " + strconv.FormatInt(n, 10))
}

func (s *Statement) Limit(n int64) *Statement {
	return s.add("LIMIT " + strconv.FormatInt(n, 10))
}

// Raw appends a clause verbatim.
func (s *Statement) Raw(clause string) *Statement { return s.add(clause) }

// Union joins two statements with UNION.
func (s *Statement) Union(other *Statement) *Statement {
	return s.add("UNION " + other.Cypher())
}

func (s *Statement) Cypher() string { return strings.Join(s.clauses, " ") }

func (s *Statement) String() string { return s.Cypher() }
