package cypher

import "strings"

// Condition is a boolean expression usable in WHERE.
type Condition interface {
	Expression
	isCondition()
}

type conditionExpr struct{ Expression }

func (conditionExpr) isCondition() {}

type comparison struct{ binary }

func (comparison) isCondition() {}

func compare(left Expression, op string, right Expression) Condition {
	return comparison{binary{left: left, op: op, right: right}}
}

func Eq(l, r Expression) Condition          { return compare(l, "=", r) }
func Ne(l, r Expression) Condition          { return compare(l, "<>", r) }
func Gt(l, r Expression) Condition          { return compare(l, ">", r) }
func Gte(l, r Expression) Condition         { return compare(l, ">=", r) }
func Lt(l, r Expression) Condition          { return compare(l, "<", r) }
func Lte(l, r Expression) Condition         { return compare(l, "<=", r) }
func Matches(l, r Expression) Condition     { return compare(l, "=~", r) }
func Contains(l, r Expression) Condition    { return compare(l, "CONTAINS", r) }
func StartsWith(l, r Expression) Condition  { return compare(l, "STARTS WITH", r) }
func EndsWith(l, r Expression) Condition    { return compare(l, "ENDS WITH", r) }
func In(element, list Expression) Condition { return compare(element, "IN", list) }
func IsNull(e Expression) Condition         { return conditionExpr{rawExpression(e.Cypher() + " IS NULL")} }
func IsNotNull(e Expression) Condition {
	return conditionExpr{rawExpression(e.Cypher() + " IS NOT NULL")}
}
func IsTrue(e Expression) Condition  { return Eq(e, Literal(true)) }
func IsFalse(e Expression) Condition { return Eq(e, Literal(false)) }
func HasLabels(n *Node, labels ...string) Condition {
	return conditionExpr{rawExpression(Escape(n.name) + renderLabels(labels))}
}

type not struct{ c Condition }

func (n not) Cypher() string { return "NOT (" + n.c.Cypher() + ")" }
func (not) isCondition()     {}

// Not negates a condition. Negating no condition yields no condition.
func Not(c Condition) Condition {
	if IsEmpty(c) {
		return c
	}
	return not{c: c}
}

type compound struct {
	op    string
	parts []Condition
}

func (c compound) isCondition() {}

func (c compound) Cypher() string {
	parts := make([]string, len(c.parts))
	for i, p := range c.parts {
		s := p.Cypher()
		// OR binds weaker than AND and XOR; nested ORs inside them need parentheses.
		if inner, ok := p.(compound); ok && inner.op != c.op && inner.op == "OR" {
			s = "(" + s + ")"
		}
		parts[i] = s
	}
	return strings.Join(parts, " "+c.op+" ")
}

type none struct{}

func (none) Cypher() string { return "" }
func (none) isCondition()   {}

// NoCondition is the neutral element of And and Or.
func NoCondition() Condition { return none{} }

// IsEmpty reports whether c renders nothing.
func IsEmpty(c Condition) bool {
	if c == nil {
		return true
	}
	_, ok := c.(none)
	return ok
}

func combine(op string, conditions []Condition) Condition {
	var parts []Condition
	for _, c := range conditions {
		if IsEmpty(c) {
			continue
		}
		if inner, ok := c.(compound); ok && inner.op == op {
			parts = append(parts, inner.parts...)
			continue
		}
		parts = append(parts, c)
	}
	switch len(parts) {
	case 0:
		return NoCondition()
	case 1:
		return parts[0]
	}
	return compound{op: op, parts: parts}
}

// And joins conditions, skipping empty ones.
func And(conditions ...Condition) Condition { return combine("AND", conditions) }

// Or joins conditions, skipping empty ones.
func Or(conditions ...Condition) Condition { return combine("OR", conditions) }
