// Package cypher renders Cypher statements from a small set of composable values:
// node and relationship patterns, expressions, conditions and clauses.
//
// It does not validate semantics; it only guarantees well-formed text with escaped
// identifiers, so higher layers never concatenate user input into a query.
package cypher

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	simpleIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	positional       = regexp.MustCompile(`^[0-9]+$`)
)

// Escape quotes an identifier with backticks unless it is a plain identifier.
func Escape(name string) string {
	if simpleIdentifier.MatchString(name) {
		return name
	}
	return Quote(name)
}

// Quote always wraps name in backticks. Labels and relationship types are quoted this way.
func Quote(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// Expression is anything that renders to a Cypher expression.
type Expression interface {
	Cypher() string
}

type rawExpression string

func (r rawExpression) Cypher() string { return string(r) }

// Raw wraps already valid Cypher text.
func Raw(cypher string) Expression { return rawExpression(cypher) }

// Name references a bound variable.
func Name(name string) Expression { return rawExpression(Escape(name)) }

// Star is the `*` in count(*) and RETURN *.
var Star Expression = rawExpression("*")

// Parameter is a `$name` reference, optionally followed by map keys.
type Parameter struct {
	name string
	path []string
}

// Param references the named statement parameter.
func Param(name string) Parameter { return Parameter{name: name} }

// Key references a key of a map parameter, e.g. $range.lb.
func (p Parameter) Key(key string) Parameter {
	return Parameter{name: p.name, path: append(append([]string(nil), p.path...), key)}
}

// Name is the parameter name without the leading dollar sign.
func (p Parameter) Name() string { return p.name }

func (p Parameter) Cypher() string {
	var b strings.Builder
	b.WriteString("$")
	if positional.MatchString(p.name) {
		b.WriteString(p.name)
	} else {
		b.WriteString(Escape(p.name))
	}
	for _, k := range p.path {
		b.WriteString(".")
		b.WriteString(Escape(k))
	}
	return b.String()
}

type property struct {
	container Expression
	name      string
}

func (p property) Cypher() string { return p.container.Cypher() + "." + Escape(p.name) }

// Property references a property of a node, relationship or map expression.
func Property(container Expression, name string) Expression {
	return property{container: container, name: name}
}

type literal struct{ value any }

// Literal renders a Go value as a Cypher literal. Supported are nil, bool, integers,
// floats, strings and slices of those.
func Literal(value any) Expression { return literal{value: value} }

func (l literal) Cypher() string { return renderLiteral(l.value) }

func renderLiteral(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case bool:
		return strconv.FormatBool(x)
	case string:
		return "'" + strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(x) + "'"
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case []string:
		items := make([]string, len(x))
		for i, s := range x {
			items[i] = renderLiteral(s)
		}
		return "[" + strings.Join(items, ", ") + "]"
	case []any:
		items := make([]string, len(x))
		for i, s := range x {
			items[i] = renderLiteral(s)
		}
		return "[" + strings.Join(items, ", ") + "]"
	}
	return fmt.Sprintf("%v", v)
}

type function struct {
	name     string
	distinct bool
	args     []Expression
}

func (f function) Cypher() string {
	args := make([]string, len(f.args))
	for i, a := range f.args {
		args[i] = a.Cypher()
	}
	prefix := ""
	if f.distinct {
		prefix = "DISTINCT "
	}
	return f.name + "(" + prefix + strings.Join(args, ", ") + ")"
}

// Fn calls a Cypher function.
func Fn(name string, args ...Expression) Expression {
	return function{name: name, args: args}
}

func Count(e Expression) Expression { return Fn("count", e) }
func CountDistinct(e Expression) Expression {
	return function{name: "count", distinct: true, args: []Expression{e}}
}
func Collect(e Expression) Expression { return Fn("collect", e) }
func CollectDistinct(e Expression) Expression {
	return function{name: "collect", distinct: true, args: []Expression{e}}
}
func ToLower(e Expression) Expression     { return Fn("toLower", e) }
func Size(e Expression) Expression        { return Fn("size", e) }
func ID(e Expression) Expression          { return Fn("id", e) }
func ElementID(e Expression) Expression   { return Fn("elementId", e) }
func Labels(e Expression) Expression      { return Fn("labels", e) }
func Point(e Expression) Expression       { return Fn("point", e) }
func Distance(a, b Expression) Expression { return Fn("point.distance", a, b) }

// WithinBBox tests whether point p lies in the box spanned by the lower-left and upper-right corners.
func WithinBBox(p, lowerLeft, upperRight Expression) Condition {
	return conditionExpr{Fn("point.withinBBox", p, lowerLeft, upperRight)}
}

type binary struct {
	left  Expression
	op    string
	right Expression
}

func (b binary) Cypher() string { return b.left.Cypher() + " " + b.op + " " + b.right.Cypher() }

// Plus concatenates strings or adds numbers.
func Plus(left, right Expression) Expression { return binary{left: left, op: "+", right: right} }

type aliased struct {
	expr  Expression
	alias string
}

func (a aliased) Cypher() string { return a.expr.Cypher() + " AS " + Escape(a.alias) }

// As aliases an expression in RETURN and WITH.
func As(e Expression, alias string) Expression { return aliased{expr: e, alias: alias} }

type mapProjection struct {
	name  string
	all   bool
	items []string
	from  Expression
}

func (m mapProjection) Cypher() string {
	var items []string
	if m.all {
		items = append(items, ".*")
	}
	for _, i := range m.items {
		items = append(items, Escape(i)+": "+Property(m.from, i).Cypher())
	}
	return Escape(m.name) + "{" + strings.Join(items, ", ") + "}"
}

// ProjectAllWith renders `name{.*, k: from.k, ...}`: every entry of map variable name
// plus the listed keys copied from the from expression.
func ProjectAllWith(name string, from Expression, keys ...string) Expression {
	return mapProjection{name: name, all: true, items: keys, from: from}
}
