package query

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/saulfrancisco-ruizacevedo/neopersist-ogm/convert"
	"github.com/saulfrancisco-ruizacevedo/neopersist-ogm/cypher"
	"github.com/saulfrancisco-ruizacevedo/neopersist-ogm/domain"
	"github.com/saulfrancisco-ruizacevedo/neopersist-ogm/mapping"
	"github.com/saulfrancisco-ruizacevedo/neopersist-ogm/statement"
)

// caseInsensitiveTypes may compare lower-cased strings.
var caseInsensitiveTypes = []Type{
	SimpleProperty, NegatingSimpleProperty, Like, NotLike, Containing, NotContaining, StartingWith, EndingWith,
}

// DerivedStatement is a rendered derived query plus the flags telling the caller how
// to read its result.
type DerivedStatement struct {
	Cypher     string
	Params     map[string]any
	IsCount    bool
	IsExists   bool
	IsDelete   bool
	IsLimiting bool
	Limit      int64
}

// boundPart is a validated part with the indexes of the parameters it consumes.
type boundPart struct {
	Part
	path       *PropertyPath
	ignoreCase bool
	params     []int
}

// Creator renders the statement of one derived query method.
type Creator struct {
	method      string
	entity      *mapping.PersistentEntity
	conversions *convert.Registry
	builder     *statement.Builder
	tree        *PartTree
	params      Parameters
	returns     ReturnKind
	depth       int

	parts    [][]boundPart
	patterns []cypher.PatternElement
}

// CreatorOption configures a Creator.
type CreatorOption func(*Creator)

// WithDepth sets how many relationship hops derived finds load.
func WithDepth(depth int) CreatorOption {
	return func(c *Creator) { c.depth = depth }
}

// WithBuilder shares a statement builder.
func WithBuilder(b *statement.Builder) CreatorOption {
	return func(c *Creator) { c.builder = b }
}

// NewCreator parses and validates a derived query method. All derivation errors are
// reported here so that a misdeclared method fails before it is first called.
func NewCreator(ctx *mapping.MappingContext, entity *mapping.PersistentEntity, method string, params Parameters, returns ReturnKind, opts ...CreatorOption) (*Creator, error) {
	tree, err := ParsePartTree(method)
	if err != nil {
		return nil, err
	}
	c := &Creator{
		method:      method,
		entity:      entity,
		conversions: ctx.Conversions(),
		tree:        tree,
		params:      params,
		returns:     returns,
		depth:       statement.DefaultDepth,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.builder == nil {
		c.builder = statement.NewBuilder()
	}

	if err := c.validateReturn(); err != nil {
		return nil, err
	}
	if err := c.bind(); err != nil {
		return nil, err
	}
	if _, err := statement.OrderBy(entity, tree.Sort); err != nil {
		return nil, derivationError(method, "%v", err)
	}
	return c, nil
}

// Tree is the parsed method name.
func (c *Creator) Tree() *PartTree { return c.tree }

func (c *Creator) validateReturn() error {
	switch c.tree.Subject.Kind {
	case DeleteSubject:
		if c.returns != ReturnsCount && c.returns != ReturnsNothing {
			return derivationError(c.method, "a derived delete query can only return the number of deleted nodes or nothing, not %s", c.returns)
		}
	case CountSubject:
		if c.returns != ReturnsCount {
			return derivationError(c.method, "a derived count query must return a count, not %s", c.returns)
		}
	case ExistsSubject:
		if c.returns != ReturnsBool {
			return derivationError(c.method, "a derived exists query must return a bool, not %s", c.returns)
		}
	default:
		if c.returns == ReturnsCount || c.returns == ReturnsBool || c.returns == ReturnsNothing {
			return derivationError(c.method, "a derived find query cannot return %s", c.returns)
		}
	}
	return nil
}

// bind resolves every part and assigns formal parameters to it left to right.
func (c *Creator) bind() error {
	bindable := c.params.Bindable()
	next := 0
	take := func() (int, error) {
		if next >= len(bindable) {
			return 0, derivationError(c.method, "Not enough formal, bindable parameters for parts")
		}
		next++
		return bindable[next-1], nil
	}
	peek := func() (reflect.Type, bool) {
		if next >= len(bindable) {
			return nil, false
		}
		return c.params[bindable[next]].Type, true
	}

	for _, or := range c.tree.Predicate {
		var and []boundPart
		for _, part := range or {
			bp, err := c.validate(part)
			if err != nil {
				return err
			}
			n := part.Type.NumArgs()
			switch part.Type {
			case Between:
				if t, ok := peek(); ok && t == rangeType {
					n = 1
				}
			case Near:
				// A point may be followed by a distance or a distance range.
				if t, ok := peek(); ok && isPoint(t) && next+1 < len(bindable) {
					following := c.params[bindable[next+1]].Type
					if following == distanceType || following == rangeType {
						n = 2
					}
				} else if ok && (t == distanceType || t == rangeType) {
					n = 2
				}
			}
			for i := 0; i < n; i++ {
				idx, err := take()
				if err != nil {
					return err
				}
				bp.params = append(bp.params, idx)
			}
			if err := c.validateArguments(bp); err != nil {
				return err
			}
			and = append(and, bp)
			c.addPatterns(bp.path)
		}
		c.parts = append(c.parts, and)
	}
	return nil
}

func (c *Creator) addPatterns(path *PropertyPath) {
	for _, p := range path.Patterns() {
		if !slices.ContainsFunc(c.patterns, func(existing cypher.PatternElement) bool {
			return existing.Pattern() == p.Pattern()
		}) {
			c.patterns = append(c.patterns, p)
		}
	}
}

func typeNames(types []reflect.Type) string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.String()
	}
	return "[" + strings.Join(names, ", ") + "]"
}

func keywordList(types ...Type) string {
	var kws []string
	for _, t := range types {
		kws = append(kws, t.Keywords()...)
	}
	return "[" + strings.Join(kws, ", ") + "]"
}

func (c *Creator) validate(part Part) (boundPart, error) {
	path, ok := resolvePath(c.entity, part.Property)
	if !ok {
		return boundPart{}, derivationError(c.method, "no property %s found for type %s", part.Property, c.entity.Name())
	}
	leaf := path.Leaf
	bp := boundPart{Part: part, path: path}

	if leaf.IsComposite() {
		return bp, derivationError(c.method, "derived queries are not supported for composite properties (%s)", leaf.FieldName)
	}

	caseCapable := slices.Contains(caseInsensitiveTypes, part.Type) && convert.IsString(leaf.ComponentType())
	switch part.IgnoreCase {
	case Always:
		if !caseCapable {
			return bp, derivationError(c.method, "only the case of String based properties can be ignored within the following keywords: %s",
				keywordList(caseInsensitiveTypes...))
		}
		bp.ignoreCase = true
	case WhenPossible:
		bp.ignoreCase = caseCapable
	}

	t := leaf.Type
	switch part.Type {
	case Before, After:
		if !slices.Contains(convert.TemporalTypes(), indirect(t)) {
			return bp, derivationError(c.method, "the keywords %s work only with properties with one of the following types: %s",
				keywordList(Before, After), typeNames(convert.TemporalTypes()))
		}
	case IsEmpty, IsNotEmpty:
		if !leaf.IsCollection() {
			return bp, derivationError(c.method, "the keywords %s work only with collection properties (slices, arrays or maps), not %s",
				keywordList(IsEmpty, IsNotEmpty), t)
		}
	case Near, Within:
		if !convert.IsSpatial(t) {
			return bp, derivationError(c.method, "the keywords %s work only with properties with one of the following types: %s",
				keywordList(Near, Within), typeNames(convert.SpatialTypes()))
		}
	}
	return bp, nil
}

// validateArguments checks declared parameter types where the keyword needs a specific one.
func (c *Creator) validateArguments(bp boundPart) error {
	switch bp.Type {
	case Within:
		t := c.params[bp.params[0]].Type
		if t != nil && t != circleType && t != boxType {
			return derivationError(c.method, "the WITHIN operation requires an area of type %s or %s, not %s", circleType, boxType, t)
		}
	case Near:
		hasPoint := false
		for _, i := range bp.params {
			if t := c.params[i].Type; t == nil || isPoint(t) {
				hasPoint = true
			}
		}
		if !hasPoint {
			return derivationError(c.method, "the NEAR operation requires a reference point of type %s or %s", point2DType, point3DType)
		}
	}
	return nil
}

func indirect(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

// call collects the parameters and extra sort items of one invocation.
type call struct {
	c         *Creator
	args      []any
	params    map[string]any
	sortItems []cypher.SortItem
}

// Create renders the statement for one call. args are the call's arguments in the
// order of the declared parameters, special parameters included.
func (c *Creator) Create(args []any) (*DerivedStatement, error) {
	if err := c.params.CheckArguments(args); err != nil {
		return nil, err
	}
	k := &call{c: c, args: args, params: map[string]any{}}
	condition, err := k.where()
	if err != nil {
		return nil, err
	}

	out := &DerivedStatement{Params: k.params}
	subject := c.tree.Subject
	var st *cypher.Statement
	switch subject.Kind {
	case CountSubject:
		st = c.builder.PrepareCount(c.entity, condition, c.patterns...)
		out.IsCount = true
	case ExistsSubject:
		st = c.builder.PrepareExists(c.entity, condition, c.patterns...)
		out.IsExists = true
	case DeleteSubject:
		if c.returns == ReturnsCount {
			st = c.builder.PrepareDeleteCountOf(c.entity, condition, c.patterns...)
		} else {
			st = c.builder.PrepareDeleteOf(c.entity, condition, c.patterns...)
		}
		out.IsDelete = true
	default:
		load := statement.Load{
			Condition: condition,
			Patterns:  c.patterns,
			SortItems: k.sortItems,
			Sort:      c.params.Sort(args).And(c.tree.Sort),
			Page:      c.params.Pageable(args),
			Limit:     subject.Limit,
			Depth:     c.depth,
		}
		if c.returns == ReturnsProjection {
			st, err = c.builder.PrepareProjection(c.entity, load)
		} else {
			st, err = c.builder.PrepareLoad(c.entity, load)
		}
		if err != nil {
			return nil, parameterError("%v", err)
		}
		out.IsLimiting = subject.IsLimiting()
		out.Limit = subject.Limit
	}
	out.Cypher = st.Cypher()
	return out, nil
}

// CreateCount renders the count statement for a paged call.
func (c *Creator) CreateCount(args []any) (*DerivedStatement, error) {
	if err := c.params.CheckArguments(args); err != nil {
		return nil, err
	}
	k := &call{c: c, args: args, params: map[string]any{}}
	condition, err := k.where()
	if err != nil {
		return nil, err
	}
	st := c.builder.PrepareCount(c.entity, condition, c.patterns...)
	return &DerivedStatement{Cypher: st.Cypher(), Params: k.params, IsCount: true}, nil
}

// where renders the ORs of ANDs of all parts.
func (k *call) where() (cypher.Condition, error) {
	var ors []cypher.Condition
	for _, and := range k.c.parts {
		var conds []cypher.Condition
		for _, bp := range and {
			cond, err := k.condition(bp)
			if err != nil {
				return nil, err
			}
			conds = append(conds, cond)
		}
		ors = append(ors, cypher.And(conds...))
	}
	return cypher.Or(ors...), nil
}

// property is the expression of the part's leaf property.
func (k *call) property(bp boundPart) cypher.Expression {
	path := bp.path
	var expr cypher.Expression
	if len(path.Relationships) == 0 && path.Leaf.IsID && k.c.entity.IDDescription().IsInternal() {
		expr = statement.IDExpression(k.c.entity)
	} else {
		expr = cypher.Property(path.Owner(), path.Leaf.Name)
	}
	if bp.ignoreCase {
		expr = cypher.ToLower(expr)
	}
	return expr
}

// bindValue converts the argument at index i and registers it as a statement parameter.
func (k *call) bindValue(bp boundPart, i int) (cypher.Parameter, error) {
	name := k.c.params.placeholder(i)
	v, err := k.convert(bp, k.args[i])
	if err != nil {
		return cypher.Parameter{}, parameterError("%s: %v", name, err)
	}
	k.params[name] = v
	return cypher.Param(name), nil
}

func (k *call) convert(bp boundPart, arg any) (any, error) {
	if arg == nil {
		return nil, nil
	}
	return k.c.conversions.WriteValue(reflect.ValueOf(arg), bp.path.Leaf.Converter)
}

func (k *call) value(bp boundPart, i int) (cypher.Expression, error) {
	p, err := k.bindValue(bp, i)
	if err != nil {
		return nil, err
	}
	if bp.ignoreCase {
		return cypher.ToLower(p), nil
	}
	return p, nil
}

func (k *call) condition(bp boundPart) (cypher.Condition, error) {
	prop := k.property(bp)
	single := func(f func(l, r cypher.Expression) cypher.Condition) (cypher.Condition, error) {
		v, err := k.value(bp, bp.params[0])
		if err != nil {
			return nil, err
		}
		return f(prop, v), nil
	}

	switch bp.Type {
	case SimpleProperty:
		return single(cypher.Eq)
	case NegatingSimpleProperty:
		return single(cypher.Ne)
	case GreaterThan, After:
		return single(cypher.Gt)
	case GreaterThanEqual:
		return single(cypher.Gte)
	case LessThan, Before:
		return single(cypher.Lt)
	case LessThanEqual:
		return single(cypher.Lte)
	case StartingWith:
		return single(cypher.StartsWith)
	case EndingWith:
		return single(cypher.EndsWith)
	case Regex:
		return single(cypher.Matches)
	case In:
		return single(cypher.In)
	case NotIn:
		c, err := single(cypher.In)
		if err != nil {
			return nil, err
		}
		return cypher.Not(c), nil
	case Containing, NotContaining:
		var c cypher.Condition
		var err error
		if bp.path.Leaf.IsCollection() {
			c, err = single(func(l, r cypher.Expression) cypher.Condition { return cypher.In(r, l) })
		} else {
			c, err = single(cypher.Contains)
		}
		if err != nil || bp.Type == Containing {
			return c, err
		}
		return cypher.Not(c), nil
	case Like, NotLike:
		p, err := k.bindValue(bp, bp.params[0])
		if err != nil {
			return nil, err
		}
		options := ""
		if bp.ignoreCase {
			options = "(?i)"
		}
		raw := cypher.Property(bp.path.Owner(), bp.path.Leaf.Name)
		c := cypher.Matches(raw, cypher.Plus(cypher.Plus(cypher.Literal(options+".*"), p), cypher.Literal(".*")))
		if bp.Type == NotLike {
			return cypher.Not(c), nil
		}
		return c, nil
	case IsNull:
		return cypher.IsNull(prop), nil
	case IsNotNull, Exists:
		return cypher.IsNotNull(prop), nil
	case IsEmpty:
		return cypher.Eq(cypher.Size(prop), cypher.Literal(0)), nil
	case IsNotEmpty:
		return cypher.Gt(cypher.Size(prop), cypher.Literal(0)), nil
	case True:
		return cypher.IsTrue(prop), nil
	case False:
		return cypher.IsFalse(prop), nil
	case Between:
		return k.between(bp, prop)
	case Near:
		return k.near(bp, prop)
	case Within:
		return k.within(bp, prop)
	}
	return nil, derivationError(k.c.method, "unsupported part type %s", bp.Type)
}

func (k *call) between(bp boundPart, prop cypher.Expression) (cypher.Condition, error) {
	if len(bp.params) == 1 {
		return k.rangeCondition(bp, prop, bp.params[0], func(v any) (any, error) { return k.convert(bp, v) })
	}
	lower, err := k.value(bp, bp.params[0])
	if err != nil {
		return nil, err
	}
	upper, err := k.value(bp, bp.params[1])
	if err != nil {
		return nil, err
	}
	return cypher.And(cypher.Gte(prop, lower), cypher.Lte(prop, upper)), nil
}

// rangeCondition compares expr against the bounded ends of the Range argument at index
// i, bound as the map parameter {lb, ub}.
func (k *call) rangeCondition(bp boundPart, expr cypher.Expression, i int, conv func(any) (any, error)) (cypher.Condition, error) {
	name := k.c.params.placeholder(i)
	r, ok := k.args[i].(domain.Range)
	if !ok {
		return nil, parameterError("%s: expected %s, got %T", name, rangeType, k.args[i])
	}
	values := map[string]any{}
	cond := cypher.NoCondition()
	p := cypher.Param(name)
	if r.Lower.Bounded {
		v, err := conv(r.Lower.Value)
		if err != nil {
			return nil, parameterError("%s.lb: %v", name, err)
		}
		values["lb"] = v
		if r.Lower.Inclusive {
			cond = cypher.And(cond, cypher.Gte(expr, p.Key("lb")))
		} else {
			cond = cypher.And(cond, cypher.Gt(expr, p.Key("lb")))
		}
	}
	if r.Upper.Bounded {
		v, err := conv(r.Upper.Value)
		if err != nil {
			return nil, parameterError("%s.ub: %v", name, err)
		}
		values["ub"] = v
		if r.Upper.Inclusive {
			cond = cypher.And(cond, cypher.Lte(expr, p.Key("ub")))
		} else {
			cond = cypher.And(cond, cypher.Lt(expr, p.Key("ub")))
		}
	}
	k.params[name] = values
	return cond, nil
}

func distanceValue(v any) (any, error) {
	switch d := v.(type) {
	case domain.Distance:
		return d.Normalized(), nil
	case float64:
		return d, nil
	}
	return nil, fmt.Errorf("expected %s, got %T", distanceType, v)
}

func (k *call) near(bp boundPart, prop cypher.Expression) (cypher.Condition, error) {
	pointIdx, otherIdx := bp.params[0], -1
	if len(bp.params) == 2 {
		otherIdx = bp.params[1]
		if !isPointValue(k.args[pointIdx]) {
			pointIdx, otherIdx = otherIdx, pointIdx
		}
	}
	if !isPointValue(k.args[pointIdx]) {
		return nil, parameterError("the NEAR operation requires a reference point, got %T", k.args[pointIdx])
	}
	pointName := k.c.params.placeholder(pointIdx)
	k.params[pointName] = k.args[pointIdx]
	distance := cypher.Distance(cypher.Property(bp.path.Owner(), bp.path.Leaf.Name), cypher.Param(pointName))

	if otherIdx < 0 {
		k.sortItems = append(k.sortItems, cypher.Asc(distance))
		return cypher.NoCondition(), nil
	}
	if _, ok := k.args[otherIdx].(domain.Range); ok {
		return k.rangeCondition(bp, distance, otherIdx, distanceValue)
	}
	name := k.c.params.placeholder(otherIdx)
	d, err := distanceValue(k.args[otherIdx])
	if err != nil {
		return nil, parameterError("%s: %v", name, err)
	}
	k.params[name] = d
	return cypher.Lte(distance, cypher.Param(name)), nil
}

func isPointValue(v any) bool {
	switch v.(type) {
	case dbtype.Point2D, dbtype.Point3D:
		return true
	}
	return false
}

func (k *call) within(bp boundPart, prop cypher.Expression) (cypher.Condition, error) {
	i := bp.params[0]
	name := k.c.params.placeholder(i)
	p := cypher.Param(name)
	switch area := k.args[i].(type) {
	case domain.Circle:
		k.params[name] = map[string]any{"center": area.Center, "radius": area.Radius.Normalized()}
		return cypher.Lte(cypher.Distance(prop, p.Key("center")), p.Key("radius")), nil
	case domain.Box:
		k.params[name] = map[string]any{"llc": area.LowerLeft, "urc": area.UpperRight}
		return cypher.WithinBBox(prop, p.Key("llc"), p.Key("urc")), nil
	}
	return nil, parameterError("the WITHIN operation requires an area of type %s or %s, got %T", circleType, boxType, k.args[i])
}
