package query

import (
	"regexp"
	"slices"
	"strconv"
)

// Names of the parameters a Pageable argument supplies to hand-written queries.
const (
	SkipParam  = "skip"
	LimitParam = "limit"
)

// parameterReference matches $name and $0. Quoted text and comments are matched
// whole so that a $ inside them is not taken for a reference; only the last
// alternative captures.
var parameterReference = regexp.MustCompile(`'(?:[^'\\]|\\.)*'` +
	`|"(?:[^"\\]|\\.)*"` +
	"|`[^`]*`" +
	`|//[^\n]*` +
	`|/\*(?s:.*?)\*/` +
	`|\$([A-Za-z_][A-Za-z0-9_]*|[0-9]+)`)

// ArgumentConverter turns a call argument into a value the driver accepts. It is
// where mapped entities become {__id__, __labels__, __properties__} maps.
type ArgumentConverter func(arg any) (any, error)

// StringQuery is a hand-written Cypher statement with $name and $0 references.
type StringQuery struct {
	Cypher string
	// References are the distinct parameter names used, in order of appearance.
	References []string
}

// ParseStringQuery collects the parameter references of cypher.
func ParseStringQuery(cypher string) StringQuery {
	q := StringQuery{Cypher: cypher}
	seen := map[string]bool{}
	for _, m := range parameterReference.FindAllStringSubmatch(cypher, -1) {
		if m[1] == "" {
			continue
		}
		if !seen[m[1]] {
			seen[m[1]] = true
			q.References = append(q.References, m[1])
		}
	}
	return q
}

// Validate checks that every reference can be bound from params.
func (q StringQuery) Validate(method string, params Parameters) error {
	bindable := params.Bindable()
	names := map[string]bool{}
	for _, i := range bindable {
		if params[i].Name != "" {
			names[params[i].Name] = true
		}
	}
	if params.indexOf(pageableType) >= 0 {
		names[SkipParam], names[LimitParam] = true, true
	}
	for _, ref := range q.References {
		if pos, err := strconv.Atoi(ref); err == nil {
			if pos >= len(bindable) {
				return derivationError(method, "parameter $%s is out of range, the method has %d bindable parameters", ref, len(bindable))
			}
			continue
		}
		if !names[ref] {
			return derivationError(method, "parameter $%s is not declared", ref)
		}
	}
	return nil
}

// Bind builds the parameter map for one call. Every bindable argument is available
// both by name and by position; a Pageable argument supplies $skip and $limit.
func (q StringQuery) Bind(params Parameters, args []any, conv ArgumentConverter) (map[string]any, error) {
	if err := params.CheckArguments(args); err != nil {
		return nil, err
	}
	out := map[string]any{}
	for pos, i := range params.Bindable() {
		v, err := conv(args[i])
		if err != nil {
			return nil, parameterError("%s: %v", params.placeholder(i), err)
		}
		out[strconv.Itoa(pos)] = v
		if params[i].Name != "" {
			out[params[i].Name] = v
		}
	}
	if p := params.Pageable(args); p.IsPaged() {
		out[SkipParam] = p.Offset()
		out[LimitParam] = int64(p.Size)
	}
	// Only referenced parameters are sent.
	for name := range out {
		if !slices.Contains(q.References, name) {
			delete(out, name)
		}
	}
	return out, nil
}
