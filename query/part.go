// Package query derives Cypher statements from method names such as
// FindByNameAndAgeGreaterThan and binds parameters of hand-written Cypher queries.
//
// Derivation happens in two steps. NewCreator parses and validates a method once,
// failing fast on unknown properties, keyword and type mismatches and missing
// parameters. Creator.Create then renders a statement for each call's arguments.
package query

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/saulfrancisco-ruizacevedo/neopersist-ogm/domain"
)

// Type is the operator of one predicate part.
type Type int

const (
	SimpleProperty Type = iota
	NegatingSimpleProperty
	IsNotNull
	IsNull
	Between
	LessThan
	LessThanEqual
	GreaterThan
	GreaterThanEqual
	Before
	After
	NotLike
	Like
	StartingWith
	EndingWith
	IsNotEmpty
	IsEmpty
	NotContaining
	Containing
	NotIn
	In
	Near
	Within
	Regex
	Exists
	True
	False
)

type keyword struct {
	typ      Type
	name     string
	args     int
	keywords []string
}

// keywords are tried in order; the first whose keyword is a suffix of the part wins.
var keywords = []keyword{
	{IsNotNull, "IS_NOT_NULL", 0, []string{"IsNotNull", "NotNull"}},
	{IsNull, "IS_NULL", 0, []string{"IsNull", "Null"}},
	{Between, "BETWEEN", 2, []string{"IsBetween", "Between"}},
	{LessThan, "LESS_THAN", 1, []string{"IsLessThan", "LessThan"}},
	{LessThanEqual, "LESS_THAN_EQUAL", 1, []string{"IsLessThanEqual", "LessThanEqual"}},
	{GreaterThan, "GREATER_THAN", 1, []string{"IsGreaterThan", "GreaterThan"}},
	{GreaterThanEqual, "GREATER_THAN_EQUAL", 1, []string{"IsGreaterThanEqual", "GreaterThanEqual"}},
	{Before, "BEFORE", 1, []string{"IsBefore", "Before"}},
	{After, "AFTER", 1, []string{"IsAfter", "After"}},
	{NotLike, "NOT_LIKE", 1, []string{"IsNotLike", "NotLike"}},
	{Like, "LIKE", 1, []string{"IsLike", "Like"}},
	{StartingWith, "STARTING_WITH", 1, []string{"IsStartingWith", "StartingWith", "StartsWith"}},
	{EndingWith, "ENDING_WITH", 1, []string{"IsEndingWith", "EndingWith", "EndsWith"}},
	{IsNotEmpty, "IS_NOT_EMPTY", 0, []string{"IsNotEmpty", "NotEmpty"}},
	{IsEmpty, "IS_EMPTY", 0, []string{"IsEmpty", "Empty"}},
	{NotContaining, "NOT_CONTAINING", 1, []string{"IsNotContaining", "NotContaining", "NotContains"}},
	{Containing, "CONTAINING", 1, []string{"IsContaining", "Containing", "Contains"}},
	{NotIn, "NOT_IN", 1, []string{"IsNotIn", "NotIn"}},
	{In, "IN", 1, []string{"IsIn", "In"}},
	{Near, "NEAR", 1, []string{"IsNear", "Near"}},
	{Within, "WITHIN", 1, []string{"IsWithin", "Within"}},
	{Regex, "REGEX", 1, []string{"MatchesRegex", "Matches", "Regex"}},
	{Exists, "EXISTS", 0, []string{"Exists"}},
	{True, "TRUE", 0, []string{"IsTrue", "True"}},
	{False, "FALSE", 0, []string{"IsFalse", "False"}},
	{NegatingSimpleProperty, "NEGATING_SIMPLE_PROPERTY", 1, []string{"IsNot", "Not"}},
	{SimpleProperty, "SIMPLE_PROPERTY", 1, []string{"Is", "Equals"}},
}

func (t Type) keyword() keyword {
	for _, k := range keywords {
		if k.typ == t {
			return k
		}
	}
	return keywords[len(keywords)-1]
}

func (t Type) String() string { return t.keyword().name }

// Keywords are the method name suffixes selecting t.
func (t Type) Keywords() []string { return t.keyword().keywords }

// NumArgs is the number of parameters the operator usually binds.
func (t Type) NumArgs() int { return t.keyword().args }

// IgnoreCaseMode says whether a part compares lower-cased values.
type IgnoreCaseMode int

const (
	// Never compares as is.
	Never IgnoreCaseMode = iota
	// WhenPossible ignores case where the keyword and property type allow it (AllIgnoreCase).
	WhenPossible
	// Always ignores case and fails when that is not possible (IgnoreCase on the part).
	Always
)

// Part is one predicate, e.g. AgeGreaterThan.
type Part struct {
	// Property is the property path as written in the method name, e.g. DirectorName.
	Property   string
	Type       Type
	IgnoreCase IgnoreCaseMode
}

func (p Part) String() string {
	return fmt.Sprintf("%s %s", p.Property, p.Type)
}

// SubjectKind is what a derived query does with the matching nodes.
type SubjectKind int

const (
	FindSubject SubjectKind = iota
	CountSubject
	ExistsSubject
	DeleteSubject
)

// Subject is the part of a method name before By.
type Subject struct {
	Kind     SubjectKind
	Distinct bool
	// Limit is set by First<N> or Top<N>; First alone means 1.
	Limit int64
}

// IsLimiting reports whether the subject caps the number of results.
func (s Subject) IsLimiting() bool { return s.Limit > 0 }

// PartTree is a parsed method name: ORs of ANDs of parts plus a static ordering.
type PartTree struct {
	Subject   Subject
	Predicate [][]Part
	Sort      domain.Sort
}

// Parts lists all parts in binding order.
func (t *PartTree) Parts() []Part {
	var parts []Part
	for _, and := range t.Predicate {
		parts = append(parts, and...)
	}
	return parts
}

var (
	prefixPattern     = regexp.MustCompile(`^(find|read|get|query|search|stream|count|exists|delete|remove)(\p{Lu}.*?)??By`)
	subjectOnly       = regexp.MustCompile(`^(find|read|get|query|search|stream|count|exists|delete|remove)(\p{Lu}\w*)?$`)
	limitPattern      = regexp.MustCompile(`^(First|Top)(\d*)`)
	allIgnoreCase     = regexp.MustCompile(`(AllIgnoreCase|AllIgnoringCase)$`)
	partIgnoreCase    = regexp.MustCompile(`(IgnoreCase|IgnoringCase)$`)
	orderByDirections = regexp.MustCompile(`^(\p{Lu}\w*?)(Asc|Desc)(\p{Lu}|$)`)
)

// ParsePartTree parses a method name. Method names are matched case sensitively;
// a leading upper-case letter (Go's exported methods) is accepted.
func ParsePartTree(method string) (*PartTree, error) {
	name := lowerFirst(method)
	tree := &PartTree{}

	var predicate string
	if m := prefixPattern.FindStringSubmatchIndex(name); m != nil {
		tree.Subject = parseSubject(name[m[2]:m[3]], subjectText(name, m))
		predicate = name[m[1]:]
	} else if m := subjectOnly.FindStringSubmatch(name); m != nil {
		tree.Subject = parseSubject(m[1], m[2])
		return tree, nil
	} else {
		return nil, derivationError(method, "method name does not start with a known prefix")
	}

	if i := strings.Index(predicate, "OrderBy"); i >= 0 {
		sort, err := parseOrderBy(method, predicate[i+len("OrderBy"):])
		if err != nil {
			return nil, err
		}
		tree.Sort = sort
		predicate = predicate[:i]
	}

	mode := Never
	if loc := allIgnoreCase.FindStringIndex(predicate); loc != nil {
		mode = WhenPossible
		predicate = predicate[:loc[0]]
	}
	if predicate == "" {
		if tree.Sort.IsSorted() {
			return tree, nil
		}
		return nil, derivationError(method, "no predicate after By")
	}

	for _, or := range splitKeyword(predicate, "Or") {
		var and []Part
		for _, raw := range splitKeyword(or, "And") {
			p, err := parsePart(method, raw, mode)
			if err != nil {
				return nil, err
			}
			and = append(and, p)
		}
		tree.Predicate = append(tree.Predicate, and)
	}
	return tree, nil
}

func subjectText(name string, m []int) string {
	if m[4] < 0 {
		return ""
	}
	return name[m[4]:m[5]]
}

func parseSubject(prefix, text string) Subject {
	s := Subject{}
	switch prefix {
	case "count":
		s.Kind = CountSubject
	case "exists":
		s.Kind = ExistsSubject
	case "delete", "remove":
		s.Kind = DeleteSubject
	}
	s.Distinct = strings.Contains(text, "Distinct")
	if m := limitPattern.FindStringSubmatch(strings.TrimPrefix(text, "Distinct")); m != nil {
		s.Limit = 1
		if m[2] != "" {
			s.Limit, _ = strconv.ParseInt(m[2], 10, 64)
		}
	}
	return s
}

func parseOrderBy(method, text string) (domain.Sort, error) {
	var sort domain.Sort
	rest := text
	for rest != "" {
		m := orderByDirections.FindStringSubmatchIndex(rest)
		if m == nil {
			// A trailing property without direction sorts ascending.
			if lowerFirst(rest) == rest {
				return nil, derivationError(method, "invalid order clause %q", text)
			}
			sort = append(sort, domain.Asc(rest))
			break
		}
		prop, dir := rest[m[2]:m[3]], rest[m[4]:m[5]]
		if dir == "Desc" {
			sort = append(sort, domain.Desc(prop))
		} else {
			sort = append(sort, domain.Asc(prop))
		}
		rest = rest[m[5]:]
	}
	return sort, nil
}

// splitKeyword splits s at kw when kw is followed by an upper-case letter.
func splitKeyword(s, kw string) []string {
	var parts []string
	start := 0
	for i := 0; i+len(kw) < len(s); i++ {
		if i > start && s[i:i+len(kw)] == kw && isUpper(s[i+len(kw)]) {
			parts = append(parts, s[start:i])
			start = i + len(kw)
			i = start - 1
		}
	}
	return append(parts, s[start:])
}

func parsePart(method, raw string, mode IgnoreCaseMode) (Part, error) {
	p := Part{IgnoreCase: mode}
	if loc := partIgnoreCase.FindStringIndex(raw); loc != nil {
		p.IgnoreCase = Always
		raw = raw[:loc[0]]
	}
	p.Type = SimpleProperty
	p.Property = raw
	for _, k := range keywords {
		matched := false
		for _, kw := range k.keywords {
			if len(raw) > len(kw) && strings.HasSuffix(raw, kw) {
				p.Type = k.typ
				p.Property = strings.TrimSuffix(raw, kw)
				matched = true
				break
			}
		}
		if matched {
			break
		}
	}
	if p.Property == "" {
		return Part{}, derivationError(method, "empty property in part %q", raw)
	}
	return p, nil
}

func isUpper(b byte) bool { return b >= 'A' && b <= 'Z' }

func lowerFirst(s string) string {
	if s == "" || !isUpper(s[0]) {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
