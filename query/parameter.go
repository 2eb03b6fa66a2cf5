package query

import (
	"reflect"
	"strconv"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/saulfrancisco-ruizacevedo/neopersist-ogm/domain"
)

var (
	pageableType = reflect.TypeOf(domain.Pageable{})
	sortType     = reflect.TypeOf(domain.Sort(nil))
	rangeType    = reflect.TypeOf(domain.Range{})
	distanceType = reflect.TypeOf(domain.Distance{})
	circleType   = reflect.TypeOf(domain.Circle{})
	boxType      = reflect.TypeOf(domain.Box{})
	point2DType  = reflect.TypeOf(dbtype.Point2D{})
	point3DType  = reflect.TypeOf(dbtype.Point3D{})
)

// Parameter is a formal parameter of a query method.
type Parameter struct {
	// Name is used as $name in the statement. Unnamed parameters are referenced by
	// their position among the bindable parameters, as $0, $1, ...
	Name string
	Type reflect.Type
}

// Param declares a parameter of type T.
func Param[T any](name string) Parameter {
	return Parameter{Name: name, Type: reflect.TypeFor[T]()}
}

// IsSpecial reports whether the parameter controls paging or sorting instead of
// binding a value.
func (p Parameter) IsSpecial() bool {
	return p.Type == pageableType || p.Type == sortType
}

// Parameters are the formal parameters of a method in declaration order.
type Parameters []Parameter

// Bindable are the indexes of the non-special parameters.
func (ps Parameters) Bindable() []int {
	var idx []int
	for i, p := range ps {
		if !p.IsSpecial() {
			idx = append(idx, i)
		}
	}
	return idx
}

// placeholder is the statement parameter name for the parameter at index i.
func (ps Parameters) placeholder(i int) string {
	if ps[i].Name != "" {
		return ps[i].Name
	}
	for pos, b := range ps.Bindable() {
		if b == i {
			return strconv.Itoa(pos)
		}
	}
	return strconv.Itoa(i)
}

func (ps Parameters) indexOf(t reflect.Type) int {
	for i, p := range ps {
		if p.Type == t {
			return i
		}
	}
	return -1
}

// Pageable extracts the paging argument, if the method declares one.
func (ps Parameters) Pageable(args []any) domain.Pageable {
	if i := ps.indexOf(pageableType); i >= 0 && i < len(args) {
		if p, ok := args[i].(domain.Pageable); ok {
			return p
		}
	}
	return domain.Unpaged
}

// Sort extracts the sort argument, if the method declares one.
func (ps Parameters) Sort(args []any) domain.Sort {
	if i := ps.indexOf(sortType); i >= 0 && i < len(args) {
		if s, ok := args[i].(domain.Sort); ok {
			return s
		}
	}
	return nil
}

// CheckArguments verifies that args match the declared parameters in number and type.
func (ps Parameters) CheckArguments(args []any) error {
	if len(args) != len(ps) {
		return parameterError("expected %d arguments, got %d", len(ps), len(args))
	}
	for i, p := range ps {
		if args[i] == nil || p.Type == nil {
			continue
		}
		at := reflect.TypeOf(args[i])
		if at != p.Type && !(p.Type.Kind() == reflect.Interface && at.Implements(p.Type)) {
			return parameterError("argument %d: expected %s, got %s", i, p.Type, at)
		}
	}
	return nil
}

func isPoint(t reflect.Type) bool { return t == point2DType || t == point3DType }

// ReturnKind is what a query method returns.
type ReturnKind int

const (
	ReturnsEntities ReturnKind = iota
	ReturnsEntity
	ReturnsPage
	ReturnsStream
	ReturnsProjection
	ReturnsCount
	ReturnsBool
	ReturnsNothing
)

func (k ReturnKind) String() string {
	switch k {
	case ReturnsEntity:
		return "entity"
	case ReturnsPage:
		return "page"
	case ReturnsStream:
		return "stream"
	case ReturnsProjection:
		return "projection"
	case ReturnsCount:
		return "count"
	case ReturnsBool:
		return "bool"
	case ReturnsNothing:
		return "nothing"
	}
	return "entities"
}
