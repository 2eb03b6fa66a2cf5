// Package domain holds the value types shared by repositories, the statement builder
// and query derivation: sorting, paging, ranges and geometric shapes.
package domain

import "strings"

// Direction is the sort direction of one order.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "DESC"
	}
	return "ASC"
}

// Order sorts by one property. Property is a Go field name or a graph property name.
type Order struct {
	Property   string
	Direction  Direction
	IgnoreCase bool
}

// Asc orders ascending by property.
func Asc(property string) Order { return Order{Property: property} }

// Desc orders descending by property.
func Desc(property string) Order { return Order{Property: property, Direction: Descending} }

// WithIgnoreCase returns a copy of o that compares lower-cased values.
func (o Order) WithIgnoreCase() Order {
	o.IgnoreCase = true
	return o
}

// Sort is an ordered list of orders. The nil Sort is unsorted.
type Sort []Order

// By sorts ascending by the given properties.
func By(properties ...string) Sort {
	s := make(Sort, len(properties))
	for i, p := range properties {
		s[i] = Asc(p)
	}
	return s
}

// And appends the orders of other.
func (s Sort) And(other Sort) Sort {
	out := make(Sort, 0, len(s)+len(other))
	return append(append(out, s...), other...)
}

func (s Sort) IsSorted() bool { return len(s) > 0 }

func (s Sort) String() string {
	if len(s) == 0 {
		return "UNSORTED"
	}
	parts := make([]string, len(s))
	for i, o := range s {
		parts[i] = o.Property + ": " + o.Direction.String()
	}
	return strings.Join(parts, ", ")
}
