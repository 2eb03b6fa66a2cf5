package domain

// Bound is one end of a Range. An unbounded end constrains nothing.
type Bound struct {
	Value     any
	Inclusive bool
	Bounded   bool
}

// Inclusive is a bound that includes v.
func Inclusive(v any) Bound { return Bound{Value: v, Inclusive: true, Bounded: true} }

// Exclusive is a bound that excludes v.
func Exclusive(v any) Bound { return Bound{Value: v, Bounded: true} }

// Unbounded is an open end.
func Unbounded() Bound { return Bound{} }

// Range is an interval with independently optional ends.
type Range struct {
	Lower Bound
	Upper Bound
}

// Closed is the range [lower, upper].
func Closed(lower, upper any) Range {
	return Range{Lower: Inclusive(lower), Upper: Inclusive(upper)}
}

// Open is the range (lower, upper).
func Open(lower, upper any) Range {
	return Range{Lower: Exclusive(lower), Upper: Exclusive(upper)}
}

func AtLeast(v any) Range     { return Range{Lower: Inclusive(v)} }
func GreaterThan(v any) Range { return Range{Lower: Exclusive(v)} }
func AtMost(v any) Range      { return Range{Upper: Inclusive(v)} }
func LessThan(v any) Range    { return Range{Upper: Exclusive(v)} }
