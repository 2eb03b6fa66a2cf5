package domain

import (
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

// Metric scales a Distance to meters.
type Metric float64

const (
	Meters     Metric = 1
	Kilometers Metric = 1000
	Miles      Metric = 1609.344
)

// Distance is a length in a metric. The database compares distances in meters for
// geographic points and in coordinate units for cartesian ones.
type Distance struct {
	Value  float64
	Metric Metric
}

// NewDistance is a distance in meters unless a metric is given.
func NewDistance(value float64, metric ...Metric) Distance {
	m := Meters
	if len(metric) > 0 {
		m = metric[0]
	}
	return Distance{Value: value, Metric: m}
}

// Normalized is the distance in meters.
func (d Distance) Normalized() float64 {
	if d.Metric == 0 {
		return d.Value
	}
	return d.Value * float64(d.Metric)
}

// Circle is the area within Radius around Center.
type Circle struct {
	Center dbtype.Point2D
	Radius Distance
}

// Box is the axis-aligned rectangle spanned by its lower-left and upper-right corners.
type Box struct {
	LowerLeft  dbtype.Point2D
	UpperRight dbtype.Point2D
}
