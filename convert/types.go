package convert

import (
	"reflect"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

var temporalTypes = []reflect.Type{
	reflect.TypeOf(time.Time{}),
	reflect.TypeOf(dbtype.Date{}),
	reflect.TypeOf(dbtype.LocalDateTime{}),
	reflect.TypeOf(dbtype.LocalTime{}),
	reflect.TypeOf(dbtype.Time{}),
}

var spatialTypes = []reflect.Type{
	reflect.TypeOf(dbtype.Point2D{}),
	reflect.TypeOf(dbtype.Point3D{}),
}

var durationGraphType = reflect.TypeOf(dbtype.Duration{})

// TemporalTypes lists the types accepted by the Before and After keywords.
func TemporalTypes() []reflect.Type {
	return append([]reflect.Type(nil), temporalTypes...)
}

// SpatialTypes lists the types accepted by the Near and Within keywords.
func SpatialTypes() []reflect.Type {
	return append([]reflect.Type(nil), spatialTypes...)
}

// IsNativeTemporal reports whether t is a temporal value the driver stores natively.
func IsNativeTemporal(t reflect.Type) bool {
	t = deref(t)
	for _, tt := range temporalTypes {
		if t == tt {
			return true
		}
	}
	return t == durationGraphType
}

// IsSpatial reports whether t is a driver point type.
func IsSpatial(t reflect.Type) bool {
	t = deref(t)
	for _, st := range spatialTypes {
		if t == st {
			return true
		}
	}
	return false
}

// IsCollection reports whether t is a slice, array or map, excluding byte slices.
func IsCollection(t reflect.Type) bool {
	t = deref(t)
	switch t.Kind() {
	case reflect.Slice:
		return t.Elem().Kind() != reflect.Uint8
	case reflect.Array, reflect.Map:
		return t != uuidType
	}
	return false
}

// IsString reports whether t has a string kind.
func IsString(t reflect.Type) bool {
	return isStringKind(deref(t))
}

func deref(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

func isStringKind(t reflect.Type) bool { return t.Kind() == reflect.String }

func isIntKind(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isUintKind(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

// nativeKind reports whether the driver can carry t without a converter.
func nativeKind(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool, reflect.String, reflect.Float32, reflect.Float64:
		return true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	case reflect.Struct:
		return IsNativeTemporal(t) || IsSpatial(t)
	case reflect.Slice, reflect.Array:
		return nativeKind(t.Elem()) || t.Elem().Kind() == reflect.Interface
	case reflect.Interface:
		return t.NumMethod() == 0
	}
	return false
}
