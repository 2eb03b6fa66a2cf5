package convert

import (
	"encoding"
	"encoding/base64"
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

var (
	uuidType            = reflect.TypeOf(uuid.UUID{})
	durationType        = reflect.TypeOf(time.Duration(0))
	textMarshalerType   = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
)

func builtinFor(t reflect.Type) TypeConverter {
	switch {
	case t == uuidType:
		return uuidConverter{}
	case t == durationType:
		return durationConverter{}
	case t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8:
		return base64Converter{}
	case IsNativeTemporal(t) || IsSpatial(t):
		return nil
	case t.Implements(textMarshalerType) && reflect.PointerTo(t).Implements(textUnmarshalerType):
		return textConverter{}
	case t.PkgPath() != "" && (isStringKind(t) || isIntKind(t) || isUintKind(t)):
		return enumConverter{}
	}
	return nil
}

type uuidConverter struct{}

func (uuidConverter) Write(v reflect.Value) (any, error) {
	return v.Interface().(uuid.UUID).String(), nil
}

func (uuidConverter) Read(graph any, target reflect.Type) (reflect.Value, error) {
	s, ok := graph.(string)
	if !ok {
		return reflect.Value{}, fmt.Errorf("%w: cannot read %T as UUID", ErrConversion, graph)
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return reflect.Value{}, fmt.Errorf("%w: %v", ErrConversion, err)
	}
	return reflect.ValueOf(id).Convert(target), nil
}

// durationConverter stores time.Duration as a Cypher DURATION.
type durationConverter struct{}

func (durationConverter) Write(v reflect.Value) (any, error) {
	d := time.Duration(v.Int())
	return dbtype.Duration{
		Seconds: int64(d / time.Second),
		Nanos:   int(d % time.Second),
	}, nil
}

func (durationConverter) Read(graph any, target reflect.Type) (reflect.Value, error) {
	var d time.Duration
	switch g := graph.(type) {
	case dbtype.Duration:
		if g.Months != 0 {
			return reflect.Value{}, fmt.Errorf("%w: duration %s has a month component and no fixed length", ErrConversion, g)
		}
		d = time.Duration(g.Days)*24*time.Hour + time.Duration(g.Seconds)*time.Second + time.Duration(g.Nanos)
	case int64:
		d = time.Duration(g)
	default:
		return reflect.Value{}, fmt.Errorf("%w: cannot read %T as duration", ErrConversion, graph)
	}
	return reflect.ValueOf(d).Convert(target), nil
}

// base64Converter stores byte slices as standard Base64 strings.
type base64Converter struct{}

func (base64Converter) Write(v reflect.Value) (any, error) {
	return base64.StdEncoding.EncodeToString(v.Bytes()), nil
}

func (base64Converter) Read(graph any, target reflect.Type) (reflect.Value, error) {
	switch g := graph.(type) {
	case string:
		b, err := base64.StdEncoding.DecodeString(g)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("%w: %v", ErrConversion, err)
		}
		return reflect.ValueOf(b).Convert(target), nil
	case []byte:
		return reflect.ValueOf(g).Convert(target), nil
	}
	return reflect.Value{}, fmt.Errorf("%w: cannot read %T as bytes", ErrConversion, graph)
}

type textConverter struct{}

func (textConverter) Write(v reflect.Value) (any, error) {
	text, err := v.Interface().(encoding.TextMarshaler).MarshalText()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConversion, err)
	}
	return string(text), nil
}

func (textConverter) Read(graph any, target reflect.Type) (reflect.Value, error) {
	s, ok := graph.(string)
	if !ok {
		return reflect.Value{}, fmt.Errorf("%w: cannot read %T as %s", ErrConversion, graph, target)
	}
	ptr := reflect.New(target)
	if err := ptr.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(s)); err != nil {
		return reflect.Value{}, fmt.Errorf("%w: %v", ErrConversion, err)
	}
	return ptr.Elem(), nil
}

// enumConverter handles named string and integer types by their underlying value.
type enumConverter struct{}

func (enumConverter) Write(v reflect.Value) (any, error) {
	switch {
	case v.CanInt():
		return v.Int(), nil
	case v.CanUint():
		return int64(v.Uint()), nil
	}
	return v.String(), nil
}

func (enumConverter) Read(graph any, target reflect.Type) (reflect.Value, error) {
	out := reflect.New(target).Elem()
	if err := setScalar(out, reflect.ValueOf(graph)); err != nil {
		return reflect.Value{}, err
	}
	return out, nil
}
