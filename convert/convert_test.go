package convert

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type securityRole string

type priority int8

type money struct {
	Cents    int64
	Currency string
}

type level int

func (l level) MarshalText() ([]byte, error) {
	switch l {
	case 1:
		return []byte("LOW"), nil
	case 2:
		return []byte("HIGH"), nil
	}
	return nil, fmt.Errorf("unknown level %d", int(l))
}

func (l *level) UnmarshalText(text []byte) error {
	switch string(text) {
	case "LOW":
		*l = 1
	case "HIGH":
		*l = 2
	default:
		return fmt.Errorf("unknown level %q", text)
	}
	return nil
}

var moneyConverter = Typed(
	func(m money) (string, error) { return fmt.Sprintf("%d %s", m.Cents, m.Currency), nil },
	func(s string) (money, error) {
		var m money
		_, err := fmt.Sscanf(s, "%d %s", &m.Cents, &m.Currency)
		return m, err
	},
)

type stringerFactory struct{ tag string }

func (f stringerFactory) Supports(t reflect.Type) bool {
	return t.Implements(reflect.TypeOf((*fmt.Stringer)(nil)).Elem())
}

func (f stringerFactory) Converter(reflect.Type) TypeConverter {
	return Funcs{
		WriteFunc: func(v reflect.Value) (any, error) { return f.tag + v.Interface().(fmt.Stringer).String(), nil },
		ReadFunc: func(graph any, target reflect.Type) (reflect.Value, error) {
			return reflect.Value{}, errors.New("read not supported")
		},
	}
}

type shout string

func (s shout) String() string { return strings.ToUpper(string(s)) }

func TestWriteValueBuiltins(t *testing.T) {
	id := uuid.MustParse("5b2b6c67-2b79-4c59-a3f6-5c2d6b87f1b1")
	when := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)
	five := 5

	tests := []struct {
		name  string
		value any
		want  any
	}{
		{name: "bytes as base64", value: []byte{98, 99, 100, 101, 102}, want: "YmNkZWY="},
		{name: "uuid as string", value: id, want: "5b2b6c67-2b79-4c59-a3f6-5c2d6b87f1b1"},
		{name: "duration", value: 90*time.Second + 5, want: dbtype.Duration{Seconds: 90, Nanos: 5}},
		{name: "string enum", value: securityRole("USER"), want: "USER"},
		{name: "int enum", value: priority(3), want: int64(3)},
		{name: "text marshaler", value: level(2), want: "HIGH"},
		{name: "enum slice", value: []securityRole{"USER", "ADMIN"}, want: []any{"USER", "ADMIN"}},
		{name: "time is native", value: when, want: when},
		{name: "point is native", value: dbtype.Point2D{X: 1, Y: 2, SpatialRefId: 7203}, want: dbtype.Point2D{X: 1, Y: 2, SpatialRefId: 7203}},
		{name: "int widened", value: int32(7), want: int64(7)},
		{name: "uint widened", value: uint16(7), want: int64(7)},
		{name: "float widened", value: float32(0.5), want: 0.5},
		{name: "pointer dereferenced", value: &five, want: int64(5)},
		{name: "nil pointer", value: (*int)(nil), want: nil},
		{name: "nil slice", value: []string(nil), want: nil},
		{name: "string map", value: map[string]int{"a": 1}, want: map[string]any{"a": int64(1)}},
	}

	r := NewRegistry()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.WriteValue(reflect.ValueOf(tt.value), nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadValueBuiltins(t *testing.T) {
	r := NewRegistry()

	tests := []struct {
		name   string
		graph  any
		target any
		want   any
	}{
		{name: "base64 to bytes", graph: "YmNkZWY=", target: []byte(nil), want: []byte{98, 99, 100, 101, 102}},
		{name: "native bytes", graph: []byte{1, 2}, target: []byte(nil), want: []byte{1, 2}},
		{name: "uuid", graph: "5b2b6c67-2b79-4c59-a3f6-5c2d6b87f1b1", target: uuid.UUID{}, want: uuid.MustParse("5b2b6c67-2b79-4c59-a3f6-5c2d6b87f1b1")},
		{name: "duration", graph: dbtype.Duration{Days: 1, Seconds: 2, Nanos: 3}, target: time.Duration(0), want: 24*time.Hour + 2*time.Second + 3},
		{name: "string enum", graph: "USER", target: securityRole(""), want: securityRole("USER")},
		{name: "enum slice", graph: []any{"USER"}, target: []securityRole(nil), want: []securityRole{"USER"}},
		{name: "text unmarshaler", graph: "LOW", target: level(0), want: level(1)},
		{name: "int64 to int", graph: int64(42), target: 0, want: 42},
		{name: "int64 to uint", graph: int64(42), target: uint(0), want: uint(42)},
		{name: "int64 to float", graph: int64(2), target: 0.0, want: 2.0},
		{name: "nil to zero", graph: nil, target: "", want: ""},
		{name: "to pointer", graph: "x", target: (*string)(nil), want: ptr("x")},
		{name: "date to time", graph: dbtype.Date(time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)), target: time.Time{}, want: time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)},
		{name: "array", graph: []any{int64(1), int64(2)}, target: [2]int{}, want: [2]int{1, 2}},
		{name: "map", graph: map[string]any{"a": int64(1)}, target: map[string]int(nil), want: map[string]int{"a": 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.ReadValue(tt.graph, reflect.TypeOf(tt.target), nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Interface())
		})
	}
}

func ptr[T any](v T) *T { return &v }

func TestReadValueIntoInterface(t *testing.T) {
	got, err := NewRegistry().ReadValue(int64(1), reflect.TypeOf((*any)(nil)).Elem(), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Interface())
}

func TestReadValueErrors(t *testing.T) {
	r := NewRegistry()

	tests := []struct {
		name   string
		graph  any
		target reflect.Type
		want   error
	}{
		{name: "overflow", graph: int64(300), target: reflect.TypeOf(int8(0)), want: ErrConversion},
		{name: "negative to uint", graph: int64(-1), target: reflect.TypeOf(uint(0)), want: ErrConversion},
		{name: "string to int", graph: "7", target: reflect.TypeOf(0), want: ErrConversion},
		{name: "bad uuid", graph: "nope", target: reflect.TypeOf(uuid.UUID{}), want: ErrConversion},
		{name: "bad base64", graph: "%%%", target: reflect.TypeOf([]byte(nil)), want: ErrConversion},
		{name: "month duration", graph: dbtype.Duration{Months: 1}, target: reflect.TypeOf(time.Duration(0)), want: ErrConversion},
		{name: "unknown enum", graph: "MEDIUM", target: reflect.TypeOf(level(0)), want: ErrConversion},
		{name: "custom struct", graph: "1 EUR", target: reflect.TypeOf(money{}), want: ErrNoConverter},
		{name: "array length", graph: []any{int64(1)}, target: reflect.TypeOf([2]int{}), want: ErrConversion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.ReadValue(tt.graph, tt.target, nil)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestWriteValueWithoutConverter(t *testing.T) {
	_, err := NewRegistry().WriteValue(reflect.ValueOf(money{Cents: 1}), nil)
	assert.ErrorIs(t, err, ErrNoConverter)
	assert.Contains(t, err.Error(), "convert.money")
}

func TestResolutionOrder(t *testing.T) {
	override := Funcs{
		WriteFunc: func(v reflect.Value) (any, error) { return "override", nil },
		ReadFunc: func(graph any, target reflect.Type) (reflect.Value, error) {
			return reflect.ValueOf(shout("from-override")), nil
		},
	}
	exact := Funcs{
		WriteFunc: func(v reflect.Value) (any, error) { return "exact", nil },
		ReadFunc: func(graph any, target reflect.Type) (reflect.Value, error) {
			return reflect.ValueOf(shout("from-exact")), nil
		},
	}

	value := reflect.ValueOf(shout("hi"))

	t.Run("factory beats builtin enum", func(t *testing.T) {
		r := NewRegistry(WithFactory(stringerFactory{tag: "f:"}))
		got, err := r.WriteValue(value, nil)
		require.NoError(t, err)
		assert.Equal(t, "f:HI", got)
	})

	t.Run("exact beats factory", func(t *testing.T) {
		r := NewRegistry(WithFactory(stringerFactory{tag: "f:"}), WithConverter(value.Type(), exact))
		got, err := r.WriteValue(value, nil)
		require.NoError(t, err)
		assert.Equal(t, "exact", got)

		read, err := r.ReadValue("x", value.Type(), nil)
		require.NoError(t, err)
		assert.Equal(t, shout("from-exact"), read.Interface())
	})

	t.Run("override beats exact", func(t *testing.T) {
		r := NewRegistry(WithConverter(value.Type(), exact))
		got, err := r.WriteValue(value, override)
		require.NoError(t, err)
		assert.Equal(t, "override", got)
	})

	t.Run("ambiguous factories", func(t *testing.T) {
		r := NewRegistry(WithFactory(stringerFactory{tag: "a:"}), WithFactory(stringerFactory{tag: "b:"}))
		_, err := r.WriteValue(value, nil)
		assert.ErrorIs(t, err, ErrAmbiguousConverter)
		assert.False(t, r.Supports(value.Type()))
	})

	t.Run("typed converter", func(t *testing.T) {
		r := NewRegistry()
		r.Register(reflect.TypeOf(money{}), moneyConverter)

		got, err := r.WriteValue(reflect.ValueOf([]money{{Cents: 150, Currency: "EUR"}}), nil)
		require.NoError(t, err)
		assert.Equal(t, []any{"150 EUR"}, got)

		read, err := r.ReadValue("99 USD", reflect.TypeOf(money{}), nil)
		require.NoError(t, err)
		assert.Equal(t, money{Cents: 99, Currency: "USD"}, read.Interface())
	})
}

func TestNamedLookups(t *testing.T) {
	r := NewRegistry(WithNamedConverter("money", moneyConverter))

	_, ok := r.Named("money")
	assert.True(t, ok)
	_, ok = r.Named("other")
	assert.False(t, ok)

	for _, name := range []string{"identity", "upper", "lower"} {
		_, ok := r.KeyTransformation(name)
		assert.True(t, ok, name)
	}
}

func TestSupports(t *testing.T) {
	r := NewRegistry()

	assert.True(t, r.Supports(reflect.TypeOf("")))
	assert.True(t, r.Supports(reflect.TypeOf([]securityRole{})))
	assert.True(t, r.Supports(reflect.TypeOf(&time.Time{})))
	assert.True(t, r.Supports(reflect.TypeOf(uuid.UUID{})))
	assert.False(t, r.Supports(reflect.TypeOf(money{})))
	assert.False(t, r.Supports(reflect.TypeOf([]money{})))

	r.Register(reflect.TypeOf(money{}), moneyConverter)
	assert.True(t, r.Supports(reflect.TypeOf([]money{})))
}

func TestTypeClassification(t *testing.T) {
	assert.True(t, IsNativeTemporal(reflect.TypeOf(time.Time{})))
	assert.True(t, IsNativeTemporal(reflect.TypeOf(&dbtype.LocalDateTime{})))
	assert.False(t, IsNativeTemporal(reflect.TypeOf("")))
	assert.True(t, IsSpatial(reflect.TypeOf(dbtype.Point3D{})))
	assert.False(t, IsSpatial(reflect.TypeOf(0.0)))
	assert.True(t, IsCollection(reflect.TypeOf([]string{})))
	assert.True(t, IsCollection(reflect.TypeOf(map[string]int{})))
	assert.False(t, IsCollection(reflect.TypeOf([]byte{})))
	assert.False(t, IsCollection(reflect.TypeOf(uuid.UUID{})))
	assert.True(t, IsString(reflect.TypeOf(securityRole(""))))
	assert.Len(t, TemporalTypes(), 5)
	assert.Len(t, SpatialTypes(), 2)
}
