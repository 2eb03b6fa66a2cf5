package convert

import (
	"fmt"
	"math"
	"reflect"
)

// writeNative handles values the driver accepts as they are, widening numbers and
// converting containers element by element.
func (r *Registry) writeNative(v reflect.Value) (any, error) {
	switch v.Kind() {
	case reflect.Bool:
		return v.Bool(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := v.Uint()
		if u > math.MaxInt64 {
			return nil, fmt.Errorf("%w: %d overflows int64", ErrConversion, u)
		}
		return int64(u), nil
	case reflect.Float32, reflect.Float64:
		return v.Float(), nil
	case reflect.String:
		return v.String(), nil
	case reflect.Struct:
		if IsNativeTemporal(v.Type()) || IsSpatial(v.Type()) {
			return v.Interface(), nil
		}
	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.IsNil() {
			return nil, nil
		}
		out := make([]any, v.Len())
		for i := range out {
			elem, err := r.write(v.Index(i))
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out[i] = elem
		}
		return out, nil
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			break
		}
		if v.IsNil() {
			return nil, nil
		}
		out := make(map[string]any, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			elem, err := r.write(iter.Value())
			if err != nil {
				return nil, fmt.Errorf("key %s: %w", iter.Key().String(), err)
			}
			out[iter.Key().String()] = elem
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: cannot write values of type %s", ErrNoConverter, v.Type())
}

// readNative assigns a driver value to target, coercing numbers with overflow checks
// and converting lists element by element.
func (r *Registry) readNative(graph any, target reflect.Type) (reflect.Value, error) {
	gv := reflect.ValueOf(graph)
	if gv.Type() == target {
		return gv, nil
	}

	out := reflect.New(target).Elem()
	switch target.Kind() {
	case reflect.Interface:
		if gv.Type().Implements(target) {
			out.Set(gv)
			return out, nil
		}
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		if err := setScalar(out, gv); err != nil {
			return reflect.Value{}, err
		}
		return out, nil
	case reflect.Struct:
		if gv.Kind() == reflect.Struct && gv.Type().ConvertibleTo(target) {
			return gv.Convert(target), nil
		}
	case reflect.Slice:
		if gv.Kind() != reflect.Slice && gv.Kind() != reflect.Array {
			break
		}
		out = reflect.MakeSlice(target, gv.Len(), gv.Len())
		if err := r.readElements(gv, out); err != nil {
			return reflect.Value{}, err
		}
		return out, nil
	case reflect.Array:
		if gv.Kind() != reflect.Slice && gv.Kind() != reflect.Array {
			break
		}
		if gv.Len() != target.Len() {
			return reflect.Value{}, fmt.Errorf("%w: list of length %d does not fit %s", ErrConversion, gv.Len(), target)
		}
		if err := r.readElements(gv, out); err != nil {
			return reflect.Value{}, err
		}
		return out, nil
	case reflect.Map:
		if gv.Kind() != reflect.Map || target.Key().Kind() != reflect.String {
			break
		}
		out = reflect.MakeMapWithSize(target, gv.Len())
		iter := gv.MapRange()
		for iter.Next() {
			elem, err := r.read(iter.Value().Interface(), target.Elem())
			if err != nil {
				return reflect.Value{}, fmt.Errorf("key %s: %w", iter.Key(), err)
			}
			out.SetMapIndex(iter.Key().Convert(target.Key()), elem)
		}
		return out, nil
	}
	return reflect.Value{}, fmt.Errorf("%w: cannot read %T into %s", ErrNoConverter, graph, target)
}

func (r *Registry) readElements(from, to reflect.Value) error {
	for i := 0; i < from.Len(); i++ {
		elem, err := r.read(from.Index(i).Interface(), to.Type().Elem())
		if err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
		to.Index(i).Set(elem)
	}
	return nil
}

// setScalar assigns a scalar graph value to out, which has a bool, string or numeric kind.
func setScalar(out, gv reflect.Value) error {
	for gv.Kind() == reflect.Interface && !gv.IsNil() {
		gv = gv.Elem()
	}
	switch out.Kind() {
	case reflect.Bool:
		if gv.Kind() == reflect.Bool {
			out.SetBool(gv.Bool())
			return nil
		}
	case reflect.String:
		if gv.Kind() == reflect.String {
			out.SetString(gv.String())
			return nil
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		var i int64
		switch {
		case gv.CanInt():
			i = gv.Int()
		case gv.CanUint() && gv.Uint() <= math.MaxInt64:
			i = int64(gv.Uint())
		default:
			return mismatch(gv, out.Type())
		}
		if out.OverflowInt(i) {
			return fmt.Errorf("%w: %d overflows %s", ErrConversion, i, out.Type())
		}
		out.SetInt(i)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		var u uint64
		switch {
		case gv.CanUint():
			u = gv.Uint()
		case gv.CanInt() && gv.Int() >= 0:
			u = uint64(gv.Int())
		default:
			return mismatch(gv, out.Type())
		}
		if out.OverflowUint(u) {
			return fmt.Errorf("%w: %d overflows %s", ErrConversion, u, out.Type())
		}
		out.SetUint(u)
		return nil
	case reflect.Float32, reflect.Float64:
		switch {
		case gv.CanFloat():
			out.SetFloat(gv.Float())
			return nil
		case gv.CanInt():
			out.SetFloat(float64(gv.Int()))
			return nil
		}
	}
	return mismatch(gv, out.Type())
}

func mismatch(gv reflect.Value, target reflect.Type) error {
	if !gv.IsValid() {
		return fmt.Errorf("%w: cannot read null into %s", ErrConversion, target)
	}
	return fmt.Errorf("%w: cannot read %s into %s", ErrConversion, gv.Type(), target)
}
