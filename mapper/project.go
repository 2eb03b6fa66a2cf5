package mapper

import (
	"fmt"
	"reflect"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/saulfrancisco-ruizacevedo/neopersist-ogm/mapping"
)

// Project maps every record onto a new value of type target.
func (r *Reader) Project(records []*neo4j.Record, target reflect.Type) ([]reflect.Value, error) {
	out := make([]reflect.Value, 0, len(records))
	for i, rec := range records {
		v, err := r.ProjectRecord(rec, target)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// ProjectRecord maps one record onto a value of type target. Structs (or pointers to
// structs) are filled field by field from the columns named by mapping.ResultColumn;
// a field with an explicit column tag fails with ErrNoSuchColumn when the column is
// missing. Any other target takes the record's single column.
func (r *Reader) ProjectRecord(rec *neo4j.Record, target reflect.Type) (reflect.Value, error) {
	t := target
	if t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Struct && !r.conversions.Supports(t.Elem()) {
		v, err := r.projectStruct(rec, t.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		return v.Addr(), nil
	}
	// Structs the registry reads as one value, like time.Time, take a single column.
	if t.Kind() == reflect.Struct && !r.conversions.Supports(t) {
		return r.projectStruct(rec, t)
	}

	if len(rec.Values) != 1 {
		return reflect.Value{}, mappingError("a single column is required to read %s, got %v", target, rec.Keys)
	}
	if rec.Values[0] == nil {
		return reflect.Value{}, fmt.Errorf("%w: column %s", ErrNullResult, rec.Keys[0])
	}
	v, err := r.conversions.ReadValue(rec.Values[0], target, nil)
	if err != nil {
		return reflect.Value{}, mappingError("column %s: %w", rec.Keys[0], err)
	}
	return v, nil
}

func (r *Reader) projectStruct(rec *neo4j.Record, t reflect.Type) (reflect.Value, error) {
	v := reflect.New(t).Elem()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous {
			continue
		}
		column, explicit, ok := mapping.ResultColumn(f)
		if !ok {
			continue
		}
		graph, found := rec.Get(column)
		if !found {
			if explicit {
				return reflect.Value{}, fmt.Errorf("%w: %s (field %s.%s)", ErrNoSuchColumn, column, t.Name(), f.Name)
			}
			continue
		}
		value, err := r.conversions.ReadValue(graph, f.Type, nil)
		if err != nil {
			return reflect.Value{}, mappingError("%s.%s: %w", t.Name(), f.Name, err)
		}
		v.Field(i).Set(value)
	}
	return v, nil
}
