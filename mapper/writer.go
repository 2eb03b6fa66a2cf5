package mapper

import (
	"fmt"
	"reflect"

	"github.com/saulfrancisco-ruizacevedo/neopersist-ogm/convert"
	"github.com/saulfrancisco-ruizacevedo/neopersist-ogm/mapping"
	"github.com/saulfrancisco-ruizacevedo/neopersist-ogm/statement"
)

// NameOfTypeProperty holds the struct name of relationship properties declared with
// persistTypeInfo.
const NameOfTypeProperty = "__type__"

// Writer turns mapped objects into statement parameters.
type Writer struct {
	ctx         *mapping.MappingContext
	conversions *convert.Registry
}

// NewWriter creates a writer using the entities and conversions of ctx.
func NewWriter(ctx *mapping.MappingContext) *Writer {
	return &Writer{ctx: ctx, conversions: ctx.Conversions()}
}

// Properties is the map written with SET n = $__properties__. Read-only fields, the
// internal id and dynamic labels are left out and composite fields are flattened, so
// a composite entry that is gone from the map is gone from the node after the write.
func (w *Writer) Properties(e *mapping.PersistentEntity, v reflect.Value) (map[string]any, error) {
	v = reflect.Indirect(v)
	id := e.IDDescription()
	out := make(map[string]any, len(e.Properties()))
	for _, prop := range e.Properties() {
		if prop.ReadOnly || (prop.IsID && id != nil && id.IsInternal()) {
			continue
		}
		field := prop.Value(v)
		if prop.IsComposite() {
			flat, err := prop.Composite.Write(field)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", e.Name(), prop.FieldName, err)
			}
			for k, value := range flat {
				out[k] = value
			}
			continue
		}
		value, err := w.conversions.WriteValue(field, prop.Converter)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", e.Name(), prop.FieldName, err)
		}
		out[prop.Name] = value
	}
	if e.IsRelationshipProperties() && e.PersistTypeInfo() {
		out[NameOfTypeProperty] = e.Name()
	}
	return out, nil
}

// ID is the graph value of the id of v: the property value for assigned and
// generated ids, the numeric or element id for internal ones.
func (w *Writer) ID(e *mapping.PersistentEntity, v reflect.Value) (any, error) {
	d := e.IDDescription()
	if d == nil {
		return nil, fmt.Errorf("%w: %s has no id", mapping.ErrMetadata, e.Name())
	}
	v = reflect.Indirect(v)
	value, err := w.conversions.WriteValue(e.IDValue(v), d.Field().Converter)
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", e.Name(), d.Field().FieldName, err)
	}
	return value, nil
}

// AssignID sets a generated id on an entity whose id is still zero. It reports
// whether an id was assigned.
func (w *Writer) AssignID(e *mapping.PersistentEntity, v reflect.Value) (bool, error) {
	d := e.IDDescription()
	v = reflect.Indirect(v)
	if d == nil || d.Strategy != mapping.GeneratedID || !e.IDValue(v).IsZero() {
		return false, nil
	}
	entity := v.Interface()
	if v.CanAddr() {
		entity = v.Addr().Interface()
	}
	raw, err := d.Generator.GenerateID(e.PrimaryLabel(), entity)
	if err != nil {
		return false, fmt.Errorf("generating id for %s: %w", e.Name(), err)
	}
	value, err := w.conversions.ReadValue(raw, d.Field().Type, nil)
	if err != nil {
		return false, fmt.Errorf("generated id for %s: %w", e.Name(), err)
	}
	e.IDValue(v).Set(value)
	return true, nil
}

// DynamicLabels returns the labels held by the dynamicLabels field of v.
func (w *Writer) DynamicLabels(e *mapping.PersistentEntity, v reflect.Value) []string {
	if !e.HasDynamicLabels() {
		return nil
	}
	field := e.DynamicLabels(reflect.Indirect(v))
	out := make([]string, field.Len())
	for i := range out {
		out[i] = field.Index(i).String()
	}
	return out
}

// EntityParam is the parameter form of a mapped entity, addressable in Cypher as
// $p.__id__, $p.__labels__ and $p.__properties__.
func (w *Writer) EntityParam(e *mapping.PersistentEntity, v reflect.Value) (map[string]any, error) {
	id, err := w.ID(e, v)
	if err != nil {
		return nil, err
	}
	props, err := w.Properties(e, v)
	if err != nil {
		return nil, err
	}
	labels := append(e.StaticLabels(), w.DynamicLabels(e, v)...)
	return map[string]any{
		statement.NameOfIDParam:         id,
		statement.NameOfLabelsResult:    labels,
		statement.NameOfPropertiesParam: props,
	}, nil
}

// Argument converts a query argument. Mapped entities become their EntityParam and
// everything else goes through the conversion registry.
func (w *Writer) Argument(arg any) (any, error) {
	if arg == nil {
		return nil, nil
	}
	v := reflect.ValueOf(arg)
	if mapping.IsEntity(v.Type()) {
		if v.Kind() == reflect.Pointer && v.IsNil() {
			return nil, nil
		}
		e, err := w.ctx.PersistentEntity(v.Type())
		if err != nil {
			return nil, err
		}
		return w.EntityParam(e, v)
	}
	return w.conversions.WriteValue(v, nil)
}
