package neopersist

import (
	"context"
	"fmt"
	"reflect"
	"slices"

	"github.com/saulfrancisco-ruizacevedo/neopersist-ogm/cypher"
	"github.com/saulfrancisco-ruizacevedo/neopersist-ogm/mapping"
	"github.com/saulfrancisco-ruizacevedo/neopersist-ogm/statement"
)

// saveState tracks one save call so that every object is written once, however
// often the object graph reaches it.
type saveState struct {
	saved     map[any]string // pointer to the struct -> element id
	processed map[relPair]any
}

func newSaveState() *saveState {
	return &saveState{saved: map[any]string{}, processed: map[relPair]any{}}
}

// relPair is a relationship between two objects, keyed by the struct pointers of
// its start and end.
type relPair struct {
	typ        string
	start, end any
}

// claim records that owner writes the relationship rd to target. It reports false
// when another object already wrote the same relationship through the obverse
// description, e.g. a movie's INCOMING actors after the actor's outgoing movies.
// An owner may claim a pair again, so parallel relationships from one side survive.
func (s *saveState) claim(rd *mapping.RelationshipDescription, owner, target any) bool {
	start, end := owner, target
	if rd.Direction == mapping.Incoming {
		start, end = target, owner
	}
	pair := relPair{rd.Type, start, end}
	candidates := []relPair{pair}
	if rd.Direction == mapping.Undirected {
		candidates = append(candidates, relPair{rd.Type, end, start})
	}
	for _, c := range candidates {
		if by, ok := s.processed[c]; ok && by != owner {
			return false
		}
	}
	s.processed[pair] = owner
	return true
}

// save writes the struct value v (addressable) and its relationships and returns
// the node's element id.
func (pm *PersistenceManager) save(ctx context.Context, s *saveState, e *mapping.PersistentEntity, v reflect.Value) (string, error) {
	key := v.Addr().Interface()
	if id, ok := s.saved[key]; ok {
		return id, nil
	}

	d := e.IDDescription()
	isNew := e.IsNew(v)
	if _, err := pm.writer.AssignID(e, v); err != nil {
		return "", err
	}
	props, err := pm.writer.Properties(e, v)
	if err != nil {
		return "", err
	}
	params := map[string]any{statement.NameOfPropertiesParam: props}
	if !isNew || !d.IsInternal() {
		id, err := pm.writer.ID(e, v)
		if err != nil {
			return "", err
		}
		params[statement.NameOfIDParam] = id
	}

	var labelsToAdd, labelsToRemove []string
	if e.HasDynamicLabels() {
		labelsToAdd = pm.writer.DynamicLabels(e, v)
		if !isNew {
			stored, err := pm.storedDynamicLabels(ctx, e, params[statement.NameOfIDParam])
			if err != nil {
				return "", err
			}
			for _, l := range stored {
				if !slices.Contains(labelsToAdd, l) {
					labelsToRemove = append(labelsToRemove, l)
				}
			}
		}
	}

	res, err := pm.run(ctx, pm.builder.PrepareSaveOf(e, isNew, labelsToAdd, labelsToRemove).Cypher(), params)
	if err != nil {
		return "", err
	}
	if len(res.Records) == 0 {
		return "", fmt.Errorf("%w: no %s with id %v to update", ErrNotFound, e.Name(), params[statement.NameOfIDParam])
	}
	rec := res.Records[0]
	elementID, err := elementIDOf(rec.Get(statement.NameOfInternalID))
	if err != nil {
		return "", err
	}
	if err := pm.reader.ApplyID(e, v, rec); err != nil {
		return "", err
	}
	s.saved[key] = elementID

	for _, rd := range e.Relationships() {
		if err := pm.saveRelationships(ctx, s, rd, v, elementID); err != nil {
			return "", fmt.Errorf("%s.%s: %w", e.Name(), rd.FieldName, err)
		}
	}
	return elementID, nil
}

func elementIDOf(value any, ok bool) (string, error) {
	id, isString := value.(string)
	if !ok || !isString {
		return "", fmt.Errorf("save statement returned no %s", statement.NameOfInternalID)
	}
	return id, nil
}

func (pm *PersistenceManager) storedDynamicLabels(ctx context.Context, e *mapping.PersistentEntity, id any) ([]string, error) {
	res, err := pm.run(ctx, pm.builder.CreateStatementReturningDynamicLabels(e).Cypher(), map[string]any{
		statement.NameOfIDParam:           id,
		statement.NameOfStaticLabelsParam: e.StaticLabels(),
	})
	if err != nil {
		return nil, err
	}
	if len(res.Records) == 0 {
		return nil, nil
	}
	raw, _ := res.Records[0].Get(statement.NameOfLabelsResult)
	list, _ := raw.([]any)
	labels := make([]string, 0, len(list))
	for _, l := range list {
		if s, ok := l.(string); ok {
			labels = append(labels, s)
		}
	}
	return labels, nil
}

// saveRelationships replaces the stored relationships of one field with the
// related objects held by the owner. A nil field leaves the stored ones untouched.
func (pm *PersistenceManager) saveRelationships(ctx context.Context, s *saveState, rd *mapping.RelationshipDescription, owner reflect.Value, ownerID string) error {
	field := rd.Value(owner)
	if field.IsNil() {
		return nil
	}
	var items []reflect.Value
	if rd.Collection {
		for i := 0; i < field.Len(); i++ {
			items = append(items, field.Index(i))
		}
	} else {
		items = append(items, field)
	}

	if _, err := pm.run(ctx, pm.builder.CreateRelationshipRemoveQuery(rd).Cypher(), map[string]any{
		statement.NameOfFromIDParam: ownerID,
	}); err != nil {
		return err
	}

	ownerKey := owner.Addr().Interface()
	create := pm.builder.CreateRelationshipCreateQuery(rd).Cypher()
	for _, item := range items {
		if item.Kind() == reflect.Pointer {
			if item.IsNil() {
				continue
			}
			item = item.Elem()
		}
		target := item
		if rd.HasProperties() {
			target = rd.Properties.TargetNode(item)
			if target.Kind() == reflect.Pointer {
				if target.IsNil() {
					return fmt.Errorf("%s has no target node", rd.Properties.Name())
				}
				target = target.Elem()
			}
		}
		// Claimed before the target is saved, so its obverse field skips the pair.
		if !s.claim(rd, ownerKey, target.Addr().Interface()) {
			pm.log.Debug("relationship already written from the other end", "type", rd.Type, "field", rd.FieldName)
			continue
		}

		targetID, err := pm.relatedNode(ctx, s, rd, target)
		if err != nil {
			return err
		}
		params := map[string]any{
			statement.NameOfFromIDParam: ownerID,
			statement.NameOfToIDParam:   targetID,
		}
		if rd.HasProperties() {
			props, err := pm.writer.Properties(rd.Properties, item)
			if err != nil {
				return err
			}
			params[statement.NameOfPropertiesParam] = props
		}

		res, err := pm.run(ctx, create, params)
		if err != nil {
			return err
		}
		if rd.HasProperties() && len(res.Records) > 0 {
			if err := pm.reader.ApplyID(rd.Properties, item, res.Records[0]); err != nil {
				return err
			}
		}
	}
	return nil
}

// relatedNode returns the element id of a related object, saving it first when
// updates cascade or it was never saved.
func (pm *PersistenceManager) relatedNode(ctx context.Context, s *saveState, rd *mapping.RelationshipDescription, v reflect.Value) (string, error) {
	if id, ok := s.saved[v.Addr().Interface()]; ok {
		return id, nil
	}
	e := rd.Target
	if rd.CascadeUpdates || e.IsNew(v) {
		return pm.save(ctx, s, e, v)
	}

	id, err := pm.writer.ID(e, v)
	if err != nil {
		return "", err
	}
	st := pm.builder.PrepareMatchOf(e, statement.IDCondition(e)).
		Return(cypher.As(cypher.ElementID(cypher.AnyNode(statement.NameOfRootNode)), statement.NameOfInternalID))
	res, err := pm.run(ctx, st.Cypher(), map[string]any{statement.NameOfIDParam: id})
	if err != nil {
		return "", err
	}
	if len(res.Records) == 0 {
		return "", fmt.Errorf("%w: related %s with id %v", ErrNotFound, e.Name(), id)
	}
	elementID, err := elementIDOf(res.Records[0].Get(statement.NameOfInternalID))
	if err != nil {
		return "", err
	}
	s.saved[v.Addr().Interface()] = elementID
	return elementID, nil
}
