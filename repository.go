// Package neopersist is an object-graph mapper for Neo4j. It maps tagged Go structs
// to nodes and relationships and provides generic repositories, derived query
// methods and a transaction boundary on top of the official driver.
package neopersist

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"reflect"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/saulfrancisco-ruizacevedo/gocypher"

	"github.com/saulfrancisco-ruizacevedo/neopersist-ogm/cypher"
	"github.com/saulfrancisco-ruizacevedo/neopersist-ogm/domain"
	"github.com/saulfrancisco-ruizacevedo/neopersist-ogm/mapper"
	"github.com/saulfrancisco-ruizacevedo/neopersist-ogm/mapping"
	"github.com/saulfrancisco-ruizacevedo/neopersist-ogm/statement"
)

// Repository provides generic CRUD operations for the node entity T. It relies on
// the neo4j struct tags of T to map its fields to node properties and relationships.
// It is safe for concurrent use.
type Repository[T any] struct {
	pm     *PersistenceManager
	entity *mapping.PersistentEntity
}

// NewRepository creates a new generic repository for the type T. The mapping of T
// and of every type reachable from it is validated here.
//
// Returns:
//
//	A new Repository instance or an error wrapping ErrNotEntity if T cannot be mapped
//	as a node.
func NewRepository[T any](pm *PersistenceManager) (*Repository[T], error) {
	e, err := pm.mapping.RequiredNodeDescription(reflect.TypeFor[T]())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotEntity, err)
	}
	return &Repository[T]{pm: pm, entity: e}, nil
}

// Entity is the mapping of T.
func (r *Repository[T]) Entity() *mapping.PersistentEntity { return r.entity }

// FindOption narrows a read.
type FindOption func(*statement.Load)

// WithSort orders the roots.
func WithSort(sort domain.Sort) FindOption {
	return func(l *statement.Load) { l.Sort = l.Sort.And(sort) }
}

// WithPage reads one page of roots.
func WithPage(page domain.Pageable) FindOption {
	return func(l *statement.Load) { l.Page = page }
}

// WithLoadDepth overrides how many relationship hops are loaded.
func WithLoadDepth(depth int) FindOption {
	return func(l *statement.Load) { l.Depth = depth }
}

func (r *Repository[T]) newLoad(condition cypher.Condition, opts []FindOption) statement.Load {
	l := statement.Load{Condition: condition, Depth: r.pm.depth}
	for _, opt := range opts {
		opt(&l)
	}
	return l
}

func (r *Repository[T]) load(ctx context.Context, l statement.Load, params map[string]any) ([]*T, error) {
	st, err := r.pm.builder.PrepareLoad(r.entity, l)
	if err != nil {
		return nil, err
	}
	res, err := r.pm.run(ctx, st.Cypher(), params)
	if err != nil {
		return nil, err
	}
	return r.read(res.Records, mapper.Depth(l.Depth))
}

func (r *Repository[T]) read(records []*neo4j.Record, opts ...mapper.PassOption) ([]*T, error) {
	values, err := r.pm.reader.ReadAll(r.entity, records, opts...)
	if err != nil {
		return nil, err
	}
	out := make([]*T, len(values))
	for i, v := range values {
		out[i] = v.Interface().(*T)
	}
	return out, nil
}

func (r *Repository[T]) idParam(id any) (any, error) {
	if id == nil {
		return nil, errors.New("id must not be nil")
	}
	return r.pm.mapping.Conversions().WriteValue(reflect.ValueOf(id), r.entity.IDDescription().Field().Converter)
}

// property resolves a Go field or graph property name and converts value for it.
func (r *Repository[T]) property(name string, value any) (cypher.Condition, map[string]any, error) {
	p, ok := r.entity.PropertyByField(name)
	if !ok {
		p, ok = r.entity.Property(name)
	}
	if !ok || p.IsComposite() {
		return nil, nil, fmt.Errorf("%w: %s has no property %q", ErrUnknownProperty, r.entity.Name(), name)
	}
	graph, err := r.pm.mapping.Conversions().WriteValue(reflect.ValueOf(value), p.Converter)
	if err != nil {
		return nil, nil, fmt.Errorf("%s.%s: %w", r.entity.Name(), p.FieldName, err)
	}
	var expr cypher.Expression = cypher.AnyNode(statement.NameOfRootNode).Property(p.Name)
	if p.IsID && r.entity.IDDescription().IsInternal() {
		expr = statement.IDExpression(r.entity)
	}
	return cypher.Eq(expr, cypher.Param("value")), map[string]any{"value": graph}, nil
}

// Save creates a new node or updates an existing one, together with everything
// reachable through its relationship fields, in one write transaction.
//
// Generated ids are assigned before the write and internal ids are copied back
// from the database. Relationship fields are authoritative: the stored
// relationships of a non-nil field are replaced by the ones it holds. A nil field
// leaves them as they are.
func (r *Repository[T]) Save(ctx context.Context, entity *T) error {
	if entity == nil {
		return errors.New("entity must not be nil")
	}
	return r.pm.InTransaction(ctx, false, func(ctx context.Context) error {
		_, err := r.pm.save(ctx, newSaveState(), r.entity, reflect.ValueOf(entity).Elem())
		return err
	})
}

// SaveAll saves entities in one transaction. Entities with assigned or generated
// ids, no dynamic labels and no relationships are written with a single UNWIND
// statement; all others are saved one by one.
func (r *Repository[T]) SaveAll(ctx context.Context, entities []*T) error {
	if len(entities) == 0 {
		return nil
	}
	batch, err := r.pm.builder.PrepareSaveAllOf(r.entity)
	if err != nil || len(r.entity.Relationships()) > 0 {
		return r.pm.InTransaction(ctx, false, func(ctx context.Context) error {
			s := newSaveState()
			for _, entity := range entities {
				if entity == nil {
					continue
				}
				if _, err := r.pm.save(ctx, s, r.entity, reflect.ValueOf(entity).Elem()); err != nil {
					return err
				}
			}
			return nil
		})
	}

	rows := make([]any, 0, len(entities))
	for _, entity := range entities {
		if entity == nil {
			continue
		}
		v := reflect.ValueOf(entity).Elem()
		if _, err := r.pm.writer.AssignID(r.entity, v); err != nil {
			return err
		}
		id, err := r.pm.writer.ID(r.entity, v)
		if err != nil {
			return err
		}
		props, err := r.pm.writer.Properties(r.entity, v)
		if err != nil {
			return err
		}
		rows = append(rows, map[string]any{statement.NameOfIDParam: id, statement.NameOfPropertiesParam: props})
	}
	_, err = r.pm.run(ctx, batch.Cypher(), map[string]any{statement.NameOfEntitiesParam: rows})
	return err
}

// FindByID retrieves a single entity and its relationships by id.
//
// Returns:
//
//	A pointer to the found entity, ErrNotFound if no record is found, or another
//	error if the query or mapping fails.
func (r *Repository[T]) FindByID(ctx context.Context, id any) (*T, error) {
	p, err := r.idParam(id)
	if err != nil {
		return nil, err
	}
	items, err := r.load(ctx, r.newLoad(statement.IDCondition(r.entity), nil), map[string]any{statement.NameOfIDParam: p})
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrNotFound
	}
	return items[0], nil
}

// FindAllByID retrieves the entities with any of the ids. Missing ids are skipped.
func (r *Repository[T]) FindAllByID(ctx context.Context, ids ...any) ([]*T, error) {
	params := make([]any, len(ids))
	for i, id := range ids {
		p, err := r.idParam(id)
		if err != nil {
			return nil, err
		}
		params[i] = p
	}
	return r.load(ctx, r.newLoad(statement.IDsCondition(r.entity), nil), map[string]any{statement.NameOfIDsParam: params})
}

// ExistsByID reports whether a node with the id exists.
func (r *Repository[T]) ExistsByID(ctx context.Context, id any) (bool, error) {
	p, err := r.idParam(id)
	if err != nil {
		return false, err
	}
	res, err := r.pm.run(ctx, r.pm.builder.PrepareExists(r.entity, statement.IDCondition(r.entity)).Cypher(),
		map[string]any{statement.NameOfIDParam: p})
	if err != nil {
		return false, err
	}
	return singleBool(res)
}

// FindAll retrieves every node of the entity's primary label.
func (r *Repository[T]) FindAll(ctx context.Context, opts ...FindOption) ([]*T, error) {
	return r.load(ctx, r.newLoad(cypher.NoCondition(), opts), nil)
}

// FindPage retrieves one page of entities together with the total count. Both
// statements run in one read-only transaction.
func (r *Repository[T]) FindPage(ctx context.Context, page domain.Pageable, opts ...FindOption) (*domain.Page[*T], error) {
	var (
		content []*T
		total   int64
	)
	err := r.pm.InTransaction(ctx, true, func(ctx context.Context) (err error) {
		if content, err = r.FindAll(ctx, append(opts, WithPage(page))...); err != nil {
			return err
		}
		total, err = r.Count(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &domain.Page[*T]{Content: content, Pageable: page, Total: total}, nil
}

// Stream reads all entities lazily, one record at a time. Breaking out of the loop
// releases the underlying transaction.
func (r *Repository[T]) Stream(ctx context.Context, opts ...FindOption) iter.Seq2[*T, error] {
	l := r.newLoad(cypher.NoCondition(), opts)
	st, err := r.pm.builder.PrepareLoad(r.entity, l)
	if err != nil {
		return func(yield func(*T, error) bool) { yield(nil, err) }
	}
	return streamEntities[T](ctx, r.pm, r.entity, st.Cypher(), nil, mapper.Depth(l.Depth))
}

// FindByProperty retrieves the entities whose property equals value. The property
// may be named by its Go field or its graph property.
func (r *Repository[T]) FindByProperty(ctx context.Context, property string, value any) ([]*T, error) {
	condition, params, err := r.property(property, value)
	if err != nil {
		return nil, err
	}
	return r.load(ctx, r.newLoad(condition, nil), params)
}

// Find runs a custom query built with gocypher and maps its rows. The root of each
// row is the column n, or else the first node carrying the entity's primary label;
// relationships and paths returned next to it are wired into the result.
func (r *Repository[T]) Find(ctx context.Context, qb *gocypher.QueryBuilder) ([]*T, error) {
	query, params, err := qb.Build()
	if err != nil {
		return nil, fmt.Errorf("could not build query: %w", err)
	}
	res, err := r.pm.run(ctx, query, params)
	if err != nil {
		return nil, err
	}
	return r.read(res.Records)
}

// FindOne is Find for queries that must match a single entity.
//
// Returns:
//
//	ErrNotFound when nothing matches and ErrIncorrectResultSize when more than one
//	entity does.
func (r *Repository[T]) FindOne(ctx context.Context, qb *gocypher.QueryBuilder) (*T, error) {
	items, err := r.Find(ctx, qb)
	if err != nil {
		return nil, err
	}
	return single(items)
}

func single[T any](items []*T) (*T, error) {
	switch len(items) {
	case 0:
		return nil, ErrNotFound
	case 1:
		return items[0], nil
	}
	return nil, fmt.Errorf("%w: expected 1 result but found %d", ErrIncorrectResultSize, len(items))
}

// Count returns the number of nodes of the entity's primary label.
func (r *Repository[T]) Count(ctx context.Context) (int64, error) {
	res, err := r.pm.run(ctx, r.pm.builder.PrepareCount(r.entity, cypher.NoCondition()).Cypher(), nil)
	if err != nil {
		return 0, err
	}
	return singleCount(res)
}

// CountByProperty returns the number of nodes whose property equals value.
func (r *Repository[T]) CountByProperty(ctx context.Context, property string, value any) (int64, error) {
	condition, params, err := r.property(property, value)
	if err != nil {
		return 0, err
	}
	res, err := r.pm.run(ctx, r.pm.builder.PrepareCount(r.entity, condition).Cypher(), params)
	if err != nil {
		return 0, err
	}
	return singleCount(res)
}

// Delete removes a node by id. It uses DETACH DELETE, so its relationships are
// removed too. Deleting a missing id is not an error.
func (r *Repository[T]) Delete(ctx context.Context, id any) error {
	p, err := r.idParam(id)
	if err != nil {
		return err
	}
	_, err = r.pm.run(ctx, r.pm.builder.PrepareDeleteOf(r.entity, statement.IDCondition(r.entity)).Cypher(),
		map[string]any{statement.NameOfIDParam: p})
	return err
}

// DeleteEntity removes the node of entity.
func (r *Repository[T]) DeleteEntity(ctx context.Context, entity *T) error {
	if entity == nil {
		return errors.New("entity must not be nil")
	}
	id, err := r.pm.writer.ID(r.entity, reflect.ValueOf(entity))
	if err != nil {
		return err
	}
	_, err = r.pm.run(ctx, r.pm.builder.PrepareDeleteOf(r.entity, statement.IDCondition(r.entity)).Cypher(),
		map[string]any{statement.NameOfIDParam: id})
	return err
}

// DeleteAll removes every node of the entity's primary label and returns how many were deleted.
func (r *Repository[T]) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.pm.run(ctx, r.pm.builder.PrepareDeleteCountOf(r.entity, cypher.NoCondition()).Cypher(), nil)
	if err != nil {
		return 0, err
	}
	return singleCount(res)
}

func firstValue(res *neo4j.EagerResult) (any, error) {
	if len(res.Records) == 0 || len(res.Records[0].Values) == 0 {
		return nil, fmt.Errorf("%w: expected a single value", ErrIncorrectResultSize)
	}
	return res.Records[0].Values[0], nil
}

func singleCount(res *neo4j.EagerResult) (int64, error) {
	v, err := firstValue(res)
	if err != nil {
		return 0, err
	}
	n, ok := v.(int64)
	if !ok {
		return 0, fmt.Errorf("expected a count, got %T", v)
	}
	return n, nil
}

func singleBool(res *neo4j.EagerResult) (bool, error) {
	v, err := firstValue(res)
	if err != nil {
		return false, err
	}
	switch b := v.(type) {
	case bool:
		return b, nil
	case int64:
		return b > 0, nil
	}
	return false, fmt.Errorf("expected a boolean, got %T", v)
}
