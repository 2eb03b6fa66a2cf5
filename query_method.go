package neopersist

import (
	"context"
	"fmt"
	"iter"
	"reflect"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/saulfrancisco-ruizacevedo/neopersist-ogm/domain"
	"github.com/saulfrancisco-ruizacevedo/neopersist-ogm/mapper"
	"github.com/saulfrancisco-ruizacevedo/neopersist-ogm/mapping"
	"github.com/saulfrancisco-ruizacevedo/neopersist-ogm/query"
)

// QueryMethod declares a repository query. Without Query the statement is derived
// from Name, e.g. "findByTitleAndYearGreaterThan". With Query the hand-written
// Cypher is used and Count, Exists or Delete say how its result is read.
type QueryMethod struct {
	Name    string
	Params  query.Parameters
	Returns query.ReturnKind

	Query string
	// CountQuery counts the total of a paged hand-written query.
	CountQuery string
	Count      bool
	Exists     bool
	Delete     bool
}

// DerivedQuery is a validated QueryMethod bound to the entity T.
type DerivedQuery[T any] struct {
	pm      *PersistenceManager
	entity  *mapping.PersistentEntity
	method  QueryMethod
	creator *query.Creator
	str     query.StringQuery
	count   query.StringQuery
}

// NewDerivedQuery validates method against T. Every problem with the method name,
// its parameters or its hand-written Cypher is reported here, before the first call.
func NewDerivedQuery[T any](pm *PersistenceManager, method QueryMethod) (*DerivedQuery[T], error) {
	e, err := pm.mapping.RequiredNodeDescription(reflect.TypeFor[T]())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotEntity, err)
	}
	q := &DerivedQuery[T]{pm: pm, entity: e, method: method}

	if method.Query == "" {
		q.creator, err = query.NewCreator(pm.mapping, e, method.Name, method.Params, method.Returns,
			query.WithDepth(pm.depth), query.WithBuilder(pm.builder))
		if err != nil {
			return nil, err
		}
		return q, nil
	}

	if err := validateStringMethod(method); err != nil {
		return nil, err
	}
	q.str = query.ParseStringQuery(method.Query)
	if err := q.str.Validate(method.Name, method.Params); err != nil {
		return nil, err
	}
	if method.CountQuery != "" {
		q.count = query.ParseStringQuery(method.CountQuery)
		if err := q.count.Validate(method.Name, method.Params); err != nil {
			return nil, err
		}
	}
	return q, nil
}

func validateStringMethod(m QueryMethod) error {
	flags := 0
	for _, set := range []bool{m.Count, m.Exists, m.Delete} {
		if set {
			flags++
		}
	}
	switch {
	case flags > 1:
		return fmt.Errorf("%w for '%s': count, exists and delete are mutually exclusive", query.ErrDerivation, m.Name)
	case m.Count && m.Returns != query.ReturnsCount:
		return fmt.Errorf("%w for '%s': a count query must return a count, not %s", query.ErrDerivation, m.Name, m.Returns)
	case m.Exists && m.Returns != query.ReturnsBool:
		return fmt.Errorf("%w for '%s': an exists query must return a bool, not %s", query.ErrDerivation, m.Name, m.Returns)
	case m.Delete && m.Returns != query.ReturnsCount && m.Returns != query.ReturnsNothing:
		return fmt.Errorf("%w for '%s': a delete query can only return a count or nothing, not %s", query.ErrDerivation, m.Name, m.Returns)
	case m.Returns == query.ReturnsPage && m.CountQuery == "":
		return fmt.Errorf("%w for '%s': a paged query needs a count query", query.ErrDerivation, m.Name)
	}
	return nil
}

// Method is the declaration this query was built from.
func (q *DerivedQuery[T]) Method() QueryMethod { return q.method }

func (q *DerivedQuery[T]) expect(kinds ...query.ReturnKind) error {
	for _, k := range kinds {
		if q.method.Returns == k {
			return nil
		}
	}
	return fmt.Errorf("%w: '%s' returns %s", query.ErrInvalidParameter, q.method.Name, q.method.Returns)
}

// statement renders the call.
func (q *DerivedQuery[T]) statement(args []any) (string, map[string]any, error) {
	if q.creator != nil {
		st, err := q.creator.Create(args)
		if err != nil {
			return "", nil, err
		}
		return st.Cypher, st.Params, nil
	}
	params, err := q.str.Bind(q.method.Params, args, q.pm.writer.Argument)
	if err != nil {
		return "", nil, err
	}
	return q.str.Cypher, params, nil
}

func (q *DerivedQuery[T]) run(ctx context.Context, args []any) (*neo4j.EagerResult, error) {
	cypher, params, err := q.statement(args)
	if err != nil {
		return nil, err
	}
	return q.pm.run(ctx, cypher, params)
}

// passOptions bounds wiring to the load depth of derived finds. Hand-written queries
// wire whatever they return.
func (q *DerivedQuery[T]) passOptions() []mapper.PassOption {
	if q.creator == nil {
		return nil
	}
	return []mapper.PassOption{mapper.Depth(q.pm.depth)}
}

func (q *DerivedQuery[T]) read(res *neo4j.EagerResult) ([]*T, error) {
	values, err := q.pm.reader.ReadAll(q.entity, res.Records, q.passOptions()...)
	if err != nil {
		return nil, err
	}
	out := make([]*T, len(values))
	for i, v := range values {
		out[i] = v.Interface().(*T)
	}
	return out, nil
}

// Find runs a query returning entities.
func (q *DerivedQuery[T]) Find(ctx context.Context, args ...any) ([]*T, error) {
	if err := q.expect(query.ReturnsEntities, query.ReturnsStream); err != nil {
		return nil, err
	}
	res, err := q.run(ctx, args)
	if err != nil {
		return nil, err
	}
	return q.read(res)
}

// FindOne runs a query returning at most one entity. It fails with ErrNotFound when
// nothing matches and with ErrIncorrectResultSize when several entities do.
func (q *DerivedQuery[T]) FindOne(ctx context.Context, args ...any) (*T, error) {
	if err := q.expect(query.ReturnsEntity); err != nil {
		return nil, err
	}
	res, err := q.run(ctx, args)
	if err != nil {
		return nil, err
	}
	items, err := q.read(res)
	if err != nil {
		return nil, err
	}
	return single(items)
}

// Count runs a count query.
func (q *DerivedQuery[T]) Count(ctx context.Context, args ...any) (int64, error) {
	if err := q.expect(query.ReturnsCount); err != nil {
		return 0, err
	}
	if q.isDelete() {
		return 0, fmt.Errorf("%w: '%s' deletes; call Delete", query.ErrInvalidParameter, q.method.Name)
	}
	res, err := q.run(ctx, args)
	if err != nil {
		return 0, err
	}
	return singleCount(res)
}

// Exists runs an exists query.
func (q *DerivedQuery[T]) Exists(ctx context.Context, args ...any) (bool, error) {
	if err := q.expect(query.ReturnsBool); err != nil {
		return false, err
	}
	res, err := q.run(ctx, args)
	if err != nil {
		return false, err
	}
	return singleBool(res)
}

func (q *DerivedQuery[T]) isDelete() bool {
	if q.creator != nil {
		return q.creator.Tree().Subject.Kind == query.DeleteSubject
	}
	return q.method.Delete
}

// Delete runs a delete query and returns how many nodes were deleted. Queries
// declared to return nothing report zero.
func (q *DerivedQuery[T]) Delete(ctx context.Context, args ...any) (int64, error) {
	if !q.isDelete() {
		return 0, fmt.Errorf("%w: '%s' is not a delete query", query.ErrInvalidParameter, q.method.Name)
	}
	res, err := q.run(ctx, args)
	if err != nil {
		return 0, err
	}
	if q.method.Returns == query.ReturnsNothing {
		return 0, nil
	}
	if len(res.Records) == 0 && res.Summary != nil {
		return int64(res.Summary.Counters().NodesDeleted()), nil
	}
	return singleCount(res)
}

// Page runs a paged query and its count query in one read-only transaction, so the
// total matches the content. The Pageable argument selects the page.
func (q *DerivedQuery[T]) Page(ctx context.Context, args ...any) (*domain.Page[*T], error) {
	if err := q.expect(query.ReturnsPage); err != nil {
		return nil, err
	}
	var page *domain.Page[*T]
	err := q.pm.InTransaction(ctx, true, func(ctx context.Context) (err error) {
		page, err = q.page(ctx, args)
		return err
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

func (q *DerivedQuery[T]) page(ctx context.Context, args []any) (*domain.Page[*T], error) {
	res, err := q.run(ctx, args)
	if err != nil {
		return nil, err
	}
	content, err := q.read(res)
	if err != nil {
		return nil, err
	}

	var countRes *neo4j.EagerResult
	if q.creator != nil {
		st, err := q.creator.CreateCount(args)
		if err != nil {
			return nil, err
		}
		countRes, err = q.pm.run(ctx, st.Cypher, st.Params)
		if err != nil {
			return nil, err
		}
	} else {
		params, err := q.count.Bind(q.method.Params, args, q.pm.writer.Argument)
		if err != nil {
			return nil, err
		}
		countRes, err = q.pm.run(ctx, q.count.Cypher, params)
		if err != nil {
			return nil, err
		}
	}
	total, err := singleCount(countRes)
	if err != nil {
		return nil, err
	}
	return &domain.Page[*T]{Content: content, Pageable: q.method.Params.Pageable(args), Total: total}, nil
}

// Stream runs a query returning entities lazily. See Repository.Stream.
func (q *DerivedQuery[T]) Stream(ctx context.Context, args ...any) iter.Seq2[*T, error] {
	if err := q.expect(query.ReturnsStream, query.ReturnsEntities); err != nil {
		return func(yield func(*T, error) bool) { yield(nil, err) }
	}
	cypher, params, err := q.statement(args)
	if err != nil {
		return func(yield func(*T, error) bool) { yield(nil, err) }
	}
	return streamEntities[T](ctx, q.pm, q.entity, cypher, params, q.passOptions()...)
}

// Project runs a projection query and maps each row onto P: a struct filled from the
// columns named by its fields, or a single-column value such as a string or int64.
func Project[P, T any](ctx context.Context, q *DerivedQuery[T], args ...any) ([]P, error) {
	if err := q.expect(query.ReturnsProjection); err != nil {
		return nil, err
	}
	res, err := q.run(ctx, args)
	if err != nil {
		return nil, err
	}
	values, err := q.pm.reader.Project(res.Records, reflect.TypeFor[P]())
	if err != nil {
		return nil, err
	}
	out := make([]P, len(values))
	for i, v := range values {
		out[i] = v.Interface().(P)
	}
	return out, nil
}
