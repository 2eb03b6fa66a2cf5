package neopersist

import (
	"context"
	"fmt"
	"reflect"

	"github.com/saulfrancisco-ruizacevedo/gocypher"
	"go.opentelemetry.io/otel/trace"

	"github.com/saulfrancisco-ruizacevedo/neopersist-ogm/config"
	"github.com/saulfrancisco-ruizacevedo/neopersist-ogm/logging"
	"github.com/saulfrancisco-ruizacevedo/neopersist-ogm/mapper"
	"github.com/saulfrancisco-ruizacevedo/neopersist-ogm/mapping"
	"github.com/saulfrancisco-ruizacevedo/neopersist-ogm/statement"
)

// PersistenceManager is the central orchestrator for the persistence layer.
// It owns the mapping metadata and the database connection and provides access to
// repositories, derived queries and cross-entity operations like creating relationships.
// It is safe for concurrent use.
type PersistenceManager struct {
	db      DBRunner
	txm     TransactionManager
	managed ManagedTransactor
	mapping *mapping.MappingContext
	builder *statement.Builder
	reader  *mapper.Reader
	writer  *mapper.Writer
	log     *logging.Logger
	tracer  trace.Tracer
	dbName  string
	depth   int
}

// Option configures a PersistenceManager.
type Option func(*PersistenceManager)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *logging.Logger) Option {
	return func(pm *PersistenceManager) { pm.log = l }
}

// WithMappingContext shares mapping metadata, e.g. one with custom conversions or id generators.
func WithMappingContext(c *mapping.MappingContext) Option {
	return func(pm *PersistenceManager) { pm.mapping = c }
}

// WithTransactionManager sets where explicit transactions begin. A runner that is
// also a TransactionManager, like Neo4jExecutor, is used by default.
func WithTransactionManager(txm TransactionManager) Option {
	return func(pm *PersistenceManager) { pm.txm = txm }
}

// WithManagedTransactor sets where retryable managed transactions run. A runner
// that is also a ManagedTransactor, like Neo4jExecutor, is used by default.
func WithManagedTransactor(m ManagedTransactor) Option {
	return func(pm *PersistenceManager) { pm.managed = m }
}

// WithTracer traces every statement as a span.
func WithTracer(t trace.Tracer) Option {
	return func(pm *PersistenceManager) { pm.tracer = t }
}

// WithDepth sets how many relationship hops loads follow by default.
func WithDepth(depth int) Option {
	return func(pm *PersistenceManager) { pm.depth = depth }
}

// WithConfig applies the log level and mapping settings of cfg.
func WithConfig(cfg config.Config) Option {
	return func(pm *PersistenceManager) {
		pm.log = logging.New(cfg.LogLevel)
		pm.depth = cfg.Mapping.Depth
		if pm.dbName == "" {
			pm.dbName = cfg.Neo4j.Database
		}
	}
}

// NewPersistenceManager creates a new instance of the PersistenceManager on top of runner.
func NewPersistenceManager(runner DBRunner, opts ...Option) *PersistenceManager {
	pm := &PersistenceManager{
		db:      runner,
		builder: statement.NewBuilder(),
		log:     logging.Nop(),
		depth:   statement.DefaultDepth,
	}
	if txm, ok := runner.(TransactionManager); ok {
		pm.txm = txm
	}
	if m, ok := runner.(ManagedTransactor); ok {
		pm.managed = m
	}
	if e, ok := runner.(*Neo4jExecutor); ok {
		pm.dbName = e.DBName
	}
	for _, opt := range opts {
		opt(pm)
	}
	if pm.mapping == nil {
		pm.mapping = mapping.NewMappingContext(mapping.WithLogger(pm.log))
	}
	pm.reader = mapper.NewReader(pm.mapping, mapper.WithLogger(pm.log))
	pm.writer = mapper.NewWriter(pm.mapping)
	pm.log = pm.log.Named("session")
	return pm
}

// MappingContext is the mapping metadata used by the manager.
func (pm *PersistenceManager) MappingContext() *mapping.MappingContext { return pm.mapping }

// RepositoryFor is a generic function that creates and returns a repository
// for a specific struct type T, managed by the given PersistenceManager.
func RepositoryFor[T any](pm *PersistenceManager) (*Repository[T], error) {
	return NewRepository[T](pm)
}

// CreateRelation creates a directed relationship between two existing entities in the database.
// Both entities are matched by primary label and id property, so they must use
// assigned or generated ids.
func (pm *PersistenceManager) CreateRelation(ctx context.Context, fromEntity any, toEntity any, relType string, relProps map[string]any) error {
	from, fromID, err := pm.entityAndID(fromEntity)
	if err != nil {
		return err
	}
	to, toID, err := pm.entityAndID(toEntity)
	if err != nil {
		return err
	}
	if relProps == nil {
		relProps = map[string]any{}
	}

	qb := gocypher.NewQueryBuilder().
		Match(gocypher.N("a", from.PrimaryLabel()).WithProperties(map[string]any{from.IDDescription().Property: fromID})).
		Match(gocypher.N("b", to.PrimaryLabel()).WithProperties(map[string]any{to.IDDescription().Property: toID})).
		Create(
			gocypher.N("a", ""), // Reference the 'a' alias without its label
			gocypher.R("r", relType).To().WithProperties(relProps),
			gocypher.N("b", ""),
		)

	query, params, err := qb.Build()
	if err != nil {
		return fmt.Errorf("could not build query: %w", err)
	}
	_, err = pm.run(ctx, query, params)
	return err
}

// entityAndID resolves the entity of a non-nil pointer and its id value.
func (pm *PersistenceManager) entityAndID(entity any) (*mapping.PersistentEntity, any, error) {
	val := reflect.ValueOf(entity)
	if val.Kind() != reflect.Pointer || val.IsNil() {
		return nil, nil, fmt.Errorf("entity must be a non-nil pointer, got %T", entity)
	}
	e, err := pm.mapping.RequiredNodeDescription(val.Type())
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrNotEntity, err)
	}
	if e.IDDescription().IsInternal() {
		return nil, nil, fmt.Errorf("%s uses an internal id; save it through a relationship field instead", e.Name())
	}
	id, err := pm.writer.ID(e, val)
	if err != nil {
		return nil, nil, err
	}
	return e, id, nil
}

// FindGraph executes a graph query defined by a gocypher.QueryBuilder and maps the result
// into a generic graph structure composed of nodes and edges.
//
// It does not need to know about mapped types. Every node, relationship and path
// in any column, also inside lists, is added once to the result, keyed by element id.
// The caller decides what the graph contains through the RETURN clause, e.g.
// `RETURN u, r, p`.
//
// It returns ErrNotFound when the query returns zero records.
func (pm *PersistenceManager) FindGraph(ctx context.Context, qb *gocypher.QueryBuilder) (*GraphResult, error) {
	query, params, err := qb.Build()
	if err != nil {
		return nil, fmt.Errorf("could not build query: %w", err)
	}

	eagerResult, err := pm.run(ctx, query, params)
	if err != nil {
		return nil, err
	}
	if len(eagerResult.Records) == 0 {
		return nil, ErrNotFound
	}

	g := newGraphCollector()
	for _, record := range eagerResult.Records {
		for _, value := range record.Values {
			g.add(value)
		}
	}
	return g.result, nil
}
