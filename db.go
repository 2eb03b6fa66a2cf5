package neopersist

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	neo4jconfig "github.com/neo4j/neo4j-go-driver/v5/neo4j/config"

	"github.com/saulfrancisco-ruizacevedo/neopersist-ogm/config"
)

//go:generate mockgen -destination=internal/mocks/mocks.go -package=mocks -typed github.com/saulfrancisco-ruizacevedo/neopersist-ogm DBRunner,TransactionManager,Transaction,RecordStream,ManagedTransactor

// DBRunner defines the interface for a generic query executor.
// It abstracts the execution of a Cypher query, allowing for different implementations
// or mocking in tests.
type DBRunner interface {
	// Run executes a given Cypher query with parameters and returns a fully-buffered result.
	Run(ctx context.Context, query string, params map[string]any) (*neo4j.EagerResult, error)
}

// RecordStream is a cursor over the records of one statement. neo4j.ResultWithContext
// satisfies it.
type RecordStream interface {
	Next(ctx context.Context) bool
	Record() *neo4j.Record
	Err() error
}

// TxOptions configures a transaction.
type TxOptions struct {
	ReadOnly bool
}

// Transaction is an explicit transaction. It is committed or rolled back once and
// closed by whoever began it.
type Transaction interface {
	DBRunner
	// Stream runs a statement and returns its records lazily.
	Stream(ctx context.Context, query string, params map[string]any) (RecordStream, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
	// Close releases the transaction and its session. A transaction that was neither
	// committed nor rolled back is rolled back.
	Close(ctx context.Context) error
}

// TransactionManager begins explicit transactions.
type TransactionManager interface {
	BeginTransaction(ctx context.Context, opts TxOptions) (Transaction, error)
}

// ManagedTransactor runs a unit of work in a driver-managed transaction, retrying
// it on transient failures. The runner handed to fn is only valid until fn returns.
type ManagedTransactor interface {
	ExecuteRead(ctx context.Context, fn func(DBRunner) error) error
	ExecuteWrite(ctx context.Context, fn func(DBRunner) error) error
}

//---

// Neo4jExecutor is a concrete implementation of the DBRunner, TransactionManager and
// ManagedTransactor interfaces that uses the official Neo4j Go driver. It manages the driver instance and
// the target database name.
type Neo4jExecutor struct {
	Driver neo4j.DriverWithContext
	DBName string
}

// NewNeo4jExecutor creates and initializes a new Neo4jExecutor.
// It establishes a connection driver with the provided credentials.
//
// Parameters:
//   - uri: The connection URI for the Neo4j instance (e.g., "neo4j://localhost:7687").
//   - username: The username for authentication.
//   - password: The password for authentication.
//   - dbName: The name of the database to connect to (e.g., "neo4j").
//
// Returns:
//
//	A pointer to the newly created Neo4jExecutor or an error if the driver creation fails.
func NewNeo4jExecutor(uri, username, password, dbName string) (*Neo4jExecutor, error) {
	cfg := config.Default()
	cfg.Neo4j.URI, cfg.Neo4j.Username, cfg.Neo4j.Password, cfg.Neo4j.Database = uri, username, password, dbName
	return NewNeo4jExecutorFromConfig(cfg)
}

// NewNeo4jExecutorFromConfig creates an executor from a loaded configuration, applying
// its pool and timeout settings to the driver.
func NewNeo4jExecutorFromConfig(cfg config.Config) (*Neo4jExecutor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := cfg.Neo4j
	driver, err := neo4j.NewDriverWithContext(c.URI, neo4j.BasicAuth(c.Username, c.Password, ""),
		func(dc *neo4jconfig.Config) {
			if c.MaxConnectionPoolSize > 0 {
				dc.MaxConnectionPoolSize = c.MaxConnectionPoolSize
			}
			if c.ConnectionAcquisitionTimeout > 0 {
				dc.ConnectionAcquisitionTimeout = c.ConnectionAcquisitionTimeout
			}
			if c.ConnectTimeout > 0 {
				dc.SocketConnectTimeout = c.ConnectTimeout
			}
		})
	if err != nil {
		return nil, fmt.Errorf("could not create Neo4j driver: %w", err)
	}
	return &Neo4jExecutor{Driver: driver, DBName: c.Database}, nil
}

// Verify checks the connectivity to the Neo4j database by running a simple query.
//
// Returns:
//
//	An error if the connection cannot be established or the query fails.
func (e *Neo4jExecutor) Verify(ctx context.Context) error {
	return e.Driver.VerifyConnectivity(ctx)
}

// Close closes the driver and its connection pool.
func (e *Neo4jExecutor) Close(ctx context.Context) error {
	return e.Driver.Close(ctx)
}

// Run executes a Cypher query using the modern ExecuteQuery function, which handles
// session and transaction management automatically for robust and simple execution.
// This function is suitable for both read and write operations.
//
// Parameters:
//   - ctx: The context for the query execution.
//   - query: The Cypher query string to execute.
//   - params: A map of parameters to be used in the query.
//
// Returns:
//
//	An EagerResult containing all buffered records from the query, or an error if
//	the execution fails.
func (e *Neo4jExecutor) Run(ctx context.Context, query string, params map[string]any) (*neo4j.EagerResult, error) {
	result, err := neo4j.ExecuteQuery(
		ctx,
		e.Driver,
		query,
		params,
		neo4j.EagerResultTransformer, // Buffers all results in memory before returning.
		neo4j.ExecuteQueryWithDatabase(e.DBName),
	)

	if err != nil {
		return nil, fmt.Errorf("error executing neo4j query: %w", err)
	}

	return result, nil
}

func (e *Neo4jExecutor) session(ctx context.Context, readOnly bool) neo4j.SessionWithContext {
	mode := neo4j.AccessModeWrite
	if readOnly {
		mode = neo4j.AccessModeRead
	}
	return e.Driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: e.DBName, AccessMode: mode})
}

// BeginTransaction opens a session and an explicit transaction in it. Closing the
// transaction closes the session.
func (e *Neo4jExecutor) BeginTransaction(ctx context.Context, opts TxOptions) (Transaction, error) {
	session := e.session(ctx, opts.ReadOnly)
	tx, err := session.BeginTransaction(ctx)
	if err != nil {
		_ = session.Close(ctx)
		return nil, fmt.Errorf("could not begin transaction: %w", err)
	}
	return &neo4jTransaction{session: session, tx: tx}, nil
}

// ExecuteRead runs fn in a managed read transaction; the driver retries it on
// transient failures, so fn must be idempotent. The session is always closed.
func (e *Neo4jExecutor) ExecuteRead(ctx context.Context, fn func(DBRunner) error) error {
	session := e.session(ctx, true)
	defer session.Close(ctx)
	_, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return nil, fn(managedRunner{tx})
	})
	return err
}

// ExecuteWrite runs fn in a managed write transaction. See ExecuteRead.
func (e *Neo4jExecutor) ExecuteWrite(ctx context.Context, fn func(DBRunner) error) error {
	session := e.session(ctx, false)
	defer session.Close(ctx)
	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return nil, fn(managedRunner{tx})
	})
	return err
}

// eager buffers a result the way neo4j.ExecuteQuery does.
func eager(ctx context.Context, result neo4j.ResultWithContext) (*neo4j.EagerResult, error) {
	keys, err := result.Keys()
	if err != nil {
		return nil, err
	}
	records, err := result.Collect(ctx)
	if err != nil {
		return nil, err
	}
	summary, err := result.Consume(ctx)
	if err != nil {
		return nil, err
	}
	return &neo4j.EagerResult{Keys: keys, Records: records, Summary: summary}, nil
}

type managedRunner struct {
	tx neo4j.ManagedTransaction
}

func (m managedRunner) Run(ctx context.Context, query string, params map[string]any) (*neo4j.EagerResult, error) {
	result, err := m.tx.Run(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("error executing neo4j query: %w", err)
	}
	res, err := eager(ctx, result)
	if err != nil {
		return nil, fmt.Errorf("error executing neo4j query: %w", err)
	}
	return res, nil
}

type neo4jTransaction struct {
	session neo4j.SessionWithContext
	tx      neo4j.ExplicitTransaction
	done    bool
	closed  bool
}

func (t *neo4jTransaction) Run(ctx context.Context, query string, params map[string]any) (*neo4j.EagerResult, error) {
	if t.done {
		return nil, ErrTransactionClosed
	}
	result, err := t.tx.Run(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("error executing neo4j query: %w", err)
	}
	res, err := eager(ctx, result)
	if err != nil {
		return nil, fmt.Errorf("error executing neo4j query: %w", err)
	}
	return res, nil
}

func (t *neo4jTransaction) Stream(ctx context.Context, query string, params map[string]any) (RecordStream, error) {
	if t.done {
		return nil, ErrTransactionClosed
	}
	result, err := t.tx.Run(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("error executing neo4j query: %w", err)
	}
	return result, nil
}

func (t *neo4jTransaction) Commit(ctx context.Context) error {
	if t.done {
		return ErrTransactionClosed
	}
	t.done = true
	return t.tx.Commit(ctx)
}

func (t *neo4jTransaction) Rollback(ctx context.Context) error {
	if t.done {
		return ErrTransactionClosed
	}
	t.done = true
	return t.tx.Rollback(ctx)
}

func (t *neo4jTransaction) Close(ctx context.Context) error {
	if t.closed {
		return nil
	}
	t.closed, t.done = true, true
	err := t.tx.Close(ctx)
	if serr := t.session.Close(ctx); err == nil {
		err = serr
	}
	return err
}
