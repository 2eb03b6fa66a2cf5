package neopersist

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap/zapcore"
)

type txKey struct{}

// txState is the transaction a context carries. Managed transactions have a runner
// but no Transaction; the driver owns their outcome.
type txState struct {
	runner   DBRunner
	tx       Transaction
	readOnly bool
}

func transactionFrom(ctx context.Context) (*txState, bool) {
	state, ok := ctx.Value(txKey{}).(*txState)
	return state, ok
}

// InTransaction runs fn in one transaction. Every repository call made with the
// context handed to fn joins it. A nested call joins the surrounding transaction
// instead of starting its own; a write may not join a read-only one.
//
// The transaction commits when fn returns nil and rolls back when fn fails or
// panics. Without a TransactionManager fn runs with auto-commit statements.
func (pm *PersistenceManager) InTransaction(ctx context.Context, readOnly bool, fn func(ctx context.Context) error) (err error) {
	if state, ok := transactionFrom(ctx); ok {
		if state.readOnly && !readOnly {
			return ErrReadOnlyTransaction
		}
		return fn(ctx)
	}
	if pm.txm == nil {
		return fn(ctx)
	}

	tx, err := pm.txm.BeginTransaction(ctx, TxOptions{ReadOnly: readOnly})
	if err != nil {
		return err
	}
	pm.log.Debug("transaction started", "readOnly", readOnly)

	finished := false
	defer func() {
		cleanup := context.WithoutCancel(ctx)
		if r := recover(); r != nil {
			pm.rollback(cleanup, tx)
			pm.close(cleanup, tx)
			panic(r)
		}
		if !finished {
			pm.rollback(cleanup, tx)
		}
		pm.close(cleanup, tx)
	}()

	if err = fn(context.WithValue(ctx, txKey{}, &txState{runner: tx, tx: tx, readOnly: readOnly})); err != nil {
		return err
	}
	// A failed commit is not rolled back; the server already discarded the transaction.
	finished = true
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}
	pm.log.Debug("transaction committed")
	return nil
}

// InManagedTransaction runs fn in a driver-managed transaction. The driver retries
// fn on transient failures such as deadlocks or a leader switch, so fn must be safe
// to run more than once. Repository calls made with the context handed to fn join
// the transaction; streams inside it read eagerly. Nested calls join like
// InTransaction does. Without a ManagedTransactor it behaves like InTransaction.
func (pm *PersistenceManager) InManagedTransaction(ctx context.Context, readOnly bool, fn func(ctx context.Context) error) error {
	if state, ok := transactionFrom(ctx); ok {
		if state.readOnly && !readOnly {
			return ErrReadOnlyTransaction
		}
		return fn(ctx)
	}
	if pm.managed == nil {
		return pm.InTransaction(ctx, readOnly, fn)
	}

	attempt := 0
	work := func(r DBRunner) error {
		attempt++
		pm.log.Debug("managed transaction attempt", "readOnly", readOnly, "attempt", attempt)
		return fn(context.WithValue(ctx, txKey{}, &txState{runner: r, readOnly: readOnly}))
	}
	if readOnly {
		return pm.managed.ExecuteRead(ctx, work)
	}
	return pm.managed.ExecuteWrite(ctx, work)
}

func (pm *PersistenceManager) rollback(ctx context.Context, tx Transaction) {
	if err := tx.Rollback(ctx); err != nil {
		pm.log.Warn("could not roll back transaction", "error", err)
		return
	}
	pm.log.Debug("transaction rolled back")
}

func (pm *PersistenceManager) close(ctx context.Context, tx Transaction) {
	if err := tx.Close(ctx); err != nil {
		pm.log.Warn("could not close transaction", "error", err)
	}
}

// streamTransaction returns the transaction a stream reads in: the one carried by
// ctx, or a new read-only one owned by the stream. It returns nil when there is no
// TransactionManager or ctx carries a managed transaction.
func (pm *PersistenceManager) streamTransaction(ctx context.Context) (tx Transaction, owned bool, err error) {
	if state, ok := transactionFrom(ctx); ok {
		return state.tx, false, nil
	}
	if pm.txm == nil {
		return nil, false, nil
	}
	tx, err = pm.txm.BeginTransaction(ctx, TxOptions{ReadOnly: true})
	if err != nil {
		return nil, false, err
	}
	pm.log.Debug("stream transaction started")
	return tx, true, nil
}

// endStream commits a stream transaction that was read to the end and rolls back
// one that was abandoned or failed.
func (pm *PersistenceManager) endStream(ctx context.Context, tx Transaction, complete bool) error {
	cleanup := context.WithoutCancel(ctx)
	defer pm.close(cleanup, tx)
	if !complete {
		pm.rollback(cleanup, tx)
		return nil
	}
	if err := tx.Commit(cleanup); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}
	return nil
}

// runner is where statements of ctx run: its transaction or auto-commit.
func (pm *PersistenceManager) runner(ctx context.Context) DBRunner {
	var r DBRunner = pm.db
	if state, ok := transactionFrom(ctx); ok {
		r = state.runner
	}
	if pm.tracer != nil {
		r = NewTracedRunner(r, pm.tracer, pm.dbName)
	}
	return r
}

func (pm *PersistenceManager) logStatement(cypher string, params map[string]any) {
	if pm.log.Enabled(zapcore.DebugLevel) {
		pm.log.Debug("executing statement", "cypher", cypher, "params", slices.Sorted(maps.Keys(params)))
	}
}

func (pm *PersistenceManager) run(ctx context.Context, cypher string, params map[string]any) (*neo4j.EagerResult, error) {
	pm.logStatement(cypher, params)
	return pm.runner(ctx).Run(ctx, cypher, params)
}
