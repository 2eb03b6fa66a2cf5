package neopersist

import "errors"

var (
	// ErrNotFound is a sentinel error returned by Find operations when no record
	// matching the criteria is found in the database.
	ErrNotFound = errors.New("record not found")

	// ErrNotEntity is returned when a repository or relation is requested for a type
	// that is not a node entity.
	ErrNotEntity = errors.New("not a node entity")

	// ErrTransactionClosed is returned when a statement runs on a transaction that was
	// already committed, rolled back or closed.
	ErrTransactionClosed = errors.New("transaction is closed")

	// ErrIncorrectResultSize is returned by single-result reads that match more than one root.
	ErrIncorrectResultSize = errors.New("incorrect result size")
)

var (
	// ErrReadOnlyTransaction is returned when a write joins a read-only transaction.
	ErrReadOnlyTransaction = errors.New("cannot write in a read-only transaction")

	// ErrUnknownProperty is returned when a property lookup names no mapped property.
	ErrUnknownProperty = errors.New("unknown property")
)
