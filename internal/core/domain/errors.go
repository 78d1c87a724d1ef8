package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnknownKind indicates an unrecognised decision or flag kind.
	ErrUnknownKind = errors.New("unknown kind")

	// ErrRemoteUnavailable indicates the aggregation service could not be
	// reached. Local state is unaffected; the per-decision sync status is
	// the user-visible surface for this condition.
	ErrRemoteUnavailable = errors.New("aggregation service unavailable")

	// ErrNoBundle indicates no ingested bundle exists for a document id.
	ErrNoBundle = errors.New("no bundle for document")
)
