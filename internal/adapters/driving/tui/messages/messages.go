// Package messages defines the bubbletea messages exchanged between the
// review TUI and its background commands.
package messages

import (
	"github.com/outremer-kg/recon-cli/internal/core/domain"
)

// BundleLoaded carries the result of loading a document bundle.
type BundleLoaded struct {
	Bundle *domain.Bundle
	Err    error
}

// DecisionRecorded carries the local outcome of a decision toggle.
type DecisionRecorded struct {
	Key     domain.DecisionKey
	Kind    domain.DecisionKind
	Cleared bool
	Err     error
}

// FlagToggled carries the new state of an entity flag.
type FlagToggled struct {
	Person string
	Kind   domain.EntityFlagKind
	Set    bool
	Err    error
}

// PullCompleted signals that a community decision pull finished.
type PullCompleted struct {
	DocID string
	Err   error
}

// SyncTick prompts a re-read of push statuses while pushes are in flight.
type SyncTick struct{}
