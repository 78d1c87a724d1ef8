package domain

// SyncState tracks whether one local decision mutation has reached the
// remote aggregation service. The local store is authoritative for the
// acting reviewer regardless of sync outcome; an error state only means
// the decision has not joined the shared tally yet.
type SyncState string

const (
	// SyncPending: the network call has been issued but not completed.
	SyncPending SyncState = "pending"
	// SyncOK: the remote service acknowledged the mutation.
	SyncOK SyncState = "ok"
	// SyncError: the call failed; re-issuing the same action retries.
	SyncError SyncState = "error"
)

// PushStatus is the observable per-triple sync status.
type PushStatus struct {
	Key   DecisionKey
	State SyncState

	// Err holds the failure message when State is SyncError.
	Err string
}
