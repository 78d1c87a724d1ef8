// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - DecisionStore: durable local persistence of the reviewer's decisions
//   - BundleStore: access to ingested document bundles
//   - ConfigStore: application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - AggregationClient: the shared remote tally service. Without it,
//     decisions stay local and the community tally is empty.
//   - CandidateSource: open-world lookup for unmatched mentions. Without
//     it, no_match mentions simply stay unmatched.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
