// Package domain defines the core business entities for the Outremer
// reconciliation CLI.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Mention: An extracted reference to a person within a document
//   - ReferenceRecord: A row from the authority file or an open-world source
//   - CandidateLink: A scored, tiered proposed Mention↔ReferenceRecord link
//   - Decision: One reviewer's judgment on one Mention–candidate pair
//   - EntityFlag: A reviewer's judgment on the Mention itself
//   - Tally: The aggregated community vote for one Mention–candidate pair
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
