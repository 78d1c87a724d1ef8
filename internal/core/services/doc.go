// Package services implements the core use cases: candidate scoring,
// context alignment, the decision state machine with asynchronous remote
// propagation, the community tally index, and export-signal resolution.
//
// Services implement the driving ports and depend only on domain types and
// driven ports. Infrastructure (SQLite, HTTP, files) lives in adapters.
package services
