// Package h2o provides the core vocabulary for the water molecule rendezvous simulation.
//
// Oxygen and hydrogen atoms are modeled as independent concurrent actors which must meet in
// groups of exactly one oxygen and two hydrogen atoms before a molecule can be created.
// This package defines the types shared by the protocol engine, the output journal and the
// reporting projections, including observability interfaces and common error definitions.
//
// Key types:
//   - Atom: One actor, identified by its Kind and a 1-based per-kind ID
//   - Event: Something an atom has done, rendered as one numbered output line
//   - StorableEvent: The JSON representation of an Event as recorded by the journal
//   - Filter: Defines criteria for querying recorded events
//
// Common usage pattern:
//
//	// Query all terminal events of hydrogen atoms
//	filter := BuildEventFilter().
//		Matching().
//		AnyEventTypeOf(
//			MoleculeCreatedEventType,
//			AtomShortageEventType).
//		AndAnyPredicateOf(P("Kind", Hydrogen.Letter())).
//		Finalize()
//
//	events := journal.Query(filter)
package h2o
