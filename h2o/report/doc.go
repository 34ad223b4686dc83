// Package report implements the Run Summary query.
//
// It follows the Query-Project pattern: the QueryHandler queries the recorded events of a run
// from an EventSource (the journal), maps them back to h2o.Event(s) and delegates to the pure
// ProjectRunSummary function.
//
// The RunSummary contains the number of atoms, started and queued atoms, every molecule with the
// atoms that formed it and the reservation that paired them, and the shortages per Kind.
package report
