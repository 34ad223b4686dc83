package report

import (
	"github.com/AntonStoeckl/h2o-rendezvous-go/h2o"
)

const (
	queryType = "RunSummary"
)

// Query represents the intent to summarize a run, optionally restricted to the atoms of one Kind.
// The zero Kind summarizes all atoms.
type Query struct {
	Kind h2o.Kind
}

// BuildQuery creates a new Query for all atoms.
func BuildQuery() Query {
	return Query{}
}

// BuildQueryForKind creates a new Query restricted to the atoms of the given Kind.
func BuildQueryForKind(kind h2o.Kind) Query {
	return Query{Kind: kind}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}

// BuildEventFilter creates the filter for querying all events relevant to the summary.
func BuildEventFilter(query Query) h2o.Filter {
	eventTypes := h2o.BuildEventFilter().
		Matching().
		AnyEventTypeOf(
			h2o.AtomStartedEventType,
			h2o.AtomQueuedEventType,
			h2o.MoleculeCreatingEventType,
			h2o.MoleculeCreatedEventType,
			h2o.HydrogenShortageEventType,
			h2o.AtomShortageEventType,
		)

	if query.Kind == 0 {
		return eventTypes.Finalize()
	}

	return eventTypes.
		AndAnyPredicateOf(h2o.P("Kind", query.Kind.Letter())).
		Finalize()
}
