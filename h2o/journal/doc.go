// Package journal provides the output sink of the water molecule simulation.
//
// A Journal serializes all lines of a run, numbers them gap-free and writes them to an io.Writer
// in the format "<line>: <O|H> <id>: <event>". Every written line is also recorded as an
// h2o.StorableEvent with JSON payload and metadata, which makes the run queryable afterward.
//
// Usage example:
//
//	j, _ := journal.NewJournal(os.Stdout, journal.WithLogger(logger))
//	line, err := j.Append(ctx, h2o.BuildAtomStarted(h2o.BuildAtom(h2o.Oxygen, 1), time.Now()))
//
//	shortages := j.Query(
//		h2o.BuildEventFilter().
//			Matching().
//			AnyEventTypeOf(h2o.HydrogenShortageEventType, h2o.AtomShortageEventType).
//			Finalize(),
//	)
package journal
