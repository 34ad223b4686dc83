// Package rendezvous implements the synchronization protocol of the water molecule simulation.
//
// Every atom is a goroutine. There is no coordinator: atoms meet through one shared state per run.
//
// Protocol of one atom:
//   - emit "started"
//   - pairing transaction: join the pending pool of its kind and, when one oxygen and two
//     hydrogen atoms are pending, reserve a molecule by issuing one oxygen and two hydrogen tokens
//   - random think time, then emit "going to queue"
//   - wait for a token of its kind or for the shortage
//   - with a token: wait for the previous cohort, pass the two-phase Barrier together with the other
//     two token holders, emitting "creating molecule k" inside and "molecule k created" after it
//   - without a token: wait until every atom has queued, then emit its shortage line
//
// Usage example:
//
//	config, _ := rendezvous.BuildConfig(3, 6, 100*time.Millisecond, 100*time.Millisecond)
//	j, _ := journal.NewJournal(os.Stdout)
//	simulation, _ := rendezvous.NewSimulation(
//		config,
//		j,
//		rendezvous.WithLogger(slog.Default()),
//	)
//	outcome, err := simulation.Run(ctx)
package rendezvous
