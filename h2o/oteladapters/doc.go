// Package oteladapters provides OpenTelemetry adapters for the h2o observability interfaces.
//
// Use them to plug a Simulation, Journal or report QueryHandler into an OpenTelemetry setup
// without implementing the interfaces yourself:
//
//	simulation, err := rendezvous.NewSimulation(
//		config,
//		j,
//		rendezvous.WithMetrics(oteladapters.NewMetricsCollector(meterProvider.Meter("h2o"))),
//		rendezvous.WithTracing(oteladapters.NewTracingCollector(tracerProvider.Tracer("h2o"))),
//		rendezvous.WithContextualLogger(oteladapters.NewSlogBridgeLogger("h2o")),
//	)
package oteladapters
