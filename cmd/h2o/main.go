package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/AntonStoeckl/h2o-rendezvous-go/h2o/journal"
	"github.com/AntonStoeckl/h2o-rendezvous-go/h2o/oteladapters"
	"github.com/AntonStoeckl/h2o-rendezvous-go/h2o/rendezvous"
	"github.com/AntonStoeckl/h2o-rendezvous-go/h2o/report"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	err := run(ctx, os.Args[1:], os.Getenv, os.Stdout, os.Stderr)
	stop()

	if err != nil {
		os.Exit(1)
	}
}

// run executes one h2o run. All resources are released on every return path, and every failure
// has been reported on stderr by the time run returns.
func run(ctx context.Context, args []string, getenv func(string) string, stdout, stderr io.Writer) (err error) {
	palette := NewPalette(getenv)

	cfg, err := parseArgs(args, getenv, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}

		_, _ = fmt.Fprintln(stderr, palette.Error(userMessage(err)))

		return err
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))

	defer func() {
		if err != nil {
			_, _ = fmt.Fprintln(stderr, palette.Error(fmt.Sprintf("h2o failed: %v", err)))
		}
	}()

	out, closeOutput, err := openOutput(cfg, stdout)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, closeOutput())
	}()

	journalOptions := []journal.Option{journal.WithLogger(logger)}
	simulationOptions := []rendezvous.Option{
		rendezvous.WithContextualLogger(oteladapters.NewSlogBridgeLoggerWithHandler(logger.Handler())),
	}
	reportOptions := []report.Option{report.WithLogging(logger)}

	if cfg.Telemetry {
		telemetry, telemetryErr := NewTelemetry(stderr)
		if telemetryErr != nil {
			return fmt.Errorf("setting up telemetry: %w", telemetryErr)
		}
		defer func() {
			err = errors.Join(err, telemetry.Shutdown())
		}()

		metricsCollector := telemetry.MetricsCollector()
		journalOptions = append(journalOptions, journal.WithMetrics(metricsCollector))
		reportOptions = append(reportOptions, report.WithMetrics(metricsCollector))
		simulationOptions = append(
			simulationOptions,
			rendezvous.WithMetrics(metricsCollector),
			rendezvous.WithTracing(telemetry.TracingCollector()),
		)
	}

	if !cfg.Summary {
		journalOptions = append(journalOptions, journal.WithoutRecording())
	}

	j, err := journal.NewJournal(out, journalOptions...)
	if err != nil {
		return err
	}

	simulation, err := rendezvous.NewSimulation(cfg.Run, j, simulationOptions...)
	if err != nil {
		return err
	}

	outcome, err := simulation.Run(ctx)
	if err != nil {
		return err
	}

	logger.Info(
		"h2o run finished",
		"molecules", outcome.MoleculesCreated,
		"shortages", outcome.Shortages,
		"lines", outcome.Lines,
	)

	if cfg.Summary {
		return printSummary(j, stderr, reportOptions...)
	}

	return nil
}

// openOutput returns a buffered writer for the output lines and a func which flushes it
// and closes the underlying file, if one was created.
func openOutput(cfg Config, stdout io.Writer) (io.Writer, func() error, error) {
	if cfg.WritesToStdout() {
		buffered := bufio.NewWriter(stdout)
		return buffered, buffered.Flush, nil
	}

	file, err := os.Create(cfg.Output)
	if err != nil {
		return nil, nil, fmt.Errorf("creating output file: %w", err)
	}

	buffered := bufio.NewWriter(file)

	return buffered, func() error {
		return errors.Join(buffered.Flush(), file.Close())
	}, nil
}

func printSummary(j *journal.Journal, w io.Writer, opts ...report.Option) error {
	handler, err := report.NewQueryHandler(j, opts...)
	if err != nil {
		return err
	}

	summary, err := handler.Handle(report.BuildQuery())
	if err != nil {
		return fmt.Errorf("building run summary: %w", err)
	}

	summaryJSON, err := summary.ToJSON()
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(summaryJSON))

	return err
}
