package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/AntonStoeckl/h2o-rendezvous-go/h2o"
	"github.com/AntonStoeckl/h2o-rendezvous-go/h2o/rendezvous"
)

const (
	stdoutDestination = "-"
	logLevelEnvVar    = "H2O_LOG_LEVEL"
	defaultLogLevel   = "warn"
	positionalArgs    = 4
	maxWaitMS         = uint64(rendezvous.MaxWait / time.Millisecond)
	msgInvalidArgs    = "Invalid arguments!"
	msgNoAtoms        = "No atoms!"
)

// errInvalidFlag is returned when a named flag cannot be parsed or carries an unknown value.
var errInvalidFlag = errors.New("invalid flag")

// Config holds the command-line configuration of one h2o run.
type Config struct {
	Output    string
	LogLevel  slog.Level
	Telemetry bool
	Summary   bool
	Run       rendezvous.Config
}

// WritesToStdout reports whether the output lines go to stdout instead of a file.
func (c Config) WritesToStdout() bool {
	return c.Output == stdoutDestination
}

// parseArgs parses flags and the four positional arguments NO NH TI TB.
// Nothing is created here, so a failed validation leaves no trace besides the returned error.
func parseArgs(args []string, getenv func(string) string, usageOutput io.Writer) (Config, error) {
	fs := flag.NewFlagSet("h2o", flag.ContinueOnError)
	fs.SetOutput(usageOutput)
	fs.Usage = func() {
		_, _ = fmt.Fprintln(fs.Output(), "Usage: h2o [flags] NO NH TI TB")
		fs.PrintDefaults()
	}

	var (
		output    = fs.String("o", stdoutDestination, "Output destination for the lines, - writes to stdout")
		logLevel  = fs.String("log-level", envOrDefault(getenv, logLevelEnvVar, defaultLogLevel), "Log level (debug, info, warn, error)")
		telemetry = fs.Bool("telemetry", false, "Export OpenTelemetry traces and metrics as JSON to stderr")
		summary   = fs.Bool("summary", false, "Print the run summary as JSON to stderr after the run")
	)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return Config{}, err
		}

		return Config{}, fmt.Errorf("%w: %w", errInvalidFlag, err)
	}

	level, err := parseLogLevel(*logLevel)
	if err != nil {
		return Config{}, err
	}

	runConfig, err := parsePositionals(fs.Args())
	if err != nil {
		return Config{}, err
	}

	return Config{
		Output:    *output,
		LogLevel:  level,
		Telemetry: *telemetry,
		Summary:   *summary,
		Run:       runConfig,
	}, nil
}

func parsePositionals(args []string) (rendezvous.Config, error) {
	if len(args) != positionalArgs {
		return rendezvous.Config{}, fmt.Errorf("%w: got %d, want %d", h2o.ErrInvalidArgumentCount, len(args), positionalArgs)
	}

	values := make([]uint64, 0, positionalArgs)
	for _, arg := range args {
		value, err := parseNumber(arg)
		if err != nil {
			return rendezvous.Config{}, err
		}

		values = append(values, value)
	}

	oxygen, hydrogen, queueWaitMS, createWaitMS := values[0], values[1], values[2], values[3]

	// Reject before converting, a huge millisecond value would overflow time.Duration.
	if queueWaitMS > maxWaitMS || createWaitMS > maxWaitMS {
		return rendezvous.Config{}, fmt.Errorf("%w: %d ms and %d ms", h2o.ErrOutOfRangeWait, queueWaitMS, createWaitMS)
	}

	return rendezvous.BuildConfig(
		uint(oxygen),
		uint(hydrogen),
		time.Duration(queueWaitMS)*time.Millisecond,
		time.Duration(createWaitMS)*time.Millisecond,
	)
}

// parseNumber accepts decimal digits only. Signs, spaces and the empty string are rejected.
func parseNumber(arg string) (uint64, error) {
	if arg == "" || strings.TrimLeft(arg, "0123456789") != "" {
		return 0, fmt.Errorf("%w: %q", h2o.ErrNonNumericArgument, arg)
	}

	value, err := strconv.ParseUint(arg, 10, strconv.IntSize)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", h2o.ErrNonNumericArgument, arg, err)
	}

	return value, nil
}

func parseLogLevel(value string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(value)); err != nil {
		return 0, fmt.Errorf("%w: log level %q", errInvalidFlag, value)
	}

	return level, nil
}

func envOrDefault(getenv func(string) string, key, fallback string) string {
	if value := getenv(key); value != "" {
		return value
	}

	return fallback
}

// userMessage maps a validation error to the single line printed on stderr.
func userMessage(err error) string {
	if errors.Is(err, h2o.ErrNoAtoms) {
		return msgNoAtoms
	}

	return msgInvalidArgs
}
