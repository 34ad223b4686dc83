package h2o

import (
	"errors"
)

var (
	// ErrInvalidArgumentCount is returned when the number of positional arguments is not exactly four.
	ErrInvalidArgumentCount = errors.New("invalid argument count")

	// ErrNonNumericArgument is returned when a positional argument is not a non-negative decimal integer.
	ErrNonNumericArgument = errors.New("argument is not a non-negative integer")

	// ErrOutOfRangeWait is returned when a maximum wait time is outside of [0,1000] milliseconds.
	ErrOutOfRangeWait = errors.New("wait time out of range")

	// ErrNoAtoms is returned when the total number of atoms is zero.
	ErrNoAtoms = errors.New("no atoms")

	// ErrSpawnFailure is returned when not all actors could be spawned.
	ErrSpawnFailure = errors.New("spawning atom actors failed")
)

var ErrBarrierOverflow = errors.New("barrier cohort is already complete")
var ErrInvalidParties = errors.New("barrier parties must be positive")
var ErrNilSequencer = errors.New("nil sequencer supplied")
var ErrNilDelayer = errors.New("nil delayer supplied")
var ErrNilWriter = errors.New("nil writer supplied")
var ErrEmptyRunID = errors.New("empty run id supplied")
var ErrWritingLineFailed = errors.New("writing output line failed")

// LineNumberUint is a type alias for uint, representing the global output line number of an event.
type LineNumberUint = uint
