package h2o

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventTypeString is a type alias for string, representing the type of an Event.
type EventTypeString = string

// MoleculeUint is a type alias for uint, representing the 1-based number of a molecule.
type MoleculeUint = uint

const (
	AtomStartedEventType      EventTypeString = "AtomStarted"
	AtomQueuedEventType       EventTypeString = "AtomQueued"
	MoleculeCreatingEventType EventTypeString = "MoleculeCreating"
	MoleculeCreatedEventType  EventTypeString = "MoleculeCreated"
	HydrogenShortageEventType EventTypeString = "HydrogenShortage"
	AtomShortageEventType     EventTypeString = "AtomShortage"
)

// Events is an alias type for a slice of Event.
type Events = []Event

// Event is something one atom has done. Each Event is rendered as exactly one output line.
//
// Molecule and Reservation are only set for MoleculeCreating and MoleculeCreated events.
// The Reservation identifies the pairing transaction which admitted the atom into the creation barrier.
type Event struct {
	EventType   EventTypeString
	Atom        Atom
	Molecule    MoleculeUint
	Reservation uuid.UUID
	OccurredAt  time.Time
}

// BuildAtomStarted creates the event an atom emits as its first action.
func BuildAtomStarted(atom Atom, occurredAt time.Time) Event {
	return Event{EventType: AtomStartedEventType, Atom: atom, OccurredAt: occurredAt}
}

// BuildAtomQueued creates the event an atom emits when it joins the queue.
func BuildAtomQueued(atom Atom, occurredAt time.Time) Event {
	return Event{EventType: AtomQueuedEventType, Atom: atom, OccurredAt: occurredAt}
}

// BuildMoleculeCreating creates the event an atom emits inside the creation barrier.
func BuildMoleculeCreating(atom Atom, molecule MoleculeUint, reservation uuid.UUID, occurredAt time.Time) Event {
	return Event{
		EventType:   MoleculeCreatingEventType,
		Atom:        atom,
		Molecule:    molecule,
		Reservation: reservation,
		OccurredAt:  occurredAt,
	}
}

// BuildMoleculeCreated creates the event an atom emits after leaving the creation barrier.
func BuildMoleculeCreated(atom Atom, molecule MoleculeUint, reservation uuid.UUID, occurredAt time.Time) Event {
	return Event{
		EventType:   MoleculeCreatedEventType,
		Atom:        atom,
		Molecule:    molecule,
		Reservation: reservation,
		OccurredAt:  occurredAt,
	}
}

// BuildShortage creates the terminal event of an atom that can never be paired.
// Oxygen atoms are always starved of hydrogen, hydrogen atoms of oxygen or hydrogen.
func BuildShortage(atom Atom, occurredAt time.Time) Event {
	eventType := AtomShortageEventType
	if atom.Kind == Oxygen {
		eventType = HydrogenShortageEventType
	}

	return Event{EventType: eventType, Atom: atom, OccurredAt: occurredAt}
}

// Text returns the event part of the output line.
func (e Event) Text() string {
	switch e.EventType {
	case AtomStartedEventType:
		return "started"
	case AtomQueuedEventType:
		return "going to queue"
	case MoleculeCreatingEventType:
		return fmt.Sprintf("creating molecule %d", e.Molecule)
	case MoleculeCreatedEventType:
		return fmt.Sprintf("molecule %d created", e.Molecule)
	case HydrogenShortageEventType:
		return "not enough H"
	case AtomShortageEventType:
		return "not enough O or H"
	default:
		return e.EventType
	}
}

// Line renders the complete output line for the given line number, without a trailing newline.
func (e Event) Line(lineNumber LineNumberUint) string {
	return fmt.Sprintf("%d: %s: %s", lineNumber, e.Atom, e.Text())
}

// IsTerminal returns true for the events which end the life of an atom.
func (e Event) IsTerminal() bool {
	switch e.EventType {
	case MoleculeCreatedEventType, HydrogenShortageEventType, AtomShortageEventType:
		return true
	default:
		return false
	}
}

// IsShortage returns true if the event reports an atom that could not be paired.
func (e Event) IsShortage() bool {
	return e.EventType == HydrogenShortageEventType || e.EventType == AtomShortageEventType
}
