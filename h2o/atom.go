package h2o

import (
	"fmt"
)

// Kind distinguishes oxygen from hydrogen atoms.
type Kind uint8

const (
	Oxygen Kind = iota + 1
	Hydrogen
)

// AtomIDUint is a type alias for uint, representing the 1-based ID of an atom within its Kind.
type AtomIDUint = uint

// Letter returns the single letter used for the Kind in output lines.
func (k Kind) Letter() string {
	switch k {
	case Oxygen:
		return "O"
	case Hydrogen:
		return "H"
	default:
		return "?"
	}
}

func (k Kind) String() string {
	switch k {
	case Oxygen:
		return "oxygen"
	case Hydrogen:
		return "hydrogen"
	default:
		return "unknown"
	}
}

// KindFromLetter is the inverse of Kind.Letter.
func KindFromLetter(letter string) (Kind, bool) {
	switch letter {
	case "O":
		return Oxygen, true
	case "H":
		return Hydrogen, true
	default:
		return 0, false
	}
}

// Atom identifies one actor.
type Atom struct {
	Kind Kind
	ID   AtomIDUint
}

// BuildAtom creates an Atom.
func BuildAtom(kind Kind, id AtomIDUint) Atom {
	return Atom{Kind: kind, ID: id}
}

// String renders the atom the way it appears in output lines, e.g. "O 1".
func (a Atom) String() string {
	return fmt.Sprintf("%s %d", a.Kind.Letter(), a.ID)
}
