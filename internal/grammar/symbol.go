package grammar

import (
	"fmt"

	"github.com/dekarrin/rezi"
)

// Origin is where a Symbol came from. Symbols given by the caller are Source
// symbols; the rest are minted during a transformation and occupy a namespace
// that can never coincide with a Source symbol.
type Origin int

const (
	// Source is a symbol supplied as part of the original grammar.
	Source Origin = iota

	// RecursionBreak is an auxiliary variable introduced to remove direct left
	// recursion from the variable it is named after.
	RecursionBreak

	// TerminalLift is a generator variable whose only alternative is the
	// terminal it is named after.
	TerminalLift
)

func (o Origin) String() string {
	switch o {
	case Source:
		return "source"
	case RecursionBreak:
		return "recursion-break"
	case TerminalLift:
		return "terminal-lift"
	default:
		return fmt.Sprintf("Origin(%d)", int(o))
	}
}

// Symbol is a single terminal or variable of a grammar. Symbols are comparable
// and may be used as map keys; two Symbols are the same only if their names,
// kinds, and origins all match.
//
// The zero value is not a valid Symbol. Use T, V, or Synthetic to make one.
type Symbol struct {
	name   string
	term   bool
	origin Origin
}

// T returns the terminal with the given name.
func T(name string) Symbol {
	return Symbol{name: name, term: true}
}

// V returns the Source variable with the given name.
func V(name string) Symbol {
	return Symbol{name: name}
}

// Synthetic returns the variable with the given origin that was derived from
// the symbol of. A RecursionBreak variable is derived from the variable whose
// recursion it breaks and a TerminalLift variable from the terminal it
// generates.
func Synthetic(origin Origin, of Symbol) Symbol {
	if origin == Source {
		return V(of.name)
	}
	name := of.name
	if of.origin != Source {
		// nested derivation; keep the full display name so it stays unique
		name = of.String()
	}
	return Symbol{name: name, origin: origin}
}

// Name returns the identifier the symbol was created with. For synthetic
// variables this is the name of the symbol it was derived from; use String to
// get a display name.
func (s Symbol) Name() string {
	return s.name
}

// Origin returns where the symbol came from.
func (s Symbol) Origin() Origin {
	return s.origin
}

// IsTerminal returns whether s is a terminal.
func (s Symbol) IsTerminal() bool {
	return s.term
}

// IsVariable returns whether s is a variable.
func (s Symbol) IsVariable() bool {
	return !s.term && s.name != ""
}

// IsSynthetic returns whether s was minted by a transformation.
func (s Symbol) IsSynthetic() bool {
	return s.origin != Source
}

// String returns the display name of s. A RecursionBreak variable for A is
// shown as "A-P" and a TerminalLift variable for a as "X-a".
func (s Symbol) String() string {
	switch s.origin {
	case RecursionBreak:
		return s.name + "-P"
	case TerminalLift:
		return "X-" + s.name
	default:
		return s.name
	}
}

// MarshalBinary converts s into a slice of bytes that can be decoded with
// UnmarshalBinary.
func (s Symbol) MarshalBinary() ([]byte, error) {
	var data []byte

	data = append(data, rezi.EncString(s.name)...)
	data = append(data, rezi.EncBool(s.term)...)
	data = append(data, rezi.EncInt(int(s.origin))...)

	return data, nil
}

// UnmarshalBinary decodes a slice of bytes created by MarshalBinary into s.
func (s *Symbol) UnmarshalBinary(data []byte) error {
	var err error
	var n int

	s.name, n, err = rezi.DecString(data)
	if err != nil {
		return fmt.Errorf("name: %w", err)
	}
	data = data[n:]

	s.term, n, err = rezi.DecBool(data)
	if err != nil {
		return fmt.Errorf("kind: %w", err)
	}
	data = data[n:]

	var origin int
	origin, _, err = rezi.DecInt(data)
	if err != nil {
		return fmt.Errorf("origin: %w", err)
	}
	if origin < int(Source) || origin > int(TerminalLift) {
		return fmt.Errorf("origin: unknown value %d", origin)
	}
	s.origin = Origin(origin)

	return nil
}
