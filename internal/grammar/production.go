package grammar

import (
	"fmt"
	"strings"

	"github.com/dekarrin/rezi"
)

// Production is the right-hand side of one alternative of a variable. A
// Production is never empty in a valid Grammar.
type Production []Symbol

// P is a shorthand for building a Production out of symbols.
func P(syms ...Symbol) Production {
	return Production(syms).Copy()
}

// Copy returns a deep copy of p.
func (p Production) Copy() Production {
	if p == nil {
		return nil
	}
	cp := make(Production, len(p))
	copy(cp, p)
	return cp
}

// Head returns the first symbol of p, or the zero Symbol if p is empty.
func (p Production) Head() Symbol {
	if len(p) < 1 {
		return Symbol{}
	}
	return p[0]
}

// Rest returns a copy of every symbol of p after the head.
func (p Production) Rest() Production {
	if len(p) < 2 {
		return Production{}
	}
	return p[1:].Copy()
}

// Concat returns a new Production consisting of the symbols of p followed by
// the symbols of each of the others in turn. p and the others are not
// modified.
func (p Production) Concat(others ...Production) Production {
	total := len(p)
	for _, o := range others {
		total += len(o)
	}

	cat := make(Production, 0, total)
	cat = append(cat, p...)
	for _, o := range others {
		cat = append(cat, o...)
	}
	return cat
}

// Equal returns whether p and o have the same symbols in the same order. o may
// be a Production or a *Production.
func (p Production) Equal(o any) bool {
	other, ok := o.(Production)
	if !ok {
		otherPtr, ok := o.(*Production)
		if !ok || otherPtr == nil {
			return false
		}
		other = *otherPtr
	}

	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// IsGNF returns whether p consists of exactly one terminal followed by zero or
// more variables.
func (p Production) IsGNF() bool {
	if len(p) < 1 || !p[0].IsTerminal() {
		return false
	}
	for _, sym := range p[1:] {
		if !sym.IsVariable() {
			return false
		}
	}
	return true
}

// String returns the display names of the symbols of p separated by spaces.
func (p Production) String() string {
	names := make([]string, len(p))
	for i := range p {
		names[i] = p[i].String()
	}
	return strings.Join(names, " ")
}

// MarshalBinary converts p into a slice of bytes that can be decoded with
// UnmarshalBinary.
func (p Production) MarshalBinary() ([]byte, error) {
	data := rezi.EncInt(len(p))
	for i := range p {
		data = append(data, rezi.EncBinary(p[i])...)
	}
	return data, nil
}

// UnmarshalBinary decodes a slice of bytes created by MarshalBinary into p.
func (p *Production) UnmarshalBinary(data []byte) error {
	count, n, err := rezi.DecInt(data)
	if err != nil {
		return fmt.Errorf("symbol count: %w", err)
	}
	data = data[n:]
	if count < 0 {
		return fmt.Errorf("symbol count < 0")
	}

	syms := make(Production, count)
	for i := 0; i < count; i++ {
		n, err = rezi.DecBinary(data, &syms[i])
		if err != nil {
			return fmt.Errorf("symbol %d: %w", i, err)
		}
		data = data[n:]
	}

	*p = syms
	return nil
}

// AppendUnique appends each production in add to alts that does not already
// appear in alts. The first occurrence of a production is the one kept.
func AppendUnique(alts []Production, add ...Production) []Production {
	for _, a := range add {
		dup := false
		for _, existing := range alts {
			if existing.Equal(a) {
				dup = true
				break
			}
		}
		if !dup {
			alts = append(alts, a)
		}
	}
	return alts
}
