package gnf

import (
	"fmt"

	"github.com/dekarrin/greibach/internal/gerrors"
	"github.com/dekarrin/greibach/internal/grammar"
	"github.com/dekarrin/greibach/internal/util"
)

// Namer mints the fresh variables introduced during a single run of the
// pipeline. A Namer must not be shared between runs; results for a run depend
// only on the grammar the Namer was created from and the calls made to it.
type Namer struct {
	taken util.KeySet[grammar.Symbol]
	lifts map[grammar.Symbol]grammar.Symbol
}

// NewNamer creates a Namer that treats every variable and terminal of g as
// already taken.
func NewNamer(g grammar.Grammar) *Namer {
	n := &Namer{
		taken: util.NewKeySet[grammar.Symbol](),
		lifts: map[grammar.Symbol]grammar.Symbol{},
	}
	for _, v := range g.Variables() {
		n.taken.Add(v)
	}
	for _, t := range g.Terminals() {
		n.taken.Add(t)
	}
	return n
}

// RecursionBreak mints the auxiliary variable that breaks the direct left
// recursion of v. It returns an error matching gerrors.ErrNameCollision if
// that variable is already taken.
func (n *Namer) RecursionBreak(v grammar.Symbol) (grammar.Symbol, error) {
	if !v.IsVariable() {
		return grammar.Symbol{}, gerrors.Malformed(fmt.Sprintf("cannot break recursion of non-variable %q", v.String()))
	}
	return n.mint(grammar.Synthetic(grammar.RecursionBreak, v))
}

// TerminalLift returns the generator variable for terminal t. The first call
// for a given terminal mints it; later calls return the same variable. It
// returns an error matching gerrors.ErrNameCollision if the generator was
// already taken before the first call.
func (n *Namer) TerminalLift(t grammar.Symbol) (gen grammar.Symbol, minted bool, err error) {
	if !t.IsTerminal() {
		return grammar.Symbol{}, false, gerrors.Malformed(fmt.Sprintf("cannot lift non-terminal %q", t.String()))
	}
	if gen, ok := n.lifts[t]; ok {
		return gen, false, nil
	}

	gen, err = n.mint(grammar.Synthetic(grammar.TerminalLift, t))
	if err != nil {
		return grammar.Symbol{}, false, err
	}
	n.lifts[t] = gen
	return gen, true, nil
}

func (n *Namer) mint(sym grammar.Symbol) (grammar.Symbol, error) {
	if n.taken.Has(sym) {
		return grammar.Symbol{}, gerrors.New(fmt.Sprintf("variable %s", sym), gerrors.ErrNameCollision)
	}
	n.taken.Add(sym)
	return sym, nil
}
