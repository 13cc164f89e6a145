package gnf

import (
	"github.com/dekarrin/greibach/internal/grammar"
)

// SegmentTerminals replaces every terminal after the head of an alternative
// with its TerminalLift generator variable, whose only alternative is that
// terminal. Generators are minted by names, one per distinct terminal, and are
// appended to the variable order in the order the terminals are first found.
//
// Every alternative of g must already begin with a terminal; if one does not,
// an error matching gerrors.ErrIncompleteNormalization is returned.
func SegmentTerminals(g grammar.Grammar, names *Namer) (grammar.Grammar, error) {
	order := g.Variables()
	rules := g.Rules()

	if err := checkTerminalHeads(order, rules); err != nil {
		return grammar.Grammar{}, err
	}

	for _, v := range g.Variables() {
		alts := rules[v]
		for i := range alts {
			for j := 1; j < len(alts[i]); j++ {
				sym := alts[i][j]
				if !sym.IsTerminal() {
					continue
				}

				gen, minted, err := names.TerminalLift(sym)
				if err != nil {
					return grammar.Grammar{}, err
				}
				if minted {
					order = append(order, gen)
					rules[gen] = []grammar.Production{grammar.P(sym)}
				}
				alts[i][j] = gen
			}
		}
	}

	return rebuild(g, order, rules)
}
