package gnf

import (
	"fmt"

	"github.com/dekarrin/greibach/internal/gerrors"
	"github.com/dekarrin/greibach/internal/grammar"
)

// NormalizeHeads rewrites g so that every alternative begins with a terminal.
// The first primary variables of the order of g are the primary variables; the
// rest are the auxiliary variables added by EliminateLeftRecursion.
//
// Primary variables are processed from the second-to-last down to the first.
// Each alternative of A_r whose head is a primary variable A_s with s > r is
// replaced with β γ for each alternative β of A_s. Auxiliary variables are
// then processed, substituting any head that is a primary variable.
//
// If any alternative still does not begin with a terminal afterwards, an error
// matching gerrors.ErrIncompleteNormalization is returned.
func NormalizeHeads(g grammar.Grammar, primary int) (grammar.Grammar, error) {
	order := g.Variables()
	if primary < 0 || primary > len(order) {
		return grammar.Grammar{}, gerrors.New(fmt.Sprintf("primary variable count %d out of range [0, %d]", primary, len(order)), gerrors.ErrBadArgument)
	}
	rules := g.Rules()

	index := make(map[grammar.Symbol]int, primary)
	for i := 0; i < primary; i++ {
		index[order[i]] = i
	}

	for r := primary - 2; r >= 0; r-- {
		ar := order[r]
		alts, changed, err := expand(rules, ar, func(head grammar.Symbol) bool {
			s, ok := index[head]
			return ok && s > r
		})
		if err != nil {
			return grammar.Grammar{}, err
		}
		if changed {
			rules[ar] = alts
		}
	}

	for _, b := range order[primary:] {
		alts, changed, err := expand(rules, b, func(head grammar.Symbol) bool {
			_, ok := index[head]
			return ok
		})
		if err != nil {
			return grammar.Grammar{}, err
		}
		if changed {
			rules[b] = alts
		}
	}

	if err := checkTerminalHeads(order, rules); err != nil {
		return grammar.Grammar{}, err
	}

	return rebuild(g, order, rules)
}

// checkTerminalHeads returns an error matching
// gerrors.ErrIncompleteNormalization for the first alternative, in variable
// order, that does not begin with a terminal.
func checkTerminalHeads(order []grammar.Symbol, rules grammar.ProductionSet) error {
	for _, v := range order {
		for _, alt := range rules[v] {
			if !alt.Head().IsTerminal() {
				return gerrors.New(fmt.Sprintf("%s -> %s", v, alt), gerrors.ErrIncompleteNormalization)
			}
		}
	}
	return nil
}
