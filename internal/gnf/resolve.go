package gnf

import (
	"github.com/dekarrin/greibach/internal/grammar"
)

// ResolveIndirect rewrites g so that, relative to its variable order, no
// alternative of a variable A_r begins with a variable A_s that precedes it.
// For each pair (A_r, A_s) with s < r, every alternative A_r -> A_s γ is
// replaced with β γ for each alternative β of A_s.
//
// Pairs are visited once, r ascending and s ascending within each r. A
// substitution that brings in a head which precedes A_s is not revisited, so
// the result may still contain alternatives headed by a lower-indexed variable
// when the grammar has chained indirect recursion. NormalizeHeads reports such
// grammars.
func ResolveIndirect(g grammar.Grammar) (grammar.Grammar, error) {
	order := g.Variables()
	rules := g.Rules()

	for r := 1; r < len(order); r++ {
		ar := order[r]
		for s := 0; s < r; s++ {
			as := order[s]
			alts, changed, err := expand(rules, ar, func(head grammar.Symbol) bool {
				return head == as
			})
			if err != nil {
				return grammar.Grammar{}, err
			}
			if changed {
				rules[ar] = alts
			}
		}
	}

	return rebuild(g, order, rules)
}
