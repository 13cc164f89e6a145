package gnf

import (
	"fmt"

	"github.com/dekarrin/greibach/internal/gerrors"
	"github.com/dekarrin/greibach/internal/grammar"
)

// expand rewrites the alternatives of v. Every alternative whose head matches
// is replaced by one alternative per production of the head variable, each
// followed by the rest of the replaced alternative. The replacements take the
// position of the alternative they replace, and any that duplicate an
// alternative already kept are dropped.
//
// rules is only read from. The returned bool is whether any substitution took
// place.
func expand(rules grammar.ProductionSet, v grammar.Symbol, match func(head grammar.Symbol) bool) ([]grammar.Production, bool, error) {
	var out []grammar.Production
	changed := false

	for _, alt := range rules[v] {
		head := alt.Head()
		if !head.IsVariable() || !match(head) {
			out = grammar.AppendUnique(out, alt)
			continue
		}

		betas, ok := rules[head]
		if !ok {
			return nil, false, gerrors.Malformed(fmt.Sprintf("%s -> %s: %s has no productions", v, alt, head))
		}

		rest := alt.Rest()
		for _, beta := range betas {
			out = grammar.AppendUnique(out, beta.Concat(rest))
		}
		changed = true
	}

	return out, changed, nil
}

// rebuild creates the Grammar for the next stage out of the given parts,
// carrying over the terminals and start symbol of prev.
func rebuild(prev grammar.Grammar, order []grammar.Symbol, rules grammar.ProductionSet) (grammar.Grammar, error) {
	return grammar.New(order, prev.Terminals(), rules, prev.Start())
}
