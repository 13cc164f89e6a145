package gnf

import (
	"fmt"

	"github.com/dekarrin/greibach/internal/gerrors"
	"github.com/dekarrin/greibach/internal/grammar"
)

// EliminateLeftRecursion removes direct left recursion from every variable of
// g. A variable with alternatives A -> A α1 | ... | A αk | β1 | ... | βm is
// rewritten as
//
//	A -> β1 | ... | βm | β1 Z | ... | βm Z
//	Z -> α1 | ... | αk | α1 Z | ... | αk Z
//
// where Z is the RecursionBreak variable for A, minted by names and appended to
// the variable order. Variables without direct left recursion are left as they
// are, so no variable is added for a grammar that has none.
//
// Alternatives of the form A -> A are dropped. If every alternative of some
// variable is directly left-recursive, an error matching
// gerrors.ErrUnremovableRecursion is returned.
func EliminateLeftRecursion(g grammar.Grammar, names *Namer) (grammar.Grammar, error) {
	order := g.Variables()
	rules := g.Rules()

	// only the variables present on entry are examined
	for _, a := range g.Variables() {
		var alphas, betas []grammar.Production
		selfLoops := 0
		for _, alt := range rules[a] {
			switch {
			case alt.Head() != a:
				betas = append(betas, alt)
			case len(alt) == 1:
				selfLoops++
			default:
				alphas = append(alphas, alt.Rest())
			}
		}

		if len(alphas) == 0 && selfLoops == 0 {
			continue
		}
		if len(betas) == 0 {
			return grammar.Grammar{}, gerrors.New(fmt.Sprintf("every alternative of %s is left-recursive: %s", a, g.RuleString(a)), gerrors.ErrUnremovableRecursion)
		}
		if len(alphas) == 0 {
			rules[a] = betas
			continue
		}

		z, err := names.RecursionBreak(a)
		if err != nil {
			return grammar.Grammar{}, err
		}
		zTail := grammar.P(z)

		newA := grammar.AppendUnique(nil, betas...)
		for _, beta := range betas {
			newA = grammar.AppendUnique(newA, beta.Concat(zTail))
		}

		newZ := grammar.AppendUnique(nil, alphas...)
		for _, alpha := range alphas {
			newZ = grammar.AppendUnique(newZ, alpha.Concat(zTail))
		}

		rules[a] = newA
		rules[z] = newZ
		order = append(order, z)
	}

	return rebuild(g, order, rules)
}
