package gfile

import (
	"fmt"
	"strings"

	"github.com/dekarrin/greibach/internal/gerrors"
	"github.com/dekarrin/greibach/internal/grammar"
	"github.com/dekarrin/greibach/internal/util"
)

func parseGrammarDefs(defs []grammarDef) ([]Named, error) {
	if len(defs) < 1 {
		return nil, gerrors.Malformed("file does not define any grammars")
	}

	seen := util.NewStringSet()
	named := make([]Named, 0, len(defs))
	for i, def := range defs {
		where := fmt.Sprintf("grammar %d", i+1)
		if def.source != "" {
			where = fmt.Sprintf("%q: %s", def.source, where)
		}

		name := strings.TrimSpace(def.Name)
		if name == "" {
			return nil, gerrors.Malformed(fmt.Sprintf("%s: 'name' must be set", where))
		}
		if seen.Has(name) {
			return nil, gerrors.Malformed(fmt.Sprintf("%s: duplicate grammar name %q", where, name))
		}
		seen.Add(name)

		g, err := parseGrammarDef(def)
		if err != nil {
			return nil, fmt.Errorf("%s (%q): %w", where, name, err)
		}
		named = append(named, Named{Name: name, Grammar: g})
	}

	return named, nil
}

func parseGrammarDef(def grammarDef) (grammar.Grammar, error) {
	if len(def.Rules) < 1 {
		return grammar.Grammar{}, gerrors.Malformed("'rules' must list at least one rule")
	}

	g, err := grammar.Parse(def.Terminals, def.Start, def.Rules...)
	if err != nil {
		return grammar.Grammar{}, err
	}

	if len(def.Variables) > 0 {
		order := make([]grammar.Symbol, len(def.Variables))
		for i := range def.Variables {
			order[i] = grammar.V(def.Variables[i])
		}
		g, err = g.WithOrder(order)
		if err != nil {
			return grammar.Grammar{}, fmt.Errorf("'variables': %w", err)
		}
	}

	return g, nil
}
