package grammar

import (
	"fmt"
	"strings"

	"github.com/dekarrin/greibach/internal/gerrors"
	"github.com/dekarrin/greibach/internal/util"
)

// Rule is a rule as written in text, before its symbols have been classified
// as terminals or variables.
type Rule struct {
	NonTerminal string
	Productions [][]string
}

// String returns the rule in the same form accepted by ParseRule.
func (r Rule) String() string {
	alts := make([]string, len(r.Productions))
	for i := range r.Productions {
		alts[i] = strings.Join(r.Productions[i], " ")
	}
	return fmt.Sprintf("%s -> %s", r.NonTerminal, strings.Join(alts, " | "))
}

// ParseRule parses a rule of the form "A -> x y | z". Symbols are separated by
// whitespace and alternatives by '|'; line breaks may appear anywhere
// whitespace may. Epsilon ("ε") alternatives are rejected, as are empty ones.
func ParseRule(s string) (Rule, error) {
	sides := strings.Split(s, "->")
	if len(sides) != 2 {
		return Rule{}, fmt.Errorf("not a rule of form 'NONTERM -> ALPHA | BETA': %q", s)
	}
	nonTerminal := strings.TrimSpace(sides[0])

	if nonTerminal == "" {
		return Rule{}, fmt.Errorf("empty nonterminal name not allowed for rule")
	}
	if len(strings.Fields(nonTerminal)) != 1 {
		return Rule{}, fmt.Errorf("nonterminal name %q contains whitespace", nonTerminal)
	}

	parsed := Rule{NonTerminal: nonTerminal}

	for i, altStr := range strings.Split(sides[1], "|") {
		syms := strings.Fields(altStr)
		if len(syms) < 1 {
			return Rule{}, fmt.Errorf("alternative %d of %s is empty", i+1, nonTerminal)
		}
		for _, sym := range syms {
			if strings.ToLower(sym) == "ε" {
				return Rule{}, fmt.Errorf("alternative %d of %s: epsilon productions are not supported", i+1, nonTerminal)
			}
		}
		parsed.Productions = append(parsed.Productions, syms)
	}

	return parsed, nil
}

// Parse creates a Grammar from rules written in the form accepted by
// ParseRule. Any symbol named in terminals is a terminal and every other symbol
// is a variable. Variables are ordered by the first rule they head; several
// rules with the same head are merged. If start is empty, the head of the
// first rule is the start symbol.
//
// Every error returned matches gerrors.ErrMalformedGrammar.
func Parse(terminals []string, start string, rules ...string) (Grammar, error) {
	termSet := util.StringSetOf(terminals)

	var vars []string
	byHead := map[string][][]string{}
	for i, ruleStr := range rules {
		r, err := ParseRule(ruleStr)
		if err != nil {
			return Grammar{}, gerrors.New(fmt.Sprintf("rule %d", i+1), err, gerrors.ErrMalformedGrammar)
		}
		if termSet.Has(r.NonTerminal) {
			return Grammar{}, gerrors.Malformed(fmt.Sprintf("rule %d: terminal %q cannot head a rule", i+1, r.NonTerminal))
		}
		if _, ok := byHead[r.NonTerminal]; !ok {
			vars = append(vars, r.NonTerminal)
		}
		byHead[r.NonTerminal] = append(byHead[r.NonTerminal], r.Productions...)
	}

	// a symbol that is not a terminal must head some rule
	varSet := util.StringSetOf(vars)
	for _, head := range vars {
		for _, alt := range byHead[head] {
			for _, sym := range alt {
				if !termSet.Has(sym) && !varSet.Has(sym) {
					return Grammar{}, gerrors.Malformed(fmt.Sprintf("symbol %q in rule for %s is not a terminal and has no rule", sym, head))
				}
			}
		}
	}

	if start == "" && len(vars) > 0 {
		start = vars[0]
	}

	return FromStrings(vars, terminals, byHead, start)
}

// MustParse is Parse but panics if the grammar cannot be created.
func MustParse(terminals []string, start string, rules ...string) Grammar {
	g, err := Parse(terminals, start, rules...)
	if err != nil {
		panic(err.Error())
	}
	return g
}
