// Package grammar contains the model of an epsilon-free context-free grammar
// used as the input and output of every transformation stage: symbols,
// productions, production sets, and the Grammar that ties them to a variable
// order, a terminal set, and a start symbol.
//
// Grammar values are immutable from the outside. Every accessor returns a copy,
// so a Grammar can be shared freely between transformations run on different
// variable orders.
package grammar

import (
	"fmt"
	"strings"

	"github.com/dekarrin/greibach/internal/gerrors"
	"github.com/dekarrin/greibach/internal/util"
	"github.com/dekarrin/rezi"
)

// ProductionSet maps each variable to its ordered list of alternatives.
type ProductionSet map[Symbol][]Production

// Copy returns a deep copy of ps.
func (ps ProductionSet) Copy() ProductionSet {
	if ps == nil {
		return nil
	}
	cp := make(ProductionSet, len(ps))
	for v, alts := range ps {
		altsCopy := make([]Production, len(alts))
		for i := range alts {
			altsCopy[i] = alts[i].Copy()
		}
		cp[v] = altsCopy
	}
	return cp
}

// Grammar is the tuple (variable order, terminals, productions, start). The
// position of a variable in the order is its index. The zero value is an empty
// grammar that fails validation; use New, FromStrings, or Parse to get a valid
// one.
type Grammar struct {
	order     []Symbol
	terminals []Symbol
	rules     ProductionSet
	start     Symbol
}

// New creates a Grammar from the given parts after checking that they form a
// valid grammar. The arguments are copied; later modification of them by the
// caller does not affect the returned Grammar.
//
// The returned error, if non-nil, will return true for errors.Is with
// gerrors.ErrMalformedGrammar.
func New(order []Symbol, terminals []Symbol, rules ProductionSet, start Symbol) (Grammar, error) {
	g := Grammar{
		order:     copySymbols(order),
		terminals: copySymbols(terminals),
		rules:     rules.Copy(),
		start:     start,
	}
	if g.rules == nil {
		g.rules = ProductionSet{}
	}

	if err := g.Validate(); err != nil {
		return Grammar{}, err
	}
	return g, nil
}

// FromStrings creates a Grammar out of plain identifiers. Each name in vars is
// a variable, in order, and each name in terms is a terminal. The keys of rules
// are variable names and each alternative is a list of symbol names; a name
// that is in neither vars nor terms makes the grammar malformed.
func FromStrings(vars []string, terms []string, rules map[string][][]string, start string) (Grammar, error) {
	varSet := util.StringSetOf(vars)
	termSet := util.StringSetOf(terms)

	order := make([]Symbol, len(vars))
	for i := range vars {
		order[i] = V(vars[i])
	}
	terminals := make([]Symbol, len(terms))
	for i := range terms {
		terminals[i] = T(terms[i])
	}

	ps := ProductionSet{}
	for _, head := range util.OrderedKeys(rules) {
		if !varSet.Has(head) {
			return Grammar{}, gerrors.Malformed(fmt.Sprintf("rule head %q is not a declared variable", head))
		}
		var alts []Production
		for _, alt := range rules[head] {
			prod := make(Production, len(alt))
			for i, name := range alt {
				switch {
				case varSet.Has(name):
					prod[i] = V(name)
				case termSet.Has(name):
					prod[i] = T(name)
				default:
					return Grammar{}, gerrors.Malformed(fmt.Sprintf("symbol %q in rule for %s is neither a declared variable nor a declared terminal", name, head))
				}
			}
			alts = append(alts, prod)
		}
		ps[V(head)] = alts
	}

	return New(order, terminals, ps, V(start))
}

// Validate checks that g satisfies every grammar invariant. It returns an error
// that matches gerrors.ErrMalformedGrammar describing the first violation
// found, or nil if g is valid.
func (g Grammar) Validate() error {
	if len(g.order) < 1 {
		return gerrors.Malformed("grammar has no variables")
	}

	varSet := util.NewKeySet[Symbol]()
	sourceVarNames := util.NewStringSet()
	for _, v := range g.order {
		if !v.IsVariable() {
			return gerrors.Malformed(fmt.Sprintf("%q in variable order is not a variable", v.String()))
		}
		if varSet.Has(v) {
			return gerrors.Malformed(fmt.Sprintf("variable %s occurs more than once in variable order", v))
		}
		varSet.Add(v)
		if v.Origin() == Source {
			sourceVarNames.Add(v.Name())
		}
	}

	termSet := util.NewKeySet[Symbol]()
	for _, t := range g.terminals {
		if !t.IsTerminal() || t.Name() == "" {
			return gerrors.Malformed(fmt.Sprintf("%q in terminal set is not a terminal", t.String()))
		}
		if termSet.Has(t) {
			return gerrors.Malformed(fmt.Sprintf("terminal %s occurs more than once in terminal set", t))
		}
		if sourceVarNames.Has(t.Name()) {
			return gerrors.Malformed(fmt.Sprintf("%q is declared as both a terminal and a variable", t.Name()))
		}
		termSet.Add(t)
	}

	if !varSet.Has(g.start) {
		return gerrors.Malformed(fmt.Sprintf("start symbol %q is not in variable order", g.start.String()))
	}

	for v := range g.rules {
		if !varSet.Has(v) {
			return gerrors.Malformed(fmt.Sprintf("production set has rules for %q, which is not in variable order", v.String()))
		}
	}

	for _, v := range g.order {
		alts := g.rules[v]
		if len(alts) < 1 {
			return gerrors.Malformed(fmt.Sprintf("variable %s has no productions", v))
		}
		for _, alt := range alts {
			if len(alt) < 1 {
				return gerrors.Malformed(fmt.Sprintf("variable %s has an empty production", v))
			}
			for _, sym := range alt {
				if sym.IsTerminal() {
					if !termSet.Has(sym) {
						return gerrors.Malformed(fmt.Sprintf("production %s -> %s uses undeclared terminal %s", v, alt, sym))
					}
				} else if !varSet.Has(sym) {
					return gerrors.Malformed(fmt.Sprintf("production %s -> %s uses undeclared variable %s", v, alt, sym))
				}
			}
		}
	}

	return nil
}

// Variables returns the variable order of g. The index of a variable is its
// position in the returned slice.
func (g Grammar) Variables() []Symbol {
	return copySymbols(g.order)
}

// Terminals returns the terminals of g in the order they were declared.
func (g Grammar) Terminals() []Symbol {
	return copySymbols(g.terminals)
}

// Rules returns a copy of the production set of g.
func (g Grammar) Rules() ProductionSet {
	return g.rules.Copy()
}

// Alternatives returns a copy of the alternatives of v. It returns nil if v is
// not a variable of g.
func (g Grammar) Alternatives(v Symbol) []Production {
	alts, ok := g.rules[v]
	if !ok {
		return nil
	}
	cp := make([]Production, len(alts))
	for i := range alts {
		cp[i] = alts[i].Copy()
	}
	return cp
}

// Start returns the start variable of g.
func (g Grammar) Start() Symbol {
	return g.start
}

// Index returns the position of v in the variable order of g, or -1 if v is
// not a variable of g.
func (g Grammar) Index(v Symbol) int {
	for i := range g.order {
		if g.order[i] == v {
			return i
		}
	}
	return -1
}

// AlternativeCount returns the total number of alternatives across every
// variable of g.
func (g Grammar) AlternativeCount() int {
	var count int
	for _, alts := range g.rules {
		count += len(alts)
	}
	return count
}

// WithOrder returns a copy of g whose variable order is the given one. The
// order must contain every variable of g exactly once.
func (g Grammar) WithOrder(order []Symbol) (Grammar, error) {
	if len(order) != len(g.order) {
		return Grammar{}, gerrors.Malformed(fmt.Sprintf("order has %d variables but grammar has %d", len(order), len(g.order)))
	}
	have := util.KeySetOf(g.order)
	seen := util.NewKeySet[Symbol]()
	for _, v := range order {
		if !have.Has(v) {
			return Grammar{}, gerrors.Malformed(fmt.Sprintf("order contains %q, which is not a variable of the grammar", v.String()))
		}
		if seen.Has(v) {
			return Grammar{}, gerrors.Malformed(fmt.Sprintf("order contains %s more than once", v))
		}
		seen.Add(v)
	}

	return Grammar{
		order:     copySymbols(order),
		terminals: copySymbols(g.terminals),
		rules:     g.rules.Copy(),
		start:     g.start,
	}, nil
}

// IsGNF returns whether every alternative of every variable in g consists of
// exactly one terminal followed by zero or more variables.
func (g Grammar) IsGNF() bool {
	for _, alts := range g.rules {
		for _, alt := range alts {
			if !alt.IsGNF() {
				return false
			}
		}
	}
	return true
}

// RuleString returns the rule for v as a single line of the form
// "A -> x y | z". It returns the empty string if v is not a variable of g.
func (g Grammar) RuleString(v Symbol) string {
	alts, ok := g.rules[v]
	if !ok {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(v.String())
	sb.WriteString(" -> ")
	for i := range alts {
		if i > 0 {
			sb.WriteString(" | ")
		}
		sb.WriteString(alts[i].String())
	}
	return sb.String()
}

// RuleStrings returns RuleString for every variable of g, in variable order.
func (g Grammar) RuleStrings() []string {
	lines := make([]string, len(g.order))
	for i := range g.order {
		lines[i] = g.RuleString(g.order[i])
	}
	return lines
}

// String returns every rule of g on its own line, in variable order.
func (g Grammar) String() string {
	return strings.Join(g.RuleStrings(), "\n")
}

// Equal returns whether g and o have the same variable order, terminals, start
// symbol, and alternatives in the same order. o may be a Grammar or a
// *Grammar.
func (g Grammar) Equal(o any) bool {
	other, ok := o.(Grammar)
	if !ok {
		otherPtr, ok := o.(*Grammar)
		if !ok || otherPtr == nil {
			return false
		}
		other = *otherPtr
	}

	if g.start != other.start {
		return false
	}
	if !equalSymbols(g.order, other.order) || !equalSymbols(g.terminals, other.terminals) {
		return false
	}
	if len(g.rules) != len(other.rules) {
		return false
	}
	for v, alts := range g.rules {
		otherAlts, ok := other.rules[v]
		if !ok || !util.EqualSlices(alts, otherAlts) {
			return false
		}
	}
	return true
}

// MarshalBinary converts g into a slice of bytes that can be decoded with
// UnmarshalBinary.
func (g Grammar) MarshalBinary() ([]byte, error) {
	var data []byte

	data = append(data, encSymbols(g.order)...)
	data = append(data, encSymbols(g.terminals)...)
	data = append(data, rezi.EncBinary(g.start)...)
	for _, v := range g.order {
		alts := g.rules[v]
		data = append(data, rezi.EncInt(len(alts))...)
		for i := range alts {
			data = append(data, rezi.EncBinary(alts[i])...)
		}
	}

	return data, nil
}

// UnmarshalBinary decodes a slice of bytes created by MarshalBinary into g. The
// decoded grammar is validated before g is modified.
func (g *Grammar) UnmarshalBinary(data []byte) error {
	order, n, err := decSymbols(data)
	if err != nil {
		return fmt.Errorf("variable order: %w", err)
	}
	data = data[n:]

	terminals, n, err := decSymbols(data)
	if err != nil {
		return fmt.Errorf("terminals: %w", err)
	}
	data = data[n:]

	var start Symbol
	n, err = rezi.DecBinary(data, &start)
	if err != nil {
		return fmt.Errorf("start symbol: %w", err)
	}
	data = data[n:]

	rules := ProductionSet{}
	for _, v := range order {
		count, n, err := rezi.DecInt(data)
		if err != nil {
			return fmt.Errorf("rule %s: alternative count: %w", v, err)
		}
		data = data[n:]
		if count < 0 {
			return fmt.Errorf("rule %s: alternative count < 0", v)
		}

		alts := make([]Production, count)
		for i := 0; i < count; i++ {
			n, err = rezi.DecBinary(data, &alts[i])
			if err != nil {
				return fmt.Errorf("rule %s: alternative %d: %w", v, i, err)
			}
			data = data[n:]
		}
		rules[v] = alts
	}

	decoded, err := New(order, terminals, rules, start)
	if err != nil {
		return err
	}
	*g = decoded
	return nil
}

func encSymbols(syms []Symbol) []byte {
	data := rezi.EncInt(len(syms))
	for i := range syms {
		data = append(data, rezi.EncBinary(syms[i])...)
	}
	return data
}

func decSymbols(data []byte) ([]Symbol, int, error) {
	count, n, err := rezi.DecInt(data)
	if err != nil {
		return nil, 0, fmt.Errorf("count: %w", err)
	}
	if count < 0 {
		return nil, 0, fmt.Errorf("count < 0")
	}
	total := n
	data = data[n:]

	syms := make([]Symbol, count)
	for i := 0; i < count; i++ {
		n, err = rezi.DecBinary(data, &syms[i])
		if err != nil {
			return nil, 0, fmt.Errorf("symbol %d: %w", i, err)
		}
		data = data[n:]
		total += n
	}
	return syms, total, nil
}

func copySymbols(syms []Symbol) []Symbol {
	if syms == nil {
		return nil
	}
	cp := make([]Symbol, len(syms))
	copy(cp, syms)
	return cp
}

func equalSymbols(s1, s2 []Symbol) bool {
	if len(s1) != len(s2) {
		return false
	}
	for i := range s1 {
		if s1[i] != s2[i] {
			return false
		}
	}
	return true
}
