package gnf

import (
	"testing"

	"github.com/dekarrin/greibach/internal/gerrors"
	"github.com/dekarrin/greibach/internal/grammar"
	"github.com/stretchr/testify/assert"
)

func Test_ResolveIndirect(t *testing.T) {
	testCases := []struct {
		name      string
		terminals []string
		rules     []string
		expect    []string
	}{
		{
			name:      "no variable heads",
			terminals: []string{"a", "b"},
			rules: []string{
				"S -> a A | b",
				"A -> a",
			},
			expect: []string{
				"S -> a A | b",
				"A -> a",
			},
		},
		{
			name:      "head of later variable is earlier variable",
			terminals: []string{"a", "b"},
			rules: []string{
				"A -> S S | b",
				"S -> A A | a",
			},
			expect: []string{
				"A -> S S | b",
				"S -> S S A | b A | a",
			},
		},
		{
			name:      "head of earlier variable is later variable",
			terminals: []string{"a", "b"},
			rules: []string{
				"S -> A A | a",
				"A -> S S | b",
			},
			expect: []string{
				"S -> A A | a",
				"A -> A A S | a S | b",
			},
		},
		{
			name:      "substitution chains through pairs in order",
			terminals: []string{"a", "b"},
			rules: []string{
				"A -> B C",
				"B -> C A | b",
				"C -> A B | a",
			},
			expect: []string{
				"A -> B C",
				"B -> C A | b",
				"C -> C A C B | b C B | a",
			},
		},
		{
			name:      "duplicate alternatives collapse",
			terminals: []string{"a"},
			rules: []string{
				"A -> a | a a",
				"B -> A a | a a",
			},
			expect: []string{
				"A -> a | a a",
				"B -> a a | a a a",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			g := setupGrammar(tc.terminals, tc.rules)
			before := g.String()

			actual, err := ResolveIndirect(g)

			if !assert.NoError(err) {
				return
			}
			assert.Equal(tc.expect, actual.RuleStrings())
			assert.Equal(before, g.String(), "input grammar was modified")
		})
	}
}

func Test_EliminateLeftRecursion(t *testing.T) {
	testCases := []struct {
		name      string
		terminals []string
		rules     []string
		expect    []string
		expectErr error
	}{
		{
			name:      "grammar with no left recursion",
			terminals: []string{"a", "b"},
			rules: []string{
				"S -> b A | b",
				"A -> a",
			},
			expect: []string{
				"S -> b A | b",
				"A -> a",
			},
		},
		{
			name:      "immediate left recursion and other prods",
			terminals: []string{"a", "b"},
			rules: []string{
				"S -> b A | b",
				"A -> A a | a",
			},
			expect: []string{
				"S -> b A | b",
				"A -> a | a A-P",
				"A-P -> a | a A-P",
			},
		},
		{
			name:      "several recursive and non-recursive alternatives",
			terminals: []string{"a", "b"},
			rules: []string{
				"S -> S S A | b A | a",
				"A -> S S | b",
			},
			expect: []string{
				"S -> b A | a | b A S-P | a S-P",
				"A -> S S | b",
				"S-P -> S A | S A S-P",
			},
		},
		{
			name:      "self loop is dropped",
			terminals: []string{"a"},
			rules: []string{
				"S -> S | a",
			},
			expect: []string{
				"S -> a",
			},
		},
		{
			name:      "self loop dropped alongside recursion",
			terminals: []string{"a", "b"},
			rules: []string{
				"S -> S | S b | a",
			},
			expect: []string{
				"S -> a | a S-P",
				"S-P -> b | b S-P",
			},
		},
		{
			name:      "only left-recursive alternatives",
			terminals: []string{"a"},
			rules: []string{
				"A -> A a",
			},
			expectErr: gerrors.ErrUnremovableRecursion,
		},
		{
			name:      "only self loop",
			terminals: []string{"a"},
			rules: []string{
				"S -> a A",
				"A -> A",
			},
			expectErr: gerrors.ErrUnremovableRecursion,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			g := setupGrammar(tc.terminals, tc.rules)

			actual, err := EliminateLeftRecursion(g, NewNamer(g))

			if tc.expectErr != nil {
				assert.ErrorIs(err, tc.expectErr)
				return
			}
			if !assert.NoError(err) {
				return
			}
			assert.Equal(tc.expect, actual.RuleStrings())
		})
	}
}

func Test_NormalizeHeads(t *testing.T) {
	testCases := []struct {
		name      string
		terminals []string
		rules     []string
		expect    []string
		expectErr error
	}{
		{
			name:      "already terminal-headed",
			terminals: []string{"a", "b"},
			rules: []string{
				"S -> a A | b",
				"A -> a",
			},
			expect: []string{
				"S -> a A | b",
				"A -> a",
			},
		},
		{
			name:      "heads substituted from last variable back",
			terminals: []string{"a", "b"},
			rules: []string{
				"A -> B C",
				"B -> C A | b",
				"C -> a",
			},
			expect: []string{
				"A -> a A C | b C",
				"B -> a A | b",
				"C -> a",
			},
		},
		{
			name:      "head two variables later is substituted",
			terminals: []string{"a", "b", "c"},
			rules: []string{
				"A -> C a | b",
				"B -> b",
				"C -> c",
			},
			expect: []string{
				"A -> c a | b",
				"B -> b",
				"C -> c",
			},
		},
		{
			name:      "auxiliary variable heads substituted",
			terminals: []string{"a", "b"},
			rules: []string{
				"A -> S S | b",
				"S -> S S A | b A | a",
			},
			expect: []string{
				"A -> b A S | a S | b A S-P S | a S-P S | b",
				"S -> b A | a | b A S-P | a S-P",
				"S-P -> b A A | a A | b A S-P A | a S-P A | b A A S-P | a A S-P | b A S-P A S-P | a S-P A S-P",
			},
		},
		{
			name:      "head that precedes its variable is reported",
			terminals: []string{"a", "b"},
			rules: []string{
				"A -> a",
				"B -> A b",
			},
			expectErr: gerrors.ErrIncompleteNormalization,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			g := setupGrammar(tc.terminals, tc.rules)
			primary := len(g.Variables())
			g, err := EliminateLeftRecursion(g, NewNamer(g))
			if !assert.NoError(err) {
				return
			}

			actual, err := NormalizeHeads(g, primary)

			if tc.expectErr != nil {
				assert.ErrorIs(err, tc.expectErr)
				return
			}
			if !assert.NoError(err) {
				return
			}
			assert.Equal(tc.expect, actual.RuleStrings())
		})
	}
}

func Test_NormalizeHeads_badPrimaryCount(t *testing.T) {
	assert := assert.New(t)
	g := setupGrammar([]string{"a"}, []string{"S -> a"})

	_, err := NormalizeHeads(g, 2)

	assert.ErrorIs(err, gerrors.ErrBadArgument)
}

func Test_SegmentTerminals(t *testing.T) {
	testCases := []struct {
		name      string
		terminals []string
		rules     []string
		expect    []string
		expectErr error
	}{
		{
			name:      "nothing to lift",
			terminals: []string{"a", "b"},
			rules: []string{
				"S -> a S | b",
			},
			expect: []string{
				"S -> a S | b",
			},
		},
		{
			name:      "terminal after head",
			terminals: []string{"a", "b"},
			rules: []string{
				"S -> a S b | a b",
			},
			expect: []string{
				"S -> a S X-b | a X-b",
				"X-b -> b",
			},
		},
		{
			name:      "generators in order of first occurrence",
			terminals: []string{"a", "b", "c"},
			rules: []string{
				"S -> a A c",
				"A -> b c b | a",
			},
			expect: []string{
				"S -> a A X-c",
				"A -> b X-c X-b | a",
				"X-c -> c",
				"X-b -> b",
			},
		},
		{
			name:      "variable head",
			terminals: []string{"a"},
			rules: []string{
				"S -> A a",
				"A -> a",
			},
			expectErr: gerrors.ErrIncompleteNormalization,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			g := setupGrammar(tc.terminals, tc.rules)

			actual, err := SegmentTerminals(g, NewNamer(g))

			if tc.expectErr != nil {
				assert.ErrorIs(err, tc.expectErr)
				return
			}
			if !assert.NoError(err) {
				return
			}
			assert.Equal(tc.expect, actual.RuleStrings())
			assert.True(actual.IsGNF())
			assert.Equal(g.Terminals(), actual.Terminals(), "terminals must remain unchanged")
		})
	}
}

func Test_Namer(t *testing.T) {
	assert := assert.New(t)

	S := grammar.V("S")
	a := grammar.T("a")
	g := setupGrammar([]string{"a"}, []string{"S -> a"})
	names := NewNamer(g)

	sp, err := names.RecursionBreak(S)
	assert.NoError(err)
	assert.Equal("S-P", sp.String())

	_, err = names.RecursionBreak(S)
	assert.ErrorIs(err, gerrors.ErrNameCollision)

	xa, minted, err := names.TerminalLift(a)
	assert.NoError(err)
	assert.True(minted)
	assert.Equal("X-a", xa.String())

	again, minted, err := names.TerminalLift(a)
	assert.NoError(err)
	assert.False(minted)
	assert.Equal(xa, again)

	_, _, err = names.TerminalLift(S)
	assert.ErrorIs(err, gerrors.ErrMalformedGrammar)
}

func Test_Namer_reservesExistingSynthetics(t *testing.T) {
	assert := assert.New(t)

	S := grammar.V("S")
	SP := grammar.Synthetic(grammar.RecursionBreak, S)
	g, err := grammar.New(
		[]grammar.Symbol{S, SP},
		[]grammar.Symbol{grammar.T("a")},
		grammar.ProductionSet{
			S:  {grammar.P(grammar.T("a"), SP)},
			SP: {grammar.P(grammar.T("a"))},
		},
		S,
	)
	if !assert.NoError(err) {
		return
	}

	_, err = NewNamer(g).RecursionBreak(S)
	assert.ErrorIs(err, gerrors.ErrNameCollision)

	// a source variable spelled like a synthetic one does not collide
	lookalike := setupGrammar([]string{"a"}, []string{"S -> a S-P", "S-P -> a"})
	sp, err := NewNamer(lookalike).RecursionBreak(S)
	assert.NoError(err)
	assert.NotEqual(grammar.V("S-P"), sp)
}

func setupGrammar(terminals []string, rules []string) grammar.Grammar {
	return grammar.MustParse(terminals, "", rules...)
}
