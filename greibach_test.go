package greibach

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func Test_Convert(t *testing.T) {
	testCases := []struct {
		name      string
		terminals []string
		rules     []string
		order     []string
		expect    []string
		expectErr error
	}{
		{
			name:      "example 1 with A first",
			terminals: []string{"a", "b"},
			rules:     []string{"A -> S S | b", "S -> A A | a"},
			expect: []string{
				"A -> b A S | a S | b A S-P S | a S-P S | b",
				"S -> b A | a | b A S-P | a S-P",
				"S-P -> b A A | a A | b A S-P A | a S-P A | b A A S-P | a A S-P | b A S-P A S-P | a S-P A S-P",
			},
		},
		{
			name:      "explicit order",
			terminals: []string{"a", "b"},
			rules:     []string{"S -> A A | a", "A -> S S | b"},
			order:     []string{"A", "S"},
			expect: []string{
				"A -> b A S | a S | b A S-P S | a S-P S | b",
				"S -> b A | a | b A S-P | a S-P",
				"S-P -> b A A | a A | b A S-P A | a S-P A | b A A S-P | a A S-P | b A S-P A S-P | a S-P A S-P",
			},
		},
		{
			name:      "unremovable recursion",
			terminals: []string{"a"},
			rules:     []string{"A -> A a"},
			expectErr: ErrUnremovableRecursion,
		},
		{
			name:      "order naming unknown variable",
			terminals: []string{"a"},
			rules:     []string{"A -> a"},
			order:     []string{"B"},
			expectErr: ErrMalformedGrammar,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			g, err := Parse(tc.terminals, "", tc.rules...)
			if !assert.NoError(err) {
				return
			}

			var actual Grammar
			if tc.order != nil {
				actual, err = ConvertOrder(g, tc.order)
			} else {
				actual, err = Convert(g)
			}

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

func Test_Parse_malformed(t *testing.T) {
	assert := assert.New(t)

	_, err := Parse([]string{"a"}, "", "S -> a B")

	assert.ErrorIs(err, ErrMalformedGrammar)
}

func Test_ConvertAll_matchesExplore(t *testing.T) {
	assert := assert.New(t)
	g := Examples()[1].Grammar

	sequential := ConvertAll(g)
	parallel, err := Explore(context.Background(), g, 3)

	if !assert.NoError(err) {
		return
	}
	if !assert.Len(parallel, len(sequential)) {
		return
	}
	assert.Len(sequential, 6)
	for i := range sequential {
		assert.Equal(sequential[i].OrderString(), parallel[i].OrderString())
		assert.Equal(sequential[i].Err == nil, parallel[i].Err == nil, "order %s", sequential[i].OrderString())
		if sequential[i].Err == nil {
			assert.True(sequential[i].Grammar.Equal(parallel[i].Grammar), "order %s", sequential[i].OrderString())
		}
	}
}

func Test_NewSession(t *testing.T) {
	assert := assert.New(t)
	color.NoColor = true
	var out bytes.Buffer

	sess, err := NewSession(strings.NewReader("EXAMPLE 2\nCONVERT\n"), &out, false, nil)
	if !assert.NoError(err) {
		return
	}
	defer sess.Close()

	assert.NoError(sess.RunUntilQuit())
	assert.Contains(out.String(), "C-P → ")
}
