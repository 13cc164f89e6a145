package repl

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dekarrin/greibach/internal/gerrors"
	"github.com/dekarrin/greibach/internal/grammar"
	"github.com/dekarrin/greibach/internal/input"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func init() {
	color.NoColor = true
}

func Test_ParseCommand(t *testing.T) {
	testCases := []struct {
		name   string
		input  string
		expect Command
	}{
		{
			name:   "blank",
			input:  "   ",
			expect: Command{},
		},
		{
			name:   "verb only",
			input:  "show",
			expect: Command{Verb: "SHOW", Args: []string{}},
		},
		{
			name:   "alias expanded",
			input:  "gnf steps",
			expect: Command{Verb: "CONVERT", Args: []string{"steps"}, Text: "steps"},
		},
		{
			name:   "args keep case",
			input:  "RULE  S -> a S | b ",
			expect: Command{Verb: "RULE", Args: []string{"S", "->", "a", "S", "|", "b"}, Text: "S -> a S | b"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			actual := ParseCommand(tc.input)

			assert.Equal(tc.expect.Verb, actual.Verb)
			assert.Equal(tc.expect.Text, actual.Text)
			assert.Len(actual.Args, len(tc.expect.Args))
			for i := range tc.expect.Args {
				assert.Equal(tc.expect.Args[i], actual.Args[i])
			}
		})
	}
}

func Test_Session_RunUntilQuit(t *testing.T) {
	assert := assert.New(t)
	script := strings.Join([]string{
		"TERMINALS a b",
		"RULE S -> A A | a",
		"RULE A -> S S | b",
		"ORDER A S",
		"CONVERT",
		"QUIT",
		"SHOW",
	}, "\n")
	var out bytes.Buffer
	sess := setupSession(script, &out)

	err := sess.RunUntilQuit()

	assert.NoError(err)
	output := out.String()
	assert.Contains(output, "Added S -> A A | a\n")
	assert.Contains(output, "Order is now A S\n")
	assert.Contains(output, "A → b A S\n")
	assert.Contains(output, "S-P → b A A\n")
	assert.True(strings.HasSuffix(output, "Goodbye\n"), "output does not end with goodbye:\n%s", output)
	assert.NotContains(output, "Terminals: a b\nStart:")
}

func Test_Session_RunUntilQuit_userErrorsDoNotEndSession(t *testing.T) {
	assert := assert.New(t)
	script := "FLY\nSHOW\nEXAMPLE 1\nSHOW\n"
	var out bytes.Buffer
	sess := setupSession(script, &out)

	err := sess.RunUntilQuit()

	assert.NoError(err)
	output := out.String()
	assert.Contains(output, `I don't know how to "FLY"`)
	assert.Contains(output, "There is no grammar yet")
	assert.Contains(output, "Order:     [A, S]\n")
	assert.Contains(output, "Goodbye\n")
}

func Test_Session_RunUntilQuit_ruleContinuation(t *testing.T) {
	assert := assert.New(t)
	script := "TERMINALS a b\nRULE S -> a S |\n| b |\na b\n"
	var out bytes.Buffer
	sess := setupSession(script, &out)

	err := sess.RunUntilQuit()

	assert.NoError(err)
	g, err := sess.Grammar()
	if !assert.NoError(err) {
		return
	}
	assert.Equal([]string{"S -> a S | b | a b"}, g.RuleStrings())
}

func Test_Session_Execute(t *testing.T) {
	testCases := []struct {
		name          string
		setup         []string
		cmd           string
		expectContain []string
		expectErr     string
	}{
		{
			name:          "help",
			cmd:           "HELP",
			expectContain: []string{"Here are the commands you can use:", "CONVERT [STEPS]", "LOAD FILE [NAME]"},
		},
		{
			name:          "show terminals",
			setup:         []string{"TERMINALS a b a"},
			cmd:           "TERMINALS",
			expectContain: []string{"Terminals: a b\n"},
		},
		{
			name:      "bad rule",
			cmd:       "RULE S a b",
			expectErr: "That rule is not valid",
		},
		{
			name:      "undeclared symbol",
			setup:     []string{"TERMINALS a", "RULE S -> a B"},
			cmd:       "SHOW",
			expectErr: "The grammar is not valid",
		},
		{
			name:          "start changed",
			setup:         []string{"TERMINALS a", "RULE S -> a T", "RULE T -> a", "START T"},
			cmd:           "SHOW",
			expectContain: []string{"Start:     T\n"},
		},
		{
			name:      "order not matching variables",
			setup:     []string{"EXAMPLE 1"},
			cmd:       "ORDER A Q",
			expectErr: "The ORDER does not match the grammar",
		},
		{
			name:          "convert with steps",
			setup:         []string{"EXAMPLE 1"},
			cmd:           "CONVERT STEPS",
			expectContain: []string{"Original production set.", "Production set elimination of A_r -> A_r α.", "S-P → "},
		},
		{
			name:      "convert with unknown argument",
			setup:     []string{"EXAMPLE 1"},
			cmd:       "CONVERT FAST",
			expectErr: "CONVERT only takes STEPS",
		},
		{
			name:      "convert failure",
			setup:     []string{"TERMINALS a", "RULE A -> A a"},
			cmd:       "CONVERT",
			expectErr: "Conversion with order [A] failed",
		},
		{
			name:          "all orders",
			setup:         []string{"EXAMPLE 2"},
			cmd:           "ALL",
			expectContain: []string{"[A, B, C]", "[C, B, A]", "GNF"},
		},
		{
			name:      "example out of range",
			cmd:       "EXAMPLE 9",
			expectErr: "EXAMPLE needs a number from 1 to 2",
		},
		{
			name:          "clear",
			setup:         []string{"EXAMPLE 1"},
			cmd:           "CLEAR",
			expectContain: []string{"Grammar cleared."},
		},
		{
			name:      "quit outside of run",
			cmd:       "QUIT",
			expectErr: "QUIT can only be used",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			sess := setupSession("", &bytes.Buffer{})
			for _, line := range tc.setup {
				_, err := sess.Execute(ParseCommand(line))
				if !assert.NoError(err, "setup command %q", line) {
					return
				}
			}

			actual, err := sess.Execute(ParseCommand(tc.cmd))

			if tc.expectErr != "" {
				if assert.Error(err) {
					assert.Contains(ConsoleMessage(err), tc.expectErr)
				}
				return
			}
			if !assert.NoError(err) {
				return
			}
			for _, s := range tc.expectContain {
				assert.Contains(actual, s)
			}
		})
	}
}

func Test_Session_Execute_convertFailureWrapsPipelineError(t *testing.T) {
	assert := assert.New(t)
	sess := setupSession("", &bytes.Buffer{})
	for _, line := range []string{"TERMINALS a", "RULE A -> A a"} {
		_, err := sess.Execute(ParseCommand(line))
		assert.NoError(err)
	}

	_, err := sess.Execute(ParseCommand("CONVERT"))

	assert.ErrorIs(err, gerrors.ErrUnremovableRecursion)
}

func Test_Session_Execute_allRefusesLargeGrammars(t *testing.T) {
	assert := assert.New(t)
	sess := setupSession("", &bytes.Buffer{})
	rules := []string{"TERMINALS a"}
	for _, v := range []string{"A", "B", "C", "D", "E", "F", "G", "H"} {
		rules = append(rules, "RULE "+v+" -> a")
	}
	for _, line := range rules {
		_, err := sess.Execute(ParseCommand(line))
		assert.NoError(err)
	}

	_, err := sess.Execute(ParseCommand("ALL"))

	if assert.Error(err) {
		assert.Contains(ConsoleMessage(err), "40320 orderings")
	}
}

func Test_Session_Execute_load(t *testing.T) {
	assert := assert.New(t)
	path := filepath.Join(t.TempDir(), "g.cfg")
	content := `format = "CFG"

[[grammar]]
name = "first"
terminals = ["a"]
rules = ["S -> a S | a"]

[[grammar]]
name = "second one"
terminals = ["b"]
rules = ["T -> b"]
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	sess := setupSession("", &bytes.Buffer{})

	out, err := sess.Execute(ParseCommand("LOAD " + path + " second one"))
	assert.NoError(err)
	assert.Equal("Loaded \"second one\".\n", out)

	g, err := sess.Grammar()
	if assert.NoError(err) {
		assert.Equal(grammar.V("T"), g.Start())
	}

	_, err = sess.Execute(ParseCommand("LOAD " + path + " third"))
	if assert.Error(err) {
		assert.Contains(ConsoleMessage(err), "it has first and second one")
	}
}

func setupSession(script string, out *bytes.Buffer) *Session {
	return NewWithReader(input.NewDirectReader(strings.NewReader(script)), out, nil)
}
