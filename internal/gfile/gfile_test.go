package gfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dekarrin/greibach/internal/gerrors"
	"github.com/dekarrin/greibach/internal/grammar"
	"github.com/stretchr/testify/assert"
)

func Test_Unmarshal(t *testing.T) {
	testCases := []struct {
		name        string
		input       string
		expectNames []string
		expectRules [][]string
		expectErr   bool
	}{
		{
			name: "single grammar",
			input: `format = "CFG"

[[grammar]]
name = "tiny"
terminals = ["a"]
rules = ["S -> a S | a"]
`,
			expectNames: []string{"tiny"},
			expectRules: [][]string{{"S -> a S | a"}},
		},
		{
			name: "variable order given",
			input: `format = "CFG"
type = "GRAMMAR"

[[grammar]]
name = "ordered"
start = "S"
variables = ["A", "S"]
terminals = ["a", "b"]
rules = ["S -> A A | a", "A -> S S | b"]
`,
			expectNames: []string{"ordered"},
			expectRules: [][]string{{"A -> S S | b", "S -> A A | a"}},
		},
		{
			name: "missing format",
			input: `[[grammar]]
name = "tiny"
terminals = ["a"]
rules = ["S -> a"]
`,
			expectErr: true,
		},
		{
			name: "manifest type",
			input: `format = "CFG"
type = "MANIFEST"
files = ["other.cfg"]
`,
			expectErr: true,
		},
		{
			name:      "no grammars",
			input:     `format = "CFG"`,
			expectErr: true,
		},
		{
			name: "duplicate names",
			input: `format = "CFG"

[[grammar]]
name = "g"
terminals = ["a"]
rules = ["S -> a"]

[[grammar]]
name = "g"
terminals = ["b"]
rules = ["S -> b"]
`,
			expectErr: true,
		},
		{
			name: "variables not a permutation of heads",
			input: `format = "CFG"

[[grammar]]
name = "g"
variables = ["S", "Q"]
terminals = ["a"]
rules = ["S -> a"]
`,
			expectErr: true,
		},
		{
			name: "bad rule",
			input: `format = "CFG"

[[grammar]]
name = "g"
terminals = ["a"]
rules = ["S a"]
`,
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			actual, err := Unmarshal([]byte(tc.input))

			if tc.expectErr {
				assert.Error(err)
				return
			}
			if !assert.NoError(err) {
				return
			}
			assert.Equal(tc.expectNames, Names(actual))
			for i := range actual {
				assert.Equal(tc.expectRules[i], actual[i].Grammar.RuleStrings())
			}
		})
	}
}

func Test_Unmarshal_malformedGrammar(t *testing.T) {
	assert := assert.New(t)

	_, err := Unmarshal([]byte(`format = "CFG"

[[grammar]]
name = "undeclared"
terminals = ["a"]
rules = ["A -> B"]
`))

	assert.ErrorIs(err, gerrors.ErrMalformedGrammar)
}

func Test_Load_manifest(t *testing.T) {
	assert := assert.New(t)
	dir := t.TempDir()

	writeFile(t, dir, "main.cfg", `format = "CFG"
type = "MANIFEST"
files = ["one.cfg", "sub/two.cfg"]
`)
	writeFile(t, dir, "one.cfg", `format = "CFG"

[[grammar]]
name = "one"
terminals = ["a"]
rules = ["S -> a"]
`)
	writeFile(t, dir, "sub/two.cfg", `format = "CFG"
type = "MANIFEST"
files = ["three.cfg", "../main.cfg"]
`)
	writeFile(t, dir, "sub/three.cfg", `format = "CFG"

[[grammar]]
name = "three"
terminals = ["b"]
rules = ["T -> b T | b"]
`)

	actual, err := Load(filepath.Join(dir, "main.cfg"))
	if !assert.NoError(err) {
		return
	}

	assert.Equal([]string{"one", "three"}, Names(actual))
}

func Test_Load_emptyManifest(t *testing.T) {
	assert := assert.New(t)
	dir := t.TempDir()
	writeFile(t, dir, "main.cfg", `format = "CFG"
type = "MANIFEST"
files = []
`)

	_, err := Load(filepath.Join(dir, "main.cfg"))

	assert.ErrorIs(err, ErrManifestEmpty)
}

func Test_Load_missingFile(t *testing.T) {
	assert := assert.New(t)

	_, err := Load(filepath.Join(t.TempDir(), "nope.cfg"))

	assert.ErrorIs(err, os.ErrNotExist)
}

func Test_ScanFileInfo(t *testing.T) {
	testCases := []struct {
		name   string
		input  string
		expect FileInfo
	}{
		{
			name:   "type given",
			input:  "format = \"CFG\"\ntype = \"MANIFEST\"\nfiles = [\"a.cfg\"]\n",
			expect: FileInfo{Format: "CFG", Type: "MANIFEST"},
		},
		{
			name:   "type defaults to grammar",
			input:  "format = \"CFG\"\n\n[[grammar]]\nname = \"x\"\n",
			expect: FileInfo{Format: "CFG", Type: "GRAMMAR"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			actual, err := ScanFileInfo([]byte(tc.input))

			if !assert.NoError(err) {
				return
			}
			assert.Equal(tc.expect, actual)
		})
	}
}

func Test_LoadFileInfo(t *testing.T) {
	assert := assert.New(t)
	dir := t.TempDir()

	writeFile(t, dir, "main.cfg", `format = "CFG"
type = "MANIFEST"
files = ["one.cfg"]
`)

	actual, err := LoadFileInfo(filepath.Join(dir, "main.cfg"))
	if assert.NoError(err) {
		assert.Equal(FileInfo{Format: "CFG", Type: "MANIFEST"}, actual)
	}

	_, err = LoadFileInfo(filepath.Join(dir, "missing.cfg"))
	assert.Error(err)
}

func Test_Examples(t *testing.T) {
	assert := assert.New(t)

	actual := Examples()

	if !assert.Len(actual, 2) {
		return
	}
	assert.Equal("example 1", actual[0].Name)
	assert.Equal([]grammar.Symbol{grammar.V("A"), grammar.V("S")}, actual[0].Grammar.Variables())
	assert.Equal(grammar.V("S"), actual[0].Grammar.Start())
	assert.Equal("example 2", actual[1].Name)
	assert.Equal([]string{
		"A -> B C",
		"B -> C A | b",
		"C -> A B | a",
	}, actual[1].Grammar.RuleStrings())
}

func Test_Find(t *testing.T) {
	assert := assert.New(t)
	named := Examples()

	first, err := Find(named, "")
	assert.NoError(err)
	assert.Equal("example 1", first.Name)

	second, err := Find(named, "example 2")
	assert.NoError(err)
	assert.Equal("example 2", second.Name)

	_, err = Find(named, "example 3")
	assert.ErrorIs(err, ErrNoGrammar)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}
