// Package gfile has functions for loading grammars from CFG files, a
// TOML-based format that holds one or more named context-free grammars written
// in the rule syntax accepted by grammar.ParseRule.
//
// A grammar file looks like this:
//
//	format = "CFG"
//	type = "GRAMMAR"
//
//	[[grammar]]
//	name = "example 1"
//	start = "S"
//	variables = ["A", "S"]
//	terminals = ["a", "b"]
//	rules = ["S -> A A | a", "A -> S S | b"]
//
// The type may also be "MANIFEST", in which case the file holds a list of
// other CFG files to include, relative to itself:
//
//	format = "CFG"
//	type = "MANIFEST"
//	files = ["arith.cfg", "examples.cfg"]
package gfile

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/BurntSushi/toml"
	"github.com/dekarrin/greibach/internal/grammar"
)

const MaxManifestRecursionDepth = 32

var (
	// ErrManifestEmpty is the error returned when a manifest file is read
	// successfully but specifies no additional files to load.
	ErrManifestEmpty = errors.New("does not list any valid files to include")

	// ErrManifestStackOverflow is the error returned when the recursion level
	// of MaxManifestRecursionDepth is reached and an additional manifest is
	// then specified, which would cause recursion to go deeper.
	ErrManifestStackOverflow = errors.New("too many manifests deep")

	// ErrManifestCircularRef is the error returned when a manifest specifies
	// any series of files that with their own manifests refer back to the
	// original manifest, and therefore cannot be followed.
	ErrManifestCircularRef = errors.New("manifest inclusion chain refers back to itself")

	// ErrNoGrammar is the error returned by Find when no grammar with the
	// requested name was loaded.
	ErrNoGrammar = errors.New("no grammar with that name")
)

// Named is a grammar along with the name it was given in its file.
type Named struct {
	Name    string
	Grammar grammar.Grammar
}

// FileInfo contains the essential information all CFG files must contain. It
// can be obtained from a file by reading it into memory and calling
// ScanFileInfo on the bytes.
type FileInfo struct {
	Format string `toml:"format"`
	Type   string `toml:"type"`
}

// Load loads every grammar from the CFG file at path. If the file is a
// manifest, the files it lists are loaded as well and their grammars are
// returned in the order the manifest lists them. Grammar names must be unique
// across every file loaded.
func Load(path string) ([]Named, error) {
	defs, err := recursiveUnmarshalResource(path, nil)
	if err != nil {
		return nil, err
	}
	return parseGrammarDefs(defs)
}

// Unmarshal loads every grammar from the given bytes, which must hold a CFG
// file of type "GRAMMAR". Manifests cannot be unmarshaled this way because
// they refer to other files; use Load for them.
func Unmarshal(data []byte) ([]Named, error) {
	top, err := unmarshalGrammarFile(data)
	if err != nil {
		return nil, err
	}
	return parseGrammarDefs(top.Grammars)
}

// Find returns the grammar with the given name from named. If name is empty,
// the first grammar is returned.
func Find(named []Named, name string) (Named, error) {
	if len(named) < 1 {
		return Named{}, fmt.Errorf("%w: no grammars loaded", ErrNoGrammar)
	}
	if name == "" {
		return named[0], nil
	}
	for i := range named {
		if named[i].Name == name {
			return named[i], nil
		}
	}
	return Named{}, fmt.Errorf("%w: %q", ErrNoGrammar, name)
}

// Names returns the name of every grammar in named.
func Names(named []Named) []string {
	names := make([]string, len(named))
	for i := range named {
		names[i] = named[i].Name
	}
	return names
}

// LoadFileInfo is a convenience function that reads the file at path and returns
// its FileInfo.
func LoadFileInfo(path string) (FileInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FileInfo{}, err
	}
	return ScanFileInfo(data)
}

// ScanFileInfo takes the given bytes and attempts to read the CFG format
// common header info from it. The bytes are read up to the first instance of a
// table definition header and those bytes are parsed for the info. If the file
// gives no type, it is taken to be "GRAMMAR".
func ScanFileInfo(data []byte) (FileInfo, error) {
	// only run the toml parser up to the end of the top-lev table
	var topLevelEnd int = -1
	var onNewLine = true
	for b := range data {
		if onNewLine {
			if data[b] == '[' {
				topLevelEnd = b
				break
			}
		}

		if data[b] == '\n' {
			onNewLine = true
		} else if !unicode.IsSpace(rune(data[b])) {
			onNewLine = false
		}
	}

	scanData := data
	if topLevelEnd != -1 {
		scanData = data[:topLevelEnd]
	}

	var info FileInfo
	if err := toml.Unmarshal(scanData, &info); err != nil {
		return info, err
	}
	if strings.TrimSpace(info.Type) == "" {
		info.Type = TypeGrammar
	}
	return info, nil
}
