package gfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	FormatCFG    = "CFG"
	TypeGrammar  = "GRAMMAR"
	TypeManifest = "MANIFEST"
)

type topLevelManifest struct {
	Format string   `toml:"format"`
	Type   string   `toml:"type"`
	Files  []string `toml:"files"`
}

// topLevelGrammarFile is the top-level structure containing all keys in a
// complete 'GRAMMAR' type file.
type topLevelGrammarFile struct {
	Format   string       `toml:"format"`
	Type     string       `toml:"type"`
	Grammars []grammarDef `toml:"grammar"`
}

type grammarDef struct {
	Name      string   `toml:"name"`
	Start     string   `toml:"start"`
	Variables []string `toml:"variables"`
	Terminals []string `toml:"terminals"`
	Rules     []string `toml:"rules"`

	// set during loading, not read from the file
	source string
}

// manifStack is for two reasons ->
// * detect circular deps (not an error, but we need to know to avoid them)
// * avoid infinite recursion (allow up to MaxManifestRecursionDepth levels)
//
// Returns ErrManifestEmpty if and only if the first manifest in the stack is
// empty, otherwise it is not an error.
func recursiveUnmarshalResource(path string, manifStack []string) ([]grammarDef, error) {
	path = filepath.Clean(path)

	fileData, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%q: reading from disk: %w", path, err)
	}

	fileInfo, err := ScanFileInfo(fileData)
	if err != nil {
		return nil, fmt.Errorf("%q: detecting file type: %w", path, err)
	}

	if strings.ToUpper(fileInfo.Format) != FormatCFG {
		return nil, fmt.Errorf("%q: file does not have a 'format = \"CFG\"' entry", path)
	}

	switch strings.ToUpper(fileInfo.Type) {
	case TypeGrammar:
		top, err := unmarshalGrammarFile(fileData)
		if err != nil {
			return nil, fmt.Errorf("grammar file %q: %w", path, err)
		}
		for i := range top.Grammars {
			top.Grammars[i].source = path
		}
		return top.Grammars, nil
	case TypeManifest:
		// check the stack to be sure we havent recursed too far and to be sure
		// we aren't about to re-scan a circular-ref'd manifest file we've
		// already brought in.
		if len(manifStack) >= MaxManifestRecursionDepth {
			return nil, fmt.Errorf("manifest file %q: %w", path, ErrManifestStackOverflow)
		}
		for i := range manifStack {
			if manifStack[i] == path {
				return nil, fmt.Errorf("manifest file %q: %w", path, ErrManifestCircularRef)
			}
		}

		manif, err := unmarshalManifest(fileData)
		if err != nil {
			return nil, fmt.Errorf("manifest file %q: %w", path, err)
		}

		// an empty manifest is really only a problem for the very first one.
		if len(manif.Files) < 1 && len(manifStack) == 0 {
			return nil, fmt.Errorf("manifest file %q: %w", path, ErrManifestEmpty)
		}

		manifSubStack := make([]string, len(manifStack)+1)
		copy(manifSubStack, manifStack)
		manifSubStack[len(manifSubStack)-1] = path

		manifDir := filepath.Dir(path)

		var defs []grammarDef
		processedFiles := 0
		for _, manifRelPath := range manif.Files {
			included, err := recursiveUnmarshalResource(filepath.Join(manifDir, manifRelPath), manifSubStack)
			if err != nil {
				// a circular reference is skipped, not failed on.
				if errors.Is(err, ErrManifestCircularRef) {
					continue
				}
				return nil, fmt.Errorf("in file referred to by manifest file:\n    %q\n%w", path, err)
			}
			defs = append(defs, included...)
			processedFiles++
		}

		if len(manifStack) == 0 && processedFiles == 0 {
			return nil, fmt.Errorf("manifest file %q: %w", path, ErrManifestEmpty)
		}
		return defs, nil
	default:
		return nil, fmt.Errorf("%q: file does not have 'type = ' entry set to either %q or %q", path, TypeGrammar, TypeManifest)
	}
}

// unmarshalGrammarFile unmarshals grammar definitions from the given bytes. It
// does not check the grammars themselves.
func unmarshalGrammarFile(tomlData []byte) (topLevelGrammarFile, error) {
	var top topLevelGrammarFile
	if err := toml.Unmarshal(tomlData, &top); err != nil {
		return top, err
	}

	if strings.ToUpper(top.Format) != FormatCFG {
		return top, fmt.Errorf("in header: 'format' key must exist and be set to %q", FormatCFG)
	}
	if top.Type != "" && strings.ToUpper(top.Type) != TypeGrammar {
		return top, fmt.Errorf("in header: 'type' must be omitted or set to %q", TypeGrammar)
	}

	return top, nil
}

// unmarshalManifest unmarshals a manifest from the given bytes.
func unmarshalManifest(tomlData []byte) (topLevelManifest, error) {
	var manif topLevelManifest
	if err := toml.Unmarshal(tomlData, &manif); err != nil {
		return manif, err
	}

	if strings.ToUpper(manif.Format) != FormatCFG {
		return manif, fmt.Errorf("in header: 'format' key must exist and be set to %q", FormatCFG)
	}
	if strings.ToUpper(manif.Type) != TypeManifest {
		return manif, fmt.Errorf("in header: 'type' must exist and be set to %q", TypeManifest)
	}

	return manif, nil
}
