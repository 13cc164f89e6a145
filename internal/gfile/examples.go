package gfile

import (
	_ "embed"
	"fmt"
)

//go:embed examples.toml
var examplesData []byte

// Examples returns the built-in example grammars.
func Examples() []Named {
	named, err := Unmarshal(examplesData)
	if err != nil {
		panic(fmt.Sprintf("built-in examples are invalid: %v", err))
	}
	return named
}
