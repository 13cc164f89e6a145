// Package greibach converts epsilon-free context-free grammars to Greibach
// normal form, in which every production begins with a terminal that is
// followed only by variables.
//
// Grammars are built with Parse from rules written as text:
//
//	g, err := greibach.Parse([]string{"a", "b"}, "S",
//		"S -> A A | a",
//		"A -> S S | b",
//	)
//
// The form a conversion produces depends on the order the variables are
// processed in. Convert uses the order the grammar already has, ConvertOrder
// uses a given one, and ConvertAll and Explore try every ordering.
package greibach

import (
	"context"
	"io"

	"github.com/dekarrin/greibach/internal/gerrors"
	"github.com/dekarrin/greibach/internal/gfile"
	"github.com/dekarrin/greibach/internal/gnf"
	"github.com/dekarrin/greibach/internal/grammar"
	"github.com/dekarrin/greibach/internal/repl"
	"go.uber.org/zap"
)

// Grammar is an immutable epsilon-free context-free grammar with an ordering
// of its variables.
type Grammar = grammar.Grammar

// Symbol is a terminal or variable of a Grammar.
type Symbol = grammar.Symbol

// Result is the outcome of converting a Grammar with one ordering of its
// variables.
type Result = gnf.Result

// Named is a Grammar loaded from a file along with the name it was given
// there.
type Named = gfile.Named

// Session is an interactive session for building and converting a grammar.
type Session = repl.Session

// Errors returned by conversions. Use errors.Is to check for them.
var (
	ErrMalformedGrammar        = gerrors.ErrMalformedGrammar
	ErrUnremovableRecursion    = gerrors.ErrUnremovableRecursion
	ErrNameCollision           = gerrors.ErrNameCollision
	ErrIncompleteNormalization = gerrors.ErrIncompleteNormalization
)

// Parse creates a Grammar from rules of the form "A -> x y | z". Every symbol
// named in terminals is a terminal; every other symbol must head a rule.
// Variables are ordered by the first rule they head. If start is empty, the
// head of the first rule is the start symbol.
func Parse(terminals []string, start string, rules ...string) (Grammar, error) {
	return grammar.Parse(terminals, start, rules...)
}

// Convert converts g to Greibach normal form using the variable order of g.
func Convert(g Grammar) (Grammar, error) {
	return gnf.Pipeline{}.Run(g)
}

// ConvertOrder converts g to Greibach normal form using the given order of
// variable names, which must name every variable of g exactly once.
func ConvertOrder(g Grammar, order []string) (Grammar, error) {
	ord := make([]Symbol, len(order))
	for i := range order {
		ord[i] = grammar.V(order[i])
	}
	return gnf.RunForOrder(g, ord)
}

// ConvertAll converts g with every ordering of its variables, one after the
// other, starting with the order g already has.
func ConvertAll(g Grammar) []Result {
	var results []Result
	runs := gnf.RunAllOrders(g)
	for runs.Next() {
		results = append(results, runs.Result())
	}
	return results
}

// Explore is ConvertAll but runs up to workers conversions at once. If
// workers is less than 1 there is no limit. The returned error is non-nil
// only if ctx is done before every ordering is converted.
func Explore(ctx context.Context, g Grammar, workers int) ([]Result, error) {
	return gnf.Explore(ctx, g, workers)
}

// LoadFile reads every grammar in a CFG grammar file or manifest.
func LoadFile(path string) ([]Named, error) {
	return gfile.Load(path)
}

// Examples returns the built-in example grammars.
func Examples() []Named {
	return gfile.Examples()
}

// NewSession creates an interactive Session on the given streams. If nil is
// given for either, the matching standard stream is used; when both are the
// standard streams, input is read with readline unless forceDirect is set.
// The returned Session must have Close called on it before disposal.
func NewSession(in io.Reader, out io.Writer, forceDirect bool, log *zap.Logger) (*Session, error) {
	return repl.New(in, out, forceDirect, log)
}
