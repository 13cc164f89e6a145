// Package render produces human-readable listings of grammars and conversion
// results. Output is colored with ANSI escapes unless color.NoColor is set.
package render

import (
	"fmt"
	"strings"

	"github.com/dekarrin/greibach/internal/gnf"
	"github.com/dekarrin/greibach/internal/grammar"
	"github.com/dekarrin/rosed"
	"github.com/fatih/color"
)

// Arrow separates a variable from its first alternative in a listing.
const Arrow = " → "

// ContinuationPrefix starts each line holding a further alternative of the
// variable on the line above.
const ContinuationPrefix = " | "

// Productions returns the rules of g, one variable per line group in variable
// order. The first alternative of a variable follows it on the same line and
// each further alternative is on its own line beginning with " | ".
func Productions(g grammar.Grammar) string {
	variable := color.New(color.FgMagenta).SprintFunc()
	punct := color.New(color.FgWhite, color.Bold).SprintFunc()
	rhs := color.New(color.FgCyan).SprintFunc()

	var sb strings.Builder
	for _, v := range g.Variables() {
		alts := g.Alternatives(v)
		if len(alts) < 1 {
			continue
		}
		sb.WriteString(variable(v.String()))
		sb.WriteString(punct(Arrow))
		sb.WriteString(rhs(alts[0].String()))
		sb.WriteRune('\n')
		for _, alt := range alts[1:] {
			sb.WriteString(punct(ContinuationPrefix))
			sb.WriteString(rhs(alt.String()))
			sb.WriteRune('\n')
		}
	}
	return sb.String()
}

// Heading returns s in bold.
func Heading(s string) string {
	return color.New(color.Bold).Sprint(s)
}

// Title returns s in bold green; it marks the start of the listing for one
// ordering.
func Title(s string) string {
	return color.New(color.FgGreen, color.Bold).Sprint(s)
}

// Stage returns the description of the stage in blue.
func Stage(st gnf.Stage) string {
	return color.New(color.FgBlue).Sprint(st.Description())
}

// Error returns the text of err in bold red.
func Error(err error) string {
	return color.New(color.FgRed, color.Bold).Sprint(err.Error())
}

// Order returns a variable ordering in the form "[A, S]".
func Order(ord []grammar.Symbol) string {
	names := make([]string, len(ord))
	for i := range ord {
		names[i] = ord[i].String()
	}
	return "[" + strings.Join(names, ", ") + "]"
}

// Summary returns a table with one row per result giving its ordering, the
// size of the converted grammar, and whether the conversion succeeded. The
// table is never colored.
func Summary(results []gnf.Result) string {
	data := [][]string{{"#", "Order", "Variables", "Alternatives", "Result"}}

	for i, res := range results {
		row := []string{fmt.Sprintf("%d", i+1), Order(res.Order)}
		if res.Err != nil {
			row = append(row, "-", "-", res.Err.Error())
		} else {
			row = append(row,
				fmt.Sprintf("%d", len(res.Grammar.Variables())),
				fmt.Sprintf("%d", res.Grammar.AlternativeCount()),
				"GNF",
			)
		}
		data = append(data, row)
	}

	tableOpts := rosed.Options{
		TableHeaders:             true,
		NoTrailingLineSeparators: true,
	}

	return rosed.Edit("").
		InsertTableOpts(0, data, 80, tableOpts).
		String()
}

// Wrap wraps text to the given width.
func Wrap(text string, width int) string {
	return rosed.Edit(text).Wrap(width).String()
}
