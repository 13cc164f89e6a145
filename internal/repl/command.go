package repl

import (
	"strings"
)

// Command is a single command read from the session input.
type Command struct {
	// Verb is the canonical upper-case name of the command, such as "RULE" or
	// "CONVERT". Aliases are expanded before it is set.
	Verb string

	// Args are the whitespace-separated words after the verb, in the case
	// they were typed in. Grammar symbols are case-sensitive.
	Args []string

	// Text is everything after the verb with surrounding whitespace removed.
	Text string
}

// VerbAliases maps shorthand verbs to their canonical forms. They are all
// uppercase.
var VerbAliases = map[string]string{
	"?":     "HELP",
	"/?":    "HELP",
	"H":     "HELP",
	"BYE":   "QUIT",
	"EXIT":  "QUIT",
	"Q":     "QUIT",
	"TERMS": "TERMINALS",
	"T":     "TERMINALS",
	"R":     "RULE",
	"S":     "SHOW",
	"LIST":  "SHOW",
	"C":     "CONVERT",
	"GNF":   "CONVERT",
	"RESET": "CLEAR",
	"EX":    "EXAMPLE",
	"L":     "LOAD",
}

// ParseCommand parses a command from the given line. An empty or
// whitespace-only line gives the zero Command.
func ParseCommand(line string) Command {
	line = strings.TrimSpace(line)
	if line == "" {
		return Command{}
	}

	verb := line
	rest := ""
	if idx := strings.IndexFunc(line, isSpace); idx >= 0 {
		verb = line[:idx]
		rest = strings.TrimSpace(line[idx:])
	}

	verb = strings.ToUpper(verb)
	if canon, ok := VerbAliases[verb]; ok {
		verb = canon
	}

	return Command{
		Verb: verb,
		Args: strings.Fields(rest),
		Text: rest,
	}
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
