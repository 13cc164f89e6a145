// Package repl contains an interactive session for building a grammar one
// command at a time and converting it to Greibach normal form.
package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dekarrin/greibach/internal/gfile"
	"github.com/dekarrin/greibach/internal/gnf"
	"github.com/dekarrin/greibach/internal/grammar"
	"github.com/dekarrin/greibach/internal/input"
	"github.com/dekarrin/greibach/internal/order"
	"github.com/dekarrin/greibach/internal/render"
	"github.com/dekarrin/greibach/internal/util"
	"github.com/dekarrin/rosed"
	"go.uber.org/zap"
)

const consoleOutputWidth = 80

// MaxAllOrdersVariables is the largest number of variables ALL will convert
// every ordering of.
const MaxAllOrdersVariables = 7

var commandHelp = [][2]string{
	{"HELP", "show this help"},
	{"TERMINALS [t ...]", "set the terminals of the grammar, or show them if none are given"},
	{"RULE A -> x y | z", "add a rule; end the line with '|' to continue the rule on the next line"},
	{"START A", "set the start variable; defaults to the head of the first rule"},
	{"ORDER [A B ...]", "set the variable ordering used by CONVERT, or reset it to rule order if none is given"},
	{"SHOW", "show the current grammar"},
	{"CONVERT [STEPS]", "convert the grammar to Greibach normal form, showing every stage if STEPS is given"},
	{"ALL", "convert the grammar with every ordering of its variables and summarize the results"},
	{"LOAD FILE [NAME]", "load grammar NAME, or the first grammar, from a CFG file"},
	{"EXAMPLE N", "load built-in example grammar N"},
	{"CLEAR", "forget the current grammar"},
	{"QUIT/BYE", "end the session"},
}

// Session holds a grammar under construction and executes commands against
// it.
type Session struct {
	in          input.LineReader
	out         *bufio.Writer
	log         *zap.Logger
	forceDirect bool
	running     bool

	terminals []string
	rules     []string
	start     string
	order     []string
}

// New creates a new Session ready to operate on the given input and output
// streams.
//
// If nil is given for the input stream, stdin is used. If nil is given for the
// output stream, stdout is used. If both are the standard streams and
// forceDirectInput is false, input is read with readline. If log is nil,
// nothing is logged.
func New(inputStream io.Reader, outputStream io.Writer, forceDirectInput bool, log *zap.Logger) (*Session, error) {
	if inputStream == nil {
		inputStream = os.Stdin
	}
	if outputStream == nil {
		outputStream = os.Stdout
	}

	useReadline := !forceDirectInput && inputStream == os.Stdin && outputStream == os.Stdout

	var in input.LineReader
	if useReadline {
		ir, err := input.NewInteractiveReader("")
		if err != nil {
			return nil, fmt.Errorf("initializing interactive-mode input reader: %w", err)
		}
		in = ir
	} else {
		in = input.NewDirectReader(inputStream)
	}

	sess := NewWithReader(in, outputStream, log)
	sess.forceDirect = forceDirectInput
	return sess, nil
}

// NewWithReader creates a new Session that reads lines from in and writes to
// out.
func NewWithReader(in input.LineReader, out io.Writer, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{
		in:  in,
		out: bufio.NewWriter(out),
		log: log,
	}
}

// Close closes all resources associated with the Session, including any
// readline-related resources created for interactive mode.
func (sess *Session) Close() error {
	if sess.running {
		return fmt.Errorf("cannot close a running session")
	}

	if err := sess.in.Close(); err != nil {
		return fmt.Errorf("close line reader: %w", err)
	}
	return nil
}

// RunUntilQuit reads commands from the input and executes them until QUIT is
// received or input ends. Errors caused by a command are written to the output
// and the session continues; only I/O errors are returned.
func (sess *Session) RunUntilQuit() error {
	introMsg := "Greibach Normal Form Converter\n"
	if sess.forceDirect {
		introMsg += "(direct input mode)\n"
	}
	introMsg += "==============================\n"
	introMsg += "Type HELP for the list of commands.\n"

	if err := sess.write(introMsg); err != nil {
		return err
	}

	sess.running = true
	defer func() {
		sess.running = false
	}()

	for sess.running {
		line, err := sess.in.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return fmt.Errorf("get user command: %w", err)
		}

		cmd := ParseCommand(line)
		if cmd.Verb == "QUIT" {
			break
		}
		if cmd.Verb == "RULE" {
			cmd, err = sess.readContinuation(cmd)
			if err != nil && !errors.Is(err, io.EOF) {
				return fmt.Errorf("get user command: %w", err)
			}
		}

		output, err := sess.Execute(cmd)
		if err != nil {
			sess.log.Debug("command failed", zap.String("verb", cmd.Verb), zap.Error(err))
			output = rosed.Edit(ConsoleMessage(err)).Wrap(consoleOutputWidth).String() + "\n"
		}
		if err := sess.write(output); err != nil {
			return err
		}
	}

	return sess.write("Goodbye\n")
}

// readContinuation appends following lines to a RULE command for as long as
// its text ends with '|'.
func (sess *Session) readContinuation(cmd Command) (Command, error) {
	text := cmd.Text
	if !strings.HasSuffix(text, "|") {
		return cmd, nil
	}

	sess.in.SetPrompt("   | ")
	defer sess.in.SetPrompt(input.DefaultPrompt)

	for strings.HasSuffix(text, "|") {
		more, err := sess.in.ReadLine()
		if err != nil {
			return Command{Verb: cmd.Verb, Args: strings.Fields(text), Text: text}, err
		}
		// a continuation line may repeat the separator that ended the last one
		text += " " + strings.TrimPrefix(strings.TrimSpace(more), "|")
	}
	return Command{Verb: cmd.Verb, Args: strings.Fields(text), Text: text}, nil
}

// Execute runs a single command and returns the output to show for it. QUIT
// is not handled by Execute; it only ends RunUntilQuit.
func (sess *Session) Execute(cmd Command) (string, error) {
	switch cmd.Verb {
	case "":
		return "", nil
	case "HELP":
		return sess.executeHelp()
	case "TERMINALS":
		return sess.executeTerminals(cmd)
	case "RULE":
		return sess.executeRule(cmd)
	case "START":
		return sess.executeStart(cmd)
	case "ORDER":
		return sess.executeOrder(cmd)
	case "SHOW":
		return sess.executeShow()
	case "CONVERT":
		return sess.executeConvert(cmd)
	case "ALL":
		return sess.executeAll()
	case "LOAD":
		return sess.executeLoad(cmd)
	case "EXAMPLE":
		return sess.executeExample(cmd)
	case "CLEAR":
		sess.setGrammar(nil, nil, "", nil)
		return "Grammar cleared.\n", nil
	case "QUIT":
		return "", userErrorf("QUIT can only be used to end a running session")
	default:
		return "", userErrorf("I don't know how to %q; type HELP for the list of commands", cmd.Verb)
	}
}

// Grammar returns the grammar built so far, ordered by the current ORDER if
// one was given.
func (sess *Session) Grammar() (grammar.Grammar, error) {
	if len(sess.rules) < 1 {
		return grammar.Grammar{}, userErrorf("There is no grammar yet; add one with RULE, LOAD, or EXAMPLE")
	}

	g, err := grammar.Parse(sess.terminals, sess.start, sess.rules...)
	if err != nil {
		return grammar.Grammar{}, wrapUserErrorf(err, "The grammar is not valid: %s", err.Error())
	}

	if len(sess.order) > 0 {
		ord := make([]grammar.Symbol, len(sess.order))
		for i := range sess.order {
			ord[i] = grammar.V(sess.order[i])
		}
		g, err = g.WithOrder(ord)
		if err != nil {
			return grammar.Grammar{}, wrapUserErrorf(err, "The ORDER does not match the grammar: %s", err.Error())
		}
	}

	return g, nil
}

func (sess *Session) executeHelp() (string, error) {
	output := rosed.Edit("").
		WithOptions(rosed.Options{ParagraphSeparator: "\n", NoTrailingLineSeparators: true}).
		Insert(rosed.End, "Here are the commands you can use:\n").
		InsertDefinitionsTable(rosed.End, commandHelp, consoleOutputWidth).
		String()
	return output + "\n", nil
}

func (sess *Session) executeTerminals(cmd Command) (string, error) {
	if len(cmd.Args) > 0 {
		sess.terminals = order.Canonical(cmd.Args)
	}
	if len(sess.terminals) < 1 {
		return "No terminals are defined.\n", nil
	}
	return fmt.Sprintf("Terminals: %s\n", strings.Join(sess.terminals, " ")), nil
}

func (sess *Session) executeRule(cmd Command) (string, error) {
	if cmd.Text == "" {
		return "", userErrorf("RULE needs a rule, such as: RULE S -> a S | b")
	}
	r, err := grammar.ParseRule(cmd.Text)
	if err != nil {
		return "", wrapUserErrorf(err, "That rule is not valid: %s", err.Error())
	}
	sess.rules = append(sess.rules, r.String())
	return fmt.Sprintf("Added %s\n", r.String()), nil
}

func (sess *Session) executeStart(cmd Command) (string, error) {
	if len(cmd.Args) != 1 {
		return "", userErrorf("START needs exactly one variable")
	}
	sess.start = cmd.Args[0]
	return fmt.Sprintf("Start variable is now %s\n", sess.start), nil
}

func (sess *Session) executeOrder(cmd Command) (string, error) {
	if len(cmd.Args) < 1 {
		sess.order = nil
		return "Variables will be ordered by their first rule.\n", nil
	}
	sess.order = cmd.Args
	if _, err := sess.Grammar(); err != nil && len(sess.rules) > 0 {
		sess.order = nil
		return "", err
	}
	return fmt.Sprintf("Order is now %s\n", strings.Join(sess.order, " ")), nil
}

func (sess *Session) executeShow() (string, error) {
	g, err := sess.Grammar()
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Terminals: %s\n", strings.Join(sess.terminals, " ")))
	sb.WriteString(fmt.Sprintf("Start:     %s\n", g.Start()))
	sb.WriteString(fmt.Sprintf("Order:     %s\n", render.Order(g.Variables())))
	sb.WriteString(render.Productions(g))
	return sb.String(), nil
}

func (sess *Session) executeConvert(cmd Command) (string, error) {
	steps := false
	for _, arg := range cmd.Args {
		if strings.ToUpper(arg) != "STEPS" {
			return "", userErrorf("CONVERT only takes STEPS as an argument, not %q", arg)
		}
		steps = true
	}

	g, err := sess.Grammar()
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	p := gnf.Pipeline{Log: sess.log}
	if steps {
		sb.WriteString(render.Heading("Original production set.") + "\n")
		sb.WriteString(render.Productions(g))
		p.OnStage = func(st gnf.Stage, out grammar.Grammar) {
			sb.WriteString(render.Stage(st) + "\n")
			sb.WriteString(render.Productions(out))
		}
	}

	out, err := p.Run(g)
	if err != nil {
		return sb.String(), wrapUserErrorf(err, "Conversion with order %s failed: %s", render.Order(g.Variables()), err.Error())
	}
	if !steps {
		sb.WriteString(render.Productions(out))
	}
	return sb.String(), nil
}

func (sess *Session) executeAll() (string, error) {
	g, err := sess.Grammar()
	if err != nil {
		return "", err
	}
	if n := len(g.Variables()); n > MaxAllOrdersVariables {
		return "", userErrorf("The grammar has %d variables, which is %d orderings; ALL can only be used with up to %d variables", n, order.Count(n), MaxAllOrdersVariables)
	}

	var results []gnf.Result
	runs := gnf.Pipeline{Log: sess.log}.RunAllOrders(g)
	for runs.Next() {
		results = append(results, runs.Result())
	}
	return render.Summary(results) + "\n", nil
}

func (sess *Session) executeLoad(cmd Command) (string, error) {
	if len(cmd.Args) < 1 {
		return "", userErrorf("LOAD needs the path of a CFG file")
	}
	named, err := gfile.Load(cmd.Args[0])
	if err != nil {
		return "", wrapUserErrorf(err, "Could not load %s: %s", cmd.Args[0], err.Error())
	}

	name := strings.Join(cmd.Args[1:], " ")
	found, err := gfile.Find(named, name)
	if err != nil {
		return "", wrapUserErrorf(err, "%s does not have a grammar called %q; it has %s", cmd.Args[0], name, util.MakeTextList(gfile.Names(named)))
	}
	sess.loadGrammar(found.Grammar)
	return fmt.Sprintf("Loaded %q.\n", found.Name), nil
}

func (sess *Session) executeExample(cmd Command) (string, error) {
	examples := gfile.Examples()
	if len(cmd.Args) != 1 {
		return "", userErrorf("EXAMPLE needs a number from 1 to %d", len(examples))
	}
	n, err := strconv.Atoi(cmd.Args[0])
	if err != nil || n < 1 || n > len(examples) {
		return "", userErrorf("EXAMPLE needs a number from 1 to %d", len(examples))
	}

	sess.loadGrammar(examples[n-1].Grammar)
	return fmt.Sprintf("Loaded %q.\n", examples[n-1].Name), nil
}

func (sess *Session) loadGrammar(g grammar.Grammar) {
	terms := make([]string, 0, len(g.Terminals()))
	for _, t := range g.Terminals() {
		terms = append(terms, t.Name())
	}
	vars := make([]string, 0, len(g.Variables()))
	for _, v := range g.Variables() {
		vars = append(vars, v.String())
	}
	sess.setGrammar(terms, g.RuleStrings(), g.Start().String(), vars)
}

func (sess *Session) setGrammar(terms, rules []string, start string, ord []string) {
	sess.terminals = terms
	sess.rules = rules
	sess.start = start
	sess.order = ord
}

func (sess *Session) write(s string) error {
	if _, err := sess.out.WriteString(s); err != nil {
		return fmt.Errorf("could not write output: %w", err)
	}
	if err := sess.out.Flush(); err != nil {
		return fmt.Errorf("could not flush output: %w", err)
	}
	return nil
}
