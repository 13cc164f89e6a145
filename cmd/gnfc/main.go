/*
Gnfc converts context-free grammars to Greibach normal form.

With no grammar file, it converts each of the built-in example grammars with
every ordering of its variables and prints the results. Given a grammar file,
it converts the first grammar in it (or the one selected with --name) using the
variable order from the file, or the one given with --order.

Usage:

	gnfc [flags]
	gnfc [flags] -g FILE [-n NAME] [-o A,B,...]
	gnfc -i

The flags are:

	-v, --version
		Give the current version of gnfc and then exit.

	-g, --grammar FILE
		Read grammars from the given CFG grammar file or manifest.

	-n, --name NAME
		Convert the grammar called NAME in the grammar file. Defaults to the
		first grammar in the file.

	-o, --order A,B,...
		Convert using the given ordering of the variables. Every variable
		must be listed exactly once.

	-a, --all-orders
		Convert using every ordering of the variables. This is the default
		when no grammar file is given.

	-s, --steps
		Print the production set after every stage of the conversion.

	-w, --workers N
		Convert up to N orderings at once when converting every ordering.
		Ignored with --steps. Defaults to 1.

	--no-color
		Do not color the output.

	-i, --interactive
		Start an interactive session in which a grammar can be entered and
		converted. Type "HELP" once in a session for the commands.

	-d, --direct
		Force reading directly from the console as opposed to using GNU readline
		based routines for reading input in an interactive session, even if
		launched in a tty with stdin and stdout.

	--debug
		Log every conversion stage to stderr.

The exit code is 0 if all conversions succeed, 1 if the flags are not valid, 2
if a conversion fails (with --all-orders, only if every ordering fails), and 3
if a grammar could not be loaded or a session could not be started.
*/
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dekarrin/greibach/internal/gfile"
	"github.com/dekarrin/greibach/internal/gnf"
	"github.com/dekarrin/greibach/internal/grammar"
	"github.com/dekarrin/greibach/internal/order"
	"github.com/dekarrin/greibach/internal/render"
	"github.com/dekarrin/greibach/internal/repl"
	"github.com/dekarrin/greibach/internal/util"
	"github.com/dekarrin/greibach/internal/version"
	"github.com/fatih/color"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

const (
	// ExitSuccess indicates a successful program execution.
	ExitSuccess = iota

	// ExitUsageError indicates that the program was given invalid flags.
	ExitUsageError

	// ExitConversionError indicates that a grammar could not be converted.
	ExitConversionError

	// ExitInitError indicates an unsuccessful program execution due to an
	// issue loading grammars or starting a session.
	ExitInitError
)

var (
	returnCode int = ExitSuccess

	flagVersion     = pflag.BoolP("version", "v", false, "Give the current version of gnfc and then exit.")
	flagGrammar     = pflag.StringP("grammar", "g", "", "Read grammars from the given CFG file.")
	flagName        = pflag.StringP("name", "n", "", "Convert the grammar with the given name in the grammar file.")
	flagOrder       = pflag.StringP("order", "o", "", "Convert using the given comma-separated variable ordering.")
	flagAllOrders   = pflag.BoolP("all-orders", "a", false, "Convert using every ordering of the variables.")
	flagSteps       = pflag.BoolP("steps", "s", false, "Print the production set after every stage.")
	flagWorkers     = pflag.IntP("workers", "w", 1, "Convert up to this many orderings at once.")
	flagNoColor     = pflag.Bool("no-color", false, "Do not color the output.")
	flagInteractive = pflag.BoolP("interactive", "i", false, "Start an interactive session.")
	flagDirect      = pflag.BoolP("direct", "d", false, "Force reading directly from stdin instead of going through GNU readline.")
	flagDebug       = pflag.Bool("debug", false, "Log every conversion stage.")
)

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			// we are panicking, make sure we dont lose the panic just because
			// we checked
			panic(panicErr)
		} else {
			os.Exit(returnCode)
		}
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s\n", version.Current)
		return
	}

	if len(pflag.Args()) > 0 {
		fmt.Fprintf(os.Stderr, "Too many arguments\nDo -h for help.\n")
		returnCode = ExitUsageError
		return
	}
	if *flagWorkers < 1 {
		fmt.Fprintf(os.Stderr, "--workers must be at least 1\nDo -h for help.\n")
		returnCode = ExitUsageError
		return
	}
	if *flagOrder != "" && *flagAllOrders {
		fmt.Fprintf(os.Stderr, "--order cannot be used with --all-orders\nDo -h for help.\n")
		returnCode = ExitUsageError
		return
	}
	if *flagGrammar == "" && (*flagName != "" || *flagOrder != "") {
		fmt.Fprintf(os.Stderr, "--name and --order need a grammar file given with --grammar\nDo -h for help.\n")
		returnCode = ExitUsageError
		return
	}

	if *flagNoColor {
		color.NoColor = true
	}

	log, err := newLogger(*flagDebug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}
	defer log.Sync()

	if *flagInteractive {
		returnCode = runInteractive(log)
		return
	}

	p := gnf.Pipeline{Log: log}

	if *flagGrammar == "" {
		returnCode = ExitSuccess
		for _, ex := range gfile.Examples() {
			if code := convertAllOrders(p, ex); code != ExitSuccess {
				returnCode = code
			}
		}
		return
	}

	info, err := gfile.LoadFileInfo(*flagGrammar)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}
	log.Debug("loading grammar file",
		zap.String("path", *flagGrammar),
		zap.String("format", info.Format),
		zap.String("type", info.Type),
	)

	named, err := gfile.Load(*flagGrammar)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}
	target, err := gfile.Find(named, *flagName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\nThe file has: %s\n", err.Error(), util.MakeTextList(gfile.Names(named)))
		returnCode = ExitInitError
		return
	}

	if *flagAllOrders {
		returnCode = convertAllOrders(p, target)
		return
	}

	ord := target.Grammar.Variables()
	if *flagOrder != "" {
		ord = nil
		for _, name := range strings.Split(*flagOrder, ",") {
			ord = append(ord, grammar.V(strings.TrimSpace(name)))
		}
	}
	returnCode = convertOrder(p, target, ord)
}

func newLogger(debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	if debug {
		cfg.Level.SetLevel(zap.DebugLevel)
	}
	return cfg.Build()
}

func runInteractive(log *zap.Logger) int {
	sess, err := repl.New(os.Stdin, os.Stdout, *flagDirect, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		return ExitInitError
	}
	defer sess.Close()

	if err := sess.RunUntilQuit(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		return ExitInitError
	}
	return ExitSuccess
}

// convertOrder converts a single grammar with one ordering and prints the
// result.
func convertOrder(p gnf.Pipeline, target gfile.Named, ord []grammar.Symbol) int {
	fmt.Println(render.Title(target.Name))

	if *flagSteps {
		printOriginal(target.Grammar)
		p.OnStage = printStage
	}

	out, err := p.RunForOrder(target.Grammar, ord)
	if err != nil {
		fmt.Println(render.Error(err))
		return ExitConversionError
	}
	if !*flagSteps {
		fmt.Print(render.Productions(out))
	}
	return ExitSuccess
}

// convertAllOrders converts a grammar with every ordering of its variables and
// prints each result followed by a summary.
func convertAllOrders(p gnf.Pipeline, target gfile.Named) int {
	fmt.Println(render.Title(target.Name))

	var results []gnf.Result
	if *flagSteps || *flagWorkers == 1 {
		// per-stage output has to come out in ordering sequence
		if *flagSteps {
			p.OnStage = printStage
		}
		perms := order.Enumerate(target.Grammar.Variables())
		for perms.Next() {
			ord := perms.Order()
			fmt.Println(render.Heading("Order " + render.Order(ord)))
			if *flagSteps {
				printOriginal(target.Grammar)
			}
			out, err := p.RunForOrder(target.Grammar, ord)
			res := gnf.Result{Order: ord, Grammar: out, Err: err}
			printResult(res, *flagSteps)
			results = append(results, res)
		}
	} else {
		var err error
		results, err = p.Explore(context.Background(), target.Grammar, *flagWorkers)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			return ExitConversionError
		}
		for _, res := range results {
			fmt.Println(render.Heading("Order " + render.Order(res.Order)))
			printResult(res, false)
		}
	}

	fmt.Println()
	fmt.Println(render.Summary(results))
	fmt.Println()

	for _, res := range results {
		if res.Err == nil {
			return ExitSuccess
		}
	}
	return ExitConversionError
}

func printResult(res gnf.Result, stagesShown bool) {
	if res.Err != nil {
		fmt.Println(render.Error(res.Err))
		return
	}
	if !stagesShown {
		fmt.Print(render.Productions(res.Grammar))
	}
}

func printOriginal(g grammar.Grammar) {
	fmt.Println(render.Heading("Original production set."))
	fmt.Print(render.Productions(g))
}

func printStage(st gnf.Stage, g grammar.Grammar) {
	fmt.Println(render.Stage(st))
	fmt.Print(render.Productions(g))
}
