// Package gnf converts epsilon-free context-free grammars to Greibach normal
// form. The conversion is a pipeline of four stages, each a function from one
// grammar.Grammar to a new one:
//
//	ResolveIndirect -> EliminateLeftRecursion -> NormalizeHeads -> SegmentTerminals
//
// The result depends on the order of the variables of the grammar, so a
// conversion is always run for some ordering; RunAllOrders and Explore run it
// for every ordering.
package gnf

import (
	"context"
	"fmt"
	"strings"

	"github.com/dekarrin/greibach/internal/grammar"
	"github.com/dekarrin/greibach/internal/order"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Stage is one of the steps of the conversion.
type Stage int

const (
	StageResolve Stage = iota
	StageEliminate
	StageNormalize
	StageSegment
)

// Stages lists every Stage in the order they are run.
var Stages = []Stage{StageResolve, StageEliminate, StageNormalize, StageSegment}

func (s Stage) String() string {
	switch s {
	case StageResolve:
		return "resolve"
	case StageEliminate:
		return "eliminate"
	case StageNormalize:
		return "normalize"
	case StageSegment:
		return "segment"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// Description returns a human-readable sentence describing what the stage
// does to the grammar.
func (s Stage) Description() string {
	switch s {
	case StageResolve:
		return "Production set transformation to A_r -> A_s α, where r <= s."
	case StageEliminate:
		return "Production set elimination of A_r -> A_r α."
	case StageNormalize:
		return "Each production beginning with a terminal."
	case StageSegment:
		return "Each production beginning with a terminal followed by a word of variables."
	default:
		return s.String()
	}
}

// Result is the outcome of running the pipeline for one ordering. Exactly one
// of Grammar and Err is meaningful.
type Result struct {
	Order   []grammar.Symbol
	Grammar grammar.Grammar
	Err     error
}

// OrderString returns the ordering of r as space-separated variable names.
func (r Result) OrderString() string {
	names := make([]string, len(r.Order))
	for i := range r.Order {
		names[i] = r.Order[i].String()
	}
	return strings.Join(names, " ")
}

// Pipeline runs the conversion stages. The zero value is ready to use and logs
// nothing.
type Pipeline struct {
	// Log receives a Debug entry after each stage. If nil, nothing is logged.
	Log *zap.Logger

	// OnStage, if set, is called with the output of each stage as soon as it
	// is produced. When the Pipeline is used with Explore it is called from
	// multiple goroutines at once.
	OnStage func(stage Stage, g grammar.Grammar)
}

func (p Pipeline) logger() *zap.Logger {
	if p.Log == nil {
		return zap.NewNop()
	}
	return p.Log
}

// RunForOrder converts g to Greibach normal form using the given variable
// ordering. ord must contain every variable of g exactly once. g itself is
// never modified.
//
// The first error raised by a stage ends the run; it will match one of
// gerrors.ErrMalformedGrammar, gerrors.ErrUnremovableRecursion,
// gerrors.ErrNameCollision, or gerrors.ErrIncompleteNormalization.
func (p Pipeline) RunForOrder(g grammar.Grammar, ord []grammar.Symbol) (grammar.Grammar, error) {
	log := p.logger()

	cur, err := g.WithOrder(ord)
	if err != nil {
		return grammar.Grammar{}, err
	}
	names := NewNamer(cur)
	primary := len(ord)

	for _, st := range Stages {
		var next grammar.Grammar
		switch st {
		case StageResolve:
			next, err = ResolveIndirect(cur)
		case StageEliminate:
			next, err = EliminateLeftRecursion(cur, names)
		case StageNormalize:
			next, err = NormalizeHeads(cur, primary)
		case StageSegment:
			next, err = SegmentTerminals(cur, names)
		}
		if err != nil {
			log.Debug("stage failed", zap.Stringer("stage", st), zap.Error(err))
			return grammar.Grammar{}, fmt.Errorf("%s: %w", st, err)
		}
		cur = next

		log.Debug("stage complete",
			zap.Stringer("stage", st),
			zap.Int("variables", len(cur.Variables())),
			zap.Int("alternatives", cur.AlternativeCount()),
		)
		if p.OnStage != nil {
			p.OnStage(st, cur)
		}
	}

	return cur, nil
}

// Run converts g to Greibach normal form using the variable order g already
// has.
func (p Pipeline) Run(g grammar.Grammar) (grammar.Grammar, error) {
	return p.RunForOrder(g, g.Variables())
}

// RunForOrder is Pipeline.RunForOrder on a zero Pipeline.
func RunForOrder(g grammar.Grammar, ord []grammar.Symbol) (grammar.Grammar, error) {
	return Pipeline{}.RunForOrder(g, ord)
}

// Runs lazily runs the pipeline for every ordering of the variables of a
// grammar. Each ordering is converted only when Next reaches it.
type Runs struct {
	p     Pipeline
	g     grammar.Grammar
	perms *order.Permutations[grammar.Symbol]
	cur   Result
}

// RunAllOrders returns a Runs over every ordering of the variables of g,
// starting with the order g already has. There are n! orderings for n
// variables.
func (p Pipeline) RunAllOrders(g grammar.Grammar) *Runs {
	return &Runs{
		p:     p,
		g:     g,
		perms: order.Enumerate(g.Variables()),
	}
}

// RunAllOrders is Pipeline.RunAllOrders on a zero Pipeline.
func RunAllOrders(g grammar.Grammar) *Runs {
	return Pipeline{}.RunAllOrders(g)
}

// Next runs the pipeline for the next ordering. It returns false when every
// ordering has been run.
func (r *Runs) Next() bool {
	if !r.perms.Next() {
		r.cur = Result{}
		return false
	}
	ord := r.perms.Order()
	out, err := r.p.RunForOrder(r.g, ord)
	r.cur = Result{Order: ord, Grammar: out, Err: err}
	return true
}

// Result returns the outcome for the ordering most recently reached by Next.
func (r *Runs) Result() Result {
	return r.cur
}

// Reset rewinds r to before the first ordering.
func (r *Runs) Reset() {
	r.perms.Reset()
	r.cur = Result{}
}

// Count returns the total number of orderings r will produce.
func (r *Runs) Count() uint64 {
	return order.Count(r.perms.Len())
}

// Explore runs the pipeline for every ordering of the variables of g with at
// most workers runs in progress at once; workers < 1 means no limit. Results
// are returned in the same sequence RunAllOrders produces them. A failed
// ordering is reported in its Result; the returned error is non-nil only if
// ctx is done before every ordering has run.
//
// Every ordering is held in memory at once, so this is only suitable for
// grammars with few variables.
func (p Pipeline) Explore(ctx context.Context, g grammar.Grammar, workers int) ([]Result, error) {
	orders := order.All(g.Variables())
	results := make([]Result, len(orders))

	eg, egCtx := errgroup.WithContext(ctx)
	if workers > 0 {
		eg.SetLimit(workers)
	}

	var stopped error
	for i := range orders {
		if err := egCtx.Err(); err != nil {
			stopped = err
			break
		}
		i := i
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			out, err := p.RunForOrder(g, orders[i])
			results[i] = Result{Order: orders[i], Grammar: out, Err: err}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if stopped != nil {
		return nil, stopped
	}
	return results, nil
}

// Explore is Pipeline.Explore on a zero Pipeline.
func Explore(ctx context.Context, g grammar.Grammar, workers int) ([]Result, error) {
	return Pipeline{}.Explore(ctx, g, workers)
}
