package gnfs

import (
	"context"
	"errors"
	"fmt"

	"github.com/dekarrin/greibach/internal/gerrors"
	"github.com/dekarrin/greibach/internal/gnf"
	"github.com/dekarrin/greibach/internal/grammar"
	"github.com/dekarrin/greibach/internal/order"
	"github.com/dekarrin/greibach/server/dao"
	"github.com/google/uuid"
)

// ConversionRequest is what a client asks to have converted.
type ConversionRequest struct {
	Terminals []string

	// Rules are written as "A -> x y | z".
	Rules []string

	// Start is the start variable. If empty, the head of the first rule is
	// used.
	Start string

	// Order is the ordering of variables to convert with. If empty, variables
	// are ordered by the first rule they head.
	Order []string

	// AllOrders requests a conversion with every ordering of the variables.
	// It cannot be combined with Order.
	AllOrders bool
}

// CreateConversion converts the requested grammar and stores the result.
//
// The returned error, if non-nil, will return true for various calls to
// errors.Is depending on what caused the error. If the request is not valid or
// the grammar is malformed, it will match gerrors.ErrBadArgument. If a
// conversion with a single ordering fails, it will match the error kind the
// conversion failed with (such as gerrors.ErrUnremovableRecursion) and nothing
// is stored; with every ordering, failures are recorded in the outcomes
// instead. If ctx is done before every ordering has run, it will match
// ctx.Err(). If the error occured due to an unexpected problem with the DB, it
// will match gerrors.ErrDB.
func (svc Service) CreateConversion(ctx context.Context, subject string, req ConversionRequest) (dao.Conversion, error) {
	if req.AllOrders && len(req.Order) > 0 {
		return dao.Conversion{}, gerrors.New("order cannot be given when converting with all orders", gerrors.ErrBadArgument)
	}
	if len(req.Rules) < 1 {
		return dao.Conversion{}, gerrors.New("at least one rule is required", gerrors.ErrBadArgument)
	}

	g, err := grammar.Parse(req.Terminals, req.Start, req.Rules...)
	if err != nil {
		return dao.Conversion{}, gerrors.New("grammar is not valid", err, gerrors.ErrBadArgument)
	}

	conv := dao.Conversion{
		Subject:   subject,
		Input:     g,
		AllOrders: req.AllOrders,
	}
	p := gnf.Pipeline{Log: svc.Log}

	if req.AllOrders {
		max := svc.maxAllOrdersVariables()
		if n := len(g.Variables()); n > max {
			msg := fmt.Sprintf("grammar has %d variables (%d orderings) but at most %d are allowed for all orders", n, order.Count(n), max)
			return dao.Conversion{}, gerrors.New(msg, gerrors.ErrBadArgument)
		}

		results, err := p.Explore(ctx, g, svc.Workers)
		if err != nil {
			return dao.Conversion{}, err
		}
		for _, res := range results {
			conv.Outcomes = append(conv.Outcomes, outcomeOf(res))
		}
	} else {
		ord := g.Variables()
		if len(req.Order) > 0 {
			ord = make([]grammar.Symbol, len(req.Order))
			for i := range req.Order {
				ord[i] = grammar.V(req.Order[i])
			}
			if _, err := g.WithOrder(ord); err != nil {
				return dao.Conversion{}, gerrors.New("order is not valid", err, gerrors.ErrBadArgument)
			}
		}

		out, err := p.RunForOrder(g, ord)
		if err != nil {
			return dao.Conversion{}, err
		}
		conv.Outcomes = []dao.Outcome{outcomeOf(gnf.Result{Order: ord, Grammar: out})}
	}

	created, err := svc.DB.Conversions().Create(ctx, conv)
	if err != nil {
		return dao.Conversion{}, gerrors.WrapDB("could not create conversion", err)
	}

	return created, nil
}

// GetConversion returns the conversion with the given ID.
//
// The returned error, if non-nil, will return true for various calls to
// errors.Is depending on what caused the error. If no conversion with that ID
// exists, it will match gerrors.ErrNotFound. If the error occured due to an
// unexpected problem with the DB, it will match gerrors.ErrDB. Finally, if the
// ID is not valid, it will match gerrors.ErrBadArgument.
func (svc Service) GetConversion(ctx context.Context, id string) (dao.Conversion, error) {
	uuidID, err := uuid.Parse(id)
	if err != nil {
		return dao.Conversion{}, gerrors.New("ID is not valid", gerrors.ErrBadArgument)
	}

	conv, err := svc.DB.Conversions().GetByID(ctx, uuidID)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return dao.Conversion{}, gerrors.ErrNotFound
		}
		return dao.Conversion{}, gerrors.WrapDB("could not get conversion", err)
	}

	return conv, nil
}

// GetAllConversions returns all conversions currently in persistence.
func (svc Service) GetAllConversions(ctx context.Context) ([]dao.Conversion, error) {
	convs, err := svc.DB.Conversions().GetAll(ctx)
	if err != nil {
		return nil, gerrors.WrapDB("", err)
	}

	return convs, nil
}

// DeleteConversion deletes the conversion with the given ID. It returns the
// deleted conversion just after it was deleted.
//
// The returned error, if non-nil, will return true for various calls to
// errors.Is depending on what caused the error. If no conversion with that ID
// exists, it will match gerrors.ErrNotFound. If the error occured due to an
// unexpected problem with the DB, it will match gerrors.ErrDB. Finally, if the
// ID is not valid, it will match gerrors.ErrBadArgument.
func (svc Service) DeleteConversion(ctx context.Context, id string) (dao.Conversion, error) {
	uuidID, err := uuid.Parse(id)
	if err != nil {
		return dao.Conversion{}, gerrors.New("ID is not valid", gerrors.ErrBadArgument)
	}

	conv, err := svc.DB.Conversions().Delete(ctx, uuidID)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return dao.Conversion{}, gerrors.ErrNotFound
		}
		return dao.Conversion{}, gerrors.WrapDB("could not delete conversion", err)
	}

	return conv, nil
}

func outcomeOf(res gnf.Result) dao.Outcome {
	o := dao.Outcome{
		Order: make([]string, len(res.Order)),
	}
	for i := range res.Order {
		o.Order[i] = res.Order[i].String()
	}
	if res.Err != nil {
		o.Error = res.Err.Error()
	} else {
		o.Output = res.Grammar
	}
	return o
}
