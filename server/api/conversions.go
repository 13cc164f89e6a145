package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/dekarrin/greibach/internal/gerrors"
	"github.com/dekarrin/greibach/server/gnfs"
	"github.com/dekarrin/greibach/server/middle"
	"github.com/dekarrin/greibach/server/result"
)

// HTTPCreateConversion returns a HandlerFunc that converts a grammar and stores
// the result.
//
// The handler has requirements for the request context it receives, and if the
// requirements are not met it may return an HTTP-500. The context must contain
// the subject of the client making the request.
func (api API) HTTPCreateConversion() http.HandlerFunc {
	return api.Endpoint(api.epCreateConversion)
}

func (api API) epCreateConversion(req *http.Request) result.Result {
	subject := req.Context().Value(middle.AuthSubject).(string)

	var body ConversionRequestModel
	err := parseJSON(req, &body)
	if err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}

	conv, err := api.Backend.CreateConversion(req.Context(), subject, gnfs.ConversionRequest{
		Terminals: body.Terminals,
		Rules:     body.Rules,
		Start:     body.Start,
		Order:     body.Order,
		AllOrders: body.AllOrders,
	})
	if err != nil {
		switch {
		case errors.Is(err, gerrors.ErrBadArgument):
			return result.BadRequest(err.Error(), err.Error())
		case errors.Is(err, gerrors.ErrUnremovableRecursion),
			errors.Is(err, gerrors.ErrNameCollision),
			errors.Is(err, gerrors.ErrIncompleteNormalization):
			return result.UnprocessableEntity(err.Error(), "conversion failed: %s", err.Error())
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return result.Err(http.StatusServiceUnavailable, "conversion stopped before it finished", "conversion stopped: %s", err.Error())
		default:
			return result.InternalServerError(err.Error())
		}
	}

	return result.Created(conversionModel(conv), "conversion %s created with %d outcome(s)", conv.ID, len(conv.Outcomes))
}

// HTTPGetAllConversions returns a HandlerFunc that retrieves every stored
// conversion.
func (api API) HTTPGetAllConversions() http.HandlerFunc {
	return api.Endpoint(api.epGetAllConversions)
}

func (api API) epGetAllConversions(req *http.Request) result.Result {
	convs, err := api.Backend.GetAllConversions(req.Context())
	if err != nil {
		return result.InternalServerError(err.Error())
	}

	resp := make([]ConversionModel, len(convs))
	for i := range convs {
		resp[i] = conversionModel(convs[i])
	}

	return result.OK(resp, "got all %d conversions", len(resp))
}

// HTTPGetConversion returns a HandlerFunc that retrieves a single stored
// conversion. The request URI must have an "id" parameter holding a UUID.
func (api API) HTTPGetConversion() http.HandlerFunc {
	return api.Endpoint(api.epGetConversion)
}

func (api API) epGetConversion(req *http.Request) result.Result {
	id := requireIDParam(req)

	conv, err := api.Backend.GetConversion(req.Context(), id.String())
	if err != nil {
		if errors.Is(err, gerrors.ErrNotFound) {
			return result.NotFound()
		}
		return result.InternalServerError("could not get conversion: " + err.Error())
	}

	return result.OK(conversionModel(conv), "got conversion %s", id)
}

// HTTPDeleteConversion returns a HandlerFunc that deletes a stored conversion.
// The request URI must have an "id" parameter holding a UUID.
//
// The handler has requirements for the request context it receives, and if the
// requirements are not met it may return an HTTP-500. The context must contain
// the subject of the client making the request.
func (api API) HTTPDeleteConversion() http.HandlerFunc {
	return api.Endpoint(api.epDeleteConversion)
}

func (api API) epDeleteConversion(req *http.Request) result.Result {
	id := requireIDParam(req)
	subject := req.Context().Value(middle.AuthSubject).(string)

	_, err := api.Backend.DeleteConversion(req.Context(), id.String())
	if err != nil {
		if errors.Is(err, gerrors.ErrNotFound) {
			return result.NotFound()
		}
		return result.InternalServerError("could not delete conversion: " + err.Error())
	}

	return result.NoContent("subject '%s' deleted conversion %s", subject, id)
}
