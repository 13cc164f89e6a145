package api

import (
	"net/http"

	"github.com/dekarrin/greibach/internal/version"
	"github.com/dekarrin/greibach/server/middle"
	"github.com/dekarrin/greibach/server/result"
)

// HTTPGetInfo returns a HandlerFunc that retrieves information on the API and
// server.
//
// The handler has requirements for the request context it receives, and if the
// requirements are not met it may return an HTTP-500. The context must contain
// a value denoting whether the client making the request is logged-in.
func (api API) HTTPGetInfo() http.HandlerFunc {
	return api.Endpoint(api.epGetInfo)
}

func (api API) epGetInfo(req *http.Request) result.Result {
	loggedIn := req.Context().Value(middle.AuthLoggedIn).(bool)

	var resp InfoModel
	resp.Version.Server = version.ServerCurrent
	resp.Version.Converter = version.Current
	resp.AuthRequired = len(api.Secret) > 0

	return result.OK(resp, "%s got API info", clientDesc(req, loggedIn))
}

func clientDesc(req *http.Request, loggedIn bool) string {
	if !loggedIn {
		return "unauthed client"
	}
	subj, _ := req.Context().Value(middle.AuthSubject).(string)
	return "subject '" + subj + "'"
}
