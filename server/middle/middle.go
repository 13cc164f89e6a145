// Package middle contains middleware for use with the conversion server.
package middle

import (
	"context"
	"net/http"
	"time"

	"github.com/dekarrin/greibach/server/result"
	"github.com/dekarrin/greibach/server/token"
)

// Middleware is a function that takes a handler and returns a new handler which
// wraps the given one and provides some additional functionality.
type Middleware func(next http.Handler) http.Handler

// AuthKey is a key in the context of a request populated by an AuthHandler.
type AuthKey int64

const (
	AuthLoggedIn AuthKey = iota
	AuthSubject
)

// AuthHandler is middleware that will accept a request, extract the token used
// for authentication, and validate it.
//
// Keys are added to the request context before the request is passed to the
// next step in the chain. AuthSubject will contain the subject of the token,
// and AuthLoggedIn will return whether a valid token was given (only applies
// for optional logins; for non-optional, not being logged in will result in an
// HTTP error being returned before the request is passed to the next handler).
//
// If the handler has no secret, tokens are not checked at all and every
// request passes through as not logged in.
type AuthHandler struct {
	secret        []byte
	required      bool
	unauthedDelay time.Duration
	next          http.Handler
}

func (ah *AuthHandler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	var loggedIn bool
	var subject string

	if len(ah.secret) > 0 {
		tok, err := token.Get(req)
		if err != nil {
			// deliberately leaving as embedded if instead of &&
			if ah.required {
				// error here means token isn't present (or at least isn't in
				// the expected format, which for all intents and purposes is
				// non-existent). This is not okay if auth is required.
				r := result.Unauthorized("", err.Error())
				time.Sleep(ah.unauthedDelay)
				r.WriteResponse(w)
				return
			}
		} else {
			subj, err := token.Validate(tok, ah.secret)
			if err != nil {
				if ah.required {
					r := result.Unauthorized("", err.Error())
					time.Sleep(ah.unauthedDelay)
					r.WriteResponse(w)
					return
				}
			} else {
				subject = subj
				loggedIn = true
			}
		}
	}

	ctx := req.Context()
	ctx = context.WithValue(ctx, AuthLoggedIn, loggedIn)
	ctx = context.WithValue(ctx, AuthSubject, subject)
	req = req.WithContext(ctx)
	ah.next.ServeHTTP(w, req)
}

// RequireAuth returns middleware that rejects requests without a valid token
// signed with secret. If secret is empty, no token is required.
func RequireAuth(secret []byte, unauthDelay time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		return &AuthHandler{
			secret:        secret,
			unauthedDelay: unauthDelay,
			required:      true,
			next:          next,
		}
	}
}

// OptionalAuth returns middleware that records whether a request has a valid
// token but lets it through either way.
func OptionalAuth(secret []byte, unauthDelay time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		return &AuthHandler{
			secret:        secret,
			unauthedDelay: unauthDelay,
			required:      false,
			next:          next,
		}
	}
}
