// Package server contains an HTTP REST server that converts grammars to
// Greibach normal form and keeps the results.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dekarrin/greibach/server/api"
	"github.com/dekarrin/greibach/server/dao"
	"github.com/dekarrin/greibach/server/gnfs"
	"github.com/dekarrin/greibach/server/middle"
	"github.com/dekarrin/greibach/server/result"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// server:
//   - POST   /conversions      - convert a grammar and store the result (auth required if a secret is set)
//   - GET    /conversions      - get all stored conversions
//   - GET    /conversions/{id} - get one stored conversion
//   - DELETE /conversions/{id} - delete a stored conversion (auth required if a secret is set)
//   - GET    /info             - get version info on the server and converter

var (
	paramTypePats = map[string]string{
		"uuid": "[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}",
	}
)

// p is a quick parameter in a URI, made very small to ease readability in route
// listings.
func p(nameType string) string {
	var name string
	var pat string

	parts := strings.SplitN(nameType, ":", 2)
	name = parts[0]
	if len(parts) == 2 {
		// we have a type, if it's a name in the paramTypePats map use that else
		// treat it as a normal pattern
		pat = parts[1]

		if translatedPat, ok := paramTypePats[parts[1]]; ok {
			pat = translatedPat
		}
	}

	if pat == "" {
		return "{" + name + "}"
	}
	return "{" + name + ":" + pat + "}"
}

// GNFServer is an HTTP REST server that converts grammars. The zero-value of a
// GNFServer should not be used directly; call New() to get one ready for use.
type GNFServer struct {
	router chi.Router
	db     dao.Store
	log    *zap.Logger
}

// New creates a new GNFServer from the given config. Unset values in cfg are
// replaced with their defaults. If log is nil, nothing is logged.
func New(cfg Config, log *zap.Logger) (*GNFServer, error) {
	if log == nil {
		log = zap.NewNop()
	}

	cfg = cfg.FillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	db, err := cfg.DB.Connect()
	if err != nil {
		return nil, fmt.Errorf("connect DB: %w", err)
	}

	a := api.API{
		Backend: gnfs.Service{
			DB:                    db,
			Log:                   log.Named("pipeline"),
			MaxAllOrdersVariables: cfg.MaxAllOrdersVariables,
			Workers:               cfg.Workers,
		},
		UnauthDelay: cfg.UnauthDelay(),
		Secret:      cfg.TokenSecret,
		Log:         log.Named("http"),
	}

	return &GNFServer{
		router: newRouter(a),
		db:     db,
		log:    log,
	}, nil
}

// Handler returns the handler that serves every route of the server.
func (gs *GNFServer) Handler() http.Handler {
	return gs.router
}

// Close releases the persistence layer of the server.
func (gs *GNFServer) Close() error {
	return gs.db.Close()
}

// ServeForever begins listening on the given address and port for HTTP REST
// client requests. If address is kept as "", it will default to "localhost". If
// port is less than 1, it will default to 8080. It returns when ctx is done,
// after giving in-flight requests a few seconds to finish.
func (gs *GNFServer) ServeForever(ctx context.Context, address string, port int) error {
	if address == "" {
		address = "localhost"
	}
	if port < 1 {
		port = 8080
	}

	listenAddress := fmt.Sprintf("%s:%d", address, port)
	srv := &http.Server{
		Addr:    listenAddress,
		Handler: gs.router,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	gs.log.Info("listening", zap.String("address", listenAddress))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func newRouter(a api.API) chi.Router {
	r := chi.NewRouter()

	r.Mount(api.PathPrefix, newAPIRouter(a))

	return r
}

func newAPIRouter(a api.API) chi.Router {
	r := chi.NewRouter()

	r.Mount("/conversions", newConversionsRouter(a))
	r.Mount("/info", newInfoRouter(a))
	r.HandleFunc("/info/", RedirectNoTrailingSlash)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		result.NotFound().WriteResponse(w)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		time.Sleep(a.UnauthDelay)
		result.MethodNotAllowed(req).WriteResponse(w)
	})

	return r
}

func newConversionsRouter(a api.API) chi.Router {
	reqAuth := middle.RequireAuth(a.Secret, a.UnauthDelay)
	optAuth := middle.OptionalAuth(a.Secret, a.UnauthDelay)

	r := chi.NewRouter()

	r.With(optAuth).Get("/", a.HTTPGetAllConversions())
	r.With(reqAuth).Post("/", a.HTTPCreateConversion())

	r.Route("/"+p("id:uuid"), func(r chi.Router) {
		r.With(optAuth).Get("/", a.HTTPGetConversion())
		r.With(reqAuth).Delete("/", a.HTTPDeleteConversion())
	})

	return r
}

func newInfoRouter(a api.API) chi.Router {
	optAuth := middle.OptionalAuth(a.Secret, a.UnauthDelay)

	r := chi.NewRouter()

	r.With(optAuth).Get("/", a.HTTPGetInfo())

	return r
}

// RedirectNoTrailingSlash is an http.HandlerFunc that redirects to the same URL as the
// request but with no trailing slash.
func RedirectNoTrailingSlash(w http.ResponseWriter, req *http.Request) {
	redirPath := strings.TrimRight(req.URL.Path, "/")
	result.Redirection(redirPath).WriteResponse(w)
}
