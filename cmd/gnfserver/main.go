/*
Gnfserver starts a grammar conversion server and begins listening for new
connections.

Usage:

	gnfserver [flags]
	gnfserver [flags] -l [[ADDRESS]:PORT]
	gnfserver -s TOKEN_SECRET --issue-token SUBJECT

Once started, the server will listen for HTTP requests and respond to them using
REST protocol. By default, it will listen on localhost:8080. This can be changed
with the --listen/-l flag (or config via environment var). The flag argument
must be either a full address with port, such as "192.168.0.2:6001", or just the
port preceeded by a colon, such as ":6001".

If a JWT token secret is not given, the server runs without auth and any client
may create and delete conversions. When a secret is given, creating and deleting
conversions requires a bearer token signed with it; --issue-token prints one.

The flags are:

	-v, --version
		Give the current version of the server and then exit.

	-l, --listen LISTEN_ADDRESS
		Listen on the given address. Must be in BIND_ADDRESS:PORT or :PORT
		format. If not given, will default to the value of environment variable
		GNFS_LISTEN_ADDRESS, and if that is not given, will default to
		localhost:8080.

	-s, --secret TOKEN_SECRET
		Use the provided secret for signing JWT tokens. If there are less than
		32 bytes in the secret, it will be repeated until it is. The maximum
		size is 64 bytes. If not given, will default to the value of environment
		variable GNFS_TOKEN_SECRET. If no secret is specified or an empty secret
		is given, auth is turned off.

	--db DRIVER[:PARAMS]
		Use the given DB connection string. DRIVER must be one of the following:
		inmem, sqlite. inmem has no further params. sqlite needs the path to the
		data director such as sqlite:path/to/db_dir. If not given, will default
		to the value of environment variable GNFS_DATABASE. If no DB driver is
		specified or an empty one is given, an in-memory database is selected.

	-w, --workers N
		Convert up to N orderings at once for an all-orders request. Defaults to
		the number of CPUs.

	--max-all-orders N
		Refuse all-orders requests for grammars with more than N variables.
		Defaults to 6.

	--issue-token SUBJECT
		Print a token for SUBJECT that is valid for 24 hours and then exit.
		Requires a token secret.

	--debug
		Log each stage of every conversion.
*/
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/dekarrin/greibach/internal/version"
	"github.com/dekarrin/greibach/server"
	"github.com/dekarrin/greibach/server/token"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

const (
	EnvListen = "GNFS_LISTEN_ADDRESS"
	EnvSecret = "GNFS_TOKEN_SECRET"
	EnvDB     = "GNFS_DATABASE"
)

const (
	ExitSuccess = iota
	ExitUsageError
	ExitServerError
	ExitInitError
)

const issuedTokenLifetime = 24 * time.Hour

var (
	flagVersion      = pflag.BoolP("version", "v", false, "Give the current version of the server and then exit.")
	flagListen       = pflag.StringP("listen", "l", "", "Listen on the given address.")
	flagSecret       = pflag.StringP("secret", "s", "", "Use the given secret for token generation.")
	flagDB           = pflag.String("db", "", "Use the given DB connection string.")
	flagWorkers      = pflag.IntP("workers", "w", 0, "Convert up to this many orderings at once.")
	flagMaxAllOrders = pflag.Int("max-all-orders", 0, "Largest grammar, in variables, to convert with every ordering.")
	flagIssueToken   = pflag.String("issue-token", "", "Print a token for the given subject and exit.")
	flagDebug        = pflag.Bool("debug", false, "Log each conversion stage.")
)

func main() {
	os.Exit(run())
}

func run() int {
	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s (greibach v%s)\n", version.ServerCurrent, version.Current)
		return ExitSuccess
	}

	if len(pflag.Args()) > 0 {
		fmt.Fprintf(os.Stderr, "Too many arguments\nDo -h for help.\n")
		return ExitUsageError
	}

	tokSecret, err := tokenSecret()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\nDo -h for help.\n", err.Error())
		return ExitUsageError
	}

	if pflag.Lookup("issue-token").Changed {
		return issueToken(tokSecret, *flagIssueToken)
	}

	addr, port, err := listenAddress()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\nDo -h for help.\n", err.Error())
		return ExitUsageError
	}

	cfg := server.Config{
		TokenSecret:           tokSecret,
		MaxAllOrdersVariables: *flagMaxAllOrders,
		Workers:               *flagWorkers,
	}

	dbConnStr := os.Getenv(EnvDB)
	if pflag.Lookup("db").Changed {
		dbConnStr = *flagDB
	}
	if dbConnStr != "" {
		cfg.DB, err = server.ParseDBConnString(dbConnStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Not a valid DB string: %s\nDo -h for help.\n", err.Error())
			return ExitUsageError
		}
	}

	logCfg := zap.NewProductionConfig()
	if *flagDebug {
		logCfg.Level.SetLevel(zap.DebugLevel)
	}
	log, err := logCfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: could not set up logging: %s\n", err.Error())
		return ExitInitError
	}
	defer log.Sync()

	if len(tokSecret) == 0 {
		log.Warn("no token secret given; auth is turned off")
	}

	gs, err := server.New(cfg, log)
	if err != nil {
		log.Error("could not start server", zap.Error(err))
		return ExitInitError
	}
	defer gs.Close()
	log.Debug("server initialized")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("starting conversion server", zap.String("version", version.ServerCurrent))
	if err := gs.ServeForever(ctx, addr, port); err != nil {
		log.Error("server stopped", zap.Error(err))
		return ExitServerError
	}
	log.Info("server shut down")
	return ExitSuccess
}

func listenAddress() (addr string, port int, err error) {
	listenAddr := os.Getenv(EnvListen)
	if pflag.Lookup("listen").Changed {
		listenAddr = *flagListen
	}
	if listenAddr == "" {
		return "", 0, nil
	}

	bindParts := strings.SplitN(listenAddr, ":", 2)
	if len(bindParts) != 2 {
		return "", 0, fmt.Errorf("Listen address is not in ADDRESS:PORT or :PORT format.")
	}

	port, err = strconv.Atoi(bindParts[1])
	if err != nil {
		return "", 0, fmt.Errorf("%q is not a valid port number.", bindParts[1])
	}
	return bindParts[0], port, nil
}

// tokenSecret returns nil if no secret was given.
func tokenSecret() ([]byte, error) {
	tokSecStr := os.Getenv(EnvSecret)
	if pflag.Lookup("secret").Changed {
		tokSecStr = *flagSecret
	}
	if tokSecStr == "" {
		return nil, nil
	}

	tokSecret := []byte(tokSecStr)
	for len(tokSecret) < server.MinSecretSize {
		doubledTokSecret := make([]byte, len(tokSecret)*2)
		copy(doubledTokSecret, tokSecret)
		copy(doubledTokSecret[len(tokSecret):], tokSecret)
		tokSecret = doubledTokSecret
	}

	if len(tokSecret) > server.MaxSecretSize {
		// keys would be chopped at 64, so rather than the user thinking
		// they have more security by giving a longer key, refuse to start.
		return nil, fmt.Errorf("Token secret is %d bytes, but it must be <= %d bytes", len(tokSecret), server.MaxSecretSize)
	}
	return tokSecret, nil
}

func issueToken(secret []byte, subject string) int {
	if len(secret) == 0 {
		fmt.Fprintf(os.Stderr, "--issue-token needs a token secret\nDo -h for help.\n")
		return ExitUsageError
	}
	if subject == "" {
		fmt.Fprintf(os.Stderr, "--issue-token needs a non-empty subject\nDo -h for help.\n")
		return ExitUsageError
	}

	tok, err := token.Generate(secret, subject, issuedTokenLifetime)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		return ExitInitError
	}
	fmt.Println(tok)
	return ExitSuccess
}
