package main

import (
	"context"
	"crypto/tls"
	"flag"
	"log"
	"net"
	"net/http"
	"time"

	"goji.io"

	"github.com/teal/ledger/engine"
	"github.com/teal/ledger/engine/app"
	"github.com/teal/ledger/lib/cert"
	"github.com/teal/ledger/lib/errors"
	"github.com/zenazn/goji/bind"
	"github.com/zenazn/goji/graceful"
)

var envFlag string
var dsnFlag string
var hstFlag string
var prtFlag string
var tlsFlag bool
var crtFlag string
var keyFlag string

func init() {
	flag.StringVar(&envFlag, "env",
		"qa", "The environment to run in (qa, production), defaults to qa")
	flag.StringVar(&dsnFlag, "db_dsn",
		"", "The DSN of the DB to use, defaults to sqlite3://~/.ledger/engine-$env.db")
	flag.StringVar(&hstFlag, "host",
		"", "The externally accessible host name of this engine")
	flag.StringVar(&prtFlag, "port",
		"", "The port on which the engine is served")
	flag.BoolVar(&tlsFlag, "tls",
		false, "Serve over TLS (self-signed certificate in qa)")
	flag.StringVar(&crtFlag, "tls_cert",
		"", "The TLS certificate file to use in production")
	flag.StringVar(&keyFlag, "tls_key",
		"", "The TLS key file to use in production")

	bind.WithFlag()
	if fl := log.Flags(); fl&log.Ltime != 0 {
		log.SetFlags(fl | log.Lmicroseconds)
	}
	graceful.DoubleKickWindow(2 * time.Second)
}

// Serve starts the given mux using reasonable defaults.
func Serve(ctx context.Context, mux *goji.Mux) {
	if !flag.Parsed() {
		flag.Parse()
	}

	listener := bind.Default()
	if tlsFlag {
		listener = tls.NewListener(listener, &tls.Config{
			GetCertificate: cert.GetGetCertificate(ctx,
				engine.GetHost(ctx), crtFlag, keyFlag),
		})
	}

	ServeListener(mux, listener)
}

// ServeListener is like Serve, but runs `mux` on top of an arbitrary
// net.Listener.
func ServeListener(mux *goji.Mux, listener net.Listener) {
	// Install our handler at the root of the standard net/http default mux.
	// This allows packages like expvar to continue working as expected.
	http.Handle("/", mux)

	log.Println("Starting Goji on", listener.Addr())

	graceful.HandleSignals()
	bind.Ready()
	graceful.PreHook(func() { log.Printf("Goji received signal, gracefully stopping") })
	graceful.PostHook(func() { log.Printf("Goji stopped") })

	err := graceful.Serve(listener, http.DefaultServeMux)

	if err != nil {
		log.Fatal(err)
	}

	graceful.Wait()
}

func main() {
	flag.Parse()

	ctx, err := app.BackgroundContextFromFlags(
		envFlag, dsnFlag, hstFlag, prtFlag)
	if err != nil {
		log.Fatal(errors.Details(err))
	}

	mux, err := app.Build(ctx)
	if err != nil {
		log.Fatal(errors.Details(err))
	}

	Serve(ctx, mux)
}
