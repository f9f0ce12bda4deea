package app

import (
	"context"
	"fmt"

	"goji.io"

	"github.com/teal/ledger/engine"
	"github.com/teal/ledger/engine/async"
	"github.com/teal/ledger/lib/clock"
	"github.com/teal/ledger/lib/db"
	"github.com/teal/ledger/lib/env"
	"github.com/teal/ledger/lib/errors"
	"github.com/teal/ledger/lib/livemode"
	"github.com/teal/ledger/lib/logging"
	"github.com/teal/ledger/lib/recoverer"
	"github.com/teal/ledger/lib/requestlogger"

	// force initialization of schemas
	_ "github.com/teal/ledger/engine/async/task"
	_ "github.com/teal/ledger/engine/model/schemas"
)

// BackgroundContextFromFlags initializes a background context fully loaded
// with everything that could be extracted from the flags.
func BackgroundContextFromFlags(
	envFlag string,
	dsnFlag string,
	hstFlag string,
	prtFlag string,
) (context.Context, error) {
	ctx := context.Background()

	engineEnv := env.Env{
		Environment: env.QA,
		Config:      map[env.ConfigKey]string{},
	}
	if envFlag == "production" || envFlag == "prod" {
		engineEnv.Environment = env.Production
	}
	engineEnv.Config[engine.EnvCfgHost] = hstFlag

	port := fmt.Sprintf("%d", engine.DefaultPort[engineEnv.Environment])
	if prtFlag != "" {
		port = prtFlag
	}
	engineEnv.Config[engine.EnvCfgPort] = port

	ctx = env.With(ctx, &engineEnv)

	engineDB, err := db.NewDBForDSN(ctx,
		dsnFlag,
		fmt.Sprintf("sqlite3://~/.ledger/engine-%s.db",
			env.Get(ctx).Environment))
	if err != nil {
		return nil, errors.Trace(err)
	}
	err = db.CreateDBTables(ctx, "engine", engineDB)
	if err != nil {
		return nil, errors.Trace(err)
	}
	ctx = db.WithDB(ctx, engineDB)

	a, err := async.NewAsync(ctx)
	if err != nil {
		return nil, errors.Trace(err)
	}
	ctx = async.With(ctx, a)

	return ctx, nil
}

// Build initializes the app and its web stack.
func Build(
	ctx context.Context,
) (*goji.Mux, error) {
	mux := goji.NewMux()
	mux.Use(requestlogger.Middleware)
	mux.Use(recoverer.Middleware)
	mux.Use(db.Middleware(db.GetDB(ctx)))
	mux.Use(env.Middleware(env.Get(ctx)))
	mux.Use(livemode.Middleware)
	mux.Use(clock.Middleware)
	mux.Use(async.Middleware(async.Get(ctx)))

	logging.Logf(ctx, "Initializing: environment=%s host=%s port=%s",
		env.Get(ctx).Environment, engine.GetHost(ctx), engine.GetPort(ctx))

	(&Controller{}).Bind(mux)

	// Start an async worker.
	go func() {
		async.Get(ctx).Run()
	}()

	return mux, nil
}
