package test

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	goji "goji.io"

	"github.com/teal/ledger/engine"
	"github.com/teal/ledger/engine/app"
	"github.com/teal/ledger/engine/async"
	"github.com/teal/ledger/engine/model"
	"github.com/teal/ledger/lib/clock"
	"github.com/teal/ledger/lib/db"
	"github.com/teal/ledger/lib/env"
	"github.com/teal/ledger/lib/livemode"
	"github.com/teal/ledger/lib/recoverer"
	"github.com/teal/ledger/lib/requestlogger"
	"github.com/teal/ledger/lib/svc"
)

// Engine represents a test engine backed by an in-memory DB. The head block
// time is pinned to Now so that tests control time explicitly.
type Engine struct {
	Server *httptest.Server
	Env    *env.Env
	Ctx    context.Context
	Now    time.Time
}

// clockMiddleware pins the harness time as head block time on requests.
type clockMiddleware struct {
	http.Handler
	engine *Engine
}

func (m clockMiddleware) ServeHTTP(
	w http.ResponseWriter,
	r *http.Request,
) {
	ctx := clock.With(r.Context(), m.engine.Now)
	m.Handler.ServeHTTP(w, r.WithContext(ctx))
}

// CreateEngine creates a new test engine with an in-memory DB.
func CreateEngine(
	t *testing.T,
) *Engine {
	ctx := context.Background()

	engineEnv := env.Env{
		Environment: env.QA,
		Config:      map[env.ConfigKey]string{},
	}
	ctx = env.With(ctx, &engineEnv)

	engineDB, err := db.NewSqlite3DBInMemory(ctx)
	if err != nil {
		t.Fatalf("test engine setup failed: %+v", err)
	}
	err = db.CreateDBTables(ctx, "engine", engineDB)
	if err != nil {
		t.Fatalf("test engine setup failed: %+v", err)
	}
	ctx = db.WithDB(ctx, engineDB)

	a, err := async.NewAsync(ctx)
	if err != nil {
		t.Fatalf("test engine setup failed: %+v", err)
	}
	ctx = async.With(ctx, a)

	e := &Engine{
		Env: &engineEnv,
		Now: time.Date(2018, 3, 14, 15, 9, 26, 0, time.UTC),
	}

	mux := goji.NewMux()
	mux.Use(requestlogger.Middleware)
	mux.Use(recoverer.Middleware)
	mux.Use(db.Middleware(db.GetDB(ctx)))
	mux.Use(env.Middleware(env.Get(ctx)))
	mux.Use(livemode.Middleware)
	mux.Use(func(h http.Handler) http.Handler {
		return clockMiddleware{h, e}
	})
	mux.Use(async.Middleware(async.Get(ctx)))

	(&app.Controller{}).Bind(mux)

	e.Ctx = ctx
	e.Server = httptest.NewServer(mux)
	t.Cleanup(e.Server.Close)

	return e
}

// Advance moves the pinned head block time forward.
func (e *Engine) Advance(
	d time.Duration,
) {
	e.Now = e.Now.Add(d)
}

// CreateAccount creates an account directly in the DB.
func (e *Engine) CreateAccount(
	t *testing.T,
	name string,
	business bool,
) *model.Account {
	ctx := db.Begin(clock.With(e.Ctx, e.Now))
	defer db.LoggedRollback(ctx)

	account, err := model.CreateAccount(ctx, name, business)
	if err != nil {
		t.Fatalf("failed to create account %s: %+v", name, err)
	}

	db.Commit(ctx)

	return account
}

// Delegate adds a delegate to an account's authorized signatory set.
func (e *Engine) Delegate(
	t *testing.T,
	account string,
	delegate string,
) {
	ctx := db.Begin(clock.With(e.Ctx, e.Now))
	defer db.LoggedRollback(ctx)

	acc, err := model.LoadAccountByName(ctx, account)
	if err != nil || acc == nil {
		t.Fatalf("failed to load account %s: %+v", account, err)
	}
	acc.Delegates = append(acc.Delegates, delegate)
	if err := acc.Save(ctx); err != nil {
		t.Fatalf("failed to save account %s: %+v", account, err)
	}

	db.Commit(ctx)
}

// Genesis registers the core currency and the reference stablecoin directly
// in the DB, the way the chain genesis would.
func (e *Engine) Genesis(
	t *testing.T,
) {
	e.CreateAccount(t, engine.NullAccount, false)

	ctx := db.Begin(clock.With(e.Ctx, e.Now))
	defer db.LoggedRollback(ctx)

	for _, symbol := range []string{engine.SymbolCore, engine.SymbolUSD} {
		_, err := model.CreateAsset(ctx,
			symbol, engine.NullAccount, engine.AstTpCurrency,
			model.AmountFromInt(model.MaxAssetAmount),
			0, 0,
			model.NameSet{}, model.NameSet{},
			model.NameSet{}, model.NameSet{},
			0, 0,
			e.Now,
		)
		if err != nil {
			t.Fatalf("failed to create genesis asset %s: %+v", symbol, err)
		}
		if _, err := model.CreateSupply(ctx, symbol, e.Now); err != nil {
			t.Fatalf("failed to create genesis supply %s: %+v", symbol, err)
		}
	}

	db.Commit(ctx)
}

// Fund mints amount units of an existing asset into the account's balance.
func (e *Engine) Fund(
	t *testing.T,
	account string,
	symbol string,
	amount int64,
) {
	ctx := db.Begin(clock.With(e.Ctx, e.Now))
	defer db.LoggedRollback(ctx)

	balance, err := model.LoadOrCreateBalanceByAccountAndAsset(ctx,
		account, symbol, e.Now)
	if err != nil {
		t.Fatalf("failed to load balance %s/%s: %+v", account, symbol, err)
	}
	if err := balance.Adjust(big.NewInt(amount)); err != nil {
		t.Fatalf("failed to adjust balance %s/%s: %+v", account, symbol, err)
	}
	balance.Updated = e.Now
	if err := balance.Save(ctx); err != nil {
		t.Fatalf("failed to save balance %s/%s: %+v", account, symbol, err)
	}

	supply, err := model.LoadSupplyByAsset(ctx, symbol)
	if err != nil || supply == nil {
		t.Fatalf("failed to load supply %s: %+v", symbol, err)
	}
	supply.AdjustLiquid(big.NewInt(amount))
	supply.Updated = e.Now
	if err := supply.Save(ctx); err != nil {
		t.Fatalf("failed to save supply %s: %+v", symbol, err)
	}

	db.Commit(ctx)
}

// CreateStablecoin creates a stablecoin backed by the core asset through the
// API, with the provided permission bits granted and active.
func (e *Engine) CreateStablecoin(
	t *testing.T,
	issuer string,
	symbol string,
	permissions int64,
) engine.StablecoinResource {
	status, raw := e.Post(t, "/assets", url.Values{
		"account":                       {issuer},
		"symbol":                        {symbol},
		"type":                          {"stablecoin"},
		"max_supply":                    {"1000000000"},
		"permissions":                   {strconv.FormatInt(permissions, 10)},
		"flags":                         {strconv.FormatInt(permissions, 10)},
		"backing_asset":                 {engine.SymbolCore},
		"feed_lifetime":                 {"3600"},
		"minimum_feeds":                 {"1"},
		"settlement_delay":              {"3600"},
		"maintenance_collateralization": {"17500"},
	})
	if status != http.StatusCreated {
		t.Fatalf("failed to create stablecoin %s: status=%d", symbol, status)
	}

	var stablecoin engine.StablecoinResource
	if err := raw.Extract("stablecoin", &stablecoin); err != nil {
		t.Fatal(err)
	}

	return stablecoin
}

// SeedCallOrder registers an open debt position directly in the DB, minting
// the debt units to the holder and accounting them as liquid supply.
func (e *Engine) SeedCallOrder(
	t *testing.T,
	borrower string,
	symbol string,
	collateralAsset string,
	collateral int64,
	debt int64,
	holder string,
) {
	ctx := db.Begin(clock.With(e.Ctx, e.Now))
	defer db.LoggedRollback(ctx)

	_, err := model.CreateCallOrder(ctx,
		borrower, symbol, collateralAsset,
		model.AmountFromInt(big.NewInt(collateral)),
		model.AmountFromInt(big.NewInt(debt)),
		e.Now,
	)
	if err != nil {
		t.Fatalf("failed to create call order %s/%s: %+v", borrower, symbol, err)
	}

	db.Commit(ctx)

	e.Fund(t, holder, symbol, debt)
}

// Balance returns the current liquid balance of an account.
func (e *Engine) Balance(
	t *testing.T,
	account string,
	symbol string,
) *big.Int {
	ctx := db.Begin(e.Ctx)
	defer db.LoggedRollback(ctx)

	balance, err := model.LoadBalanceByAccountAndAsset(ctx, account, symbol)
	if err != nil {
		t.Fatalf("failed to load balance %s/%s: %+v", account, symbol, err)
	}

	db.Commit(ctx)

	if balance == nil {
		return new(big.Int)
	}
	return balance.Value.Int()
}

// RunOneTask synchronously runs one pending async task.
func (e *Engine) RunOneTask(
	t *testing.T,
) {
	async.TestRunOne(clock.With(e.Ctx, e.Now))
}

// Post posts form values to the engine and returns the status and parsed
// response.
func (e *Engine) Post(
	t *testing.T,
	path string,
	values url.Values,
) (int, svc.Resp) {
	res, err := http.Post(
		e.Server.URL+path,
		"application/x-www-form-urlencoded",
		strings.NewReader(values.Encode()),
	)
	if err != nil {
		t.Fatalf("POST %s failed: %+v", path, err)
	}
	defer res.Body.Close()

	var raw svc.Resp
	if err := json.NewDecoder(res.Body).Decode(&raw); err != nil {
		t.Fatalf("POST %s returned invalid JSON: %+v", path, err)
	}

	return res.StatusCode, raw
}

// Get issues a GET request to the engine and returns the status and parsed
// response.
func (e *Engine) Get(
	t *testing.T,
	path string,
) (int, svc.Resp) {
	res, err := http.Get(e.Server.URL + path)
	if err != nil {
		t.Fatalf("GET %s failed: %+v", path, err)
	}
	defer res.Body.Close()

	var raw svc.Resp
	if err := json.NewDecoder(res.Body).Decode(&raw); err != nil {
		t.Fatalf("GET %s returned invalid JSON: %+v", path, err)
	}

	return res.StatusCode, raw
}
