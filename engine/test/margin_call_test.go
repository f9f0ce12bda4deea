package test

import (
	"math/big"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/teal/ledger/engine"
	"github.com/teal/ledger/engine/model"
	"github.com/teal/ledger/lib/db"
)

func TestPublishFeedBlackSwan(
	t *testing.T,
) {
	e := CreateEngine(t)
	e.Genesis(t)
	e.CreateAccount(t, "alice", false)
	e.CreateAccount(t, "dan", false)
	e.CreateAccount(t, "erin", false)
	e.CreateAccount(t, "pub1", false)

	e.CreateStablecoin(t, "alice", "BIT", 0)
	e.SeedCallOrder(t, "dan", "BIT", engine.SymbolCore, 100, 50, "erin")

	status, _ := e.Post(t, "/assets/BIT/publishers", url.Values{
		"account":   {"alice"},
		"producers": {"pub1"},
	})
	assert.Equal(t, 200, status)

	// At 1/3 the position owes 150 units of backing against 100 held. The
	// feed moving the median must settle the whole market at the position's
	// own debt to collateral ratio.
	status, raw := e.Post(t, "/assets/BIT/feeds", url.Values{
		"account":     {"pub1"},
		"price":       {"1/3"},
		"quote_asset": {engine.SymbolCore},
	})

	var stablecoin engine.StablecoinResource
	if err := raw.Extract("stablecoin", &stablecoin); err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, 200, status)
	assert.True(t, stablecoin.HasSettlement)
	assert.Equal(t, "50/100", stablecoin.SettlementPrice)
	assert.Equal(t, big.NewInt(100), stablecoin.SettlementFund)

	ctx := db.Begin(e.Ctx)
	order, err := model.LoadCallOrderByBorrowerAndAsset(ctx, "dan", "BIT")
	if err != nil {
		db.LoggedRollback(ctx)
		t.Fatalf("failed to load call order: %+v", err)
	}
	db.Commit(ctx)

	assert.Nil(t, order)
}

func TestPublishFeedMarginCall(
	t *testing.T,
) {
	e := CreateEngine(t)
	e.Genesis(t)
	e.CreateAccount(t, "alice", false)
	e.CreateAccount(t, "dan", false)
	e.CreateAccount(t, "erin", false)
	e.CreateAccount(t, "pub1", false)

	e.CreateStablecoin(t, "alice", "BIT", 0)
	e.SeedCallOrder(t, "dan", "BIT", engine.SymbolCore, 4000, 1000, "erin")

	status, _ := e.Post(t, "/assets/BIT/publishers", url.Values{
		"account":   {"alice"},
		"producers": {"pub1"},
	})
	assert.Equal(t, 200, status)

	// At 1/2 the position owes 2000 against 4000 held, above the 175%
	// maintenance ratio. Nothing happens.
	status, _ = e.Post(t, "/assets/BIT/feeds", url.Values{
		"account":     {"pub1"},
		"price":       {"1/2"},
		"quote_asset": {engine.SymbolCore},
	})
	assert.Equal(t, 200, status)
	assert.Equal(t, big.NewInt(0), e.Balance(t, "erin", engine.SymbolCore))

	// Queue a force settlement to provide settlement liquidity.
	status, _ = e.Post(t, "/assets/BIT/settle", url.Values{
		"account": {"erin"},
		"amount":  {"400"},
	})
	assert.Equal(t, 201, status)
	assert.Equal(t, big.NewInt(600), e.Balance(t, "erin", "BIT"))

	// At 1/3 the position owes 3000 against 4000 held: still solvent but
	// below maintenance. The queued settlement is filled at the feed price.
	status, raw := e.Post(t, "/assets/BIT/feeds", url.Values{
		"account":     {"pub1"},
		"price":       {"1/3"},
		"quote_asset": {engine.SymbolCore},
	})

	var stablecoin engine.StablecoinResource
	if err := raw.Extract("stablecoin", &stablecoin); err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, 200, status)
	assert.False(t, stablecoin.HasSettlement)
	assert.Equal(t,
		big.NewInt(1200), e.Balance(t, "erin", engine.SymbolCore))

	ctx := db.Begin(e.Ctx)
	order, err := model.LoadCallOrderByBorrowerAndAsset(ctx, "dan", "BIT")
	if err != nil {
		db.LoggedRollback(ctx)
		t.Fatalf("failed to load call order: %+v", err)
	}
	settlements, err := model.LoadSettlementsByAsset(ctx, "BIT")
	if err != nil {
		db.LoggedRollback(ctx)
		t.Fatalf("failed to load settlements: %+v", err)
	}
	db.Commit(ctx)

	assert.NotNil(t, order)
	assert.Equal(t, big.NewInt(600), order.Debt.Int())
	assert.Equal(t, big.NewInt(2800), order.Collateral.Int())
	assert.Equal(t, 0, len(settlements))
}

func TestCallOrderDeterministicOrder(
	t *testing.T,
) {
	e := CreateEngine(t)
	e.Genesis(t)
	e.CreateAccount(t, "alice", false)
	e.CreateAccount(t, "dan", false)
	e.CreateAccount(t, "erin", false)
	e.CreateAccount(t, "frank", false)

	e.CreateStablecoin(t, "alice", "BIT", 0)

	// Equally collateralized positions must come back in the same order on
	// every load.
	e.SeedCallOrder(t, "dan", "BIT", engine.SymbolCore, 2000, 1000, "erin")
	e.SeedCallOrder(t, "frank", "BIT", engine.SymbolCore, 4000, 2000, "erin")

	ctx := db.Begin(e.Ctx)
	first, err := model.LoadCallOrdersByAsset(ctx, "BIT")
	if err != nil {
		db.LoggedRollback(ctx)
		t.Fatalf("failed to load call orders: %+v", err)
	}
	second, err := model.LoadCallOrdersByAsset(ctx, "BIT")
	if err != nil {
		db.LoggedRollback(ctx)
		t.Fatalf("failed to load call orders: %+v", err)
	}
	db.Commit(ctx)

	assert.Equal(t, 2, len(first))
	assert.Equal(t, 2, len(second))
	assert.True(t, first[0].Token < first[1].Token)
	assert.Equal(t, first[0].Token, second[0].Token)
	assert.Equal(t, first[1].Token, second[1].Token)
}
