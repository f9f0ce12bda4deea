package test

import (
	"math/big"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/teal/ledger/engine"
	"github.com/teal/ledger/lib/errors"
)

func TestGlobalSettleAndRedeem(
	t *testing.T,
) {
	e := CreateEngine(t)
	e.Genesis(t)
	e.CreateAccount(t, "alice", false)
	e.CreateAccount(t, "dan", false)
	e.CreateAccount(t, "erin", false)

	e.CreateStablecoin(t, "alice", "BIT", engine.PermGlobalSettle)
	e.SeedCallOrder(t, "dan", "BIT", engine.SymbolCore, 3000, 1000, "erin")

	status, raw := e.Post(t, "/assets/BIT/global_settle", url.Values{
		"account":     {"alice"},
		"price":       {"1/2"},
		"quote_asset": {engine.SymbolCore},
	})

	var stablecoin engine.StablecoinResource
	if err := raw.Extract("stablecoin", &stablecoin); err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, 200, status)
	assert.True(t, stablecoin.HasSettlement)
	assert.Equal(t, "1/2", stablecoin.SettlementPrice)
	assert.Equal(t, big.NewInt(3000), stablecoin.SettlementFund)

	// On a settled market settlement is an immediate redemption against the
	// fund at the settlement price.
	status, raw = e.Post(t, "/assets/BIT/settle", url.Values{
		"account": {"erin"},
		"amount":  {"400"},
	})

	var payout engine.SettlementPayoutResource
	if err := raw.Extract("payout", &payout); err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, 200, status)
	assert.Equal(t, big.NewInt(400), payout.Settled)
	assert.Equal(t, big.NewInt(800), payout.Payout)
	assert.Equal(t, engine.SymbolCore, payout.PayoutAsset)
	assert.Equal(t, big.NewInt(600), e.Balance(t, "erin", "BIT"))
	assert.Equal(t,
		big.NewInt(800), e.Balance(t, "erin", engine.SymbolCore))

	// Redeeming the entire remaining supply receives the exact remaining
	// fund.
	status, raw = e.Post(t, "/assets/BIT/settle", url.Values{
		"account": {"erin"},
		"amount":  {"600"},
	})
	if err := raw.Extract("payout", &payout); err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, 200, status)
	assert.Equal(t, big.NewInt(2200), payout.Payout)
	assert.Equal(t, big.NewInt(0), e.Balance(t, "erin", "BIT"))
	assert.Equal(t,
		big.NewInt(3000), e.Balance(t, "erin", engine.SymbolCore))
}

func TestGlobalSettleInsolventPosition(
	t *testing.T,
) {
	e := CreateEngine(t)
	e.Genesis(t)
	e.CreateAccount(t, "alice", false)
	e.CreateAccount(t, "dan", false)
	e.CreateAccount(t, "erin", false)

	e.CreateStablecoin(t, "alice", "BIT", engine.PermGlobalSettle)
	e.SeedCallOrder(t, "dan", "BIT", engine.SymbolCore, 3000, 1000, "erin")

	// At 1/4 the position owes 4000 units of backing against 3000 held.
	status, raw := e.Post(t, "/assets/BIT/global_settle", url.Values{
		"account":     {"alice"},
		"price":       {"1/4"},
		"quote_asset": {engine.SymbolCore},
	})

	var er errors.ConcreteUserError
	if err := raw.Extract("error", &er); err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, 400, status)
	assert.Equal(t, "threshold_violation", er.Code)
}

func TestGlobalSettleNotEnabled(
	t *testing.T,
) {
	e := CreateEngine(t)
	e.Genesis(t)
	e.CreateAccount(t, "alice", false)
	e.CreateAccount(t, "erin", false)

	e.CreateStablecoin(t, "alice", "BIT", 0)
	e.Fund(t, "erin", "BIT", 100)

	status, raw := e.Post(t, "/assets/BIT/global_settle", url.Values{
		"account":     {"alice"},
		"price":       {"1/2"},
		"quote_asset": {engine.SymbolCore},
	})

	var er errors.ConcreteUserError
	if err := raw.Extract("error", &er); err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, 401, status)
	assert.Equal(t, "not_authorized", er.Code)
}
