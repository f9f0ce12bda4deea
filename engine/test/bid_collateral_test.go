package test

import (
	"math/big"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/teal/ledger/engine"
	"github.com/teal/ledger/lib/errors"
)

func TestBidCollateralLifecycle(
	t *testing.T,
) {
	e := CreateEngine(t)
	e.Genesis(t)
	e.CreateAccount(t, "alice", false)
	e.CreateAccount(t, "dan", false)
	e.CreateAccount(t, "erin", false)
	e.CreateAccount(t, "frank", false)

	e.CreateStablecoin(t, "alice", "BIT", engine.PermGlobalSettle)
	e.SeedCallOrder(t, "dan", "BIT", engine.SymbolCore, 3000, 1000, "erin")

	status, _ := e.Post(t, "/assets/BIT/global_settle", url.Values{
		"account":     {"alice"},
		"price":       {"1/2"},
		"quote_asset": {engine.SymbolCore},
	})
	assert.Equal(t, 200, status)

	e.Fund(t, "frank", engine.SymbolCore, 1000)

	status, raw := e.Post(t, "/assets/BIT/bids", url.Values{
		"account":          {"frank"},
		"collateral_asset": {engine.SymbolCore},
		"collateral":       {"500"},
		"debt":             {"300"},
	})

	var bid engine.BidResource
	if err := raw.Extract("bid", &bid); err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, 201, status)
	assert.Equal(t, "frank", bid.Bidder)
	assert.Equal(t, big.NewInt(500), bid.Collateral)
	assert.Equal(t, big.NewInt(300), bid.Debt)
	assert.Equal(t,
		big.NewInt(500), e.Balance(t, "frank", engine.SymbolCore))

	// A new bid replaces the pending one and refunds its collateral.
	status, raw = e.Post(t, "/assets/BIT/bids", url.Values{
		"account":          {"frank"},
		"collateral_asset": {engine.SymbolCore},
		"collateral":       {"600"},
		"debt":             {"400"},
	})
	if err := raw.Extract("bid", &bid); err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, 201, status)
	assert.Equal(t, big.NewInt(600), bid.Collateral)
	assert.Equal(t,
		big.NewInt(400), e.Balance(t, "frank", engine.SymbolCore))

	// A zero debt cancels the pending bid.
	status, _ = e.Post(t, "/assets/BIT/bids", url.Values{
		"account":          {"frank"},
		"collateral_asset": {engine.SymbolCore},
		"collateral":       {"0"},
		"debt":             {"0"},
	})
	assert.Equal(t, 200, status)
	assert.Equal(t,
		big.NewInt(1000), e.Balance(t, "frank", engine.SymbolCore))

	status, raw = e.Post(t, "/assets/BIT/bids", url.Values{
		"account":          {"frank"},
		"collateral_asset": {engine.SymbolCore},
		"collateral":       {"0"},
		"debt":             {"0"},
	})

	var er errors.ConcreteUserError
	if err := raw.Extract("error", &er); err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 404, status)
	assert.Equal(t, "not_found", er.Code)
}

func TestBidCollateralRequiresSettlement(
	t *testing.T,
) {
	e := CreateEngine(t)
	e.Genesis(t)
	e.CreateAccount(t, "alice", false)
	e.CreateAccount(t, "frank", false)

	e.CreateStablecoin(t, "alice", "BIT", 0)
	e.Fund(t, "frank", engine.SymbolCore, 1000)

	status, raw := e.Post(t, "/assets/BIT/bids", url.Values{
		"account":          {"frank"},
		"collateral_asset": {engine.SymbolCore},
		"collateral":       {"500"},
		"debt":             {"300"},
	})

	var er errors.ConcreteUserError
	if err := raw.Extract("error", &er); err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, 400, status)
	assert.Equal(t, "invalid_state_transition", er.Code)
}

func TestReviveZeroSupply(
	t *testing.T,
) {
	e := CreateEngine(t)
	e.Genesis(t)
	e.CreateAccount(t, "alice", false)
	e.CreateAccount(t, "pub1", false)
	e.CreateAccount(t, "dan", false)
	e.CreateAccount(t, "erin", false)
	e.CreateAccount(t, "frank", false)

	e.CreateStablecoin(t, "alice", "BIT", engine.PermGlobalSettle)

	status, _ := e.Post(t, "/assets/BIT/publishers", url.Values{
		"account":   {"alice"},
		"producers": {"pub1"},
	})
	assert.Equal(t, 200, status)

	e.SeedCallOrder(t, "dan", "BIT", engine.SymbolCore, 3000, 1000, "erin")

	status, _ = e.Post(t, "/assets/BIT/global_settle", url.Values{
		"account":     {"alice"},
		"price":       {"1/2"},
		"quote_asset": {engine.SymbolCore},
	})
	assert.Equal(t, 200, status)

	// Full redemption drains the supply and the fund.
	status, _ = e.Post(t, "/assets/BIT/settle", url.Values{
		"account": {"erin"},
		"amount":  {"1000"},
	})
	assert.Equal(t, 200, status)
	assert.Equal(t,
		big.NewInt(3000), e.Balance(t, "erin", engine.SymbolCore))

	e.Fund(t, "frank", engine.SymbolCore, 1000)
	status, _ = e.Post(t, "/assets/BIT/bids", url.Values{
		"account":          {"frank"},
		"collateral_asset": {engine.SymbolCore},
		"collateral":       {"500"},
		"debt":             {"300"},
	})
	assert.Equal(t, 201, status)

	// A fresh feed revives the zero supply market, cancelling pending bids.
	status, raw := e.Post(t, "/assets/BIT/feeds", url.Values{
		"account":     {"pub1"},
		"price":       {"1/2"},
		"quote_asset": {engine.SymbolCore},
	})

	var stablecoin engine.StablecoinResource
	if err := raw.Extract("stablecoin", &stablecoin); err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, 200, status)
	assert.False(t, stablecoin.HasSettlement)
	assert.Equal(t, big.NewInt(0), stablecoin.SettlementFund)
	assert.Equal(t,
		big.NewInt(1000), e.Balance(t, "frank", engine.SymbolCore))
}
