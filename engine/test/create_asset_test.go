package test

import (
	"math/big"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/teal/ledger/engine"
	"github.com/teal/ledger/lib/errors"
)

func TestCreateAssetStandard(
	t *testing.T,
) {
	e := CreateEngine(t)
	e.Genesis(t)
	e.CreateAccount(t, "alice", false)

	status, raw := e.Post(t, "/assets", url.Values{
		"account":    {"alice"},
		"symbol":     {"STD"},
		"type":       {"standard"},
		"max_supply": {"1000000"},
	})

	var asset engine.AssetResource
	if err := raw.Extract("asset", &asset); err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, 201, status)
	assert.Equal(t, "STD", asset.Symbol)
	assert.Equal(t, "alice", asset.Issuer)
	assert.Equal(t, engine.AstTpStandard, asset.Type)
	assert.Equal(t, big.NewInt(1000000), asset.MaxSupply)
	assert.Equal(t, big.NewInt(0), asset.TotalSupply)
	assert.Equal(t,
		e.Now.UnixNano()/engine.TimeResolutionNs, asset.Created)
}

func TestCreateAssetStablecoin(
	t *testing.T,
) {
	e := CreateEngine(t)
	e.Genesis(t)
	e.CreateAccount(t, "alice", false)

	stablecoin := e.CreateStablecoin(t, "alice", "BIT", 0)

	assert.Equal(t, "BIT", stablecoin.Asset)
	assert.Equal(t, engine.SymbolCore, stablecoin.BackingAsset)
	assert.Equal(t, int64(3600), stablecoin.FeedLifetime)
	assert.Equal(t, int64(1), stablecoin.MinimumFeeds)
	assert.False(t, stablecoin.HasSettlement)
	assert.Equal(t, big.NewInt(0), stablecoin.SettlementFund)
}

func TestCreateAssetCooldown(
	t *testing.T,
) {
	e := CreateEngine(t)
	e.Genesis(t)
	e.CreateAccount(t, "alice", false)

	status, _ := e.Post(t, "/assets", url.Values{
		"account":    {"alice"},
		"symbol":     {"ONE"},
		"type":       {"standard"},
		"max_supply": {"1000"},
	})
	assert.Equal(t, 201, status)

	status, raw := e.Post(t, "/assets", url.Values{
		"account":    {"alice"},
		"symbol":     {"TWO"},
		"type":       {"standard"},
		"max_supply": {"1000"},
	})

	var er errors.ConcreteUserError
	if err := raw.Extract("error", &er); err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, 429, status)
	assert.Equal(t, "rate_limited", er.Code)

	e.Advance(25 * time.Hour)

	status, _ = e.Post(t, "/assets", url.Values{
		"account":    {"alice"},
		"symbol":     {"TWO"},
		"type":       {"standard"},
		"max_supply": {"1000"},
	})
	assert.Equal(t, 201, status)
}

func TestCreateAssetDuplicateSymbol(
	t *testing.T,
) {
	e := CreateEngine(t)
	e.Genesis(t)
	e.CreateAccount(t, "alice", false)
	e.CreateAccount(t, "bob", false)

	status, _ := e.Post(t, "/assets", url.Values{
		"account":    {"alice"},
		"symbol":     {"STD"},
		"type":       {"standard"},
		"max_supply": {"1000"},
	})
	assert.Equal(t, 201, status)

	status, raw := e.Post(t, "/assets", url.Values{
		"account":    {"bob"},
		"symbol":     {"STD"},
		"type":       {"standard"},
		"max_supply": {"1000"},
	})

	var er errors.ConcreteUserError
	if err := raw.Extract("error", &er); err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, 400, status)
	assert.Equal(t, "invalid_state_transition", er.Code)
}

func TestCreateAssetUniqueSupply(
	t *testing.T,
) {
	e := CreateEngine(t)
	e.Genesis(t)
	e.CreateAccount(t, "alice", false)

	status, raw := e.Post(t, "/assets", url.Values{
		"account":    {"alice"},
		"symbol":     {"ART"},
		"type":       {"unique"},
		"max_supply": {"2"},
	})

	var er errors.ConcreteUserError
	if err := raw.Extract("error", &er); err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, 400, status)
	assert.Equal(t, "invalid_state_transition", er.Code)
}

func TestCreateAssetBusinessRequired(
	t *testing.T,
) {
	e := CreateEngine(t)
	e.Genesis(t)
	e.CreateAccount(t, "alice", false)

	status, raw := e.Post(t, "/assets", url.Values{
		"account":           {"alice"},
		"symbol":            {"STM"},
		"type":              {"stimulus"},
		"max_supply":        {"1000"},
		"redemption_asset":    {engine.SymbolCore},
		"distribution_list":   {"alice"},
		"distribution_amount": {"50"},
	})

	var er errors.ConcreteUserError
	if err := raw.Extract("error", &er); err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, 401, status)
	assert.Equal(t, "not_authorized", er.Code)
}
