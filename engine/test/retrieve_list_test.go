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

func TestRetrieveAsset(
	t *testing.T,
) {
	e := CreateEngine(t)
	e.Genesis(t)
	e.CreateAccount(t, "alice", false)

	status, _ := e.Post(t, "/assets", url.Values{
		"account":    {"alice"},
		"symbol":     {"STD"},
		"type":       {"standard"},
		"max_supply": {"1000"},
	})
	assert.Equal(t, 201, status)

	status, raw := e.Get(t, "/assets/STD")

	var asset engine.AssetResource
	if err := raw.Extract("asset", &asset); err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, 200, status)
	assert.Equal(t, "STD", asset.Symbol)
	assert.Equal(t, "alice", asset.Issuer)
	assert.Equal(t, engine.AstTpStandard, asset.Type)
	assert.Equal(t, big.NewInt(1000), asset.MaxSupply)
	assert.Equal(t, big.NewInt(0), asset.TotalSupply)
}

func TestRetrieveAssetStablecoin(
	t *testing.T,
) {
	e := CreateEngine(t)
	e.Genesis(t)
	e.CreateAccount(t, "alice", false)

	e.CreateStablecoin(t, "alice", "BIT", 0)

	status, raw := e.Get(t, "/assets/BIT")

	var asset engine.AssetResource
	if err := raw.Extract("asset", &asset); err != nil {
		t.Fatal(err)
	}
	var stablecoin engine.StablecoinResource
	if err := raw.Extract("stablecoin", &stablecoin); err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, 200, status)
	assert.Equal(t, "BIT", asset.Symbol)
	assert.Equal(t, engine.SymbolCore, stablecoin.BackingAsset)
}

func TestRetrieveAssetNotFound(
	t *testing.T,
) {
	e := CreateEngine(t)
	e.Genesis(t)

	status, raw := e.Get(t, "/assets/NOPE")

	var er errors.ConcreteUserError
	if err := raw.Extract("error", &er); err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, 404, status)
	assert.Equal(t, "not_found", er.Code)
}

func TestListAssets(
	t *testing.T,
) {
	e := CreateEngine(t)
	e.Genesis(t)
	e.CreateAccount(t, "alice", false)

	status, _ := e.Post(t, "/assets", url.Values{
		"account":    {"alice"},
		"symbol":     {"STD"},
		"type":       {"standard"},
		"max_supply": {"1000"},
	})
	assert.Equal(t, 201, status)

	// Paging is exclusive on the creation time.
	e.Advance(time.Hour)

	status, raw := e.Get(t, "/assets")

	var assets []engine.AssetResource
	if err := raw.Extract("assets", &assets); err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, 200, status)
	assert.Equal(t, 3, len(assets))

	symbols := map[string]bool{}
	for _, a := range assets {
		symbols[a.Symbol] = true
	}
	assert.True(t, symbols[engine.SymbolCore])
	assert.True(t, symbols[engine.SymbolUSD])
	assert.True(t, symbols["STD"])
}

func TestListAssetsLimit(
	t *testing.T,
) {
	e := CreateEngine(t)
	e.Genesis(t)

	e.Advance(time.Hour)

	status, raw := e.Get(t, "/assets?limit=1")

	var assets []engine.AssetResource
	if err := raw.Extract("assets", &assets); err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, 200, status)
	assert.Equal(t, 1, len(assets))
}
