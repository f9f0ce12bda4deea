package test

import (
	"fmt"
	"math/big"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/teal/ledger/engine"
	"github.com/teal/ledger/lib/errors"
)

func TestIssueAssetSimple(
	t *testing.T,
) {
	e := CreateEngine(t)
	e.Genesis(t)
	e.CreateAccount(t, "alice", false)
	e.CreateAccount(t, "carol", false)

	status, _ := e.Post(t, "/assets", url.Values{
		"account":    {"alice"},
		"symbol":     {"STD"},
		"type":       {"standard"},
		"max_supply": {"1000"},
	})
	assert.Equal(t, 201, status)

	status, raw := e.Post(t, "/assets/STD/issue", url.Values{
		"account":   {"alice"},
		"amount":    {"500"},
		"recipient": {"carol"},
	})

	var asset engine.AssetResource
	if err := raw.Extract("asset", &asset); err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, 200, status)
	assert.Equal(t, big.NewInt(500), asset.TotalSupply)
	assert.Equal(t, big.NewInt(500), e.Balance(t, "carol", "STD"))
}

func TestIssueAssetNotIssuer(
	t *testing.T,
) {
	e := CreateEngine(t)
	e.Genesis(t)
	e.CreateAccount(t, "alice", false)
	e.CreateAccount(t, "carol", false)

	status, _ := e.Post(t, "/assets", url.Values{
		"account":    {"alice"},
		"symbol":     {"STD"},
		"type":       {"standard"},
		"max_supply": {"1000"},
	})
	assert.Equal(t, 201, status)

	status, raw := e.Post(t, "/assets/STD/issue", url.Values{
		"account":   {"carol"},
		"amount":    {"500"},
		"recipient": {"carol"},
	})

	var er errors.ConcreteUserError
	if err := raw.Extract("error", &er); err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, 401, status)
	assert.Equal(t, "not_authorized", er.Code)
}

func TestIssueAssetMaxSupply(
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

	status, raw := e.Post(t, "/assets/STD/issue", url.Values{
		"account":   {"alice"},
		"amount":    {"1001"},
		"recipient": {"alice"},
	})

	var er errors.ConcreteUserError
	if err := raw.Extract("error", &er); err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, 400, status)
	assert.Equal(t, "resource_exhausted", er.Code)
}

func TestReserveAssetSimple(
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

	status, _ = e.Post(t, "/assets/STD/issue", url.Values{
		"account":   {"alice"},
		"amount":    {"500"},
		"recipient": {"alice"},
	})
	assert.Equal(t, 200, status)

	status, raw := e.Post(t, "/assets/STD/reserve", url.Values{
		"account": {"alice"},
		"amount":  {"200"},
	})

	var asset engine.AssetResource
	if err := raw.Extract("asset", &asset); err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, 200, status)
	assert.Equal(t, big.NewInt(300), asset.TotalSupply)
	assert.Equal(t, big.NewInt(300), e.Balance(t, "alice", "STD"))
}

func TestBondCollateralRoundTrip(
	t *testing.T,
) {
	e := CreateEngine(t)
	e.Genesis(t)
	e.CreateAccount(t, "biz", true)
	e.Fund(t, "biz", engine.SymbolCore, 10000)

	maturity := e.Now.Add(
		31 * 24 * time.Hour).UnixNano() / engine.TimeResolutionNs

	status, _ := e.Post(t, "/assets", url.Values{
		"account":                   {"biz"},
		"symbol":                    {"BND"},
		"type":                      {"bond"},
		"max_supply":                {"100000"},
		"value_asset":               {engine.SymbolCore},
		"face_price":                {"1/2"},
		"collateralization_percent": {"15000"},
		"maturity_date":             {fmt.Sprintf("%d", maturity)},
	})
	assert.Equal(t, 201, status)

	// Issuing 100 bonds at face 1/2 and 150% collateralization locks 300
	// units of the value asset.
	status, _ = e.Post(t, "/assets/BND/issue", url.Values{
		"account":   {"biz"},
		"amount":    {"100"},
		"recipient": {"biz"},
	})
	assert.Equal(t, 200, status)
	assert.Equal(t,
		big.NewInt(9700), e.Balance(t, "biz", engine.SymbolCore))

	// Reserving half the supply redeems half the collateral pool.
	status, raw := e.Post(t, "/assets/BND/reserve", url.Values{
		"account": {"biz"},
		"amount":  {"50"},
	})

	var asset engine.AssetResource
	if err := raw.Extract("asset", &asset); err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, 200, status)
	assert.Equal(t, big.NewInt(50), asset.TotalSupply)
	assert.Equal(t,
		big.NewInt(9850), e.Balance(t, "biz", engine.SymbolCore))
}
