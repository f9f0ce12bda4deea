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

func TestUpdateAssetMaxSupply(
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

	// An update within the cooldown window is rejected.
	status, raw := e.Post(t, "/assets/STD", url.Values{
		"account":    {"alice"},
		"max_supply": {"2000"},
	})

	var er errors.ConcreteUserError
	if err := raw.Extract("error", &er); err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 429, status)
	assert.Equal(t, "rate_limited", er.Code)

	e.Advance(11 * time.Minute)

	status, raw = e.Post(t, "/assets/STD", url.Values{
		"account":    {"alice"},
		"max_supply": {"2000"},
	})

	var asset engine.AssetResource
	if err := raw.Extract("asset", &asset); err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, 200, status)
	assert.Equal(t, big.NewInt(2000), asset.MaxSupply)
}

func TestUpdateAssetFlagsNotGranted(
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

	e.Advance(11 * time.Minute)

	// Activating a flag outside the granted permissions is rejected.
	status, raw := e.Post(t, "/assets/STD", url.Values{
		"account": {"alice"},
		"flags":   {"1"},
	})

	var er errors.ConcreteUserError
	if err := raw.Extract("error", &er); err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, 400, status)
	assert.Equal(t, "invalid_state_transition", er.Code)
}

func TestUpdateAssetIssuerTransfer(
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

	// The receiving account has not delegated to the current issuer yet.
	status, raw := e.Post(t, "/assets/STD/issuer", url.Values{
		"account":    {"alice"},
		"new_issuer": {"bob"},
	})

	var er errors.ConcreteUserError
	if err := raw.Extract("error", &er); err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 401, status)
	assert.Equal(t, "not_authorized", er.Code)

	e.Delegate(t, "bob", "alice")

	status, raw = e.Post(t, "/assets/STD/issuer", url.Values{
		"account":    {"alice"},
		"new_issuer": {"bob"},
	})

	var asset engine.AssetResource
	if err := raw.Extract("asset", &asset); err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, 200, status)
	assert.Equal(t, "bob", asset.Issuer)
}

func TestUpdateFeedProducersReplace(
	t *testing.T,
) {
	e := CreateEngine(t)
	e.Genesis(t)
	e.CreateAccount(t, "alice", false)
	e.CreateAccount(t, "pub1", false)
	e.CreateAccount(t, "pub2", false)

	e.CreateStablecoin(t, "alice", "BIT", 0)

	status, _ := e.Post(t, "/assets/BIT/publishers", url.Values{
		"account":   {"alice"},
		"producers": {"pub1,pub2"},
	})
	assert.Equal(t, 200, status)

	status, _ = e.Post(t, "/assets/BIT/feeds", url.Values{
		"account":     {"pub1"},
		"price":       {"1/2"},
		"quote_asset": {engine.SymbolCore},
	})
	assert.Equal(t, 200, status)

	// Dropping pub1 from the publisher set revokes its slot.
	status, _ = e.Post(t, "/assets/BIT/publishers", url.Values{
		"account":   {"alice"},
		"producers": {"pub2"},
	})
	assert.Equal(t, 200, status)

	status, raw := e.Post(t, "/assets/BIT/feeds", url.Values{
		"account":     {"pub1"},
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
