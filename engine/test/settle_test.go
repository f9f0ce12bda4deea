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

func TestSettleAssetRequestReplaceCancel(
	t *testing.T,
) {
	e := CreateEngine(t)
	e.Genesis(t)
	e.CreateAccount(t, "alice", false)
	e.CreateAccount(t, "erin", false)

	e.CreateStablecoin(t, "alice", "BIT", 0)
	e.Fund(t, "erin", "BIT", 1000)

	status, raw := e.Post(t, "/assets/BIT/settle", url.Values{
		"account": {"erin"},
		"amount":  {"400"},
	})

	var settlement engine.SettlementResource
	if err := raw.Extract("settlement", &settlement); err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, 201, status)
	assert.Equal(t, "erin", settlement.Account)
	assert.Equal(t, big.NewInt(400), settlement.Balance)
	assert.Equal(t,
		e.Now.Add(time.Hour).UnixNano()/engine.TimeResolutionNs,
		settlement.SettlementDate)
	assert.Equal(t, big.NewInt(600), e.Balance(t, "erin", "BIT"))

	// A new request replaces the pending one and refunds its escrow.
	status, raw = e.Post(t, "/assets/BIT/settle", url.Values{
		"account": {"erin"},
		"amount":  {"250"},
	})
	if err := raw.Extract("settlement", &settlement); err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, 201, status)
	assert.Equal(t, big.NewInt(250), settlement.Balance)
	assert.Equal(t, big.NewInt(750), e.Balance(t, "erin", "BIT"))

	// A zero amount cancels the pending request.
	status, _ = e.Post(t, "/assets/BIT/settle", url.Values{
		"account": {"erin"},
		"amount":  {"0"},
	})
	assert.Equal(t, 200, status)
	assert.Equal(t, big.NewInt(1000), e.Balance(t, "erin", "BIT"))

	status, raw = e.Post(t, "/assets/BIT/settle", url.Values{
		"account": {"erin"},
		"amount":  {"0"},
	})

	var er errors.ConcreteUserError
	if err := raw.Extract("error", &er); err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 404, status)
	assert.Equal(t, "not_found", er.Code)
}

func TestSettleAssetDisabled(
	t *testing.T,
) {
	e := CreateEngine(t)
	e.Genesis(t)
	e.CreateAccount(t, "alice", false)
	e.CreateAccount(t, "erin", false)

	e.CreateStablecoin(t, "alice", "BIT", engine.PermDisableForceSettle)
	e.Fund(t, "erin", "BIT", 1000)

	status, raw := e.Post(t, "/assets/BIT/settle", url.Values{
		"account": {"erin"},
		"amount":  {"400"},
	})

	var er errors.ConcreteUserError
	if err := raw.Extract("error", &er); err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, 400, status)
	assert.Equal(t, "invalid_state_transition", er.Code)
}

func TestSettleAssetMaturation(
	t *testing.T,
) {
	e := CreateEngine(t)
	e.Genesis(t)
	e.CreateAccount(t, "alice", false)
	e.CreateAccount(t, "pub1", false)
	e.CreateAccount(t, "dan", false)
	e.CreateAccount(t, "erin", false)

	e.CreateStablecoin(t, "alice", "BIT", 0)

	status, _ := e.Post(t, "/assets/BIT/publishers", url.Values{
		"account":   {"alice"},
		"producers": {"pub1"},
	})
	assert.Equal(t, 200, status)

	status, _ = e.Post(t, "/assets/BIT/feeds", url.Values{
		"account":     {"pub1"},
		"price":       {"1/2"},
		"quote_asset": {engine.SymbolCore},
	})
	assert.Equal(t, 200, status)

	e.SeedCallOrder(t, "dan", "BIT", engine.SymbolCore, 4000, 1000, "erin")

	status, _ = e.Post(t, "/assets/BIT/settle", url.Values{
		"account": {"erin"},
		"amount":  {"400"},
	})
	assert.Equal(t, 201, status)
	assert.Equal(t, big.NewInt(600), e.Balance(t, "erin", "BIT"))

	// The matured settlement fills against the open position at the feed
	// price: 400 units at 1/2 pay out 800 units of backing.
	e.RunOneTask(t)

	assert.Equal(t,
		big.NewInt(800), e.Balance(t, "erin", engine.SymbolCore))
	assert.Equal(t, big.NewInt(600), e.Balance(t, "erin", "BIT"))
}
