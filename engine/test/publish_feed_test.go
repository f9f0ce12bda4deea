package test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/teal/ledger/engine"
	"github.com/teal/ledger/lib/errors"
)

func TestPublishFeedSimple(
	t *testing.T,
) {
	e := CreateEngine(t)
	e.Genesis(t)
	e.CreateAccount(t, "alice", false)
	e.CreateAccount(t, "pub1", false)

	e.CreateStablecoin(t, "alice", "BIT", 0)

	status, _ := e.Post(t, "/assets/BIT/publishers", url.Values{
		"account":   {"alice"},
		"producers": {"pub1"},
	})
	assert.Equal(t, 200, status)

	status, raw := e.Post(t, "/assets/BIT/feeds", url.Values{
		"account":     {"pub1"},
		"price":       {"1/2"},
		"quote_asset": {engine.SymbolCore},
	})

	var feed engine.FeedResource
	if err := raw.Extract("feed", &feed); err != nil {
		t.Fatal(err)
	}
	var stablecoin engine.StablecoinResource
	if err := raw.Extract("stablecoin", &stablecoin); err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, 200, status)
	assert.Equal(t, "pub1", feed.Publisher)
	assert.Equal(t, "1/2", feed.Price)
	assert.Equal(t, "1/2", stablecoin.CurrentFeed)
}

func TestPublishFeedNotPublisher(
	t *testing.T,
) {
	e := CreateEngine(t)
	e.Genesis(t)
	e.CreateAccount(t, "alice", false)
	e.CreateAccount(t, "mallory", false)

	e.CreateStablecoin(t, "alice", "BIT", 0)

	status, raw := e.Post(t, "/assets/BIT/feeds", url.Values{
		"account":     {"mallory"},
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

func TestPublishFeedWrongQuoteAsset(
	t *testing.T,
) {
	e := CreateEngine(t)
	e.Genesis(t)
	e.CreateAccount(t, "alice", false)
	e.CreateAccount(t, "pub1", false)

	e.CreateStablecoin(t, "alice", "BIT", 0)

	status, _ := e.Post(t, "/assets/BIT/publishers", url.Values{
		"account":   {"alice"},
		"producers": {"pub1"},
	})
	assert.Equal(t, 200, status)

	status, raw := e.Post(t, "/assets/BIT/feeds", url.Values{
		"account":     {"pub1"},
		"price":       {"1/2"},
		"quote_asset": {engine.SymbolUSD},
	})

	var er errors.ConcreteUserError
	if err := raw.Extract("error", &er); err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, 400, status)
	assert.Equal(t, "consistency_violation", er.Code)
}

func TestPublishFeedMedian(
	t *testing.T,
) {
	e := CreateEngine(t)
	e.Genesis(t)
	e.CreateAccount(t, "alice", false)
	e.CreateAccount(t, "pub1", false)
	e.CreateAccount(t, "pub2", false)
	e.CreateAccount(t, "pub3", false)

	status, _ := e.Post(t, "/assets", url.Values{
		"account":                       {"alice"},
		"symbol":                        {"BIT"},
		"type":                          {"stablecoin"},
		"max_supply":                    {"1000000000"},
		"backing_asset":                 {engine.SymbolCore},
		"feed_lifetime":                 {"3600"},
		"minimum_feeds":                 {"3"},
		"settlement_delay":              {"3600"},
		"maintenance_collateralization": {"17500"},
	})
	assert.Equal(t, 201, status)

	status, _ = e.Post(t, "/assets/BIT/publishers", url.Values{
		"account":   {"alice"},
		"producers": {"pub1,pub2,pub3"},
	})
	assert.Equal(t, 200, status)

	status, raw := e.Post(t, "/assets/BIT/feeds", url.Values{
		"account":     {"pub1"},
		"price":       {"1/10"},
		"quote_asset": {engine.SymbolCore},
	})
	assert.Equal(t, 200, status)

	// Below the minimum feed count the median stays null.
	var stablecoin engine.StablecoinResource
	if err := raw.Extract("stablecoin", &stablecoin); err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, "0/0", stablecoin.CurrentFeed)

	status, _ = e.Post(t, "/assets/BIT/feeds", url.Values{
		"account":     {"pub2"},
		"price":       {"1/30"},
		"quote_asset": {engine.SymbolCore},
	})
	assert.Equal(t, 200, status)

	status, raw = e.Post(t, "/assets/BIT/feeds", url.Values{
		"account":     {"pub3"},
		"price":       {"1/20"},
		"quote_asset": {engine.SymbolCore},
	})
	assert.Equal(t, 200, status)

	if err := raw.Extract("stablecoin", &stablecoin); err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, "1/20", stablecoin.CurrentFeed)
}
