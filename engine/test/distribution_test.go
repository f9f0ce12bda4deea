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

func (e *Engine) dateParam(
	d time.Duration,
) string {
	return fmt.Sprintf(
		"%d", e.Now.Add(d).UnixNano()/engine.TimeResolutionNs)
}

func TestCreateDistributionLifecycle(
	t *testing.T,
) {
	e := CreateEngine(t)
	e.Genesis(t)
	e.CreateAccount(t, "alice", false)

	status, _ := e.Post(t, "/assets", url.Values{
		"account":    {"alice"},
		"symbol":     {"DST"},
		"type":       {"standard"},
		"max_supply": {"100000"},
	})
	assert.Equal(t, 201, status)

	// The round must begin with enough lead time.
	status, raw := e.Post(t, "/assets/DST/distribution", url.Values{
		"account":     {"alice"},
		"fund_asset":  {engine.SymbolCore},
		"unit_amount": {"10"},
		"input_unit":  {"100"},
		"min_fund":    {"1000"},
		"begin_date":  {e.dateParam(10 * 24 * time.Hour)},
		"end_date":    {e.dateParam(40 * 24 * time.Hour)},
	})

	var er errors.ConcreteUserError
	if err := raw.Extract("error", &er); err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 400, status)
	assert.Equal(t, "threshold_violation", er.Code)

	status, raw = e.Post(t, "/assets/DST/distribution", url.Values{
		"account":     {"alice"},
		"fund_asset":  {engine.SymbolCore},
		"unit_amount": {"10"},
		"input_unit":  {"100"},
		"min_fund":    {"1000"},
		"begin_date":  {e.dateParam(31 * 24 * time.Hour)},
		"end_date":    {e.dateParam(62 * 24 * time.Hour)},
	})

	var distribution engine.DistributionResource
	if err := raw.Extract("distribution", &distribution); err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, 201, status)
	assert.Equal(t, "DST", distribution.Asset)
	assert.Equal(t, engine.SymbolCore, distribution.FundAsset)
	assert.Equal(t, big.NewInt(10), distribution.UnitAmount)
	assert.Equal(t, big.NewInt(1000), distribution.MinFund)
	assert.Equal(t, big.NewInt(0), distribution.TotalFunded)
	assert.Equal(t,
		e.Now.Add(31*24*time.Hour).UnixNano()/engine.TimeResolutionNs,
		distribution.BeginDate)

	// The round can be edited before it begins.
	status, raw = e.Post(t, "/assets/DST/distribution", url.Values{
		"account":     {"alice"},
		"fund_asset":  {engine.SymbolCore},
		"unit_amount": {"20"},
		"input_unit":  {"100"},
		"min_fund":    {"2000"},
		"begin_date":  {e.dateParam(32 * 24 * time.Hour)},
		"end_date":    {e.dateParam(62 * 24 * time.Hour)},
	})
	if err := raw.Extract("distribution", &distribution); err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, 200, status)
	assert.Equal(t, big.NewInt(20), distribution.UnitAmount)
	assert.Equal(t, big.NewInt(2000), distribution.MinFund)

	// The begin date can never be brought forward.
	status, raw = e.Post(t, "/assets/DST/distribution", url.Values{
		"account":     {"alice"},
		"fund_asset":  {engine.SymbolCore},
		"unit_amount": {"20"},
		"input_unit":  {"100"},
		"min_fund":    {"2000"},
		"begin_date":  {e.dateParam(31 * 24 * time.Hour)},
		"end_date":    {e.dateParam(62 * 24 * time.Hour)},
	})
	if err := raw.Extract("error", &er); err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 400, status)
	assert.Equal(t, "threshold_violation", er.Code)

	// Once begun the round is frozen.
	e.Advance(33 * 24 * time.Hour)

	status, raw = e.Post(t, "/assets/DST/distribution", url.Values{
		"account":     {"alice"},
		"fund_asset":  {engine.SymbolCore},
		"unit_amount": {"20"},
		"input_unit":  {"100"},
		"min_fund":    {"2000"},
		"begin_date":  {e.dateParam(31 * 24 * time.Hour)},
		"end_date":    {e.dateParam(62 * 24 * time.Hour)},
	})
	if err := raw.Extract("error", &er); err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 400, status)
	assert.Equal(t, "invalid_state_transition", er.Code)
}

func TestFundDistributionLifecycle(
	t *testing.T,
) {
	e := CreateEngine(t)
	e.Genesis(t)
	e.CreateAccount(t, "alice", false)
	e.CreateAccount(t, "carol", false)
	e.Fund(t, "carol", engine.SymbolCore, 5000)

	status, _ := e.Post(t, "/assets", url.Values{
		"account":    {"alice"},
		"symbol":     {"DST"},
		"type":       {"standard"},
		"max_supply": {"100000"},
	})
	assert.Equal(t, 201, status)

	status, _ = e.Post(t, "/assets/DST/distribution", url.Values{
		"account":     {"alice"},
		"fund_asset":  {engine.SymbolCore},
		"unit_amount": {"10"},
		"input_unit":  {"100"},
		"min_fund":    {"1000"},
		"begin_date":  {e.dateParam(31 * 24 * time.Hour)},
		"end_date":    {e.dateParam(62 * 24 * time.Hour)},
	})
	assert.Equal(t, 201, status)

	// Funding is rejected before the round begins.
	status, raw := e.Post(t, "/assets/DST/distribution/fund", url.Values{
		"account": {"carol"},
		"amount":  {"1000"},
	})

	var er errors.ConcreteUserError
	if err := raw.Extract("error", &er); err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 400, status)
	assert.Equal(t, "invalid_state_transition", er.Code)

	e.Advance(32 * 24 * time.Hour)

	status, raw = e.Post(t, "/assets/DST/distribution/fund", url.Values{
		"account": {"carol"},
		"amount":  {"1000"},
	})

	var distribution engine.DistributionResource
	if err := raw.Extract("distribution", &distribution); err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, 200, status)
	assert.Equal(t, big.NewInt(1000), distribution.TotalFunded)
	assert.Equal(t,
		big.NewInt(4000), e.Balance(t, "carol", engine.SymbolCore))

	// The amount is the new funding balance; lowering it refunds the delta.
	status, raw = e.Post(t, "/assets/DST/distribution/fund", url.Values{
		"account": {"carol"},
		"amount":  {"500"},
	})
	if err := raw.Extract("distribution", &distribution); err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, 200, status)
	assert.Equal(t, big.NewInt(500), distribution.TotalFunded)
	assert.Equal(t,
		big.NewInt(4500), e.Balance(t, "carol", engine.SymbolCore))

	status, raw = e.Post(t, "/assets/DST/distribution/fund", url.Values{
		"account": {"carol"},
		"amount":  {"150"},
	})
	if err := raw.Extract("error", &er); err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 400, status)
	assert.Equal(t, "threshold_violation", er.Code)

	// A zero amount cancels the funding balance.
	status, _ = e.Post(t, "/assets/DST/distribution/fund", url.Values{
		"account": {"carol"},
		"amount":  {"0"},
	})
	assert.Equal(t, 200, status)
	assert.Equal(t,
		big.NewInt(5000), e.Balance(t, "carol", engine.SymbolCore))

	status, raw = e.Post(t, "/assets/DST/distribution/fund", url.Values{
		"account": {"carol"},
		"amount":  {"0"},
	})
	if err := raw.Extract("error", &er); err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 404, status)
	assert.Equal(t, "not_found", er.Code)
}

func TestProcessDistributionSuccess(
	t *testing.T,
) {
	e := CreateEngine(t)
	e.Genesis(t)
	e.CreateAccount(t, "alice", false)
	e.CreateAccount(t, "carol", false)
	e.Fund(t, "carol", engine.SymbolCore, 5000)

	status, _ := e.Post(t, "/assets", url.Values{
		"account":    {"alice"},
		"symbol":     {"DST"},
		"type":       {"standard"},
		"max_supply": {"100000"},
	})
	assert.Equal(t, 201, status)

	status, _ = e.Post(t, "/assets/DST/distribution", url.Values{
		"account":     {"alice"},
		"fund_asset":  {engine.SymbolCore},
		"unit_amount": {"10"},
		"input_unit":  {"100"},
		"min_fund":    {"1000"},
		"begin_date":  {e.dateParam(31 * 24 * time.Hour)},
		"end_date":    {e.dateParam(62 * 24 * time.Hour)},
	})
	assert.Equal(t, 201, status)

	e.Advance(32 * 24 * time.Hour)

	status, _ = e.Post(t, "/assets/DST/distribution/fund", url.Values{
		"account": {"carol"},
		"amount":  {"1000"},
	})
	assert.Equal(t, 200, status)

	// The closed round grants 10 units of the asset per 100 units funded and
	// pays the aggregate fund to the issuer.
	e.RunOneTask(t)

	assert.Equal(t, big.NewInt(100), e.Balance(t, "carol", "DST"))
	assert.Equal(t,
		big.NewInt(4000), e.Balance(t, "carol", engine.SymbolCore))
	assert.Equal(t,
		big.NewInt(1000), e.Balance(t, "alice", engine.SymbolCore))
}

func TestProcessDistributionRefund(
	t *testing.T,
) {
	e := CreateEngine(t)
	e.Genesis(t)
	e.CreateAccount(t, "alice", false)
	e.CreateAccount(t, "carol", false)
	e.Fund(t, "carol", engine.SymbolCore, 5000)

	status, _ := e.Post(t, "/assets", url.Values{
		"account":    {"alice"},
		"symbol":     {"DST"},
		"type":       {"standard"},
		"max_supply": {"100000"},
	})
	assert.Equal(t, 201, status)

	status, _ = e.Post(t, "/assets/DST/distribution", url.Values{
		"account":     {"alice"},
		"fund_asset":  {engine.SymbolCore},
		"unit_amount": {"10"},
		"input_unit":  {"100"},
		"min_fund":    {"2000"},
		"begin_date":  {e.dateParam(31 * 24 * time.Hour)},
		"end_date":    {e.dateParam(62 * 24 * time.Hour)},
	})
	assert.Equal(t, 201, status)

	e.Advance(32 * 24 * time.Hour)

	status, _ = e.Post(t, "/assets/DST/distribution/fund", url.Values{
		"account": {"carol"},
		"amount":  {"1000"},
	})
	assert.Equal(t, 200, status)

	// The round misses its minimal funding so all senders are refunded.
	e.RunOneTask(t)

	assert.Equal(t, big.NewInt(0), e.Balance(t, "carol", "DST"))
	assert.Equal(t,
		big.NewInt(5000), e.Balance(t, "carol", engine.SymbolCore))
	assert.Equal(t,
		big.NewInt(0), e.Balance(t, "alice", engine.SymbolCore))
}
