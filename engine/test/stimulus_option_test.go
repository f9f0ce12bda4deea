package test

import (
	"math/big"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/teal/ledger/engine"
	"github.com/teal/ledger/engine/model"
	"github.com/teal/ledger/lib/clock"
	"github.com/teal/ledger/lib/db"
	"github.com/teal/ledger/lib/errors"
)

func TestFundStimulus(
	t *testing.T,
) {
	e := CreateEngine(t)
	e.Genesis(t)
	e.CreateAccount(t, "biz", true)
	e.CreateAccount(t, "carol", false)
	e.Fund(t, "biz", engine.SymbolCore, 1000)

	status, _ := e.Post(t, "/assets", url.Values{
		"account":             {"biz"},
		"symbol":              {"STM"},
		"type":                {"stimulus"},
		"max_supply":          {"100000"},
		"redemption_asset":    {engine.SymbolCore},
		"distribution_list":   {"carol"},
		"distribution_amount": {"50"},
	})
	assert.Equal(t, 201, status)

	status, raw := e.Post(t, "/assets/STM/stimulus/fund", url.Values{
		"account": {"biz"},
		"amount":  {"400"},
	})

	var stimulus engine.StimulusResource
	if err := raw.Extract("stimulus", &stimulus); err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, 200, status)
	assert.Equal(t, "STM", stimulus.Asset)
	assert.Equal(t, engine.SymbolCore, stimulus.RedemptionAsset)
	assert.Equal(t, big.NewInt(400), stimulus.RedemptionPool)
	assert.Equal(t,
		big.NewInt(600), e.Balance(t, "biz", engine.SymbolCore))

	// Additional payments accumulate in the pool.
	status, raw = e.Post(t, "/assets/STM/stimulus/fund", url.Values{
		"account": {"biz"},
		"amount":  {"100"},
	})
	if err := raw.Extract("stimulus", &stimulus); err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, 200, status)
	assert.Equal(t, big.NewInt(500), stimulus.RedemptionPool)
	assert.Equal(t,
		big.NewInt(500), e.Balance(t, "biz", engine.SymbolCore))
}

func TestFundStimulusNotStimulus(
	t *testing.T,
) {
	e := CreateEngine(t)
	e.Genesis(t)
	e.CreateAccount(t, "alice", false)
	e.Fund(t, "alice", engine.SymbolCore, 1000)

	status, _ := e.Post(t, "/assets", url.Values{
		"account":    {"alice"},
		"symbol":     {"STD"},
		"type":       {"standard"},
		"max_supply": {"1000"},
	})
	assert.Equal(t, 201, status)

	status, raw := e.Post(t, "/assets/STD/stimulus/fund", url.Values{
		"account": {"alice"},
		"amount":  {"400"},
	})

	var er errors.ConcreteUserError
	if err := raw.Extract("error", &er); err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, 400, status)
	assert.Equal(t, "invalid_state_transition", er.Code)
}

func TestExerciseOption(
	t *testing.T,
) {
	e := CreateEngine(t)
	e.Genesis(t)
	e.CreateAccount(t, "alice", false)
	e.CreateAccount(t, "erin", false)

	// Option assets are created by the trading engine so the test seeds one
	// directly.
	ctx := db.Begin(clock.With(e.Ctx, e.Now))
	_, err := model.CreateAsset(ctx,
		"OPT", "alice", engine.AstTpOption,
		model.AmountFromInt(big.NewInt(100000)),
		0, 0,
		model.NameSet{}, model.NameSet{},
		model.NameSet{}, model.NameSet{},
		0, 0,
		e.Now,
	)
	if err != nil {
		db.LoggedRollback(ctx)
		t.Fatalf("failed to create option asset: %+v", err)
	}
	if _, err := model.CreateSupply(ctx, "OPT", e.Now); err != nil {
		db.LoggedRollback(ctx)
		t.Fatalf("failed to create option supply: %+v", err)
	}
	db.Commit(ctx)

	e.Fund(t, "erin", "OPT", 100)

	status, raw := e.Post(t, "/assets/OPT/exercise", url.Values{
		"account": {"erin"},
		"amount":  {"40"},
	})

	var asset engine.AssetResource
	if err := raw.Extract("asset", &asset); err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, 200, status)
	assert.Equal(t, "OPT", asset.Symbol)
	assert.Equal(t, big.NewInt(60), e.Balance(t, "erin", "OPT"))

	status, raw = e.Post(t, "/assets/OPT/exercise", url.Values{
		"account": {"erin"},
		"amount":  {"100"},
	})

	var er errors.ConcreteUserError
	if err := raw.Extract("error", &er); err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 400, status)
	assert.Equal(t, "resource_exhausted", er.Code)
}

func TestExerciseOptionWrongType(
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

	status, raw := e.Post(t, "/assets/STD/exercise", url.Values{
		"account": {"alice"},
		"amount":  {"40"},
	})

	var er errors.ConcreteUserError
	if err := raw.Extract("error", &er); err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, 400, status)
	assert.Equal(t, "invalid_state_transition", er.Code)
}
