package endpoint

import (
	"context"
	"net/http"

	"goji.io/pat"

	"github.com/teal/ledger/engine"
	"github.com/teal/ledger/engine/market"
	"github.com/teal/ledger/engine/model"
	"github.com/teal/ledger/lib/clock"
	"github.com/teal/ledger/lib/db"
	"github.com/teal/ledger/lib/errors"
	"github.com/teal/ledger/lib/format"
	"github.com/teal/ledger/lib/ptr"
	"github.com/teal/ledger/lib/svc"
)

const (
	// EndPtUpdateFeedProducers replaces the feed publisher set of a
	// stablecoin.
	EndPtUpdateFeedProducers EndPtName = "UpdateFeedProducers"
)

func init() {
	registrar[EndPtUpdateFeedProducers] = NewUpdateFeedProducers
}

// UpdateFeedProducers controls the publisher set of a stablecoin.
type UpdateFeedProducers struct {
	Account   string
	Signatory string
	Symbol    string
	Producers model.NameSet
}

// NewUpdateFeedProducers constructs and initialiezes the endpoint.
func NewUpdateFeedProducers(
	r *http.Request,
) (Endpoint, error) {
	return &UpdateFeedProducers{}, nil
}

// Validate validates the input parameters.
func (e *UpdateFeedProducers) Validate(
	r *http.Request,
) error {
	ctx := r.Context()

	account, err := ValidateAccountName(ctx, r.PostFormValue("account"))
	if err != nil {
		return errors.Trace(err)
	}
	e.Account = *account
	e.Signatory = r.PostFormValue("signatory")

	symbol, err := ValidateSymbol(ctx, pat.Param(r, "symbol"))
	if err != nil {
		return errors.Trace(err)
	}
	e.Symbol = *symbol

	e.Producers, err = validateNameList(ctx, r.PostFormValue("producers"))
	if err != nil {
		return errors.Trace(err)
	}
	if len(e.Producers) > engine.MaxFeedPublishers {
		return errors.Trace(errors.NewUserErrorf(nil,
			400, "threshold_violation",
			"The publisher set you provided exceeds the maximal number of "+
				"publishers: %d.",
			engine.MaxFeedPublishers,
		))
	}

	return nil
}

// Execute executes the endpoint.
func (e *UpdateFeedProducers) Execute(
	ctx context.Context,
) (*int, *svc.Resp, error) {
	ctx = db.Begin(ctx)
	defer db.LoggedRollback(ctx)

	now := clock.Get(ctx)

	if _, err := CheckSignatory(ctx, e.Account, e.Signatory); err != nil {
		return nil, nil, errors.Trace(err)
	}

	asset, err := model.LoadAssetBySymbol(ctx, e.Symbol)
	if err != nil {
		return nil, nil, errors.Trace(err)
	} else if asset == nil {
		return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
			404, "not_found",
			"The asset you are trying to update does not exist: %s.",
			e.Symbol,
		))
	}
	if asset.Issuer != e.Account {
		return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
			401, "not_authorized",
			"Only the issuer of %s may update its publisher set.",
			e.Symbol,
		))
	}
	if asset.Type != engine.AstTpStablecoin {
		return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
			400, "invalid_state_transition",
			"Only stablecoins carry a publisher set: %s is %s.",
			e.Symbol, asset.Type,
		))
	}
	if asset.ProducerFed() {
		return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
			400, "invalid_state_transition",
			"The asset %s is producer fed: its publisher set cannot be "+
				"edited.",
			e.Symbol,
		))
	}

	stablecoin, err := model.LoadStablecoinByAsset(ctx, e.Symbol)
	if err != nil {
		return nil, nil, errors.Trace(err)
	} else if stablecoin == nil {
		return nil, nil, errors.Newf(
			"Missing stablecoin data for asset: %s", e.Symbol)
	}

	feeds, err := model.LoadFeedsByAsset(ctx, e.Symbol)
	if err != nil {
		return nil, nil, errors.Trace(err)
	}

	// Stale publishers are dropped, existing ones keep their feed, new ones
	// get an empty slot.
	existing := map[string]bool{}
	for i := range feeds {
		if e.Producers.Contains(feeds[i].Publisher) {
			existing[feeds[i].Publisher] = true
			continue
		}
		if err := feeds[i].Delete(ctx); err != nil {
			return nil, nil, errors.Trace(err)
		}
	}
	for _, producer := range e.Producers {
		if existing[producer] {
			continue
		}
		account, err := model.LoadAccountByName(ctx, producer)
		if err != nil {
			return nil, nil, errors.Trace(err)
		} else if account == nil {
			return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
				404, "not_found",
				"The publisher account does not exist: %s.",
				producer,
			))
		}
		_, err = model.CreateFeed(ctx,
			e.Symbol, producer, model.ZeroAmount(), model.ZeroAmount(), now)
		if err != nil {
			return nil, nil, errors.Trace(err)
		}
	}

	changed, err := stablecoin.UpdateMedianFeeds(ctx, now)
	if err != nil {
		return nil, nil, errors.Trace(err)
	}
	stablecoin.Updated = now
	if err := stablecoin.Save(ctx); err != nil {
		return nil, nil, errors.Trace(err)
	}

	if changed {
		err := market.CheckCallOrders(ctx, asset, stablecoin, true, now)
		if err != nil {
			return nil, nil, errors.Trace(err)
		}
	}

	db.Commit(ctx)

	return ptr.Int(http.StatusOK), &svc.Resp{
		"stablecoin": format.JSONPtr(
			model.NewStablecoinResource(ctx, stablecoin)),
	}, nil
}
