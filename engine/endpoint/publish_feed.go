package endpoint

import (
	"context"
	"math/big"
	"net/http"
	"time"

	"goji.io/pat"

	"github.com/teal/ledger/engine"
	"github.com/teal/ledger/engine/async"
	"github.com/teal/ledger/engine/async/task"
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
	// EndPtPublishFeed publishes a price feed for a stablecoin.
	EndPtPublishFeed EndPtName = "PublishFeed"
)

func init() {
	registrar[EndPtPublishFeed] = NewPublishFeed
}

// PublishFeed controls the publication of price feeds.
type PublishFeed struct {
	Account   string
	Signatory string
	Symbol    string

	BaseAmount  *big.Int
	QuoteAmount *big.Int
	QuoteAsset  string
}

// NewPublishFeed constructs and initialiezes the endpoint.
func NewPublishFeed(
	r *http.Request,
) (Endpoint, error) {
	return &PublishFeed{}, nil
}

// Validate validates the input parameters.
func (e *PublishFeed) Validate(
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

	base, quote, err := ValidatePrice(ctx, r.PostFormValue("price"))
	if err != nil {
		return errors.Trace(err)
	}
	e.BaseAmount = base
	e.QuoteAmount = quote

	quoteAsset, err := ValidateSymbol(ctx, r.PostFormValue("quote_asset"))
	if err != nil {
		return errors.Trace(err)
	}
	e.QuoteAsset = *quoteAsset

	return nil
}

// Execute executes the endpoint.
func (e *PublishFeed) Execute(
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
			"The asset you are publishing a feed for does not exist: %s.",
			e.Symbol,
		))
	}
	if asset.Type != engine.AstTpStablecoin {
		return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
			400, "invalid_state_transition",
			"Feeds can only be published for stablecoins: %s is %s.",
			e.Symbol, asset.Type,
		))
	}

	stablecoin, err := model.LoadStablecoinByAsset(ctx, e.Symbol)
	if err != nil {
		return nil, nil, errors.Trace(err)
	} else if stablecoin == nil {
		return nil, nil, errors.Newf(
			"Missing stablecoin data for asset: %s", e.Symbol)
	}

	if e.QuoteAsset != stablecoin.BackingAsset {
		return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
			400, "consistency_violation",
			"The feed quote asset must be the backing asset of %s: "+
				"expected %s, got %s.",
			e.Symbol, stablecoin.BackingAsset, e.QuoteAsset,
		))
	}

	var feed *model.Feed
	if asset.ProducerFed() {
		// Producer feeds are published by delegates of the system account.
		system, err := model.LoadAccountByName(ctx, engine.NullAccount)
		if err != nil {
			return nil, nil, errors.Trace(err)
		}
		if system == nil || e.Account == engine.NullAccount ||
			!system.Delegates.Contains(e.Account) {
			return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
				401, "not_authorized",
				"The asset %s is producer fed and %s is not a producer.",
				e.Symbol, e.Account,
			))
		}
		feed, err = model.LoadFeedByAssetAndPublisher(ctx,
			e.Symbol, e.Account)
		if err != nil {
			return nil, nil, errors.Trace(err)
		}
		if feed == nil {
			feed, err = model.CreateFeed(ctx,
				e.Symbol, e.Account,
				model.ZeroAmount(), model.ZeroAmount(), now)
			if err != nil {
				return nil, nil, errors.Trace(err)
			}
		}
	} else {
		feed, err = model.LoadFeedByAssetAndPublisher(ctx,
			e.Symbol, e.Account)
		if err != nil {
			return nil, nil, errors.Trace(err)
		}
		if feed == nil {
			return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
				401, "not_authorized",
				"The account %s is not in the publisher set of %s.",
				e.Account, e.Symbol,
			))
		}
	}

	feed.BaseAmount = model.AmountFromInt(e.BaseAmount)
	feed.QuoteAmount = model.AmountFromInt(e.QuoteAmount)
	feed.Updated = now
	if err := feed.Save(ctx); err != nil {
		return nil, nil, errors.Trace(err)
	}

	expiry := now.Add(time.Duration(stablecoin.FeedLifetime) * time.Second)
	err = async.Queue(ctx, task.NewExpireFeeds(ctx, expiry, e.Symbol))
	if err != nil {
		return nil, nil, errors.Trace(err)
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
		if stablecoin.HasSettlement() {
			if err := market.Revive(ctx, asset, stablecoin, now); err != nil {
				return nil, nil, errors.Trace(err)
			}
		}
		err := market.CheckCallOrders(ctx, asset, stablecoin, true, now)
		if err != nil {
			return nil, nil, errors.Trace(err)
		}
	}

	db.Commit(ctx)

	return ptr.Int(http.StatusOK), &svc.Resp{
		"feed": format.JSONPtr(
			model.NewFeedResource(ctx, feed, stablecoin.BackingAsset)),
		"stablecoin": format.JSONPtr(
			model.NewStablecoinResource(ctx, stablecoin)),
	}, nil
}
