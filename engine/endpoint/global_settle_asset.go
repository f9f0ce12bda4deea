package endpoint

import (
	"context"
	"math/big"
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
	// EndPtGlobalSettleAsset globally settles a stablecoin at a price chosen
	// by its issuer.
	EndPtGlobalSettleAsset EndPtName = "GlobalSettleAsset"
)

func init() {
	registrar[EndPtGlobalSettleAsset] = NewGlobalSettleAsset
}

// GlobalSettleAsset controls the global settlement of a stablecoin by its
// issuer.
type GlobalSettleAsset struct {
	Account   string
	Signatory string
	Symbol    string

	BaseAmount  *big.Int
	QuoteAmount *big.Int
	QuoteAsset  string
}

// NewGlobalSettleAsset constructs and initialiezes the endpoint.
func NewGlobalSettleAsset(
	r *http.Request,
) (Endpoint, error) {
	return &GlobalSettleAsset{}, nil
}

// Validate validates the input parameters.
func (e *GlobalSettleAsset) Validate(
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
func (e *GlobalSettleAsset) Execute(
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
			"The asset you are trying to settle does not exist: %s.",
			e.Symbol,
		))
	}
	if asset.Issuer != e.Account {
		return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
			401, "not_authorized",
			"Only the issuer of %s may settle it globally.",
			e.Symbol,
		))
	}
	if asset.Type != engine.AstTpStablecoin {
		return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
			400, "invalid_state_transition",
			"Only stablecoins can be settled globally: %s is %s.",
			e.Symbol, asset.Type,
		))
	}
	if !asset.FlagActive(engine.PermGlobalSettle) {
		return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
			401, "not_authorized",
			"Global settlement is not enabled on %s.",
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
	if stablecoin.HasSettlement() {
		return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
			400, "invalid_state_transition",
			"The asset %s is already globally settled.",
			e.Symbol,
		))
	}

	if e.QuoteAsset != stablecoin.BackingAsset {
		return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
			400, "consistency_violation",
			"The settlement quote asset must be the backing asset of %s: "+
				"expected %s, got %s.",
			e.Symbol, stablecoin.BackingAsset, e.QuoteAsset,
		))
	}

	supply, err := model.LoadSupplyByAsset(ctx, e.Symbol)
	if err != nil {
		return nil, nil, errors.Trace(err)
	}
	if supply.Total().Sign() == 0 {
		return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
			400, "invalid_state_transition",
			"The asset %s has no outstanding supply to settle.",
			e.Symbol,
		))
	}

	settlePrice := engine.Price{
		BaseAmount:  e.BaseAmount,
		BaseAsset:   e.Symbol,
		QuoteAmount: e.QuoteAmount,
		QuoteAsset:  stablecoin.BackingAsset,
	}

	orders, err := model.LoadCallOrdersByAsset(ctx, e.Symbol)
	if err != nil {
		return nil, nil, errors.Trace(err)
	}
	// The worst position must remain solvent at the settlement price,
	// otherwise the fund could not cover the supply it freezes.
	if len(orders) > 0 && orders[0].Insolvent(settlePrice) {
		return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
			400, "threshold_violation",
			"The least collateralized position of %s is insolvent at the "+
				"provided settlement price.",
			e.Symbol,
		))
	}

	err = market.GloballySettle(ctx, asset, stablecoin, settlePrice, now)
	if err != nil {
		return nil, nil, errors.Trace(err)
	}

	db.Commit(ctx)

	return ptr.Int(http.StatusOK), &svc.Resp{
		"stablecoin": format.JSONPtr(
			model.NewStablecoinResource(ctx, stablecoin)),
	}, nil
}
