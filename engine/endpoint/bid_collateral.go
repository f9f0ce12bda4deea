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
	// EndPtBidCollateral places or cancels a collateral bid on a globally
	// settled stablecoin.
	EndPtBidCollateral EndPtName = "BidCollateral"
)

func init() {
	registrar[EndPtBidCollateral] = NewBidCollateral
}

// BidCollateral controls collateral bids placed ahead of the revival of a
// globally settled market. A zero debt cancels the pending bid.
type BidCollateral struct {
	Account   string
	Signatory string
	Symbol    string

	CollateralAsset string
	Collateral      *big.Int
	Debt            *big.Int
}

// NewBidCollateral constructs and initialiezes the endpoint.
func NewBidCollateral(
	r *http.Request,
) (Endpoint, error) {
	return &BidCollateral{}, nil
}

// Validate validates the input parameters.
func (e *BidCollateral) Validate(
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

	collateralAsset, err := ValidateSymbol(ctx,
		r.PostFormValue("collateral_asset"))
	if err != nil {
		return errors.Trace(err)
	}
	e.CollateralAsset = *collateralAsset

	collateral, err := ValidateAmount(ctx, r.PostFormValue("collateral"))
	if err != nil {
		return errors.Trace(err)
	}
	e.Collateral = collateral

	debt, err := ValidateAmount(ctx, r.PostFormValue("debt"))
	if err != nil {
		return errors.Trace(err)
	}
	e.Debt = debt

	return nil
}

// Execute executes the endpoint.
func (e *BidCollateral) Execute(
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
			"The asset you are bidding on does not exist: %s.",
			e.Symbol,
		))
	}
	if asset.Type != engine.AstTpStablecoin {
		return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
			400, "invalid_state_transition",
			"Collateral bids can only be placed on stablecoins: %s is %s.",
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
	if !stablecoin.HasSettlement() {
		return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
			400, "invalid_state_transition",
			"Collateral bids can only be placed on globally settled "+
				"markets: %s is open.",
			e.Symbol,
		))
	}

	if e.CollateralAsset != stablecoin.BackingAsset {
		return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
			400, "consistency_violation",
			"The bid collateral asset must be the backing asset of %s: "+
				"expected %s, got %s.",
			e.Symbol, stablecoin.BackingAsset, e.CollateralAsset,
		))
	}

	bid, err := model.LoadCollateralBidByBidderAndAsset(ctx,
		e.Account, e.Symbol)
	if err != nil {
		return nil, nil, errors.Trace(err)
	}

	if e.Debt.Sign() == 0 {
		if bid == nil {
			return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
				404, "not_found",
				"You have no pending bid on %s to cancel.",
				e.Symbol,
			))
		}
		if err := market.CancelBid(ctx, bid, stablecoin, now); err != nil {
			return nil, nil, errors.Trace(err)
		}

		db.Commit(ctx)

		return ptr.Int(http.StatusOK), &svc.Resp{
			"bid": format.JSONPtr(model.NewBidResource(ctx, bid)),
		}, nil
	}

	if e.Collateral.Sign() == 0 {
		return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
			400, "threshold_violation",
			"The bid collateral must be positive.",
		))
	}

	// A new bid replaces the pending one: the previous collateral is
	// refunded before the new amount is escrowed.
	if bid != nil {
		if err := market.CancelBid(ctx, bid, stablecoin, now); err != nil {
			return nil, nil, errors.Trace(err)
		}
	}

	balance, err := model.LoadBalanceByAccountAndAsset(ctx,
		e.Account, stablecoin.BackingAsset)
	if err != nil {
		return nil, nil, errors.Trace(err)
	} else if balance == nil {
		return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
			400, "resource_exhausted",
			"You have no %s balance to collateralize the bid.",
			stablecoin.BackingAsset,
		))
	}
	if err := balance.Adjust(new(big.Int).Neg(e.Collateral)); err != nil {
		return nil, nil, errors.Trace(errors.NewUserErrorf(err,
			400, "resource_exhausted",
			"Your %s balance cannot cover the bid collateral of %s.",
			stablecoin.BackingAsset, e.Collateral.String(),
		))
	}
	balance.Updated = now
	if err := balance.Save(ctx); err != nil {
		return nil, nil, errors.Trace(err)
	}

	bid, err = model.CreateCollateralBid(ctx,
		e.Account,
		e.Symbol,
		model.AmountFromInt(e.Collateral),
		model.AmountFromInt(e.Debt),
		now,
	)
	if err != nil {
		return nil, nil, errors.Trace(err)
	}

	db.Commit(ctx)

	return ptr.Int(http.StatusCreated), &svc.Resp{
		"bid": format.JSONPtr(model.NewBidResource(ctx, bid)),
	}, nil
}
