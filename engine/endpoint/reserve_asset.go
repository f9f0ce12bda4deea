package endpoint

import (
	"context"
	"math/big"
	"net/http"
	"time"

	"goji.io/pat"

	"github.com/teal/ledger/engine"
	"github.com/teal/ledger/engine/model"
	"github.com/teal/ledger/lib/clock"
	"github.com/teal/ledger/lib/db"
	"github.com/teal/ledger/lib/errors"
	"github.com/teal/ledger/lib/format"
	"github.com/teal/ledger/lib/ptr"
	"github.com/teal/ledger/lib/svc"
)

const (
	// EndPtReserveAsset burns units of an asset from the payer's balance.
	EndPtReserveAsset EndPtName = "ReserveAsset"
)

func init() {
	registrar[EndPtReserveAsset] = NewReserveAsset
}

// ReserveAsset controls the reservation (burn) of asset units.
type ReserveAsset struct {
	Account   string
	Signatory string
	Symbol    string
	Amount    *big.Int
}

// NewReserveAsset constructs and initialiezes the endpoint.
func NewReserveAsset(
	r *http.Request,
) (Endpoint, error) {
	return &ReserveAsset{}, nil
}

// Validate validates the input parameters.
func (e *ReserveAsset) Validate(
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

	amount, err := ValidateAmount(ctx, r.PostFormValue("amount"))
	if err != nil {
		return errors.Trace(err)
	}
	if amount.Sign() == 0 {
		return errors.Trace(errors.NewUserErrorf(nil,
			400, "invalid_state_transition",
			"The amount you provided must be positive.",
		))
	}
	e.Amount = amount

	return nil
}

// Execute executes the endpoint.
func (e *ReserveAsset) Execute(
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
			"The asset you are trying to reserve does not exist: %s.",
			e.Symbol,
		))
	}
	if asset.Type.MarketIssued() {
		return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
			400, "invalid_state_transition",
			"Assets of type %s are market issued and cannot be reserved.",
			asset.Type,
		))
	}
	if asset.Type == engine.AstTpUnique {
		return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
			400, "invalid_state_transition",
			"Unique assets cannot be reserved.",
		))
	}

	supply, err := model.LoadSupplyByAsset(ctx, e.Symbol)
	if err != nil {
		return nil, nil, errors.Trace(err)
	}

	balance, err := model.LoadBalanceByAccountAndAsset(ctx,
		e.Account, e.Symbol)
	if err != nil {
		return nil, nil, errors.Trace(err)
	} else if balance == nil {
		return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
			400, "resource_exhausted",
			"You have no %s balance to reserve from.",
			e.Symbol,
		))
	}
	if err := balance.Adjust(new(big.Int).Neg(e.Amount)); err != nil {
		return nil, nil, errors.Trace(errors.NewUserErrorf(err,
			400, "resource_exhausted",
			"Your %s balance cannot cover the reserved amount of %s.",
			e.Symbol, e.Amount.String(),
		))
	}
	balance.Updated = now
	if err := balance.Save(ctx); err != nil {
		return nil, nil, errors.Trace(err)
	}

	if asset.Type == engine.AstTpBond {
		if err := redeemBondCollateral(ctx,
			asset, supply, e.Account, e.Amount, now); err != nil {
			return nil, nil, errors.Trace(err)
		}
	}

	supply.AdjustLiquid(new(big.Int).Neg(e.Amount))
	if supply.Liquid.Int().Sign() < 0 {
		return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
			400, "resource_exhausted",
			"The liquid supply of %s cannot cover the reserved amount.",
			e.Symbol,
		))
	}
	supply.Updated = now
	if err := supply.Save(ctx); err != nil {
		return nil, nil, errors.Trace(err)
	}

	db.Commit(ctx)

	return ptr.Int(http.StatusOK), &svc.Resp{
		"asset": format.JSONPtr(model.NewAssetResource(ctx, asset, supply)),
	}, nil
}

// redeemBondCollateral redeems the proportional share of the bond collateral
// pool backing the reserved amount, rounded down, back to the payer.
func redeemBondCollateral(
	ctx context.Context,
	asset *model.Asset,
	supply *model.Supply,
	payer string,
	amount *big.Int,
	now time.Time,
) error {
	bond, err := model.LoadBondByAsset(ctx, asset.Symbol)
	if err != nil {
		return errors.Trace(err)
	} else if bond == nil {
		return errors.Newf(
			"Missing bond data for asset: %s", asset.Symbol)
	}

	total := supply.Total()
	if total.Sign() == 0 {
		return nil
	}

	payout := new(big.Int).Mul(bond.CollateralPool.Int(), amount)
	payout.Div(payout, total)

	if payout.Sign() > 0 {
		balance, err := model.LoadOrCreateBalanceByAccountAndAsset(ctx,
			payer, bond.ValueAsset, now)
		if err != nil {
			return errors.Trace(err)
		}
		if err := balance.Adjust(payout); err != nil {
			return errors.Trace(err)
		}
		balance.Updated = now
		if err := balance.Save(ctx); err != nil {
			return errors.Trace(err)
		}

		bond.CollateralPool = model.AmountFromInt(
			new(big.Int).Sub(bond.CollateralPool.Int(), payout))
		bond.Updated = now
		if err := bond.Save(ctx); err != nil {
			return errors.Trace(err)
		}
	}

	return nil
}
