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
	// EndPtSettleAsset requests or executes the settlement of a stablecoin.
	EndPtSettleAsset EndPtName = "SettleAsset"
)

func init() {
	registrar[EndPtSettleAsset] = NewSettleAsset
}

// SettleAsset controls holder initiated settlement. On a settled market the
// redemption is immediate against the settlement fund; otherwise a delayed
// settlement request is queued. A zero amount cancels the pending request.
type SettleAsset struct {
	Account   string
	Signatory string
	Symbol    string
	Amount    *big.Int
}

// NewSettleAsset constructs and initialiezes the endpoint.
func NewSettleAsset(
	r *http.Request,
) (Endpoint, error) {
	return &SettleAsset{}, nil
}

// Validate validates the input parameters.
func (e *SettleAsset) Validate(
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
	e.Amount = amount

	return nil
}

// Execute executes the endpoint.
func (e *SettleAsset) Execute(
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
	if asset.Type != engine.AstTpStablecoin {
		return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
			400, "invalid_state_transition",
			"Only stablecoins can be settled: %s is %s.",
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

	if stablecoin.HasSettlement() {
		if e.Amount.Sign() == 0 {
			return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
				400, "invalid_state_transition",
				"The amount you provided must be positive on a settled "+
					"market.",
			))
		}
		return e.redeem(ctx, asset, stablecoin, now)
	}

	if !asset.ForceSettleEnabled() {
		return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
			400, "invalid_state_transition",
			"Force settlement is disabled on %s.",
			e.Symbol,
		))
	}

	settlement, err := model.LoadSettlementByAccountAndAsset(ctx,
		e.Account, e.Symbol)
	if err != nil {
		return nil, nil, errors.Trace(err)
	}

	if e.Amount.Sign() == 0 {
		if settlement == nil {
			return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
				404, "not_found",
				"You have no pending settlement on %s to cancel.",
				e.Symbol,
			))
		}
		if err := market.CancelSettlement(ctx, settlement, now); err != nil {
			return nil, nil, errors.Trace(err)
		}

		db.Commit(ctx)

		return ptr.Int(http.StatusOK), &svc.Resp{
			"settlement": format.JSONPtr(
				model.NewSettlementResource(ctx, settlement)),
		}, nil
	}

	// A new request replaces the pending one: the previous escrow is
	// refunded before the new amount is escrowed.
	if settlement != nil {
		if err := market.CancelSettlement(ctx, settlement, now); err != nil {
			return nil, nil, errors.Trace(err)
		}
	}

	balance, err := model.LoadBalanceByAccountAndAsset(ctx,
		e.Account, e.Symbol)
	if err != nil {
		return nil, nil, errors.Trace(err)
	} else if balance == nil {
		return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
			400, "resource_exhausted",
			"You have no %s balance to settle.",
			e.Symbol,
		))
	}
	if err := balance.Adjust(new(big.Int).Neg(e.Amount)); err != nil {
		return nil, nil, errors.Trace(errors.NewUserErrorf(err,
			400, "resource_exhausted",
			"Your %s balance cannot cover the settled amount of %s.",
			e.Symbol, e.Amount.String(),
		))
	}
	balance.Updated = now
	if err := balance.Save(ctx); err != nil {
		return nil, nil, errors.Trace(err)
	}

	supply, err := model.LoadSupplyByAsset(ctx, e.Symbol)
	if err != nil {
		return nil, nil, errors.Trace(err)
	}
	supply.AdjustLiquid(new(big.Int).Neg(e.Amount))
	supply.AdjustPending(e.Amount)
	supply.Updated = now
	if err := supply.Save(ctx); err != nil {
		return nil, nil, errors.Trace(err)
	}

	settlementDate := now.Add(
		time.Duration(stablecoin.SettlementDelay) * time.Second)
	settlement, err = model.CreateSettlement(ctx,
		e.Account,
		e.Symbol,
		model.AmountFromInt(e.Amount),
		settlementDate,
		now,
	)
	if err != nil {
		return nil, nil, errors.Trace(err)
	}

	err = async.Queue(ctx,
		task.NewMatureSettlements(ctx, settlementDate, e.Symbol))
	if err != nil {
		return nil, nil, errors.Trace(err)
	}

	db.Commit(ctx)

	return ptr.Int(http.StatusCreated), &svc.Resp{
		"settlement": format.JSONPtr(
			model.NewSettlementResource(ctx, settlement)),
	}, nil
}

// redeem executes an immediate redemption against the settlement fund of a
// settled market.
func (e *SettleAsset) redeem(
	ctx context.Context,
	asset *model.Asset,
	stablecoin *model.Stablecoin,
	now time.Time,
) (*int, *svc.Resp, error) {
	balance, err := model.LoadBalanceByAccountAndAsset(ctx,
		e.Account, e.Symbol)
	if err != nil {
		return nil, nil, errors.Trace(err)
	} else if balance == nil {
		return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
			400, "resource_exhausted",
			"You have no %s balance to settle.",
			e.Symbol,
		))
	}
	if err := balance.Adjust(new(big.Int).Neg(e.Amount)); err != nil {
		return nil, nil, errors.Trace(errors.NewUserErrorf(err,
			400, "resource_exhausted",
			"Your %s balance cannot cover the settled amount of %s.",
			e.Symbol, e.Amount.String(),
		))
	}
	balance.Updated = now
	if err := balance.Save(ctx); err != nil {
		return nil, nil, errors.Trace(err)
	}

	supply, err := model.LoadSupplyByAsset(ctx, e.Symbol)
	if err != nil {
		return nil, nil, errors.Trace(err)
	}

	payout, err := market.RedeemFromFund(ctx,
		stablecoin, supply, e.Amount, now)
	if err != nil {
		return nil, nil, errors.Trace(err)
	}

	backing, err := model.LoadOrCreateBalanceByAccountAndAsset(ctx,
		e.Account, stablecoin.BackingAsset, now)
	if err != nil {
		return nil, nil, errors.Trace(err)
	}
	if err := backing.Adjust(payout); err != nil {
		return nil, nil, errors.Trace(err)
	}
	backing.Updated = now
	if err := backing.Save(ctx); err != nil {
		return nil, nil, errors.Trace(err)
	}

	supply.AdjustLiquid(new(big.Int).Neg(e.Amount))
	supply.Updated = now
	if err := supply.Save(ctx); err != nil {
		return nil, nil, errors.Trace(err)
	}

	db.Commit(ctx)

	return ptr.Int(http.StatusOK), &svc.Resp{
		"payout": format.JSONPtr(engine.SettlementPayoutResource{
			Asset:       e.Symbol,
			Account:     e.Account,
			Settled:     e.Amount,
			Payout:      payout,
			PayoutAsset: stablecoin.BackingAsset,
		}),
	}, nil
}
