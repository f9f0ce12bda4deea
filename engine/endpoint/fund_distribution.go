package endpoint

import (
	"context"
	"math/big"
	"net/http"

	"goji.io/pat"

	"github.com/teal/ledger/engine/model"
	"github.com/teal/ledger/lib/clock"
	"github.com/teal/ledger/lib/db"
	"github.com/teal/ledger/lib/errors"
	"github.com/teal/ledger/lib/format"
	"github.com/teal/ledger/lib/ptr"
	"github.com/teal/ledger/lib/svc"
)

const (
	// EndPtFundDistribution funds the open distribution round of an asset.
	EndPtFundDistribution EndPtName = "FundDistribution"
)

func init() {
	registrar[EndPtFundDistribution] = NewFundDistribution
}

// FundDistribution controls the funding balance of a sender in a
// distribution round. The amount is the new funding balance, not a delta; a
// zero amount cancels the balance and refunds the escrow.
type FundDistribution struct {
	Account   string
	Signatory string
	Symbol    string
	Amount    *big.Int
}

// NewFundDistribution constructs and initialiezes the endpoint.
func NewFundDistribution(
	r *http.Request,
) (Endpoint, error) {
	return &FundDistribution{}, nil
}

// Validate validates the input parameters.
func (e *FundDistribution) Validate(
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
func (e *FundDistribution) Execute(
	ctx context.Context,
) (*int, *svc.Resp, error) {
	ctx = db.Begin(ctx)
	defer db.LoggedRollback(ctx)

	now := clock.Get(ctx)

	if _, err := CheckSignatory(ctx, e.Account, e.Signatory); err != nil {
		return nil, nil, errors.Trace(err)
	}

	distribution, err := model.LoadDistributionByAsset(ctx, e.Symbol)
	if err != nil {
		return nil, nil, errors.Trace(err)
	} else if distribution == nil {
		return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
			404, "not_found",
			"The asset %s has no distribution round.",
			e.Symbol,
		))
	}
	if distribution.Status != string(model.DsStOpen) {
		return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
			400, "invalid_state_transition",
			"The distribution round of %s is closed.",
			e.Symbol,
		))
	}
	if now.Before(distribution.BeginDate) {
		return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
			400, "invalid_state_transition",
			"The distribution round of %s has not begun.",
			e.Symbol,
		))
	}
	if now.After(distribution.EndDate) {
		return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
			400, "invalid_state_transition",
			"The distribution round of %s has ended.",
			e.Symbol,
		))
	}

	if e.Amount.Sign() != 0 {
		rem := new(big.Int).Mod(e.Amount, distribution.InputUnit.Int())
		if rem.Sign() != 0 {
			return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
				400, "threshold_violation",
				"The funding amount must be a multiple of the input unit: "+
					"%s.",
				distribution.InputUnit.Int().String(),
			))
		}
	}

	dsBalance, err := model.LoadDistributionBalanceBySender(ctx,
		distribution.Token, e.Account)
	if err != nil {
		return nil, nil, errors.Trace(err)
	}
	if dsBalance == nil {
		if e.Amount.Sign() == 0 {
			return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
				404, "not_found",
				"You have no funding balance on the distribution of %s.",
				e.Symbol,
			))
		}
		dsBalance, err = model.CreateDistributionBalance(ctx,
			distribution.Token, e.Account, now)
		if err != nil {
			return nil, nil, errors.Trace(err)
		}
	}

	// The provided amount is the new funding balance; only the delta moves.
	delta := new(big.Int).Sub(e.Amount, dsBalance.Value.Int())

	if delta.Sign() != 0 {
		balance, err := model.LoadOrCreateBalanceByAccountAndAsset(ctx,
			e.Account, distribution.FundAsset, now)
		if err != nil {
			return nil, nil, errors.Trace(err)
		}
		if err := balance.Adjust(new(big.Int).Neg(delta)); err != nil {
			return nil, nil, errors.Trace(errors.NewUserErrorf(err,
				400, "resource_exhausted",
				"Your %s balance cannot cover the funding amount of %s.",
				distribution.FundAsset, e.Amount.String(),
			))
		}
		balance.Updated = now
		if err := balance.Save(ctx); err != nil {
			return nil, nil, errors.Trace(err)
		}

		supply, err := model.LoadSupplyByAsset(ctx, distribution.FundAsset)
		if err != nil {
			return nil, nil, errors.Trace(err)
		}
		supply.AdjustLiquid(new(big.Int).Neg(delta))
		supply.AdjustPending(delta)
		supply.Updated = now
		if err := supply.Save(ctx); err != nil {
			return nil, nil, errors.Trace(err)
		}
	}

	distribution.TotalFunded = model.AmountFromInt(
		new(big.Int).Add(distribution.TotalFunded.Int(), delta))
	distribution.Updated = now
	if err := distribution.Save(ctx); err != nil {
		return nil, nil, errors.Trace(err)
	}

	if e.Amount.Sign() == 0 {
		if err := dsBalance.Delete(ctx); err != nil {
			return nil, nil, errors.Trace(err)
		}
	} else {
		dsBalance.Value = model.AmountFromInt(e.Amount)
		dsBalance.Updated = now
		if err := dsBalance.Save(ctx); err != nil {
			return nil, nil, errors.Trace(err)
		}
	}

	db.Commit(ctx)

	return ptr.Int(http.StatusOK), &svc.Resp{
		"distribution": format.JSONPtr(
			model.NewDistributionResource(ctx, distribution)),
	}, nil
}
