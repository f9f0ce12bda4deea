package endpoint

import (
	"context"
	"math/big"
	"net/http"

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
	// EndPtFundStimulus pays into the redemption pool of a stimulus asset.
	EndPtFundStimulus EndPtName = "FundStimulus"
)

func init() {
	registrar[EndPtFundStimulus] = NewFundStimulus
}

// FundStimulus controls payments into the redemption pool backing the
// distributed units of a stimulus asset.
type FundStimulus struct {
	Account   string
	Signatory string
	Symbol    string
	Amount    *big.Int
}

// NewFundStimulus constructs and initialiezes the endpoint.
func NewFundStimulus(
	r *http.Request,
) (Endpoint, error) {
	return &FundStimulus{}, nil
}

// Validate validates the input parameters.
func (e *FundStimulus) Validate(
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
	if e.Amount.Sign() == 0 {
		return errors.Trace(errors.NewUserErrorf(nil,
			400, "threshold_violation",
			"The funding amount must be positive.",
		))
	}

	return nil
}

// Execute executes the endpoint.
func (e *FundStimulus) Execute(
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
			"The asset you are trying to fund does not exist: %s.",
			e.Symbol,
		))
	}
	if asset.Type != engine.AstTpStimulus {
		return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
			400, "invalid_state_transition",
			"Only stimulus assets can be funded: %s is %s.",
			e.Symbol, asset.Type,
		))
	}

	stimulus, err := model.LoadStimulusByAsset(ctx, e.Symbol)
	if err != nil {
		return nil, nil, errors.Trace(err)
	} else if stimulus == nil {
		return nil, nil, errors.Newf(
			"Missing stimulus data for asset: %s", e.Symbol)
	}

	balance, err := model.LoadBalanceByAccountAndAsset(ctx,
		e.Account, stimulus.RedemptionAsset)
	if err != nil {
		return nil, nil, errors.Trace(err)
	} else if balance == nil {
		return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
			400, "resource_exhausted",
			"You have no %s balance to fund the stimulus with.",
			stimulus.RedemptionAsset,
		))
	}
	if err := balance.Adjust(new(big.Int).Neg(e.Amount)); err != nil {
		return nil, nil, errors.Trace(errors.NewUserErrorf(err,
			400, "resource_exhausted",
			"Your %s balance cannot cover the funding amount of %s.",
			stimulus.RedemptionAsset, e.Amount.String(),
		))
	}
	balance.Updated = now
	if err := balance.Save(ctx); err != nil {
		return nil, nil, errors.Trace(err)
	}

	supply, err := model.LoadSupplyByAsset(ctx, stimulus.RedemptionAsset)
	if err != nil {
		return nil, nil, errors.Trace(err)
	}
	supply.AdjustLiquid(new(big.Int).Neg(e.Amount))
	supply.AdjustPending(e.Amount)
	supply.Updated = now
	if err := supply.Save(ctx); err != nil {
		return nil, nil, errors.Trace(err)
	}

	stimulus.RedemptionPool = model.AmountFromInt(
		new(big.Int).Add(stimulus.RedemptionPool.Int(), e.Amount))
	stimulus.Updated = now
	if err := stimulus.Save(ctx); err != nil {
		return nil, nil, errors.Trace(err)
	}

	db.Commit(ctx)

	return ptr.Int(http.StatusOK), &svc.Resp{
		"stimulus": format.JSONPtr(
			model.NewStimulusResource(ctx, stimulus)),
	}, nil
}
