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
	// EndPtExerciseOption exercises units of an option asset.
	EndPtExerciseOption EndPtName = "ExerciseOption"
)

func init() {
	registrar[EndPtExerciseOption] = NewExerciseOption
}

// ExerciseOption controls the exercise of option asset units. The exercised
// units are moved out of the holder's balance into pending supply; the
// strike exchange itself is executed by the trading engine.
type ExerciseOption struct {
	Account   string
	Signatory string
	Symbol    string
	Amount    *big.Int
}

// NewExerciseOption constructs and initialiezes the endpoint.
func NewExerciseOption(
	r *http.Request,
) (Endpoint, error) {
	return &ExerciseOption{}, nil
}

// Validate validates the input parameters.
func (e *ExerciseOption) Validate(
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
			"The exercised amount must be positive.",
		))
	}

	return nil
}

// Execute executes the endpoint.
func (e *ExerciseOption) Execute(
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
			"The asset you are trying to exercise does not exist: %s.",
			e.Symbol,
		))
	}
	if asset.Type != engine.AstTpOption {
		return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
			400, "invalid_state_transition",
			"Only option assets can be exercised: %s is %s.",
			e.Symbol, asset.Type,
		))
	}

	balance, err := model.LoadBalanceByAccountAndAsset(ctx,
		e.Account, e.Symbol)
	if err != nil {
		return nil, nil, errors.Trace(err)
	} else if balance == nil {
		return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
			400, "resource_exhausted",
			"You have no %s balance to exercise.",
			e.Symbol,
		))
	}
	if err := balance.Adjust(new(big.Int).Neg(e.Amount)); err != nil {
		return nil, nil, errors.Trace(errors.NewUserErrorf(err,
			400, "resource_exhausted",
			"Your %s balance cannot cover the exercised amount of %s.",
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

	db.Commit(ctx)

	return ptr.Int(http.StatusOK), &svc.Resp{
		"asset": format.JSONPtr(model.NewAssetResource(ctx, asset, supply)),
	}, nil
}
