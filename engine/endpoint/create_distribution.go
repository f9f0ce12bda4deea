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
	"github.com/teal/ledger/engine/model"
	"github.com/teal/ledger/lib/clock"
	"github.com/teal/ledger/lib/db"
	"github.com/teal/ledger/lib/errors"
	"github.com/teal/ledger/lib/format"
	"github.com/teal/ledger/lib/ptr"
	"github.com/teal/ledger/lib/svc"
)

const (
	// EndPtCreateDistribution creates or edits the distribution round of an
	// asset.
	EndPtCreateDistribution EndPtName = "CreateDistribution"
)

func init() {
	registrar[EndPtCreateDistribution] = NewCreateDistribution
}

// CreateDistribution controls the creation and edition of a distribution
// round: senders fund the round in the fund asset and receive units of the
// distributed asset in proportion once the round closes.
type CreateDistribution struct {
	Account   string
	Signatory string
	Symbol    string

	FundAsset  string
	UnitAmount *big.Int
	InputUnit  *big.Int
	MinFund    *big.Int
	BeginDate  time.Time
	EndDate    time.Time
}

// NewCreateDistribution constructs and initialiezes the endpoint.
func NewCreateDistribution(
	r *http.Request,
) (Endpoint, error) {
	return &CreateDistribution{}, nil
}

// Validate validates the input parameters.
func (e *CreateDistribution) Validate(
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

	fundAsset, err := ValidateSymbol(ctx, r.PostFormValue("fund_asset"))
	if err != nil {
		return errors.Trace(err)
	}
	e.FundAsset = *fundAsset

	unitAmount, err := ValidateAmount(ctx, r.PostFormValue("unit_amount"))
	if err != nil {
		return errors.Trace(err)
	}
	e.UnitAmount = unitAmount

	inputUnit, err := ValidateAmount(ctx, r.PostFormValue("input_unit"))
	if err != nil {
		return errors.Trace(err)
	}
	e.InputUnit = inputUnit

	minFund, err := ValidateAmount(ctx, r.PostFormValue("min_fund"))
	if err != nil {
		return errors.Trace(err)
	}
	e.MinFund = minFund

	if e.UnitAmount.Sign() == 0 || e.InputUnit.Sign() == 0 {
		return errors.Trace(errors.NewUserErrorf(nil,
			400, "threshold_violation",
			"The distribution unit amounts must be positive.",
		))
	}

	begin, err := validateInterval(ctx,
		"begin_date", r.PostFormValue("begin_date"))
	if err != nil {
		return errors.Trace(err)
	}
	e.BeginDate = time.Unix(0, begin*engine.TimeResolutionNs).UTC()

	end, err := validateInterval(ctx,
		"end_date", r.PostFormValue("end_date"))
	if err != nil {
		return errors.Trace(err)
	}
	e.EndDate = time.Unix(0, end*engine.TimeResolutionNs).UTC()

	if !e.EndDate.After(e.BeginDate) {
		return errors.Trace(errors.NewUserErrorf(nil,
			400, "threshold_violation",
			"The distribution end date must be after its begin date.",
		))
	}

	return nil
}

// Execute executes the endpoint.
func (e *CreateDistribution) Execute(
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
			"The asset you are trying to distribute does not exist: %s.",
			e.Symbol,
		))
	}
	if asset.Issuer != e.Account {
		return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
			401, "not_authorized",
			"Only the issuer of %s may create its distribution.",
			e.Symbol,
		))
	}

	fundAsset, err := model.LoadAssetBySymbol(ctx, e.FundAsset)
	if err != nil {
		return nil, nil, errors.Trace(err)
	} else if fundAsset == nil {
		return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
			404, "not_found",
			"The fund asset does not exist: %s.",
			e.FundAsset,
		))
	}
	if e.FundAsset == e.Symbol {
		return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
			400, "consistency_violation",
			"The fund asset must differ from the distributed asset.",
		))
	}

	distribution, err := model.LoadDistributionByAsset(ctx, e.Symbol)
	if err != nil {
		return nil, nil, errors.Trace(err)
	}

	if distribution == nil {
		if e.BeginDate.Before(now.Add(engine.DistributionMinLead)) {
			return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
				400, "threshold_violation",
				"The distribution begin date must be at least %s out.",
				engine.DistributionMinLead.String(),
			))
		}

		distribution, err = model.CreateDistribution(ctx,
			e.Symbol,
			e.FundAsset,
			model.AmountFromInt(e.UnitAmount),
			model.AmountFromInt(e.InputUnit),
			model.AmountFromInt(e.MinFund),
			e.BeginDate,
			e.EndDate,
			now,
		)
		if err != nil {
			return nil, nil, errors.Trace(err)
		}

		err = async.Queue(ctx,
			task.NewProcessDistribution(ctx, e.EndDate, e.Symbol))
		if err != nil {
			return nil, nil, errors.Trace(err)
		}

		db.Commit(ctx)

		return ptr.Int(http.StatusCreated), &svc.Resp{
			"distribution": format.JSONPtr(
				model.NewDistributionResource(ctx, distribution)),
		}, nil
	}

	// An existing round can only be edited before it begins and its begin
	// date can never be brought forward.
	if distribution.BeginDate.Before(now) {
		return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
			400, "invalid_state_transition",
			"The distribution of %s has already begun and cannot be edited.",
			e.Symbol,
		))
	}
	if e.BeginDate.Before(distribution.BeginDate) {
		return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
			400, "threshold_violation",
			"The distribution begin date cannot be brought forward.",
		))
	}

	distribution.FundAsset = e.FundAsset
	distribution.UnitAmount = model.AmountFromInt(e.UnitAmount)
	distribution.InputUnit = model.AmountFromInt(e.InputUnit)
	distribution.MinFund = model.AmountFromInt(e.MinFund)
	distribution.BeginDate = e.BeginDate
	distribution.EndDate = e.EndDate
	distribution.Updated = now
	if err := distribution.Save(ctx); err != nil {
		return nil, nil, errors.Trace(err)
	}

	// The round end may have moved; the stale task is a no-op on a round
	// that has not ended.
	err = async.Queue(ctx,
		task.NewProcessDistribution(ctx, e.EndDate, e.Symbol))
	if err != nil {
		return nil, nil, errors.Trace(err)
	}

	db.Commit(ctx)

	return ptr.Int(http.StatusOK), &svc.Resp{
		"distribution": format.JSONPtr(
			model.NewDistributionResource(ctx, distribution)),
	}, nil
}
