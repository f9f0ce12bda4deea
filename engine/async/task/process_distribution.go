package task

import (
	"context"
	"math/big"
	"time"

	"github.com/teal/ledger/engine"
	"github.com/teal/ledger/engine/async"
	"github.com/teal/ledger/engine/model"
	"github.com/teal/ledger/lib/clock"
	"github.com/teal/ledger/lib/db"
	"github.com/teal/ledger/lib/errors"
)

func init() {
	async.Registrar[engine.TkProcessDistribution] = NewProcessDistribution
}

// ProcessDistribution closes the distribution round of an asset once its end
// date has passed. A round that reached its minimal funding grants each
// sender units of the distributed asset in proportion to its funding balance
// and pays the aggregate fund to the issuer; an underfunded round refunds
// all senders. The task reference time is the end date of the round.
type ProcessDistribution struct {
	created time.Time
	asset   string
}

// NewProcessDistribution constructs and initializes the task.
func NewProcessDistribution(
	ctx context.Context,
	created time.Time,
	subject string,
) async.Task {
	return &ProcessDistribution{
		created: created,
		asset:   subject,
	}
}

// Name returns the task name.
func (t *ProcessDistribution) Name() engine.TkName {
	return engine.TkProcessDistribution
}

// Created returns the task reference time.
func (t *ProcessDistribution) Created() time.Time {
	return t.created
}

// Subject returns the task subject.
func (t *ProcessDistribution) Subject() string {
	return t.asset
}

// MaxRetries returns the max retries for the task.
func (t *ProcessDistribution) MaxRetries() uint64 {
	return 8
}

// DeadlineForRetry returns the deadline for the provided retry count.
func (t *ProcessDistribution) DeadlineForRetry(
	retry uint64,
) time.Time {
	return t.created.Add(time.Duration(retry) * time.Minute)
}

// Execute idempotently runs the task to completion or errors.
func (t *ProcessDistribution) Execute(
	ctx context.Context,
) error {
	ctx = db.Begin(ctx)
	defer db.LoggedRollback(ctx)

	now := clock.Get(ctx)

	distribution, err := model.LoadDistributionByAsset(ctx, t.asset)
	if err != nil {
		return errors.Trace(err)
	} else if distribution == nil {
		return errors.Trace(
			errors.Newf("Distribution not found: %s", t.asset))
	}
	if distribution.Status != string(model.DsStOpen) {
		db.Commit(ctx)
		return nil
	}
	if now.Before(distribution.EndDate) {
		return errors.Trace(
			errors.Newf("Distribution round has not ended: %s", t.asset))
	}

	asset, err := model.LoadAssetBySymbol(ctx, t.asset)
	if err != nil {
		return errors.Trace(err)
	} else if asset == nil {
		return errors.Trace(errors.Newf("Asset not found: %s", t.asset))
	}

	balances, err := model.LoadDistributionBalances(ctx, distribution.Token)
	if err != nil {
		return errors.Trace(err)
	}

	funded := distribution.TotalFunded.Int()
	succeeded := funded.Cmp(distribution.MinFund.Int()) >= 0

	fundSupply, err := model.LoadSupplyByAsset(ctx, distribution.FundAsset)
	if err != nil {
		return errors.Trace(err)
	}

	if succeeded {
		supply, err := model.LoadSupplyByAsset(ctx, t.asset)
		if err != nil {
			return errors.Trace(err)
		}

		for i := range balances {
			b := &balances[i]

			// granted = value / input_unit * unit_amount, rounded down.
			units := new(big.Int).Div(
				b.Value.Int(), distribution.InputUnit.Int())
			granted := new(big.Int).Mul(units, distribution.UnitAmount.Int())

			balance, err := model.LoadOrCreateBalanceByAccountAndAsset(ctx,
				b.Sender, t.asset, now)
			if err != nil {
				return errors.Trace(err)
			}
			if err := balance.Adjust(granted); err != nil {
				return errors.Trace(err)
			}
			balance.Updated = now
			if err := balance.Save(ctx); err != nil {
				return errors.Trace(err)
			}
			supply.AdjustLiquid(granted)

			if err := b.Delete(ctx); err != nil {
				return errors.Trace(err)
			}
		}

		supply.Updated = now
		if err := supply.Save(ctx); err != nil {
			return errors.Trace(err)
		}

		// The aggregate fund escrow is released to the issuer.
		issuerBalance, err := model.LoadOrCreateBalanceByAccountAndAsset(ctx,
			asset.Issuer, distribution.FundAsset, now)
		if err != nil {
			return errors.Trace(err)
		}
		if err := issuerBalance.Adjust(funded); err != nil {
			return errors.Trace(err)
		}
		issuerBalance.Updated = now
		if err := issuerBalance.Save(ctx); err != nil {
			return errors.Trace(err)
		}

		fundSupply.AdjustPending(new(big.Int).Neg(funded))
		fundSupply.AdjustLiquid(funded)
	} else {
		for i := range balances {
			b := &balances[i]

			balance, err := model.LoadOrCreateBalanceByAccountAndAsset(ctx,
				b.Sender, distribution.FundAsset, now)
			if err != nil {
				return errors.Trace(err)
			}
			if err := balance.Adjust(b.Value.Int()); err != nil {
				return errors.Trace(err)
			}
			balance.Updated = now
			if err := balance.Save(ctx); err != nil {
				return errors.Trace(err)
			}

			fundSupply.AdjustPending(new(big.Int).Neg(b.Value.Int()))
			fundSupply.AdjustLiquid(b.Value.Int())

			if err := b.Delete(ctx); err != nil {
				return errors.Trace(err)
			}
		}
	}

	fundSupply.Updated = now
	if err := fundSupply.Save(ctx); err != nil {
		return errors.Trace(err)
	}

	distribution.Status = string(model.DsStClosed)
	distribution.Updated = now
	if err := distribution.Save(ctx); err != nil {
		return errors.Trace(err)
	}

	engine.Logf(ctx,
		"Processed distribution: asset=%s funded=%s succeeded=%t",
		t.asset, funded.String(), succeeded)

	db.Commit(ctx)

	return nil
}
