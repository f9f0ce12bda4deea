package task

import (
	"context"
	"time"

	"github.com/teal/ledger/engine"
	"github.com/teal/ledger/engine/async"
	"github.com/teal/ledger/engine/market"
	"github.com/teal/ledger/engine/model"
	"github.com/teal/ledger/lib/clock"
	"github.com/teal/ledger/lib/db"
	"github.com/teal/ledger/lib/errors"
)

func init() {
	async.Registrar[engine.TkExpireFeeds] = NewExpireFeeds
}

// ExpireFeeds recomputes the consensus median of a stablecoin once a
// published feed may have outlived its lifetime, and runs the margin call
// processor if the median moved. The task reference time is the expiry of
// the feed that triggered it.
type ExpireFeeds struct {
	created time.Time
	asset   string
}

// NewExpireFeeds constructs and initializes the task.
func NewExpireFeeds(
	ctx context.Context,
	created time.Time,
	subject string,
) async.Task {
	return &ExpireFeeds{
		created: created,
		asset:   subject,
	}
}

// Name returns the task name.
func (t *ExpireFeeds) Name() engine.TkName {
	return engine.TkExpireFeeds
}

// Created returns the task reference time.
func (t *ExpireFeeds) Created() time.Time {
	return t.created
}

// Subject returns the task subject.
func (t *ExpireFeeds) Subject() string {
	return t.asset
}

// MaxRetries returns the max retries for the task.
func (t *ExpireFeeds) MaxRetries() uint64 {
	return 8
}

// DeadlineForRetry returns the deadline for the provided retry count.
func (t *ExpireFeeds) DeadlineForRetry(
	retry uint64,
) time.Time {
	return t.created.Add(time.Duration(retry) * time.Minute)
}

// Execute idempotently runs the task to completion or errors.
func (t *ExpireFeeds) Execute(
	ctx context.Context,
) error {
	ctx = db.Begin(ctx)
	defer db.LoggedRollback(ctx)

	now := clock.Get(ctx)

	asset, err := model.LoadAssetBySymbol(ctx, t.asset)
	if err != nil {
		return errors.Trace(err)
	} else if asset == nil {
		return errors.Trace(errors.Newf("Asset not found: %s", t.asset))
	}

	stablecoin, err := model.LoadStablecoinByAsset(ctx, t.asset)
	if err != nil {
		return errors.Trace(err)
	} else if stablecoin == nil {
		return errors.Trace(
			errors.Newf("Missing stablecoin data for asset: %s", t.asset))
	}

	changed, err := stablecoin.UpdateMedianFeeds(ctx, now)
	if err != nil {
		return errors.Trace(err)
	}
	stablecoin.Updated = now
	if err := stablecoin.Save(ctx); err != nil {
		return errors.Trace(err)
	}

	if changed {
		if stablecoin.HasSettlement() {
			if err := market.Revive(ctx, asset, stablecoin, now); err != nil {
				return errors.Trace(err)
			}
		}
		err := market.CheckCallOrders(ctx, asset, stablecoin, true, now)
		if err != nil {
			return errors.Trace(err)
		}
	}

	db.Commit(ctx)

	return nil
}
