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
	async.Registrar[engine.TkMatureSettlements] = NewMatureSettlements
}

// MatureSettlements executes the matured force settlements of a stablecoin
// once its settlement delay has elapsed. The task reference time is the
// maturity date of the settlement that triggered it.
type MatureSettlements struct {
	created time.Time
	asset   string
}

// NewMatureSettlements constructs and initializes the task.
func NewMatureSettlements(
	ctx context.Context,
	created time.Time,
	subject string,
) async.Task {
	return &MatureSettlements{
		created: created,
		asset:   subject,
	}
}

// Name returns the task name.
func (t *MatureSettlements) Name() engine.TkName {
	return engine.TkMatureSettlements
}

// Created returns the task reference time.
func (t *MatureSettlements) Created() time.Time {
	return t.created
}

// Subject returns the task subject.
func (t *MatureSettlements) Subject() string {
	return t.asset
}

// MaxRetries returns the max retries for the task.
func (t *MatureSettlements) MaxRetries() uint64 {
	return 8
}

// DeadlineForRetry returns the deadline for the provided retry count.
func (t *MatureSettlements) DeadlineForRetry(
	retry uint64,
) time.Time {
	return t.created.Add(time.Duration(retry) * time.Minute)
}

// Execute idempotently runs the task to completion or errors.
func (t *MatureSettlements) Execute(
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

	err = market.ExecuteMaturedSettlements(ctx, asset, stablecoin, now)
	if err != nil {
		return errors.Trace(err)
	}

	db.Commit(ctx)

	return nil
}
