package market

import (
	"context"
	"time"

	"github.com/teal/ledger/engine/model"
	"github.com/teal/ledger/lib/errors"
)

// CancelBid cancels a collateral bid and refunds the escrowed collateral to
// the bidder.
func CancelBid(
	ctx context.Context,
	bid *model.CollateralBid,
	stablecoin *model.Stablecoin,
	now time.Time,
) error {
	if bid.Collateral.Int().Sign() > 0 {
		balance, err := model.LoadOrCreateBalanceByAccountAndAsset(ctx,
			bid.Bidder, stablecoin.BackingAsset, now)
		if err != nil {
			return errors.Trace(err)
		}
		if err := balance.Adjust(bid.Collateral.Int()); err != nil {
			return errors.Trace(err)
		}
		balance.Updated = now
		if err := balance.Save(ctx); err != nil {
			return errors.Trace(err)
		}
	}

	if err := bid.Delete(ctx); err != nil {
		return errors.Trace(err)
	}

	return nil
}

// CancelAllBids cancels and refunds all pending collateral bids of an asset.
func CancelAllBids(
	ctx context.Context,
	stablecoin *model.Stablecoin,
	now time.Time,
) error {
	bids, err := model.LoadCollateralBidsByAsset(ctx, stablecoin.Asset)
	if err != nil {
		return errors.Trace(err)
	}
	for i := range bids {
		if err := CancelBid(ctx, &bids[i], stablecoin, now); err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}
