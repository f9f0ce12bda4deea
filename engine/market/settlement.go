package market

import (
	"context"
	"math/big"
	"time"

	"github.com/teal/ledger/engine"
	"github.com/teal/ledger/engine/model"
	"github.com/teal/ledger/lib/errors"
)

// GloballySettle freezes the stablecoin market at the provided price. The
// aggregate collateral of all open positions is moved into the settlement
// fund and all positions are closed. The outstanding supply becomes a pure
// claim against the fund at the settlement price.
func GloballySettle(
	ctx context.Context,
	asset *model.Asset,
	stablecoin *model.Stablecoin,
	settlePrice engine.Price,
	now time.Time,
) error {
	orders, err := model.LoadCallOrdersByAsset(ctx, asset.Symbol)
	if err != nil {
		return errors.Trace(err)
	}

	fund := new(big.Int).Set(stablecoin.SettlementFund.Int())
	for i := range orders {
		fund.Add(fund, orders[i].Collateral.Int())
		if err := orders[i].Delete(ctx); err != nil {
			return errors.Trace(err)
		}
	}

	stablecoin.SetSettlementPrice(settlePrice)
	stablecoin.SettlementFund = model.AmountFromInt(fund)
	stablecoin.Updated = now
	if err := stablecoin.Save(ctx); err != nil {
		return errors.Trace(err)
	}

	engine.Logf(ctx,
		"Globally settled: asset=%s price=%s fund=%s",
		asset.Symbol, settlePrice.String(), fund.String())

	return nil
}

// Revive reopens a globally settled market when its revival condition is
// met: either the total supply reached zero, or the settlement fund covers
// the outstanding supply above the maintenance collateralization at the
// fresh feed price. On revival pending collateral bids are consumed to
// rebuild positions; the issuer absorbs any residual debt backed by the
// remaining fund.
func Revive(
	ctx context.Context,
	asset *model.Asset,
	stablecoin *model.Stablecoin,
	now time.Time,
) error {
	if !stablecoin.HasSettlement() {
		return nil
	}

	supply, err := model.LoadSupplyByAsset(ctx, asset.Symbol)
	if err != nil {
		return errors.Trace(err)
	}
	total := supply.Total()

	if total.Sign() == 0 {
		if err := CancelAllBids(ctx, stablecoin, now); err != nil {
			return errors.Trace(err)
		}
		// Residual fund dust goes back to the issuer.
		if stablecoin.SettlementFund.Int().Sign() > 0 {
			balance, err := model.LoadOrCreateBalanceByAccountAndAsset(ctx,
				asset.Issuer, stablecoin.BackingAsset, now)
			if err != nil {
				return errors.Trace(err)
			}
			if err := balance.Adjust(stablecoin.SettlementFund.Int()); err != nil {
				return errors.Trace(err)
			}
			balance.Updated = now
			if err := balance.Save(ctx); err != nil {
				return errors.Trace(err)
			}
		}
		stablecoin.SetSettlementPrice(engine.Price{})
		stablecoin.SettlementFund = model.ZeroAmount()
		stablecoin.Updated = now
		if err := stablecoin.Save(ctx); err != nil {
			return errors.Trace(err)
		}

		engine.Logf(ctx, "Revived (zero supply): asset=%s", asset.Symbol)
		return nil
	}

	feed := stablecoin.CurrentFeed()
	if feed.IsNull() {
		return nil
	}

	// The fund, valued in debt units at the feed price, must exceed the
	// outstanding supply times the maintenance collateralization.
	l := new(big.Int).Mul(stablecoin.SettlementFund.Int(), feed.BaseAmount)
	l.Mul(l, big.NewInt(engine.Percent100))
	r := new(big.Int).Mul(total, feed.QuoteAmount)
	r.Mul(r, big.NewInt(stablecoin.MaintenanceCollateralization))
	if l.Cmp(r) <= 0 {
		return nil
	}

	if err := processBids(ctx, asset, stablecoin, total, now); err != nil {
		return errors.Trace(err)
	}

	engine.Logf(ctx, "Revived: asset=%s supply=%s",
		asset.Symbol, total.String())
	return nil
}

// processBids consumes the pending collateral bids, best collateral per unit
// of debt first, rebuilding positions for the outstanding supply. Each
// executed bid receives the fund share proportional to the debt it absorbs
// on top of its own collateral. Unused bids are cancelled and refunded; any
// debt left uncovered becomes a position of the issuer backed by the
// remaining fund. Clears the settlement state.
func processBids(
	ctx context.Context,
	asset *model.Asset,
	stablecoin *model.Stablecoin,
	total *big.Int,
	now time.Time,
) error {
	bids, err := model.LoadCollateralBidsByAsset(ctx, asset.Symbol)
	if err != nil {
		return errors.Trace(err)
	}

	fund := stablecoin.SettlementFund.Int()
	remaining := new(big.Int).Set(total)
	remainingFund := new(big.Int).Set(fund)

	for i := range bids {
		bid := &bids[i]
		if remaining.Sign() == 0 {
			if err := CancelBid(ctx, bid, stablecoin, now); err != nil {
				return errors.Trace(err)
			}
			continue
		}

		debt := new(big.Int).Set(bid.Debt.Int())
		if debt.Cmp(remaining) > 0 {
			debt.Set(remaining)
		}
		share := new(big.Int).Mul(fund, debt)
		share.Div(share, total)
		if share.Cmp(remainingFund) > 0 {
			share.Set(remainingFund)
		}
		collateral := new(big.Int).Add(bid.Collateral.Int(), share)

		_, err := model.CreateCallOrder(ctx,
			bid.Bidder, asset.Symbol, stablecoin.BackingAsset,
			model.AmountFromInt(collateral), model.AmountFromInt(debt), now)
		if err != nil {
			return errors.Trace(err)
		}

		remaining.Sub(remaining, debt)
		remainingFund.Sub(remainingFund, share)
		if err := bid.Delete(ctx); err != nil {
			return errors.Trace(err)
		}
	}

	if remaining.Sign() > 0 {
		// The issuer absorbs the uncovered debt with the remaining fund.
		order, err := model.LoadCallOrderByBorrowerAndAsset(ctx,
			asset.Issuer, asset.Symbol)
		if err != nil {
			return errors.Trace(err)
		}
		if order != nil {
			order.Collateral = model.AmountFromInt(
				new(big.Int).Add(order.Collateral.Int(), remainingFund))
			order.Debt = model.AmountFromInt(
				new(big.Int).Add(order.Debt.Int(), remaining))
			order.Updated = now
			if err := order.Save(ctx); err != nil {
				return errors.Trace(err)
			}
		} else {
			_, err := model.CreateCallOrder(ctx,
				asset.Issuer, asset.Symbol, stablecoin.BackingAsset,
				model.AmountFromInt(remainingFund),
				model.AmountFromInt(remaining), now)
			if err != nil {
				return errors.Trace(err)
			}
		}
	} else if remainingFund.Sign() > 0 {
		// Rounding dust goes back to the issuer.
		balance, err := model.LoadOrCreateBalanceByAccountAndAsset(ctx,
			asset.Issuer, stablecoin.BackingAsset, now)
		if err != nil {
			return errors.Trace(err)
		}
		if err := balance.Adjust(remainingFund); err != nil {
			return errors.Trace(err)
		}
		balance.Updated = now
		if err := balance.Save(ctx); err != nil {
			return errors.Trace(err)
		}
	}

	stablecoin.SetSettlementPrice(engine.Price{})
	stablecoin.SettlementFund = model.ZeroAmount()
	stablecoin.Updated = now
	if err := stablecoin.Save(ctx); err != nil {
		return errors.Trace(err)
	}

	return nil
}

// RedeemFromFund redeems amount units of a settled stablecoin against the
// settlement fund, returning the payout in the backing asset. The payout is
// rounded down in favor of the fund, except when the redemption covers the
// entire outstanding supply in which case it receives the exact remaining
// fund. The caller is responsible for debiting the redeemed amount.
func RedeemFromFund(
	ctx context.Context,
	stablecoin *model.Stablecoin,
	supply *model.Supply,
	amount *big.Int,
	now time.Time,
) (*big.Int, error) {
	fund := stablecoin.SettlementFund.Int()

	var payout *big.Int
	if supply.Total().Cmp(amount) == 0 {
		payout = new(big.Int).Set(fund)
	} else {
		payout = stablecoin.SettlementPrice().Convert(amount)
		if payout.Cmp(fund) > 0 {
			payout = new(big.Int).Set(fund)
		}
	}

	stablecoin.SettlementFund = model.AmountFromInt(
		new(big.Int).Sub(fund, payout))
	stablecoin.Updated = now
	if err := stablecoin.Save(ctx); err != nil {
		return nil, errors.Trace(err)
	}

	return payout, nil
}

// CancelSettlement cancels a pending force settlement, moving its escrowed
// balance back to the requesting account.
func CancelSettlement(
	ctx context.Context,
	settlement *model.Settlement,
	now time.Time,
) error {
	supply, err := model.LoadSupplyByAsset(ctx, settlement.Asset)
	if err != nil {
		return errors.Trace(err)
	}

	balance, err := model.LoadOrCreateBalanceByAccountAndAsset(ctx,
		settlement.Account, settlement.Asset, now)
	if err != nil {
		return errors.Trace(err)
	}
	if err := balance.Adjust(settlement.Balance.Int()); err != nil {
		return errors.Trace(err)
	}
	balance.Updated = now
	if err := balance.Save(ctx); err != nil {
		return errors.Trace(err)
	}

	supply.AdjustPending(new(big.Int).Neg(settlement.Balance.Int()))
	supply.AdjustLiquid(settlement.Balance.Int())
	supply.Updated = now
	if err := supply.Save(ctx); err != nil {
		return errors.Trace(err)
	}

	if err := settlement.Delete(ctx); err != nil {
		return errors.Trace(err)
	}

	return nil
}

// CancelAllSettlements cancels and refunds all pending settlements of an
// asset.
func CancelAllSettlements(
	ctx context.Context,
	asset string,
	now time.Time,
) error {
	settlements, err := model.LoadSettlementsByAsset(ctx, asset)
	if err != nil {
		return errors.Trace(err)
	}
	for i := range settlements {
		if err := CancelSettlement(ctx, &settlements[i], now); err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}
