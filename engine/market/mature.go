package market

import (
	"context"
	"math/big"
	"time"

	"github.com/teal/ledger/engine/model"
	"github.com/teal/ledger/lib/errors"
)

// ExecuteMaturedSettlements processes the matured force settlements of a
// stablecoin. On a settled market the escrowed balance is redeemed against
// the settlement fund; otherwise it is filled against open positions from
// least to most collateralized at the current feed price, rounding payouts
// down. Settlements that cannot be filled (null feed, no open position)
// stay pending.
func ExecuteMaturedSettlements(
	ctx context.Context,
	asset *model.Asset,
	stablecoin *model.Stablecoin,
	now time.Time,
) error {
	settlements, err := model.LoadMaturedSettlementsByAsset(ctx,
		asset.Symbol, now)
	if err != nil {
		return errors.Trace(err)
	}
	if len(settlements) == 0 {
		return nil
	}

	supply, err := model.LoadSupplyByAsset(ctx, asset.Symbol)
	if err != nil {
		return errors.Trace(err)
	}

	if stablecoin.HasSettlement() {
		for i := range settlements {
			settlement := &settlements[i]

			payout, err := RedeemFromFund(ctx,
				stablecoin, supply, settlement.Balance.Int(), now)
			if err != nil {
				return errors.Trace(err)
			}

			balance, err := model.LoadOrCreateBalanceByAccountAndAsset(ctx,
				settlement.Account, stablecoin.BackingAsset, now)
			if err != nil {
				return errors.Trace(err)
			}
			if err := balance.Adjust(payout); err != nil {
				return errors.Trace(err)
			}
			balance.Updated = now
			if err := balance.Save(ctx); err != nil {
				return errors.Trace(err)
			}

			supply.AdjustPending(new(big.Int).Neg(settlement.Balance.Int()))
			if err := settlement.Delete(ctx); err != nil {
				return errors.Trace(err)
			}
		}

		supply.Updated = now
		if err := supply.Save(ctx); err != nil {
			return errors.Trace(err)
		}
		return nil
	}

	feed := stablecoin.CurrentFeed()
	if feed.IsNull() {
		return nil
	}

	orders, err := model.LoadCallOrdersByAsset(ctx, asset.Symbol)
	if err != nil {
		return errors.Trace(err)
	}

	oi := 0
	for i := range settlements {
		settlement := &settlements[i]

		for settlement.Balance.Int().Sign() > 0 && oi < len(orders) {
			order := &orders[oi]

			match := new(big.Int).Set(settlement.Balance.Int())
			if match.Cmp(order.Debt.Int()) > 0 {
				match.Set(order.Debt.Int())
			}
			paid := feed.Convert(match)
			if paid.Cmp(order.Collateral.Int()) > 0 {
				paid.Set(order.Collateral.Int())
			}

			order.Debt = model.AmountFromInt(
				new(big.Int).Sub(order.Debt.Int(), match))
			order.Collateral = model.AmountFromInt(
				new(big.Int).Sub(order.Collateral.Int(), paid))

			balance, err := model.LoadOrCreateBalanceByAccountAndAsset(ctx,
				settlement.Account, stablecoin.BackingAsset, now)
			if err != nil {
				return errors.Trace(err)
			}
			if err := balance.Adjust(paid); err != nil {
				return errors.Trace(err)
			}
			balance.Updated = now
			if err := balance.Save(ctx); err != nil {
				return errors.Trace(err)
			}

			supply.AdjustPending(new(big.Int).Neg(match))
			settlement.Balance = model.AmountFromInt(
				new(big.Int).Sub(settlement.Balance.Int(), match))

			if order.Debt.Int().Sign() == 0 {
				if order.Collateral.Int().Sign() > 0 {
					refund, err := model.LoadOrCreateBalanceByAccountAndAsset(
						ctx, order.Borrower, stablecoin.BackingAsset, now)
					if err != nil {
						return errors.Trace(err)
					}
					if err := refund.Adjust(order.Collateral.Int()); err != nil {
						return errors.Trace(err)
					}
					refund.Updated = now
					if err := refund.Save(ctx); err != nil {
						return errors.Trace(err)
					}
				}
				if err := order.Delete(ctx); err != nil {
					return errors.Trace(err)
				}
				oi++
			} else {
				order.Updated = now
				if err := order.Save(ctx); err != nil {
					return errors.Trace(err)
				}
			}
		}

		if settlement.Balance.Int().Sign() == 0 {
			if err := settlement.Delete(ctx); err != nil {
				return errors.Trace(err)
			}
		} else {
			if err := settlement.Save(ctx); err != nil {
				return errors.Trace(err)
			}
		}
	}

	supply.Updated = now
	if err := supply.Save(ctx); err != nil {
		return errors.Trace(err)
	}

	return nil
}
