package market

import (
	"context"
	"math/big"
	"time"

	"github.com/teal/ledger/engine"
	"github.com/teal/ledger/engine/model"
	"github.com/teal/ledger/lib/errors"
)

// CheckCallOrders runs margin call processing for a stablecoin. Positions are
// visited from least to most collateralized; each position below the
// maintenance collateralization is matched against the pending settlement
// queue at the current feed price. If the least collateralized position
// cannot cover its debt at the feed price and allowBlackSwan is set, the
// whole market is settled globally instead.
func CheckCallOrders(
	ctx context.Context,
	asset *model.Asset,
	stablecoin *model.Stablecoin,
	allowBlackSwan bool,
	now time.Time,
) error {
	if stablecoin.HasSettlement() {
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
	if len(orders) == 0 {
		return nil
	}

	// A least collateralized position that cannot cover its debt at the
	// current feed freezes the entire market at its own ratio.
	if orders[0].Insolvent(feed) {
		if !allowBlackSwan {
			return nil
		}
		price := engine.Price{
			BaseAmount:  orders[0].Debt.Int(),
			BaseAsset:   asset.Symbol,
			QuoteAmount: orders[0].Collateral.Int(),
			QuoteAsset:  stablecoin.BackingAsset,
		}
		engine.Logf(ctx,
			"Black swan: asset=%s price=%s", asset.Symbol, price.String())
		if err := GloballySettle(ctx, asset, stablecoin, price, now); err != nil {
			return errors.Trace(err)
		}
		return nil
	}

	supply, err := model.LoadSupplyByAsset(ctx, asset.Symbol)
	if err != nil {
		return errors.Trace(err)
	}
	settlements, err := model.LoadSettlementsByAsset(ctx, asset.Symbol)
	if err != nil {
		return errors.Trace(err)
	}

	si := 0
	for i := range orders {
		order := &orders[i]
		if !order.BelowMaintenance(
			feed, stablecoin.MaintenanceCollateralization) {
			break
		}
		if si >= len(settlements) {
			break
		}

		for order.Debt.Int().Sign() > 0 && si < len(settlements) {
			settlement := &settlements[si]

			match := new(big.Int).Set(settlement.Balance.Int())
			if match.Cmp(order.Debt.Int()) > 0 {
				match.Set(order.Debt.Int())
			}
			paid := feed.ConvertRoundUp(match)
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

			// The matched debt was escrowed as pending supply and is burned.
			supply.AdjustPending(new(big.Int).Neg(match))

			settlement.Balance = model.AmountFromInt(
				new(big.Int).Sub(settlement.Balance.Int(), match))
			if settlement.Balance.Int().Sign() == 0 {
				if err := settlement.Delete(ctx); err != nil {
					return errors.Trace(err)
				}
				si++
			} else {
				if err := settlement.Save(ctx); err != nil {
					return errors.Trace(err)
				}
			}
		}

		if order.Debt.Int().Sign() == 0 {
			// Excess collateral goes back to the borrower.
			if order.Collateral.Int().Sign() > 0 {
				balance, err := model.LoadOrCreateBalanceByAccountAndAsset(ctx,
					order.Borrower, stablecoin.BackingAsset, now)
				if err != nil {
					return errors.Trace(err)
				}
				if err := balance.Adjust(order.Collateral.Int()); err != nil {
					return errors.Trace(err)
				}
				balance.Updated = now
				if err := balance.Save(ctx); err != nil {
					return errors.Trace(err)
				}
			}
			if err := order.Delete(ctx); err != nil {
				return errors.Trace(err)
			}
		} else {
			order.Updated = now
			if err := order.Save(ctx); err != nil {
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
