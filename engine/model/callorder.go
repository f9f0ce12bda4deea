package model

import (
	"context"
	"math/big"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/teal/ledger/engine"
	"github.com/teal/ledger/lib/db"
	"github.com/teal/ledger/lib/errors"
	"github.com/teal/ledger/lib/token"
)

// CallOrder represents an open debt position backing the supply of a
// stablecoin. Invariant: debt > 0 implies collateral > 0.
type CallOrder struct {
	Token   string
	Created time.Time
	Updated time.Time

	Borrower        string
	Asset           string // Debt asset symbol.
	CollateralAsset string `db:"collateral_asset"`

	Collateral Amount
	Debt       Amount
}

// CreateCallOrder creates and stores a new CallOrder object.
func CreateCallOrder(
	ctx context.Context,
	borrower string,
	asset string,
	collateralAsset string,
	collateral Amount,
	debt Amount,
	now time.Time,
) (*CallOrder, error) {
	order := CallOrder{
		Token:   token.New("call"),
		Created: now,
		Updated: now,

		Borrower:        borrower,
		Asset:           asset,
		CollateralAsset: collateralAsset,

		Collateral: collateral,
		Debt:       debt,
	}

	ext := db.Ext(ctx)
	if _, err := sqlx.NamedExec(ext, `
INSERT INTO call_orders
  (token, created, updated, borrower, asset, collateral_asset, collateral,
   debt)
VALUES
  (:token, :created, :updated, :borrower, :asset, :collateral_asset,
   :collateral, :debt)
`, order); err != nil {
		return nil, mapSQLError(err)
	}

	return &order, nil
}

// Save updates the object database representation with the in-memory values.
func (o *CallOrder) Save(
	ctx context.Context,
) error {
	ext := db.Ext(ctx)
	_, err := sqlx.NamedExec(ext, `
UPDATE call_orders
SET updated = :updated, collateral = :collateral, debt = :debt
WHERE token = :token
`, o)
	if err != nil {
		return errors.Trace(err)
	}

	return nil
}

// Delete removes the call order from the database.
func (o *CallOrder) Delete(
	ctx context.Context,
) error {
	ext := db.Ext(ctx)
	_, err := sqlx.NamedExec(ext, `
DELETE FROM call_orders
WHERE token = :token
`, o)
	if err != nil {
		return errors.Trace(err)
	}

	return nil
}

// LoadCallOrderByBorrowerAndAsset attempts to load the position of a borrower
// for a debt asset.
func LoadCallOrderByBorrowerAndAsset(
	ctx context.Context,
	borrower string,
	asset string,
) (*CallOrder, error) {
	order := CallOrder{
		Borrower: borrower,
		Asset:    asset,
	}

	ext := db.Ext(ctx)
	if rows, err := sqlx.NamedQuery(ext, `
SELECT *
FROM call_orders
WHERE borrower = :borrower
  AND asset = :asset
`, order); err != nil {
		return nil, errors.Trace(err)
	} else if !rows.Next() {
		return nil, nil
	} else if err := rows.StructScan(&order); err != nil {
		defer rows.Close()
		return nil, errors.Trace(err)
	} else if err := rows.Close(); err != nil {
		return nil, errors.Trace(err)
	}

	return &order, nil
}

// LoadCallOrdersByAsset loads all positions for a debt asset sorted from
// least to most collateralized.
func LoadCallOrdersByAsset(
	ctx context.Context,
	asset string,
) ([]CallOrder, error) {
	query := map[string]interface{}{
		"asset": asset,
	}

	ext := db.Ext(ctx)
	rows, err := sqlx.NamedQuery(ext, `
SELECT *
FROM call_orders
WHERE asset = :asset
`, query)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer rows.Close()

	orders := []CallOrder{}
	for rows.Next() {
		o := CallOrder{}
		err := rows.StructScan(&o)
		if err != nil {
			return nil, errors.Trace(err)
		}
		orders = append(orders, o)
	}

	// Ties on the ratio fall back to the token so the order is a total
	// order, independent of the row order the query returned.
	sort.Slice(orders, func(i, j int) bool {
		if orders[i].LessCollateralized(&orders[j]) {
			return true
		}
		if orders[j].LessCollateralized(&orders[i]) {
			return false
		}
		return orders[i].Token < orders[j].Token
	})

	return orders, nil
}

// LessCollateralized returns whether the position has a strictly lower
// collateralization ratio than the other (collateral/debt compared without
// dividing: cA*dB < cB*dA).
func (o *CallOrder) LessCollateralized(
	other *CallOrder,
) bool {
	l := new(big.Int).Mul(o.Collateral.Int(), other.Debt.Int())
	r := new(big.Int).Mul(other.Collateral.Int(), o.Debt.Int())
	return l.Cmp(r) < 0
}

// BelowMaintenance returns whether the position collateralization ratio is
// below the required maintenance ratio at the provided feed price (asset
// base, collateral quote). The collateral value in debt units times 100%
// must reach debt times the maintenance ratio.
func (o *CallOrder) BelowMaintenance(
	feed engine.Price,
	maintenanceCollateralization int64,
) bool {
	if feed.IsNull() {
		return false
	}
	l := new(big.Int).Mul(o.Collateral.Int(), feed.BaseAmount)
	l.Mul(l, big.NewInt(engine.Percent100))
	r := new(big.Int).Mul(o.Debt.Int(), feed.QuoteAmount)
	r.Mul(r, big.NewInt(maintenanceCollateralization))
	return l.Cmp(r) < 0
}

// Insolvent returns whether the position cannot cover its debt at the
// provided price: debt converted to collateral exceeds the collateral held.
func (o *CallOrder) Insolvent(
	price engine.Price,
) bool {
	if price.IsNull() {
		return false
	}
	l := new(big.Int).Mul(o.Debt.Int(), price.QuoteAmount)
	r := new(big.Int).Mul(o.Collateral.Int(), price.BaseAmount)
	return l.Cmp(r) > 0
}

// NewCallOrderResource generates a new resource.
func NewCallOrderResource(
	ctx context.Context,
	order *CallOrder,
) engine.CallOrderResource {
	return engine.CallOrderResource{
		ID:      order.Token,
		Created: order.Created.UnixNano() / engine.TimeResolutionNs,
		Updated: order.Updated.UnixNano() / engine.TimeResolutionNs,

		Borrower:        order.Borrower,
		Asset:           order.Asset,
		CollateralAsset: order.CollateralAsset,
		Collateral:      order.Collateral.Int(),
		Debt:            order.Debt.Int(),
	}
}
