package model

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/teal/ledger/lib/db"
	"github.com/teal/ledger/lib/errors"
	"github.com/teal/ledger/lib/token"
)

// LiquidityPool represents an automated market making pool between two
// assets, auto-created for credit-enabled asset types.
type LiquidityPool struct {
	Token   string
	Created time.Time
	Updated time.Time

	AssetA string `db:"asset_a"`
	AssetB string `db:"asset_b"`

	BalanceA Amount `db:"balance_a"`
	BalanceB Amount `db:"balance_b"`
}

// CreateLiquidityPool creates and stores a new LiquidityPool object.
func CreateLiquidityPool(
	ctx context.Context,
	assetA string,
	assetB string,
	balanceA Amount,
	balanceB Amount,
	now time.Time,
) (*LiquidityPool, error) {
	pool := LiquidityPool{
		Token:   token.New("pool"),
		Created: now,
		Updated: now,

		AssetA: assetA,
		AssetB: assetB,

		BalanceA: balanceA,
		BalanceB: balanceB,
	}

	ext := db.Ext(ctx)
	if _, err := sqlx.NamedExec(ext, `
INSERT INTO liquidity_pools
  (token, created, updated, asset_a, asset_b, balance_a, balance_b)
VALUES
  (:token, :created, :updated, :asset_a, :asset_b, :balance_a, :balance_b)
`, pool); err != nil {
		return nil, mapSQLError(err)
	}

	return &pool, nil
}

// Save updates the object database representation with the in-memory values.
func (p *LiquidityPool) Save(
	ctx context.Context,
) error {
	ext := db.Ext(ctx)
	_, err := sqlx.NamedExec(ext, `
UPDATE liquidity_pools
SET updated = :updated, balance_a = :balance_a, balance_b = :balance_b
WHERE token = :token
`, p)
	if err != nil {
		return errors.Trace(err)
	}

	return nil
}

// LoadLiquidityPoolByPair attempts to load the pool for an asset pair.
func LoadLiquidityPoolByPair(
	ctx context.Context,
	assetA string,
	assetB string,
) (*LiquidityPool, error) {
	pool := LiquidityPool{
		AssetA: assetA,
		AssetB: assetB,
	}

	ext := db.Ext(ctx)
	if rows, err := sqlx.NamedQuery(ext, `
SELECT *
FROM liquidity_pools
WHERE asset_a = :asset_a
  AND asset_b = :asset_b
`, pool); err != nil {
		return nil, errors.Trace(err)
	} else if !rows.Next() {
		return nil, nil
	} else if err := rows.StructScan(&pool); err != nil {
		defer rows.Close()
		return nil, errors.Trace(err)
	} else if err := rows.Close(); err != nil {
		return nil, errors.Trace(err)
	}

	return &pool, nil
}
