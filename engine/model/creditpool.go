package model

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/teal/ledger/lib/db"
	"github.com/teal/ledger/lib/errors"
	"github.com/teal/ledger/lib/token"
)

// CreditPool represents the lending pool of a credit-enabled asset, holding
// a base balance against the credit units in circulation.
type CreditPool struct {
	Token   string
	Created time.Time
	Updated time.Time

	Asset       string // Base asset symbol (unique).
	CreditAsset string `db:"credit_asset"`

	BaseBalance   Amount `db:"base_balance"`
	CreditBalance Amount `db:"credit_balance"`
}

// CreateCreditPool creates and stores a new CreditPool object.
func CreateCreditPool(
	ctx context.Context,
	asset string,
	creditAsset string,
	baseBalance Amount,
	creditBalance Amount,
	now time.Time,
) (*CreditPool, error) {
	pool := CreditPool{
		Token:   token.New("creditpool"),
		Created: now,
		Updated: now,

		Asset:       asset,
		CreditAsset: creditAsset,

		BaseBalance:   baseBalance,
		CreditBalance: creditBalance,
	}

	ext := db.Ext(ctx)
	if _, err := sqlx.NamedExec(ext, `
INSERT INTO credit_pools
  (token, created, updated, asset, credit_asset, base_balance,
   credit_balance)
VALUES
  (:token, :created, :updated, :asset, :credit_asset, :base_balance,
   :credit_balance)
`, pool); err != nil {
		return nil, mapSQLError(err)
	}

	return &pool, nil
}

// Save updates the object database representation with the in-memory values.
func (p *CreditPool) Save(
	ctx context.Context,
) error {
	ext := db.Ext(ctx)
	_, err := sqlx.NamedExec(ext, `
UPDATE credit_pools
SET updated = :updated, base_balance = :base_balance,
    credit_balance = :credit_balance
WHERE token = :token
`, p)
	if err != nil {
		return errors.Trace(err)
	}

	return nil
}

// LoadCreditPoolByAsset attempts to load the credit pool of an asset.
func LoadCreditPoolByAsset(
	ctx context.Context,
	asset string,
) (*CreditPool, error) {
	pool := CreditPool{
		Asset: asset,
	}

	ext := db.Ext(ctx)
	if rows, err := sqlx.NamedQuery(ext, `
SELECT *
FROM credit_pools
WHERE asset = :asset
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
