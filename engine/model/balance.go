package model

import (
	"context"
	"math/big"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/teal/ledger/lib/db"
	"github.com/teal/ledger/lib/errors"
	"github.com/teal/ledger/lib/token"
)

// Balance represents the liquid balance of an account in an asset.
type Balance struct {
	Token   string
	Created time.Time
	Updated time.Time

	Account string
	Asset   string
	Value   Amount
}

// CreateBalance creates and stores a new Balance object.
func CreateBalance(
	ctx context.Context,
	account string,
	asset string,
	now time.Time,
) (*Balance, error) {
	balance := Balance{
		Token:   token.New("balance"),
		Created: now,
		Updated: now,

		Account: account,
		Asset:   asset,
		Value:   ZeroAmount(),
	}

	ext := db.Ext(ctx)
	if _, err := sqlx.NamedExec(ext, `
INSERT INTO balances
  (token, created, updated, account, asset, value)
VALUES
  (:token, :created, :updated, :account, :asset, :value)
`, balance); err != nil {
		return nil, mapSQLError(err)
	}

	return &balance, nil
}

// Save updates the object database representation with the in-memory values.
func (b *Balance) Save(
	ctx context.Context,
) error {
	ext := db.Ext(ctx)
	_, err := sqlx.NamedExec(ext, `
UPDATE balances
SET updated = :updated, value = :value
WHERE token = :token
`, b)
	if err != nil {
		return errors.Trace(err)
	}

	return nil
}

// LoadBalanceByAccountAndAsset attempts to load the balance of an account in
// an asset.
func LoadBalanceByAccountAndAsset(
	ctx context.Context,
	account string,
	asset string,
) (*Balance, error) {
	balance := Balance{
		Account: account,
		Asset:   asset,
	}

	ext := db.Ext(ctx)
	if rows, err := sqlx.NamedQuery(ext, `
SELECT *
FROM balances
WHERE account = :account
  AND asset = :asset
`, balance); err != nil {
		return nil, errors.Trace(err)
	} else if !rows.Next() {
		return nil, nil
	} else if err := rows.StructScan(&balance); err != nil {
		defer rows.Close()
		return nil, errors.Trace(err)
	} else if err := rows.Close(); err != nil {
		return nil, errors.Trace(err)
	}

	return &balance, nil
}

// LoadOrCreateBalanceByAccountAndAsset loads the balance of an account in an
// asset, creating a zero balance if none exists.
func LoadOrCreateBalanceByAccountAndAsset(
	ctx context.Context,
	account string,
	asset string,
	now time.Time,
) (*Balance, error) {
	balance, err := LoadBalanceByAccountAndAsset(ctx, account, asset)
	if err != nil {
		return nil, errors.Trace(err)
	} else if balance == nil {
		balance, err = CreateBalance(ctx, account, asset, now)
		if err != nil {
			return nil, errors.Trace(err)
		}
	}

	return balance, nil
}

// Adjust adjusts the balance value by delta, erroring if the result would be
// negative.
func (b *Balance) Adjust(
	delta *big.Int,
) error {
	value := new(big.Int).Add(b.Value.Int(), delta)
	if value.Sign() < 0 {
		return errors.Newf(
			"Insufficient balance: account=%s asset=%s value=%s delta=%s",
			b.Account, b.Asset, b.Value.Int().String(), delta.String())
	}
	b.Value = AmountFromInt(value)
	return nil
}
