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

// Supply represents the supply counters of an asset. The sum of all counters
// is the asset total supply and must stay within [0, max_supply].
type Supply struct {
	Token   string
	Created time.Time
	Updated time.Time

	Asset string // Asset symbol (unique).

	Liquid  Amount
	Staked  Amount
	Reward  Amount
	Savings Amount
	Pending Amount // Escrowed amounts not owned by any account.
}

// CreateSupply creates and stores a new Supply object with zeroed counters.
func CreateSupply(
	ctx context.Context,
	asset string,
	now time.Time,
) (*Supply, error) {
	supply := Supply{
		Token:   token.New("supply"),
		Created: now,
		Updated: now,

		Asset:   asset,
		Liquid:  ZeroAmount(),
		Staked:  ZeroAmount(),
		Reward:  ZeroAmount(),
		Savings: ZeroAmount(),
		Pending: ZeroAmount(),
	}

	ext := db.Ext(ctx)
	if _, err := sqlx.NamedExec(ext, `
INSERT INTO supplies
  (token, created, updated, asset, liquid, staked, reward, savings, pending)
VALUES
  (:token, :created, :updated, :asset, :liquid, :staked, :reward, :savings,
   :pending)
`, supply); err != nil {
		return nil, mapSQLError(err)
	}

	return &supply, nil
}

// Save updates the object database representation with the in-memory values.
func (s *Supply) Save(
	ctx context.Context,
) error {
	ext := db.Ext(ctx)
	_, err := sqlx.NamedExec(ext, `
UPDATE supplies
SET updated = :updated, liquid = :liquid, staked = :staked, reward = :reward,
    savings = :savings, pending = :pending
WHERE token = :token
`, s)
	if err != nil {
		return errors.Trace(err)
	}

	return nil
}

// LoadSupplyByAsset attempts to load the supply record of an asset.
func LoadSupplyByAsset(
	ctx context.Context,
	asset string,
) (*Supply, error) {
	supply := Supply{
		Asset: asset,
	}

	ext := db.Ext(ctx)
	if rows, err := sqlx.NamedQuery(ext, `
SELECT *
FROM supplies
WHERE asset = :asset
`, supply); err != nil {
		return nil, errors.Trace(err)
	} else if !rows.Next() {
		return nil, nil
	} else if err := rows.StructScan(&supply); err != nil {
		defer rows.Close()
		return nil, errors.Trace(err)
	} else if err := rows.Close(); err != nil {
		return nil, errors.Trace(err)
	}

	return &supply, nil
}

// Total returns the total supply of the asset.
func (s *Supply) Total() *big.Int {
	total := new(big.Int)
	total.Add(total, s.Liquid.Int())
	total.Add(total, s.Staked.Int())
	total.Add(total, s.Reward.Int())
	total.Add(total, s.Savings.Int())
	total.Add(total, s.Pending.Int())
	return total
}

// AdjustLiquid adjusts the liquid supply counter by delta.
func (s *Supply) AdjustLiquid(delta *big.Int) {
	s.Liquid = AmountFromInt(new(big.Int).Add(s.Liquid.Int(), delta))
}

// AdjustPending adjusts the pending (escrow) supply counter by delta.
func (s *Supply) AdjustPending(delta *big.Int) {
	s.Pending = AmountFromInt(new(big.Int).Add(s.Pending.Int(), delta))
}
