package model

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/teal/ledger/engine"
	"github.com/teal/ledger/lib/db"
	"github.com/teal/ledger/lib/errors"
	"github.com/teal/ledger/lib/token"
)

// Settlement represents a pending force settlement request. At most one
// exists per (account, asset) pair; the requested balance is escrowed as
// pending supply until maturity or cancellation.
type Settlement struct {
	Token   string
	Created time.Time

	Account string
	Asset   string

	Balance        Amount
	SettlementDate time.Time `db:"settlement_date"`
}

// CreateSettlement creates and stores a new Settlement object.
func CreateSettlement(
	ctx context.Context,
	account string,
	asset string,
	balance Amount,
	settlementDate time.Time,
	now time.Time,
) (*Settlement, error) {
	settlement := Settlement{
		Token:   token.New("settlement"),
		Created: now,

		Account: account,
		Asset:   asset,

		Balance:        balance,
		SettlementDate: settlementDate,
	}

	ext := db.Ext(ctx)
	if _, err := sqlx.NamedExec(ext, `
INSERT INTO settlements
  (token, created, account, asset, balance, settlement_date)
VALUES
  (:token, :created, :account, :asset, :balance, :settlement_date)
`, settlement); err != nil {
		return nil, mapSQLError(err)
	}

	return &settlement, nil
}

// Save updates the object database representation with the in-memory values.
func (s *Settlement) Save(
	ctx context.Context,
) error {
	ext := db.Ext(ctx)
	_, err := sqlx.NamedExec(ext, `
UPDATE settlements
SET balance = :balance, settlement_date = :settlement_date
WHERE token = :token
`, s)
	if err != nil {
		return errors.Trace(err)
	}

	return nil
}

// Delete removes the settlement from the database.
func (s *Settlement) Delete(
	ctx context.Context,
) error {
	ext := db.Ext(ctx)
	_, err := sqlx.NamedExec(ext, `
DELETE FROM settlements
WHERE token = :token
`, s)
	if err != nil {
		return errors.Trace(err)
	}

	return nil
}

// LoadSettlementByAccountAndAsset attempts to load the pending settlement of
// an account for an asset.
func LoadSettlementByAccountAndAsset(
	ctx context.Context,
	account string,
	asset string,
) (*Settlement, error) {
	settlement := Settlement{
		Account: account,
		Asset:   asset,
	}

	ext := db.Ext(ctx)
	if rows, err := sqlx.NamedQuery(ext, `
SELECT *
FROM settlements
WHERE account = :account
  AND asset = :asset
`, settlement); err != nil {
		return nil, errors.Trace(err)
	} else if !rows.Next() {
		return nil, nil
	} else if err := rows.StructScan(&settlement); err != nil {
		defer rows.Close()
		return nil, errors.Trace(err)
	} else if err := rows.Close(); err != nil {
		return nil, errors.Trace(err)
	}

	return &settlement, nil
}

// LoadSettlementsByAsset loads all pending settlements of an asset in
// maturity order.
func LoadSettlementsByAsset(
	ctx context.Context,
	asset string,
) ([]Settlement, error) {
	query := map[string]interface{}{
		"asset": asset,
	}

	ext := db.Ext(ctx)
	rows, err := sqlx.NamedQuery(ext, `
SELECT *
FROM settlements
WHERE asset = :asset
ORDER BY settlement_date, created
`, query)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer rows.Close()

	settlements := []Settlement{}
	for rows.Next() {
		s := Settlement{}
		err := rows.StructScan(&s)
		if err != nil {
			return nil, errors.Trace(err)
		}
		settlements = append(settlements, s)
	}

	return settlements, nil
}

// LoadMaturedSettlementsByAsset loads the pending settlements of an asset
// whose settlement date has passed, in maturity order.
func LoadMaturedSettlementsByAsset(
	ctx context.Context,
	asset string,
	now time.Time,
) ([]Settlement, error) {
	query := map[string]interface{}{
		"asset": asset,
		"now":   now.UTC(),
	}

	ext := db.Ext(ctx)
	rows, err := sqlx.NamedQuery(ext, `
SELECT *
FROM settlements
WHERE asset = :asset
  AND settlement_date <= :now
ORDER BY settlement_date, created
`, query)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer rows.Close()

	settlements := []Settlement{}
	for rows.Next() {
		s := Settlement{}
		err := rows.StructScan(&s)
		if err != nil {
			return nil, errors.Trace(err)
		}
		settlements = append(settlements, s)
	}

	return settlements, nil
}

// NewSettlementResource generates a new resource.
func NewSettlementResource(
	ctx context.Context,
	settlement *Settlement,
) engine.SettlementResource {
	return engine.SettlementResource{
		ID:      settlement.Token,
		Created: settlement.Created.UnixNano() / engine.TimeResolutionNs,

		Account: settlement.Account,
		Asset:   settlement.Asset,
		Balance: settlement.Balance.Int(),
		SettlementDate: settlement.SettlementDate.UnixNano() /
			engine.TimeResolutionNs,
	}
}
