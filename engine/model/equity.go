package model

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/teal/ledger/lib/db"
	"github.com/teal/ledger/lib/errors"
	"github.com/teal/ledger/lib/token"
)

// Equity represents the side record of an equity asset: the business it
// represents and its revenue sharing terms.
type Equity struct {
	Token   string
	Created time.Time

	Asset    string // Asset symbol (unique).
	Business string // Issuer business account.

	DividendAsset string `db:"dividend_asset"`
	// RevenueSharePercent is the share of the business revenue distributed
	// to holders, in basis points.
	RevenueSharePercent int64 `db:"revenue_share_percent"`
	// DividendInterval is the interval between dividend rounds in seconds.
	DividendInterval int64 `db:"dividend_interval"`
}

// CreateEquity creates and stores a new Equity object.
func CreateEquity(
	ctx context.Context,
	asset string,
	business string,
	dividendAsset string,
	revenueSharePercent int64,
	dividendInterval int64,
	now time.Time,
) (*Equity, error) {
	equity := Equity{
		Token:   token.New("equity"),
		Created: now,

		Asset:    asset,
		Business: business,

		DividendAsset:       dividendAsset,
		RevenueSharePercent: revenueSharePercent,
		DividendInterval:    dividendInterval,
	}

	ext := db.Ext(ctx)
	if _, err := sqlx.NamedExec(ext, `
INSERT INTO equities
  (token, created, asset, business, dividend_asset, revenue_share_percent,
   dividend_interval)
VALUES
  (:token, :created, :asset, :business, :dividend_asset,
   :revenue_share_percent, :dividend_interval)
`, equity); err != nil {
		return nil, mapSQLError(err)
	}

	return &equity, nil
}

// Save updates the object database representation with the in-memory values.
func (e *Equity) Save(
	ctx context.Context,
) error {
	ext := db.Ext(ctx)
	_, err := sqlx.NamedExec(ext, `
UPDATE equities
SET business = :business, dividend_asset = :dividend_asset,
    revenue_share_percent = :revenue_share_percent,
    dividend_interval = :dividend_interval
WHERE token = :token
`, e)
	if err != nil {
		return errors.Trace(err)
	}

	return nil
}

// LoadEquityByAsset attempts to load the equity data of an asset.
func LoadEquityByAsset(
	ctx context.Context,
	asset string,
) (*Equity, error) {
	equity := Equity{
		Asset: asset,
	}

	ext := db.Ext(ctx)
	if rows, err := sqlx.NamedQuery(ext, `
SELECT *
FROM equities
WHERE asset = :asset
`, equity); err != nil {
		return nil, errors.Trace(err)
	} else if !rows.Next() {
		return nil, nil
	} else if err := rows.StructScan(&equity); err != nil {
		defer rows.Close()
		return nil, errors.Trace(err)
	} else if err := rows.Close(); err != nil {
		return nil, errors.Trace(err)
	}

	return &equity, nil
}

// LoadEquitiesByBusiness loads all equity records of a business.
func LoadEquitiesByBusiness(
	ctx context.Context,
	business string,
) ([]Equity, error) {
	query := map[string]interface{}{
		"business": business,
	}

	ext := db.Ext(ctx)
	rows, err := sqlx.NamedQuery(ext, `
SELECT *
FROM equities
WHERE business = :business
`, query)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer rows.Close()

	equities := []Equity{}
	for rows.Next() {
		e := Equity{}
		err := rows.StructScan(&e)
		if err != nil {
			return nil, errors.Trace(err)
		}
		equities = append(equities, e)
	}

	return equities, nil
}
