package model

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/teal/ledger/lib/db"
	"github.com/teal/ledger/lib/errors"
	"github.com/teal/ledger/lib/token"
)

// Credit represents the side record of a credit asset: the business issuing
// it and its buyback terms.
type Credit struct {
	Token   string
	Created time.Time

	Asset    string // Asset symbol (unique).
	Business string // Issuer business account.

	BuybackAsset string `db:"buyback_asset"`
	// BuybackSharePercent is the share of the business revenue dedicated to
	// buybacks, in basis points. It counts against the same 50% cap as the
	// equity revenue shares of the business.
	BuybackSharePercent int64 `db:"buyback_share_percent"`
}

// CreateCredit creates and stores a new Credit object.
func CreateCredit(
	ctx context.Context,
	asset string,
	business string,
	buybackAsset string,
	buybackSharePercent int64,
	now time.Time,
) (*Credit, error) {
	credit := Credit{
		Token:   token.New("credit"),
		Created: now,

		Asset:    asset,
		Business: business,

		BuybackAsset:        buybackAsset,
		BuybackSharePercent: buybackSharePercent,
	}

	ext := db.Ext(ctx)
	if _, err := sqlx.NamedExec(ext, `
INSERT INTO credits
  (token, created, asset, business, buyback_asset, buyback_share_percent)
VALUES
  (:token, :created, :asset, :business, :buyback_asset,
   :buyback_share_percent)
`, credit); err != nil {
		return nil, mapSQLError(err)
	}

	return &credit, nil
}

// Save updates the object database representation with the in-memory values.
func (c *Credit) Save(
	ctx context.Context,
) error {
	ext := db.Ext(ctx)
	_, err := sqlx.NamedExec(ext, `
UPDATE credits
SET business = :business, buyback_asset = :buyback_asset,
    buyback_share_percent = :buyback_share_percent
WHERE token = :token
`, c)
	if err != nil {
		return errors.Trace(err)
	}

	return nil
}

// LoadCreditByAsset attempts to load the credit data of an asset.
func LoadCreditByAsset(
	ctx context.Context,
	asset string,
) (*Credit, error) {
	credit := Credit{
		Asset: asset,
	}

	ext := db.Ext(ctx)
	if rows, err := sqlx.NamedQuery(ext, `
SELECT *
FROM credits
WHERE asset = :asset
`, credit); err != nil {
		return nil, errors.Trace(err)
	} else if !rows.Next() {
		return nil, nil
	} else if err := rows.StructScan(&credit); err != nil {
		defer rows.Close()
		return nil, errors.Trace(err)
	} else if err := rows.Close(); err != nil {
		return nil, errors.Trace(err)
	}

	return &credit, nil
}

// LoadCreditsByBusiness loads all credit records of a business.
func LoadCreditsByBusiness(
	ctx context.Context,
	business string,
) ([]Credit, error) {
	query := map[string]interface{}{
		"business": business,
	}

	ext := db.Ext(ctx)
	rows, err := sqlx.NamedQuery(ext, `
SELECT *
FROM credits
WHERE business = :business
`, query)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer rows.Close()

	credits := []Credit{}
	for rows.Next() {
		c := Credit{}
		err := rows.StructScan(&c)
		if err != nil {
			return nil, errors.Trace(err)
		}
		credits = append(credits, c)
	}

	return credits, nil
}
