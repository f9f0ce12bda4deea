package model

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/teal/ledger/lib/db"
	"github.com/teal/ledger/lib/errors"
	"github.com/teal/ledger/lib/token"
)

// Bond represents the side record of a bond asset: value asset, face terms,
// maturity and the collateral pool locked against issued units.
type Bond struct {
	Token   string
	Created time.Time
	Updated time.Time

	Asset    string // Asset symbol (unique).
	Business string // Issuer business account.

	ValueAsset string `db:"value_asset"`
	// FaceBaseAmount/FaceQuoteAmount is the face value price of one bond unit
	// (asset base, value asset quote).
	FaceBaseAmount  Amount `db:"face_base_amount"`
	FaceQuoteAmount Amount `db:"face_quote_amount"`
	// CollateralizationPercent is the share of the face value locked as
	// collateral at issuance, in basis points.
	CollateralizationPercent int64     `db:"collateralization_percent"`
	MaturityDate             time.Time `db:"maturity_date"`

	CollateralPool Amount `db:"collateral_pool"` // In the value asset.
}

// CreateBond creates and stores a new Bond object.
func CreateBond(
	ctx context.Context,
	asset string,
	business string,
	valueAsset string,
	faceBaseAmount Amount,
	faceQuoteAmount Amount,
	collateralizationPercent int64,
	maturityDate time.Time,
	now time.Time,
) (*Bond, error) {
	bond := Bond{
		Token:   token.New("bond"),
		Created: now,
		Updated: now,

		Asset:    asset,
		Business: business,

		ValueAsset:               valueAsset,
		FaceBaseAmount:           faceBaseAmount,
		FaceQuoteAmount:          faceQuoteAmount,
		CollateralizationPercent: collateralizationPercent,
		MaturityDate:             maturityDate,

		CollateralPool: ZeroAmount(),
	}

	ext := db.Ext(ctx)
	if _, err := sqlx.NamedExec(ext, `
INSERT INTO bonds
  (token, created, updated, asset, business, value_asset, face_base_amount,
   face_quote_amount, collateralization_percent, maturity_date,
   collateral_pool)
VALUES
  (:token, :created, :updated, :asset, :business, :value_asset,
   :face_base_amount, :face_quote_amount, :collateralization_percent,
   :maturity_date, :collateral_pool)
`, bond); err != nil {
		return nil, mapSQLError(err)
	}

	return &bond, nil
}

// Save updates the object database representation with the in-memory values.
func (b *Bond) Save(
	ctx context.Context,
) error {
	ext := db.Ext(ctx)
	_, err := sqlx.NamedExec(ext, `
UPDATE bonds
SET updated = :updated, collateral_pool = :collateral_pool,
    maturity_date = :maturity_date
WHERE token = :token
`, b)
	if err != nil {
		return errors.Trace(err)
	}

	return nil
}

// LoadBondByAsset attempts to load the bond data of an asset.
func LoadBondByAsset(
	ctx context.Context,
	asset string,
) (*Bond, error) {
	bond := Bond{
		Asset: asset,
	}

	ext := db.Ext(ctx)
	if rows, err := sqlx.NamedQuery(ext, `
SELECT *
FROM bonds
WHERE asset = :asset
`, bond); err != nil {
		return nil, errors.Trace(err)
	} else if !rows.Next() {
		return nil, nil
	} else if err := rows.StructScan(&bond); err != nil {
		defer rows.Close()
		return nil, errors.Trace(err)
	} else if err := rows.Close(); err != nil {
		return nil, errors.Trace(err)
	}

	return &bond, nil
}
