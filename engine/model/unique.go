package model

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/teal/ledger/lib/db"
	"github.com/teal/ledger/lib/errors"
	"github.com/teal/ledger/lib/token"
)

// Unique represents the side record of a unique asset: its controlling owner
// and the accounts granted access to it.
type Unique struct {
	Token   string
	Created time.Time
	Updated time.Time

	Asset string // Asset symbol (unique).

	ControllingOwner string  `db:"controlling_owner"`
	AccessList       NameSet `db:"access_list"`
}

// CreateUnique creates and stores a new Unique object.
func CreateUnique(
	ctx context.Context,
	asset string,
	controllingOwner string,
	accessList NameSet,
	now time.Time,
) (*Unique, error) {
	unique := Unique{
		Token:   token.New("unique"),
		Created: now,
		Updated: now,

		Asset: asset,

		ControllingOwner: controllingOwner,
		AccessList:       accessList,
	}

	ext := db.Ext(ctx)
	if _, err := sqlx.NamedExec(ext, `
INSERT INTO uniques
  (token, created, updated, asset, controlling_owner, access_list)
VALUES
  (:token, :created, :updated, :asset, :controlling_owner, :access_list)
`, unique); err != nil {
		return nil, mapSQLError(err)
	}

	return &unique, nil
}

// Save updates the object database representation with the in-memory values.
func (u *Unique) Save(
	ctx context.Context,
) error {
	ext := db.Ext(ctx)
	_, err := sqlx.NamedExec(ext, `
UPDATE uniques
SET updated = :updated, controlling_owner = :controlling_owner,
    access_list = :access_list
WHERE token = :token
`, u)
	if err != nil {
		return errors.Trace(err)
	}

	return nil
}

// LoadUniqueByAsset attempts to load the unique data of an asset.
func LoadUniqueByAsset(
	ctx context.Context,
	asset string,
) (*Unique, error) {
	unique := Unique{
		Asset: asset,
	}

	ext := db.Ext(ctx)
	if rows, err := sqlx.NamedQuery(ext, `
SELECT *
FROM uniques
WHERE asset = :asset
`, unique); err != nil {
		return nil, errors.Trace(err)
	} else if !rows.Next() {
		return nil, nil
	} else if err := rows.StructScan(&unique); err != nil {
		defer rows.Close()
		return nil, errors.Trace(err)
	} else if err := rows.Close(); err != nil {
		return nil, errors.Trace(err)
	}

	return &unique, nil
}
