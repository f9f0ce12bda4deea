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

// CollateralBid represents a bid of additional collateral to reactivate a
// globally settled market. At most one exists per (bidder, asset) pair and
// only while the market has settlement.
type CollateralBid struct {
	Token   string
	Created time.Time
	Updated time.Time

	Bidder string
	Asset  string // Debt asset symbol.

	Collateral Amount // Offered collateral, in the backing asset.
	Debt       Amount // Debt the bidder is willing to absorb.
}

// CreateCollateralBid creates and stores a new CollateralBid object.
func CreateCollateralBid(
	ctx context.Context,
	bidder string,
	asset string,
	collateral Amount,
	debt Amount,
	now time.Time,
) (*CollateralBid, error) {
	bid := CollateralBid{
		Token:   token.New("bid"),
		Created: now,
		Updated: now,

		Bidder: bidder,
		Asset:  asset,

		Collateral: collateral,
		Debt:       debt,
	}

	ext := db.Ext(ctx)
	if _, err := sqlx.NamedExec(ext, `
INSERT INTO collateral_bids
  (token, created, updated, bidder, asset, collateral, debt)
VALUES
  (:token, :created, :updated, :bidder, :asset, :collateral, :debt)
`, bid); err != nil {
		return nil, mapSQLError(err)
	}

	return &bid, nil
}

// Save updates the object database representation with the in-memory values.
func (b *CollateralBid) Save(
	ctx context.Context,
) error {
	ext := db.Ext(ctx)
	_, err := sqlx.NamedExec(ext, `
UPDATE collateral_bids
SET updated = :updated, collateral = :collateral, debt = :debt
WHERE token = :token
`, b)
	if err != nil {
		return errors.Trace(err)
	}

	return nil
}

// Delete removes the bid from the database.
func (b *CollateralBid) Delete(
	ctx context.Context,
) error {
	ext := db.Ext(ctx)
	_, err := sqlx.NamedExec(ext, `
DELETE FROM collateral_bids
WHERE token = :token
`, b)
	if err != nil {
		return errors.Trace(err)
	}

	return nil
}

// LoadCollateralBidByBidderAndAsset attempts to load the bid of a bidder for
// an asset.
func LoadCollateralBidByBidderAndAsset(
	ctx context.Context,
	bidder string,
	asset string,
) (*CollateralBid, error) {
	bid := CollateralBid{
		Bidder: bidder,
		Asset:  asset,
	}

	ext := db.Ext(ctx)
	if rows, err := sqlx.NamedQuery(ext, `
SELECT *
FROM collateral_bids
WHERE bidder = :bidder
  AND asset = :asset
`, bid); err != nil {
		return nil, errors.Trace(err)
	} else if !rows.Next() {
		return nil, nil
	} else if err := rows.StructScan(&bid); err != nil {
		defer rows.Close()
		return nil, errors.Trace(err)
	} else if err := rows.Close(); err != nil {
		return nil, errors.Trace(err)
	}

	return &bid, nil
}

// LoadCollateralBidsByAsset loads all bids for an asset sorted from most to
// least collateral offered per unit of debt absorbed.
func LoadCollateralBidsByAsset(
	ctx context.Context,
	asset string,
) ([]CollateralBid, error) {
	query := map[string]interface{}{
		"asset": asset,
	}

	ext := db.Ext(ctx)
	rows, err := sqlx.NamedQuery(ext, `
SELECT *
FROM collateral_bids
WHERE asset = :asset
`, query)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer rows.Close()

	bids := []CollateralBid{}
	for rows.Next() {
		b := CollateralBid{}
		err := rows.StructScan(&b)
		if err != nil {
			return nil, errors.Trace(err)
		}
		bids = append(bids, b)
	}

	// Ties on the ratio fall back to the token so the order is a total
	// order, independent of the row order the query returned.
	sort.Slice(bids, func(i, j int) bool {
		l := new(big.Int).Mul(bids[i].Collateral.Int(), bids[j].Debt.Int())
		r := new(big.Int).Mul(bids[j].Collateral.Int(), bids[i].Debt.Int())
		switch l.Cmp(r) {
		case 1:
			return true
		case -1:
			return false
		}
		return bids[i].Token < bids[j].Token
	})

	return bids, nil
}

// NewBidResource generates a new resource.
func NewBidResource(
	ctx context.Context,
	bid *CollateralBid,
) engine.BidResource {
	return engine.BidResource{
		ID:      bid.Token,
		Created: bid.Created.UnixNano() / engine.TimeResolutionNs,
		Updated: bid.Updated.UnixNano() / engine.TimeResolutionNs,

		Bidder:     bid.Bidder,
		Asset:      bid.Asset,
		Collateral: bid.Collateral.Int(),
		Debt:       bid.Debt.Int(),
	}
}
