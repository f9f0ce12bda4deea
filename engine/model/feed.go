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

// Feed represents the published price feed of one publisher for one
// stablecoin asset. A feed with null amounts is an empty slot.
type Feed struct {
	Token   string
	Created time.Time
	Updated time.Time

	Asset     string // Asset symbol.
	Publisher string // Publisher account name.

	BaseAmount  Amount `db:"base_amount"`  // Amount of the asset.
	QuoteAmount Amount `db:"quote_amount"` // Amount of the backing asset.
}

// CreateFeed creates and stores a new Feed object.
func CreateFeed(
	ctx context.Context,
	asset string,
	publisher string,
	baseAmount Amount,
	quoteAmount Amount,
	now time.Time,
) (*Feed, error) {
	feed := Feed{
		Token:   token.New("feed"),
		Created: now,
		Updated: now,

		Asset:     asset,
		Publisher: publisher,

		BaseAmount:  baseAmount,
		QuoteAmount: quoteAmount,
	}

	ext := db.Ext(ctx)
	if _, err := sqlx.NamedExec(ext, `
INSERT INTO feeds
  (token, created, updated, asset, publisher, base_amount, quote_amount)
VALUES
  (:token, :created, :updated, :asset, :publisher, :base_amount,
   :quote_amount)
`, feed); err != nil {
		return nil, mapSQLError(err)
	}

	return &feed, nil
}

// Save updates the object database representation with the in-memory values.
func (f *Feed) Save(
	ctx context.Context,
) error {
	ext := db.Ext(ctx)
	_, err := sqlx.NamedExec(ext, `
UPDATE feeds
SET updated = :updated, base_amount = :base_amount,
    quote_amount = :quote_amount
WHERE token = :token
`, f)
	if err != nil {
		return errors.Trace(err)
	}

	return nil
}

// Delete removes the feed from the database.
func (f *Feed) Delete(
	ctx context.Context,
) error {
	ext := db.Ext(ctx)
	_, err := sqlx.NamedExec(ext, `
DELETE FROM feeds
WHERE token = :token
`, f)
	if err != nil {
		return errors.Trace(err)
	}

	return nil
}

// LoadFeedByAssetAndPublisher attempts to load the feed of a publisher for an
// asset.
func LoadFeedByAssetAndPublisher(
	ctx context.Context,
	asset string,
	publisher string,
) (*Feed, error) {
	feed := Feed{
		Asset:     asset,
		Publisher: publisher,
	}

	ext := db.Ext(ctx)
	if rows, err := sqlx.NamedQuery(ext, `
SELECT *
FROM feeds
WHERE asset = :asset
  AND publisher = :publisher
`, feed); err != nil {
		return nil, errors.Trace(err)
	} else if !rows.Next() {
		return nil, nil
	} else if err := rows.StructScan(&feed); err != nil {
		defer rows.Close()
		return nil, errors.Trace(err)
	} else if err := rows.Close(); err != nil {
		return nil, errors.Trace(err)
	}

	return &feed, nil
}

// LoadFeedsByAsset loads all feeds of an asset.
func LoadFeedsByAsset(
	ctx context.Context,
	asset string,
) ([]Feed, error) {
	query := map[string]interface{}{
		"asset": asset,
	}

	ext := db.Ext(ctx)
	rows, err := sqlx.NamedQuery(ext, `
SELECT *
FROM feeds
WHERE asset = :asset
ORDER BY publisher
`, query)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer rows.Close()

	feeds := []Feed{}
	for rows.Next() {
		f := Feed{}
		err := rows.StructScan(&f)
		if err != nil {
			return nil, errors.Trace(err)
		}
		feeds = append(feeds, f)
	}

	return feeds, nil
}

// DeleteFeedsByAsset removes all feeds of an asset.
func DeleteFeedsByAsset(
	ctx context.Context,
	asset string,
) error {
	query := map[string]interface{}{
		"asset": asset,
	}

	ext := db.Ext(ctx)
	_, err := sqlx.NamedExec(ext, `
DELETE FROM feeds
WHERE asset = :asset
`, query)
	if err != nil {
		return errors.Trace(err)
	}

	return nil
}

// Price returns the feed settlement price (asset base, backing quote).
func (f *Feed) Price(
	backingAsset string,
) engine.Price {
	return engine.Price{
		BaseAmount:  f.BaseAmount.Int(),
		BaseAsset:   f.Asset,
		QuoteAmount: f.QuoteAmount.Int(),
		QuoteAsset:  backingAsset,
	}
}

// Zero clears the feed amounts leaving an empty slot.
func (f *Feed) Zero() {
	f.BaseAmount = ZeroAmount()
	f.QuoteAmount = ZeroAmount()
}

// NewFeedResource generates a new resource.
func NewFeedResource(
	ctx context.Context,
	feed *Feed,
	backingAsset string,
) engine.FeedResource {
	return engine.FeedResource{
		ID:      feed.Token,
		Created: feed.Created.UnixNano() / engine.TimeResolutionNs,
		Updated: feed.Updated.UnixNano() / engine.TimeResolutionNs,

		Asset:     feed.Asset,
		Publisher: feed.Publisher,
		Price:     feed.Price(backingAsset).String(),
	}
}
