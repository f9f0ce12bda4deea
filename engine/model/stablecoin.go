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

// Stablecoin represents the market data of a stablecoin asset: backing
// asset, feed aggregation parameters, the current median feed and the global
// settlement state.
type Stablecoin struct {
	Token   string
	Created time.Time
	Updated time.Time

	Asset        string // Asset symbol (unique).
	BackingAsset string `db:"backing_asset"`

	FeedLifetime    int64 `db:"feed_lifetime"` // In seconds.
	MinimumFeeds    int64 `db:"minimum_feeds"`
	SettlementDelay int64 `db:"settlement_delay"` // In seconds.

	// MaintenanceCollateralization is the required collateralization ratio in
	// basis points.
	MaintenanceCollateralization int64 `db:"maintenance_collateralization"`

	// Current median feed settlement price (asset base, backing quote). Null
	// amounts mean no valid median.
	FeedBaseAmount  Amount `db:"feed_base_amount"`
	FeedQuoteAmount Amount `db:"feed_quote_amount"`

	// Global settlement state. A non null settlement price means the market
	// has settled.
	SettlementBaseAmount  Amount `db:"settlement_base_amount"`
	SettlementQuoteAmount Amount `db:"settlement_quote_amount"`
	SettlementFund        Amount `db:"settlement_fund"`
}

// CreateStablecoin creates and stores a new Stablecoin object.
func CreateStablecoin(
	ctx context.Context,
	asset string,
	backingAsset string,
	feedLifetime int64,
	minimumFeeds int64,
	settlementDelay int64,
	maintenanceCollateralization int64,
	now time.Time,
) (*Stablecoin, error) {
	stablecoin := Stablecoin{
		Token:   token.New("stablecoin"),
		Created: now,
		Updated: now,

		Asset:        asset,
		BackingAsset: backingAsset,

		FeedLifetime:    feedLifetime,
		MinimumFeeds:    minimumFeeds,
		SettlementDelay: settlementDelay,

		MaintenanceCollateralization: maintenanceCollateralization,

		FeedBaseAmount:        ZeroAmount(),
		FeedQuoteAmount:       ZeroAmount(),
		SettlementBaseAmount:  ZeroAmount(),
		SettlementQuoteAmount: ZeroAmount(),
		SettlementFund:        ZeroAmount(),
	}

	ext := db.Ext(ctx)
	if _, err := sqlx.NamedExec(ext, `
INSERT INTO stablecoins
  (token, created, updated, asset, backing_asset, feed_lifetime,
   minimum_feeds, settlement_delay, maintenance_collateralization,
   feed_base_amount, feed_quote_amount, settlement_base_amount,
   settlement_quote_amount, settlement_fund)
VALUES
  (:token, :created, :updated, :asset, :backing_asset, :feed_lifetime,
   :minimum_feeds, :settlement_delay, :maintenance_collateralization,
   :feed_base_amount, :feed_quote_amount, :settlement_base_amount,
   :settlement_quote_amount, :settlement_fund)
`, stablecoin); err != nil {
		return nil, mapSQLError(err)
	}

	return &stablecoin, nil
}

// Save updates the object database representation with the in-memory values.
func (s *Stablecoin) Save(
	ctx context.Context,
) error {
	ext := db.Ext(ctx)
	_, err := sqlx.NamedExec(ext, `
UPDATE stablecoins
SET updated = :updated, backing_asset = :backing_asset,
    feed_lifetime = :feed_lifetime, minimum_feeds = :minimum_feeds,
    settlement_delay = :settlement_delay,
    maintenance_collateralization = :maintenance_collateralization,
    feed_base_amount = :feed_base_amount,
    feed_quote_amount = :feed_quote_amount,
    settlement_base_amount = :settlement_base_amount,
    settlement_quote_amount = :settlement_quote_amount,
    settlement_fund = :settlement_fund
WHERE token = :token
`, s)
	if err != nil {
		return errors.Trace(err)
	}

	return nil
}

// LoadStablecoinByAsset attempts to load the stablecoin data of an asset.
func LoadStablecoinByAsset(
	ctx context.Context,
	asset string,
) (*Stablecoin, error) {
	stablecoin := Stablecoin{
		Asset: asset,
	}

	ext := db.Ext(ctx)
	if rows, err := sqlx.NamedQuery(ext, `
SELECT *
FROM stablecoins
WHERE asset = :asset
`, stablecoin); err != nil {
		return nil, errors.Trace(err)
	} else if !rows.Next() {
		return nil, nil
	} else if err := rows.StructScan(&stablecoin); err != nil {
		defer rows.Close()
		return nil, errors.Trace(err)
	} else if err := rows.Close(); err != nil {
		return nil, errors.Trace(err)
	}

	return &stablecoin, nil
}

// CurrentFeed returns the current median settlement price (asset base,
// backing asset quote). The amounts are copies, detached from the record
// storage, so a retained price survives a subsequent SetCurrentFeed.
func (s *Stablecoin) CurrentFeed() engine.Price {
	return engine.Price{
		BaseAmount:  new(big.Int).Set(s.FeedBaseAmount.Int()),
		BaseAsset:   s.Asset,
		QuoteAmount: new(big.Int).Set(s.FeedQuoteAmount.Int()),
		QuoteAsset:  s.BackingAsset,
	}
}

// SetCurrentFeed stores the provided price as the current median feed.
func (s *Stablecoin) SetCurrentFeed(p engine.Price) {
	if p.IsNull() {
		s.FeedBaseAmount = ZeroAmount()
		s.FeedQuoteAmount = ZeroAmount()
		return
	}
	s.FeedBaseAmount = AmountFromInt(p.BaseAmount)
	s.FeedQuoteAmount = AmountFromInt(p.QuoteAmount)
}

// HasSettlement returns whether the market has globally settled.
func (s *Stablecoin) HasSettlement() bool {
	return !s.SettlementPrice().IsNull()
}

// SettlementPrice returns the fixed settlement price (asset base, backing
// asset quote).
func (s *Stablecoin) SettlementPrice() engine.Price {
	return engine.Price{
		BaseAmount:  new(big.Int).Set(s.SettlementBaseAmount.Int()),
		BaseAsset:   s.Asset,
		QuoteAmount: new(big.Int).Set(s.SettlementQuoteAmount.Int()),
		QuoteAsset:  s.BackingAsset,
	}
}

// SetSettlementPrice stores the provided price as the settlement price.
func (s *Stablecoin) SetSettlementPrice(p engine.Price) {
	if p.IsNull() {
		s.SettlementBaseAmount = ZeroAmount()
		s.SettlementQuoteAmount = ZeroAmount()
		return
	}
	s.SettlementBaseAmount = AmountFromInt(p.BaseAmount)
	s.SettlementQuoteAmount = AmountFromInt(p.QuoteAmount)
}

// UpdateMedianFeeds recomputes the current median feed from the live feeds of
// the asset. Feeds older than the feed lifetime are ignored; if fewer than
// minimum_feeds remain the median is null. Returns whether the median
// changed. The stablecoin is not saved.
func (s *Stablecoin) UpdateMedianFeeds(
	ctx context.Context,
	now time.Time,
) (bool, error) {
	feeds, err := LoadFeedsByAsset(ctx, s.Asset)
	if err != nil {
		return false, errors.Trace(err)
	}

	cutoff := now.Add(-time.Duration(s.FeedLifetime) * time.Second)
	live := []engine.Price{}
	for _, f := range feeds {
		if f.Updated.Before(cutoff) {
			continue
		}
		p := f.Price(s.BackingAsset)
		if p.IsNull() {
			continue
		}
		live = append(live, p)
	}

	prior := s.CurrentFeed()

	if int64(len(live)) < s.MinimumFeeds {
		s.SetCurrentFeed(engine.Price{})
		return !prior.IsNull(), nil
	}

	sort.Slice(live, func(i, j int) bool {
		return live[i].Cmp(live[j]) < 0
	})
	median := live[(len(live)-1)/2]

	s.SetCurrentFeed(median)
	if prior.IsNull() || prior.Cmp(median) != 0 {
		return true, nil
	}
	return false, nil
}

// NewStablecoinResource generates a new resource.
func NewStablecoinResource(
	ctx context.Context,
	stablecoin *Stablecoin,
) engine.StablecoinResource {
	return engine.StablecoinResource{
		ID:      stablecoin.Token,
		Created: stablecoin.Created.UnixNano() / engine.TimeResolutionNs,
		Updated: stablecoin.Updated.UnixNano() / engine.TimeResolutionNs,

		Asset:           stablecoin.Asset,
		BackingAsset:    stablecoin.BackingAsset,
		FeedLifetime:    stablecoin.FeedLifetime,
		MinimumFeeds:    stablecoin.MinimumFeeds,
		SettlementDelay: stablecoin.SettlementDelay,

		CurrentFeed:     stablecoin.CurrentFeed().String(),
		HasSettlement:   stablecoin.HasSettlement(),
		SettlementPrice: stablecoin.SettlementPrice().String(),
		SettlementFund:  stablecoin.SettlementFund.Int(),
	}
}
