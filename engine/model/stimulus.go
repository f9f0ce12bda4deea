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

// Stimulus represents the side record of a stimulus asset: the redemption
// asset its units are redeemable in, the redemption pool funded by the
// issuer and the accounts units are distributed to.
type Stimulus struct {
	Token   string
	Created time.Time
	Updated time.Time

	Asset    string // Asset symbol (unique).
	Business string // Issuer business account.

	RedemptionAsset string `db:"redemption_asset"`
	RedemptionPool  Amount `db:"redemption_pool"`

	DistributionList NameSet `db:"distribution_list"`
	// DistributionAmount is the amount distributed to each listed account
	// per round.
	DistributionAmount Amount `db:"distribution_amount"`
}

// CreateStimulus creates and stores a new Stimulus object.
func CreateStimulus(
	ctx context.Context,
	asset string,
	business string,
	redemptionAsset string,
	distributionList NameSet,
	distributionAmount Amount,
	now time.Time,
) (*Stimulus, error) {
	stimulus := Stimulus{
		Token:   token.New("stimulus"),
		Created: now,
		Updated: now,

		Asset:    asset,
		Business: business,

		RedemptionAsset: redemptionAsset,
		RedemptionPool:  ZeroAmount(),

		DistributionList:   distributionList,
		DistributionAmount: distributionAmount,
	}

	ext := db.Ext(ctx)
	if _, err := sqlx.NamedExec(ext, `
INSERT INTO stimuli
  (token, created, updated, asset, business, redemption_asset,
   redemption_pool, distribution_list, distribution_amount)
VALUES
  (:token, :created, :updated, :asset, :business, :redemption_asset,
   :redemption_pool, :distribution_list, :distribution_amount)
`, stimulus); err != nil {
		return nil, mapSQLError(err)
	}

	return &stimulus, nil
}

// Save updates the object database representation with the in-memory values.
func (s *Stimulus) Save(
	ctx context.Context,
) error {
	ext := db.Ext(ctx)
	_, err := sqlx.NamedExec(ext, `
UPDATE stimuli
SET updated = :updated, business = :business,
    redemption_pool = :redemption_pool,
    distribution_list = :distribution_list,
    distribution_amount = :distribution_amount
WHERE token = :token
`, s)
	if err != nil {
		return errors.Trace(err)
	}

	return nil
}

// NewStimulusResource generates a new resource.
func NewStimulusResource(
	ctx context.Context,
	stimulus *Stimulus,
) engine.StimulusResource {
	return engine.StimulusResource{
		ID:      stimulus.Token,
		Created: stimulus.Created.UnixNano() / engine.TimeResolutionNs,
		Updated: stimulus.Updated.UnixNano() / engine.TimeResolutionNs,

		Asset:    stimulus.Asset,
		Business: stimulus.Business,

		RedemptionAsset: stimulus.RedemptionAsset,
		RedemptionPool:  stimulus.RedemptionPool.Int(),

		DistributionList:   stimulus.DistributionList,
		DistributionAmount: stimulus.DistributionAmount.Int(),
	}
}

// LoadStimulusByAsset attempts to load the stimulus data of an asset.
func LoadStimulusByAsset(
	ctx context.Context,
	asset string,
) (*Stimulus, error) {
	stimulus := Stimulus{
		Asset: asset,
	}

	ext := db.Ext(ctx)
	if rows, err := sqlx.NamedQuery(ext, `
SELECT *
FROM stimuli
WHERE asset = :asset
`, stimulus); err != nil {
		return nil, errors.Trace(err)
	} else if !rows.Next() {
		return nil, nil
	} else if err := rows.StructScan(&stimulus); err != nil {
		defer rows.Close()
		return nil, errors.Trace(err)
	} else if err := rows.Close(); err != nil {
		return nil, errors.Trace(err)
	}

	return &stimulus, nil
}
