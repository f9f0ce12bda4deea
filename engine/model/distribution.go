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

// DsStatus is the status of a distribution round.
type DsStatus string

const (
	// DsStOpen is used to mark a distribution as accepting funds.
	DsStOpen DsStatus = "open"
	// DsStClosed is used to mark a distribution as processed.
	DsStClosed DsStatus = "closed"
)

// Distribution represents a distribution round of an asset: senders fund the
// round in the fund asset and receive units of the distributed asset in
// proportion once the round closes.
type Distribution struct {
	Token   string
	Created time.Time
	Updated time.Time

	Asset     string // Distributed asset symbol (unique).
	FundAsset string `db:"fund_asset"`

	// UnitAmount is the amount of the distributed asset granted per
	// input_unit of the fund asset.
	UnitAmount Amount `db:"unit_amount"`
	InputUnit  Amount `db:"input_unit"`
	// MinFund is the minimal aggregate funding for the round to succeed.
	MinFund     Amount `db:"min_fund"`
	TotalFunded Amount `db:"total_funded"`

	BeginDate time.Time `db:"begin_date"`
	EndDate   time.Time `db:"end_date"`
	Status    string
}

// CreateDistribution creates and stores a new Distribution object.
func CreateDistribution(
	ctx context.Context,
	asset string,
	fundAsset string,
	unitAmount Amount,
	inputUnit Amount,
	minFund Amount,
	beginDate time.Time,
	endDate time.Time,
	now time.Time,
) (*Distribution, error) {
	distribution := Distribution{
		Token:   token.New("distribution"),
		Created: now,
		Updated: now,

		Asset:     asset,
		FundAsset: fundAsset,

		UnitAmount:  unitAmount,
		InputUnit:   inputUnit,
		MinFund:     minFund,
		TotalFunded: ZeroAmount(),

		BeginDate: beginDate,
		EndDate:   endDate,
		Status:    string(DsStOpen),
	}

	ext := db.Ext(ctx)
	if _, err := sqlx.NamedExec(ext, `
INSERT INTO distributions
  (token, created, updated, asset, fund_asset, unit_amount, input_unit,
   min_fund, total_funded, begin_date, end_date, status)
VALUES
  (:token, :created, :updated, :asset, :fund_asset, :unit_amount,
   :input_unit, :min_fund, :total_funded, :begin_date, :end_date, :status)
`, distribution); err != nil {
		return nil, mapSQLError(err)
	}

	return &distribution, nil
}

// Save updates the object database representation with the in-memory values.
func (d *Distribution) Save(
	ctx context.Context,
) error {
	ext := db.Ext(ctx)
	_, err := sqlx.NamedExec(ext, `
UPDATE distributions
SET updated = :updated, fund_asset = :fund_asset,
    unit_amount = :unit_amount, input_unit = :input_unit,
    min_fund = :min_fund, total_funded = :total_funded,
    begin_date = :begin_date, end_date = :end_date, status = :status
WHERE token = :token
`, d)
	if err != nil {
		return errors.Trace(err)
	}

	return nil
}

// LoadDistributionByAsset attempts to load the open distribution of an asset.
func LoadDistributionByAsset(
	ctx context.Context,
	asset string,
) (*Distribution, error) {
	distribution := Distribution{
		Asset: asset,
	}

	ext := db.Ext(ctx)
	if rows, err := sqlx.NamedQuery(ext, `
SELECT *
FROM distributions
WHERE asset = :asset
`, distribution); err != nil {
		return nil, errors.Trace(err)
	} else if !rows.Next() {
		return nil, nil
	} else if err := rows.StructScan(&distribution); err != nil {
		defer rows.Close()
		return nil, errors.Trace(err)
	} else if err := rows.Close(); err != nil {
		return nil, errors.Trace(err)
	}

	return &distribution, nil
}

// DistributionBalance represents the funding balance of one sender in a
// distribution round.
type DistributionBalance struct {
	Token   string
	Created time.Time
	Updated time.Time

	Distribution string // Distribution token.
	Sender       string
	Value        Amount
}

// CreateDistributionBalance creates and stores a new DistributionBalance.
func CreateDistributionBalance(
	ctx context.Context,
	distribution string,
	sender string,
	now time.Time,
) (*DistributionBalance, error) {
	balance := DistributionBalance{
		Token:   token.New("dsbalance"),
		Created: now,
		Updated: now,

		Distribution: distribution,
		Sender:       sender,
		Value:        ZeroAmount(),
	}

	ext := db.Ext(ctx)
	if _, err := sqlx.NamedExec(ext, `
INSERT INTO distribution_balances
  (token, created, updated, distribution, sender, value)
VALUES
  (:token, :created, :updated, :distribution, :sender, :value)
`, balance); err != nil {
		return nil, mapSQLError(err)
	}

	return &balance, nil
}

// Save updates the object database representation with the in-memory values.
func (b *DistributionBalance) Save(
	ctx context.Context,
) error {
	ext := db.Ext(ctx)
	_, err := sqlx.NamedExec(ext, `
UPDATE distribution_balances
SET updated = :updated, value = :value
WHERE token = :token
`, b)
	if err != nil {
		return errors.Trace(err)
	}

	return nil
}

// Delete removes the distribution balance from the database.
func (b *DistributionBalance) Delete(
	ctx context.Context,
) error {
	ext := db.Ext(ctx)
	_, err := sqlx.NamedExec(ext, `
DELETE FROM distribution_balances
WHERE token = :token
`, b)
	if err != nil {
		return errors.Trace(err)
	}

	return nil
}

// LoadDistributionBalanceBySender attempts to load the funding balance of a
// sender in a distribution round.
func LoadDistributionBalanceBySender(
	ctx context.Context,
	distribution string,
	sender string,
) (*DistributionBalance, error) {
	balance := DistributionBalance{
		Distribution: distribution,
		Sender:       sender,
	}

	ext := db.Ext(ctx)
	if rows, err := sqlx.NamedQuery(ext, `
SELECT *
FROM distribution_balances
WHERE distribution = :distribution
  AND sender = :sender
`, balance); err != nil {
		return nil, errors.Trace(err)
	} else if !rows.Next() {
		return nil, nil
	} else if err := rows.StructScan(&balance); err != nil {
		defer rows.Close()
		return nil, errors.Trace(err)
	} else if err := rows.Close(); err != nil {
		return nil, errors.Trace(err)
	}

	return &balance, nil
}

// LoadDistributionBalances loads all funding balances of a distribution
// round.
func LoadDistributionBalances(
	ctx context.Context,
	distribution string,
) ([]DistributionBalance, error) {
	query := map[string]interface{}{
		"distribution": distribution,
	}

	ext := db.Ext(ctx)
	rows, err := sqlx.NamedQuery(ext, `
SELECT *
FROM distribution_balances
WHERE distribution = :distribution
ORDER BY created
`, query)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer rows.Close()

	balances := []DistributionBalance{}
	for rows.Next() {
		b := DistributionBalance{}
		err := rows.StructScan(&b)
		if err != nil {
			return nil, errors.Trace(err)
		}
		balances = append(balances, b)
	}

	return balances, nil
}

// NewDistributionResource generates a new resource.
func NewDistributionResource(
	ctx context.Context,
	distribution *Distribution,
) engine.DistributionResource {
	return engine.DistributionResource{
		ID:      distribution.Token,
		Created: distribution.Created.UnixNano() / engine.TimeResolutionNs,
		Updated: distribution.Updated.UnixNano() / engine.TimeResolutionNs,

		Asset:       distribution.Asset,
		FundAsset:   distribution.FundAsset,
		UnitAmount:  distribution.UnitAmount.Int(),
		MinFund:     distribution.MinFund.Int(),
		TotalFunded: distribution.TotalFunded.Int(),
		BeginDate: distribution.BeginDate.UnixNano() /
			engine.TimeResolutionNs,
		EndDate: distribution.EndDate.UnixNano() / engine.TimeResolutionNs,
	}
}
