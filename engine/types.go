package engine

import (
	"database/sql/driver"
	"fmt"
	"math/big"
	"regexp"

	"github.com/teal/ledger/lib/errors"
)

// AstType is the type tag of an asset.
type AstType string

const (
	// AstTpCurrency is a chain-issued currency asset.
	AstTpCurrency AstType = "currency"
	// AstTpStandard is a plain user-issued asset.
	AstTpStandard AstType = "standard"
	// AstTpStablecoin is a collateral-backed market-issued asset.
	AstTpStablecoin AstType = "stablecoin"
	// AstTpEquity is a revenue sharing business equity asset.
	AstTpEquity AstType = "equity"
	// AstTpBond is a collateralized debt asset with a maturity date.
	AstTpBond AstType = "bond"
	// AstTpCredit is a business credit asset with buyback terms.
	AstTpCredit AstType = "credit"
	// AstTpStimulus is a redeemable distribution asset.
	AstTpStimulus AstType = "stimulus"
	// AstTpLiquidityPool is the asset representing a liquidity pool share.
	AstTpLiquidityPool AstType = "liquidity_pool"
	// AstTpCreditPool is the asset representing a credit pool share.
	AstTpCreditPool AstType = "credit_pool"
	// AstTpOption is an option derivative asset.
	AstTpOption AstType = "option"
	// AstTpPrediction is a prediction market asset.
	AstTpPrediction AstType = "prediction"
	// AstTpUnique is a single-unit non-fungible asset.
	AstTpUnique AstType = "unique"
)

// AstTypes lists all asset types.
var AstTypes = []AstType{
	AstTpCurrency, AstTpStandard, AstTpStablecoin, AstTpEquity, AstTpBond,
	AstTpCredit, AstTpStimulus, AstTpLiquidityPool, AstTpCreditPool,
	AstTpOption, AstTpPrediction, AstTpUnique,
}

// IsValid returns whether the type tag is a known asset type.
func (t AstType) IsValid() bool {
	for _, tp := range AstTypes {
		if t == tp {
			return true
		}
	}
	return false
}

// Immutable returns whether assets of this type can never be edited by a
// normal update.
func (t AstType) Immutable() bool {
	switch t {
	case AstTpCurrency, AstTpLiquidityPool, AstTpCreditPool, AstTpOption,
		AstTpPrediction:
		return true
	}
	return false
}

// EngineOnly returns whether assets of this type are only produced by
// internal paths and can never be created directly.
func (t AstType) EngineOnly() bool {
	switch t {
	case AstTpLiquidityPool, AstTpCreditPool, AstTpOption, AstTpPrediction:
		return true
	}
	return false
}

// MarketIssued returns whether the supply of this type is created by market
// mechanisms (borrowing, exercise) rather than issuer fiat.
func (t AstType) MarketIssued() bool {
	switch t {
	case AstTpStablecoin, AstTpOption, AstTpPrediction:
		return true
	}
	return false
}

// CreditEnabled returns whether the creation of an asset of this type
// auto-creates its liquidity and credit pools.
func (t AstType) CreditEnabled() bool {
	switch t {
	case AstTpCurrency, AstTpStandard, AstTpEquity, AstTpCredit:
		return true
	}
	return false
}

// RequiresBusiness returns whether the issuer must be a business account.
func (t AstType) RequiresBusiness() bool {
	switch t {
	case AstTpEquity, AstTpBond, AstTpCredit, AstTpStimulus:
		return true
	}
	return false
}

// Value implements driver.Valuer.
func (t AstType) Value() (value driver.Value, err error) {
	return string(t), nil
}

// Scan implements sql.Scanner.
func (t *AstType) Scan(src interface{}) error {
	switch src := src.(type) {
	case []byte:
		*t = AstType(src)
	case string:
		*t = AstType(src)
	default:
		return errors.Newf(
			"Incompatible type for AstType with value: %q", src)
	}

	return nil
}

// TkName is the name of a task.
type TkName string

const (
	// TkMatureSettlements processes matured force settlements of an asset.
	TkMatureSettlements TkName = "MatureSettlements"
	// TkExpireFeeds recomputes the median feed of an asset after expiry.
	TkExpireFeeds TkName = "ExpireFeeds"
	// TkProcessDistribution closes a distribution round past its end date.
	TkProcessDistribution TkName = "ProcessDistribution"
)

// Value implements driver.Valuer.
func (t TkName) Value() (value driver.Value, err error) {
	return string(t), nil
}

// Scan implements sql.Scanner.
func (t *TkName) Scan(src interface{}) error {
	switch src := src.(type) {
	case []byte:
		*t = TkName(src)
	case string:
		*t = TkName(src)
	default:
		return errors.Newf(
			"Incompatible type for TkName with value: %q", src)
	}

	return nil
}

// TkStatus is the status of a task.
type TkStatus string

const (
	// TkStPending is used to mark a task as pending.
	TkStPending TkStatus = "pending"
	// TkStSucceeded is used to mark a task as succeeded.
	TkStSucceeded TkStatus = "succeeded"
	// TkStFailed is used to mark a task as failed.
	TkStFailed TkStatus = "failed"
)

// Value implements driver.Valuer.
func (s TkStatus) Value() (value driver.Value, err error) {
	return string(s), nil
}

// Scan implements sql.Scanner.
func (s *TkStatus) Scan(src interface{}) error {
	switch src := src.(type) {
	case []byte:
		*s = TkStatus(src)
	case string:
		*s = TkStatus(src)
	default:
		return errors.Newf(
			"Incompatible status for TkStatus with value: %q", src)
	}

	return nil
}

// SymbolRegexp is used to validate asset symbols at creation. Symbols may
// contain one `.` separator in which case the prefix must be a registered
// asset of the same issuer.
var SymbolRegexp = regexp.MustCompile(
	"^[A-Z][A-Z0-9]{0,15}(\\.[A-Z][A-Z0-9]{0,15})?$")

// AccountNameRegexp is used to validate account names.
var AccountNameRegexp = regexp.MustCompile(
	"^[a-z0-9][a-z0-9\\-]{0,62}[a-z0-9]$")

// Price represents an exchange rate between two assets as a ratio of two
// integer amounts. A price with a null base or quote amount is null.
type Price struct {
	BaseAmount  *big.Int `json:"base_amount"`
	BaseAsset   string   `json:"base_asset"`
	QuoteAmount *big.Int `json:"quote_amount"`
	QuoteAsset  string   `json:"quote_asset"`
}

// IsNull returns whether the price carries no information.
func (p Price) IsNull() bool {
	return p.BaseAmount == nil || p.QuoteAmount == nil ||
		p.BaseAmount.Sign() == 0 || p.QuoteAmount.Sign() == 0
}

// Convert converts an amount of the base asset into the quote asset, rounding
// down (in favor of the quote asset payer).
func (p Price) Convert(amount *big.Int) *big.Int {
	res := new(big.Int).Mul(amount, p.QuoteAmount)
	return res.Div(res, p.BaseAmount)
}

// ConvertRoundUp converts an amount of the base asset into the quote asset,
// rounding up.
func (p Price) ConvertRoundUp(amount *big.Int) *big.Int {
	res := new(big.Int).Mul(amount, p.QuoteAmount)
	rem := new(big.Int)
	res.DivMod(res, p.BaseAmount, rem)
	if rem.Sign() != 0 {
		res.Add(res, big.NewInt(1))
	}
	return res
}

// Cmp compares two prices expressed over the same asset pair without
// dividing: p < o iff p.Base*o.Quote < o.Base*p.Quote.
func (p Price) Cmp(o Price) int {
	l := new(big.Int).Mul(p.BaseAmount, o.QuoteAmount)
	r := new(big.Int).Mul(o.BaseAmount, p.QuoteAmount)
	return l.Cmp(r)
}

// String returns the price in `pB/pQ` form.
func (p Price) String() string {
	if p.IsNull() {
		return "0/0"
	}
	return fmt.Sprintf("%s/%s", p.BaseAmount.String(), p.QuoteAmount.String())
}
