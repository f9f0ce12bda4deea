package engine

import "math/big"

// AssetResource is the representation of an asset in the engine API.
type AssetResource struct {
	ID      string `json:"id"`
	Created int64  `json:"created"`
	Updated int64  `json:"updated"`

	Symbol            string   `json:"symbol"`
	Issuer            string   `json:"issuer"`
	Type              AstType  `json:"type"`
	MaxSupply         *big.Int `json:"max_supply"`
	Permissions       int64    `json:"permissions"`
	Flags             int64    `json:"flags"`
	WhitelistAccounts []string `json:"whitelist_accounts"`
	BlacklistAccounts []string `json:"blacklist_accounts"`

	TotalSupply *big.Int `json:"total_supply"`
}

// StablecoinResource is the representation of the stablecoin data of an asset
// in the engine API.
type StablecoinResource struct {
	ID      string `json:"id"`
	Created int64  `json:"created"`
	Updated int64  `json:"updated"`

	Asset           string `json:"asset"`
	BackingAsset    string `json:"backing_asset"`
	FeedLifetime    int64  `json:"feed_lifetime"`
	MinimumFeeds    int64  `json:"minimum_feeds"`
	SettlementDelay int64  `json:"settlement_delay"`

	CurrentFeed     string   `json:"current_feed"`
	HasSettlement   bool     `json:"has_settlement"`
	SettlementPrice string   `json:"settlement_price"`
	SettlementFund  *big.Int `json:"settlement_fund"`
}

// FeedResource is the representation of a published feed in the engine API.
type FeedResource struct {
	ID      string `json:"id"`
	Created int64  `json:"created"`
	Updated int64  `json:"updated"`

	Asset     string `json:"asset"`
	Publisher string `json:"publisher"`
	Price     string `json:"price"`
}

// SettlementResource is the representation of a pending force settlement in
// the engine API.
type SettlementResource struct {
	ID      string `json:"id"`
	Created int64  `json:"created"`

	Account        string   `json:"account"`
	Asset          string   `json:"asset"`
	Balance        *big.Int `json:"balance"`
	SettlementDate int64    `json:"settlement_date"`
}

// BidResource is the representation of a collateral bid in the engine API.
type BidResource struct {
	ID      string `json:"id"`
	Created int64  `json:"created"`
	Updated int64  `json:"updated"`

	Bidder     string   `json:"bidder"`
	Asset      string   `json:"asset"`
	Collateral *big.Int `json:"collateral"`
	Debt       *big.Int `json:"debt"`
}

// CallOrderResource is the representation of an open debt position in the
// engine API.
type CallOrderResource struct {
	ID      string `json:"id"`
	Created int64  `json:"created"`
	Updated int64  `json:"updated"`

	Borrower        string   `json:"borrower"`
	Asset           string   `json:"asset"`
	CollateralAsset string   `json:"collateral_asset"`
	Collateral      *big.Int `json:"collateral"`
	Debt            *big.Int `json:"debt"`
}

// DistributionResource is the representation of a distribution round in the
// engine API.
type DistributionResource struct {
	ID      string `json:"id"`
	Created int64  `json:"created"`
	Updated int64  `json:"updated"`

	Asset       string   `json:"asset"`
	FundAsset   string   `json:"fund_asset"`
	UnitAmount  *big.Int `json:"unit_amount"`
	MinFund     *big.Int `json:"min_fund"`
	TotalFunded *big.Int `json:"total_funded"`
	BeginDate   int64    `json:"begin_date"`
	EndDate     int64    `json:"end_date"`
}

// StimulusResource is the representation of the stimulus data of an asset in
// the engine API.
type StimulusResource struct {
	ID      string `json:"id"`
	Created int64  `json:"created"`
	Updated int64  `json:"updated"`

	Asset    string `json:"asset"`
	Business string `json:"business"`

	RedemptionAsset string   `json:"redemption_asset"`
	RedemptionPool  *big.Int `json:"redemption_pool"`

	DistributionList   []string `json:"distribution_list"`
	DistributionAmount *big.Int `json:"distribution_amount"`
}

// SettlementPayoutResource is the representation of an executed settlement in
// the engine API.
type SettlementPayoutResource struct {
	Asset       string   `json:"asset"`
	Account     string   `json:"account"`
	Settled     *big.Int `json:"settled"`
	Payout      *big.Int `json:"payout"`
	PayoutAsset string   `json:"payout_asset"`
}
