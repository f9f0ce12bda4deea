package engine

import (
	"context"
	"time"

	"github.com/teal/ledger/lib/logging"
)

const (
	// Version is the current version.
	Version string = "0.0.1"

	// SymbolCore is the symbol of the chain's core asset.
	SymbolCore string = "COIN"
	// SymbolUSD is the symbol of the reference stablecoin used to seed
	// secondary liquidity pools.
	SymbolUSD string = "USD"
	// NullAccount is the designated system account allowed to create
	// Currency assets.
	NullAccount string = "null"

	// Percent100 is the basis point representation of 100%. All percentage
	// values are expressed in basis points.
	Percent100 int64 = 10000
	// MaxRevenueShare caps the aggregate revenue share percentage of a
	// business across its equity and credit assets (50%).
	MaxRevenueShare int64 = 5000

	// CreateCooldown is the minimum interval between two asset creations by
	// the same issuer.
	CreateCooldown time.Duration = 24 * time.Hour
	// UpdateCooldown is the minimum interval between two updates of the same
	// asset.
	UpdateCooldown time.Duration = 10 * time.Minute

	// BondMinMaturity is the minimal delay between a bond asset creation and
	// its maturity date.
	BondMinMaturity time.Duration = 30 * 24 * time.Hour

	// DistributionMinLead is the minimal delay between the creation of a
	// distribution round and its begin date.
	DistributionMinLead time.Duration = 30 * 24 * time.Hour

	// MinFeedLifetime is the minimal lifetime of a published price feed.
	MinFeedLifetime time.Duration = time.Hour
	// MinSettlementDelay is the minimal delay before a force settlement
	// request matures.
	MinSettlementDelay time.Duration = time.Hour

	// MaxFeedPublishers is the maximal number of feed publishers of a
	// stablecoin.
	MaxFeedPublishers int = 100
	// MaxAuthorities is the maximal number of whitelist or blacklist entries
	// of an asset.
	MaxAuthorities int = 100

	// CurrencyMinLiquidity is the minimal seeded liquidity, in core asset and
	// in reference stablecoin, required to create a Currency asset.
	CurrencyMinLiquidity int64 = 100000
	// CreditInitialRatio is the initial base to credit exchange ratio of an
	// auto-created credit pool.
	CreditInitialRatio int64 = 100

	// TimeResolutionNs is the resolution of timestamps in the API (ms).
	TimeResolutionNs int64 = 1000 * 1000
)

// Asset permission and flag bits. Permissions are the capabilities an issuer
// granted itself at creation; flags are the currently active subset.
const (
	// PermWhitelist restricts holding to whitelisted accounts.
	PermWhitelist int64 = 1 << 0
	// PermOverrideAuthority lets the issuer transfer balances back.
	PermOverrideAuthority int64 = 1 << 1
	// PermTransferRestricted requires the issuer on every transfer.
	PermTransferRestricted int64 = 1 << 2
	// PermDisableForceSettle disables holder-initiated settlement.
	PermDisableForceSettle int64 = 1 << 3
	// PermGlobalSettle lets the issuer settle the market globally.
	PermGlobalSettle int64 = 1 << 4
	// PermProducerFed marks feeds as published by block producers.
	PermProducerFed int64 = 1 << 5
)

// PermAll is the union of all permission bits.
const PermAll int64 = PermWhitelist | PermOverrideAuthority |
	PermTransferRestricted | PermDisableForceSettle | PermGlobalSettle |
	PermProducerFed

// Logf shells out to logging.Logf adding engine specific information.
func Logf(
	ctx context.Context,
	format string,
	v ...interface{},
) {
	logging.Logf(ctx, "[engine] "+format, v...)
}
