package model

import (
	"context"
	"math/big"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/teal/ledger/engine"
	"github.com/teal/ledger/lib/db"
	"github.com/teal/ledger/lib/errors"
	"github.com/teal/ledger/lib/token"
)

// Asset represents the canonical record of an asset. Assets are created once
// through the registry, mutated only through the update operation and never
// deleted.
type Asset struct {
	Token   string
	Created time.Time
	Updated time.Time

	Symbol string // Asset symbol (unique).
	Issuer string // Issuer account name.
	Type   engine.AstType

	MaxSupply   Amount `db:"max_supply"`
	Permissions int64
	Flags       int64

	WhitelistAccounts NameSet `db:"whitelist_accounts"`
	BlacklistAccounts NameSet `db:"blacklist_accounts"`
	WhitelistMarkets  NameSet `db:"whitelist_markets"`
	BlacklistMarkets  NameSet `db:"blacklist_markets"`

	StakeInterval   int64 `db:"stake_interval"`   // In seconds.
	UnstakeInterval int64 `db:"unstake_interval"` // In seconds.
}

// CreateAsset creates and stores a new Asset object.
func CreateAsset(
	ctx context.Context,
	symbol string,
	issuer string,
	typ engine.AstType,
	maxSupply Amount,
	permissions int64,
	flags int64,
	whitelistAccounts NameSet,
	blacklistAccounts NameSet,
	whitelistMarkets NameSet,
	blacklistMarkets NameSet,
	stakeInterval int64,
	unstakeInterval int64,
	now time.Time,
) (*Asset, error) {
	asset := Asset{
		Token:   token.New("asset"),
		Created: now,
		Updated: now,

		Symbol:      symbol,
		Issuer:      issuer,
		Type:        typ,
		MaxSupply:   maxSupply,
		Permissions: permissions,
		Flags:       flags,

		WhitelistAccounts: whitelistAccounts,
		BlacklistAccounts: blacklistAccounts,
		WhitelistMarkets:  whitelistMarkets,
		BlacklistMarkets:  blacklistMarkets,

		StakeInterval:   stakeInterval,
		UnstakeInterval: unstakeInterval,
	}

	ext := db.Ext(ctx)
	if _, err := sqlx.NamedExec(ext, `
INSERT INTO assets
  (token, created, updated, symbol, issuer, type, max_supply, permissions,
   flags, whitelist_accounts, blacklist_accounts, whitelist_markets,
   blacklist_markets, stake_interval, unstake_interval)
VALUES
  (:token, :created, :updated, :symbol, :issuer, :type, :max_supply,
   :permissions, :flags, :whitelist_accounts, :blacklist_accounts,
   :whitelist_markets, :blacklist_markets, :stake_interval, :unstake_interval)
`, asset); err != nil {
		return nil, mapSQLError(err)
	}

	return &asset, nil
}

// Save updates the object database representation with the in-memory values.
func (a *Asset) Save(
	ctx context.Context,
) error {
	ext := db.Ext(ctx)
	_, err := sqlx.NamedExec(ext, `
UPDATE assets
SET updated = :updated, issuer = :issuer, max_supply = :max_supply,
    permissions = :permissions, flags = :flags,
    whitelist_accounts = :whitelist_accounts,
    blacklist_accounts = :blacklist_accounts,
    whitelist_markets = :whitelist_markets,
    blacklist_markets = :blacklist_markets,
    stake_interval = :stake_interval, unstake_interval = :unstake_interval
WHERE token = :token
`, a)
	if err != nil {
		return errors.Trace(err)
	}

	return nil
}

// LoadAssetBySymbol attempts to load an asset by its symbol.
func LoadAssetBySymbol(
	ctx context.Context,
	symbol string,
) (*Asset, error) {
	asset := Asset{
		Symbol: symbol,
	}

	ext := db.Ext(ctx)
	if rows, err := sqlx.NamedQuery(ext, `
SELECT *
FROM assets
WHERE symbol = :symbol
`, asset); err != nil {
		return nil, errors.Trace(err)
	} else if !rows.Next() {
		return nil, nil
	} else if err := rows.StructScan(&asset); err != nil {
		defer rows.Close()
		return nil, errors.Trace(err)
	} else if err := rows.Close(); err != nil {
		return nil, errors.Trace(err)
	}

	return &asset, nil
}

// LoadLastAssetByIssuer attempts to load the most recently created asset of
// an issuer (used to enforce the creation cooldown).
func LoadLastAssetByIssuer(
	ctx context.Context,
	issuer string,
) (*Asset, error) {
	asset := Asset{
		Issuer: issuer,
	}

	ext := db.Ext(ctx)
	if rows, err := sqlx.NamedQuery(ext, `
SELECT *
FROM assets
WHERE issuer = :issuer
ORDER BY created DESC
LIMIT 1
`, asset); err != nil {
		return nil, errors.Trace(err)
	} else if !rows.Next() {
		return nil, nil
	} else if err := rows.StructScan(&asset); err != nil {
		defer rows.Close()
		return nil, errors.Trace(err)
	} else if err := rows.Close(); err != nil {
		return nil, errors.Trace(err)
	}

	return &asset, nil
}

// LoadAssetListByCreatedBefore loads a list of assets created before the
// provided time.
func LoadAssetListByCreatedBefore(
	ctx context.Context,
	createdBefore time.Time,
	limit uint,
) ([]Asset, error) {
	query := map[string]interface{}{
		"created_before": createdBefore.UTC(),
		"limit":          limit,
	}

	ext := db.Ext(ctx)
	rows, err := sqlx.NamedQuery(ext, `
SELECT *
FROM assets
WHERE created < :created_before
ORDER BY created DESC
LIMIT :limit
`, query)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer rows.Close()

	assets := []Asset{}
	for rows.Next() {
		a := Asset{}
		err := rows.StructScan(&a)
		if err != nil {
			return nil, errors.Trace(err)
		}
		assets = append(assets, a)
	}

	return assets, nil
}

// SymbolPrefix returns the dotted prefix of the asset symbol, or an empty
// string if the symbol carries no separator.
func SymbolPrefix(
	symbol string,
) string {
	if idx := strings.Index(symbol, "."); idx >= 0 {
		return symbol[:idx]
	}
	return ""
}

// HasPermission returns whether the permission bit was granted at creation.
func (a *Asset) HasPermission(perm int64) bool {
	return a.Permissions&perm != 0
}

// FlagActive returns whether the flag bit is currently active.
func (a *Asset) FlagActive(flag int64) bool {
	return a.Flags&flag != 0
}

// ProducerFed returns whether the asset feeds are published by block
// producers.
func (a *Asset) ProducerFed() bool {
	return a.FlagActive(engine.PermProducerFed)
}

// ForceSettleEnabled returns whether holders may force settle the asset.
func (a *Asset) ForceSettleEnabled() bool {
	return !a.FlagActive(engine.PermDisableForceSettle)
}

// NewAssetResource generates a new resource.
func NewAssetResource(
	ctx context.Context,
	asset *Asset,
	supply *Supply,
) engine.AssetResource {
	totalSupply := new(big.Int)
	if supply != nil {
		totalSupply = supply.Total()
	}
	return engine.AssetResource{
		ID:      asset.Token,
		Created: asset.Created.UnixNano() / engine.TimeResolutionNs,
		Updated: asset.Updated.UnixNano() / engine.TimeResolutionNs,

		Symbol:            asset.Symbol,
		Issuer:            asset.Issuer,
		Type:              asset.Type,
		MaxSupply:         asset.MaxSupply.Int(),
		Permissions:       asset.Permissions,
		Flags:             asset.Flags,
		WhitelistAccounts: asset.WhitelistAccounts,
		BlacklistAccounts: asset.BlacklistAccounts,

		TotalSupply: totalSupply,
	}
}
