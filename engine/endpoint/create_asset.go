package endpoint

import (
	"context"
	"math/big"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/teal/ledger/engine"
	"github.com/teal/ledger/engine/model"
	"github.com/teal/ledger/lib/clock"
	"github.com/teal/ledger/lib/db"
	"github.com/teal/ledger/lib/errors"
	"github.com/teal/ledger/lib/format"
	"github.com/teal/ledger/lib/ptr"
	"github.com/teal/ledger/lib/svc"
)

const (
	// EndPtCreateAsset creates a new asset.
	EndPtCreateAsset EndPtName = "CreateAsset"
)

func init() {
	registrar[EndPtCreateAsset] = NewCreateAsset
}

// CreateAsset controls the creation of new assets.
type CreateAsset struct {
	Account   string
	Signatory string

	Symbol    string
	Type      engine.AstType
	MaxSupply *big.Int

	Permissions int64
	Flags       int64

	WhitelistAccounts model.NameSet
	BlacklistAccounts model.NameSet

	StakeInterval   int64
	UnstakeInterval int64

	// Stablecoin options.
	BackingAsset                 string
	FeedLifetime                 int64
	MinimumFeeds                 int64
	SettlementDelay              int64
	MaintenanceCollateralization int64

	// Equity options.
	DividendAsset       string
	RevenueSharePercent int64
	DividendInterval    int64

	// Bond options.
	ValueAsset               string
	FaceBaseAmount           *big.Int
	FaceQuoteAmount          *big.Int
	CollateralizationPercent int64
	MaturityDate             time.Time

	// Credit options.
	BuybackAsset        string
	BuybackSharePercent int64

	// Stimulus options.
	RedemptionAsset    string
	DistributionList   model.NameSet
	DistributionAmount *big.Int

	// Seeded liquidity for credit enabled types, in the core asset and the
	// reference stablecoin.
	LiquidityCore *big.Int
	LiquidityUSD  *big.Int
}

// NewCreateAsset constructs and initialiezes the endpoint.
func NewCreateAsset(
	r *http.Request,
) (Endpoint, error) {
	return &CreateAsset{}, nil
}

// Validate validates the input parameters.
func (e *CreateAsset) Validate(
	r *http.Request,
) error {
	ctx := r.Context()

	account, err := ValidateAccountName(ctx, r.PostFormValue("account"))
	if err != nil {
		return errors.Trace(err)
	}
	e.Account = *account
	e.Signatory = r.PostFormValue("signatory")

	symbol, err := ValidateSymbol(ctx, r.PostFormValue("symbol"))
	if err != nil {
		return errors.Trace(err)
	}
	e.Symbol = *symbol

	e.Type = engine.AstType(r.PostFormValue("type"))
	if !e.Type.IsValid() {
		return errors.Trace(errors.NewUserErrorf(nil,
			400, "invalid_state_transition",
			"The asset type you provided is invalid: %s.",
			r.PostFormValue("type"),
		))
	}
	if e.Type.EngineOnly() {
		return errors.Trace(errors.NewUserErrorf(nil,
			400, "invalid_state_transition",
			"Assets of type %s cannot be created directly.",
			e.Type,
		))
	}

	maxSupply, err := ValidateAmount(ctx, r.PostFormValue("max_supply"))
	if err != nil {
		return errors.Trace(err)
	}
	e.MaxSupply = maxSupply

	if e.Type == engine.AstTpUnique &&
		e.MaxSupply.Cmp(big.NewInt(1)) != 0 {
		return errors.Trace(errors.NewUserErrorf(nil,
			400, "invalid_state_transition",
			"Unique assets must have a max supply of exactly one unit.",
		))
	}

	permissions, err := validateBits(ctx,
		"permissions", r.PostFormValue("permissions"))
	if err != nil {
		return errors.Trace(err)
	}
	e.Permissions = permissions

	flags, err := validateBits(ctx, "flags", r.PostFormValue("flags"))
	if err != nil {
		return errors.Trace(err)
	}
	e.Flags = flags

	if e.Flags&^e.Permissions != 0 {
		return errors.Trace(errors.NewUserErrorf(nil,
			400, "invalid_state_transition",
			"The flags you provided are not covered by the asset "+
				"permissions: flags=%d permissions=%d.",
			e.Flags, e.Permissions,
		))
	}

	e.WhitelistAccounts, err = validateNameList(ctx,
		r.PostFormValue("whitelist_accounts"))
	if err != nil {
		return errors.Trace(err)
	}
	e.BlacklistAccounts, err = validateNameList(ctx,
		r.PostFormValue("blacklist_accounts"))
	if err != nil {
		return errors.Trace(err)
	}
	if len(e.WhitelistAccounts) > engine.MaxAuthorities ||
		len(e.BlacklistAccounts) > engine.MaxAuthorities {
		return errors.Trace(errors.NewUserErrorf(nil,
			400, "threshold_violation",
			"The whitelist and blacklist you provided exceed the maximal "+
				"number of authorities: %d.",
			engine.MaxAuthorities,
		))
	}

	e.StakeInterval, err = validateInterval(ctx,
		"stake_interval", r.PostFormValue("stake_interval"))
	if err != nil {
		return errors.Trace(err)
	}
	e.UnstakeInterval, err = validateInterval(ctx,
		"unstake_interval", r.PostFormValue("unstake_interval"))
	if err != nil {
		return errors.Trace(err)
	}

	switch e.Type {
	case engine.AstTpCurrency:
		liquidityCore, err := ValidateAmount(ctx,
			r.PostFormValue("liquidity_core"))
		if err != nil {
			return errors.Trace(err)
		}
		liquidityUSD, err := ValidateAmount(ctx,
			r.PostFormValue("liquidity_usd"))
		if err != nil {
			return errors.Trace(err)
		}
		min := big.NewInt(engine.CurrencyMinLiquidity)
		if liquidityCore.Cmp(min) < 0 || liquidityUSD.Cmp(min) < 0 {
			return errors.Trace(errors.NewUserErrorf(nil,
				400, "threshold_violation",
				"Currency assets require at least %d units of seeded "+
					"liquidity in %s and %s.",
				engine.CurrencyMinLiquidity,
				engine.SymbolCore, engine.SymbolUSD,
			))
		}
		e.LiquidityCore = liquidityCore
		e.LiquidityUSD = liquidityUSD

	case engine.AstTpStablecoin:
		backing, err := ValidateSymbol(ctx, r.PostFormValue("backing_asset"))
		if err != nil {
			return errors.Trace(err)
		}
		e.BackingAsset = *backing

		e.FeedLifetime, err = validateInterval(ctx,
			"feed_lifetime", r.PostFormValue("feed_lifetime"))
		if err != nil {
			return errors.Trace(err)
		}
		e.SettlementDelay, err = validateInterval(ctx,
			"settlement_delay", r.PostFormValue("settlement_delay"))
		if err != nil {
			return errors.Trace(err)
		}
		if e.FeedLifetime < int64(engine.MinFeedLifetime/time.Second) ||
			e.SettlementDelay < int64(engine.MinSettlementDelay/time.Second) {
			return errors.Trace(errors.NewUserErrorf(nil,
				400, "threshold_violation",
				"The feed lifetime and settlement delay you provided are "+
					"below the required minimums: %ds and %ds.",
				int64(engine.MinFeedLifetime/time.Second),
				int64(engine.MinSettlementDelay/time.Second),
			))
		}

		e.MinimumFeeds, err = validateInterval(ctx,
			"minimum_feeds", r.PostFormValue("minimum_feeds"))
		if err != nil {
			return errors.Trace(err)
		}
		if e.MinimumFeeds < 1 {
			return errors.Trace(errors.NewUserErrorf(nil,
				400, "threshold_violation",
				"Stablecoins require at least one feed.",
			))
		}

		e.MaintenanceCollateralization, err = validateInterval(ctx,
			"maintenance_collateralization",
			r.PostFormValue("maintenance_collateralization"))
		if err != nil {
			return errors.Trace(err)
		}
		if e.MaintenanceCollateralization <= engine.Percent100 {
			return errors.Trace(errors.NewUserErrorf(nil,
				400, "threshold_violation",
				"The maintenance collateralization must exceed 100%% "+
					"(%d basis points).",
				engine.Percent100,
			))
		}

	case engine.AstTpEquity:
		dividend, err := ValidateSymbol(ctx,
			r.PostFormValue("dividend_asset"))
		if err != nil {
			return errors.Trace(err)
		}
		e.DividendAsset = *dividend
		e.RevenueSharePercent, err = validateInterval(ctx,
			"revenue_share_percent", r.PostFormValue("revenue_share_percent"))
		if err != nil {
			return errors.Trace(err)
		}
		e.DividendInterval, err = validateInterval(ctx,
			"dividend_interval", r.PostFormValue("dividend_interval"))
		if err != nil {
			return errors.Trace(err)
		}

	case engine.AstTpBond:
		value, err := ValidateSymbol(ctx, r.PostFormValue("value_asset"))
		if err != nil {
			return errors.Trace(err)
		}
		e.ValueAsset = *value
		e.FaceBaseAmount, e.FaceQuoteAmount, err = ValidatePrice(ctx,
			r.PostFormValue("face_price"))
		if err != nil {
			return errors.Trace(err)
		}
		e.CollateralizationPercent, err = validateInterval(ctx,
			"collateralization_percent",
			r.PostFormValue("collateralization_percent"))
		if err != nil {
			return errors.Trace(err)
		}
		maturity, err := validateInterval(ctx,
			"maturity_date", r.PostFormValue("maturity_date"))
		if err != nil {
			return errors.Trace(err)
		}
		e.MaturityDate = time.Unix(0,
			maturity*engine.TimeResolutionNs).UTC()

	case engine.AstTpCredit:
		buyback, err := ValidateSymbol(ctx, r.PostFormValue("buyback_asset"))
		if err != nil {
			return errors.Trace(err)
		}
		e.BuybackAsset = *buyback
		e.BuybackSharePercent, err = validateInterval(ctx,
			"buyback_share_percent", r.PostFormValue("buyback_share_percent"))
		if err != nil {
			return errors.Trace(err)
		}

	case engine.AstTpStimulus:
		redemption, err := ValidateSymbol(ctx,
			r.PostFormValue("redemption_asset"))
		if err != nil {
			return errors.Trace(err)
		}
		e.RedemptionAsset = *redemption
		e.DistributionList, err = validateNameList(ctx,
			r.PostFormValue("distribution_list"))
		if err != nil {
			return errors.Trace(err)
		}
		e.DistributionAmount, err = ValidateAmount(ctx,
			r.PostFormValue("distribution_amount"))
		if err != nil {
			return errors.Trace(err)
		}
	}

	return nil
}

// Execute executes the endpoint.
func (e *CreateAsset) Execute(
	ctx context.Context,
) (*int, *svc.Resp, error) {
	ctx = db.Begin(ctx)
	defer db.LoggedRollback(ctx)

	now := clock.Get(ctx)

	account, err := CheckSignatory(ctx, e.Account, e.Signatory)
	if err != nil {
		return nil, nil, errors.Trace(err)
	}

	last, err := model.LoadLastAssetByIssuer(ctx, e.Account)
	if err != nil {
		return nil, nil, errors.Trace(err)
	} else if last != nil && now.Sub(last.Created) < engine.CreateCooldown {
		return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
			429, "rate_limited",
			"You created an asset less than %s ago: %s.",
			engine.CreateCooldown.String(), last.Symbol,
		))
	}

	if prefix := model.SymbolPrefix(e.Symbol); prefix != "" {
		prefixAsset, err := model.LoadAssetBySymbol(ctx, prefix)
		if err != nil {
			return nil, nil, errors.Trace(err)
		} else if prefixAsset == nil {
			return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
				404, "not_found",
				"The symbol prefix you used does not name a registered "+
					"asset: %s.",
				prefix,
			))
		} else if prefixAsset.Issuer != e.Account {
			return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
				401, "not_authorized",
				"The symbol prefix %s belongs to another issuer.",
				prefix,
			))
		}
	}

	if e.Type.RequiresBusiness() && !account.Business {
		return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
			401, "not_authorized",
			"Assets of type %s can only be issued by business accounts.",
			e.Type,
		))
	}
	if e.Type == engine.AstTpCurrency && e.Account != engine.NullAccount {
		return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
			401, "not_authorized",
			"Currency assets can only be created by the %s account.",
			engine.NullAccount,
		))
	}

	switch e.Type {
	case engine.AstTpStablecoin:
		if err := checkBackingAsset(ctx, e.BackingAsset); err != nil {
			return nil, nil, errors.Trace(err)
		}
	case engine.AstTpBond:
		valueAsset, err := model.LoadAssetBySymbol(ctx, e.ValueAsset)
		if err != nil {
			return nil, nil, errors.Trace(err)
		} else if valueAsset == nil {
			return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
				404, "not_found",
				"The bond value asset does not exist: %s.",
				e.ValueAsset,
			))
		} else if valueAsset.Type != engine.AstTpCurrency &&
			valueAsset.Type != engine.AstTpStablecoin {
			return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
				400, "invalid_state_transition",
				"The bond value asset must be a currency or a stablecoin: "+
					"%s is %s.",
				e.ValueAsset, valueAsset.Type,
			))
		}
		if e.MaturityDate.Before(now.Add(engine.BondMinMaturity)) {
			return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
				400, "threshold_violation",
				"The bond maturity date must be at least %s out.",
				engine.BondMinMaturity.String(),
			))
		}
	case engine.AstTpEquity, engine.AstTpCredit:
		share := e.RevenueSharePercent
		if e.Type == engine.AstTpCredit {
			share = e.BuybackSharePercent
		}
		if err := checkRevenueShare(ctx, e.Account, share); err != nil {
			return nil, nil, errors.Trace(err)
		}
	}

	asset, err := model.CreateAsset(ctx,
		e.Symbol,
		e.Account,
		e.Type,
		model.AmountFromInt(e.MaxSupply),
		e.Permissions,
		e.Flags,
		e.WhitelistAccounts,
		e.BlacklistAccounts,
		model.NameSet{},
		model.NameSet{},
		e.StakeInterval,
		e.UnstakeInterval,
		now,
	)
	if err != nil {
		switch err := errors.Cause(err).(type) {
		case model.ErrUniqueConstraintViolation:
			return nil, nil, errors.Trace(errors.NewUserErrorf(err,
				400, "invalid_state_transition",
				"An asset with the same symbol already exists: %s.",
				e.Symbol,
			))
		default:
			return nil, nil, errors.Trace(err) // 500
		}
	}

	supply, err := model.CreateSupply(ctx, e.Symbol, now)
	if err != nil {
		return nil, nil, errors.Trace(err)
	}

	resp := svc.Resp{}

	switch e.Type {
	case engine.AstTpStablecoin:
		stablecoin, err := model.CreateStablecoin(ctx,
			e.Symbol,
			e.BackingAsset,
			e.FeedLifetime,
			e.MinimumFeeds,
			e.SettlementDelay,
			e.MaintenanceCollateralization,
			now,
		)
		if err != nil {
			return nil, nil, errors.Trace(err)
		}
		resp["stablecoin"] = format.JSONPtr(
			model.NewStablecoinResource(ctx, stablecoin))
	case engine.AstTpEquity:
		_, err := model.CreateEquity(ctx,
			e.Symbol,
			e.Account,
			e.DividendAsset,
			e.RevenueSharePercent,
			e.DividendInterval,
			now,
		)
		if err != nil {
			return nil, nil, errors.Trace(err)
		}
	case engine.AstTpBond:
		_, err := model.CreateBond(ctx,
			e.Symbol,
			e.Account,
			e.ValueAsset,
			model.AmountFromInt(e.FaceBaseAmount),
			model.AmountFromInt(e.FaceQuoteAmount),
			e.CollateralizationPercent,
			e.MaturityDate,
			now,
		)
		if err != nil {
			return nil, nil, errors.Trace(err)
		}
	case engine.AstTpCredit:
		_, err := model.CreateCredit(ctx,
			e.Symbol,
			e.Account,
			e.BuybackAsset,
			e.BuybackSharePercent,
			now,
		)
		if err != nil {
			return nil, nil, errors.Trace(err)
		}
	case engine.AstTpStimulus:
		_, err := model.CreateStimulus(ctx,
			e.Symbol,
			e.Account,
			e.RedemptionAsset,
			e.DistributionList,
			model.AmountFromInt(e.DistributionAmount),
			now,
		)
		if err != nil {
			return nil, nil, errors.Trace(err)
		}
	case engine.AstTpUnique:
		_, err := model.CreateUnique(ctx,
			e.Symbol,
			e.Account,
			model.NameSet{},
			now,
		)
		if err != nil {
			return nil, nil, errors.Trace(err)
		}
	}

	if e.Type.CreditEnabled() {
		if err := createPools(ctx,
			e.Account, e.Symbol, supply,
			e.LiquidityCore, e.LiquidityUSD, now); err != nil {
			return nil, nil, errors.Trace(err)
		}
	}

	db.Commit(ctx)

	resp["asset"] = format.JSONPtr(model.NewAssetResource(ctx, asset, supply))

	return ptr.Int(http.StatusCreated), &resp, nil
}

// checkBackingAsset verifies that the backing asset of a stablecoin exists
// and ultimately resolves to the core asset: a stablecoin backed by another
// stablecoin is only valid if that one is not itself stablecoin backed.
func checkBackingAsset(
	ctx context.Context,
	backingAsset string,
) error {
	backing, err := model.LoadAssetBySymbol(ctx, backingAsset)
	if err != nil {
		return errors.Trace(err)
	} else if backing == nil {
		return errors.Trace(errors.NewUserErrorf(nil,
			404, "not_found",
			"The backing asset does not exist: %s.",
			backingAsset,
		))
	}

	if backing.Type == engine.AstTpStablecoin {
		data, err := model.LoadStablecoinByAsset(ctx, backingAsset)
		if err != nil {
			return errors.Trace(err)
		} else if data == nil {
			return errors.Newf(
				"Missing stablecoin data for asset: %s", backingAsset)
		}
		transitive, err := model.LoadAssetBySymbol(ctx, data.BackingAsset)
		if err != nil {
			return errors.Trace(err)
		} else if transitive != nil &&
			transitive.Type == engine.AstTpStablecoin {
			return errors.Trace(errors.NewUserErrorf(nil,
				400, "consistency_violation",
				"The backing asset %s is itself backed by a stablecoin. "+
					"Backing must resolve to the core asset within one "+
					"level.",
				backingAsset,
			))
		}
	}

	return nil
}

// checkRevenueShare verifies that the aggregate revenue share of a business
// across its equity and credit assets, including the new share, stays below
// the maximal revenue share.
func checkRevenueShare(
	ctx context.Context,
	business string,
	newShare int64,
) error {
	if newShare > engine.MaxRevenueShare {
		return errors.Trace(errors.NewUserErrorf(nil,
			400, "threshold_violation",
			"The revenue share you provided exceeds the maximum of %d "+
				"basis points.",
			engine.MaxRevenueShare,
		))
	}

	total := newShare

	equities, err := model.LoadEquitiesByBusiness(ctx, business)
	if err != nil {
		return errors.Trace(err)
	}
	for _, eq := range equities {
		total += eq.RevenueSharePercent
	}
	credits, err := model.LoadCreditsByBusiness(ctx, business)
	if err != nil {
		return errors.Trace(err)
	}
	for _, cr := range credits {
		total += cr.BuybackSharePercent
	}

	if total > engine.MaxRevenueShare {
		return errors.Trace(errors.NewUserErrorf(nil,
			400, "threshold_violation",
			"The aggregate revenue share of %s would reach %d basis "+
				"points, exceeding the maximum of %d.",
			business, total, engine.MaxRevenueShare,
		))
	}

	return nil
}

// createPools auto-creates the liquidity and credit pools of a credit
// enabled asset, seeding the core and reference pools from the issuer's
// deposits at a one to one initial price. Seeded pool balances of the new
// asset are accounted as pending supply.
func createPools(
	ctx context.Context,
	issuer string,
	symbol string,
	supply *model.Supply,
	liquidityCore *big.Int,
	liquidityUSD *big.Int,
	now time.Time,
) error {
	minted := new(big.Int)

	seed := func(counter string, liquidity *big.Int) error {
		balanceA := model.ZeroAmount()
		balanceB := model.ZeroAmount()
		if liquidity != nil && liquidity.Sign() > 0 {
			balance, err := model.LoadBalanceByAccountAndAsset(ctx,
				issuer, counter)
			if err != nil {
				return errors.Trace(err)
			} else if balance == nil {
				return errors.Trace(errors.NewUserErrorf(nil,
					400, "resource_exhausted",
					"You have no %s balance to seed the %s pool.",
					counter, symbol,
				))
			}
			if err := balance.Adjust(new(big.Int).Neg(liquidity)); err != nil {
				return errors.Trace(errors.NewUserErrorf(err,
					400, "resource_exhausted",
					"Your %s balance cannot cover the seeded liquidity.",
					counter,
				))
			}
			balance.Updated = now
			if err := balance.Save(ctx); err != nil {
				return errors.Trace(err)
			}
			balanceA = model.AmountFromInt(liquidity)
			balanceB = model.AmountFromInt(liquidity)
			minted.Add(minted, liquidity)
		}
		_, err := model.CreateLiquidityPool(ctx,
			symbol, counter, balanceA, balanceB, now)
		if err != nil {
			return errors.Trace(err)
		}
		return nil
	}

	if err := seed(engine.SymbolCore, liquidityCore); err != nil {
		return errors.Trace(err)
	}
	if err := seed(engine.SymbolUSD, liquidityUSD); err != nil {
		return errors.Trace(err)
	}

	_, err := model.CreateCreditPool(ctx,
		symbol, symbol+".CREDIT",
		model.ZeroAmount(), model.ZeroAmount(), now)
	if err != nil {
		return errors.Trace(err)
	}

	if minted.Sign() > 0 {
		supply.AdjustPending(minted)
		supply.Updated = now
		if err := supply.Save(ctx); err != nil {
			return errors.Trace(err)
		}
	}

	return nil
}

// validateBits parses a permission or flag bitfield.
func validateBits(
	ctx context.Context,
	field string,
	value string,
) (int64, error) {
	if value == "" {
		return 0, nil
	}
	bits, err := strconv.ParseInt(value, 10, 64)
	if err != nil || bits < 0 || bits&^engine.PermAll != 0 {
		return 0, errors.Trace(errors.NewUserErrorf(err,
			400, "invalid_state_transition",
			"The %s you provided are invalid: %s.",
			field, value,
		))
	}
	return bits, nil
}

// validateInterval parses a non negative integer field.
func validateInterval(
	ctx context.Context,
	field string,
	value string,
) (int64, error) {
	if value == "" {
		return 0, nil
	}
	interval, err := strconv.ParseInt(value, 10, 64)
	if err != nil || interval < 0 {
		return 0, errors.Trace(errors.NewUserErrorf(err,
			400, "invalid_state_transition",
			"The %s you provided is invalid: %s.",
			field, value,
		))
	}
	return interval, nil
}

// validateNameList parses a comma separated list of account names.
func validateNameList(
	ctx context.Context,
	value string,
) (model.NameSet, error) {
	set := model.NameSet{}
	if value == "" {
		return set, nil
	}
	for _, name := range strings.Split(value, ",") {
		n, err := ValidateAccountName(ctx, name)
		if err != nil {
			return nil, errors.Trace(err)
		}
		set = append(set, *n)
	}
	return set, nil
}
