package endpoint

import (
	"context"
	"math/big"
	"net/http"
	"time"

	"goji.io/pat"

	"github.com/teal/ledger/engine"
	"github.com/teal/ledger/engine/market"
	"github.com/teal/ledger/engine/model"
	"github.com/teal/ledger/lib/clock"
	"github.com/teal/ledger/lib/db"
	"github.com/teal/ledger/lib/errors"
	"github.com/teal/ledger/lib/format"
	"github.com/teal/ledger/lib/ptr"
	"github.com/teal/ledger/lib/svc"
)

const (
	// EndPtUpdateAsset updates an existing asset.
	EndPtUpdateAsset EndPtName = "UpdateAsset"
)

func init() {
	registrar[EndPtUpdateAsset] = NewUpdateAsset
}

// UpdateAsset controls the mutation of existing assets. Omitted parameters
// leave the corresponding option untouched.
type UpdateAsset struct {
	Account   string
	Signatory string
	Symbol    string

	MaxSupply   *big.Int
	Permissions *int64
	Flags       *int64

	WhitelistAccounts *model.NameSet
	BlacklistAccounts *model.NameSet

	StakeInterval   *int64
	UnstakeInterval *int64

	// Stablecoin options.
	BackingAsset                 *string
	FeedLifetime                 *int64
	MinimumFeeds                 *int64
	SettlementDelay              *int64
	MaintenanceCollateralization *int64
}

// NewUpdateAsset constructs and initialiezes the endpoint.
func NewUpdateAsset(
	r *http.Request,
) (Endpoint, error) {
	return &UpdateAsset{}, nil
}

// Validate validates the input parameters.
func (e *UpdateAsset) Validate(
	r *http.Request,
) error {
	ctx := r.Context()

	account, err := ValidateAccountName(ctx, r.PostFormValue("account"))
	if err != nil {
		return errors.Trace(err)
	}
	e.Account = *account
	e.Signatory = r.PostFormValue("signatory")

	symbol, err := ValidateSymbol(ctx, pat.Param(r, "symbol"))
	if err != nil {
		return errors.Trace(err)
	}
	e.Symbol = *symbol

	if v := r.PostFormValue("max_supply"); v != "" {
		maxSupply, err := ValidateAmount(ctx, v)
		if err != nil {
			return errors.Trace(err)
		}
		e.MaxSupply = maxSupply
	}
	if v := r.PostFormValue("permissions"); v != "" {
		permissions, err := validateBits(ctx, "permissions", v)
		if err != nil {
			return errors.Trace(err)
		}
		e.Permissions = &permissions
	}
	if v := r.PostFormValue("flags"); v != "" {
		flags, err := validateBits(ctx, "flags", v)
		if err != nil {
			return errors.Trace(err)
		}
		e.Flags = &flags
	}

	if v, ok := r.PostForm["whitelist_accounts"]; ok && len(v) > 0 {
		set, err := validateNameList(ctx, v[0])
		if err != nil {
			return errors.Trace(err)
		}
		e.WhitelistAccounts = &set
	}
	if v, ok := r.PostForm["blacklist_accounts"]; ok && len(v) > 0 {
		set, err := validateNameList(ctx, v[0])
		if err != nil {
			return errors.Trace(err)
		}
		e.BlacklistAccounts = &set
	}
	if (e.WhitelistAccounts != nil &&
		len(*e.WhitelistAccounts) > engine.MaxAuthorities) ||
		(e.BlacklistAccounts != nil &&
			len(*e.BlacklistAccounts) > engine.MaxAuthorities) {
		return errors.Trace(errors.NewUserErrorf(nil,
			400, "threshold_violation",
			"The whitelist and blacklist you provided exceed the maximal "+
				"number of authorities: %d.",
			engine.MaxAuthorities,
		))
	}

	if v := r.PostFormValue("stake_interval"); v != "" {
		interval, err := validateInterval(ctx, "stake_interval", v)
		if err != nil {
			return errors.Trace(err)
		}
		e.StakeInterval = &interval
	}
	if v := r.PostFormValue("unstake_interval"); v != "" {
		interval, err := validateInterval(ctx, "unstake_interval", v)
		if err != nil {
			return errors.Trace(err)
		}
		e.UnstakeInterval = &interval
	}

	if v := r.PostFormValue("backing_asset"); v != "" {
		backing, err := ValidateSymbol(ctx, v)
		if err != nil {
			return errors.Trace(err)
		}
		e.BackingAsset = backing
	}
	if v := r.PostFormValue("feed_lifetime"); v != "" {
		lifetime, err := validateInterval(ctx, "feed_lifetime", v)
		if err != nil {
			return errors.Trace(err)
		}
		if lifetime < int64(engine.MinFeedLifetime/time.Second) {
			return errors.Trace(errors.NewUserErrorf(nil,
				400, "threshold_violation",
				"The feed lifetime you provided is below the required "+
					"minimum: %ds.",
				int64(engine.MinFeedLifetime/time.Second),
			))
		}
		e.FeedLifetime = &lifetime
	}
	if v := r.PostFormValue("minimum_feeds"); v != "" {
		minimum, err := validateInterval(ctx, "minimum_feeds", v)
		if err != nil {
			return errors.Trace(err)
		}
		if minimum < 1 {
			return errors.Trace(errors.NewUserErrorf(nil,
				400, "threshold_violation",
				"Stablecoins require at least one feed.",
			))
		}
		e.MinimumFeeds = &minimum
	}
	if v := r.PostFormValue("settlement_delay"); v != "" {
		delay, err := validateInterval(ctx, "settlement_delay", v)
		if err != nil {
			return errors.Trace(err)
		}
		if delay < int64(engine.MinSettlementDelay/time.Second) {
			return errors.Trace(errors.NewUserErrorf(nil,
				400, "threshold_violation",
				"The settlement delay you provided is below the required "+
					"minimum: %ds.",
				int64(engine.MinSettlementDelay/time.Second),
			))
		}
		e.SettlementDelay = &delay
	}
	if v := r.PostFormValue("maintenance_collateralization"); v != "" {
		mcr, err := validateInterval(ctx,
			"maintenance_collateralization", v)
		if err != nil {
			return errors.Trace(err)
		}
		if mcr <= engine.Percent100 {
			return errors.Trace(errors.NewUserErrorf(nil,
				400, "threshold_violation",
				"The maintenance collateralization must exceed 100%% "+
					"(%d basis points).",
				engine.Percent100,
			))
		}
		e.MaintenanceCollateralization = &mcr
	}

	return nil
}

// Execute executes the endpoint.
func (e *UpdateAsset) Execute(
	ctx context.Context,
) (*int, *svc.Resp, error) {
	ctx = db.Begin(ctx)
	defer db.LoggedRollback(ctx)

	now := clock.Get(ctx)

	if _, err := CheckSignatory(ctx, e.Account, e.Signatory); err != nil {
		return nil, nil, errors.Trace(err)
	}

	asset, err := model.LoadAssetBySymbol(ctx, e.Symbol)
	if err != nil {
		return nil, nil, errors.Trace(err)
	} else if asset == nil {
		return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
			404, "not_found",
			"The asset you are trying to update does not exist: %s.",
			e.Symbol,
		))
	}
	if asset.Issuer != e.Account {
		return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
			401, "not_authorized",
			"Only the issuer of %s may update it.",
			e.Symbol,
		))
	}
	if asset.Type.Immutable() {
		return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
			400, "invalid_state_transition",
			"Assets of type %s cannot be updated.",
			asset.Type,
		))
	}
	if now.Sub(asset.Updated) < engine.UpdateCooldown {
		return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
			429, "rate_limited",
			"The asset %s was updated less than %s ago.",
			e.Symbol, engine.UpdateCooldown.String(),
		))
	}

	supply, err := model.LoadSupplyByAsset(ctx, e.Symbol)
	if err != nil {
		return nil, nil, errors.Trace(err)
	}

	if e.Permissions != nil {
		// Once supply exists permissions can only be relinquished.
		if supply.Total().Sign() != 0 &&
			*e.Permissions&^asset.Permissions != 0 {
			return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
				400, "invalid_state_transition",
				"Permissions can only be relinquished once the asset has "+
					"outstanding supply: permissions=%d granted=%d.",
				*e.Permissions, asset.Permissions,
			))
		}
		asset.Permissions = *e.Permissions
	}

	flags := asset.Flags
	if e.Flags != nil {
		flags = *e.Flags
	}
	if flags&^asset.Permissions != 0 {
		return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
			400, "invalid_state_transition",
			"The flags you provided are not covered by the asset "+
				"permissions: flags=%d permissions=%d.",
			flags, asset.Permissions,
		))
	}

	disablingForceSettle := flags&engine.PermDisableForceSettle != 0 &&
		asset.Flags&engine.PermDisableForceSettle == 0
	asset.Flags = flags

	if e.MaxSupply != nil {
		if e.MaxSupply.Cmp(supply.Total()) < 0 {
			return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
				400, "resource_exhausted",
				"The max supply you provided is below the current total "+
					"supply: %s < %s.",
				e.MaxSupply.String(), supply.Total().String(),
			))
		}
		asset.MaxSupply = model.AmountFromInt(e.MaxSupply)
	}

	if e.WhitelistAccounts != nil {
		asset.WhitelistAccounts = *e.WhitelistAccounts
	}
	if e.BlacklistAccounts != nil {
		asset.BlacklistAccounts = *e.BlacklistAccounts
	}
	if e.StakeInterval != nil {
		asset.StakeInterval = *e.StakeInterval
	}
	if e.UnstakeInterval != nil {
		asset.UnstakeInterval = *e.UnstakeInterval
	}

	if disablingForceSettle {
		if err := market.CancelAllSettlements(ctx, e.Symbol, now); err != nil {
			return nil, nil, errors.Trace(err)
		}
	}

	resp := svc.Resp{}

	if asset.Type == engine.AstTpStablecoin {
		stablecoin, err := model.LoadStablecoinByAsset(ctx, e.Symbol)
		if err != nil {
			return nil, nil, errors.Trace(err)
		} else if stablecoin == nil {
			return nil, nil, errors.Newf(
				"Missing stablecoin data for asset: %s", e.Symbol)
		}
		if stablecoin.HasSettlement() &&
			(e.BackingAsset != nil || e.FeedLifetime != nil ||
				e.MinimumFeeds != nil) {
			return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
				400, "invalid_state_transition",
				"The market of %s has globally settled: backing and feed "+
					"options are frozen until revival.",
				e.Symbol,
			))
		}

		if e.BackingAsset != nil &&
			*e.BackingAsset != stablecoin.BackingAsset {
			if supply.Total().Sign() != 0 {
				return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
					400, "invalid_state_transition",
					"The backing asset of %s can only change while its "+
						"supply is zero.",
					e.Symbol,
				))
			}
			if err := checkBackingAsset(ctx, *e.BackingAsset); err != nil {
				return nil, nil, errors.Trace(err)
			}
			stablecoin.BackingAsset = *e.BackingAsset

			feeds, err := model.LoadFeedsByAsset(ctx, e.Symbol)
			if err != nil {
				return nil, nil, errors.Trace(err)
			}
			for i := range feeds {
				if asset.ProducerFed() {
					// Producer feeds are wiped on a backing change.
					if err := feeds[i].Delete(ctx); err != nil {
						return nil, nil, errors.Trace(err)
					}
				} else {
					// Publisher slots are retained but zeroed.
					feeds[i].Zero()
					feeds[i].Updated = now
					if err := feeds[i].Save(ctx); err != nil {
						return nil, nil, errors.Trace(err)
					}
				}
			}
		}

		if e.FeedLifetime != nil {
			stablecoin.FeedLifetime = *e.FeedLifetime
		}
		if e.MinimumFeeds != nil {
			stablecoin.MinimumFeeds = *e.MinimumFeeds
		}
		if e.SettlementDelay != nil {
			stablecoin.SettlementDelay = *e.SettlementDelay
		}
		if e.MaintenanceCollateralization != nil {
			stablecoin.MaintenanceCollateralization =
				*e.MaintenanceCollateralization
		}

		changed, err := stablecoin.UpdateMedianFeeds(ctx, now)
		if err != nil {
			return nil, nil, errors.Trace(err)
		}
		stablecoin.Updated = now
		if err := stablecoin.Save(ctx); err != nil {
			return nil, nil, errors.Trace(err)
		}

		if changed {
			err := market.CheckCallOrders(ctx, asset, stablecoin, true, now)
			if err != nil {
				return nil, nil, errors.Trace(err)
			}
		}

		resp["stablecoin"] = format.JSONPtr(
			model.NewStablecoinResource(ctx, stablecoin))
	}

	asset.Updated = now
	if err := asset.Save(ctx); err != nil {
		return nil, nil, errors.Trace(err)
	}

	db.Commit(ctx)

	resp["asset"] = format.JSONPtr(model.NewAssetResource(ctx, asset, supply))

	return ptr.Int(http.StatusOK), &resp, nil
}
