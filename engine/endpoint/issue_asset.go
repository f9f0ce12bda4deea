package endpoint

import (
	"context"
	"math/big"
	"net/http"
	"time"

	"goji.io/pat"

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
	// EndPtIssueAsset issues units of an asset to a recipient.
	EndPtIssueAsset EndPtName = "IssueAsset"
)

func init() {
	registrar[EndPtIssueAsset] = NewIssueAsset
}

// IssueAsset controls the issuance of asset units.
type IssueAsset struct {
	Account   string
	Signatory string
	Symbol    string
	Amount    *big.Int
	Recipient string
}

// NewIssueAsset constructs and initialiezes the endpoint.
func NewIssueAsset(
	r *http.Request,
) (Endpoint, error) {
	return &IssueAsset{}, nil
}

// Validate validates the input parameters.
func (e *IssueAsset) Validate(
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

	amount, err := ValidateAmount(ctx, r.PostFormValue("amount"))
	if err != nil {
		return errors.Trace(err)
	}
	if amount.Sign() == 0 {
		return errors.Trace(errors.NewUserErrorf(nil,
			400, "invalid_state_transition",
			"The amount you provided must be positive.",
		))
	}
	e.Amount = amount

	recipient, err := ValidateAccountName(ctx, r.PostFormValue("recipient"))
	if err != nil {
		return errors.Trace(err)
	}
	e.Recipient = *recipient

	return nil
}

// Execute executes the endpoint.
func (e *IssueAsset) Execute(
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
			"The asset you are trying to issue does not exist: %s.",
			e.Symbol,
		))
	}
	if asset.Issuer != e.Account {
		return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
			401, "not_authorized",
			"Only the issuer of %s may issue it.",
			e.Symbol,
		))
	}
	if asset.Type.MarketIssued() {
		return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
			400, "invalid_state_transition",
			"Assets of type %s are market issued and cannot be issued "+
				"directly.",
			asset.Type,
		))
	}

	supply, err := model.LoadSupplyByAsset(ctx, e.Symbol)
	if err != nil {
		return nil, nil, errors.Trace(err)
	}
	newTotal := new(big.Int).Add(supply.Total(), e.Amount)
	if newTotal.Cmp(asset.MaxSupply.Int()) > 0 {
		return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
			400, "resource_exhausted",
			"Issuing %s units of %s would exceed its max supply of %s.",
			e.Amount.String(), e.Symbol, asset.MaxSupply.Int().String(),
		))
	}

	recipient, err := model.LoadAccountByName(ctx, e.Recipient)
	if err != nil {
		return nil, nil, errors.Trace(err)
	} else if recipient == nil {
		return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
			404, "not_found",
			"The recipient account does not exist: %s.",
			e.Recipient,
		))
	}
	if !recipient.IsAuthorizedToHold(asset) {
		return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
			401, "not_authorized",
			"The recipient %s is not authorized to hold %s.",
			e.Recipient, e.Symbol,
		))
	}

	switch asset.Type {
	case engine.AstTpBond:
		if err := lockBondCollateral(ctx,
			asset, e.Amount, now); err != nil {
			return nil, nil, errors.Trace(err)
		}
	case engine.AstTpUnique:
		unique, err := model.LoadUniqueByAsset(ctx, e.Symbol)
		if err != nil {
			return nil, nil, errors.Trace(err)
		} else if unique == nil {
			return nil, nil, errors.Newf(
				"Missing unique data for asset: %s", e.Symbol)
		}
		unique.ControllingOwner = e.Recipient
		unique.Updated = now
		if err := unique.Save(ctx); err != nil {
			return nil, nil, errors.Trace(err)
		}
	}

	balance, err := model.LoadOrCreateBalanceByAccountAndAsset(ctx,
		e.Recipient, e.Symbol, now)
	if err != nil {
		return nil, nil, errors.Trace(err)
	}
	if err := balance.Adjust(e.Amount); err != nil {
		return nil, nil, errors.Trace(err)
	}
	balance.Updated = now
	if err := balance.Save(ctx); err != nil {
		return nil, nil, errors.Trace(err)
	}

	supply.AdjustLiquid(e.Amount)
	supply.Updated = now
	if err := supply.Save(ctx); err != nil {
		return nil, nil, errors.Trace(err)
	}

	db.Commit(ctx)

	return ptr.Int(http.StatusOK), &svc.Resp{
		"asset": format.JSONPtr(model.NewAssetResource(ctx, asset, supply)),
	}, nil
}

// lockBondCollateral locks the proportional collateral of a bond issuance
// from the issuer into the bond's collateral pool: the issued amount valued
// at the face price times the bond collateralization, rounded up.
func lockBondCollateral(
	ctx context.Context,
	asset *model.Asset,
	amount *big.Int,
	now time.Time,
) error {
	bond, err := model.LoadBondByAsset(ctx, asset.Symbol)
	if err != nil {
		return errors.Trace(err)
	} else if bond == nil {
		return errors.Newf(
			"Missing bond data for asset: %s", asset.Symbol)
	}

	lock := new(big.Int).Mul(amount, bond.FaceQuoteAmount.Int())
	lock.Mul(lock, big.NewInt(bond.CollateralizationPercent))
	den := new(big.Int).Mul(
		bond.FaceBaseAmount.Int(), big.NewInt(engine.Percent100))
	rem := new(big.Int)
	lock.DivMod(lock, den, rem)
	if rem.Sign() != 0 {
		lock.Add(lock, big.NewInt(1))
	}

	balance, err := model.LoadBalanceByAccountAndAsset(ctx,
		asset.Issuer, bond.ValueAsset)
	if err != nil {
		return errors.Trace(err)
	} else if balance == nil {
		return errors.Trace(errors.NewUserErrorf(nil,
			400, "resource_exhausted",
			"You have no %s balance to collateralize the bond issuance.",
			bond.ValueAsset,
		))
	}
	if err := balance.Adjust(new(big.Int).Neg(lock)); err != nil {
		return errors.Trace(errors.NewUserErrorf(err,
			400, "resource_exhausted",
			"Your %s balance cannot cover the bond collateral of %s.",
			bond.ValueAsset, lock.String(),
		))
	}
	balance.Updated = now
	if err := balance.Save(ctx); err != nil {
		return errors.Trace(err)
	}

	bond.CollateralPool = model.AmountFromInt(
		new(big.Int).Add(bond.CollateralPool.Int(), lock))
	bond.Updated = now
	if err := bond.Save(ctx); err != nil {
		return errors.Trace(err)
	}

	return nil
}
