package endpoint

import (
	"context"
	"net/http"

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
	// EndPtUpdateAssetIssuer transfers an asset to a new issuer.
	EndPtUpdateAssetIssuer EndPtName = "UpdateAssetIssuer"
)

func init() {
	registrar[EndPtUpdateAssetIssuer] = NewUpdateAssetIssuer
}

// UpdateAssetIssuer controls the transfer of an asset to a new issuer.
type UpdateAssetIssuer struct {
	Account   string
	Signatory string
	Symbol    string
	NewIssuer string
}

// NewUpdateAssetIssuer constructs and initialiezes the endpoint.
func NewUpdateAssetIssuer(
	r *http.Request,
) (Endpoint, error) {
	return &UpdateAssetIssuer{}, nil
}

// Validate validates the input parameters.
func (e *UpdateAssetIssuer) Validate(
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

	newIssuer, err := ValidateAccountName(ctx, r.PostFormValue("new_issuer"))
	if err != nil {
		return errors.Trace(err)
	}
	e.NewIssuer = *newIssuer

	return nil
}

// Execute executes the endpoint.
func (e *UpdateAssetIssuer) Execute(
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
			"The asset you are trying to transfer does not exist: %s.",
			e.Symbol,
		))
	}
	if asset.Issuer != e.Account {
		return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
			401, "not_authorized",
			"Only the issuer of %s may transfer it.",
			e.Symbol,
		))
	}
	if asset.Type.Immutable() {
		return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
			400, "invalid_state_transition",
			"Assets of type %s cannot change issuer.",
			asset.Type,
		))
	}

	supply, err := model.LoadSupplyByAsset(ctx, e.Symbol)
	if err != nil {
		return nil, nil, errors.Trace(err)
	}
	switch asset.Type {
	case engine.AstTpBond, engine.AstTpCredit:
		if supply.Total().Sign() != 0 {
			return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
				400, "invalid_state_transition",
				"Assets of type %s can only change issuer while their "+
					"supply is zero.",
				asset.Type,
			))
		}
	}

	newIssuer, err := model.LoadAccountByName(ctx, e.NewIssuer)
	if err != nil {
		return nil, nil, errors.Trace(err)
	} else if newIssuer == nil {
		return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
			404, "not_found",
			"The new issuer account does not exist: %s.",
			e.NewIssuer,
		))
	}
	if !newIssuer.IsAuthorizedToHold(asset) {
		return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
			401, "not_authorized",
			"The new issuer %s is not authorized to receive %s.",
			e.NewIssuer, e.Symbol,
		))
	}
	// The transfer must be symmetrically authorized: the receiving account
	// must delegate to the current issuer.
	if !newIssuer.CanSignFor(e.Account) {
		return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
			401, "not_authorized",
			"The new issuer %s has not authorized transfers from %s.",
			e.NewIssuer, e.Account,
		))
	}
	if asset.Type.RequiresBusiness() && !newIssuer.Business {
		return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
			401, "not_authorized",
			"Assets of type %s can only be issued by business accounts.",
			asset.Type,
		))
	}

	switch asset.Type {
	case engine.AstTpEquity:
		equity, err := model.LoadEquityByAsset(ctx, e.Symbol)
		if err != nil {
			return nil, nil, errors.Trace(err)
		} else if equity != nil {
			equity.Business = e.NewIssuer
			if err := equity.Save(ctx); err != nil {
				return nil, nil, errors.Trace(err)
			}
		}
	case engine.AstTpCredit:
		credit, err := model.LoadCreditByAsset(ctx, e.Symbol)
		if err != nil {
			return nil, nil, errors.Trace(err)
		} else if credit != nil {
			credit.Business = e.NewIssuer
			if err := credit.Save(ctx); err != nil {
				return nil, nil, errors.Trace(err)
			}
		}
	case engine.AstTpStimulus:
		stimulus, err := model.LoadStimulusByAsset(ctx, e.Symbol)
		if err != nil {
			return nil, nil, errors.Trace(err)
		} else if stimulus != nil {
			stimulus.Business = e.NewIssuer
			stimulus.Updated = now
			if err := stimulus.Save(ctx); err != nil {
				return nil, nil, errors.Trace(err)
			}
		}
	}

	asset.Issuer = e.NewIssuer
	asset.Updated = now
	if err := asset.Save(ctx); err != nil {
		return nil, nil, errors.Trace(err)
	}

	db.Commit(ctx)

	return ptr.Int(http.StatusOK), &svc.Resp{
		"asset": format.JSONPtr(model.NewAssetResource(ctx, asset, supply)),
	}, nil
}
