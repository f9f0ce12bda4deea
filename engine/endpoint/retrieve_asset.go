package endpoint

import (
	"context"
	"net/http"

	"goji.io/pat"

	"github.com/teal/ledger/engine"
	"github.com/teal/ledger/engine/model"
	"github.com/teal/ledger/lib/db"
	"github.com/teal/ledger/lib/errors"
	"github.com/teal/ledger/lib/format"
	"github.com/teal/ledger/lib/ptr"
	"github.com/teal/ledger/lib/svc"
)

const (
	// EndPtRetrieveAsset retrieves an asset.
	EndPtRetrieveAsset EndPtName = "RetrieveAsset"
)

func init() {
	registrar[EndPtRetrieveAsset] = NewRetrieveAsset
}

// RetrieveAsset retrieves an asset based on its symbol. It is not
// authenticated and is used to verify the existence of an asset.
type RetrieveAsset struct {
	Symbol string
}

// NewRetrieveAsset constructs and initialiezes the endpoint.
func NewRetrieveAsset(
	r *http.Request,
) (Endpoint, error) {
	return &RetrieveAsset{}, nil
}

// Validate validates the input parameters.
func (e *RetrieveAsset) Validate(
	r *http.Request,
) error {
	ctx := r.Context()

	symbol, err := ValidateSymbol(ctx, pat.Param(r, "symbol"))
	if err != nil {
		return errors.Trace(err)
	}
	e.Symbol = *symbol

	return nil
}

// Execute executes the endpoint.
func (e *RetrieveAsset) Execute(
	ctx context.Context,
) (*int, *svc.Resp, error) {
	ctx = db.Begin(ctx)
	defer db.LoggedRollback(ctx)

	asset, err := model.LoadAssetBySymbol(ctx, e.Symbol)
	if err != nil {
		return nil, nil, errors.Trace(err) // 500
	} else if asset == nil {
		return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
			404, "not_found",
			"The asset you are trying to retrieve does not exist: %s.",
			e.Symbol,
		))
	}

	supply, err := model.LoadSupplyByAsset(ctx, e.Symbol)
	if err != nil {
		return nil, nil, errors.Trace(err) // 500
	}

	resp := svc.Resp{
		"asset": format.JSONPtr(model.NewAssetResource(ctx, asset, supply)),
	}

	switch asset.Type {
	case engine.AstTpStablecoin:
		stablecoin, err := model.LoadStablecoinByAsset(ctx, e.Symbol)
		if err != nil {
			return nil, nil, errors.Trace(err) // 500
		} else if stablecoin != nil {
			resp["stablecoin"] = format.JSONPtr(
				model.NewStablecoinResource(ctx, stablecoin))
		}
	case engine.AstTpStimulus:
		stimulus, err := model.LoadStimulusByAsset(ctx, e.Symbol)
		if err != nil {
			return nil, nil, errors.Trace(err) // 500
		} else if stimulus != nil {
			resp["stimulus"] = format.JSONPtr(
				model.NewStimulusResource(ctx, stimulus))
		}
	}

	db.Commit(ctx)

	return ptr.Int(http.StatusOK), &resp, nil
}
