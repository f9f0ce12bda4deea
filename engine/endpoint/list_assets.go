package endpoint

import (
	"context"
	"net/http"

	"github.com/teal/ledger/engine"
	"github.com/teal/ledger/engine/model"
	"github.com/teal/ledger/lib/db"
	"github.com/teal/ledger/lib/errors"
	"github.com/teal/ledger/lib/format"
	"github.com/teal/ledger/lib/ptr"
	"github.com/teal/ledger/lib/svc"
)

const (
	// EndPtListAssets returns the list of registered assets.
	EndPtListAssets EndPtName = "ListAssets"
)

func init() {
	registrar[EndPtListAssets] = NewListAssets
}

// ListAssets returns a list of assets.
type ListAssets struct {
	ListEndpoint
}

// NewListAssets constructs and initialiezes the endpoint.
func NewListAssets(
	r *http.Request,
) (Endpoint, error) {
	return &ListAssets{
		ListEndpoint: ListEndpoint{},
	}, nil
}

// Validate validates the input parameters.
func (e *ListAssets) Validate(
	r *http.Request,
) error {
	return e.ListEndpoint.Validate(r)
}

// Execute executes the endpoint.
func (e *ListAssets) Execute(
	ctx context.Context,
) (*int, *svc.Resp, error) {
	ctx = db.Begin(ctx)
	defer db.LoggedRollback(ctx)

	assets, err := model.LoadAssetListByCreatedBefore(ctx,
		e.ListEndpoint.CreatedBefore,
		e.ListEndpoint.Limit,
	)
	if err != nil {
		return nil, nil, errors.Trace(err) // 500
	}

	l := []engine.AssetResource{}
	for i := range assets {
		supply, err := model.LoadSupplyByAsset(ctx, assets[i].Symbol)
		if err != nil {
			return nil, nil, errors.Trace(err) // 500
		}
		l = append(l, model.NewAssetResource(ctx, &assets[i], supply))
	}

	db.Commit(ctx)

	return ptr.Int(http.StatusOK), &svc.Resp{
		"assets": format.JSONPtr(l),
	}, nil
}
