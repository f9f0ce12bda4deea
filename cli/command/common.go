package command

import (
	"context"
	"fmt"
	"net/http"

	"github.com/teal/ledger/cli"
	"github.com/teal/ledger/engine"
	"github.com/teal/ledger/lib/errors"
	"github.com/teal/ledger/lib/out"
	"github.com/teal/ledger/lib/svc"
)

// userError extracts and formats the user error carried by a response.
func userError(
	raw *svc.Resp,
) error {
	var e errors.ConcreteUserError
	if err := raw.Extract("error", &e); err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(errors.Newf("(%s) %s", e.Code, e.Message))
}

// RetrieveAsset retrieves an asset, returning nil if it does not exist.
func RetrieveAsset(
	ctx context.Context,
	symbol string,
) (*engine.AssetResource, error) {
	e, err := cli.EngineFromContextConfig(ctx)
	if err != nil {
		return nil, errors.Trace(err)
	}

	out.Statf("[Retrieving asset] engine=%s asset=%s\n", e.Host, symbol)

	status, raw, err := e.Get(ctx, fmt.Sprintf("/assets/%s", symbol))
	if err != nil {
		return nil, errors.Trace(err)
	}

	if *status != http.StatusOK {
		var er errors.ConcreteUserError
		if err := raw.Extract("error", &er); err != nil {
			return nil, errors.Trace(err)
		}
		if er.Code == "not_found" {
			return nil, nil
		}
		return nil, errors.Trace(errors.Newf("(%s) %s", er.Code, er.Message))
	}

	var asset engine.AssetResource
	if err := raw.Extract("asset", &asset); err != nil {
		return nil, errors.Trace(err)
	}

	return &asset, nil
}

// ListAssets lists the registered assets.
func ListAssets(
	ctx context.Context,
) ([]engine.AssetResource, error) {
	e, err := cli.EngineFromContextConfig(ctx)
	if err != nil {
		return nil, errors.Trace(err)
	}

	out.Statf("[Listing assets] engine=%s\n", e.Host)

	status, raw, err := e.Get(ctx, "/assets")
	if err != nil {
		return nil, errors.Trace(err)
	}

	if *status != http.StatusOK {
		return nil, errors.Trace(userError(raw))
	}

	var assets []engine.AssetResource
	if err := raw.Extract("assets", &assets); err != nil {
		return nil, errors.Trace(err)
	}

	return assets, nil
}

// OutAsset prints out an asset record.
func OutAsset(
	a engine.AssetResource,
) {
	out.Normf("  Symbol: ")
	out.Valuf("%s", a.Symbol)
	out.Normf(" Issuer: ")
	out.Valuf("%s", a.Issuer)
	out.Normf(" Type: ")
	out.Valuf("%s", a.Type)
	out.Normf(" Supply: ")
	out.Valuf("%s/%s\n", a.TotalSupply.String(), a.MaxSupply.String())
}
