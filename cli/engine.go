package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/teal/ledger/lib/client"
	"github.com/teal/ledger/lib/env"
	"github.com/teal/ledger/lib/errors"
	"github.com/teal/ledger/lib/svc"
)

// Engine represents the engine the cli is connected to.
type Engine struct {
	Host    string
	Account string
}

// EngineFromContextConfig returns an engine object from the config stored in
// the current context.
func EngineFromContextConfig(
	ctx context.Context,
) (*Engine, error) {
	c := GetConfig(ctx)
	if c == nil {
		return nil, errors.Trace(
			errors.Newf("No engine configured (see `ledger use`)"))
	}
	return &Engine{
		Host:    c.Engine,
		Account: c.Account,
	}, nil
}

// FullURL constructs the engine url for the provided path. Engines are served
// over HTTPS in production and HTTP in QA.
func (e *Engine) FullURL(
	ctx context.Context,
	path string,
) *url.URL {
	scheme := "https"
	if env.Get(ctx).Environment == env.QA {
		scheme = "http"
	}
	u, err := url.Parse(fmt.Sprintf("%s://%s%s", scheme, e.Host, path))
	if err != nil {
		panic(err)
	}
	return u
}

// Post performs a POST request to the engine.
func (e *Engine) Post(
	ctx context.Context,
	path string,
	params url.Values,
) (*int, *svc.Resp, error) {
	req, err := http.NewRequest("POST",
		e.FullURL(ctx, path).String(),
		strings.NewReader(params.Encode()))
	if err != nil {
		return nil, nil, errors.Trace(err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	r, err := client.Default(ctx).Do(req)
	if err != nil {
		return nil, nil, errors.Trace(err)
	}
	defer r.Body.Close()

	var raw svc.Resp
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return nil, nil, errors.Trace(err)
	}

	return &r.StatusCode, &raw, nil
}

// Get performs a GET request to the engine.
func (e *Engine) Get(
	ctx context.Context,
	path string,
) (*int, *svc.Resp, error) {
	req, err := http.NewRequest("GET",
		e.FullURL(ctx, path).String(), nil)
	if err != nil {
		return nil, nil, errors.Trace(err)
	}

	r, err := client.Default(ctx).Do(req)
	if err != nil {
		return nil, nil, errors.Trace(err)
	}
	defer r.Body.Close()

	var raw svc.Resp
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return nil, nil, errors.Trace(err)
	}

	return &r.StatusCode, &raw, nil
}
