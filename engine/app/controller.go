package app

import (
	"goji.io"
	"goji.io/pat"

	"github.com/teal/ledger/engine/endpoint"
)

// Controller binds the API
type Controller struct{}

// Bind registers the API routes.
func (c *Controller) Bind(
	mux *goji.Mux,
) {
	// Authenticated.
	mux.HandleFunc(pat.Post("/assets"), endpoint.HandlerFor(endpoint.EndPtCreateAsset))
	mux.HandleFunc(pat.Post("/assets/:symbol"), endpoint.HandlerFor(endpoint.EndPtUpdateAsset))
	mux.HandleFunc(pat.Post("/assets/:symbol/issue"), endpoint.HandlerFor(endpoint.EndPtIssueAsset))
	mux.HandleFunc(pat.Post("/assets/:symbol/reserve"), endpoint.HandlerFor(endpoint.EndPtReserveAsset))
	mux.HandleFunc(pat.Post("/assets/:symbol/issuer"), endpoint.HandlerFor(endpoint.EndPtUpdateAssetIssuer))
	mux.HandleFunc(pat.Post("/assets/:symbol/feeds"), endpoint.HandlerFor(endpoint.EndPtPublishFeed))
	mux.HandleFunc(pat.Post("/assets/:symbol/publishers"), endpoint.HandlerFor(endpoint.EndPtUpdateFeedProducers))
	mux.HandleFunc(pat.Post("/assets/:symbol/settle"), endpoint.HandlerFor(endpoint.EndPtSettleAsset))
	mux.HandleFunc(pat.Post("/assets/:symbol/global_settle"), endpoint.HandlerFor(endpoint.EndPtGlobalSettleAsset))
	mux.HandleFunc(pat.Post("/assets/:symbol/bids"), endpoint.HandlerFor(endpoint.EndPtBidCollateral))
	mux.HandleFunc(pat.Post("/assets/:symbol/distribution"), endpoint.HandlerFor(endpoint.EndPtCreateDistribution))
	mux.HandleFunc(pat.Post("/assets/:symbol/distribution/fund"), endpoint.HandlerFor(endpoint.EndPtFundDistribution))
	mux.HandleFunc(pat.Post("/assets/:symbol/stimulus/fund"), endpoint.HandlerFor(endpoint.EndPtFundStimulus))
	mux.HandleFunc(pat.Post("/assets/:symbol/exercise"), endpoint.HandlerFor(endpoint.EndPtExerciseOption))

	// Public.
	mux.HandleFunc(pat.Get("/assets"), endpoint.HandlerFor(endpoint.EndPtListAssets))
	mux.HandleFunc(pat.Get("/assets/:symbol"), endpoint.HandlerFor(endpoint.EndPtRetrieveAsset))
}
