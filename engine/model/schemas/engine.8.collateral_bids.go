package schemas

import "github.com/teal/ledger/engine/model"

const (
	collateralBidsSQL = `
CREATE TABLE IF NOT EXISTS collateral_bids(
  token VARCHAR(256) NOT NULL,
  created TIMESTAMP NOT NULL,
  updated TIMESTAMP NOT NULL,

  bidder VARCHAR(256) NOT NULL,
  asset VARCHAR(64) NOT NULL,    -- debt asset symbol

  collateral VARCHAR(64) NOT NULL,
  debt VARCHAR(64) NOT NULL,

  PRIMARY KEY(token),
  CONSTRAINT collateral_bids_bidder_asset_u UNIQUE (bidder, asset),
  CONSTRAINT collateral_bids_asset_fk FOREIGN KEY (asset)
    REFERENCES assets(symbol)
);
`
)

func init() {
	model.RegisterSchema(
		"collateral_bids",
		collateralBidsSQL,
	)
}
