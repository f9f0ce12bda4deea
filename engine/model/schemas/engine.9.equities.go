package schemas

import "github.com/teal/ledger/engine/model"

const (
	equitiesSQL = `
CREATE TABLE IF NOT EXISTS equities(
  token VARCHAR(256) NOT NULL,
  created TIMESTAMP NOT NULL,

  asset VARCHAR(64) NOT NULL,     -- asset symbol
  business VARCHAR(256) NOT NULL, -- issuer business account

  dividend_asset VARCHAR(64) NOT NULL,
  revenue_share_percent BIGINT NOT NULL, -- in basis points
  dividend_interval BIGINT NOT NULL,     -- in seconds

  PRIMARY KEY(token),
  CONSTRAINT equities_asset_u UNIQUE (asset),
  CONSTRAINT equities_asset_fk FOREIGN KEY (asset) REFERENCES assets(symbol)
);
`
)

func init() {
	model.RegisterSchema(
		"equities",
		equitiesSQL,
	)
}
