package schemas

import "github.com/teal/ledger/engine/model"

const (
	creditsSQL = `
CREATE TABLE IF NOT EXISTS credits(
  token VARCHAR(256) NOT NULL,
  created TIMESTAMP NOT NULL,

  asset VARCHAR(64) NOT NULL,     -- asset symbol
  business VARCHAR(256) NOT NULL, -- issuer business account

  buyback_asset VARCHAR(64) NOT NULL,
  buyback_share_percent BIGINT NOT NULL, -- in basis points

  PRIMARY KEY(token),
  CONSTRAINT credits_asset_u UNIQUE (asset),
  CONSTRAINT credits_asset_fk FOREIGN KEY (asset) REFERENCES assets(symbol)
);
`
)

func init() {
	model.RegisterSchema(
		"credits",
		creditsSQL,
	)
}
