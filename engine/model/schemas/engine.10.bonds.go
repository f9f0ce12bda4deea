package schemas

import "github.com/teal/ledger/engine/model"

const (
	bondsSQL = `
CREATE TABLE IF NOT EXISTS bonds(
  token VARCHAR(256) NOT NULL,
  created TIMESTAMP NOT NULL,
  updated TIMESTAMP NOT NULL,

  asset VARCHAR(64) NOT NULL,     -- asset symbol
  business VARCHAR(256) NOT NULL, -- issuer business account

  value_asset VARCHAR(64) NOT NULL,
  face_base_amount VARCHAR(64) NOT NULL,
  face_quote_amount VARCHAR(64) NOT NULL,
  collateralization_percent BIGINT NOT NULL, -- in basis points
  maturity_date TIMESTAMP NOT NULL,

  collateral_pool VARCHAR(64) NOT NULL,

  PRIMARY KEY(token),
  CONSTRAINT bonds_asset_u UNIQUE (asset),
  CONSTRAINT bonds_asset_fk FOREIGN KEY (asset) REFERENCES assets(symbol)
);
`
)

func init() {
	model.RegisterSchema(
		"bonds",
		bondsSQL,
	)
}
