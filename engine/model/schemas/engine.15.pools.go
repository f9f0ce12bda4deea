package schemas

import "github.com/teal/ledger/engine/model"

const (
	liquidityPoolsSQL = `
CREATE TABLE IF NOT EXISTS liquidity_pools(
  token VARCHAR(256) NOT NULL,
  created TIMESTAMP NOT NULL,
  updated TIMESTAMP NOT NULL,

  asset_a VARCHAR(64) NOT NULL,
  asset_b VARCHAR(64) NOT NULL,

  balance_a VARCHAR(64) NOT NULL,
  balance_b VARCHAR(64) NOT NULL,

  PRIMARY KEY(token),
  CONSTRAINT liquidity_pools_pair_u UNIQUE (asset_a, asset_b)
);
`

	creditPoolsSQL = `
CREATE TABLE IF NOT EXISTS credit_pools(
  token VARCHAR(256) NOT NULL,
  created TIMESTAMP NOT NULL,
  updated TIMESTAMP NOT NULL,

  asset VARCHAR(64) NOT NULL,        -- base asset symbol
  credit_asset VARCHAR(64) NOT NULL,

  base_balance VARCHAR(64) NOT NULL,
  credit_balance VARCHAR(64) NOT NULL,

  PRIMARY KEY(token),
  CONSTRAINT credit_pools_asset_u UNIQUE (asset)
);
`
)

func init() {
	model.RegisterSchema(
		"liquidity_pools",
		liquidityPoolsSQL,
	)
	model.RegisterSchema(
		"credit_pools",
		creditPoolsSQL,
	)
}
