package schemas

import "github.com/teal/ledger/engine/model"

const (
	assetsSQL = `
CREATE TABLE IF NOT EXISTS assets(
  token VARCHAR(256) NOT NULL,
  created TIMESTAMP NOT NULL,
  updated TIMESTAMP NOT NULL,

  symbol VARCHAR(64) NOT NULL,   -- asset symbol
  issuer VARCHAR(256) NOT NULL,  -- issuer account name
  type VARCHAR(32) NOT NULL,     -- asset type tag

  max_supply VARCHAR(64) NOT NULL,
  permissions BIGINT NOT NULL,   -- granted capability bits
  flags BIGINT NOT NULL,         -- active capability bits

  whitelist_accounts VARCHAR(4096) NOT NULL,
  blacklist_accounts VARCHAR(4096) NOT NULL,
  whitelist_markets VARCHAR(4096) NOT NULL,
  blacklist_markets VARCHAR(4096) NOT NULL,

  stake_interval BIGINT NOT NULL,
  unstake_interval BIGINT NOT NULL,

  PRIMARY KEY(token),
  CONSTRAINT assets_symbol_u UNIQUE (symbol)
);
`
)

func init() {
	model.RegisterSchema(
		"assets",
		assetsSQL,
	)
}
