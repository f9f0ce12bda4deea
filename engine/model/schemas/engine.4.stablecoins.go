package schemas

import "github.com/teal/ledger/engine/model"

const (
	stablecoinsSQL = `
CREATE TABLE IF NOT EXISTS stablecoins(
  token VARCHAR(256) NOT NULL,
  created TIMESTAMP NOT NULL,
  updated TIMESTAMP NOT NULL,

  asset VARCHAR(64) NOT NULL,         -- asset symbol
  backing_asset VARCHAR(64) NOT NULL,

  feed_lifetime BIGINT NOT NULL,      -- in seconds
  minimum_feeds BIGINT NOT NULL,
  settlement_delay BIGINT NOT NULL,   -- in seconds
  maintenance_collateralization BIGINT NOT NULL, -- in basis points

  feed_base_amount VARCHAR(64) NOT NULL,  -- current median feed
  feed_quote_amount VARCHAR(64) NOT NULL,

  settlement_base_amount VARCHAR(64) NOT NULL,  -- global settlement price
  settlement_quote_amount VARCHAR(64) NOT NULL,
  settlement_fund VARCHAR(64) NOT NULL,

  PRIMARY KEY(token),
  CONSTRAINT stablecoins_asset_u UNIQUE (asset),
  CONSTRAINT stablecoins_asset_fk FOREIGN KEY (asset)
    REFERENCES assets(symbol)
);
`
)

func init() {
	model.RegisterSchema(
		"stablecoins",
		stablecoinsSQL,
	)
}
