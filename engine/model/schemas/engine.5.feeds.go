package schemas

import "github.com/teal/ledger/engine/model"

const (
	feedsSQL = `
CREATE TABLE IF NOT EXISTS feeds(
  token VARCHAR(256) NOT NULL,
  created TIMESTAMP NOT NULL,
  updated TIMESTAMP NOT NULL,

  asset VARCHAR(64) NOT NULL,      -- asset symbol
  publisher VARCHAR(256) NOT NULL, -- publisher account name

  base_amount VARCHAR(64) NOT NULL,
  quote_amount VARCHAR(64) NOT NULL,

  PRIMARY KEY(token),
  CONSTRAINT feeds_asset_publisher_u UNIQUE (asset, publisher),
  CONSTRAINT feeds_asset_fk FOREIGN KEY (asset) REFERENCES assets(symbol)
);
`
)

func init() {
	model.RegisterSchema(
		"feeds",
		feedsSQL,
	)
}
