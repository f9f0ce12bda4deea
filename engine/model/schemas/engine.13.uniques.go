package schemas

import "github.com/teal/ledger/engine/model"

const (
	uniquesSQL = `
CREATE TABLE IF NOT EXISTS uniques(
  token VARCHAR(256) NOT NULL,
  created TIMESTAMP NOT NULL,
  updated TIMESTAMP NOT NULL,

  asset VARCHAR(64) NOT NULL, -- asset symbol

  controlling_owner VARCHAR(256) NOT NULL,
  access_list VARCHAR(4096) NOT NULL,

  PRIMARY KEY(token),
  CONSTRAINT uniques_asset_u UNIQUE (asset),
  CONSTRAINT uniques_asset_fk FOREIGN KEY (asset) REFERENCES assets(symbol)
);
`
)

func init() {
	model.RegisterSchema(
		"uniques",
		uniquesSQL,
	)
}
