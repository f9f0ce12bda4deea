package schemas

import "github.com/teal/ledger/engine/model"

const (
	suppliesSQL = `
CREATE TABLE IF NOT EXISTS supplies(
  token VARCHAR(256) NOT NULL,
  created TIMESTAMP NOT NULL,
  updated TIMESTAMP NOT NULL,

  asset VARCHAR(64) NOT NULL,    -- asset symbol

  liquid VARCHAR(64) NOT NULL,
  staked VARCHAR(64) NOT NULL,
  reward VARCHAR(64) NOT NULL,
  savings VARCHAR(64) NOT NULL,
  pending VARCHAR(64) NOT NULL,  -- escrowed, not owned by any account

  PRIMARY KEY(token),
  CONSTRAINT supplies_asset_u UNIQUE (asset),
  CONSTRAINT supplies_asset_fk FOREIGN KEY (asset) REFERENCES assets(symbol)
);
`
)

func init() {
	model.RegisterSchema(
		"supplies",
		suppliesSQL,
	)
}
