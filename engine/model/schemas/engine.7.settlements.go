package schemas

import "github.com/teal/ledger/engine/model"

const (
	settlementsSQL = `
CREATE TABLE IF NOT EXISTS settlements(
  token VARCHAR(256) NOT NULL,
  created TIMESTAMP NOT NULL,

  account VARCHAR(256) NOT NULL,
  asset VARCHAR(64) NOT NULL,    -- asset symbol

  balance VARCHAR(64) NOT NULL,
  settlement_date TIMESTAMP NOT NULL,

  PRIMARY KEY(token),
  CONSTRAINT settlements_account_asset_u UNIQUE (account, asset),
  CONSTRAINT settlements_asset_fk FOREIGN KEY (asset)
    REFERENCES assets(symbol)
);
`
)

func init() {
	model.RegisterSchema(
		"settlements",
		settlementsSQL,
	)
}
