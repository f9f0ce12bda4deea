package schemas

import "github.com/teal/ledger/engine/model"

const (
	balancesSQL = `
CREATE TABLE IF NOT EXISTS balances(
  token VARCHAR(256) NOT NULL,
  created TIMESTAMP NOT NULL,
  updated TIMESTAMP NOT NULL,

  account VARCHAR(256) NOT NULL, -- account name
  asset VARCHAR(64) NOT NULL,    -- asset symbol
  value VARCHAR(64) NOT NULL,

  PRIMARY KEY(token),
  CONSTRAINT balances_account_asset_u UNIQUE (account, asset),
  CONSTRAINT balances_asset_fk FOREIGN KEY (asset) REFERENCES assets(symbol)
);
`
)

func init() {
	model.RegisterSchema(
		"balances",
		balancesSQL,
	)
}
