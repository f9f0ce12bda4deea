package schemas

import "github.com/teal/ledger/engine/model"

const (
	distributionsSQL = `
CREATE TABLE IF NOT EXISTS distributions(
  token VARCHAR(256) NOT NULL,
  created TIMESTAMP NOT NULL,
  updated TIMESTAMP NOT NULL,

  asset VARCHAR(64) NOT NULL,      -- distributed asset symbol
  fund_asset VARCHAR(64) NOT NULL,

  unit_amount VARCHAR(64) NOT NULL,
  input_unit VARCHAR(64) NOT NULL,
  min_fund VARCHAR(64) NOT NULL,
  total_funded VARCHAR(64) NOT NULL,

  begin_date TIMESTAMP NOT NULL,
  end_date TIMESTAMP NOT NULL,
  status VARCHAR(32) NOT NULL,

  PRIMARY KEY(token),
  CONSTRAINT distributions_asset_u UNIQUE (asset),
  CONSTRAINT distributions_asset_fk FOREIGN KEY (asset)
    REFERENCES assets(symbol)
);
`

	distributionBalancesSQL = `
CREATE TABLE IF NOT EXISTS distribution_balances(
  token VARCHAR(256) NOT NULL,
  created TIMESTAMP NOT NULL,
  updated TIMESTAMP NOT NULL,

  distribution VARCHAR(256) NOT NULL, -- distribution token
  sender VARCHAR(256) NOT NULL,
  value VARCHAR(64) NOT NULL,

  PRIMARY KEY(token),
  CONSTRAINT distribution_balances_u UNIQUE (distribution, sender),
  CONSTRAINT distribution_balances_fk FOREIGN KEY (distribution)
    REFERENCES distributions(token)
);
`
)

func init() {
	model.RegisterSchema(
		"distributions",
		distributionsSQL,
	)
	model.RegisterSchema(
		"distribution_balances",
		distributionBalancesSQL,
	)
}
