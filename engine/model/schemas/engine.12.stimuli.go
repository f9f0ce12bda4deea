package schemas

import "github.com/teal/ledger/engine/model"

const (
	stimuliSQL = `
CREATE TABLE IF NOT EXISTS stimuli(
  token VARCHAR(256) NOT NULL,
  created TIMESTAMP NOT NULL,
  updated TIMESTAMP NOT NULL,

  asset VARCHAR(64) NOT NULL,     -- asset symbol
  business VARCHAR(256) NOT NULL, -- issuer business account

  redemption_asset VARCHAR(64) NOT NULL,
  redemption_pool VARCHAR(64) NOT NULL,

  distribution_list VARCHAR(4096) NOT NULL,
  distribution_amount VARCHAR(64) NOT NULL,

  PRIMARY KEY(token),
  CONSTRAINT stimuli_asset_u UNIQUE (asset),
  CONSTRAINT stimuli_asset_fk FOREIGN KEY (asset) REFERENCES assets(symbol)
);
`
)

func init() {
	model.RegisterSchema(
		"stimuli",
		stimuliSQL,
	)
}
