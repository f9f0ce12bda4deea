package schemas

import "github.com/teal/ledger/engine/model"

const (
	callOrdersSQL = `
CREATE TABLE IF NOT EXISTS call_orders(
  token VARCHAR(256) NOT NULL,
  created TIMESTAMP NOT NULL,
  updated TIMESTAMP NOT NULL,

  borrower VARCHAR(256) NOT NULL,
  asset VARCHAR(64) NOT NULL,            -- debt asset symbol
  collateral_asset VARCHAR(64) NOT NULL,

  collateral VARCHAR(64) NOT NULL,
  debt VARCHAR(64) NOT NULL,

  PRIMARY KEY(token),
  CONSTRAINT call_orders_borrower_asset_u UNIQUE (borrower, asset),
  CONSTRAINT call_orders_asset_fk FOREIGN KEY (asset)
    REFERENCES assets(symbol)
);
`
)

func init() {
	model.RegisterSchema(
		"call_orders",
		callOrdersSQL,
	)
}
