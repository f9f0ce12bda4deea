package schemas

import "github.com/teal/ledger/engine/model"

const (
	accountsSQL = `
CREATE TABLE IF NOT EXISTS accounts(
  token VARCHAR(256) NOT NULL,
  created TIMESTAMP NOT NULL,

  name VARCHAR(256) NOT NULL,    -- account name
  business BOOL NOT NULL,        -- business capability
  active BOOL NOT NULL,
  delegates VARCHAR(4096) NOT NULL, -- authorized signatories

  PRIMARY KEY(token),
  CONSTRAINT accounts_name_u UNIQUE (name)
);
`
)

func init() {
	model.RegisterSchema(
		"accounts",
		accountsSQL,
	)
}
