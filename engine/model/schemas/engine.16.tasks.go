package schemas

import "github.com/teal/ledger/engine/model"

const (
	tasksSQL = `
CREATE TABLE IF NOT EXISTS tasks(
  token VARCHAR(256) NOT NULL,
  created TIMESTAMP NOT NULL,

  name VARCHAR(256) NOT NULL,    -- task name
  subject VARCHAR(256) NOT NULL, -- task subject

  status VARCHAR(32) NOT NULL,   -- pending, succeeded, failed
  retry INT NOT NULL,

  PRIMARY KEY(token)
);
`
)

func init() {
	model.RegisterSchema(
		"tasks",
		tasksSQL,
	)
}
