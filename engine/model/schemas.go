package model

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/teal/ledger/lib/db"
	"github.com/teal/ledger/lib/errors"
)

// RegisterSchema lets schemas register themselves.
func RegisterSchema(
	table string,
	schema string,
) {
	db.RegisterSchema("engine", table, schema)
}

// CreateEngineDBTables creates the engine DB tables if they don't exist.
func CreateEngineDBTables(
	ctx context.Context,
	engineDB *sqlx.DB,
) error {
	return errors.Trace(db.CreateDBTables(ctx, "engine", engineDB))
}
