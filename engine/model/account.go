package model

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/teal/ledger/engine"
	"github.com/teal/ledger/lib/db"
	"github.com/teal/ledger/lib/errors"
	"github.com/teal/ledger/lib/token"
)

// Account represents an account consumed by the engine: name resolution,
// business capability, signatory delegation and per-account asset
// authorizations.
type Account struct {
	Token   string
	Created time.Time

	Name     string // Account name (unique).
	Business bool   // Whether the account is business-capable.
	Active   bool

	Delegates NameSet // Accounts authorized to sign on its behalf.
}

// CreateAccount creates and stores a new Account object.
func CreateAccount(
	ctx context.Context,
	name string,
	business bool,
) (*Account, error) {
	account := Account{
		Token:   token.New("account"),
		Created: time.Now().UTC(),

		Name:      name,
		Business:  business,
		Active:    true,
		Delegates: NameSet{},
	}

	ext := db.Ext(ctx)
	if _, err := sqlx.NamedExec(ext, `
INSERT INTO accounts
  (token, created, name, business, active, delegates)
VALUES
  (:token, :created, :name, :business, :active, :delegates)
`, account); err != nil {
		return nil, mapSQLError(err)
	}

	return &account, nil
}

// Save updates the object database representation with the in-memory values.
func (a *Account) Save(
	ctx context.Context,
) error {
	ext := db.Ext(ctx)
	_, err := sqlx.NamedExec(ext, `
UPDATE accounts
SET business = :business, active = :active, delegates = :delegates
WHERE token = :token
`, a)
	if err != nil {
		return errors.Trace(err)
	}

	return nil
}

// LoadAccountByName attempts to load an account by its name.
func LoadAccountByName(
	ctx context.Context,
	name string,
) (*Account, error) {
	account := Account{
		Name: name,
	}

	ext := db.Ext(ctx)
	if rows, err := sqlx.NamedQuery(ext, `
SELECT *
FROM accounts
WHERE name = :name
`, account); err != nil {
		return nil, errors.Trace(err)
	} else if !rows.Next() {
		return nil, nil
	} else if err := rows.StructScan(&account); err != nil {
		defer rows.Close()
		return nil, errors.Trace(err)
	} else if err := rows.Close(); err != nil {
		return nil, errors.Trace(err)
	}

	return &account, nil
}

// CanSignFor returns whether signatory is allowed to sign operations on
// behalf of the account (the account itself always is).
func (a *Account) CanSignFor(
	signatory string,
) bool {
	if signatory == a.Name {
		return true
	}
	return a.Delegates.Contains(signatory)
}

// IsAuthorizedToHold returns whether the account may hold the provided asset
// under its whitelist and blacklist authorities.
func (a *Account) IsAuthorizedToHold(
	asset *Asset,
) bool {
	if !a.Active {
		return false
	}
	if asset.BlacklistAccounts.Contains(a.Name) {
		return false
	}
	if asset.Flags&engine.PermWhitelist != 0 &&
		!asset.WhitelistAccounts.Contains(a.Name) {
		return false
	}
	return true
}
