package model

import (
	"github.com/lib/pq"
	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/teal/ledger/lib/errors"
)

// mapSQLError converts driver specific constraint errors into model errors.
func mapSQLError(err error) error {
	switch err := err.(type) {
	case *pq.Error:
		if err.Code.Name() == "unique_violation" {
			return errors.Trace(ErrUniqueConstraintViolation{err})
		}
	case sqlite3.Error:
		if err.ExtendedCode == sqlite3.ErrConstraintUnique {
			return errors.Trace(ErrUniqueConstraintViolation{err})
		}
	}
	return errors.Trace(err)
}
