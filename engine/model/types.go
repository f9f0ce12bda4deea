package model

import (
	"database/sql/driver"
	"encoding/json"
	"math/big"

	"github.com/teal/ledger/lib/errors"
)

// MaxAssetAmount is the maximum amount for an asset (2^128).
var MaxAssetAmount = new(big.Int).Exp(
	big.NewInt(2), big.NewInt(128), nil)

// Amount extends big.Int to implement sql.Scanner and driver.Valuer.
type Amount big.Int

// Scan implements sql.Scanner.
func (b *Amount) Scan(src interface{}) error {
	switch src := src.(type) {
	case int64:
		(*big.Int)(b).SetInt64(src)
	case []byte:
		if _, success := (*big.Int)(b).SetString(string(src), 10); !success {
			return errors.Newf("Impossible to set Amount with string: %q", src)
		}
	case string:
		if _, success := (*big.Int)(b).SetString(src, 10); !success {
			return errors.Newf("Impossible to set Amount with string: %q", src)
		}
	default:
		return errors.Newf("Incompatible type for Amount with value: %q", src)
	}

	return nil
}

// Value implements driver.Valuer.
func (b Amount) Value() (value driver.Value, err error) {
	return (*big.Int)(&b).String(), nil
}

// Int returns the underlying big.Int.
func (b *Amount) Int() *big.Int {
	return (*big.Int)(b)
}

// AmountFromInt builds an Amount from a big.Int.
func AmountFromInt(i *big.Int) Amount {
	return Amount(*new(big.Int).Set(i))
}

// ZeroAmount builds a zero Amount.
func ZeroAmount() Amount {
	return Amount(*new(big.Int))
}

// NameSet is a set of account or asset names stored as a JSON array.
type NameSet []string

// Scan implements sql.Scanner.
func (s *NameSet) Scan(src interface{}) error {
	switch src := src.(type) {
	case []byte:
		if err := json.Unmarshal(src, s); err != nil {
			return errors.Newf("Impossible to set NameSet with: %q", src)
		}
	case string:
		if err := json.Unmarshal([]byte(src), s); err != nil {
			return errors.Newf("Impossible to set NameSet with: %q", src)
		}
	default:
		return errors.Newf("Incompatible type for NameSet with value: %q", src)
	}

	return nil
}

// Value implements driver.Valuer.
func (s NameSet) Value() (value driver.Value, err error) {
	if s == nil {
		s = NameSet{}
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return string(raw), nil
}

// Contains returns whether the set contains the provided name.
func (s NameSet) Contains(name string) bool {
	for _, n := range s {
		if n == name {
			return true
		}
	}
	return false
}
