package endpoint

import (
	"context"
	"math/big"
	"regexp"
	"strconv"
	"time"

	"github.com/teal/ledger/engine"
	"github.com/teal/ledger/engine/model"
	"github.com/teal/ledger/lib/clock"
	"github.com/teal/ledger/lib/errors"
)

// PriceRegexp is used to validate and parse a price.
var PriceRegexp = regexp.MustCompile(
	"^([0-9]+)\\/([0-9]+)$")

// ValidateSymbol validates an asset symbol.
func ValidateSymbol(
	ctx context.Context,
	symbol string,
) (*string, error) {
	if !engine.SymbolRegexp.MatchString(symbol) {
		return nil, errors.Trace(errors.NewUserErrorf(nil,
			400, "symbol_invalid",
			"The asset symbol you provided is invalid: %s. Asset symbols "+
				"are uppercased alphanumeric strings with an optional `.` "+
				"separator.",
			symbol,
		))
	}

	return &symbol, nil
}

// ValidateAccountName validates an account name.
func ValidateAccountName(
	ctx context.Context,
	name string,
) (*string, error) {
	if !engine.AccountNameRegexp.MatchString(name) {
		return nil, errors.Trace(errors.NewUserErrorf(nil,
			400, "account_invalid",
			"The account name you provided is invalid: %s.",
			name,
		))
	}

	return &name, nil
}

// ValidateAmount validates the amount of an asset.
func ValidateAmount(
	ctx context.Context,
	amount string,
) (*big.Int, error) {
	var a big.Int
	_, success := a.SetString(amount, 10)
	if !success ||
		a.Cmp(new(big.Int)) < 0 ||
		a.Cmp(model.MaxAssetAmount) >= 0 {
		return nil, errors.Trace(errors.NewUserErrorf(nil,
			400, "amount_invalid",
			"The amount you provided is invalid: %s. Amounts must be "+
				"integers between 0 and 2^128.",
			amount,
		))
	}

	return &a, nil
}

// ValidatePrice validates a price (pB/pQ).
func ValidatePrice(
	ctx context.Context,
	price string,
) (*big.Int, *big.Int, error) {
	m := PriceRegexp.FindStringSubmatch(price)
	if len(m) == 0 {
		return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
			400, "price_invalid",
			"The price you provided is invalid: %s. Prices must have the "+
				"form 'pB/pQ' where pB is the base asset price and pQ is "+
				"the quote asset price.",
			price,
		))
	}
	var basePrice big.Int
	_, success := basePrice.SetString(m[1], 10)
	if !success ||
		basePrice.Cmp(new(big.Int)) < 0 ||
		basePrice.Cmp(model.MaxAssetAmount) >= 0 {
		return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
			400, "price_invalid",
			"The base asset price you provided is invalid: %s. Asset "+
				"prices must be integers between 0 and 2^128.",
			m[1],
		))
	}

	var quotePrice big.Int
	_, success = quotePrice.SetString(m[2], 10)
	if !success ||
		quotePrice.Cmp(new(big.Int)) < 0 ||
		quotePrice.Cmp(model.MaxAssetAmount) >= 0 {
		return nil, nil, errors.Trace(errors.NewUserErrorf(nil,
			400, "price_invalid",
			"The quote asset price you provided is invalid: %s. Asset "+
				"prices must be integers between 0 and 2^128.",
			m[2],
		))
	}

	return &basePrice, &quotePrice, nil
}

// ValidateCreatedBefore validates a paging created_before.
func ValidateCreatedBefore(
	ctx context.Context,
	createdBefore string,
) (*time.Time, error) {
	if createdBefore == "" {
		t := clock.Get(ctx)
		return &t, nil
	}

	c, err := strconv.ParseInt(createdBefore, 10, 64)
	if err != nil || c < 0 {
		return nil, errors.Trace(errors.NewUserErrorf(err,
			400, "created_before_invalid",
			"The paging created_before value provided is invalid: %s. "+
				"Paging created_before must be a positive integer "+
				"representing a unix time in milliseconds.",
			createdBefore,
		))
	}
	converted := time.Unix(0, c*engine.TimeResolutionNs)

	return &converted, nil
}

// ValidateLimit validates a paging limit.
func ValidateLimit(
	ctx context.Context,
	limit string,
) (*uint, error) {
	if limit == "" {
		l := uint(100)
		return &l, nil
	}

	l, err := strconv.ParseInt(limit, 10, 64)
	if err != nil || l < 0 || l > 1000 {
		return nil, errors.Trace(errors.NewUserErrorf(err,
			400, "created_before_invalid",
			"The paging limit provided is invalid: %s. Paging limit must be "+
				"an integer between 0 and 1000.",
			limit,
		))
	}
	converted := uint(l)

	return &converted, nil
}

// CheckSignatory loads the signing account and verifies that the signatory,
// if distinct, is authorized to sign on its behalf. Returns the signing
// account.
func CheckSignatory(
	ctx context.Context,
	account string,
	signatory string,
) (*model.Account, error) {
	acc, err := model.LoadAccountByName(ctx, account)
	if err != nil {
		return nil, errors.Trace(err)
	} else if acc == nil {
		return nil, errors.Trace(errors.NewUserErrorf(nil,
			404, "account_not_found",
			"The account you provided does not exist: %s.",
			account,
		))
	}
	if !acc.Active {
		return nil, errors.Trace(errors.NewUserErrorf(nil,
			401, "account_inactive",
			"The account you provided is inactive: %s.",
			account,
		))
	}

	if signatory == "" {
		signatory = account
	}
	if !acc.CanSignFor(signatory) {
		return nil, errors.Trace(errors.NewUserErrorf(nil,
			401, "not_authorized",
			"The signatory %s is not authorized to sign for account %s.",
			signatory, account,
		))
	}

	return acc, nil
}
