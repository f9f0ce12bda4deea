package engine

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func price(
	base int64,
	quote int64,
) Price {
	return Price{
		BaseAmount:  big.NewInt(base),
		QuoteAmount: big.NewInt(quote),
	}
}

func TestPriceConvert(
	t *testing.T,
) {
	assert.Equal(t,
		big.NewInt(800), price(1, 2).Convert(big.NewInt(400)))
	assert.Equal(t,
		big.NewInt(133), price(3, 1).Convert(big.NewInt(400)))
	assert.Equal(t,
		big.NewInt(134), price(3, 1).ConvertRoundUp(big.NewInt(400)))
	assert.Equal(t,
		big.NewInt(133), price(3, 1).ConvertRoundUp(big.NewInt(399)))
	assert.Equal(t,
		big.NewInt(0), price(7, 1).Convert(big.NewInt(0)))
}

func TestPriceCmp(
	t *testing.T,
) {
	assert.Equal(t, 0, price(1, 2).Cmp(price(2, 4)))
	assert.Equal(t, 1, price(1, 2).Cmp(price(1, 3)))
	assert.Equal(t, -1, price(1, 3).Cmp(price(1, 2)))
	assert.Equal(t, 1, price(3, 1).Cmp(price(2, 1)))
}

func TestPriceString(
	t *testing.T,
) {
	assert.Equal(t, "1/2", price(1, 2).String())
	assert.Equal(t, "0/0", Price{}.String())
	assert.Equal(t, "0/0", price(0, 2).String())
	assert.True(t, price(1, 0).IsNull())
	assert.False(t, price(1, 2).IsNull())
}
