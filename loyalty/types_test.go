package loyalty_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/grandstrand/vip-backend/loyalty"
)

func TestNormalizePhone(t *testing.T) {
	cases := map[string]string{
		"(843) 555-1234": "8435551234",
		"843.555.1234":   "8435551234",
		"+1 843 555 12":  "184355512",
		"":               "",
		"no digits":      "",
	}
	for raw, want := range cases {
		assert.Equal(t, loyalty.Phone(want), loyalty.NormalizePhone(raw), "input %q", raw)
	}
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, loyalty.Code("A100"), loyalty.NormalizeCode("  a100 "))
	assert.Equal(t, loyalty.Code(""), loyalty.NormalizeCode("   "))
}

func TestNormalizeBarID(t *testing.T) {
	assert.Equal(t, loyalty.BarID("marshwalk"), loyalty.NormalizeBarID(" MarshWalk "))
}

func TestParseMoney(t *testing.T) {
	assert.True(t, loyalty.ParseMoney("25.50").Equal(decimal.RequireFromString("25.5")))
	assert.True(t, loyalty.ParseMoney(" 10 ").Equal(decimal.NewFromInt(10)))
	assert.True(t, loyalty.ParseMoney("garbage").IsZero())
	assert.True(t, loyalty.ParseMoney("").IsZero())
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "75.50", loyalty.FormatMoney(decimal.RequireFromString("75.5")))
	assert.Equal(t, "0.00", loyalty.FormatMoney(decimal.Zero))
}
