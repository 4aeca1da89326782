package types

import "math/big"

// decimalScale is the fixed-point scale every Decimal is stored at: 18
// fractional digits, matching "decimal (18-digit fixed point)".
const decimalScale = 18

var tenPow18 = new(big.Int).Exp(big.NewInt(10), big.NewInt(decimalScale), nil)

// Decimal is a signed fixed-point quantity stored as raw units at 18-digit
// scale: the value it represents is RawUnits / 10^18. Resource amounts,
// vault/bucket balances and total_supply are all Decimal.
type Decimal struct {
	Raw *big.Int
}

// ZeroDecimal returns the additive identity.
func ZeroDecimal() Decimal { return Decimal{Raw: big.NewInt(0)} }

// NewDecimalFromRaw wraps an existing raw-unit integer.
func NewDecimalFromRaw(raw *big.Int) Decimal {
	return Decimal{Raw: new(big.Int).Set(raw)}
}

// NewDecimalFromInt64 builds a whole-number Decimal, e.g. NewDecimalFromInt64(100)
// represents the value 100.
func NewDecimalFromInt64(whole int64) Decimal {
	raw := new(big.Int).Mul(big.NewInt(whole), tenPow18)
	return Decimal{Raw: raw}
}

func (d Decimal) IsNegative() bool { return d.Raw.Sign() < 0 }
func (d Decimal) IsZero() bool     { return d.Raw.Sign() == 0 }

func (d Decimal) Add(o Decimal) Decimal {
	return Decimal{Raw: new(big.Int).Add(d.Raw, o.Raw)}
}

func (d Decimal) Sub(o Decimal) Decimal {
	return Decimal{Raw: new(big.Int).Sub(d.Raw, o.Raw)}
}

func (d Decimal) Cmp(o Decimal) int { return d.Raw.Cmp(o.Raw) }

func (d Decimal) String() string {
	// Render as an integer-and-fraction string at full 18-digit precision.
	neg := d.Raw.Sign() < 0
	abs := new(big.Int).Abs(d.Raw)
	whole := new(big.Int)
	frac := new(big.Int)
	whole.DivMod(abs, tenPow18, frac)
	fracStr := frac.String()
	for len(fracStr) < decimalScale {
		fracStr = "0" + fracStr
	}
	sign := ""
	if neg {
		sign = "-"
	}
	return sign + whole.String() + "." + fracStr
}

// GranularityOK reports whether the amount is representable at the given
// divisibility: amount.raw_units % 10^(18-divisibility) == 0.
func (d Decimal) GranularityOK(divisibility uint8) bool {
	if divisibility > decimalScale {
		return false
	}
	mod := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimalScale-int(divisibility))), nil)
	rem := new(big.Int).Mod(d.Raw, mod)
	return rem.Sign() == 0
}
