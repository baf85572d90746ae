package common

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

func ParseUnits(amount string, decimals uint64) (*big.Int, error) {
	amount = strings.TrimSpace(amount)
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	return d.Shift(int32(decimals)).Truncate(0).BigInt(), nil
}

func pow10(decimals uint64) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), new(big.Int).SetUint64(decimals), nil)
}

// FormatUnits2 renders value / 10^decimals with exactly two fractional
// digits, truncating the rest.
// Example:
// - FormatUnits2(1234567, 6) = "1.23"
// - FormatUnits2(5, 18) = "0.00"
func FormatUnits2(value *big.Int, decimals uint64) string {
	if value == nil {
		return "0.00"
	}
	neg := value.Sign() < 0
	v := new(big.Int).Abs(value)
	divisor := pow10(decimals)
	whole, rem := new(big.Int).QuoRem(v, divisor, new(big.Int))
	frac := rem.Mul(rem, big.NewInt(100))
	frac.Quo(frac, divisor)
	sign := ""
	if neg {
		sign = "-"
	}
	return fmt.Sprintf("%s%s.%02d", sign, whole.String(), frac.Int64())
}

// BigToFloatString renders value / 10^decimals without trailing zeros.
func BigToFloatString(value *big.Int, decimals uint64) string {
	if value == nil {
		return "0"
	}
	return decimal.NewFromBigInt(value, -int32(decimals)).String()
}

// PercentOf returns floor(total * pct / 100).
func PercentOf(total *big.Int, pct int) *big.Int {
	result := new(big.Int).Mul(total, big.NewInt(int64(pct)))
	return result.Quo(result, big.NewInt(100))
}
