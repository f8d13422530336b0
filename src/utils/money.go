package utils

import (
	"github.com/shopspring/decimal"
)

// ToMinorUnits converts an amount to centavos, rounding half away from zero.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

func FromMinorUnits(units int64) decimal.Decimal {
	return decimal.New(units, -2)
}

// RoundMoney rounds to two decimal places for presentation and storage.
func RoundMoney(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}

// SplitEvenly divides total into parts shares using the largest-remainder
// method on minor units: every share is floor(total/parts) and the first
// total%parts shares get one extra minor unit. The shares always sum to the
// total rounded to two decimals.
func SplitEvenly(total decimal.Decimal, parts int) []decimal.Decimal {
	if parts <= 0 {
		return nil
	}
	units := ToMinorUnits(total)
	base := units / int64(parts)
	rem := units % int64(parts)
	step := int64(1)
	if rem < 0 {
		rem = -rem
		step = -1
	}
	shares := make([]decimal.Decimal, parts)
	for i := range parts {
		share := base
		if int64(i) < rem {
			share += step
		}
		shares[i] = FromMinorUnits(share)
	}
	return shares
}
