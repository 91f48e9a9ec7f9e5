// Package fee computes rental obligations in minor currency units (cents).
package fee

import (
	"fmt"

	"carsharing/model"

	"github.com/shopspring/decimal"
)

var (
	hundred        = decimal.NewFromInt(100)
	fineMultiplier = decimal.NewFromInt(3)
)

// OnTimeAmount charges the rental span plus one day, so a same-day return
// still costs a full day.
func OnTimeAmount(dailyFee decimal.Decimal, days int64) decimal.Decimal {
	return dailyFee.Mul(decimal.NewFromInt(days + 1)).Mul(hundred)
}

// FineAmount charges three times the daily fee for each overdue day.
func FineAmount(dailyFee decimal.Decimal, overdueDays int64) decimal.Decimal {
	return dailyFee.Mul(decimal.NewFromInt(overdueDays)).Mul(fineMultiplier).Mul(hundred)
}

type calcFn func(dailyFee decimal.Decimal, days int64) decimal.Decimal

var byType = map[model.PaymentType]calcFn{
	model.PaymentTypePayment: OnTimeAmount,
	model.PaymentTypeFine:    FineAmount,
}

// Amount dispatches on the obligation type.
func Amount(t model.PaymentType, dailyFee decimal.Decimal, days int64) (decimal.Decimal, error) {
	fn, ok := byType[t]
	if !ok {
		return decimal.Zero, fmt.Errorf("no fee rule for payment type %q", t)
	}
	return fn(dailyFee, days), nil
}

// ToMajor converts minor units to the two-decimal amount shown to users.
func ToMajor(minor decimal.Decimal) decimal.Decimal {
	return minor.Div(hundred).Round(2)
}

// MinorInt is the integer cent amount sent to a gateway, rounded half-up.
func MinorInt(minor decimal.Decimal) int64 {
	return minor.Round(0).IntPart()
}
