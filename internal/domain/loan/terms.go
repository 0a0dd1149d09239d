package loan

import (
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// TotalToPay returns floor(amount × (1 + rate/100)).
func TotalToPay(amount int64, rate int) int64 {
	factor := decimal.NewFromInt(int64(rate)).Div(hundred).Add(decimal.NewFromInt(1))
	return decimal.NewFromInt(amount).Mul(factor).Floor().IntPart()
}

// InstallmentAmount returns ceil(total / n). n must be positive.
func InstallmentAmount(total int64, n int) int64 {
	return decimal.NewFromInt(total).Div(decimal.NewFromInt(int64(n))).Ceil().IntPart()
}

func ValidateAmount(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if amount > MaxAmount {
		return ErrAmountTooLarge
	}
	return nil
}

func ValidateTerms(rate, termDays, installments int) error {
	if rate < 0 || rate > MaxInterestRate {
		return ErrInterestRange
	}
	if termDays < MinTermDays || termDays > MaxTermDays {
		return ErrTermRange
	}
	if installments < 0 || installments > MaxInstallments {
		return ErrInstallmentsRange
	}
	return nil
}

func DeadlineFrom(now time.Time, termDays int) time.Time {
	return now.UTC().Add(time.Duration(termDays) * 24 * time.Hour)
}
