// Package trading provides order quantity calculations.
package trading

import (
	"errors"

	"github.com/shopspring/decimal"
)

// QuantityPlaces is the fixed precision quantities are truncated to before submission.
const QuantityPlaces = 8

var (
	ErrInsufficientQuantity = errors.New("quantity is not positive after step size adjustment")
	ErrInsufficientBalance  = errors.New("quote balance is not positive")
	ErrInvalidStep          = errors.New("step size must be positive")
	ErrInvalidPrice         = errors.New("price must be positive")
)

// FloorToStep rounds q down to a multiple of step, then truncates to QuantityPlaces.
// Non-positive quantities come back as zero. Applying it twice is a no-op.
func FloorToStep(q, step decimal.Decimal) (decimal.Decimal, error) {
	if !step.IsPositive() {
		return decimal.Zero, ErrInvalidStep
	}
	if !q.IsPositive() {
		return decimal.Zero, nil
	}
	units, _ := q.QuoRem(step, 0)
	return units.Mul(step).Truncate(QuantityPlaces), nil
}

// SizeByRisk converts a share of the quote balance into a base quantity at price,
// floored to step. The result never exceeds balance*riskFraction/price.
func SizeByRisk(balance, riskFraction, price, step decimal.Decimal) (decimal.Decimal, error) {
	if !step.IsPositive() {
		return decimal.Zero, ErrInvalidStep
	}
	if !price.IsPositive() {
		return decimal.Zero, ErrInvalidPrice
	}
	if !balance.IsPositive() {
		return decimal.Zero, ErrInsufficientBalance
	}
	budget := balance.Mul(riskFraction)
	if !budget.IsPositive() {
		return decimal.Zero, ErrInsufficientQuantity
	}
	// floor(budget / (price*step)) avoids rounding the intermediate quotient up.
	units, _ := budget.QuoRem(price.Mul(step), 0)
	qty := units.Mul(step).Truncate(QuantityPlaces)
	if !qty.IsPositive() {
		return decimal.Zero, ErrInsufficientQuantity
	}
	return qty, nil
}
