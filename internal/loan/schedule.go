// Package loan computes repayment schedules for fixed-rate loans using the
// standard annuity formula. All amounts are integer cents; rounding drift
// is absorbed by the final installment.
package loan

import (
	"fmt"
	"math"
	"time"
)

// Installment is one row of a repayment schedule
type Installment struct {
	Number    int       `json:"number"`
	DueDate   time.Time `json:"dueDate"`
	Payment   int64     `json:"payment"`
	Principal int64     `json:"principal"`
	Interest  int64     `json:"interest"`
	Balance   int64     `json:"balance"` // remaining principal after payment
}

// MonthlyPayment returns the fixed monthly payment in cents for a loan of
// the given principal (cents), annual rate (basis points) and term (months).
func MonthlyPayment(principal int64, annualRateBps, termMonths int) (int64, error) {
	if principal <= 0 {
		return 0, fmt.Errorf("principal must be positive")
	}
	if termMonths <= 0 {
		return 0, fmt.Errorf("term must be positive")
	}
	if annualRateBps < 0 {
		return 0, fmt.Errorf("rate must not be negative")
	}

	if annualRateBps == 0 {
		// Interest-free: split evenly, rounding up so the final installment
		// is never larger than the others.
		return int64(math.Ceil(float64(principal) / float64(termMonths))), nil
	}

	r := float64(annualRateBps) / 10000.0 / 12.0
	p := float64(principal)
	payment := p * r / (1 - math.Pow(1+r, -float64(termMonths)))
	return int64(math.Round(payment)), nil
}

// Schedule returns the full repayment schedule starting one month after
// start. The final installment pays off the exact remaining balance.
func Schedule(principal int64, annualRateBps, termMonths int, start time.Time) ([]Installment, error) {
	payment, err := MonthlyPayment(principal, annualRateBps, termMonths)
	if err != nil {
		return nil, err
	}

	r := float64(annualRateBps) / 10000.0 / 12.0
	balance := principal
	schedule := make([]Installment, 0, termMonths)

	for i := 1; i <= termMonths; i++ {
		interest := int64(math.Round(float64(balance) * r))
		principalPart := payment - interest
		if i == termMonths || principalPart > balance {
			principalPart = balance
		}

		balance -= principalPart
		schedule = append(schedule, Installment{
			Number:    i,
			DueDate:   start.AddDate(0, i, 0),
			Payment:   principalPart + interest,
			Principal: principalPart,
			Interest:  interest,
			Balance:   balance,
		})

		if balance == 0 {
			break
		}
	}

	return schedule, nil
}
