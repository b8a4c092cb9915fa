package order

import (
	"fmt"
	"strings"
	"time"
)

const (
	MinDuration = 1
	MaxDuration = 12
)

type CheckoutForm struct {
	Duration      int           `json:"duration"`
	StartDate     time.Time     `json:"startDate"`
	Address       string        `json:"address"`
	Instructions  string        `json:"instructions"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
}

// InvalidError explains why a checkout form cannot be submitted.
type InvalidError struct {
	Field  string
	Reason string
}

func (e *InvalidError) Error() string {
	return e.Reason
}

// DefaultForm is the form as first shown: one month from today, paid by card.
func DefaultForm(now time.Time) CheckoutForm {
	return CheckoutForm{
		Duration:      MinDuration,
		StartDate:     startOfDay(now),
		PaymentMethod: PaymentCard,
	}
}

// Validate checks the form against the current time. Dates are compared by calendar day
// in now's location.
func (f CheckoutForm) Validate(now time.Time) error {
	if f.Duration < MinDuration || f.Duration > MaxDuration {
		return &InvalidError{
			Field:  "duration",
			Reason: fmt.Sprintf("Rental duration must be between %d and %d months", MinDuration, MaxDuration),
		}
	}
	if f.StartDate.IsZero() {
		return &InvalidError{Field: "startDate", Reason: "Please choose a start date"}
	}
	if startOfDay(f.StartDate.In(now.Location())).Before(startOfDay(now)) {
		return &InvalidError{Field: "startDate", Reason: "Start date cannot be in the past"}
	}
	if strings.TrimSpace(f.Address) == "" {
		return &InvalidError{Field: "address", Reason: "Please enter a delivery address"}
	}
	if !f.PaymentMethod.Valid() {
		return &InvalidError{Field: "paymentMethod", Reason: "Please choose a payment method"}
	}
	return nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
