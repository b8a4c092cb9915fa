package order

import (
	"fmt"
	"slices"
	"strings"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

type PaymentMethod string

const (
	PaymentCard       PaymentMethod = "card"
	PaymentUPI        PaymentMethod = "upi"
	PaymentNetBanking PaymentMethod = "net-banking"
	PaymentCOD        PaymentMethod = "cod"
)

var paymentMethods = []PaymentMethod{PaymentCard, PaymentUPI, PaymentNetBanking, PaymentCOD}

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	in := strings.ToLower(strings.TrimSpace(s))
	for _, pm := range paymentMethods {
		if string(pm) == in {
			return pm, nil
		}
	}
	return "", fmt.Errorf("unknown payment method %q", s)
}

// Valid reports whether pm is one of the canonical method values. Use ParsePaymentMethod
// for user input.
func (pm PaymentMethod) Valid() bool {
	return slices.Contains(paymentMethods, pm)
}

// Label is the human readable name shown on receipts.
func (pm PaymentMethod) Label() string {
	switch pm {
	case PaymentCard:
		return "Credit/Debit Card"
	case PaymentUPI:
		return "UPI"
	case PaymentNetBanking:
		return "Net Banking"
	case PaymentCOD:
		return "Cash on Delivery"
	default:
		return string(pm)
	}
}
