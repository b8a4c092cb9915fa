package order

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/andreasstove999/ecommerce-system/services/rental-storefront-go/internal/cart"
)

var ErrNotFound = errors.New("order not found")

type Order struct {
	ID            string          `json:"orderId"`
	UserID        string          `json:"userId"`
	Items         []cart.LineItem `json:"items"`
	Subtotal      int64           `json:"subtotal"`
	TotalAmount   int64           `json:"totalAmount"`
	Duration      int             `json:"duration"`
	StartDate     time.Time       `json:"startDate"`
	EndDate       time.Time       `json:"endDate"`
	Status        Status          `json:"status"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
	Address       string          `json:"address"`
	Instructions  string          `json:"instructions,omitempty"`
	OrderDate     time.Time       `json:"orderDate"`
}

// NewID returns a short random order token such as ORD-1A2B3C4D.
func NewID() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "ORD-" + strings.ToUpper(raw[:8])
}

// Total is Σ(price × quantity × duration).
func Total(items []cart.LineItem, duration int) int64 {
	return cart.Subtotal(items) * int64(duration)
}

func EndDate(start time.Time, duration int) time.Time {
	return start.AddDate(0, duration, 0)
}

// New builds a pending order from a validated form. items is copied.
func New(id, userID string, items []cart.LineItem, form CheckoutForm, now time.Time) Order {
	snapshot := make([]cart.LineItem, len(items))
	copy(snapshot, items)

	return Order{
		ID:            id,
		UserID:        userID,
		Items:         snapshot,
		Subtotal:      cart.Subtotal(snapshot),
		TotalAmount:   Total(snapshot, form.Duration),
		Duration:      form.Duration,
		StartDate:     form.StartDate,
		EndDate:       EndDate(form.StartDate, form.Duration),
		Status:        StatusPending,
		PaymentMethod: form.PaymentMethod,
		Address:       strings.TrimSpace(form.Address),
		Instructions:  strings.TrimSpace(form.Instructions),
		OrderDate:     now,
	}
}

// Find returns the order with id from orders.
func Find(orders []Order, id string) (Order, error) {
	for _, o := range orders {
		if o.ID == id {
			return o, nil
		}
	}
	return Order{}, ErrNotFound
}
