package order

import (
	"time"

	"github.com/andreasstove999/ecommerce-system/services/rental-storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/services/rental-storefront-go/internal/catalog"
)

// SampleHistory builds the demo order history shown to a freshly signed in user:
// an active rental that started last month and a completed one from last year.
// It needs at least two items; with fewer it returns nil.
func SampleHistory(userID string, items []catalog.Item, now time.Time) []Order {
	if len(items) < 2 {
		return nil
	}

	active := CheckoutForm{
		Duration:      6,
		StartDate:     startOfDay(now.AddDate(0, -1, 0)),
		Address:       "12 MG Road, Bengaluru",
		PaymentMethod: PaymentUPI,
	}
	completed := CheckoutForm{
		Duration:      3,
		StartDate:     startOfDay(now.AddDate(-1, 0, 0)),
		Address:       "12 MG Road, Bengaluru",
		PaymentMethod: PaymentCard,
	}

	a := New(NewID(), userID, []cart.LineItem{{Item: items[0], Quantity: 1}}, active, active.StartDate.AddDate(0, 0, -2))
	a.Status = StatusActive
	c := New(NewID(), userID, []cart.LineItem{{Item: items[1], Quantity: 1}}, completed, completed.StartDate.AddDate(0, 0, -3))
	c.Status = StatusCompleted

	return []Order{a, c}
}
