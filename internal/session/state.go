package session

import (
	"fmt"
	"strings"

	"github.com/andreasstove999/ecommerce-system/services/rental-storefront-go/internal/order"
)

// State is the position of a session in the checkout flow.
type State string

const (
	StateBrowsing     State = "browsing"
	StateCartOpen     State = "cart-open"
	StateCheckoutForm State = "checkout-form"
	StateOrderPlaced  State = "order-placed"
	StateOrderHistory State = "order-history"
)

// View is the page the shopper is looking at.
type View string

const (
	ViewHome        View = "home"
	ViewProperties  View = "properties"
	ViewElectronics View = "electronics"
	ViewVehicles    View = "vehicles"
	ViewAbout       View = "about"
	ViewOrders      View = "orders"
	ViewProfile     View = "profile"
)

var views = []View{ViewHome, ViewProperties, ViewElectronics, ViewVehicles, ViewAbout, ViewOrders, ViewProfile}

func ParseView(s string) (View, error) {
	in := View(strings.ToLower(strings.TrimSpace(s)))
	for _, v := range views {
		if v == in {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown view %q", s)
}

func (v View) RequiresAuth() bool {
	return v == ViewOrders || v == ViewProfile
}

type ResultKind string

const (
	ResultOK        ResultKind = "ok"
	ResultNeedsAuth ResultKind = "needsAuth"
	ResultInvalid   ResultKind = "invalid"
	ResultFailed    ResultKind = "failed"
)

// Result is the outcome of a checkout or navigation step. Order is set only
// for a successful PlaceOrder; Reason only for invalid and failed results.
type Result struct {
	Kind   ResultKind   `json:"kind"`
	Order  *order.Order `json:"order,omitempty"`
	Reason string       `json:"reason,omitempty"`
}

func (r Result) OK() bool { return r.Kind == ResultOK }

func okResult(o *order.Order) Result { return Result{Kind: ResultOK, Order: o} }

func needsAuth() Result { return Result{Kind: ResultNeedsAuth} }

func invalid(reason string) Result { return Result{Kind: ResultInvalid, Reason: reason} }

func failed(reason string) Result { return Result{Kind: ResultFailed, Reason: reason} }

const (
	ReasonEmptyCart     = "Your cart is empty"
	ReasonNotAtCheckout = "Open checkout before placing an order"
	ReasonInFlight      = "An order is already being placed"
	ReasonGeneric       = "Something went wrong while placing your order. Please try again."
)
