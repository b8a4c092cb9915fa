package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/services/rental-storefront-go/internal/auth"
	"github.com/andreasstove999/ecommerce-system/services/rental-storefront-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/services/rental-storefront-go/internal/order"
	"github.com/andreasstove999/ecommerce-system/services/rental-storefront-go/internal/session"
)

const (
	dateLayout     = "2006-01-02"
	defaultTimeout = 10 * time.Second
)

// SessionHandler exposes the session controller of the calling browser.
type SessionHandler struct {
	catalog catalog.Provider
	logger  *zap.Logger
	timeout time.Duration
	now     func() time.Time
}

func NewSessionHandler(provider catalog.Provider, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{catalog: provider, logger: logger, timeout: defaultTimeout, now: time.Now}
}

func (h *SessionHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sessionFrom(r.Context()).Snapshot())
}

// --- cart ---

type addItemRequest struct {
	Category string `json:"category"`
	ID       int    `json:"id"`
}

func (h *SessionHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	cat, err := catalog.ParseCategory(req.Category)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid item type")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	it, err := h.catalog.Get(ctx, cat, req.ID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Item not found")
			return
		}
		h.logger.Error("load item for cart failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load item")
		return
	}

	ctrl := sessionFrom(r.Context())
	li := ctrl.AddToCart(it)
	writeJSON(w, http.StatusCreated, map[string]any{
		"item":    li,
		"session": ctrl.Snapshot(),
	})
}

type updateItemRequest struct {
	Quantity *int `json:"quantity"`
	Delta    int  `json:"delta"`
}

// UpdateItem sets {"quantity": n} or steps with {"delta": ±1}. A quantity below 1
// removes the line and, like RemoveItem, succeeds when the line is already gone.
func (h *SessionHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	key, ok := cartKey(w, r)
	if !ok {
		return
	}
	var req updateItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctrl := sessionFrom(r.Context())
	var found bool
	switch {
	case req.Quantity != nil && *req.Quantity < 1:
		ctrl.RemoveFromCart(key)
		found = true
	case req.Quantity != nil:
		found = ctrl.UpdateQuantity(key, *req.Quantity)
	case req.Delta != 0:
		found = ctrl.StepQuantity(key, req.Delta)
	default:
		writeError(w, http.StatusBadRequest, "quantity or delta required")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "item not in cart")
		return
	}
	writeJSON(w, http.StatusOK, ctrl.Snapshot())
}

func (h *SessionHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	key, ok := cartKey(w, r)
	if !ok {
		return
	}
	sessionFrom(r.Context()).RemoveFromCart(key)
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) OpenCart(w http.ResponseWriter, r *http.Request) {
	ctrl := sessionFrom(r.Context())
	ctrl.OpenCart()
	writeJSON(w, http.StatusOK, ctrl.Snapshot())
}

func (h *SessionHandler) CloseCart(w http.ResponseWriter, r *http.Request) {
	ctrl := sessionFrom(r.Context())
	ctrl.CloseCart()
	writeJSON(w, http.StatusOK, ctrl.Snapshot())
}

// --- checkout ---

func (h *SessionHandler) OpenCheckout(w http.ResponseWriter, r *http.Request) {
	ctrl := sessionFrom(r.Context())
	res := ctrl.OpenCheckout()
	if !res.OK() {
		writeResult(w, res)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"form":    ctrl.DefaultCheckoutForm(),
		"session": ctrl.Snapshot(),
	})
}

type checkoutRequest struct {
	Duration      int    `json:"duration"`
	StartDate     string `json:"startDate"`
	Address       string `json:"address"`
	Instructions  string `json:"instructions"`
	PaymentMethod string `json:"paymentMethod"`
}

func (h *SessionHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	form := order.CheckoutForm{
		Duration:      req.Duration,
		Address:       req.Address,
		Instructions:  req.Instructions,
		PaymentMethod: order.PaymentMethod(strings.ToLower(strings.TrimSpace(req.PaymentMethod))),
	}
	if s := strings.TrimSpace(req.StartDate); s != "" {
		start, err := time.ParseInLocation(dateLayout, s, h.now().Location())
		if err != nil {
			writeError(w, http.StatusBadRequest, "startDate must be YYYY-MM-DD")
			return
		}
		form.StartDate = start
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	res, err := sessionFrom(ctx).PlaceOrder(ctx, form)
	if err != nil {
		h.logger.Warn("place order abandoned", zap.Error(err))
		writeError(w, http.StatusGatewayTimeout, "order placement timed out")
		return
	}
	if !res.OK() {
		writeResult(w, res)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"order":   res.Order,
		"message": sessionFrom(ctx).Snapshot().Notification,
	})
}

func (h *SessionHandler) ContinueShopping(w http.ResponseWriter, r *http.Request) {
	ctrl := sessionFrom(r.Context())
	ctrl.ContinueShopping()
	writeJSON(w, http.StatusOK, ctrl.Snapshot())
}

// --- auth ---

func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	h.authenticate(w, r, auth.ModeLogin)
}

func (h *SessionHandler) Signup(w http.ResponseWriter, r *http.Request) {
	h.authenticate(w, r, auth.ModeSignup)
}

func (h *SessionHandler) authenticate(w http.ResponseWriter, r *http.Request, mode auth.Mode) {
	var creds auth.Credentials
	if err := decodeJSON(w, r, &creds); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	ctrl := sessionFrom(ctx)
	var (
		u   auth.User
		err error
	)
	if mode == auth.ModeSignup {
		u, err = ctrl.Signup(ctx, creds)
	} else {
		u, err = ctrl.Login(ctx, creds)
	}
	if err != nil {
		var verr *auth.ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
				"error": verr.Message,
				"field": verr.Field,
			})
			return
		}
		h.logger.Warn("authentication failed", zap.String("mode", string(mode)), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "authentication failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "user": u})
}

type modeRequest struct {
	Mode string `json:"mode"`
}

func (h *SessionHandler) SwitchAuthMode(w http.ResponseWriter, r *http.Request) {
	var req modeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	mode, err := auth.ParseMode(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ctrl := sessionFrom(r.Context())
	if ctrl.Snapshot().Auth.Open {
		ctrl.SwitchAuthMode(mode)
	} else {
		ctrl.OpenAuth(mode)
	}
	writeJSON(w, http.StatusOK, ctrl.Snapshot().Auth)
}

func (h *SessionHandler) CloseAuth(w http.ResponseWriter, r *http.Request) {
	ctrl := sessionFrom(r.Context())
	ctrl.CloseAuth()
	writeJSON(w, http.StatusOK, ctrl.Snapshot().Auth)
}

func (h *SessionHandler) DismissNotification(w http.ResponseWriter, r *http.Request) {
	sessionFrom(r.Context()).DismissNotification()
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sessionFrom(r.Context()).Logout()
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *SessionHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	u, ok := sessionFrom(r.Context()).User()
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not logged in")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// --- orders & navigation ---

func (h *SessionHandler) Orders(w http.ResponseWriter, r *http.Request) {
	ctrl := sessionFrom(r.Context())
	if _, ok := ctrl.User(); !ok {
		writeError(w, http.StatusUnauthorized, "Not logged in")
		return
	}
	writeJSON(w, http.StatusOK, ctrl.Orders())
}

func (h *SessionHandler) ExtendOrder(w http.ResponseWriter, r *http.Request) {
	h.orderRequest(w, r, (*session.Controller).RequestExtension)
}

func (h *SessionHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	h.orderRequest(w, r, (*session.Controller).RequestCancellation)
}

func (h *SessionHandler) orderRequest(w http.ResponseWriter, r *http.Request, fn func(*session.Controller, string) error) {
	ctrl := sessionFrom(r.Context())
	if err := fn(ctrl, chi.URLParam(r, "orderId")); err != nil {
		if errors.Is(err, order.ErrNotFound) {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "request failed")
		return
	}
	writeJSON(w, http.StatusAccepted, ctrl.Snapshot().Notification)
}

type navigateRequest struct {
	View string `json:"view"`
}

func (h *SessionHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	var req navigateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	view, err := session.ParseView(req.View)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ctrl := sessionFrom(r.Context())
	if res := ctrl.Navigate(view); !res.OK() {
		writeResult(w, res)
		return
	}
	writeJSON(w, http.StatusOK, ctrl.Snapshot())
}

func cartKey(w http.ResponseWriter, r *http.Request) (catalog.Key, bool) {
	cat, err := catalog.ParseCategory(chi.URLParam(r, "category"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid item type")
		return catalog.Key{}, false
	}
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return catalog.Key{}, false
	}
	return catalog.Key{Category: cat, ID: id}, true
}

// writeResult reports a rejected session step.
func writeResult(w http.ResponseWriter, res session.Result) {
	status := http.StatusUnprocessableEntity
	msg := res.Reason
	switch res.Kind {
	case session.ResultNeedsAuth:
		status, msg = http.StatusUnauthorized, "Please login to continue"
	case session.ResultFailed:
		status = http.StatusInternalServerError
	case session.ResultInvalid:
		if res.Reason == session.ReasonInFlight {
			status = http.StatusConflict
		}
	}
	writeJSON(w, status, map[string]string{
		"error": msg,
		"kind":  string(res.Kind),
	})
}
