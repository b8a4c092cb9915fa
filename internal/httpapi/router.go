package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/services/rental-storefront-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/services/rental-storefront-go/internal/session"
)

type Deps struct {
	Logger           *zap.Logger
	Catalog          catalog.Provider
	Sessions         *session.Registry
	SessionCookie    string
	CORSAllowOrigins []string
}

func NewRouter(d Deps) http.Handler {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.SessionCookie == "" {
		d.SessionCookie = "retify_session"
	}

	cat := NewCatalogHandler(d.Catalog, d.Logger)
	sess := NewSessionHandler(d.Catalog, d.Logger)
	mkt := NewMarketingHandler(d.Logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(CorrelationID)
	r.Use(RequestLogger(d.Logger))
	r.Use(Recover(d.Logger))
	r.Use(CORS(d.CORSAllowOrigins))

	r.Get("/health", health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/catalog/{category}", cat.List)
		r.Get("/catalog/{category}/featured", cat.Featured)
		r.Get("/catalog/{category}/{id}", cat.Details)
		r.Get("/search", cat.Search)

		r.Get("/stats", mkt.Stats)
		r.Get("/reviews", mkt.Reviews)
		r.Post("/contact", mkt.Contact)

		r.Group(func(r chi.Router) {
			r.Use(Sessions(d.Sessions, d.SessionCookie))

			r.Get("/session", sess.Snapshot)
			r.Delete("/session/notification", sess.DismissNotification)

			r.Post("/cart/items", sess.AddItem)
			r.Patch("/cart/items/{category}/{id}", sess.UpdateItem)
			r.Delete("/cart/items/{category}/{id}", sess.RemoveItem)
			r.Post("/cart/open", sess.OpenCart)
			r.Post("/cart/close", sess.CloseCart)

			r.Post("/checkout/open", sess.OpenCheckout)
			r.Post("/checkout", sess.PlaceOrder)
			r.Post("/checkout/continue", sess.ContinueShopping)

			r.Post("/auth/login", sess.Login)
			r.Post("/auth/signup", sess.Signup)
			r.Post("/auth/mode", sess.SwitchAuthMode)
			r.Post("/auth/close", sess.CloseAuth)
			r.Post("/auth/logout", sess.Logout)
			r.Get("/auth/user", sess.CurrentUser)

			r.Get("/orders", sess.Orders)
			r.Post("/orders/{orderId}/extend", sess.ExtendOrder)
			r.Post("/orders/{orderId}/cancel", sess.CancelOrder)

			r.Post("/navigate", sess.Navigate)
		})
	})

	return r
}

func health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "rental-storefront"})
}
