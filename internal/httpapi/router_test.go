package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/andreasstove999/ecommerce-system/services/rental-storefront-go/internal/auth"
	"github.com/andreasstove999/ecommerce-system/services/rental-storefront-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/services/rental-storefront-go/internal/session"
)

func newTestRouter(t *testing.T) (http.Handler, *session.Registry) {
	t.Helper()
	logger := zaptest.NewLogger(t)

	items, err := catalog.LoadStatic()
	require.NoError(t, err)
	provider := catalog.NewStaticProvider(items)

	authn := auth.NewAuthenticator(0)
	reg := session.NewRegistry(func(id string) *session.Controller {
		return session.New(id, authn,
			session.WithCheckoutDelay(0),
			session.WithLogger(logger))
	}, time.Hour, logger)

	return NewRouter(Deps{
		Logger:           logger,
		Catalog:          provider,
		Sessions:         reg,
		CORSAllowOrigins: []string{"http://localhost:3000"},
	}), reg
}

type client struct {
	t    *testing.T
	srv  *httptest.Server
	http *http.Client
}

func newClient(t *testing.T) (*client, *session.Registry) {
	t.Helper()
	h, reg := newTestRouter(t)
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &client{t: t, srv: srv, http: &http.Client{Jar: jar, Timeout: 5 * time.Second}}, reg
}

func (c *client) do(method, path string, body any) (*http.Response, map[string]any) {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, c.srv.URL+path, &buf)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	var out map[string]any
	if resp.StatusCode != http.StatusNoContent {
		var raw json.RawMessage
		require.NoError(c.t, json.NewDecoder(resp.Body).Decode(&raw))
		_ = json.Unmarshal(raw, &out)
	}
	return resp, out
}

func TestHealth(t *testing.T) {
	h, _ := newTestRouter(t)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"status":"ok"`)
}

func TestCatalogList(t *testing.T) {
	h, _ := newTestRouter(t)

	tests := map[string]struct {
		path      string
		wantCode  int
		wantCount int
	}{
		"all vehicles":      {path: "/api/catalog/vehicles", wantCode: http.StatusOK, wantCount: 16},
		"singular name":     {path: "/api/catalog/vehicle", wantCode: http.StatusOK, wantCount: 16},
		"all properties":    {path: "/api/catalog/properties?filter=all", wantCode: http.StatusOK, wantCount: 12},
		"no search matches": {path: "/api/catalog/electronics?q=zz-no-match", wantCode: http.StatusOK, wantCount: 0},
		"unknown category":  {path: "/api/catalog/boats", wantCode: http.StatusBadRequest},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.Equal(t, tt.wantCode, rr.Code)
			if tt.wantCode != http.StatusOK {
				assert.Contains(t, rr.Body.String(), `"error"`)
				return
			}

			var body listResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCount, body.Count)
			assert.Len(t, body.Items, tt.wantCount)
			assert.NotNil(t, body.Items)
		})
	}
}

func TestCatalogDetails(t *testing.T) {
	h, _ := newTestRouter(t)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/catalog/vehicles/1", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var it catalog.Item
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &it))
	assert.Equal(t, 1, it.ID)
	assert.Equal(t, catalog.CategoryVehicle, it.Category)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/catalog/vehicles/999", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/catalog/vehicles/abc", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCatalogFeatured(t *testing.T) {
	h, _ := newTestRouter(t)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/catalog/properties/featured", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var items []catalog.Item
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &items))
	for _, it := range items {
		assert.True(t, it.Featured)
	}
}

func TestSearch(t *testing.T) {
	h, _ := newTestRouter(t)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/search?q=yamaha&category=vehicles", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var results map[string][]catalog.Item
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &results))
	assert.Empty(t, results["properties"])
	assert.Empty(t, results["electronics"])
	require.NotEmpty(t, results["vehicles"])
	for _, it := range results["vehicles"] {
		assert.Contains(t, it.Title+it.Brand, "Yamaha")
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/search?category=boats", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestMarketing(t *testing.T) {
	h, _ := newTestRouter(t)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"total_customers":50000,"verified_listings":15000,"cities":25,"rating":4.8}`, rr.Body.String())

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/reviews", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var got []Review
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Len(t, got, 3)
	assert.Equal(t, "Rahul Sharma", got[0].Name)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/contact", bytes.NewBufferString(`{"name":"A"}`)))
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestCheckoutFlow(t *testing.T) {
	c, reg := newClient(t)

	resp, body := c.do(http.MethodPost, "/api/cart/items", map[string]any{"category": "vehicles", "id": 1})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotEmpty(t, resp.Cookies())
	assert.Equal(t, 1, reg.Len())

	resp, _ = c.do(http.MethodPost, "/api/cart/items", map[string]any{"category": "vehicles", "id": 1})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, 1, reg.Len(), "cookie reuses the session")

	resp, body = c.do(http.MethodPost, "/api/checkout/open", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "needsAuth", body["kind"])

	resp, body = c.do(http.MethodPost, "/api/auth/login", auth.Credentials{Email: "neha@example.com"})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "Please enter your password", body["error"])

	resp, body = c.do(http.MethodPost, "/api/auth/login", auth.Credentials{Email: "neha@example.com", Password: "secret"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])

	resp, _ = c.do(http.MethodGet, "/api/auth/user", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = c.do(http.MethodPost, "/api/checkout", checkoutRequest{
		Duration: 2, StartDate: time.Now().Format(dateLayout), Address: "7 Lake View", PaymentMethod: "upi",
	})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode, "checkout form not opened yet")

	resp, body = c.do(http.MethodPost, "/api/checkout/open", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotNil(t, body["form"])

	resp, body = c.do(http.MethodPost, "/api/checkout", checkoutRequest{
		Duration: 13, StartDate: time.Now().Format(dateLayout), Address: "7 Lake View", PaymentMethod: "upi",
	})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "Rental duration must be between 1 and 12 months", body["error"])

	resp, _ = c.do(http.MethodPost, "/api/checkout", checkoutRequest{Duration: 2, StartDate: "10/03/2026"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = c.do(http.MethodPost, "/api/checkout", checkoutRequest{
		Duration: 2, StartDate: time.Now().Format(dateLayout), Address: "7 Lake View", PaymentMethod: "upi",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	placed, ok := body["order"].(map[string]any)
	require.True(t, ok)
	orderID, _ := placed["orderId"].(string)
	require.NotEmpty(t, orderID)

	resp, body = c.do(http.MethodGet, "/api/session", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "order-placed", body["state"])
	assert.EqualValues(t, 0, body["itemCount"])

	resp, _ = c.do(http.MethodPost, "/api/orders/"+orderID+"/extend", nil)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	resp, _ = c.do(http.MethodPost, "/api/orders/ORD-NOPE/cancel", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = c.do(http.MethodPost, "/api/auth/logout", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = c.do(http.MethodGet, "/api/orders", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp, _ = c.do(http.MethodGet, "/api/auth/user", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCartEndpoints(t *testing.T) {
	c, _ := newClient(t)

	resp, _ := c.do(http.MethodPost, "/api/cart/items", map[string]any{"category": "electronics", "id": 2})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := c.do(http.MethodPatch, "/api/cart/items/electronics/2", map[string]any{"quantity": 3})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 3, body["itemCount"])

	resp, body = c.do(http.MethodPatch, "/api/cart/items/electronics/2", map[string]any{"delta": -1})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 2, body["itemCount"])

	resp, _ = c.do(http.MethodPatch, "/api/cart/items/vehicles/2", map[string]any{"quantity": 1})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = c.do(http.MethodPatch, "/api/cart/items/vehicles/2", map[string]any{"quantity": 0})
	require.Equal(t, http.StatusOK, resp.StatusCode, "zero quantity on an absent line is a removal")
	assert.EqualValues(t, 2, body["itemCount"])

	resp, _ = c.do(http.MethodPost, "/api/cart/items", map[string]any{"category": "electronics", "id": 999})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = c.do(http.MethodPatch, "/api/cart/items/electronics/2", map[string]any{"quantity": 0})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 0, body["itemCount"])

	resp, _ = c.do(http.MethodDelete, "/api/cart/items/electronics/2", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = c.do(http.MethodPatch, "/api/cart/items/electronics/2", map[string]any{"quantity": -3})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = c.do(http.MethodPost, "/api/cart/open", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "cart-open", body["state"])

	resp, body = c.do(http.MethodPost, "/api/checkout/open", nil)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, session.ReasonEmptyCart, body["error"])
}

func TestNavigate(t *testing.T) {
	c, _ := newClient(t)

	resp, body := c.do(http.MethodPost, "/api/navigate", map[string]string{"view": "orders"})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "needsAuth", body["kind"])

	resp, body = c.do(http.MethodPost, "/api/navigate", map[string]string{"view": "vehicles"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "vehicles", body["view"])

	resp, _ = c.do(http.MethodPost, "/api/navigate", map[string]string{"view": "moon"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = c.do(http.MethodPost, "/api/auth/mode", map[string]string{"mode": "signup"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "signup", body["mode"])
	assert.Equal(t, true, body["open"])
}

func TestWriteResult(t *testing.T) {
	tests := map[string]struct {
		res  session.Result
		want int
	}{
		"needs auth": {res: session.Result{Kind: session.ResultNeedsAuth}, want: http.StatusUnauthorized},
		"invalid":    {res: session.Result{Kind: session.ResultInvalid, Reason: "Please enter a delivery address"}, want: http.StatusUnprocessableEntity},
		"in flight":  {res: session.Result{Kind: session.ResultInvalid, Reason: session.ReasonInFlight}, want: http.StatusConflict},
		"failed":     {res: session.Result{Kind: session.ResultFailed, Reason: session.ReasonGeneric}, want: http.StatusInternalServerError},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			writeResult(rr, tt.res)
			assert.Equal(t, tt.want, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
		})
	}
}

func TestCORSAndCorrelation(t *testing.T) {
	h, _ := newTestRouter(t)

	t.Run("preflight from allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/cart/items", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Equal(t, "http://localhost:3000", rr.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("other origin gets no CORS headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", "https://evil.example")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("correlation id is echoed or generated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set(HeaderCorrelationID, "corr-42")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		assert.Equal(t, "corr-42", rr.Header().Get(HeaderCorrelationID))

		rr = httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.NotEmpty(t, rr.Header().Get(HeaderCorrelationID))
	})
}

func TestRecover(t *testing.T) {
	h := Recover(zaptest.NewLogger(t))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rr.Body.String())
}

func TestSessions_UnknownCookieStartsFreshSession(t *testing.T) {
	h, reg := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
	req.AddCookie(&http.Cookie{Name: "retify_session", Value: "expired-id"})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, reg.Len())
	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.NotEqual(t, "expired-id", cookies[0].Value)
}

func TestSessions_ReadRequestRefreshesActivity(t *testing.T) {
	logger := zaptest.NewLogger(t)
	items, err := catalog.LoadStatic()
	require.NoError(t, err)

	now := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	reg := session.NewRegistry(func(id string) *session.Controller {
		return session.New(id, auth.NewAuthenticator(0), session.WithClock(func() time.Time { return now }))
	}, 30*time.Minute, logger)
	h := NewRouter(Deps{Logger: logger, Catalog: catalog.NewStaticProvider(items), Sessions: reg})

	ctrl := reg.Create()
	now = now.Add(25 * time.Minute)

	req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
	req.AddCookie(&http.Cookie{Name: "retify_session", Value: ctrl.ID()})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	assert.Equal(t, now, ctrl.LastActive())
	assert.Equal(t, 0, reg.Evict(now.Add(10*time.Minute)))
	assert.Equal(t, 1, reg.Len())
}
