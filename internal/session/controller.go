package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/services/rental-storefront-go/internal/auth"
	"github.com/andreasstove999/ecommerce-system/services/rental-storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/services/rental-storefront-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/services/rental-storefront-go/internal/clock"
	"github.com/andreasstove999/ecommerce-system/services/rental-storefront-go/internal/events"
	"github.com/andreasstove999/ecommerce-system/services/rental-storefront-go/internal/notify"
	"github.com/andreasstove999/ecommerce-system/services/rental-storefront-go/internal/order"
)

const DefaultCheckoutDelay = 1500 * time.Millisecond

type Authenticator interface {
	Authenticate(ctx context.Context, mode auth.Mode, creds auth.Credentials) (auth.User, error)
}

type EventsPublisher interface {
	PublishOrderPlaced(ctx context.Context, meta events.Meta, o order.Order) error
}

// HistoryFunc returns the orders a user already has when they sign in.
type HistoryFunc func(userID string, now time.Time) []order.Order

// Snapshot is a point in time copy of everything the presentation layer renders.
type Snapshot struct {
	Items        []cart.LineItem      `json:"items"`
	ItemCount    int                  `json:"itemCount"`
	Subtotal     int64                `json:"subtotal"`
	User         *auth.User           `json:"user"`
	Orders       []order.Order        `json:"orders"`
	State        State                `json:"state"`
	View         View                 `json:"view"`
	Auth         auth.Form            `json:"auth"`
	PlacingOrder bool                 `json:"placingOrder"`
	Notification *notify.Notification `json:"notification,omitempty"`
}

// Controller owns the cart, the signed in user and the order list of one session.
// All mutations go through its methods, one at a time.
type Controller struct {
	id            string
	authn         Authenticator
	publisher     EventsPublisher
	history       HistoryFunc
	newOrderID    func() string
	checkoutDelay time.Duration
	now           func() time.Time
	logger        *zap.Logger
	tracer        trace.Tracer
	notifier      *notify.Notifier

	mu         sync.Mutex
	cart       *cart.Cart
	user       *auth.User
	orders     []order.Order
	state      State
	view       View
	form       auth.Form
	placing    uint64 // token of the in-flight order, 0 when idle
	tokens     uint64
	generation uint64 // bumped on logout so in-flight work can tell it is stale
	lastActive time.Time

	obsMu     sync.Mutex
	observers map[int]func(Snapshot)
	nextObs   int
}

type Option func(*Controller)

func WithPublisher(p EventsPublisher) Option {
	return func(c *Controller) { c.publisher = p }
}

func WithHistory(h HistoryFunc) Option {
	return func(c *Controller) { c.history = h }
}

func WithCheckoutDelay(d time.Duration) Option {
	return func(c *Controller) { c.checkoutDelay = d }
}

func WithNotificationTTL(d time.Duration) Option {
	return func(c *Controller) { c.notifier = notify.New(d, c.emit) }
}

func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

func WithOrderIDs(next func() string) Option {
	return func(c *Controller) { c.newOrderID = next }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

func WithTracer(t trace.Tracer) Option {
	return func(c *Controller) { c.tracer = t }
}

func New(id string, authn Authenticator, opts ...Option) *Controller {
	c := &Controller{
		id:            id,
		authn:         authn,
		publisher:     events.NopPublisher{},
		newOrderID:    order.NewID,
		checkoutDelay: DefaultCheckoutDelay,
		now:           time.Now,
		logger:        zap.NewNop(),
		tracer:        otel.Tracer("rental-storefront/session"),
		cart:          cart.New(),
		state:         StateBrowsing,
		view:          ViewHome,
		form:          auth.NewForm(),
		observers:     make(map[int]func(Snapshot)),
	}
	c.notifier = notify.New(notify.DefaultTTL, c.emit)
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(zap.String("session_id", id))
	c.lastActive = c.now()
	return c
}

func (c *Controller) ID() string { return c.id }

// Close stops pending notification timers and makes in-flight work inert.
func (c *Controller) Close() {
	c.mu.Lock()
	c.generation++
	c.placing = 0
	c.mu.Unlock()
	c.notifier.Stop()
}

// Touch records activity without changing the session, so reads keep it alive.
func (c *Controller) Touch() {
	c.mu.Lock()
	c.lastActive = c.now()
	c.mu.Unlock()
}

func (c *Controller) LastActive() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastActive
}

// Subscribe registers fn to receive a snapshot after every change.
// fn runs on the goroutine that made the change and must not block.
func (c *Controller) Subscribe(fn func(Snapshot)) (cancel func()) {
	c.obsMu.Lock()
	id := c.nextObs
	c.nextObs++
	c.observers[id] = fn
	c.obsMu.Unlock()

	return func() {
		c.obsMu.Lock()
		delete(c.observers, id)
		c.obsMu.Unlock()
	}
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	s := Snapshot{
		Items:        c.cart.Items(),
		ItemCount:    c.cart.Count(),
		Subtotal:     c.cart.Subtotal(),
		Orders:       append([]order.Order(nil), c.orders...),
		State:        c.state,
		View:         c.view,
		Auth:         c.form,
		PlacingOrder: c.placing != 0,
	}
	if c.user != nil {
		u := *c.user
		s.User = &u
	}
	c.mu.Unlock()

	if n, ok := c.notifier.Current(); ok {
		s.Notification = &n
	}
	return s
}

func (c *Controller) emit() {
	c.obsMu.Lock()
	fns := make([]func(Snapshot), 0, len(c.observers))
	for _, fn := range c.observers {
		fns = append(fns, fn)
	}
	c.obsMu.Unlock()
	if len(fns) == 0 {
		return
	}

	s := c.Snapshot()
	for _, fn := range fns {
		fn(s)
	}
}

// mutate runs fn under the lock, then shows the message fn returned (if any)
// and informs observers.
func (c *Controller) mutate(fn func() string) {
	c.mu.Lock()
	msg := fn()
	c.lastActive = c.now()
	c.mu.Unlock()

	if msg != "" {
		c.notifier.Notify(msg)
		return
	}
	c.emit()
}

// Notify shows a transient message.
func (c *Controller) Notify(msg string) notify.Notification {
	return c.notifier.Notify(msg)
}

func (c *Controller) DismissNotification() {
	c.notifier.Dismiss()
}

// --- cart ---

func (c *Controller) AddToCart(item catalog.Item) cart.LineItem {
	var li cart.LineItem
	c.mutate(func() string {
		li = c.cart.Add(item)
		return fmt.Sprintf("%s added to cart!", item.Title)
	})
	return li
}

func (c *Controller) RemoveFromCart(key catalog.Key) {
	c.mutate(func() string {
		c.cart.Remove(key)
		return ""
	})
}

// UpdateQuantity sets the quantity of a line; q < 1 removes it.
// It reports whether the line existed.
func (c *Controller) UpdateQuantity(key catalog.Key, q int) bool {
	var found bool
	c.mutate(func() string {
		found = c.cart.UpdateQuantity(key, q)
		return ""
	})
	return found
}

// StepQuantity applies the +/- controls: a positive delta increments, anything else decrements.
func (c *Controller) StepQuantity(key catalog.Key, delta int) bool {
	var found bool
	c.mutate(func() string {
		if delta > 0 {
			found = c.cart.Increment(key)
		} else {
			found = c.cart.Decrement(key)
		}
		return ""
	})
	return found
}

func (c *Controller) Cart() []cart.LineItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cart.Items()
}

func (c *Controller) Subtotal() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cart.Subtotal()
}

func (c *Controller) ItemCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cart.Count()
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

func (c *Controller) User() (auth.User, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.user == nil {
		return auth.User{}, false
	}
	return *c.user, true
}

func (c *Controller) Orders() []order.Order {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]order.Order(nil), c.orders...)
}

// --- checkout state machine ---

func (c *Controller) OpenCart() {
	c.mutate(func() string {
		c.state = StateCartOpen
		return ""
	})
}

func (c *Controller) CloseCart() {
	c.mutate(func() string {
		if c.state == StateCartOpen || c.state == StateCheckoutForm {
			c.state = StateBrowsing
		}
		return ""
	})
}

// OpenCheckout moves to the checkout form. Without a user it opens the login form
// and returns needsAuth instead.
func (c *Controller) OpenCheckout() Result {
	var res Result
	c.mutate(func() string {
		switch {
		case c.cart.IsEmpty():
			res = invalid(ReasonEmptyCart)
		case c.user == nil:
			c.form.Show(auth.ModeLogin)
			res = needsAuth()
		default:
			c.state = StateCheckoutForm
			res = okResult(nil)
		}
		return ""
	})
	return res
}

// DefaultCheckoutForm is the form pre-filled for today.
func (c *Controller) DefaultCheckoutForm() order.CheckoutForm {
	return order.DefaultForm(c.now())
}

func (c *Controller) PlaceOrder(ctx context.Context, form order.CheckoutForm) (Result, error) {
	return c.PlaceOrderAsync(ctx, form).Wait(ctx)
}

// PlaceOrderAsync validates synchronously, then commits the order after the checkout delay.
// Cancelling ctx or the returned Pending before the delay elapses leaves the session untouched.
func (c *Controller) PlaceOrderAsync(ctx context.Context, form order.CheckoutForm) *Pending[Result] {
	c.mu.Lock()
	if res, stop := c.precheckOrder(form); stop {
		c.lastActive = c.now()
		c.mu.Unlock()
		c.emit()
		return resolved(res, nil)
	}
	c.tokens++
	token := c.tokens
	c.placing = token
	gen := c.generation
	c.lastActive = c.now()
	c.mu.Unlock()
	c.emit()

	return run(ctx, func(ctx context.Context) (Result, error) {
		ctx, span := c.tracer.Start(ctx, "session.PlaceOrder",
			trace.WithAttributes(attribute.String("session.id", c.id), attribute.Int("order.duration", form.Duration)))
		defer span.End()

		if err := clock.Sleep(ctx, c.checkoutDelay); err != nil {
			c.releasePlacing(token)
			span.SetStatus(codes.Error, "cancelled")
			c.logger.Info("order placement cancelled", zap.Error(err))
			return Result{}, err
		}

		res := c.commitOrder(ctx, token, gen, form)
		span.SetAttributes(attribute.String("result.kind", string(res.Kind)))
		if res.Kind == ResultFailed {
			span.SetStatus(codes.Error, res.Reason)
		}
		return res, nil
	})
}

// precheckOrder reports a result when the order cannot be attempted. Callers hold c.mu.
func (c *Controller) precheckOrder(form order.CheckoutForm) (Result, bool) {
	if c.placing != 0 {
		return invalid(ReasonInFlight), true
	}
	if c.user == nil {
		c.form.Show(auth.ModeLogin)
		return needsAuth(), true
	}
	if c.cart.IsEmpty() {
		return invalid(ReasonEmptyCart), true
	}
	if c.state != StateCheckoutForm {
		return invalid(ReasonNotAtCheckout), true
	}
	if err := form.Validate(c.now()); err != nil {
		var ierr *order.InvalidError
		if errors.As(err, &ierr) {
			return invalid(ierr.Reason), true
		}
		return invalid(err.Error()), true
	}
	return Result{}, false
}

func (c *Controller) releasePlacing(token uint64) {
	c.mu.Lock()
	if c.placing == token {
		c.placing = 0
	}
	c.mu.Unlock()
	c.emit()
}

// commitOrder turns the cart into an order in one step. Every new value is computed
// before the session is touched, so a panic leaves the cart and order list as they were.
func (c *Controller) commitOrder(ctx context.Context, token, gen uint64, form order.CheckoutForm) (res Result) {
	var placed *order.Order

	c.mu.Lock()
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("order placement failed", zap.Any("panic", r))
			res = failed(ReasonGeneric)
			placed = nil
		}
		if c.placing == token {
			c.placing = 0
		}
		c.lastActive = c.now()
		c.mu.Unlock()

		if placed == nil {
			c.emit()
			return
		}
		c.notifier.Notify(fmt.Sprintf("Order placed successfully! Total: ₹%d", placed.TotalAmount))
		c.publish(ctx, *placed)
	}()

	if gen != c.generation || c.user == nil {
		return needsAuth()
	}
	if c.cart.IsEmpty() {
		return invalid(ReasonEmptyCart)
	}

	o := order.New(c.newOrderID(), c.user.ID, c.cart.Items(), form, c.now())
	orders := make([]order.Order, 0, len(c.orders)+1)
	orders = append(orders, o)
	orders = append(orders, c.orders...)

	c.orders = orders
	c.cart.Clear()
	c.state = StateOrderPlaced
	placed = &o

	c.logger.Info("order placed",
		zap.String("order_id", o.ID),
		zap.String("user_id", o.UserID),
		zap.Int64("total_amount", o.TotalAmount),
		zap.Int("duration", o.Duration))
	return okResult(&o)
}

func (c *Controller) publish(ctx context.Context, o order.Order) {
	ctx = context.WithoutCancel(ctx)
	if err := c.publisher.PublishOrderPlaced(ctx, events.MetaFromContext(ctx), o); err != nil {
		c.logger.Warn("publish OrderPlaced failed", zap.String("order_id", o.ID), zap.Error(err))
	}
}

// ContinueShopping leaves the confirmation or history screen.
func (c *Controller) ContinueShopping() {
	c.mutate(func() string {
		c.state = StateBrowsing
		if c.view == ViewOrders {
			c.view = ViewHome
		}
		return ""
	})
}

// ViewOrders shows the order history; it needs a signed in user.
func (c *Controller) ViewOrders() Result {
	return c.Navigate(ViewOrders)
}

// Navigate switches view. Views that need a user open the login form instead.
func (c *Controller) Navigate(v View) Result {
	var res Result
	c.mutate(func() string {
		if v.RequiresAuth() && c.user == nil {
			c.form.Show(auth.ModeLogin)
			res = needsAuth()
			return ""
		}
		c.view = v
		switch {
		case v == ViewOrders:
			c.state = StateOrderHistory
		case c.state == StateOrderHistory || c.state == StateOrderPlaced:
			c.state = StateBrowsing
		}
		res = okResult(nil)
		return ""
	})
	return res
}

// RequestExtension only acknowledges the request; orders never change after placement.
func (c *Controller) RequestExtension(orderID string) error {
	return c.acknowledge(orderID, "Extension request for order %s has been submitted. We will contact you shortly.")
}

func (c *Controller) RequestCancellation(orderID string) error {
	return c.acknowledge(orderID, "Cancellation request for order %s has been submitted.")
}

func (c *Controller) acknowledge(orderID, format string) error {
	c.mu.Lock()
	_, err := order.Find(c.orders, orderID)
	c.mu.Unlock()
	if err != nil {
		return err
	}
	c.notifier.Notify(fmt.Sprintf(format, orderID))
	return nil
}

// --- authentication ---

func (c *Controller) OpenAuth(mode auth.Mode) {
	c.mutate(func() string {
		c.form.Show(mode)
		return ""
	})
}

func (c *Controller) SwitchAuthMode(mode auth.Mode) {
	c.mutate(func() string {
		c.form.Switch(mode)
		return ""
	})
}

func (c *Controller) CloseAuth() {
	c.mutate(func() string {
		c.form.Close()
		return ""
	})
}

func (c *Controller) Login(ctx context.Context, creds auth.Credentials) (auth.User, error) {
	return c.AuthenticateAsync(ctx, auth.ModeLogin, creds).Wait(ctx)
}

func (c *Controller) Signup(ctx context.Context, creds auth.Credentials) (auth.User, error) {
	return c.AuthenticateAsync(ctx, auth.ModeSignup, creds).Wait(ctx)
}

// AuthenticateAsync validates creds synchronously and signs the user in after the
// authenticator responds. Validation errors are kept on the auth form.
func (c *Controller) AuthenticateAsync(ctx context.Context, mode auth.Mode, creds auth.Credentials) *Pending[auth.User] {
	if err := auth.Validate(mode, creds); err != nil {
		c.failAuth(mode, creds, err)
		return resolved(auth.User{}, err)
	}

	return run(ctx, func(ctx context.Context) (auth.User, error) {
		ctx, span := c.tracer.Start(ctx, "session.Authenticate",
			trace.WithAttributes(attribute.String("session.id", c.id), attribute.String("auth.mode", string(mode))))
		defer span.End()

		u, err := c.authn.Authenticate(ctx, mode, creds)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			c.failAuth(mode, creds, err)
			return auth.User{}, err
		}
		c.signIn(mode, u)
		return u, nil
	})
}

func (c *Controller) failAuth(mode auth.Mode, creds auth.Credentials, err error) {
	var verr *auth.ValidationError
	if !errors.As(err, &verr) {
		return
	}
	c.mutate(func() string {
		if c.form.Mode != mode || !c.form.Open {
			c.form.Show(mode)
		}
		creds.Password, creds.ConfirmPassword = "", ""
		c.form.Fail(creds, verr)
		return ""
	})
}

func (c *Controller) signIn(mode auth.Mode, u auth.User) {
	c.mutate(func() string {
		c.user = &u
		c.form.Close()
		if len(c.orders) == 0 && c.history != nil {
			c.orders = c.history(u.ID, c.now())
		}
		c.logger.Info("user signed in", zap.String("user_id", u.ID), zap.String("mode", string(mode)))
		if mode == auth.ModeSignup {
			return fmt.Sprintf("Welcome to Retify, %s!", u.Name)
		}
		return fmt.Sprintf("Welcome back, %s!", u.Name)
	})
}

// Logout forgets the user, their orders and the cart, and leaves pages that need a user.
func (c *Controller) Logout() {
	c.mutate(func() string {
		c.user = nil
		c.orders = nil
		c.cart.Clear()
		c.generation++
		c.placing = 0
		c.form.Close()
		if c.view.RequiresAuth() {
			c.view = ViewHome
		}
		if c.state != StateCartOpen {
			c.state = StateBrowsing
		}
		return "You have been logged out"
	})
}

// HistoryFromCatalog seeds new sign-ins with the sample orders built from items.
func HistoryFromCatalog(items []catalog.Item) HistoryFunc {
	items = append([]catalog.Item(nil), items...)
	return func(userID string, now time.Time) []order.Order {
		return order.SampleHistory(userID, items, now)
	}
}
