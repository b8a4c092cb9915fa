package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/services/rental-storefront-go/internal/clock"
)

type User struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Phone    string    `json:"phone,omitempty"`
	JoinDate time.Time `json:"joinDate"`
}

// Authenticator is a mock identity backend: every request that passes validation
// succeeds after an artificial delay.
type Authenticator struct {
	delay  time.Duration
	now    func() time.Time
	logger *zap.Logger
}

type Option func(*Authenticator)

func WithClock(now func() time.Time) Option {
	return func(a *Authenticator) { a.now = now }
}

func WithLogger(logger *zap.Logger) Option {
	return func(a *Authenticator) { a.logger = logger }
}

func NewAuthenticator(delay time.Duration, opts ...Option) *Authenticator {
	a := &Authenticator{delay: delay, now: time.Now, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Authenticator) Login(ctx context.Context, creds Credentials) (User, error) {
	return a.authenticate(ctx, ModeLogin, creds)
}

func (a *Authenticator) Signup(ctx context.Context, creds Credentials) (User, error) {
	return a.authenticate(ctx, ModeSignup, creds)
}

// Authenticate dispatches on mode.
func (a *Authenticator) Authenticate(ctx context.Context, mode Mode, creds Credentials) (User, error) {
	return a.authenticate(ctx, mode, creds)
}

func (a *Authenticator) authenticate(ctx context.Context, mode Mode, creds Credentials) (User, error) {
	if err := Validate(mode, creds); err != nil {
		return User{}, err
	}

	if err := clock.Sleep(ctx, a.delay); err != nil {
		return User{}, err
	}

	email := strings.TrimSpace(creds.Email)
	name := strings.TrimSpace(creds.Name)
	if name == "" {
		name = nameFromEmail(email)
	}

	u := User{
		ID:       uuid.NewString(),
		Name:     name,
		Email:    email,
		Phone:    strings.TrimSpace(creds.Phone),
		JoinDate: a.now(),
	}
	a.logger.Info("user authenticated",
		zap.String("mode", string(mode)),
		zap.String("user_id", u.ID))
	return u, nil
}

func nameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	if local == "" {
		return email
	}
	return local
}
