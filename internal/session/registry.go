package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrNotFound = errors.New("session not found")

// Factory builds the controller for a new session id.
type Factory func(id string) *Controller

// Registry keeps one Controller per browser session and drops the ones left idle.
type Registry struct {
	factory Factory
	idleTTL time.Duration
	logger  *zap.Logger

	mu       sync.Mutex
	sessions map[string]*Controller
}

func NewRegistry(factory Factory, idleTTL time.Duration, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		factory:  factory,
		idleTTL:  idleTTL,
		logger:   logger,
		sessions: make(map[string]*Controller),
	}
}

func (r *Registry) Create() *Controller {
	c := r.factory(uuid.NewString())

	r.mu.Lock()
	r.sessions[c.ID()] = c
	r.mu.Unlock()
	return c
}

func (r *Registry) Get(id string) (*Controller, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return c, nil
}

func (r *Registry) Delete(id string) {
	r.mu.Lock()
	c, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if ok {
		c.Close()
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Evict closes and removes sessions idle for longer than the TTL. It returns how many it removed.
func (r *Registry) Evict(now time.Time) int {
	if r.idleTTL <= 0 {
		return 0
	}

	var stale []*Controller
	r.mu.Lock()
	for id, c := range r.sessions {
		if now.Sub(c.LastActive()) > r.idleTTL {
			stale = append(stale, c)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, c := range stale {
		c.Close()
	}
	if len(stale) > 0 {
		r.logger.Info("evicted idle sessions", zap.Int("count", len(stale)))
	}
	return len(stale)
}

// Run evicts idle sessions every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			r.Evict(now)
		}
	}
}
