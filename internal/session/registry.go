package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/lunchybot/lunchy/internal/slack"
	"github.com/lunchybot/lunchy/internal/storage"
	"github.com/lunchybot/lunchy/internal/venue"
)

// DefaultTTL is how long a session survives after a message before the
// inactivity timer destroys it. Nobody needs longer than five minutes.
const DefaultTTL = 5 * time.Minute

// Registry owns the session map: it is the only component that creates,
// looks up, or removes sessions.
type Registry struct {
	store   storage.Store
	lookup  venue.Lookup
	replier Replier
	ttl     time.Duration
	logger  *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

var _ slack.Dispatcher = (*Registry)(nil)

// RegistryOption configures the registry.
type RegistryOption func(*Registry)

// WithTTL overrides the inactivity timeout.
func WithTTL(ttl time.Duration) RegistryOption {
	return func(r *Registry) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = logger
	}
}

// NewRegistry creates a session registry.
func NewRegistry(store storage.Store, lookup venue.Lookup, replier Replier, opts ...RegistryOption) *Registry {
	r := &Registry{
		store:    store,
		lookup:   lookup,
		replier:  replier,
		ttl:      DefaultTTL,
		logger:   slog.Default().With(slog.String("component", "session")),
		sessions: make(map[string]*Session),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Dispatch routes a message to the user's session, creating one on first
// contact. Handling is synchronous: the session's lock serializes messages
// from the same user while other users proceed independently. Every dispatch
// arms a one-shot timer that unconditionally destroys the session after the
// TTL; destruction is idempotent, so stale timers are harmless.
func (r *Registry) Dispatch(ctx context.Context, msg slack.IncomingMessage) {
	r.mu.Lock()
	sess, ok := r.sessions[msg.UserID]
	if !ok {
		sess = r.newSession(msg)
		r.sessions[msg.UserID] = sess
	}
	r.mu.Unlock()

	sess.handle(ctx, msg.Text)

	userID := msg.UserID
	time.AfterFunc(r.ttl, func() {
		r.Destroy(userID)
	})
}

// Destroy removes the session for userID if it still exists. Removing an
// already-destroyed session is a no-op.
func (r *Registry) Destroy(userID string) {
	r.mu.Lock()
	sess, ok := r.sessions[userID]
	if ok {
		delete(r.sessions, userID)
	}
	r.mu.Unlock()

	if !ok {
		return
	}

	sess.destroyed.Store(true)
	r.logger.Info("cleaned up session", slog.String("user", sess.userName))
}

// Active returns the number of live sessions.
func (r *Registry) Active() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Session returns the live session for userID, or nil.
func (r *Registry) Session(userID string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[userID]
}

func (r *Registry) newSession(msg slack.IncomingMessage) *Session {
	userID := msg.UserID
	return &Session{
		userID:      userID,
		userName:    msg.UserName,
		channelID:   msg.ChannelID,
		store:       r.store,
		lookup:      r.lookup,
		replier:     r.replier,
		logger:      r.logger,
		state:       StateFindingRestaurant,
		destroyFunc: func() { r.Destroy(userID) },
	}
}
