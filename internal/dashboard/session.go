package dashboard

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

const (
	sessionName      = "catalog_admin_session"
	sessionMaxAge    = 8 * time.Hour
	keyAuthenticated = "authenticated"
	keySessionID     = "sid"
)

type ctxKey struct{}

func withController(ctx context.Context, c *Controller) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

func controllerFrom(ctx context.Context) *Controller {
	c, _ := ctx.Value(ctxKey{}).(*Controller)
	return c
}

// registry keeps one Controller per logged in browser session.
type registry struct {
	newController func() *Controller
	ttl           time.Duration
	now           func() time.Time

	mu      sync.Mutex
	entries map[string]*registryEntry
}

type registryEntry struct {
	ctrl     *Controller
	lastSeen time.Time
}

func newRegistry(ttl time.Duration, newController func() *Controller) *registry {
	return &registry{
		newController: newController,
		ttl:           ttl,
		now:           time.Now,
		entries:       map[string]*registryEntry{},
	}
}

// get returns the controller of session id, creating it on first use.
func (r *registry) get(id string) *Controller {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if e, ok := r.entries[id]; ok {
		e.lastSeen = now
		return e.ctrl
	}

	r.pruneLocked(now)
	e := &registryEntry{ctrl: r.newController(), lastSeen: now}
	r.entries[id] = e
	return e.ctrl
}

func (r *registry) drop(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
}

func (r *registry) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *registry) pruneLocked(now time.Time) {
	for id, e := range r.entries {
		if now.Sub(e.lastSeen) > r.ttl {
			delete(r.entries, id)
		}
	}
}

func newCookieStore(key string, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(key))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(sessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// sessionID returns the id of an authenticated session, or "" when the request has none.
func sessionID(s *sessions.Session) string {
	if ok, _ := s.Values[keyAuthenticated].(bool); !ok {
		return ""
	}
	id, _ := s.Values[keySessionID].(string)
	return id
}

func markAuthenticated(s *sessions.Session) {
	s.Values[keyAuthenticated] = true
	s.Values[keySessionID] = uuid.NewString()
}

func clearSession(s *sessions.Session) {
	delete(s.Values, keyAuthenticated)
	delete(s.Values, keySessionID)
	s.Options.MaxAge = -1
}
