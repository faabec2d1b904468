package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/kelibin/secretaria/internal/pkg/auth"
)

const contextKey = "session"

// Session is the per-request view of a stored session
type Session struct {
	id       string
	data     Data
	incoming *Flash
	dirty    bool
	issue    bool
}

// ID returns the session id
func (s *Session) ID() string {
	return s.id
}

// AccountID returns the logged-in account id, or ""
func (s *Session) AccountID() string {
	return s.data.AccountID
}

// IsAuthenticated reports whether an account is logged in
func (s *Session) IsAuthenticated() bool {
	return s.data.AccountID != ""
}

// SetAccountID marks the session as logged in as id
func (s *Session) SetAccountID(id string) {
	s.data.AccountID = id
	s.dirty = true
}

// SetFlash queues a message for the next rendered page
func (s *Session) SetFlash(severity, text string) {
	s.data.Flash = &Flash{Severity: severity, Text: text}
	s.dirty = true
}

// TakeFlash returns the message to show on the page being rendered: a flash
// set during this request wins over the one carried in from the last one.
// Either way it is not shown again.
func (s *Session) TakeFlash() *Flash {
	if s.data.Flash != nil {
		flash := s.data.Flash
		s.data.Flash = nil
		s.incoming = nil
		return flash
	}
	flash := s.incoming
	s.incoming = nil
	return flash
}

// Options configures a Manager
type Options struct {
	CookieName string
	MaxAge     time.Duration
	Secure     bool
}

// Manager loads sessions into the gin context and persists them
type Manager struct {
	store  Store
	tokens *auth.TokenService
	opts   Options
	log    zerolog.Logger
}

// NewManager creates a session manager
func NewManager(store Store, tokens *auth.TokenService, opts Options, log zerolog.Logger) *Manager {
	return &Manager{store: store, tokens: tokens, opts: opts, log: log}
}

// Middleware loads the caller's session, or starts a fresh one. The flash
// carried in from the previous request is consumed here.
func (m *Manager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(contextKey, m.load(c))
		c.Next()
	}
}

func (m *Manager) load(c *gin.Context) *Session {
	cookie, err := c.Cookie(m.opts.CookieName)
	if err != nil || cookie == "" {
		return m.fresh()
	}

	id, err := m.tokens.Parse(cookie)
	if err != nil {
		m.log.Debug().Err(err).Msg("Discarding invalid session cookie")
		return m.fresh()
	}

	data, err := m.store.Get(c.Request.Context(), id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			m.log.Error().Err(err).Msg("Error loading session")
		}
		return m.fresh()
	}

	s := &Session{id: id, data: *data}
	if data.Flash != nil {
		s.incoming = data.Flash
		s.data.Flash = nil
		s.dirty = true
	}
	return s
}

func (m *Manager) fresh() *Session {
	return &Session{id: auth.NewSessionID(), issue: true}
}

// FromContext returns the request's session. It panics when the session
// middleware is not installed.
func FromContext(c *gin.Context) *Session {
	return c.MustGet(contextKey).(*Session)
}

// Commit persists pending session changes and sets the cookie. It must run
// before the response is written.
func (m *Manager) Commit(c *gin.Context) error {
	s := FromContext(c)
	if !s.dirty {
		return nil
	}
	// nothing worth storing for an anonymous visitor without a message
	if s.issue && !s.IsAuthenticated() && s.data.Flash == nil {
		s.dirty = false
		return nil
	}

	if err := m.store.Save(c.Request.Context(), s.id, &s.data, m.opts.MaxAge); err != nil {
		return fmt.Errorf("failed to commit session: %w", err)
	}
	s.dirty = false

	token, err := m.tokens.Sign(s.id)
	if err != nil {
		return err
	}
	m.setCookie(c, token, int(m.opts.MaxAge.Seconds()))
	s.issue = false
	return nil
}

// Rotate moves the session to a new id, dropping the old one from the store
func (m *Manager) Rotate(c *gin.Context) {
	s := FromContext(c)
	if !s.issue {
		if err := m.store.Delete(c.Request.Context(), s.id); err != nil {
			m.log.Warn().Err(err).Msg("Error deleting rotated session")
		}
	}
	s.id = auth.NewSessionID()
	s.issue = true
	s.dirty = true
}

// Destroy deletes the session and expires the cookie
func (m *Manager) Destroy(c *gin.Context) error {
	s := FromContext(c)
	if err := m.store.Delete(c.Request.Context(), s.id); err != nil {
		return fmt.Errorf("failed to destroy session: %w", err)
	}
	s.data = Data{}
	s.incoming = nil
	s.dirty = false
	m.setCookie(c, "", -1)
	return nil
}

func (m *Manager) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.opts.CookieName, value, maxAge, "/", "", m.opts.Secure, true)
}
