package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/kelibin/secretaria/internal/app/services"
	"github.com/kelibin/secretaria/internal/pkg/session"
)

// Context keys exposing the logged-in account to the views
const (
	ContextUserName  = "userName"
	ContextUserEmail = "userEmail"
)

// AuthMiddleware guards pages behind the session login
type AuthMiddleware struct {
	sessions *session.Manager
	accounts *services.AccountService
	log      zerolog.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(sessions *session.Manager, accounts *services.AccountService, log zerolog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		sessions: sessions,
		accounts: accounts,
		log:      log,
	}
}

// RequireLogin sends anonymous visitors to the login page
func (m *AuthMiddleware) RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := session.FromContext(c)
		if !s.IsAuthenticated() {
			s.SetFlash(session.SeverityDanger, "Você precisa estar logado para acessar esta página.")
			m.abortWithRedirect(c, "/login")
			return
		}
		c.Next()
	}
}

// RedirectIfLoggedIn keeps logged-in users away from the login and registration pages
func (m *AuthMiddleware) RedirectIfLoggedIn() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := session.FromContext(c)
		if s.IsAuthenticated() {
			s.SetFlash(session.SeverityInfo, "Você já está logado!")
			m.abortWithRedirect(c, "/")
			return
		}
		c.Next()
	}
}

// CurrentAccount loads the logged-in account's name and email for the views.
// Lookup failures are logged and the request proceeds without them.
func (m *AuthMiddleware) CurrentAccount() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := session.FromContext(c)
		if s.IsAuthenticated() {
			account, err := m.accounts.Get(c.Request.Context(), s.AccountID())
			if err != nil {
				m.log.Warn().Err(err).Str("accountID", s.AccountID()).Msg("Error loading logged-in account")
			} else {
				c.Set(ContextUserName, account.Name)
				c.Set(ContextUserEmail, account.Email)
			}
		}
		c.Next()
	}
}

func (m *AuthMiddleware) abortWithRedirect(c *gin.Context, location string) {
	if err := m.sessions.Commit(c); err != nil {
		m.log.Error().Err(err).Msg("Error saving session")
	}
	c.Redirect(RedirectStatus(c), location)
	c.Abort()
}

// RedirectStatus is 303 after a POST and 302 otherwise
func RedirectStatus(c *gin.Context) int {
	if c.Request.Method == http.MethodPost {
		return http.StatusSeeOther
	}
	return http.StatusFound
}
