package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/kelibin/secretaria/internal/middleware"
	"github.com/kelibin/secretaria/internal/pkg/session"
)

// Pages commits the session and writes page responses
type Pages struct {
	sessions *session.Manager
	log      zerolog.Logger
}

// NewPages creates the shared response helper
func NewPages(sessions *session.Manager, log zerolog.Logger) *Pages {
	return &Pages{sessions: sessions, log: log}
}

// Flash queues a message for the next rendered page
func (p *Pages) Flash(ctx *gin.Context, severity, text string) {
	session.FromContext(ctx).SetFlash(severity, text)
}

// Fail logs err and queues a danger message
func (p *Pages) Fail(ctx *gin.Context, err error, text string) {
	p.log.Error().Err(err).Str("path", ctx.Request.URL.Path).Msg(text)
	p.Flash(ctx, session.SeverityDanger, text)
}

// Redirect commits the session and redirects
func (p *Pages) Redirect(ctx *gin.Context, location string) {
	p.commit(ctx)
	ctx.Redirect(middleware.RedirectStatus(ctx), location)
}

// Render shows a page with the pending flash and the logged-in account
func (p *Pages) Render(ctx *gin.Context, status int, name string, data gin.H) {
	s := session.FromContext(ctx)
	if data == nil {
		data = gin.H{}
	}
	data["Flash"] = s.TakeFlash()
	data["LoggedIn"] = s.IsAuthenticated()
	data["UserName"] = ctx.GetString(middleware.ContextUserName)
	data["UserEmail"] = ctx.GetString(middleware.ContextUserEmail)

	p.commit(ctx)
	ctx.HTML(status, name, data)
}

func (p *Pages) commit(ctx *gin.Context) {
	if err := p.sessions.Commit(ctx); err != nil {
		p.log.Error().Err(err).Msg("Error saving session")
	}
}
