package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/kelibin/secretaria/internal/app/services"
	"github.com/kelibin/secretaria/internal/middleware"
	"github.com/kelibin/secretaria/internal/pkg/apperrors"
	"github.com/kelibin/secretaria/internal/pkg/session"
)

// accountForm is shared by registration and the account edit forms
type accountForm struct {
	Name                 string `form:"nome"`
	Email                string `form:"email"`
	Password             string `form:"senha"`
	PasswordConfirmation string `form:"confirmarSenha"`
}

func (f accountForm) input() services.AccountInput {
	return services.AccountInput{
		Name:                 f.Name,
		Email:                f.Email,
		Password:             f.Password,
		PasswordConfirmation: f.PasswordConfirmation,
	}
}

type loginForm struct {
	Email    string `form:"email"`
	Password string `form:"senha"`
}

// AuthController handles registration, login and logout
type AuthController struct {
	accounts *services.AccountService
	sessions *session.Manager
	pages    *Pages
	log      zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(accounts *services.AccountService, sessions *session.Manager, pages *Pages, log zerolog.Logger) *AuthController {
	return &AuthController{
		accounts: accounts,
		sessions: sessions,
		pages:    pages,
		log:      log,
	}
}

// RegisterForm renders the account registration form
func (c *AuthController) RegisterForm(ctx *gin.Context) {
	c.pages.Render(ctx, http.StatusOK, "cadastro.html", gin.H{"Title": "Cadastro"})
}

// Register creates an account
func (c *AuthController) Register(ctx *gin.Context) {
	var form accountForm
	_ = ctx.ShouldBind(&form)

	_, err := c.accounts.Register(ctx.Request.Context(), form.input())
	switch {
	case err == nil:
		c.pages.Flash(ctx, session.SeveritySuccess, "Usuário cadastrado com sucesso! Faça login.")
		c.pages.Redirect(ctx, "/login")
		return
	case errors.Is(err, apperrors.ErrPasswordMismatch):
		c.pages.Flash(ctx, session.SeverityDanger, "As senhas não coincidem.")
	case errors.Is(err, apperrors.ErrEmailAlreadyExists):
		c.pages.Flash(ctx, session.SeverityDanger, "E-mail já cadastrado.")
	default:
		c.log.Error().Err(err).Msg("Error registering account")
		c.pages.Flash(ctx, session.SeverityDanger,
			middleware.DescribeStoreError(err, "Erro ao cadastrar usuário. Tente novamente.", nil))
	}
	c.pages.Redirect(ctx, "/cadastro")
}

// LoginForm renders the login form
func (c *AuthController) LoginForm(ctx *gin.Context) {
	c.pages.Render(ctx, http.StatusOK, "login.html", gin.H{"Title": "Login"})
}

// Login starts an authenticated session
func (c *AuthController) Login(ctx *gin.Context) {
	var form loginForm
	_ = ctx.ShouldBind(&form)

	account, err := c.accounts.Authenticate(ctx.Request.Context(), form.Email, form.Password)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidCredentials) {
			c.pages.Flash(ctx, session.SeverityDanger, "Usuário ou senha inválidos.")
		} else {
			c.pages.Fail(ctx, err, "Erro interno do servidor. Tente novamente.")
		}
		c.pages.Redirect(ctx, "/login")
		return
	}

	c.sessions.Rotate(ctx)
	session.FromContext(ctx).SetAccountID(account.ID)
	c.log.Info().Str("accountID", account.ID).Msg("Account logged in")
	c.pages.Redirect(ctx, "/")
}

// Logout destroys the session
func (c *AuthController) Logout(ctx *gin.Context) {
	if err := c.sessions.Destroy(ctx); err != nil {
		c.log.Error().Err(err).Msg("Error destroying session")
		ctx.String(http.StatusInternalServerError, "Erro ao fazer logout.")
		return
	}
	ctx.Redirect(http.StatusFound, "/login")
}
