package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/kelibin/secretaria/internal/app/repositories"
	"github.com/kelibin/secretaria/internal/app/services"
	"github.com/kelibin/secretaria/internal/middleware"
	"github.com/kelibin/secretaria/internal/pkg/apperrors"
	"github.com/kelibin/secretaria/internal/pkg/session"
)

// AccountController handles account management, for other accounts and the caller's own
type AccountController struct {
	accounts *services.AccountService
	pages    *Pages
	log      zerolog.Logger
}

// NewAccountController creates a new AccountController
func NewAccountController(accounts *services.AccountService, pages *Pages, log zerolog.Logger) *AccountController {
	return &AccountController{accounts: accounts, pages: pages, log: log}
}

func emailTaken(msg string) middleware.DuplicateMessage {
	return func(field string) string {
		if field == repositories.FieldEmail {
			return msg
		}
		return ""
	}
}

// List shows every account except the caller's
func (c *AccountController) List(ctx *gin.Context) {
	callerID := session.FromContext(ctx).AccountID()

	accounts, err := c.accounts.ListOthers(ctx.Request.Context(), callerID)
	if err != nil {
		c.pages.Fail(ctx, err, "Erro ao carregar lista de usuários.")
		c.pages.Redirect(ctx, "/")
		return
	}

	c.pages.Render(ctx, http.StatusOK, "usuarios.html", gin.H{
		"Title":    "Usuários",
		"Accounts": accounts,
	})
}

// EditForm renders the edit form of another account
func (c *AccountController) EditForm(ctx *gin.Context) {
	id := ctx.Param("id")

	account, err := c.accounts.Get(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.pages.Flash(ctx, session.SeverityDanger, "Usuário não encontrado para edição.")
		} else {
			c.pages.Fail(ctx, err, "Erro ao carregar dados do usuário para edição.")
		}
		c.pages.Redirect(ctx, "/usuarios")
		return
	}

	c.pages.Render(ctx, http.StatusOK, "editar-usuario.html", gin.H{
		"Title":   "Editar Usuário",
		"Account": account.Summary(),
		"Action":  "/usuarios/editar/" + id,
		"Back":    "/usuarios",
	})
}

// Update applies the edit form to another account
func (c *AccountController) Update(ctx *gin.Context) {
	id := ctx.Param("id")
	var form accountForm
	_ = ctx.ShouldBind(&form)

	_, err := c.accounts.Update(ctx.Request.Context(), id, form.input())
	switch {
	case err == nil:
		c.pages.Flash(ctx, session.SeveritySuccess, "Usuário atualizado com sucesso!")
		c.pages.Redirect(ctx, "/usuarios")
	case errors.Is(err, apperrors.ErrNotFound):
		c.pages.Flash(ctx, session.SeverityDanger, "Usuário não encontrado.")
		c.pages.Redirect(ctx, "/usuarios")
	case errors.Is(err, apperrors.ErrPasswordMismatch):
		c.pages.Flash(ctx, session.SeverityDanger, "As novas senhas não coincidem.")
		c.pages.Redirect(ctx, "/usuarios/editar/"+id)
	default:
		c.log.Error().Err(err).Str("accountID", id).Msg("Error updating account")
		msg := middleware.DescribeStoreError(err, "Erro ao editar usuário. Tente novamente.",
			emailTaken("Este e-mail já está em uso por outro usuário."))
		c.pages.Flash(ctx, session.SeverityDanger, msg)
		c.pages.Redirect(ctx, "/usuarios/editar/"+id)
	}
}

// Delete removes another account
func (c *AccountController) Delete(ctx *gin.Context) {
	callerID := session.FromContext(ctx).AccountID()

	err := c.accounts.Delete(ctx.Request.Context(), callerID, ctx.Param("id"))
	switch {
	case err == nil:
		c.pages.Flash(ctx, session.SeveritySuccess, "Usuário excluído com sucesso!")
	case errors.Is(err, apperrors.ErrSelfDelete):
		c.pages.Flash(ctx, session.SeverityDanger, "Você não pode excluir sua própria conta por aqui.")
	case errors.Is(err, apperrors.ErrNotFound):
		c.pages.Flash(ctx, session.SeverityDanger, "Usuário não encontrado para exclusão.")
	default:
		c.pages.Fail(ctx, err, "Erro ao excluir usuário. Tente novamente.")
	}
	c.pages.Redirect(ctx, "/usuarios")
}

// Me shows the caller's own account
func (c *AccountController) Me(ctx *gin.Context) {
	account, err := c.accounts.Get(ctx.Request.Context(), session.FromContext(ctx).AccountID())
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.pages.Flash(ctx, session.SeverityDanger, "Sua conta não foi encontrada.")
			c.pages.Redirect(ctx, "/logout")
			return
		}
		c.pages.Fail(ctx, err, "Erro ao carregar detalhes da sua conta.")
		c.pages.Redirect(ctx, "/")
		return
	}

	c.pages.Render(ctx, http.StatusOK, "minha-conta.html", gin.H{
		"Title":   "Minha Conta",
		"Account": account.Summary(),
	})
}

// MeEditForm renders the edit form of the caller's own account
func (c *AccountController) MeEditForm(ctx *gin.Context) {
	account, err := c.accounts.Get(ctx.Request.Context(), session.FromContext(ctx).AccountID())
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.pages.Flash(ctx, session.SeverityDanger, "Sua conta não foi encontrada para edição.")
			c.pages.Redirect(ctx, "/logout")
			return
		}
		c.pages.Fail(ctx, err, "Erro ao carregar formulário da sua conta.")
		c.pages.Redirect(ctx, "/")
		return
	}

	c.pages.Render(ctx, http.StatusOK, "editar-usuario.html", gin.H{
		"Title":   "Editar Minha Conta",
		"Account": account.Summary(),
		"Action":  "/minha-conta/editar",
		"Back":    "/minha-conta/detalhes",
	})
}

// MeUpdate applies the edit form to the caller's own account
func (c *AccountController) MeUpdate(ctx *gin.Context) {
	id := session.FromContext(ctx).AccountID()
	var form accountForm
	_ = ctx.ShouldBind(&form)

	_, err := c.accounts.Update(ctx.Request.Context(), id, form.input())
	switch {
	case err == nil:
		c.pages.Flash(ctx, session.SeveritySuccess, "Sua conta foi atualizada com sucesso!")
		c.pages.Redirect(ctx, "/minha-conta/detalhes")
	case errors.Is(err, apperrors.ErrNotFound):
		c.pages.Flash(ctx, session.SeverityDanger, "Sua conta não foi encontrada.")
		c.pages.Redirect(ctx, "/logout")
	case errors.Is(err, apperrors.ErrPasswordMismatch):
		c.pages.Flash(ctx, session.SeverityDanger, "As novas senhas não coincidem.")
		c.pages.Redirect(ctx, "/minha-conta/editar")
	default:
		c.log.Error().Err(err).Str("accountID", id).Msg("Error updating own account")
		msg := middleware.DescribeStoreError(err, "Erro ao editar sua conta. Tente novamente.",
			emailTaken("Este e-mail já está em uso por outra conta."))
		c.pages.Flash(ctx, session.SeverityDanger, msg)
		c.pages.Redirect(ctx, "/minha-conta/editar")
	}
}
