package controllers

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/kelibin/secretaria/internal/app/models"
	"github.com/kelibin/secretaria/internal/app/services"
	"github.com/kelibin/secretaria/internal/pkg/apperrors"
	"github.com/kelibin/secretaria/internal/pkg/session"
)

// EnrollmentController handles enrollment status changes
type EnrollmentController struct {
	enrollments *services.EnrollmentService
	pages       *Pages
}

// NewEnrollmentController creates a new EnrollmentController
func NewEnrollmentController(enrollments *services.EnrollmentService, pages *Pages) *EnrollmentController {
	return &EnrollmentController{enrollments: enrollments, pages: pages}
}

type transitionFunc func(ctx context.Context, id string) (*models.Enrollment, error)

// Complete marks a pending enrollment as completed
func (c *EnrollmentController) Complete(ctx *gin.Context) {
	c.transition(ctx, c.enrollments.Complete, "Matrícula concluída com sucesso!")
}

// Cancel marks a pending enrollment as cancelled
func (c *EnrollmentController) Cancel(ctx *gin.Context) {
	c.transition(ctx, c.enrollments.Cancel, "Matrícula cancelada com sucesso!")
}

func (c *EnrollmentController) transition(ctx *gin.Context, move transitionFunc, success string) {
	enrollment, err := move(ctx.Request.Context(), ctx.Param("id"))

	back := "/tabela"
	if enrollment != nil {
		back = "/alunos/" + enrollment.StudentID
	}

	switch {
	case err == nil:
		c.pages.Flash(ctx, session.SeveritySuccess, success)
	case errors.Is(err, apperrors.ErrInvalidTransition):
		c.pages.Flash(ctx, session.SeverityDanger, "Transição de matrícula inválida.")
	case errors.Is(err, apperrors.ErrNotFound):
		c.pages.Flash(ctx, session.SeverityDanger, "Matrícula não encontrada.")
	default:
		c.pages.Fail(ctx, err, "Erro ao atualizar matrícula. Tente novamente.")
	}
	c.pages.Redirect(ctx, back)
}
