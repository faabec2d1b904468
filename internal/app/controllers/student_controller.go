package controllers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/kelibin/secretaria/internal/app/models"
	"github.com/kelibin/secretaria/internal/app/repositories"
	"github.com/kelibin/secretaria/internal/app/services"
	"github.com/kelibin/secretaria/internal/middleware"
	"github.com/kelibin/secretaria/internal/pkg/apperrors"
	"github.com/kelibin/secretaria/internal/pkg/export"
	"github.com/kelibin/secretaria/internal/pkg/session"
)

// studentForm is the student registration and edit form
type studentForm struct {
	RegistrationNumber string `form:"matricula"`
	Name               string `form:"nome"`
	SubjectName        string `form:"disciplina"`
}

func (f studentForm) input() services.StudentInput {
	return services.StudentInput{
		RegistrationNumber: f.RegistrationNumber,
		Name:               f.Name,
		SubjectName:        f.SubjectName,
	}
}

// StudentController handles student pages
type StudentController struct {
	students    *services.StudentService
	enrollments *services.EnrollmentService
	pages       *Pages
	log         zerolog.Logger
}

// NewStudentController creates a new StudentController
func NewStudentController(students *services.StudentService, enrollments *services.EnrollmentService, pages *Pages, log zerolog.Logger) *StudentController {
	return &StudentController{
		students:    students,
		enrollments: enrollments,
		pages:       pages,
		log:         log,
	}
}

// registrationTaken is the duplicate message for the registration number
func registrationTaken(number string) middleware.DuplicateMessage {
	return func(field string) string {
		if field == repositories.FieldRegistrationNumber {
			return fmt.Sprintf("Matrícula '%s' já cadastrada. Por favor, use outra.", number)
		}
		return ""
	}
}

// Home shows the registration form and every student
func (c *StudentController) Home(ctx *gin.Context) {
	students, err := c.students.List(ctx.Request.Context(), "")
	if err != nil {
		c.pages.Fail(ctx, err, "Erro ao carregar dados dos alunos.")
		c.pages.Render(ctx, http.StatusInternalServerError, "index.html", gin.H{
			"Title":    "Início",
			"Students": []*models.Student{},
		})
		return
	}

	c.pages.Render(ctx, http.StatusOK, "index.html", gin.H{
		"Title":    "Início",
		"Students": students,
	})
}

// Create registers a student
func (c *StudentController) Create(ctx *gin.Context) {
	var form studentForm
	_ = ctx.ShouldBind(&form)

	if _, err := c.students.Register(ctx.Request.Context(), form.input()); err != nil {
		c.log.Error().Err(err).Str("registrationNumber", form.RegistrationNumber).Msg("Error registering student")
		msg := middleware.DescribeStoreError(err, "Erro ao cadastrar aluno. Tente novamente.", registrationTaken(form.RegistrationNumber))
		c.pages.Flash(ctx, session.SeverityDanger, msg)
		c.pages.Redirect(ctx, "/")
		return
	}

	c.pages.Flash(ctx, session.SeveritySuccess, "Aluno cadastrado com sucesso!")
	c.pages.Redirect(ctx, "/")
}

// Table lists students, filtered by the nome query parameter
func (c *StudentController) Table(ctx *gin.Context) {
	term := ctx.Query("nome")

	students, err := c.students.List(ctx.Request.Context(), term)
	if err != nil {
		c.pages.Fail(ctx, err, "Erro ao carregar a tabela de alunos.")
		c.pages.Render(ctx, http.StatusInternalServerError, "tabela.html", gin.H{
			"Title":      "Alunos",
			"Students":   []*models.Student{},
			"SearchTerm": term,
		})
		return
	}

	c.pages.Render(ctx, http.StatusOK, "tabela.html", gin.H{
		"Title":      "Alunos",
		"Students":   students,
		"SearchTerm": term,
	})
}

// Export downloads the student table as a spreadsheet
func (c *StudentController) Export(ctx *gin.Context) {
	students, err := c.students.List(ctx.Request.Context(), ctx.Query("nome"))
	if err == nil {
		var buf bytes.Buffer
		if err = export.WriteStudents(&buf, students); err == nil {
			c.pages.commit(ctx)
			ctx.Header("Content-Disposition", `attachment; filename="alunos.xlsx"`)
			ctx.Data(http.StatusOK, export.ContentType, buf.Bytes())
			return
		}
	}

	c.pages.Fail(ctx, err, "Erro ao exportar a tabela de alunos.")
	c.pages.Redirect(ctx, "/tabela")
}

// Show renders one student with its enrollments
func (c *StudentController) Show(ctx *gin.Context) {
	student, err := c.students.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.pages.Flash(ctx, session.SeverityDanger, "Aluno não encontrado.")
		} else {
			c.pages.Fail(ctx, err, "Erro ao carregar detalhes do aluno.")
		}
		c.pages.Redirect(ctx, "/tabela")
		return
	}

	enrollments, err := c.enrollments.ListForStudent(ctx.Request.Context(), student.ID)
	if err != nil {
		c.pages.Fail(ctx, err, "Erro ao carregar detalhes do aluno.")
		c.pages.Redirect(ctx, "/tabela")
		return
	}

	c.pages.Render(ctx, http.StatusOK, "aluno.html", gin.H{
		"Title":       student.Name,
		"Student":     student,
		"Enrollments": enrollments,
	})
}

// EditForm renders the edit form of a student
func (c *StudentController) EditForm(ctx *gin.Context) {
	student, err := c.students.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.pages.Flash(ctx, session.SeverityDanger, "Aluno não encontrado para edição.")
		} else {
			c.pages.Fail(ctx, err, "Erro ao carregar dados do aluno para edição.")
		}
		c.pages.Redirect(ctx, "/tabela")
		return
	}

	c.pages.Render(ctx, http.StatusOK, "editar-aluno.html", gin.H{
		"Title":   "Editar Aluno",
		"Student": student,
	})
}

// Update applies the edit form
func (c *StudentController) Update(ctx *gin.Context) {
	id := ctx.Param("id")
	var form studentForm
	_ = ctx.ShouldBind(&form)

	err := c.students.Update(ctx.Request.Context(), id, form.input())
	switch {
	case err == nil:
		c.pages.Flash(ctx, session.SeveritySuccess, "Aluno atualizado com sucesso!")
		c.pages.Redirect(ctx, "/tabela")
	case errors.Is(err, apperrors.ErrNotFound):
		c.pages.Flash(ctx, session.SeverityDanger, "Aluno não encontrado.")
		c.pages.Redirect(ctx, "/tabela")
	case errors.Is(err, apperrors.ErrRegistrationInUse):
		c.pages.Flash(ctx, session.SeverityDanger,
			fmt.Sprintf("A matrícula '%s' já está em uso por outro aluno.", form.RegistrationNumber))
		c.pages.Redirect(ctx, "/alunos/editar/"+id)
	default:
		c.log.Error().Err(err).Str("studentID", id).Msg("Error updating student")
		msg := middleware.DescribeStoreError(err, "Erro ao editar aluno. Tente novamente.", registrationTaken(form.RegistrationNumber))
		c.pages.Flash(ctx, session.SeverityDanger, msg)
		c.pages.Redirect(ctx, "/alunos/editar/"+id)
	}
}

// Delete removes a student
func (c *StudentController) Delete(ctx *gin.Context) {
	if err := c.students.Delete(ctx.Request.Context(), ctx.Param("id")); err != nil {
		c.pages.Fail(ctx, err, "Erro ao excluir aluno. Tente novamente.")
		c.pages.Redirect(ctx, "/tabela")
		return
	}

	c.pages.Flash(ctx, session.SeveritySuccess, "Aluno excluído com sucesso!")
	c.pages.Redirect(ctx, "/tabela")
}
