package views

import (
	"bytes"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kelibin/secretaria/internal/app/models"
	"github.com/kelibin/secretaria/internal/pkg/session"
)

func TestTemplatesDefineEveryPage(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)

	for _, name := range []string{
		"index.html", "tabela.html", "aluno.html", "editar-aluno.html",
		"cadastro.html", "login.html", "usuarios.html", "editar-usuario.html", "minha-conta.html",
	} {
		assert.NotNil(t, tmpl.Lookup(name), name)
	}
}

func TestStudentPageRendersEnrollments(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)

	math := &models.Subject{ID: "s1", Name: "Math"}
	var buf bytes.Buffer
	err = tmpl.ExecuteTemplate(&buf, "aluno.html", map[string]interface{}{
		"Title":    "Ana",
		"LoggedIn": true,
		"UserName": "Administrador",
		"Flash":    &session.Flash{Severity: session.SeveritySuccess, Text: "Matrícula concluída com sucesso!"},
		"Student":  &models.Student{ID: "a1", RegistrationNumber: "A", Name: "Ana", SubjectID: "s1", Subject: math},
		"Enrollments": []*models.Enrollment{
			{ID: "e1", StudentID: "a1", SubjectID: "s1", Status: models.EnrollmentPending, Subject: math},
			{ID: "e2", StudentID: "a1", SubjectID: "s1", Status: models.EnrollmentCompleted, Subject: math},
		},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `class="alert alert-success"`)
	assert.Contains(t, out, "Matrícula concluída com sucesso!")
	assert.Contains(t, out, `/matriculas/e1/concluir`)
	assert.NotContains(t, out, `/matriculas/e2/concluir`)
	assert.Contains(t, out, "badge-success")
	assert.Contains(t, out, "Administrador")
}

func TestPublicServesStylesheet(t *testing.T) {
	_, err := fs.Stat(Public(), "css/style.css")
	assert.NoError(t, err)
}
