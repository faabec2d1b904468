package bootstrap

import (
	"context"
	"html/template"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	memoryRepos "github.com/kelibin/secretaria/internal/app/repositories/memory"
	"github.com/kelibin/secretaria/internal/app/models"
	"github.com/kelibin/secretaria/internal/config"
	"github.com/kelibin/secretaria/internal/pkg/export"
	"github.com/kelibin/secretaria/internal/pkg/session"
)

const (
	seedEmail    = "admin@secretaria.test"
	seedPassword = "segredo123"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Server.Mode = "test"
	cfg.Database.Driver = config.DriverMemory
	cfg.Session.Driver = config.DriverMemory
	cfg.Session.Secret = "test-secret"
	cfg.Session.CookieName = "secretaria.sid"
	cfg.Session.MaxAge = "1h"
	cfg.Session.Issuer = "secretaria-test"
	cfg.Seed.Email = seedEmail
	cfg.Seed.Password = seedPassword
	cfg.Seed.Name = "Administrador"
	return cfg
}

// NewTestRouter builds the full application over the in-memory drivers
func NewTestRouter(t *testing.T) (*gin.Engine, *Dependencies) {
	t.Helper()
	cfg := newTestConfig()
	lgr := zerolog.Nop()

	repos := memoryRepos.NewRepositories(memoryRepos.Open())
	deps := BuildDependencies(cfg, repos, session.NewMemoryStore(), lgr)
	require.NoError(t, SeedDefaultData(context.Background(), cfg, deps))

	router, err := SetupRouter(cfg, deps, lgr)
	require.NoError(t, err)
	return router, deps
}

// browser replays cookies between requests like a user agent would
type browser struct {
	t       *testing.T
	router  http.Handler
	cookies map[string]*http.Cookie
}

func newBrowser(t *testing.T) (*browser, *Dependencies) {
	router, deps := NewTestRouter(t)
	return &browser{t: t, router: router, cookies: map[string]*http.Cookie{}}, deps
}

func (b *browser) do(method, path string, form url.Values) *httptest.ResponseRecorder {
	b.t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for _, c := range b.cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	b.router.ServeHTTP(w, req)

	for _, c := range w.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(b.cookies, c.Name)
			continue
		}
		b.cookies[c.Name] = c
	}
	return w
}

func (b *browser) get(path string) *httptest.ResponseRecorder {
	return b.do(http.MethodGet, path, nil)
}

func (b *browser) post(path string, form url.Values) *httptest.ResponseRecorder {
	return b.do(http.MethodPost, path, form)
}

// follow asserts w is a redirect to location and loads the target page
func (b *browser) follow(w *httptest.ResponseRecorder, location string) *httptest.ResponseRecorder {
	b.t.Helper()
	require.Contains(b.t, []int{http.StatusFound, http.StatusSeeOther}, w.Code)
	require.Equal(b.t, location, w.Header().Get("Location"))
	return b.get(location)
}

func (b *browser) login(email, password string) *httptest.ResponseRecorder {
	return b.post("/login", url.Values{"email": {email}, "senha": {password}})
}

func (b *browser) loginAsSeed() {
	b.t.Helper()
	w := b.login(seedEmail, seedPassword)
	require.Equal(b.t, http.StatusSeeOther, w.Code)
	require.Equal(b.t, "/", w.Header().Get("Location"))
}

func (b *browser) registerStudent(number, name, subject string) *httptest.ResponseRecorder {
	return b.post("/alunos", url.Values{"matricula": {number}, "nome": {name}, "disciplina": {subject}})
}

func escaped(msg string) string {
	return template.HTMLEscapeString(msg)
}

func studentByNumber(t *testing.T, deps *Dependencies, number string) *models.Student {
	t.Helper()
	student, err := deps.Repos.Students.FindByRegistrationNumber(context.Background(), number, "")
	require.NoError(t, err)
	return student
}

func TestHealth(t *testing.T) {
	b, _ := newBrowser(t)

	w := b.get("/health")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestUnknownRoute(t *testing.T) {
	b, _ := newBrowser(t)

	w := b.get("/nada/aqui")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Página não encontrada :-/", w.Body.String())
}

func TestProtectedPagesRedirectToLogin(t *testing.T) {
	for _, path := range []string{"/", "/tabela", "/tabela/exportar", "/usuarios", "/minha-conta/detalhes"} {
		t.Run(path, func(t *testing.T) {
			b, _ := newBrowser(t)

			w := b.get(path)
			assert.Equal(t, http.StatusFound, w.Code)

			page := b.follow(w, "/login")
			assert.Equal(t, http.StatusOK, page.Code)
			assert.Contains(t, page.Body.String(), "Você precisa estar logado para acessar esta página.")

			again := b.get("/login")
			assert.NotContains(t, again.Body.String(), "Você precisa estar logado")
		})
	}
}

func TestProtectedPostRedirectsWithSeeOther(t *testing.T) {
	b, deps := newBrowser(t)

	w := b.registerStudent("A", "Ana", "Math")

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	n, err := deps.Repos.Students.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestAnonymousVisitSetsNoCookie(t *testing.T) {
	b, _ := newBrowser(t)

	w := b.get("/login")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Result().Cookies())
}

func TestLoginPagesRedirectWhenLoggedIn(t *testing.T) {
	b, _ := newBrowser(t)
	b.loginAsSeed()

	for _, path := range []string{"/login", "/cadastro"} {
		w := b.get(path)
		page := b.follow(w, "/")
		assert.Contains(t, page.Body.String(), "Você já está logado!")
	}
}

func TestLoginFailuresShareOneMessage(t *testing.T) {
	b, _ := newBrowser(t)

	wrongPassword := b.login(seedEmail, "errada")
	assert.Equal(t, http.StatusSeeOther, wrongPassword.Code)
	first := b.follow(wrongPassword, "/login").Body.String()

	unknownEmail := b.login("ninguem@secretaria.test", seedPassword)
	second := b.follow(unknownEmail, "/login").Body.String()

	assert.Contains(t, first, "Usuário ou senha inválidos.")
	assert.Contains(t, second, "Usuário ou senha inválidos.")

	w := b.get("/")
	assert.Equal(t, http.StatusFound, w.Code)
}

func TestLoginRotatesSessionCookie(t *testing.T) {
	b, _ := newBrowser(t)

	b.follow(b.get("/"), "/login")
	before := b.cookies["secretaria.sid"]
	require.NotNil(t, before)

	b.loginAsSeed()
	after := b.cookies["secretaria.sid"]
	require.NotNil(t, after)
	assert.NotEqual(t, before.Value, after.Value)

	home := b.get("/")
	assert.Equal(t, http.StatusOK, home.Code)
	assert.Contains(t, home.Body.String(), "Administrador")
}

func TestRegisterStudentsSharingSubject(t *testing.T) {
	b, deps := newBrowser(t)
	b.loginAsSeed()
	ctx := context.Background()

	w := b.registerStudent("A", "Ana", "Math")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	home := b.follow(w, "/")
	assert.Contains(t, home.Body.String(), "Aluno cadastrado com sucesso!")

	b.follow(b.registerStudent("B", "Bia", "Math"), "/")

	subjects, err := deps.Repos.Subjects.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), subjects)

	enrollments, err := deps.Repos.Enrollments.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), enrollments)

	ana := studentByNumber(t, deps, "A")
	bia := studentByNumber(t, deps, "B")
	assert.Equal(t, ana.SubjectID, bia.SubjectID)

	table := b.get("/tabela")
	assert.Equal(t, http.StatusOK, table.Code)
	body := table.Body.String()
	assert.Contains(t, body, "Ana")
	assert.Contains(t, body, "Bia")
	assert.Contains(t, body, "Math")
}

func TestRegisterDuplicateRegistrationNumber(t *testing.T) {
	b, deps := newBrowser(t)
	b.loginAsSeed()

	b.follow(b.registerStudent("C", "Carla", "Física"), "/")
	page := b.follow(b.registerStudent("C", "Caio", "Química"), "/")

	assert.Contains(t, page.Body.String(), escaped("Matrícula 'C' já cadastrada. Por favor, use outra."))
	n, err := deps.Repos.Students.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestRegisterStudentValidationMessage(t *testing.T) {
	b, _ := newBrowser(t)
	b.loginAsSeed()

	page := b.follow(b.registerStudent("", "Sem Matrícula", "Math"), "/")

	assert.Contains(t, page.Body.String(), "Erro de validação:")
}

func TestTableSearchIsCaseInsensitive(t *testing.T) {
	b, _ := newBrowser(t)
	b.loginAsSeed()
	b.follow(b.registerStudent("A", "Ana", "Math"), "/")
	b.follow(b.registerStudent("B", "Bia", "Math"), "/")

	body := b.get("/tabela?nome=AN").Body.String()

	assert.Contains(t, body, "Ana")
	assert.NotContains(t, body, "Bia")
	assert.Contains(t, body, `value="AN"`)
}

func TestShowStudent(t *testing.T) {
	b, deps := newBrowser(t)
	b.loginAsSeed()
	b.follow(b.registerStudent("A", "Ana", "Math"), "/")
	ana := studentByNumber(t, deps, "A")

	w := b.get("/alunos/" + ana.ID)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Ana")
	assert.Contains(t, w.Body.String(), string(models.EnrollmentPending))

	missing := b.get("/alunos/desconhecido")
	page := b.follow(missing, "/tabela")
	assert.Contains(t, page.Body.String(), "Aluno não encontrado.")
}

func TestUpdateStudent(t *testing.T) {
	b, deps := newBrowser(t)
	b.loginAsSeed()
	b.follow(b.registerStudent("A", "Ana", "Math"), "/")
	b.follow(b.registerStudent("B", "Bia", "Math"), "/")
	bia := studentByNumber(t, deps, "B")
	editPath := "/alunos/editar/" + bia.ID

	form := b.get(editPath)
	assert.Equal(t, http.StatusOK, form.Code)

	clash := b.post(editPath, url.Values{"matricula": {"A"}, "nome": {"Bia"}, "disciplina": {"Math"}})
	page := b.follow(clash, editPath)
	assert.Contains(t, page.Body.String(), escaped("A matrícula 'A' já está em uso por outro aluno."))
	assert.Equal(t, "B", studentByNumber(t, deps, "B").RegistrationNumber)

	ok := b.post(editPath, url.Values{"matricula": {"B2"}, "nome": {"Beatriz"}, "disciplina": {"Arte"}})
	table := b.follow(ok, "/tabela")
	assert.Contains(t, table.Body.String(), "Aluno atualizado com sucesso!")
	updated := studentByNumber(t, deps, "B2")
	assert.Equal(t, "Beatriz", updated.Name)
	assert.Equal(t, "Arte", updated.SubjectName())
}

func TestDeleteStudent(t *testing.T) {
	b, deps := newBrowser(t)
	b.loginAsSeed()
	ctx := context.Background()
	b.follow(b.registerStudent("A", "Ana", "Math"), "/")
	ana := studentByNumber(t, deps, "A")

	page := b.follow(b.get("/alunos/excluir/"+ana.ID), "/tabela")
	assert.Contains(t, page.Body.String(), "Aluno excluído com sucesso!")

	students, err := deps.Repos.Students.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, students)
	enrollments, err := deps.Repos.Enrollments.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, enrollments)

	unknown := b.follow(b.get("/alunos/excluir/desconhecido"), "/tabela")
	assert.Contains(t, unknown.Body.String(), "Aluno excluído com sucesso!")
}

func TestEnrollmentTransitions(t *testing.T) {
	b, deps := newBrowser(t)
	b.loginAsSeed()
	ctx := context.Background()
	b.follow(b.registerStudent("A", "Ana", "Math"), "/")
	b.follow(b.registerStudent("B", "Bia", "Math"), "/")
	ana := studentByNumber(t, deps, "A")
	bia := studentByNumber(t, deps, "B")
	back := "/alunos/" + ana.ID

	anaEnrollments, err := deps.Repos.Enrollments.ListByStudent(ctx, ana.ID)
	require.NoError(t, err)
	require.Len(t, anaEnrollments, 1)
	complete := "/matriculas/" + anaEnrollments[0].ID + "/concluir"

	done := b.follow(b.post(complete, nil), back)
	assert.Contains(t, done.Body.String(), "Matrícula concluída com sucesso!")
	assert.Contains(t, done.Body.String(), string(models.EnrollmentCompleted))

	again := b.post(complete, nil)
	assert.Equal(t, http.StatusSeeOther, again.Code)
	rejected := b.follow(again, back)
	assert.Contains(t, rejected.Body.String(), "Transição de matrícula inválida.")

	biaEnrollments, err := deps.Repos.Enrollments.ListByStudent(ctx, bia.ID)
	require.NoError(t, err)
	require.Len(t, biaEnrollments, 1)
	cancelled := b.follow(b.post("/matriculas/"+biaEnrollments[0].ID+"/cancelar", nil), "/alunos/"+bia.ID)
	assert.Contains(t, cancelled.Body.String(), "Matrícula cancelada com sucesso!")

	missing := b.follow(b.post("/matriculas/desconhecida/cancelar", nil), "/tabela")
	assert.Contains(t, missing.Body.String(), "Matrícula não encontrada.")
}

func TestExportStudents(t *testing.T) {
	b, _ := newBrowser(t)
	b.loginAsSeed()
	b.follow(b.registerStudent("A", "Ana", "Math"), "/")

	w := b.get("/tabela/exportar")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, export.ContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "alunos.xlsx")
	assert.NotZero(t, w.Body.Len())
}

func TestRegisterAccount(t *testing.T) {
	b, deps := newBrowser(t)

	mismatch := b.post("/cadastro", url.Values{
		"nome": {"Bruno"}, "email": {"bruno@secretaria.test"}, "senha": {"abc"}, "confirmarSenha": {"abd"},
	})
	page := b.follow(mismatch, "/cadastro")
	assert.Contains(t, page.Body.String(), "As senhas não coincidem.")
	_, err := deps.Repos.Accounts.GetByEmail(context.Background(), "bruno@secretaria.test")
	assert.Error(t, err)

	taken := b.post("/cadastro", url.Values{
		"email": {seedEmail}, "senha": {"abc"}, "confirmarSenha": {"abc"},
	})
	page = b.follow(taken, "/cadastro")
	assert.Contains(t, page.Body.String(), "E-mail já cadastrado.")

	created := b.post("/cadastro", url.Values{
		"nome": {"Bruno"}, "email": {"bruno@secretaria.test"}, "senha": {"abc"}, "confirmarSenha": {"abc"},
	})
	page = b.follow(created, "/login")
	assert.Contains(t, page.Body.String(), "Usuário cadastrado com sucesso! Faça login.")

	w := b.login("bruno@secretaria.test", "abc")
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestAccountListingAndSelfDelete(t *testing.T) {
	b, deps := newBrowser(t)
	ctx := context.Background()
	b.follow(b.post("/cadastro", url.Values{
		"nome": {"Bruno"}, "email": {"bruno@secretaria.test"}, "senha": {"abc"}, "confirmarSenha": {"abc"},
	}), "/login")
	b.loginAsSeed()

	list := b.get("/usuarios")
	assert.Equal(t, http.StatusOK, list.Code)
	assert.Contains(t, list.Body.String(), "bruno@secretaria.test")
	assert.NotContains(t, list.Body.String(), seedEmail)

	self, err := deps.Repos.Accounts.GetByEmail(ctx, seedEmail)
	require.NoError(t, err)
	page := b.follow(b.get("/usuarios/excluir/"+self.ID), "/usuarios")
	assert.Contains(t, page.Body.String(), "Você não pode excluir sua própria conta por aqui.")
	_, err = deps.Repos.Accounts.GetByID(ctx, self.ID)
	assert.NoError(t, err)

	bruno, err := deps.Repos.Accounts.GetByEmail(ctx, "bruno@secretaria.test")
	require.NoError(t, err)
	page = b.follow(b.get("/usuarios/excluir/"+bruno.ID), "/usuarios")
	assert.Contains(t, page.Body.String(), "Usuário excluído com sucesso!")

	page = b.follow(b.get("/usuarios/excluir/"+bruno.ID), "/usuarios")
	assert.Contains(t, page.Body.String(), "Usuário não encontrado para exclusão.")
}

func TestEditOtherAccount(t *testing.T) {
	b, deps := newBrowser(t)
	ctx := context.Background()
	b.follow(b.post("/cadastro", url.Values{
		"nome": {"Bruno"}, "email": {"bruno@secretaria.test"}, "senha": {"abc"}, "confirmarSenha": {"abc"},
	}), "/login")
	b.loginAsSeed()
	bruno, err := deps.Repos.Accounts.GetByEmail(ctx, "bruno@secretaria.test")
	require.NoError(t, err)
	editPath := "/usuarios/editar/" + bruno.ID

	mismatch := b.post(editPath, url.Values{
		"nome": {"Bruno"}, "email": {"bruno@secretaria.test"}, "senha": {"x"}, "confirmarSenha": {"y"},
	})
	page := b.follow(mismatch, editPath)
	assert.Contains(t, page.Body.String(), "As novas senhas não coincidem.")

	clash := b.post(editPath, url.Values{"nome": {"Bruno"}, "email": {seedEmail}})
	page = b.follow(clash, editPath)
	assert.Contains(t, page.Body.String(), "Este e-mail já está em uso por outro usuário.")

	ok := b.post(editPath, url.Values{"nome": {"Bruno Souza"}, "email": {"bruno@secretaria.test"}})
	page = b.follow(ok, "/usuarios")
	assert.Contains(t, page.Body.String(), "Usuário atualizado com sucesso!")
	assert.Contains(t, page.Body.String(), "Bruno Souza")

	unchanged := b.login("bruno@secretaria.test", "abc")
	assert.Equal(t, "/", unchanged.Header().Get("Location"))
}

func TestOwnAccount(t *testing.T) {
	b, _ := newBrowser(t)
	b.loginAsSeed()

	details := b.get("/minha-conta/detalhes")
	assert.Equal(t, http.StatusOK, details.Code)
	assert.Contains(t, details.Body.String(), seedEmail)

	ok := b.post("/minha-conta/editar", url.Values{
		"nome": {"Admin"}, "email": {seedEmail}, "senha": {"novasenha"}, "confirmarSenha": {"novasenha"},
	})
	page := b.follow(ok, "/minha-conta/detalhes")
	assert.Contains(t, page.Body.String(), "Sua conta foi atualizada com sucesso!")

	b.follow(b.get("/logout"), "/login")
	assert.Equal(t, "/login", b.login(seedEmail, seedPassword).Header().Get("Location"))
	assert.Equal(t, "/", b.login(seedEmail, "novasenha").Header().Get("Location"))
}

func TestLogout(t *testing.T) {
	b, _ := newBrowser(t)
	b.loginAsSeed()
	require.Equal(t, http.StatusOK, b.get("/").Code)

	w := b.get("/logout")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	assert.NotContains(t, b.cookies, "secretaria.sid")

	assert.Equal(t, http.StatusFound, b.get("/").Code)
}
