package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/cidade-aberta/internal/config"
	"github.com/iliyamo/cidade-aberta/internal/handler"
	"github.com/iliyamo/cidade-aberta/internal/logger"
	"github.com/iliyamo/cidade-aberta/internal/model"
	"github.com/iliyamo/cidade-aberta/internal/queue"
	"github.com/iliyamo/cidade-aberta/internal/repository"
	"github.com/iliyamo/cidade-aberta/internal/service"
	"github.com/iliyamo/cidade-aberta/internal/session"
	"github.com/iliyamo/cidade-aberta/internal/storage"
	"github.com/iliyamo/cidade-aberta/internal/testutil"
	"github.com/iliyamo/cidade-aberta/internal/utils"
)

const cookieName = "ca_session"

type testServer struct {
	e        *echo.Echo
	gestores *repository.GestorRepo
}

func newServer(t *testing.T) *testServer {
	t.Helper()
	db := testutil.OpenDB(t)
	log := logger.Discard()

	photos, err := storage.NewPhotos(t.TempDir(), "http://localhost:8080", 5<<20)
	require.NoError(t, err)

	ocorrencias := repository.NewOcorrenciaRepo(db)
	gestores := repository.NewGestorRepo(db)
	contatos := repository.NewContatoRepo(db)
	logs := repository.NewAdminLogRepo(db)
	sessions := session.NewMemoryStore(time.Hour, nil)
	events := queue.Discard{}

	oc := service.NewOcorrenciaService(ocorrencias, logs, photos, events, log, 20, 100)
	auth := service.NewAuthService(gestores, ocorrencias, logs, sessions, "secret", bcrypt.MinCost, 5, 0, log)
	gs := service.NewGestorService(gestores, logs, "secret", 24*time.Hour, bcrypt.MinCost, log)
	cs := service.NewContatoService(contatos, logs, events, log, 5, 20, 100)

	e := New(Deps{
		DB:            db,
		Sessions:      sessions,
		Staff:         gestores,
		SessionCookie: cookieName,
		RateLimit:     config.RateLimitConfig{Enabled: false},
		Cache:         config.CacheConfig{Enabled: false},
		Log:           log,
	}, Handlers{
		Ocorrencias: handler.NewOcorrenciaHandler(oc, photos),
		Tracking:    handler.NewTrackingHandler(oc, photos),
		Contato:     handler.NewContatoHandler(cs),
		Auth:        handler.NewAuthHandler(auth, handler.CookieConfig{Name: cookieName, MaxAge: time.Hour}),
		AdminUsers:  handler.NewAdminUsersHandler(gs),
		Stats:       handler.NewStatsHandler(service.NewStatsService(ocorrencias)),
	})
	return &testServer{e: e, gestores: gestores}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (s *testServer) do(t *testing.T, method, path string, body any, ck *http.Cookie) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if ck != nil {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func (s *testServer) addStaff(t *testing.T, email, senha string, nivel model.Role) uint64 {
	t.Helper()
	hash, err := utils.HashPassword(senha, bcrypt.MinCost)
	require.NoError(t, err)
	g := model.Gestor{Nome: email, Email: email, SenhaHash: hash, NivelAcesso: nivel, Ativo: true, DataCriacao: time.Now().UTC()}
	require.NoError(t, s.gestores.Create(context.Background(), &g))
	return g.ID
}

func (s *testServer) login(t *testing.T, body map[string]string) *http.Cookie {
	t.Helper()
	rec, env := s.do(t, http.MethodPost, "/api/login", body, nil)
	require.Equal(t, http.StatusOK, rec.Code, env.Message)
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == cookieName {
			return ck
		}
	}
	t.Fatal("no session cookie")
	return nil
}

func novaOcorrencia() map[string]any {
	return map[string]any{
		"tipo":          "iluminacao",
		"descricao":     "Poste apagado há uma semana",
		"endereco":      "Rua 24 de Outubro, 500",
		"latitude":      "-2.4385",
		"longitude":     -54.7065,
		"nome_cidadao":  "Carlos",
		"email_cidadao": "carlos@example.com",
	}
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

func create(t *testing.T, s *testServer, body map[string]any) (uint64, string) {
	t.Helper()
	rec, env := s.do(t, http.MethodPost, "/api/ocorrencias", body, nil)
	require.Equal(t, http.StatusCreated, rec.Code, env.Message)
	out := decode[struct {
		ID     uint64 `json:"id"`
		Codigo string `json:"codigo"`
		Status string `json:"status"`
	}](t, env.Data)
	assert.Regexp(t, regexp.MustCompile(`^STM\d{6}$`), out.Codigo)
	assert.Equal(t, "pendente", out.Status)
	return out.ID, out.Codigo
}

func TestCreateAndTrack(t *testing.T) {
	s := newServer(t)
	_, code := create(t, s, novaOcorrencia())

	rec, env := s.do(t, http.MethodGet, "/api/rastreamento?codigo="+code, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, env.Message)
	assert.True(t, env.Success)
	track := decode[map[string]any](t, env.Data)
	assert.Equal(t, code, track["codigo"])
	assert.Len(t, track["timeline"], 4)
	assert.NotContains(t, track, "email_cidadao")

	rec, _ = s.do(t, http.MethodPost, "/api/rastreamento", map[string]string{"id_ocorrencia": code}, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = s.do(t, http.MethodGet, "/api/rastreamento?codigo=ABC", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "null", string(env.Data))
}

func TestCreateAcceptsCoordinatePair(t *testing.T) {
	s := newServer(t)
	body := novaOcorrencia()
	delete(body, "latitude")
	delete(body, "longitude")
	body["coordenadas"] = []any{-2.44, "-54.70"}
	create(t, s, body)
}

func multipartCreate(t *testing.T, s *testServer, foto []byte) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range map[string]string{
		"tipo":         "buraco",
		"descricao":    "Cratera em frente à escola",
		"endereco":     "Av. Mendonça Furtado, 1200",
		"latitude":     "-2,4301",
		"longitude":    "-54.7189",
		"nome_cidadao": "Dona Rita",
	} {
		require.NoError(t, w.WriteField(k, v))
	}
	fw, err := w.CreateFormFile("foto", "foto.png")
	require.NoError(t, err)
	_, err = fw.Write(foto)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/ocorrencias", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

func TestCreateWithPhoto(t *testing.T) {
	s := newServer(t)
	png := append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 32)...)

	rec, env := multipartCreate(t, s, png)
	require.Equal(t, http.StatusCreated, rec.Code, env.Message)
	assert.Regexp(t, `^http://localhost:8080/uploads/ocorrencia_.+\.png$`, decode[map[string]any](t, env.Data)["foto_url"])

	rec, env = multipartCreate(t, s, []byte("apenas texto, não é imagem"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, env.Message, "foto")
}

func TestCreateValidationAggregates(t *testing.T) {
	s := newServer(t)
	rec, env := s.do(t, http.MethodPost, "/api/ocorrencias", map[string]any{"descricao": "curta"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
	assert.Contains(t, env.Message, "Campo 'tipo' é obrigatório")
	assert.Contains(t, env.Message, "Campo 'descricao' deve ter pelo menos 10 caracteres")
	assert.Contains(t, env.Message, "Campo 'latitude' é obrigatório")
}

func TestMalformedJSON(t *testing.T) {
	s := newServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/ocorrencias", bytes.NewBufferString("{"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "JSON inválido")
}

func TestPublicListHidesReporter(t *testing.T) {
	s := newServer(t)
	create(t, s, novaOcorrencia())

	rec, env := s.do(t, http.MethodGet, "/api/ocorrencias", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[struct {
		Ocorrencias []map[string]any `json:"ocorrencias"`
		Total       int              `json:"total"`
	}](t, env.Data)
	require.Len(t, page.Ocorrencias, 1)
	assert.Equal(t, 1, page.Total)
	assert.NotContains(t, page.Ocorrencias[0], "email_cidadao")
	assert.NotContains(t, page.Ocorrencias[0], "nome_cidadao")
}

func TestMutationsRequireStaff(t *testing.T) {
	s := newServer(t)
	id, code := create(t, s, novaOcorrencia())

	body := map[string]any{"id": id, "action": "update_status", "status": "em_andamento"}
	rec, env := s.do(t, http.MethodPut, "/api/ocorrencias", body, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, env.Success)

	citizen := s.login(t, map[string]string{"email": "carlos@example.com", "codigo": code})
	rec, _ = s.do(t, http.MethodPut, "/api/ocorrencias", body, citizen)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = s.do(t, http.MethodDelete, fmt.Sprintf("/api/ocorrencias?id=%d", id), nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestStaffLifecycle(t *testing.T) {
	s := newServer(t)
	s.addStaff(t, "gestor@santarem.pa.gov.br", "senha-segura", model.RoleAdmin)
	id, code := create(t, s, novaOcorrencia())
	staff := s.login(t, map[string]string{"email": "gestor@santarem.pa.gov.br", "senha": "senha-segura"})

	body := map[string]any{"id": id, "action": "update_status", "status": "andamento", "observacoes": "Equipe enviada"}
	rec, env := s.do(t, http.MethodPut, "/api/ocorrencias", body, staff)
	require.Equal(t, http.StatusOK, rec.Code, env.Message)
	updated := decode[map[string]any](t, env.Data)
	assert.Equal(t, "em_andamento", updated["status"])
	assert.Equal(t, "carlos@example.com", updated["email_cidadao"])

	rec, env = s.do(t, http.MethodGet, "/api/rastreamento?codigo="+code, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Equipe enviada", decode[map[string]any](t, env.Data)["observacoes"])

	rec, _ = s.do(t, http.MethodPut, "/api/ocorrencias", map[string]any{"id": id, "descricao": "Poste apagado e fios expostos"}, staff)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = s.do(t, http.MethodDelete, "/api/ocorrencias", map[string]any{"id": fmt.Sprint(id)}, staff)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = s.do(t, http.MethodGet, "/api/rastreamento?codigo="+code, nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, env.Success)
}

func TestCitizenSeesOnlyOwnReports(t *testing.T) {
	s := newServer(t)
	_, code := create(t, s, novaOcorrencia())
	other := novaOcorrencia()
	other["email_cidadao"] = "outra@example.com"
	create(t, s, other)

	ck := s.login(t, map[string]string{"email": "CARLOS@example.com", "codigo": code})
	rec, env := s.do(t, http.MethodGet, "/api/ocorrencias", nil, ck)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[struct {
		Ocorrencias []map[string]any `json:"ocorrencias"`
	}](t, env.Data)
	require.Len(t, page.Ocorrencias, 1)
	assert.Equal(t, code, page.Ocorrencias[0]["codigo"])
}

func TestLoginFailureAndSession(t *testing.T) {
	s := newServer(t)
	s.addStaff(t, "gestor@santarem.pa.gov.br", "senha-segura", model.RoleSuperAdmin)

	rec, env := s.do(t, http.MethodPost, "/api/login", map[string]string{"email": "gestor@santarem.pa.gov.br", "senha": "errada"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, env.Success)

	rec, env = s.do(t, http.MethodGet, "/api/sessao", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode[map[string]any](t, env.Data)["authenticated"])

	ck := s.login(t, map[string]string{"usuario": "gestor@santarem.pa.gov.br", "senha": "senha-segura"})
	_, env = s.do(t, http.MethodGet, "/api/login", nil, ck)
	sess := decode[struct {
		Authenticated bool `json:"authenticated"`
		User          struct {
			Tipo        string `json:"tipo"`
			NivelAcesso string `json:"nivel_acesso"`
		} `json:"user"`
	}](t, env.Data)
	assert.True(t, sess.Authenticated)
	assert.Equal(t, "admin", sess.User.Tipo)
	assert.Equal(t, "super_admin", sess.User.NivelAcesso)

	rec, _ = s.do(t, http.MethodPost, "/api/sessao", nil, ck)
	require.Equal(t, http.StatusOK, rec.Code)
	_, env = s.do(t, http.MethodGet, "/api/sessao", nil, ck)
	assert.Equal(t, false, decode[map[string]any](t, env.Data)["authenticated"])
}

func TestStaffSessionFollowsAccount(t *testing.T) {
	s := newServer(t)
	s.addStaff(t, "chefe@santarem.pa.gov.br", "senha-segura", model.RoleSuperAdmin)
	viceID := s.addStaff(t, "vice@santarem.pa.gov.br", "senha-segura", model.RoleSuperAdmin)
	fiscalID := s.addStaff(t, "fiscal@santarem.pa.gov.br", "senha-segura", model.RoleAdmin)
	id, _ := create(t, s, novaOcorrencia())

	chefe := s.login(t, map[string]string{"email": "chefe@santarem.pa.gov.br", "senha": "senha-segura"})
	vice := s.login(t, map[string]string{"email": "vice@santarem.pa.gov.br", "senha": "senha-segura"})
	fiscal := s.login(t, map[string]string{"email": "fiscal@santarem.pa.gov.br", "senha": "senha-segura"})
	status := map[string]any{"id": id, "action": "update_status", "status": "em_andamento"}

	// Demotion applies to the open session.
	rec, env := s.do(t, http.MethodPut, "/api/admin_users", map[string]any{"id": viceID, "nivel_acesso": "admin"}, chefe)
	require.Equal(t, http.StatusOK, rec.Code, env.Message)
	_, env = s.do(t, http.MethodGet, "/api/sessao", nil, vice)
	assert.Equal(t, "admin", decode[map[string]any](t, env.Data)["user"].(map[string]any)["nivel_acesso"])
	rec, _ = s.do(t, http.MethodPost, "/api/admin_users", map[string]string{"nome": "Novo Gestor", "email": "novo@santarem.pa.gov.br"}, vice)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec, _ = s.do(t, http.MethodPut, "/api/ocorrencias", status, vice)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Deactivation ends it.
	rec, _ = s.do(t, http.MethodPut, "/api/admin_users", map[string]any{"id": viceID, "action": "toggle"}, chefe)
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = s.do(t, http.MethodPut, "/api/ocorrencias", status, vice)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	_, env = s.do(t, http.MethodGet, "/api/sessao", nil, vice)
	assert.Equal(t, false, decode[map[string]any](t, env.Data)["authenticated"])

	// Reactivating the account does not revive the old cookie.
	rec, _ = s.do(t, http.MethodPut, "/api/admin_users", map[string]any{"id": viceID, "action": "toggle"}, chefe)
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = s.do(t, http.MethodPut, "/api/ocorrencias", status, vice)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Deletion ends it too.
	rec, _ = s.do(t, http.MethodDelete, fmt.Sprintf("/api/admin_users?id=%d", fiscalID), nil, chefe)
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = s.do(t, http.MethodDelete, fmt.Sprintf("/api/ocorrencias?id=%d", id), nil, fiscal)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = s.do(t, http.MethodPut, "/api/ocorrencias", status, chefe)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLockedLoginLooksLikeBadPassword(t *testing.T) {
	s := newServer(t)
	s.addStaff(t, "chefe@santarem.pa.gov.br", "senha-segura", model.RoleSuperAdmin)
	bad := map[string]string{"email": "chefe@santarem.pa.gov.br", "senha": "errada"}

	for i := 0; i < 5; i++ {
		rec, _ := s.do(t, http.MethodPost, "/api/login", bad, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}
	rec, locked := s.do(t, http.MethodPost, "/api/login", map[string]string{"email": "chefe@santarem.pa.gov.br", "senha": "senha-segura"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	_, unknown := s.do(t, http.MethodPost, "/api/login", map[string]string{"email": "ninguem@santarem.pa.gov.br", "senha": "x"}, nil)
	assert.Equal(t, unknown.Message, locked.Message)
}

func TestAdminUsersFlow(t *testing.T) {
	s := newServer(t)
	superID := s.addStaff(t, "chefe@santarem.pa.gov.br", "senha-segura", model.RoleSuperAdmin)
	ck := s.login(t, map[string]string{"email": "chefe@santarem.pa.gov.br", "senha": "senha-segura"})

	rec, env := s.do(t, http.MethodPost, "/api/admin_users",
		map[string]string{"nome": "Novo Gestor", "email": "novo@santarem.pa.gov.br", "cargo": "Fiscal"}, ck)
	require.Equal(t, http.StatusCreated, rec.Code, env.Message)
	cred := decode[struct {
		Gestor struct {
			ID              uint64 `json:"id"`
			SenhaTemporaria bool   `json:"senha_temporaria"`
		} `json:"gestor"`
		SenhaTemporaria string `json:"senha_temporaria"`
		Convite         struct {
			Token string `json:"token"`
		} `json:"convite"`
	}](t, env.Data)
	assert.True(t, cred.Gestor.SenhaTemporaria)
	assert.Len(t, cred.SenhaTemporaria, 12)
	assert.NotContains(t, rec.Body.String(), "senha_hash")

	rec, _ = s.do(t, http.MethodPost, "/api/admin_users",
		map[string]string{"nome": "Outro", "email": "novo@santarem.pa.gov.br"}, ck)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, env = s.do(t, http.MethodPost, "/api/admin_users/convite",
		map[string]string{"token": cred.Convite.Token, "senha": "minha-senha-nova"}, nil)
	require.Equal(t, http.StatusOK, rec.Code, env.Message)
	assert.Equal(t, false, decode[map[string]any](t, env.Data)["senha_temporaria"])

	rec, _ = s.do(t, http.MethodPut, "/api/admin_users", map[string]any{"id": superID, "action": "toggle"}, ck)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec, _ = s.do(t, http.MethodDelete, fmt.Sprintf("/api/admin_users?id=%d", superID), nil, ck)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, env = s.do(t, http.MethodPut, "/api/admin_users", map[string]any{"id": cred.Gestor.ID, "action": "toggle"}, ck)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode[map[string]any](t, env.Data)["ativo"])

	rec, env = s.do(t, http.MethodGet, "/api/admin_users?action=logs", nil, ck)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decode[[]map[string]any](t, env.Data))

	rec, env = s.do(t, http.MethodGet, "/api/admin_users?action=stats", nil, ck)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[map[string]float64](t, env.Data)
	assert.Equal(t, float64(1), stats["admins_ativos"])
	assert.Equal(t, float64(1), stats["admins_inativos"])

	rec, _ = s.do(t, http.MethodDelete, fmt.Sprintf("/api/admin_users?id=%d", cred.Gestor.ID), nil, ck)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRegularAdminCannotManageStaff(t *testing.T) {
	s := newServer(t)
	s.addStaff(t, "gestor@santarem.pa.gov.br", "senha-segura", model.RoleAdmin)
	ck := s.login(t, map[string]string{"email": "gestor@santarem.pa.gov.br", "senha": "senha-segura"})

	rec, env := s.do(t, http.MethodPost, "/api/admin_users", map[string]string{"nome": "X Y", "email": "x@y.gov.br"}, ck)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, env.Success)

	rec, _ = s.do(t, http.MethodGet, "/api/admin_users", nil, ck)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestContactRateLimit(t *testing.T) {
	s := newServer(t)
	msg := map[string]string{
		"nome":     "Beatriz",
		"email":    "bia@example.com",
		"assunto":  "Coleta de lixo",
		"mensagem": "Gostaria de saber os horários da coleta no meu bairro",
	}
	for i := 0; i < 5; i++ {
		rec, env := s.do(t, http.MethodPost, "/api/contato", msg, nil)
		require.Equal(t, http.StatusCreated, rec.Code, env.Message)
		assert.Regexp(t, `^CONT\d{6}$`, decode[map[string]any](t, env.Data)["protocolo"])
	}
	rec, env := s.do(t, http.MethodPost, "/api/contato", msg, nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.False(t, env.Success)
}

func TestContactSpam(t *testing.T) {
	s := newServer(t)
	rec, _ := s.do(t, http.MethodPost, "/api/contato", map[string]string{
		"nome":     "Spammer",
		"email":    "spam@example.com",
		"assunto":  "Congratulations winner",
		"mensagem": "Claim your free money today",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStats(t *testing.T) {
	s := newServer(t)
	create(t, s, novaOcorrencia())
	rec, env := s.do(t, http.MethodGet, "/api/stats", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	st := decode[map[string]any](t, env.Data)
	assert.Contains(t, st, "resumo")
	assert.Contains(t, st, "historico_mensal")
}

func TestMethodNotAllowedAndPreflight(t *testing.T) {
	s := newServer(t)
	rec, env := s.do(t, http.MethodPatch, "/api/ocorrencias", nil, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "Método não permitido", env.Message)

	req := httptest.NewRequest(http.MethodOptions, "/api/ocorrencias", nil)
	req.Header.Set(echo.HeaderOrigin, "http://example.com")
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)
	out := httptest.NewRecorder()
	s.e.ServeHTTP(out, req)
	assert.Equal(t, http.StatusNoContent, out.Code)
	assert.Empty(t, out.Body.String())
	assert.Equal(t, "*", out.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func TestSecurityHeadersAndHealth(t *testing.T) {
	s := newServer(t)
	rec, env := s.do(t, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}
