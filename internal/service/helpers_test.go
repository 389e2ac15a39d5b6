package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/cidade-aberta/internal/logger"
	"github.com/iliyamo/cidade-aberta/internal/model"
	"github.com/iliyamo/cidade-aberta/internal/queue"
	"github.com/iliyamo/cidade-aberta/internal/repository"
	"github.com/iliyamo/cidade-aberta/internal/session"
	"github.com/iliyamo/cidade-aberta/internal/testutil"
	"github.com/iliyamo/cidade-aberta/internal/utils"
	"github.com/iliyamo/cidade-aberta/internal/validation"
)

const testSecret = "test-secret"

var base = time.Date(2025, 5, 20, 14, 0, 0, 0, time.UTC)

type fakeNotifier struct {
	sent []queue.Notification
	err  error
}

func (f *fakeNotifier) Publish(_ context.Context, n queue.Notification) error {
	f.sent = append(f.sent, n)
	return f.err
}

type env struct {
	ocorrencias *repository.OcorrenciaRepo
	gestores    *repository.GestorRepo
	contatos    *repository.ContatoRepo
	logs        *repository.AdminLogRepo
	sessions    *session.MemoryStore
	events      *fakeNotifier
	now         time.Time
	sleeps      int
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.OpenDB(t)
	e := &env{
		ocorrencias: repository.NewOcorrenciaRepo(db),
		gestores:    repository.NewGestorRepo(db),
		contatos:    repository.NewContatoRepo(db),
		logs:        repository.NewAdminLogRepo(db),
		events:      &fakeNotifier{},
		now:         base,
	}
	e.sessions = session.NewMemoryStore(time.Hour, func() time.Time { return e.now })
	return e
}

func (e *env) clock() Clock { return func() time.Time { return e.now } }

func (e *env) ocorrenciaService() *OcorrenciaService {
	s := NewOcorrenciaService(e.ocorrencias, e.logs, nil, e.events, logger.Discard(), 20, 100)
	s.Now = e.clock()
	return s
}

func (e *env) gestorService() *GestorService {
	s := NewGestorService(e.gestores, e.logs, testSecret, 24*time.Hour, bcrypt.MinCost, logger.Discard())
	s.Now = e.clock()
	return s
}

func (e *env) authService() *AuthService {
	s := NewAuthService(e.gestores, e.ocorrencias, e.logs, e.sessions, testSecret, bcrypt.MinCost, 5, time.Second, logger.Discard())
	s.Now = e.clock()
	s.Sleep = func(context.Context, time.Duration) { e.sleeps++ }
	return s
}

// addGestor stores an active staff account with the given password.
func (e *env) addGestor(t *testing.T, nome, email, senha string, nivel model.Role) model.Actor {
	t.Helper()
	hash, err := utils.HashPassword(senha, bcrypt.MinCost)
	require.NoError(t, err)
	g := model.Gestor{Nome: nome, Email: email, SenhaHash: hash, NivelAcesso: nivel, Ativo: true, DataCriacao: base}
	require.NoError(t, e.gestores.Create(context.Background(), &g))
	return model.Actor{Role: nivel, UserID: g.ID, Nome: g.Nome, Email: g.Email, IP: "10.0.0.1", Agent: "test"}
}

func validNova() NovaOcorrencia {
	return NovaOcorrencia{
		Tipo:         "buraco",
		Descricao:    "Buraco grande na pista",
		Endereco:     "Av. Tapajós, 100",
		Latitude:     validation.Float(-2.42),
		Longitude:    validation.Float(-54.71),
		NomeCidadao:  "Ana",
		EmailCidadao: "Ana@Example.com",
	}
}

var (
	anon    = model.Anonymous()
	citizen = model.Actor{Role: model.RoleCitizen, Nome: "Ana", Email: "ana@example.com"}
)
