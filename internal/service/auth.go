package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/cidade-aberta/internal/logger"
	"github.com/iliyamo/cidade-aberta/internal/model"
	"github.com/iliyamo/cidade-aberta/internal/repository"
	"github.com/iliyamo/cidade-aberta/internal/session"
	"github.com/iliyamo/cidade-aberta/internal/tracking"
	"github.com/iliyamo/cidade-aberta/internal/utils"
	"github.com/iliyamo/cidade-aberta/internal/validation"
)

const (
	minPasswordLen      = 8
	defaultLockDuration = 15 * time.Minute
)

// Credentials is the unified login body. Staff send a password; citizens
// send the email they reported with and one of their tracking codes.
type Credentials struct {
	Email   string `json:"email"`
	Usuario string `json:"usuario"`
	Senha   string `json:"senha"`
	Codigo  string `json:"codigo"`
}

// LoginResult is a freshly created session.
type LoginResult struct {
	ID      string
	Session session.Session
	// SenhaTemporaria tells staff they still hold a generated password.
	SenhaTemporaria bool
}

// AuthService handles logins, logouts, password changes and invites.
type AuthService struct {
	Gestores     *repository.GestorRepo
	Ocorrencias  *repository.OcorrenciaRepo
	Sessions     session.Store
	Secret       string
	BcryptCost   int
	MaxAttempts  int
	LockDuration time.Duration
	FailureDelay time.Duration
	Log          *logger.Logger
	Now          Clock
	// Sleep waits out the failed-login delay; tests replace it.
	Sleep func(ctx context.Context, d time.Duration)

	audit auditor
}

func NewAuthService(gestores *repository.GestorRepo, ocorrencias *repository.OcorrenciaRepo, logs *repository.AdminLogRepo,
	sessions session.Store, secret string, cost, maxAttempts int, delay time.Duration, log *logger.Logger) *AuthService {
	log = log.WithComponent("auth")
	return &AuthService{
		Gestores:     gestores,
		Ocorrencias:  ocorrencias,
		Sessions:     sessions,
		Secret:       secret,
		BcryptCost:   cost,
		MaxAttempts:  maxAttempts,
		LockDuration: defaultLockDuration,
		FailureDelay: delay,
		Log:          log,
		Sleep:        sleepCtx,
		audit:        auditor{logs: logs, log: log},
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func (s *AuthService) fail(ctx context.Context, err error) error {
	if s.Sleep != nil {
		s.Sleep(ctx, s.FailureDelay)
	}
	return err
}

// Login authenticates staff by password or a citizen by email and tracking
// code, then opens a session. ip and agent end up in the audit log.
func (s *AuthService) Login(ctx context.Context, c Credentials, ip, agent string) (LoginResult, error) {
	login := strings.TrimSpace(c.Email)
	if login == "" {
		login = strings.TrimSpace(c.Usuario)
	}
	if login == "" {
		return LoginResult{}, validation.Fail("email", "é obrigatório")
	}

	switch {
	case c.Senha != "":
		return s.staffLogin(ctx, login, c.Senha, ip, agent)
	case strings.TrimSpace(c.Codigo) != "":
		return s.citizenLogin(ctx, login, c.Codigo)
	}
	return LoginResult{}, validation.Fail("senha", "é obrigatório")
}

func (s *AuthService) staffLogin(ctx context.Context, login, senha, ip, agent string) (LoginResult, error) {
	g, err := s.Gestores.FindActiveByLogin(ctx, login)
	if errors.Is(err, repository.ErrGestorNotFound) {
		return LoginResult{}, s.fail(ctx, ErrInvalidCredentials)
	}
	if err != nil {
		return LoginResult{}, err
	}
	now := s.Now.now()
	// Locked accounts answer exactly like a wrong password.
	if g.LockedAt(now) {
		return LoginResult{}, s.fail(ctx, ErrInvalidCredentials)
	}

	if !utils.VerifyPassword(g.SenhaHash, senha) {
		tentativas := g.TentativasLogin + 1
		if g.Bloqueado {
			tentativas = 1
		}
		var until *time.Time
		if s.MaxAttempts > 0 && tentativas >= s.MaxAttempts {
			t := now.Add(s.LockDuration)
			until = &t
		}
		if err := s.Gestores.RecordLoginFailure(ctx, g.ID, tentativas, until); err != nil {
			return LoginResult{}, err
		}
		s.Log.WithFields(map[string]any{"gestor": g.ID, "tentativas": tentativas, "ip": ip}).Warn("staff login failed")
		return LoginResult{}, s.fail(ctx, ErrInvalidCredentials)
	}

	if err := s.Gestores.RecordLoginSuccess(ctx, g.ID, now); err != nil {
		return LoginResult{}, err
	}
	sess := session.Session{Role: g.NivelAcesso, UserID: g.ID, Nome: g.Nome, Email: g.Email}
	id, err := s.Sessions.Create(ctx, sess)
	if err != nil {
		return LoginResult{}, err
	}

	actor := sess.Actor()
	actor.IP, actor.Agent = ip, agent
	s.audit.record(ctx, actor, model.AcaoLogin, map[string]any{"email": g.Email}, now)
	return LoginResult{ID: id, Session: sess, SenhaTemporaria: g.SenhaTemporaria}, nil
}

func (s *AuthService) citizenLogin(ctx context.Context, email, codigo string) (LoginResult, error) {
	o, err := s.Ocorrencias.FindByEmailAndCodigo(ctx, email, tracking.NormalizeCode(codigo))
	if errors.Is(err, repository.ErrOcorrenciaNotFound) {
		return LoginResult{}, s.fail(ctx, ErrInvalidCredentials)
	}
	if err != nil {
		return LoginResult{}, err
	}
	sess := session.Session{Role: model.RoleCitizen, Nome: o.NomeCidadao, Email: strings.ToLower(o.EmailCidadao)}
	id, err := s.Sessions.Create(ctx, sess)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{ID: id, Session: sess}, nil
}

// Logout ends the session. Unknown ids are ignored.
func (s *AuthService) Logout(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return s.Sessions.Delete(ctx, id)
}

// ChangePassword replaces the actor's own password after checking the
// current one.
func (s *AuthService) ChangePassword(ctx context.Context, actor model.Actor, atual, nova string) error {
	if err := requireStaff(actor); err != nil {
		return err
	}
	if atual == "" {
		return validation.Fail("senha_atual", "é obrigatório")
	}
	if err := checkPassword("nova_senha", nova); err != nil {
		return err
	}
	g, err := s.Gestores.GetByID(ctx, actor.UserID)
	if err != nil {
		return err
	}
	if !utils.VerifyPassword(g.SenhaHash, atual) {
		return s.fail(ctx, ErrInvalidCredentials)
	}
	hash, err := utils.HashPassword(nova, s.BcryptCost)
	if err != nil {
		return err
	}
	if err := s.Gestores.SetPassword(ctx, g.ID, hash, false); err != nil {
		return err
	}
	s.audit.record(ctx, actor, model.AcaoSenhaAlterada, map[string]any{"gestor_id": g.ID}, s.Now.now())
	return nil
}

// AcceptInvite sets the password of the account an invite was issued for.
// The token must verify, match the stored digest and not be expired.
func (s *AuthService) AcceptInvite(ctx context.Context, token, nova string, ip, agent string) (model.Gestor, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return model.Gestor{}, validation.Fail("token", "é obrigatório")
	}
	if err := checkPassword("senha", nova); err != nil {
		return model.Gestor{}, err
	}
	id, err := utils.ParseInviteToken(s.Secret, token)
	if err != nil {
		return model.Gestor{}, err
	}
	g, err := s.Gestores.GetByInviteHash(ctx, utils.HashToken(token))
	if errors.Is(err, repository.ErrGestorNotFound) {
		return model.Gestor{}, utils.ErrInvalidInvite
	}
	if err != nil {
		return model.Gestor{}, err
	}
	now := s.Now.now()
	if g.ID != id || g.TokenExpira == nil || !g.TokenExpira.After(now) {
		return model.Gestor{}, utils.ErrInvalidInvite
	}

	hash, err := utils.HashPassword(nova, s.BcryptCost)
	if err != nil {
		return model.Gestor{}, err
	}
	if err := s.Gestores.SetPassword(ctx, g.ID, hash, false); err != nil {
		return model.Gestor{}, err
	}
	actor := model.Actor{Role: g.NivelAcesso, UserID: g.ID, IP: ip, Agent: agent}
	s.audit.record(ctx, actor, model.AcaoConviteAceito, map[string]any{"gestor_id": g.ID}, now)
	return s.Gestores.GetByID(ctx, g.ID)
}

func checkPassword(field, p string) error {
	if strings.TrimSpace(p) == "" {
		return validation.Fail(field, "é obrigatório")
	}
	if len([]rune(p)) < minPasswordLen {
		return validation.Fail(field, "deve ter pelo menos 8 caracteres")
	}
	return nil
}
