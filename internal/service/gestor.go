package service

import (
	"context"
	"time"

	"github.com/iliyamo/cidade-aberta/internal/logger"
	"github.com/iliyamo/cidade-aberta/internal/model"
	"github.com/iliyamo/cidade-aberta/internal/repository"
	"github.com/iliyamo/cidade-aberta/internal/utils"
	"github.com/iliyamo/cidade-aberta/internal/validation"
)

const tempPasswordLen = 12

// NovoGestor is the body for creating a staff account.
type NovoGestor struct {
	Nome         string `json:"nome" validate:"required,min=2,max=100" sanitize:"html"`
	Email        string `json:"email" validate:"required,email,max=100"`
	Cargo        string `json:"cargo" validate:"max=100" sanitize:"html"`
	Departamento string `json:"departamento" validate:"max=100" sanitize:"html"`
	NivelAcesso  string `json:"nivel_acesso" validate:"omitempty,oneof=admin super_admin"`
}

// GestorEdicao is the body for editing a profile. Nil means unchanged.
type GestorEdicao struct {
	Nome         *string `json:"nome" validate:"omitnil,min=2,max=100" sanitize:"html"`
	Email        *string `json:"email" validate:"omitnil,email,max=100"`
	Cargo        *string `json:"cargo" validate:"omitempty,max=100" sanitize:"html"`
	Departamento *string `json:"departamento" validate:"omitempty,max=100" sanitize:"html"`
	NivelAcesso  *string `json:"nivel_acesso" validate:"omitnil,oneof=admin super_admin"`
}

// Credenciais is what a new or reset account receives: a temporary password
// and an invite token for choosing a real one.
type Credenciais struct {
	Gestor          model.Gestor
	SenhaTemporaria string
	Convite         utils.InviteToken
}

// GestorService manages staff accounts.
type GestorService struct {
	Repo       *repository.GestorRepo
	Logs       *repository.AdminLogRepo
	Secret     string
	InviteTTL  time.Duration
	BcryptCost int
	Log        *logger.Logger
	Now        Clock

	audit auditor
}

func NewGestorService(repo *repository.GestorRepo, logs *repository.AdminLogRepo, secret string,
	inviteTTL time.Duration, cost int, log *logger.Logger) *GestorService {
	log = log.WithComponent("gestores")
	return &GestorService{
		Repo:       repo,
		Logs:       logs,
		Secret:     secret,
		InviteTTL:  inviteTTL,
		BcryptCost: cost,
		Log:        log,
		audit:      auditor{logs: logs, log: log},
	}
}

// List returns every staff account.
func (s *GestorService) List(ctx context.Context, actor model.Actor) ([]model.Gestor, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	return s.Repo.List(ctx)
}

// AuditLog returns recent audit entries.
func (s *GestorService) AuditLog(ctx context.Context, actor model.Actor, limit, offset int) ([]model.AdminLog, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	limit, offset = clampPage(limit, offset, 50, 200)
	return s.Logs.List(ctx, limit, offset)
}

// PanelStats returns active/inactive counts and today's logins.
func (s *GestorService) PanelStats(ctx context.Context, actor model.Actor) (repository.GestorCounts, error) {
	if err := requireStaff(actor); err != nil {
		return repository.GestorCounts{}, err
	}
	now := s.Now.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return s.Repo.Counts(ctx, midnight)
}

// Create opens a new staff account with a temporary password and an invite.
func (s *GestorService) Create(ctx context.Context, actor model.Actor, in NovoGestor) (Credenciais, error) {
	if err := requireSuperAdmin(actor); err != nil {
		return Credenciais{}, err
	}
	if err := validation.Struct(&in); err != nil {
		return Credenciais{}, err
	}
	nivel := model.RoleAdmin
	if in.NivelAcesso != "" {
		nivel = model.Role(in.NivelAcesso)
	}

	senha, err := utils.TemporaryPassword(tempPasswordLen)
	if err != nil {
		return Credenciais{}, err
	}
	hash, err := utils.HashPassword(senha, s.BcryptCost)
	if err != nil {
		return Credenciais{}, err
	}
	now := s.Now.now()
	criador := actor.UserID
	g := model.Gestor{
		Nome:            in.Nome,
		Email:           in.Email,
		SenhaHash:       hash,
		Cargo:           in.Cargo,
		Departamento:    in.Departamento,
		NivelAcesso:     nivel,
		Ativo:           true,
		SenhaTemporaria: true,
		CriadoPor:       &criador,
		DataCriacao:     now,
	}
	if err := s.Repo.Create(ctx, &g); err != nil {
		return Credenciais{}, err
	}
	convite, err := s.invite(ctx, g.ID)
	if err != nil {
		return Credenciais{}, err
	}

	s.audit.record(ctx, actor, model.AcaoGestorCriado, map[string]any{
		"gestor_id":    g.ID,
		"email":        g.Email,
		"nivel_acesso": string(g.NivelAcesso),
	}, now)
	g, err = s.Repo.GetByID(ctx, g.ID)
	if err != nil {
		return Credenciais{}, err
	}
	return Credenciais{Gestor: g, SenhaTemporaria: senha, Convite: convite}, nil
}

func (s *GestorService) invite(ctx context.Context, id uint64) (utils.InviteToken, error) {
	tok, err := utils.NewInviteToken(s.Secret, id, s.InviteTTL)
	if err != nil {
		return utils.InviteToken{}, err
	}
	if err := s.Repo.SetInvite(ctx, id, utils.HashToken(tok.Token), tok.Exp); err != nil {
		return utils.InviteToken{}, err
	}
	return tok, nil
}

// Update edits a profile. Super admins edit anyone; other staff may edit
// their own name, title and department only.
func (s *GestorService) Update(ctx context.Context, actor model.Actor, id uint64, in GestorEdicao) (model.Gestor, error) {
	if err := requireStaff(actor); err != nil {
		return model.Gestor{}, err
	}
	if id == 0 {
		return model.Gestor{}, validation.Fail("id", "é obrigatório")
	}
	if !actor.IsSuperAdmin() && (id != actor.UserID || in.Email != nil || in.NivelAcesso != nil) {
		return model.Gestor{}, ErrSuperAdminOnly
	}
	if err := validation.Struct(&in); err != nil {
		return model.Gestor{}, err
	}
	if in.NivelAcesso != nil && id == actor.UserID && *in.NivelAcesso != string(actor.Role) {
		return model.Gestor{}, ErrSelfAction
	}

	g, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return model.Gestor{}, err
	}
	if in.Nome != nil {
		g.Nome = *in.Nome
	}
	if in.Email != nil {
		g.Email = *in.Email
	}
	if in.Cargo != nil {
		g.Cargo = *in.Cargo
	}
	if in.Departamento != nil {
		g.Departamento = *in.Departamento
	}
	if in.NivelAcesso != nil {
		g.NivelAcesso = model.Role(*in.NivelAcesso)
	}
	if err := s.Repo.UpdateProfile(ctx, g); err != nil {
		return model.Gestor{}, err
	}
	s.audit.record(ctx, actor, model.AcaoGestorEditado, map[string]any{"gestor_id": id}, s.Now.now())
	return s.Repo.GetByID(ctx, id)
}

// Toggle flips the active flag. Staff cannot deactivate themselves.
func (s *GestorService) Toggle(ctx context.Context, actor model.Actor, id uint64) (model.Gestor, error) {
	if err := s.guardOther(actor, id); err != nil {
		return model.Gestor{}, err
	}
	g, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return model.Gestor{}, err
	}
	if err := s.Repo.SetAtivo(ctx, id, !g.Ativo); err != nil {
		return model.Gestor{}, err
	}
	g.Ativo = !g.Ativo
	s.audit.record(ctx, actor, model.AcaoGestorStatus, map[string]any{"gestor_id": id, "ativo": g.Ativo}, s.Now.now())
	return g, nil
}

// ResetPassword issues a new temporary password and invite, and unlocks
// the account.
func (s *GestorService) ResetPassword(ctx context.Context, actor model.Actor, id uint64) (Credenciais, error) {
	if err := s.guardOther(actor, id); err != nil {
		return Credenciais{}, err
	}
	g, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return Credenciais{}, err
	}
	senha, err := utils.TemporaryPassword(tempPasswordLen)
	if err != nil {
		return Credenciais{}, err
	}
	hash, err := utils.HashPassword(senha, s.BcryptCost)
	if err != nil {
		return Credenciais{}, err
	}
	if err := s.Repo.SetPassword(ctx, id, hash, true); err != nil {
		return Credenciais{}, err
	}
	convite, err := s.invite(ctx, id)
	if err != nil {
		return Credenciais{}, err
	}
	s.audit.record(ctx, actor, model.AcaoGestorSenhaResetada, map[string]any{"gestor_id": id}, s.Now.now())
	g, err = s.Repo.GetByID(ctx, g.ID)
	if err != nil {
		return Credenciais{}, err
	}
	return Credenciais{Gestor: g, SenhaTemporaria: senha, Convite: convite}, nil
}

// Delete removes a staff account. Staff cannot delete themselves.
func (s *GestorService) Delete(ctx context.Context, actor model.Actor, id uint64) error {
	if err := s.guardOther(actor, id); err != nil {
		return err
	}
	g, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	s.audit.record(ctx, actor, model.AcaoGestorExcluido, map[string]any{"gestor_id": id, "email": g.Email}, s.Now.now())
	return nil
}

// guardOther enforces the super admin rule and rejects acting on oneself.
func (s *GestorService) guardOther(actor model.Actor, id uint64) error {
	if err := requireSuperAdmin(actor); err != nil {
		return err
	}
	if id == 0 {
		return validation.Fail("id", "é obrigatório")
	}
	if id == actor.UserID {
		return ErrSelfAction
	}
	return nil
}
