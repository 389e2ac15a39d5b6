package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/cidade-aberta/internal/logger"
	"github.com/iliyamo/cidade-aberta/internal/model"
	"github.com/iliyamo/cidade-aberta/internal/queue"
	"github.com/iliyamo/cidade-aberta/internal/repository"
	"github.com/iliyamo/cidade-aberta/internal/validation"
)

// NovoContato is a contact form submission.
type NovoContato struct {
	Nome     string `json:"nome" validate:"required,min=2,max=100" sanitize:"html"`
	Email    string `json:"email" validate:"required,email,max=100"`
	Assunto  string `json:"assunto" validate:"required,min=5,max=150" sanitize:"html"`
	Mensagem string `json:"mensagem" validate:"required,min=10,max=2000" sanitize:"html"`
}

// Protocolo formats the receipt number shown to the sender.
func Protocolo(id uint64) string { return fmt.Sprintf("CONT%06d", id) }

// ContatoService handles the public contact form and its staff inbox.
type ContatoService struct {
	Repo         *repository.ContatoRepo
	Events       Notifier
	Log          *logger.Logger
	Now          Clock
	MaxPerHour   int
	DefaultLimit int
	MaxLimit     int

	audit auditor
}

func NewContatoService(repo *repository.ContatoRepo, logs *repository.AdminLogRepo, events Notifier,
	log *logger.Logger, maxPerHour, defLimit, maxLimit int) *ContatoService {
	log = log.WithComponent("contato")
	return &ContatoService{
		Repo:         repo,
		Events:       events,
		Log:          log,
		MaxPerHour:   maxPerHour,
		DefaultLimit: defLimit,
		MaxLimit:     maxLimit,
		audit:        auditor{logs: logs, log: log},
	}
}

// Send validates and stores a message from the actor's IP. Spam is
// rejected before the per-IP limit is counted.
func (s *ContatoService) Send(ctx context.Context, actor model.Actor, in NovoContato) (model.Contato, error) {
	raw := in
	if err := validation.Struct(&in); err != nil {
		return model.Contato{}, err
	}
	if validation.LooksLikeSpam(raw.Assunto, raw.Mensagem) {
		s.Log.WithField("ip", actor.IP).Warn("contact message rejected as spam")
		return model.Contato{}, ErrSpam
	}

	now := s.Now.now()
	if s.MaxPerHour > 0 {
		n, err := s.Repo.CountFromIPSince(ctx, actor.IP, now.Add(-time.Hour))
		if err != nil {
			return model.Contato{}, err
		}
		if n >= s.MaxPerHour {
			return model.Contato{}, ErrRateLimited
		}
	}

	c := model.Contato{
		Nome:      in.Nome,
		Email:     strings.ToLower(in.Email),
		Assunto:   in.Assunto,
		Mensagem:  in.Mensagem,
		IPOrigem:  actor.IP,
		UserAgent: actor.Agent,
		DataEnvio: now,
		Status:    model.ContatoNovo,
	}
	if err := s.Repo.Create(ctx, &c); err != nil {
		return model.Contato{}, err
	}

	publish(ctx, s.Events, s.Log, queue.Notification{
		Kind:      queue.KindContatoRecebido,
		Protocolo: Protocolo(c.ID),
		Nome:      c.Nome,
		Email:     c.Email,
		Assunto:   c.Assunto,
		Mensagem:  c.Mensagem,
	})
	return c, nil
}

// List returns the staff inbox, optionally filtered by status.
func (s *ContatoService) List(ctx context.Context, actor model.Actor, status string, limit, offset int) ([]model.Contato, int, error) {
	if err := requireStaff(actor); err != nil {
		return nil, 0, err
	}
	status = strings.TrimSpace(status)
	if status != "" && !validContatoStatus(status) {
		return nil, 0, validation.Fail("status", "contém valor inválido")
	}
	limit, offset = clampPage(limit, offset, s.DefaultLimit, s.MaxLimit)
	return s.Repo.List(ctx, status, limit, offset)
}

// UpdateStatus marks a message as read or answered.
func (s *ContatoService) UpdateStatus(ctx context.Context, actor model.Actor, id uint64, status string) error {
	if err := requireStaff(actor); err != nil {
		return err
	}
	if id == 0 {
		return validation.Fail("id", "é obrigatório")
	}
	status = strings.TrimSpace(status)
	if !validContatoStatus(status) {
		return validation.Fail("status", "contém valor inválido")
	}
	if err := s.Repo.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	s.audit.record(ctx, actor, model.AcaoContatoAtualizado, map[string]any{"contato_id": id, "status": status}, s.Now.now())
	return nil
}

func validContatoStatus(s string) bool {
	return s == model.ContatoNovo || s == model.ContatoLido || s == model.ContatoRespondido
}
