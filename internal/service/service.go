package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/iliyamo/cidade-aberta/internal/logger"
	"github.com/iliyamo/cidade-aberta/internal/model"
	"github.com/iliyamo/cidade-aberta/internal/queue"
	"github.com/iliyamo/cidade-aberta/internal/repository"
)

// Notifier publishes notification events. Failures never fail the request.
type Notifier interface {
	Publish(ctx context.Context, n queue.Notification) error
}

// Clock returns the current time. Services default to repository.Now.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return repository.Now()
	}
	return repository.Stamp(c())
}

func requireStaff(a model.Actor) error {
	if !a.Authenticated() {
		return ErrUnauthenticated
	}
	if !a.IsStaff() {
		return ErrForbidden
	}
	return nil
}

func requireSuperAdmin(a model.Actor) error {
	if err := requireStaff(a); err != nil {
		return err
	}
	if !a.IsSuperAdmin() {
		return ErrSuperAdminOnly
	}
	return nil
}

// auditor appends admin_logs rows. Write failures are logged and swallowed.
type auditor struct {
	logs *repository.AdminLogRepo
	log  *logger.Logger
}

func (a auditor) record(ctx context.Context, actor model.Actor, acao string, detalhes map[string]any, at time.Time) {
	if a.logs == nil {
		return
	}
	raw, err := json.Marshal(detalhes)
	if err != nil {
		raw = []byte("{}")
	}
	entry := &model.AdminLog{
		AdminID:     actor.UserID,
		Acao:        acao,
		Detalhes:    string(raw),
		IPAddress:   actor.IP,
		UserAgent:   actor.Agent,
		DataCriacao: at,
	}
	if err := a.logs.Append(ctx, entry); err != nil {
		a.log.WithError(err).WithField("acao", acao).Warn("audit log write failed")
	}
}

func publish(ctx context.Context, n Notifier, log *logger.Logger, ev queue.Notification) {
	if n == nil {
		return
	}
	if err := n.Publish(ctx, ev); err != nil {
		log.WithError(err).WithField("kind", ev.Kind).Warn("notification not published")
	}
}

// clampPage applies the default and maximum page size.
func clampPage(limit, offset, def, max int) (int, int) {
	if limit <= 0 {
		limit = def
	}
	if limit > max {
		limit = max
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
