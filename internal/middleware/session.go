package middleware

import (
	"context"
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cidade-aberta/internal/logger"
	"github.com/iliyamo/cidade-aberta/internal/model"
	"github.com/iliyamo/cidade-aberta/internal/repository"
	"github.com/iliyamo/cidade-aberta/internal/session"
)

const (
	actorKey     = "actor"
	sessionIDKey = "session_id"
)

// StaffLookup loads the current state of a staff account.
type StaffLookup interface {
	GetByID(ctx context.Context, id uint64) (model.Gestor, error)
}

// Session resolves the session cookie into a model.Actor stored on the
// context. Missing, unknown or expired sessions leave the caller anonymous.
// Every resolved request slides the session expiry forward.
//
// Staff sessions are checked against staff on every request: a deleted or
// deactivated account loses its session, and role or profile changes apply
// immediately.
func Session(store session.Store, staff StaffLookup, cookieName string, log *logger.Logger) echo.MiddlewareFunc {
	log = log.WithComponent("session")
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			actor := model.Anonymous()
			if ck, err := c.Cookie(cookieName); err == nil && ck.Value != "" {
				s, err := store.Get(ctx, ck.Value)
				switch {
				case err == nil:
					if a, ok := refreshStaff(ctx, store, staff, ck.Value, s.Actor(), log); ok {
						actor = a
						c.Set(sessionIDKey, ck.Value)
					}
				case !errors.Is(err, session.ErrNotFound):
					log.WithError(err).Warn("session lookup failed")
				}
			}
			actor.IP = c.RealIP()
			actor.Agent = c.Request().UserAgent()
			c.Set(actorKey, actor)
			return next(c)
		}
	}
}

func refreshStaff(ctx context.Context, store session.Store, staff StaffLookup, id string, a model.Actor, log *logger.Logger) (model.Actor, bool) {
	if !a.IsStaff() || staff == nil {
		return a, true
	}
	g, err := staff.GetByID(ctx, a.UserID)
	switch {
	case errors.Is(err, repository.ErrGestorNotFound), err == nil && !g.Ativo:
		if err := store.Delete(ctx, id); err != nil {
			log.WithError(err).Warn("revoking session failed")
		}
		return model.Anonymous(), false
	case err != nil:
		log.WithError(err).Warn("staff lookup failed")
		return model.Anonymous(), false
	}
	a.Role = g.NivelAcesso
	a.Nome = g.Nome
	a.Email = g.Email
	return a, true
}

// ActorOf returns the request actor, anonymous when Session did not run.
func ActorOf(c echo.Context) model.Actor {
	if a, ok := c.Get(actorKey).(model.Actor); ok {
		return a
	}
	a := model.Anonymous()
	a.IP = c.RealIP()
	a.Agent = c.Request().UserAgent()
	return a
}

// SessionID returns the id of the resolved session, or "".
func SessionID(c echo.Context) string {
	id, _ := c.Get(sessionIDKey).(string)
	return id
}
