// Package session keeps server-side login state keyed by an opaque cookie
// value. Every successful lookup slides the expiry forward by the
// inactivity window, so idle sessions lapse and the caller is treated as
// anonymous again.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/cidade-aberta/internal/model"
)

// ErrNotFound is returned for unknown or expired session ids.
var ErrNotFound = errors.New("session: not found")

// Session is the state stored per login.
type Session struct {
	Role      model.Role `json:"role"`
	UserID    uint64     `json:"user_id,omitempty"`
	Nome      string     `json:"nome"`
	Email     string     `json:"email"`
	CreatedAt time.Time  `json:"created_at"`
	LastSeen  time.Time  `json:"last_seen"`
}

// Actor converts the stored state to a request actor.
func (s Session) Actor() model.Actor {
	return model.Actor{Role: s.Role, UserID: s.UserID, Nome: s.Nome, Email: s.Email}
}

// Store persists sessions.
type Store interface {
	// Create stores s under a fresh id and returns the id.
	Create(ctx context.Context, s Session) (string, error)
	// Get returns the session and refreshes its expiry.
	Get(ctx context.Context, id string) (Session, error)
	// Delete ends the session. Unknown ids are not an error.
	Delete(ctx context.Context, id string) error
}
