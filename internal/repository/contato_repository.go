package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/cidade-aberta/internal/model"
)

// ContatoRepo provides data access for contact form messages.
type ContatoRepo struct {
	db *sql.DB
}

// NewContatoRepo returns a repository bound to db.
func NewContatoRepo(db *sql.DB) *ContatoRepo { return &ContatoRepo{db: db} }

// Create inserts c and fills in its ID.
func (r *ContatoRepo) Create(ctx context.Context, c *model.Contato) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO contatos (nome, email, assunto, mensagem, ip_origem, user_agent, data_envio, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.Nome, c.Email, c.Assunto, c.Mensagem, c.IPOrigem, nullString(c.UserAgent), Stamp(c.DataEnvio), c.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// CountFromIPSince counts messages sent from ip after since.
func (r *ContatoRepo) CountFromIPSince(ctx context.Context, ip string, since time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM contatos WHERE ip_origem = ? AND data_envio > ?`, ip, Stamp(since)).Scan(&n)
	return n, err
}

// List returns one page of messages, newest first. An empty status lists all.
func (r *ContatoRepo) List(ctx context.Context, status string, limit, offset int) ([]model.Contato, int, error) {
	cond, args := "1=1", []any{}
	if status != "" {
		cond, args = "status = ?", []any{status}
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contatos WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, nome, email, assunto, mensagem, ip_origem, user_agent, data_envio, status
		 FROM contatos WHERE `+cond+` ORDER BY data_envio DESC, id DESC LIMIT ? OFFSET ?`,
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []model.Contato{}
	for rows.Next() {
		var (
			c  model.Contato
			ua sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.Nome, &c.Email, &c.Assunto, &c.Mensagem, &c.IPOrigem, &ua, &c.DataEnvio, &c.Status); err != nil {
			return nil, 0, err
		}
		c.UserAgent = ua.String
		c.DataEnvio = c.DataEnvio.UTC()
		out = append(out, c)
	}
	return out, total, rows.Err()
}

// UpdateStatus moves a message to lido or respondido.
func (r *ContatoRepo) UpdateStatus(ctx context.Context, id uint64, status string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE contatos SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	return requireAffected(res, ErrContatoNotFound)
}
