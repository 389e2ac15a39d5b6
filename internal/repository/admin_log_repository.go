package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/cidade-aberta/internal/model"
)

// AdminLogRepo appends to and reads the audit trail. Rows are never updated
// or deleted.
type AdminLogRepo struct {
	db *sql.DB
}

// NewAdminLogRepo returns a repository bound to db.
func NewAdminLogRepo(db *sql.DB) *AdminLogRepo { return &AdminLogRepo{db: db} }

// Append stores one entry. Detalhes must already be a JSON document.
func (r *AdminLogRepo) Append(ctx context.Context, l *model.AdminLog) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO admin_logs (admin_id, acao, detalhes, ip_address, user_agent, data_criacao)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		l.AdminID, l.Acao, nullString(l.Detalhes), nullString(l.IPAddress), nullString(l.UserAgent), Stamp(l.DataCriacao))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	l.ID = uint64(id)
	return nil
}

// List returns the most recent entries with the acting staff member's name.
func (r *AdminLogRepo) List(ctx context.Context, limit, offset int) ([]model.AdminLog, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT l.id, l.admin_id, g.nome, l.acao, l.detalhes, l.ip_address, l.user_agent, l.data_criacao
		 FROM admin_logs l LEFT JOIN gestores g ON g.id = l.admin_id
		 ORDER BY l.data_criacao DESC, l.id DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.AdminLog{}
	for rows.Next() {
		var (
			l                    model.AdminLog
			nome, det, ip, agent sql.NullString
		)
		if err := rows.Scan(&l.ID, &l.AdminID, &nome, &l.Acao, &det, &ip, &agent, &l.DataCriacao); err != nil {
			return nil, err
		}
		l.AdminNome = nome.String
		l.Detalhes = det.String
		l.IPAddress = ip.String
		l.UserAgent = agent.String
		l.DataCriacao = l.DataCriacao.UTC()
		out = append(out, l)
	}
	return out, rows.Err()
}
