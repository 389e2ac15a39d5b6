package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/cidade-aberta/internal/database"
	"github.com/iliyamo/cidade-aberta/internal/model"
)

// GestorRepo provides data access for staff accounts.
type GestorRepo struct {
	db *sql.DB
}

// NewGestorRepo returns a repository bound to db.
func NewGestorRepo(db *sql.DB) *GestorRepo { return &GestorRepo{db: db} }

const gestorColumns = `id, nome, email, senha, cargo, departamento, nivel_acesso, ativo, ultimo_login,
	senha_temporaria, token_convite, token_expira, tentativas_login, bloqueado, bloqueado_ate, criado_por, data_criacao`

func scanGestor(s rowScanner) (model.Gestor, error) {
	var (
		g                            model.Gestor
		cargo, depto, nivel, convite sql.NullString
		ultimo, expira, ate          sql.NullTime
		criadoPor                    sql.NullInt64
	)
	err := s.Scan(&g.ID, &g.Nome, &g.Email, &g.SenhaHash, &cargo, &depto, &nivel, &g.Ativo, &ultimo,
		&g.SenhaTemporaria, &convite, &expira, &g.TentativasLogin, &g.Bloqueado, &ate, &criadoPor, &g.DataCriacao)
	if err != nil {
		return g, err
	}
	g.Cargo = cargo.String
	g.Departamento = depto.String
	g.NivelAcesso = model.Role(nivel.String)
	g.UltimoLogin = timePtr(ultimo)
	g.TokenConvite = convite.String
	g.TokenExpira = timePtr(expira)
	g.BloqueadoAte = timePtr(ate)
	g.CriadoPor = idPtr(criadoPor)
	g.DataCriacao = g.DataCriacao.UTC()
	return g, nil
}

func (r *GestorRepo) one(ctx context.Context, where string, args ...any) (model.Gestor, error) {
	g, err := scanGestor(r.db.QueryRowContext(ctx, `SELECT `+gestorColumns+` FROM gestores WHERE `+where+` LIMIT 1`, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return g, ErrGestorNotFound
	}
	return g, err
}

// Create inserts g and fills in its ID. Emails are stored lower-cased.
func (r *GestorRepo) Create(ctx context.Context, g *model.Gestor) error {
	g.Email = strings.ToLower(strings.TrimSpace(g.Email))
	const q = `INSERT INTO gestores
		(nome, email, senha, cargo, departamento, nivel_acesso, ativo, senha_temporaria, token_convite, token_expira, criado_por, data_criacao)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, g.Nome, g.Email, g.SenhaHash, nullString(g.Cargo), nullString(g.Departamento),
		string(g.NivelAcesso), g.Ativo, g.SenhaTemporaria, nullString(g.TokenConvite), nullTime(g.TokenExpira),
		nullID(g.CriadoPor), Stamp(g.DataCriacao))
	if err != nil {
		if database.IsDuplicateKey(err) {
			return ErrEmailExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	g.ID = uint64(id)
	return nil
}

// GetByID fetches a staff account by id.
func (r *GestorRepo) GetByID(ctx context.Context, id uint64) (model.Gestor, error) {
	return r.one(ctx, `id = ?`, id)
}

// GetByEmail fetches a staff account by normalized email.
func (r *GestorRepo) GetByEmail(ctx context.Context, email string) (model.Gestor, error) {
	return r.one(ctx, `email = ?`, strings.ToLower(strings.TrimSpace(email)))
}

// FindActiveByLogin matches an active account by email. Names are not
// unique and never identify an account.
func (r *GestorRepo) FindActiveByLogin(ctx context.Context, login string) (model.Gestor, error) {
	return r.one(ctx, `email = ? AND ativo = 1`, strings.ToLower(strings.TrimSpace(login)))
}

// GetByInviteHash fetches the account holding an invite token digest.
func (r *GestorRepo) GetByInviteHash(ctx context.Context, hash string) (model.Gestor, error) {
	return r.one(ctx, `token_convite = ?`, hash)
}

// List returns every staff account ordered by name.
func (r *GestorRepo) List(ctx context.Context) ([]model.Gestor, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+gestorColumns+` FROM gestores ORDER BY nome ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Gestor{}
	for rows.Next() {
		g, err := scanGestor(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// UpdateProfile rewrites the editable profile fields.
func (r *GestorRepo) UpdateProfile(ctx context.Context, g model.Gestor) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE gestores SET nome = ?, email = ?, cargo = ?, departamento = ?, nivel_acesso = ? WHERE id = ?`,
		g.Nome, strings.ToLower(strings.TrimSpace(g.Email)), nullString(g.Cargo), nullString(g.Departamento),
		string(g.NivelAcesso), g.ID)
	if err != nil {
		if database.IsDuplicateKey(err) {
			return ErrEmailExists
		}
		return err
	}
	return requireAffected(res, ErrGestorNotFound)
}

// SetAtivo activates or deactivates an account.
func (r *GestorRepo) SetAtivo(ctx context.Context, id uint64, ativo bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE gestores SET ativo = ? WHERE id = ?`, ativo, id)
	if err != nil {
		return err
	}
	return requireAffected(res, ErrGestorNotFound)
}

// SetPassword stores a new hash, clears the lockout and any pending invite.
// temporaria marks passwords that must be replaced on first use.
func (r *GestorRepo) SetPassword(ctx context.Context, id uint64, hash string, temporaria bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE gestores SET senha = ?, senha_temporaria = ?, tentativas_login = 0, bloqueado = 0, bloqueado_ate = NULL,
		 token_convite = NULL, token_expira = NULL WHERE id = ?`,
		hash, temporaria, id)
	if err != nil {
		return err
	}
	return requireAffected(res, ErrGestorNotFound)
}

// SetInvite stores an invite token digest and its expiry.
func (r *GestorRepo) SetInvite(ctx context.Context, id uint64, hash string, exp time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE gestores SET token_convite = ?, token_expira = ? WHERE id = ?`, hash, Stamp(exp), id)
	if err != nil {
		return err
	}
	return requireAffected(res, ErrGestorNotFound)
}

// RecordLoginSuccess stamps ultimo_login and clears the failure counter and
// any expired lock.
func (r *GestorRepo) RecordLoginSuccess(ctx context.Context, id uint64, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE gestores SET ultimo_login = ?, tentativas_login = 0, bloqueado = 0, bloqueado_ate = NULL WHERE id = ?`,
		Stamp(at), id)
	return err
}

// RecordLoginFailure stores the new failure count. A non-nil until locks the
// account up to that time; nil clears any lock.
func (r *GestorRepo) RecordLoginFailure(ctx context.Context, id uint64, tentativas int, until *time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE gestores SET tentativas_login = ?, bloqueado = ?, bloqueado_ate = ? WHERE id = ?`,
		tentativas, until != nil, nullTime(until), id)
	return err
}

// Delete removes the account.
func (r *GestorRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM gestores WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res, ErrGestorNotFound)
}

// ClearExpiredInvites drops invite tokens that expired before now.
func (r *GestorRepo) ClearExpiredInvites(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE gestores SET token_convite = NULL, token_expira = NULL
		 WHERE token_convite IS NOT NULL AND token_expira < ?`, Stamp(now))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// GestorCounts summarizes the staff table for the admin panel.
type GestorCounts struct {
	Ativos     int
	Inativos   int
	LoginsHoje int
}

// Counts returns active, inactive and since-midnight login counts.
func (r *GestorRepo) Counts(ctx context.Context, midnight time.Time) (GestorCounts, error) {
	var c GestorCounts
	err := r.db.QueryRowContext(ctx,
		`SELECT
		   COALESCE(SUM(CASE WHEN ativo = 1 THEN 1 ELSE 0 END), 0),
		   COALESCE(SUM(CASE WHEN ativo = 0 THEN 1 ELSE 0 END), 0),
		   COALESCE(SUM(CASE WHEN ultimo_login >= ? THEN 1 ELSE 0 END), 0)
		 FROM gestores`, Stamp(midnight)).Scan(&c.Ativos, &c.Inativos, &c.LoginsHoje)
	return c, err
}
