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

// OcorrenciaRepo provides data access for the ocorrencias table. Status
// values are normalized to the canonical vocabulary on every read.
type OcorrenciaRepo struct {
	db *sql.DB
}

// NewOcorrenciaRepo returns a repository bound to db.
func NewOcorrenciaRepo(db *sql.DB) *OcorrenciaRepo { return &OcorrenciaRepo{db: db} }

const ocorrenciaColumns = `id, codigo, tipo, descricao, endereco, latitude, longitude,
	nome_cidadao, email_cidadao, status, observacoes, foto, gestor_id, data_criacao, data_atualizacao`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOcorrencia(s rowScanner) (model.Ocorrencia, error) {
	var (
		o                        model.Ocorrencia
		email, obs, foto, status sql.NullString
		gestor                   sql.NullInt64
		updated                  sql.NullTime
	)
	err := s.Scan(&o.ID, &o.Codigo, &o.Tipo, &o.Descricao, &o.Endereco, &o.Latitude, &o.Longitude,
		&o.NomeCidadao, &email, &status, &obs, &foto, &gestor, &o.DataCriacao, &updated)
	if err != nil {
		return o, err
	}
	o.EmailCidadao = email.String
	o.Observacoes = obs.String
	o.Foto = foto.String
	o.GestorID = idPtr(gestor)
	o.DataCriacao = o.DataCriacao.UTC()
	o.DataAtualizacao = timePtr(updated)
	if st, ok := model.NormalizeStatus(status.String); ok {
		o.Status = st
	} else {
		o.Status = model.Status(status.String)
	}
	return o, nil
}

// Create inserts o and fills in its ID. A collision on codigo is reported
// as ErrDuplicateCode so the caller can pick another code.
func (r *OcorrenciaRepo) Create(ctx context.Context, o *model.Ocorrencia) error {
	const q = `INSERT INTO ocorrencias
		(codigo, tipo, descricao, endereco, latitude, longitude, nome_cidadao, email_cidadao, status, foto, data_criacao)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, o.Codigo, o.Tipo, o.Descricao, o.Endereco, o.Latitude, o.Longitude,
		o.NomeCidadao, nullString(o.EmailCidadao), string(o.Status), nullString(o.Foto), Stamp(o.DataCriacao))
	if err != nil {
		if database.IsDuplicateKey(err) {
			return ErrDuplicateCode
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	o.ID = uint64(id)
	return nil
}

// CodeExists reports whether codigo is already assigned.
func (r *OcorrenciaRepo) CodeExists(ctx context.Context, codigo string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ocorrencias WHERE codigo = ?`, codigo).Scan(&n)
	return n > 0, err
}

// GetByCodigo fetches one occurrence by tracking code.
func (r *OcorrenciaRepo) GetByCodigo(ctx context.Context, codigo string) (model.Ocorrencia, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+ocorrenciaColumns+` FROM ocorrencias WHERE codigo = ? LIMIT 1`, codigo)
	o, err := scanOcorrencia(row)
	if errors.Is(err, sql.ErrNoRows) {
		return o, ErrOcorrenciaNotFound
	}
	return o, err
}

// GetByID fetches one occurrence by primary key.
func (r *OcorrenciaRepo) GetByID(ctx context.Context, id uint64) (model.Ocorrencia, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+ocorrenciaColumns+` FROM ocorrencias WHERE id = ? LIMIT 1`, id)
	o, err := scanOcorrencia(row)
	if errors.Is(err, sql.ErrNoRows) {
		return o, ErrOcorrenciaNotFound
	}
	return o, err
}

// FindByEmailAndCodigo backs citizen login: the code must belong to an
// occurrence submitted with the given email.
func (r *OcorrenciaRepo) FindByEmailAndCodigo(ctx context.Context, email, codigo string) (model.Ocorrencia, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+ocorrenciaColumns+` FROM ocorrencias WHERE LOWER(email_cidadao) = ? AND codigo = ? LIMIT 1`,
		strings.ToLower(email), codigo)
	o, err := scanOcorrencia(row)
	if errors.Is(err, sql.ErrNoRows) {
		return o, ErrOcorrenciaNotFound
	}
	return o, err
}

// OcorrenciaFilter narrows List. Zero values disable a filter. Desde and
// Ate bound data_criacao as [Desde, Ate).
type OcorrenciaFilter struct {
	Status model.Status
	Tipo   string
	Desde  *time.Time
	Ate    *time.Time
	Busca  string
	Email  string
	Limit  int
	Offset int
}

// List returns one page of matching occurrences, newest first, plus the
// total number of matches.
func (r *OcorrenciaRepo) List(ctx context.Context, f OcorrenciaFilter) ([]model.Ocorrencia, int, error) {
	where := []string{}
	args := []any{}

	if f.Status != "" {
		spellings := f.Status.Spellings()
		where = append(where, "status IN ("+placeholders(len(spellings))+")")
		for _, s := range spellings {
			args = append(args, s)
		}
	}
	if f.Tipo != "" {
		where = append(where, "tipo = ?")
		args = append(args, f.Tipo)
	}
	if f.Desde != nil {
		where = append(where, "data_criacao >= ?")
		args = append(args, Stamp(*f.Desde))
	}
	if f.Ate != nil {
		where = append(where, "data_criacao < ?")
		args = append(args, Stamp(*f.Ate))
	}
	if f.Busca != "" {
		where = append(where, "(descricao LIKE ? OR endereco LIKE ? OR codigo LIKE ?)")
		like := "%" + f.Busca + "%"
		args = append(args, like, like, like)
	}
	if f.Email != "" {
		where = append(where, "LOWER(email_cidadao) = ?")
		args = append(args, strings.ToLower(f.Email))
	}

	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ocorrencias WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT ` + ocorrenciaColumns + ` FROM ocorrencias WHERE ` + cond +
		` ORDER BY data_criacao DESC, id DESC LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, q, append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []model.Ocorrencia{}
	for rows.Next() {
		o, err := scanOcorrencia(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, o)
	}
	return out, total, rows.Err()
}

// OcorrenciaPatch lists the staff-editable fields. Nil fields are left as is.
type OcorrenciaPatch struct {
	Tipo        *string
	Descricao   *string
	Endereco    *string
	Latitude    *float64
	Longitude   *float64
	Observacoes *string
}

// Empty reports whether the patch changes nothing.
func (p OcorrenciaPatch) Empty() bool {
	return p.Tipo == nil && p.Descricao == nil && p.Endereco == nil &&
		p.Latitude == nil && p.Longitude == nil && p.Observacoes == nil
}

// Update applies p and stamps data_atualizacao with at.
func (r *OcorrenciaRepo) Update(ctx context.Context, id uint64, p OcorrenciaPatch, at time.Time) error {
	set := []string{}
	args := []any{}
	add := func(col string, v any) {
		set = append(set, col+" = ?")
		args = append(args, v)
	}
	if p.Tipo != nil {
		add("tipo", *p.Tipo)
	}
	if p.Descricao != nil {
		add("descricao", *p.Descricao)
	}
	if p.Endereco != nil {
		add("endereco", *p.Endereco)
	}
	if p.Latitude != nil {
		add("latitude", *p.Latitude)
	}
	if p.Longitude != nil {
		add("longitude", *p.Longitude)
	}
	if p.Observacoes != nil {
		add("observacoes", nullString(*p.Observacoes))
	}
	add("data_atualizacao", Stamp(at))

	args = append(args, id)
	res, err := r.db.ExecContext(ctx, `UPDATE ocorrencias SET `+strings.Join(set, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return err
	}
	return requireAffected(res, ErrOcorrenciaNotFound)
}

// UpdateStatus records a status transition made by gestorID.
func (r *OcorrenciaRepo) UpdateStatus(ctx context.Context, id uint64, st model.Status, obs string, gestorID uint64, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE ocorrencias SET status = ?, observacoes = ?, gestor_id = ?, data_atualizacao = ? WHERE id = ?`,
		string(st), nullString(obs), gestorID, Stamp(at), id)
	if err != nil {
		return err
	}
	return requireAffected(res, ErrOcorrenciaNotFound)
}

// Delete removes the row.
func (r *OcorrenciaRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM ocorrencias WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res, ErrOcorrenciaNotFound)
}

func requireAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
