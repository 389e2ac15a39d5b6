package repository

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/iliyamo/cidade-aberta/internal/model"
)

// CountByStatus returns the number of occurrences per canonical status.
func (r *OcorrenciaRepo) CountByStatus(ctx context.Context) (map[model.Status]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM ocorrencias GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[model.Status]int{}
	for rows.Next() {
		var (
			raw string
			n   int
		)
		if err := rows.Scan(&raw, &n); err != nil {
			return nil, err
		}
		st, ok := model.NormalizeStatus(raw)
		if !ok {
			st = model.Status(raw)
		}
		out[st] += n
	}
	return out, rows.Err()
}

// CountCreatedSince counts occurrences created at or after since.
func (r *OcorrenciaRepo) CountCreatedSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ocorrencias WHERE data_criacao >= ?`, Stamp(since)).Scan(&n)
	return n, err
}

// TipoCount is the per-category breakdown used by the stats endpoint.
type TipoCount struct {
	Tipo       string
	Total      int
	Resolvidas int
}

// CountByTipo returns totals and completed counts per category, largest first.
func (r *OcorrenciaRepo) CountByTipo(ctx context.Context) ([]TipoCount, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT tipo, status, COUNT(*) FROM ocorrencias GROUP BY tipo, status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	idx := map[string]int{}
	out := []TipoCount{}
	for rows.Next() {
		var (
			tipo, raw string
			n         int
		)
		if err := rows.Scan(&tipo, &raw, &n); err != nil {
			return nil, err
		}
		i, ok := idx[tipo]
		if !ok {
			i = len(out)
			idx[tipo] = i
			out = append(out, TipoCount{Tipo: tipo})
		}
		out[i].Total += n
		if st, _ := model.NormalizeStatus(raw); st == model.StatusConcluida {
			out[i].Resolvidas += n
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Tipo < out[j].Tipo
	})
	return out, nil
}

// ResolutionTimes returns how long each completed occurrence took.
func (r *OcorrenciaRepo) ResolutionTimes(ctx context.Context) ([]time.Duration, error) {
	spellings := model.StatusConcluida.Spellings()
	args := make([]any, 0, len(spellings))
	for _, s := range spellings {
		args = append(args, s)
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT data_criacao, data_atualizacao FROM ocorrencias
		 WHERE status IN (`+placeholders(len(spellings))+`) AND data_atualizacao IS NOT NULL`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []time.Duration
	for rows.Next() {
		var (
			created time.Time
			updated sql.NullTime
		)
		if err := rows.Scan(&created, &updated); err != nil {
			return nil, err
		}
		if d := updated.Time.Sub(created); updated.Valid && d >= 0 {
			out = append(out, d)
		}
	}
	return out, rows.Err()
}

// StatusAt is the creation time and status of one occurrence.
type StatusAt struct {
	Status      model.Status
	DataCriacao time.Time
}

// CreatedSince lists creation time and status for occurrences created at or
// after since, for month bucketing.
func (r *OcorrenciaRepo) CreatedSince(ctx context.Context, since time.Time) ([]StatusAt, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT status, data_criacao FROM ocorrencias WHERE data_criacao >= ?`, Stamp(since))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StatusAt
	for rows.Next() {
		var (
			raw string
			at  time.Time
		)
		if err := rows.Scan(&raw, &at); err != nil {
			return nil, err
		}
		st, _ := model.NormalizeStatus(raw)
		out = append(out, StatusAt{Status: st, DataCriacao: at.UTC()})
	}
	return out, rows.Err()
}
