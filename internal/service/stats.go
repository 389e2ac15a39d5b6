package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/iliyamo/cidade-aberta/internal/model"
	"github.com/iliyamo/cidade-aberta/internal/repository"
)

const historyMonths = 6

// Resumo is the headline block of the statistics page.
type Resumo struct {
	Total               int     `json:"total"`
	Pendentes           int     `json:"pendentes"`
	EmAndamento         int     `json:"em_andamento"`
	Concluidas          int     `json:"concluidas"`
	Canceladas          int     `json:"canceladas"`
	Ultimos30Dias       int     `json:"ultimos_30_dias"`
	UltimaSemana        int     `json:"ultima_semana"`
	TaxaResolucao       float64 `json:"taxa_resolucao"`
	TempoMedioResolucao float64 `json:"tempo_medio_resolucao_horas"`
}

// TipoStats is one category row.
type TipoStats struct {
	Tipo          string  `json:"tipo"`
	Label         string  `json:"label"`
	Total         int     `json:"total"`
	Resolvidas    int     `json:"resolvidas"`
	TaxaResolucao float64 `json:"taxa_resolucao"`
}

// MesStats is one month of history.
type MesStats struct {
	Mes        string `json:"mes"`
	Label      string `json:"label"`
	Total      int    `json:"total"`
	Concluidas int    `json:"concluidas"`
}

// Stats is the full statistics document.
type Stats struct {
	Resumo          Resumo      `json:"resumo"`
	PorTipo         []TipoStats `json:"por_tipo"`
	HistoricoMensal []MesStats  `json:"historico_mensal"`
	AtualizadoEm    time.Time   `json:"atualizado_em"`
}

var mesAbrev = [...]string{"jan", "fev", "mar", "abr", "mai", "jun", "jul", "ago", "set", "out", "nov", "dez"}

// StatsService aggregates occurrence statistics.
type StatsService struct {
	Repo *repository.OcorrenciaRepo
	Now  Clock
}

func NewStatsService(repo *repository.OcorrenciaRepo) *StatsService {
	return &StatsService{Repo: repo}
}

// Compute builds the public statistics document.
func (s *StatsService) Compute(ctx context.Context) (Stats, error) {
	now := s.Now.now()
	out := Stats{AtualizadoEm: now, PorTipo: []TipoStats{}}

	byStatus, err := s.Repo.CountByStatus(ctx)
	if err != nil {
		return out, err
	}
	r := &out.Resumo
	r.Pendentes = byStatus[model.StatusPendente]
	r.EmAndamento = byStatus[model.StatusEmAndamento]
	r.Concluidas = byStatus[model.StatusConcluida]
	r.Canceladas = byStatus[model.StatusCancelada]
	for _, n := range byStatus {
		r.Total += n
	}
	r.TaxaResolucao = percent(r.Concluidas, r.Total)

	if r.Ultimos30Dias, err = s.Repo.CountCreatedSince(ctx, now.AddDate(0, 0, -30)); err != nil {
		return out, err
	}
	if r.UltimaSemana, err = s.Repo.CountCreatedSince(ctx, now.AddDate(0, 0, -7)); err != nil {
		return out, err
	}

	durations, err := s.Repo.ResolutionTimes(ctx)
	if err != nil {
		return out, err
	}
	if len(durations) > 0 {
		var sum time.Duration
		for _, d := range durations {
			sum += d
		}
		r.TempoMedioResolucao = round1(sum.Hours() / float64(len(durations)))
	}

	tipos, err := s.Repo.CountByTipo(ctx)
	if err != nil {
		return out, err
	}
	for _, t := range tipos {
		out.PorTipo = append(out.PorTipo, TipoStats{
			Tipo:          t.Tipo,
			Label:         model.TipoLabel(t.Tipo),
			Total:         t.Total,
			Resolvidas:    t.Resolvidas,
			TaxaResolucao: percent(t.Resolvidas, t.Total),
		})
	}

	out.HistoricoMensal, err = s.history(ctx, now)
	return out, err
}

// history buckets the last six calendar months, oldest first, including
// months with no reports.
func (s *StatsService) history(ctx context.Context, now time.Time) ([]MesStats, error) {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(historyMonths - 1), 0)
	rows, err := s.Repo.CreatedSince(ctx, first)
	if err != nil {
		return nil, err
	}

	out := make([]MesStats, historyMonths)
	idx := map[string]int{}
	for i := range out {
		m := first.AddDate(0, i, 0)
		key := m.Format("2006-01")
		out[i] = MesStats{Mes: key, Label: fmt.Sprintf("%s/%d", mesAbrev[m.Month()-1], m.Year())}
		idx[key] = i
	}
	for _, row := range rows {
		i, ok := idx[row.DataCriacao.Format("2006-01")]
		if !ok {
			continue
		}
		out[i].Total++
		if row.Status == model.StatusConcluida {
			out[i].Concluidas++
		}
	}
	return out, nil
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return round1(float64(part) * 100 / float64(total))
}

func round1(f float64) float64 { return math.Round(f*10) / 10 }
