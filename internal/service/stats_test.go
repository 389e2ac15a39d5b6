package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cidade-aberta/internal/model"
)

func TestStatsCompute(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	repo := e.ocorrencias

	add := func(codigo, tipo string, created time.Time) model.Ocorrencia {
		o := model.Ocorrencia{Codigo: codigo, Tipo: tipo, Descricao: "Descrição de teste", Endereco: "Rua A, 1",
			NomeCidadao: "Ana", Status: model.StatusPendente, DataCriacao: created}
		require.NoError(t, repo.Create(ctx, &o))
		return o
	}
	now := base
	a := add("STM000001", "buraco", now.Add(-2*24*time.Hour))
	b := add("STM000002", "buraco", now.Add(-10*24*time.Hour))
	add("STM000003", "lixo", now.Add(-40*24*time.Hour))
	add("STM000004", "lixo", now.AddDate(0, -8, 0))

	require.NoError(t, repo.UpdateStatus(ctx, a.ID, model.StatusConcluida, "", 1, a.DataCriacao.Add(10*time.Hour)))
	require.NoError(t, repo.UpdateStatus(ctx, b.ID, model.StatusEmAndamento, "", 1, now))

	s := NewStatsService(repo)
	s.Now = func() time.Time { return now }
	st, err := s.Compute(ctx)
	require.NoError(t, err)

	r := st.Resumo
	assert.Equal(t, 4, r.Total)
	assert.Equal(t, 2, r.Pendentes)
	assert.Equal(t, 1, r.EmAndamento)
	assert.Equal(t, 1, r.Concluidas)
	assert.Equal(t, 2, r.Ultimos30Dias)
	assert.Equal(t, 1, r.UltimaSemana)
	assert.Equal(t, 25.0, r.TaxaResolucao)
	assert.Equal(t, 10.0, r.TempoMedioResolucao)

	require.Len(t, st.PorTipo, 2)
	assert.Equal(t, "buraco", st.PorTipo[0].Tipo)
	assert.Equal(t, "Buraco na via", st.PorTipo[0].Label)
	assert.Equal(t, 50.0, st.PorTipo[0].TaxaResolucao)

	require.Len(t, st.HistoricoMensal, 6)
	assert.Equal(t, "2024-12", st.HistoricoMensal[0].Mes)
	assert.Equal(t, "2025-05", st.HistoricoMensal[5].Mes)
	assert.Equal(t, "mai/2025", st.HistoricoMensal[5].Label)
	assert.Equal(t, 2, st.HistoricoMensal[5].Total)
	assert.Equal(t, 1, st.HistoricoMensal[5].Concluidas)
	assert.Equal(t, 1, st.HistoricoMensal[4].Total)
	assert.True(t, st.AtualizadoEm.Equal(now))
}

func TestStatsEmpty(t *testing.T) {
	s := NewStatsService(newEnv(t).ocorrencias)
	st, err := s.Compute(context.Background())
	require.NoError(t, err)
	assert.Zero(t, st.Resumo.Total)
	assert.Zero(t, st.Resumo.TaxaResolucao)
	assert.NotNil(t, st.PorTipo)
	assert.Len(t, st.HistoricoMensal, 6)
}
