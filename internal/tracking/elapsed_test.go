package tracking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cidade-aberta/internal/model"
)

func TestProcessingTimeText(t *testing.T) {
	cases := []struct {
		elapsed time.Duration
		want    string
	}{
		{0, "0 minuto"},
		{time.Minute, "1 minuto"},
		{45 * time.Minute, "45 minutos"},
		{time.Hour, "1 hora"},
		{time.Hour + 5*time.Minute, "1 hora e 5 minutos"},
		{3*time.Hour + time.Minute, "3 horas e 1 minuto"},
		{24 * time.Hour, "1 dia"},
		{2*24*time.Hour + 3*time.Hour + 10*time.Minute, "2 dias e 3 horas"},
		{-time.Hour, "0 minuto"},
	}
	for _, tc := range cases {
		p := ProcessingTime(occ(model.StatusPendente, nil), created.Add(tc.elapsed))
		assert.Equal(t, tc.want, p.Texto, tc.elapsed.String())
		assert.Nil(t, p.TempoResolucao)
	}
}

func TestProcessingTimeComponents(t *testing.T) {
	p := ProcessingTime(occ(model.StatusPendente, nil), created.Add(50*time.Hour+7*time.Minute))
	assert.Equal(t, 2, p.Dias)
	assert.Equal(t, 2, p.Horas)
	assert.Equal(t, 7, p.Minutos)
}

func TestResolutionTime(t *testing.T) {
	cases := []struct {
		took time.Duration
		want string
	}{
		{20 * time.Minute, "Menos de 1 hora"},
		{2 * time.Hour, "2 horas"},
		{25 * time.Hour, "1 dia e 1 hora"},
		{72 * time.Hour, "3 dias"},
	}
	for _, tc := range cases {
		upd := created.Add(tc.took)
		p := ProcessingTime(occ(model.StatusConcluida, &upd), created.Add(100*time.Hour))
		require.NotNil(t, p.TempoResolucao)
		assert.Equal(t, tc.want, p.TempoResolucao.Texto)
	}
}

func TestResolutionOnlyWhenCompleted(t *testing.T) {
	upd := created.Add(time.Hour)
	p := ProcessingTime(occ(model.StatusEmAndamento, &upd), created.Add(2*time.Hour))
	assert.Nil(t, p.TempoResolucao)
}
