package tracking

import (
	"time"

	"github.com/iliyamo/cidade-aberta/internal/model"
)

// DisplayLayout is the dd/mm/yyyy hh:mm format shown to citizens.
const DisplayLayout = "02/01/2006 15:04"

// Stage is one entry of the four-step progress view.
type Stage struct {
	Status        string     `json:"status"`
	Label         string     `json:"label"`
	Descricao     string     `json:"descricao"`
	Icon          string     `json:"icon"`
	Data          *time.Time `json:"data"`
	DataFormatada *string    `json:"data_formatada"`
	Concluido     bool       `json:"concluido"`
	Ativo         bool       `json:"ativo"`
}

func stamp(t *time.Time) (*time.Time, *string) {
	if t == nil {
		return nil, nil
	}
	s := t.Format(DisplayLayout)
	return t, &s
}

// BuildTimeline derives the registrada, analise, andamento and concluido
// stages from the stored status and timestamps.
func BuildTimeline(o model.Ocorrencia) []Stage {
	created := o.DataCriacao
	inProgress := o.Status == model.StatusEmAndamento || o.Status == model.StatusConcluida
	done := o.Status == model.StatusConcluida

	stages := []Stage{
		{
			Status:    "registrada",
			Label:     "Ocorrência Registrada",
			Descricao: "Sua ocorrência foi registrada no sistema",
			Icon:      "fas fa-plus-circle",
			Concluido: true,
		},
		{
			Status:    "analise",
			Label:     "Em Análise",
			Descricao: "Equipe técnica está analisando a ocorrência",
			Icon:      "fas fa-search",
			Concluido: true,
			Ativo:     o.Status == model.StatusPendente,
		},
		{
			Status:    "andamento",
			Label:     "Em Andamento",
			Descricao: "Equipe está trabalhando na resolução",
			Icon:      "fas fa-tools",
			Concluido: inProgress,
			Ativo:     o.Status == model.StatusEmAndamento,
		},
		{
			Status:    "concluido",
			Label:     "Concluído",
			Descricao: "Ocorrência resolvida com sucesso",
			Icon:      "fas fa-check-circle",
			Concluido: done,
			Ativo:     done,
		},
	}

	stages[0].Data, stages[0].DataFormatada = stamp(&created)
	stages[1].Data, stages[1].DataFormatada = stamp(&created)
	if inProgress {
		stages[2].Data, stages[2].DataFormatada = stamp(o.DataAtualizacao)
	}
	if done {
		stages[3].Data, stages[3].DataFormatada = stamp(o.DataAtualizacao)
	}
	return stages
}
