package tracking

import (
	"fmt"
	"time"

	"github.com/iliyamo/cidade-aberta/internal/model"
)

// Resolution is the creation-to-completion duration of a finished occurrence.
type Resolution struct {
	Dias  int    `json:"dias"`
	Horas int    `json:"horas"`
	Texto string `json:"texto"`
}

// Processing summarizes how long an occurrence has been open.
type Processing struct {
	Dias           int         `json:"dias"`
	Horas          int         `json:"horas"`
	Minutos        int         `json:"minutos"`
	Texto          string      `json:"texto"`
	TempoResolucao *Resolution `json:"tempo_resolucao,omitempty"`
}

func plural(n int, word string) string {
	if n > 1 {
		return fmt.Sprintf("%d %ss", n, word)
	}
	return fmt.Sprintf("%d %s", n, word)
}

func split(d time.Duration) (days, hours, minutes int) {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Minute)
	return total / (24 * 60), (total / 60) % 24, total % 60
}

// ProcessingTime measures the occurrence against now. Completed occurrences
// also report their resolution time, measured up to data_atualizacao.
func ProcessingTime(o model.Ocorrencia, now time.Time) Processing {
	days, hours, minutes := split(now.Sub(o.DataCriacao))
	p := Processing{Dias: days, Horas: hours, Minutos: minutes}

	switch {
	case days > 0:
		p.Texto = plural(days, "dia")
		if hours > 0 {
			p.Texto += " e " + plural(hours, "hora")
		}
	case hours > 0:
		p.Texto = plural(hours, "hora")
		if minutes > 0 {
			p.Texto += " e " + plural(minutes, "minuto")
		}
	default:
		p.Texto = plural(minutes, "minuto")
	}

	if o.Status == model.StatusConcluida && o.DataAtualizacao != nil {
		rd, rh, _ := split(o.DataAtualizacao.Sub(o.DataCriacao))
		r := &Resolution{Dias: rd, Horas: rh}
		switch {
		case rd > 0:
			r.Texto = plural(rd, "dia")
			if rh > 0 {
				r.Texto += " e " + plural(rh, "hora")
			}
		case rh > 0:
			r.Texto = plural(rh, "hora")
		default:
			r.Texto = "Menos de 1 hora"
		}
		p.TempoResolucao = r
	}
	return p
}
