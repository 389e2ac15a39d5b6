package model

import (
	"sort"
	"strings"
	"time"
)

// Status is the canonical lifecycle state of an occurrence.
type Status string

const (
	StatusPendente    Status = "pendente"
	StatusEmAndamento Status = "em_andamento"
	StatusConcluida   Status = "concluida"
	StatusCancelada   Status = "cancelada"
)

// Statuses lists the canonical states in lifecycle order.
var Statuses = []Status{StatusPendente, StatusEmAndamento, StatusConcluida, StatusCancelada}

// legacyStatus maps spellings found in older rows and clients onto the
// canonical vocabulary.
var legacyStatus = map[string]Status{
	"pendente":     StatusPendente,
	"em_analise":   StatusPendente,
	"analise":      StatusPendente,
	"andamento":    StatusEmAndamento,
	"em_andamento": StatusEmAndamento,
	"concluido":    StatusConcluida,
	"concluida":    StatusConcluida,
	"cancelado":    StatusCancelada,
	"cancelada":    StatusCancelada,
}

// NormalizeStatus returns the canonical status for s. The second result is
// false when s is not a known spelling.
func NormalizeStatus(s string) (Status, bool) {
	st, ok := legacyStatus[strings.ToLower(strings.TrimSpace(s))]
	return st, ok
}

// Spellings returns every stored spelling that normalizes to st, so that
// filters match legacy rows as well.
func (st Status) Spellings() []string {
	out := []string{}
	for k, v := range legacyStatus {
		if v == st {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// Label is the Portuguese display name of the status.
func (st Status) Label() string {
	switch st {
	case StatusPendente:
		return "Pendente"
	case StatusEmAndamento:
		return "Em Andamento"
	case StatusConcluida:
		return "Concluída"
	case StatusCancelada:
		return "Cancelada"
	}
	return string(st)
}

// Tipos is the closed set of occurrence categories.
var Tipos = []string{"buraco", "iluminacao", "lixo", "agua", "esgoto", "calcada", "sinalizacao", "outros"}

// TipoLabel returns the Portuguese display name of a category.
func TipoLabel(tipo string) string {
	switch tipo {
	case "buraco":
		return "Buraco na via"
	case "iluminacao":
		return "Iluminação pública"
	case "lixo":
		return "Coleta de lixo"
	case "agua":
		return "Abastecimento de água"
	case "esgoto":
		return "Esgoto"
	case "calcada":
		return "Calçada"
	case "sinalizacao":
		return "Sinalização"
	case "outros":
		return "Outros"
	}
	return tipo
}

// Ocorrencia mirrors a row of the ocorrencias table. Optional columns use
// the zero value when NULL.
type Ocorrencia struct {
	ID              uint64
	Codigo          string
	Tipo            string
	Descricao       string
	Endereco        string
	Latitude        float64
	Longitude       float64
	NomeCidadao     string
	EmailCidadao    string
	Status          Status
	Observacoes     string
	Foto            string
	GestorID        *uint64
	DataCriacao     time.Time
	DataAtualizacao *time.Time
}
