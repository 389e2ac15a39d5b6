package handler

import (
	"encoding/json"
	"time"

	"github.com/iliyamo/cidade-aberta/internal/model"
	"github.com/iliyamo/cidade-aberta/internal/storage"
	"github.com/iliyamo/cidade-aberta/internal/tracking"
)

type coordenadas struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ocorrenciaPublica is what anonymous callers see: no reporter identity.
type ocorrenciaPublica struct {
	ID              uint64      `json:"id"`
	Codigo          string      `json:"codigo"`
	Tipo            string      `json:"tipo"`
	TipoLabel       string      `json:"tipo_label"`
	Descricao       string      `json:"descricao"`
	Endereco        string      `json:"endereco"`
	Coordenadas     coordenadas `json:"coordenadas"`
	Status          string      `json:"status"`
	StatusLabel     string      `json:"status_label"`
	DataCriacao     time.Time   `json:"data_criacao"`
	DataAtualizacao *time.Time  `json:"data_atualizacao"`
	FotoURL         string      `json:"foto_url,omitempty"`
}

// ocorrenciaCompleta adds the reporter and staff fields.
type ocorrenciaCompleta struct {
	ocorrenciaPublica
	NomeCidadao  string  `json:"nome_cidadao"`
	EmailCidadao string  `json:"email_cidadao"`
	Observacoes  string  `json:"observacoes"`
	GestorID     *uint64 `json:"gestor_id"`
}

func publicView(o model.Ocorrencia, photos *storage.Photos) ocorrenciaPublica {
	v := ocorrenciaPublica{
		ID:              o.ID,
		Codigo:          o.Codigo,
		Tipo:            o.Tipo,
		TipoLabel:       model.TipoLabel(o.Tipo),
		Descricao:       o.Descricao,
		Endereco:        o.Endereco,
		Coordenadas:     coordenadas{Latitude: o.Latitude, Longitude: o.Longitude},
		Status:          string(o.Status),
		StatusLabel:     o.Status.Label(),
		DataCriacao:     o.DataCriacao,
		DataAtualizacao: o.DataAtualizacao,
	}
	if photos != nil {
		v.FotoURL = photos.URL(o.Foto)
	}
	return v
}

// projectOcorrencia picks the field set the actor may see. Citizens only
// ever receive their own reports, so they get the full view.
func projectOcorrencia(a model.Actor, o model.Ocorrencia, photos *storage.Photos) any {
	pub := publicView(o, photos)
	if !a.IsStaff() && !a.IsCitizen() {
		return pub
	}
	return ocorrenciaCompleta{
		ocorrenciaPublica: pub,
		NomeCidadao:       o.NomeCidadao,
		EmailCidadao:      o.EmailCidadao,
		Observacoes:       o.Observacoes,
		GestorID:          o.GestorID,
	}
}

// rastreamento is the tracking page payload.
type rastreamento struct {
	Codigo                   string              `json:"codigo"`
	Tipo                     string              `json:"tipo"`
	TipoLabel                string              `json:"tipo_label"`
	Descricao                string              `json:"descricao"`
	Endereco                 string              `json:"endereco"`
	Status                   string              `json:"status"`
	StatusLabel              string              `json:"status_label"`
	DataCriacao              time.Time           `json:"data_criacao"`
	DataCriacaoFormatada     string              `json:"data_criacao_formatada"`
	DataAtualizacao          *time.Time          `json:"data_atualizacao"`
	DataAtualizacaoFormatada *string             `json:"data_atualizacao_formatada"`
	Coordenadas              coordenadas         `json:"coordenadas"`
	FotoURL                  string              `json:"foto_url,omitempty"`
	Observacoes              string              `json:"observacoes,omitempty"`
	Timeline                 []tracking.Stage    `json:"timeline"`
	TempoProcessamento       tracking.Processing `json:"tempo_processamento"`
}

func trackingView(o model.Ocorrencia, photos *storage.Photos, now time.Time) rastreamento {
	v := rastreamento{
		Codigo:               o.Codigo,
		Tipo:                 o.Tipo,
		TipoLabel:            model.TipoLabel(o.Tipo),
		Descricao:            o.Descricao,
		Endereco:             o.Endereco,
		Status:               string(o.Status),
		StatusLabel:          o.Status.Label(),
		DataCriacao:          o.DataCriacao,
		DataCriacaoFormatada: o.DataCriacao.Format(tracking.DisplayLayout),
		DataAtualizacao:      o.DataAtualizacao,
		Coordenadas:          coordenadas{Latitude: o.Latitude, Longitude: o.Longitude},
		Timeline:             tracking.BuildTimeline(o),
		TempoProcessamento:   tracking.ProcessingTime(o, now),
	}
	if o.DataAtualizacao != nil {
		s := o.DataAtualizacao.Format(tracking.DisplayLayout)
		v.DataAtualizacaoFormatada = &s
	}
	if o.Status != model.StatusPendente {
		v.Observacoes = o.Observacoes
	}
	if photos != nil {
		v.FotoURL = photos.URL(o.Foto)
	}
	return v
}

type gestorView struct {
	ID              uint64     `json:"id"`
	Nome            string     `json:"nome"`
	Email           string     `json:"email"`
	Cargo           string     `json:"cargo"`
	Departamento    string     `json:"departamento"`
	NivelAcesso     string     `json:"nivel_acesso"`
	Ativo           bool       `json:"ativo"`
	UltimoLogin     *time.Time `json:"ultimo_login"`
	SenhaTemporaria bool       `json:"senha_temporaria"`
	Bloqueado       bool       `json:"bloqueado"`
	BloqueadoAte    *time.Time `json:"bloqueado_ate"`
	TentativasLogin int        `json:"tentativas_login"`
	CriadoPor       *uint64    `json:"criado_por"`
	DataCriacao     time.Time  `json:"data_criacao"`
}

func newGestorView(g model.Gestor) gestorView {
	return gestorView{
		ID:              g.ID,
		Nome:            g.Nome,
		Email:           g.Email,
		Cargo:           g.Cargo,
		Departamento:    g.Departamento,
		NivelAcesso:     string(g.NivelAcesso),
		Ativo:           g.Ativo,
		UltimoLogin:     g.UltimoLogin,
		SenhaTemporaria: g.SenhaTemporaria,
		Bloqueado:       g.Bloqueado,
		BloqueadoAte:    g.BloqueadoAte,
		TentativasLogin: g.TentativasLogin,
		CriadoPor:       g.CriadoPor,
		DataCriacao:     g.DataCriacao,
	}
}

type contatoView struct {
	ID        uint64    `json:"id"`
	Protocolo string    `json:"protocolo"`
	Nome      string    `json:"nome"`
	Email     string    `json:"email"`
	Assunto   string    `json:"assunto"`
	Mensagem  string    `json:"mensagem"`
	IPOrigem  string    `json:"ip_origem"`
	DataEnvio time.Time `json:"data_envio"`
	Status    string    `json:"status"`
}

type logView struct {
	ID          uint64          `json:"id"`
	AdminID     uint64          `json:"admin_id"`
	AdminNome   string          `json:"admin_nome"`
	Acao        string          `json:"acao"`
	Detalhes    json.RawMessage `json:"detalhes"`
	IPAddress   string          `json:"ip_address"`
	UserAgent   string          `json:"user_agent"`
	DataCriacao time.Time       `json:"data_criacao"`
}

func newLogView(l model.AdminLog) logView {
	det := json.RawMessage(l.Detalhes)
	if !json.Valid(det) {
		det = json.RawMessage("null")
	}
	return logView{
		ID:          l.ID,
		AdminID:     l.AdminID,
		AdminNome:   l.AdminNome,
		Acao:        l.Acao,
		Detalhes:    det,
		IPAddress:   l.IPAddress,
		UserAgent:   l.UserAgent,
		DataCriacao: l.DataCriacao,
	}
}
