package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/iliyamo/cidade-aberta/internal/logger"
	"github.com/iliyamo/cidade-aberta/internal/model"
	"github.com/iliyamo/cidade-aberta/internal/queue"
	"github.com/iliyamo/cidade-aberta/internal/repository"
	"github.com/iliyamo/cidade-aberta/internal/storage"
	"github.com/iliyamo/cidade-aberta/internal/tracking"
	"github.com/iliyamo/cidade-aberta/internal/validation"
)

const dateLayout = "2006-01-02"

// NovaOcorrencia is the citizen submission.
type NovaOcorrencia struct {
	Tipo         string               `json:"tipo" validate:"required,oneof=buraco iluminacao lixo agua esgoto calcada sinalizacao outros"`
	Descricao    string               `json:"descricao" validate:"required,min=10,max=1000" sanitize:"html"`
	Endereco     string               `json:"endereco" validate:"required,min=5,max=255" sanitize:"html"`
	Latitude     validation.FlexFloat `json:"latitude" validate:"set,number,gte=-90,lte=90"`
	Longitude    validation.FlexFloat `json:"longitude" validate:"set,number,gte=-180,lte=180"`
	NomeCidadao  string               `json:"nome_cidadao" validate:"required,min=2,max=100" sanitize:"html"`
	EmailCidadao string               `json:"email_cidadao" validate:"omitempty,email,max=100"`
}

// OcorrenciaEdicao carries the staff-editable fields. Nil means unchanged.
type OcorrenciaEdicao struct {
	Tipo        *string              `json:"tipo" validate:"omitnil,oneof=buraco iluminacao lixo agua esgoto calcada sinalizacao outros"`
	Descricao   *string              `json:"descricao" validate:"omitnil,min=10,max=1000" sanitize:"html"`
	Endereco    *string              `json:"endereco" validate:"omitnil,min=5,max=255" sanitize:"html"`
	Latitude    validation.FlexFloat `json:"latitude" validate:"omitempty,number,gte=-90,lte=90"`
	Longitude   validation.FlexFloat `json:"longitude" validate:"omitempty,number,gte=-180,lte=180"`
	Observacoes *string              `json:"observacoes" validate:"omitempty,max=2000" sanitize:"html"`
}

// ListParams are the raw list filters as they arrive on the query string.
type ListParams struct {
	Status     string
	Tipo       string
	DataInicio string
	DataFim    string
	Busca      string
	Limit      int
	Offset     int
}

// Page is one page of occurrences.
type Page struct {
	Items  []model.Ocorrencia
	Total  int
	Limit  int
	Offset int
}

// OcorrenciaService owns the occurrence lifecycle.
type OcorrenciaService struct {
	Repo         *repository.OcorrenciaRepo
	Photos       *storage.Photos
	Events       Notifier
	Log          *logger.Logger
	Now          Clock
	Codes        tracking.Generator
	DefaultLimit int
	MaxLimit     int

	audit auditor
}

// NewOcorrenciaService wires the service. photos and events may be nil.
func NewOcorrenciaService(repo *repository.OcorrenciaRepo, logs *repository.AdminLogRepo, photos *storage.Photos,
	events Notifier, log *logger.Logger, defLimit, maxLimit int) *OcorrenciaService {
	log = log.WithComponent("ocorrencias")
	return &OcorrenciaService{
		Repo:         repo,
		Photos:       photos,
		Events:       events,
		Log:          log,
		DefaultLimit: defLimit,
		MaxLimit:     maxLimit,
		audit:        auditor{logs: logs, log: log},
	}
}

// Create validates and stores a submission, optionally with a photo, and
// assigns its tracking code. foto may be nil.
func (s *OcorrenciaService) Create(ctx context.Context, in NovaOcorrencia, foto io.Reader) (model.Ocorrencia, error) {
	if err := validation.Struct(&in); err != nil {
		return model.Ocorrencia{}, err
	}

	o := model.Ocorrencia{
		Tipo:         in.Tipo,
		Descricao:    in.Descricao,
		Endereco:     in.Endereco,
		Latitude:     in.Latitude.Value,
		Longitude:    in.Longitude.Value,
		NomeCidadao:  in.NomeCidadao,
		EmailCidadao: strings.ToLower(in.EmailCidadao),
		Status:       model.StatusPendente,
		DataCriacao:  s.Now.now(),
	}

	if foto != nil && s.Photos != nil {
		name, err := s.Photos.Save(foto)
		if err != nil {
			if errors.Is(err, storage.ErrTooLarge) {
				return model.Ocorrencia{}, validation.Fail("foto", fmt.Sprintf("deve ter no máximo %d MB", s.Photos.MaxBytes>>20))
			}
			if errors.Is(err, storage.ErrUnsupportedType) {
				return model.Ocorrencia{}, validation.Fail("foto", "deve ser uma imagem JPEG, PNG, GIF ou WEBP")
			}
			return model.Ocorrencia{}, err
		}
		o.Foto = name
	}

	if err := s.insert(ctx, &o); err != nil {
		if o.Foto != "" {
			_ = s.Photos.Remove(o.Foto)
		}
		return model.Ocorrencia{}, err
	}

	s.Log.WithFields(map[string]any{"id": o.ID, "codigo": o.Codigo, "tipo": o.Tipo}).Info("ocorrencia created")
	publish(ctx, s.Events, s.Log, queue.Notification{
		Kind:   queue.KindOcorrenciaCriada,
		Codigo: o.Codigo,
		Tipo:   o.Tipo,
		Status: string(o.Status),
		Nome:   o.NomeCidadao,
		Email:  o.EmailCidadao,
	})
	return o, nil
}

// insert assigns a code and stores o. A unique-index collision between
// the existence check and the insert draws a new code from the same budget.
func (s *OcorrenciaService) insert(ctx context.Context, o *model.Ocorrencia) error {
	for i := 0; i < tracking.MaxCodeAttempts; i++ {
		code, err := s.Codes.Generate(ctx, s.Repo.CodeExists)
		if err != nil {
			return err
		}
		o.Codigo = code
		err = s.Repo.Create(ctx, o)
		if errors.Is(err, repository.ErrDuplicateCode) {
			continue
		}
		return err
	}
	return tracking.ErrCodeSpaceExhausted
}

// FindByCode looks an occurrence up by tracking code.
func (s *OcorrenciaService) FindByCode(ctx context.Context, code string) (model.Ocorrencia, error) {
	code = tracking.NormalizeCode(code)
	if code == "" {
		return model.Ocorrencia{}, validation.Fail("codigo", "é obrigatório")
	}
	if !tracking.ValidCode(code) {
		return model.Ocorrencia{}, validation.Fail("codigo", "deve estar no formato STM000000")
	}
	return s.Repo.GetByCodigo(ctx, code)
}

// FindByID looks an occurrence up by id.
func (s *OcorrenciaService) FindByID(ctx context.Context, id uint64) (model.Ocorrencia, error) {
	if id == 0 {
		return model.Ocorrencia{}, validation.Fail("id", "é obrigatório")
	}
	return s.Repo.GetByID(ctx, id)
}

// List returns a filtered page. Citizens only ever see their own reports;
// projecting fields by role is left to the caller.
func (s *OcorrenciaService) List(ctx context.Context, actor model.Actor, p ListParams) (Page, error) {
	f := repository.OcorrenciaFilter{Busca: strings.TrimSpace(p.Busca)}
	f.Limit, f.Offset = clampPage(p.Limit, p.Offset, s.DefaultLimit, s.MaxLimit)

	if v := strings.TrimSpace(p.Status); v != "" {
		st, ok := model.NormalizeStatus(v)
		if !ok {
			return Page{}, validation.Fail("status", "contém valor inválido")
		}
		f.Status = st
	}
	if v := strings.TrimSpace(p.Tipo); v != "" {
		f.Tipo = strings.ToLower(v)
	}
	if v := strings.TrimSpace(p.DataInicio); v != "" {
		d, err := time.Parse(dateLayout, v)
		if err != nil {
			return Page{}, validation.Fail("data_inicio", "deve estar no formato AAAA-MM-DD")
		}
		f.Desde = &d
	}
	if v := strings.TrimSpace(p.DataFim); v != "" {
		d, err := time.Parse(dateLayout, v)
		if err != nil {
			return Page{}, validation.Fail("data_fim", "deve estar no formato AAAA-MM-DD")
		}
		end := d.AddDate(0, 0, 1)
		f.Ate = &end
	}
	if actor.IsCitizen() {
		if actor.Email == "" {
			return Page{}, ErrForbidden
		}
		f.Email = actor.Email
	}

	items, total, err := s.Repo.List(ctx, f)
	if err != nil {
		return Page{}, err
	}
	return Page{Items: items, Total: total, Limit: f.Limit, Offset: f.Offset}, nil
}

// Update edits the descriptive fields of an occurrence.
func (s *OcorrenciaService) Update(ctx context.Context, actor model.Actor, id uint64, in OcorrenciaEdicao) (model.Ocorrencia, error) {
	if err := requireStaff(actor); err != nil {
		return model.Ocorrencia{}, err
	}
	if id == 0 {
		return model.Ocorrencia{}, validation.Fail("id", "é obrigatório")
	}
	if err := validation.Struct(&in); err != nil {
		return model.Ocorrencia{}, err
	}

	var (
		p      repository.OcorrenciaPatch
		campos []string
	)
	if in.Tipo != nil {
		p.Tipo = in.Tipo
		campos = append(campos, "tipo")
	}
	if in.Descricao != nil {
		p.Descricao = in.Descricao
		campos = append(campos, "descricao")
	}
	if in.Endereco != nil {
		p.Endereco = in.Endereco
		campos = append(campos, "endereco")
	}
	if in.Latitude.Set {
		p.Latitude = &in.Latitude.Value
		campos = append(campos, "latitude")
	}
	if in.Longitude.Set {
		p.Longitude = &in.Longitude.Value
		campos = append(campos, "longitude")
	}
	if in.Observacoes != nil {
		p.Observacoes = in.Observacoes
		campos = append(campos, "observacoes")
	}
	if p.Empty() {
		return model.Ocorrencia{}, &validation.Error{Messages: []string{"Nenhum campo para atualizar"}}
	}

	prev, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return model.Ocorrencia{}, err
	}
	now := s.Now.now()
	if err := s.Repo.Update(ctx, id, p, now); err != nil {
		return model.Ocorrencia{}, err
	}
	s.audit.record(ctx, actor, model.AcaoOcorrenciaEditada, map[string]any{
		"ocorrencia_id": id,
		"codigo":        prev.Codigo,
		"campos":        campos,
	}, now)
	return s.Repo.GetByID(ctx, id)
}

// UpdateStatus moves an occurrence to a new status. Legacy spellings are
// accepted and stored in canonical form.
func (s *OcorrenciaService) UpdateStatus(ctx context.Context, actor model.Actor, id uint64, status, observacoes string) (model.Ocorrencia, error) {
	if err := requireStaff(actor); err != nil {
		return model.Ocorrencia{}, err
	}
	if id == 0 {
		return model.Ocorrencia{}, validation.Fail("id", "é obrigatório")
	}
	if strings.TrimSpace(status) == "" {
		return model.Ocorrencia{}, validation.Fail("status", "é obrigatório")
	}
	st, ok := model.NormalizeStatus(status)
	if !ok {
		return model.Ocorrencia{}, validation.Fail("status", "contém valor inválido")
	}
	obs := validation.Sanitize(strings.TrimSpace(observacoes))

	prev, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return model.Ocorrencia{}, err
	}
	now := s.Now.now()
	if now.Before(prev.DataCriacao) {
		now = prev.DataCriacao
	}
	if err := s.Repo.UpdateStatus(ctx, id, st, obs, actor.UserID, now); err != nil {
		return model.Ocorrencia{}, err
	}

	s.audit.record(ctx, actor, model.AcaoOcorrenciaAtualizada, map[string]any{
		"ocorrencia_id":   id,
		"codigo":          prev.Codigo,
		"status_anterior": string(prev.Status),
		"status_novo":     string(st),
		"observacoes":     obs,
	}, now)
	s.Log.WithFields(map[string]any{"id": id, "de": prev.Status, "para": st, "gestor": actor.UserID}).Info("status updated")

	publish(ctx, s.Events, s.Log, queue.Notification{
		Kind:        queue.KindOcorrenciaAtualizada,
		Codigo:      prev.Codigo,
		Tipo:        prev.Tipo,
		Status:      string(st),
		Observacoes: obs,
		Nome:        prev.NomeCidadao,
		Email:       prev.EmailCidadao,
	})
	return s.Repo.GetByID(ctx, id)
}

// Delete removes an occurrence and its photo. The file goes first; a
// failed row delete after that is not rolled back.
func (s *OcorrenciaService) Delete(ctx context.Context, actor model.Actor, id uint64) error {
	if err := requireStaff(actor); err != nil {
		return err
	}
	if id == 0 {
		return validation.Fail("id", "é obrigatório")
	}
	o, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if o.Foto != "" && s.Photos != nil {
		if err := s.Photos.Remove(o.Foto); err != nil {
			s.Log.WithError(err).WithField("foto", o.Foto).Warn("photo removal failed")
		}
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	s.audit.record(ctx, actor, model.AcaoOcorrenciaExcluida, map[string]any{
		"ocorrencia_id": id,
		"codigo":        o.Codigo,
		"tipo":          o.Tipo,
	}, s.Now.now())
	return nil
}
