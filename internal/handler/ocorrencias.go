package handler

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cidade-aberta/internal/middleware"
	"github.com/iliyamo/cidade-aberta/internal/model"
	"github.com/iliyamo/cidade-aberta/internal/service"
	"github.com/iliyamo/cidade-aberta/internal/storage"
	"github.com/iliyamo/cidade-aberta/internal/validation"
)

// OcorrenciaHandler serves /api/ocorrencias.
type OcorrenciaHandler struct {
	Svc    *service.OcorrenciaService
	Photos *storage.Photos
}

func NewOcorrenciaHandler(svc *service.OcorrenciaService, photos *storage.Photos) *OcorrenciaHandler {
	return &OcorrenciaHandler{Svc: svc, Photos: photos}
}

// novaOcorrenciaReq also accepts the map widget's [lat, lng] pair.
type novaOcorrenciaReq struct {
	service.NovaOcorrencia
	Coordenadas []validation.FlexFloat `json:"coordenadas"`
}

type criada struct {
	ID          uint64    `json:"id"`
	Codigo      string    `json:"codigo"`
	Tipo        string    `json:"tipo"`
	Status      string    `json:"status"`
	DataCriacao time.Time `json:"data_criacao"`
	FotoURL     string    `json:"foto_url,omitempty"`
}

// Create registers a report from a JSON body or a multipart form with an
// optional foto file.
func (h *OcorrenciaHandler) Create(c echo.Context) error {
	var (
		in   service.NovaOcorrencia
		foto io.Reader
	)
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		in = service.NovaOcorrencia{
			Tipo:         c.FormValue("tipo"),
			Descricao:    c.FormValue("descricao"),
			Endereco:     c.FormValue("endereco"),
			Latitude:     validation.ParseFlexFloat(c.FormValue("latitude")),
			Longitude:    validation.ParseFlexFloat(c.FormValue("longitude")),
			NomeCidadao:  c.FormValue("nome_cidadao"),
			EmailCidadao: c.FormValue("email_cidadao"),
		}
		if fh, err := c.FormFile("foto"); err == nil {
			f, err := fh.Open()
			if err != nil {
				return err
			}
			defer f.Close()
			foto = f
		}
	} else {
		var req novaOcorrenciaReq
		if err := bindJSON(c, &req); err != nil {
			return err
		}
		in = req.NovaOcorrencia
		if len(req.Coordenadas) == 2 && !in.Latitude.Set && !in.Longitude.Set {
			in.Latitude, in.Longitude = req.Coordenadas[0], req.Coordenadas[1]
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	o, err := h.Svc.Create(ctx, in, foto)
	if err != nil {
		return err
	}
	out := criada{ID: o.ID, Codigo: o.Codigo, Tipo: o.Tipo, Status: string(o.Status), DataCriacao: o.DataCriacao}
	if h.Photos != nil {
		out.FotoURL = h.Photos.URL(o.Foto)
	}
	return respond(c, http.StatusCreated, "Ocorrência registrada com sucesso", out)
}

// Get returns one report when codigo is given, otherwise a filtered page.
func (h *OcorrenciaHandler) Get(c echo.Context) error {
	actor := middleware.ActorOf(c)
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if code := c.QueryParam("codigo"); code != "" {
		o, err := h.Svc.FindByCode(ctx, code)
		if err != nil {
			return err
		}
		if actor.IsCitizen() && !strings.EqualFold(o.EmailCidadao, actor.Email) {
			return respond(c, http.StatusOK, "Ocorrência encontrada", publicView(o, h.Photos))
		}
		return respond(c, http.StatusOK, "Ocorrência encontrada", projectOcorrencia(actor, o, h.Photos))
	}

	p := service.ListParams{
		Status:     c.QueryParam("status"),
		Tipo:       c.QueryParam("tipo"),
		DataInicio: c.QueryParam("data_inicio"),
		DataFim:    c.QueryParam("data_fim"),
		Busca:      c.QueryParam("busca"),
		Limit:      queryInt(c, "limit"),
		Offset:     queryInt(c, "offset"),
	}
	page, err := h.Svc.List(ctx, actor, p)
	if err != nil {
		return err
	}
	items := make([]any, 0, len(page.Items))
	for _, o := range page.Items {
		items = append(items, projectOcorrencia(actor, o, h.Photos))
	}
	return respond(c, http.StatusOK, "Ocorrências listadas com sucesso", echo.Map{
		"ocorrencias": items,
		"total":       page.Total,
		"limit":       page.Limit,
		"offset":      page.Offset,
	})
}

type atualizacaoReq struct {
	ID     validation.FlexID `json:"id"`
	Action string            `json:"action"`
	Status string            `json:"status"`
	service.OcorrenciaEdicao
}

// Update changes the status (action=update_status) or edits fields.
func (h *OcorrenciaHandler) Update(c echo.Context) error {
	var req atualizacaoReq
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	actor := middleware.ActorOf(c)
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	var (
		o   model.Ocorrencia
		err error
		msg string
	)
	if req.Action == "update_status" {
		var obs string
		if req.Observacoes != nil {
			obs = *req.Observacoes
		}
		o, err = h.Svc.UpdateStatus(ctx, actor, uint64(req.ID), req.Status, obs)
		msg = "Status da ocorrência atualizado com sucesso"
	} else {
		o, err = h.Svc.Update(ctx, actor, uint64(req.ID), req.OcorrenciaEdicao)
		msg = "Ocorrência atualizada com sucesso"
	}
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, msg, projectOcorrencia(actor, o, h.Photos))
}

// Delete removes a report by ?id= or a JSON body {id}.
func (h *OcorrenciaHandler) Delete(c echo.Context) error {
	id := queryID(c)
	if id == 0 && c.Request().ContentLength != 0 {
		var body struct {
			ID validation.FlexID `json:"id"`
		}
		if err := bindJSON(c, &body); err != nil {
			return err
		}
		id = uint64(body.ID)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if err := h.Svc.Delete(ctx, middleware.ActorOf(c), id); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Ocorrência excluída com sucesso", nil)
}
