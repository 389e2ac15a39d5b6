package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cidade-aberta/internal/middleware"
	"github.com/iliyamo/cidade-aberta/internal/model"
	"github.com/iliyamo/cidade-aberta/internal/service"
	"github.com/iliyamo/cidade-aberta/internal/validation"
)

// ContatoHandler serves /api/contato.
type ContatoHandler struct {
	Svc *service.ContatoService
}

func NewContatoHandler(svc *service.ContatoService) *ContatoHandler {
	return &ContatoHandler{Svc: svc}
}

func newContatoView(m model.Contato) contatoView {
	return contatoView{
		ID:        m.ID,
		Protocolo: service.Protocolo(m.ID),
		Nome:      m.Nome,
		Email:     m.Email,
		Assunto:   m.Assunto,
		Mensagem:  m.Mensagem,
		IPOrigem:  m.IPOrigem,
		DataEnvio: m.DataEnvio,
		Status:    m.Status,
	}
}

// Send stores a contact form message.
func (h *ContatoHandler) Send(c echo.Context) error {
	var in service.NovoContato
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	m, err := h.Svc.Send(ctx, middleware.ActorOf(c), in)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Mensagem enviada com sucesso! Retornaremos em breve.", struct {
		ID        uint64    `json:"id"`
		Protocolo string    `json:"protocolo"`
		DataEnvio time.Time `json:"data_envio"`
	}{m.ID, service.Protocolo(m.ID), m.DataEnvio})
}

// List pages through received messages, optionally filtered by ?status=.
func (h *ContatoHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	items, total, err := h.Svc.List(ctx, middleware.ActorOf(c), c.QueryParam("status"),
		queryInt(c, "limit"), queryInt(c, "offset"))
	if err != nil {
		return err
	}
	out := make([]contatoView, 0, len(items))
	for _, m := range items {
		out = append(out, newContatoView(m))
	}
	return respond(c, http.StatusOK, "Mensagens listadas com sucesso", echo.Map{"contatos": out, "total": total})
}

// UpdateStatus marks a message as lido or respondido.
func (h *ContatoHandler) UpdateStatus(c echo.Context) error {
	var req struct {
		ID     validation.FlexID `json:"id"`
		Status string            `json:"status"`
	}
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if err := h.Svc.UpdateStatus(ctx, middleware.ActorOf(c), uint64(req.ID), req.Status); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Status da mensagem atualizado", nil)
}
