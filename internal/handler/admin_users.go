package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cidade-aberta/internal/middleware"
	"github.com/iliyamo/cidade-aberta/internal/service"
	"github.com/iliyamo/cidade-aberta/internal/validation"
)

// AdminUsersHandler serves /api/admin_users.
type AdminUsersHandler struct {
	Svc *service.GestorService
}

func NewAdminUsersHandler(svc *service.GestorService) *AdminUsersHandler {
	return &AdminUsersHandler{Svc: svc}
}

type conviteView struct {
	Token  string    `json:"token"`
	Expira time.Time `json:"expira"`
}

type credenciaisView struct {
	Gestor          gestorView  `json:"gestor"`
	SenhaTemporaria string      `json:"senha_temporaria"`
	Convite         conviteView `json:"convite"`
}

func newCredenciaisView(cr service.Credenciais) credenciaisView {
	return credenciaisView{
		Gestor:          newGestorView(cr.Gestor),
		SenhaTemporaria: cr.SenhaTemporaria,
		Convite:         conviteView{Token: cr.Convite.Token, Expira: cr.Convite.Exp},
	}
}

// Get lists staff accounts; action=logs returns the audit trail and
// action=stats the panel counters.
func (h *AdminUsersHandler) Get(c echo.Context) error {
	actor := middleware.ActorOf(c)
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	switch c.QueryParam("action") {
	case "logs":
		logs, err := h.Svc.AuditLog(ctx, actor, queryInt(c, "limit"), queryInt(c, "offset"))
		if err != nil {
			return err
		}
		out := make([]logView, 0, len(logs))
		for _, l := range logs {
			out = append(out, newLogView(l))
		}
		return respond(c, http.StatusOK, "Logs obtidos com sucesso", out)
	case "stats":
		st, err := h.Svc.PanelStats(ctx, actor)
		if err != nil {
			return err
		}
		return respond(c, http.StatusOK, "Estatísticas obtidas com sucesso", echo.Map{
			"admins_ativos":   st.Ativos,
			"admins_inativos": st.Inativos,
			"logins_hoje":     st.LoginsHoje,
		})
	}

	gs, err := h.Svc.List(ctx, actor)
	if err != nil {
		return err
	}
	out := make([]gestorView, 0, len(gs))
	for _, g := range gs {
		out = append(out, newGestorView(g))
	}
	return respond(c, http.StatusOK, "Gestores listados com sucesso", out)
}

// Create opens a staff account and returns its one-time credentials.
func (h *AdminUsersHandler) Create(c echo.Context) error {
	var in service.NovoGestor
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	cr, err := h.Svc.Create(ctx, middleware.ActorOf(c), in)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Gestor criado com sucesso", newCredenciaisView(cr))
}

type gestorAcaoReq struct {
	ID     validation.FlexID `json:"id"`
	Action string            `json:"action"`
	service.GestorEdicao
}

// Update dispatches on action: toggle, reset_password or update (default).
func (h *AdminUsersHandler) Update(c echo.Context) error {
	var req gestorAcaoReq
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	actor := middleware.ActorOf(c)
	id := uint64(req.ID)
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	switch req.Action {
	case "toggle":
		g, err := h.Svc.Toggle(ctx, actor, id)
		if err != nil {
			return err
		}
		msg := "Gestor desativado com sucesso"
		if g.Ativo {
			msg = "Gestor ativado com sucesso"
		}
		return respond(c, http.StatusOK, msg, newGestorView(g))
	case "reset_password":
		cr, err := h.Svc.ResetPassword(ctx, actor, id)
		if err != nil {
			return err
		}
		return respond(c, http.StatusOK, "Senha redefinida com sucesso", newCredenciaisView(cr))
	case "", "update":
		g, err := h.Svc.Update(ctx, actor, id, req.GestorEdicao)
		if err != nil {
			return err
		}
		return respond(c, http.StatusOK, "Gestor atualizado com sucesso", newGestorView(g))
	}
	return validation.Fail("action", "contém valor inválido")
}

// Delete removes a staff account by ?id= or a JSON body {id}.
func (h *AdminUsersHandler) Delete(c echo.Context) error {
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
	return respond(c, http.StatusOK, "Gestor excluído com sucesso", nil)
}
