package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cidade-aberta/internal/service"
)

// StatsHandler serves the public dashboard numbers.
type StatsHandler struct {
	Svc *service.StatsService
}

func NewStatsHandler(svc *service.StatsService) *StatsHandler { return &StatsHandler{Svc: svc} }

func (h *StatsHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	st, err := h.Svc.Compute(ctx)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Estatísticas obtidas com sucesso", st)
}
