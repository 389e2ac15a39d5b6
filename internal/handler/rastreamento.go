package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cidade-aberta/internal/service"
	"github.com/iliyamo/cidade-aberta/internal/storage"
)

// TrackingHandler serves /api/rastreamento.
type TrackingHandler struct {
	Svc    *service.OcorrenciaService
	Photos *storage.Photos
	Now    func() time.Time
}

func NewTrackingHandler(svc *service.OcorrenciaService, photos *storage.Photos) *TrackingHandler {
	return &TrackingHandler{Svc: svc, Photos: photos, Now: time.Now}
}

type rastreioReq struct {
	Codigo       string `json:"codigo"`
	IDOcorrencia string `json:"id_ocorrencia"`
}

// Track looks a report up by its public code. GET reads ?codigo=; POST
// reads id_ocorrencia or codigo from the body.
func (h *TrackingHandler) Track(c echo.Context) error {
	code := c.QueryParam("codigo")
	if c.Request().Method == http.MethodPost {
		var req rastreioReq
		if err := bindJSON(c, &req); err != nil {
			return err
		}
		code = req.IDOcorrencia
		if code == "" {
			code = req.Codigo
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	o, err := h.Svc.FindByCode(ctx, code)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Ocorrência encontrada", trackingView(o, h.Photos, h.Now().UTC()))
}
