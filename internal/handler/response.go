// Package handler holds the Echo handlers of the public API. Every JSON
// response, successful or not, uses the {success, message, data} envelope.
package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cidade-aberta/internal/logger"
	"github.com/iliyamo/cidade-aberta/internal/repository"
	"github.com/iliyamo/cidade-aberta/internal/service"
	"github.com/iliyamo/cidade-aberta/internal/storage"
	"github.com/iliyamo/cidade-aberta/internal/tracking"
	"github.com/iliyamo/cidade-aberta/internal/utils"
	"github.com/iliyamo/cidade-aberta/internal/validation"
)

// requestTimeout bounds the database work of a single request.
const requestTimeout = 5 * time.Second

// Envelope is the body of every JSON response.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func respond(c echo.Context, status int, message string, data any) error {
	return c.JSON(status, Envelope{Success: true, Message: message, Data: data})
}

// statusOf maps domain errors onto HTTP status codes. The message is the
// error text for client errors and a generic one for server errors.
func statusOf(err error) (int, string) {
	var (
		he   *echo.HTTPError
		verr *validation.Error
	)
	switch {
	case errors.As(err, &he):
		msg, ok := he.Message.(string)
		if !ok || msg == "" {
			msg = http.StatusText(he.Code)
		}
		switch he.Code {
		case http.StatusNotFound:
			if msg == http.StatusText(http.StatusNotFound) {
				msg = "Recurso não encontrado"
			}
		case http.StatusMethodNotAllowed:
			msg = "Método não permitido"
		}
		return he.Code, msg
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Error()
	case errors.Is(err, repository.ErrOcorrenciaNotFound),
		errors.Is(err, repository.ErrGestorNotFound),
		errors.Is(err, repository.ErrContatoNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, repository.ErrEmailExists):
		return http.StatusConflict, err.Error()
	case errors.Is(err, service.ErrUnauthenticated), errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, utils.ErrInvalidInvite):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, service.ErrForbidden), errors.Is(err, service.ErrSuperAdminOnly),
		errors.Is(err, service.ErrSelfAction):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, service.ErrSpam):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrRateLimited):
		return http.StatusTooManyRequests, err.Error()
	case errors.Is(err, storage.ErrTooLarge):
		return http.StatusRequestEntityTooLarge, err.Error()
	case errors.Is(err, tracking.ErrCodeSpaceExhausted):
		return http.StatusServiceUnavailable, "Não foi possível gerar o código de rastreamento; tente novamente"
	}
	return http.StatusInternalServerError, "Erro interno do servidor"
}

// ErrorHandler renders errors in the envelope and logs server-side causes.
// HEAD requests and preflights get no body.
func ErrorHandler(log *logger.Logger) echo.HTTPErrorHandler {
	log = log.WithComponent("http")
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status, msg := statusOf(err)
		if status >= http.StatusInternalServerError {
			log.WithError(err).WithField("path", c.Request().URL.Path).Error("request error")
		}
		req := c.Request()
		if req.Method == http.MethodHead || req.Method == http.MethodOptions {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, Envelope{Success: false, Message: msg, Data: nil})
		}
		if err != nil {
			log.WithError(err).Warn("write error response")
		}
	}
}

// bindJSON decodes the request body and turns decoding failures into a 400.
func bindJSON(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "JSON inválido")
	}
	return nil
}

func queryInt(c echo.Context, name string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(c.QueryParam(name)))
	return n
}

func queryID(c echo.Context) uint64 {
	return validation.ParseID(c.QueryParam("id"))
}
