package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Health reports liveness and, when db is set, whether the database
// answers a ping. Load balancers only look at the status code.
func Health(db *sql.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				return c.JSON(http.StatusServiceUnavailable, Envelope{Success: false, Message: "banco de dados indisponível"})
			}
		}
		return respond(c, http.StatusOK, "ok", echo.Map{"status": "ok"})
	}
}
