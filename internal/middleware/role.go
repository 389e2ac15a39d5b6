package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireStaff rejects requests without an admin or super admin session:
// 401 when nobody is logged in, 403 for citizens.
func RequireStaff() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			a := ActorOf(c)
			if !a.Authenticated() {
				return echo.NewHTTPError(http.StatusUnauthorized, "autenticação necessária")
			}
			if !a.IsStaff() {
				return echo.NewHTTPError(http.StatusForbidden, "acesso negado")
			}
			return next(c)
		}
	}
}

// RequireSuperAdmin is RequireStaff restricted to super admins.
func RequireSuperAdmin() echo.MiddlewareFunc {
	staff := RequireStaff()
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return staff(func(c echo.Context) error {
			if !ActorOf(c).IsSuperAdmin() {
				return echo.NewHTTPError(http.StatusForbidden, "apenas super administradores podem realizar esta ação")
			}
			return next(c)
		})
	}
}
