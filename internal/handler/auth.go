package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cidade-aberta/internal/middleware"
	"github.com/iliyamo/cidade-aberta/internal/model"
	"github.com/iliyamo/cidade-aberta/internal/service"
)

// CookieConfig controls the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
	MaxAge time.Duration
}

// AuthHandler bundles the login, session and password endpoints.
type AuthHandler struct {
	Svc    *service.AuthService
	Cookie CookieConfig
}

func NewAuthHandler(svc *service.AuthService, cookie CookieConfig) *AuthHandler {
	return &AuthHandler{Svc: svc, Cookie: cookie}
}

type sessionUser struct {
	ID          uint64 `json:"id,omitempty"`
	Nome        string `json:"nome"`
	Email       string `json:"email"`
	Tipo        string `json:"tipo"`
	NivelAcesso string `json:"nivel_acesso,omitempty"`
}

func userOf(a model.Actor) *sessionUser {
	switch {
	case a.IsStaff():
		return &sessionUser{ID: a.UserID, Nome: a.Nome, Email: a.Email, Tipo: "admin", NivelAcesso: string(a.Role)}
	case a.IsCitizen():
		return &sessionUser{Nome: a.Nome, Email: a.Email, Tipo: "cidadao"}
	}
	return nil
}

func (h *AuthHandler) setCookie(c echo.Context, value string, maxAge int) {
	c.SetCookie(&http.Cookie{
		Name:     h.Cookie.Name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.Cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Login authenticates staff (email or usuario + senha) or a citizen
// (email + codigo) and sets the session cookie.
func (h *AuthHandler) Login(c echo.Context) error {
	var req service.Credentials
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	res, err := h.Svc.Login(ctx, req, c.RealIP(), c.Request().UserAgent())
	if err != nil {
		return err
	}
	// A stale cookie from an earlier login is replaced, so drop its session.
	if old := middleware.SessionID(c); old != "" {
		_ = h.Svc.Logout(ctx, old)
	}
	h.setCookie(c, res.ID, int(h.Cookie.MaxAge/time.Second))

	user := userOf(res.Session.Actor())
	msg := "Login realizado com sucesso!"
	if user.Tipo == "admin" {
		msg = "Login administrativo realizado com sucesso!"
	}
	return respond(c, http.StatusOK, msg, echo.Map{
		"user_type":        user.Tipo,
		"user":             user,
		"senha_temporaria": res.SenhaTemporaria,
	})
}

// Session reports who is logged in. Anonymous callers get
// authenticated=false rather than an error.
func (h *AuthHandler) Session(c echo.Context) error {
	a := middleware.ActorOf(c)
	return respond(c, http.StatusOK, "", echo.Map{
		"authenticated": a.Authenticated(),
		"user":          userOf(a),
	})
}

// Logout ends the current session and clears the cookie.
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if err := h.Svc.Logout(ctx, middleware.SessionID(c)); err != nil {
		return err
	}
	h.setCookie(c, "", -1)
	return respond(c, http.StatusOK, "Logout realizado com sucesso", nil)
}

// ChangePassword lets staff replace their own password.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	var req struct {
		SenhaAtual string `json:"senha_atual"`
		NovaSenha  string `json:"nova_senha"`
	}
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if err := h.Svc.ChangePassword(ctx, middleware.ActorOf(c), req.SenhaAtual, req.NovaSenha); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Senha alterada com sucesso", nil)
}

// AcceptInvite sets a password from an invite token.
func (h *AuthHandler) AcceptInvite(c echo.Context) error {
	var req struct {
		Token string `json:"token"`
		Senha string `json:"senha"`
	}
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	g, err := h.Svc.AcceptInvite(ctx, req.Token, req.Senha, c.RealIP(), c.Request().UserAgent())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Senha definida com sucesso", newGestorView(g))
}
