// Package service implements the business operations behind the HTTP
// handlers. Every operation receives the acting model.Actor and enforces
// its own authorization rule.
package service

import "errors"

var (
	// ErrUnauthenticated is returned when an operation needs a login.
	ErrUnauthenticated = errors.New("autenticação necessária")
	// ErrForbidden is returned when the actor's role may not perform the operation.
	ErrForbidden = errors.New("acesso negado")
	// ErrSuperAdminOnly is returned for staff management by a plain admin.
	ErrSuperAdminOnly = errors.New("apenas super administradores podem realizar esta ação")
	// ErrSelfAction is returned when staff try to deactivate or delete themselves.
	ErrSelfAction = errors.New("você não pode realizar esta ação na sua própria conta")
	// ErrInvalidCredentials is returned for any failed login.
	ErrInvalidCredentials = errors.New("credenciais inválidas")
	// ErrRateLimited is returned when the contact form limit for an IP is reached.
	ErrRateLimited = errors.New("limite de mensagens excedido; tente novamente mais tarde")
	// ErrSpam is returned when a contact message trips the spam heuristics.
	ErrSpam = errors.New("mensagem identificada como spam")
)
