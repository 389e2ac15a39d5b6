// Package repository holds the SQL data access for every table. Sentinel
// errors declared here let higher layers tell failure kinds apart without
// inspecting driver errors.
package repository

import "errors"

var (
	// ErrOcorrenciaNotFound is returned when no occurrence matches the id or code.
	ErrOcorrenciaNotFound = errors.New("ocorrência não encontrada")
	// ErrGestorNotFound is returned when no staff account matches.
	ErrGestorNotFound = errors.New("gestor não encontrado")
	// ErrContatoNotFound is returned when no contact message matches.
	ErrContatoNotFound = errors.New("mensagem não encontrada")
	// ErrEmailExists is returned when a staff email is already registered.
	ErrEmailExists = errors.New("email já cadastrado")
	// ErrDuplicateCode is returned when an insert collides on codigo.
	ErrDuplicateCode = errors.New("código de rastreamento duplicado")
)
