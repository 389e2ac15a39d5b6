package model

import "time"

// Gestor is a staff account stored in the gestores table.
//
// SenhaHash holds the bcrypt hash. TokenConvite holds the SHA-256 hex digest
// of the invite token, never the token itself. A lock set by repeated
// failed logins lasts until BloqueadoAte.
type Gestor struct {
	ID              uint64
	Nome            string
	Email           string
	SenhaHash       string
	Cargo           string
	Departamento    string
	NivelAcesso     Role
	Ativo           bool
	UltimoLogin     *time.Time
	SenhaTemporaria bool
	TokenConvite    string
	TokenExpira     *time.Time
	TentativasLogin int
	Bloqueado       bool
	BloqueadoAte    *time.Time
	CriadoPor       *uint64
	DataCriacao     time.Time
}

// LockedAt reports whether failed logins keep the account locked at now.
func (g Gestor) LockedAt(now time.Time) bool {
	return g.Bloqueado && g.BloqueadoAte != nil && now.Before(*g.BloqueadoAte)
}
