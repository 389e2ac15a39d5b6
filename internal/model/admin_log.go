package model

import "time"

// Audit actions written to admin_logs.
const (
	AcaoLogin                = "login"
	AcaoOcorrenciaAtualizada = "ocorrencia_atualizada"
	AcaoOcorrenciaEditada    = "ocorrencia_editada"
	AcaoOcorrenciaExcluida   = "ocorrencia_excluida"
	AcaoGestorCriado         = "gestor_criado"
	AcaoGestorEditado        = "gestor_editado"
	AcaoGestorStatus         = "gestor_status_alterado"
	AcaoGestorSenhaResetada  = "gestor_senha_resetada"
	AcaoGestorExcluido       = "gestor_excluido"
	AcaoSenhaAlterada        = "senha_alterada"
	AcaoConviteAceito        = "convite_aceito"
	AcaoContatoAtualizado    = "contato_atualizado"
)

// AdminLog is one append-only audit entry. Detalhes is a JSON document.
// AdminNome is filled from gestores when listing and is not stored.
type AdminLog struct {
	ID          uint64
	AdminID     uint64
	AdminNome   string
	Acao        string
	Detalhes    string
	IPAddress   string
	UserAgent   string
	DataCriacao time.Time
}
