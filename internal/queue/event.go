// Package queue carries notification events over RabbitMQ: the API
// publishes them after a request commits and the worker consumes them to
// send emails.
package queue

// Event kinds.
const (
	KindOcorrenciaCriada     = "ocorrencia.criada"
	KindOcorrenciaAtualizada = "ocorrencia.status_atualizado"
	KindContatoRecebido      = "contato.recebido"
)

// Notification is the single message shape on the queue. Fields not
// relevant to a kind are left empty.
type Notification struct {
	Kind        string `json:"kind"`
	Codigo      string `json:"codigo,omitempty"`
	Tipo        string `json:"tipo,omitempty"`
	Status      string `json:"status,omitempty"`
	Observacoes string `json:"observacoes,omitempty"`
	Nome        string `json:"nome,omitempty"`
	Email       string `json:"email,omitempty"`
	Assunto     string `json:"assunto,omitempty"`
	Mensagem    string `json:"mensagem,omitempty"`
	Protocolo   string `json:"protocolo,omitempty"`
	OccurredAt  string `json:"occurred_at"`
}
