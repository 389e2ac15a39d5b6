package model

import "time"

// Contact message states.
const (
	ContatoNovo       = "novo"
	ContatoLido       = "lido"
	ContatoRespondido = "respondido"
)

// Contato is a message sent through the public contact form.
type Contato struct {
	ID        uint64
	Nome      string
	Email     string
	Assunto   string
	Mensagem  string
	IPOrigem  string
	UserAgent string
	DataEnvio time.Time
	Status    string
}
