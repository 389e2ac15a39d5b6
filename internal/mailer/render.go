package mailer

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/iliyamo/cidade-aberta/internal/logger"
	"github.com/iliyamo/cidade-aberta/internal/model"
	"github.com/iliyamo/cidade-aberta/internal/queue"
)

// Dispatcher renders notifications and hands them to a Sender. It is the
// worker's queue handler.
type Dispatcher struct {
	Sender     Sender
	BaseURL    string
	StaffEmail string
	Log        *logger.Logger
}

// Handle implements queue.HandlerFunc. Notifications without a recipient
// are acknowledged and skipped.
func (d *Dispatcher) Handle(ctx context.Context, n queue.Notification) error {
	m, ok := d.Render(n)
	if !ok {
		d.Log.WithField("kind", n.Kind).Debug("notification skipped")
		return nil
	}
	return d.Sender.Send(ctx, m)
}

// Render builds the email for n. The second result is false when there is
// nobody to send it to or the kind is unknown.
func (d *Dispatcher) Render(n queue.Notification) (Message, bool) {
	switch n.Kind {
	case queue.KindOcorrenciaCriada:
		if n.Email == "" {
			return Message{}, false
		}
		text := fmt.Sprintf("Olá %s,\n\nRecebemos sua ocorrência (%s).\nCódigo de rastreamento: %s\n\nAcompanhe em %s/rastreamento?codigo=%s\n",
			n.Nome, model.TipoLabel(n.Tipo), n.Codigo, d.BaseURL, n.Codigo)
		return Message{
			To:      n.Email,
			Subject: "Ocorrência registrada: " + n.Codigo,
			Text:    text,
			HTML:    paragraphs(text),
		}, true

	case queue.KindOcorrenciaAtualizada:
		if n.Email == "" {
			return Message{}, false
		}
		st, _ := model.NormalizeStatus(n.Status)
		text := fmt.Sprintf("Olá %s,\n\nA ocorrência %s mudou para: %s.\n", n.Nome, n.Codigo, st.Label())
		if n.Observacoes != "" {
			text += "Observações: " + n.Observacoes + "\n"
		}
		return Message{
			To:      n.Email,
			Subject: "Atualização da ocorrência " + n.Codigo,
			Text:    text,
			HTML:    paragraphs(text),
		}, true

	case queue.KindContatoRecebido:
		if d.StaffEmail == "" {
			return Message{}, false
		}
		text := fmt.Sprintf("Nova mensagem de contato %s\nDe: %s <%s>\nAssunto: %s\n\n%s\n",
			n.Protocolo, n.Nome, n.Email, n.Assunto, n.Mensagem)
		return Message{
			To:      d.StaffEmail,
			Subject: "[Contato] " + n.Assunto,
			Text:    text,
		}, true
	}
	return Message{}, false
}

func paragraphs(text string) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	for _, p := range strings.Split(strings.TrimSpace(text), "\n\n") {
		b.WriteString("<p>")
		b.WriteString(strings.ReplaceAll(html.EscapeString(p), "\n", "<br>"))
		b.WriteString("</p>")
	}
	b.WriteString("</body></html>")
	return b.String()
}
