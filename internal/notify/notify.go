// Package notify delivers transactional mail.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

// Notifier sends account e-mails.
type Notifier interface {
	SendPasswordReset(ctx context.Context, to, name, link string) error
}

var resetTmpl = template.Must(template.New("reset").Parse(
	`<p>Hola {{.Name}},</p>
<p>Se ha solicitado un cambio de contraseña para tu cuenta.</p>
<p><a href="{{.Link}}">Restablecer contraseña</a></p>
<p>El enlace caduca en una hora. Si no lo pediste, ignora este correo.</p>`))

func renderReset(name, link string) (string, error) {
	var buf bytes.Buffer
	if err := resetTmpl.Execute(&buf, struct{ Name, Link string }{name, link}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ResendNotifier sends mail via the Resend API.
type ResendNotifier struct {
	client *resend.Client
	from   string
	log    *zap.Logger
}

func NewResendNotifier(apiKey, from string, log *zap.Logger) *ResendNotifier {
	return &ResendNotifier{
		client: resend.NewClient(apiKey),
		from:   from,
		log:    log,
	}
}

func (n *ResendNotifier) SendPasswordReset(ctx context.Context, to, name, link string) error {
	html, err := renderReset(name, link)
	if err != nil {
		return err
	}
	sent, err := n.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    n.from,
		To:      []string{to},
		Subject: "Restablece tu contraseña",
		Html:    html,
	})
	if err != nil {
		n.log.Error("resend send failed", zap.String("to", to), zap.Error(err))
		return fmt.Errorf("resend send failed: %w", err)
	}
	n.log.Info("password reset mail sent", zap.String("to", to), zap.String("messageId", sent.Id))
	return nil
}

// LogNotifier only logs; used when no mail API key is configured.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) SendPasswordReset(_ context.Context, to, name, link string) error {
	n.log.Info("password reset mail (not delivered)", zap.String("to", to), zap.String("name", name), zap.String("link", link))
	return nil
}
