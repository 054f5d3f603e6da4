// internal/pkg/alert/mailer.go
package alert

import (
	"bytes"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/your-org/feedmill-backend/internal/config"
	"github.com/your-org/feedmill-backend/internal/domain/planning"
)

// Mailer delivers reorder alerts over SMTP. It implements
// planning.Notifier; delivery problems surface as errors and the planner
// decides how to handle them.
type Mailer struct {
	cfg config.AlertsConfig
}

// NewMailer creates a new SMTP alert mailer
func NewMailer(cfg config.AlertsConfig) *Mailer {
	return &Mailer{cfg: cfg}
}

// SendReorderAlerts sends one email covering every alert in the batch
func (m *Mailer) SendReorderAlerts(alerts []planning.ReorderAlert) error {
	if len(alerts) == 0 {
		return nil
	}
	if m.cfg.SMTPHost == "" || len(m.cfg.ToEmails) == 0 {
		return fmt.Errorf("alert mailer not configured: missing SMTP host or recipients")
	}

	from := m.cfg.FromEmail
	if m.cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", m.cfg.FromName, m.cfg.FromEmail)
	}

	subject := fmt.Sprintf("Reorder alert: %d material(s) at or below reorder point", len(alerts))

	var msg bytes.Buffer
	msg.WriteString(fmt.Sprintf("From: %s\r\n", from))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(m.cfg.ToEmails, ", ")))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(renderBody(alerts))

	var auth smtp.Auth
	if m.cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", m.cfg.SMTPUser, m.cfg.SMTPPass, m.cfg.SMTPHost)
	}

	serverAddr := fmt.Sprintf("%s:%d", m.cfg.SMTPHost, m.cfg.SMTPPort)
	if err := smtp.SendMail(serverAddr, auth, m.cfg.FromEmail, m.cfg.ToEmails, msg.Bytes()); err != nil {
		return fmt.Errorf("failed to send reorder alert email: %w", err)
	}
	return nil
}

func renderBody(alerts []planning.ReorderAlert) string {
	var b strings.Builder
	b.WriteString("The following materials have reached their reorder point:\r\n\r\n")

	for _, a := range alerts {
		b.WriteString(fmt.Sprintf("- %s: stock %s, reorder point %s, daily usage %s",
			a.MaterialName, a.CurrentStock.String(), a.ROP.String(), a.DailyUsage.String()))
		if a.DaysUntilStockout != nil {
			b.WriteString(fmt.Sprintf(", ~%s day(s) until stockout", a.DaysUntilStockout.Round(1).String()))
		}
		if a.Supplier != "" {
			b.WriteString(fmt.Sprintf(" (supplier: %s)", a.Supplier))
		}
		b.WriteString("\r\n")
	}

	b.WriteString("\r\nSuggested order quantities are available in the planning dashboard.\r\n")
	return b.String()
}
