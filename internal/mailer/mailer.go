package mailer

import (
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"
	"github.com/prestaweb/api/internal/config"
	"github.com/prestaweb/api/internal/repository"
	"github.com/sirupsen/logrus"
)

// Sender delivers reminder emails via SMTP
type Sender struct {
	cfg *config.Config
	log *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, log *logrus.Logger) *Sender {
	return &Sender{cfg: cfg, log: log}
}

// SendPaymentReminder tells a client about an installment coming due.
func (s *Sender) SendPaymentReminder(reminder *repository.DueReminder) error {
	e := email.NewEmail()
	e.From = s.cfg.SMTP.From
	e.To = []string{reminder.ClientEmail}
	e.Subject = "Upcoming loan payment reminder"

	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"This is a reminder that installment %d of your loan, for %s, is due on %s.\n"+
			"You can review your schedule any time in the client portal.\n"+
			"\nBest regards,\nPrestaWeb",
		reminder.ClientName,
		reminder.Number,
		reminder.Amount.StringFixed(2),
		reminder.DueDate.Format("2006-01-02"),
	)
	e.Text = []byte(body)

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTP.Host, s.cfg.SMTP.Port)
	auth := smtp.PlainAuth("", s.cfg.SMTP.Username, s.cfg.SMTP.Password, s.cfg.SMTP.Host)
	if err := e.Send(addr, auth); err != nil {
		s.log.WithError(err).WithField("to", reminder.ClientEmail).Error("failed to send reminder")
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.log.WithField("to", reminder.ClientEmail).Info("payment reminder sent")
	return nil
}
