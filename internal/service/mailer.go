package service

import (
	"fmt"

	"github.com/resendlabs/resend-go"
	"go.uber.org/zap"

	"github.com/vitrinalab/vitrina/internal/config"
	"github.com/vitrinalab/vitrina/internal/models"
)

// Mailer sends account-lifecycle notifications. When no API key is
// configured it is a no-op so local development works without Resend.
type Mailer struct {
	client   *resend.Client
	from     string
	fromName string
	logger   *zap.Logger
}

func NewMailer(cfg *config.EmailConfig, logger *zap.Logger) *Mailer {
	m := &Mailer{
		from:     cfg.FromAddress,
		fromName: cfg.FromName,
		logger:   logger,
	}
	if m.from == "" {
		m.from = "noreply@vitrina.local"
	}
	if m.fromName == "" {
		m.fromName = "Vitrina"
	}
	if cfg.ResendAPIKey != "" {
		m.client = resend.NewClient(cfg.ResendAPIKey)
	}
	return m
}

// SendAccountDecision notifies a user that their account was approved or
// rejected.
func (m *Mailer) SendAccountDecision(user *models.User, status models.UserStatus) error {
	if m.client == nil {
		m.logger.Debug("mailer disabled, skipping account decision email",
			zap.String("email", user.Email))
		return nil
	}

	var subject, body string
	switch status {
	case models.UserApproved:
		subject = "Tu cuenta de Vitrina fue aprobada"
		body = fmt.Sprintf("<p>Hola %s,</p><p>Tu cuenta fue aprobada. Ya puedes crear y programar publicaciones.</p>", user.Name)
	case models.UserRejected:
		subject = "Tu solicitud de cuenta en Vitrina"
		body = fmt.Sprintf("<p>Hola %s,</p><p>Tu solicitud de cuenta fue rechazada. Responde a este correo si crees que es un error.</p>", user.Name)
	default:
		return nil
	}

	request := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", m.fromName, m.from),
		To:      []string{user.Email},
		Subject: subject,
		Html:    body,
	}

	if _, err := m.client.Emails.Send(request); err != nil {
		return fmt.Errorf("failed to send account decision email: %w", err)
	}

	return nil
}
