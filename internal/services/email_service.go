package services

import (
	"encoding/base64"
	"fmt"

	"task-reminder-report/internal/config"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// EmailService handles notification delivery via SendGrid
type EmailService struct {
	fromEmail string
	fromName  string
	client    *sendgrid.Client
}

// NewEmailService creates a new email service
func NewEmailService(cfg config.EmailConfig) *EmailService {
	client := sendgrid.NewSendClient(cfg.APIKey)
	return &EmailService{
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		client:    client,
	}
}

// Send delivers one notification to the given addresses. A non-nil attachment
// is attached as a PDF under attachmentName.
func (s *EmailService) Send(to []string, subject, htmlBody string, attachment []byte, attachmentName string) error {
	if len(to) == 0 {
		return fmt.Errorf("no recipients")
	}

	from := mail.NewEmail(s.fromName, s.fromEmail)

	message := mail.NewV3Mail()
	message.SetFrom(from)
	message.Subject = subject
	message.AddContent(mail.NewContent("text/html", htmlBody))

	personalization := mail.NewPersonalization()
	for _, address := range to {
		personalization.AddTos(mail.NewEmail("", address))
	}
	message.AddPersonalizations(personalization)

	if len(attachment) > 0 {
		att := mail.NewAttachment()
		att.SetContent(base64.StdEncoding.EncodeToString(attachment))
		att.SetType("application/pdf")
		att.SetFilename(attachmentName)
		att.SetDisposition("attachment")
		message.AddAttachment(att)
	}

	response, err := s.client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email via SendGrid: %w", err)
	}

	if response.StatusCode >= 400 {
		return fmt.Errorf("SendGrid API error: status %d, body: %s", response.StatusCode, response.Body)
	}

	return nil
}
