package services

import (
	"fmt"
	"os"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type EmailService struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
}

func NewEmailService() *EmailService {
	apiKey := os.Getenv("SENDGRID_API_KEY")
	fromEmail := os.Getenv("SENDGRID_NOTIFICATIONS_FROM_EMAIL")
	fromName := os.Getenv("SENDGRID_FROM_NAME")

	client := sendgrid.NewSendClient(apiKey)

	return &EmailService{
		client:    client,
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

// SendWelcomeEmail greets a freshly created app user
func (s *EmailService) SendWelcomeEmail(userEmail, userName string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(userName, userEmail)
	subject := "Welcome to the club"
	plainContent := fmt.Sprintf("Hello %s, your membership account is ready. Open the app to set up your medication reminders.", userName)
	htmlContent := fmt.Sprintf("<p>Hello %s,</p><p>Your membership account is ready. Open the app to set up your medication reminders.</p>", userName)

	message := mail.NewSingleEmail(from, subject, to, plainContent, htmlContent)
	response, err := s.client.Send(message)
	if err != nil {
		return err
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("failed to send welcome email to %s: %d", userEmail, response.StatusCode)
	}
	return nil
}

// SendBackupReport mails the result of a backup import to the operators
func (s *EmailService) SendBackupReport(operatorEmail, snapshotID string, restored map[string]int) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail("Operator", operatorEmail)
	subject := fmt.Sprintf("Backup import %s completed", snapshotID)

	plainContent := fmt.Sprintf("Backup %s imported. Restored counts: %v", snapshotID, restored)
	htmlContent := fmt.Sprintf("<p>Backup <strong>%s</strong> imported.</p><p>Restored counts: %v</p>", snapshotID, restored)

	message := mail.NewSingleEmail(from, subject, to, plainContent, htmlContent)
	_, err := s.client.Send(message)
	return err
}
