package mailer

import (
	"fmt"
	"net/smtp"
	"os"

	"github.com/rs/zerolog"
)

// SendSubmissionEmail confirms receipt of an application. Mail failure is
// reported to the caller, which logs and moves on; a lost email never
// invalidates a stored submission.
func SendSubmissionEmail(log *zerolog.Logger, eventName, classification, recipientEmail string) error {
	if recipientEmail == "" {
		return nil
	}

	host := getenv("SMTP_HOST", "smtp.gmail.com")
	port := getenv("SMTP_PORT", "587")
	from := os.Getenv("SMTP_FROM")
	pass := os.Getenv("SMTP_PASSWORD")

	subject := "Event Permit Confirmation"
	body := fmt.Sprintf(`Dear applicant,

Your event "%s" has been successfully submitted to Sunshine Coast Council.

It was classified as %s. We will review your application and contact you if further information is needed.

Thank you for supporting civic engagement.

Regards,
Sunshine Council Events Team`, eventName, classification)

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		from, recipientEmail, subject, body,
	)

	auth := smtp.PlainAuth("", from, pass, host)

	if err := smtp.SendMail(host+":"+port, auth, from, []string{recipientEmail}, []byte(msg)); err != nil {
		log.Warn().Msgf("failed to send email to %s: %v", recipientEmail, err)
		return fmt.Errorf("send email: %w", err)
	}

	log.Info().Msgf("Confirmation email sent to %s (event: %s)", recipientEmail, eventName)
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
