// utils/mailer.go
package utils

import (
	"fmt"
	"log"
	"os"

	"gopkg.in/gomail.v2"

	"github.com/gig-portal/eqrf_backend/models"
)

// NotifyAssignment emails an underwriter that a QRF landed on their desk.
// Mail failures are logged, never surfaced: notification is best effort and
// must not fail the assignment itself.
func NotifyAssignment(underwriter models.User, qrf models.QRF, assignedBy string) {
	if underwriter.Email == "" {
		return
	}

	subject := fmt.Sprintf("QRF %s assigned to you", qrf.ReferenceNumber)
	body := fmt.Sprintf(
		"Dear %s,\n\nQRF %s (%s) has been assigned to you by %s and is awaiting your review.\n\nBest regards,\neQRF Portal",
		underwriter.FullName, qrf.ReferenceNumber, qrf.Name, assignedBy)

	sendMail(underwriter.Email, subject, body)
}

// NotifyDecision emails the owning agent when their QRF is approved or
// rejected.
func NotifyDecision(agent models.User, qrf models.QRF) {
	if agent.Email == "" {
		return
	}

	var subject, body string
	if qrf.Status == models.StatusApproved {
		subject = fmt.Sprintf("QRF %s approved", qrf.ReferenceNumber)
		body = fmt.Sprintf(
			"Dear %s,\n\nYour QRF %s (%s) has been approved. The proposal documents are available in the portal.\n\nBest regards,\neQRF Portal",
			agent.FullName, qrf.ReferenceNumber, qrf.Name)
	} else {
		subject = fmt.Sprintf("QRF %s rejected", qrf.ReferenceNumber)
		body = fmt.Sprintf(
			"Dear %s,\n\nYour QRF %s (%s) was rejected.\nReason: %s\n\nYou can amend the request and resubmit it from the portal.\n\nBest regards,\neQRF Portal",
			agent.FullName, qrf.ReferenceNumber, qrf.Name, qrf.RejectionReason)
	}

	sendMail(agent.Email, subject, body)
}

func sendMail(to, subject, body string) {
	smtpHost := os.Getenv("SMTP_HOST")
	smtpUser := os.Getenv("SMTP_USER")
	smtpPass := os.Getenv("SMTP_PASS")
	if smtpHost == "" {
		log.Printf("SMTP_HOST not configured, skipping email to %s", to)
		return
	}

	smtpPort := 2525
	if portStr := os.Getenv("SMTP_PORT"); portStr != "" {
		fmt.Sscanf(portStr, "%d", &smtpPort)
	}

	from := os.Getenv("FROM_EMAIL")
	if from == "" {
		from = smtpUser
	}

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPass)
	if err := d.DialAndSend(m); err != nil {
		log.Printf("Failed to send email to %s: %v", to, err)
	}
}
