package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendReconciliationAlert(toEmail string, missingCount int, missingIds []string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
}

func NewEmailService(host string, port int, username, password, senderEmail string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
	}
}

// SendReconciliationAlert notifies operators that processed documents are
// missing from the search index. Out-of-band monitoring only; nothing in the
// pipeline depends on it.
func (s *emailService) SendReconciliationAlert(toEmail string, missingCount int, missingIds []string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", fmt.Sprintf("[DocIx] %d documents missing from search index", missingCount))

	list := ""
	for _, id := range missingIds {
		list += fmt.Sprintf("<li>%s</li>", id)
	}

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Consistency check found drift</h2>
			<p>%d processed documents are absent from the search index. A repair was triggered.</p>
			<ul>%s</ul>
		</div>
	`, missingCount, list)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send reconciliation alert to %s: %v\n", toEmail, err)
		return err
	}

	return nil
}
