package email

import (
	"context"
	"log"
)

// MockMailer implements Mailer by logging messages to stdout. Used when no
// API key is configured so login links still show up in server logs.
type MockMailer struct {
	Sent []SentEmail
}

type SentEmail struct {
	To      string
	Subject string
	HTML    string
}

func NewMockMailer() *MockMailer {
	return &MockMailer{}
}

func (m *MockMailer) Send(ctx context.Context, to, subject, html string) error {
	m.Sent = append(m.Sent, SentEmail{To: to, Subject: subject, HTML: html})
	log.Printf("[MockMailer] to=%s subject=%q", to, subject)
	return nil
}
