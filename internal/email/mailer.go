package email

import "context"

// Mailer defines the interface for sending transactional email.
// This abstraction lets tests and key-less dev environments swap in a mock
// without refactoring the handlers.
type Mailer interface {
	Send(ctx context.Context, to, subject, html string) error
}
