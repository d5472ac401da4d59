// Package mailer sends transactional storefront email.
package mailer

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
)

// Message is one outbound email.
type Message struct {
	From    string
	To      string
	BCC     string
	Subject string
	HTML    string
}

// Sender dispatches a single email and returns the provider's message id.
// Sends are fire-and-forget from the caller's perspective: payment already
// succeeded, so a failed confirmation never blocks fulfillment.
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}

type resendSender struct {
	client *resend.Client
}

// NewResendSender creates a Sender backed by the Resend API.
func NewResendSender(apiKey string) Sender {
	return &resendSender{client: resend.NewClient(apiKey)}
}

func (s *resendSender) Send(ctx context.Context, msg Message) (string, error) {
	req := &resend.SendEmailRequest{
		From:    msg.From,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
	}
	if msg.BCC != "" {
		req.Bcc = []string{msg.BCC}
	}

	sent, err := s.client.Emails.SendWithContext(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to send email: %w", err)
	}

	return sent.Id, nil
}
