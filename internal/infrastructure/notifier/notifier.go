// Package notifier delivers activation credentials to members over the
// configured SMS and email providers.
package notifier

import (
	"context"
	"fmt"

	domain "github.com/coopworks/member-import/internal/domain/member"
)

// SMSSender delivers one text message to a phone number.
type SMSSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

// EmailSender delivers one plain-text email.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

const emailSubject = "Your cooperative account is ready"

// Router composes the activation message and routes it to the provider
// backing the requested channel.
type Router struct {
	sms     SMSSender
	email   EmailSender
	orgName string
}

func NewRouter(sms SMSSender, email EmailSender, orgName string) *Router {
	return &Router{sms: sms, email: email, orgName: orgName}
}

// Send implements the delivery boundary used by the application layer.
func (r *Router) Send(ctx context.Context, channel domain.Channel, destination string, credential string) error {
	switch channel {
	case domain.ChannelSMS:
		if r.sms == nil {
			return fmt.Errorf("%w: no SMS provider configured", domain.ErrChannelUnavailable)
		}
		return r.sms.SendSMS(ctx, destination, r.smsMessage(credential))
	case domain.ChannelEmail:
		if r.email == nil {
			return fmt.Errorf("%w: no email provider configured", domain.ErrChannelUnavailable)
		}
		return r.email.SendEmail(ctx, destination, emailSubject, r.emailBody(credential))
	}
	return fmt.Errorf("%w: %q", domain.ErrUnknownChannel, channel)
}

func (r *Router) smsMessage(credential string) string {
	return fmt.Sprintf("%s: your account is ready. Sign in with temporary password %s to activate it.", r.orgName, credential)
}

func (r *Router) emailBody(credential string) string {
	return fmt.Sprintf(
		"Hello,\n\nAn account has been created for you at %s.\n\nYour temporary password is: %s\n\nSign in and activate your account before the password expires.\n",
		r.orgName, credential,
	)
}
