// internal/events/email.go
package events

import (
	"context"
	"fmt"

	"mergington-activities/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// EmailNotifier sends the student a confirmation for each enrollment change.
type EmailNotifier struct {
	client    SESService
	fromEmail string
}

func NewEmailNotifier(client SESService, fromEmail string) *EmailNotifier {
	return &EmailNotifier{client: client, fromEmail: fromEmail}
}

func (n *EmailNotifier) Publish(ctx context.Context, event models.EnrollmentEvent) error {
	subject, body := renderEmail(event)

	_, err := n.client.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{event.Email},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(n.fromEmail),
	})
	if err != nil {
		return fmt.Errorf("ses send: %w", err)
	}
	return nil
}

func renderEmail(event models.EnrollmentEvent) (subject, body string) {
	when := event.OccurredAt.UTC().Format("Mon, 02 Jan 2006 15:04 MST")
	switch event.Type {
	case models.EventUnregister:
		subject = fmt.Sprintf("You have left %s", event.Activity)
		body = fmt.Sprintf("Hello,\n\n%s was unregistered from %s on %s.\n\nMergington High School", event.Email, event.Activity, when)
	default:
		subject = fmt.Sprintf("Welcome to %s", event.Activity)
		body = fmt.Sprintf("Hello,\n\n%s is now signed up for %s (registered %s).\n\nMergington High School", event.Email, event.Activity, when)
	}
	return subject, body
}
