package core

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"hrm.service/internal/core/model"
	"hrm.service/pkg/telemetry"
)

type EmailService interface {
	SendNotificationEmail(ctx context.Context, to string, n *model.Notification) error
}

type SESEmailService struct {
	client *ses.Client
	sender string
}

func NewSESEmailService(client *ses.Client, sender string) *SESEmailService {
	return &SESEmailService{client: client, sender: sender}
}

func (s *SESEmailService) SendNotificationEmail(ctx context.Context, to string, n *model.Notification) error {
	tracer := otel.Tracer("ses-email-service")
	ctx, span := tracer.Start(ctx, "send_email", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	// Enrich span with the recipient if available in context
	if recipientID := telemetry.GetRecipientIDFromContext(ctx); recipientID != 0 {
		span.SetAttributes(attribute.Int64("app.recipient_id", recipientID))
	}

	input := &ses.SendEmailInput{
		Source: aws.String(s.sender),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String(n.Title),
			},
			Body: &types.Body{
				Text: &types.Content{
					Data: aws.String(fmt.Sprintf("Hello,\n\n%s", n.Message)),
				},
			},
		},
	}

	_, err := s.client.SendEmail(ctx, input)
	return err
}
