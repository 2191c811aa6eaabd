package service

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"go.uber.org/zap"
)

const (
	emailSubject = "Math Flashcards"
	emailTimeout = 10 * time.Second
)

type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// EmailNotifier forwards notifications to one recipient via Amazon SES
type EmailNotifier struct {
	client    sesAPI
	fromEmail string
	fromName  string
	toEmail   string
	enabled   bool
	logger    *zap.Logger
}

// NewEmailNotifier creates an SES backed notifier. It is disabled, and
// skips every message, when fromEmail or toEmail is empty.
func NewEmailNotifier(ctx context.Context, region, fromEmail, fromName, toEmail string, logger *zap.Logger) (*EmailNotifier, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if fromEmail == "" || toEmail == "" {
		logger.Info("email notifications disabled: SES_FROM_EMAIL or NOTIFY_EMAIL not configured")
		return &EmailNotifier{logger: logger}, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	logger.Info("email notifications enabled",
		zap.String("from", fromEmail), zap.String("to", toEmail), zap.String("region", region))
	return newEmailNotifier(sesv2.NewFromConfig(cfg), fromEmail, fromName, toEmail, logger), nil
}

func newEmailNotifier(client sesAPI, fromEmail, fromName, toEmail string, logger *zap.Logger) *EmailNotifier {
	return &EmailNotifier{
		client:    client,
		fromEmail: fromEmail,
		fromName:  fromName,
		toEmail:   toEmail,
		enabled:   true,
		logger:    logger,
	}
}

// IsEnabled returns whether messages are actually sent
func (n *EmailNotifier) IsEnabled() bool {
	return n.enabled
}

// Notify emails message as a plain text body
func (n *EmailNotifier) Notify(ctx context.Context, message string) error {
	if !n.enabled {
		n.logger.Debug("skipping email notification (disabled)", zap.String("message", message))
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, emailTimeout)
	defer cancel()

	fromAddress := n.fromEmail
	if n.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", n.fromName, n.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{n.toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(emailSubject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Text: &types.Content{
						Data:    aws.String(message),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	result, err := n.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", n.toEmail, err)
	}

	fields := []zap.Field{zap.String("to", n.toEmail)}
	if result != nil && result.MessageId != nil {
		fields = append(fields, zap.String("message_id", *result.MessageId))
	}
	n.logger.Debug("email notification sent", fields...)
	return nil
}
