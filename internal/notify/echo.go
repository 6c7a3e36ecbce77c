// internal/notify/echo.go
package notify

import (
	"context"
	"database/sql"
	"fmt"

	"rentflow/internal/common/config"
	"rentflow/internal/common/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

const PriorityHigh = "high"

// Define interfaces for mocking
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Echo duplicates in-app notices out of band. Email goes out whenever
// enabled; SMS only for notices at or above the priority threshold.
type Echo struct {
	cfg       config.NotificationConfig
	db        *sql.DB
	logger    logger.Logger
	sesClient SESService
	snsClient SNSService
}

func NewEcho(ctx context.Context, cfg config.NotificationConfig, db *sql.DB, log logger.Logger) (*Echo, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	return &Echo{
		cfg:       cfg,
		db:        db,
		logger:    log.WithFields(map[string]interface{}{"component": "notify-echo"}),
		sesClient: ses.NewFromConfig(awsCfg),
		snsClient: sns.NewFromConfig(awsCfg),
	}, nil
}

// NewEchoWithClients wires pre-built SES/SNS clients, used by tests.
func NewEchoWithClients(cfg config.NotificationConfig, db *sql.DB, log logger.Logger, sesClient SESService, snsClient SNSService) *Echo {
	return &Echo{
		cfg:       cfg,
		db:        db,
		logger:    log.WithFields(map[string]interface{}{"component": "notify-echo"}),
		sesClient: sesClient,
		snsClient: snsClient,
	}
}

// Send delivers the notice by email and, for high-priority notices, by SMS.
// A recipient without contact details is skipped without error.
func (e *Echo) Send(ctx context.Context, recipientID, subject, body, priority string) error {
	email, phone, err := e.getRecipientContact(ctx, recipientID)
	if err != nil {
		e.logger.Warn("recipient contact not found", map[string]interface{}{
			"recipientId": recipientID,
		})
		return nil
	}

	if e.cfg.Email.Enabled && email != "" {
		if err := e.sendEmail(ctx, email, subject, body); err != nil {
			return fmt.Errorf("send email: %w", err)
		}
	}

	if e.cfg.SMS.Enabled && phone != "" && priority == e.cfg.SMS.PriorityThreshold {
		if err := e.sendSMS(ctx, phone, body); err != nil {
			return fmt.Errorf("send SMS: %w", err)
		}
	}
	return nil
}

func (e *Echo) getRecipientContact(ctx context.Context, recipientID string) (string, string, error) {
	var email, phone string
	err := e.db.QueryRowContext(ctx,
		`SELECT email, phone FROM users WHERE id = $1`, recipientID,
	).Scan(&email, &phone)
	return email, phone, err
}

func (e *Echo) sendEmail(ctx context.Context, to, subject, body string) error {
	_, err := e.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
				Html: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(e.cfg.Email.FromEmail),
	})
	return err
}

func (e *Echo) sendSMS(ctx context.Context, to, message string) error {
	_, err := e.snsClient.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(to),
		Message:     aws.String(message),
	})
	return err
}
