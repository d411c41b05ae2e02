package service

import (
	"context"
	"fmt"
	"html"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"spellinghive/internal/config"
	"spellinghive/internal/logger"
	"spellinghive/internal/models"
)

// sesAPI is the part of the SES client the email service uses
type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// EmailService sends guardian notices via Amazon SES
type EmailService struct {
	client    sesAPI
	fromEmail string
	fromName  string
	enabled   bool
	log       *logger.Logger
}

// NewEmailService creates a new email service. An empty sender address
// yields a disabled service that skips every send.
func NewEmailService(ctx context.Context, cfg config.EmailConfig, log *logger.Logger) (*EmailService, error) {
	log = log.With("service", "email")
	if cfg.FromAddress == "" {
		log.Info("Email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{enabled: false, log: log}, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Info("Email service enabled", "from", cfg.FromAddress, "region", cfg.Region)
	return newEmailServiceWithClient(sesv2.NewFromConfig(awsCfg), cfg.FromAddress, cfg.FromName, log), nil
}

func newEmailServiceWithClient(client sesAPI, fromEmail, fromName string, log *logger.Logger) *EmailService {
	return &EmailService{
		client:    client,
		fromEmail: fromEmail,
		fromName:  fromName,
		enabled:   true,
		log:       log,
	}
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// NotifyWelcome tells the guardian a learner profile was created
func (s *EmailService) NotifyWelcome(ctx context.Context, user *models.UserProfile) error {
	if user.GuardianEmail == "" {
		return nil
	}

	subject := fmt.Sprintf("%s has joined Spelling Hive", user.Name)
	text := fmt.Sprintf("Hi,\n\n%s is all set up in Spelling Hive for grade %d. "+
		"Every word they spell correctly goes into their Golden Hive.\n\nHappy spelling!\n",
		user.Name, user.Grade)
	body := fmt.Sprintf(`<p>Hi,</p>
<p><strong>%s</strong> is all set up in Spelling Hive for grade %d.
Every word they spell correctly goes into their Golden Hive.</p>
<p>Happy spelling!</p>`, html.EscapeString(user.Name), user.Grade)

	return s.sendEmail(ctx, user.GuardianEmail, subject, wrapHTML(subject, body), text)
}

// NotifyTierChange tells the guardian the learner's bee reached a new appearance
func (s *EmailService) NotifyTierChange(ctx context.Context, user *models.UserProfile, avatar models.AvatarState) error {
	if user.GuardianEmail == "" {
		return nil
	}

	subject := fmt.Sprintf("%s's bee reached the %s stage!", user.Name, avatar.Appearance)
	text := fmt.Sprintf("Great news!\n\n%s reached level %d with %d experience points "+
		"and their bee reached the %s stage.\n", user.Name, avatar.Level, avatar.Experience, avatar.Appearance)
	body := fmt.Sprintf(`<p>Great news!</p>
<p><strong>%s</strong> reached level %d with %d experience points
and their bee reached the <strong>%s</strong> stage.</p>`,
		html.EscapeString(user.Name), avatar.Level, avatar.Experience, avatar.Appearance)

	return s.sendEmail(ctx, user.GuardianEmail, subject, wrapHTML(subject, body), text)
}

func wrapHTML(title, body string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #f5b301; color: #222; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #fffaf0; padding: 30px; border-radius: 0 0 5px 5px; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header"><h1>%s</h1></div>
		<div class="content">%s</div>
		<div class="footer"><p>This is an automated email from Spelling Hive. Please do not reply.</p></div>
	</div>
</body>
</html>`, html.EscapeString(title), body)
}

// sendEmail is a helper function to send emails via SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	if !s.enabled {
		s.log.Debug("Skipping email send (service disabled)", "subject", subject)
		return nil
	}

	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.log.Info("Email sent", "subject", subject, "message_id", aws.ToString(result.MessageId))
	return nil
}
