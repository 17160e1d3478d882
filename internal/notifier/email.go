package notifier

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"MarketMovers/internal/model"
)

// MailTransport delivers a composed message.
type MailTransport interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// SMTPSettings configures the SMTP transport.
type SMTPSettings struct {
	Host     string
	Port     int
	Username string
	Password string
}

// EmailNotifier sends the report by email with chart attachments.
type EmailNotifier struct {
	From      string
	Recipient string
	Transport MailTransport
	Policy    RetryPolicy
	Logger    *zap.Logger
}

// NewEmailNotifier creates a notifier backed by an SMTP client with STARTTLS.
func NewEmailNotifier(from, recipient string, smtp SMTPSettings, policy RetryPolicy, logger *zap.Logger) (*EmailNotifier, error) {
	opts := []mail.Option{
		mail.WithPort(smtp.Port),
		mail.WithTLSPolicy(mail.TLSMandatory),
	}
	if smtp.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(smtp.Username),
			mail.WithPassword(smtp.Password))
	}
	client, err := mail.NewClient(smtp.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}
	return &EmailNotifier{
		From:      from,
		Recipient: recipient,
		Transport: client,
		Policy:    policy,
		Logger:    logger,
	}, nil
}

func (e *EmailNotifier) Name() string { return "email" }

// Compose builds the message for a report.
func (e *EmailNotifier) Compose(report *model.Report) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(e.From); err != nil {
		return nil, fmt.Errorf("set from: %w", err)
	}
	if err := m.To(e.Recipient); err != nil {
		return nil, fmt.Errorf("set recipient: %w", err)
	}
	m.Subject(EmailSubject(report))
	m.SetBodyString(mail.TypeTextPlain, FormatEmailText(report))
	m.AddAlternativeString(mail.TypeTextHTML, FormatEmailHTML(report))
	for _, path := range report.Attachments {
		m.AttachFile(path, mail.WithFileName(filepath.Base(path)))
	}
	return m, nil
}

// Send composes and delivers the report, retrying according to the policy.
func (e *EmailNotifier) Send(ctx context.Context, report *model.Report) error {
	msg, err := e.Compose(report)
	if err != nil {
		return &DeliveryError{Channel: e.Name(), Attempts: 0, Err: err}
	}
	e.Logger.Info("sending email report",
		zap.String("recipient", e.Recipient), zap.Int("attachments", len(report.Attachments)))
	if err := e.Policy.Do(ctx, e.Name(), e.Logger, func(ctx context.Context) error {
		return e.Transport.DialAndSendWithContext(ctx, msg)
	}); err != nil {
		return err
	}
	e.Logger.Info("email sent successfully", zap.String("recipient", e.Recipient))
	return nil
}
