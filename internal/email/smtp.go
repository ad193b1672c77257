// Package email delivers operator alerts.
package email

import (
	"context"
	"fmt"
	"net"
	"time"

	"marketing_dashboard_backend/platform/config"
	"marketing_dashboard_backend/platform/logger"

	gomail "github.com/wneessen/go-mail"
)

// Sender delivers alert e-mails.
type Sender interface {
	SendQualityAlert(ctx context.Context, to []string, alert QualityAlert) error
}

// SMTPSender implements Sender over a direct SMTP connection via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	return &SMTPSender{
		host:      cfg.GetSMTPHost(),
		port:      cfg.GetSMTPPort(),
		username:  cfg.GetSMTPUsername(),
		password:  cfg.GetSMTPPassword(),
		fromName:  cfg.GetEmailFromName(),
		fromEmail: cfg.GetEmailFromAddress(),
	}
}

// NewSender returns an SMTP sender when SMTP is configured and a sender that
// only logs otherwise.
func NewSender(cfg config.SMTPConfig, log *logger.Logger) Sender {
	if cfg.IsSMTPEnabled() {
		return NewSMTPSender(cfg)
	}
	return &LogSender{log: log}
}

func (s *SMTPSender) SendQualityAlert(ctx context.Context, to []string, alert QualityAlert) error {
	subject, content, err := qualityAlertContent(alert)
	if err != nil {
		return err
	}
	return s.send(ctx, to, subject, content)
}

func (s *SMTPSender) send(ctx context.Context, to []string, subject, htmlContent string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(to...); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	opts := []gomail.Option{
		gomail.WithPort(s.port),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15 * time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	}
	if s.username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.username),
			gomail.WithPassword(s.password),
		)
	}

	client, err := gomail.NewClient(s.host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// LogSender records alerts in the log when no SMTP server is configured.
type LogSender struct {
	log *logger.Logger
}

func (s *LogSender) SendQualityAlert(ctx context.Context, to []string, alert QualityAlert) error {
	s.log.WithContext(ctx).Warn("quality alert not e-mailed, smtp disabled",
		"client", alert.ClientName,
		"score", alert.Score,
		"threshold", alert.Threshold,
		"recipients", len(to),
	)
	return nil
}

func qualityAlertContent(alert QualityAlert) (string, string, error) {
	content, err := renderEmailTemplate("quality_alert.html", qualityAlertEmailData{
		baseEmailData: baseEmailData{
			Title:   "Data quality alert",
			Heading: "Data quality below threshold",
		},
		QualityAlert: alert,
	})
	if err != nil {
		return "", "", err
	}
	return fmt.Sprintf(subjectQualityAlertFmt, alert.ClientName, alert.Score), content, nil
}
