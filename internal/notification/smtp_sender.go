package notification

import (
	"fmt"
	"strings"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"go.uber.org/zap"
)

//go:generate mockgen -source=smtp_sender.go -destination=mock/smtp_sender_mock.go -package=mock
type Sender interface {
	Send(d Directive) error
}

type SMTPConfig struct {
	Host       string
	Port       string
	User       string
	Password   string
	From       string
	TLSEnabled bool
}

type smtpSender struct {
	cfg    SMTPConfig
	logger *zap.Logger
}

func NewSMTPSender(cfg SMTPConfig, logger ...*zap.Logger) Sender {
	l := zap.L().Named("notification.smtp")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.smtp")
	}
	return &smtpSender{cfg: cfg, logger: l}
}

func (s *smtpSender) Send(d Directive) error {
	if s.cfg.Host == "" || s.cfg.Port == "" || s.cfg.From == "" {
		// Unconfigured SMTP drops the mail without failing the caller.
		s.logger.Warn("smtp not configured, notification dropped",
			zap.String("kind", d.Kind),
			zap.String("subject", d.Subject),
		)
		return nil
	}

	recipients := append(append([]string(nil), d.To...), d.Cc...)

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", s.cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(d.To, ", "))
	if len(d.Cc) > 0 {
		fmt.Fprintf(&msg, "Cc: %s\r\n", strings.Join(d.Cc, ", "))
	}
	fmt.Fprintf(&msg, "Subject: %s\r\n", d.Subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(d.Body)

	var auth sasl.Client
	if s.cfg.User != "" {
		auth = sasl.NewPlainClient("", s.cfg.User, s.cfg.Password)
	}

	addr := s.cfg.Host + ":" + s.cfg.Port
	body := strings.NewReader(msg.String())

	var err error
	if s.cfg.TLSEnabled {
		err = smtp.SendMailTLS(addr, auth, s.cfg.From, recipients, body)
	} else {
		err = smtp.SendMail(addr, auth, s.cfg.From, recipients, body)
	}
	if err != nil {
		s.logger.Error("send mail failed",
			zap.String("kind", d.Kind),
			zap.Strings("to", d.To),
			zap.Error(err),
		)
		return err
	}

	s.logger.Info("mail sent",
		zap.String("kind", d.Kind),
		zap.Strings("to", d.To),
	)
	return nil
}
