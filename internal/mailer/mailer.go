// Package mailer delivers the account-lifecycle emails: confirmation after
// registration and password-reset links.
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net"
	"strings"
	"time"

	gomail "github.com/wneessen/go-mail"

	"github.com/GoSim-25-26J-441/taskroom-backend/config"
	"github.com/GoSim-25-26J-441/taskroom-backend/internal/logging"
)

const defaultSendTimeout = 10 * time.Second

// Message addresses one user with a pending-action token.
type Message struct {
	To    string
	Name  string
	Token string
}

type Mailer interface {
	SendConfirmation(ctx context.Context, m Message) error
	SendPasswordReset(ctx context.Context, m Message) error
}

// New returns an SMTP mailer, or a logging mailer when no host is set.
func New(cfg config.MailConfig, frontendURL string) Mailer {
	if strings.TrimSpace(cfg.Host) == "" {
		return &LogMailer{frontendURL: frontendURL}
	}
	return NewSMTPMailer(cfg, frontendURL)
}

type sendFunc func(ctx context.Context, msg *gomail.Msg) error

// SMTPMailer delivers through an SMTP relay. A send never outlives the
// caller's context or the configured timeout, whichever ends first.
type SMTPMailer struct {
	cfg         config.MailConfig
	frontendURL string
	send        sendFunc
}

func NewSMTPMailer(cfg config.MailConfig, frontendURL string) *SMTPMailer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultSendTimeout
	}
	s := &SMTPMailer{cfg: cfg, frontendURL: frontendURL}
	s.send = s.dialAndSend
	return s
}

func (s *SMTPMailer) SendConfirmation(ctx context.Context, m Message) error {
	return s.deliver(ctx, m, confirmationMail, s.frontendURL+"/confirm/"+m.Token)
}

func (s *SMTPMailer) SendPasswordReset(ctx context.Context, m Message) error {
	return s.deliver(ctx, m, resetMail, s.frontendURL+"/forgot-password/"+m.Token)
}

func (s *SMTPMailer) deliver(ctx context.Context, m Message, tpl mailTemplate, link string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMsg()
	if err := msg.From(s.cfg.From); err != nil {
		return fmt.Errorf("parse sender: %w", err)
	}
	if err := msg.To(m.To); err != nil {
		return fmt.Errorf("parse recipient: %w", err)
	}
	msg.Subject(tpl.subject)

	body, err := render(tpl, m.Name, link)
	if err != nil {
		return err
	}
	msg.SetBodyString(gomail.TypeTextHTML, string(body))

	if err := s.send(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func (s *SMTPMailer) dialAndSend(ctx context.Context, msg *gomail.Msg) error {
	opts := []gomail.Option{
		gomail.WithPort(s.cfg.Port),
		gomail.WithTimeout(s.cfg.Timeout),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
		gomail.WithDialContextFunc(dialWithDeadline),
	}
	if s.cfg.User != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.cfg.User),
			gomail.WithPassword(s.cfg.Password),
		)
	}

	client, err := gomail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	return client.DialAndSendWithContext(ctx, msg)
}

// dialWithDeadline carries the context deadline onto the connection, so a
// server that accepts but never answers cannot hold the caller.
func dialWithDeadline(ctx context.Context, network, addr string) (net.Conn, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			conn.Close()
			return nil, err
		}
	}
	return conn, nil
}

// LogMailer writes the links to the log instead of sending mail.
type LogMailer struct {
	frontendURL string
}

func (l *LogMailer) SendConfirmation(ctx context.Context, m Message) error {
	logging.FromContext(ctx).Infof("mailer.confirmation", "to=%s link=%s/confirm/%s", m.To, l.frontendURL, m.Token)
	return nil
}

func (l *LogMailer) SendPasswordReset(ctx context.Context, m Message) error {
	logging.FromContext(ctx).Infof("mailer.password_reset", "to=%s link=%s/forgot-password/%s", m.To, l.frontendURL, m.Token)
	return nil
}

type mailTemplate struct {
	subject string
	body    *template.Template
}

var (
	confirmationMail = mailTemplate{
		subject: "TaskRoom - Confirm your account",
		body: template.Must(template.New("confirm").Parse(
			`<p>Hi {{.Name}}, confirm your TaskRoom account.</p>
<p>Your account is almost ready, confirm it with the following link:
<a href="{{.Link}}">Confirm account</a></p>
<p>If you did not create this account, you can ignore this message.</p>`)),
	}
	resetMail = mailTemplate{
		subject: "TaskRoom - Reset your password",
		body: template.Must(template.New("reset").Parse(
			`<p>Hi {{.Name}}, you asked to reset your password.</p>
<p>Follow this link to choose a new password:
<a href="{{.Link}}">Reset password</a></p>
<p>If you did not ask for this, you can ignore this message.</p>`)),
	}
)

func render(tpl mailTemplate, name, link string) ([]byte, error) {
	var buf bytes.Buffer
	if err := tpl.body.Execute(&buf, struct{ Name, Link string }{name, link}); err != nil {
		return nil, fmt.Errorf("render %s: %w", tpl.subject, err)
	}
	return buf.Bytes(), nil
}
