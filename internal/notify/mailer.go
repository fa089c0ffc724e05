package notify

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/tvan04/workflow-management-system-sub001/internal/config"
	"github.com/tvan04/workflow-management-system-sub001/internal/models"
)

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer sends approval requests and outcome notices over SMTP.
type Mailer struct {
	addr    string
	auth    smtp.Auth
	from    string
	baseURL string
	send    sendFunc
	now     func() time.Time
}

var _ Dispatcher = (*Mailer)(nil)

func NewMailer(cfg config.SMTPConfig, baseURL string) *Mailer {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &Mailer{
		addr:    net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		auth:    auth,
		from:    cfg.From,
		baseURL: baseURL,
		send:    smtp.SendMail,
		now:     time.Now,
	}
}

func (m *Mailer) NotifyApprover(ctx context.Context, app models.Application, approver models.Approver, actionToken string) error {
	view := newApproverView(app, approver, SignLink(m.baseURL, app.ID, actionToken))
	text, html, err := render("approver_request", view)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("Secondary appointment approval requested: %s", app.FacultyMember.Name)
	return m.deliver(ctx, approver.Email, subject, text, html)
}

func (m *Mailer) NotifyOutcome(ctx context.Context, app models.Application, outcome models.Outcome) error {
	text, html, err := render("outcome", newOutcomeView(app, outcome))
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("Your secondary appointment request has been %s", outcome)
	return m.deliver(ctx, app.FacultyMember.Email, subject, text, html)
}

func (m *Mailer) deliver(ctx context.Context, to, subject, text, html string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg, err := m.compose(to, subject, text, html)
	if err != nil {
		return err
	}
	if err := m.send(m.addr, m.auth, m.from, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}
	return nil
}

// compose builds a multipart/alternative message with text and HTML parts.
func (m *Mailer) compose(to, subject, text, html string) ([]byte, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	for _, part := range []struct {
		contentType string
		content     string
	}{
		{"text/plain; charset=UTF-8", text},
		{"text/html; charset=UTF-8", html},
	} {
		w, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {part.contentType},
			"Content-Transfer-Encoding": {"8bit"},
		})
		if err != nil {
			return nil, err
		}
		if _, err := w.Write([]byte(part.content)); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", m.from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	fmt.Fprintf(&msg, "Date: %s\r\n", m.now().Format(time.RFC1123Z))
	fmt.Fprintf(&msg, "Message-ID: <%s@workflow>\r\n", uuid.NewString())
	msg.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", mw.Boundary())
	msg.Write(body.Bytes())
	return msg.Bytes(), nil
}
