package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"jecna-client/internal/components/assert"
	"jecna-client/pkg/gradestore"

	"github.com/jordan-wright/email"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("jecna-client/pkg/notify")

type SmtpConfig struct {
	Server       string `json:"server"`
	Port         int    `json:"port"`
	EmailAddress string `json:"email_address"`
	Password     string `json:"password"`
}

// Mailer sends digests of new grades over SMTP.
type Mailer struct {
	config SmtpConfig
}

func NewMailer(config SmtpConfig) Mailer {
	assert.NotEmptyStr(config.Server)
	return Mailer{config: config}
}

func (m Mailer) addr() string {
	return fmt.Sprintf("%s:%d", m.config.Server, m.config.Port)
}

// GradesDigest renders the mail announcing unseen grades.
func GradesDigest(from, to string, grades []gradestore.UnseenGrade) *email.Email {
	mail := email.NewEmail()
	mail.From = fmt.Sprintf("Ječná <%s>", from)
	mail.To = []string{to}
	if len(grades) == 1 {
		mail.Subject = fmt.Sprintf("Nová známka z %s", grades[0].Subject.Full)
	} else {
		mail.Subject = fmt.Sprintf("Nové známky (%d)", len(grades))
	}

	var body strings.Builder
	for _, g := range grades {
		subject := g.Subject.Full
		if label, ok := g.Partition.Label(); ok {
			subject = fmt.Sprintf("%s / %s", subject, label)
		}
		body.WriteString(fmt.Sprintf("%s: %s", subject, g.Grade.String()))
		if g.Grade.Small {
			body.WriteString(" (malá)")
		}
		if !g.Grade.ReceiveDate.IsZero() {
			body.WriteString(fmt.Sprintf(", %s", g.Grade.ReceiveDate.Format("02.01.2006")))
		}
		if g.Grade.Teacher != nil {
			body.WriteString(fmt.Sprintf(", %s", g.Grade.Teacher.Full))
		}
		body.WriteString("\n")
	}
	mail.Text = []byte(body.String())
	return mail
}

// SendGrades mails a digest of grades to the given address, nothing is sent
// for an empty list.
func (m Mailer) SendGrades(ctx context.Context, to string, grades []gradestore.UnseenGrade) error {
	if len(grades) == 0 {
		return nil
	}
	_, span := tracer.Start(ctx, "SendGrades")
	defer span.End()

	mail := GradesDigest(m.config.EmailAddress, to, grades)
	err := mail.Send(
		m.addr(),
		smtp.PlainAuth("", m.config.EmailAddress, m.config.Password, m.config.Server),
	)
	if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = mail.Send(m.addr(), nil)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send email")
		return fmt.Errorf("send grades digest: %w", err)
	}
	return nil
}
