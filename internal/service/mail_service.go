package service

import (
	"fmt"
	"net/http"
	"onlinecourse_backend/internal/config"
	"onlinecourse_backend/pkg/logger"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

type EmailMessage struct {
	ToName      string
	ToAddress   string
	Subject     string
	TextContent string
	HTMLContent string
}

// Mailer delivers messages in the background; failures are logged, not returned.
type Mailer interface {
	Send(messages ...EmailMessage)
}

// NewMailer uses SendGrid when an API key is configured and the console otherwise.
func NewMailer(cfg *config.MailConfig) Mailer {
	if cfg.SendgridAPIKey == "" {
		return &ConsoleMailer{prefix: cfg.SubjectPrefix}
	}
	return &SendgridMailer{
		key:    cfg.SendgridAPIKey,
		from:   sgmail.NewEmail(cfg.FromName, cfg.FromAddress),
		prefix: cfg.SubjectPrefix,
	}
}

const (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

type SendgridMailer struct {
	key    string
	from   *sgmail.Email
	prefix string
}

func (m *SendgridMailer) prepare(msg EmailMessage) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = m.prefix + msg.Subject
	p.AddTos(sgmail.NewEmail(msg.ToName, msg.ToAddress))

	mail := sgmail.NewV3Mail()
	mail.SetFrom(m.from)
	mail.AddPersonalizations(p)
	mail.AddContent(sgmail.NewContent("text/plain", msg.TextContent))
	if msg.HTMLContent != "" {
		mail.AddContent(sgmail.NewContent("text/html", msg.HTMLContent))
	}
	return mail
}

func (m *SendgridMailer) Send(messages ...EmailMessage) {
	for _, msg := range messages {
		if msg.ToAddress == "" {
			continue
		}
		msg := msg
		go func() {
			req := sendgrid.GetRequest(m.key, sendgridEndpoint, sendgridHost)
			req.Method = http.MethodPost
			req.Body = sgmail.GetRequestBody(m.prepare(msg))

			res, err := sendgrid.API(req)
			if err != nil {
				logger.Log.Error("sending email", zap.String("to", msg.ToAddress), zap.Error(err))
			} else if res.StatusCode >= http.StatusBadRequest {
				logger.Log.Error("sending email",
					zap.String("to", msg.ToAddress),
					zap.Int("status", res.StatusCode),
					zap.String("body", res.Body))
			}
		}()
	}
}

// ConsoleMailer writes messages to the log instead of sending them.
type ConsoleMailer struct {
	prefix string
}

func (m *ConsoleMailer) Send(messages ...EmailMessage) {
	for _, msg := range messages {
		if msg.ToAddress == "" {
			continue
		}
		logger.Log.Info("email",
			zap.String("to", fmt.Sprintf("%s <%s>", msg.ToName, msg.ToAddress)),
			zap.String("subject", m.prefix+msg.Subject),
			zap.String("body", msg.TextContent))
	}
}
