package mail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	gomail "github.com/wneessen/go-mail"

	"github.com/vietddude/faxroute/internal/core/config"
	"github.com/vietddude/faxroute/internal/core/domain"
	"github.com/vietddude/faxroute/internal/metrics"
)

// SMTPSender implements Sender over authenticated SMTP.
type SMTPSender struct {
	cfg    config.MailConfig
	client *gomail.Client
}

// NewSMTPSender creates a new SMTP mail sender.
func NewSMTPSender(cfg config.MailConfig) (*SMTPSender, error) {
	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithTimeout(cfg.Timeout),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}

	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail client: %w", err)
	}
	return &SMTPSender{cfg: cfg, client: client}, nil
}

// Send delivers one message with the document attached.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	start := time.Now()

	m := gomail.NewMsg()
	if err := m.From(s.cfg.From); err != nil {
		return domain.Permanent(domain.BoundaryMail, fmt.Errorf("invalid from address: %w", err))
	}
	if err := m.To(msg.To); err != nil {
		// Malformed destination, retrying cannot help
		metrics.BoundaryErrors.WithLabelValues(domain.BoundaryMail, "permanent").Inc()
		return domain.Permanent(domain.BoundaryMail, fmt.Errorf("invalid destination %q: %w", msg.To, err))
	}
	m.SetMessageIDWithValue(uuid.New().String() + "@faxroute")
	m.Subject(msg.Subject)
	m.SetBodyString(gomail.TypeTextPlain, msg.Body)

	if len(msg.Attachment) > 0 {
		if err := m.AttachReader(msg.AttachmentName, bytes.NewReader(msg.Attachment)); err != nil {
			return domain.Permanent(domain.BoundaryMail, fmt.Errorf("attach document: %w", err))
		}
	}

	err := s.client.DialAndSendWithContext(ctx, m)

	metrics.BoundaryLatency.WithLabelValues(domain.BoundaryMail).Observe(time.Since(start).Seconds())

	if err != nil {
		var sendErr *gomail.SendError
		if errors.As(err, &sendErr) && !sendErr.IsTemp() {
			metrics.BoundaryErrors.WithLabelValues(domain.BoundaryMail, "permanent").Inc()
			return domain.Permanent(domain.BoundaryMail, err)
		}
		metrics.BoundaryErrors.WithLabelValues(domain.BoundaryMail, "transient").Inc()
		return domain.Transient(domain.BoundaryMail, err)
	}
	return nil
}
