package notifications

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/motorforge/workshop-backend/pkg/config"
	"github.com/motorforge/workshop-backend/pkg/logger"
)

// MailMessage is one outbound email.
type MailMessage struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers a single message; implementations wrap the actual provider.
type Mailer interface {
	Send(ctx context.Context, msg MailMessage) error
}

// LogMailer writes outbound mail to the log instead of a provider. It is the
// default when no SMTP or transactional provider is configured.
type LogMailer struct {
	from string
	logg *logger.Logger
}

// NewLogMailer builds a mailer that records deliveries in the log.
func NewLogMailer(cfg config.MailConfig, logg *logger.Logger) (*LogMailer, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &LogMailer{from: cfg.FromAddress, logg: logg}, nil
}

// Send implements Mailer.
func (m *LogMailer) Send(ctx context.Context, msg MailMessage) error {
	logCtx := m.logg.WithFields(ctx, map[string]any{
		"mail_from":    m.from,
		"mail_to":      msg.To,
		"mail_subject": msg.Subject,
	})
	m.logg.Info(logCtx, "mail delivered to log sink")
	return nil
}

// MailDispatcher retries transient delivery failures with a bounded timeout
// per attempt. Exhausted deliveries are logged and dropped: a lost email must
// never poison the event consumer, the in-app notification already landed.
type MailDispatcher struct {
	mailer         Mailer
	maxAttempts    int
	attemptTimeout time.Duration
	logg           *logger.Logger
}

// NewMailDispatcher builds the retrying mail dispatcher.
func NewMailDispatcher(mailer Mailer, cfg config.MailConfig, logg *logger.Logger) (*MailDispatcher, error) {
	if mailer == nil {
		return nil, fmt.Errorf("mailer required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	timeout := cfg.AttemptTimeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &MailDispatcher{
		mailer:         mailer,
		maxAttempts:    attempts,
		attemptTimeout: timeout,
		logg:           logg,
	}, nil
}

// Dispatch tries to deliver the message, retrying up to the configured
// attempt count. Permanent failure is logged, not returned.
func (d *MailDispatcher) Dispatch(ctx context.Context, msg MailMessage) {
	var errs []error
	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, d.attemptTimeout)
		err := d.mailer.Send(attemptCtx, msg)
		cancel()
		if err == nil {
			return
		}
		errs = append(errs, fmt.Errorf("attempt %d: %w", attempt, err))
		if ctx.Err() != nil {
			break
		}
	}
	logCtx := d.logg.WithFields(ctx, map[string]any{
		"mail_to":      msg.To,
		"mail_subject": msg.Subject,
		"attempts":     len(errs),
	})
	d.logg.Error(logCtx, "mail delivery failed permanently", multierr.Combine(errs...))
}
