package notifications

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"time"

	"github.com/princinho/eventsbackend/config"
	"github.com/princinho/eventsbackend/models"
	"github.com/princinho/eventsbackend/services"
	"github.com/resend/resend-go/v2"
	"github.com/samber/oops"
	"go.uber.org/zap"
)

const welcomeSubject = "Welcome to Our Service!"

var welcomeTemplate = template.Must(template.New("welcome").Parse(`<!doctype html>
<html>
  <body style="font-family: Arial, sans-serif; color: #333;">
    <h1>Welcome, {{.Username}}!</h1>
    <p>Your {{.Role}} account is ready. You can now browse events and save your seat.</p>
    <p style="font-size: 12px; color: #888;">&copy; {{.Year}}</p>
  </body>
</html>`))

type welcomeData struct {
	Username string
	Role     models.Role
	Year     int
}

func renderWelcome(user *models.User) (string, error) {
	var buf bytes.Buffer
	err := welcomeTemplate.Execute(&buf, welcomeData{
		Username: user.Username,
		Role:     user.Role,
		Year:     time.Now().Year(),
	})
	return buf.String(), err
}

// ResendNotifier delivers welcome mail through the Resend API.
type ResendNotifier struct {
	client *resend.Client
	from   string
	log    *zap.Logger
}

func NewResendNotifier(client *resend.Client, from string, log *zap.Logger) *ResendNotifier {
	return &ResendNotifier{client: client, from: from, log: log.With(zap.String("component", "email"))}
}

func (n *ResendNotifier) NotifyRegistered(ctx context.Context, user *models.User) error {
	html, err := renderWelcome(user)
	if err != nil {
		return oops.In("notifications").Code("TEMPLATE_FAILED").Wrap(err)
	}

	sent, err := n.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    n.from,
		To:      []string{user.Email},
		Subject: welcomeSubject,
		Html:    html,
	})
	if err != nil {
		var rateLimitErr *resend.RateLimitError
		if errors.As(err, &rateLimitErr) {
			return oops.In("notifications").
				Code("EMAIL_RATE_LIMITED").
				With("limit", rateLimitErr.Limit, "reset", rateLimitErr.Reset).
				Wrap(err)
		}
		return oops.In("notifications").Code("EMAIL_SEND_FAILED").With("user_id", user.ID.Hex()).Wrap(err)
	}

	n.log.Info("welcome email sent", zap.String("email_id", sent.Id), zap.String("user_id", user.ID.Hex()))
	return nil
}

// LogNotifier only records that a notice would have been sent.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log.With(zap.String("component", "email"))}
}

func (n *LogNotifier) NotifyRegistered(_ context.Context, user *models.User) error {
	n.log.Info("email disabled, skipping welcome email", zap.String("user_id", user.ID.Hex()))
	return nil
}

// New returns the Resend notifier when mail is enabled and the log notifier otherwise.
func New(cfg config.MailConfig, log *zap.Logger) services.NotificationSink {
	if !cfg.Enabled {
		return NewLogNotifier(log)
	}
	return NewResendNotifier(resend.NewClient(cfg.ResendAPIKey), cfg.From, log)
}
