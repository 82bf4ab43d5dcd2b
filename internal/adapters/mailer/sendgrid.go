package mailer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"gitlab.com/teachcorps/recruitment-backend/internal/domain/valueobject/mails"
	"gitlab.com/teachcorps/recruitment-backend/pkg/logging"
	"gitlab.com/teachcorps/recruitment-backend/pkg/otelx"
)

var (
	tracer = otel.Tracer("recruitment/internal/adapters/mailer")
	logger = otelslog.NewLogger("recruitment/internal/adapters/mailer")
)

type Config struct {
	APIKey    string
	FromEmail string
	FromName  string
}

type SendGrid struct {
	tracer trace.Tracer
	logger *slog.Logger
	config Config
}

func NewSendGrid(config Config) *SendGrid {
	return &SendGrid{
		tracer: tracer,
		logger: logger,
		config: config,
	}
}

func (s *SendGrid) SendMail(ctx context.Context, payload mails.Payload) error {
	ctx, span := s.tracer.Start(ctx, "SendGrid.SendMail",
		trace.WithAttributes(attribute.String("mail.to", logging.RedactEmail(payload.To))),
	)
	defer span.End()

	from := sgmail.NewEmail(s.config.FromName, s.config.FromEmail)
	to := sgmail.NewEmail("", payload.To)
	message := sgmail.NewSingleEmail(from, payload.Subject, to, payload.Body, "")

	client := sendgrid.NewSendClient(s.config.APIKey)
	response, err := client.SendWithContext(ctx, message)
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to send mail")
		return fmt.Errorf("failed to send mail: %w", err)
	}
	if response.StatusCode >= 400 {
		err := fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
		otelx.RecordSpanError(span, err, "sendgrid rejected the message")
		return err
	}

	s.logger.DebugContext(ctx, "mail sent", slog.String("to", logging.RedactEmail(payload.To)))
	return nil
}
