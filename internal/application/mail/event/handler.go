package mailevent

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"gitlab.com/teachcorps/recruitment-backend/internal/domain/enrollment"
	"gitlab.com/teachcorps/recruitment-backend/internal/domain/valueobject/mails"
)

var (
	tracer = otel.Tracer("recruitment/application/mail/event")
	logger = otelslog.NewLogger("recruitment/application/mail/event")
)

type MailSender interface {
	SendMail(ctx context.Context, payload mails.Payload) error
}

// EmailFailureRecorder appends a delivery failure to the candidate's
// stream so coordinators can see which candidates never got their
// confirmation.
type EmailFailureRecorder interface {
	RecordFailure(ctx context.Context, id enrollment.ID, payload mails.Payload, cause string) error
}

type MailEventHandler struct {
	tracer          trace.Tracer
	logger          *slog.Logger
	mailsender      MailSender
	failureRecorder EmailFailureRecorder
	statusPageURL   string
}

type MailEventHandlerArgs struct {
	Tracer          trace.Tracer
	Logger          *slog.Logger
	Mailsender      MailSender
	FailureRecorder EmailFailureRecorder
	StatusPageURL   string
}

func NewMailEventHandler(args MailEventHandlerArgs) *MailEventHandler {
	if args.Tracer == nil {
		args.Tracer = tracer
	}
	if args.Logger == nil {
		args.Logger = logger
	}

	return &MailEventHandler{
		tracer:          args.Tracer,
		logger:          args.Logger,
		mailsender:      args.Mailsender,
		failureRecorder: args.FailureRecorder,
		statusPageURL:   args.StatusPageURL,
	}
}
