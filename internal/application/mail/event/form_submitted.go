package mailevent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ARUMANDESU/validation"
	"github.com/ARUMANDESU/validation/is"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"gitlab.com/teachcorps/recruitment-backend/internal/domain/enrollment"
	"gitlab.com/teachcorps/recruitment-backend/internal/domain/valueobject/mails"
	"gitlab.com/teachcorps/recruitment-backend/pkg/errorx"
	"gitlab.com/teachcorps/recruitment-backend/pkg/logging"
	"gitlab.com/teachcorps/recruitment-backend/pkg/otelx"
)

const FormSubmittedSubject = "We received your application"

// HandleFormSubmitted sends the submission confirmation. A delivery
// failure is recorded on the candidate's stream instead of being
// returned, so the subscription does not retry a dead mailbox forever.
func (h *MailEventHandler) HandleFormSubmitted(ctx context.Context, e *enrollment.FormSubmitted) error {
	if e == nil {
		return nil
	}
	const op = "mailevent.MailEventHandler.HandleFormSubmitted"

	l := h.logger.With(slog.String("event", "FormSubmitted"), slog.String("enrollment.id", e.EnrollmentID.String()))
	ctx, span := h.tracer.Start(
		ctx,
		"MailEventHandler.HandleFormSubmitted",
		trace.WithNewRoot(),
		trace.WithLinks(trace.LinkFromContext(e.Extract())),
		trace.WithAttributes(
			attribute.String("event.enrollment.id", e.EnrollmentID.String()),
			attribute.String("event.enrollment.email", logging.RedactEmail(e.Email)),
		),
	)
	defer span.End()

	err := validation.ValidateStruct(e,
		validation.Field(&e.Email, validation.Required, is.EmailFormat),
		validation.Field(&e.FirstName, validation.Required),
	)
	if err != nil {
		otelx.RecordSpanError(span, err, "validation failed")
		l.ErrorContext(ctx, "validation failed", slog.Any("error", err))
		return errorx.Wrap(err, op)
	}

	body := fmt.Sprintf(
		"Hello %s,\n\nThank you for applying to become a volunteer lecturer. "+
			"We will contact you about training dates in your region.",
		e.FirstName,
	)
	if h.statusPageURL != "" {
		body += fmt.Sprintf("\n\nYou can check your application status at %s", h.statusPageURL)
	}

	payload := mails.Payload{
		To:      e.Email,
		Subject: FormSubmittedSubject,
		Body:    body,
	}
	if err := h.mailsender.SendMail(ctx, payload); err != nil {
		otelx.RecordSpanError(span, err, "failed to send submission confirmation")
		l.ErrorContext(ctx, "failed to send submission confirmation", slog.Any("error", err))

		if h.failureRecorder != nil {
			if rerr := h.failureRecorder.RecordFailure(ctx, e.EnrollmentID, payload, err.Error()); rerr != nil {
				otelx.RecordSpanError(span, rerr, "failed to record email delivery failure")
				l.ErrorContext(ctx, "failed to record email delivery failure", slog.Any("error", rerr))
				return errorx.Wrap(rerr, op)
			}
		}
		return nil
	}

	return nil
}
