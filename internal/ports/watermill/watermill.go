package watermill

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/jackc/pgx/v5/pgxpool"

	enrollmentapp "gitlab.com/teachcorps/recruitment-backend/internal/application/enrollment"
	"gitlab.com/teachcorps/recruitment-backend/internal/application/mail"
	"gitlab.com/teachcorps/recruitment-backend/internal/domain/enrollment"
	"gitlab.com/teachcorps/recruitment-backend/pkg/watermillx"
)

type Port struct {
	eventProcessor      *cqrs.EventProcessor
	eventGroupProcessor *cqrs.EventGroupProcessor
}

type AppEventHandlers struct {
	Enrollment *enrollmentapp.App
	Mail       *mail.App
}

func NewPort(router *message.Router, conn *pgxpool.Pool, wmlogger watermill.LoggerAdapter) (*Port, error) {
	eventProcessor, err := watermillx.NewEventProcessor(router, conn, wmlogger)
	if err != nil {
		return nil, err
	}
	eventGroupProcessor, err := watermillx.NewEventGroupProcessor(router, conn, wmlogger)
	if err != nil {
		return nil, err
	}

	return &Port{
		eventProcessor:      eventProcessor,
		eventGroupProcessor: eventGroupProcessor,
	}, nil
}

func NewPortForTest(router *message.Router, conn *pgxpool.Pool, wmlogger watermill.LoggerAdapter) (*Port, error) {
	eventProcessor, err := watermillx.NewEventProcessorForTests(router, conn, wmlogger)
	if err != nil {
		return nil, err
	}
	eventGroupProcessor, err := watermillx.NewEventGroupProcessorForTests(router, conn, wmlogger)
	if err != nil {
		return nil, err
	}

	return &Port{
		eventProcessor:      eventProcessor,
		eventGroupProcessor: eventGroupProcessor,
	}, nil
}

// Run registers the outbox subscriptions. The projector group consumes
// every enrollment event type so the read model catches anything the
// synchronous refresh missed; the mail handler only cares about new
// submissions.
func (p *Port) Run(ctx context.Context, handlers AppEventHandlers) error {
	projector := handlers.Enrollment.Projection
	apply := func(ctx context.Context, evt enrollment.Event) error {
		return projector.Apply(ctx, evt)
	}

	err := p.eventGroupProcessor.AddHandlersGroup(
		"ReadModelProjector",
		cqrs.NewGroupEventHandler(func(ctx context.Context, e *enrollment.FormSubmitted) error { return apply(ctx, e) }),
		cqrs.NewGroupEventHandler(func(ctx context.Context, e *enrollment.ContactOccurred) error { return apply(ctx, e) }),
		cqrs.NewGroupEventHandler(func(ctx context.Context, e *enrollment.InvitationAccepted) error { return apply(ctx, e) }),
		cqrs.NewGroupEventHandler(func(ctx context.Context, e *enrollment.InvitationRefused) error { return apply(ctx, e) }),
		cqrs.NewGroupEventHandler(func(ctx context.Context, e *enrollment.ResignedTemporarily) error { return apply(ctx, e) }),
		cqrs.NewGroupEventHandler(func(ctx context.Context, e *enrollment.ResignedPermanently) error { return apply(ctx, e) }),
		cqrs.NewGroupEventHandler(func(ctx context.Context, e *enrollment.AttendedTraining) error { return apply(ctx, e) }),
		cqrs.NewGroupEventHandler(func(ctx context.Context, e *enrollment.WasAbsentFromTraining) error { return apply(ctx, e) }),
		cqrs.NewGroupEventHandler(func(ctx context.Context, e *enrollment.ObtainedLecturerRights) error { return apply(ctx, e) }),
		cqrs.NewGroupEventHandler(func(ctx context.Context, e *enrollment.EmailDeliveryFailed) error { return apply(ctx, e) }),
	)
	if err != nil {
		return fmt.Errorf("failed to add projector handlers: %w", err)
	}

	err = p.eventProcessor.AddHandlers(
		cqrs.NewEventHandler("MailOnFormSubmitted", handlers.Mail.Event.HandleFormSubmitted),
	)
	if err != nil {
		return fmt.Errorf("failed to add event handlers: %w", err)
	}

	return nil
}
