package mail

import (
	"context"

	enrollmentcmd "gitlab.com/teachcorps/recruitment-backend/internal/application/enrollment/cmd"
	mailevent "gitlab.com/teachcorps/recruitment-backend/internal/application/mail/event"
	"gitlab.com/teachcorps/recruitment-backend/internal/domain/enrollment"
	"gitlab.com/teachcorps/recruitment-backend/internal/domain/valueobject/mails"
)

type App struct {
	Event *mailevent.MailEventHandler
}

type Args struct {
	Mailsender      mailevent.MailSender
	FailureRecorder mailevent.EmailFailureRecorder
	StatusPageURL   string
}

func NewApp(args Args) *App {
	return &App{
		Event: mailevent.NewMailEventHandler(mailevent.MailEventHandlerArgs{
			Mailsender:      args.Mailsender,
			FailureRecorder: args.FailureRecorder,
			StatusPageURL:   args.StatusPageURL,
		}),
	}
}

// FailureRecorder adapts the email-failure command handler to the mail
// pipeline's interface.
type FailureRecorder struct {
	handler *enrollmentcmd.RecordEmailFailureHandler
}

func NewFailureRecorder(handler *enrollmentcmd.RecordEmailFailureHandler) *FailureRecorder {
	return &FailureRecorder{handler: handler}
}

func (r *FailureRecorder) RecordFailure(ctx context.Context, id enrollment.ID, payload mails.Payload, cause string) error {
	return r.handler.Handle(ctx, enrollmentcmd.RecordEmailFailure{
		EnrollmentID: id,
		Recipient:    payload.To,
		Subject:      payload.Subject,
		Body:         payload.Body,
		FailureCause: cause,
	})
}
