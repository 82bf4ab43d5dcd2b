package integration

import (
	"context"
	"net/http"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	recruitment "gitlab.com/teachcorps/recruitment-backend"
	"gitlab.com/teachcorps/recruitment-backend/internal/adapters/repos/postgres"
	enrollmentapp "gitlab.com/teachcorps/recruitment-backend/internal/application/enrollment"
	"gitlab.com/teachcorps/recruitment-backend/internal/application/mail"
	httpport "gitlab.com/teachcorps/recruitment-backend/internal/ports/http"
	watermillport "gitlab.com/teachcorps/recruitment-backend/internal/ports/watermill"
	"gitlab.com/teachcorps/recruitment-backend/pkg/errorx"
	"gitlab.com/teachcorps/recruitment-backend/pkg/httpx"
	"gitlab.com/teachcorps/recruitment-backend/tests/mocks"
)

// App is the application wired against a real database with the mail
// transport mocked out.
type App struct {
	HTTPHandler    http.Handler
	MockMailSender *mocks.MockMailSender
	EnrollmentApp  *enrollmentapp.App
	EventStore     *postgres.EnrollmentEventStore
	ReadModels     *postgres.EnrollmentReadModelRepo
	Campaigns      *postgres.CampaignRepo
	Trainings      *postgres.TrainingRepo

	router *message.Router
}

func NewApp(ctx context.Context, pool *pgxpool.Pool) (*App, error) {
	eventStore := postgres.NewEnrollmentEventStore(pool, nil, nil)
	readModels := postgres.NewEnrollmentReadModelRepo(pool, nil, nil)
	campaigns := postgres.NewCampaignRepo(pool, nil, nil)
	trainings := postgres.NewTrainingRepo(pool, nil, nil)

	enrollApp := enrollmentapp.NewApp(enrollmentapp.Args{
		Repo:           eventStore,
		CampaignGetter: campaigns,
		TrainingGetter: trainings,
		Events:         eventStore,
		ReadModels:     readModels,
		Reader:         readModels,
		Clock:          time.Now,
	})

	mailSender := mocks.NewMockMailSender()
	mailApp := mail.NewApp(mail.Args{
		Mailsender:      mailSender,
		FailureRecorder: mail.NewFailureRecorder(enrollApp.CMD.RecordEmailFailure),
	})

	wmlogger := watermill.NopLogger{}
	router, err := message.NewRouter(message.RouterConfig{}, wmlogger)
	if err != nil {
		return nil, err
	}

	eventPort, err := watermillport.NewPortForTest(router, pool, wmlogger)
	if err != nil {
		return nil, err
	}
	err = eventPort.Run(ctx, watermillport.AppEventHandlers{
		Enrollment: enrollApp,
		Mail:       mailApp,
	})
	if err != nil {
		return nil, err
	}

	go func() {
		_ = router.Run(ctx)
	}()
	<-router.Running()

	bundle, err := errorx.NewBundle(recruitment.Locales, "locales")
	if err != nil {
		return nil, err
	}

	mux := chi.NewRouter()
	httpport.NewPort(httpport.Args{
		EnrollmentApp: enrollApp,
		Campaigns:     campaigns,
		Trainings:     trainings,
		Errhandler:    httpx.NewErrorHandler(bundle),
	}).Route(mux)

	return &App{
		HTTPHandler:    mux,
		MockMailSender: mailSender,
		EnrollmentApp:  enrollApp,
		EventStore:     eventStore,
		ReadModels:     readModels,
		Campaigns:      campaigns,
		Trainings:      trainings,
		router:         router,
	}, nil
}

func (a *App) Close() error {
	if a.router != nil {
		return a.router.Close()
	}
	return nil
}
