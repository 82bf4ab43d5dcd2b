package enrollment

import (
	"time"

	"gitlab.com/teachcorps/recruitment-backend/internal/application/enrollment/cmd"
	"gitlab.com/teachcorps/recruitment-backend/internal/application/enrollment/projection"
	"gitlab.com/teachcorps/recruitment-backend/internal/application/enrollment/query"
)

type App struct {
	CMD        Command
	Query      Query
	Projection *projection.Projector
}

type Command struct {
	SubmitForm          *cmd.SubmitFormHandler
	RecordContact       *cmd.RecordContactHandler
	AcceptInvitation    *cmd.AcceptInvitationHandler
	RefuseInvitation    *cmd.RefuseInvitationHandler
	RecordResignation   *cmd.RecordResignationHandler
	RecordAttendance    *cmd.RecordAttendanceHandler
	GrantLecturerRights *cmd.GrantLecturerRightsHandler
	RecordEmailFailure  *cmd.RecordEmailFailureHandler
}

type Query struct {
	GetEnrollment  *query.GetEnrollmentHandler
	GetSubmissions *query.GetSubmissionsHandler
}

type Args struct {
	Repo           cmd.Repo
	CampaignGetter cmd.CampaignGetter
	TrainingGetter cmd.TrainingGetter
	Events         projection.EventSource
	ReadModels     projection.Store
	Reader         query.Reader
	Clock          func() time.Time
}

func NewApp(args Args) *App {
	projector := projection.NewProjector(projection.ProjectorArgs{
		Events: args.Events,
		Store:  args.ReadModels,
	})

	return &App{
		CMD: Command{
			SubmitForm: cmd.NewSubmitFormHandler(cmd.SubmitFormHandlerArgs{
				Repo:           args.Repo,
				CampaignGetter: args.CampaignGetter,
				TrainingGetter: args.TrainingGetter,
				Refresher:      projector,
				Clock:          args.Clock,
			}),
			RecordContact: cmd.NewRecordContactHandler(cmd.RecordContactHandlerArgs{
				Repo:      args.Repo,
				Refresher: projector,
				Clock:     args.Clock,
			}),
			AcceptInvitation: cmd.NewAcceptInvitationHandler(cmd.AcceptInvitationHandlerArgs{
				Repo:           args.Repo,
				TrainingGetter: args.TrainingGetter,
				Refresher:      projector,
				Clock:          args.Clock,
			}),
			RefuseInvitation: cmd.NewRefuseInvitationHandler(cmd.RefuseInvitationHandlerArgs{
				Repo:      args.Repo,
				Refresher: projector,
				Clock:     args.Clock,
			}),
			RecordResignation: cmd.NewRecordResignationHandler(cmd.RecordResignationHandlerArgs{
				Repo:      args.Repo,
				Refresher: projector,
				Clock:     args.Clock,
			}),
			RecordAttendance: cmd.NewRecordAttendanceHandler(cmd.RecordAttendanceHandlerArgs{
				Repo:      args.Repo,
				Refresher: projector,
				Clock:     args.Clock,
			}),
			GrantLecturerRights: cmd.NewGrantLecturerRightsHandler(cmd.GrantLecturerRightsHandlerArgs{
				Repo:      args.Repo,
				Refresher: projector,
				Clock:     args.Clock,
			}),
			RecordEmailFailure: cmd.NewRecordEmailFailureHandler(cmd.RecordEmailFailureHandlerArgs{
				Repo:      args.Repo,
				Refresher: projector,
				Clock:     args.Clock,
			}),
		},
		Query: Query{
			GetEnrollment: query.NewGetEnrollmentHandler(query.GetEnrollmentHandlerArgs{
				Reader: args.Reader,
			}),
			GetSubmissions: query.NewGetSubmissionsHandler(query.GetSubmissionsHandlerArgs{
				Reader: args.Reader,
			}),
		},
		Projection: projector,
	}
}
