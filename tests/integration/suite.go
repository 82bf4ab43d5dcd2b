package integration

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // Import the stdlib driver for pgx
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	recruitment "gitlab.com/teachcorps/recruitment-backend"
	postgrespkg "gitlab.com/teachcorps/recruitment-backend/pkg/postgres"
	"gitlab.com/teachcorps/recruitment-backend/pkg/watermillx"

	"github.com/ThreeDotsLabs/watermill"
)

const (
	SpringCampaignID = int64(1)
	ClosedCampaignID = int64(2)
	WarsawTrainingID = int64(101)
	KrakowTrainingID = int64(102)
)

type TestSuite struct {
	suite.Suite
	pgContainer *postgres.PostgresContainer
	pgPool      *pgxpool.Pool
	app         *App
	cancel      context.CancelFunc
}

func (s *TestSuite) SetupSuite() {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:17-alpine",
		postgres.WithDatabase("recruitment_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second),
		),
	)
	s.Require().NoError(err)
	s.pgContainer = pgContainer

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	s.Require().NoError(err)

	s.pgPool, err = pgxpool.New(ctx, connStr)
	s.Require().NoError(err)

	migrateDSN := strings.Replace(connStr, "postgres://", "pgx://", 1)
	s.Require().NoError(postgrespkg.Migrate(migrateDSN, &recruitment.Migrations))

	wmlogger := watermill.NopLogger{}
	s.Require().NoError(watermillx.InitializeEventSchema(ctx, s.pgPool, wmlogger))

	appCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.app, err = NewApp(appCtx, s.pgPool)
	s.Require().NoError(err)
}

func (s *TestSuite) TearDownSuite() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.app != nil {
		_ = s.app.Close()
	}
	if s.pgPool != nil {
		s.pgPool.Close()
	}
	if s.pgContainer != nil {
		s.Require().NoError(s.pgContainer.Terminate(context.Background()))
	}
}

func (s *TestSuite) BeforeTest(suiteName, testName string) {
	_, err := s.pgPool.Exec(context.Background(), `
		INSERT INTO campaigns (id, name, season, opens_at, closes_at)
		VALUES
			(1, 'Spring Recruitment', 'spring-2025', NOW() - INTERVAL '1 month', NOW() + INTERVAL '1 month'),
			(2, 'Autumn Recruitment', 'autumn-2024', NOW() - INTERVAL '6 months', NOW() - INTERVAL '4 months');
		INSERT INTO trainings (id, city, starts_at, ends_at, capacity)
		VALUES
			(101, 'Warsaw', NOW() + INTERVAL '14 days', NOW() + INTERVAL '16 days', 30),
			(102, 'Krakow', NOW() + INTERVAL '21 days', NOW() + INTERVAL '23 days', 25);
		`)
	s.Require().NoError(err)
}

func (s *TestSuite) AfterTest(suiteName, testName string) {
	_, err := s.pgPool.Exec(context.Background(),
		"TRUNCATE TABLE campaigns, trainings, enrollment_events, enrollment_read_models RESTART IDENTITY CASCADE")
	s.Require().NoError(err)

	if s.app != nil && s.app.MockMailSender != nil {
		s.app.MockMailSender.Reset()
	}
}

func (s *TestSuite) App() *App {
	return s.app
}

func (s *TestSuite) Pool() *pgxpool.Pool {
	return s.pgPool
}
