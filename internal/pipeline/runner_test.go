package pipeline_test

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks RosterSource,Reconciler,Queuer,Drainer,Lock,Locker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"fantamorto/internal/notification"
	"fantamorto/internal/pipeline"
	"fantamorto/internal/pipeline/mocks"
	"fantamorto/internal/platform/metrics"
	"fantamorto/internal/roster"
	"fantamorto/internal/roster/models"
	"fantamorto/pkg/platform/sentinel"
)

type recordingMessenger struct {
	mu   sync.Mutex
	sent []string
}

func (m *recordingMessenger) Send(_ context.Context, address, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, address+"|"+text)
	return nil
}

var league = models.Roster{Teams: map[string]models.TeamFile{
	"Lupi": {Name: "Lupi", Owner: "Anna", Members: []string{"Mina", "Nessuno"}},
}}

// =============================================================================
// Runner Test Suite
// =============================================================================
// Justification for unit tests: the runner owns stage ordering, the empty
// roster shortcut and the abort path. Every stage is mocked so the tests pin
// which stages run and in what order.

type RunnerSuite struct {
	suite.Suite
	ctrl       *gomock.Controller
	source     *mocks.MockRosterSource
	reconciler *mocks.MockReconciler
	queuer     *mocks.MockQueuer
	drainer    *mocks.MockDrainer
	alerter    *recordingMessenger
	metrics    *metrics.Metrics
	runner     *pipeline.Runner
}

func TestRunnerSuite(t *testing.T) {
	suite.Run(t, new(RunnerSuite))
}

func (s *RunnerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.source = mocks.NewMockRosterSource(s.ctrl)
	s.reconciler = mocks.NewMockReconciler(s.ctrl)
	s.queuer = mocks.NewMockQueuer(s.ctrl)
	s.drainer = mocks.NewMockDrainer(s.ctrl)
	s.alerter = &recordingMessenger{}
	s.metrics = metrics.New()
	s.runner = s.newRunner()
}

func (s *RunnerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *RunnerSuite) newRunner(opts ...pipeline.Option) *pipeline.Runner {
	base := []pipeline.Option{
		pipeline.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		pipeline.WithMetrics(s.metrics),
		pipeline.WithAlerts(s.alerter, "999", notification.NewComposer("it")),
		pipeline.WithRunIDs(func() string { return "run-1" }),
		pipeline.WithClock(func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }),
	}
	r, err := pipeline.New(s.source, s.reconciler, s.queuer, s.drainer, append(base, opts...)...)
	s.Require().NoError(err)
	return r
}

func (s *RunnerSuite) TestNew() {
	s.Run("nil source returns error", func() {
		_, err := pipeline.New(nil, s.reconciler, s.queuer, s.drainer)
		s.Require().Error(err)
	})
	s.Run("nil drainer returns error", func() {
		_, err := pipeline.New(s.source, s.reconciler, s.queuer, nil)
		s.Require().Error(err)
	})
}

func (s *RunnerSuite) TestFullRunOrder() {
	ctx := gomock.Any()
	plan := roster.Plan{Names: []string{"Mina", "Nessuno"}, New: map[string]bool{"Nessuno": true}}
	gomock.InOrder(
		s.source.EXPECT().Load(ctx).Return(league, nil),
		s.reconciler.EXPECT().Plan(ctx, league).Return(plan, nil),
		s.reconciler.EXPECT().Refresh(ctx, plan).Return(roster.RefreshReport{
			Processed: 2, NotFound: []string{"Nessuno"}, NewMissing: []string{"Nessuno"},
		}, nil),
		s.queuer.EXPECT().QueueNotFound(ctx, []string{"Nessuno"}).Return(1, nil),
		s.reconciler.EXPECT().Apply(ctx, league).Return(roster.ApplyReport{TeamsCreated: 1, LinksAdded: 2}, nil),
		s.queuer.EXPECT().Queue(ctx).Return(notification.QueueReport{}, nil),
		s.drainer.EXPECT().Drain(ctx).Return(notification.DrainReport{Attempted: 1, Delivered: 1}, nil),
	)

	report, err := s.runner.Run(context.Background())
	s.Require().NoError(err)
	s.Equal("run-1", report.RunID)
	s.Equal(1, report.Teams)
	s.Equal(2, report.Names)
	s.Equal(1, report.NotFoundQueued)
	s.Equal(1, report.Drain.Delivered)
	s.Positive(testutil.ToFloat64(s.metrics.LastSuccess))
	s.Empty(s.alerter.sent)
}

func (s *RunnerSuite) TestEmptyRosterStillDrains() {
	s.source.EXPECT().Load(gomock.Any()).Return(models.Roster{}, nil)
	s.drainer.EXPECT().Drain(gomock.Any()).Return(notification.DrainReport{Attempted: 2, Retrying: 2}, nil)

	report, err := s.runner.Run(context.Background())
	s.Require().NoError(err)
	s.True(report.SkippedRoster)
	s.Equal(2, report.Drain.Retrying)
}

func (s *RunnerSuite) TestTransientIdentityFailureAborts() {
	s.source.EXPECT().Load(gomock.Any()).Return(league, nil)
	s.reconciler.EXPECT().Plan(gomock.Any(), league).Return(roster.Plan{Names: []string{"Mina"}}, nil)
	s.reconciler.EXPECT().Refresh(gomock.Any(), gomock.Any()).
		Return(roster.RefreshReport{}, fmt.Errorf("%w: search Mina: timeout", sentinel.ErrUnavailable))

	_, err := s.runner.Run(context.Background())
	s.Require().ErrorIs(err, pipeline.ErrAborted)
	s.Require().ErrorIs(err, sentinel.ErrUnavailable)

	s.Require().Len(s.alerter.sent, 1)
	s.Contains(s.alerter.sent[0], "999|*FANTAMORTO*\n\nRun aborted: identity service unreachable.")
	s.Zero(testutil.ToFloat64(s.metrics.LastSuccess))
}

func (s *RunnerSuite) TestStoreFailureIsNotAnAbort() {
	s.source.EXPECT().Load(gomock.Any()).Return(league, nil)
	s.reconciler.EXPECT().Plan(gomock.Any(), league).Return(roster.Plan{}, errors.New("database is locked"))

	_, err := s.runner.Run(context.Background())
	s.Require().Error(err)
	s.NotErrorIs(err, pipeline.ErrAborted)
	s.Empty(s.alerter.sent)
}

func (s *RunnerSuite) TestLockHeldSkipsRun() {
	locker := mocks.NewMockLocker(s.ctrl)
	locker.EXPECT().Acquire(gomock.Any()).Return(nil, errors.New("pipeline lock held by another run"))
	runner := s.newRunner(pipeline.WithLocker(locker))

	_, err := runner.Run(context.Background())
	s.Require().ErrorContains(err, "acquire run lock")
}

func (s *RunnerSuite) TestLockReleasedAfterRun() {
	lock := mocks.NewMockLock(s.ctrl)
	locker := mocks.NewMockLocker(s.ctrl)
	locker.EXPECT().Acquire(gomock.Any()).Return(lock, nil)
	s.source.EXPECT().Load(gomock.Any()).Return(models.Roster{}, nil)
	s.drainer.EXPECT().Drain(gomock.Any()).Return(notification.DrainReport{}, nil)
	lock.EXPECT().Release(gomock.Any()).Return(nil)

	_, err := s.newRunner(pipeline.WithLocker(locker)).Run(context.Background())
	s.Require().NoError(err)
}
