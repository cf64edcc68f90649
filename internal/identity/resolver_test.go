package identity

//go:generate mockgen -source=resolver.go -destination=mocks/mocks.go -package=mocks Store,Searcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"fantamorto/internal/identity/mocks"
	"fantamorto/internal/platform/config"
	"fantamorto/internal/storage"
	"fantamorto/internal/wikidata"
	"fantamorto/pkg/platform/sentinel"
)

// =============================================================================
// Resolver Test Suite
// =============================================================================
// Justification for unit tests: the resolver owns the cache-first lookup,
// candidate ranking and collision handling. Store and search are mocked so
// each branch is driven explicitly.

type ResolverSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	store    *mocks.MockStore
	searcher *mocks.MockSearcher
	resolver *Resolver
}

func TestResolverSuite(t *testing.T) {
	suite.Run(t, new(ResolverSuite))
}

func (s *ResolverSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.store = mocks.NewMockStore(s.ctrl)
	s.searcher = mocks.NewMockSearcher(s.ctrl)
	var err error
	s.resolver, err = New(s.store, s.searcher, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	s.Require().NoError(err)
}

func (s *ResolverSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ResolverSuite) TestNew() {
	s.Run("nil store returns error", func() {
		_, err := New(nil, s.searcher)
		s.ErrorContains(err, "identity store is required")
	})

	s.Run("nil searcher returns error", func() {
		_, err := New(s.store, nil)
		s.ErrorContains(err, "searcher is required")
	})

	s.Run("locale picks the human marker", func() {
		r, err := New(s.store, s.searcher, WithLocale("en"))
		s.Require().NoError(err)
		s.Equal("human", r.marker)
	})
}

func (s *ResolverSuite) TestCacheHitSkipsSearch() {
	ctx := context.Background()
	s.store.EXPECT().FindIdentity(ctx, "Mina").Return("Q1", nil)

	res, err := s.resolver.Resolve(ctx, "Mina")
	s.Require().NoError(err)
	s.Equal(Resolution{Name: "Mina", StableID: "Q1", Status: StatusCached}, res)
}

func (s *ResolverSuite) TestPrefersHumanCandidate() {
	ctx := context.Background()
	s.store.EXPECT().FindIdentity(ctx, "Mina").Return("", sentinel.ErrNotFound)
	s.searcher.EXPECT().Search(ctx, "Mina", "it").Return([]wikidata.Candidate{
		{ID: "Q10", Description: "album"},
		{ID: "Q20", Description: "cantante italiana, Essere Umano"},
	}, nil)
	s.store.EXPECT().SaveIdentity(ctx, "Mina", "Q20").Return(nil)

	res, err := s.resolver.Resolve(ctx, "Mina")
	s.Require().NoError(err)
	s.Equal("Q20", res.StableID)
	s.Equal(StatusResolved, res.Status)
}

func (s *ResolverSuite) TestFallsBackToFirstCandidate() {
	ctx := context.Background()
	s.store.EXPECT().FindIdentity(ctx, "Mina").Return("", sentinel.ErrNotFound)
	s.searcher.EXPECT().Search(ctx, "Mina", "it").Return([]wikidata.Candidate{
		{ID: "Q10", Description: "album"},
		{ID: "Q11"},
	}, nil)
	s.store.EXPECT().SaveIdentity(ctx, "Mina", "Q10").Return(nil)

	res, err := s.resolver.Resolve(ctx, "Mina")
	s.Require().NoError(err)
	s.Equal("Q10", res.StableID)
}

func (s *ResolverSuite) TestNoCandidatesIsNotFound() {
	ctx := context.Background()
	s.store.EXPECT().FindIdentity(ctx, "Nessuno").Return("", sentinel.ErrNotFound)
	s.searcher.EXPECT().Search(ctx, "Nessuno", "it").Return(nil, nil)

	res, err := s.resolver.Resolve(ctx, "Nessuno")
	s.Require().NoError(err)
	s.Equal(StatusNotFound, res.Status)
	s.Empty(res.StableID)
}

func (s *ResolverSuite) TestSearchFailureIsTransient() {
	ctx := context.Background()
	s.store.EXPECT().FindIdentity(ctx, "Mina").Return("", sentinel.ErrNotFound)
	s.searcher.EXPECT().Search(ctx, "Mina", "it").Return(nil, errors.New("connection refused"))

	_, err := s.resolver.Resolve(ctx, "Mina")
	s.Require().Error(err)
	s.ErrorIs(err, sentinel.ErrUnavailable)
}

func (s *ResolverSuite) TestCollisionIsReportedNotFatal() {
	ctx := context.Background()
	conflict := fmt.Errorf("save identity: %w", &storage.ConflictError{Table: "identity_cache", Field: "stable_id"})
	s.store.EXPECT().FindIdentity(ctx, "Francesco Totti").Return("", sentinel.ErrNotFound)
	s.searcher.EXPECT().Search(ctx, "Francesco Totti", "it").Return([]wikidata.Candidate{{ID: "Q1", Description: "essere umano"}}, nil)
	s.store.EXPECT().SaveIdentity(ctx, "Francesco Totti", "Q1").Return(conflict)
	s.store.EXPECT().IdentityOwner(ctx, "Q1").Return("Totti", nil)

	res, err := s.resolver.Resolve(ctx, "Francesco Totti")
	s.Require().NoError(err)
	s.Equal("Q1", res.StableID)
	s.Equal(StatusResolved, res.Status)
	s.Equal("Totti", res.Collision)
}

func (s *ResolverSuite) TestStoreFailureOnSaveIsReturned() {
	ctx := context.Background()
	s.store.EXPECT().FindIdentity(ctx, "Mina").Return("", sentinel.ErrNotFound)
	s.searcher.EXPECT().Search(ctx, "Mina", "it").Return([]wikidata.Candidate{{ID: "Q1"}}, nil)
	s.store.EXPECT().SaveIdentity(ctx, "Mina", "Q1").Return(errors.New("disk full"))

	_, err := s.resolver.Resolve(ctx, "Mina")
	s.Error(err)
	s.NotErrorIs(err, sentinel.ErrUnavailable)
}

func (s *ResolverSuite) TestResolveAllKeepsOrder() {
	s.store.EXPECT().FindIdentity(gomock.Any(), "A").Return("Q1", nil)
	s.store.EXPECT().FindIdentity(gomock.Any(), "B").Return("Q2", nil)
	s.store.EXPECT().FindIdentity(gomock.Any(), "C").Return("Q3", nil)

	res, err := s.resolver.ResolveAll(context.Background(), []string{"A", "B", "C"})
	s.Require().NoError(err)
	s.Require().Len(res, 3)
	s.Equal("Q1", res[0].StableID)
	s.Equal("Q3", res[2].StableID)
}

// =============================================================================
// Store-backed scenarios
// =============================================================================

type fakeSearcher struct {
	ids   map[string]string
	calls atomic.Int32
	fail  bool
}

func (f *fakeSearcher) Search(ctx context.Context, name, locale string) ([]wikidata.Candidate, error) {
	f.calls.Add(1)
	if f.fail {
		return nil, wikidata.NewProviderError(wikidata.ErrorProviderOutage, "search", "down", nil)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id, ok := f.ids[name]
	if !ok {
		return nil, nil
	}
	return []wikidata.Candidate{{ID: id, Description: "essere umano"}}, nil
}

func newSQLiteStore(t *testing.T) *storage.Store {
	t.Helper()
	s, err := storage.Open(context.Background(), config.Database{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "id.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestCollisionScenario(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)
	searcher := &fakeSearcher{ids: map[string]string{"Totti": "Q1", "Francesco Totti": "Q1"}}
	r, err := New(store, searcher)
	require.NoError(t, err)

	first, err := r.Resolve(ctx, "Totti")
	require.NoError(t, err)
	require.Equal(t, StatusResolved, first.Status)
	require.Empty(t, first.Collision)

	second, err := r.Resolve(ctx, "Francesco Totti")
	require.NoError(t, err)
	require.Equal(t, "Q1", second.StableID)
	require.Equal(t, "Totti", second.Collision)

	_, err = store.FindIdentity(ctx, "Francesco Totti")
	require.ErrorIs(t, err, sentinel.ErrNotFound)

	again, err := r.Resolve(ctx, "Totti")
	require.NoError(t, err)
	require.Equal(t, StatusCached, again.Status)
	require.Equal(t, int32(2), searcher.calls.Load(), "cache hit makes no network call")
}

func TestResolveAllFailsFast(t *testing.T) {
	store := newSQLiteStore(t)
	r, err := New(store, &fakeSearcher{fail: true}, WithWorkers(2))
	require.NoError(t, err)

	_, err = r.ResolveAll(context.Background(), []string{"A", "B", "C", "D"})
	require.ErrorIs(t, err, sentinel.ErrUnavailable)
}
