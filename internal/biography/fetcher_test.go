package biography

//go:generate mockgen -source=fetcher.go -destination=mocks/mocks.go -package=mocks Source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"fantamorto/internal/biography/mocks"
	"fantamorto/internal/wikidata"
)

type FetcherSuite struct {
	suite.Suite
	ctrl   *gomock.Controller
	source *mocks.MockSource
}

func TestFetcherSuite(t *testing.T) {
	suite.Run(t, new(FetcherSuite))
}

func (s *FetcherSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.source = mocks.NewMockSource(s.ctrl)
}

func (s *FetcherSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *FetcherSuite) newFetcher(opts ...Option) *Fetcher {
	opts = append(opts, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	f, err := New(s.source, opts...)
	s.Require().NoError(err)
	return f
}

func (s *FetcherSuite) TestNewRequiresSource() {
	_, err := New(nil)
	s.ErrorContains(err, "facts source is required")
}

func (s *FetcherSuite) TestEmptyInputMakesNoCalls() {
	got := s.newFetcher().FetchBatch(context.Background(), nil)
	s.Empty(got)
}

func (s *FetcherSuite) TestNormalizesFacts() {
	s.source.EXPECT().Facts(gomock.Any(), []string{"Q1"}, "it").Return([]wikidata.Fact{{
		ID:        "Q1",
		Label:     "Pippo Baudo",
		BirthDate: "1936-06-07T00:00:00Z",
		DeathDate: "+2025-08-16T00:00:00Z",
		URL:       "http://www.wikidata.org/entity/Q1",
	}}, nil)

	got := s.newFetcher().FetchBatch(context.Background(), []string{"Q1", "Q1", ""})
	s.Equal(map[string]Facts{"Q1": {
		DisplayName:  "Pippo Baudo",
		BirthDate:    "1936-06-07",
		DeathDate:    "2025-08-16",
		ReferenceURL: "http://www.wikidata.org/entity/Q1",
	}}, got)
}

func (s *FetcherSuite) TestChunkFailureIsPartial() {
	ids := make([]string, 5)
	for i := range ids {
		ids[i] = fmt.Sprintf("Q%d", i+1)
	}
	s.source.EXPECT().Facts(gomock.Any(), []string{"Q1", "Q2"}, "it").
		Return([]wikidata.Fact{{ID: "Q1", Label: "one"}, {ID: "Q2", Label: "two"}}, nil)
	s.source.EXPECT().Facts(gomock.Any(), []string{"Q3", "Q4"}, "it").
		Return(nil, errors.New("sparql timeout"))
	s.source.EXPECT().Facts(gomock.Any(), []string{"Q5"}, "it").
		Return([]wikidata.Fact{{ID: "Q5", Label: "five"}}, nil)

	got := s.newFetcher(WithChunkSize(2)).FetchBatch(context.Background(), ids)
	s.Len(got, 3)
	s.Contains(got, "Q1")
	s.NotContains(got, "Q3")
	s.NotContains(got, "Q4")
	s.Contains(got, "Q5")
}

func (s *FetcherSuite) TestDuplicateRowsMerge() {
	s.source.EXPECT().Facts(gomock.Any(), []string{"Q1"}, "it").Return([]wikidata.Fact{
		{ID: "Q1", Label: "X", BirthDate: "1900-01-01T00:00:00Z"},
		{ID: "Q1", Label: "X", BirthDate: "1901-01-01T00:00:00Z", DeathDate: "1950-01-01T00:00:00Z"},
	}, nil)

	got := s.newFetcher().FetchBatch(context.Background(), []string{"Q1"})
	s.Equal("1900-01-01", got["Q1"].BirthDate)
	s.Equal("1950-01-01", got["Q1"].DeathDate)
}

func TestChunkSizeIsClamped(t *testing.T) {
	f, err := New(stubSource{}, WithChunkSize(500))
	assert.NoError(t, err)
	assert.Equal(t, 50, f.chunkSize)

	f, err = New(stubSource{}, WithChunkSize(0))
	assert.NoError(t, err)
	assert.Equal(t, 1, f.chunkSize)
}

func TestChunks(t *testing.T) {
	got := chunks([]string{"a", "b", "c"}, 2)
	assert.Equal(t, [][]string{{"a", "b"}, {"c"}}, got)
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct{ in, want string }{
		{"1936-06-07T00:00:00Z", "1936-06-07"},
		{"+1936-06-07T00:00:00Z", "1936-06-07"},
		{"1936-06-07", "1936-06-07"},
		{"", ""},
		{"http://www.wikidata.org/.well-known/genid/abc", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeDate(tt.in))
		})
	}
}

type stubSource struct{}

func (stubSource) Facts(context.Context, []string, string) ([]wikidata.Fact, error) { return nil, nil }
