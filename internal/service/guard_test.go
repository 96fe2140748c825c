package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"news_mirror/internal/config"
	"news_mirror/internal/domain"
	"news_mirror/internal/service/mocks"
)

type SyncGuardTestSuite struct {
	suite.Suite
	ctrl *gomock.Controller

	source    *mocks.MockSource
	articles  *mocks.MockArticleStore
	syncLog   *mocks.MockSyncLogStore
	publisher *mocks.MockPublisher

	guard  *SyncGuard
	cfg    config.SyncConfig
	logger *slog.Logger

	day string
}

func (s *SyncGuardTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())

	s.source = mocks.NewMockSource(s.ctrl)
	s.articles = mocks.NewMockArticleStore(s.ctrl)
	s.syncLog = mocks.NewMockSyncLogStore(s.ctrl)
	s.publisher = mocks.NewMockPublisher(s.ctrl)

	s.cfg = config.SyncConfig{Language: "en"}
	s.logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	s.source.EXPECT().Name().Return("newsdata.io").AnyTimes()

	s.guard = NewSyncGuard(s.source, s.articles, s.syncLog, s.publisher, s.logger, s.cfg)

	s.day = domain.SyncDay(time.Now())
}

func (s *SyncGuardTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestSyncGuardTestSuite(t *testing.T) {
	suite.Run(t, new(SyncGuardTestSuite))
}

func (s *SyncGuardTestSuite) acquireLock() {
	s.syncLog.EXPECT().AcquireDayLock(gomock.Any(), s.day).Return(func() {}, true, nil)
}

func (s *SyncGuardTestSuite) TestSyncIfNeeded_AlreadySynced() {
	ctx := context.Background()

	s.syncLog.EXPECT().IsSyncedToday(ctx, s.day).Return(true, nil)

	performed, err := s.guard.SyncIfNeeded(ctx)

	s.NoError(err)
	s.False(performed)
}

func (s *SyncGuardTestSuite) TestSyncIfNeeded_FirstSync() {
	ctx := context.Background()
	now := time.Now()

	articles := []domain.Article{
		{ArticleID: "a1", Title: "one", PubDate: now},
		{ArticleID: "a2", Title: "two", PubDate: now},
		{ArticleID: "a3", Title: "three", PubDate: now},
	}

	s.syncLog.EXPECT().IsSyncedToday(ctx, s.day).Return(false, nil).Times(2)
	s.acquireLock()

	s.source.EXPECT().FetchLatest(ctx, domain.FetchParams{Language: "en"}).Return(&domain.FetchResult{
		Status:       "success",
		TotalResults: 3,
		Articles:     articles,
	}, nil)

	s.articles.EXPECT().InsertBatch(ctx, articles).Return(&domain.InsertResult{
		Attempted: 3,
		Created:   []string{"a1", "a2", "a3"},
	}, nil)

	s.publisher.EXPECT().Publish(ctx, &articles[0]).Return(nil)
	s.publisher.EXPECT().Publish(ctx, &articles[1]).Return(nil)
	s.publisher.EXPECT().Publish(ctx, &articles[2]).Return(nil)

	s.syncLog.EXPECT().Upsert(ctx, &domain.SyncLogEntry{
		SyncDate:      s.day,
		ArticlesCount: 3,
		Status:        domain.SyncStatusSuccess,
	}).Return(nil)

	performed, err := s.guard.SyncIfNeeded(ctx)

	s.NoError(err)
	s.True(performed)
}

func (s *SyncGuardTestSuite) TestSyncIfNeeded_OnlyNewArticlesPublished() {
	ctx := context.Background()
	now := time.Now()

	articles := []domain.Article{
		{ArticleID: "a1", Title: "seen before", PubDate: now},
		{ArticleID: "a2", Title: "fresh", PubDate: now},
	}

	s.syncLog.EXPECT().IsSyncedToday(ctx, s.day).Return(false, nil).Times(2)
	s.acquireLock()

	s.source.EXPECT().FetchLatest(ctx, gomock.Any()).Return(&domain.FetchResult{Articles: articles}, nil)

	// a1 already existed: the insert was a conflict no-op.
	s.articles.EXPECT().InsertBatch(ctx, articles).Return(&domain.InsertResult{
		Attempted: 2,
		Created:   []string{"a2"},
	}, nil)

	s.publisher.EXPECT().Publish(ctx, &articles[1]).Return(nil)

	s.syncLog.EXPECT().Upsert(ctx, &domain.SyncLogEntry{
		SyncDate:      s.day,
		ArticlesCount: 2,
		Status:        domain.SyncStatusSuccess,
	}).Return(nil)

	performed, err := s.guard.SyncIfNeeded(ctx)

	s.NoError(err)
	s.True(performed)
}

func (s *SyncGuardTestSuite) TestSyncIfNeeded_LockBusy() {
	ctx := context.Background()

	s.syncLog.EXPECT().IsSyncedToday(ctx, s.day).Return(false, nil)
	s.syncLog.EXPECT().AcquireDayLock(ctx, s.day).Return(nil, false, nil)

	performed, err := s.guard.SyncIfNeeded(ctx)

	s.NoError(err)
	s.False(performed)
}

func (s *SyncGuardTestSuite) TestSyncIfNeeded_RacerFinishedFirst() {
	ctx := context.Background()

	released := false
	s.syncLog.EXPECT().IsSyncedToday(ctx, s.day).Return(false, nil)
	s.syncLog.EXPECT().AcquireDayLock(ctx, s.day).Return(func() { released = true }, true, nil)
	s.syncLog.EXPECT().IsSyncedToday(ctx, s.day).Return(true, nil)

	performed, err := s.guard.SyncIfNeeded(ctx)

	s.NoError(err)
	s.False(performed)
	s.True(released)
}

func (s *SyncGuardTestSuite) TestSyncIfNeeded_FetchError() {
	ctx := context.Background()

	s.syncLog.EXPECT().IsSyncedToday(ctx, s.day).Return(false, nil).Times(2)
	s.acquireLock()

	s.source.EXPECT().FetchLatest(ctx, gomock.Any()).Return(nil, errors.New("upstream timeout"))

	s.syncLog.EXPECT().Upsert(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, entry *domain.SyncLogEntry) error {
			s.Equal(s.day, entry.SyncDate)
			s.Equal(domain.SyncStatusFailed, entry.Status)
			s.Require().NotNil(entry.ErrorMessage)
			s.NotEmpty(*entry.ErrorMessage)
			return nil
		},
	)

	performed, err := s.guard.SyncIfNeeded(ctx)

	s.Error(err)
	s.False(performed)
	s.Contains(err.Error(), "fetch latest news")
}

func (s *SyncGuardTestSuite) TestSyncIfNeeded_InsertError() {
	ctx := context.Background()

	s.syncLog.EXPECT().IsSyncedToday(ctx, s.day).Return(false, nil).Times(2)
	s.acquireLock()

	s.source.EXPECT().FetchLatest(ctx, gomock.Any()).Return(&domain.FetchResult{
		Articles: []domain.Article{{ArticleID: "a1"}},
	}, nil)
	s.articles.EXPECT().InsertBatch(ctx, gomock.Any()).Return(nil, errors.New("connection reset"))

	s.syncLog.EXPECT().Upsert(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, entry *domain.SyncLogEntry) error {
			s.Equal(domain.SyncStatusFailed, entry.Status)
			return nil
		},
	)

	performed, err := s.guard.SyncIfNeeded(ctx)

	s.Error(err)
	s.False(performed)
	s.Contains(err.Error(), "insert articles")
}

func (s *SyncGuardTestSuite) TestSyncIfNeeded_PublishFailureDoesNotFailSync() {
	ctx := context.Background()

	articles := []domain.Article{{ArticleID: "a1", Title: "one"}}

	s.syncLog.EXPECT().IsSyncedToday(ctx, s.day).Return(false, nil).Times(2)
	s.acquireLock()

	s.source.EXPECT().FetchLatest(ctx, gomock.Any()).Return(&domain.FetchResult{Articles: articles}, nil)
	s.articles.EXPECT().InsertBatch(ctx, articles).Return(&domain.InsertResult{Attempted: 1, Created: []string{"a1"}}, nil)

	s.publisher.EXPECT().Publish(ctx, &articles[0]).Return(errors.New("broker down"))

	s.syncLog.EXPECT().Upsert(ctx, gomock.Any()).Return(nil)

	performed, err := s.guard.SyncIfNeeded(ctx)

	s.NoError(err)
	s.True(performed)
}

func (s *SyncGuardTestSuite) TestSyncIfNeeded_PublisherNil() {
	ctx := context.Background()

	guard := NewSyncGuard(s.source, s.articles, s.syncLog, nil, s.logger, s.cfg)

	articles := []domain.Article{{ArticleID: "a1", Title: "one"}}

	s.syncLog.EXPECT().IsSyncedToday(ctx, s.day).Return(false, nil).Times(2)
	s.acquireLock()

	s.source.EXPECT().FetchLatest(ctx, gomock.Any()).Return(&domain.FetchResult{Articles: articles}, nil)
	s.articles.EXPECT().InsertBatch(ctx, articles).Return(&domain.InsertResult{Attempted: 1, Created: []string{"a1"}}, nil)

	s.syncLog.EXPECT().Upsert(ctx, gomock.Any()).Return(nil)

	performed, err := guard.SyncIfNeeded(ctx)

	s.NoError(err)
	s.True(performed)
}
