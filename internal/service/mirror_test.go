package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"news_mirror/internal/apierrors"
	"news_mirror/internal/domain"
	"news_mirror/internal/service/mocks"
)

type MirrorSourceTestSuite struct {
	suite.Suite
	ctrl *gomock.Controller

	syncer   *mocks.MockSyncer
	articles *mocks.MockArticleStore

	source *MirrorSource
	logger *slog.Logger
}

func (s *MirrorSourceTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())

	s.syncer = mocks.NewMockSyncer(s.ctrl)
	s.articles = mocks.NewMockArticleStore(s.ctrl)
	s.logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	s.source = NewMirrorSource(s.syncer, s.articles, s.logger)
}

func (s *MirrorSourceTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestMirrorSourceTestSuite(t *testing.T) {
	suite.Run(t, new(MirrorSourceTestSuite))
}

func (s *MirrorSourceTestSuite) TestList_Defaults() {
	ctx := context.Background()

	articles := []domain.Article{{ArticleID: "a1"}, {ArticleID: "a2"}}

	s.syncer.EXPECT().SyncIfNeeded(ctx).Return(false, nil)
	s.articles.EXPECT().Count(ctx).Return(2, nil)
	s.articles.EXPECT().List(ctx, defaultLimit, 0).Return(articles, nil)

	list, err := s.source.List(ctx, domain.ListQuery{})

	s.NoError(err)
	s.Equal("success", list.Status)
	s.Equal(2, list.TotalResults)
	s.Equal(1, list.Page)
	s.Nil(list.NextPage)
	s.Equal(articles, list.Articles)
}

func (s *MirrorSourceTestSuite) TestList_PageOffset() {
	ctx := context.Background()

	s.syncer.EXPECT().SyncIfNeeded(ctx).Return(false, nil)
	s.articles.EXPECT().Count(ctx).Return(30, nil)
	s.articles.EXPECT().List(ctx, 10, 20).Return([]domain.Article{}, nil)

	list, err := s.source.List(ctx, domain.ListQuery{Page: "3", Limit: 10})

	s.NoError(err)
	s.Equal(3, list.Page)
}

func (s *MirrorSourceTestSuite) TestList_LimitClamped() {
	ctx := context.Background()

	s.syncer.EXPECT().SyncIfNeeded(ctx).Return(false, nil)
	s.articles.EXPECT().Count(ctx).Return(0, nil)
	s.articles.EXPECT().List(ctx, maxLimit, 0).Return([]domain.Article{}, nil)

	_, err := s.source.List(ctx, domain.ListQuery{Limit: 500})

	s.NoError(err)
}

func (s *MirrorSourceTestSuite) TestList_InvalidPage() {
	ctx := context.Background()

	for _, page := range []string{"0", "-1", "abc", "1.5"} {
		_, err := s.source.List(ctx, domain.ListQuery{Page: page})

		var ve *apierrors.ValidationError
		s.ErrorAs(err, &ve, "page=%q", page)
	}
}

func (s *MirrorSourceTestSuite) TestList_SyncFailureDegradesToStore() {
	ctx := context.Background()

	articles := []domain.Article{{ArticleID: "a1"}}

	s.syncer.EXPECT().SyncIfNeeded(ctx).Return(false, errors.New("upstream down"))
	s.articles.EXPECT().Count(ctx).Return(1, nil)
	s.articles.EXPECT().List(ctx, defaultLimit, 0).Return(articles, nil)

	list, err := s.source.List(ctx, domain.ListQuery{})

	s.NoError(err)
	s.Equal(articles, list.Articles)
}

func (s *MirrorSourceTestSuite) TestList_SyncFailureEmptyStore() {
	ctx := context.Background()

	syncErr := errors.New("upstream down")

	s.syncer.EXPECT().SyncIfNeeded(ctx).Return(false, syncErr)
	s.articles.EXPECT().Count(ctx).Return(0, nil)

	_, err := s.source.List(ctx, domain.ListQuery{})

	s.ErrorIs(err, syncErr)
}

func (s *MirrorSourceTestSuite) TestList_NilSyncer() {
	ctx := context.Background()

	source := NewMirrorSource(nil, s.articles, s.logger)

	s.articles.EXPECT().Count(ctx).Return(0, nil)
	s.articles.EXPECT().List(ctx, defaultLimit, 0).Return([]domain.Article{}, nil)

	list, err := source.List(ctx, domain.ListQuery{})

	s.NoError(err)
	s.Equal(0, list.TotalResults)
}

func (s *MirrorSourceTestSuite) TestByID_Found() {
	ctx := context.Background()

	article := &domain.Article{ArticleID: "a1", Title: "one"}

	s.articles.EXPECT().GetByID(ctx, "a1").Return(article, nil)

	got, err := s.source.ByID(ctx, "a1")

	s.NoError(err)
	s.Equal(article, got)
}

func (s *MirrorSourceTestSuite) TestByID_NotFound() {
	ctx := context.Background()

	s.articles.EXPECT().GetByID(ctx, "missing").Return(nil, nil)

	_, err := s.source.ByID(ctx, "missing")

	s.ErrorIs(err, apierrors.ErrNotFound)
}
