package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/exercise-service/internal/cache"
	"github.com/SAP-F-2025/exercise-service/internal/events"
	"github.com/SAP-F-2025/exercise-service/internal/generator"
	"github.com/SAP-F-2025/exercise-service/internal/models"
	"github.com/SAP-F-2025/exercise-service/internal/repositories"
	"github.com/SAP-F-2025/exercise-service/internal/validator"
)

type contentFixture struct {
	repo      *MockContentRepository
	cache     *MockCacheService
	publisher *events.MockEventPublisher
	service   ContentService
}

func newContentFixture(t *testing.T, withCache bool) *contentFixture {
	t.Helper()
	gen, err := generator.New(generator.WithLogger(discardLogger()))
	require.NoError(t, err)

	f := &contentFixture{
		repo:      &MockContentRepository{},
		publisher: events.NewMockEventPublisher(discardLogger()),
	}
	cfg := ContentServiceConfig{
		Repository: f.repo,
		Generator:  gen,
		Publisher:  f.publisher,
		Validator:  validator.New(),
		Logger:     discardLogger(),
	}
	if withCache {
		f.cache = &MockCacheService{}
		cfg.Cache = f.cache
	}
	f.service = NewContentService(cfg)
	return f
}

func TestContentService_Create(t *testing.T) {
	f := newContentFixture(t, false)
	raw := `{"kind":"match","title":"Chemistry","pairs":[{"left":"H2O","right":"Water"},{"left":"NaCl","right":"Salt"}]}`

	f.repo.On("Create", mock.Anything, mock.MatchedBy(func(record *models.ExerciseContent) bool {
		return record.Kind == models.Match &&
			record.Source == models.SourceStatic &&
			record.Title == "Chemistry" &&
			record.ID != ""
	})).Return(nil)

	resp, err := f.service.Create(context.Background(), json.RawMessage(raw))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, resp.ID, resp.Content.Base().ID)
	assert.Equal(t, models.Match, resp.Kind)
	f.repo.AssertExpectations(t)
}

func TestContentService_CreateRejectsInvalidContent(t *testing.T) {
	f := newContentFixture(t, false)

	_, err := f.service.Create(context.Background(), json.RawMessage(`{"kind":"match","pairs":[]}`))
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestContentService_CreateDuplicate(t *testing.T) {
	f := newContentFixture(t, false)
	f.repo.On("Create", mock.Anything, mock.Anything).Return(repositories.ErrDuplicate)

	_, err := f.service.Create(context.Background(), json.RawMessage(trueFalseJSON))
	assert.True(t, IsConflict(err))
}

func TestContentService_GetReadsThroughCache(t *testing.T) {
	f := newContentFixture(t, true)
	record, err := toRecord(mustParse(t, trueFalseJSON), models.SourceStatic)
	require.NoError(t, err)

	f.cache.On("Get", mock.Anything, cache.ContentKey("tf-1"), mock.Anything).Return(cache.ErrCacheMiss).Once()
	f.repo.On("GetByID", mock.Anything, "tf-1").Return(record, nil).Once()
	f.cache.On("Set", mock.Anything, cache.ContentKey("tf-1"), record, DefaultContentCacheTTL).Return(nil).Once()

	resp, err := f.service.Get(context.Background(), "tf-1")
	require.NoError(t, err)
	tf, ok := resp.Content.(*models.TrueFalseContent)
	require.True(t, ok)
	assert.True(t, tf.Truth())

	f.cache.On("Get", mock.Anything, cache.ContentKey("tf-1"), mock.Anything).
		Run(func(args mock.Arguments) {
			*args.Get(2).(*models.ExerciseContent) = *record
		}).
		Return(nil).Once()

	resp, err = f.service.Get(context.Background(), "tf-1")
	require.NoError(t, err)
	assert.Equal(t, "tf-1", resp.ID)

	f.repo.AssertExpectations(t)
	f.cache.AssertExpectations(t)
}

func TestContentService_GetFallsBackWhenCacheFails(t *testing.T) {
	f := newContentFixture(t, true)
	record, err := toRecord(mustParse(t, mcqJSON), models.SourceStatic)
	require.NoError(t, err)

	f.cache.On("Get", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("connection refused"))
	f.cache.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("connection refused"))
	f.repo.On("GetByID", mock.Anything, "mcq-1").Return(record, nil)

	content, err := f.service.GetContent(context.Background(), "mcq-1")
	require.NoError(t, err)
	assert.Equal(t, models.MultipleChoice, content.ExerciseKind())
}

func TestContentService_GetNotFound(t *testing.T) {
	f := newContentFixture(t, false)
	f.repo.On("GetByID", mock.Anything, "nope").Return((*models.ExerciseContent)(nil), repositories.ErrNotFound)

	_, err := f.service.Get(context.Background(), "nope")
	assert.True(t, errors.Is(err, ErrContentNotFound))
	assert.True(t, IsNotFound(err))
}

func TestContentService_Generate(t *testing.T) {
	f := newContentFixture(t, false)
	f.repo.On("Create", mock.Anything, mock.MatchedBy(func(record *models.ExerciseContent) bool {
		return record.Source == models.SourceGenerated && record.Topic == "Volcanoes"
	})).Return(nil)

	resp, err := f.service.Generate(context.Background(), generator.Options{Kind: models.Hotspot, Topic: "Volcanoes", Difficulty: 3})
	require.NoError(t, err)
	assert.Equal(t, models.Hotspot, resp.Kind)
	assert.Equal(t, 3.0, resp.Content.Base().Difficulty)

	published := f.publisher.EventsOfType(events.EventContentGenerated)
	require.Len(t, published, 1)
	data := published[0].Data.(events.ContentGeneratedEvent)
	assert.Equal(t, []string{resp.ID}, data.ContentIDs)
}

func TestContentService_GenerateRejectsUngradedKind(t *testing.T) {
	f := newContentFixture(t, false)

	_, err := f.service.Generate(context.Background(), generator.Options{Kind: models.MindMap, Topic: "Cells"})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestContentService_GenerateBatch(t *testing.T) {
	f := newContentFixture(t, false)
	f.repo.On("CreateBatch", mock.Anything, mock.MatchedBy(func(records []*models.ExerciseContent) bool {
		return len(records) == generator.DefaultBatchSize
	})).Return(nil)

	resp, err := f.service.GenerateBatch(context.Background(), generator.Options{Kind: models.GapFill, Topic: "Capitals", Difficulty: 1})
	require.NoError(t, err)
	assert.Equal(t, generator.DefaultBatchSize, resp.Requested)
	assert.Equal(t, generator.DefaultBatchSize, resp.Generated)
	for i, item := range resp.Contents {
		assert.InDelta(t, 1+0.1*float64(i), item.Content.Base().Difficulty, 1e-9)
	}

	published := f.publisher.EventsOfType(events.EventContentGenerated)
	require.Len(t, published, 1)
	assert.Len(t, published[0].Data.(events.ContentGeneratedEvent).ContentIDs, generator.DefaultBatchSize)
}

func TestContentService_GenerateBatchInvalidOptions(t *testing.T) {
	f := newContentFixture(t, false)

	_, err := f.service.GenerateBatch(context.Background(), generator.Options{Kind: models.GapFill})
	assert.True(t, IsValidation(err))
	f.repo.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
}

func TestContentService_Delete(t *testing.T) {
	f := newContentFixture(t, true)
	f.repo.On("Delete", mock.Anything, "tf-1").Return(nil)
	f.repo.On("Delete", mock.Anything, "gone").Return(repositories.ErrNotFound)
	f.cache.On("Delete", mock.Anything, cache.ContentKey("tf-1")).Return(nil)

	require.NoError(t, f.service.Delete(context.Background(), "tf-1"))
	assert.True(t, IsNotFound(f.service.Delete(context.Background(), "gone")))
	f.cache.AssertExpectations(t)
}

func TestEncodeContent_UngradedKindRoundTrip(t *testing.T) {
	content := mustParse(t, crosswordJSON)

	record, err := toRecord(content, models.SourceStatic)
	require.NoError(t, err)

	parsed, err := validator.ParseContent(record.Payload)
	require.NoError(t, err)
	generic, ok := parsed.(*models.GenericContent)
	require.True(t, ok)
	assert.Equal(t, models.Crossword, generic.ExerciseKind())
	assert.Equal(t, "cw-1", generic.ID)
	assert.JSONEq(t, crosswordJSON, string(generic.Data))
}
