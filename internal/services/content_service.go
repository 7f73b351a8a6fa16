package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/SAP-F-2025/exercise-service/internal/cache"
	"github.com/SAP-F-2025/exercise-service/internal/events"
	"github.com/SAP-F-2025/exercise-service/internal/generator"
	"github.com/SAP-F-2025/exercise-service/internal/models"
	"github.com/SAP-F-2025/exercise-service/internal/repositories"
	"github.com/SAP-F-2025/exercise-service/internal/validator"
)

const DefaultContentCacheTTL = 10 * time.Minute

// ContentResponse is stored content together with its typed instance.
type ContentResponse struct {
	ID        string               `json:"id"`
	Kind      models.ExerciseKind  `json:"kind"`
	Source    models.ContentSource `json:"source"`
	CreatedAt time.Time            `json:"created_at"`
	Content   models.Content       `json:"content"`
}

type BatchResponse struct {
	Requested int                `json:"requested"`
	Generated int                `json:"generated"`
	Contents  []*ContentResponse `json:"contents"`
}

type ContentService interface {
	ContentLoader

	Create(ctx context.Context, raw json.RawMessage) (*ContentResponse, error)
	Get(ctx context.Context, id string) (*ContentResponse, error)
	List(ctx context.Context, filters repositories.ContentFilters) ([]*ContentResponse, int64, error)
	Delete(ctx context.Context, id string) error

	Generate(ctx context.Context, opts generator.Options) (*ContentResponse, error)
	GenerateBatch(ctx context.Context, opts generator.Options) (*BatchResponse, error)
}

type contentService struct {
	repo      repositories.ContentRepository
	cache     cache.CacheService
	generator *generator.Generator
	publisher events.EventPublisher
	validator *validator.Validator
	logger    *ServiceLogger
	cacheTTL  time.Duration
}

// ContentServiceConfig holds the collaborators of the content service.
// Cache and Publisher are optional.
type ContentServiceConfig struct {
	Repository repositories.ContentRepository
	Cache      cache.CacheService
	Generator  *generator.Generator
	Publisher  events.EventPublisher
	Validator  *validator.Validator
	Logger     *slog.Logger
	CacheTTL   time.Duration
}

func NewContentService(cfg ContentServiceConfig) ContentService {
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = DefaultContentCacheTTL
	}
	return &contentService{
		repo:      cfg.Repository,
		cache:     cfg.Cache,
		generator: cfg.Generator,
		publisher: cfg.Publisher,
		validator: cfg.Validator,
		logger:    NewServiceLogger(cfg.Logger, LogConfig{Service: "exercise-service", Component: "content"}),
		cacheTTL:  ttl,
	}
}

func (s *contentService) Create(ctx context.Context, raw json.RawMessage) (resp *ContentResponse, err error) {
	op := s.logger.WithOperation(ctx, "create_content", "")
	defer func() {
		id := ""
		if resp != nil {
			id = resp.ID
		}
		op.LogResult(id, "content", err)
	}()

	content, err := s.validator.Content().ParseContent(raw)
	if err != nil {
		return nil, err
	}
	if content.Base().ID == "" {
		content.Base().ID = uuid.NewString()
	}

	record, err := toRecord(content, models.SourceStatic)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to store content: %w", err)
	}

	s.cacheRecord(ctx, record)
	return &ContentResponse{
		ID:        record.ID,
		Kind:      record.Kind,
		Source:    record.Source,
		CreatedAt: record.CreatedAt,
		Content:   content,
	}, nil
}

func (s *contentService) Get(ctx context.Context, id string) (*ContentResponse, error) {
	record, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.fromRecord(record)
}

// GetContent returns the typed instance of stored content.
func (s *contentService) GetContent(ctx context.Context, id string) (models.Content, error) {
	resp, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return resp.Content, nil
}

func (s *contentService) List(ctx context.Context, filters repositories.ContentFilters) ([]*ContentResponse, int64, error) {
	records, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list contents: %w", err)
	}

	responses := make([]*ContentResponse, 0, len(records))
	for _, record := range records {
		resp, err := s.fromRecord(record)
		if err != nil {
			// stored payloads that no longer parse are skipped, not fatal
			s.logger.Warn(ctx, "skipping unreadable content", "content_id", record.ID, "error", err)
			continue
		}
		responses = append(responses, resp)
	}
	return responses, total, nil
}

func (s *contentService) Delete(ctx context.Context, id string) (err error) {
	op := s.logger.WithOperation(ctx, "delete_content", "")
	defer func() { op.LogResult(id, "content", err) }()

	if err := s.repo.Delete(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return fmt.Errorf("%w: %s", ErrContentNotFound, id)
		}
		return fmt.Errorf("failed to delete content: %w", err)
	}
	if s.cache != nil {
		if err := s.cache.Delete(ctx, cache.ContentKey(id)); err != nil {
			s.logger.Warn(ctx, "failed to evict content from cache", "content_id", id, "error", err)
		}
	}
	return nil
}

func (s *contentService) Generate(ctx context.Context, opts generator.Options) (resp *ContentResponse, err error) {
	op := s.logger.WithOperation(ctx, "generate_content", "")
	defer func() {
		id := ""
		if resp != nil {
			id = resp.ID
		}
		op.LogResult(id, string(opts.Kind), err)
	}()

	content, err := s.generator.GenerateOne(ctx, opts)
	if err != nil {
		return nil, err
	}

	record, err := toRecord(content, models.SourceGenerated)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to store generated content: %w", err)
	}
	s.cacheRecord(ctx, record)

	s.publish(ctx, events.NewContentGeneratedEvent(events.ContentGeneratedEvent{
		ContentIDs: []string{record.ID},
		Kind:       record.Kind,
		Topic:      record.Topic,
		Requested:  1,
		Generated:  1,
	}))

	return &ContentResponse{
		ID:        record.ID,
		Kind:      record.Kind,
		Source:    record.Source,
		CreatedAt: record.CreatedAt,
		Content:   content,
	}, nil
}

// GenerateBatch stores whatever the generator produced. An empty batch is
// not an error.
func (s *contentService) GenerateBatch(ctx context.Context, opts generator.Options) (resp *BatchResponse, err error) {
	op := s.logger.WithOperation(ctx, "generate_content_batch", "")
	defer func() { op.LogResult("", string(opts.Kind), err) }()

	// The generator only logs invalid options per item; surface them here.
	if _, err := s.generator.RenderPrompt(opts); err != nil {
		return nil, err
	}

	requested := opts.Count
	if requested <= 0 {
		requested = s.generator.BatchSize()
	}

	contents := s.generator.GenerateBatch(ctx, opts)
	records := make([]*models.ExerciseContent, 0, len(contents))
	for _, content := range contents {
		record, err := toRecord(content, models.SourceGenerated)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := s.repo.CreateBatch(ctx, records); err != nil {
		return nil, fmt.Errorf("failed to store generated contents: %w", err)
	}

	resp = &BatchResponse{
		Requested: requested,
		Generated: len(records),
		Contents:  make([]*ContentResponse, 0, len(records)),
	}
	ids := make([]string, 0, len(records))
	for i, record := range records {
		s.cacheRecord(ctx, record)
		ids = append(ids, record.ID)
		resp.Contents = append(resp.Contents, &ContentResponse{
			ID:        record.ID,
			Kind:      record.Kind,
			Source:    record.Source,
			CreatedAt: record.CreatedAt,
			Content:   contents[i],
		})
	}

	if len(ids) > 0 {
		s.publish(ctx, events.NewContentGeneratedEvent(events.ContentGeneratedEvent{
			ContentIDs: ids,
			Kind:       opts.Kind,
			Topic:      opts.Topic,
			Requested:  requested,
			Generated:  len(ids),
		}))
	}
	return resp, nil
}

// load reads through the cache. Cache failures degrade to the repository.
func (s *contentService) load(ctx context.Context, id string) (*models.ExerciseContent, error) {
	if s.cache != nil {
		var cached models.ExerciseContent
		err := s.cache.Get(ctx, cache.ContentKey(id), &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn(ctx, "content cache unavailable", "content_id", id, "error", err)
		}
	}

	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, fmt.Errorf("%w: %s", ErrContentNotFound, id)
		}
		return nil, fmt.Errorf("failed to load content: %w", err)
	}
	s.cacheRecord(ctx, record)
	return record, nil
}

func (s *contentService) cacheRecord(ctx context.Context, record *models.ExerciseContent) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, cache.ContentKey(record.ID), record, s.cacheTTL); err != nil {
		s.logger.Warn(ctx, "failed to cache content", "content_id", record.ID, "error", err)
	}
}

func (s *contentService) publish(ctx context.Context, event *events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn(ctx, "failed to publish content event", "event_type", event.Type, "error", err)
	}
}

func (s *contentService) fromRecord(record *models.ExerciseContent) (*ContentResponse, error) {
	content, err := s.validator.Content().ParseContent(record.Payload)
	if err != nil {
		return nil, fmt.Errorf("stored content %s is unreadable: %w", record.ID, err)
	}
	return &ContentResponse{
		ID:        record.ID,
		Kind:      record.Kind,
		Source:    record.Source,
		CreatedAt: record.CreatedAt,
		Content:   content,
	}, nil
}

func toRecord(content models.Content, source models.ContentSource) (*models.ExerciseContent, error) {
	payload, err := encodeContent(content)
	if err != nil {
		return nil, fmt.Errorf("failed to encode content: %w", err)
	}
	base := content.Base()
	return &models.ExerciseContent{
		ID:         base.ID,
		Kind:       content.ExerciseKind(),
		Title:      base.Title,
		Topic:      base.Topic,
		Language:   base.Language,
		Difficulty: base.Difficulty,
		Source:     source,
		Payload:    payload,
	}, nil
}

// encodeContent stores ungraded kinds as their original payload so that the
// stored form parses back to the same instance.
func encodeContent(content models.Content) ([]byte, error) {
	generic, ok := content.(*models.GenericContent)
	if !ok || len(generic.Data) == 0 {
		return json.Marshal(content)
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(generic.Data, &fields); err != nil {
		return nil, err
	}
	fields["id"] = generic.ID
	return json.Marshal(fields)
}
