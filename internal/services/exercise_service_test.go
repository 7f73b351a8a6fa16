package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/exercise-service/internal/events"
	"github.com/SAP-F-2025/exercise-service/internal/models"
	"github.com/SAP-F-2025/exercise-service/internal/scoring"
	"github.com/SAP-F-2025/exercise-service/internal/validator"
)

func newExerciseService(t *testing.T, contents ContentLoader) (ExerciseService, *events.MockEventPublisher) {
	t.Helper()
	publisher := events.NewMockEventPublisher(discardLogger())
	return NewExerciseService(firstPick(), contents, publisher, validator.New(), discardLogger()), publisher
}

func answerRequest(content, answer string) *AnswerRequest {
	return &AnswerRequest{
		ContentRef: ContentRef{Content: json.RawMessage(content)},
		Answer:     json.RawMessage(answer),
	}
}

func TestExerciseService_Validate(t *testing.T) {
	svc, publisher := newExerciseService(t, nil)

	result, err := svc.Validate(context.Background(), answerRequest(mcqJSON, `"a"`))
	require.NoError(t, err)
	assert.True(t, result.Correct)
	assert.Equal(t, 1, result.Score)

	published := publisher.EventsOfType(events.EventAnswerValidated)
	require.Len(t, published, 1)
	data := published[0].Data.(events.AnswerValidatedEvent)
	assert.Equal(t, "mcq-1", data.ContentID)
	assert.Equal(t, models.MultipleChoice, data.Kind)
	assert.Equal(t, 100.0, data.Percentage)
}

func TestExerciseService_ValidateByContentID(t *testing.T) {
	svc, _ := newExerciseService(t, staticContents(mustParse(t, trueFalseJSON)))

	result, err := svc.Validate(context.Background(), &AnswerRequest{
		ContentRef: ContentRef{ContentID: "tf-1"},
		Answer:     json.RawMessage(`false`),
	})
	require.NoError(t, err)
	assert.False(t, result.Correct)
	assert.Equal(t, true, result.CorrectAnswer)

	_, err = svc.Validate(context.Background(), &AnswerRequest{
		ContentRef: ContentRef{ContentID: "missing"},
		Answer:     json.RawMessage(`true`),
	})
	assert.True(t, IsNotFound(err))
}

func TestExerciseService_ValidateErrors(t *testing.T) {
	tests := []struct {
		name    string
		req     *AnswerRequest
		check   func(error) bool
		rejects bool
	}{
		{"malformed answer", answerRequest(trueFalseJSON, `"yes"`), IsMalformedAnswer, true},
		{"missing answer", answerRequest(trueFalseJSON, ``), IsMalformedAnswer, true},
		{"ungraded kind", answerRequest(crosswordJSON, `{"1":"cat"}`), IsUnsupportedKind, true},
		{"invalid content", answerRequest(`{"kind":"true_false"}`, `true`), IsValidation, false},
		{"unknown kind", answerRequest(`{"kind":"karaoke"}`, `true`), IsValidation, false},
		{"no content", &AnswerRequest{Answer: json.RawMessage(`true`)}, IsValidation, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, publisher := newExerciseService(t, nil)

			result, err := svc.Validate(context.Background(), tt.req)
			assert.Nil(t, result)
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error %v", err)

			assert.Empty(t, publisher.EventsOfType(events.EventAnswerValidated))
			if tt.rejects {
				assert.Len(t, publisher.EventsOfType(events.EventAnswerRejected), 1)
			} else {
				assert.Empty(t, publisher.GetPublishedEvents())
			}
		})
	}
}

func TestExerciseService_Score(t *testing.T) {
	svc, _ := newExerciseService(t, nil)

	resp, err := svc.Score(context.Background(), answerRequest(dragDropJSON, `{"mammal":["i1"],"bird":["i3","i2"]}`))
	require.NoError(t, err)
	assert.InDelta(t, 200.0/3, resp.Score, 1e-9)
	assert.Equal(t, 2, resp.Result.Score)
	assert.Equal(t, 3, resp.Result.MaxScore)
	require.NotNil(t, resp.Result.Feedback)
	assert.Contains(t, *resp.Result.Feedback, "2 of 3 items placed correctly")
}

func TestExerciseService_Feedback(t *testing.T) {
	svc, _ := newExerciseService(t, nil)
	ctx := context.Background()

	resp, err := svc.Feedback(ctx, &FeedbackRequest{
		ContentRef: ContentRef{Content: json.RawMessage(trueFalseJSON)},
		Answer:     json.RawMessage(`true`),
		Correct:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, scoring.PositiveMessages()[0], resp.Feedback)

	resp, err = svc.Feedback(ctx, &FeedbackRequest{
		ContentRef: ContentRef{Content: json.RawMessage(trueFalseJSON)},
		Answer:     json.RawMessage(`false`),
	})
	require.NoError(t, err)
	assert.Equal(t, scoring.EncouragingMessages()[0]+" The statement is true", resp.Feedback)

	_, err = svc.Feedback(ctx, &FeedbackRequest{
		ContentRef: ContentRef{Content: json.RawMessage(crosswordJSON)},
		Answer:     json.RawMessage(`{}`),
	})
	assert.True(t, IsUnsupportedKind(err))
}

func TestExerciseService_Hint(t *testing.T) {
	svc, _ := newExerciseService(t, nil)
	ctx := context.Background()
	ref := ContentRef{Content: json.RawMessage(mcqJSON)}

	resp, err := svc.Hint(ctx, &HintRequest{ContentRef: ref, AttemptNumber: 1})
	require.NoError(t, err)
	assert.Nil(t, resp.Hint)

	resp, err = svc.Hint(ctx, &HintRequest{ContentRef: ref, AttemptNumber: 2})
	require.NoError(t, err)
	require.NotNil(t, resp.Hint)
	assert.NotEmpty(t, *resp.Hint)

	resp, err = svc.Hint(ctx, &HintRequest{ContentRef: ContentRef{Content: json.RawMessage(crosswordJSON)}, AttemptNumber: 3})
	require.NoError(t, err)
	require.NotNil(t, resp.Hint)

	_, err = svc.Hint(ctx, &HintRequest{ContentRef: ref, AttemptNumber: -1})
	assert.True(t, IsValidation(err))
}

func TestExerciseService_AdaptDifficulty(t *testing.T) {
	svc, _ := newExerciseService(t, nil)

	resp, err := svc.AdaptDifficulty(context.Background(), &DifficultyRequest{CurrentDifficulty: 0.5, Performance: 0.9})
	require.NoError(t, err)
	assert.Equal(t, 0.6, resp.Difficulty)

	_, err = svc.AdaptDifficulty(context.Background(), &DifficultyRequest{CurrentDifficulty: 0.5, Performance: 1.5})
	assert.True(t, IsValidation(err))
}
