package scoring

import (
	"fmt"
	"math"
	"strings"

	apperrors "github.com/SAP-F-2025/exercise-service/internal/errors"
	"github.com/SAP-F-2025/exercise-service/internal/models"
)

// ===== MULTIPLE CHOICE =====

func validateMultipleChoice(c *models.MultipleChoiceContent, answer interface{}) (*models.ValidationResult, error) {
	correctIDs := c.CorrectIDs()
	correctSet := toSet(correctIDs)

	if !c.MultipleAnswers {
		var selected string
		if err := decodeAnswer(c.Kind, "a single choice id", answer, &selected); err != nil {
			return nil, err
		}

		result := &models.ValidationResult{MaxScore: 1}
		if len(correctIDs) > 0 {
			result.CorrectAnswer = correctIDs[0]
		}
		if correctSet[selected] {
			result.Correct = true
			result.Score = 1
			return result, nil
		}

		result.Feedback = missFeedback(c.ContentBase, fmt.Sprintf("The correct answer is: %s", choiceTexts(c, correctIDs)))
		return result, nil
	}

	var selected models.MultipleChoiceAnswer
	if err := decodeAnswer(c.Kind, "a list of choice ids", answer, &selected); err != nil {
		return nil, err
	}

	selectedSet := toSet(selected)
	hits := 0
	for id := range selectedSet {
		if correctSet[id] {
			hits++
		}
	}

	result := &models.ValidationResult{
		Score:         hits,
		MaxScore:      max(len(correctIDs), 1),
		CorrectAnswer: correctIDs,
	}
	// Exact set equality: no extras, no omissions.
	result.Correct = hits == len(correctSet) && len(selectedSet) == len(correctSet)
	if !result.Correct {
		msg := fmt.Sprintf("You selected %d of %d correct answers", hits, len(correctIDs))
		if extra := len(selectedSet) - hits; extra > 0 {
			msg += fmt.Sprintf(" and %d incorrect", extra)
		}
		result.Feedback = missFeedback(c.ContentBase, msg)
	}
	return result, nil
}

func choiceTexts(c *models.MultipleChoiceContent, ids []string) string {
	byID := make(map[string]string, len(c.Choices))
	for _, choice := range c.Choices {
		byID[choice.ID] = choice.Text
	}
	texts := make([]string, 0, len(ids))
	for _, id := range ids {
		texts = append(texts, byID[id])
	}
	return strings.Join(texts, ", ")
}

// ===== TRUE / FALSE =====

func validateTrueFalse(c *models.TrueFalseContent, answer interface{}) (*models.ValidationResult, error) {
	var submitted bool
	if err := decodeAnswer(c.Kind, "a boolean", answer, &submitted); err != nil {
		return nil, err
	}

	truth := c.Truth()
	result := &models.ValidationResult{MaxScore: 1, CorrectAnswer: truth}
	if submitted == truth {
		result.Correct = true
		result.Score = 1
		return result, nil
	}

	result.Feedback = missFeedback(c.ContentBase, fmt.Sprintf("The statement is %t", truth))
	return result, nil
}

// ===== DRAG AND DROP =====

func validateDragDrop(c *models.DragDropContent, answer interface{}) (*models.ValidationResult, error) {
	var placed models.DragDropAnswer
	if err := decodeAnswer(c.Kind, "an object mapping zone ids to item ids", answer, &placed); err != nil {
		return nil, err
	}

	placement := make(map[string]string)
	for zoneID, itemIDs := range placed {
		for _, itemID := range itemIDs {
			if other, exists := placement[itemID]; exists && other != zoneID {
				return nil, apperrors.NewMalformedAnswerError(c.Kind.String(), "each item in at most one zone",
					fmt.Sprintf("item %q placed in zones %q and %q", itemID, other, zoneID), nil)
			}
			placement[itemID] = zoneID
		}
	}

	solution := make(models.DragDropAnswer, len(c.Zones))
	score := 0
	for _, item := range c.Items {
		solution[item.TargetZone] = append(solution[item.TargetZone], item.ID)
		if placement[item.ID] == item.TargetZone {
			score++
		}
	}

	result := &models.ValidationResult{
		Correct:       score == len(c.Items),
		Score:         score,
		MaxScore:      len(c.Items),
		CorrectAnswer: solution,
	}
	if !result.Correct {
		result.Feedback = missFeedback(c.ContentBase, fmt.Sprintf("%d of %d items placed correctly", score, len(c.Items)))
	}
	return result, nil
}

// ===== HOTSPOT =====

type hotspotClick struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

func validateHotspot(c *models.HotspotContent, answer interface{}) (*models.ValidationResult, error) {
	const expected = "a list of {x, y} clicks"

	var raw []hotspotClick
	if err := decodeAnswer(c.Kind, expected, answer, &raw); err != nil {
		return nil, err
	}

	clicks := make(models.HotspotAnswer, 0, len(raw))
	for i, click := range raw {
		if click.X == nil || click.Y == nil {
			return nil, apperrors.NewMalformedAnswerError(c.Kind.String(), expected, fmt.Sprintf("click %d is missing a coordinate", i), nil)
		}
		clicks = append(clicks, models.HotspotClick{X: *click.X, Y: *click.Y})
	}

	targets := c.CorrectTargets()
	centers := make(models.HotspotAnswer, 0, len(targets))
	hits := 0
	for _, target := range targets {
		centers = append(centers, models.HotspotClick{X: target.X, Y: target.Y})
		for _, click := range clicks {
			if math.Hypot(click.X-target.X, click.Y-target.Y) <= target.Radius {
				hits++
				break
			}
		}
	}

	result := &models.ValidationResult{
		Correct:       hits == len(targets) && len(clicks) == len(targets),
		Score:         hits,
		MaxScore:      len(targets),
		CorrectAnswer: centers,
	}
	if !result.Correct {
		msg := fmt.Sprintf("You found %d of %d targets", hits, len(targets))
		if len(clicks) != len(targets) {
			msg += fmt.Sprintf(" using %d clicks", len(clicks))
		}
		result.Feedback = missFeedback(c.ContentBase, msg)
	}
	return result, nil
}

// ===== GAP FILL =====

func validateGapFill(c *models.GapFillContent, answer interface{}) (*models.ValidationResult, error) {
	var filled models.GapFillAnswer
	if err := decodeAnswer(c.Kind, "a list of strings, one per blank", answer, &filled); err != nil {
		return nil, err
	}
	if len(filled) != len(c.Answers) {
		return nil, apperrors.NewMalformedAnswerError(c.Kind.String(), "a list of strings, one per blank",
			fmt.Sprintf("got %d entries for %d blanks", len(filled), len(c.Answers)), nil)
	}

	solution := make([]string, 0, len(c.Answers))
	score := 0
	for i, accepted := range c.Answers {
		if len(accepted) > 0 {
			solution = append(solution, accepted[0])
		}
		if acceptsBlank(accepted, filled[i], c.CaseSensitive) {
			score++
		}
	}

	result := &models.ValidationResult{
		Correct:       score == len(c.Answers),
		Score:         score,
		MaxScore:      len(c.Answers),
		CorrectAnswer: solution,
	}
	if !result.Correct {
		result.Feedback = missFeedback(c.ContentBase, fmt.Sprintf("%d of %d blanks filled correctly", score, len(c.Answers)))
	}
	return result, nil
}

func acceptsBlank(accepted []string, submitted string, caseSensitive bool) bool {
	submitted = strings.TrimSpace(submitted)
	for _, candidate := range accepted {
		candidate = strings.TrimSpace(candidate)
		if caseSensitive {
			if candidate == submitted {
				return true
			}
		} else if strings.EqualFold(candidate, submitted) {
			return true
		}
	}
	return false
}

// ===== MATCH =====

func validateMatch(c *models.MatchContent, answer interface{}) (*models.ValidationResult, error) {
	var mapping models.MatchAnswer
	if err := decodeAnswer(c.Kind, "an object mapping left items to right items", answer, &mapping); err != nil {
		return nil, err
	}

	solution := make(models.MatchAnswer, len(c.Pairs))
	score := 0
	for _, pair := range c.Pairs {
		solution[pair.Left] = pair.Right
		if right, ok := mapping[pair.Left]; ok && right == pair.Right {
			score++
		}
	}

	result := &models.ValidationResult{
		Correct:       score == len(c.Pairs),
		Score:         score,
		MaxScore:      len(c.Pairs),
		CorrectAnswer: solution,
	}
	if !result.Correct {
		result.Feedback = missFeedback(c.ContentBase, fmt.Sprintf("%d of %d pairs matched correctly", score, len(c.Pairs)))
	}
	return result, nil
}

// ===== HELPERS =====

// missFeedback builds the kind-specific feedback for a wrong answer and
// appends the content's explanation when it has one.
func missFeedback(base models.ContentBase, msg string) *string {
	if base.Explanation != "" {
		msg = msg + ". " + base.Explanation
	}
	return &msg
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
