package validator

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	apperrors "github.com/SAP-F-2025/exercise-service/internal/errors"
	"github.com/SAP-F-2025/exercise-service/internal/models"
	"github.com/go-playground/validator/v10"
)

// ContentValidator turns untyped payloads into well-typed exercise content
// and enforces each kind's structural contract.
type ContentValidator struct {
	structValidator *validator.Validate
}

func newContentValidator(structValidator *validator.Validate) *ContentValidator {
	return &ContentValidator{structValidator: structValidator}
}

var (
	defaultOnce      sync.Once
	defaultValidator *Validator
)

func defaultContentValidator() *ContentValidator {
	defaultOnce.Do(func() {
		defaultValidator = New()
	})
	return defaultValidator.Content()
}

// ParseContent parses raw JSON with the process-wide validator.
func ParseContent(raw []byte) (models.Content, error) {
	return defaultContentValidator().ParseContent(raw)
}

// ParseContentValue parses an already decoded payload (map, struct, ...)
// with the process-wide validator.
func ParseContentValue(value interface{}) (models.Content, error) {
	return defaultContentValidator().ParseContentValue(value)
}

// ValidateContent checks a typed instance with the process-wide validator.
func ValidateContent(content models.Content) error {
	return defaultContentValidator().Validate(content)
}

type kindHeader struct {
	Kind *string `json:"kind"`
}

// ParseContent returns a typed content instance, or a *StructuralError naming
// every offending field. The "kind" tag selects the variant; a missing or
// unknown kind fails closed.
func (v *ContentValidator) ParseContent(raw []byte) (models.Content, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, apperrors.NewStructuralError("", *apperrors.NewValidationErrorWithRule("content", "is required", "required", nil))
	}

	var header kindHeader
	if err := json.Unmarshal(raw, &header); err != nil {
		return nil, apperrors.NewStructuralError("", *apperrors.NewValidationErrorWithRule("content", "must be a JSON object with a kind", "type", nil))
	}
	if header.Kind == nil || *header.Kind == "" {
		return nil, apperrors.NewStructuralError("", *apperrors.NewValidationErrorWithRule("kind", "is required", "required", nil))
	}

	kind := models.ExerciseKind(*header.Kind)
	if !kind.IsValid() {
		return nil, apperrors.NewStructuralError("", *apperrors.NewValidationErrorWithRule("kind", "must be a known exercise kind", "exercise_kind", *header.Kind))
	}

	content := models.NewContent(kind)
	if generic, ok := content.(*models.GenericContent); ok {
		// Ungraded kinds keep their payload as-is; only the shared fields are typed.
		if err := json.Unmarshal(raw, &generic.ContentBase); err != nil {
			return nil, apperrors.NewStructuralError(string(kind), decodeError(err))
		}
		generic.Data = append(json.RawMessage(nil), raw...)
	} else {
		decoder := json.NewDecoder(bytes.NewReader(raw))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(content); err != nil {
			return nil, apperrors.NewStructuralError(string(kind), decodeError(err))
		}
	}

	if err := v.Validate(content); err != nil {
		return nil, err
	}
	return content, nil
}

// ParseContentValue marshals value to JSON and parses it with ParseContent.
func (v *ContentValidator) ParseContentValue(value interface{}) (models.Content, error) {
	if value == nil {
		return nil, apperrors.NewStructuralError("", *apperrors.NewValidationErrorWithRule("content", "is required", "required", nil))
	}
	if content, ok := value.(models.Content); ok {
		if err := v.Validate(content); err != nil {
			return nil, err
		}
		return content, nil
	}

	contentBytes, err := json.Marshal(value)
	if err != nil {
		return nil, apperrors.NewStructuralError("", *apperrors.NewValidationErrorWithRule("content", fmt.Sprintf("cannot be encoded: %v", err), "type", nil))
	}
	return v.ParseContent(contentBytes)
}

// Validate checks struct tags and the cross-field rules of content's kind.
func (v *ContentValidator) Validate(content models.Content) error {
	if content == nil {
		return apperrors.NewStructuralError("", *apperrors.NewValidationErrorWithRule("content", "is required", "required", nil))
	}

	kind := content.ExerciseKind()
	var errs apperrors.ValidationErrors

	if err := v.structValidator.Struct(content); err != nil {
		var invalid *validator.InvalidValidationError
		if errors.As(err, &invalid) {
			return apperrors.NewStructuralError(string(kind), *apperrors.NewValidationErrorWithRule("content", "is required", "required", nil))
		}
		errs = append(errs, apperrors.ToValidationErrors(err)...)
	}

	if base := content.Base(); base.Kind != kind {
		errs = append(errs, *apperrors.NewValidationErrorWithRule("kind", fmt.Sprintf("does not match %s content", kind), "kind_mismatch", base.Kind))
	}

	switch c := content.(type) {
	case *models.MultipleChoiceContent:
		errs = append(errs, v.validateMultipleChoice(c)...)
	case *models.TrueFalseContent:
		// struct tags cover statement and ground truth
	case *models.DragDropContent:
		errs = append(errs, v.validateDragDrop(c)...)
	case *models.HotspotContent:
		errs = append(errs, v.validateHotspot(c)...)
	case *models.GapFillContent:
		errs = append(errs, v.validateGapFill(c)...)
	case *models.MatchContent:
		errs = append(errs, v.validateMatch(c)...)
	case *models.GenericContent:
		if c.Kind.IsGradable() {
			errs = append(errs, *apperrors.NewValidationErrorWithRule("kind", fmt.Sprintf("%s content must use its typed shape", c.Kind), "kind_mismatch", c.Kind))
		}
	}

	if len(errs) > 0 {
		return apperrors.NewStructuralError(string(kind), errs...)
	}
	return nil
}

// Private validation methods for each exercise kind

func (v *ContentValidator) validateMultipleChoice(c *models.MultipleChoiceContent) apperrors.ValidationErrors {
	var errs apperrors.ValidationErrors
	// Without a correct choice no selection can be graded, and an empty
	// multi-select answer would match the empty set.
	if len(c.Choices) > 0 && len(c.CorrectIDs()) == 0 {
		errs = append(errs, *apperrors.NewValidationErrorWithRule("choices", "must contain at least one correct choice", "correct_choice", len(c.Choices)))
	}
	errs = append(errs, uniqueValues("choices", "id", len(c.Choices), func(i int) string { return c.Choices[i].ID })...)
	return errs
}

func (v *ContentValidator) validateDragDrop(c *models.DragDropContent) apperrors.ValidationErrors {
	var errs apperrors.ValidationErrors

	errs = append(errs, uniqueValues("items", "id", len(c.Items), func(i int) string { return c.Items[i].ID })...)
	errs = append(errs, uniqueValues("zones", "id", len(c.Zones), func(i int) string { return c.Zones[i].ID })...)

	zoneIndex := make(map[string]int, len(c.Zones))
	for i, zone := range c.Zones {
		if _, exists := zoneIndex[zone.ID]; !exists {
			zoneIndex[zone.ID] = i
		}
	}

	targeting := make(map[string]int, len(c.Zones))
	for i, item := range c.Items {
		if item.TargetZone == "" {
			continue // reported by struct tags
		}
		if _, ok := zoneIndex[item.TargetZone]; !ok {
			errs = append(errs, *apperrors.NewValidationErrorWithRule(
				fmt.Sprintf("items[%d].target_zone", i),
				"references a zone that does not exist",
				"zone_ref",
				item.TargetZone,
			))
			continue
		}
		targeting[item.TargetZone]++
	}

	for i, zone := range c.Zones {
		if zone.Capacity != nil && targeting[zone.ID] > *zone.Capacity {
			errs = append(errs, *apperrors.NewValidationErrorWithRule(
				fmt.Sprintf("zones[%d].capacity", i),
				fmt.Sprintf("is smaller than the %d items targeting this zone", targeting[zone.ID]),
				"capacity",
				*zone.Capacity,
			))
		}
	}

	return errs
}

func (v *ContentValidator) validateHotspot(c *models.HotspotContent) apperrors.ValidationErrors {
	var errs apperrors.ValidationErrors

	if len(c.Targets) > 0 && len(c.CorrectTargets()) == 0 {
		errs = append(errs, *apperrors.NewValidationErrorWithRule("targets", "must contain at least one correct target", "correct_target", len(c.Targets)))
	}

	// Target ids are optional; when present they must be unique.
	seen := make(map[string]int, len(c.Targets))
	for i, target := range c.Targets {
		if target.ID == "" {
			continue
		}
		if first, dup := seen[target.ID]; dup {
			errs = append(errs, *apperrors.NewValidationErrorWithRule(
				fmt.Sprintf("targets[%d].id", i),
				fmt.Sprintf("duplicates targets[%d].id", first),
				"unique",
				target.ID,
			))
			continue
		}
		seen[target.ID] = i
	}

	return errs
}

func (v *ContentValidator) validateGapFill(c *models.GapFillContent) apperrors.ValidationErrors {
	var errs apperrors.ValidationErrors

	if strings.TrimSpace(c.Text) == "" {
		return errs // reported by struct tags
	}

	blanks := c.BlankCount()
	if blanks == 0 {
		errs = append(errs, *apperrors.NewValidationErrorWithRule("text", "must contain at least one blank marker ([blank] or ___)", "blank_marker", nil))
		return errs
	}
	if len(c.Answers) > 0 && blanks != len(c.Answers) {
		errs = append(errs, *apperrors.NewValidationErrorWithRule(
			"answers",
			fmt.Sprintf("has %d entries but text contains %d blanks", len(c.Answers), blanks),
			"blank_count",
			len(c.Answers),
		))
	}

	return errs
}

func (v *ContentValidator) validateMatch(c *models.MatchContent) apperrors.ValidationErrors {
	var errs apperrors.ValidationErrors
	errs = append(errs, uniqueValues("pairs", "left", len(c.Pairs), func(i int) string { return c.Pairs[i].Left })...)
	errs = append(errs, uniqueValues("pairs", "right", len(c.Pairs), func(i int) string { return c.Pairs[i].Right })...)
	return errs
}

// uniqueValues reports every element of list whose field value repeats an
// earlier one. Empty values are skipped; struct tags report those.
func uniqueValues(list, field string, n int, value func(int) string) apperrors.ValidationErrors {
	var errs apperrors.ValidationErrors
	seen := make(map[string]int, n)
	for i := 0; i < n; i++ {
		val := value(i)
		if val == "" {
			continue
		}
		if first, dup := seen[val]; dup {
			errs = append(errs, *apperrors.NewValidationErrorWithRule(
				fmt.Sprintf("%s[%d].%s", list, i, field),
				fmt.Sprintf("duplicates %s[%d].%s", list, first, field),
				"unique",
				val,
			))
			continue
		}
		seen[val] = i
	}
	return errs
}

// decodeError converts a JSON decoding failure into a field-level error.
func decodeError(err error) apperrors.ValidationError {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "content"
		}
		return *apperrors.NewValidationErrorWithRule(field, fmt.Sprintf("must be %s, got %s", typeErr.Type.String(), typeErr.Value), "type", nil)
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return *apperrors.NewValidationErrorWithRule("content", fmt.Sprintf("is not valid JSON (offset %d)", syntaxErr.Offset), "json", nil)
	}

	if name, ok := strings.CutPrefix(err.Error(), "json: unknown field "); ok {
		return *apperrors.NewValidationErrorWithRule(strings.Trim(name, `"`), "is not allowed for this kind", "unknown_field", nil)
	}

	return *apperrors.NewValidationErrorWithRule("content", err.Error(), "json", nil)
}
