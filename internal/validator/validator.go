package validator

import (
	"reflect"
	"regexp"
	"strings"

	apperrors "github.com/SAP-F-2025/exercise-service/internal/errors"
	"github.com/SAP-F-2025/exercise-service/internal/models"
	"github.com/go-playground/validator/v10"
)

// ValidationErrors is the field error list returned by Validate.
type ValidationErrors = apperrors.ValidationErrors

// Validator is the main validator instance that combines all validation types
type Validator struct {
	structValidator  *validator.Validate
	contentValidator *ContentValidator
}

// New creates a new centralized validator instance
func New() *Validator {
	structValidator := validator.New()

	// Register all custom validators once
	registerCustomValidators(structValidator)

	return &Validator{
		structValidator:  structValidator,
		contentValidator: newContentValidator(structValidator),
	}
}

// ValidateStruct validates struct tags only
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

// Validate performs struct validation and converts the result to our
// ValidationErrors type.
func (v *Validator) Validate(s interface{}) error {
	if err := v.ValidateStruct(s); err != nil {
		if errs := apperrors.ToValidationErrors(err); len(errs) > 0 {
			return errs
		}
		return err
	}
	return nil
}

// Content returns the exercise content validator
func (v *Validator) Content() *ContentValidator {
	return v.contentValidator
}

// registerCustomValidators registers all custom validation functions
func registerCustomValidators(validate *validator.Validate) {
	// Exercise kind validation
	validate.RegisterValidation("exercise_kind", validateExerciseKind)
	validate.RegisterValidation("gradable_kind", validateGradableKind)

	// Content language validation
	validate.RegisterValidation("language_code", validateLanguageCode)

	// Custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Custom validation functions
func validateExerciseKind(fl validator.FieldLevel) bool {
	return models.ExerciseKind(fl.Field().String()).IsValid()
}

func validateGradableKind(fl validator.FieldLevel) bool {
	return models.ExerciseKind(fl.Field().String()).IsGradable()
}

var languageCodePattern = regexp.MustCompile(`^[a-z]{2}(-[A-Z]{2})?$`)

func validateLanguageCode(fl validator.FieldLevel) bool {
	return languageCodePattern.MatchString(fl.Field().String())
}
