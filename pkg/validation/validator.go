package validation

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	// validate is a singleton validator instance
	validate *validator.Validate

	// MaxIDLength bounds node identifiers in scenario documents.
	MaxIDLength = 64

	idPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.:-]*$`)
)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	// Report yaml names rather than Go field names.
	validate.RegisterTagNameFunc(yamlName)
	_ = validate.RegisterValidation("nodeid", func(fl validator.FieldLevel) bool {
		return ValidateNodeID(fl.Field().String()) == nil
	})
}

// Struct validates s against its `validate` tags and returns every failure
// joined into one error.
func Struct(s any) error {
	if s == nil {
		return errors.New("value cannot be nil")
	}
	if err := validate.Struct(s); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// ValidateNodeID checks a node identifier.
func ValidateNodeID(id string) error {
	if id == "" {
		return errors.New("node id cannot be empty")
	}
	if len(id) > MaxIDLength {
		return fmt.Errorf("node id '%s' exceeds maximum length of %d characters", id, MaxIDLength)
	}
	if !idPattern.MatchString(id) {
		return fmt.Errorf("node id '%s' contains invalid characters", id)
	}
	return nil
}

// formatValidationError converts validator errors to a more user-friendly format
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	errs := make([]error, 0, len(validationErrs))
	for _, e := range validationErrs {
		field := e.Namespace()
		param := e.Param()

		switch e.Tag() {
		case "required":
			errs = append(errs, fmt.Errorf("%s: field is required", field))
		case "min", "gte":
			errs = append(errs, fmt.Errorf("%s: must be at least %s", field, param))
		case "max", "lte":
			errs = append(errs, fmt.Errorf("%s: must not exceed %s", field, param))
		case "gt":
			errs = append(errs, fmt.Errorf("%s: must be greater than %s", field, param))
		case "lt":
			errs = append(errs, fmt.Errorf("%s: must be less than %s", field, param))
		case "oneof":
			errs = append(errs, fmt.Errorf("%s: must be one of [%s], got %v", field, param, e.Value()))
		case "nodeid":
			errs = append(errs, fmt.Errorf("%s: invalid node id %q", field, e.Value()))
		default:
			errs = append(errs, fmt.Errorf("%s: validation failed (%s)", field, e.Tag()))
		}
	}
	return errors.Join(errs...)
}
