package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/osse101/PullBot_Go/internal/domain"
	"github.com/osse101/PullBot_Go/internal/quota"
)

// Validator wraps the validator instance
type Validator struct {
	validate *validator.Validate
}

var (
	validate     *Validator
	validateOnce sync.Once
)

// Custom validation tags
const (
	TagPolicy    = "policy"
	TagCompareOp = "compare_op"
	TagDateKey   = "date_key"
)

// InitValidator initializes the global validator with the pull-domain tags
func InitValidator() {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation(TagPolicy, validatePolicy)
	_ = v.RegisterValidation(TagCompareOp, validateCompareOp)
	_ = v.RegisterValidation(TagDateKey, validateDateKey)

	validate = &Validator{validate: v}
}

// GetValidator returns the global validator instance
func GetValidator() *Validator {
	validateOnce.Do(func() {
		if validate == nil {
			InitValidator()
		}
	})
	return validate
}

// ValidateStruct validates a struct using tags
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.validate.Struct(s)
}

// FormatValidationError formats validation errors into a user-friendly map
// keyed by lowercased field name
func FormatValidationError(err error) map[string]string {
	if err == nil {
		return nil
	}

	errs := make(map[string]string)

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		errs["error"] = "Invalid request format"
		return errs
	}

	for _, e := range validationErrors {
		field := strings.ToLower(e.Field())
		switch e.Tag() {
		case "required":
			errs[field] = "This field is required"
		case TagPolicy:
			errs[field] = "Unknown pull policy"
		case TagCompareOp:
			errs[field] = "Must be one of gt, gte, lt, lte, eq"
		case TagDateKey:
			errs[field] = "Must be formatted YYYY-MM-DD"
		case "max":
			errs[field] = fmt.Sprintf("Must be at most %s", e.Param())
		case "min":
			errs[field] = fmt.Sprintf("Must be at least %s", e.Param())
		case "gt", "gte":
			errs[field] = fmt.Sprintf("Must be greater than %s", e.Param())
		case "printascii":
			errs[field] = "Contains invalid characters"
		default:
			errs[field] = "Invalid value"
		}
	}

	return errs
}

// validPolicies are the consume policies accepted from callers
var validPolicies = map[string]bool{
	quota.PolicyNameBest:           true,
	quota.PolicyNameNamed:          true,
	quota.PolicyNameEventThenTimed: true,
	quota.PolicyNameTimed:          true,
	quota.PolicyNameEvent:          true,
}

// Empty is allowed; it means best-available
func validatePolicy(fl validator.FieldLevel) bool {
	p := strings.ToLower(strings.TrimSpace(fl.Field().String()))
	return p == "" || validPolicies[p]
}

func validateCompareOp(fl validator.FieldLevel) bool {
	op := domain.CompareOp(fl.Field().String())
	if op == "" {
		return true
	}
	_, err := op.Compare(0, 0)
	return err == nil
}

func validateDateKey(fl validator.FieldLevel) bool {
	raw := fl.Field().String()
	if raw == "" {
		return true
	}
	_, err := time.Parse(time.DateOnly, raw)
	return err == nil
}
