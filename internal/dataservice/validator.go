// Package dataservice implements resource.Service for the entity kinds: an
// HTTP client for the REST backend, an in-process service over a db
// repository, and the shared payload validator.
package dataservice

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/ayushraiyani0003/HRCentral-sub004/internal/entities"
	"github.com/ayushraiyani0003/HRCentral-sub004/internal/resource"
)

var dialCodePattern = regexp.MustCompile(`^\+[1-9][0-9]{0,3}$`)

// RegisterCustomValidators registers the tags used by entity rules
func RegisterCustomValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("hhmm", validateClock); err != nil {
		return err
	}
	return v.RegisterValidation("dial_code", validateDialCode)
}

func validateClock(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if len(s) != 5 {
		return false
	}
	_, err := time.Parse("15:04", s)
	return err == nil
}

func validateDialCode(fl validator.FieldLevel) bool {
	return dialCodePattern.MatchString(fl.Field().String())
}

// Validator checks payloads of one kind against its rules
type Validator struct {
	kind     *entities.Kind
	validate *validator.Validate
}

func NewValidator(kind *entities.Kind) (*Validator, error) {
	v := validator.New()
	if err := RegisterCustomValidators(v); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}
	return &Validator{kind: kind, validate: v}, nil
}

// Validate reports every rule the payload breaks. String values are
// trimmed first so blank input counts as missing.
func (v *Validator) Validate(payload resource.Record) resource.ValidationResult {
	var errs []string

	for _, rule := range v.kind.Rules {
		value := payload[rule.Field]
		if s, ok := value.(string); ok {
			value = strings.TrimSpace(s)
		}
		if value == nil || value == "" {
			if isRequired(rule.Tag) {
				errs = append(errs, rule.Label+" is required")
			}
			continue
		}

		if rule.Number {
			d, err := decimal.NewFromString(resource.StringOf(value))
			if err != nil {
				errs = append(errs, rule.Label+" must be a number")
				continue
			}
			value = d.InexactFloat64()
		}

		tag := checkTag(rule.Tag)
		if tag == "" {
			continue
		}
		if err := v.validate.Var(value, tag); err != nil {
			errs = append(errs, message(rule, err))
		}
	}

	if len(errs) == 0 && v.kind.Check != nil {
		errs = append(errs, v.kind.Check(payload)...)
	}

	return resource.ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}

func isRequired(tag string) bool {
	for _, part := range strings.Split(tag, ",") {
		if part == "required" {
			return true
		}
	}
	return false
}

// checkTag drops the presence tags, which Validate handles itself.
func checkTag(tag string) string {
	var keep []string
	for _, part := range strings.Split(tag, ",") {
		if part == "required" || part == "omitempty" || part == "" {
			continue
		}
		keep = append(keep, part)
	}
	return strings.Join(keep, ",")
}

func message(rule entities.Rule, err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return rule.Label + " is invalid"
	}
	fe := fieldErrs[0]
	switch fe.Tag() {
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", rule.Label, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", rule.Label, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", rule.Label, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", rule.Label, fe.Param())
	case "hhmm":
		return rule.Label + " must be a time in HH:MM format"
	case "iso3166_1_alpha2":
		return rule.Label + " must be a two-letter ISO 3166 country code"
	case "dial_code":
		return rule.Label + " must look like +91"
	case "bic":
		return rule.Label + " must be an 8 or 11 character SWIFT/BIC code"
	default:
		return rule.Label + " is invalid"
	}
}
