// Package inputval validates decoded API request bodies using
// waffle/pantry/validate.
//
// Define an input struct with validate tags on its string fields and call
// Validate:
//
//	type loadInput struct {
//	    UserID string `json:"user_id" validate:"required,max=128" label:"User ID"`
//	    Date   string `json:"date" validate:"required,isodate" label:"Date"`
//	}
//
//	if res := inputval.Validate(in); res.HasErrors() {
//	    jsonutil.ValidationError(w, r, res.Fields())
//	    return
//	}
//
// Numeric check-in bounds live in CheckIn, since they are pointer fields.
package inputval

import (
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/dalemusser/stratawell/internal/app/analytics"
	"github.com/dalemusser/stratawell/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/validate"
)

// Result holds validation results with user-friendly messages.
type Result struct {
	Errors []FieldError
}

// FieldError is a validation error for a single field. Field is the JSON name.
type FieldError struct {
	Field   string
	Label   string
	Message string
}

// HasErrors returns true if there are any validation errors.
func (r *Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// First returns the first error message, or empty string if no errors.
func (r *Result) First() string {
	if len(r.Errors) > 0 {
		return r.Errors[0].Message
	}
	return ""
}

// Fields maps each failing field to its first message.
func (r *Result) Fields() map[string]string {
	out := make(map[string]string, len(r.Errors))
	for _, e := range r.Errors {
		if _, seen := out[e.Field]; !seen {
			out[e.Field] = e.Message
		}
	}
	return out
}

// Add appends a field error.
func (r *Result) Add(field, message string) {
	r.Errors = append(r.Errors, FieldError{Field: field, Label: field, Message: message})
}

// Merge appends other's errors.
func (r *Result) Merge(other *Result) {
	if other != nil {
		r.Errors = append(r.Errors, other.Errors...)
	}
}

var (
	customValidator *validate.Validator
	validatorOnce   sync.Once
)

// getValidator returns the shared validator with the custom rules below.
// Every custom rule accepts "" so optional fields pass unless also required.
func getValidator() *validate.Validator {
	validatorOnce.Do(func() {
		customValidator = validate.New()

		for name, fn := range map[string]func(string) bool{
			"isodate":   IsValidDate,
			"clock":     IsValidClock,
			"feature":   models.IsValidFeature,
			"metric":    IsValidMetric,
			"daterange": IsValidDateRange,
		} {
			check := fn
			customValidator.RegisterRuleFunc(name, func(value any) bool {
				s, ok := value.(string)
				if !ok {
					return false
				}
				return s == "" || check(s)
			}, name)
		}
	})
	return customValidator
}

// Validate checks a struct's (or struct pointer's) validate tags. Labels come from `label` tags and
// fall back to the field's JSON name.
//
// Rules from pantry/validate: required, email, oneof=a b, timezone, min=N, max=N.
// Rules registered here:
//   - isodate: a real calendar date in YYYY-MM-DD form
//   - clock: a 24-hour HH:MM time
//   - feature: a trackable check-in section
//   - metric: an analytics metric name
//   - daterange: 7d, 30d, 90d, 1y or all
func Validate(s any) *Result {
	result := &Result{}
	if v := reflect.ValueOf(s); v.Kind() == reflect.Ptr && !v.IsNil() {
		s = v.Elem().Interface()
	}

	err := getValidator().Struct(s)
	if err == nil {
		return result
	}

	labels := getFieldLabels(s)
	if errs, ok := err.(validate.Errors); ok {
		for _, e := range errs {
			label := labels[e.Field]
			if label == "" {
				label = e.Field
			}
			result.Errors = append(result.Errors, FieldError{
				Field:   e.Field,
				Label:   label,
				Message: formatMessage(label, e.Rule, e.Param),
			})
		}
	}
	return result
}

// getFieldLabels maps JSON field names to their `label` tags.
func getFieldLabels(s any) map[string]string {
	labels := make(map[string]string)

	val := reflect.ValueOf(s)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return labels
	}

	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		name := field.Name
		if tag := field.Tag.Get("json"); tag != "" {
			if n := strings.Split(tag, ",")[0]; n != "" && n != "-" {
				name = n
			}
		}
		if label := field.Tag.Get("label"); label != "" {
			labels[name] = label
		}
	}
	return labels
}

func formatMessage(label, rule, param string) string {
	switch rule {
	case "required":
		return label + " is required."
	case "oneof", "enum":
		return label + " must be one of: " + strings.ReplaceAll(param, " ", ", ") + "."
	case "timezone":
		return label + " must be a valid IANA time zone."
	case "min":
		return label + " must be at least " + param + " characters."
	case "max":
		return label + " must be at most " + param + " characters."
	case "isodate":
		return label + " must be a date in YYYY-MM-DD form."
	case "clock":
		return label + " must be a time in HH:MM form."
	case "feature":
		return label + " must be one of: " + strings.Join(models.AllFeatureValues(), ", ") + "."
	case "metric":
		return label + " must be one of: " + strings.Join(metricNames(), ", ") + "."
	case "daterange":
		return label + " must be one of: 7d, 30d, 90d, 1y, all."
	default:
		return label + " is invalid."
	}
}

// IsValidDate reports whether s is a real calendar date in YYYY-MM-DD form.
func IsValidDate(s string) bool {
	return analytics.ValidateDate(s) == nil
}

var clockPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// IsValidClock reports whether s is a 24-hour HH:MM time.
func IsValidClock(s string) bool {
	return clockPattern.MatchString(s)
}

// IsValidTimezone reports whether s names a loadable IANA time zone.
func IsValidTimezone(s string) bool {
	if s == "" {
		return false
	}
	_, err := time.LoadLocation(s)
	return err == nil
}

// IsValidMetric reports whether s names an analytics metric.
func IsValidMetric(s string) bool {
	_, err := analytics.ParseMetric(s)
	return err == nil
}

// IsValidDateRange reports whether s names a date range.
func IsValidDateRange(s string) bool {
	_, err := analytics.ParseDateRange(s)
	return err == nil
}

func metricNames() []string {
	ms := analytics.Metrics()
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = string(m)
	}
	return out
}
