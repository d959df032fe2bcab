package domain

import (
	"errors"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate reports field names by their JSON tag.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateItemCreate checks that name and description are present and that
// price is present and not negative.
func ValidateItemCreate(in ItemInput) error {
	return ValidateStruct(in)
}

// ValidateStruct runs the struct's validate tags and reports failures as a
// *ValidationError whose Details are keyed by JSON field name.
func ValidateStruct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return NewValidationError("", "Invalid request parameters")
	}

	details := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[fe.Field()] = tagMessage(fe.Tag())
	}

	verr := NewValidationError(fieldErrs[0].Field(), "Invalid request parameters")
	verr.Details = details
	return verr
}

// tagMessage maps validation tags to short, caller-facing reasons.
func tagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "gte":
		return "must not be negative"
	case "max":
		return "too long"
	default:
		return "validation failed"
	}
}

// Page selects a window of a collection. Limit < 0 means no limit.
type Page struct {
	Offset int
	Limit  int
}

// NoLimit marks a Page without an upper bound.
const NoLimit = -1

// ParsePage parses raw offset and limit query values. Empty values take the
// defaults: offset 0 and no limit.
func ParsePage(offset, limit string) (Page, error) {
	page := Page{Offset: 0, Limit: NoLimit}

	if offset != "" {
		n, err := strconv.Atoi(offset)
		if err != nil || n < 0 {
			return Page{}, NewValidationError("offset", "Invalid offset: must be a non-negative integer")
		}
		page.Offset = n
	}

	if limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 0 {
			return Page{}, NewValidationError("limit", "Invalid limit: must be a non-negative integer")
		}
		page.Limit = n
	}

	return page, nil
}

// Bounds returns the half-open [start, end) range of the page inside a
// collection of size n, clamped to the collection.
func (p Page) Bounds(n int) (int, int) {
	start := p.Offset
	if start < 0 {
		start = 0
	}
	if start > n {
		start = n
	}
	end := n
	if p.Limit >= 0 && p.Limit < n-start {
		end = start + p.Limit
	}
	return start, end
}
