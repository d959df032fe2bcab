package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/strefethen/crud-example/internal/domain"
)

// MaxBodyBytes caps the size of a JSON request body.
const MaxBodyBytes = 1 << 20

const emptyBodyMessage = "Request body is required"

// DecodeJSON decodes the request body into v. A missing, oversized or
// malformed body is reported as a *domain.ValidationError so it maps to 400.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	body := http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	err := json.NewDecoder(body).Decode(v)
	if err == nil {
		return nil
	}

	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, io.EOF):
		return &domain.ValidationError{Field: "body", Message: emptyBodyMessage, Err: domain.ErrInvalidArgument}
	case errors.As(err, &maxErr):
		return &domain.ValidationError{
			Field:   "body",
			Message: fmt.Sprintf("Request body exceeds %d bytes", maxErr.Limit),
			Err:     domain.ErrInvalidArgument,
		}
	default:
		return &domain.ValidationError{
			Field:   "body",
			Message: "Invalid request body",
			Details: map[string]string{"body": "malformed JSON"},
			Err:     domain.ErrInvalidArgument,
		}
	}
}

// DecodeOptionalJSON is DecodeJSON for endpoints where an empty body is
// allowed. An empty body leaves v untouched and returns nil.
func DecodeOptionalJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	err := DecodeJSON(w, r, v)
	var verr *domain.ValidationError
	if errors.As(err, &verr) && verr.Message == emptyBodyMessage {
		return nil
	}
	return err
}

// ValidateRequest validates the given struct. Types with their own Validate
// method use it; everything else goes through the struct tags.
func ValidateRequest(v interface{}) error {
	if custom, ok := v.(interface{ Validate() error }); ok {
		return custom.Validate()
	}
	return domain.ValidateStruct(v)
}
