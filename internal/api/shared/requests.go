package shared

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// validate is shared across all requests; validator instances cache struct
// metadata and are safe for concurrent use.
var validate = validator.New()

// Validatable lets a request type carry its own validation rules instead of
// relying on struct tags.
type Validatable interface {
	Validate() error
}

// DecodeJSON decodes the request body into dst, rejecting fields the target
// type does not declare.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// ValidateRequest validates dst, preferring its own Validate method when it
// has one and falling back to struct-tag validation otherwise.
func ValidateRequest(dst any) error {
	if v, ok := dst.(Validatable); ok {
		return v.Validate()
	}
	return validate.Struct(dst)
}
