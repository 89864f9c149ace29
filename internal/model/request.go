package model

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// SearchRequest is the pipeline input.
type SearchRequest struct {
	Skills     []string `json:"skills" validate:"max=50,dive,max=100"`
	Query      string   `json:"query,omitempty" validate:"max=200"`
	ResumeText string   `json:"resumeText,omitempty" validate:"max=100000"`
}

// SearchResponse is the pipeline output. Error is set only when no jobs
// were found and carries a user-facing message.
type SearchResponse struct {
	Jobs  []Job  `json:"jobs"`
	Error string `json:"error,omitempty"`
}

var validate = validator.New()

// Validate checks request limits. The returned error wraps ErrInvalidRequest.
func (r *SearchRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: %s failed %q", ErrInvalidRequest, fe.Namespace(), fe.Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return nil
}
