// Package validation checks project documents and API requests. Struct
// rules run through go-playground/validator; graph rules are structural
// checks the generator itself tolerates.
package validation

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Issue codes
const (
	CodeInvalid         = "invalid"
	CodeDuplicateID     = "duplicate_id"
	CodeUnknownKind     = "node_kind"
	CodeDanglingEdge    = "dangling_edge"
	CodeUnknownPort     = "unknown_port"
	CodePortDirection   = "port_direction"
	CodeDuplicateEdge   = "duplicate_edge"
	CodeMultipleDrivers = "multiple_drivers"
	CodeHandoffCycle    = "handoff_cycle"
)

// ValidationError is one problem, located by a JSON path such as
// "nodes[2].id".
type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Value   any    `json:"value,omitempty"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error on field '%s': %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors collects every problem found in one pass.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Has reports whether any error carries code.
func (e ValidationErrors) Has(code string) bool {
	for _, err := range e {
		if err.Code == code {
			return true
		}
	}
	return false
}

// OrNil returns nil for an empty list so callers can return it as error.
func (e ValidationErrors) OrNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

type errorResponse struct {
	Errors ValidationErrors `json:"errors"`
	Count  int              `json:"count"`
}

// MarshalValidationErrors renders errors as {"errors": [...], "count": n}.
func MarshalValidationErrors(errs ValidationErrors) ([]byte, error) {
	if errs == nil {
		errs = ValidationErrors{}
	}
	return json.Marshal(errorResponse{Errors: errs, Count: len(errs)})
}

// UnmarshalValidationErrors reverses MarshalValidationErrors.
func UnmarshalValidationErrors(data []byte) (ValidationErrors, error) {
	var resp errorResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, err
	}
	return resp.Errors, nil
}
