package dto

import (
	"time"

	"github.com/agentgraph/agentgraph/internal/codegen"
	"github.com/agentgraph/agentgraph/internal/core/project"
	"github.com/agentgraph/agentgraph/pkg/validation"
)

// GenerateResponse is the body returned by the generate endpoint.
type GenerateResponse struct {
	Code         string            `json:"code"`
	Warnings     []codegen.Warning `json:"warnings"`
	Requirements []string          `json:"requirements"`
	Stats        codegen.Stats     `json:"stats"`
}

// NewGenerateResponse copies a generation result into the response shape.
// Warnings is never null.
func NewGenerateResponse(res *codegen.Result) *GenerateResponse {
	warnings := res.Warnings
	if warnings == nil {
		warnings = []codegen.Warning{}
	}
	return &GenerateResponse{
		Code:         res.Code,
		Warnings:     warnings,
		Requirements: res.Requirements,
		Stats:        res.Stats,
	}
}

// ValidateResponse reports the structural problems of a graph.
type ValidateResponse struct {
	Valid  bool                        `json:"valid"`
	Errors validation.ValidationErrors `json:"errors"`
	Count  int                         `json:"count"`
}

// NewValidateResponse wraps errs. Errors is never null.
func NewValidateResponse(errs validation.ValidationErrors) *ValidateResponse {
	if errs == nil {
		errs = validation.ValidationErrors{}
	}
	return &ValidateResponse{Valid: len(errs) == 0, Errors: errs, Count: len(errs)}
}

// ProjectSummary lists a saved project without its document.
type ProjectSummary struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Revision    int       `json:"revision"`
	Nodes       int       `json:"nodes"`
	Edges       int       `json:"edges"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Summarize drops the document from r.
func Summarize(r *project.Record) ProjectSummary {
	s := ProjectSummary{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Revision:    r.Revision,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.Document != nil {
		s.Nodes = len(r.Document.Nodes)
		s.Edges = len(r.Document.Edges)
	}
	return s
}

// ProjectList is the body returned by the list endpoint.
type ProjectList struct {
	Projects []ProjectSummary `json:"projects"`
	Count    int              `json:"count"`
}

// ErrorResponse is the body of every non-validation error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
