package validation

import (
	"github.com/agentgraph/agentgraph/internal/core/graph"
)

// NodeRef carries the fields of a node the struct rules check.
type NodeRef struct {
	ID   string `json:"id" validate:"required,max=255"`
	Type string `json:"type" validate:"node_kind"`
}

// EdgeRef carries the fields of an edge the struct rules check.
type EdgeRef struct {
	ID     string `json:"id" validate:"required,max=255"`
	Source string `json:"source" validate:"required"`
	Target string `json:"target" validate:"required"`
}

// GenerateOptions is the options object of a generate request.
type GenerateOptions struct {
	Ordering          string `json:"ordering,omitempty" validate:"omitempty,oneof=topological tiered"`
	DisambiguateNames *bool  `json:"disambiguateNames,omitempty"`
	WorkflowName      string `json:"workflowName,omitempty" validate:"omitempty,max=200"`
}

// GenerateRequest is the body of a generate or validate call.
type GenerateRequest struct {
	Nodes   []*graph.Node   `json:"nodes" validate:"required"`
	Edges   []*graph.Edge   `json:"edges"`
	Options GenerateOptions `json:"options"`
}

// Graph returns the request's graph.
func (r *GenerateRequest) Graph() *graph.Graph {
	return graph.New(r.Nodes, r.Edges)
}

// ListQuery holds the query parameters of a project listing.
type ListQuery struct {
	Name   string `json:"name" validate:"max=255"`
	Limit  int    `json:"limit" validate:"min=0,max=500"`
	Offset int    `json:"offset" validate:"min=0"`
}
