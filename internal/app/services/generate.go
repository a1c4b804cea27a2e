package services

import (
	"time"

	"github.com/agentgraph/agentgraph/internal/app/dto"
	"github.com/agentgraph/agentgraph/internal/codegen"
	"github.com/agentgraph/agentgraph/internal/core/graph"
	"github.com/agentgraph/agentgraph/internal/infrastructure/metrics"
	"github.com/agentgraph/agentgraph/pkg/validation"
)

// GenerateService compiles graphs and records generation metrics. It is
// safe for concurrent use.
type GenerateService struct {
	defaults codegen.Options
}

// NewGenerateService returns a service whose requests start from defaults.
func NewGenerateService(defaults codegen.Options) *GenerateService {
	return &GenerateService{defaults: defaults}
}

// Defaults returns the options requests are overlaid on.
func (s *GenerateService) Defaults() codegen.Options {
	return s.defaults
}

// Options overlays the fields set in o on the service defaults.
func (s *GenerateService) Options(o validation.GenerateOptions) codegen.Options {
	opts := s.defaults
	if o.Ordering != "" {
		opts.Ordering = codegen.Ordering(o.Ordering)
	}
	if o.DisambiguateNames != nil {
		opts.DisambiguateNames = *o.DisambiguateNames
	}
	if o.WorkflowName != "" {
		opts.WorkflowName = o.WorkflowName
	}
	return opts
}

// Generate compiles g with opts.
func (s *GenerateService) Generate(g *graph.Graph, opts codegen.Options) *codegen.Result {
	start := time.Now()
	res := codegen.New(opts).Generate(g)

	metrics.IncGenerations()
	metrics.ObserveGeneration(time.Since(start))
	metrics.AddWorkflows(res.Stats.Workflows)
	metrics.AddWarnings(len(res.Warnings))
	for kind, n := range res.Stats.Nodes {
		metrics.AddNodes(string(kind), n)
	}
	return res
}

// GenerateRequest compiles the graph of req with its options.
func (s *GenerateService) GenerateRequest(req *validation.GenerateRequest) *dto.GenerateResponse {
	return dto.NewGenerateResponse(s.Generate(req.Graph(), s.Options(req.Options)))
}

// Validate reports the structural problems of g.
func (s *GenerateService) Validate(g *graph.Graph) *dto.ValidateResponse {
	return dto.NewValidateResponse(validation.ValidateGraph(g))
}
