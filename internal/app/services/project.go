package services

import (
	"context"
	"fmt"
	"time"

	"github.com/agentgraph/agentgraph/internal/app/dto"
	"github.com/agentgraph/agentgraph/internal/core/graph"
	"github.com/agentgraph/agentgraph/internal/core/project"
	"github.com/agentgraph/agentgraph/internal/infrastructure/metrics"
	"github.com/agentgraph/agentgraph/internal/log"
)

// ProjectService imports, stores and exports project files on top of a
// project.Store.
type ProjectService struct {
	store    project.Store
	exporter project.Exporter
	newID    func() string
}

// ProjectOption configures a ProjectService.
type ProjectOption func(*ProjectService)

// WithClock sets the clock used to stamp modification times.
func WithClock(now func() time.Time) ProjectOption {
	return func(s *ProjectService) { s.exporter.Now = now }
}

// WithIDGenerator sets the function allocating ids for new projects.
func WithIDGenerator(newID func() string) ProjectOption {
	return func(s *ProjectService) { s.newID = newID }
}

// NewProjectService creates a project service backed by store.
func NewProjectService(store project.Store, opts ...ProjectOption) *ProjectService {
	s := &ProjectService{
		store: store,
		newID: func() string { return graph.NewID("project") },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Import decodes a project file and saves it under a new id.
func (s *ProjectService) Import(ctx context.Context, data []byte) (*project.Record, error) {
	doc, err := s.decode(data)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, s.newID(), doc)
}

// Update replaces the document saved under id, creating it when absent.
func (s *ProjectService) Update(ctx context.Context, id string, data []byte) (*project.Record, error) {
	if id == "" {
		return nil, dto.ErrMissingProjectID
	}
	doc, err := s.decode(data)
	if err != nil {
		return nil, err
	}
	s.exporter.Touch(doc)
	return s.save(ctx, id, doc)
}

// Get loads the record saved under id.
func (s *ProjectService) Get(ctx context.Context, id string) (*project.Record, error) {
	if id == "" {
		return nil, dto.ErrMissingProjectID
	}
	rec, err := s.store.Load(ctx, id)
	metrics.IncStoreOp("load", err)
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	return rec, nil
}

// Export renders the document saved under id as a project file.
func (s *ProjectService) Export(ctx context.Context, id string) (*project.Record, []byte, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	data, err := project.Encode(rec.Document)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode project: %w", err)
	}
	return rec, data, nil
}

// List returns summaries of the saved projects matching filter.
func (s *ProjectService) List(ctx context.Context, filter project.Filter) ([]dto.ProjectSummary, error) {
	recs, err := s.store.List(ctx, filter)
	metrics.IncStoreOp("list", err)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	out := make([]dto.ProjectSummary, len(recs))
	for i, r := range recs {
		out[i] = dto.Summarize(r)
	}
	return out, nil
}

// Delete removes the project saved under id.
func (s *ProjectService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return dto.ErrMissingProjectID
	}
	err := s.store.Delete(ctx, id)
	metrics.IncStoreOp("delete", err)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}

func (s *ProjectService) decode(data []byte) (*project.Document, error) {
	if len(data) == 0 {
		metrics.IncImportFailures()
		return nil, dto.ErrEmptyBody
	}
	doc, err := project.Import(data)
	if err != nil {
		metrics.IncImportFailures()
		log.Warnw("project import rejected", "error", err)
		return nil, err
	}
	metrics.IncImports()
	if doc.Metadata.Name == "" {
		doc.Metadata.Name = project.DefaultName
	}
	if doc.Metadata.Version == "" {
		doc.Metadata.Version = project.FormatVersion
	}
	return doc, nil
}

func (s *ProjectService) save(ctx context.Context, id string, doc *project.Document) (*project.Record, error) {
	rec := project.NewRecord(id, doc)
	err := s.store.Save(ctx, rec)
	metrics.IncStoreOp("save", err)
	if err != nil {
		return nil, fmt.Errorf("failed to save project: %w", err)
	}
	log.Infow("project saved", "id", rec.ID, "revision", rec.Revision)
	return rec, nil
}
