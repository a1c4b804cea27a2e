package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/agentgraph/agentgraph/internal/app/dto"
	"github.com/agentgraph/agentgraph/internal/core/project"
	"github.com/agentgraph/agentgraph/internal/infrastructure/metrics"
	"github.com/agentgraph/agentgraph/internal/log"
	"github.com/agentgraph/agentgraph/pkg/validation"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, dto.ErrorResponse{Error: "unavailable", Message: err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleMetrics(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", metrics.ContentType)
	if err := metrics.WritePrometheus(w); err != nil {
		log.Warnf("write metrics: %v", err)
	}
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	req, ok := validation.Decoded[validation.GenerateRequest](r.Context())
	if !ok {
		metrics.IncGenerationFailure("bad_request")
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "bad_request", Message: "missing request body"})
		return
	}
	writeJSON(w, http.StatusOK, s.gen.GenerateRequest(req))
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	req, ok := validation.Decoded[validation.GenerateRequest](r.Context())
	if !ok {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "bad_request", Message: "missing request body"})
		return
	}
	writeJSON(w, http.StatusOK, s.gen.Validate(req.Graph()))
}

func (s *Server) handleImportProject(w http.ResponseWriter, r *http.Request) {
	data, err := s.readBody(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	rec, err := s.projects.Import(r.Context(), data)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Location", "/api/projects/"+rec.ID)
	writeJSON(w, http.StatusCreated, dto.Summarize(rec))
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	data, err := s.readBody(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	rec, err := s.projects.Update(r.Context(), mux.Vars(r)["id"], data)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.Summarize(rec))
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	filter, errs := parseFilter(r)
	if len(errs) > 0 {
		validation.WriteErrors(w, http.StatusBadRequest, errs)
		return
	}
	list, err := s.projects.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ProjectList{Projects: list, Count: len(list)})
}

func (s *Server) handleExportProject(w http.ResponseWriter, r *http.Request) {
	rec, data, err := s.projects.Export(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if r.URL.Query().Get("download") != "" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", project.FileName(rec.Name)))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := s.projects.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleProjectCode generates the saved project. Query parameters override
// the generator defaults the same way a generate request's options do.
func (s *Server) handleProjectCode(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := validation.GenerateOptions{
		Ordering:     q.Get("ordering"),
		WorkflowName: q.Get("workflowName"),
	}
	if v := q.Get("disambiguateNames"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			validation.WriteErrors(w, http.StatusBadRequest, validation.ValidationErrors{{
				Field: "disambiguateNames", Code: validation.CodeInvalid, Value: v, Message: "must be a boolean",
			}})
			return
		}
		opts.DisambiguateNames = &b
	}
	if errs := validation.Struct(opts, ""); len(errs) > 0 {
		validation.WriteErrors(w, http.StatusBadRequest, errs)
		return
	}

	rec, err := s.projects.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	res := s.gen.Generate(rec.Document.Graph(), s.gen.Options(opts))
	writeJSON(w, http.StatusOK, dto.NewGenerateResponse(res))
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err != nil {
		return nil, &project.FormatError{Err: err}
	}
	return data, nil
}

func parseFilter(r *http.Request) (project.Filter, validation.ValidationErrors) {
	q := r.URL.Query()
	var (
		filter project.Filter
		errs   validation.ValidationErrors
	)
	filter.Name = q.Get("name")

	parseInt := func(key string, dst *int) {
		v := q.Get(key)
		if v == "" {
			return
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, validation.ValidationError{Field: key, Code: validation.CodeInvalid, Value: v, Message: "must be an integer"})
			return
		}
		*dst = n
	}
	parseTime := func(key string) *time.Time {
		v := q.Get(key)
		if v == "" {
			return nil
		}
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			errs = append(errs, validation.ValidationError{Field: key, Code: validation.CodeInvalid, Value: v, Message: "must be an RFC 3339 timestamp"})
			return nil
		}
		return &t
	}

	parseInt("limit", &filter.Limit)
	parseInt("offset", &filter.Offset)
	filter.Since = parseTime("since")
	filter.Before = parseTime("before")
	if len(errs) > 0 {
		return filter, errs
	}

	errs = validation.Struct(validation.ListQuery{Name: filter.Name, Limit: filter.Limit, Offset: filter.Offset}, "")
	if len(errs) == 0 {
		if err := filter.Validate(); err != nil {
			errs = validation.ValidationErrors{{Field: "since", Code: validation.CodeInvalid, Message: err.Error()}}
		}
	}
	return filter, errs
}

// writeError maps service errors to status codes. Rejected project files
// are answered with 400 and the format error, never a 500.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := "internal"
	switch {
	case errors.Is(err, project.ErrProjectNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, project.ErrInvalidFormat):
		status, code = http.StatusBadRequest, "invalid_format"
	case errors.Is(err, dto.ErrEmptyBody),
		errors.Is(err, dto.ErrMissingProjectID),
		errors.Is(err, project.ErrInvalidProjectID),
		errors.Is(err, project.ErrInvalidLimit),
		errors.Is(err, project.ErrInvalidOffset),
		errors.Is(err, project.ErrInvalidTimeRange):
		status, code = http.StatusBadRequest, "bad_request"
	}
	if status == http.StatusInternalServerError {
		log.Errorw("request failed", "error", err)
	}
	writeJSON(w, status, dto.ErrorResponse{Error: code, Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warnf("encode response: %v", err)
	}
}
