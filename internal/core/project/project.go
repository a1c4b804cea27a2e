// Package project implements the persisted project file: the canvas graph
// plus descriptive metadata, exchanged as a single JSON document.
package project

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/agentgraph/agentgraph/internal/core/graph"
)

// FormatVersion is written into every exported document.
const FormatVersion = "1.0"

// DefaultName is offered for projects saved without a name.
const DefaultName = "My Agent Workflow"

var whitespace = regexp.MustCompile(`\s+`)

// FileName derives the download file name of a project, e.g.
// "My Agent Workflow" becomes "my_agent_workflow.json".
func FileName(name string) string {
	if name == "" {
		name = DefaultName
	}
	return strings.ToLower(whitespace.ReplaceAllString(name, "_")) + ".json"
}

// Metadata describes a project document.
type Metadata struct {
	Name         string    `json:"name" validate:"required"`
	Description  string    `json:"description,omitempty"`
	Version      string    `json:"version" validate:"required,project_version"`
	Created      time.Time `json:"created"`
	LastModified time.Time `json:"lastModified"`
}

// Document is the project file.
type Document struct {
	Nodes    []*graph.Node `json:"nodes"`
	Edges    []*graph.Edge `json:"edges"`
	Metadata Metadata      `json:"metadata"`
}

// Graph returns the document's graph without copying it.
func (d *Document) Graph() *graph.Graph {
	return graph.New(d.Nodes, d.Edges)
}

// Exporter writes project documents. Now is the clock used for timestamps.
type Exporter struct {
	Now func() time.Time
}

// NewDocument wraps nodes and edges with fresh metadata.
func (x Exporter) NewDocument(nodes []*graph.Node, edges []*graph.Edge, name, description string) *Document {
	now := x.now()
	if nodes == nil {
		nodes = []*graph.Node{}
	}
	if edges == nil {
		edges = []*graph.Edge{}
	}
	return &Document{
		Nodes: nodes,
		Edges: edges,
		Metadata: Metadata{
			Name:         name,
			Description:  description,
			Version:      FormatVersion,
			Created:      now,
			LastModified: now,
		},
	}
}

// Export encodes a new document as indented JSON.
func (x Exporter) Export(nodes []*graph.Node, edges []*graph.Edge, name, description string) ([]byte, error) {
	return Encode(x.NewDocument(nodes, edges, name, description))
}

// Touch sets the document's modification time.
func (x Exporter) Touch(d *Document) {
	d.Metadata.LastModified = x.now()
}

// timestamps carry millisecond precision in UTC
func (x Exporter) now() time.Time {
	now := time.Now
	if x.Now != nil {
		now = x.Now
	}
	return now().UTC().Truncate(time.Millisecond)
}

// Export encodes nodes and edges as a project document stamped with the
// current time.
func Export(nodes []*graph.Node, edges []*graph.Edge, name, description string) ([]byte, error) {
	return Exporter{}.Export(nodes, edges, name, description)
}

// Encode renders d as indented JSON.
func Encode(d *Document) ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// Import decodes a project document. A document that is not JSON, or that
// lacks any of nodes, edges or metadata, yields a *FormatError.
func Import(data []byte) (*Document, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, &FormatError{Err: err}
	}
	for _, key := range []string{"nodes", "edges", "metadata"} {
		raw, ok := top[key]
		if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			return nil, &FormatError{Field: key}
		}
	}

	var doc Document
	if err := json.Unmarshal(top["nodes"], &doc.Nodes); err != nil {
		return nil, &FormatError{Field: "nodes", Err: err}
	}
	if err := json.Unmarshal(top["edges"], &doc.Edges); err != nil {
		return nil, &FormatError{Field: "edges", Err: err}
	}
	if err := json.Unmarshal(top["metadata"], &doc.Metadata); err != nil {
		return nil, &FormatError{Field: "metadata", Err: err}
	}
	return &doc, nil
}
