package validation

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentgraph/agentgraph/internal/core/graph"
	"github.com/agentgraph/agentgraph/internal/core/project"
)

func TestValidationError(t *testing.T) {
	err := ValidationError{Field: "nodes[0].id", Code: "required", Message: "field is required"}
	assert.Equal(t, "validation error on field 'nodes[0].id': field is required", err.Error())

	err.Value = 7
	assert.Equal(t, "validation error on field 'nodes[0].id': field is required (got: 7)", err.Error())
}

func TestValidationErrors(t *testing.T) {
	var empty ValidationErrors
	assert.NoError(t, empty.OrNil())
	assert.Equal(t, "no validation errors", empty.Error())

	errs := ValidationErrors{
		{Field: "name", Code: "required", Message: "field is required"},
		{Field: "limit", Code: "max", Value: 900, Message: "maximum value/length is 500"},
	}
	assert.Equal(t,
		"validation error on field 'name': field is required; validation error on field 'limit': maximum value/length is 500 (got: 900)",
		errs.Error())
	assert.True(t, errs.Has("max"))
	assert.False(t, errs.Has(CodeHandoffCycle))
	assert.Error(t, errs.OrNil())
}

func TestMarshalValidationErrors(t *testing.T) {
	data, err := MarshalValidationErrors(nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"errors":[],"count":0}`, string(data))

	in := ValidationErrors{{Field: "edges[1]", Code: CodeDuplicateEdge, Value: "e2", Message: "same connection as edges[0]"}}
	data, err = MarshalValidationErrors(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"errors":[{"field":"edges[1]","code":"duplicate_edge","value":"e2","message":"same connection as edges[0]"}],"count":1}`, string(data))

	out, err := UnmarshalValidationErrors(data)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	_, err = UnmarshalValidationErrors([]byte("{"))
	assert.Error(t, err)
}

func TestStruct(t *testing.T) {
	tests := []struct {
		name   string
		value  any
		prefix string
		fields []string
		codes  []string
	}{
		{
			name:  "valid node",
			value: NodeRef{ID: "n1", Type: "agent"},
		},
		{
			name:   "missing id and unknown type",
			value:  NodeRef{Type: "widget"},
			prefix: "nodes[3]",
			fields: []string{"nodes[3].id", "nodes[3].type"},
			codes:  []string{"required", CodeUnknownKind},
		},
		{
			name:   "bad ordering",
			value:  GenerateOptions{Ordering: "random"},
			fields: []string{"ordering"},
			codes:  []string{"oneof"},
		},
		{
			name:   "limit too large",
			value:  ListQuery{Limit: 501},
			fields: []string{"limit"},
			codes:  []string{"max"},
		},
		{
			name:   "negative offset",
			value:  &ListQuery{Offset: -1},
			fields: []string{"offset"},
			codes:  []string{"min"},
		},
		{
			name:   "missing nodes",
			value:  GenerateRequest{},
			fields: []string{"nodes"},
			codes:  []string{"required"},
		},
		{
			name:   "unsupported version",
			value:  project.Metadata{Name: "p", Version: "2.0"},
			prefix: "metadata",
			fields: []string{"metadata.version"},
			codes:  []string{"project_version"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Struct(tt.value, tt.prefix)
			require.Len(t, errs, len(tt.fields))
			for i := range errs {
				assert.Equal(t, tt.fields[i], errs[i].Field)
				assert.Equal(t, tt.codes[i], errs[i].Code)
				assert.NotEmpty(t, errs[i].Message)
			}
		})
	}
}

func TestStruct_Messages(t *testing.T) {
	errs := Struct(NodeRef{ID: "n", Type: "widget"}, "")
	require.Len(t, errs, 1)
	assert.Equal(t, "must be a known node type (pythonCode, functionTool, mcp, agent, runner)", errs[0].Message)

	errs = Struct(GenerateOptions{Ordering: "random"}, "")
	require.Len(t, errs, 1)
	assert.Equal(t, "must be one of: topological tiered", errs[0].Message)
}

func node(id string, data graph.NodeData) *graph.Node {
	return &graph.Node{ID: id, Kind: data.Kind(), Data: data}
}

func edge(id, source, sourceHandle, target, targetHandle string) *graph.Edge {
	return &graph.Edge{ID: id, Source: source, SourceHandle: sourceHandle, Target: target, TargetHandle: targetHandle}
}

func TestValidateGraph_Clean(t *testing.T) {
	b := graph.NewBuilder()
	tool := b.Add(&graph.FunctionToolData{Name: "lookup"})
	server := b.Add(&graph.MCPData{Name: "git", ServerType: graph.MCPServerGit})
	triage := b.Add(&graph.AgentData{Name: "Triage"})
	expert := b.Add(&graph.AgentData{Name: "Expert"})
	runner := b.Add(&graph.RunnerData{Input: "hi"})
	require.NoError(t, b.Tool(tool, triage))
	require.NoError(t, b.Server(server, expert))
	require.NoError(t, b.Handoff(triage, expert))
	require.NoError(t, b.Drive(triage, runner))

	assert.Empty(t, ValidateGraph(b.Graph()))
}

func TestValidateGraph(t *testing.T) {
	tests := []struct {
		name  string
		nodes []*graph.Node
		edges []*graph.Edge
		code  string
		field string
		value any
	}{
		{
			name:  "nil node",
			nodes: []*graph.Node{nil},
			code:  "required",
			field: "nodes[0]",
		},
		{
			name:  "missing id",
			nodes: []*graph.Node{node("", &graph.AgentData{})},
			code:  "required",
			field: "nodes[0].id",
		},
		{
			name:  "unknown kind",
			nodes: []*graph.Node{{ID: "w", Kind: "widget"}},
			code:  CodeUnknownKind,
			field: "nodes[0].type",
			value: "widget",
		},
		{
			name:  "duplicate id",
			nodes: []*graph.Node{node("a", &graph.AgentData{}), node("a", &graph.RunnerData{})},
			code:  CodeDuplicateID,
			field: "nodes[1].id",
			value: "a",
		},
		{
			name:  "data mismatch",
			nodes: []*graph.Node{{ID: "a", Kind: graph.KindAgent, Data: &graph.RunnerData{}}},
			code:  CodeInvalid,
			field: "nodes[0].data",
			value: "runner",
		},
		{
			name:  "nil edge",
			edges: []*graph.Edge{nil},
			code:  "required",
			field: "edges[0]",
		},
		{
			name:  "dangling source",
			nodes: []*graph.Node{node("r", &graph.RunnerData{})},
			edges: []*graph.Edge{edge("e1", "ghost", "b", "r", "a")},
			code:  CodeDanglingEdge,
			field: "edges[0].source",
			value: "ghost",
		},
		{
			name:  "dangling target",
			nodes: []*graph.Node{node("a", &graph.AgentData{})},
			edges: []*graph.Edge{edge("e1", "a", "b", "ghost", "a")},
			code:  CodeDanglingEdge,
			field: "edges[0].target",
			value: "ghost",
		},
		{
			name:  "unknown source handle",
			nodes: []*graph.Node{node("a", &graph.AgentData{}), node("r", &graph.RunnerData{})},
			edges: []*graph.Edge{edge("e1", "a", "z", "r", "a")},
			code:  CodeUnknownPort,
			field: "edges[0].sourceHandle",
			value: "z",
		},
		{
			name:  "unknown target handle",
			nodes: []*graph.Node{node("t", &graph.FunctionToolData{}), node("a", &graph.AgentData{})},
			edges: []*graph.Edge{edge("e1", "t", "a", "a", "q")},
			code:  CodeUnknownPort,
			field: "edges[0].targetHandle",
			value: "q",
		},
		{
			name:  "edge into a tool",
			nodes: []*graph.Node{node("a", &graph.AgentData{}), node("t", &graph.FunctionToolData{})},
			edges: []*graph.Edge{edge("e1", "a", "b", "t", "a")},
			code:  CodePortDirection,
			field: "edges[0]",
			value: "handoff-out -> tool-out",
		},
		{
			name:  "duplicate edge",
			nodes: []*graph.Node{node("a", &graph.AgentData{}), node("r", &graph.RunnerData{})},
			edges: []*graph.Edge{edge("e1", "a", "b", "r", "a"), edge("e2", "a", "b", "r", "a")},
			code:  CodeDuplicateEdge,
			field: "edges[1]",
			value: "e2",
		},
		{
			name: "two drivers",
			nodes: []*graph.Node{
				node("a", &graph.AgentData{}), node("b", &graph.AgentData{}), node("r", &graph.RunnerData{}),
			},
			edges: []*graph.Edge{edge("e1", "a", "b", "r", "a"), edge("e2", "b", "b", "r", "a")},
			code:  CodeMultipleDrivers,
			field: "nodes[2]",
			value: 2,
		},
		{
			name:  "handoff cycle",
			nodes: []*graph.Node{node("x", &graph.AgentData{}), node("y", &graph.AgentData{})},
			edges: []*graph.Edge{edge("e1", "x", "b", "y", "a"), edge("e2", "y", "b", "x", "a")},
			code:  CodeHandoffCycle,
			field: "nodes[0]",
			value: "x -> y -> x",
		},
		{
			name:  "self handoff",
			nodes: []*graph.Node{node("x", &graph.AgentData{})},
			edges: []*graph.Edge{edge("e1", "x", "b", "x", "a")},
			code:  CodeHandoffCycle,
			field: "nodes[0]",
			value: "x -> x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateGraph(graph.New(tt.nodes, tt.edges))
			require.Len(t, errs, 1, errs.Error())
			assert.Equal(t, tt.code, errs[0].Code)
			assert.Equal(t, tt.field, errs[0].Field)
			if tt.value != nil {
				assert.Equal(t, tt.value, errs[0].Value)
			}
		})
	}
}

func TestValidateGraph_CollectsAll(t *testing.T) {
	g := graph.New(
		[]*graph.Node{{ID: "w", Kind: "widget"}, node("a", &graph.AgentData{})},
		[]*graph.Edge{edge("e1", "a", "b", "ghost", ""), edge("", "a", "b", "a", "")},
	)
	errs := ValidateGraph(g)
	assert.True(t, errs.Has(CodeUnknownKind))
	assert.True(t, errs.Has(CodeDanglingEdge))
	assert.True(t, errs.Has("required"))
	assert.True(t, errs.Has(CodeHandoffCycle))
}

func TestValidateGraph_UnknownKindEdgesSkipPortChecks(t *testing.T) {
	g := graph.New(
		[]*graph.Node{{ID: "w", Kind: "widget"}, node("a", &graph.AgentData{})},
		[]*graph.Edge{edge("e1", "w", "zz", "a", "a")},
	)
	errs := ValidateGraph(g)
	assert.False(t, errs.Has(CodeUnknownPort))
}

func TestValidateGraph_Nil(t *testing.T) {
	errs := ValidateGraph(nil)
	require.Len(t, errs, 1)
	assert.Equal(t, CodeInvalid, errs[0].Code)
}

func TestValidateDocument(t *testing.T) {
	exp := project.Exporter{Now: func() time.Time { return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC) }}
	doc := exp.NewDocument([]*graph.Node{node("a", &graph.AgentData{Name: "A"})}, nil, "demo", "")
	assert.Empty(t, ValidateDocument(doc))

	doc.Metadata.Name = ""
	doc.Metadata.Version = "9"
	errs := ValidateDocument(doc)
	require.Len(t, errs, 2)
	assert.Equal(t, "metadata.name", errs[0].Field)
	assert.Equal(t, "metadata.version", errs[1].Field)

	errs = ValidateDocument(nil)
	require.Len(t, errs, 1)
}

func TestMiddleware_ValidateJSON(t *testing.T) {
	var got *GenerateRequest
	handler := NewMiddleware(0).ValidateJSON(GenerateRequest{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var ok bool
		got, ok = Decoded[GenerateRequest](r.Context())
		require.True(t, ok)
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("valid body", func(t *testing.T) {
		body := `{"nodes":[{"id":"a","type":"agent","position":{"x":0,"y":0},"data":{"name":"Bot"}}],"edges":[],"options":{"ordering":"tiered"}}`
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))

		assert.Equal(t, http.StatusNoContent, rec.Code)
		require.NotNil(t, got)
		require.Len(t, got.Nodes, 1)
		assert.Equal(t, "Bot", got.Nodes[0].Name())
		assert.Equal(t, "tiered", got.Options.Ordering)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString("{")))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		errs, err := UnmarshalValidationErrors(rec.Body.Bytes())
		require.NoError(t, err)
		require.Len(t, errs, 1)
		assert.Equal(t, "request_body", errs[0].Field)
	})

	t.Run("rule failure", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"options":{"ordering":"random"}}`)))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		errs, err := UnmarshalValidationErrors(rec.Body.Bytes())
		require.NoError(t, err)
		assert.True(t, errs.Has("required"))
		assert.True(t, errs.Has("oneof"))
	})

	t.Run("body too large", func(t *testing.T) {
		small := NewMiddleware(16).ValidateJSON(&GenerateRequest{})(http.NotFoundHandler())
		rec := httptest.NewRecorder()
		small.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"nodes":[],"edges":[],"options":{}}`)))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestDecoded_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := Decoded[GenerateRequest](req.Context())
	assert.False(t, ok)
}
