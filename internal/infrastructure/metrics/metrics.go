package metrics

import (
	"expvar"
	"time"
)

// Generation metrics.
var (
	generationsTotal   = new(expvar.Int)
	workflowsTotal     = new(expvar.Int)
	warningsTotal      = new(expvar.Int)
	generationMillis   = new(expvar.Int)
	generatedNodes     = expvar.NewMap("agentgraph_generated_nodes_total")
	generationFailures = expvar.NewMap("agentgraph_generation_failures_total")
)

// Project metrics.
var (
	importsTotal   = new(expvar.Int)
	importFailures = new(expvar.Int)
	storeOps       = expvar.NewMap("agentgraph_store_operations_total")
	storeErrors    = expvar.NewMap("agentgraph_store_errors_total")
)

func init() {
	expvar.Publish("agentgraph_generations_total", generationsTotal)
	expvar.Publish("agentgraph_workflows_total", workflowsTotal)
	expvar.Publish("agentgraph_warnings_total", warningsTotal)
	expvar.Publish("agentgraph_generation_milliseconds_total", generationMillis)
	expvar.Publish("agentgraph_imports_total", importsTotal)
	expvar.Publish("agentgraph_import_failures_total", importFailures)
}

// Generation helpers
func IncGenerations() { generationsTotal.Add(1) }
func AddWorkflows(n int) { workflowsTotal.Add(int64(n)) }
func AddWarnings(n int) { warningsTotal.Add(int64(n)) }
func AddNodes(kind string, n int) { generatedNodes.Add(kind, int64(n)) }
func IncGenerationFailure(reason string) { generationFailures.Add(reason, 1) }

// ObserveGeneration adds d to the cumulative generation time.
func ObserveGeneration(d time.Duration) { generationMillis.Add(d.Milliseconds()) }

// Project helpers
func IncImports() { importsTotal.Add(1) }
func IncImportFailures() { importFailures.Add(1) }

// IncStoreOp counts one store call; op is save, load, list or delete.
func IncStoreOp(op string, err error) {
	storeOps.Add(op, 1)
	if err != nil {
		storeErrors.Add(op, 1)
	}
}

// Snapshot returns the scalar counters by published name.
func Snapshot() map[string]int64 {
	return map[string]int64{
		"agentgraph_generations_total":             generationsTotal.Value(),
		"agentgraph_workflows_total":               workflowsTotal.Value(),
		"agentgraph_warnings_total":                warningsTotal.Value(),
		"agentgraph_generation_milliseconds_total": generationMillis.Value(),
		"agentgraph_imports_total":                 importsTotal.Value(),
		"agentgraph_import_failures_total":         importFailures.Value(),
	}
}
