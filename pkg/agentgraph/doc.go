// Package agentgraph provides a minimal public façade for compiling agent
// graphs without importing internal packages. It re-exports the graph and
// result types and exposes a Runtime that imports, validates, stores and
// compiles project files.
package agentgraph
