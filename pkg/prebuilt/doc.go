// Package prebuilt provides ready-made agent graphs ("templates") for
// common patterns: a single assistant, an agent with a function tool, a
// triage agent handing off to specialists, and an agent backed by an MCP
// filesystem server. Each template returns a *graph.Graph laid out for the
// canvas that can be exported as a project file or compiled directly.
package prebuilt
