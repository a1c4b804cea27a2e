// Package codegen compiles a canvas graph into a Python program for the
// OpenAI Agents SDK.
//
// Generation is a single synchronous pass over an immutable graph. It never
// fails: relationships that cannot be resolved degrade to warning comments
// in the emitted text and to entries in Result.Warnings. Calling Generate
// twice on the same graph yields byte-identical output.
//
// Sections are always emitted in the same order:
//
//   - imports, chosen by feature detection
//   - embedded code blocks
//   - function tool definitions
//   - MCP server definitions
//   - agent definitions, dependency ordered
//   - runner functions and the guarded entry point
package codegen
