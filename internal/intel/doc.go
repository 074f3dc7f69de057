// Package intel wraps the external reputation, OSINT, search, and LLM
// sources behind small typed clients. Every client applies a bounded
// timeout, takes a context on each call, and returns a fixed-shape result
// or an error — callers (the sub-agents) convert errors into soft-failure
// payloads so a broken source never aborts a scan.
package intel
