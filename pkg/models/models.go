// Package models defines the shared data model for the sentrascan control
// plane: scan records, the inter-agent payload shape, and the fixed set of
// agent identifiers that make up the pipeline.
package models

import (
	"strings"
	"time"
)

// ── Agent identifiers ────────────────────────────────────────

// AgentID names one sub-agent in the pipeline. The set is fixed: the
// controller always runs the same agents in the same order.
type AgentID string

const (
	AgentThreatIntel AgentID = "threatintel_agent"
	AgentOSINT       AgentID = "osint_agent"
	AgentCorrelation AgentID = "correlation_agent"
	AgentRAG         AgentID = "rag_agent"
	AgentReport      AgentID = "report_agent"
	AgentSelfTest    AgentID = "selftest_agent"
	AgentAlert       AgentID = "alert_agent"
)

// ── Payloads & messages ──────────────────────────────────────

// Payload is the unit of data passed between agents. Stage outputs are
// payloads too; adapter failures appear as an "error" key rather than a
// Go error, so a broken integration degrades one stage without aborting
// the run.
type Payload map[string]any

// Get returns the value for key, or nil if absent.
func (p Payload) Get(key string) any {
	if p == nil {
		return nil
	}
	return p[key]
}

// GetPayload returns the nested payload under key, or an empty Payload.
func (p Payload) GetPayload(key string) Payload {
	switch v := p.Get(key).(type) {
	case Payload:
		return v
	case map[string]any:
		return Payload(v)
	}
	return Payload{}
}

// GetString returns the string under key, or "".
func (p Payload) GetString(key string) string {
	s, _ := p.Get(key).(string)
	return s
}

// HasError reports whether the payload carries an adapter error marker.
func (p Payload) HasError() bool {
	_, ok := p["error"]
	return ok
}

// ErrorPayload builds the canonical soft-failure shape.
func ErrorPayload(msg string) Payload {
	return Payload{"error": msg}
}

// Message is an addressed unit of work between two agents. Immutable once
// constructed; the routing layer only reads it.
type Message struct {
	From     AgentID `json:"from"`
	To       AgentID `json:"to"`
	TaskType string  `json:"type"`
	Payload  Payload `json:"payload"`
}

// NewMessage constructs an addressed message.
func NewMessage(from, to AgentID, taskType string, payload Payload) Message {
	return Message{From: from, To: to, TaskType: taskType, Payload: payload}
}

// ── Query classification ─────────────────────────────────────

// QueryKind classifies a scan query by shape.
type QueryKind string

const (
	QueryEmail  QueryKind = "email"
	QueryDomain QueryKind = "domain"
	QueryIP     QueryKind = "ip"
)

// ClassifyQuery applies the shape rules: "@" means email, "." means domain,
// anything else is treated as IP-like.
func ClassifyQuery(query string) QueryKind {
	switch {
	case strings.Contains(query, "@"):
		return QueryEmail
	case strings.Contains(query, "."):
		return QueryDomain
	default:
		return QueryIP
	}
}

// ── Scan records ─────────────────────────────────────────────

// ScanStatus is the persisted outcome of a run, derived solely from the
// selftest stage: complete iff selftest passed.
type ScanStatus string

const (
	ScanStatusComplete ScanStatus = "complete"
	ScanStatusIssue    ScanStatus = "issue"
)

// Stage keys of the aggregate result. Every persisted record carries all
// seven, even when a stage degraded to an error payload.
const (
	StageThreatIntel = "threatintel"
	StageOSINT       = "osint"
	StageCorrelation = "correlation"
	StageRAG         = "rag"
	StageReport      = "report"
	StageSelfTest    = "selftest"
	StageAlert       = "alert"
)

// StageKeys lists the aggregate's stage keys in pipeline order.
var StageKeys = []string{
	StageThreatIntel, StageOSINT, StageCorrelation, StageRAG,
	StageReport, StageSelfTest, StageAlert,
}

// ScanRecord is the aggregate outcome of one orchestration run. Created in
// memory during the run, written once, read-only thereafter.
type ScanRecord struct {
	ID        string             `json:"scan_id"`
	Query     string             `json:"query"`
	Status    ScanStatus         `json:"status"`
	Timestamp time.Time          `json:"timestamp"`
	Results   map[string]Payload `json:"results"`
}

// StatusFromResults derives the record status from the selftest stage.
func StatusFromResults(results map[string]Payload) ScanStatus {
	if results[StageSelfTest].GetString("status") == SelfTestPassed {
		return ScanStatusComplete
	}
	return ScanStatusIssue
}

// ── Self-test ────────────────────────────────────────────────

// Self-test verdicts.
const (
	SelfTestPassed = "PASSED"
	SelfTestFailed = "FAILED"
)
