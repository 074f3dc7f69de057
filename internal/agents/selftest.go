package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/sentrascan/sentrascan/pkg/models"
)

// Abuse-confidence and reputation are expected to correlate: a score above
// anomalyAbuseThreshold with a non-negative reputation indicates a
// cross-source disagreement worth surfacing.
const anomalyAbuseThreshold = 80

// requiredFields lists, per agent, the fields a healthy result must carry.
// Order matters: issues are reported in declaration order.
var requiredFields = map[models.AgentID][]string{
	models.AgentThreatIntel: {"virustotal", "abuseipdb", "ipinfo"},
	models.AgentOSINT:       {"hibp", "hunter"},
	models.AgentCorrelation: {"analysis"},
	models.AgentRAG:         {"llm_summary"},
	models.AgentReport:      {"file"},
}

// SelfTestAgent validates another agent's output against the schema table
// and the threat-specific semantic checks.
type SelfTestAgent struct{}

// NewSelfTestAgent creates the validation agent.
func NewSelfTestAgent() *SelfTestAgent {
	return &SelfTestAgent{}
}

// Name implements Agent.
func (a *SelfTestAgent) Name() models.AgentID { return models.AgentSelfTest }

// HandleTask checks {agent_name, result} and returns PASSED, or FAILED with
// the issue list.
func (a *SelfTestAgent) HandleTask(ctx context.Context, payload models.Payload) models.Payload {
	agentName := models.AgentID(payload.GetString("agent_name"))
	result := payload.GetPayload("result")

	var issues []string

	for _, field := range requiredFields[agentName] {
		v, ok := result[field]
		switch {
		case !ok:
			issues = append(issues, "Missing field: "+field)
		case isEmpty(v):
			issues = append(issues, "Empty field: "+field)
		}
	}

	if agentName == models.AgentThreatIntel {
		issues = append(issues, a.checkThreatScores(result)...)
	}

	if len(issues) == 0 {
		return models.Payload{"status": models.SelfTestPassed, "message": "Agent output looks valid"}
	}
	return models.Payload{"status": models.SelfTestFailed, "issues": issues}
}

// checkThreatScores cross-checks the two maliciousness signals. Parse
// failures are reported as issues, never propagated.
func (a *SelfTestAgent) checkThreatScores(result models.Payload) []string {
	abuseScore, err := parseScore(result.GetPayload("abuseipdb").Get("abuseConfidenceScore"))
	if err != nil {
		return []string{"Error parsing fields: " + err.Error()}
	}
	reputation, err := parseScore(result.GetPayload("virustotal").Get("reputation"))
	if err != nil {
		return []string{"Error parsing fields: " + err.Error()}
	}

	if abuseScore > anomalyAbuseThreshold && reputation >= 0 {
		return []string{"Anomaly: High abuse score but reputation not flagged"}
	}
	return nil
}

// parseScore coerces a score field to an int. Absent values default to 0;
// non-numeric values are an error.
func parseScore(v any) (int, error) {
	switch n := v.(type) {
	case nil:
		return 0, nil
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		return int(i), err
	case string:
		return strconv.Atoi(n)
	default:
		return 0, fmt.Errorf("non-numeric score %T", v)
	}
}

// isEmpty mirrors falsiness for payload values: nil, "", empty maps and
// slices, and zero numbers all count as empty.
func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case bool:
		return !t
	case int:
		return t == 0
	case float64:
		return t == 0
	case models.Payload:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	case []any:
		return len(t) == 0
	}
	return false
}
