package agents

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/sentrascan/sentrascan/internal/intel"
	"github.com/sentrascan/sentrascan/pkg/models"
)

// ThreatIntelAgent aggregates IP reputation from VirusTotal, AbuseIPDB, and
// ipinfo.io. Each source that fails contributes an error payload in its
// slot; the other sources still report.
type ThreatIntelAgent struct {
	vt     *intel.VirusTotalClient
	abuse  *intel.AbuseIPDBClient
	ipinfo *intel.IPInfoClient
}

// NewThreatIntelAgent wires the three reputation clients.
func NewThreatIntelAgent(vt *intel.VirusTotalClient, abuse *intel.AbuseIPDBClient, ipinfo *intel.IPInfoClient) *ThreatIntelAgent {
	return &ThreatIntelAgent{vt: vt, abuse: abuse, ipinfo: ipinfo}
}

// Name implements Agent.
func (a *ThreatIntelAgent) Name() models.AgentID { return models.AgentThreatIntel }

// HandleTask looks the query up in all three sources and returns
// {ip, virustotal, abuseipdb, ipinfo}.
func (a *ThreatIntelAgent) HandleTask(ctx context.Context, payload models.Payload) models.Payload {
	ip := payload.GetString("query")
	result := models.Payload{"ip": ip}

	if vt, err := a.vt.ScanIP(ctx, ip); err != nil {
		log.Warn().Err(err).Str("ip", ip).Msg("VirusTotal lookup failed")
		result["virustotal"] = models.ErrorPayload(err.Error())
	} else {
		result["virustotal"] = models.Payload{
			"reputation":          vt.Reputation,
			"last_analysis_stats": vt.LastAnalysisStats,
		}
	}

	if abuse, err := a.abuse.CheckIP(ctx, ip); err != nil {
		log.Warn().Err(err).Str("ip", ip).Msg("AbuseIPDB lookup failed")
		result["abuseipdb"] = models.ErrorPayload(err.Error())
	} else {
		result["abuseipdb"] = models.Payload{
			"abuseConfidenceScore": abuse.AbuseConfidenceScore,
			"totalReports":         abuse.TotalReports,
		}
	}

	if geo, err := a.ipinfo.Lookup(ctx, ip); err != nil {
		log.Warn().Err(err).Str("ip", ip).Msg("IPInfo lookup failed")
		result["ipinfo"] = models.ErrorPayload(err.Error())
	} else {
		result["ipinfo"] = models.Payload{
			"ip":       geo.IP,
			"hostname": geo.Hostname,
			"city":     geo.City,
			"region":   geo.Region,
			"country":  geo.Country,
			"loc":      geo.Loc,
			"org":      geo.Org,
			"postal":   geo.Postal,
			"timezone": geo.Timezone,
		}
	}

	return result
}
