// Package report renders scan results into a markdown incident report and
// writes it to the reports directory.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"
)

const reportTemplate = `# Security Scan Report

**Query:** {{.Query}}
**Generated:** {{.Timestamp}}

## Reputation

- VirusTotal reputation: {{.VTReputation}}
- AbuseIPDB confidence score: {{.AbuseScore}}
- Location: {{.Geo}}

## Breach & Contact Discovery

- Breach data: {{.BreachData}}
- Contact data: {{.ContactData}}

## AI Analysis

{{.Analysis}}
`

// Data carries the fields the report template needs. Missing upstream
// values arrive as "-" or "N/A" placeholders set by the caller.
type Data struct {
	Query        string
	VTReputation string
	AbuseScore   string
	Geo          string
	BreachData   string
	ContactData  string
	Analysis     string
	Timestamp    string
}

// Renderer writes markdown reports to a directory.
type Renderer struct {
	dir  string
	tmpl *template.Template
}

// NewRenderer creates a renderer writing into dir. The directory is created
// on first render.
func NewRenderer(dir string) *Renderer {
	return &Renderer{
		dir:  dir,
		tmpl: template.Must(template.New("report").Parse(reportTemplate)),
	}
}

// Render fills the template and writes report_<query>.md. Returns the path
// of the written file.
func (r *Renderer) Render(data Data) (string, error) {
	if data.Timestamp == "" {
		data.Timestamp = time.Now().UTC().Format("2006-01-02 15:04:05")
	}

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}

	var sb strings.Builder
	if err := r.tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}

	name := fmt.Sprintf("report_%s.md", sanitize(data.Query))
	path := filepath.Join(r.dir, name)
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

// sanitize keeps report filenames filesystem-safe for email and URL queries.
func sanitize(query string) string {
	if query == "" {
		return "unknown"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, query)
}
