package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/AgentChief/accredis/models"
)

const maxTitleRunes = 100

var (
	headingRe  = regexp.MustCompile(`(?m)^#+\s*(.+)$`)
	markdownRe = regexp.MustCompile("[#*_`]")
	fenceRe    = regexp.MustCompile("(?s)^\\s*```[a-zA-Z]*\\s*\\n?(.*?)\\n?\\s*```\\s*$")
)

// ExtractTitle picks a document title from generated Markdown: the first heading line,
// else the first sentence cut to 100 characters plus an ellipsis. Residual
// emphasis, heading and code markers are stripped.
func ExtractTitle(text string) string {
	var title string
	if m := headingRe.FindStringSubmatch(text); m != nil {
		title = strings.TrimSpace(m[1])
	} else {
		first := strings.SplitN(text, ".", 2)[0]
		runes := []rune(first)
		if len(runes) > maxTitleRunes {
			title = string(runes[:maxTitleRunes]) + "..."
		} else {
			title = first
		}
	}
	return strings.TrimSpace(markdownRe.ReplaceAllString(title, ""))
}

type rawIssue struct {
	Standard    string `json:"standard"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
	Issue       string `json:"issue"`
}

type rawReport struct {
	Score            *float64                   `json:"score"`
	ComplianceIssues []json.RawMessage          `json:"compliance_issues"`
	Recommendations  []string                   `json:"recommendations"`
	RACGPCoverage    map[string]json.RawMessage `json:"racgp_coverage"`
	Summary          string                     `json:"summary"`
}

// ParseAudit decodes the model's JSON audit report. Code fences and surrounding
// prose are tolerated; the score is clamped into [0, 100].
func ParseAudit(text string) (*AuditReport, error) {
	body := strings.TrimSpace(text)
	if m := fenceRe.FindStringSubmatch(body); m != nil {
		body = m[1]
	}
	start := strings.Index(body, "{")
	end := strings.LastIndex(body, "}")
	if start < 0 || end <= start {
		return nil, errors.New("no JSON object in audit reply")
	}

	var raw rawReport
	if err := json.Unmarshal([]byte(body[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("decode audit reply: %w", err)
	}
	if raw.Score == nil {
		return nil, errors.New("audit reply has no score")
	}

	report := &AuditReport{
		Score:            clampScore(*raw.Score),
		ComplianceIssues: make([]models.ComplianceIssue, 0, len(raw.ComplianceIssues)),
		Recommendations:  []string{},
		RACGPCoverage:    make(map[string]bool, len(raw.RACGPCoverage)),
		Summary:          strings.TrimSpace(raw.Summary),
	}

	for _, item := range raw.ComplianceIssues {
		if issue, ok := decodeIssue(item); ok {
			report.ComplianceIssues = append(report.ComplianceIssues, issue)
		}
	}
	for _, rec := range raw.Recommendations {
		if rec = strings.TrimSpace(rec); rec != "" {
			report.Recommendations = append(report.Recommendations, rec)
		}
	}
	for standard, v := range raw.RACGPCoverage {
		report.RACGPCoverage[standard] = coverageValue(v)
	}
	return report, nil
}

func clampScore(s float64) float64 {
	switch {
	case s < 0:
		return 0
	case s > 100:
		return 100
	default:
		return s
	}
}

// decodeIssue accepts either a bare string or an object.
func decodeIssue(msg json.RawMessage) (models.ComplianceIssue, bool) {
	var s string
	if err := json.Unmarshal(msg, &s); err == nil {
		s = strings.TrimSpace(s)
		return models.ComplianceIssue{Description: s}, s != ""
	}
	var ri rawIssue
	if err := json.Unmarshal(msg, &ri); err != nil {
		return models.ComplianceIssue{}, false
	}
	desc := strings.TrimSpace(ri.Description)
	if desc == "" {
		desc = strings.TrimSpace(ri.Issue)
	}
	if desc == "" {
		return models.ComplianceIssue{}, false
	}
	return models.ComplianceIssue{
		Standard:    strings.TrimSpace(ri.Standard),
		Severity:    strings.ToLower(strings.TrimSpace(ri.Severity)),
		Description: desc,
	}, true
}

func coverageValue(msg json.RawMessage) bool {
	var b bool
	if err := json.Unmarshal(msg, &b); err == nil {
		return b
	}
	var s string
	if err := json.Unmarshal(msg, &s); err == nil {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true", "yes", "covered", "met", "compliant":
			return true
		}
	}
	return false
}
