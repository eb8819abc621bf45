// Package ai shapes prompts for the external language model and normalises its replies.
package ai

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/AgentChief/accredis/config"
	"github.com/AgentChief/accredis/metrics"
	"github.com/AgentChief/accredis/models"
	"github.com/AgentChief/accredis/utils"
)

const (
	opGenerate = "generate"
	opAudit    = "audit"
)

// AuditReport is the normalised result of a compliance audit.
type AuditReport struct {
	Score            float64                  `json:"score"`
	ComplianceIssues []models.ComplianceIssue `json:"compliance_issues"`
	Recommendations  []string                 `json:"recommendations"`
	RACGPCoverage    map[string]bool          `json:"racgp_coverage"`
	Summary          string                   `json:"summary,omitempty"`
	Model            string                   `json:"model,omitempty"`
}

// Gateway wraps the external model. Each call is made once; failures are not retried.
type Gateway struct {
	settings *config.AISettings
	client   Completer
	log      zerolog.Logger
}

func NewGateway(settings *config.AISettings, client Completer, logger zerolog.Logger) *Gateway {
	if client == nil {
		client = OpenAIClient{}
	}
	return &Gateway{
		settings: settings,
		client:   client,
		log:      logger.With().Str("component", "ai").Logger(),
	}
}

// Generate asks the model for a structured policy document and returns its raw Markdown.
func (g *Gateway) Generate(ctx context.Context, prompt, jurisdiction, category string) (string, error) {
	snap := g.settings.Snapshot()
	if !snap.Configured() {
		return "", utils.ServiceUnavailable("AI service not configured")
	}

	text, err := g.call(ctx, opGenerate, snap, ChatRequest{
		System:    generationInstruction(jurisdiction, category),
		User:      prompt,
		Model:     snap.Model,
		MaxTokens: snap.GenerateMaxTokens,
	})
	if err != nil {
		return "", utils.ExternalFailure("document generation failed", err)
	}
	return text, nil
}

// Audit asks the model for a JSON compliance report and parses it.
func (g *Gateway) Audit(ctx context.Context, content, jurisdiction string) (*AuditReport, error) {
	snap := g.settings.Snapshot()
	if !snap.Configured() {
		return nil, utils.ServiceUnavailable("AI service not configured")
	}

	text, err := g.call(ctx, opAudit, snap, ChatRequest{
		System:    auditInstruction(jurisdiction),
		User:      auditUserMessage(content),
		Model:     snap.Model,
		MaxTokens: snap.AuditMaxTokens,
		JSON:      true,
	})
	if err != nil {
		return nil, utils.ExternalFailure("document audit failed", err)
	}

	report, err := ParseAudit(text)
	if err != nil {
		g.log.Warn().Err(err).Int("reply_len", len(text)).Msg("unparseable audit reply")
		return nil, utils.ExternalFailure("document audit returned an unreadable report", err)
	}
	report.Model = snap.Model
	return report, nil
}

func (g *Gateway) call(ctx context.Context, op string, snap config.AISnapshot, req ChatRequest) (string, error) {
	start := time.Now()
	text, err := g.client.Complete(ctx, snap, req)
	took := time.Since(start)
	metrics.ObserveAICall(op, took, err)

	evt := g.log.Info()
	if err != nil {
		evt = g.log.Error().Err(err)
	}
	evt.Str("operation", op).
		Str("model", req.Model).
		Int("max_tokens", req.MaxTokens).
		Dur("latency", took).
		Msg("ai call")

	if err == nil && text == "" {
		return "", errEmptyReply
	}
	return text, err
}
