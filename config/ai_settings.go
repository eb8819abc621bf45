package config

import (
	"strings"
	"sync"
)

// AISnapshot is an immutable view of the AI service settings for one call.
type AISnapshot struct {
	APIKey            string
	BaseURL           string
	Model             string
	GenerateMaxTokens int
	AuditMaxTokens    int
}

// Configured reports whether an API credential is present.
func (s AISnapshot) Configured() bool {
	return strings.TrimSpace(s.APIKey) != ""
}

// AISettings holds settings that the settings endpoint can change at runtime.
// Callers take a Snapshot per request, so updates apply to later calls only.
type AISettings struct {
	mu   sync.RWMutex
	snap AISnapshot
}

func NewAISettings(initial AISnapshot) *AISettings {
	return &AISettings{snap: initial}
}

func (s *AISettings) Snapshot() AISnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

func (s *AISettings) SetAPIKey(key string) {
	s.mu.Lock()
	s.snap.APIKey = strings.TrimSpace(key)
	s.mu.Unlock()
}

func (s *AISettings) SetModel(model string) {
	model = strings.TrimSpace(model)
	if model == "" {
		return
	}
	s.mu.Lock()
	s.snap.Model = model
	s.mu.Unlock()
}
