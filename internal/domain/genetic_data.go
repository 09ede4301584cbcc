package domain

import "time"

const ProcessingStatusCompleted = "completed"

// GeneticData es el perfil genetico (simulado) del usuario.
type GeneticData struct {
	ID               string         `json:"id"`
	UserID           string         `json:"user_id"`
	RawData          map[string]any `json:"raw_data"`
	AnalyzedTraits   map[string]any `json:"analyzed_traits"`
	RiskScores       map[string]any `json:"risk_scores"`
	ProcessingStatus string         `json:"processing_status"`
	CreatedAt        time.Time      `json:"created_at"`
}
