package domain

import (
	"time"

	pgvector "github.com/pgvector/pgvector-go"

	"helix-api/internal/genetics"
)

const (
	SimulationTypeOffspring         = "offspring"
	SimulationTypeAdvancedOffspring = "advanced_offspring"
)

// Simulation es el registro persistido de una corrida.
type Simulation struct {
	ID             string                    `json:"id"`
	UserID         string                    `json:"user_id"`
	Name           string                    `json:"simulation_name"`
	SelectedTraits []string                  `json:"selected_traits"`
	Parent1        genetics.ParentDescriptor `json:"parent1_data"`
	Parent2        genetics.ParentDescriptor `json:"parent2_data"`
	Results        genetics.ResultSet        `json:"results"`
	AccuracyScore  float64                   `json:"accuracy_score"`
	SimulationType string                    `json:"simulation_type"`
	Seed           int64                     `json:"seed"`
	// Fingerprint guarda la probabilidad media por rasgo para buscar simulaciones parecidas.
	Fingerprint pgvector.Vector `json:"-"`
	CreatedAt   time.Time       `json:"created_at"`
}
