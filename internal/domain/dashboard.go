package domain

// Dashboard agrega lo que muestra el panel del usuario.
type Dashboard struct {
	SimulationCount   int          `json:"simulation_count"`
	AverageAccuracy   float64      `json:"average_accuracy"`
	RecentSimulations []Simulation `json:"recent_simulations"`
	GeneticProfile    *GeneticData `json:"genetic_profile"`
}

// SimulationStats es el agregado de simulaciones de un usuario. AverageAccuracy es 0 sin filas.
type SimulationStats struct {
	Count           int
	AverageAccuracy float64
}
