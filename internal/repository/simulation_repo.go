package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"helix-api/internal/domain"
)

// SimulationRepository persiste las corridas de simulacion de cada usuario.
type SimulationRepository interface {
	Create(ctx context.Context, sim domain.Simulation) error
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.Simulation, error)
	GetByID(ctx context.Context, id string) (domain.Simulation, error)
	// Stats cuenta las simulaciones del usuario y promedia accuracy_score sin leer los resultados.
	Stats(ctx context.Context, userID string) (domain.SimulationStats, error)
	// FindSimilar devuelve las k simulaciones del usuario mas cercanas por huella, excluyendo excludeID.
	FindSimilar(ctx context.Context, userID, excludeID string, fingerprint pgvector.Vector, k int) ([]domain.Simulation, error)
}

type PgSimulationRepository struct {
	pool *pgxpool.Pool
}

func NewPgSimulationRepository(pool *pgxpool.Pool) *PgSimulationRepository {
	return &PgSimulationRepository{pool: pool}
}

const simulationColumns = `id, user_id, simulation_name, selected_traits, parent1_data, parent2_data, results, accuracy_score, simulation_type, seed, fingerprint, created_at`

func (r *PgSimulationRepository) Create(ctx context.Context, sim domain.Simulation) error {
	const query = `
		INSERT INTO simulations (` + simulationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.pool.Exec(ctx, query,
		sim.ID,
		sim.UserID,
		sim.Name,
		sim.SelectedTraits,
		sim.Parent1,
		sim.Parent2,
		sim.Results,
		sim.AccuracyScore,
		sim.SimulationType,
		sim.Seed,
		sim.Fingerprint,
		sim.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert simulation: %w", err)
	}
	return nil
}

// ListByUser devuelve las simulaciones mas recientes primero. limit <= 0 no limita.
func (r *PgSimulationRepository) ListByUser(ctx context.Context, userID string, limit int) ([]domain.Simulation, error) {
	query := `SELECT ` + simulationColumns + ` FROM simulations WHERE user_id = $1 ORDER BY created_at DESC`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list simulations: %w", err)
	}
	return collectSimulations(rows)
}

func (r *PgSimulationRepository) GetByID(ctx context.Context, id string) (domain.Simulation, error) {
	query := `SELECT ` + simulationColumns + ` FROM simulations WHERE id = $1`
	sim, err := scanSimulation(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Simulation{}, err
	}
	return sim, err
}

func (r *PgSimulationRepository) Stats(ctx context.Context, userID string) (domain.SimulationStats, error) {
	const query = `
		SELECT COUNT(*), COALESCE(AVG(accuracy_score), 0)::float8
		FROM simulations
		WHERE user_id = $1
	`
	var stats domain.SimulationStats
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&stats.Count, &stats.AverageAccuracy); err != nil {
		return domain.SimulationStats{}, fmt.Errorf("simulation stats: %w", err)
	}
	return stats, nil
}

func (r *PgSimulationRepository) FindSimilar(ctx context.Context, userID, excludeID string, fingerprint pgvector.Vector, k int) ([]domain.Simulation, error) {
	if k <= 0 {
		k = 5
	}
	query := `
		SELECT ` + simulationColumns + `
		FROM simulations
		WHERE user_id = $1 AND id <> $2
		ORDER BY fingerprint <-> $3
		LIMIT $4
	`
	rows, err := r.pool.Query(ctx, query, userID, excludeID, fingerprint, k)
	if err != nil {
		return nil, fmt.Errorf("find similar simulations: %w", err)
	}
	return collectSimulations(rows)
}

func collectSimulations(rows pgx.Rows) ([]domain.Simulation, error) {
	defer rows.Close()

	sims := []domain.Simulation{}
	for rows.Next() {
		sim, err := scanSimulation(rows)
		if err != nil {
			return nil, err
		}
		sims = append(sims, sim)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sims, nil
}

func scanSimulation(row pgx.Row) (domain.Simulation, error) {
	var sim domain.Simulation
	err := row.Scan(
		&sim.ID,
		&sim.UserID,
		&sim.Name,
		&sim.SelectedTraits,
		&sim.Parent1,
		&sim.Parent2,
		&sim.Results,
		&sim.AccuracyScore,
		&sim.SimulationType,
		&sim.Seed,
		&sim.Fingerprint,
		&sim.CreatedAt,
	)
	return sim, err
}
