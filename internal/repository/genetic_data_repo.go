package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"helix-api/internal/domain"
)

type GeneticDataRepository interface {
	Create(ctx context.Context, data domain.GeneticData) error
	// GetByUserID devuelve el perfil genetico mas reciente del usuario.
	GetByUserID(ctx context.Context, userID string) (domain.GeneticData, error)
}

type PgGeneticDataRepository struct {
	pool *pgxpool.Pool
}

func NewPgGeneticDataRepository(pool *pgxpool.Pool) *PgGeneticDataRepository {
	return &PgGeneticDataRepository{pool: pool}
}

func (r *PgGeneticDataRepository) Create(ctx context.Context, data domain.GeneticData) error {
	const query = `
		INSERT INTO genetic_data (id, user_id, raw_data, analyzed_traits, risk_scores, processing_status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		data.ID,
		data.UserID,
		data.RawData,
		data.AnalyzedTraits,
		data.RiskScores,
		data.ProcessingStatus,
		data.CreatedAt,
	)
	return err
}

func (r *PgGeneticDataRepository) GetByUserID(ctx context.Context, userID string) (domain.GeneticData, error) {
	const query = `
		SELECT id, user_id, raw_data, analyzed_traits, risk_scores, processing_status, created_at
		FROM genetic_data
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	var data domain.GeneticData
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&data.ID,
		&data.UserID,
		&data.RawData,
		&data.AnalyzedTraits,
		&data.RiskScores,
		&data.ProcessingStatus,
		&data.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.GeneticData{}, err
	}
	return data, err
}
