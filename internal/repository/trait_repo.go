package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"helix-api/internal/domain"
)

// TraitRepository lee el catalogo de rasgos de referencia.
type TraitRepository interface {
	List(ctx context.Context) ([]domain.TraitInfo, error)
}

type PgTraitRepository struct {
	pool *pgxpool.Pool
}

func NewPgTraitRepository(pool *pgxpool.Pool) *PgTraitRepository {
	return &PgTraitRepository{pool: pool}
}

func (r *PgTraitRepository) List(ctx context.Context) ([]domain.TraitInfo, error) {
	const query = `
		SELECT id, name, icon
		FROM traits
		ORDER BY name
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var traits []domain.TraitInfo
	for rows.Next() {
		var t domain.TraitInfo
		if err := rows.Scan(&t.ID, &t.Name, &t.Icon); err != nil {
			return nil, err
		}
		traits = append(traits, t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return traits, nil
}
