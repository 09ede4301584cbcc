package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"helix-api/internal/domain"
)

type PartnerRepository interface {
	Upsert(ctx context.Context, partner domain.Partner) (domain.Partner, error)
	GetByUserID(ctx context.Context, userID string) (domain.Partner, error)
}

type PgPartnerRepository struct {
	pool *pgxpool.Pool
}

func NewPgPartnerRepository(pool *pgxpool.Pool) *PgPartnerRepository {
	return &PgPartnerRepository{pool: pool}
}

const partnerColumns = `id, user_id, name, height_cm, iq, eye_color, population, created_at, updated_at`

// Upsert guarda una pareja por usuario; si ya existe conserva id y created_at.
func (r *PgPartnerRepository) Upsert(ctx context.Context, partner domain.Partner) (domain.Partner, error) {
	const query = `
		INSERT INTO partners (` + partnerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id)
		DO UPDATE SET
			name = EXCLUDED.name,
			height_cm = EXCLUDED.height_cm,
			iq = EXCLUDED.iq,
			eye_color = EXCLUDED.eye_color,
			population = EXCLUDED.population,
			updated_at = EXCLUDED.updated_at
		RETURNING ` + partnerColumns
	return scanPartner(r.pool.QueryRow(ctx, query,
		partner.ID,
		partner.UserID,
		partner.Name,
		partner.HeightCM,
		partner.IQ,
		partner.EyeColor,
		partner.Population,
		partner.CreatedAt,
		partner.UpdatedAt,
	))
}

func (r *PgPartnerRepository) GetByUserID(ctx context.Context, userID string) (domain.Partner, error) {
	query := `SELECT ` + partnerColumns + ` FROM partners WHERE user_id = $1`
	return scanPartner(r.pool.QueryRow(ctx, query, userID))
}

func scanPartner(row pgx.Row) (domain.Partner, error) {
	var p domain.Partner
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Name,
		&p.HeightCM,
		&p.IQ,
		&p.EyeColor,
		&p.Population,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Partner{}, err
	}
	return p, err
}
