package database

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/anglerclubs/roster-api/internal/entity"
)

type ProfileRepository struct {
	DB *sql.DB
}

func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{DB: db}
}

// Upsert keeps the write idempotent: a reconcile retry after a half-failed
// commit must not trip over the first attempt.
func (r *ProfileRepository) Upsert(ctx context.Context, profile *entity.MemberProfile) error {
	query := `
		INSERT INTO member_profiles
			(user_id, club_id, name, city, home_state, signature_techniques, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id) DO UPDATE SET
			club_id = EXCLUDED.club_id,
			name = EXCLUDED.name,
			city = EXCLUDED.city,
			home_state = EXCLUDED.home_state,
			signature_techniques = EXCLUDED.signature_techniques,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.DB.ExecContext(ctx, query,
		profile.UserID,
		profile.ClubID,
		profile.Name,
		profile.City,
		profile.HomeState,
		pq.Array(profile.SignatureTechniques),
		profile.CreatedAt,
		profile.UpdatedAt,
	)
	return err
}
