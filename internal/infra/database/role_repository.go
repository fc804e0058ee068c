package database

import (
	"context"
	"database/sql"

	"github.com/anglerclubs/roster-api/internal/entity"
)

type RoleRepository struct {
	DB *sql.DB
}

func NewRoleRepository(db *sql.DB) *RoleRepository {
	return &RoleRepository{DB: db}
}

// Grant upserts the (user, club) role so retries and re-imports converge on
// the latest roster instead of failing on the unique constraint.
func (r *RoleRepository) Grant(ctx context.Context, grant *entity.RoleGrant) error {
	query := `
		INSERT INTO club_roles (user_id, club_id, role, active)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, club_id) DO UPDATE SET
			role = EXCLUDED.role,
			active = EXCLUDED.active
	`

	_, err := r.DB.ExecContext(ctx, query, grant.UserID, grant.ClubID, grant.Role, grant.Active)
	return err
}
