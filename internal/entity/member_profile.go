package entity

import "time"

// MemberProfile is the club-facing record behind an identity. The pipeline
// writes it best-effort: a member who can authenticate but has a thin profile
// beats a member who cannot log in at all.
type MemberProfile struct {
	UserID              string    `json:"user_id"`
	ClubID              string    `json:"club_id"`
	Name                string    `json:"name"`
	City                string    `json:"city"`
	HomeState           string    `json:"home_state"`
	SignatureTechniques []string  `json:"signature_techniques"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}
