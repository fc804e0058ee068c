package entity

import "strings"

type ClubRole string

const (
	RoleMember               ClubRole = "member"
	RolePresident            ClubRole = "president"
	RoleVicePresident        ClubRole = "vice_president"
	RoleSecretary            ClubRole = "secretary"
	RoleTreasurer            ClubRole = "treasurer"
	RoleTournamentDirector   ClubRole = "tournament_director"
	RoleConservationDirector ClubRole = "conservation_director"
)

var validRoles = map[ClubRole]bool{
	RoleMember:               true,
	RolePresident:            true,
	RoleVicePresident:        true,
	RoleSecretary:            true,
	RoleTreasurer:            true,
	RoleTournamentDirector:   true,
	RoleConservationDirector: true,
}

// NormalizeClubRole lowercases and underscores the raw value ("Vice President"
// -> "vice_president"). Empty input defaults to member. The second return is
// false when the normalized value is not a known role.
func NormalizeClubRole(raw string) (ClubRole, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return RoleMember, true
	}
	normalized := ClubRole(strings.ReplaceAll(strings.ToLower(trimmed), " ", "_"))
	return normalized, validRoles[normalized]
}

// RoleGrant ties an identity to a club with a role. Active grants are what the
// permission checks elsewhere in the product read.
type RoleGrant struct {
	UserID string   `json:"user_id"`
	ClubID string   `json:"club_id"`
	Role   ClubRole `json:"role"`
	Active bool     `json:"active"`
}
