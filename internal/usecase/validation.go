package usecase

import (
	"regexp"
	"strings"

	"github.com/anglerclubs/roster-api/internal/entity"
)

// Conservative on purpose: the goal is catching obvious typos in a roster
// file, not full RFC 5322 coverage.
var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Digits with an optional leading +, after separators are stripped.
var phonePattern = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

var phoneSeparators = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")

func NormalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func NormalizePhone(raw string) string {
	return phoneSeparators.Replace(strings.TrimSpace(raw))
}

// ParseTechniques splits a comma-separated list into trimmed non-empty tokens.
func ParseTechniques(raw string) []string {
	var techniques []string
	for _, token := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(token); trimmed != "" {
			techniques = append(techniques, trimmed)
		}
	}
	return techniques
}

// BuildStagingRow normalizes one raw record and applies the per-field rules.
// Duplicate detection happens in the caller; IsValid is not derived here.
func BuildStagingRow(jobID string, rowNumber int, input RawRowInput) entity.StagingRow {
	row := entity.StagingRow{
		JobID:               jobID,
		RowNumber:           rowNumber,
		Name:                strings.TrimSpace(input.Name),
		Email:               NormalizeEmail(input.Email),
		HomeState:           strings.TrimSpace(input.HomeState),
		City:                strings.TrimSpace(input.City),
		SignatureTechniques: ParseTechniques(input.SignatureTechniques),
		EmergencyContact:    strings.TrimSpace(input.EmergencyContact),
		BoatRegistration:    strings.TrimSpace(input.BoatRegistration),
	}

	if row.Name == "" {
		row.ValidationErrors = append(row.ValidationErrors, entity.FieldError{Field: "name", Message: "Name is required"})
	}

	if row.Email == "" {
		row.ValidationErrors = append(row.ValidationErrors, entity.FieldError{Field: "email", Message: "Email is required"})
	} else if !emailPattern.MatchString(row.Email) {
		row.ValidationErrors = append(row.ValidationErrors, entity.FieldError{Field: "email", Message: "Invalid email format"})
	}

	role, ok := entity.NormalizeClubRole(input.ClubRole)
	if !ok {
		row.ValidationErrors = append(row.ValidationErrors, entity.FieldError{Field: "club_role", Message: "Invalid club role"})
	}
	row.ClubRole = role

	if phone := NormalizePhone(input.Phone); phone != "" {
		if !phonePattern.MatchString(phone) {
			row.ValidationErrors = append(row.ValidationErrors, entity.FieldError{Field: "phone", Message: "Invalid phone number"})
		}
		row.Phone = phone
	}

	return row
}
