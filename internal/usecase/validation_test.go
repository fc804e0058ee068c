package usecase_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/anglerclubs/roster-api/internal/entity"
	"github.com/anglerclubs/roster-api/internal/usecase"
)

func TestNormalizeEmailIdempotent(t *testing.T) {
	once := usecase.NormalizeEmail("  JANE@X.COM ")
	assert.Equal(t, "jane@x.com", once)
	assert.Equal(t, once, usecase.NormalizeEmail(once))
}

func TestNormalizeClubRoleIdempotent(t *testing.T) {
	role, ok := entity.NormalizeClubRole("Vice President")
	assert.True(t, ok)
	assert.Equal(t, entity.RoleVicePresident, role)

	again, ok := entity.NormalizeClubRole(string(role))
	assert.True(t, ok)
	assert.Equal(t, role, again)
}

func TestNormalizeClubRoleDefaultsToMember(t *testing.T) {
	role, ok := entity.NormalizeClubRole("")
	assert.True(t, ok)
	assert.Equal(t, entity.RoleMember, role)

	role, ok = entity.NormalizeClubRole("   ")
	assert.True(t, ok)
	assert.Equal(t, entity.RoleMember, role)
}

func TestNormalizeClubRoleRejectsUnknown(t *testing.T) {
	_, ok := entity.NormalizeClubRole("grand wizard")
	assert.False(t, ok)
}

func TestParseTechniques(t *testing.T) {
	assert.Equal(t,
		[]string{"drop shot", "jigging", "topwater"},
		usecase.ParseTechniques(" drop shot, jigging , ,topwater,"),
	)
	assert.Nil(t, usecase.ParseTechniques(""))
	assert.Nil(t, usecase.ParseTechniques(" , ,"))
}

func TestBuildStagingRowNormalizesFields(t *testing.T) {
	row := usecase.BuildStagingRow("job-1", 1, usecase.RawRowInput{
		Name:                " Jane Doe ",
		Email:               "JANE@X.COM",
		Phone:               "(55) 123-456 789",
		ClubRole:            "Tournament Director",
		SignatureTechniques: "jigging, fly",
		HomeState:           " SP ",
		City:                " Campinas ",
	})

	assert.Empty(t, row.ValidationErrors)
	assert.Equal(t, "Jane Doe", row.Name)
	assert.Equal(t, "jane@x.com", row.Email)
	assert.Equal(t, "55123456789", row.Phone)
	assert.Equal(t, entity.RoleTournamentDirector, row.ClubRole)
	assert.Equal(t, []string{"jigging", "fly"}, row.SignatureTechniques)
	assert.Equal(t, "SP", row.HomeState)
	assert.Equal(t, "Campinas", row.City)
}

func TestBuildStagingRowMissingName(t *testing.T) {
	row := usecase.BuildStagingRow("job-1", 2, usecase.RawRowInput{
		Name:  "",
		Email: "bob@x.com",
	})

	assert.Contains(t, row.ValidationErrors, entity.FieldError{Field: "name", Message: "Name is required"})
}

func TestBuildStagingRowBadEmail(t *testing.T) {
	row := usecase.BuildStagingRow("job-1", 3, usecase.RawRowInput{
		Name:  "A",
		Email: "bad-email",
	})

	var emailErrors []entity.FieldError
	for _, fe := range row.ValidationErrors {
		if fe.Field == "email" {
			emailErrors = append(emailErrors, fe)
		}
	}
	assert.Len(t, emailErrors, 1)
	assert.Equal(t, "Invalid email format", emailErrors[0].Message)
}

func TestBuildStagingRowEmptyEmail(t *testing.T) {
	row := usecase.BuildStagingRow("job-1", 4, usecase.RawRowInput{Name: "A"})
	assert.Contains(t, row.ValidationErrors, entity.FieldError{Field: "email", Message: "Email is required"})
}

func TestBuildStagingRowBadPhone(t *testing.T) {
	row := usecase.BuildStagingRow("job-1", 5, usecase.RawRowInput{
		Name:  "A",
		Email: "a@x.com",
		Phone: "call me maybe",
	})
	assert.Contains(t, row.ValidationErrors, entity.FieldError{Field: "phone", Message: "Invalid phone number"})
}

func TestBuildStagingRowPhoneOptional(t *testing.T) {
	row := usecase.BuildStagingRow("job-1", 6, usecase.RawRowInput{
		Name:  "A",
		Email: "a@x.com",
	})
	assert.Empty(t, row.ValidationErrors)
	assert.Empty(t, row.Phone)
}

func TestBuildStagingRowInvalidRole(t *testing.T) {
	row := usecase.BuildStagingRow("job-1", 7, usecase.RawRowInput{
		Name:     "A",
		Email:    "a@x.com",
		ClubRole: "fish whisperer",
	})
	assert.Contains(t, row.ValidationErrors, entity.FieldError{Field: "club_role", Message: "Invalid club role"})
}

func TestClassify(t *testing.T) {
	clean := entity.StagingRow{}
	clean.Classify()
	assert.True(t, clean.IsValid)

	dup := entity.StagingRow{IsDuplicate: true}
	dup.Classify()
	assert.False(t, dup.IsValid)

	broken := entity.StagingRow{ValidationErrors: []entity.FieldError{{Field: "name", Message: "Name is required"}}}
	broken.Classify()
	assert.False(t, broken.IsValid)
}
