package entity

// FieldError is one validation problem on one field of a staged row.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// StagingRow is scratch space between the two pipeline stages, not an audit
// trail. Rows are keyed by (JobID, RowNumber), RowNumber is 1-based so error
// reports line up with the uploaded file.
type StagingRow struct {
	JobID               string       `json:"job_id"`
	RowNumber           int          `json:"row_number"`
	Name                string       `json:"name"`
	Email               string       `json:"email"`
	Phone               string       `json:"phone"`
	HomeState           string       `json:"home_state"`
	City                string       `json:"city"`
	ClubRole            ClubRole     `json:"club_role"`
	SignatureTechniques []string     `json:"signature_techniques"`
	EmergencyContact    string       `json:"emergency_contact"`
	BoatRegistration    string       `json:"boat_registration"`
	ValidationErrors    []FieldError `json:"validation_errors"`
	IsDuplicate         bool         `json:"is_duplicate"`
	IsValid             bool         `json:"is_valid"`
}

// Classify derives IsValid from the other two flags. A row is importable iff
// it has no field errors and its email is not already taken.
func (r *StagingRow) Classify() {
	r.IsValid = len(r.ValidationErrors) == 0 && !r.IsDuplicate
}
