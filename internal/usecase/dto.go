package usecase

import "github.com/anglerclubs/roster-api/internal/entity"

// RawRowInput is one candidate member record, exactly as parsed from one line
// of the uploaded roster file. Normalization happens during validation, never
// at the transport edge.
type RawRowInput struct {
	Name                string `json:"name"`
	Email               string `json:"email"`
	Phone               string `json:"phone"`
	HomeState           string `json:"home_state"`
	City                string `json:"city"`
	ClubRole            string `json:"club_role"`
	SignatureTechniques string `json:"signature_techniques"`
	EmergencyContact    string `json:"emergency_contact"`
	BoatRegistration    string `json:"boat_registration"`
}

type StartValidationInput struct {
	JobID  string        `json:"job_id"`
	ClubID string        `json:"club_id"`
	Rows   []RawRowInput `json:"rows"`
}

type StartValidationOutput struct {
	JobID       string `json:"jobId"`
	TotalRows   int    `json:"totalRows"`
	ValidRows   int    `json:"validRows"`
	InvalidRows int    `json:"invalidRows"`
}

type CommitImportInput struct {
	JobID  string `json:"job_id"`
	ClubID string `json:"club_id"`
}

type CommitImportOutput struct {
	SuccessCount int               `json:"successCount"`
	FailureCount int               `json:"failureCount"`
	Errors       []entity.RowError `json:"errors"`
}
