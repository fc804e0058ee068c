package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/anglerclubs/roster-api/internal/entity"
	"github.com/anglerclubs/roster-api/internal/infra/http/middleware"
	"github.com/anglerclubs/roster-api/internal/usecase"
)

type ImportHandler struct {
	ValidateUC *usecase.StartValidationUseCase
	CommitUC   *usecase.CommitImportUseCase
	JobRepo    usecase.ImportJobRepositoryInterface
}

func NewImportHandler(
	validateUC *usecase.StartValidationUseCase,
	commitUC *usecase.CommitImportUseCase,
	jobRepo usecase.ImportJobRepositoryInterface,
) *ImportHandler {
	return &ImportHandler{
		ValidateUC: validateUC,
		CommitUC:   commitUC,
		JobRepo:    jobRepo,
	}
}

type createJobRequest struct {
	ClubID string `json:"club_id"`
}

// HandleCreate (POST /imports) creates the pending job record the pipeline
// stages run against.
func (h *ImportHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.ClubID == "" {
		http.Error(w, "club_id is required", http.StatusBadRequest)
		return
	}

	job := entity.NewImportJob(req.ClubID)
	if err := h.JobRepo.Create(r.Context(), job); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, job)
}

type validateRequest struct {
	ClubID string                `json:"club_id"`
	Rows   []usecase.RawRowInput `json:"rows"`
}

// HandleValidate (POST /imports/{jobID}/validate) runs the validation stage.
func (h *ImportHandler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	output, err := h.ValidateUC.Execute(r.Context(), usecase.StartValidationInput{
		JobID:  jobID,
		ClubID: req.ClubID,
		Rows:   req.Rows,
	})
	if err != nil {
		writeUseCaseError(w, err)
		return
	}

	middleware.RecordRowsValidated(output.ValidRows, output.InvalidRows)
	writeJSON(w, http.StatusOK, output)
}

type commitRequest struct {
	ClubID string `json:"club_id"`
}

// HandleCommit (POST /imports/{jobID}/commit) runs the commit stage.
func (h *ImportHandler) HandleCommit(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	var req commitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	output, err := h.CommitUC.Execute(r.Context(), usecase.CommitImportInput{
		JobID:  jobID,
		ClubID: req.ClubID,
	})
	if err != nil {
		writeUseCaseError(w, err)
		return
	}

	middleware.RecordRowsCommitted(output.SuccessCount, output.FailureCount)
	writeJSON(w, http.StatusOK, output)
}

// HandleGet (GET /imports/{jobID}) returns the job record as-is.
func (h *ImportHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	job, err := h.JobRepo.FindByID(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, entity.ErrJobNotFound) {
			http.Error(w, "import job not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, job)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeUseCaseError maps the usecase error taxonomy onto HTTP statuses:
// domain errors are the caller's problem, technical errors are ours.
func writeUseCaseError(w http.ResponseWriter, err error) {
	var domainErr *usecase.DomainError
	if errors.As(err, &domainErr) {
		status := http.StatusUnprocessableEntity
		switch domainErr.Code {
		case "JOB_NOT_FOUND":
			status = http.StatusNotFound
		case "INVALID_JOB_STATE", "COMMIT_IN_PROGRESS":
			status = http.StatusConflict
		case "INVALID_INPUT", "EMPTY_IMPORT":
			status = http.StatusBadRequest
		}
		writeJSON(w, status, map[string]string{"code": domainErr.Code, "error": domainErr.Message})
		return
	}

	var techErr *usecase.TechnicalError
	if errors.As(err, &techErr) {
		if techErr.Code == "IDENTITY_PROVIDER_ERROR" {
			middleware.RecordIntegrationError("identity")
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"code": techErr.Code, "error": techErr.Message})
		return
	}

	http.Error(w, err.Error(), http.StatusInternalServerError)
}
