package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"charityprep/internal/annualreturn"
	"charityprep/internal/compliance"
	apperrors "charityprep/internal/errors"
	"charityprep/internal/logger"
	"charityprep/internal/snapshot"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// SnapshotRunner triggers an immediate snapshot pass
type SnapshotRunner interface {
	RunOnce(ctx context.Context) (snapshot.Result, error)
}

type ComplianceHandler struct {
	Service   *compliance.Service
	Assembler *annualreturn.Assembler
	Snapshots SnapshotRunner
}

func NewComplianceHandler(svc *compliance.Service, asm *annualreturn.Assembler, snapshots SnapshotRunner) *ComplianceHandler {
	return &ComplianceHandler{Service: svc, Assembler: asm, Snapshots: snapshots}
}

// writeJSON is a helper to write JSON responses
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Error encoding JSON response", "error", err)
	}
}

// writeError is a helper to write error responses
func writeError(w http.ResponseWriter, err error) {
	var status int
	var message string

	var validation apperrors.ValidationError
	var notFound apperrors.OrganizationNotFoundError

	switch {
	case errors.As(err, &notFound):
		status = http.StatusNotFound
		message = "Organization not found"
	case errors.Is(err, apperrors.ErrNotFound):
		status = http.StatusNotFound
		message = "Resource not found"
	case errors.As(err, &validation):
		status = http.StatusBadRequest
		message = fmt.Sprintf("Invalid %s: %s", validation.Field, validation.Message)
	case errors.Is(err, apperrors.ErrInvalidInput):
		status = http.StatusBadRequest
		message = "Invalid input"
	case errors.Is(err, apperrors.ErrUnauthorized):
		status = http.StatusUnauthorized
		message = "Unauthorized"
	case errors.Is(err, apperrors.ErrRateLimit):
		status = http.StatusTooManyRequests
		message = "Rate limit exceeded"
	case errors.Is(err, snapshot.ErrRunInProgress):
		status = http.StatusConflict
		message = "Snapshot run already in progress"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		status = http.StatusServiceUnavailable
		message = "Request cancelled"
	default:
		status = http.StatusInternalServerError
		message = "Internal server error"
		logger.Error("Internal error", "error", err)
	}

	writeJSON(w, status, map[string]string{"error": message})
}

func parseOrganizationID(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperrors.ValidationError{Field: "id", Message: "must be a UUID"}
	}
	return id, nil
}

// parseYear reads the optional year query parameter
func parseYear(r *http.Request) (*int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("year"))
	if raw == "" {
		return nil, nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil || year < 1900 || year > 9999 {
		return nil, apperrors.ValidationError{Field: "year", Message: "must be a four digit year"}
	}
	return &year, nil
}

// requireYear is parseYear for endpoints that cannot run across all years
func requireYear(r *http.Request) (int, error) {
	year, err := parseYear(r)
	if err != nil {
		return 0, err
	}
	if year == nil {
		return 0, apperrors.ValidationError{Field: "year", Message: "is required"}
	}
	return *year, nil
}

// GetCompliance scores an organisation and returns the dashboard report
func (h *ComplianceHandler) GetCompliance(w http.ResponseWriter, r *http.Request) {
	orgID, err := parseOrganizationID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	year, err := parseYear(r)
	if err != nil {
		writeError(w, err)
		return
	}

	report, err := h.Service.Evaluate(r.Context(), orgID, year)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *ComplianceHandler) GetAnnualReturn(w http.ResponseWriter, r *http.Request) {
	orgID, err := parseOrganizationID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	year, err := requireYear(r)
	if err != nil {
		writeError(w, err)
		return
	}

	ar, err := h.Assembler.Assemble(r.Context(), orgID, year)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ar)
}

// ExportAnnualReturn streams the field table as an xlsx (default) or csv download
func (h *ComplianceHandler) ExportAnnualReturn(w http.ResponseWriter, r *http.Request) {
	orgID, err := parseOrganizationID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	year, err := requireYear(r)
	if err != nil {
		writeError(w, err)
		return
	}

	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = "xlsx"
	}
	var contentType string
	var write func(w io.Writer, ar *annualreturn.AnnualReturn) error
	switch format {
	case "xlsx":
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		write = annualreturn.WriteXLSX
	case "csv":
		contentType = "text/csv; charset=utf-8"
		write = annualreturn.WriteCSV
	default:
		writeError(w, apperrors.ValidationError{Field: "format", Message: "must be xlsx or csv"})
		return
	}

	ar, err := h.Assembler.Assemble(r.Context(), orgID, year)
	if err != nil {
		writeError(w, err)
		return
	}

	// render fully before writing headers so failures still produce JSON errors
	var buf bytes.Buffer
	if err := write(&buf, ar); err != nil {
		writeError(w, fmt.Errorf("failed to render %s export: %w", format, err))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ar.Filename(format)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		logger.Warn("Failed to write export", "organization_id", orgID, "error", err)
	}
}

// RunSnapshots re-scores every organisation now
func (h *ComplianceHandler) RunSnapshots(w http.ResponseWriter, r *http.Request) {
	if h.Snapshots == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "Snapshots are not configured"})
		return
	}

	result, err := h.Snapshots.RunOnce(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
