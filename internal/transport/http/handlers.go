package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"fedreg/internal/domain"
	"fedreg/internal/platform/middleware"
	pkgerrors "fedreg/pkg/errors"
)

// CatalogService is the transport-facing surface of the catalog.
type CatalogService interface {
	Agencies(ctx context.Context) ([]domain.Agency, error)
	AgencyByID(ctx context.Context, id int64) (domain.Agency, error)
	RegulationsForYear(ctx context.Context, agencyID int64, year int) ([]domain.Regulation, error)
}

type Handler struct {
	catalog CatalogService
	logger  *slog.Logger
}

func NewHandler(catalog CatalogService, logger *slog.Logger) *Handler {
	return &Handler{catalog: catalog, logger: logger}
}

func (h *Handler) handleListAgencies(w http.ResponseWriter, r *http.Request) {
	agencies, err := h.catalog.Agencies(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if agencies == nil {
		agencies = []domain.Agency{}
	}
	writeJSON(w, http.StatusOK, agencies)
}

func (h *Handler) handleGetAgency(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "agencyID")
	if err != nil {
		h.writeError(w, r, pkgerrors.New(pkgerrors.CodeBadRequest, "agency id must be an integer"))
		return
	}
	agency, err := h.catalog.AgencyByID(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, agency)
}

func (h *Handler) handleAgencyRegulations(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "agencyID")
	if err != nil {
		h.writeError(w, r, pkgerrors.New(pkgerrors.CodeBadRequest, "agency id must be an integer"))
		return
	}
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		h.writeError(w, r, pkgerrors.New(pkgerrors.CodeBadRequest, "year must be an integer"))
		return
	}

	regs, err := h.catalog.RegulationsForYear(r.Context(), id, year)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if regs == nil {
		regs = []domain.Regulation{}
	}
	writeJSON(w, http.StatusOK, regs)
}

func pathInt64(r *http.Request, key string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, key), 10, 64)
}

// writeError centralizes domain error translation to HTTP responses so
// error envelopes stay consistent across handlers.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var se pkgerrors.ServiceError
	status := http.StatusInternalServerError
	code := string(pkgerrors.CodeInternal)
	message := "internal error"
	if errors.As(err, &se) {
		status = pkgerrors.ToHTTPStatus(se.Code)
		code = string(se.Code)
		message = se.Message
	}
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "request failed",
			"error", err,
			"request_id", middleware.GetRequestID(r.Context()),
		)
	}
	writeJSON(w, status, map[string]string{
		"error":   code,
		"message": message,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
