package allocation

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/quantfolio/allocengine/internal/domain"
	"github.com/quantfolio/allocengine/internal/modules/profiles"
)

// Handler provides HTTP handlers for allocation endpoints.
type Handler struct {
	service *Service
	repo    *Repository
	log     zerolog.Logger
}

// NewHandler creates a new allocation handler. repo may be nil when
// persistence is disabled.
func NewHandler(service *Service, repo *Repository, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		repo:    repo,
		log:     log.With().Str("handler", "allocation").Logger(),
	}
}

// HandleGenerate handles POST /api/allocations/generate
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var input AllocationInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	rec, err := h.service.GenerateAllocation(r.Context(), input)
	if err != nil {
		if isValidationError(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.log.Error().Err(err).Msg("Failed to generate allocation")
		http.Error(w, "Failed to generate allocation", http.StatusInternalServerError)
		return
	}

	// Persistence is best effort; the caller still gets the recommendation.
	if h.repo != nil {
		if err := h.repo.Save(r.Context(), rec); err != nil {
			h.log.Error().Err(err).Str("id", rec.ID).Msg("Failed to persist recommendation")
		}
	}

	writeJSON(w, h.log, http.StatusOK, rec)
}

// HandleListProfiles handles GET /api/allocations/profiles
func (h *Handler) HandleListProfiles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.log, http.StatusOK, profiles.Definitions())
}

// HandleGetProfile handles GET /api/allocations/profiles/{profile}
func (h *Handler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	profile := domain.RiskProfile(chi.URLParam(r, "profile"))
	def, ok := profiles.Get(profile)
	if !ok {
		http.Error(w, "Unknown risk profile", http.StatusNotFound)
		return
	}
	writeJSON(w, h.log, http.StatusOK, def)
}

// HandleRecent handles GET /api/allocations/recent?limit=N
func (h *Handler) HandleRecent(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		http.Error(w, "Persistence is disabled", http.StatusNotFound)
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	recs, err := h.repo.Recent(r.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list recent recommendations")
		http.Error(w, "Failed to list recommendations", http.StatusInternalServerError)
		return
	}
	if recs == nil {
		recs = []*AllocationRecommendation{}
	}
	writeJSON(w, h.log, http.StatusOK, recs)
}

// HandleGet handles GET /api/allocations/{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		http.Error(w, "Persistence is disabled", http.StatusNotFound)
		return
	}

	rec, found, err := h.repo.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load recommendation")
		http.Error(w, "Failed to load recommendation", http.StatusInternalServerError)
		return
	}
	if !found {
		http.Error(w, "Recommendation not found", http.StatusNotFound)
		return
	}
	writeJSON(w, h.log, http.StatusOK, rec)
}

func isValidationError(err error) bool {
	return errors.Is(err, ErrInvalidAccountSize) ||
		errors.Is(err, ErrNoAssetCharacteristics) ||
		errors.Is(err, ErrUnknownRiskProfile)
}

func writeJSON(w http.ResponseWriter, log zerolog.Logger, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}
