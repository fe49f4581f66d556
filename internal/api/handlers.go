package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sells-group/postcode-lookup/internal/chunkstore"
	"github.com/sells-group/postcode-lookup/internal/lookup"
)

// Handler serves the lookup API for one session.
type Handler struct {
	svc *lookup.Service
}

// NewHandler creates a Handler backed by svc.
func NewHandler(svc *lookup.Service) *Handler {
	return &Handler{svc: svc}
}

// SuggestResponse is returned by GET /api/v1/suggest.
type SuggestResponse struct {
	Suggestions []string `json:"suggestions"`
}

// SubstationResponse is returned by GET /api/v1/substations/{id}.
type SubstationResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	DNO           string          `json:"dno"`
	LicenseArea   string          `json:"license_area"`
	PostcodeCount int             `json:"postcode_count"`
	Boundary      json.RawMessage `json:"boundary,omitempty"`
	Bounds        *[4]float64     `json:"bounds,omitempty"`
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Postcode handles GET /api/v1/postcodes/{postcode}.
func (h *Handler) Postcode(w http.ResponseWriter, r *http.Request) {
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, CodeInvalidInput, "page must be an integer")
			return
		}
		page = n
	}

	res, err := h.svc.Search(r.Context(), chi.URLParam(r, "postcode"), page)
	if err != nil {
		writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Suggest handles GET /api/v1/suggest?q=.
func (h *Handler) Suggest(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, SuggestResponse{Suggestions: h.svc.Suggest(r.URL.Query().Get("q"))})
}

// Substation handles GET /api/v1/substations/{id}.
func (h *Handler) Substation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, ok := h.svc.Directory().Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, CodeNotFound, "substation not found")
		return
	}

	resp := SubstationResponse{
		ID:            rec.ID,
		Name:          rec.Name,
		DNO:           rec.DNO,
		LicenseArea:   rec.LicenseArea,
		PostcodeCount: rec.PostcodeCount,
	}
	box, ok, err := rec.Bounds()
	switch {
	case err != nil:
		zap.L().Warn("api: unreadable boundary", zap.String("substation_id", id), zap.Error(err))
	case ok:
		resp.Boundary = rec.Boundary
		resp.Bounds = &box
	}
	writeJSON(w, http.StatusOK, resp)
}

// CacheResponse is returned by GET /api/v1/cache.
type CacheResponse struct {
	chunkstore.Stats
	Chunks []string `json:"chunks"`
}

// Cache handles GET /api/v1/cache.
func (h *Handler) Cache(w http.ResponseWriter, _ *http.Request) {
	store := h.svc.Store()
	writeJSON(w, http.StatusOK, CacheResponse{Stats: store.Stats(), Chunks: store.Names()})
}
