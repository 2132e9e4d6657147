package api

import (
	"net/http"
	"strconv"

	"github.com/ayusman/mudra/internal/store"
)

// MaxActivityLimit caps the limit query parameter.
const MaxActivityLimit = 500

// ActivityHandler serves the action log.
type ActivityHandler struct {
	store *store.Store
}

// NewActivityHandler creates a new ActivityHandler with the given store.
func NewActivityHandler(s *store.Store) *ActivityHandler {
	return &ActivityHandler{store: s}
}

type activityResponse struct {
	ID        int64  `json:"id"`
	Kind      string `json:"kind"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Amount    int    `json:"amount"`
	Pose      string `json:"pose"`
	CreatedAt string `json:"created_at"`
}

type listActivityResponse struct {
	Activity []activityResponse `json:"activity"`
	Counts   map[string]int     `json:"counts"`
}

// ServeHTTP handles GET /api/activity?limit=N.
func (h *ActivityHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, MaxActivityLimit)
	}

	entries, err := h.store.Activity().Recent(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list activity")
		return
	}
	counts, err := h.store.Activity().CountByKind()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count activity")
		return
	}

	response := listActivityResponse{
		Activity: make([]activityResponse, 0, len(entries)),
		Counts:   counts,
	}
	for _, e := range entries {
		response.Activity = append(response.Activity, activityResponse{
			ID:        e.ID,
			Kind:      e.Kind,
			X:         e.X,
			Y:         e.Y,
			Amount:    e.Amount,
			Pose:      e.Pose,
			CreatedAt: e.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	writeJSON(w, http.StatusOK, response)
}
