package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"video-pipeline/core/keys"
	"video-pipeline/core/models"
	"video-pipeline/storage"
)

// ArtifactHandler serves the highlight artifacts the pipeline has produced
type ArtifactHandler struct {
	store storage.ObjectStore
}

// NewArtifactHandler creates a new artifact handler
func NewArtifactHandler(store storage.ObjectStore) *ArtifactHandler {
	return &ArtifactHandler{store: store}
}

// artifactSummary is one row in a highlight listing
type artifactSummary struct {
	Key             string    `json:"key"`
	LastModified    time.Time `json:"last_modified"`
	Timestamp       string    `json:"timestamp,omitempty"`
	SourceTimestamp string    `json:"source_timestamp,omitempty"`
	Name            string    `json:"name,omitempty"`
}

// ListHighlights returns the stored highlight artifacts, newest first
func (h *ArtifactHandler) ListHighlights(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, "Invalid limit parameter", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	objects, err := h.store.List(r.Context(), models.HighlightPrefix)
	if err != nil {
		http.Error(w, "Failed to list highlights: "+err.Error(), http.StatusInternalServerError)
		return
	}

	summaries := make([]artifactSummary, 0, len(objects))
	for _, obj := range objects {
		summary := artifactSummary{Key: obj.Key, LastModified: obj.LastModified}
		if parsed := keys.ParseKey(obj.Key); parsed.Form != keys.FormNone {
			summary.Timestamp = parsed.Timestamp
			summary.SourceTimestamp = parsed.SourceTimestamp
			summary.Name = parsed.Name
		}
		summaries = append(summaries, summary)
	}

	// Newest first
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].LastModified.After(summaries[j].LastModified)
	})
	if len(summaries) > limit {
		summaries = summaries[:limit]
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"highlights": summaries,
		"count":      len(summaries),
	})
}

// GetHighlight returns a single highlight artifact by its object name
func (h *ArtifactHandler) GetHighlight(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	name := vars["name"]
	if name == "" {
		http.Error(w, "Missing artifact name", http.StatusBadRequest)
		return
	}

	body, err := h.store.Get(r.Context(), models.HighlightPrefix+name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, "Highlight not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to fetch highlight: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}
