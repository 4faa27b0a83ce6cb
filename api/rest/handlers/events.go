package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"video-pipeline/core/models"
	"video-pipeline/core/pipeline"
)

// stageFunc runs one stage against a decoded trigger
type stageFunc func(ctx context.Context, bucket, key string) models.StageResult

// EventHandler handles storage-event notification requests
type EventHandler struct {
	ingest    *pipeline.IngestStage
	highlight *pipeline.HighlightStage
}

// NewEventHandler creates a new event handler
func NewEventHandler(ingest *pipeline.IngestStage, highlight *pipeline.HighlightStage) *EventHandler {
	return &EventHandler{
		ingest:    ingest,
		highlight: highlight,
	}
}

// VideoUploaded handles POST /v1/events/videos
func (h *EventHandler) VideoUploaded(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, h.ingest.Handle)
}

// TranscriptWritten handles POST /v1/events/transcripts
func (h *EventHandler) TranscriptWritten(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, h.highlight.Handle)
}

func (h *EventHandler) handle(w http.ResponseWriter, r *http.Request, stage stageFunc) {
	var event models.StorageEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		http.Error(w, "Invalid event payload", http.StatusBadRequest)
		return
	}
	if len(event.Records) == 0 {
		http.Error(w, "Event has no records", http.StatusBadRequest)
		return
	}

	record := event.Records[0]
	key, err := record.DecodedKey()
	if err != nil {
		http.Error(w, "Invalid object key encoding: "+err.Error(), http.StatusBadRequest)
		return
	}

	result := stage(r.Context(), record.S3.Bucket.Name, key)
	writeResult(w, result)
}

// writeResult maps a stage result onto the HTTP report contract: every
// invocation reports a status and a JSON body, and errors always carry a
// human-readable error field
func writeResult(w http.ResponseWriter, result models.StageResult) {
	body := map[string]interface{}{
		"status":  result.Status,
		"message": result.Message,
	}
	for k, v := range result.Body {
		body[k] = v
	}

	status := http.StatusOK
	if result.Status == models.StageError {
		status = http.StatusInternalServerError
		body["error"] = result.Message
		log.Printf("EventHandler: stage failed: %s", result.Message)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
