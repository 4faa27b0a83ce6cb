package routes

import (
	"video-pipeline/api/rest/handlers"
	"video-pipeline/core/pipeline"
	"video-pipeline/storage"

	"github.com/gorilla/mux"
)

// SetupRoutes configures all API routes
func SetupRoutes(r *mux.Router, ingest *pipeline.IngestStage, highlight *pipeline.HighlightStage, highlightStore storage.ObjectStore) {
	eventHandler := handlers.NewEventHandler(ingest, highlight)
	artifactHandler := handlers.NewArtifactHandler(highlightStore)

	api := r.PathPrefix("/v1").Subrouter()

	// Storage event notifications
	api.HandleFunc("/events/videos", eventHandler.VideoUploaded).Methods("POST")
	api.HandleFunc("/events/transcripts", eventHandler.TranscriptWritten).Methods("POST")

	// Produced artifacts
	api.HandleFunc("/highlights", artifactHandler.ListHighlights).Methods("GET")
	api.HandleFunc("/highlights/{name}", artifactHandler.GetHighlight).Methods("GET")
}
