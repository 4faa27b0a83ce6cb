package pipeline

import (
	"context"
	"strings"
)

// TranscriptionRequest describes one speech-to-text job. The job completes
// asynchronously; its result appears later as a new object under the output
// key, not as a return value.
type TranscriptionRequest struct {
	JobName      string
	MediaURI     string
	MediaFormat  string
	LanguageCode string
	OutputBucket string
	OutputKey    string
}

// TranscriptionStarter starts speech-to-text jobs
type TranscriptionStarter interface {
	StartJob(ctx context.Context, req TranscriptionRequest) error
}

// ClassificationRequest describes one batch audio-event classification job,
// also asynchronous via the store.
type ClassificationRequest struct {
	JobName      string
	ModelName    string
	InputURI     string
	ContentType  string
	OutputURI    string
	InstanceType string
}

// ClassificationStarter starts batch classification jobs
type ClassificationStarter interface {
	StartBatchJob(ctx context.Context, req ClassificationRequest) error
}

// ModelInvoker performs one synchronous generative model call
type ModelInvoker interface {
	Invoke(ctx context.Context, body []byte) ([]byte, error)
}

// AudioExtractor extracts resampled mono audio from a local media file
type AudioExtractor interface {
	Extract(ctx context.Context, videoPath, audioPath string) error
}

// mediaFormatFor derives the media format from an object's content type,
// falling back to the key's extension
func mediaFormatFor(contentType, key string) string {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "video/mp4"):
		return "mp4"
	case strings.Contains(ct, "video/quicktime"), strings.Contains(ct, "video/mov"):
		return "mov"
	case strings.Contains(ct, "video/x-msvideo"):
		return "avi"
	case strings.Contains(ct, "video/x-ms-wmv"):
		return "wmv"
	}
	if i := strings.LastIndex(key, "."); i >= 0 {
		return strings.ToLower(key[i+1:])
	}
	return ""
}

// baseName strips the namespace and extension from an object key, leaving
// the name a derived artifact's key is built from
func baseName(key string) string {
	base := key
	if i := strings.LastIndex(base, "/"); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.LastIndex(base, "."); i > 0 {
		base = base[:i]
	}
	return base
}
