package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"video-pipeline/core/extract"
	"video-pipeline/core/invoke"
	"video-pipeline/core/keys"
	"video-pipeline/core/locator"
	"video-pipeline/core/models"
	"video-pipeline/storage"
)

// DefaultHighlightPrompt is the instruction sent alongside the video and its
// transcript.
const DefaultHighlightPrompt = "Extract key highlights from the following video. Use the provided transcript as additional context."

// DefaultMaxNewTokens bounds the generative response length
const DefaultMaxNewTokens = 1000

// HighlightConfig holds the highlight stage's settings
type HighlightConfig struct {
	Bucket       string
	ModelID      string
	Prompt       string
	MaxNewTokens int
}

// HighlightStage handles a just-written transcript: it locates the source
// video the transcript belongs to, asks the generative model for highlights
// grounded in both, and persists the result. The transcript key is the only
// link back to the video, so locating the source runs through the heuristic
// cascade in the locator package.
type HighlightStage struct {
	transcripts storage.ObjectStore
	highlights  storage.ObjectStore
	guard       *IdempotencyGuard
	locator     *locator.Locator
	invoker     *invoke.Invoker
	model       ModelInvoker
	cfg         HighlightConfig
	now         func() time.Time
}

// NewHighlightStage creates the highlight stage. Transcripts are read from
// one store and highlights written to another; deployments with a single
// shared bucket pass the same store twice.
func NewHighlightStage(
	transcripts storage.ObjectStore,
	highlights storage.ObjectStore,
	loc *locator.Locator,
	inv *invoke.Invoker,
	model ModelInvoker,
	cfg HighlightConfig,
) *HighlightStage {
	if cfg.Prompt == "" {
		cfg.Prompt = DefaultHighlightPrompt
	}
	if cfg.MaxNewTokens <= 0 {
		cfg.MaxNewTokens = DefaultMaxNewTokens
	}
	return &HighlightStage{
		transcripts: transcripts,
		highlights:  highlights,
		guard:       NewIdempotencyGuard(highlights),
		locator:     loc,
		invoker:     inv,
		model:       model,
		cfg:         cfg,
		now:         time.Now,
	}
}

// Handle processes one storage event for a written transcript
func (s *HighlightStage) Handle(ctx context.Context, bucket, key string) models.StageResult {
	if !strings.HasPrefix(key, models.TranscriptPrefix) {
		log.Printf("HighlightStage: object %s not in %s prefix, skipping", key, models.TranscriptPrefix)
		return models.Skipped(fmt.Sprintf("object not in %s prefix", models.TranscriptPrefix))
	}

	base := strings.TrimSuffix(strings.TrimPrefix(key, models.TranscriptPrefix), ".json")
	outputKey := models.HighlightPrefix + base + "-highlights.json"

	done, err := s.guard.AlreadyProduced(ctx, outputKey)
	if err != nil {
		// A failed probe is not proof of absent output; redo the work rather
		// than block the pipeline, but keep the failure visible.
		log.Printf("HighlightStage: idempotency probe for %s failed: %v", outputKey, err)
	}
	if done {
		log.Printf("HighlightStage: highlights already exist at %s, skipping processing", outputKey)
		return models.Success("highlights already exist", map[string]interface{}{
			"highlights_key": outputKey,
		})
	}

	videoKey, err := s.locator.FindSource(ctx, keys.ParseBase(base), base)
	if err != nil {
		return models.Errored(fmt.Sprintf("locate source video for %s: %v", key, err))
	}
	log.Printf("HighlightStage: located source video %s for transcript %s", videoKey, key)

	transcriptText, err := s.transcriptText(ctx, key)
	if err != nil {
		return models.Errored(err.Error())
	}

	// The event names the transcript's bucket; the video lives in its own.
	videoBucket := s.cfg.Bucket
	if videoBucket == "" {
		videoBucket = bucket
	}
	payload, err := s.buildPayload(videoBucket, videoKey, transcriptText)
	if err != nil {
		return models.Errored(fmt.Sprintf("build model payload: %v", err))
	}

	var response []byte
	err = s.invoker.Do(ctx, "invoke highlight model", func(ctx context.Context) error {
		var invokeErr error
		response, invokeErr = s.model.Invoke(ctx, payload)
		return invokeErr
	})
	if err != nil {
		if errors.Is(err, invoke.ErrConfiguration) {
			return models.Errored(fmt.Sprintf("model configuration: %v", err))
		}
		return models.Errored(fmt.Sprintf("invoke model for %s: %v", key, err))
	}

	highlights := extract.FromJSON(response)
	preview := highlights
	if len(preview) > 100 {
		preview = preview[:100] + "..."
	}
	log.Printf("HighlightStage: extracted highlights: %s", preview)

	artifact := models.HighlightArtifact{
		VideoKey:      videoKey,
		TranscriptKey: key,
		Timestamp:     s.now().Format(time.RFC3339),
		ModelID:       s.cfg.ModelID,
		Highlights:    &highlights,
	}
	body, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return models.Errored(fmt.Sprintf("encode highlight artifact: %v", err))
	}
	if err := s.highlights.Put(ctx, outputKey, body, "application/json"); err != nil {
		return models.Errored(fmt.Sprintf("persist highlights: %v", err))
	}

	log.Printf("HighlightStage: saved highlights to %s", outputKey)
	return models.Success("extracted highlights", map[string]interface{}{
		"highlights_key": outputKey,
		"video_key":      videoKey,
	})
}

// transcriptText fetches the transcript object and pulls out its text
func (s *HighlightStage) transcriptText(ctx context.Context, key string) (string, error) {
	raw, err := s.transcripts.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("fetch transcript %s: %w", key, err)
	}
	var transcript models.Transcript
	if err := json.Unmarshal(raw, &transcript); err != nil {
		return "", fmt.Errorf("decode transcript %s: %w", key, err)
	}
	return transcript.Text(), nil
}

// buildPayload assembles the multimodal request: the prompt, the video by
// store location, and the transcript text as context
func (s *HighlightStage) buildPayload(bucket, videoKey, transcriptText string) ([]byte, error) {
	format := "mp4"
	if i := strings.LastIndex(videoKey, "."); i >= 0 {
		switch ext := strings.ToLower(videoKey[i+1:]); ext {
		case "mp4", "mov", "avi", "wmv":
			format = ext
		}
	}

	payload := modelPayload{
		InferenceConfig: inferenceConfig{MaxNewTokens: s.cfg.MaxNewTokens},
		Messages: []payloadMessage{
			{
				Role: "user",
				Content: []contentItem{
					{Text: s.cfg.Prompt},
					{Video: &videoContent{
						Format: format,
						Source: videoSource{
							S3Location: storeLocation{URI: fmt.Sprintf("s3://%s/%s", bucket, videoKey)},
						},
					}},
					{Text: transcriptText},
				},
			},
		},
	}
	return json.Marshal(payload)
}

type modelPayload struct {
	InferenceConfig inferenceConfig  `json:"inferenceConfig"`
	Messages        []payloadMessage `json:"messages"`
}

type inferenceConfig struct {
	MaxNewTokens int `json:"max_new_tokens"`
}

type payloadMessage struct {
	Role    string        `json:"role"`
	Content []contentItem `json:"content"`
}

type contentItem struct {
	Text  string        `json:"text,omitempty"`
	Video *videoContent `json:"video,omitempty"`
}

type videoContent struct {
	Format string      `json:"format"`
	Source videoSource `json:"source"`
}

type videoSource struct {
	S3Location storeLocation `json:"s3Location"`
}

type storeLocation struct {
	URI string `json:"uri"`
}
