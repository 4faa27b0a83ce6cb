package pipeline

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"video-pipeline/core/keys"
	"video-pipeline/core/models"
	"video-pipeline/storage"

	"github.com/google/uuid"
)

// IngestConfig holds the ingest stage's settings
type IngestConfig struct {
	TranscriptBucket       string
	LanguageCode           string
	ClassifierModelName    string
	ClassifierInstanceType string
}

// IngestStage handles a just-uploaded video: it fans out one asynchronous
// transcription job and one asynchronous audio-event classification job.
// Each invocation is stateless; the jobs correlate back to the video purely
// through the keys they write under.
type IngestStage struct {
	store       storage.ObjectStore
	transcriber TranscriptionStarter
	classifier  ClassificationStarter
	audio       AudioExtractor
	cfg         IngestConfig
	now         func() time.Time
}

// NewIngestStage creates the ingest stage
func NewIngestStage(
	store storage.ObjectStore,
	transcriber TranscriptionStarter,
	classifier ClassificationStarter,
	audio AudioExtractor,
	cfg IngestConfig,
) *IngestStage {
	return &IngestStage{
		store:       store,
		transcriber: transcriber,
		classifier:  classifier,
		audio:       audio,
		cfg:         cfg,
		now:         time.Now,
	}
}

// Handle processes one storage event for an uploaded video
func (s *IngestStage) Handle(ctx context.Context, bucket, key string) models.StageResult {
	if !strings.HasPrefix(key, models.InputPrefix) {
		log.Printf("IngestStage: object %s not in %s prefix, skipping", key, models.InputPrefix)
		return models.Skipped(fmt.Sprintf("object not in %s prefix", models.InputPrefix))
	}

	meta, err := s.store.Head(ctx, key)
	if err != nil {
		return models.Errored(fmt.Sprintf("inspect %s: %v", key, err))
	}

	timestamp := keys.FormatTimestamp(s.now())
	sanitized := keys.Sanitize(baseName(key))
	format := mediaFormatFor(meta.ContentType, key)

	log.Printf("IngestStage: processing %s (format %s, sanitized name %s)", key, format, sanitized)

	transcriptKey := models.TranscriptPrefix + timestamp + "-" + sanitized
	transcriptionJob := "transcription-" + timestamp + "-" + uuid.New().String()
	err = s.transcriber.StartJob(ctx, TranscriptionRequest{
		JobName:      transcriptionJob,
		MediaURI:     fmt.Sprintf("s3://%s/%s", bucket, key),
		MediaFormat:  format,
		LanguageCode: s.cfg.LanguageCode,
		OutputBucket: s.cfg.TranscriptBucket,
		OutputKey:    transcriptKey + ".json",
	})
	if err != nil {
		return models.Errored(fmt.Sprintf("start transcription for %s: %v", key, err))
	}
	log.Printf("IngestStage: started transcription job %s", transcriptionJob)

	classificationJob, err := s.classify(ctx, bucket, key, timestamp, sanitized)
	if err != nil {
		// The transcription branch already succeeded; its result must not be
		// erased by the classification branch failing.
		log.Printf("IngestStage: classification branch failed for %s: %v", key, err)
		return models.Partial("classification branch failed", map[string]interface{}{
			"transcription_job":    transcriptionJob,
			"transcript_key":       transcriptKey + ".json",
			"classification_error": err.Error(),
		})
	}
	log.Printf("IngestStage: started classification job %s", classificationJob)

	return models.Success("started annotation jobs", map[string]interface{}{
		"transcription_job":  transcriptionJob,
		"transcript_key":     transcriptKey + ".json",
		"classification_job": classificationJob,
	})
}

// classify extracts resampled audio from the video, stages it in the store,
// and starts the batch classification job over it
func (s *IngestStage) classify(ctx context.Context, bucket, key, timestamp, sanitized string) (string, error) {
	video, err := s.store.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("download video: %w", err)
	}

	tempDir, err := os.MkdirTemp("", "ingest-audio-")
	if err != nil {
		return "", fmt.Errorf("create work dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	videoPath := filepath.Join(tempDir, filepath.Base(key))
	audioPath := filepath.Join(tempDir, "audio.wav")
	if err := os.WriteFile(videoPath, video, 0o600); err != nil {
		return "", fmt.Errorf("stage video locally: %w", err)
	}
	if err := s.audio.Extract(ctx, videoPath, audioPath); err != nil {
		return "", fmt.Errorf("extract audio: %w", err)
	}

	audio, err := os.ReadFile(audioPath)
	if err != nil {
		return "", fmt.Errorf("read extracted audio: %w", err)
	}

	audioKey := models.ClassificationInputPrefix + timestamp + "-" + sanitized + ".wav"
	if err := s.store.Put(ctx, audioKey, audio, "audio/wav"); err != nil {
		return "", fmt.Errorf("upload audio: %w", err)
	}

	jobName := "audio-classification-" + timestamp + "-" + keys.NewDisambiguator()
	err = s.classifier.StartBatchJob(ctx, ClassificationRequest{
		JobName:      jobName,
		ModelName:    s.cfg.ClassifierModelName,
		InputURI:     fmt.Sprintf("s3://%s/%s", bucket, audioKey),
		ContentType:  "audio/wav",
		OutputURI:    fmt.Sprintf("s3://%s/%s", bucket, models.ClassificationOutputPrefix),
		InstanceType: s.cfg.ClassifierInstanceType,
	})
	if err != nil {
		return "", fmt.Errorf("start classification job: %w", err)
	}
	return jobName, nil
}
