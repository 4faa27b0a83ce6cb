package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"video-pipeline/core/invoke"
	"video-pipeline/core/locator"
	"video-pipeline/core/models"
	"video-pipeline/storage"

	"github.com/aws/smithy-go"
)

const (
	testBucket        = "video-pipeline-test"
	testVideoKey      = "input-videos/20240101120000-ab12cd34-demo.mp4"
	testTranscriptKey = "transcriptions/20240101120005-20240101120000-ab12cd34-demo.json"
)

type fakeModel struct {
	calls    int
	response []byte
	errs     []error
}

func (f *fakeModel) Invoke(ctx context.Context, body []byte) ([]byte, error) {
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return nil, err
	}
	return f.response, nil
}

func instantInvoker() *invoke.Invoker {
	return invoke.New(invoke.DefaultPolicy(),
		invoke.WithSleeper(func(ctx context.Context, d time.Duration) error { return nil }),
	)
}

func newHighlightStage(store *storage.MemStore, model ModelInvoker) *HighlightStage {
	stage := NewHighlightStage(store, store, locator.New(store, models.InputPrefix), instantInvoker(), model, HighlightConfig{
		Bucket:  testBucket,
		ModelID: "amazon.nova-pro-v1:0",
	})
	stage.now = func() time.Time { return time.Date(2024, 1, 1, 12, 1, 0, 0, time.UTC) }
	return stage
}

func seedTranscript(t *testing.T, store *storage.MemStore) {
	t.Helper()
	transcript := `{"results": {"transcripts": [{"transcript": "hello from the demo"}]}}`
	if err := store.Put(context.Background(), testTranscriptKey, []byte(transcript), "application/json"); err != nil {
		t.Fatalf("seed transcript: %v", err)
	}
	if err := store.Put(context.Background(), testVideoKey, []byte("video-bytes"), "video/mp4"); err != nil {
		t.Fatalf("seed video: %v", err)
	}
}

func TestHighlightEndToEnd(t *testing.T) {
	store := storage.NewMemStore()
	seedTranscript(t, store)
	model := &fakeModel{response: []byte(`{"output": {"message": {"content": [{"text": "great moments"}]}}}`)}
	stage := newHighlightStage(store, model)

	result := stage.Handle(context.Background(), testBucket, testTranscriptKey)
	if result.Status != models.StageSuccess {
		t.Fatalf("status = %s (%s), want success", result.Status, result.Message)
	}
	if model.calls != 1 {
		t.Errorf("model calls = %d, want 1", model.calls)
	}

	wantKey := "highlights/20240101120005-20240101120000-ab12cd34-demo-highlights.json"
	if got := result.Body["highlights_key"]; got != wantKey {
		t.Errorf("highlights_key = %v, want %s", got, wantKey)
	}
	// The rich-form transcript key must reconstruct the video key directly.
	if got := result.Body["video_key"]; got != testVideoKey {
		t.Errorf("video_key = %v, want %s", got, testVideoKey)
	}

	raw, err := store.Get(context.Background(), wantKey)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	var artifact models.HighlightArtifact
	if err := json.Unmarshal(raw, &artifact); err != nil {
		t.Fatalf("decode artifact: %v", err)
	}
	if artifact.VideoKey != testVideoKey {
		t.Errorf("artifact.VideoKey = %q, want %q", artifact.VideoKey, testVideoKey)
	}
	if artifact.TranscriptKey != testTranscriptKey {
		t.Errorf("artifact.TranscriptKey = %q, want %q", artifact.TranscriptKey, testTranscriptKey)
	}
	if artifact.Timestamp != "2024-01-01T12:01:00Z" {
		t.Errorf("artifact.Timestamp = %q, want ISO-8601 at the stage clock", artifact.Timestamp)
	}
	if artifact.Highlights == nil || *artifact.Highlights != "great moments" {
		t.Errorf("artifact.Highlights = %v, want %q", artifact.Highlights, "great moments")
	}
}

func TestHighlightSkipsForeignNamespace(t *testing.T) {
	store := storage.NewMemStore()
	model := &fakeModel{response: []byte(`{}`)}
	stage := newHighlightStage(store, model)

	result := stage.Handle(context.Background(), testBucket, "input-videos/20240101120000-ab12cd34-demo.mp4")
	if result.Status != models.StageSkipped {
		t.Fatalf("status = %s, want skipped", result.Status)
	}
	if model.calls != 0 {
		t.Errorf("model calls = %d, want 0", model.calls)
	}
	if store.Len() != 0 {
		t.Errorf("store writes = %d, want 0", store.Len())
	}
}

func TestHighlightIdempotentShortCircuit(t *testing.T) {
	store := storage.NewMemStore()
	seedTranscript(t, store)
	existingKey := "highlights/20240101120005-20240101120000-ab12cd34-demo-highlights.json"
	if err := store.Put(context.Background(), existingKey, []byte(`{}`), "application/json"); err != nil {
		t.Fatalf("seed existing highlights: %v", err)
	}

	model := &fakeModel{response: []byte(`{}`)}
	stage := newHighlightStage(store, model)

	result := stage.Handle(context.Background(), testBucket, testTranscriptKey)
	if result.Status != models.StageSuccess {
		t.Fatalf("status = %s, want success", result.Status)
	}
	if model.calls != 0 {
		t.Errorf("model calls = %d, want 0 after short-circuit", model.calls)
	}
	if got := result.Body["highlights_key"]; got != existingKey {
		t.Errorf("highlights_key = %v, want %s", got, existingKey)
	}
}

func TestHighlightSourceNotFound(t *testing.T) {
	store := storage.NewMemStore()
	transcript := `{"results": {"transcripts": [{"transcript": "orphaned"}]}}`
	if err := store.Put(context.Background(), testTranscriptKey, []byte(transcript), "application/json"); err != nil {
		t.Fatalf("seed transcript: %v", err)
	}

	model := &fakeModel{response: []byte(`{}`)}
	stage := newHighlightStage(store, model)

	result := stage.Handle(context.Background(), testBucket, testTranscriptKey)
	if result.Status != models.StageError {
		t.Fatalf("status = %s, want error", result.Status)
	}
	if model.calls != 0 {
		t.Errorf("model calls = %d, want 0 when the source is missing", model.calls)
	}
}

func TestHighlightRetriesThrottling(t *testing.T) {
	store := storage.NewMemStore()
	seedTranscript(t, store)
	model := &fakeModel{
		response: []byte(`{"completion": "eventually"}`),
		errs: []error{
			&smithy.GenericAPIError{Code: "ThrottlingException", Message: "Rate exceeded"},
			&smithy.GenericAPIError{Code: "ThrottlingException", Message: "Rate exceeded"},
		},
	}
	stage := newHighlightStage(store, model)

	result := stage.Handle(context.Background(), testBucket, testTranscriptKey)
	if result.Status != models.StageSuccess {
		t.Fatalf("status = %s (%s), want success after retries", result.Status, result.Message)
	}
	if model.calls != 3 {
		t.Errorf("model calls = %d, want 3", model.calls)
	}
}

func TestHighlightConfigurationErrorNotRetried(t *testing.T) {
	store := storage.NewMemStore()
	seedTranscript(t, store)
	model := &fakeModel{
		errs: []error{fmt.Errorf("%w: model requires a provisioned inference profile", invoke.ErrConfiguration)},
	}
	stage := newHighlightStage(store, model)

	result := stage.Handle(context.Background(), testBucket, testTranscriptKey)
	if result.Status != models.StageError {
		t.Fatalf("status = %s, want error", result.Status)
	}
	if model.calls != 1 {
		t.Errorf("model calls = %d, want 1 for a configuration error", model.calls)
	}
}

func TestIdempotencyGuardDistinguishesMissFromFailure(t *testing.T) {
	store := storage.NewMemStore()
	guard := NewIdempotencyGuard(store)

	done, err := guard.AlreadyProduced(context.Background(), "highlights/none.json")
	if err != nil {
		t.Fatalf("AlreadyProduced on miss: %v", err)
	}
	if done {
		t.Error("AlreadyProduced = true for a missing key")
	}

	if err := store.Put(context.Background(), "highlights/have.json", []byte("{}"), "application/json"); err != nil {
		t.Fatal(err)
	}
	done, err = guard.AlreadyProduced(context.Background(), "highlights/have.json")
	if err != nil || !done {
		t.Errorf("AlreadyProduced = (%v, %v), want (true, nil)", done, err)
	}

	guardFailing := NewIdempotencyGuard(&failingStore{err: errors.New("access denied")})
	done, err = guardFailing.AlreadyProduced(context.Background(), "highlights/any.json")
	if done {
		t.Error("AlreadyProduced = true on lookup failure")
	}
	if err == nil {
		t.Error("AlreadyProduced swallowed the lookup failure")
	}
}

// failingStore errors on every operation with a non-NotFound failure
type failingStore struct {
	err error
}

func (f *failingStore) Head(ctx context.Context, key string) (*storage.ObjectMeta, error) {
	return nil, f.err
}

func (f *failingStore) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, f.err
}

func (f *failingStore) Put(ctx context.Context, key string, body []byte, contentType string) error {
	return f.err
}

func (f *failingStore) List(ctx context.Context, prefix string) ([]storage.ObjectInfo, error) {
	return nil, f.err
}
