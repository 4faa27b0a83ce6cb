package models

// Namespace prefixes for pipeline artifacts in the shared store. The
// prefix an artifact lives under is the only durable record of which stage
// produced it.
const (
	InputPrefix                = "input-videos/"
	TranscriptPrefix           = "transcriptions/"
	HighlightPrefix            = "highlights/"
	ClassificationInputPrefix  = "classification-input/"
	ClassificationOutputPrefix = "classification-output/"
)

// HighlightArtifact is the JSON payload written by the highlight stage.
// Highlights is null when the model produced nothing usable.
type HighlightArtifact struct {
	VideoKey      string  `json:"video_key"`
	TranscriptKey string  `json:"transcript_key"`
	Timestamp     string  `json:"timestamp"`
	ModelID       string  `json:"model_id"`
	Highlights    *string `json:"highlights"`
}

// Transcript is the subset of the transcription service's output consumed by
// the highlight stage.
type Transcript struct {
	Results TranscriptResults `json:"results"`
}

// TranscriptResults holds the transcript variants of a transcription job
type TranscriptResults struct {
	Transcripts []TranscriptText `json:"transcripts"`
}

// TranscriptText is one rendered transcript
type TranscriptText struct {
	Transcript string `json:"transcript"`
}

// Text returns the first transcript text, or empty when none was produced
func (t Transcript) Text() string {
	if len(t.Results.Transcripts) == 0 {
		return ""
	}
	return t.Results.Transcripts[0].Transcript
}
