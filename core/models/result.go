package models

// StageStatus classifies the outcome of one stage invocation
type StageStatus string

const (
	// StageSuccess means the stage produced (or found already produced) its output
	StageSuccess StageStatus = "success"
	// StageSkipped means the trigger was outside the stage's namespace; not an error
	StageSkipped StageStatus = "skipped"
	// StagePartial means one branch of the stage failed after another succeeded
	StagePartial StageStatus = "partial"
	// StageError means the stage failed and produced no output
	StageError StageStatus = "error"
)

// StageResult is the report returned by every stage invocation. Results are
// always returned to the caller, never silently dropped.
type StageResult struct {
	Status  StageStatus
	Message string
	Body    map[string]interface{}
}

// Success builds a success result
func Success(message string, body map[string]interface{}) StageResult {
	return StageResult{Status: StageSuccess, Message: message, Body: body}
}

// Skipped builds a skip result for triggers outside the stage namespace
func Skipped(message string) StageResult {
	return StageResult{Status: StageSkipped, Message: message}
}

// Partial builds a partial-success result carrying what did complete
func Partial(message string, body map[string]interface{}) StageResult {
	return StageResult{Status: StagePartial, Message: message, Body: body}
}

// Errored builds an error result; the message always reaches the report body
func Errored(message string) StageResult {
	return StageResult{Status: StageError, Message: message}
}
