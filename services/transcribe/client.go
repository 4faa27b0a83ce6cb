package transcribe

import (
	"context"
	"fmt"
	"log"

	"video-pipeline/core/pipeline"

	"github.com/aws/aws-sdk-go-v2/aws"
	transcribesvc "github.com/aws/aws-sdk-go-v2/service/transcribe"
	"github.com/aws/aws-sdk-go-v2/service/transcribe/types"
)

// Client starts speech-to-text jobs against the transcription service
type Client struct {
	api *transcribesvc.Client
}

// NewClient creates a new transcription client
func NewClient(api *transcribesvc.Client) *Client {
	return &Client{api: api}
}

// StartJob starts an asynchronous transcription job. The result appears
// later as a new object under the request's output key.
func (c *Client) StartJob(ctx context.Context, req pipeline.TranscriptionRequest) error {
	log.Printf("Starting transcription job %s for %s", req.JobName, req.MediaURI)

	_, err := c.api.StartTranscriptionJob(ctx, &transcribesvc.StartTranscriptionJobInput{
		TranscriptionJobName: aws.String(req.JobName),
		Media: &types.Media{
			MediaFileUri: aws.String(req.MediaURI),
		},
		MediaFormat:      types.MediaFormat(req.MediaFormat),
		LanguageCode:     types.LanguageCode(req.LanguageCode),
		OutputBucketName: aws.String(req.OutputBucket),
		OutputKey:        aws.String(req.OutputKey),
	})
	if err != nil {
		return fmt.Errorf("start transcription job %s: %w", req.JobName, err)
	}
	return nil
}
