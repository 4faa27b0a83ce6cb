package classify

import (
	"context"
	"fmt"
	"log"

	"video-pipeline/core/pipeline"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker/types"
)

// Client starts batch audio-event classification jobs
type Client struct {
	api *sagemaker.Client
}

// NewClient creates a new classification client
func NewClient(api *sagemaker.Client) *Client {
	return &Client{api: api}
}

// StartBatchJob starts an asynchronous batch transform job over one staged
// audio object. The classification result appears later under the request's
// output prefix.
func (c *Client) StartBatchJob(ctx context.Context, req pipeline.ClassificationRequest) error {
	log.Printf("Starting classification job %s for %s", req.JobName, req.InputURI)

	_, err := c.api.CreateTransformJob(ctx, &sagemaker.CreateTransformJobInput{
		TransformJobName:        aws.String(req.JobName),
		ModelName:               aws.String(req.ModelName),
		MaxConcurrentTransforms: aws.Int32(1),
		MaxPayloadInMB:          aws.Int32(100),
		BatchStrategy:           types.BatchStrategySingleRecord,
		TransformInput: &types.TransformInput{
			DataSource: &types.TransformDataSource{
				S3DataSource: &types.TransformS3DataSource{
					S3DataType: types.S3DataTypeS3Prefix,
					S3Uri:      aws.String(req.InputURI),
				},
			},
			ContentType: aws.String(req.ContentType),
			SplitType:   types.SplitTypeNone,
		},
		TransformOutput: &types.TransformOutput{
			S3OutputPath: aws.String(req.OutputURI),
			Accept:       aws.String("application/json"),
			AssembleWith: types.AssemblyTypeLine,
		},
		TransformResources: &types.TransformResources{
			InstanceType:  types.TransformInstanceType(req.InstanceType),
			InstanceCount: aws.Int32(1),
		},
	})
	if err != nil {
		return fmt.Errorf("start classification job %s: %w", req.JobName, err)
	}
	return nil
}
