package genai

import (
	"context"
	"fmt"
	"strings"

	"video-pipeline/core/invoke"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

// ModelPremier is the model variant that only runs through a provisioned
// inference profile; invoking it without one is a configuration error, not a
// retryable failure.
const ModelPremier = "amazon.nova-premier-v1:0"

// Client performs synchronous generative model calls
type Client struct {
	api        *bedrockruntime.Client
	modelID    string
	profileARN string
}

// NewClient creates a generative model client bound to one model. The
// profile ARN is only consulted for the premier variant.
func NewClient(api *bedrockruntime.Client, modelID, profileARN string) *Client {
	return &Client{
		api:        api,
		modelID:    modelID,
		profileARN: profileARN,
	}
}

// Invoke sends one JSON payload to the model and returns the raw response
// body. The response shape varies across model families; callers normalize
// it with the extract package.
func (c *Client) Invoke(ctx context.Context, body []byte) ([]byte, error) {
	modelID := c.modelID
	if c.modelID == ModelPremier {
		if c.profileARN == "" {
			return nil, fmt.Errorf("%w: model %s requires a provisioned inference profile; set INFERENCE_PROFILE_ARN", invoke.ErrConfiguration, c.modelID)
		}
		// Provisioned models are addressed by their profile ARN.
		modelID = c.profileARN
	}

	out, err := c.api.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		if c.modelID == ModelPremier && strings.Contains(strings.ToLower(err.Error()), "inference profile") {
			return nil, fmt.Errorf("%w: model %s rejected the inference profile %q: %v", invoke.ErrConfiguration, c.modelID, c.profileARN, err)
		}
		return nil, fmt.Errorf("invoke model %s: %w", c.modelID, err)
	}
	return out.Body, nil
}

// ModelID returns the configured model identifier
func (c *Client) ModelID() string {
	return c.modelID
}
