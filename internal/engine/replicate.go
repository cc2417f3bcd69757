package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxImageSize is the maximum downloaded image size (20MB).
const maxImageSize = 20 * 1024 * 1024

// ReplicateClient implements ImageClient against the Replicate predictions
// API, using the Ideogram model with fixed rendering parameters.
type ReplicateClient struct {
	apiToken   string
	baseURL    string
	model      string
	httpClient *http.Client
}

// ReplicateOption configures the Replicate client.
type ReplicateOption func(*ReplicateClient)

// WithReplicateModel sets the model path (owner/name).
func WithReplicateModel(model string) ReplicateOption {
	return func(c *ReplicateClient) { c.model = model }
}

// WithReplicateBaseURL overrides the API endpoint, for tests.
func WithReplicateBaseURL(url string) ReplicateOption {
	return func(c *ReplicateClient) { c.baseURL = url }
}

// NewReplicateClient creates a new Replicate image client.
func NewReplicateClient(apiToken string, opts ...ReplicateOption) *ReplicateClient {
	c := &ReplicateClient{
		apiToken: apiToken,
		baseURL:  "https://api.replicate.com/v1",
		model:    "ideogram-ai/ideogram-v2-turbo",
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type predictionRequest struct {
	Input predictionInput `json:"input"`
}

type predictionInput struct {
	Prompt            string `json:"prompt"`
	Resolution        string `json:"resolution"`
	StyleType         string `json:"style_type"`
	AspectRatio       string `json:"aspect_ratio"`
	MagicPromptOption string `json:"magic_prompt_option"`
}

type predictionResponse struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Output json.RawMessage `json:"output"`
	Error  string          `json:"error,omitempty"`
	URLs   struct {
		Get string `json:"get"`
	} `json:"urls"`
}

// Generate creates a prediction for the prompt and downloads the resulting
// image, polling until the backend reports a terminal status.
func (c *ReplicateClient) Generate(ctx context.Context, prompt string) ([]byte, error) {
	pred, err := c.createPrediction(ctx, prompt)
	if err != nil {
		return nil, err
	}

	for pred.Status == "starting" || pred.Status == "processing" {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(2 * time.Second):
		}
		pred, err = c.getPrediction(ctx, pred.URLs.Get)
		if err != nil {
			return nil, err
		}
	}

	if pred.Status != "succeeded" {
		return nil, fmt.Errorf("replicate: prediction %s: %s", pred.Status, pred.Error)
	}

	outputURL, err := outputImageURL(pred.Output)
	if err != nil {
		return nil, fmt.Errorf("replicate: %w", err)
	}
	return c.download(ctx, outputURL)
}

func (c *ReplicateClient) createPrediction(ctx context.Context, prompt string) (*predictionResponse, error) {
	reqBody := predictionRequest{
		Input: predictionInput{
			Prompt:            prompt,
			Resolution:        "1344x768",
			StyleType:         "Auto",
			AspectRatio:       "16:9",
			MagicPromptOption: "Auto",
		},
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s/predictions", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	// Ask the backend to block until the prediction finishes when it can.
	req.Header.Set("Prefer", "wait")

	return c.doPrediction(req)
}

func (c *ReplicateClient) getPrediction(ctx context.Context, url string) (*predictionResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	return c.doPrediction(req)
}

func (c *ReplicateClient) doPrediction(req *http.Request) (*predictionResponse, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, &apiError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var pred predictionResponse
	if err := json.Unmarshal(respBody, &pred); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	return &pred, nil
}

// outputImageURL handles both output shapes the API returns: a single URL
// string or a list of URLs (first one wins).
func outputImageURL(output json.RawMessage) (string, error) {
	var single string
	if err := json.Unmarshal(output, &single); err == nil && single != "" {
		return single, nil
	}
	var list []string
	if err := json.Unmarshal(output, &list); err == nil && len(list) > 0 {
		return list[0], nil
	}
	return "", fmt.Errorf("no image URL in prediction output")
}

func (c *ReplicateClient) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download image: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageSize))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("download image: empty body")
	}
	return data, nil
}
