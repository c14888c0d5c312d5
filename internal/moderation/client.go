package moderation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/sensai/hubmind/pkg/config"
	"github.com/sensai/hubmind/pkg/logging"
	"github.com/sensai/hubmind/pkg/telemetry"
)

// ClassifyResult is the verdict of an external moderation model on one
// piece of text
type ClassifyResult struct {
	Flagged    bool
	Categories map[string]bool
}

// Classifier scores text against an external moderation model
type Classifier interface {
	Classify(ctx context.Context, text string) (*ClassifyResult, error)
}

// HTTPClassifier calls an OpenAI-compatible moderation endpoint
type HTTPClassifier struct {
	url    string
	apiKey string
	client *http.Client
	logger *zap.Logger
}

// NewHTTPClassifier creates a classifier from moderation config
func NewHTTPClassifier(cfg *config.ModerationConfig) (*HTTPClassifier, error) {
	if cfg.APIURL == "" {
		return nil, fmt.Errorf("moderation_api_url is required")
	}

	logger := logging.GetLogger().With(zap.String("component", "moderation-client"))

	classifier := &HTTPClassifier{
		url:    cfg.APIURL,
		apiKey: cfg.APIKey,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}

	logger.Info("Moderation classifier initialized", zap.String("url", cfg.APIURL))

	return classifier, nil
}

type moderationRequest struct {
	Input string `json:"input"`
}

type moderationResponse struct {
	Results []struct {
		Flagged    bool            `json:"flagged"`
		Categories map[string]bool `json:"categories"`
	} `json:"results"`
}

// Classify submits text to the moderation endpoint and returns the
// first result
func (c *HTTPClassifier) Classify(ctx context.Context, text string) (*ClassifyResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "moderation.classify")
	defer span.End()

	body, err := json.Marshal(moderationRequest{Input: text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal moderation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build moderation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("moderation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("moderation endpoint returned %d: %s", resp.StatusCode, string(data))
	}

	var parsed moderationResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode moderation response: %w", err)
	}
	if len(parsed.Results) == 0 {
		return nil, fmt.Errorf("moderation endpoint returned no results")
	}

	return &ClassifyResult{
		Flagged:    parsed.Results[0].Flagged,
		Categories: parsed.Results[0].Categories,
	}, nil
}
