// Package vision calls the scoreboard analysis model. The rest of the
// application only sees the Analyzer interface and the decoded
// match.AnalysisResult.
package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/stratbook-gg/stratbook/internal/match"
)

// ErrNotConfigured is returned when no vision endpoint is configured.
var ErrNotConfigured = errors.New("vision: no analyzer endpoint configured")

// APIAnalyzer posts screenshots to a hosted vision model endpoint. It
// satisfies match.Analyzer.
type APIAnalyzer struct {
	endpoint string
	apiKey   string
	model    string
	client   *http.Client
}

func NewAPIAnalyzer(endpoint, apiKey, model string) *APIAnalyzer {
	return &APIAnalyzer{
		endpoint: endpoint,
		apiKey:   apiKey,
		model:    model,
		client:   &http.Client{Timeout: 60 * time.Second},
	}
}

type analyzeRequest struct {
	Model       string `json:"model"`
	Image       string `json:"image"` // base64
	ContentType string `json:"content_type"`
}

func (a *APIAnalyzer) Analyze(ctx context.Context, image []byte, contentType string) (*match.AnalysisResult, error) {
	body, err := json.Marshal(analyzeRequest{
		Model:       a.model,
		Image:       base64.StdEncoding.EncodeToString(image),
		ContentType: contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("vision: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("vision: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.apiKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vision: call analyzer: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("vision: analyzer returned %d", resp.StatusCode)
	}

	var result match.AnalysisResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("vision: decode analysis: %w", err)
	}
	return &result, nil
}

// StaticAnalyzer returns a fixed result. Used in tests and local development
// without a vision endpoint configured.
type StaticAnalyzer struct {
	Result *match.AnalysisResult
	Err    error
}

func (s StaticAnalyzer) Analyze(context.Context, []byte, string) (*match.AnalysisResult, error) {
	return s.Result, s.Err
}
