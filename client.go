package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// remoteTimeout bounds one completion request end to end.
const remoteTimeout = 120 * time.Second

// modelClient speaks the completion endpoint: a single POST to
// <base>/v1/responses carrying model, instructions, and input.
type modelClient struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

func newModelClient(apiKey, baseURL, model string) *modelClient {
	return &modelClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: remoteTimeout},
	}
}

type completionRequest struct {
	Model        string `json:"model"`
	Instructions string `json:"instructions"`
	Input        string `json:"input"`
}

type completionResponse struct {
	OutputText string `json:"output_text"`
	Output     []struct {
		Type    string `json:"type"`
		Text    string `json:"text"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"output"`
}

// Complete performs one completion call and extracts the response text:
// the first populated of the top-level output text, a message's text, or a
// textual part inside a content array.
func (c *modelClient) Complete(ctx context.Context, instructions, input string) (string, error) {
	payload, err := json.Marshal(completionRequest{
		Model:        c.model,
		Instructions: instructions,
		Input:        input,
	})
	if err != nil {
		return "", fmt.Errorf("encoding completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/responses", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("reading completion response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("completion API %d: %s", resp.StatusCode, string(body))
	}

	var cr completionResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return "", fmt.Errorf("parsing completion response: %w", err)
	}
	if text := extractResponseText(cr); text != "" {
		return text, nil
	}
	return "", fmt.Errorf("completion response carried no text")
}

func extractResponseText(cr completionResponse) string {
	if cr.OutputText != "" {
		return cr.OutputText
	}
	for _, out := range cr.Output {
		if out.Text != "" {
			return out.Text
		}
		for _, part := range out.Content {
			if part.Text != "" {
				return part.Text
			}
		}
	}
	return ""
}
