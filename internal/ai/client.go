package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrUnavailable means no recognition service is configured.
var ErrUnavailable = errors.New("ai service not configured")

// Client calls the recognition and macro functions, usually the ones
// served by internal/aiproxy.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

func (c *Client) RecognizeImage(ctx context.Context, imageBase64, additionalText string) (Recognition, error) {
	if strings.TrimSpace(imageBase64) == "" {
		return Recognition{}, fmt.Errorf("image is required")
	}
	var out Recognition
	req := map[string]string{"image_base64": imageBase64}
	if strings.TrimSpace(additionalText) != "" {
		req["additional_text"] = additionalText
	}
	if err := c.post(ctx, "recognize-food", req, &out); err != nil {
		return Recognition{}, err
	}
	return out, nil
}

func (c *Client) RecognizeText(ctx context.Context, text string) (Recognition, error) {
	if strings.TrimSpace(text) == "" {
		return Recognition{}, fmt.Errorf("text is required")
	}
	var out Recognition
	if err := c.post(ctx, "recognize-food-text", map[string]string{"text": text}, &out); err != nil {
		return Recognition{}, err
	}
	return out, nil
}

func (c *Client) CalculateMacros(ctx context.Context, req MacroRequest) (MacroResult, error) {
	var out MacroResult
	if err := c.post(ctx, "calculate-macros", req, &out); err != nil {
		return MacroResult{}, err
	}
	return out, nil
}

func (c *Client) post(ctx context.Context, function string, in, out any) error {
	base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if base == "" {
		return ErrUnavailable
	}
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", function, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/"+function, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create %s request: %w", function, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute %s request: %w", function, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", function, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &e) == nil && e.Error != "" {
			return fmt.Errorf("%s failed with status %d: %s", function, resp.StatusCode, e.Error)
		}
		return fmt.Errorf("%s failed with status %d", function, resp.StatusCode)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", function, err)
	}
	return nil
}
