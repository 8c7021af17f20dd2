// Package gateway talks to the upstream capability provider that fronts all
// external integrations (calendar, tasks, email, files, knowledge base).
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sandevgo/sazed/internal/config"
	"github.com/sandevgo/sazed/internal/core"
)

const requestTimeout = 30 * time.Second

type Client struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

func NewClient(cfg *config.GatewayConfig) *Client {
	return &Client{
		client:  &http.Client{Timeout: requestTimeout},
		baseURL: strings.TrimRight(cfg.URL, "/"),
		apiKey:  cfg.APIKey,
	}
}

// Call issues a request at the resolved path. GET and DELETE encode args as
// query parameters; other methods send them as a JSON body. The decoded body
// is returned pretty-printed when it is JSON, raw otherwise.
func (c *Client) Call(ctx context.Context, method, path string, args map[string]any) (string, error) {
	var bodyReader io.Reader
	reqURL := c.baseURL + path

	switch method {
	case http.MethodGet, http.MethodDelete:
		if len(args) > 0 {
			q := url.Values{}
			for k, v := range args {
				if v == nil {
					continue
				}
				q.Set(k, fmt.Sprintf("%v", v))
			}
			if encoded := q.Encode(); encoded != "" {
				reqURL += "?" + encoded
			}
		}
	default:
		data, err := json.Marshal(args)
		if err != nil {
			return "", fmt.Errorf("marshal args: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("User-Agent", core.AppUserAgent)
	if bodyReader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return "Deleted successfully.", nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("gateway returned %d: %s", resp.StatusCode, string(data))
	}

	return prettyJSON(data), nil
}

func prettyJSON(data []byte) string {
	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return string(data)
	}
	pretty, err := json.MarshalIndent(decoded, "", "  ")
	if err != nil {
		return string(data)
	}
	return string(pretty)
}
