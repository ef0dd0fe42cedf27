package sidecar

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ozen/internal/services"
)

const maxErrorBody = 2048

// Client talks to one sidecar base URL.
type Client struct {
	name    string
	stage   string
	baseURL string
	http    *http.Client
}

// New returns a client for the sidecar at baseURL. name and stage are used
// in error messages.
func New(name, stage, baseURL string, timeout time.Duration) *Client {
	return &Client{
		name:    name,
		stage:   stage,
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the normalized sidecar URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Health returns nil when GET /health answers 200.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, c.stage, c.name+" health", "build request", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, c.stage, c.name+" health", c.baseURL, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return services.Wrap(services.ErrExternalTool, c.stage, c.name+" health", fmt.Sprintf("status %d", resp.StatusCode), nil)
	}
	return nil
}

// PostAudio uploads the file at audioPath as the "audio" form field along
// with fields to endpoint and decodes the JSON reply into out.
func (c *Client) PostAudio(ctx context.Context, endpoint, audioPath string, fields map[string]string, out any) error {
	operation := c.name + " " + endpoint
	body, contentType, err := buildForm(audioPath, fields)
	if err != nil {
		return services.Wrap(services.ErrValidation, c.stage, operation, "build upload", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, body)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, c.stage, operation, "build request", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() == nil && isTimeout(err) {
			return services.Wrap(services.ErrTimeout, c.stage, operation, c.baseURL, err)
		}
		return services.Wrap(services.ErrExternalTool, c.stage, operation, c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return services.Wrap(services.ErrExternalTool, c.stage, operation,
			fmt.Sprintf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet))), nil)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return services.Wrap(services.ErrExternalTool, c.stage, operation, "decode response", err)
	}
	return nil
}

func buildForm(audioPath string, fields map[string]string) (*bytes.Buffer, string, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("audio", filepath.Base(audioPath))
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", fmt.Errorf("write audio data: %w", err)
	}
	for key, value := range fields {
		if value == "" {
			continue
		}
		if err := writer.WriteField(key, value); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", key, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close form: %w", err)
	}
	return &buf, writer.FormDataContentType(), nil
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
