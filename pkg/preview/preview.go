package preview

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"time"
)

// Generator produces a first-page JPEG preview for an uploaded document via
// an external conversion API.
type Generator interface {
	// Generate converts the document and returns the JPEG bytes of its first
	// page, or an error when conversion fails or exceeds the timeout.
	Generate(ctx context.Context, r io.Reader, fileName, contentType string) ([]byte, error)
}

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

func ConfigFromEnv() Config {
	return Config{
		BaseURL: strings.TrimSpace(os.Getenv("PREVIEW_API_URL")),
		APIKey:  strings.TrimSpace(os.Getenv("PREVIEW_API_KEY")),
		Timeout: 30 * time.Second,
	}
}

type httpGenerator struct {
	cfg    Config
	client *http.Client
}

func New(cfg Config) (Generator, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("missing PREVIEW_API_URL")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &httpGenerator{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

func (g *httpGenerator) Generate(ctx context.Context, r io.Reader, fileName, contentType string) ([]byte, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		return nil, fmt.Errorf("failed to build conversion request: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("failed to read document for conversion: %w", err)
	}
	if err := mw.WriteField("content_type", contentType); err != nil {
		return nil, fmt.Errorf("failed to build conversion request: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to build conversion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.BaseURL+"/convert/first-page", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if g.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("conversion request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("conversion api returned %d: %s", resp.StatusCode, string(detail))
	}

	jpeg, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read converted preview: %w", err)
	}
	if len(jpeg) == 0 {
		return nil, fmt.Errorf("conversion api returned an empty preview")
	}
	return jpeg, nil
}
