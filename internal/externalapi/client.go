package externalapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ThiagoRGoveia/csv-files/internal/metrics"
	"github.com/ThiagoRGoveia/csv-files/internal/models"
	"github.com/ThiagoRGoveia/csv-files/pkg/checksum"
	"go.uber.org/zap"
)

// Config holds everything needed to reach the external file API. Each Client
// owns its Config so several clients can target different upstreams.
type Config struct {
	BaseURL string
	APIKey  string
	// Timeout bounds every single remote call. Zero disables it.
	Timeout time.Duration
}

type Client struct {
	config     Config
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(cfg Config, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		config:     cfg,
		httpClient: httpClient,
		logger:     logger,
	}
}

type filesResponse struct {
	Files []string `json:"files"`
}

// ListFiles returns the names of every file the upstream exposes. Any
// transport failure, non-2xx status or malformed body yields a
// *models.ListingError. A successful response without a files key means no
// files.
func (c *Client) ListFiles(ctx context.Context) ([]string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.get(ctx, "/files")
	if err != nil {
		return nil, c.listingFailed("network", fmt.Errorf("failed to request files list: %w", err))
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		drain(resp.Body)
		return nil, c.listingFailed("bad_status", fmt.Errorf("files list returned status %d", resp.StatusCode))
	}

	var payload filesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		return nil, c.listingFailed("malformed_body", fmt.Errorf("failed to decode files list: %w", err))
	}

	metrics.FetchesTotal.WithLabelValues(metrics.EndpointFiles, string(models.ContentOK)).Inc()
	if payload.Files == nil {
		return []string{}, nil
	}
	return payload.Files, nil
}

// FetchContent downloads the raw content of one file. It never fails: missing
// files, upstream errors and transport failures all come back as unavailable
// content. Statuses other than 404 and 500 are logged as warnings since they
// usually point at a misconfiguration.
func (c *Client) FetchContent(ctx context.Context, fileName string) models.Content {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.get(ctx, "/file/"+url.PathEscape(fileName))
	if err != nil {
		c.logger.Debug("File request failed", zap.String("file", fileName), zap.Error(err))
		return c.unavailable(models.ContentNetworkError)
	}
	defer resp.Body.Close()

	switch {
	case isSuccess(resp.StatusCode):
	case resp.StatusCode == http.StatusNotFound:
		drain(resp.Body)
		return c.unavailable(models.ContentNotFound)
	case resp.StatusCode == http.StatusInternalServerError:
		drain(resp.Body)
		return c.unavailable(models.ContentServerError)
	default:
		drain(resp.Body)
		c.logger.Warn("Error fetching file",
			zap.String("file", fileName),
			zap.Int("status", resp.StatusCode))
		return c.unavailable(models.ContentUnexpectedStatus)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Debug("Failed to read file body", zap.String("file", fileName), zap.Error(err))
		return c.unavailable(models.ContentNetworkError)
	}

	c.logger.Debug("Fetched file",
		zap.String("file", fileName),
		zap.Int("bytes", len(body)),
		zap.String("checksum", checksum.Sum(body)))
	metrics.FetchesTotal.WithLabelValues(metrics.EndpointFile, string(models.ContentOK)).Inc()
	return models.AvailableContent(string(body))
}

func (c *Client) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("authorization", c.config.APIKey)

	return c.httpClient.Do(req)
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.config.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.config.Timeout)
}

func (c *Client) listingFailed(outcome string, err error) error {
	metrics.FetchesTotal.WithLabelValues(metrics.EndpointFiles, outcome).Inc()
	c.logger.Error("Error fetching files list", zap.Error(err))
	return &models.ListingError{Err: err}
}

func (c *Client) unavailable(status models.ContentStatus) models.Content {
	metrics.FetchesTotal.WithLabelValues(metrics.EndpointFile, string(status)).Inc()
	return models.UnavailableContent(status)
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}

func drain(body io.Reader) {
	_, _ = io.Copy(io.Discard, body)
}
