// Package qualtrics implements the response-export workflow against the
// Qualtrics v3 API: create an export, poll its progress, download the
// resulting zip. The client keeps no state between calls beyond the
// progress and file identifiers the caller threads through.
package qualtrics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/civiclab/qualsync/internal/config"
	"github.com/civiclab/qualsync/internal/fault"
)

const requestTimeout = 60 * time.Second

// Client talks to the Qualtrics response-export API for one survey.
type Client struct {
	baseURL  string
	token    string
	surveyID string
	interval time.Duration
	timeout  time.Duration
	client   *http.Client
}

// NewClient creates a Client from the loaded configuration.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL:  cfg.BaseURL,
		token:    cfg.APIToken,
		surveyID: cfg.SurveyID,
		interval: cfg.PollInterval,
		timeout:  cfg.PollTimeout,
		client:   &http.Client{Timeout: requestTimeout},
	}
}

// exportEnvelope is the JSON wrapper Qualtrics puts around export results.
type exportEnvelope struct {
	Result struct {
		ProgressID      string  `json:"progressId"`
		FileID          string  `json:"fileId"`
		Status          string  `json:"status"`
		PercentComplete float64 `json:"percentComplete"`
	} `json:"result"`
}

func (c *Client) exportURL(suffix string) string {
	return fmt.Sprintf("%s/API/v3/surveys/%s/export-responses%s", c.baseURL, c.surveyID, suffix)
}

// StartExport requests a CSV export of all responses and returns the
// progress identifier to poll.
func (c *Client) StartExport(ctx context.Context) (string, error) {
	url := c.exportURL("")
	payload := map[string]any{"format": "csv", "useLabels": true}

	var envelope exportEnvelope
	if err := c.requestJSON(ctx, http.MethodPost, url, payload, &envelope); err != nil {
		return "", err
	}
	if envelope.Result.ProgressID == "" {
		return "", &fault.RemoteError{URL: url, Detail: "export response carried no progressId"}
	}
	return envelope.Result.ProgressID, nil
}

// AwaitCompletion polls the export status at the configured interval until
// it completes, fails, or the configured wall-clock timeout elapses. On
// success it returns the file identifier of the finished archive.
func (c *Client) AwaitCompletion(ctx context.Context, progressID string) (string, error) {
	url := c.exportURL("/" + progressID)
	started := time.Now()

	for {
		var envelope exportEnvelope
		if err := c.requestJSON(ctx, http.MethodGet, url, nil, &envelope); err != nil {
			return "", err
		}

		switch strings.ToLower(envelope.Result.Status) {
		case "complete":
			if envelope.Result.FileID == "" {
				return "", &fault.RemoteError{URL: url, Detail: "export completed without a fileId"}
			}
			return envelope.Result.FileID, nil
		case "failed", "error":
			return "", &fault.RemoteError{
				URL:    url,
				Detail: fmt.Sprintf("export ended in status %q", envelope.Result.Status),
			}
		}

		if elapsed := time.Since(started); elapsed > c.timeout {
			return "", &fault.TimeoutError{Stage: "qualtrics export", Elapsed: elapsed}
		}

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("awaiting export completion: %w", ctx.Err())
		case <-time.After(c.interval):
		}
	}
}

// FetchArchive downloads the completed export as raw zip bytes.
func (c *Client) FetchArchive(ctx context.Context, fileID string) ([]byte, error) {
	url := c.exportURL("/" + fileID + "/file")
	return c.request(ctx, http.MethodGet, url, nil)
}

// requestJSON performs a request and decodes the response body into out.
func (c *Client) requestJSON(ctx context.Context, method, url string, payload any, out any) error {
	body, err := c.request(ctx, method, url, payload)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &fault.FormatError{
			Msg: fmt.Sprintf("invalid JSON from %s: %s", url, excerpt(body)),
		}
	}
	return nil
}

// request performs one authenticated API call and returns the raw body.
// Non-2xx statuses become RemoteErrors carrying a body excerpt.
func (c *Client) request(ctx context.Context, method, url string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshaling request payload: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", url, err)
	}
	req.Header.Set("X-API-TOKEN", c.token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &fault.RemoteError{URL: url, Detail: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response from %s: %w", url, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &fault.RemoteError{URL: url, Status: resp.StatusCode, Detail: excerpt(body)}
	}
	return body, nil
}

// excerpt truncates a response body for error messages.
func excerpt(body []byte) string {
	const limit = 200
	s := string(body)
	if len(s) > limit {
		s = s[:limit] + "..."
	}
	return s
}
