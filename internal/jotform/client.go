package jotform

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pioneerbroadband/leadtracker/internal/leads"
	"github.com/pioneerbroadband/leadtracker/internal/observability/metrics"
)

const (
	defaultBaseURL   = "https://api.jotform.com"
	defaultUserAgent = "leadtracker/0.1"
)

// Config controls how the Jotform client behaves.
type Config struct {
	BaseURL    string
	APIKey     string
	FormID     string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
	Metrics    *metrics.TrackerMetrics
	UserAgent  string
}

// Client wraps the Jotform submission endpoints the tracker needs.
// There is no automatic retry: a failed call is reported to the operator
// and retried only by an explicit refresh or re-submit.
type Client struct {
	apiKey     string
	baseURL    string
	formID     string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *metrics.TrackerMetrics
	userAgent  string
}

// New creates a configured Client with sane defaults.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("jotform: API key is required")
	}
	if strings.TrimSpace(cfg.FormID) == "" {
		return nil, errors.New("jotform: form id is required")
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		formID:     cfg.FormID,
		httpClient: httpClient,
		logger:     logger,
		metrics:    cfg.Metrics,
		userAgent:  userAgent,
	}, nil
}

// Submission is a raw provider record before adaptation.
type Submission struct {
	ID        string            `json:"id"`
	CreatedAt string            `json:"created_at"`
	UpdatedAt string            `json:"updated_at"`
	Answers   map[string]Answer `json:"answers"`
}

// Answer holds one question's response. The payload shape varies by
// question type, so the value is kept raw and decoded lazily.
type Answer struct {
	Answer json.RawMessage `json:"answer"`
}

// Text decodes the answer as a plain string, returning "" for absent or
// non-string payloads.
func (a Answer) Text() string {
	if len(a.Answer) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(a.Answer, &s); err == nil {
		return s
	}
	return ""
}

type envelope struct {
	ResponseCode int             `json:"responseCode"`
	Message      string          `json:"message"`
	Content      json.RawMessage `json:"content"`
}

// ListSubmissions fetches every submission for the configured form.
func (c *Client) ListSubmissions(ctx context.Context) ([]Submission, error) {
	content, err := c.invoke(ctx, http.MethodGet, "/form/"+c.formID+"/submissions", nil, "list_submissions")
	if err != nil {
		return nil, err
	}
	var subs []Submission
	if err := json.Unmarshal(content, &subs); err != nil {
		return nil, fmt.Errorf("jotform: decode submissions: %w", err)
	}
	return subs, nil
}

// CreateSubmission posts a new submission and returns the assigned id.
// Field keys are provider question ids.
func (c *Client) CreateSubmission(ctx context.Context, fields map[string]string) (string, error) {
	content, err := c.invoke(ctx, http.MethodPost, "/form/"+c.formID+"/submissions", fields, "create_submission")
	if err != nil {
		return "", err
	}
	var created struct {
		SubmissionID string `json:"submissionID"`
	}
	if err := json.Unmarshal(content, &created); err != nil {
		return "", fmt.Errorf("jotform: decode create response: %w", err)
	}
	if created.SubmissionID == "" {
		return "", errors.New("jotform: create response missing submission id")
	}
	return created.SubmissionID, nil
}

// UpdateSubmission posts a partial field set against an existing
// submission. Only the changed fields are sent.
func (c *Client) UpdateSubmission(ctx context.Context, id string, fields map[string]string) error {
	_, err := c.invoke(ctx, http.MethodPost, "/submission/"+id, fields, "update_submission")
	return err
}

// DeleteSubmission removes a submission permanently.
func (c *Client) DeleteSubmission(ctx context.Context, id string) error {
	_, err := c.invoke(ctx, http.MethodDelete, "/submission/"+id, nil, "delete_submission")
	return err
}

func (c *Client) invoke(ctx context.Context, method, path string, fields map[string]string, op string) (json.RawMessage, error) {
	endpoint := c.baseURL + path + "?apiKey=" + url.QueryEscape(c.apiKey)

	var body io.Reader
	contentType := ""
	if fields != nil {
		form := url.Values{}
		for id, v := range fields {
			form.Set(fmt.Sprintf("submission[%s]", id), v)
		}
		body = strings.NewReader(form.Encode())
		contentType = "application/x-www-form-urlencoded"
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("jotform: build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveProviderRequest(op, "transport_error", time.Since(start).Seconds())
		return nil, fmt.Errorf("jotform: %s: %w", op, err)
	}
	defer resp.Body.Close()
	c.metrics.ObserveProviderRequest(op, fmt.Sprintf("%d", resp.StatusCode), time.Since(start).Seconds())

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, fmt.Errorf("jotform: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("provider request failed", "op", op, "status", resp.StatusCode)
		return nil, &leads.ProviderError{Op: op, StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("jotform: decode envelope: %w", err)
	}
	if env.ResponseCode != 0 && env.ResponseCode != http.StatusOK {
		return nil, &leads.ProviderError{Op: op, StatusCode: env.ResponseCode, Message: env.Message}
	}
	return env.Content, nil
}
