// Package campaign provides a client for the third-party campaign/voting API.
package campaign

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kyiku/mall-event-back/internal/model"
)

// Sentinel errors returned by the client.
var (
	ErrNotFound  = errors.New("campaign api: not found")
	ErrDuplicate = errors.New("campaign api: duplicate action")
)

// APIError is a non-2xx response that is not covered by a sentinel.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("campaign api: status %d: %s", e.Status, e.Body)
}

// maxErrorBody limits how much of an error response is kept.
const maxErrorBody = 1024

// actionPaths maps an action to its submission sub-resource.
var actionPaths = map[model.Action]string{
	model.ActionVote:  "votes",
	model.ActionLike:  "likes",
	model.ActionShare: "shares",
}

// Client talks to the campaign API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	retry   RetryPolicy
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithRetryPolicy replaces the retry policy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *Client) { c.retry = p }
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// NewClient creates a new campaign API client.
func NewClient(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 10 * time.Second},
		retry:   DefaultRetryPolicy,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetCampaign fetches a campaign and its submissions.
func (c *Client) GetCampaign(ctx context.Context, id string) (*model.Campaign, error) {
	var campaign model.Campaign
	endpoint := fmt.Sprintf("%s/campaigns/%s", c.baseURL, url.PathEscape(id))
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &campaign); err != nil {
		return nil, fmt.Errorf("failed to get campaign %s: %w", id, err)
	}
	return &campaign, nil
}

// Vote casts a vote for a submission.
func (c *Client) Vote(ctx context.Context, submissionID, userID string) (*model.Counts, error) {
	return c.Act(ctx, model.ActionVote, submissionID, userID)
}

// Like likes a submission.
func (c *Client) Like(ctx context.Context, submissionID, userID string) (*model.Counts, error) {
	return c.Act(ctx, model.ActionLike, submissionID, userID)
}

// Share records a share of a submission.
func (c *Client) Share(ctx context.Context, submissionID, userID string) (*model.Counts, error) {
	return c.Act(ctx, model.ActionShare, submissionID, userID)
}

type actionRequest struct {
	UserID string `json:"userId"`
}

type actionResponse struct {
	Counts model.Counts `json:"counts"`
}

// Act posts an action and returns the updated counts.
func (c *Client) Act(ctx context.Context, action model.Action, submissionID, userID string) (*model.Counts, error) {
	sub, ok := actionPaths[action]
	if !ok {
		return nil, fmt.Errorf("unsupported action %q", action)
	}

	body, err := json.Marshal(actionRequest{UserID: userID})
	if err != nil {
		return nil, err
	}

	var resp actionResponse
	endpoint := fmt.Sprintf("%s/submissions/%s/%s", c.baseURL, url.PathEscape(submissionID), sub)
	if err := c.do(ctx, http.MethodPost, endpoint, body, &resp); err != nil {
		return nil, fmt.Errorf("failed to %s submission %s: %w", action, submissionID, err)
	}
	return &resp.Counts, nil
}

// do sends the request and decodes a JSON response into v. Only GET is
// retried; an action POST may already have been applied upstream when the
// gateway fails.
func (c *Client) do(ctx context.Context, method, endpoint string, body []byte, v any) error {
	policy := c.retry
	if method != http.MethodGet {
		policy = RetryPolicy{Attempts: 1}
	}

	return Retry(ctx, policy, func() error {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return &RetryableError{Err: err}
		}
		defer resp.Body.Close()

		if err := checkStatus(resp); err != nil {
			return err
		}
		return json.NewDecoder(resp.Body).Decode(v)
	})
}

func checkStatus(resp *http.Response) error {
	code := resp.StatusCode
	if code >= 200 && code < 300 {
		return nil
	}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	switch {
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusConflict:
		return ErrDuplicate
	case code >= 500:
		return &RetryableError{Err: &APIError{Status: code, Body: string(data)}}
	default:
		return &APIError{Status: code, Body: string(data)}
	}
}
