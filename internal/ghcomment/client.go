// Package ghcomment posts the scan report as a pull-request comment.
// Repeated runs update the previous comment instead of stacking new
// ones: the comment is keyed on the automation author plus the report
// title marker.
package ghcomment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"deadsnakes/internal/config"
	"deadsnakes/internal/report"
)

// botLogin is the author the upsert matches on. GitHub attributes
// workflow-posted comments to this account.
const botLogin = "github-actions[bot]"

// ErrIncompleteConfig signals missing credentials or thread identifiers.
// The caller reports it as a diagnostic; it never changes the scan's
// pass/fail outcome.
var ErrIncompleteConfig = errors.New("missing GITHUB_TOKEN, GITHUB_REPOSITORY or GITHUB_PR_NUMBER")

// Client talks to the GitHub issues API for a single pull request.
type Client struct {
	cfg    config.GitHubConfig
	client *http.Client
	logger *slog.Logger
}

// NewClient creates a notifier client from the environment-derived
// GitHub configuration.
func NewClient(cfg config.GitHubConfig, logger *slog.Logger) *Client {
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
		logger: logger,
	}
}

type comment struct {
	URL  string `json:"url"`
	Body string `json:"body"`
	User struct {
		Login string `json:"login"`
	} `json:"user"`
}

// Upsert posts body as the report comment, or patches the existing one
// when a prior comment by the bot author carrying the title marker is
// found. Fire-once: no retries.
func (c *Client) Upsert(ctx context.Context, body string) error {
	if !c.cfg.Complete() {
		return ErrIncompleteConfig
	}

	listURL := fmt.Sprintf("%s/repos/%s/issues/%s/comments",
		strings.TrimSuffix(c.cfg.APIURL, "/"), c.cfg.Repository, c.cfg.PRNumber)

	existing, err := c.findExisting(ctx, listURL)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(map[string]string{"body": body})
	if err != nil {
		return fmt.Errorf("failed to encode comment: %w", err)
	}

	method, url := http.MethodPost, listURL
	if existing != nil {
		method, url = http.MethodPatch, existing.URL
	}

	resp, err := c.do(ctx, method, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("comment %s failed: status %d", method, resp.StatusCode)
	}

	c.logger.Debug("PR comment written", "method", method, "pr", c.cfg.PRNumber)
	return nil
}

// findExisting returns the prior report comment, or nil.
func (c *Client) findExisting(ctx context.Context, listURL string) (*comment, error) {
	resp, err := c.do(ctx, http.MethodGet, listURL, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("listing comments failed: status %d", resp.StatusCode)
	}

	var comments []comment
	if err := json.NewDecoder(resp.Body).Decode(&comments); err != nil {
		return nil, fmt.Errorf("failed to decode comments: %w", err)
	}

	for i := range comments {
		if comments[i].User.Login == botLogin && strings.Contains(comments[i].Body, report.Title) {
			return &comments[i], nil
		}
	}
	return nil, nil
}

func (c *Client) do(ctx context.Context, method, url string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "token "+c.cfg.Token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("github request failed: %w", err)
	}
	return resp, nil
}
