// Package jira creates issues through the Jira REST API v2.
package jira

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	gojira "github.com/andygrunwald/go-jira"
	"go.uber.org/zap"
)

// IssuePath is the REST path issues are created at, relative to the site.
const IssuePath = "rest/api/2/issue/"

// Credentials authenticate against Jira Cloud using an account email and an
// API token.
type Credentials struct {
	Email    string
	APIToken string
}

// IssueRequest describes the issue to create.
type IssueRequest struct {
	ProjectKey  string
	Summary     string
	Description string
	IssueType   string
}

// Response carries the raw answer from Jira whatever its status.
type Response struct {
	StatusCode int
	Body       []byte
}

// TransportError reports a request that never produced an HTTP response.
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("jira: request to %s: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Option customises a Client.
type Option func(*Client)

// WithTransport overrides the round tripper beneath the basic auth layer.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		if rt != nil {
			c.transport = rt
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client creates issues on whichever Jira site a request names.
type Client struct {
	transport http.RoundTripper
	logger    *zap.Logger
}

// New returns a Client.
func New(opts ...Option) *Client {
	c := &Client{logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	c.logger = c.logger.Named("jira")
	return c
}

// BaseURL ensures the site URL ends with a slash.
func BaseURL(site string) string {
	site = strings.TrimSpace(site)
	if !strings.HasSuffix(site, "/") {
		site += "/"
	}
	return site
}

// IssueEndpoint returns the absolute issue creation URL for site.
func IssueEndpoint(site string) string {
	return BaseURL(site) + IssuePath
}

// CreateIssue posts the issue to site. Non-2xx answers are returned as a
// Response, not an error.
func (c *Client) CreateIssue(ctx context.Context, site string, creds Credentials, req IssueRequest) (*Response, error) {
	endpoint := IssueEndpoint(site)

	auth := gojira.BasicAuthTransport{
		Username:  creds.Email,
		Password:  creds.APIToken,
		Transport: c.transport,
	}
	api, err := gojira.NewClient(auth.Client(), BaseURL(site))
	if err != nil {
		return nil, fmt.Errorf("jira: client for %s: %w", site, err)
	}

	issue := &gojira.Issue{
		Fields: &gojira.IssueFields{
			Project:     gojira.Project{Key: req.ProjectKey},
			Summary:     req.Summary,
			Description: req.Description,
			Type:        gojira.IssueType{Name: req.IssueType},
		},
	}
	httpReq, err := api.NewRequestWithContext(ctx, http.MethodPost, IssuePath, issue)
	if err != nil {
		return nil, fmt.Errorf("jira: build request: %w", err)
	}

	c.logger.Debug("creating issue",
		zap.String("endpoint", endpoint),
		zap.String("project", req.ProjectKey),
		zap.String("type", req.IssueType),
	)

	resp, err := api.Do(httpReq, nil)
	if resp == nil {
		if err == nil {
			err = errors.New("no response")
		}
		return nil, &TransportError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return nil, &TransportError{Endpoint: endpoint, Err: readErr}
	}
	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}
