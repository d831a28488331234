package jira

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	jiraerrors "jirarest/internal/errors"
)

// BaseAPIPath is the path prefix of every Jira Cloud REST v3 resource.
const BaseAPIPath = "rest/api/3"

// Credentials identifies one Jira Cloud site and the account used to call it.
type Credentials struct {
	// Host is the site subdomain, e.g. "acme" for acme.atlassian.net.
	Host     string
	Email    string
	APIToken string
}

// Client handles Jira API interactions.
// A Client holds no mutable state after construction and each call is independent.
type Client struct {
	creds     Credentials
	transport Transport
	logger    *slog.Logger

	strictStatus  bool
	forwardFields bool
	forwardLabels bool
}

// Option configures a Client.
type Option func(*Client)

// WithTransport sets the transport used to send requests.
func WithTransport(t Transport) Option {
	return func(c *Client) {
		if t != nil {
			c.transport = t
		}
	}
}

// WithStrictStatus makes non-2xx responses fail with a *errors.JiraError.
// When off (the default) any response body that parses as JSON is returned
// to the caller regardless of its status code.
func WithStrictStatus(strict bool) Option {
	return func(c *Client) { c.strictStatus = strict }
}

// WithForwardFields makes GetIssue send its field list as the "fields" query parameter.
// Off by default: the list is accepted and dropped.
func WithForwardFields(forward bool) Option {
	return func(c *Client) { c.forwardFields = forward }
}

// WithForwardLabels makes CreateIssue include labels in the issue fields.
// Off by default: labels are accepted and dropped.
func WithForwardLabels(forward bool) Option {
	return func(c *Client) { c.forwardLabels = forward }
}

// WithLogger sets the logger used for request-level debug logging.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a new Jira client.
// No validation is performed on the credentials; empty values are sent as-is.
func NewClient(host, email, apiToken string, opts ...Option) *Client {
	c := &Client{
		creds: Credentials{
			Host:     host,
			Email:    email,
			APIToken: apiToken,
		},
		transport: NewHTTPTransport(DefaultTimeout),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewClientFromCredentials is NewClient taking a Credentials value.
func NewClientFromCredentials(creds Credentials, opts ...Option) *Client {
	return NewClient(creds.Host, creds.Email, creds.APIToken, opts...)
}

// Credentials returns a copy of the credentials the client was built with.
func (c *Client) Credentials() Credentials {
	return c.creds
}

// BuildURL returns the absolute URL of a REST resource on the given site.
// The host is interpolated unescaped.
func BuildURL(host, resource string) string {
	return fmt.Sprintf("https://%s.atlassian.net/%s/%s", host, BaseAPIPath, resource)
}

// AuthorizationHeader returns the Basic auth header value for an email and API token.
func AuthorizationHeader(email, apiToken string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(email+":"+apiToken))
}

func (c *Client) headers() http.Header {
	h := make(http.Header, 3)
	h.Set("Content-Type", "application/json")
	h.Set("Accept", "application/json")
	h.Set("Authorization", AuthorizationHeader(c.creds.Email, c.creds.APIToken))
	return h
}

func (c *Client) log() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return slog.Default()
}

// request sends one request for resource and decodes the JSON response.
func (c *Client) request(ctx context.Context, method, resource string, query url.Values, payload any) (any, error) {
	u := BuildURL(c.creds.Host, resource)
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal payload: %w", err)
		}
	}

	req := &Request{
		Method: method,
		URL:    u,
		Header: c.headers(),
		Body:   body,
	}

	start := time.Now()
	resp, err := c.transport.Send(ctx, req)
	if err != nil {
		c.log().Debug("jira request failed", "method", method, "resource", resource, "error", err)
		return nil, &jiraerrors.TransportError{Method: method, URL: u, Err: err}
	}
	c.log().Debug("jira request",
		"method", method,
		"resource", resource,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if c.strictStatus && (resp.StatusCode < 200 || resp.StatusCode > 299) {
		return nil, jiraerrors.FromResponse(method, u, resp.StatusCode, resp.Body)
	}

	result, err := decodeJSON(resp.Body)
	if err != nil {
		return nil, &jiraerrors.ParseError{
			URL:        u,
			StatusCode: resp.StatusCode,
			Body:       resp.Body,
			Err:        err,
		}
	}
	return result, nil
}

// decodeJSON decodes exactly one JSON value. Numbers are kept as json.Number
// so ids and counts are returned unmodified.
func decodeJSON(body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("invalid character after top-level value")
	}
	return v, nil
}
