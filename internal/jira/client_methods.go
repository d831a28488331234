package jira

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// IssueDescription is the description sent with every issue created by CreateIssue.
const IssueDescription = "チケット説明"

// IssueCreationPayload holds the inputs of CreateIssue.
type IssueCreationPayload struct {
	ProjectID string
	IssueType string
	Priority  string
	Reporter  string
	Summary   string
	// Labels are only sent when the client forwards labels.
	Labels []string
}

// ListProjects returns every project visible to the account.
// https://developer.atlassian.com/cloud/jira/platform/rest/v3/api-group-projects/#api-rest-api-3-project-get
func (c *Client) ListProjects(ctx context.Context) (any, error) {
	return c.request(ctx, http.MethodGet, "project", nil, nil)
}

// ListIssueTypesForCurrentUser returns the issue types associated with the
// projects the account has permission to browse.
// https://developer.atlassian.com/cloud/jira/platform/rest/v3/api-group-issue-types/#api-rest-api-3-issuetype-get
func (c *Client) ListIssueTypesForCurrentUser(ctx context.Context) (any, error) {
	return c.request(ctx, http.MethodGet, "issuetype", nil, nil)
}

// GetIssue fetches an issue by id or key.
// fields is only sent when the client forwards fields.
// https://developer.atlassian.com/cloud/jira/platform/rest/v3/api-group-issues/#api-rest-api-3-issue-issueidorkey-get
func (c *Client) GetIssue(ctx context.Context, issueIDOrKey string, fields ...string) (any, error) {
	var query url.Values
	if c.forwardFields && len(fields) > 0 {
		query = url.Values{}
		query.Set("fields", strings.Join(fields, ","))
	}
	return c.request(ctx, http.MethodGet, "issue/"+issueIDOrKey, query, nil)
}

// CreateIssue creates an issue. The call is not idempotent.
// https://developer.atlassian.com/cloud/jira/platform/rest/v3/api-group-issues/#api-rest-api-3-issue-post
func (c *Client) CreateIssue(ctx context.Context, p IssueCreationPayload) (any, error) {
	return c.request(ctx, http.MethodPost, "issue", nil, c.createIssueBody(p))
}

func (c *Client) createIssueBody(p IssueCreationPayload) map[string]interface{} {
	fields := map[string]interface{}{
		"project":     p.ProjectID,
		"issuetype":   p.IssueType,
		"priority":    p.Priority,
		"reporter":    p.Reporter,
		"summary":     p.Summary,
		"description": IssueDescription,
	}
	if c.forwardLabels {
		labels := p.Labels
		if labels == nil {
			labels = []string{}
		}
		fields["labels"] = labels
	}
	return map[string]interface{}{
		"update": map[string]interface{}{},
		"fields": fields,
	}
}
