package jira

import "context"

// ClientInterface defines the Jira operations used by the command line tool.
type ClientInterface interface {
	ListProjects(ctx context.Context) (any, error)
	ListIssueTypesForCurrentUser(ctx context.Context) (any, error)
	GetIssue(ctx context.Context, issueIDOrKey string, fields ...string) (any, error)
	CreateIssue(ctx context.Context, p IssueCreationPayload) (any, error)
}

var _ ClientInterface = (*Client)(nil)
