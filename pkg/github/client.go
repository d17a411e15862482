package github

import (
	"context"
	"fmt"

	"github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"
)

// Client implements the APIClient interface using the GitHub REST API
type Client struct {
	client *github.Client
	ctx    context.Context
}

// NewClient creates a new GitHub API client with the provided token
func NewClient(token string) *Client {
	ctx := context.Background()
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)

	return &Client{
		client: github.NewClient(tc),
		ctx:    ctx,
	}
}

// GetPullRequest retrieves a pull request by owner, repo and number
func (c *Client) GetPullRequest(owner, repo string, number int) (*PullRequest, error) {
	var pr *github.PullRequest

	err := WithRetry(func() error {
		var err error
		pr, _, err = c.client.PullRequests.Get(c.ctx, owner, repo, number)
		if err != nil {
			return WrapAPIError(err, fmt.Sprintf("pull request %s/%s#%d", owner, repo, number))
		}
		return nil
	}, DefaultRetryConfig())

	if err != nil {
		return nil, err
	}

	return c.convertPullRequest(pr), nil
}

// CloseIssue closes an issue
func (c *Client) CloseIssue(owner, repo string, number int) error {
	req := &github.IssueRequest{
		State: github.String("closed"),
	}

	return WithRetry(func() error {
		_, _, err := c.client.Issues.Edit(c.ctx, owner, repo, number, req)
		if err != nil {
			return WrapAPIError(err, fmt.Sprintf("issue %s/%s#%d", owner, repo, number))
		}
		return nil
	}, DefaultRetryConfig())
}

// SetIssueAssignees replaces the assignees of an issue with the given logins
func (c *Client) SetIssueAssignees(owner, repo string, number int, assignees []string) error {
	req := &github.IssueRequest{
		Assignees: &assignees,
	}

	return WithRetry(func() error {
		_, _, err := c.client.Issues.Edit(c.ctx, owner, repo, number, req)
		if err != nil {
			return WrapAPIError(err, fmt.Sprintf("assignees for issue %s/%s#%d", owner, repo, number))
		}
		return nil
	}, DefaultRetryConfig())
}

// RemoveIssueAssignees removes the given logins from an issue's assignees
func (c *Client) RemoveIssueAssignees(owner, repo string, number int, assignees []string) error {
	return WithRetry(func() error {
		_, _, err := c.client.Issues.RemoveAssignees(c.ctx, owner, repo, number, assignees)
		if err != nil {
			return WrapAPIError(err, fmt.Sprintf("assignees for issue %s/%s#%d", owner, repo, number))
		}
		return nil
	}, DefaultRetryConfig())
}

// convertPullRequest converts a GitHub API pull request to our internal type
func (c *Client) convertPullRequest(pr *github.PullRequest) *PullRequest {
	var assignees []string
	for _, assignee := range pr.Assignees {
		assignees = append(assignees, assignee.GetLogin())
	}

	return &PullRequest{
		Number:    pr.GetNumber(),
		NodeID:    pr.GetNodeID(),
		Title:     pr.GetTitle(),
		State:     pr.GetState(),
		Merged:    pr.GetMerged(),
		Draft:     pr.GetDraft(),
		Author:    pr.GetUser().GetLogin(),
		Assignees: assignees,
	}
}
