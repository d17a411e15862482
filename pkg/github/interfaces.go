package github

// APIClient defines the REST operations used during a sync
type APIClient interface {
	// Pull request operations
	GetPullRequest(owner, repo string, number int) (*PullRequest, error)

	// Issue operations
	CloseIssue(owner, repo string, number int) error
	SetIssueAssignees(owner, repo string, number int, assignees []string) error
	RemoveIssueAssignees(owner, repo string, number int, assignees []string) error
}

// ProjectsClient defines the GraphQL operations against Projects v2
type ProjectsClient interface {
	// Project resolution
	GetProject(org string, number int) (*Project, error)
	ListProjects(org string) ([]Project, error)

	// Field discovery
	GetStatusField(projectID string) (*StatusField, error)

	// Linked issue and item lookup
	GetLinkedIssues(owner, repo string, prNumber int) ([]LinkedIssue, error)
	GetIssueProjectItems(issueNodeID string) ([]ProjectItem, error)

	// Item mutations
	AddItem(projectID, contentNodeID string) (string, error)
	SetItemStatus(projectID, itemID, fieldID, optionID string) error
}
