package sync

import "prsync/pkg/github"

// ChangeType represents the type of change in a sync plan
type ChangeType string

const (
	ChangeTypeCreate ChangeType = "create"
	ChangeTypeUpdate ChangeType = "update"
)

// Plan represents the changes needed to bring the project board in line
// with the pull request's current state
type Plan struct {
	PullRequest  *github.PullRequest `json:"pull_request"`
	Project      *github.Project     `json:"project,omitempty"`
	TargetStatus string              `json:"target_status,omitempty"`

	Items     []ItemAddition   `json:"items,omitempty"`
	Statuses  []StatusChange   `json:"statuses,omitempty"`
	Closes    []IssueClose     `json:"closes,omitempty"`
	Assignees []AssigneeChange `json:"assignees,omitempty"`

	// Resolved during planning so Apply doesn't re-query the board
	fieldID  string
	optionID string
}

// ItemAddition represents a linked issue that is not yet on the board
type ItemAddition struct {
	IssueNumber int    `json:"issue_number"`
	IssueNodeID string `json:"issue_node_id"`
	IssueTitle  string `json:"issue_title"`
}

// StatusChange represents a Status field update for one board item.
// ItemID is empty when the item is being added by the same plan.
type StatusChange struct {
	IssueNumber int    `json:"issue_number"`
	ItemID      string `json:"item_id,omitempty"`
	Before      string `json:"before,omitempty"`
	After       string `json:"after"`
}

// Type returns whether the status is being set for the first time
func (c StatusChange) Type() ChangeType {
	if c.Before == "" {
		return ChangeTypeCreate
	}
	return ChangeTypeUpdate
}

// IssueClose represents a linked issue to close after a merge
type IssueClose struct {
	IssueNumber int `json:"issue_number"`
}

// AssigneeChange represents an assignee update on a linked issue.
// An empty After clears the assignees.
type AssigneeChange struct {
	IssueNumber int      `json:"issue_number"`
	Before      []string `json:"before,omitempty"`
	After       []string `json:"after,omitempty"`
}

// Empty reports whether the plan contains no changes
func (p *Plan) Empty() bool {
	return len(p.Items) == 0 &&
		len(p.Statuses) == 0 &&
		len(p.Closes) == 0 &&
		len(p.Assignees) == 0
}

// TotalChanges counts the changes in the plan
func (p *Plan) TotalChanges() int {
	return len(p.Items) + len(p.Statuses) + len(p.Closes) + len(p.Assignees)
}

// Result summarizes an applied plan
type Result struct {
	Applied  int      `json:"applied"`
	Warnings []string `json:"warnings,omitempty"`
}
