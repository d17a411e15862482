package sync

import (
	"fmt"

	"prsync/pkg/github"
)

// Syncer computes and applies the board changes for one pull request.
// Plan and Apply are separated so callers can display or discard the
// changes before any mutation happens (dry-run).
type Syncer struct {
	api      github.APIClient
	projects github.ProjectsClient
	owner    string
	repo     string
	statuses StatusNames
}

// Option configures a Syncer
type Option func(*Syncer)

// WithStatusNames overrides the board's status option names
func WithStatusNames(names StatusNames) Option {
	return func(s *Syncer) {
		s.statuses = names.withDefaults()
	}
}

// New creates a new Syncer for the given repository
func New(api github.APIClient, projects github.ProjectsClient, owner, repo string, opts ...Option) *Syncer {
	s := &Syncer{
		api:      api,
		projects: projects,
		owner:    owner,
		repo:     repo,
		statuses: DefaultStatusNames(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Plan compares the pull request's current state with the project board and
// returns the changes needed. Planning performs no mutations; running it
// twice against an already-synced board yields an empty plan.
func (s *Syncer) Plan(projectNumber, prNumber int) (*Plan, error) {
	pr, err := s.api.GetPullRequest(s.owner, s.repo, prNumber)
	if err != nil {
		return nil, err
	}

	linked, err := s.projects.GetLinkedIssues(s.owner, s.repo, prNumber)
	if err != nil {
		return nil, err
	}

	plan := &Plan{PullRequest: pr}

	// Nothing to track: a PR without closing references owns no board items
	if len(linked) == 0 {
		return plan, nil
	}

	project, err := s.projects.GetProject(s.owner, projectNumber)
	if err != nil {
		return nil, err
	}

	field, err := s.projects.GetStatusField(project.ID)
	if err != nil {
		return nil, err
	}

	target := StatusForPullRequest(pr, s.statuses)
	optionID, ok := field.OptionID(target)
	if !ok {
		return nil, &github.ValidationError{
			Field:   field.Name,
			Value:   target,
			Message: "status option not found on project board",
		}
	}

	plan.Project = project
	plan.TargetStatus = target
	plan.fieldID = field.ID
	plan.optionID = optionID

	// Issues follow the PR assignees; fall back to the author when the PR
	// has none
	prAssignees := pr.Assignees
	if len(prAssignees) == 0 && pr.Author != "" {
		prAssignees = []string{pr.Author}
	}

	for _, issue := range linked {
		items, err := s.projects.GetIssueProjectItems(issue.NodeID)
		if err != nil {
			return nil, err
		}

		var item *github.ProjectItem
		for i := range items {
			if items[i].ProjectID == project.ID {
				item = &items[i]
				break
			}
		}

		if item == nil {
			plan.Items = append(plan.Items, ItemAddition{
				IssueNumber: issue.Number,
				IssueNodeID: issue.NodeID,
				IssueTitle:  issue.Title,
			})
			plan.Statuses = append(plan.Statuses, StatusChange{
				IssueNumber: issue.Number,
				After:       target,
			})
		} else if item.Status != target {
			plan.Statuses = append(plan.Statuses, StatusChange{
				IssueNumber: issue.Number,
				ItemID:      item.ID,
				Before:      item.Status,
				After:       target,
			})
		}

		switch {
		case pr.Merged:
			// GitHub only auto-closes issues when merging to the default
			// branch, so the sync closes them for all branches
			if issue.State == "open" {
				plan.Closes = append(plan.Closes, IssueClose{IssueNumber: issue.Number})
			}
		case pr.State == "closed":
			// Closed without merging: the issue goes back to the backlog
			// unassigned
			if len(issue.Assignees) > 0 {
				plan.Assignees = append(plan.Assignees, AssigneeChange{
					IssueNumber: issue.Number,
					Before:      issue.Assignees,
				})
			}
		default:
			if !sameLogins(issue.Assignees, prAssignees) {
				plan.Assignees = append(plan.Assignees, AssigneeChange{
					IssueNumber: issue.Number,
					Before:      issue.Assignees,
					After:       prAssignees,
				})
			}
		}
	}

	return plan, nil
}

// Apply executes the plan. Board and issue-state mutations are fatal on
// failure; assignee reconciliation is best effort and only produces
// warnings, matching GitHub's permission quirks around issue assignment.
func (s *Syncer) Apply(plan *Plan) (*Result, error) {
	result := &Result{}

	if plan.Empty() {
		return result, nil
	}

	// Add missing board items first so status changes have an item to land on
	added := make(map[int]string)
	for _, add := range plan.Items {
		itemID, err := s.projects.AddItem(plan.Project.ID, add.IssueNodeID)
		if err != nil {
			return result, err
		}
		added[add.IssueNumber] = itemID
		result.Applied++
	}

	for _, change := range plan.Statuses {
		itemID := change.ItemID
		if itemID == "" {
			itemID = added[change.IssueNumber]
		}
		if itemID == "" {
			return result, fmt.Errorf("no project item for issue #%d", change.IssueNumber)
		}

		if err := s.projects.SetItemStatus(plan.Project.ID, itemID, plan.fieldID, plan.optionID); err != nil {
			return result, err
		}
		result.Applied++
	}

	for _, c := range plan.Closes {
		if err := s.api.CloseIssue(s.owner, s.repo, c.IssueNumber); err != nil {
			return result, err
		}
		result.Applied++
	}

	for _, change := range plan.Assignees {
		var err error
		if len(change.After) == 0 {
			err = s.api.RemoveIssueAssignees(s.owner, s.repo, change.IssueNumber, change.Before)
		} else {
			err = s.api.SetIssueAssignees(s.owner, s.repo, change.IssueNumber, change.After)
		}
		if err != nil {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("could not update assignees for issue #%d: %v", change.IssueNumber, err))
			continue
		}
		result.Applied++
	}

	return result, nil
}

// Validate checks that the project board carries every configured status
// option, so a sync can never be asked to set a value the board rejects
func (s *Syncer) Validate(projectNumber int) error {
	project, err := s.projects.GetProject(s.owner, projectNumber)
	if err != nil {
		return err
	}

	field, err := s.projects.GetStatusField(project.ID)
	if err != nil {
		return err
	}

	var errs github.ValidationErrors
	for _, name := range s.statuses.All() {
		if _, ok := field.OptionID(name); !ok {
			errs.Add(field.Name, name, "status option not found on project board")
		}
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

// sameLogins compares two login sets for equality (order doesn't matter)
func sameLogins(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}

	seen := make(map[string]int)
	for _, login := range a {
		seen[login]++
	}
	for _, login := range b {
		seen[login]--
		if seen[login] < 0 {
			return false
		}
	}

	return true
}
