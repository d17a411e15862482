package sync

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"prsync/pkg/github"
)

// MockAPIClient is a mock implementation of github.APIClient for testing
type MockAPIClient struct {
	mock.Mock
}

func (m *MockAPIClient) GetPullRequest(owner, repo string, number int) (*github.PullRequest, error) {
	args := m.Called(owner, repo, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*github.PullRequest), args.Error(1)
}

func (m *MockAPIClient) CloseIssue(owner, repo string, number int) error {
	args := m.Called(owner, repo, number)
	return args.Error(0)
}

func (m *MockAPIClient) SetIssueAssignees(owner, repo string, number int, assignees []string) error {
	args := m.Called(owner, repo, number, assignees)
	return args.Error(0)
}

func (m *MockAPIClient) RemoveIssueAssignees(owner, repo string, number int, assignees []string) error {
	args := m.Called(owner, repo, number, assignees)
	return args.Error(0)
}

// MockProjectsClient is a mock implementation of github.ProjectsClient for testing
type MockProjectsClient struct {
	mock.Mock
}

func (m *MockProjectsClient) GetProject(org string, number int) (*github.Project, error) {
	args := m.Called(org, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*github.Project), args.Error(1)
}

func (m *MockProjectsClient) ListProjects(org string) ([]github.Project, error) {
	args := m.Called(org)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]github.Project), args.Error(1)
}

func (m *MockProjectsClient) GetStatusField(projectID string) (*github.StatusField, error) {
	args := m.Called(projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*github.StatusField), args.Error(1)
}

func (m *MockProjectsClient) GetLinkedIssues(owner, repo string, prNumber int) ([]github.LinkedIssue, error) {
	args := m.Called(owner, repo, prNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]github.LinkedIssue), args.Error(1)
}

func (m *MockProjectsClient) GetIssueProjectItems(issueNodeID string) ([]github.ProjectItem, error) {
	args := m.Called(issueNodeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]github.ProjectItem), args.Error(1)
}

func (m *MockProjectsClient) AddItem(projectID, contentNodeID string) (string, error) {
	args := m.Called(projectID, contentNodeID)
	return args.String(0), args.Error(1)
}

func (m *MockProjectsClient) SetItemStatus(projectID, itemID, fieldID, optionID string) error {
	args := m.Called(projectID, itemID, fieldID, optionID)
	return args.Error(0)
}

func statusField() *github.StatusField {
	return &github.StatusField{
		ID:   "F1",
		Name: "Status",
		Options: []github.StatusOption{
			{ID: "O1", Name: "Selected for Development"},
			{ID: "O2", Name: "Weekly Backlog"},
			{ID: "O3", Name: "In Development"},
			{ID: "O4", Name: "Ready For Review"},
			{ID: "O5", Name: "On Hold"},
			{ID: "O6", Name: "Done"},
		},
	}
}

func board() *github.Project {
	return &github.Project{ID: "P1", Number: 3, Title: "Roadmap"}
}

func TestSyncer_Plan_NoLinkedIssues(t *testing.T) {
	api := &MockAPIClient{}
	projects := &MockProjectsClient{}
	syncer := New(api, projects, "acme", "widgets")

	api.On("GetPullRequest", "acme", "widgets", 42).Return(
		&github.PullRequest{Number: 42, State: "open", Author: "alice"}, nil)
	projects.On("GetLinkedIssues", "acme", "widgets", 42).Return([]github.LinkedIssue{}, nil)

	plan, err := syncer.Plan(3, 42)

	assert.NoError(t, err)
	assert.True(t, plan.Empty())
	assert.Nil(t, plan.Project)

	api.AssertExpectations(t)
	projects.AssertExpectations(t)
	// The board must not be touched when there is nothing to sync
	projects.AssertNotCalled(t, "GetProject", mock.Anything, mock.Anything)
}

func TestSyncer_Plan_OpenReadyPR(t *testing.T) {
	api := &MockAPIClient{}
	projects := &MockProjectsClient{}
	syncer := New(api, projects, "acme", "widgets")

	api.On("GetPullRequest", "acme", "widgets", 42).Return(
		&github.PullRequest{Number: 42, State: "open", Author: "alice", Assignees: []string{"bob"}}, nil)
	projects.On("GetLinkedIssues", "acme", "widgets", 42).Return([]github.LinkedIssue{
		{Number: 101, NodeID: "I101", Title: "Fix login", State: "open", Assignees: []string{"carol"}},
	}, nil)
	projects.On("GetProject", "acme", 3).Return(board(), nil)
	projects.On("GetStatusField", "P1").Return(statusField(), nil)
	projects.On("GetIssueProjectItems", "I101").Return([]github.ProjectItem{
		{ID: "ITEM1", ProjectID: "P1", Status: "In Development"},
	}, nil)

	plan, err := syncer.Plan(3, 42)

	assert.NoError(t, err)
	assert.Equal(t, "Ready For Review", plan.TargetStatus)
	assert.Empty(t, plan.Items)
	assert.Len(t, plan.Statuses, 1)
	assert.Equal(t, ChangeTypeUpdate, plan.Statuses[0].Type())
	assert.Equal(t, "In Development", plan.Statuses[0].Before)
	assert.Equal(t, "Ready For Review", plan.Statuses[0].After)
	assert.Empty(t, plan.Closes)
	assert.Len(t, plan.Assignees, 1)
	assert.Equal(t, []string{"bob"}, plan.Assignees[0].After)

	projects.AssertExpectations(t)
}

func TestSyncer_Plan_DraftUsesAuthorWhenUnassigned(t *testing.T) {
	api := &MockAPIClient{}
	projects := &MockProjectsClient{}
	syncer := New(api, projects, "acme", "widgets")

	api.On("GetPullRequest", "acme", "widgets", 42).Return(
		&github.PullRequest{Number: 42, State: "open", Draft: true, Author: "alice"}, nil)
	projects.On("GetLinkedIssues", "acme", "widgets", 42).Return([]github.LinkedIssue{
		{Number: 101, NodeID: "I101", State: "open"},
	}, nil)
	projects.On("GetProject", "acme", 3).Return(board(), nil)
	projects.On("GetStatusField", "P1").Return(statusField(), nil)
	projects.On("GetIssueProjectItems", "I101").Return([]github.ProjectItem{
		{ID: "ITEM1", ProjectID: "P1", Status: "Selected for Development"},
	}, nil)

	plan, err := syncer.Plan(3, 42)

	assert.NoError(t, err)
	assert.Equal(t, "In Development", plan.TargetStatus)
	assert.Len(t, plan.Assignees, 1)
	assert.Equal(t, []string{"alice"}, plan.Assignees[0].After)
}

func TestSyncer_Plan_MergedPR(t *testing.T) {
	api := &MockAPIClient{}
	projects := &MockProjectsClient{}
	syncer := New(api, projects, "acme", "widgets")

	api.On("GetPullRequest", "acme", "widgets", 42).Return(
		&github.PullRequest{Number: 42, State: "closed", Merged: true, Author: "alice"}, nil)
	projects.On("GetLinkedIssues", "acme", "widgets", 42).Return([]github.LinkedIssue{
		{Number: 101, NodeID: "I101", State: "open", Assignees: []string{"alice"}},
		{Number: 102, NodeID: "I102", State: "closed"},
	}, nil)
	projects.On("GetProject", "acme", 3).Return(board(), nil)
	projects.On("GetStatusField", "P1").Return(statusField(), nil)
	projects.On("GetIssueProjectItems", "I101").Return([]github.ProjectItem{
		{ID: "ITEM1", ProjectID: "P1", Status: "Ready For Review"},
	}, nil)
	projects.On("GetIssueProjectItems", "I102").Return([]github.ProjectItem{
		{ID: "ITEM2", ProjectID: "P1", Status: "Done"},
	}, nil)

	plan, err := syncer.Plan(3, 42)

	assert.NoError(t, err)
	assert.Equal(t, "Done", plan.TargetStatus)
	// Only the issue not yet Done gets a status change
	assert.Len(t, plan.Statuses, 1)
	assert.Equal(t, 101, plan.Statuses[0].IssueNumber)
	// Only the still-open issue gets closed
	assert.Len(t, plan.Closes, 1)
	assert.Equal(t, 101, plan.Closes[0].IssueNumber)
	// Merged PRs never touch assignees
	assert.Empty(t, plan.Assignees)
}

func TestSyncer_Plan_ClosedUnmergedClearsAssignees(t *testing.T) {
	api := &MockAPIClient{}
	projects := &MockProjectsClient{}
	syncer := New(api, projects, "acme", "widgets")

	api.On("GetPullRequest", "acme", "widgets", 42).Return(
		&github.PullRequest{Number: 42, State: "closed", Merged: false, Author: "alice"}, nil)
	projects.On("GetLinkedIssues", "acme", "widgets", 42).Return([]github.LinkedIssue{
		{Number: 101, NodeID: "I101", State: "open", Assignees: []string{"alice", "bob"}},
	}, nil)
	projects.On("GetProject", "acme", 3).Return(board(), nil)
	projects.On("GetStatusField", "P1").Return(statusField(), nil)
	projects.On("GetIssueProjectItems", "I101").Return([]github.ProjectItem{
		{ID: "ITEM1", ProjectID: "P1", Status: "In Development"},
	}, nil)

	plan, err := syncer.Plan(3, 42)

	assert.NoError(t, err)
	assert.Equal(t, "Selected for Development", plan.TargetStatus)
	assert.Len(t, plan.Assignees, 1)
	assert.Equal(t, []string{"alice", "bob"}, plan.Assignees[0].Before)
	assert.Empty(t, plan.Assignees[0].After)
}

func TestSyncer_Plan_IssueNotOnBoard(t *testing.T) {
	api := &MockAPIClient{}
	projects := &MockProjectsClient{}
	syncer := New(api, projects, "acme", "widgets")

	api.On("GetPullRequest", "acme", "widgets", 42).Return(
		&github.PullRequest{Number: 42, State: "open", Author: "alice", Assignees: []string{"alice"}}, nil)
	projects.On("GetLinkedIssues", "acme", "widgets", 42).Return([]github.LinkedIssue{
		{Number: 101, NodeID: "I101", Title: "Fix login", State: "open", Assignees: []string{"alice"}},
	}, nil)
	projects.On("GetProject", "acme", 3).Return(board(), nil)
	projects.On("GetStatusField", "P1").Return(statusField(), nil)
	// The issue sits on a different board only
	projects.On("GetIssueProjectItems", "I101").Return([]github.ProjectItem{
		{ID: "OTHER", ProjectID: "P9", Status: "Done"},
	}, nil)

	plan, err := syncer.Plan(3, 42)

	assert.NoError(t, err)
	assert.Len(t, plan.Items, 1)
	assert.Equal(t, "I101", plan.Items[0].IssueNodeID)
	assert.Len(t, plan.Statuses, 1)
	assert.Equal(t, ChangeTypeCreate, plan.Statuses[0].Type())
	assert.Empty(t, plan.Statuses[0].ItemID)
}

func TestSyncer_Plan_Idempotent(t *testing.T) {
	api := &MockAPIClient{}
	projects := &MockProjectsClient{}
	syncer := New(api, projects, "acme", "widgets")

	// Board already reflects the PR: correct status, matching assignees
	api.On("GetPullRequest", "acme", "widgets", 42).Return(
		&github.PullRequest{Number: 42, State: "open", Author: "alice", Assignees: []string{"alice"}}, nil)
	projects.On("GetLinkedIssues", "acme", "widgets", 42).Return([]github.LinkedIssue{
		{Number: 101, NodeID: "I101", State: "open", Assignees: []string{"alice"}},
	}, nil)
	projects.On("GetProject", "acme", 3).Return(board(), nil)
	projects.On("GetStatusField", "P1").Return(statusField(), nil)
	projects.On("GetIssueProjectItems", "I101").Return([]github.ProjectItem{
		{ID: "ITEM1", ProjectID: "P1", Status: "Ready For Review"},
	}, nil)

	plan, err := syncer.Plan(3, 42)

	assert.NoError(t, err)
	assert.True(t, plan.Empty())
	assert.Equal(t, 0, plan.TotalChanges())
}

func TestSyncer_Plan_MissingStatusOption(t *testing.T) {
	api := &MockAPIClient{}
	projects := &MockProjectsClient{}
	syncer := New(api, projects, "acme", "widgets",
		WithStatusNames(StatusNames{Done: "Shipped"}))

	api.On("GetPullRequest", "acme", "widgets", 42).Return(
		&github.PullRequest{Number: 42, State: "closed", Merged: true, Author: "alice"}, nil)
	projects.On("GetLinkedIssues", "acme", "widgets", 42).Return([]github.LinkedIssue{
		{Number: 101, NodeID: "I101", State: "open"},
	}, nil)
	projects.On("GetProject", "acme", 3).Return(board(), nil)
	projects.On("GetStatusField", "P1").Return(statusField(), nil)

	plan, err := syncer.Plan(3, 42)

	assert.Error(t, err)
	assert.Nil(t, plan)
	var vErr *github.ValidationError
	assert.ErrorAs(t, err, &vErr)
	assert.Equal(t, "Shipped", vErr.Value)
}

func TestSyncer_Plan_PullRequestError(t *testing.T) {
	api := &MockAPIClient{}
	projects := &MockProjectsClient{}
	syncer := New(api, projects, "acme", "widgets")

	api.On("GetPullRequest", "acme", "widgets", 42).Return(nil, errors.New("not found"))

	plan, err := syncer.Plan(3, 42)

	assert.Error(t, err)
	assert.Nil(t, plan)
}

func TestSyncer_Apply_AddsItemBeforeStatus(t *testing.T) {
	api := &MockAPIClient{}
	projects := &MockProjectsClient{}
	syncer := New(api, projects, "acme", "widgets")

	plan := &Plan{
		PullRequest:  &github.PullRequest{Number: 42},
		Project:      board(),
		TargetStatus: "Ready For Review",
		fieldID:      "F1",
		optionID:     "O4",
		Items:        []ItemAddition{{IssueNumber: 101, IssueNodeID: "I101"}},
		Statuses:     []StatusChange{{IssueNumber: 101, After: "Ready For Review"}},
	}

	projects.On("AddItem", "P1", "I101").Return("NEWITEM", nil)
	projects.On("SetItemStatus", "P1", "NEWITEM", "F1", "O4").Return(nil)

	result, err := syncer.Apply(plan)

	assert.NoError(t, err)
	assert.Equal(t, 2, result.Applied)
	assert.Empty(t, result.Warnings)
	projects.AssertExpectations(t)
}

func TestSyncer_Apply_MergedPlan(t *testing.T) {
	api := &MockAPIClient{}
	projects := &MockProjectsClient{}
	syncer := New(api, projects, "acme", "widgets")

	plan := &Plan{
		PullRequest:  &github.PullRequest{Number: 42, Merged: true},
		Project:      board(),
		TargetStatus: "Done",
		fieldID:      "F1",
		optionID:     "O6",
		Statuses:     []StatusChange{{IssueNumber: 101, ItemID: "ITEM1", Before: "Ready For Review", After: "Done"}},
		Closes:       []IssueClose{{IssueNumber: 101}},
	}

	projects.On("SetItemStatus", "P1", "ITEM1", "F1", "O6").Return(nil)
	api.On("CloseIssue", "acme", "widgets", 101).Return(nil)

	result, err := syncer.Apply(plan)

	assert.NoError(t, err)
	assert.Equal(t, 2, result.Applied)
	api.AssertExpectations(t)
	projects.AssertExpectations(t)
}

func TestSyncer_Apply_AssigneeFailureIsWarning(t *testing.T) {
	api := &MockAPIClient{}
	projects := &MockProjectsClient{}
	syncer := New(api, projects, "acme", "widgets")

	plan := &Plan{
		PullRequest: &github.PullRequest{Number: 42},
		Project:     board(),
		Assignees: []AssigneeChange{
			{IssueNumber: 101, Before: []string{"carol"}, After: []string{"bob"}},
			{IssueNumber: 102, Before: []string{"carol"}},
		},
	}

	api.On("SetIssueAssignees", "acme", "widgets", 101, []string{"bob"}).Return(errors.New("forbidden"))
	api.On("RemoveIssueAssignees", "acme", "widgets", 102, []string{"carol"}).Return(nil)

	result, err := syncer.Apply(plan)

	assert.NoError(t, err)
	assert.Equal(t, 1, result.Applied)
	assert.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "issue #101")
}

func TestSyncer_Apply_StatusFailureIsFatal(t *testing.T) {
	api := &MockAPIClient{}
	projects := &MockProjectsClient{}
	syncer := New(api, projects, "acme", "widgets")

	plan := &Plan{
		PullRequest: &github.PullRequest{Number: 42},
		Project:     board(),
		fieldID:     "F1",
		optionID:    "O6",
		Statuses:    []StatusChange{{IssueNumber: 101, ItemID: "ITEM1", After: "Done"}},
	}

	projects.On("SetItemStatus", "P1", "ITEM1", "F1", "O6").Return(errors.New("boom"))

	_, err := syncer.Apply(plan)

	assert.Error(t, err)
}

func TestSyncer_Apply_EmptyPlan(t *testing.T) {
	api := &MockAPIClient{}
	projects := &MockProjectsClient{}
	syncer := New(api, projects, "acme", "widgets")

	result, err := syncer.Apply(&Plan{PullRequest: &github.PullRequest{Number: 42}})

	assert.NoError(t, err)
	assert.Equal(t, 0, result.Applied)
	projects.AssertNotCalled(t, "AddItem", mock.Anything, mock.Anything)
}

func TestSyncer_Validate(t *testing.T) {
	api := &MockAPIClient{}
	projects := &MockProjectsClient{}
	syncer := New(api, projects, "acme", "widgets")

	projects.On("GetProject", "acme", 3).Return(board(), nil)
	projects.On("GetStatusField", "P1").Return(statusField(), nil)

	assert.NoError(t, syncer.Validate(3))
}

func TestSyncer_Validate_MissingOptions(t *testing.T) {
	api := &MockAPIClient{}
	projects := &MockProjectsClient{}
	syncer := New(api, projects, "acme", "widgets")

	field := &github.StatusField{
		ID:   "F1",
		Name: "Status",
		Options: []github.StatusOption{
			{ID: "O1", Name: "Todo"},
			{ID: "O6", Name: "Done"},
		},
	}

	projects.On("GetProject", "acme", 3).Return(board(), nil)
	projects.On("GetStatusField", "P1").Return(field, nil)

	err := syncer.Validate(3)

	assert.Error(t, err)
	var errs github.ValidationErrors
	assert.ErrorAs(t, err, &errs)
	assert.Len(t, errs, 5)
}

func TestSameLogins(t *testing.T) {
	assert.True(t, sameLogins(nil, nil))
	assert.True(t, sameLogins([]string{"a", "b"}, []string{"b", "a"}))
	assert.False(t, sameLogins([]string{"a"}, []string{"b"}))
	assert.False(t, sameLogins([]string{"a", "a"}, []string{"a", "b"}))
	assert.False(t, sameLogins([]string{"a"}, []string{"a", "b"}))
}
