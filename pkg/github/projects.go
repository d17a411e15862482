package github

import (
	"context"
	"fmt"
	"strings"

	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"
)

// statusFieldName is the single-select field the sync drives. Boards created
// from GitHub's templates always carry it under this name.
const statusFieldName = "Status"

// GraphQLClient implements the ProjectsClient interface using the GitHub
// GraphQL API, which is the only surface Projects v2 is exposed on.
type GraphQLClient struct {
	client *githubv4.Client
	ctx    context.Context

	// Field discovery is cached per project id: one board is queried many
	// times during a single sync.
	fields map[string]*StatusField
}

// NewProjectsClient creates a new Projects v2 client with the provided token
func NewProjectsClient(token string) *GraphQLClient {
	ctx := context.Background()
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)

	return &GraphQLClient{
		client: githubv4.NewClient(tc),
		ctx:    ctx,
		fields: make(map[string]*StatusField),
	}
}

// GetProject resolves an organization project by number
func (c *GraphQLClient) GetProject(org string, number int) (*Project, error) {
	var q struct {
		Organization struct {
			ProjectV2 struct {
				ID     string
				Title  string
				Number int
			} `graphql:"projectV2(number: $number)"`
		} `graphql:"organization(login: $login)"`
	}

	variables := map[string]interface{}{
		"login":  githubv4.String(org),
		"number": githubv4.Int(number),
	}

	if err := c.client.Query(c.ctx, &q, variables); err != nil {
		return nil, WrapAPIError(err, fmt.Sprintf("project %d in organization %s", number, org))
	}

	if q.Organization.ProjectV2.ID == "" {
		return nil, NewError(ErrorTypeNotFound,
			fmt.Sprintf("project %d not found in organization %s", number, org), nil)
	}

	return &Project{
		ID:     q.Organization.ProjectV2.ID,
		Number: q.Organization.ProjectV2.Number,
		Title:  q.Organization.ProjectV2.Title,
	}, nil
}

// ListProjects lists the organization's project boards
func (c *GraphQLClient) ListProjects(org string) ([]Project, error) {
	var q struct {
		Organization struct {
			ProjectsV2 struct {
				Nodes []struct {
					ID     string
					Title  string
					Number int
				}
			} `graphql:"projectsV2(first: 50)"`
		} `graphql:"organization(login: $login)"`
	}

	variables := map[string]interface{}{
		"login": githubv4.String(org),
	}

	if err := c.client.Query(c.ctx, &q, variables); err != nil {
		return nil, WrapAPIError(err, fmt.Sprintf("projects in organization %s", org))
	}

	var projects []Project
	for _, node := range q.Organization.ProjectsV2.Nodes {
		projects = append(projects, Project{
			ID:     node.ID,
			Number: node.Number,
			Title:  node.Title,
		})
	}

	return projects, nil
}

// GetStatusField returns the project's Status field with its options
func (c *GraphQLClient) GetStatusField(projectID string) (*StatusField, error) {
	if field, ok := c.fields[projectID]; ok {
		return field, nil
	}

	var q struct {
		Node struct {
			ProjectV2 struct {
				Fields struct {
					Nodes []struct {
						SingleSelectField struct {
							ID      string
							Name    string
							Options []struct {
								ID   string
								Name string
							}
						} `graphql:"... on ProjectV2SingleSelectField"`
					}
				} `graphql:"fields(first: 50)"`
			} `graphql:"... on ProjectV2"`
		} `graphql:"node(id: $projectId)"`
	}

	variables := map[string]interface{}{
		"projectId": githubv4.ID(projectID),
	}

	if err := c.client.Query(c.ctx, &q, variables); err != nil {
		return nil, WrapAPIError(err, fmt.Sprintf("fields for project %s", projectID))
	}

	for _, node := range q.Node.ProjectV2.Fields.Nodes {
		f := node.SingleSelectField
		if f.Name != statusFieldName {
			continue
		}

		field := &StatusField{
			ID:   f.ID,
			Name: f.Name,
		}
		for _, opt := range f.Options {
			field.Options = append(field.Options, StatusOption{
				ID:   opt.ID,
				Name: opt.Name,
			})
		}

		c.fields[projectID] = field
		return field, nil
	}

	return nil, NewError(ErrorTypeNotFound,
		fmt.Sprintf("field %q not found on project board", statusFieldName), nil)
}

// GetLinkedIssues returns the issues a pull request closes via closing references
func (c *GraphQLClient) GetLinkedIssues(owner, repo string, prNumber int) ([]LinkedIssue, error) {
	var q struct {
		Repository struct {
			PullRequest struct {
				ClosingIssuesReferences struct {
					Nodes []struct {
						ID        string
						Number    int
						Title     string
						State     string
						Assignees struct {
							Nodes []struct {
								Login string
							}
						} `graphql:"assignees(first: 20)"`
					}
				} `graphql:"closingIssuesReferences(first: 50)"`
			} `graphql:"pullRequest(number: $number)"`
		} `graphql:"repository(owner: $owner, name: $name)"`
	}

	variables := map[string]interface{}{
		"owner":  githubv4.String(owner),
		"name":   githubv4.String(repo),
		"number": githubv4.Int(prNumber),
	}

	if err := c.client.Query(c.ctx, &q, variables); err != nil {
		return nil, WrapAPIError(err, fmt.Sprintf("linked issues for pull request %s/%s#%d", owner, repo, prNumber))
	}

	var issues []LinkedIssue
	for _, node := range q.Repository.PullRequest.ClosingIssuesReferences.Nodes {
		issue := LinkedIssue{
			NodeID: node.ID,
			Number: node.Number,
			Title:  node.Title,
			State:  strings.ToLower(node.State),
		}
		for _, assignee := range node.Assignees.Nodes {
			issue.Assignees = append(issue.Assignees, assignee.Login)
		}
		issues = append(issues, issue)
	}

	return issues, nil
}

// GetIssueProjectItems returns the project items representing an issue
func (c *GraphQLClient) GetIssueProjectItems(issueNodeID string) ([]ProjectItem, error) {
	var q struct {
		Node struct {
			Issue struct {
				ProjectItems struct {
					Nodes []struct {
						ID      string
						Project struct {
							ID string
						}
						FieldValueByName struct {
							SingleSelectValue struct {
								Name string
							} `graphql:"... on ProjectV2ItemFieldSingleSelectValue"`
						} `graphql:"fieldValueByName(name: \"Status\")"`
					}
				} `graphql:"projectItems(first: 10)"`
			} `graphql:"... on Issue"`
		} `graphql:"node(id: $issueId)"`
	}

	variables := map[string]interface{}{
		"issueId": githubv4.ID(issueNodeID),
	}

	if err := c.client.Query(c.ctx, &q, variables); err != nil {
		return nil, WrapAPIError(err, fmt.Sprintf("project items for issue %s", issueNodeID))
	}

	var items []ProjectItem
	for _, node := range q.Node.Issue.ProjectItems.Nodes {
		items = append(items, ProjectItem{
			ID:        node.ID,
			ProjectID: node.Project.ID,
			Status:    node.FieldValueByName.SingleSelectValue.Name,
		})
	}

	return items, nil
}

// AddItem adds an issue or pull request to the project board and returns the
// item id. GitHub returns the existing item when the content is already on
// the board, so the call is idempotent.
func (c *GraphQLClient) AddItem(projectID, contentNodeID string) (string, error) {
	var m struct {
		AddProjectV2ItemByID struct {
			Item struct {
				ID string
			}
		} `graphql:"addProjectV2ItemById(input: $input)"`
	}

	input := githubv4.AddProjectV2ItemByIdInput{
		ProjectID: githubv4.ID(projectID),
		ContentID: githubv4.ID(contentNodeID),
	}

	if err := c.client.Mutate(c.ctx, &m, input, nil); err != nil {
		return "", WrapAPIError(err, fmt.Sprintf("project item for %s", contentNodeID))
	}

	return m.AddProjectV2ItemByID.Item.ID, nil
}

// SetItemStatus sets a single-select field option on a project item
func (c *GraphQLClient) SetItemStatus(projectID, itemID, fieldID, optionID string) error {
	var m struct {
		UpdateProjectV2ItemFieldValue struct {
			ProjectV2Item struct {
				ID string
			}
		} `graphql:"updateProjectV2ItemFieldValue(input: $input)"`
	}

	input := githubv4.UpdateProjectV2ItemFieldValueInput{
		ProjectID: githubv4.ID(projectID),
		ItemID:    githubv4.ID(itemID),
		FieldID:   githubv4.ID(fieldID),
		Value: githubv4.ProjectV2FieldValue{
			SingleSelectOptionID: githubv4.NewString(githubv4.String(optionID)),
		},
	}

	if err := c.client.Mutate(c.ctx, &m, input, nil); err != nil {
		return WrapAPIError(err, fmt.Sprintf("status for project item %s", itemID))
	}

	return nil
}
