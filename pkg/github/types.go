package github

// PullRequest represents the subset of pull request state the sync cares about
type PullRequest struct {
	Number    int      `json:"number"`
	NodeID    string   `json:"node_id"`
	Title     string   `json:"title"`
	State     string   `json:"state"` // open, closed
	Merged    bool     `json:"merged"`
	Draft     bool     `json:"draft"`
	Author    string   `json:"author"`
	Assignees []string `json:"assignees"`
}

// LinkedIssue represents an issue linked to a pull request via closing references
type LinkedIssue struct {
	Number    int      `json:"number"`
	NodeID    string   `json:"node_id"`
	Title     string   `json:"title"`
	State     string   `json:"state"` // open, closed
	Assignees []string `json:"assignees"`
}

// Project represents a GitHub Projects v2 board
type Project struct {
	ID     string `json:"id"`
	Number int    `json:"number"`
	Title  string `json:"title"`
}

// StatusField represents a single-select project field and its options
type StatusField struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	Options []StatusOption `json:"options"`
}

// StatusOption represents one selectable value of a single-select field
type StatusOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// OptionID returns the option id for the given option name, or false if the
// field has no such option.
func (f *StatusField) OptionID(name string) (string, bool) {
	for _, opt := range f.Options {
		if opt.Name == name {
			return opt.ID, true
		}
	}
	return "", false
}

// ProjectItem represents a row on a project board
type ProjectItem struct {
	ID        string `json:"id"`
	ProjectID string `json:"project_id"`
	Status    string `json:"status"` // current Status option name, empty if unset
}
