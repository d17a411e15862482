package sync

import (
	"prsync/pkg/config"
	"prsync/pkg/github"
)

// StatusNames holds the board's status option names. The zero value is not
// usable directly; call withDefaults or build via FromConfig.
type StatusNames struct {
	SelectedForDevelopment string
	WeeklyBacklog          string
	InDevelopment          string
	ReadyForReview         string
	OnHold                 string
	Done                   string
}

// DefaultStatusNames returns the status names our project boards use
func DefaultStatusNames() StatusNames {
	return StatusNames{
		SelectedForDevelopment: "Selected for Development",
		WeeklyBacklog:          "Weekly Backlog",
		InDevelopment:          "In Development",
		ReadyForReview:         "Ready For Review",
		OnHold:                 "On Hold",
		Done:                   "Done",
	}
}

// FromConfig builds status names from configuration, falling back to the
// defaults for any name left empty
func FromConfig(cfg config.StatusConfig) StatusNames {
	names := StatusNames{
		SelectedForDevelopment: cfg.SelectedForDevelopment,
		WeeklyBacklog:          cfg.WeeklyBacklog,
		InDevelopment:          cfg.InDevelopment,
		ReadyForReview:         cfg.ReadyForReview,
		OnHold:                 cfg.OnHold,
		Done:                   cfg.Done,
	}
	return names.withDefaults()
}

func (n StatusNames) withDefaults() StatusNames {
	defaults := DefaultStatusNames()
	if n.SelectedForDevelopment == "" {
		n.SelectedForDevelopment = defaults.SelectedForDevelopment
	}
	if n.WeeklyBacklog == "" {
		n.WeeklyBacklog = defaults.WeeklyBacklog
	}
	if n.InDevelopment == "" {
		n.InDevelopment = defaults.InDevelopment
	}
	if n.ReadyForReview == "" {
		n.ReadyForReview = defaults.ReadyForReview
	}
	if n.OnHold == "" {
		n.OnHold = defaults.OnHold
	}
	if n.Done == "" {
		n.Done = defaults.Done
	}
	return n
}

// All returns every configured status name
func (n StatusNames) All() []string {
	return []string{
		n.SelectedForDevelopment,
		n.WeeklyBacklog,
		n.InDevelopment,
		n.ReadyForReview,
		n.OnHold,
		n.Done,
	}
}

// StatusForPullRequest maps a pull request's state to the board status its
// linked issues should carry:
//
//	merged              -> Done
//	closed without merge -> Selected for Development (back to the backlog)
//	open draft          -> In Development
//	open, ready         -> Ready For Review
//
// The triggering webhook event does not matter; the PR's current state is
// the source of truth, which is what makes re-runs idempotent.
func StatusForPullRequest(pr *github.PullRequest, names StatusNames) string {
	switch {
	case pr.Merged:
		return names.Done
	case pr.State == "closed":
		return names.SelectedForDevelopment
	case pr.Draft:
		return names.InDevelopment
	default:
		return names.ReadyForReview
	}
}
