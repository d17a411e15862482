// Package github provides the GitHub API surface prsync needs to mirror a
// pull request's state onto a Projects v2 board. REST operations (pull
// request and issue reads/edits) go through google/go-github; Projects v2
// only exists on the GraphQL API, so board operations go through a
// shurcooL/githubv4 client.
//
// The package includes:
// - APIClient and ProjectsClient interfaces for the two API surfaces
// - Token resolution and scope validation
// - Typed errors with retry classification and backoff
// - Type definitions for the GitHub resources the sync touches
package github
