package api

import (
	"github.com/starford/folio/internal/manifest"
	"github.com/starford/folio/internal/viewer"
)

// Page is a rendered document (aliased from the domain layer).
type Page = viewer.Page

// SearchView is the search response (aliased from the domain layer).
type SearchView = viewer.SearchView

// TreeResponse wraps the navigation tree.
type TreeResponse struct {
	Query string              `json:"query,omitempty" example:"install"`
	Tree  []manifest.TreeNode `json:"tree" validate:"required"`
}

// RecentResponse wraps the recent-articles list.
type RecentResponse struct {
	Articles []viewer.Article `json:"articles" validate:"required"`
}

// HistoryResponse wraps the recently-read list.
type HistoryResponse struct {
	Visits []viewer.Visit `json:"visits" validate:"required"`
}

// ThemeRequest is the request body for setting the theme.
type ThemeRequest struct {
	Theme string `json:"theme" example:"dark" validate:"required"`
}

// ThemeResponse is the current theme.
type ThemeResponse struct {
	Theme string `json:"theme" example:"light" validate:"required"`
}
