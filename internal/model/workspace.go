package model

import (
	"maps"
	"slices"
	"strings"
)

// Workspace represents an isolated browsing profile with its own partition
type Workspace struct {
	// ID is the unique identifier for this workspace, assigned once
	ID string `json:"id"`

	// Name is the user label; empty by default
	Name string `json:"name"`

	// Order defines the display sequence; values need not be contiguous
	Order int `json:"order"`

	// Active indicates if this is the currently active workspace
	Active bool `json:"active"`

	// Hibernated marks a workspace that is unloaded but not destroyed
	Hibernated bool `json:"hibernated"`

	// PicturePath is the local 128x128 picture of the workspace
	PicturePath string `json:"picturePath,omitempty"`

	// PictureID correlates with PicturePath
	PictureID string `json:"pictureId,omitempty"`

	// AccountInfo is metadata of a linked external account
	AccountInfo *AccountInfo `json:"accountInfo,omitempty"`

	// Preferences holds per-workspace settings
	Preferences map[string]any `json:"preferences,omitempty"`
}

// AccountInfo is the linked account shown for a workspace
type AccountInfo struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	PictureURL  string `json:"pictureUrl"`
	PictureID   string `json:"pictureId,omitempty"`
	PicturePath string `json:"picturePath,omitempty"`
}

// SameIdentity reports whether two account infos share name, email and picture URL.
// A nil receiver compares as the zero value.
func (a *AccountInfo) SameIdentity(other AccountInfo) bool {
	var cur AccountInfo
	if a != nil {
		cur = *a
	}

	return cur.PictureURL == other.PictureURL && cur.Name == other.Name && cur.Email == other.Email
}

// Workspaces maps workspace id to record.
type Workspaces map[string]Workspace

// Sorted returns all workspaces ascending by order. Equal orders fall back to id.
func (ws Workspaces) Sorted() []Workspace {
	list := slices.Collect(maps.Values(ws))

	slices.SortFunc(list, func(a, b Workspace) int {
		if a.Order != b.Order {
			return a.Order - b.Order
		}

		return strings.Compare(a.ID, b.ID)
	})

	return list
}

// MaxOrder returns the greatest order, never below zero.
func (ws Workspaces) MaxOrder() int {
	maxOrder := 0
	for _, w := range ws {
		if w.Order > maxOrder {
			maxOrder = w.Order
		}
	}

	return maxOrder
}

// Patch is a shallow update of a Workspace. Nil fields are left untouched.
type Patch struct {
	ID          *string
	Name        *string
	Order       *int
	Active      *bool
	Hibernated  *bool
	PicturePath *string
	PictureID   *string
	AccountInfo *AccountInfo
	Preferences map[string]any

	// ClearAccountInfo unlinks the account; it wins over AccountInfo
	ClearAccountInfo bool

	// Picture is a source picture supplied by older callers. It is never
	// stored on the record; pictures go through the registry's picture pipeline.
	Picture *string
}

// Apply returns a copy of w with the patch merged in. ID is not applied;
// only creation honours an explicit id.
func (p Patch) Apply(w Workspace) Workspace {
	if p.Name != nil {
		w.Name = *p.Name
	}

	if p.Order != nil {
		w.Order = *p.Order
	}

	if p.Active != nil {
		w.Active = *p.Active
	}

	if p.Hibernated != nil {
		w.Hibernated = *p.Hibernated
	}

	if p.PicturePath != nil {
		w.PicturePath = *p.PicturePath
	}

	if p.PictureID != nil {
		w.PictureID = *p.PictureID
	}

	if p.AccountInfo != nil {
		info := *p.AccountInfo
		w.AccountInfo = &info
	}

	if p.ClearAccountInfo {
		w.AccountInfo = nil
	}

	if p.Preferences != nil {
		w.Preferences = maps.Clone(p.Preferences)
	}

	return w
}

// Ptr returns a pointer to v, for building patches.
func Ptr[T any](v T) *T {
	return &v
}
