// Package model defines the data structures used throughout Juli.
//
// # Workspace
//
// The [Workspace] struct is an isolated browsing profile. Its JSON form is
// the persisted form, so field names follow the settings file written by
// earlier releases:
//
//	type Workspace struct {
//	    ID          string         // Unique identifier (time-based UUID)
//	    Name        string         // User label
//	    Order       int            // Display sequence
//	    Active      bool           // Currently shown workspace
//	    Hibernated  bool           // Unloaded but kept
//	    PicturePath string         // pictures/<PictureID>.png
//	    PictureID   string
//	    AccountInfo *AccountInfo   // Linked account metadata
//	    Preferences map[string]any // Per-workspace settings
//	}
//
// Records are values. Updates go through [Patch.Apply], which returns a new
// record instead of mutating a shared one.
package model
