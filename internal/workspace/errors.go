package workspace

import "errors"

var (
	// ErrWorkspaceNotFound is returned when a workspace doesn't exist
	ErrWorkspaceNotFound = errors.New("workspace not found")

	// ErrWorkspaceExists is returned when creating a workspace with an id already in use
	ErrWorkspaceExists = errors.New("workspace already exists")
)
