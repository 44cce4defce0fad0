// Package workspace keeps the registry of workspaces: isolated browsing
// profiles with a name, an order, an activation state, an optional picture
// and an optional linked account.
//
// The registry is loaded lazily from the settings store under
// "workspaces.<SchemaVersion>". Every mutation updates memory first, then
// broadcasts "set-workspace" or "set-workspaces" to the windows and finally
// writes the change back to the store.
//
// Files live under the data directory:
//
//	pictures/<pictureId>.png
//	account-pictures/<pictureId>.png
//	Partitions/<workspaceId>/
package workspace
