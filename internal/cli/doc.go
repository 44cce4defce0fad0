// Package cli provides the terminal user interface components for Juli.
//
// The package uses [Bubbletea] for building interactive terminal UIs and
// [Lipgloss] for styling. The workspace selector lists workspaces in display
// order, lets the user filter them and offers an entry to create a new one.
//
//	sel, err := cli.RunWorkspaceSelector(registry.List(), true)
//	if err != nil {
//	    return err
//	}
//	if sel.Workspace == nil {
//	    return nil // user quit
//	}
//
// [Bubbletea]: https://github.com/charmbracelet/bubbletea
// [Lipgloss]: https://github.com/charmbracelet/lipgloss
package cli
