package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/inovacc/juli/internal/cli"
	"github.com/inovacc/juli/internal/model"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var workspaceCmd = &cobra.Command{
	Use:     "workspace",
	Aliases: []string{"ws"},
	Short:   "Manage workspaces",
	Long: `Manage workspaces.

Each workspace is an isolated browsing profile with its own storage partition.
Workspaces are referenced by id or, when unique, by name.`,
}

var workspaceAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Create a new workspace",
	Long: `Create a new workspace after every existing one.

Examples:
  juli workspace add Work
  juli workspace add Personal --picture ~/Pictures/me.png --activate`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWorkspaceAdd,
}

var workspaceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all workspaces",
	Long:  `List all workspaces in display order.`,
	RunE:  runWorkspaceList,
}

var workspaceUseCmd = &cobra.Command{
	Use:   "use <workspace>",
	Short: "Set the active workspace",
	Long: `Set a workspace as the active workspace. The previous active workspace
is deactivated and the new one is woken from hibernation.

Example:
  juli workspace use Work`,
	Args: cobra.ExactArgs(1),
	RunE: runWorkspaceUse,
}

var workspaceSetCmd = &cobra.Command{
	Use:   "set <workspace>",
	Short: "Update workspace fields",
	Long: `Update the name, order or hibernation of a workspace.

Examples:
  juli workspace set Work --name Office
  juli workspace set Office --order 10 --hibernate`,
	Args: cobra.ExactArgs(1),
	RunE: runWorkspaceSet,
}

var workspaceRemoveCmd = &cobra.Command{
	Use:   "remove <workspace>",
	Short: "Remove a workspace",
	Long: `Remove a workspace together with its storage partition, picture and
account picture.

Example:
  juli workspace remove Old --yes`,
	Args: cobra.ExactArgs(1),
	RunE: runWorkspaceRemove,
}

var workspaceNextCmd = &cobra.Command{
	Use:   "next [workspace]",
	Short: "Show the workspace after the given or active one",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runWorkspaceNeighbor(true),
}

var workspacePrevCmd = &cobra.Command{
	Use:   "prev [workspace]",
	Short: "Show the workspace before the given or active one",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runWorkspaceNeighbor(false),
}

var workspacePrefCmd = &cobra.Command{
	Use:   "pref <workspace> [key [value]]",
	Short: "Show or change workspace preferences",
	Long: `Show all preferences, show one preference or set one preference.
Values are parsed as JSON and stored as strings otherwise.

Examples:
  juli workspace pref Work
  juli workspace pref Work muted true
  juli workspace pref Work userAgent "Mozilla/5.0"`,
	Args: cobra.RangeArgs(1, 3),
	RunE: runWorkspacePref,
}

var workspaceSelectCmd = &cobra.Command{
	Use:   "select",
	Short: "Interactively select a workspace",
	Long:  `Open an interactive TUI to activate or create a workspace.`,
	RunE:  runWorkspaceSelect,
}

var (
	workspaceAddPicture    string
	workspaceAddActivate   bool
	workspaceSetName       string
	workspaceSetOrder      int
	workspaceSetHibernate  bool
	workspaceRemoveYes     bool
	workspaceListJSON      bool
	workspaceNeighborApply bool
)

func init() {
	rootCmd.AddCommand(workspaceCmd)

	workspaceCmd.AddCommand(workspaceAddCmd)
	workspaceCmd.AddCommand(workspaceListCmd)
	workspaceCmd.AddCommand(workspaceUseCmd)
	workspaceCmd.AddCommand(workspaceSetCmd)
	workspaceCmd.AddCommand(workspaceRemoveCmd)
	workspaceCmd.AddCommand(workspaceNextCmd)
	workspaceCmd.AddCommand(workspacePrevCmd)
	workspaceCmd.AddCommand(workspacePrefCmd)
	workspaceCmd.AddCommand(workspaceSelectCmd)

	workspaceAddCmd.Flags().StringVar(&workspaceAddPicture, "picture", "", "Picture file or http(s) URL")
	workspaceAddCmd.Flags().BoolVar(&workspaceAddActivate, "activate", false, "Make the new workspace active")

	workspaceListCmd.Flags().BoolVar(&workspaceListJSON, "json", false, "Print the workspaces as JSON")

	workspaceSetCmd.Flags().StringVar(&workspaceSetName, "name", "", "New name")
	workspaceSetCmd.Flags().IntVar(&workspaceSetOrder, "order", 0, "New display order")
	workspaceSetCmd.Flags().BoolVar(&workspaceSetHibernate, "hibernate", false, "Hibernate (true) or wake (false) the workspace")

	workspaceRemoveCmd.Flags().BoolVarP(&workspaceRemoveYes, "yes", "y", false, "Skip confirmation prompt")

	for _, c := range []*cobra.Command{workspaceNextCmd, workspacePrevCmd} {
		c.Flags().BoolVar(&workspaceNeighborApply, "activate", false, "Make the found workspace active")
	}
}

func runWorkspaceAdd(cmd *cobra.Command, args []string) error {
	r, closeFn, err := openRegistry(nil)
	if err != nil {
		return err
	}
	defer closeFn()

	out := cmd.OutOrStdout()

	p := model.Patch{}
	if len(args) == 1 {
		p.Name = model.Ptr(args[0])
	}

	first := r.Count() == 0

	w, err := r.Create(p)
	if err != nil {
		return fmt.Errorf("failed to create workspace: %w", err)
	}

	if workspaceAddPicture != "" {
		source, err := pictureSource(workspaceAddPicture)
		if err != nil {
			return err
		}

		if err := r.SetPicture(cmd.Context(), w.ID, source); err != nil {
			_, _ = fmt.Fprintf(out, "Warning: picture not set: %v\n", err)
		}
	}

	if first || workspaceAddActivate {
		if err := r.SetActive(w.ID); err != nil {
			return fmt.Errorf("failed to activate workspace: %w", err)
		}
	}

	w, _ = r.Get(w.ID)

	_, _ = fmt.Fprintf(out, "Workspace '%s' created\n", cli.DisplayName(w))
	_, _ = fmt.Fprintf(out, "ID: %s\n", w.ID)

	if w.Active {
		_, _ = fmt.Fprintln(out, "This workspace is now active.")
	} else {
		_, _ = fmt.Fprintf(out, "To use this workspace: juli workspace use %s\n", w.ID)
	}

	return nil
}

func runWorkspaceList(cmd *cobra.Command, _ []string) error {
	r, closeFn, err := openRegistry(nil)
	if err != nil {
		return err
	}
	defer closeFn()

	out := cmd.OutOrStdout()
	list := r.List()

	if workspaceListJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")

		return enc.Encode(list)
	}

	if len(list) == 0 {
		_, _ = fmt.Fprintln(out, "No workspaces configured.")
		_, _ = fmt.Fprintln(out, "Create one with: juli workspace add <name>")

		return nil
	}

	_, _ = fmt.Fprintf(out, "Workspaces (%d):\n\n", len(list))

	for _, w := range list {
		printWorkspace(out, w)
		_, _ = fmt.Fprintln(out)
	}

	return nil
}

func runWorkspaceUse(cmd *cobra.Command, args []string) error {
	r, closeFn, err := openRegistry(nil)
	if err != nil {
		return err
	}
	defer closeFn()

	w, err := resolveWorkspace(r, args[0])
	if err != nil {
		return err
	}

	if err := r.SetActive(w.ID); err != nil {
		return fmt.Errorf("failed to set active workspace: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Workspace '%s' is now active\n", cli.DisplayName(w))

	return nil
}

func runWorkspaceSet(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()

	var p model.Patch

	if flags.Changed("name") {
		p.Name = model.Ptr(workspaceSetName)
	}

	if flags.Changed("order") {
		p.Order = model.Ptr(workspaceSetOrder)
	}

	if flags.Changed("hibernate") {
		p.Hibernated = model.Ptr(workspaceSetHibernate)
	}

	if p.Name == nil && p.Order == nil && p.Hibernated == nil {
		return errors.New("nothing to change, use --name, --order or --hibernate")
	}

	r, closeFn, err := openRegistry(nil)
	if err != nil {
		return err
	}
	defer closeFn()

	w, err := resolveWorkspace(r, args[0])
	if err != nil {
		return err
	}

	if err := r.Set(w.ID, p); err != nil {
		return fmt.Errorf("failed to update workspace: %w", err)
	}

	w, _ = r.Get(w.ID)
	printWorkspace(cmd.OutOrStdout(), w)

	return nil
}

func runWorkspaceRemove(cmd *cobra.Command, args []string) error {
	r, closeFn, err := openRegistry(nil)
	if err != nil {
		return err
	}
	defer closeFn()

	w, err := resolveWorkspace(r, args[0])
	if err != nil {
		return err
	}

	if !workspaceRemoveYes && !promptConfirm(fmt.Sprintf("Remove workspace '%s' and all its data? [y/N]: ", cli.DisplayName(w))) {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")

		return nil
	}

	if err := r.Remove(w.ID); err != nil {
		return fmt.Errorf("failed to remove workspace: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Workspace '%s' removed\n", cli.DisplayName(w))

	return nil
}

func runWorkspaceNeighbor(next bool) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		r, closeFn, err := openRegistry(nil)
		if err != nil {
			return err
		}
		defer closeFn()

		var from string

		if len(args) == 1 {
			w, err := resolveWorkspace(r, args[0])
			if err != nil {
				return err
			}

			from = w.ID
		} else if active, ok := r.Active(); ok {
			from = active.ID
		}

		neighbor := r.Previous
		if next {
			neighbor = r.Next
		}

		w, ok := neighbor(from)
		if !ok {
			return errors.New("no workspaces configured")
		}

		if workspaceNeighborApply {
			if err := r.SetActive(w.ID); err != nil {
				return fmt.Errorf("failed to set active workspace: %w", err)
			}

			w, _ = r.Get(w.ID)
		}

		printWorkspace(cmd.OutOrStdout(), w)

		return nil
	}
}

func runWorkspacePref(cmd *cobra.Command, args []string) error {
	r, closeFn, err := openRegistry(nil)
	if err != nil {
		return err
	}
	defer closeFn()

	w, err := resolveWorkspace(r, args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	enc := json.NewEncoder(out)

	switch len(args) {
	case 1:
		enc.SetIndent("", "  ")

		return enc.Encode(r.Preferences(w.ID))
	case 2:
		v, ok := r.Preference(w.ID, args[1])
		if !ok {
			return fmt.Errorf("preference %q is not set", args[1])
		}

		return enc.Encode(v)
	}

	next := r.Preferences(w.ID)
	next[args[1]] = parsePreferenceValue(args[2])

	if err := r.Set(w.ID, model.Patch{Preferences: next}); err != nil {
		return fmt.Errorf("failed to update preferences: %w", err)
	}

	_, _ = fmt.Fprintf(out, "Preference '%s' updated\n", args[1])

	return nil
}

func runWorkspaceSelect(cmd *cobra.Command, _ []string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return errors.New("workspace select needs an interactive terminal, use 'juli workspace use' instead")
	}

	r, closeFn, err := openRegistry(nil)
	if err != nil {
		return err
	}
	defer closeFn()

	sel, err := cli.RunWorkspaceSelector(r.List(), true)
	if err != nil {
		return err
	}

	if sel.Workspace == nil {
		return nil
	}

	id := sel.Workspace.ID

	if sel.Create {
		p := model.Patch{}
		if sel.Workspace.Name != "" {
			p.Name = model.Ptr(sel.Workspace.Name)
		}

		w, err := r.Create(p)
		if err != nil {
			return fmt.Errorf("failed to create workspace: %w", err)
		}

		id = w.ID

		if sel.Picture != "" {
			source, err := pictureSource(sel.Picture)
			if err == nil {
				err = r.SetPicture(cmd.Context(), id, source)
			}

			if err != nil {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Warning: picture not set: %v\n", err)
			}
		}
	}

	if err := r.SetActive(id); err != nil {
		return fmt.Errorf("failed to set active workspace: %w", err)
	}

	w, _ := r.Get(id)
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Workspace '%s' is now active\n", cli.DisplayName(w))

	return nil
}
