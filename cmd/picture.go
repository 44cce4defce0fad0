package cmd

import (
	"fmt"

	"github.com/inovacc/juli/internal/cli"
	"github.com/inovacc/juli/internal/model"
	"github.com/spf13/cobra"
)

var workspacePictureCmd = &cobra.Command{
	Use:   "picture",
	Short: "Manage workspace pictures",
}

var workspacePictureSetCmd = &cobra.Command{
	Use:   "set <workspace> <file|url>",
	Short: "Set the workspace picture",
	Long: `Resize a local image or an http(s) URL to 128x128 and use it as the
workspace picture. The previous picture is deleted.

Example:
  juli workspace picture set Work ~/Pictures/work.jpg`,
	Args: cobra.ExactArgs(2),
	RunE: runWorkspacePictureSet,
}

var workspacePictureRemoveCmd = &cobra.Command{
	Use:     "rm <workspace>",
	Aliases: []string{"remove"},
	Short:   "Remove the workspace picture",
	Args:    cobra.ExactArgs(1),
	RunE:    runWorkspacePictureRemove,
}

var workspaceAccountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage the account linked to a workspace",
}

var workspaceAccountSetCmd = &cobra.Command{
	Use:   "set <workspace>",
	Short: "Link account details to a workspace",
	Long: `Link account details to a workspace. The account picture is downloaded
when its URL changes.

Example:
  juli workspace account set Work --name "Ann" --email ann@example.com --picture-url https://example.com/ann.png`,
	Args: cobra.ExactArgs(1),
	RunE: runWorkspaceAccountSet,
}

var workspaceAccountRemoveCmd = &cobra.Command{
	Use:     "rm <workspace>",
	Aliases: []string{"remove"},
	Short:   "Unlink the account from a workspace",
	Args:    cobra.ExactArgs(1),
	RunE:    runWorkspaceAccountRemove,
}

var (
	accountName       string
	accountEmail      string
	accountPictureURL string
)

func init() {
	workspaceCmd.AddCommand(workspacePictureCmd)
	workspacePictureCmd.AddCommand(workspacePictureSetCmd)
	workspacePictureCmd.AddCommand(workspacePictureRemoveCmd)

	workspaceCmd.AddCommand(workspaceAccountCmd)
	workspaceAccountCmd.AddCommand(workspaceAccountSetCmd)
	workspaceAccountCmd.AddCommand(workspaceAccountRemoveCmd)

	workspaceAccountSetCmd.Flags().StringVar(&accountName, "name", "", "Account display name")
	workspaceAccountSetCmd.Flags().StringVar(&accountEmail, "email", "", "Account email")
	workspaceAccountSetCmd.Flags().StringVar(&accountPictureURL, "picture-url", "", "Account picture URL")
}

func runWorkspacePictureSet(cmd *cobra.Command, args []string) error {
	source, err := pictureSource(args[1])
	if err != nil {
		return err
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

	if err := r.SetPicture(cmd.Context(), w.ID, source); err != nil {
		return err
	}

	w, _ = r.Get(w.ID)
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Picture of '%s' saved to %s\n", cli.DisplayName(w), w.PicturePath)

	return nil
}

func runWorkspacePictureRemove(cmd *cobra.Command, args []string) error {
	r, closeFn, err := openRegistry(nil)
	if err != nil {
		return err
	}
	defer closeFn()

	w, err := resolveWorkspace(r, args[0])
	if err != nil {
		return err
	}

	if err := r.RemovePicture(cmd.Context(), w.ID); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Picture of '%s' removed\n", cli.DisplayName(w))

	return nil
}

func runWorkspaceAccountSet(cmd *cobra.Command, args []string) error {
	r, closeFn, err := openRegistry(nil)
	if err != nil {
		return err
	}
	defer closeFn()

	w, err := resolveWorkspace(r, args[0])
	if err != nil {
		return err
	}

	info := model.AccountInfo{
		Name:       accountName,
		Email:      accountEmail,
		PictureURL: accountPictureURL,
	}

	if err := r.SetAccountInfo(cmd.Context(), w.ID, info); err != nil {
		return err
	}

	w, _ = r.Get(w.ID)
	printWorkspace(cmd.OutOrStdout(), w)

	return nil
}

func runWorkspaceAccountRemove(cmd *cobra.Command, args []string) error {
	r, closeFn, err := openRegistry(nil)
	if err != nil {
		return err
	}
	defer closeFn()

	w, err := resolveWorkspace(r, args[0])
	if err != nil {
		return err
	}

	if err := r.RemoveAccountInfo(cmd.Context(), w.ID); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Account unlinked from '%s'\n", cli.DisplayName(w))

	return nil
}
