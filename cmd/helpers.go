package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/inovacc/juli/internal/application"
	"github.com/inovacc/juli/internal/cli"
	"github.com/inovacc/juli/internal/model"
	"github.com/inovacc/juli/internal/picture"
	"github.com/inovacc/juli/internal/store"
	"github.com/inovacc/juli/internal/workspace"
	"github.com/spf13/afero"
)

// logBroadcaster stands in for the window hub when no windows are attached.
type logBroadcaster struct{}

func (logBroadcaster) Send(channel string, args ...any) {
	logger.Debug("broadcast", "channel", channel, "args", len(args))
}

// openRegistry opens the settings store and builds a loaded registry on it.
// The returned close function waits for background cleanups and closes the store.
func openRegistry(b workspace.Broadcaster) (*workspace.Registry, func(), error) {
	if b == nil {
		b = logBroadcaster{}
	}

	s, err := store.Open(cfg.Backend, cfg.DataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open settings store: %w", err)
	}

	identity, err := application.LoadIdentity(cfg.Manifest)
	if err != nil {
		_ = s.Close()

		return nil, nil, err
	}

	fs := afero.NewOsFs()

	r, err := workspace.New(workspace.Options{
		Store:       s,
		DataDir:     cfg.DataDir,
		Identity:    identity,
		Broadcaster: b,
		Pictures:    picture.NewService(fs, picture.WithTimeout(cfg.DownloadTimeout), picture.WithLogger(logger)),
		Fs:          fs,
		Logger:      logger,
	})
	if err != nil {
		_ = s.Close()

		return nil, nil, err
	}

	// Active answers nothing until the mapping is loaded
	r.Init()

	closeFn := func() {
		r.Wait()

		if err := s.Close(); err != nil {
			logger.Error("failed to close settings store", "error", err)
		}
	}

	return r, closeFn, nil
}

// resolveWorkspace finds a workspace by id, then by name. Names are matched
// case-insensitively and must be unique.
func resolveWorkspace(r *workspace.Registry, ref string) (model.Workspace, error) {
	if w, ok := r.Get(ref); ok {
		return w, nil
	}

	var matches []model.Workspace

	for _, w := range r.List() {
		if w.Name != "" && strings.EqualFold(w.Name, ref) {
			matches = append(matches, w)
		}
	}

	switch len(matches) {
	case 0:
		return model.Workspace{}, fmt.Errorf("%w: %s", workspace.ErrWorkspaceNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return model.Workspace{}, fmt.Errorf("workspace name %q is ambiguous (%d matches), use the id", ref, len(matches))
	}
}

// parsePreferenceValue reads a JSON value, falling back to a plain string.
func parsePreferenceValue(s string) any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return s
	}

	return v
}

// pictureSource expands local paths and leaves URLs alone.
func pictureSource(s string) (string, error) {
	if picture.IsURL(s) {
		return s, nil
	}

	return expandPath(s)
}

// promptConfirm asks the user for confirmation and returns true if they confirm
// prompt should include the question (e.g., "Delete this file? [y/N]: ")
func promptConfirm(prompt string) bool {
	_, _ = fmt.Fprint(os.Stdout, prompt)

	var response string

	_, _ = fmt.Scanln(&response)

	return response == "y" || response == "Y"
}

// expandPath expands ~ to the user's home directory and returns an absolute path
func expandPath(path string) (string, error) {
	if len(path) == 0 {
		return "", fmt.Errorf("path is empty")
	}

	if path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}

		path = filepath.Join(home, path[1:])
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}

	return absPath, nil
}

// printWorkspace writes a short multi-line description of w.
func printWorkspace(out io.Writer, w model.Workspace) {
	state := ""

	switch {
	case w.Active:
		state = " (active)"
	case w.Hibernated:
		state = " (hibernated)"
	}

	_, _ = fmt.Fprintf(out, "  %s%s\n", cli.DisplayName(w), state)
	_, _ = fmt.Fprintf(out, "    ID: %s\n", w.ID)
	_, _ = fmt.Fprintf(out, "    Order: %d\n", w.Order)

	if w.PicturePath != "" {
		_, _ = fmt.Fprintf(out, "    Picture: %s\n", w.PicturePath)
	}

	if info := w.AccountInfo; info != nil {
		_, _ = fmt.Fprintf(out, "    Account: %s <%s>\n", info.Name, info.Email)
	}
}
