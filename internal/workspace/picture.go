package workspace

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/inovacc/juli/internal/model"
	"github.com/inovacc/juli/internal/picture"
	"golang.org/x/sync/errgroup"
)

// SetPicture resizes source, a local path or an http(s) URL, into the
// workspace picture. A source equal to the current picture path does nothing.
// On failure the previous picture is kept and the error is returned.
func (r *Registry) SetPicture(ctx context.Context, id, source string) error {
	if _, ok := r.Get(id); !ok {
		return fmt.Errorf("%w: %s", ErrWorkspaceNotFound, id)
	}

	unlock := r.lockPipeline(id)
	defer unlock()

	// read under the pipeline lock so a call that just finished is seen
	cur, ok := r.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrWorkspaceNotFound, id)
	}

	if source == cur.PicturePath {
		return nil
	}

	pictureID := r.ids.TimeID()
	dest := r.picturePath(picturesDir, pictureID)

	if err := r.renderPicture(ctx, source, pictureID, dest); err != nil {
		r.logger.Error("failed to set workspace picture", "id", id, "source", source, "error", err)

		return fmt.Errorf("setting picture of %s: %w", id, err)
	}

	r.mu.Lock()

	cur, ok = r.workspaces[id]
	if !ok {
		r.mu.Unlock()
		r.removeFile(dest)

		return fmt.Errorf("%w: %s", ErrWorkspaceNotFound, id)
	}

	err := r.patchLocked(id, model.Patch{
		PictureID:   model.Ptr(pictureID),
		PicturePath: model.Ptr(dest),
	})
	r.mu.Unlock()

	if cur.PicturePath != "" && cur.PicturePath != dest {
		r.removeFile(cur.PicturePath)
	}

	return err
}

func (r *Registry) renderPicture(ctx context.Context, source, pictureID, dest string) error {
	src := source

	if picture.IsURL(source) {
		tmp, err := r.pictures.TempDir()
		if err != nil {
			return fmt.Errorf("failed to create temp dir: %w", err)
		}

		defer func() { _ = r.fs.RemoveAll(tmp) }()

		src = filepath.Join(tmp, pictureID)
		if err := r.pictures.Download(ctx, source, src); err != nil {
			return err
		}
	}

	return r.pictures.Resize(ctx, src, dest, picture.Size, picture.Size)
}

// RemovePicture deletes the workspace picture from disk and clears it on
// the record. Workspaces without a picture are left alone.
func (r *Registry) RemovePicture(ctx context.Context, id string) error {
	cur, ok := r.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrWorkspaceNotFound, id)
	}

	if cur.PicturePath == "" {
		return nil
	}

	unlock := r.lockPipeline(id)
	defer unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := r.fs.Remove(cur.PicturePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove picture of %s: %w", id, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.workspaces[id]; !ok {
		return nil
	}

	return r.patchLocked(id, model.Patch{
		PictureID:   model.Ptr(""),
		PicturePath: model.Ptr(""),
	})
}

// removeFiles deletes the partition of w first, then both its pictures in parallel.
func (r *Registry) removeFiles(w model.Workspace) {
	partition := filepath.Join(r.dataDir, partitionsDir, w.ID)
	if err := r.fs.RemoveAll(partition); err != nil {
		r.logger.Error("failed to remove partition", "id", w.ID, "path", partition, "error", err)

		return
	}

	var g errgroup.Group

	for _, path := range []string{w.PicturePath, accountPicturePath(w)} {
		if path == "" {
			continue
		}

		g.Go(func() error {
			if err := r.fs.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("failed to remove %s: %w", path, err)
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		r.logger.Error("failed to remove workspace pictures", "id", w.ID, "error", err)

		return
	}

	r.logger.Debug("workspace files removed", "id", w.ID)
}

// removeFile deletes a picture that is no longer referenced. Failures are logged.
func (r *Registry) removeFile(path string) {
	if err := r.fs.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		r.logger.Warn("failed to remove stale picture", "path", path, "error", err)
	}
}

func accountPicturePath(w model.Workspace) string {
	if w.AccountInfo == nil {
		return ""
	}

	return w.AccountInfo.PicturePath
}
