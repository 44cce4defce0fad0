package workspace

import (
	"context"
	"fmt"

	"github.com/inovacc/juli/internal/model"
)

// SetAccountInfo links account metadata to the workspace and downloads the
// account picture when its URL changed. Unknown workspaces and unchanged
// name, email and picture URL are no-ops. A failed download is logged and
// leaves the record untouched.
func (r *Registry) SetAccountInfo(ctx context.Context, id string, info model.AccountInfo) error {
	if _, ok := r.Get(id); !ok {
		return nil
	}

	unlock := r.lockPipeline(id)
	defer unlock()

	cur, ok := r.Get(id)
	if !ok || cur.AccountInfo.SameIdentity(info) {
		return nil
	}

	next := model.AccountInfo{
		Name:       info.Name,
		Email:      info.Email,
		PictureURL: info.PictureURL,
	}

	switch {
	case info.PictureURL == "":
	case cur.AccountInfo != nil && cur.AccountInfo.PictureURL == info.PictureURL:
		next.PictureID = cur.AccountInfo.PictureID
		next.PicturePath = cur.AccountInfo.PicturePath
	default:
		pictureID := r.ids.NameID(info.PictureURL)
		dest := r.picturePath(accountPicturesDir, pictureID)

		if err := r.pictures.Download(ctx, info.PictureURL, dest); err != nil {
			r.logger.Error("failed to download account picture", "id", id, "url", info.PictureURL, "error", err)

			return nil
		}

		next.PictureID = pictureID
		next.PicturePath = dest
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.workspaces[id]; !ok {
		return nil
	}

	return r.patchLocked(id, model.Patch{AccountInfo: &next})
}

// RemoveAccountInfo unlinks the account and then deletes its picture. A
// cancelled ctx is only honoured before the record changes.
func (r *Registry) RemoveAccountInfo(ctx context.Context, id string) error {
	unlock := r.lockPipeline(id)
	defer unlock()

	r.mu.Lock()

	r.initLocked()

	cur, ok := r.workspaces[id]
	if !ok {
		r.mu.Unlock()

		return fmt.Errorf("%w: %s", ErrWorkspaceNotFound, id)
	}

	if cur.AccountInfo == nil {
		r.mu.Unlock()

		return nil
	}

	if err := ctx.Err(); err != nil {
		r.mu.Unlock()

		return err
	}

	err := r.patchLocked(id, model.Patch{ClearAccountInfo: true})
	r.mu.Unlock()

	if path := cur.AccountInfo.PicturePath; path != "" {
		r.removeFile(path)
	}

	return err
}
