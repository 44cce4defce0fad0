package workspace

import (
	"fmt"
	"maps"

	"github.com/inovacc/juli/internal/model"
)

// Create adds a workspace with a fresh id and an order above every existing
// one. Fields set on p override the computed defaults, including ID and Order.
// A source picture on p is never stored on the record.
func (r *Registry) Create(p model.Patch) (model.Workspace, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.initLocked()

	id := r.ids.TimeID()
	if p.ID != nil && *p.ID != "" {
		id = *p.ID
	}

	if _, exists := r.workspaces[id]; exists {
		return model.Workspace{}, fmt.Errorf("%w: %s", ErrWorkspaceExists, id)
	}

	w := model.Workspace{
		ID:    id,
		Order: r.workspaces.MaxOrder() + 1,
	}

	p.Picture = nil
	w = p.Apply(w)

	return w, r.storeLocked(w)
}

// SetActive activates id and deactivates the previous active workspace.
// Activating the current active workspace changes nothing.
func (r *Registry) SetActive(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.initLocked()

	target, ok := r.workspaces[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrWorkspaceNotFound, id)
	}

	prev, hasPrev := r.activeLocked()
	if hasPrev && prev.ID == id {
		return nil
	}

	if hasPrev {
		prev.Active = false
		if err := r.storeLocked(prev); err != nil {
			return err
		}
	}

	target.Active = true
	target.Hibernated = false

	return r.storeLocked(target)
}

// Set merges p onto the workspace. An unknown id creates a record holding
// only the patched fields.
func (r *Registry) Set(id string, p model.Patch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.initLocked()

	return r.patchLocked(id, p)
}

// SetAll replaces the whole mapping.
func (r *Registry) SetAll(ws model.Workspaces) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.initLocked()

	next := maps.Clone(ws)
	if next == nil {
		next = make(model.Workspaces)
	}

	r.workspaces = next
	r.broadcaster.Send(ChannelSetWorkspaces, maps.Clone(next))

	return r.write(mappingKey(SchemaVersion), next)
}

// Remove deletes the workspace right away, then removes its partition and
// pictures from disk in the background. Disk failures are only logged.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()

	r.initLocked()

	w, ok := r.workspaces[id]
	if !ok {
		r.mu.Unlock()

		return fmt.Errorf("%w: %s", ErrWorkspaceNotFound, id)
	}

	delete(r.workspaces, id)
	r.broadcaster.Send(ChannelSetWorkspace, id, nil)
	err := r.store.Unset(recordKey(id))
	r.mu.Unlock()

	r.pipelines.Delete(id)

	if err != nil {
		r.logger.Error("failed to unset workspace", "id", id, "error", err)
	}

	r.cleanup.Add(1)

	go func() {
		defer r.cleanup.Done()

		r.removeFiles(w)
	}()

	return err
}

func (r *Registry) patchLocked(id string, p model.Patch) error {
	cur, ok := r.workspaces[id]
	if !ok {
		cur = model.Workspace{ID: id}
	}

	p.Picture = nil

	return r.storeLocked(p.Apply(cur))
}

// storeLocked puts w in memory, tells the windows and persists it, in that order.
func (r *Registry) storeLocked(w model.Workspace) error {
	r.workspaces[w.ID] = w
	r.broadcaster.Send(ChannelSetWorkspace, w.ID, w)

	return r.write(recordKey(w.ID), w)
}
