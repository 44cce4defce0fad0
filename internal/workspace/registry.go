package workspace

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"maps"
	"path/filepath"
	"sync"

	"github.com/inovacc/juli/internal/application"
	"github.com/inovacc/juli/internal/model"
	"github.com/inovacc/juli/internal/picture"
	"github.com/inovacc/juli/internal/store"
	"github.com/spf13/afero"
)

const (
	// SchemaVersion is the settings key version the mapping is stored under
	SchemaVersion = "43"

	// legacySingleboxVersion is where Singlebox builds kept their workspaces
	legacySingleboxVersion = "14"

	// corruptedKey is a bogus entry left behind by an old release
	corruptedKey = "add"

	ChannelSetWorkspace  = "set-workspace"
	ChannelSetWorkspaces = "set-workspaces"

	picturesDir        = "pictures"
	accountPicturesDir = "account-pictures"
	partitionsDir      = "Partitions"
)

// Broadcaster notifies every open window. Send must not block.
type Broadcaster interface {
	Send(channel string, args ...any)
}

// Pictures downloads and resizes pictures.
type Pictures interface {
	TempDir() (string, error)
	Download(ctx context.Context, rawURL, dest string) error
	Resize(ctx context.Context, src, dest string, width, height int) error
}

type nopBroadcaster struct{}

func (nopBroadcaster) Send(string, ...any) {}

// Options holds the collaborators of a Registry.
type Options struct {
	// Store persists the mapping; required
	Store store.Store

	// DataDir holds pictures, account pictures and partitions; required
	DataDir string

	Identity    application.Identity
	Broadcaster Broadcaster
	Pictures    Pictures
	IDs         IDGenerator
	Fs          afero.Fs
	Logger      *slog.Logger
}

// Registry owns the mapping of workspace id to record. The mapping is
// loaded from the store on first use and every mutation is written back
// and broadcast to windows.
type Registry struct {
	store       store.Store
	dataDir     string
	identity    application.Identity
	broadcaster Broadcaster
	pictures    Pictures
	ids         IDGenerator
	fs          afero.Fs
	logger      *slog.Logger

	mu         sync.Mutex
	workspaces model.Workspaces

	// serializes picture and account pipelines per workspace
	pipelines sync.Map

	cleanup sync.WaitGroup
}

// New creates a Registry. Missing optional collaborators get defaults:
// no-op broadcaster, UUID ids, the OS filesystem and a picture.Service on it.
func New(opts Options) (*Registry, error) {
	if opts.Store == nil {
		return nil, errors.New("workspace registry requires a store")
	}

	if opts.DataDir == "" {
		return nil, errors.New("workspace registry requires a data directory")
	}

	r := &Registry{
		store:       opts.Store,
		dataDir:     opts.DataDir,
		identity:    opts.Identity,
		broadcaster: opts.Broadcaster,
		pictures:    opts.Pictures,
		ids:         opts.IDs,
		fs:          opts.Fs,
		logger:      opts.Logger,
	}

	if r.logger == nil {
		r.logger = slog.Default()
	}

	if r.broadcaster == nil {
		r.broadcaster = nopBroadcaster{}
	}

	if r.ids == nil {
		r.ids = NewUUIDGenerator()
	}

	if r.fs == nil {
		r.fs = afero.NewOsFs()
	}

	if r.pictures == nil {
		r.pictures = picture.NewService(r.fs, picture.WithLogger(r.logger))
	}

	return r, nil
}

func mappingKey(version string) string {
	return store.Key("workspaces", version)
}

// recordKey addresses one record. Ids are opaque and may contain dots.
func recordKey(id string) string {
	return store.Key("workspaces", SchemaVersion, id)
}

// Init loads the mapping once. Later calls are no-ops.
func (r *Registry) Init() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.initLocked()
}

func (r *Registry) initLocked() {
	if r.workspaces != nil {
		return
	}

	loaded, _ := r.load(SchemaVersion)
	delete(loaded, corruptedKey)

	if r.identity.Legacy() {
		if legacy, ok := r.load(legacySingleboxVersion); ok {
			maps.Copy(loaded, legacy)
			_ = r.write(mappingKey(SchemaVersion), loaded)

			if err := r.store.Unset(mappingKey(legacySingleboxVersion)); err != nil {
				r.logger.Error("failed to remove legacy workspaces", "version", legacySingleboxVersion, "error", err)
			}

			r.logger.Info("migrated legacy workspaces", "from", legacySingleboxVersion, "to", SchemaVersion, "count", len(legacy))
		}
	}

	if r.identity.SingleURL() && len(loaded) == 0 {
		id := r.ids.TimeID()
		loaded[id] = model.Workspace{
			ID:     id,
			Name:   "",
			Order:  0,
			Active: true,
		}

		_ = r.write(mappingKey(SchemaVersion), loaded)
	}

	r.workspaces = loaded
}

// load reads a stored mapping. Entries that fail to decode are skipped so a
// damaged record never takes the rest down with it.
func (r *Registry) load(version string) (model.Workspaces, bool) {
	out := make(model.Workspaces)

	var raw map[string]json.RawMessage

	ok, err := store.GetInto(r.store, mappingKey(version), &raw)
	if err != nil {
		r.logger.Error("failed to read workspaces", "version", version, "error", err)

		return out, false
	}

	if !ok || raw == nil {
		return out, false
	}

	for id, data := range raw {
		if id == corruptedKey {
			continue
		}

		var w model.Workspace
		if err := json.Unmarshal(data, &w); err != nil {
			r.logger.Warn("skipping malformed workspace", "id", id, "error", err)
			continue
		}

		if w.ID == "" {
			w.ID = id
		}

		out[id] = w
	}

	return out, true
}

// write persists value at key and logs failures. Callers get the error too.
func (r *Registry) write(key string, value any) error {
	if err := r.store.Set(key, value); err != nil {
		r.logger.Error("failed to persist workspaces", "key", key, "error", err)

		return err
	}

	return nil
}

// Count returns the number of workspaces.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.initLocked()

	return len(r.workspaces)
}

// Workspaces returns the live mapping, not a copy. Callers must treat it as
// read-only and must not keep it across mutations made from other goroutines.
func (r *Registry) Workspaces() model.Workspaces {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.initLocked()

	return r.workspaces
}

// List returns all workspaces ascending by order.
func (r *Registry) List() []model.Workspace {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.initLocked()

	return r.workspaces.Sorted()
}

// Get returns the workspace with the given id.
func (r *Registry) Get(id string) (model.Workspace, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.initLocked()

	w, ok := r.workspaces[id]

	return w, ok
}

// Preferences returns the preferences of a workspace, never nil.
func (r *Registry) Preferences(id string) map[string]any {
	w, ok := r.Get(id)
	if !ok || w.Preferences == nil {
		return map[string]any{}
	}

	return maps.Clone(w.Preferences)
}

// Preference returns a single preference of a workspace.
func (r *Registry) Preference(id, name string) (any, bool) {
	v, ok := r.Preferences(id)[name]

	return v, ok
}

// Active returns the active workspace. It does not trigger loading: before
// the registry is initialized there is no active workspace.
func (r *Registry) Active() (model.Workspace, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.activeLocked()
}

func (r *Registry) activeLocked() (model.Workspace, bool) {
	if r.workspaces == nil {
		return model.Workspace{}, false
	}

	// sorted so that a registry with several active records answers consistently
	for _, w := range r.workspaces.Sorted() {
		if w.Active {
			return w, true
		}
	}

	return model.Workspace{}, false
}

// Previous returns the workspace before id in display order, wrapping from
// the first to the last. An unknown id is treated as the first workspace.
func (r *Registry) Previous(id string) (model.Workspace, bool) {
	list := r.List()
	if len(list) == 0 {
		return model.Workspace{}, false
	}

	i := indexOf(list, id)
	if i == 0 {
		return list[len(list)-1], true
	}

	return list[i-1], true
}

// Next returns the workspace after id in display order, wrapping from the
// last to the first. An unknown id is treated as the first workspace.
func (r *Registry) Next(id string) (model.Workspace, bool) {
	list := r.List()
	if len(list) == 0 {
		return model.Workspace{}, false
	}

	i := indexOf(list, id)
	if i == len(list)-1 {
		return list[0], true
	}

	return list[i+1], true
}

func indexOf(list []model.Workspace, id string) int {
	for i, w := range list {
		if w.ID == id {
			return i
		}
	}

	return 0
}

// Ping checks that the settings store is reachable.
func (r *Registry) Ping() error {
	return r.store.Ping()
}

// Wait blocks until background disk cleanups started by Remove finish.
func (r *Registry) Wait() {
	r.cleanup.Wait()
}

// lockPipeline serializes slow picture and account work on one workspace so
// the last call also completes last.
func (r *Registry) lockPipeline(id string) func() {
	v, _ := r.pipelines.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()

	return mu.Unlock
}

func (r *Registry) picturePath(dir, pictureID string) string {
	return filepath.Join(r.dataDir, dir, pictureID+".png")
}
