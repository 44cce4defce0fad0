package application

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"gopkg.in/ini.v1"
)

const (
	// AppName is the application name used for directories and identification
	AppName = "juli"

	// ManifestFile is the product identity manifest looked up in the data directory
	ManifestFile = "app.ini"

	// LegacySingleboxID identifies builds that shipped as Singlebox before the merge with Juli
	LegacySingleboxID = "singlebox"
)

// Identity describes which product variant is running.
type Identity struct {
	// ID is the product identifier (e.g., "juli", "singlebox")
	ID string

	// Name is the display name of the product
	Name string

	// URL is set for single-URL variants that wrap exactly one site
	URL string
}

// SingleURL reports whether the product is a single-URL variant.
func (i Identity) SingleURL() bool {
	return i.URL != ""
}

// Legacy reports whether the product used to store workspaces under the old Singlebox schema.
func (i Identity) Legacy() bool {
	return i.ID == LegacySingleboxID
}

// DefaultIdentity returns the identity used when no manifest exists.
func DefaultIdentity() Identity {
	return Identity{ID: AppName, Name: "Juli"}
}

// LoadIdentity reads the [app] section of an INI manifest.
// A missing file yields DefaultIdentity.
func LoadIdentity(path string) (Identity, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return DefaultIdentity(), nil
	}

	cfg, err := ini.Load(path)
	if err != nil {
		return Identity{}, fmt.Errorf("failed to load manifest %s: %w", path, err)
	}

	section := cfg.Section("app")
	id := DefaultIdentity()

	return Identity{
		ID:   section.Key("id").MustString(id.ID),
		Name: section.Key("name").MustString(id.Name),
		URL:  section.Key("url").String(),
	}, nil
}

var (
	once   sync.Once
	appDir string
	errDir error
)

// GetApplicationDirectory returns the juli data directory path.
// Linux: ~/.config/juli (via os.UserConfigDir)
// Windows: C:\Users\{username}\AppData\Local\juli (via os.UserCacheDir)
func GetApplicationDirectory() (string, error) {
	once.Do(lazyLoad)

	if errDir != nil {
		return "", errDir
	}

	return appDir, nil
}

func lazyLoad() {
	var (
		baseDir string
		err     error
	)

	switch runtime.GOOS {
	case "windows":
		baseDir, err = os.UserCacheDir()
	default:
		baseDir, err = os.UserConfigDir()
	}

	if err != nil {
		errDir = fmt.Errorf("failed to get config directory: %w", err)

		return
	}

	appDir = filepath.Join(baseDir, AppName)
}
