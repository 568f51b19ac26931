package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# Transition Configuration

# SQLite registry file (default: ~/.transition/transition.db)
# database: ~/.transition/transition.db

# Log level: debug, info, warn, error
log_level: info

# What happens to host enablement when an app's content changes:
#   reset    - every host is disabled again and must be re-approved
#   preserve - hosts the app still declares keep their flag
link_policy: reset

# Directory names never included in an app's digests
exclude_dirs:
  - __pycache__
  - .cache

# App types and the directory each one scans for apps
app_types:
  - name: addin
    path: ~/.transition/addin
  - name: docapp
    path: ~/.transition/docapp

# Host applications apps may declare in com_app
hosts:
  - excel
  - word
  - powerpoint
  - outlook
  - access
  - msproject

watch:
  debounce: 1s   # Quiet period before a burst of changes triggers inventory
`
}

// WriteDefaultConfig creates a config file at configPath with default
// settings and comments. Creates the parent directory if it doesn't exist.
// An existing file is left untouched and reported as an error.
func WriteDefaultConfig(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	f, err := os.OpenFile(configPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	if _, err := f.WriteString(DefaultConfigTemplate()); err != nil {
		f.Close()
		return fmt.Errorf("writing config file: %w", err)
	}
	return f.Close()
}
