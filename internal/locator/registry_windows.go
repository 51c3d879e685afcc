//go:build windows

package locator

import (
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/windows/registry"
)

func (r Registry) lookup() string {
	root := registry.CURRENT_USER
	if r.Root == LocalMachine {
		root = registry.LOCAL_MACHINE
	}

	key, err := registry.OpenKey(root, r.Path, registry.QUERY_VALUE)
	if err != nil {
		return ""
	}
	defer func() { _ = key.Close() }()

	value, _, err := key.GetStringValue(r.Value)
	if err != nil {
		return ""
	}
	value = strings.Trim(strings.TrimSpace(value), `"`)
	if value == "" {
		return ""
	}

	// Some clients store the path of the executable rather than its folder.
	if info, err := os.Stat(value); err == nil && !info.IsDir() {
		value = filepath.Dir(value)
	}
	return filepath.Clean(value)
}
