package prefabs

import (
	"embed"
	"os"
	"path/filepath"
	"strings"
	"time"
)

//go:embed *.yaml
var PrefabsFS embed.FS

// DefaultRobot is the embedded seven-segment arm.
const DefaultRobot = "robot.yaml"

// Load returns the named spec, preferring a copy on disk under prefabs/ over
// the embedded one. Absolute paths and paths outside prefabs/ are read from
// disk only.
func Load(name string) ([]byte, error) {
	if external(name) {
		return os.ReadFile(name)
	}
	clean := cleanPrefabPath(name)
	if data, err := os.ReadFile(diskPrefabPath(clean)); err == nil {
		return data, nil
	}
	return PrefabsFS.ReadFile(clean)
}

func ModTime(name string) (time.Time, bool) {
	path := name
	if !external(name) {
		path = diskPrefabPath(cleanPrefabPath(name))
	}
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

func external(name string) bool {
	if filepath.IsAbs(name) {
		return true
	}
	s := filepath.ToSlash(name)
	return strings.Contains(s, "/") && !strings.HasPrefix(s, "prefabs/")
}

func cleanPrefabPath(path string) string {
	if path == "" {
		return ""
	}
	s := filepath.ToSlash(path)
	if after, ok := strings.CutPrefix(s, "prefabs/"); ok {
		return after
	}
	return s
}

func diskPrefabPath(clean string) string {
	return filepath.Join("prefabs", filepath.FromSlash(clean))
}
