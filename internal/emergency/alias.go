package emergency

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var ErrUnknownAlias = errors.New("unknown path alias")

// ResolvePath expands a leading "@alias" segment of path using aliases, and
// a leading "~" to the home directory. Paths without an alias are returned
// cleaned.
func ResolvePath(path string, aliases map[string]string) (string, error) {
	if strings.HasPrefix(path, "@") {
		root, rest, _ := strings.Cut(path, "/")
		base, ok := aliases[root]
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrUnknownAlias, root)
		}
		path = filepath.Join(base, rest)
	}
	return filepath.Clean(expandHome(path)), nil
}

func expandHome(path string) string {
	if len(path) > 0 && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
