package forge

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ResolveBuildFile joins a relative name onto baseDir (the working directory
// when empty) and checks that a regular file exists there.
func ResolveBuildFile(baseDir, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", newError(KindBuildFileNotFound, "no build file given", nil)
	}

	path := name
	if !filepath.IsAbs(path) {
		if baseDir == "" {
			wd, err := os.Getwd()
			if err != nil {
				return "", fmt.Errorf("resolve working directory: %w", err)
			}
			baseDir = wd
		}
		path = filepath.Join(baseDir, name)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", newError(KindBuildFileNotFound, fmt.Sprintf("file at %s is not found", abs), err)
	}
	if !info.Mode().IsRegular() {
		return "", newError(KindBuildFileNotFound, fmt.Sprintf("file at %s is not a regular file", abs), nil)
	}
	return abs, nil
}
