package browser

import (
	"fmt"
	"os/exec"
	"strings"
)

// ChromeBinaries are the executable names tried, in order, on PATH.
var ChromeBinaries = []string{"google-chrome", "google-chrome-stable", "chromium", "chromium-browser"}

// FindChrome returns the first Chrome or Chromium binary found on PATH.
func FindChrome() (string, error) {
	return findChromeWith(exec.LookPath)
}

func findChromeWith(lookPath func(string) (string, error)) (string, error) {
	for _, name := range ChromeBinaries {
		if p, err := lookPath(name); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("could not find Chrome/Chromium in PATH (tried: %s)", strings.Join(ChromeBinaries, ", "))
}
