package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"forge-build-publisher/internal/browser"
	"forge-build-publisher/internal/envutil"
)

// chromeArgs are the flags a manual debugging Chrome needs so `publish` can
// attach to it through CHROME_DEBUG_URL.
func chromeArgs(addr, port, profileDir string) []string {
	return []string{
		"--remote-debugging-address=" + addr,
		"--remote-debugging-port=" + port,
		"--user-data-dir=" + profileDir,
		"--no-first-run",
		"--window-size=1280,1024",
	}
}

func defaultProfileDir() string {
	home, err := os.UserHomeDir()
	if err != nil || strings.TrimSpace(home) == "" {
		home = "."
	}
	return filepath.Join(home, ".forge-build-publisher", "chrome-profile")
}

func newChromeCmd() *cobra.Command {
	var (
		addr       string
		port       string
		profileDir string
	)

	cmd := &cobra.Command{
		Use:   "chrome",
		Short: "Start a visible Chrome with DevTools enabled (dedicated profile)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(addr) == "" {
				return errors.New("missing --addr")
			}
			if strings.TrimSpace(port) == "" {
				return errors.New("missing --port")
			}
			if strings.TrimSpace(profileDir) == "" {
				return errors.New("missing --profile-dir")
			}
			if err := os.MkdirAll(profileDir, 0o755); err != nil {
				return err
			}

			var c *exec.Cmd
			switch runtime.GOOS {
			case "darwin":
				// `open` starts it as a normal app instance.
				c = exec.Command("open", append([]string{"-na", "Google Chrome", "--args"}, chromeArgs(addr, port, profileDir)...)...)
			case "linux":
				bin, err := browser.FindChrome()
				if err != nil {
					return err
				}
				c = exec.Command(bin, chromeArgs(addr, port, profileDir)...)
				c.Stdout = io.Discard
				c.Stderr = io.Discard
			default:
				return fmt.Errorf("unsupported OS for auto-launch: %s (start Chrome manually with --remote-debugging-port and --user-data-dir)", runtime.GOOS)
			}
			if err := c.Start(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Chrome launch requested (port=%s, profile=%s)\n", port, profileDir)
			fmt.Fprintf(out, "Attach with: CHROME_DEBUG_URL=http://%s:%s\n", addr, port)
			return nil
		},
	}

	defAddr := envutil.String(os.Getenv, "CHROME_DEBUG_BIND_ADDR", "127.0.0.1")
	defPort := envutil.String(os.Getenv, "CHROME_DEBUG_PORT", "9222")
	defProfile := envutil.String(os.Getenv, "CHROME_PROFILE_DIR", defaultProfileDir())

	cmd.Flags().StringVar(&addr, "addr", defAddr, "Chrome DevTools remote debugging bind address (use 0.0.0.0 for Docker access)")
	cmd.Flags().StringVar(&port, "port", defPort, "Chrome DevTools remote debugging port")
	cmd.Flags().StringVar(&profileDir, "profile-dir", defProfile, "Dedicated Chrome profile directory (keeps the forge login)")
	return cmd
}
