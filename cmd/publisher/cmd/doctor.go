package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"forge-build-publisher/internal/envutil"
	"forge-build-publisher/internal/pkg/chromedevtools"
)

type devtoolsVersion struct {
	Browser string `json:"Browser"`
	WSURL   string `json:"webSocketDebuggerUrl"`
}

func newDoctorCmd() *cobra.Command {
	var (
		host    string
		port    string
		baseURL string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the Chrome DevTools endpoint publish would attach to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			url := chromedevtools.VersionURLFromBase(baseURL)
			if url == "" {
				var effective string
				url, effective = chromedevtools.VersionURLResolved(cmd.Context(), host, port)
				if effective != host && host != "" {
					fmt.Fprintf(out, "Resolved %s to %s\n", host, effective)
				}
			}
			fmt.Fprintln(out, "Checking:", url)

			body, err := chromedevtools.CheckReachable(cmd.Context(), url, timeout)
			if err != nil {
				return fmt.Errorf("Chrome DevTools not reachable (is Chrome running with --remote-debugging-port=%s?): %w", port, err)
			}

			var v devtoolsVersion
			if json.Unmarshal(body, &v) == nil && v.Browser != "" {
				fmt.Fprintln(out, "Browser:", v.Browser)
			}
			fmt.Fprintln(out, "OK: Chrome DevTools reachable.")
			return nil
		},
	}

	cmd.Flags().StringVar(&host, "host", envutil.String(os.Getenv, "CHROME_DEBUG_HOST", ""), "DevTools host (default 127.0.0.1, or the Docker host inside a container)")
	cmd.Flags().StringVar(&port, "port", envutil.String(os.Getenv, "CHROME_DEBUG_PORT", chromedevtools.DefaultPort), "Chrome DevTools remote debugging port")
	cmd.Flags().StringVar(&baseURL, "url", envutil.String(os.Getenv, "CHROME_DEBUG_URL", ""), "DevTools base URL; takes precedence over --host/--port")
	cmd.Flags().DurationVar(&timeout, "timeout", envutil.Duration(os.Getenv, "CHROME_DOCTOR_TIMEOUT", 3*time.Second), "request timeout")
	return cmd
}
