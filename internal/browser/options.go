package browser

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"forge-build-publisher/config"
)

type Options struct {
	Headless     bool
	WindowWidth  int
	WindowHeight int
	DebugPort    string
	// RemoteURL connects to an already running Chrome instead of launching one.
	RemoteURL     string
	ProfileDir    string
	ActionTimeout time.Duration
}

func OptionsFromConfig(c config.ChromeConfig) (Options, error) {
	w, h, err := ParseWindowSize(c.WindowSize)
	if err != nil {
		return Options{}, err
	}
	return Options{
		Headless:      c.Headless,
		WindowWidth:   w,
		WindowHeight:  h,
		DebugPort:     c.DebugPort,
		RemoteURL:     c.DebugURL,
		ProfileDir:    c.ProfileDir,
		ActionTimeout: 30 * time.Second,
	}, nil
}

// ParseWindowSize accepts "W,H" or "WxH".
func ParseWindowSize(raw string) (int, int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 1280, 1024, nil
	}
	parts := strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == 'x' || r == 'X' })
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid window size %q (want W,H)", raw)
	}
	w, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || w <= 0 {
		return 0, 0, fmt.Errorf("invalid window width in %q", raw)
	}
	h, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || h <= 0 {
		return 0, 0, fmt.Errorf("invalid window height in %q", raw)
	}
	return w, h, nil
}

func execAllocatorOptions(o Options) []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.WindowSize(o.WindowWidth, o.WindowHeight),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("disable-popup-blocking", true),
	)
	if o.Headless {
		opts = append(opts, chromedp.Flag("headless", "new"))
	} else {
		opts = append(opts, chromedp.Flag("headless", false))
	}
	if strings.TrimSpace(o.DebugPort) != "" {
		opts = append(opts, chromedp.Flag("remote-debugging-port", o.DebugPort))
	}
	if strings.TrimSpace(o.ProfileDir) != "" {
		opts = append(opts, chromedp.UserDataDir(o.ProfileDir))
	}
	return opts
}
