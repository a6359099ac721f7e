package browser

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"forge-build-publisher/config"
	"forge-build-publisher/internal/forge"
)

func TestParseWindowSize(t *testing.T) {
	tests := []struct {
		raw     string
		w, h    int
		wantErr bool
	}{
		{"", 1280, 1024, false},
		{"1280,1024", 1280, 1024, false},
		{"800x600", 800, 600, false},
		{" 1920 , 1080 ", 1920, 1080, false},
		{"1280", 0, 0, true},
		{"a,b", 0, 0, true},
		{"0,10", 0, 0, true},
	}
	for _, tt := range tests {
		w, h, err := ParseWindowSize(tt.raw)
		if tt.wantErr {
			require.Error(t, err, tt.raw)
			continue
		}
		require.NoError(t, err, tt.raw)
		require.Equal(t, tt.w, w, tt.raw)
		require.Equal(t, tt.h, h, tt.raw)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	o, err := OptionsFromConfig(config.ChromeConfig{
		Headless:   true,
		WindowSize: "1280,1024",
		DebugPort:  "9222",
		DebugURL:   "http://127.0.0.1:9222",
	})
	require.NoError(t, err)
	require.True(t, o.Headless)
	require.Equal(t, 1280, o.WindowWidth)
	require.Equal(t, 1024, o.WindowHeight)
	require.Equal(t, "http://127.0.0.1:9222", o.RemoteURL)
	require.Equal(t, 30*time.Second, o.ActionTimeout)

	_, err = OptionsFromConfig(config.ChromeConfig{WindowSize: "big"})
	require.Error(t, err)
}

func TestExecAllocatorOptions_AddsOptionalFlags(t *testing.T) {
	base := execAllocatorOptions(Options{Headless: true, WindowWidth: 1, WindowHeight: 1})
	full := execAllocatorOptions(Options{Headless: true, WindowWidth: 1, WindowHeight: 1, DebugPort: "9222", ProfileDir: "/tmp/p"})
	require.Len(t, full, len(base)+2)
}

func TestCollectJS(t *testing.T) {
	css := collectJS(forge.CSS(`input[name="vb_login_username"]`))
	require.Equal(t, `Array.from(document.querySelectorAll("input[name=\"vb_login_username\"]"))`, css)

	xp := collectJS(forge.XPath("//a[@data-item-id='1']"))
	require.True(t, strings.HasPrefix(xp, `(function(){const r=document.evaluate("//a[@data-item-id='1']"`), xp)
	require.Contains(t, xp, "ORDERED_NODE_SNAPSHOT_TYPE")
}

func TestSelectOptionJS_QuotesText(t *testing.T) {
	js := selectOptionJS(forge.CSS("select"), 2, `Li"ve`)
	require.Contains(t, js, `[2];`)
	require.Contains(t, js, `o.text.trim()==="Li\"ve"`)
}
