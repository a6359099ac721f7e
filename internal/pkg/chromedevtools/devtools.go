package chromedevtools

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

const DefaultHost = "127.0.0.1"
const DefaultPort = "9222"

const dockerHostAlias = "host.docker.internal"

var (
	newHTTPClient = func(timeout time.Duration) *http.Client {
		return &http.Client{Timeout: timeout}
	}
	inDockerFunc  = inDocker
	lookupIPAddrs = net.DefaultResolver.LookupIPAddr
)

func VersionURL(host, port string) string {
	host = strings.TrimSpace(host)
	if host == "" {
		host = DefaultHost
	}
	port = strings.TrimSpace(port)
	if port == "" {
		port = DefaultPort
	}
	return fmt.Sprintf("http://%s:%s/json/version", host, port)
}

// VersionURLResolved is VersionURL with Docker awareness: inside a container
// an empty host means the Docker host, and host names are resolved to IPv4
// because Chrome rejects DevTools requests whose Host header is not an IP or
// localhost.
func VersionURLResolved(ctx context.Context, host, port string) (versionURL string, effectiveHost string) {
	host = strings.TrimSpace(host)
	docker := inDockerFunc()
	if host == "" {
		host = DefaultHost
		if docker {
			host = dockerHostAlias
		}
	}

	effectiveHost = host
	if docker && net.ParseIP(host) == nil {
		if addrs, err := lookupIPAddrs(ctx, host); err == nil {
			for _, a := range addrs {
				if v4 := a.IP.To4(); v4 != nil {
					effectiveHost = v4.String()
					break
				}
			}
		}
	}
	return VersionURL(effectiveHost, port), effectiveHost
}

// VersionURLFromBase turns a DevTools base URL (http://host:port) into its
// /json/version URL. WebSocket URLs return "" since they need no lookup.
func VersionURLFromBase(base string) string {
	u, err := url.Parse(strings.TrimSpace(base))
	if err != nil || u.Host == "" {
		return ""
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return fmt.Sprintf("%s://%s/json/version", u.Scheme, u.Host)
	default:
		return ""
	}
}

func CheckReachable(ctx context.Context, url string, timeout time.Duration) ([]byte, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("missing url")
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := newHTTPClient(timeout).Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("unexpected status %s from %s", resp.Status, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024*32))
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, fmt.Errorf("empty response from %s", url)
	}

	return body, nil
}

func inDocker() bool {
	_, err := os.Stat("/.dockerenv")
	return err == nil
}
