// Package appupdate checks GitHub for a newer statdeck release and works
// out which install channel the running binary came from, so the version
// command can print a copy-pasteable upgrade command.
package appupdate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/mod/semver"
)

const (
	releasesURL      = "https://api.github.com/repos/statdeck/statdeck/releases/latest"
	installScriptURL = "https://github.com/statdeck/statdeck/releases/latest/download/install.sh"
	checkTimeout     = 1500 * time.Millisecond
)

// Channel is how the running binary was installed. Statdeck ships through
// a homebrew tap, go install, and a curl|bash install script; anything
// unrecognized upgrades via the script.
type Channel string

const (
	ChannelUnknown   Channel = "unknown"
	ChannelHomebrew  Channel = "homebrew"
	ChannelGoInstall Channel = "go-install"
	ChannelScript    Channel = "script"
)

// UpgradeCommand returns the shell command that upgrades an install from
// this channel.
func (ch Channel) UpgradeCommand() string {
	switch ch {
	case ChannelHomebrew:
		return "brew upgrade statdeck/tap/statdeck"
	case ChannelGoInstall:
		return "go install github.com/statdeck/statdeck/cmd/statdeck@latest"
	default:
		return "curl -fsSL " + installScriptURL + " | bash"
	}
}

type CheckOptions struct {
	CurrentVersion   string
	ExecutablePath   string
	LatestReleaseURL string
	Timeout          time.Duration
	HTTPClient       *http.Client
}

type Result struct {
	UpdateAvailable bool
	CurrentVersion  string
	LatestVersion   string
	Channel         Channel
}

// Check resolves the install channel and, for stable release builds,
// compares the running version against the latest GitHub release. Dev and
// pre-release builds skip the network round trip entirely.
func Check(ctx context.Context, opts CheckOptions) (Result, error) {
	current := stableVersion(opts.CurrentVersion)
	result := Result{
		CurrentVersion: current,
		Channel:        detectChannel(executablePath(opts.ExecutablePath)),
	}
	if current == "" {
		return result, nil
	}

	latest, err := latestRelease(ctx, opts, current)
	if err != nil {
		return result, err
	}
	result.LatestVersion = latest
	result.UpdateAvailable = semver.Compare(latest, current) > 0
	return result, nil
}

func latestRelease(ctx context.Context, opts CheckOptions, current string) (string, error) {
	latestURL := opts.LatestReleaseURL
	if latestURL == "" {
		latestURL = releasesURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = checkTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, latestURL, nil)
	if err != nil {
		return "", fmt.Errorf("appupdate: building release request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "statdeck/"+current)
	if token := strings.TrimSpace(os.Getenv("STATDECK_GITHUB_TOKEN")); token != "" && isGitHubAPI(latestURL) {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("appupdate: fetching latest release: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("appupdate: fetching latest release: HTTP %d", resp.StatusCode)
	}

	var release struct {
		TagName string `json:"tag_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return "", fmt.Errorf("appupdate: decoding release: %w", err)
	}

	latest := stableVersion(release.TagName)
	if latest == "" {
		return "", fmt.Errorf("appupdate: release tag %q is not a stable version", release.TagName)
	}
	return latest, nil
}

// isGitHubAPI gates the auth token: it must never go to a non-GitHub host
// or over plain http.
func isGitHubAPI(rawURL string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Scheme, "https") && strings.EqualFold(u.Hostname(), "api.github.com")
}

// executablePath resolves the binary path used for channel detection,
// following symlinks so a linked binary classifies as its real install.
func executablePath(explicit string) string {
	if strings.TrimSpace(explicit) != "" {
		return canonicalPath(explicit)
	}
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil && resolved != "" {
		exe = resolved
	}
	return canonicalPath(exe)
}

// canonicalPath lowercases and forward-slashes a path so windows installs
// match the same patterns.
func canonicalPath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	return strings.ToLower(filepath.ToSlash(filepath.Clean(path)))
}

func detectChannel(path string) Channel {
	switch {
	case path == "":
		return ChannelUnknown
	case strings.Contains(path, "/cellar/statdeck/") || path == "/opt/homebrew/bin/statdeck":
		return ChannelHomebrew
	case inGoBin(path):
		return ChannelGoInstall
	case inScriptDir(path):
		return ChannelScript
	default:
		return ChannelUnknown
	}
}

// inGoBin reports whether the binary lives in any of the directories
// `go install` writes to: GOBIN, each GOPATH's bin, or the default
// ~/go/bin.
func inGoBin(path string) bool {
	if strings.HasSuffix(path, "/go/bin/statdeck") || strings.HasSuffix(path, "/go/bin/statdeck.exe") {
		return true
	}

	dirs := []string{os.Getenv("GOBIN")}
	for _, gp := range filepath.SplitList(os.Getenv("GOPATH")) {
		if gp != "" {
			dirs = append(dirs, filepath.Join(gp, "bin"))
		}
	}
	for _, dir := range dirs {
		if binaryIn(path, dir) {
			return true
		}
	}
	return false
}

// inScriptDir reports whether the binary sits where the install script
// places it.
func inScriptDir(path string) bool {
	if path == "/usr/local/bin/statdeck" || path == "/usr/bin/statdeck" {
		return true
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return false
	}
	return binaryIn(path, filepath.Join(home, ".local", "bin")) || binaryIn(path, filepath.Join(home, "bin"))
}

func binaryIn(path, dir string) bool {
	dir = canonicalPath(dir)
	if dir == "" {
		return false
	}
	return path == dir+"/statdeck" || path == dir+"/statdeck.exe"
}

// stableVersion canonicalizes a version or release tag and rejects
// anything that is not a plain stable semver, which keeps dev and
// pre-release builds from nagging about updates.
func stableVersion(tag string) string {
	v := strings.TrimSpace(tag)
	if v == "" {
		return ""
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) || semver.Prerelease(v) != "" || semver.Build(v) != "" {
		return ""
	}
	return semver.Canonical(v)
}
