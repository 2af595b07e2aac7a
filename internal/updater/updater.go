// Package updater checks GitHub Releases for a newer tray version.
package updater

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/lmstudio-tray/lmstray/internal/buildinfo"
)

// Status is the outcome of an update check.
type Status string

// Update check outcomes.
const (
	StatusDevBuild  Status = "Dev build"
	StatusUpToDate  Status = "Up to date"
	StatusAvailable Status = "Update available"
	StatusUnknown   Status = "Unknown"
)

// DevVersion is the version string of builds without injected version info.
const DevVersion = "dev"

// ErrNoTag is returned when the latest release carries no tag.
var ErrNoTag = errors.New("no tag found")

// ReleaseInfo contains information about a GitHub release.
type ReleaseInfo struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

// Result contains the result of an update check.
type Result struct {
	Status     Status
	Current    string
	Latest     string
	ReleaseURL string
	Err        error
}

// Checker queries a GitHub "latest release" endpoint.
type Checker struct {
	Current string
	URL     string
	Client  *http.Client
}

// NewChecker returns a Checker for the given running version.
func NewChecker(current string) *Checker {
	return &Checker{
		Current: current,
		URL:     buildinfo.ReleasesAPI,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// IsDevBuild reports whether version identifies an unreleased build.
func IsDevBuild(version string) bool {
	return version == "" || version == DevVersion
}

// LatestRelease fetches the latest release.
func (c *Checker) LatestRelease(ctx context.Context) (*ReleaseInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", "lmstray/"+c.Current)

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch releases: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GitHub API returned %d", resp.StatusCode)
	}

	var release ReleaseInfo
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("decode release: %w", err)
	}
	if release.TagName == "" {
		return nil, ErrNoTag
	}
	return &release, nil
}

// Check compares the running version against the latest release. It never
// fails: problems are reported as StatusUnknown with Err set.
func (c *Checker) Check(ctx context.Context) Result {
	res := Result{Current: c.Current}
	if IsDevBuild(c.Current) {
		res.Status = StatusDevBuild
		return res
	}

	release, err := c.LatestRelease(ctx)
	if err != nil {
		res.Status = StatusUnknown
		res.Err = err
		return res
	}
	res.Latest = release.TagName
	res.ReleaseURL = release.HTMLURL

	current, err := ParseSemver(c.Current)
	if err != nil {
		res.Status = StatusUnknown
		res.Err = fmt.Errorf("parse current version: %w", err)
		return res
	}
	latest, err := ParseSemver(release.TagName)
	if err != nil {
		res.Status = StatusUnknown
		res.Err = fmt.Errorf("parse latest version %q: %w", release.TagName, err)
		return res
	}

	if current.LessThan(latest) {
		res.Status = StatusAvailable
	} else {
		res.Status = StatusUpToDate
	}
	return res
}

// Message formats a result for a user-facing notification.
func (r Result) Message() string {
	switch r.Status {
	case StatusAvailable:
		msg := fmt.Sprintf("Version %s is available (current: %s)", r.Latest, r.Current)
		if r.ReleaseURL != "" {
			msg += "\n" + r.ReleaseURL
		}
		return msg
	case StatusUpToDate:
		return fmt.Sprintf("You are running the latest version (%s)", r.Current)
	case StatusDevBuild:
		return "Dev build: update checks are disabled"
	default:
		if r.Err != nil {
			return fmt.Sprintf("Unable to check for updates: %v", r.Err)
		}
		return "Unable to check for updates"
	}
}

// VersionLabel returns "<version> (<status>)", using Unknown before the first check.
func VersionLabel(version string, status Status) string {
	if status == "" {
		status = StatusUnknown
	}
	return fmt.Sprintf("%s (%s)", version, status)
}
