// Package version checks the published releases for a newer docportal.
package version

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	ReleasesURL  = "https://api.github.com/repos/studiowebux/docportal/releases/latest"
	checkTimeout = 5 * time.Second
)

type Release struct {
	TagName string `json:"tag_name"`
	Name    string `json:"name"`
	HTMLURL string `json:"html_url"`
}

// Update is the outcome of a release check
type Update struct {
	Available bool
	Latest    string
	URL       string
}

// CheckForUpdate asks releasesURL for the latest release and compares it
// with currentVersion. An empty releasesURL uses ReleasesURL.
func CheckForUpdate(ctx context.Context, releasesURL, currentVersion string) (Update, error) {
	if releasesURL == "" {
		releasesURL = ReleasesURL
	}

	var release Release
	resp, err := resty.New().SetTimeout(checkTimeout).R().
		SetContext(ctx).
		SetHeader("User-Agent", "docportal/"+currentVersion).
		SetHeader("Accept", "application/json").
		SetResult(&release).
		Get(releasesURL)
	if err != nil {
		return Update{}, fmt.Errorf("failed to fetch latest release: %w", err)
	}
	if resp.IsError() {
		return Update{}, fmt.Errorf("unexpected status code: %d", resp.StatusCode())
	}

	latest := strings.TrimPrefix(release.TagName, "v")
	current := strings.TrimPrefix(currentVersion, "v")

	return Update{
		Available: latest != "" && isNewerVersion(latest, current),
		Latest:    latest,
		URL:       release.HTMLURL,
	}, nil
}

// isNewerVersion reports whether latest > current.
// Pre-release and build suffixes ("0.2.0-dev", "0.2.0+abc") are ignored.
func isNewerVersion(latest, current string) bool {
	latestParts := parseVersion(latest)
	currentParts := parseVersion(current)

	n := max(len(latestParts), len(currentParts))
	for len(latestParts) < n {
		latestParts = append(latestParts, 0)
	}
	for len(currentParts) < n {
		currentParts = append(currentParts, 0)
	}

	for i := 0; i < n; i++ {
		if latestParts[i] != currentParts[i] {
			return latestParts[i] > currentParts[i]
		}
	}
	return false
}

func parseVersion(version string) []int {
	if idx := strings.IndexAny(version, "-+"); idx != -1 {
		version = version[:idx]
	}

	parts := strings.Split(version, ".")
	result := make([]int, 0, len(parts))
	for _, part := range parts {
		num, err := strconv.Atoi(part)
		if err != nil {
			continue
		}
		result = append(result, num)
	}
	return result
}
