package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"
)

// githubAPIBase is a variable so tests can point it at a fake server.
var githubAPIBase = "https://api.github.com"

// ReleaseInfo is the latest published version of an upstream repo.
type ReleaseInfo struct {
	Version  string
	Released string
	TagName  string
}

// Update describes one registry entry that changed during a refresh.
type Update struct {
	ID   string
	From string
	To   string
}

type ghRelease struct {
	TagName     string    `json:"tag_name"`
	Draft       bool      `json:"draft"`
	Prerelease  bool      `json:"prerelease"`
	PublishedAt time.Time `json:"published_at"`
}

type ghTag struct {
	Name string `json:"name"`
}

// Refresh checks every entry's upstream repository for new releases
// and amends the document in place: a new version record is prepended
// (inheriting matrix_min from the previous head) and latest_version
// is advanced. Existing records are never removed. With dryRun set
// the document is left untouched and only the would-be updates are
// returned. Per-entry fetch failures are collected, not fatal.
func Refresh(ctx context.Context, doc *Document, token string, dryRun bool) ([]Update, []error) {
	var updates []Update
	var errs []error

	for i := range doc.Plugins {
		e := &doc.Plugins[i]

		info, err := LatestFromGitHub(ctx, e.Repo, token)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", e.ID, err))
			continue
		}
		if info == nil || info.Version == e.LatestVersion {
			continue
		}

		updates = append(updates, Update{ID: e.ID, From: e.LatestVersion, To: info.Version})
		if dryRun {
			continue
		}

		if e.FindVersion(info.Version) == nil {
			rec := VersionRecord{
				Version:  info.Version,
				Released: info.Released,
			}
			if len(e.Versions) > 0 {
				rec.MatrixMin = e.Versions[0].MatrixMin
			}
			e.Versions = append([]VersionRecord{rec}, e.Versions...)
		}

		e.LatestVersion = info.Version
		e.LastUpdated = info.Released
	}

	if len(updates) > 0 && !dryRun {
		doc.LastUpdated = time.Now().UTC().Format(time.RFC3339)
	}

	return updates, errs
}

// LatestFromGitHub queries the releases API for the newest
// non-draft, non-prerelease release, falling back to the tags API
// sorted by parsed version when the repo publishes no releases.
func LatestFromGitHub(ctx context.Context, repoURL, token string) (*ReleaseInfo, error) {
	owner, repo, err := splitRepoURL(repoURL)
	if err != nil {
		return nil, err
	}

	var releases []ghRelease
	if err := githubGet(ctx, fmt.Sprintf("%s/repos/%s/%s/releases", githubAPIBase, owner, repo), token, &releases); err != nil {
		return nil, err
	}

	// The API returns newest first
	for _, r := range releases {
		if r.Draft || r.Prerelease {
			continue
		}
		return &ReleaseInfo{
			Version:  strings.TrimPrefix(r.TagName, "v"),
			Released: r.PublishedAt.Format("2006-01-02"),
			TagName:  r.TagName,
		}, nil
	}

	var tags []ghTag
	if err := githubGet(ctx, fmt.Sprintf("%s/repos/%s/%s/tags", githubAPIBase, owner, repo), token, &tags); err != nil {
		return nil, err
	}
	if len(tags) == 0 {
		return nil, nil
	}

	sort.SliceStable(tags, func(i, j int) bool {
		return versionLess(parseVersion(tags[j].Name), parseVersion(tags[i].Name))
	})

	return &ReleaseInfo{
		Version:  strings.TrimPrefix(tags[0].Name, "v"),
		Released: time.Now().Format("2006-01-02"), // tags carry no date
		TagName:  tags[0].Name,
	}, nil
}

func githubGet(ctx context.Context, url, token string, out any) error {
	client := &http.Client{Timeout: 10 * time.Second}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if token != "" {
		req.Header.Set("Authorization", "token "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("github API returned %s for %s", resp.Status, url)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// splitRepoURL extracts owner and repo from a GitHub repository URL,
// e.g. "https://github.com/ledmatrix/weather" -> ("ledmatrix", "weather").
func splitRepoURL(repoURL string) (string, string, error) {
	parts := strings.Split(strings.TrimSuffix(strings.TrimRight(repoURL, "/"), ".git"), "/")
	if len(parts) < 2 {
		return "", "", fmt.Errorf("cannot parse repository URL: %s", repoURL)
	}
	return parts[len(parts)-2], parts[len(parts)-1], nil
}

// parseVersion turns "v1.2.3" into a comparable integer tuple.
// Non-numeric parts compare as zero.
func parseVersion(s string) []int {
	s = strings.TrimPrefix(s, "v")
	parts := strings.Split(s, ".")
	nums := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			n = 0
		}
		nums[i] = n
	}
	return nums
}

func versionLess(a, b []int) bool {
	for i := 0; i < len(a) || i < len(b); i++ {
		var av, bv int
		if i < len(a) {
			av = a[i]
		}
		if i < len(b) {
			bv = b[i]
		}
		if av != bv {
			return av < bv
		}
	}
	return false
}
