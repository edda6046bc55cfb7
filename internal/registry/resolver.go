package registry

import (
	"fmt"
	"strings"
)

const (
	// VersionLatest is the sentinel rewritten to entry.latest_version
	VersionLatest = "latest"

	// versionPlaceholder is substituted into download_url_template
	versionPlaceholder = "{version}"
)

// Resolve maps (entry, version) to a concrete artifact URL. It is a
// pure function of registry data with a strict precedence order:
//
//  1. the version record's explicit download_url
//  2. entry.download_url_template with {version} substituted
//  3. {repo}/archive/refs/tags/v{version}.zip
//
// The requested version must appear in entry.versions. Version
// strings are compared as opaque strings, never semantically parsed.
func Resolve(entry *Entry, version string) (string, error) {
	if version == VersionLatest {
		version = entry.LatestVersion
		if entry.FindVersion(version) == nil {
			return "", &IntegrityError{
				Plugin: entry.ID,
				Detail: fmt.Sprintf("latest_version '%s' is not in the versions list", version),
			}
		}
	}

	rec := entry.FindVersion(version)
	if rec == nil {
		return "", &NotFoundError{Plugin: entry.ID, Version: version}
	}

	if rec.DownloadURL != "" {
		return rec.DownloadURL, nil
	}

	if entry.DownloadURLTemplate != "" {
		return strings.ReplaceAll(entry.DownloadURLTemplate, versionPlaceholder, version), nil
	}

	return fmt.Sprintf("%s/archive/refs/tags/v%s.zip", strings.TrimSuffix(entry.Repo, "/"), version), nil
}
