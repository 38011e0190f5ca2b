// Package workspace provides the Google Workspace plumbing shared by the
// certificate pipeline: API client construction, resource-URL parsing and the
// row-level spreadsheet operations every other layer builds on.
package workspace

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// /d/{id}/ covers Sheets, Docs, Slides and Form edit URLs.
	driveFilePattern = regexp.MustCompile(`/d/([a-zA-Z0-9-_]{15,})/`)
	// /folders/{id} covers Drive folder URLs.
	folderPattern = regexp.MustCompile(`/folders/([a-zA-Z0-9-_]{15,})`)
)

// ResourceIDError indicates a resource identifier could not be extracted from a URL.
type ResourceIDError struct {
	URL  string
	Hint string
}

func (e *ResourceIDError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("no %s resource id in url: %q", e.Hint, e.URL)
	}
	return fmt.Sprintf("no resource id in url: %q", e.URL)
}

// ExtractResourceID parses a Google Workspace resource identifier from a
// document URL. Two shapes are recognized: /d/{id}/ (documents, spreadsheets,
// slides and form edit URLs) and /folders/{id} (Drive folders).
//
// When hint is "form" the URL must additionally carry the /forms/d/ edit path.
// A form *view* URL (/forms/d/e/{id}/viewform) nests the id one level deeper
// and deliberately does not resolve; respondent-facing links are not valid
// configuration values.
func ExtractResourceID(rawURL, hint string) (string, error) {
	if rawURL == "" {
		return "", &ResourceIDError{URL: rawURL, Hint: hint}
	}

	var id string
	if m := driveFilePattern.FindStringSubmatch(rawURL); m != nil {
		id = m[1]
	} else if m := folderPattern.FindStringSubmatch(rawURL); m != nil {
		id = m[1]
	}

	if id == "" {
		return "", &ResourceIDError{URL: rawURL, Hint: hint}
	}

	if hint == "form" && !strings.Contains(rawURL, "/forms/d/") {
		return "", &ResourceIDError{URL: rawURL, Hint: hint}
	}

	return id, nil
}
