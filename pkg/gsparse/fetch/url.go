package fetch

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/Tsunami43/gsparse-go/pkg/gsparse/parser"
)

// DefaultBaseURL is the Google Docs origin used for export URLs.
const DefaultBaseURL = "https://docs.google.com"

var (
	sheetIDPatterns = []*regexp.Regexp{
		regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9_-]+)`),
		regexp.MustCompile(`[?&#]id=([a-zA-Z0-9_-]+)`),
		regexp.MustCompile(`[?&#]key=([a-zA-Z0-9_-]+)`),
	}
	bareIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{20,}$`)
	gidPattern    = regexp.MustCompile(`(?:^|[&#?])gid=([0-9]+)`)
)

// ExtractSheetID returns the spreadsheet id of a Google Sheets URL.
func ExtractSheetID(rawURL string) (string, bool) {
	for _, re := range sheetIDPatterns {
		if m := re.FindStringSubmatch(rawURL); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// ExtractGID returns the worksheet id from the query or the fragment.
func ExtractGID(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	if gid := u.Query().Get("gid"); gid != "" {
		return gid, true
	}
	if m := gidPattern.FindStringSubmatch(u.Fragment); m != nil {
		return m[1], true
	}
	return "", false
}

// IsGoogleSheetsURL reports whether rawURL points at a Google Sheets document.
func IsGoogleSheetsURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	switch strings.ToLower(u.Hostname()) {
	case "docs.google.com", "drive.google.com":
	default:
		return false
	}
	_, ok := ExtractSheetID(rawURL)
	return ok
}

// NormalizeURL returns the canonical edit URL of a Google Sheets document.
func NormalizeURL(rawURL string) (string, error) {
	id, ok := ExtractSheetID(rawURL)
	if !ok {
		return "", &FetchError{URL: rawURL, Err: errNotSheetsURL}
	}
	return DefaultBaseURL + "/spreadsheets/d/" + id + "/edit", nil
}

// ExportURL builds the export URL of a spreadsheet. An empty gid exports
// the first worksheet for csv and the whole workbook for xlsx.
func ExportURL(baseURL, sheetID string, format parser.Format, gid string) (string, error) {
	switch format {
	case parser.FormatCSV, parser.FormatXLSX:
	default:
		return "", fmt.Errorf("%w: %q", errUnsupported, format)
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	q := url.Values{}
	q.Set("format", string(format))
	if gid != "" {
		q.Set("gid", gid)
	}
	return strings.TrimSuffix(baseURL, "/") + "/spreadsheets/d/" + url.PathEscape(sheetID) + "/export?" + q.Encode(), nil
}

// sheetLocator resolves a URL or a bare spreadsheet id.
func sheetLocator(locator string) (id, gid string, err error) {
	locator = strings.TrimSpace(locator)
	if bareIDPattern.MatchString(locator) {
		return locator, "", nil
	}
	id, ok := ExtractSheetID(locator)
	if !ok {
		return "", "", errNotSheetsURL
	}
	gid, _ = ExtractGID(locator)
	return id, gid, nil
}
