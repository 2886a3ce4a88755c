/*
Package handle recovers a nested file handle from a share URL.
*/
package handle

import (
	"regexp"
	"strings"
)

var folderFileRe = regexp.MustCompile(`^.*/folder/(.*)/file/(.*)$`)

// Extract returns the file handle of a URL shaped like .../folder/<folder-id>/file/<file-id>.
// Any other shape reports false, which means the whole listing has to be consulted.
func Extract(rawURL string) (string, bool) {
	if !strings.Contains(rawURL, "file") || !strings.Contains(rawURL, "folder") {
		return "", false
	}

	m := folderFileRe.FindStringSubmatch(rawURL)
	if m == nil || m[2] == "" {
		return "", false
	}

	return m[2], true
}
