package sharelink

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/hioki-daichi/sharedl/remote"
)

// KeySize is the length of a share key.
const KeySize = 32

var errInvalidLink = errors.New("sharelink: invalid share link")

// Link is a parsed share URL.
type Link struct {
	// BaseURL is scheme://host of the share.
	BaseURL string
	Kind    remote.Kind
	ID      string
	// Key is nil for unencrypted shares.
	Key []byte
}

// ParseLink parses links shaped like https://host/folder/<id>#<key>[/file/<id>]
// or https://host/file/<id>#<key>. The key part is optional.
func ParseLink(raw string) (Link, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Link{}, err
	}
	if u.Scheme == "" || u.Host == "" {
		return Link{}, fmt.Errorf("%w: %q", errInvalidLink, raw)
	}

	segs := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segs) < 2 || segs[1] == "" {
		return Link{}, fmt.Errorf("%w: %q", errInvalidLink, raw)
	}

	var kind remote.Kind
	switch segs[0] {
	case "folder":
		kind = remote.KindFolder
	case "file":
		kind = remote.KindFile
	default:
		return Link{}, fmt.Errorf("%w: %q", errInvalidLink, raw)
	}

	link := Link{
		BaseURL: u.Scheme + "://" + u.Host,
		Kind:    kind,
		ID:      segs[1],
	}

	// e.g. "KEY/file/XYZ"
	if k, _, _ := strings.Cut(u.Fragment, "/"); k != "" {
		key, err := base64.RawURLEncoding.DecodeString(k)
		if err != nil {
			return Link{}, fmt.Errorf("%w: bad key: %w", errInvalidLink, err)
		}
		if len(key) != KeySize {
			return Link{}, fmt.Errorf("%w: key must be %d bytes", errInvalidLink, KeySize)
		}
		link.Key = key
	}

	return link, nil
}

// EncodeKey returns the fragment form of a share key.
func EncodeKey(key []byte) string {
	return base64.RawURLEncoding.EncodeToString(key)
}

func (l Link) sharePath() string {
	return fmt.Sprintf("/api/v1/shares/%s/%s", l.Kind, url.PathEscape(l.ID))
}
