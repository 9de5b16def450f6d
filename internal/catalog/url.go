package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
)

// idPrefix and idHexLen fix the shape of content-addressed ids. Changing
// either would re-key every existing log.
const (
	idPrefix = "tool-"
	idHexLen = 12
)

// trackingParams are query parameters stripped during canonicalization.
var trackingParams = []string{
	"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content",
	"utm_id", "ref", "fbclid", "gclid", "igshid", "mc_cid", "mc_eid",
}

// Canonicalize normalizes a raw URL into the form used as the dedup key.
// It strips known tracking parameters, clears the fragment, lowercases
// scheme, host and path, trims the trailing slash (except on the root path),
// and upgrades http to https. An unparsable input is returned unchanged so
// one malformed URL never aborts a whole run.
func Canonicalize(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	q := u.Query()
	for _, p := range trackingParams {
		q.Del(p)
	}
	u.RawQuery = q.Encode()

	u.Fragment = ""
	u.RawFragment = ""

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	// The dedup key is case-insensitive across the whole URL, so paths are
	// lowercased too even though generic URL semantics keep them exact.
	u.Path = strings.ToLower(u.Path)
	u.RawPath = ""

	if u.Path != "/" {
		u.Path = strings.TrimRight(u.Path, "/")
	}

	if u.Scheme == "http" {
		u.Scheme = "https"
	}

	return u.String()
}

// DeriveID returns the content-addressed identifier for a canonical URL:
// a truncated SHA-256 hex digest with a fixed prefix. Identical canonical
// URLs always collide to the same id.
func DeriveID(canonicalURL string) string {
	sum := sha256.Sum256([]byte(canonicalURL))
	return idPrefix + hex.EncodeToString(sum[:])[:idHexLen]
}
