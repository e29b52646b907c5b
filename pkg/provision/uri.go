package provision

import (
	"net/url"
	"strings"
)

// Scheme is the URI prefix understood by authenticator apps for TOTP entries.
const Scheme = "otpauth://totp/"

// BuildURI returns the otpauth provisioning URI for a TOTP secret.
// Label and issuer are percent-encoded individually; the base32 secret is
// URL-safe and is written as is. Empty label or issuer are permitted.
func BuildURI(secret, label, issuer string) string {
	var b strings.Builder
	b.Grow(len(Scheme) + len(label) + len(secret) + len(issuer) + 16)
	b.WriteString(Scheme)
	b.WriteString(escape(label))
	b.WriteString("?secret=")
	b.WriteString(secret)
	b.WriteString("&issuer=")
	b.WriteString(escape(issuer))
	return b.String()
}

// escape encodes every byte outside the RFC 3986 unreserved set. Spaces
// become %20 so the result is valid in both the path and the query.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
