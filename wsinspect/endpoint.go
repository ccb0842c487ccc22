package wsinspect

import (
	"net/url"
	"strconv"
	"strings"
	"unicode"
)

// Schemes whose URLs must name a host.
var hostRequired = map[string]bool{
	"ws":    true,
	"wss":   true,
	"http":  true,
	"https": true,
	"ftp":   true,
}

// ValidateEndpoint reports whether candidate is a syntactically well-formed
// absolute URL. Only generic URL syntax is checked; the scheme is not
// restricted to ws or wss.
func ValidateEndpoint(candidate string) bool {
	if candidate == "" {
		return false
	}
	if strings.ContainsFunc(candidate, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsControl(r)
	}) {
		return false
	}

	u, err := url.Parse(candidate)
	if err != nil || u.Scheme == "" {
		return false
	}
	if hostRequired[strings.ToLower(u.Scheme)] {
		// Special schemes take the authority after any run of slashes,
		// so ws:host and ws:/host name the host "host".
		rest := strings.TrimLeft(candidate[len(u.Scheme)+1:], `/\`)
		u, err = url.Parse(u.Scheme + "://" + rest)
		if err != nil || u.Hostname() == "" {
			return false
		}
	}
	return validPort(u.Port())
}

func validPort(p string) bool {
	if p == "" {
		return true
	}
	n, err := strconv.Atoi(p)
	return err == nil && n >= 0 && n <= 65535
}
