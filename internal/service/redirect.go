package service

import (
	"net"
	"net/url"
	"strings"
)

const thanksPath = "/thanks"

// ThanksURL computes where a successful submission is redirected. The
// Referer wins over Origin; a bare relative path is the last resort.
func ThanksURL(referer, origin string) string {
	candidate := referer
	if candidate == "" {
		candidate = origin
	}
	if candidate == "" {
		return thanksPath
	}

	if base, ok := urlOrigin(candidate); ok {
		return base + thanksPath
	}
	if origin != "" {
		return origin + thanksPath
	}
	return thanksPath
}

// urlOrigin returns scheme://host[:port] for absolute http(s) URLs, without
// default ports.
func urlOrigin(raw string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return "", false
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", false
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", false
	}
	port := u.Port()
	if (scheme == "http" && port == "80") || (scheme == "https" && port == "443") {
		port = ""
	}
	if port != "" {
		host = net.JoinHostPort(host, port)
	} else if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	return scheme + "://" + host, true
}
