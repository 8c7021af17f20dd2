package tools

import (
	"errors"
	"fmt"
	"net/netip"
	"net/url"
	"strings"
)

var blockedHosts = map[string]bool{
	"localhost":                true,
	"metadata.google.internal": true,
}

// checkURL rejects URLs that would let the model steer the gateway at
// internal or private network resources.
func checkURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return errors.New("invalid URL")
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return errors.New("only http and https URLs are allowed")
	}

	host := strings.ToLower(parsed.Hostname())
	if blockedHosts[host] {
		return fmt.Errorf("%q is not an allowed host", host)
	}

	if addr, err := netip.ParseAddr(host); err == nil {
		if addr.IsPrivate() || addr.IsLoopback() || addr.IsLinkLocalUnicast() ||
			addr.IsLinkLocalMulticast() || addr.IsUnspecified() {
			return errors.New("private and internal IP addresses are not allowed")
		}
	}

	return nil
}
