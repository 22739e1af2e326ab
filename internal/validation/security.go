// Package validation holds the input checks shared by the server and the
// configuration layer.
package validation

import (
	"fmt"
	"net/url"
	"strings"
)

// hostMetacharacters may never appear in a bind host.
const hostMetacharacters = ";&|$`<>\"'\\ "

// ValidateHost rejects bind hosts carrying shell metacharacters or spaces.
func ValidateHost(host string) error {
	if i := strings.IndexAny(host, hostMetacharacters); i >= 0 {
		return fmt.Errorf("host contains invalid character %q: %q", host[i], host)
	}
	return nil
}

// ValidateOrigin checks a websocket Origin header against the hosts the
// server answers on. Only http and https origins are accepted, and the
// origin's host:port must equal one of allowedHosts ignoring case.
func ValidateOrigin(origin string, allowedHosts []string) error {
	if origin == "" {
		return fmt.Errorf("origin header is required")
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return fmt.Errorf("invalid origin format: %w", err)
	}

	if originURL.Scheme != "http" && originURL.Scheme != "https" {
		return fmt.Errorf("invalid origin scheme '%s': only http and https are allowed", originURL.Scheme)
	}

	for _, allowed := range allowedHosts {
		if allowed != "" && strings.EqualFold(originURL.Host, allowed) {
			return nil
		}
	}

	return fmt.Errorf("origin '%s' is not in allowed origins list", origin)
}
