// Package device derives human-readable client descriptions from User-Agent
// strings, used to enrich sign-in audit logs.
package device

import (
	"strings"

	"github.com/mssola/useragent"
)

// DisplayName extracts a human-readable device display name from a
// User-Agent string. Returns format: "Browser on OS" (e.g., "Chrome on
// macOS", "Safari on iOS").
func DisplayName(userAgentString string) string {
	if userAgentString == "" {
		return "Unknown Device"
	}

	ua := useragent.New(userAgentString)

	browser, _ := ua.Browser()
	os := ua.OS()

	if ua.Mobile() {
		platform := ua.Platform()
		if platform != "" {
			return strings.TrimSpace(browser + " on " + platform)
		}
	}

	if browser == "" {
		browser = "Unknown Browser"
	}
	if os == "" {
		os = "Unknown OS"
	}

	return strings.TrimSpace(browser + " on " + os)
}
