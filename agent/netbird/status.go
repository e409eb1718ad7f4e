package netbird

import (
	"regexp"
	"strings"
)

var ipPattern = regexp.MustCompile(`IP:\s*(\d+\.\d+\.\d+\.\d+)`)

// Status is what the installer reads out of `netbird status`
type Status struct {
	Connected bool
	IP        string
}

// ParseStatus scrapes the human-readable status text. The peer counts as
// connected only when both the management and signal planes report so.
func ParseStatus(text string) Status {
	return Status{
		Connected: IsConnected(text),
		IP:        ParseIP(text),
	}
}

func IsConnected(text string) bool {
	return strings.Contains(text, "Management: Connected") && strings.Contains(text, "Signal: Connected")
}

// ParseIP returns the first IPv4 address following "IP:", or "" if there is none
func ParseIP(text string) string {
	m := ipPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}
