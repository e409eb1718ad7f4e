package common

import (
	"errors"
	"fmt"
)

var ErrUnsupportedArch = errors.New("unsupported architecture")

// ArchToken maps a GOARCH value to the directory name used by driver bundles
func ArchToken(goarch string) (string, error) {
	switch goarch {
	case "amd64":
		return "amd64", nil
	case "386":
		return "x86", nil
	case "arm64":
		return "arm64", nil
	case "arm":
		return "arm", nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedArch, goarch)
}
