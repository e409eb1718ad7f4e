//go:build !windows

package windows

import (
	"errors"

	"github.com/jetrmm/rs-installer/agent/common"
	"github.com/jetrmm/rs-installer/internal/registry"
)

var errUnsupported = errors.New("not supported on this platform")

func init() {
	registry.Register(provider{})
}

type provider struct{}

func (provider) Platform() (common.Platform, error) {
	return unsupported{}, nil
}

// unsupported lets the CLI start on other systems so it can print help and
// reject the host in preflight
type unsupported struct{}

func (unsupported) IsElevated() (bool, error)            { return false, errUnsupported }
func (unsupported) SystemPath() (string, error)          { return "", errUnsupported }
func (unsupported) SetSystemPath(string) error           { return errUnsupported }
func (unsupported) BroadcastEnvironmentChange() error    { return errUnsupported }
func (unsupported) ServiceStatus(string) (string, error) { return "", errUnsupported }
func (unsupported) Alert(string, string) bool            { return false }
