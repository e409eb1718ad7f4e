package windows

import (
	"fmt"

	"github.com/gonutz/w32/v2"
	"github.com/kardianos/service"
	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"

	"github.com/jetrmm/rs-installer/agent/common"
	rsregistry "github.com/jetrmm/rs-installer/internal/registry"
)

func init() {
	rsregistry.Register(provider{})
}

type provider struct{}

func (provider) Platform() (common.Platform, error) {
	return &windowsPlatform{}, nil
}

type windowsPlatform struct{}

func (p *windowsPlatform) IsElevated() (bool, error) {
	return windows.GetCurrentProcessToken().IsElevated(), nil
}

func (p *windowsPlatform) SystemPath() (string, error) {
	k, err := registry.OpenKey(registry.LOCAL_MACHINE, REG_ENVIRONMENT, registry.QUERY_VALUE)
	if err != nil {
		return "", err
	}
	defer k.Close()

	v, _, err := k.GetStringValue(REG_ENVIRONMENT_PATH)
	if err == registry.ErrNotExist {
		return "", nil
	}
	return v, err
}

// SetSystemPath keeps the value type, Path is normally REG_EXPAND_SZ
func (p *windowsPlatform) SetSystemPath(value string) error {
	k, err := registry.OpenKey(registry.LOCAL_MACHINE, REG_ENVIRONMENT, registry.QUERY_VALUE|registry.SET_VALUE)
	if err != nil {
		return err
	}
	defer k.Close()

	_, valtype, err := k.GetStringValue(REG_ENVIRONMENT_PATH)
	if err == nil && valtype == registry.SZ {
		return k.SetStringValue(REG_ENVIRONMENT_PATH, value)
	}
	return k.SetExpandStringValue(REG_ENVIRONMENT_PATH, value)
}

func (p *windowsPlatform) BroadcastEnvironmentChange() error {
	_, err := SendMessageTimeout(HWND_BROADCAST, WM_SETTINGCHANGE, 0, "Environment", SMTO_ABORTIFHUNG, BROADCAST_TIMEOUT_MS)
	return err
}

type program struct{}

func (program) Start(service.Service) error { return nil }
func (program) Stop(service.Service) error  { return nil }

func (p *windowsPlatform) ServiceStatus(name string) (string, error) {
	s, err := service.New(program{}, &service.Config{Name: name})
	if err != nil {
		return "", err
	}

	status, err := s.Status()
	if err != nil {
		return "", err
	}

	switch status {
	case service.StatusRunning:
		return "running", nil
	case service.StatusStopped:
		return "stopped", nil
	}
	return "", fmt.Errorf("service %s is in an unknown state", name)
}

// Alert pops up a message box if called from an interactive desktop
func (p *windowsPlatform) Alert(title, msg string) bool {
	window := w32.GetForegroundWindow()
	if window == 0 {
		return false
	}
	var handle w32.HWND
	w32.MessageBox(handle, msg, title, w32.MB_OK|w32.MB_ICONWARNING)
	return true
}
