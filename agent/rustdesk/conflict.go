package rustdesk

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/jetrmm/rs-installer/agent/common"
)

var ErrStaleInstall = errors.New("RustDesk appears to be partially installed or previously configured")

// Locations are the places a previous RustDesk install leaves behind
type Locations struct {
	ServiceConfig string // config of the LocalService account the RustDesk service runs as
	AppConfig     string // config of the invoking user
	Binary        string
}

func Locate(paths common.HostPaths, installFolder string) Locations {
	return Locations{
		ServiceConfig: filepath.Join(paths.WindowsDir, "ServiceProfiles", "LocalService", "AppData", "Roaming", AppFolder),
		AppConfig:     filepath.Join(paths.AppData, AppFolder),
		Binary:        filepath.Join(installFolder, ExeName),
	}
}

// Existing lists a description of every location that is already present
func (l Locations) Existing() []string {
	var found []string
	if common.DirExists(l.ServiceConfig) {
		found = append(found, fmt.Sprintf("RustDesk service config found in:\n   %s", l.ServiceConfig))
	}
	if common.DirExists(l.AppConfig) {
		found = append(found, fmt.Sprintf("RustDesk app config found in:\n   %s", l.AppConfig))
	}
	if common.FileExists(l.Binary) {
		found = append(found, fmt.Sprintf("RustDesk app found in:\n   %s", filepath.Dir(l.Binary)))
	}
	return found
}

const staleGuidance = `RustDesk appears to be partially installed or previously configured.
   Please uninstall RustDesk with 'rustdesk --uninstall', then delete any config folders.
   Then run this installer again.`

// reportStale tells the operator what was found and how to clean it up
func (p *Provisioner) reportStale(found []string) {
	for _, f := range found {
		fmt.Fprintln(p.Out, f)
	}
	fmt.Fprintf(p.Out, "\n%s\n\n", staleGuidance)

	if !p.Config.Silent {
		p.Platform.Alert(common.AGENT_NAME_LONG, staleGuidance)
	}
}
