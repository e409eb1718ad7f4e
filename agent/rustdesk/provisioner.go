package rustdesk

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jetrmm/rs-installer/agent/common"
	"github.com/jetrmm/rs-installer/agent/config"
	"github.com/jetrmm/rs-installer/agent/release"
)

const (
	AppFolder           = "RustDesk"
	ExeName             = "RustDesk.exe"
	LocalPackagePattern = "rustdesk-*.msi"
	downloadName        = "rustdesk-installer.msi"
)

// Provisioner installs RustDesk preconfigured for the support network
type Provisioner struct {
	common.Deps
	Config   *config.InstallerConfig
	Releases release.Source
}

type Result struct {
	Folder    string
	ConfigDir string
	// Password is the generated permanent access password
	Password string
}

// Provision refuses to touch a machine with traces of an earlier install and
// returns ErrStaleInstall before anything is downloaded or written.
func (p *Provisioner) Provision(ctx context.Context, vpnIP string) (Result, error) {
	folder, err := p.Folders.Resolve(AppFolder)
	if err != nil {
		return Result{}, err
	}

	loc := Locate(p.Paths, folder)
	if found := loc.Existing(); len(found) > 0 {
		p.reportStale(found)
		return Result{}, ErrStaleInstall
	}

	pkg, local, err := p.acquire(ctx)
	if err != nil {
		return Result{}, err
	}
	if !local {
		defer p.Cleanup(pkg)
	}

	res := Result{Folder: folder, ConfigDir: filepath.Join(loc.ServiceConfig, "config")}
	p.Logger.Infoln("Configuring RustDesk...")
	if res.Password, err = p.writeConfig(res.ConfigDir, vpnIP); err != nil {
		return res, err
	}

	p.Logger.Infoln("Installing RustDesk...")
	if _, err := p.Runner.Run(ctx, "msiexec", msiexecArgs(pkg, folder), common.RunOptions{RawCmdLine: true}); err != nil {
		return res, err
	}

	fmt.Fprintf(p.Out, "RustDesk service installed. Password is '%s'.\n", res.Password)
	return res, nil
}

// acquire returns the installer package and whether it was supplied locally
func (p *Provisioner) acquire(ctx context.Context) (string, bool, error) {
	if pkg := common.FindLocalPackage(p.Paths.WorkDir, LocalPackagePattern); pkg != "" {
		p.Logger.Infoln("Found local RustDesk installer:", filepath.Base(pkg))
		return pkg, true, nil
	}

	p.Logger.Infoln("Downloading RustDesk...")
	v, err := p.Releases.Latest(ctx, p.Config.Endpoints.RustdeskRepo)
	if err != nil {
		return "", false, err
	}

	pkg := filepath.Join(p.Paths.TempDir, downloadName)
	url := config.Expand(p.Config.Endpoints.RustdeskDownload, v.Original())
	if err := p.Fetcher.Download(ctx, url, pkg); err != nil {
		return "", false, err
	}
	return pkg, false, nil
}

func (p *Provisioner) writeConfig(dir, vpnIP string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}

	password, err := common.GeneratePassword(8, 1, 1, 1)
	if err != nil {
		return "", err
	}
	salt, err := common.GeneratePassword(6, 0, 1, 1)
	if err != nil {
		return "", err
	}

	if err := writeTOML(filepath.Join(dir, "RustDesk.toml"), mainConfig{Password: password, Salt: salt}); err != nil {
		return "", err
	}

	network := newNetworkConfig(p.Config.Endpoints.RendezvousHost, vpnIP, p.Config.RustdeskKey)
	if err := writeTOML(filepath.Join(dir, "RustDesk2.toml"), network); err != nil {
		return "", err
	}
	return password, nil
}

// msiexecArgs are passed on a raw command line, msiexec needs the property values quoted verbatim
func msiexecArgs(pkg, folder string) []string {
	return []string{
		"/i", quote(pkg),
		"/qn",
		"INSTALLFOLDER=" + quote(folder),
		`CREATESTARTMENUSHORTCUTS="Y"`,
		`CREATEDESKTOPSHORTCUTS="N"`,
		`INSTALLPRINTER="N"`,
	}
}

func quote(s string) string {
	return `"` + strings.Trim(s, `"`) + `"`
}
