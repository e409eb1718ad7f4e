package netbird

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/jetrmm/rs-installer/agent/common"
	"github.com/jetrmm/rs-installer/agent/config"
	"github.com/jetrmm/rs-installer/agent/release"
)

const (
	AppFolder             = "Netbird"
	ExeName               = "netbird.exe"
	LocalInstallerPattern = "netbird_installer_*.exe"
	archiveName           = "netbird_win.tar.gz"
	extractDirName        = "netbird_extract"
)

var errNoBinaryInArchive = errors.New(ExeName + " not found in extracted archive")

// Provisioner makes sure the NetBird client is installed, running and enrolled
type Provisioner struct {
	common.Deps
	Config   *config.InstallerConfig
	Releases release.Source
	GOARCH   string
}

// Result describes the VPN endpoint after provisioning
type Result struct {
	Folder string
	Exe    string
	Status Status
}

func (p *Provisioner) Provision(ctx context.Context) (Result, error) {
	folder, err := p.Folders.Resolve(AppFolder)
	if err != nil {
		return Result{}, err
	}
	exe := filepath.Join(folder, ExeName)
	res := Result{Folder: folder, Exe: exe}

	if !common.FileExists(exe) {
		if pkg := common.FindLocalPackage(p.Paths.WorkDir, LocalInstallerPattern); pkg != "" {
			p.Logger.Infoln("Found local NetBird installer:", filepath.Base(pkg))
			p.Logger.Infoln("Launching installer...")
			if _, err := p.Runner.Run(ctx, pkg, nil, common.RunOptions{Verbose: true}); err != nil {
				return res, err
			}
		}
	}

	if !common.FileExists(exe) {
		p.Logger.Infoln("Installing NetBird")
		if err := p.install(ctx, exe); err != nil {
			return res, err
		}
		if err := p.installWintun(ctx, folder); err != nil {
			return res, err
		}
	}

	// both report an error when the service is already installed or running
	ignore := common.RunOptions{IgnoreError: true}
	if _, err := p.Runner.Run(ctx, exe, []string{"service", "install"}, ignore); err != nil {
		return res, err
	}
	if _, err := p.Runner.Run(ctx, exe, []string{"service", "start"}, ignore); err != nil {
		return res, err
	}
	p.logServiceStatus()

	status, err := p.status(ctx, exe)
	if err != nil {
		return res, err
	}

	if !status.Connected {
		p.Logger.Infoln("Connecting to VPN...")
		args := []string{"up", "--management-url", p.Config.MgmtURL, "--setup-key", p.Config.SetupKey()}
		if _, err := p.Runner.Run(ctx, exe, args, common.RunOptions{}); err != nil {
			return res, err
		}
		p.Logger.Infoln("NetBird agent started")

		if status, err = p.status(ctx, exe); err != nil {
			return res, err
		}
	}
	res.Status = status

	if status.IP != "" {
		p.Logger.Infoln("Connected to Aeon Support VPN at", status.IP)
	} else {
		p.Logger.Warnln("Agent failed to connect to Aeon Support VPN")
	}

	if p.Config.AddToPath {
		if _, err := common.AddToSystemPath(p.Platform, folder, p.Logger); err != nil {
			p.Logger.Warnln(err)
		}
	}

	return res, nil
}

func (p *Provisioner) status(ctx context.Context, exe string) (Status, error) {
	p.Logger.Debugln("Checking NetBird status")
	r, err := p.Runner.Run(ctx, exe, []string{"status"}, common.RunOptions{IgnoreError: true})
	if err != nil {
		return Status{}, err
	}
	return ParseStatus(r.Stdout), nil
}

func (p *Provisioner) logServiceStatus() {
	s, err := p.Platform.ServiceStatus(common.SERVICE_NAME_VPN)
	if err != nil {
		p.Logger.Warnf("Unable to query %s service: %v", common.SERVICE_NAME_VPN, err)
		return
	}
	p.Logger.Infof("NetBird service is %s", s)
}

// install downloads the latest release archive and copies the client binary to exe
func (p *Provisioner) install(ctx context.Context, exe string) error {
	v, err := p.Releases.Latest(ctx, p.Config.Endpoints.NetbirdRepo)
	if err != nil {
		return err
	}
	url := config.Expand(p.Config.Endpoints.NetbirdDownload, release.Bare(v))

	archive := filepath.Join(p.Paths.TempDir, archiveName)
	if err := p.Fetcher.Download(ctx, url, archive); err != nil {
		return err
	}

	extractDir, err := common.FreshTempDir(p.Paths.TempDir, extractDirName)
	if err != nil {
		p.Cleanup(archive)
		return err
	}
	defer p.Cleanup(archive, extractDir)

	p.Logger.Infoln("Extracting NetBird binary...")
	if _, err := p.Runner.Run(ctx, "tar", []string{"-xzf", archive, "-C", extractDir}, common.RunOptions{}); err != nil {
		return err
	}

	src := filepath.Join(extractDir, ExeName)
	if !common.FileExists(src) {
		return errNoBinaryInArchive
	}
	if err := common.CopyFile(src, exe); err != nil {
		return fmt.Errorf("install %s: %w", exe, err)
	}
	return nil
}
