package netbird

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/jetrmm/rs-installer/agent/common"
	"github.com/jetrmm/rs-installer/agent/config"
)

const wintunDLL = "wintun.dll"

// installWintun places the architecture-specific wintun.dll next to the client
// binary. Nothing is downloaded when the DLL is already there.
func (p *Provisioner) installWintun(ctx context.Context, folder string) error {
	dst := filepath.Join(folder, wintunDLL)
	if common.FileExists(dst) {
		return nil
	}

	arch, err := common.ArchToken(p.GOARCH)
	if err != nil {
		return err
	}

	p.Logger.Infoln("Installing Wintun driver...")
	ver := p.Config.Endpoints.WintunVersion
	url := config.Expand(p.Config.Endpoints.WintunDownload, ver)

	zipPath := filepath.Join(p.Paths.TempDir, fmt.Sprintf("wintun-%s.zip", ver))
	if err := p.Fetcher.Download(ctx, url, zipPath); err != nil {
		return err
	}

	extractDir, err := common.FreshTempDir(p.Paths.TempDir, "wintun-"+ver)
	if err != nil {
		p.Cleanup(zipPath)
		return err
	}
	defer p.Cleanup(zipPath, extractDir)

	if err := common.Unzip(zipPath, extractDir); err != nil {
		return fmt.Errorf("extract %s: %w", zipPath, err)
	}

	src := filepath.Join(extractDir, "wintun", "bin", arch, wintunDLL)
	if !common.FileExists(src) {
		return fmt.Errorf("%s not found for architecture %s", wintunDLL, arch)
	}
	if err := common.CopyFile(src, dst); err != nil {
		return fmt.Errorf("install %s: %w", dst, err)
	}

	p.Logger.Infoln("Wintun driver installed to", dst)
	return nil
}
