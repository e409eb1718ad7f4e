package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v3/host"
	"github.com/sirupsen/logrus"

	"github.com/jetrmm/rs-installer/agent/common"
	"github.com/jetrmm/rs-installer/agent/config"
	"github.com/jetrmm/rs-installer/agent/netbird"
	"github.com/jetrmm/rs-installer/agent/release"
	"github.com/jetrmm/rs-installer/agent/rustdesk"
	"github.com/jetrmm/rs-installer/agent/subscription"
	"github.com/jetrmm/rs-installer/shared"
)

const (
	Banner  = "=== " + common.AGENT_NAME_LONG + " ==="
	Success = "Aeon Remote Desktop Support Service is active."
)

var (
	ErrNotWindows  = errors.New("this installer only runs on Windows")
	ErrNotElevated = errors.New("this installer must be run as Administrator")
)

type Subscriber interface {
	Notify(ctx context.Context, s shared.Subscription) error
}

// Installer provisions the host in order: preflight, VPN, remote desktop, subscription
type Installer struct {
	common.Deps
	Config     *config.InstallerConfig
	Releases   release.Source
	Subscriber Subscriber
	GOOS       string
	GOARCH     string
}

var detectHostPaths = common.DetectHostPaths

// New wires the production collaborators around cfg. Host paths are
// resolved by Run once preflight has passed.
func New(cfg *config.InstallerConfig, platform common.Platform, logger logrus.FieldLogger) *Installer {
	return &Installer{
		Deps: common.Deps{
			Runner:   common.NewExecRunner(logger),
			Fetcher:  common.NewDownloader(logger),
			Platform: platform,
			Logger:   logger,
			Out:      os.Stdout,
		},
		Config:     cfg,
		Releases:   release.NewClient(cfg.Endpoints.GitHubAPI, logger),
		Subscriber: subscription.NewNotifier(cfg.SubscriptionURL, logger),
		GOOS:       runtime.GOOS,
		GOARCH:     runtime.GOARCH,
	}
}

// Preflight checks the host before anything is changed
func (i *Installer) Preflight() error {
	if i.GOOS != "windows" {
		return ErrNotWindows
	}

	elevated, err := i.Platform.IsElevated()
	if err != nil {
		return fmt.Errorf("unable to determine privileges: %w", err)
	}
	if !elevated {
		return ErrNotElevated
	}
	return nil
}

func (i *Installer) Run(ctx context.Context) error {
	if err := i.Preflight(); err != nil {
		return err
	}
	if err := i.resolvePaths(); err != nil {
		return err
	}

	fmt.Fprintln(i.Out, Banner)
	i.logHost(ctx)

	if err := i.Config.Validate(); err != nil {
		return err
	}

	vpn := &netbird.Provisioner{Deps: i.Deps, Config: i.Config, Releases: i.Releases, GOARCH: i.GOARCH}
	nb, err := vpn.Provision(ctx)
	if err != nil {
		return err
	}

	rd := &rustdesk.Provisioner{Deps: i.Deps, Config: i.Config, Releases: i.Releases}
	desk, err := rd.Provision(ctx, nb.Status.IP)
	if err != nil {
		return err
	}

	if i.Config.Enroll {
		sub := shared.Subscription{IP: nb.Status.IP, Password: desk.Password}
		if err := i.Subscriber.Notify(ctx, sub); err != nil {
			i.Logger.Warnln("Valet", err)
		}
	}

	fmt.Fprintln(i.Out, Success)
	return nil
}

func (i *Installer) resolvePaths() error {
	if i.Folders != nil {
		return nil
	}
	paths, err := detectHostPaths()
	if err != nil {
		return err
	}
	i.Paths = paths
	i.Folders = common.NewFolderResolver(paths.InstallParents())
	return nil
}

func (i *Installer) logHost(ctx context.Context) {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		i.Logger.Debugln("Host info unavailable:", err)
		return
	}
	i.Logger.WithFields(logrus.Fields{
		"hostname": info.Hostname,
		"platform": info.Platform,
		"version":  info.PlatformVersion,
		"arch":     info.KernelArch,
	}).Infoln("Provisioning host")
}

// ShowVersionInfo prints basic debugging info
func ShowVersionInfo(w io.Writer, ver string) {
	fmt.Fprintln(w, common.AGENT_NAME_LONG, ver, runtime.GOARCH, runtime.Version())
}
