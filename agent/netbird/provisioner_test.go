package netbird

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jetrmm/rs-installer/agent/common"
	"github.com/jetrmm/rs-installer/agent/config"
	"github.com/jetrmm/rs-installer/internal/testutil"
)

const (
	netbirdTag   = "v0.30.1"
	netbirdURL   = "https://github.com/netbirdio/netbird/releases/download/v0.30.1/netbird_0.30.1_windows_amd64_signed.tar.gz"
	wintunURL    = "https://www.wintun.net/builds/wintun-0.14.1.zip"
	needsLogin   = "Daemon status: NeedsLogin\n\nRun UP command to log in with SSO\n"
	disconnected = "Management: Disconnected\nSignal: Disconnected\nNetBird IP: N/A\n"
)

type fixture struct {
	p        *Provisioner
	runner   *testutil.FakeRunner
	fetcher  *testutil.FakeFetcher
	releases *testutil.FakeReleases
	platform *testutil.MockPlatform
	parent   string
	work     string
	temp     string
	// status is what `netbird status` prints before and after `up`
	before, after string
}

func newFixture(t *testing.T) *fixture {
	root := t.TempDir()
	f := &fixture{
		runner:   &testutil.FakeRunner{},
		fetcher:  &testutil.FakeFetcher{Files: map[string][]byte{}},
		releases: &testutil.FakeReleases{Tags: map[string]string{"netbirdio/netbird": netbirdTag}},
		platform: &testutil.MockPlatform{},
		parent:   filepath.Join(root, "Programs"),
		work:     filepath.Join(root, "work"),
		temp:     filepath.Join(root, "tmp"),
		before:   needsLogin,
		after:    connectedStatus,
	}
	for _, d := range []string{f.parent, f.work, f.temp} {
		require.NoError(t, os.MkdirAll(d, 0o755))
	}

	cfg := config.Defaults()
	cfg.GuestKey = "GUEST"
	cfg.SubscriberKey = "SUBSCRIBER"
	cfg.MgmtURL = "https://mgmt.example.com:443"
	cfg.RustdeskKey = "PUBKEY"
	cfg.SubscriptionURL = "http://valet.example.vpn:8080"

	f.platform.On("ServiceStatus", common.SERVICE_NAME_VPN).Return("running", nil).Maybe()

	upCalled := false
	f.runner.Handler = func(c testutil.Call) (common.Result, error) {
		if filepath.Base(c.Name) != ExeName || len(c.Args) == 0 {
			return common.Result{}, nil
		}
		switch c.Args[0] {
		case "up":
			upCalled = true
		case "status":
			if upCalled {
				return common.Result{Stdout: f.after}, nil
			}
			return common.Result{Stdout: f.before}, nil
		}
		return common.Result{}, nil
	}

	f.p = &Provisioner{
		Deps: common.Deps{
			Runner:   f.runner,
			Fetcher:  f.fetcher,
			Folders:  common.NewFolderResolver([]string{f.parent}),
			Paths:    common.HostPaths{WindowsDir: root, AppData: root, WorkDir: f.work, TempDir: f.temp},
			Platform: f.platform,
			Logger:   testutil.Logger(),
			Out:      &bytes.Buffer{},
		},
		Config:   cfg,
		Releases: f.releases,
		GOARCH:   "amd64",
	}
	return f
}

func (f *fixture) folder() string {
	return filepath.Join(f.parent, AppFolder)
}

// preinstall puts a client binary where the provisioner looks for it
func (f *fixture) preinstall(t *testing.T) {
	require.NoError(t, os.MkdirAll(f.folder(), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(f.folder(), ExeName), []byte("nb"), 0o755))
}

// serveRelease makes tar drop a client binary and serves a wintun bundle
func (f *fixture) serveRelease(t *testing.T) {
	f.fetcher.Files[netbirdURL] = []byte("tarball")
	f.fetcher.Files[wintunURL] = testutil.Zip(t, map[string]string{
		"wintun/bin/amd64/wintun.dll": "dll-amd64",
		"wintun/bin/x86/wintun.dll":   "dll-x86",
		"wintun/bin/arm64/wintun.dll": "dll-arm64",
		"wintun/bin/arm/wintun.dll":   "dll-arm",
	})

	handler := f.runner.Handler
	f.runner.Handler = func(c testutil.Call) (common.Result, error) {
		if c.Name == "tar" {
			require.Len(t, c.Args, 4)
			assert.Equal(t, "-xzf", c.Args[0])
			assert.Equal(t, "-C", c.Args[2])
			require.NoError(t, os.WriteFile(filepath.Join(c.Args[3], ExeName), []byte("downloaded"), 0o755))
			return common.Result{}, nil
		}
		return handler(c)
	}
}

func TestProvisionAlreadyConnected(t *testing.T) {
	f := newFixture(t)
	f.preinstall(t)
	f.before = connectedStatus

	res, err := f.p.Provision(context.Background())
	require.NoError(t, err)

	exe := filepath.Join(f.folder(), ExeName)
	assert.Equal(t, []string{
		exe + " service install",
		exe + " service start",
		exe + " status",
	}, f.runner.Commands())
	assert.True(t, f.runner.Calls[0].Opts.IgnoreError)
	assert.True(t, f.runner.Calls[1].Opts.IgnoreError)

	assert.Equal(t, exe, res.Exe)
	assert.Equal(t, Status{Connected: true, IP: "100.64.0.5"}, res.Status)
	assert.Empty(t, f.fetcher.Requested())
	assert.Empty(t, f.releases.Lookups)
}

func TestProvisionUpUsesEffectiveKey(t *testing.T) {
	tests := []struct {
		name     string
		enroll   bool
		override string
		want     string
	}{
		{"subscriber", true, "", "SUBSCRIBER"},
		{"guest", false, "", "GUEST"},
		{"override", false, "ABC123", "ABC123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.preinstall(t)
			f.p.Config.Enroll = tt.enroll
			f.p.Config.NetbirdKey = tt.override

			res, err := f.p.Provision(context.Background())
			require.NoError(t, err)

			exe := filepath.Join(f.folder(), ExeName)
			assert.Contains(t, f.runner.Commands(),
				exe+" up --management-url https://mgmt.example.com:443 --setup-key "+tt.want)
			assert.Equal(t, "100.64.0.5", res.Status.IP)
		})
	}
}

func TestProvisionNoIPIsSoft(t *testing.T) {
	f := newFixture(t)
	f.preinstall(t)
	f.after = disconnected

	res, err := f.p.Provision(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.Status.IP)
	assert.False(t, res.Status.Connected)
}

func TestProvisionUpFailure(t *testing.T) {
	f := newFixture(t)
	f.preinstall(t)
	f.runner.Handler = func(c testutil.Call) (common.Result, error) {
		switch c.Args[0] {
		case "status":
			return common.Result{Stdout: needsLogin}, nil
		case "up":
			return common.Result{ExitCode: 1}, &common.CommandError{Cmd: c.String(), ExitCode: 1}
		}
		return common.Result{}, nil
	}

	_, err := f.p.Provision(context.Background())
	var cmdErr *common.CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, 1, cmdErr.ExitCode)
}

func TestProvisionDownloadsRelease(t *testing.T) {
	f := newFixture(t)
	f.serveRelease(t)

	_, err := f.p.Provision(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"netbirdio/netbird"}, f.releases.Lookups)
	assert.Equal(t, []string{netbirdURL, wintunURL}, f.fetcher.Requested())

	b, err := os.ReadFile(filepath.Join(f.folder(), ExeName))
	require.NoError(t, err)
	assert.Equal(t, "downloaded", string(b))

	b, err = os.ReadFile(filepath.Join(f.folder(), wintunDLL))
	require.NoError(t, err)
	assert.Equal(t, "dll-amd64", string(b))

	left, err := os.ReadDir(f.temp)
	require.NoError(t, err)
	assert.Empty(t, left, "temporary archives and extraction folders are removed")
}

func TestProvisionWintunArchitecture(t *testing.T) {
	for goarch, want := range map[string]string{"386": "dll-x86", "arm64": "dll-arm64", "arm": "dll-arm"} {
		t.Run(goarch, func(t *testing.T) {
			f := newFixture(t)
			f.serveRelease(t)
			f.p.GOARCH = goarch

			_, err := f.p.Provision(context.Background())
			require.NoError(t, err)

			b, err := os.ReadFile(filepath.Join(f.folder(), wintunDLL))
			require.NoError(t, err)
			assert.Equal(t, want, string(b))
		})
	}
}

func TestProvisionUnsupportedArchitecture(t *testing.T) {
	f := newFixture(t)
	f.serveRelease(t)
	f.p.GOARCH = "mips64"

	_, err := f.p.Provision(context.Background())
	require.ErrorIs(t, err, common.ErrUnsupportedArch)
	assert.NotContains(t, f.fetcher.Requested(), wintunURL)
}

func TestProvisionKeepsExistingWintun(t *testing.T) {
	f := newFixture(t)
	f.serveRelease(t)
	require.NoError(t, os.MkdirAll(f.folder(), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(f.folder(), wintunDLL), []byte("present"), 0o644))

	_, err := f.p.Provision(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{netbirdURL}, f.fetcher.Requested())
	b, err := os.ReadFile(filepath.Join(f.folder(), wintunDLL))
	require.NoError(t, err)
	assert.Equal(t, "present", string(b))
}

func TestProvisionArchiveWithoutBinary(t *testing.T) {
	f := newFixture(t)
	f.fetcher.Files[netbirdURL] = []byte("tarball")

	_, err := f.p.Provision(context.Background())
	require.ErrorIs(t, err, errNoBinaryInArchive)

	left, err := os.ReadDir(f.temp)
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestProvisionLocalInstaller(t *testing.T) {
	f := newFixture(t)
	pkg := filepath.Join(f.work, "netbird_installer_0.30.1_windows_amd64.exe")
	require.NoError(t, os.WriteFile(pkg, []byte("setup"), 0o755))

	handler := f.runner.Handler
	f.runner.Handler = func(c testutil.Call) (common.Result, error) {
		if c.Name == pkg {
			require.NoError(t, os.MkdirAll(f.folder(), 0o755))
			require.NoError(t, os.WriteFile(filepath.Join(f.folder(), ExeName), []byte("local"), 0o755))
			return common.Result{}, nil
		}
		return handler(c)
	}

	_, err := f.p.Provision(context.Background())
	require.NoError(t, err)

	require.NotEmpty(t, f.runner.Calls)
	assert.Equal(t, pkg, f.runner.Calls[0].Name)
	assert.True(t, f.runner.Calls[0].Opts.Verbose)
	assert.Empty(t, f.fetcher.Requested())
	assert.Empty(t, f.releases.Lookups)
}

func TestProvisionAddsFolderToPath(t *testing.T) {
	f := newFixture(t)
	f.preinstall(t)
	f.p.Config.AddToPath = true

	f.platform.On("SystemPath").Return(`C:\Windows\system32;C:\Windows`, nil).Once()
	f.platform.On("SetSystemPath", `C:\Windows\system32;C:\Windows;`+f.folder()).Return(nil).Once()
	f.platform.On("BroadcastEnvironmentChange").Return(nil).Once()

	_, err := f.p.Provision(context.Background())
	require.NoError(t, err)
	f.platform.AssertExpectations(t)
}
