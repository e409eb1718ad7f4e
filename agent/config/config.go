package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Compiled-in secrets, set at build time with
// -ldflags "-X github.com/jetrmm/rs-installer/agent/config.NetbirdGuestKey=..."
//
// NetbirdGuestKey and NetbirdSubscriberKey are setup keys created in the NetBird dashboard that
// assign the peer to a group. They may be identical when no distinction is needed.
// RustdeskKey is the content of id_ed25519.pub on the RustDesk server.
// ValetURL is the subscription endpoint on the support VPN.
var (
	NetbirdGuestKey      = "<ENTER-GUEST-KEY>"
	NetbirdSubscriberKey = "<ENTER-SUBSCRIBER-KEY>"
	MgmtURL              = "https://<netbird-management>:<port>"
	RustdeskKey          = "<ENTER-RUSTDESK-PUBLIC-KEY>"
	ValetURL             = "http://<valet-vpn-url>:<port>"
)

var ErrPlaceholderSecret = errors.New("installer was built with placeholder secrets")

// Endpoints are the non-secret network locations. Download URLs are templates
// where {version} is replaced by the release being installed.
type Endpoints struct {
	GitHubAPI        string `yaml:"github_api"`
	NetbirdRepo      string `yaml:"netbird_repo"`
	NetbirdDownload  string `yaml:"netbird_download"`
	RustdeskRepo     string `yaml:"rustdesk_repo"`
	RustdeskDownload string `yaml:"rustdesk_download"`
	WintunVersion    string `yaml:"wintun_version"`
	WintunDownload   string `yaml:"wintun_download"`
	RendezvousHost   string `yaml:"rendezvous_host"`
}

// InstallerConfig is built once from defaults, an optional file and the command line.
// NetbirdKey, when set, overrides the key picked by Enroll.
type InstallerConfig struct {
	Enroll          bool      `yaml:"enroll"`
	NetbirdKey      string    `yaml:"netbird_key"`
	GuestKey        string    `yaml:"guest_key"`
	SubscriberKey   string    `yaml:"subscriber_key"`
	MgmtURL         string    `yaml:"mgmt_url"`
	RustdeskKey     string    `yaml:"rustdesk_key"`
	SubscriptionURL string    `yaml:"subscription_url"`
	AddToPath       bool      `yaml:"add_to_path"`
	Silent          bool      `yaml:"silent"`
	Endpoints       Endpoints `yaml:"endpoints"`
}

func Defaults() *InstallerConfig {
	return &InstallerConfig{
		Enroll:          true,
		GuestKey:        NetbirdGuestKey,
		SubscriberKey:   NetbirdSubscriberKey,
		MgmtURL:         MgmtURL,
		RustdeskKey:     RustdeskKey,
		SubscriptionURL: ValetURL,
		Endpoints: Endpoints{
			GitHubAPI:        "https://api.github.com",
			NetbirdRepo:      "netbirdio/netbird",
			NetbirdDownload:  "https://github.com/netbirdio/netbird/releases/download/v{version}/netbird_{version}_windows_amd64_signed.tar.gz",
			RustdeskRepo:     "rustdesk/rustdesk",
			RustdeskDownload: "https://github.com/rustdesk/rustdesk/releases/download/{version}/rustdesk-{version}-x86_64.msi",
			WintunVersion:    "0.14.1",
			WintunDownload:   "https://www.wintun.net/builds/wintun-{version}.zip",
			RendezvousHost:   "support.aeonhacs.vpn",
		},
	}
}

// LoadFile overlays the YAML file at path onto c. Keys missing from the file keep their value.
func (c *InstallerConfig) LoadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// SetupKey is the VPN setup key used when the agent has to enroll
func (c *InstallerConfig) SetupKey() string {
	if c.NetbirdKey != "" {
		return c.NetbirdKey
	}
	if c.Enroll {
		return c.SubscriberKey
	}
	return c.GuestKey
}

// Validate rejects placeholder secrets and malformed URLs
func (c *InstallerConfig) Validate() error {
	secrets := [][2]string{
		{"NetBird setup key", c.SetupKey()},
		{"management URL", c.MgmtURL},
		{"RustDesk server key", c.RustdeskKey},
	}
	if c.Enroll {
		secrets = append(secrets, [2]string{"subscription URL", c.SubscriptionURL})
	}
	for _, s := range secrets {
		if s[1] == "" || strings.Contains(s[1], "<") {
			return fmt.Errorf("%w: %s is not set", ErrPlaceholderSecret, s[0])
		}
	}

	if err := checkURL(c.MgmtURL); err != nil {
		return fmt.Errorf("management URL: %w", err)
	}
	if c.Enroll {
		if err := checkURL(c.SubscriptionURL); err != nil {
			return fmt.Errorf("subscription URL: %w", err)
		}
	}
	return nil
}

func checkURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("invalid URL %q: must begin with https or http", raw)
	}
	return nil
}

// Expand substitutes version into a download URL template
func Expand(template, version string) string {
	return strings.ReplaceAll(template, "{version}", version)
}
