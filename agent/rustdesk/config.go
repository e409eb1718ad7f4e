package rustdesk

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const rendezvousPort = 21116

// mainConfig is RustDesk.toml
type mainConfig struct {
	Password string `toml:"password"`
	Salt     string `toml:"salt"`
}

// networkConfig is RustDesk2.toml
type networkConfig struct {
	RendezvousServer string         `toml:"rendezvous_server"`
	NatType          int            `toml:"nat_type"`
	Serial           int            `toml:"serial"`
	UnlockPin        string         `toml:"unlock_pin"`
	TrustedDevices   string         `toml:"trusted_devices"`
	Options          networkOptions `toml:"options"`
}

type networkOptions struct {
	LocalIPAddr                   string `toml:"local-ip-addr"`
	CustomRendezvousServer        string `toml:"custom-rendezvous-server"`
	VerificationMethod            string `toml:"verification-method"`
	AV1Test                       string `toml:"av1-test"`
	RelayServer                   string `toml:"relay-server"`
	AllowRemoteConfigModification string `toml:"allow-remote-config-modification"`
	EnableLANDiscovery            string `toml:"enable-lan-discovery"`
	Key                           string `toml:"key"`
}

func newNetworkConfig(host, localIP, key string) networkConfig {
	return networkConfig{
		RendezvousServer: fmt.Sprintf("%s:%d", host, rendezvousPort),
		NatType:          1,
		Options: networkOptions{
			LocalIPAddr:                   localIP,
			CustomRendezvousServer:        host,
			VerificationMethod:            "use-both-passwords",
			AV1Test:                       "Y",
			RelayServer:                   host,
			AllowRemoteConfigModification: "Y",
			EnableLANDiscovery:            "N",
			Key:                           key,
		},
	}
}

func writeTOML(path string, v interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	enc := toml.NewEncoder(f)
	enc.Indent = ""
	if err := enc.Encode(v); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}
