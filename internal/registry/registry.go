package registry

import (
	"fmt"

	"github.com/jetrmm/rs-installer/agent/common"
)

var (
	platformProvider PlatformProvider
)

type PlatformProvider interface {
	Platform() (common.Platform, error)
}

func Register(provider interface{}) {
	if p, ok := provider.(PlatformProvider); ok {
		if platformProvider != nil {
			panic(fmt.Sprintf("PlatformProvider already registered: %v", platformProvider))
		}
		platformProvider = p
	}
}

func GetPlatformProvider() PlatformProvider { return platformProvider }
