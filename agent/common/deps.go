package common

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Deps are the collaborators shared by every provisioning step
type Deps struct {
	Runner   Runner
	Fetcher  Fetcher
	Folders  *FolderResolver
	Paths    HostPaths
	Platform Platform
	Logger   logrus.FieldLogger
	// Out receives operator-facing messages
	Out io.Writer
}

// Cleanup removes temporary files, reporting failures as warnings only
func (d Deps) Cleanup(paths ...string) {
	if err := RemoveAll(paths...); err != nil {
		d.Logger.Warnln("Cleanup failed:", err)
	}
}
