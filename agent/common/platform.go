package common

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// Platform isolates the OS facilities the installer needs beyond files and processes
type Platform interface {
	IsElevated() (bool, error)
	SystemPath() (string, error)
	SetSystemPath(value string) error
	BroadcastEnvironmentChange() error
	ServiceStatus(name string) (string, error)
	// Alert shows a blocking dialog when a desktop is available. It reports whether one was shown.
	Alert(title, msg string) bool
}

// AddToSystemPath appends folder to the machine PATH unless it is already listed.
// It reports whether the value was changed.
func AddToSystemPath(p Platform, folder string, logger logrus.FieldLogger) (bool, error) {
	current, err := p.SystemPath()
	if err != nil {
		return false, fmt.Errorf("failed to read system PATH: %w", err)
	}

	for _, entry := range strings.Split(current, ";") {
		if entry != "" && strings.EqualFold(entry, folder) {
			logger.Infof("'%s' is already in system PATH", folder)
			return false, nil
		}
	}

	updated := strings.TrimRight(current, ";") + ";" + folder
	if current == "" {
		updated = folder
	}
	if err := p.SetSystemPath(updated); err != nil {
		return false, fmt.Errorf("failed to write system PATH: %w", err)
	}
	logger.Infof("Added '%s' to system PATH", folder)

	if err := p.BroadcastEnvironmentChange(); err != nil {
		logger.Warnln("Environment change broadcast failed:", err)
	}
	return true, nil
}
