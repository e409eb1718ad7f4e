package common

import (
	"context"
	"fmt"
	"os"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

const UserAgent = "AeonRemoteSetup/1.0"

type Fetcher interface {
	Download(ctx context.Context, url, path string) error
}

// Downloader fetches release assets to local files
type Downloader struct {
	client *resty.Client
	logger logrus.FieldLogger
}

func NewDownloader(logger logrus.FieldLogger) *Downloader {
	client := resty.New()
	client.SetCloseConnection(true)
	client.SetHeader("User-Agent", UserAgent)
	client.SetDebug(isDebug(logger))
	return &Downloader{client: client, logger: logger}
}

// Download saves url to path, which is created or truncated
func (d *Downloader) Download(ctx context.Context, url, path string) error {
	d.logger.Infoln("Downloading:", url)

	r, err := d.client.R().SetContext(ctx).SetOutput(path).Get(url)
	if err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("download %s: %w", url, err)
	}
	if r.IsError() {
		_ = os.Remove(path)
		return fmt.Errorf("download %s: unexpected HTTP status: %d", url, r.StatusCode())
	}

	d.logger.Debugf("Downloaded %s to %s", url, path)
	return nil
}

func isDebug(logger logrus.FieldLogger) bool {
	switch l := logger.(type) {
	case *logrus.Logger:
		return l.IsLevelEnabled(logrus.DebugLevel)
	case *logrus.Entry:
		return l.Logger.IsLevelEnabled(logrus.DebugLevel)
	}
	return false
}
