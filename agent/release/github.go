package release

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	goversion "github.com/hashicorp/go-version"
	"github.com/jetrmm/rs-installer/agent/common"
	"github.com/jetrmm/rs-installer/shared"
	"github.com/sirupsen/logrus"
)

type Source interface {
	Latest(ctx context.Context, repo string) (*goversion.Version, error)
}

// Client looks up published releases on GitHub
type Client struct {
	rc     *resty.Client
	logger logrus.FieldLogger
}

func NewClient(baseURL string, logger logrus.FieldLogger) *Client {
	rc := resty.New()
	rc.SetBaseURL(strings.TrimRight(baseURL, "/"))
	rc.SetCloseConnection(true)
	rc.SetHeader("User-Agent", common.UserAgent)
	rc.SetHeader("Accept", "application/vnd.github+json")
	return &Client{rc: rc, logger: logger}
}

// Latest returns the tag of the latest release of repo ("owner/name")
func (c *Client) Latest(ctx context.Context, repo string) (*goversion.Version, error) {
	r, err := c.rc.R().
		SetContext(ctx).
		SetResult(&shared.Release{}).
		Get(fmt.Sprintf("/repos/%s/releases/latest", repo))
	if err != nil {
		return nil, fmt.Errorf("release lookup for %s: %w", repo, err)
	}
	if r.IsError() {
		return nil, fmt.Errorf("release lookup for %s: unexpected HTTP status: %d", repo, r.StatusCode())
	}

	rel := r.Result().(*shared.Release)
	if rel.TagName == "" {
		return nil, fmt.Errorf("release lookup for %s: no tag_name in response", repo)
	}

	v, err := goversion.NewVersion(rel.TagName)
	if err != nil {
		return nil, fmt.Errorf("release lookup for %s: invalid tag %q: %w", repo, rel.TagName, err)
	}
	c.logger.Debugf("Latest %s release: %s", repo, v.Original())
	return v, nil
}

// Bare returns the tag as published without a leading "v"
func Bare(v *goversion.Version) string {
	return strings.TrimPrefix(v.Original(), "v")
}
