package testutil

import (
	"context"
	"fmt"

	goversion "github.com/hashicorp/go-version"
)

// FakeReleases answers latest-release lookups from Tags, keyed by repo
type FakeReleases struct {
	Tags    map[string]string
	Lookups []string
}

func (f *FakeReleases) Latest(_ context.Context, repo string) (*goversion.Version, error) {
	f.Lookups = append(f.Lookups, repo)
	tag, ok := f.Tags[repo]
	if !ok {
		return nil, fmt.Errorf("release lookup for %s: unexpected HTTP status: 404", repo)
	}
	return goversion.NewVersion(tag)
}
