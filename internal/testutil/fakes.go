// Package testutil holds fakes for the collaborators in agent/common.
package testutil

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/jetrmm/rs-installer/agent/common"
)

type Call struct {
	Name string
	Args []string
	Opts common.RunOptions
}

func (c Call) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// FakeRunner records every command. Handler, when set, decides the outcome.
type FakeRunner struct {
	mu      sync.Mutex
	Calls   []Call
	Handler func(c Call) (common.Result, error)
}

func (f *FakeRunner) Run(_ context.Context, name string, args []string, opts common.RunOptions) (common.Result, error) {
	c := Call{Name: name, Args: append([]string(nil), args...), Opts: opts}

	f.mu.Lock()
	f.Calls = append(f.Calls, c)
	f.mu.Unlock()

	if f.Handler == nil {
		return common.Result{}, nil
	}
	return f.Handler(c)
}

// Commands returns the recorded calls as space-joined command lines
func (f *FakeRunner) Commands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]string, 0, len(f.Calls))
	for _, c := range f.Calls {
		out = append(out, c.String())
	}
	return out
}

// FakeFetcher serves Files by URL and records every request
type FakeFetcher struct {
	mu    sync.Mutex
	Files map[string][]byte
	URLs  []string
}

func (f *FakeFetcher) Download(_ context.Context, url, path string) error {
	f.mu.Lock()
	f.URLs = append(f.URLs, url)
	f.mu.Unlock()

	b, ok := f.Files[url]
	if !ok {
		return fmt.Errorf("download %s: unexpected HTTP status: 404", url)
	}
	return os.WriteFile(path, b, 0o644)
}

func (f *FakeFetcher) Requested() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.URLs...)
}

type MockPlatform struct {
	mock.Mock
}

func (m *MockPlatform) IsElevated() (bool, error) {
	args := m.Called()
	return args.Bool(0), args.Error(1)
}

func (m *MockPlatform) SystemPath() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

func (m *MockPlatform) SetSystemPath(value string) error {
	return m.Called(value).Error(0)
}

func (m *MockPlatform) BroadcastEnvironmentChange() error {
	return m.Called().Error(0)
}

func (m *MockPlatform) ServiceStatus(name string) (string, error) {
	args := m.Called(name)
	return args.String(0), args.Error(1)
}

func (m *MockPlatform) Alert(title, msg string) bool {
	return m.Called(title, msg).Bool(0)
}
