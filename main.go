package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/jetrmm/rs-installer/agent"
	"github.com/jetrmm/rs-installer/agent/common"
	"github.com/jetrmm/rs-installer/agent/config"
	"github.com/jetrmm/rs-installer/agent/rustdesk"
	_ "github.com/jetrmm/rs-installer/agent/windows"
	"github.com/jetrmm/rs-installer/internal/registry"
)

const envPrefix = "RSI_"

var (
	version = "1.0.0"
	log     = logrus.New()
	logFile io.Closer

	exitFunc = os.Exit
	runFunc  = run
)

// fatal errors are reported without the usage hint
var fatal = []error{
	agent.ErrNotWindows,
	agent.ErrNotElevated,
	config.ErrPlaceholderSecret,
	rustdesk.ErrStaleInstall,
	common.ErrUnsupportedArch,
}

type options struct {
	guest       bool
	netbirdKey  string
	mgmtURL     string
	rustdeskKey string
	configPath  string
	logLevel    string
	logFile     string
	addToPath   bool
	silent      bool
	showVersion bool
}

func main() {
	Execute(os.Args[1:], os.Stdout, os.Stderr)
}

// Execute runs the installer with args and exits with 1 on failure
func Execute(args []string, stdout, stderr io.Writer) {
	cmd := newRootCmd()
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)

	if wantsHelp(args) {
		_ = cmd.Help()
		return
	}

	err := cmd.ExecuteContext(context.Background())
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	if err == nil {
		return
	}

	fmt.Fprintln(stderr, "Error:", err)
	if !isFatal(err) {
		fmt.Fprintf(stderr, "Run '%s --help' for usage.\n", common.AGENT_FILENAME)
	}
	exitFunc(1)
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   common.AGENT_FILENAME + " [options]",
		Short: "Installs Aeon Remote Support on this machine",
		Long: `Installs and connects the NetBird VPN client and the RustDesk remote desktop
agent, then subscribes this machine to Aeon Remote Support.

Must be run as Administrator on Windows. -? and --? also show this help.`,
		SilenceUsage:       true,
		SilenceErrors:      true,
		FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.showVersion {
				agent.ShowVersionInfo(cmd.OutOrStdout(), version)
				return nil
			}

			SetFlagsFromEnvVars(cmd)
			setupLogging(opts.logLevel, opts.logFile, cmd.OutOrStdout())

			cfg, err := buildConfig(cmd.Flags(), opts)
			if err != nil {
				return err
			}
			logger := log.WithField("run", ulid.Make().String())
			return runFunc(cmd.Context(), cfg, logger)
		},
	}

	f := cmd.Flags()
	f.BoolVar(&opts.guest, "guest", false, "Don't subscribe to Aeon Remote Support")
	f.StringVar(&opts.netbirdKey, "netbird-key", "", "NetBird setup key")
	f.StringVar(&opts.mgmtURL, "mgmt-url", "", "NetBird management URL")
	f.StringVar(&opts.rustdeskKey, "rustdesk-key", "", "RustDesk server public key")
	f.StringVar(&opts.configPath, "config", "", "YAML file overriding the built-in settings")
	f.StringVar(&opts.logLevel, "log-level", "info", "Log level: panic, fatal, error, warn, info, debug, trace")
	f.StringVar(&opts.logFile, "log-file", "console", "Log destination: console or a file path")
	f.BoolVar(&opts.addToPath, "add-to-path", false, "Add the NetBird folder to the system PATH")
	f.BoolVar(&opts.silent, "silent", false, "Do not popup any message boxes during installation")
	f.BoolVar(&opts.showVersion, "version", false, "Prints installer version and exits")

	return cmd
}

// wantsHelp catches the help spellings pflag can't parse
func wantsHelp(args []string) bool {
	for _, a := range args {
		if a == "-?" || a == "--?" {
			return true
		}
	}
	return false
}

// buildConfig layers defaults, the optional config file and the flags that were set
func buildConfig(flags *pflag.FlagSet, opts *options) (*config.InstallerConfig, error) {
	cfg := config.Defaults()
	if opts.configPath != "" {
		if err := cfg.LoadFile(opts.configPath); err != nil {
			return nil, err
		}
	}

	if flags.Changed("guest") {
		cfg.Enroll = !opts.guest
	}
	if flags.Changed("netbird-key") {
		cfg.NetbirdKey = opts.netbirdKey
	}
	if flags.Changed("mgmt-url") {
		cfg.MgmtURL = opts.mgmtURL
	}
	if flags.Changed("rustdesk-key") {
		cfg.RustdeskKey = opts.rustdeskKey
	}
	if flags.Changed("add-to-path") {
		cfg.AddToPath = opts.addToPath
	}
	if flags.Changed("silent") {
		cfg.Silent = opts.silent
	}
	return cfg, nil
}

func run(ctx context.Context, cfg *config.InstallerConfig, logger logrus.FieldLogger) error {
	pp := registry.GetPlatformProvider()
	if pp == nil {
		return errors.New("no platform provider registered")
	}
	platform, err := pp.Platform()
	if err != nil {
		return err
	}

	return agent.New(cfg, platform, logger).Run(ctx)
}

func isFatal(err error) bool {
	for _, f := range fatal {
		if errors.Is(err, f) {
			return true
		}
	}
	return false
}

// SetFlagsFromEnvVars reads unset flags from RSI_ prefixed environment variables
func SetFlagsFromEnvVars(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			return
		}
		envVar := FlagNameToEnvVar(f.Name, envPrefix)
		if value, present := os.LookupEnv(envVar); present {
			if err := flags.Set(f.Name, value); err != nil {
				log.Infof("unable to configure flag %s using variable %s, err: %v", f.Name, envVar, err)
			}
		}
	})
}

// FlagNameToEnvVar converts flag name to environment var name adding a prefix,
// replacing dashes and making all uppercase (e.g. mgmt-url is converted to RSI_MGMT_URL)
func FlagNameToEnvVar(cmdFlag string, prefix string) string {
	parsed := strings.ReplaceAll(cmdFlag, "-", "_")
	upper := strings.ToUpper(parsed)
	return prefix + upper
}

func setupLogging(level, to string, console io.Writer) {
	ll, err := logrus.ParseLevel(level)
	if err != nil {
		ll = logrus.InfoLevel
	}
	log.SetLevel(ll)

	if to == "" || to == "console" {
		log.SetOutput(console)
		return
	}

	lj := &lumberjack.Logger{
		Filename:   filepath.ToSlash(to),
		MaxSize:    5, // MB
		MaxBackups: 10,
		MaxAge:     30, // days
		Compress:   true,
	}
	logFile = lj
	log.SetOutput(io.MultiWriter(console, lj))
}
