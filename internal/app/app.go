// Package app implements the yangfuzz commands on top of the schema,
// feature resolution, assembly and NETCONF packages.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/tturner/yangfuzz/internal/config"
	yferrors "github.com/tturner/yangfuzz/internal/errors"
	"github.com/tturner/yangfuzz/internal/logging"
	"github.com/tturner/yangfuzz/internal/netconf"
	"github.com/tturner/yangfuzz/internal/transport"
)

// Options are shared by every command. Non-zero override fields replace
// the corresponding campaign file values.
type Options struct {
	ConfigPath string
	QuickStart bool
	LogFile    string
	Verbose    bool
	Debug      bool
	Out        io.Writer // Defaults to os.Stdout

	Host     string
	Port     int
	User     string
	Password string
	KeyFile  string
	Insecure bool

	Module     string
	Namespace  string
	SearchDirs []string

	Filter       string
	Seed         *int64
	MaxMutations int

	CapabilitiesFile string
	YangLibraryFile  string
	Offline          bool
}

func (o Options) out() io.Writer {
	if o.Out == nil {
		return os.Stdout
	}
	return o.Out
}

func (o Options) logLevel() logging.LogLevel {
	switch {
	case o.Debug:
		return logging.LogLevelDebug
	case o.Verbose:
		return logging.LogLevelVerbose
	default:
		return logging.LogLevelInfo
	}
}

func newLogger(opts Options) (*logging.Logger, error) {
	logger, err := logging.NewLogger(opts.logLevel(), opts.LogFile)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return logger, nil
}

// LoadCampaign reads the campaign file, if any, and applies the overrides.
// Without a config path the campaign is built from the overrides alone.
func LoadCampaign(opts Options) (*config.Campaign, error) {
	cfg := &config.Campaign{}
	if opts.ConfigPath != "" {
		loaded, err := config.LoadCampaign(opts.ConfigPath, opts.QuickStart)
		if err != nil {
			var ufe yferrors.UserFriendlyError
			if errors.As(err, &ufe) {
				return nil, err
			}
			return nil, yferrors.WrapConfigError(err, opts.ConfigPath)
		}
		cfg = loaded
	}

	if opts.Host != "" {
		cfg.Target.Host = opts.Host
	}
	if opts.Port != 0 {
		cfg.Target.Port = opts.Port
	}
	if opts.User != "" {
		cfg.Target.User = opts.User
	}
	if opts.Password != "" {
		cfg.Target.Password = opts.Password
	}
	if opts.KeyFile != "" {
		cfg.Target.KeyFile = opts.KeyFile
	}
	if opts.Insecure {
		cfg.Target.Insecure = true
		cfg.Target.KnownHosts = ""
	}
	if opts.Module != "" {
		cfg.Module.Name = opts.Module
	}
	if opts.Namespace != "" {
		cfg.Module.Namespace = opts.Namespace
	}
	if len(opts.SearchDirs) > 0 {
		cfg.Module.SearchDirs = opts.SearchDirs
	}
	if opts.Filter != "" {
		cfg.Generator.Filter = opts.Filter
	}
	if opts.Seed != nil {
		seed := *opts.Seed
		cfg.Generator.Seed = &seed
	}
	if opts.MaxMutations != 0 {
		cfg.Generator.MaxMutations = opts.MaxMutations
	}
	if opts.CapabilitiesFile != "" {
		cfg.CapabilitiesFile = opts.CapabilitiesFile
		cfg.YangLibraryFile = ""
	}
	if opts.YangLibraryFile != "" {
		cfg.YangLibraryFile = opts.YangLibraryFile
		cfg.CapabilitiesFile = ""
	}

	config.ApplyDefaults(cfg)
	if err := config.ValidateCampaign(cfg); err != nil {
		path := opts.ConfigPath
		if path == "" {
			path = "command line"
		}
		return nil, yferrors.WrapConfigError(err, path)
	}
	return cfg, nil
}

// online reports whether the command should talk to the target.
func online(opts Options, cfg *config.Campaign) bool {
	if opts.Offline || cfg.Target.Host == "" {
		return false
	}
	return cfg.CapabilitiesFile == "" && cfg.YangLibraryFile == ""
}

func sshOptions(cfg *config.Campaign) transport.SSHOptions {
	o := transport.DefaultSSHOptions()
	o.Timeout = cfg.Timeout()
	o.Port = cfg.Target.Port
	o.User = cfg.Target.User
	o.Password = cfg.Target.Password
	o.KeyFile = cfg.Target.KeyFile
	o.KnownHostsFile = cfg.Target.KnownHosts
	o.InsecureIgnoreHost = cfg.Target.Insecure
	return o
}

// connect opens a NETCONF session with the campaign target. The caller
// closes both the session and the connection.
func connect(ctx context.Context, cfg *config.Campaign, logger *logging.Logger) (*transport.SSH, *netconf.Session, error) {
	conn, err := transport.NewSSH(cfg.Target.Host, sshOptions(cfg))
	if err != nil {
		return nil, nil, yferrors.WrapConfigError(err, "target")
	}
	logger.Verbose("Connecting to %s", conn)
	sess, err := netconf.Dial(ctx, conn, netconf.Options{Logger: logger})
	if err != nil {
		conn.Close()
		return nil, nil, yferrors.WrapNetworkError(err, conn.Host(), conn.Port())
	}
	return conn, sess, nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(logger *logging.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigChan:
			logger.Info("Received interrupt signal, shutting down gracefully...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()
	return ctx, cancel
}
