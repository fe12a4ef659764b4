package app

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/tturner/yangfuzz/internal/config"
	yferrors "github.com/tturner/yangfuzz/internal/errors"
	"github.com/tturner/yangfuzz/internal/transport"
)

// FetchOptions configure the fetch-modules command.
type FetchOptions struct {
	Options
	From    string // "local" or an ssh:// spec; defaults to the campaign target
	Dir     string // Remote directory; defaults to target.modules_dir
	Dest    string // Local directory; defaults to the first search dir
	Pattern string
}

// RunFetchModules copies YANG files from the target into a search
// directory and returns the local paths.
func RunFetchModules(opts FetchOptions) ([]string, error) {
	logger, err := newLogger(opts.Options)
	if err != nil {
		return nil, err
	}
	defer logger.Close()

	cfg, err := LoadCampaign(opts.Options)
	if err != nil {
		return nil, err
	}

	var src transport.ModuleSource
	switch {
	case opts.From != "" && transport.IsLocal(opts.From):
		src = transport.NewLocal(transport.Options{Timeout: cfg.Timeout()})
	case opts.From != "":
		s, err := transport.ParseSSH(opts.From, sshOptions(cfg))
		if err != nil {
			return nil, yferrors.WrapConfigError(err, opts.From)
		}
		src = s
	case cfg.Target.Host != "":
		s, err := transport.NewSSH(cfg.Target.Host, sshOptions(cfg))
		if err != nil {
			return nil, yferrors.WrapConfigError(err, "target")
		}
		src = s
	default:
		return nil, fmt.Errorf("fetch-modules requires --from or a target host")
	}
	defer src.Close()

	dir := opts.Dir
	if dir == "" {
		dir = cfg.Target.ModulesDir
	}
	if dir == "" {
		return nil, fmt.Errorf("no remote module directory (--dir or target.modules_dir)")
	}
	dest := opts.Dest
	if dest == "" {
		dest = cfg.Module.SearchDirs[0]
	}
	pattern := opts.Pattern
	if pattern == "" {
		pattern = "*.yang"
	}
	if err := os.MkdirAll(dest, 0755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dest, err)
	}

	ctx, cancel := signalContext(logger)
	defer cancel()

	logger.Info("Fetching %s from %s:%s into %s", pattern, src, dir, dest)
	paths, err := src.FetchDir(ctx, dir, dest, pattern)
	if err != nil {
		if ssh, ok := src.(*transport.SSH); ok {
			return paths, yferrors.WrapNetworkError(err, ssh.Host(), ssh.Port())
		}
		return paths, err
	}

	var total uint64
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil {
			total += uint64(info.Size())
		}
		logger.Verbose("  %s", p)
	}
	fmt.Fprintf(opts.out(), "Fetched %d files (%s) into %s\n", len(paths), humanize.Bytes(total), dest)
	return paths, nil
}

// InitConfig writes the default campaign file. Existing files are kept
// unless force is set.
func InitConfig(path string, force bool) error {
	return InitConfigWith(path, force, nil)
}

// InitConfigWith lets edit adjust the default campaign before it is
// validated and written. ui.RunCampaignForm is the interactive editor.
func InitConfigWith(path string, force bool, edit func(*config.Campaign) error) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	cfg := config.CreateDefaultCampaign()
	if edit != nil {
		if err := edit(cfg); err != nil {
			return err
		}
	}
	if err := config.ValidateCampaign(cfg); err != nil {
		return yferrors.WrapConfigError(err, path)
	}
	return config.WriteCampaign(path, cfg)
}
