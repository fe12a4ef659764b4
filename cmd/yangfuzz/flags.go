package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tturner/yangfuzz/internal/app"
)

// commonFlags binds the flags shared by the module commands.
type commonFlags struct {
	opts app.Options
	seed int64
}

func addCommonFlags(cmd *cobra.Command, f *commonFlags) {
	fs := cmd.Flags()
	fs.StringVar(&f.opts.ConfigPath, "config", "", "Campaign file (YAML)")
	fs.BoolVar(&f.opts.QuickStart, "quick-start", false, "Write a default campaign file if --config does not exist")
	fs.StringVar(&f.opts.LogFile, "log-file", "", "Log file path (default: stderr only)")
	fs.BoolVar(&f.opts.Verbose, "verbose", false, "Enable verbose output")
	fs.BoolVar(&f.opts.Debug, "debug", false, "Enable debug output")
}

func addTargetFlags(cmd *cobra.Command, f *commonFlags) {
	fs := cmd.Flags()
	fs.StringVar(&f.opts.Host, "host", "", "NETCONF server host")
	fs.IntVar(&f.opts.Port, "port", 0, "NETCONF SSH port (default 830)")
	fs.StringVar(&f.opts.User, "user", "", "SSH user")
	fs.StringVar(&f.opts.Password, "password", "", "SSH password")
	fs.StringVar(&f.opts.KeyFile, "key", "", "SSH private key file")
	fs.BoolVar(&f.opts.Insecure, "insecure", false, "Skip SSH host key verification")
}

func addModuleFlags(cmd *cobra.Command, f *commonFlags) {
	fs := cmd.Flags()
	fs.StringVar(&f.opts.Module, "module", "", "YANG module name or .yang file")
	fs.StringVar(&f.opts.Namespace, "namespace", "", "Override the module namespace")
	fs.StringSliceVar(&f.opts.SearchDirs, "search-dir", nil, "YANG search directory (repeatable)")
	fs.StringVar(&f.opts.CapabilitiesFile, "capabilities-file", "", "Saved server hello or capability list for offline resolution")
	fs.StringVar(&f.opts.YangLibraryFile, "yang-library-file", "", "Saved yang-library reply for offline resolution")
	fs.BoolVar(&f.opts.Offline, "offline", false, "Do not contact the target")
}

func addGeneratorFlags(cmd *cobra.Command, f *commonFlags) {
	fs := cmd.Flags()
	fs.StringVar(&f.opts.Filter, "filter", "", "Restrict the skeleton to a data path, e.g. /mod:cfg/item")
	fs.Int64Var(&f.seed, "seed", 0, "Run seed for reproducible values")
	fs.IntVar(&f.opts.MaxMutations, "max-mutations", 0, "Cap on each generator's mutation sequence (default 1000)")
}

// resolve finalizes f after flag parsing.
func (f *commonFlags) resolve(cmd *cobra.Command) (app.Options, error) {
	if f.opts.ConfigPath == "" && f.opts.Module == "" {
		return app.Options{}, missingFlagError(cmd, "--module or --config")
	}
	if fl := cmd.Flags().Lookup("seed"); fl != nil && fl.Changed {
		seed := f.seed
		f.opts.Seed = &seed
	}
	f.opts.Out = cmd.OutOrStdout()
	return f.opts, nil
}

func handleHelpArg(cmd *cobra.Command, args []string) bool {
	if len(args) == 0 {
		return false
	}
	if strings.EqualFold(args[0], "help") {
		_ = cmd.Help()
		return true
	}
	return false
}

func missingFlagError(cmd *cobra.Command, flag string) error {
	_ = cmd.Help()
	return fmt.Errorf("required flag %s not set", flag)
}
