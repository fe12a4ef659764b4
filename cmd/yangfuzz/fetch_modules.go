package main

import (
	"github.com/spf13/cobra"

	"github.com/tturner/yangfuzz/internal/app"
)

func newFetchModulesCmd() *cobra.Command {
	flags := &commonFlags{}
	fetch := app.FetchOptions{}

	cmd := &cobra.Command{
		Use:   "fetch-modules",
		Short: "Copy YANG modules from the target over SFTP",
		Example: `  yangfuzz fetch-modules --host 192.0.2.10 --user admin --dir /usr/share/yang/modules --dest ./yang
  yangfuzz fetch-modules --from ssh://admin@192.0.2.10:830 --dest ./yang
  yangfuzz fetch-modules --from local --dir /opt/yang --dest ./yang`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if handleHelpArg(cmd, args) {
				return nil
			}
			if fetch.From == "" && flags.opts.Host == "" && flags.opts.ConfigPath == "" {
				return missingFlagError(cmd, "--from, --host or --config")
			}
			if flags.opts.Module == "" {
				// The campaign needs a module name to validate; the fetch
				// itself does not use it.
				flags.opts.Module = "fetch"
			}
			opts, err := flags.resolve(cmd)
			if err != nil {
				return err
			}
			fetch.Options = opts
			_, err = app.RunFetchModules(fetch)
			return err
		},
	}

	addCommonFlags(cmd, flags)
	addTargetFlags(cmd, flags)
	cmd.Flags().StringVar(&fetch.From, "from", "", "Source: \"local\" or ssh://user@host:port (default: the campaign target)")
	cmd.Flags().StringVar(&fetch.Dir, "dir", "", "Remote module directory (default: target.modules_dir)")
	cmd.Flags().StringVar(&fetch.Dest, "dest", "", "Local directory (default: first search dir)")
	cmd.Flags().StringVar(&fetch.Pattern, "pattern", "*.yang", "File name pattern")

	return cmd
}
