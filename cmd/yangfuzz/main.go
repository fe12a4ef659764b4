package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "yangfuzz",
		Short: "YANG-driven NETCONF message generator",
		Long: `yangfuzz reads a YANG module, resolves which of its features the target
supports, and builds a skeleton of schema-conformant NETCONF payloads whose
leaf values come from typed value generators.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSkeletonCmd())
	rootCmd.AddCommand(newRenderCmd())
	rootCmd.AddCommand(newBrowseCmd())
	rootCmd.AddCommand(newFeaturesCmd())
	rootCmd.AddCommand(newSendCmd())
	rootCmd.AddCommand(newFetchModulesCmd())
	rootCmd.AddCommand(newConfigCmd())

	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if cmd != rootCmd {
			fmt.Fprint(cmd.OutOrStdout(), cmd.UsageString())
			return
		}
		fmt.Fprintf(os.Stdout, "Usage:\n  %s <command> [options]\n\n", cmd.Name())
		fmt.Fprintf(os.Stdout, "Available Commands:\n")
		for _, subCmd := range cmd.Commands() {
			if !subCmd.Hidden {
				fmt.Fprintf(os.Stdout, "  %-15s %s\n", subCmd.Name(), subCmd.Short)
			}
		}
		fmt.Fprintf(os.Stdout, "\nUse \"%s help <command>\" for more information about a command.\n", cmd.Name())
	})
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
