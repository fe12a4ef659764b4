package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tturner/yangfuzz/internal/app"
	"github.com/tturner/yangfuzz/internal/ui"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage campaign files",
	}
	cmd.AddCommand(newConfigInitCmd())
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var output string
	var force, interactive bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default campaign file",
		Long: `Write a campaign file with default values. With --interactive a form asks
for the target, module and generator settings first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if interactive {
				err = app.InitConfigWith(output, force, ui.RunCampaignForm)
			} else {
				err = app.InitConfig(output, force)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "yangfuzz.yaml", "Campaign file path")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Fill in the campaign with a form")
	return cmd
}
