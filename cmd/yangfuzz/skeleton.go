package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/tturner/yangfuzz/internal/app"
)

func newSkeletonCmd() *cobra.Command {
	flags := &commonFlags{}
	var jsonOut, noColor bool
	var reportFile string

	cmd := &cobra.Command{
		Use:   "skeleton",
		Short: "Print the message skeleton of a YANG module",
		Long: `Load a YANG module, resolve the target's feature state, and print one
payload template per top-level entry. Each {{path}} marks a leaf slot; the
generator behind every slot and its initial value are listed below the
template.

Features are resolved from the target's hello (YANG 1.0 modules) or its
yang-library (YANG 1.1 modules). With --capabilities-file or
--yang-library-file the saved data is used instead and no session is opened.`,
		Example: `  # Offline, from a saved hello
  yangfuzz skeleton --module example --search-dir ./yang --capabilities-file hello.xml

  # Against a live target, restricted to one subtree, seeded
  yangfuzz skeleton --config campaign.yaml --filter /example:cfg/item --seed 42

  # Machine-readable report
  yangfuzz skeleton --config campaign.yaml --json > skeleton.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if handleHelpArg(cmd, args) {
				return nil
			}
			opts, err := flags.resolve(cmd)
			if err != nil {
				return err
			}
			return app.RunSkeleton(app.SkeletonOptions{
				Options:    opts,
				JSON:       jsonOut,
				ReportFile: reportFile,
				Color:      !noColor && !jsonOut && isTerminal(os.Stdout),
				Version:    version,
			})
		},
	}

	addCommonFlags(cmd, flags)
	addTargetFlags(cmd, flags)
	addModuleFlags(cmd, flags)
	addGeneratorFlags(cmd, flags)
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the skeleton report as JSON")
	cmd.Flags().StringVar(&reportFile, "report", "", "Also write the JSON report to this file")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	return cmd
}

func newRenderCmd() *cobra.Command {
	flags := &commonFlags{}
	var count int

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print concrete payload instances",
		Long: `Render every skeleton entry with concrete values, one instance per line.
The first instance carries the initial values; each further instance takes
the next value of every slot's mutation sequence.`,
		Example: `  yangfuzz render --module example --search-dir ./yang --offline --seed 1 --count 5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if handleHelpArg(cmd, args) {
				return nil
			}
			opts, err := flags.resolve(cmd)
			if err != nil {
				return err
			}
			return app.RunRender(app.RenderOptions{Options: opts, Count: count})
		},
	}

	addCommonFlags(cmd, flags)
	addTargetFlags(cmd, flags)
	addModuleFlags(cmd, flags)
	addGeneratorFlags(cmd, flags)
	cmd.Flags().IntVar(&count, "count", 1, "Instances per entry")

	return cmd
}

func newBrowseCmd() *cobra.Command {
	flags := &commonFlags{}
	var window int

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse skeleton entries and their instances interactively",
		Long: `Open a terminal browser over the skeleton. Arrow keys pick an entry and
step through its instances, t shows the template, c copies the current
payload to the clipboard.`,
		Example: `  yangfuzz browse --module example --search-dir ./yang --offline --seed 1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if handleHelpArg(cmd, args) {
				return nil
			}
			opts, err := flags.resolve(cmd)
			if err != nil {
				return err
			}
			if !isTerminal(os.Stdout) || !isTerminal(os.Stdin) {
				return fmt.Errorf("browse needs an interactive terminal; use render instead")
			}
			return app.RunBrowse(app.BrowseOptions{Options: opts, Window: window})
		},
	}

	addCommonFlags(cmd, flags)
	addTargetFlags(cmd, flags)
	addModuleFlags(cmd, flags)
	addGeneratorFlags(cmd, flags)
	cmd.Flags().IntVar(&window, "window", 100, "Instances rendered per entry")

	return cmd
}

func newFeaturesCmd() *cobra.Command {
	flags := &commonFlags{}

	cmd := &cobra.Command{
		Use:   "features",
		Short: "Show the feature state of a module on the target",
		Example: `  yangfuzz features --module example --search-dir ./yang --host 192.0.2.10 --user admin
  yangfuzz features --module example --yang-library-file library.xml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if handleHelpArg(cmd, args) {
				return nil
			}
			opts, err := flags.resolve(cmd)
			if err != nil {
				return err
			}
			return app.RunFeatures(app.FeaturesOptions{Options: opts})
		},
	}

	addCommonFlags(cmd, flags)
	addTargetFlags(cmd, flags)
	addModuleFlags(cmd, flags)

	return cmd
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
