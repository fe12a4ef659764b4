package main

import (
	"github.com/spf13/cobra"

	"github.com/tturner/yangfuzz/internal/app"
)

func newSendCmd() *cobra.Command {
	flags := &commonFlags{}
	var datastore, outputDir, pcapFile, captureIface string
	var noProgress, stopOnError, doCapture bool

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send the initial instance of every entry with edit-config",
		Long: `Open a NETCONF session with the target, resolve the module's features from
it, and send the initial instance of every skeleton entry as an
<edit-config>. Replies are logged raw at debug level. With --output-dir the
run metadata, per-request metrics, skeleton report and raw replies are
kept on disk. --capture records the session's TCP traffic to a pcap file
(root or CAP_NET_RAW required) and prints a packet summary afterwards.`,
		Example: `  yangfuzz send --config campaign.yaml --verbose
  yangfuzz send --module example --search-dir ./yang --host 192.0.2.10 --user admin --datastore candidate
  sudo yangfuzz send --config campaign.yaml --output-dir runs/1 --capture`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if handleHelpArg(cmd, args) {
				return nil
			}
			opts, err := flags.resolve(cmd)
			if err != nil {
				return err
			}
			_, err = app.RunSend(app.SendOptions{
				Options:      opts,
				Datastore:    datastore,
				NoProgress:   noProgress,
				StopOnError:  stopOnError,
				OutputDir:    outputDir,
				Capture:      doCapture,
				PCAPFile:     pcapFile,
				CaptureIface: captureIface,
				Version:      version,
			})
			return err
		},
	}

	addCommonFlags(cmd, flags)
	addTargetFlags(cmd, flags)
	addModuleFlags(cmd, flags)
	addGeneratorFlags(cmd, flags)
	cmd.Flags().StringVar(&datastore, "datastore", "", "edit-config target: running|candidate|startup")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable the progress bar")
	cmd.Flags().BoolVar(&stopOnError, "stop-on-error", false, "Stop at the first failed request")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Write run.json, summary, metrics, skeleton report and replies here")
	cmd.Flags().BoolVar(&doCapture, "capture", false, "Record the session to session.pcap in --output-dir")
	cmd.Flags().StringVar(&pcapFile, "pcap", "", "Record the session to this pcap file (implies --capture)")
	cmd.Flags().StringVar(&captureIface, "capture-interface", "", "Capture interface (default: the one routing to the target)")

	return cmd
}
