package app

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/tturner/yangfuzz/internal/artifact"
	"github.com/tturner/yangfuzz/internal/capture"
	"github.com/tturner/yangfuzz/internal/metrics"
	"github.com/tturner/yangfuzz/internal/progress"
	"github.com/tturner/yangfuzz/internal/report"
)

// SendOptions configure the send command.
type SendOptions struct {
	Options
	Datastore    string
	NoProgress   bool
	StopOnError  bool
	OutputDir    string // run.json, summary, metrics CSV, skeleton report and raw replies
	Capture      bool   // record the session to a pcap file (needs capture privileges)
	PCAPFile     string // defaults to session.pcap in OutputDir
	CaptureIface string
	Version      string
}

// SendResult summarizes one send run.
type SendResult struct {
	Sent    int
	Failed  int
	Bytes   uint64
	Summary *metrics.Summary
	PCAP    *capture.Summary
}

// RunSend opens a session, resolves features online, and sends the initial
// instance of every entry with edit-config. Replies are logged raw.
func RunSend(opts SendOptions) (res *SendResult, err error) {
	logger, err := newLogger(opts.Options)
	if err != nil {
		return nil, err
	}
	defer logger.Close()

	cfg, err := LoadCampaign(opts.Options)
	if err != nil {
		return nil, err
	}
	if cfg.Target.Host == "" {
		return nil, fmt.Errorf("send requires a target host (--host or target.host)")
	}
	if opts.Datastore != "" {
		cfg.Target.Datastore = opts.Datastore
	}
	logger.LogStartup(cfg.Module.Name, cfg.Target.Host, seedValue(cfg.Generator.Seed), cfg.Seeded(), cfg.Generator.Filter)

	var outputMgr *artifact.OutputManager
	if opts.OutputDir != "" {
		outputMgr, err = artifact.NewOutputManager(opts.OutputDir)
		if err != nil {
			return nil, err
		}
		outputMgr.SetModule(cfg.Module.Name, cfg.Generator.Filter, cfg.Generator.Seed)
		outputMgr.SetTarget(cfg.Target.Host, cfg.Target.Port, cfg.Target.Datastore)
		fmt.Fprintf(opts.out(), "Output directory: %s\n", opts.OutputDir)
	}

	sink := metrics.NewSink()
	var metricsWriter *metrics.Writer
	if outputMgr != nil {
		metricsWriter, err = metrics.NewWriter(outputMgr.MetricsPath())
		if err != nil {
			return nil, err
		}
		defer metricsWriter.Close()
		defer func() {
			exitCode := 0
			if err != nil {
				exitCode = 1
			}
			if ferr := outputMgr.Finalize(sink.GetSummary(), exitCode, err); ferr != nil {
				logger.Error("write run artifacts: %v", ferr)
			}
		}()
	}

	ctx, cancel := signalContext(logger)
	defer cancel()

	var pcapPath string
	var pcap *capture.Capture
	if opts.Capture || opts.PCAPFile != "" {
		pcapPath = opts.PCAPFile
		if pcapPath == "" {
			if outputMgr == nil {
				return nil, fmt.Errorf("--capture needs --pcap or --output-dir")
			}
			pcapPath = outputMgr.PCAPPath()
		}
		pcap, err = capture.StartForTarget(opts.CaptureIface, cfg.Target.Host, cfg.Target.Port, pcapPath)
		if err != nil {
			return nil, fmt.Errorf("start packet capture: %w", err)
		}
		logger.Info("Capturing on %s to %s", pcap.Interface(), pcapPath)
		defer func() {
			if serr := pcap.Stop(); serr != nil {
				logger.Error("stop capture: %v", serr)
				return
			}
			logger.Verbose("Capture on %s wrote %d packets", pcap.Interface(), pcap.Packets())
			summary, serr := capture.SummarizeFile(pcapPath, cfg.Target.Port)
			if serr != nil {
				logger.Error("summarize capture: %v", serr)
				return
			}
			if res != nil {
				res.PCAP = summary
			}
			fmt.Fprintf(opts.out(), "Captured %d packets (%s payload) in %s to %s\n",
				summary.Packets, humanize.Bytes(summary.PayloadBytes), summary.Duration().Round(time.Millisecond), pcapPath)
		}()
	}

	conn, sess, err := connect(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	defer sess.Close()
	if outputMgr != nil {
		outputMgr.SetSessionID(sess.ID())
	}

	// Saved capability data still takes precedence over the live session.
	b, err := prepareWith(ctx, cfg, sess, logger)
	if err != nil {
		return nil, err
	}
	if outputMgr != nil {
		r, err := report.FromSkeleton(b.Skeleton, b.Meta(cfg, opts.Version))
		if err != nil {
			return nil, fmt.Errorf("build report: %w", err)
		}
		if err := report.WriteJSONFile(outputMgr.SkeletonPath(), r); err != nil {
			return nil, err
		}
	}

	entries := b.Skeleton.Entries
	bar := progress.NewProgressBar(int64(len(entries)), "send")
	if opts.NoProgress {
		bar.Disable()
	}
	res = &SendResult{}
	for i := range entries {
		if ctx.Err() != nil {
			break
		}
		e := &entries[i]
		payload, err := e.RenderInitial()
		if err != nil {
			bar.Finish()
			return res, fmt.Errorf("render %s: %w", e.Path, err)
		}

		reqCtx, reqCancel := context.WithTimeout(ctx, cfg.Timeout())
		start := time.Now()
		reply, sendErr := sess.EditConfig(reqCtx, cfg.Target.Datastore, payload)
		rtt := time.Since(start)
		reqCancel()

		m := metrics.Metric{
			Timestamp:    start,
			Module:       b.Module.Name(),
			Operation:    metrics.OperationEditConfig,
			Path:         e.Path,
			Success:      sendErr == nil,
			RTTMs:        float64(rtt.Microseconds()) / 1000,
			RequestBytes: len(payload),
			ReplyBytes:   len(reply),
		}
		if sendErr != nil {
			m.Error = sendErr.Error()
		}
		sink.Record(m)
		if metricsWriter != nil {
			if err := metricsWriter.WriteMetric(m); err != nil {
				logger.Error("write metric: %v", err)
			}
		}

		logger.LogExchange(e.Path, len(payload), sendErr)
		bar.Increment(len(payload))
		res.Bytes += uint64(len(payload))
		if sendErr != nil {
			res.Failed++
			if opts.StopOnError {
				bar.Finish()
				res.Summary = sink.GetSummary()
				return res, fmt.Errorf("edit-config %s: %w", e.Path, sendErr)
			}
			continue
		}
		res.Sent++
		logger.Debug("reply to %s: %s", e.Path, reply)
		if outputMgr != nil {
			if _, err := outputMgr.WriteReply(reply); err != nil {
				logger.Error("%v", err)
			}
		}
	}
	bar.Finish()
	res.Summary = sink.GetSummary()

	out := opts.out()
	fmt.Fprintf(out, "Sent %d of %d entries to %s (%s), %d failed\n",
		res.Sent, len(entries), cfg.Target.Host, humanize.Bytes(res.Bytes), res.Failed)
	if opts.Verbose || opts.Debug {
		fmt.Fprint(out, metrics.FormatSummary(res.Summary))
	}
	return res, ctx.Err()
}
