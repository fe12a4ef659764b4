package app

import (
	"fmt"
	"iter"
	"strings"

	"github.com/tturner/yangfuzz/internal/message"
	"github.com/tturner/yangfuzz/internal/report"
	"github.com/tturner/yangfuzz/internal/tui"
)

// SkeletonOptions configure the skeleton command.
type SkeletonOptions struct {
	Options
	JSON       bool
	ReportFile string // Also write the JSON report here
	Color      bool
	Version    string
}

// RunSkeleton prints the skeleton templates, or its JSON report.
func RunSkeleton(opts SkeletonOptions) error {
	logger, err := newLogger(opts.Options)
	if err != nil {
		return err
	}
	defer logger.Close()

	cfg, err := LoadCampaign(opts.Options)
	if err != nil {
		return err
	}
	logger.LogStartup(cfg.Module.Name, cfg.Target.Host, seedValue(cfg.Generator.Seed), cfg.Seeded(), cfg.Generator.Filter)

	ctx, cancel := signalContext(logger)
	defer cancel()

	b, err := Prepare(ctx, opts.Options, cfg, logger)
	if err != nil {
		return err
	}
	r, err := report.FromSkeleton(b.Skeleton, b.Meta(cfg, opts.Version))
	if err != nil {
		return fmt.Errorf("build report: %w", err)
	}
	if opts.ReportFile != "" {
		if err := report.WriteJSONFile(opts.ReportFile, r); err != nil {
			return err
		}
		logger.Info("Report written to %s", opts.ReportFile)
	}
	if opts.JSON {
		return report.WriteJSON(opts.out(), r)
	}
	styles := report.PlainStyles()
	if opts.Color {
		styles = report.DefaultStyles()
	}
	report.WriteText(opts.out(), r, styles)
	return nil
}

// RenderOptions configure the render command.
type RenderOptions struct {
	Options
	Count int // Instances per entry; the first uses initial values
}

// RunRender prints concrete instances of every entry.
func RunRender(opts RenderOptions) error {
	logger, err := newLogger(opts.Options)
	if err != nil {
		return err
	}
	defer logger.Close()

	cfg, err := LoadCampaign(opts.Options)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext(logger)
	defer cancel()

	b, err := Prepare(ctx, opts.Options, cfg, logger)
	if err != nil {
		return err
	}
	out := opts.out()
	for i := range b.Skeleton.Entries {
		e := &b.Skeleton.Entries[i]
		instances, err := RenderInstances(e, opts.Count)
		if err != nil {
			return fmt.Errorf("render %s: %w", e.Path, err)
		}
		for _, inst := range instances {
			fmt.Fprintln(out, inst)
		}
	}
	return nil
}

// RenderInstances renders count instances of e. Instance n carries element
// n of every slot's mutation sequence, whose element 0 is the initial
// value. A slot whose sequence is exhausted falls back to its initial
// value.
func RenderInstances(e *message.Entry, count int) ([]string, error) {
	if count < 1 {
		count = 1
	}
	first, err := e.RenderInitial()
	if err != nil {
		return nil, err
	}
	out := []string{first}
	if count == 1 {
		return out, nil
	}

	slots := e.Slots()
	nexts := make([]func() (string, bool), len(slots))
	for i, s := range slots {
		next, stop := iter.Pull(s.Generator.Mutations())
		defer stop()
		next()
		nexts[i] = next
	}
	values := make([]string, len(slots))
	for n := 1; n < count; n++ {
		for i, s := range slots {
			v, ok := nexts[i]()
			if !ok {
				v = s.Generator.InitialValue()
			}
			values[i] = v
		}
		inst, err := e.Render(values)
		if err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	return out, nil
}

// BrowseOptions configure the browse command.
type BrowseOptions struct {
	Options
	Window int // Instances rendered per entry
}

// RunBrowse opens the interactive skeleton browser.
func RunBrowse(opts BrowseOptions) error {
	logger, err := newLogger(opts.Options)
	if err != nil {
		return err
	}
	defer logger.Close()

	cfg, err := LoadCampaign(opts.Options)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext(logger)
	defer cancel()

	b, err := Prepare(ctx, opts.Options, cfg, logger)
	if err != nil {
		return err
	}
	cancel()
	return tui.Run(b.Skeleton, RenderInstances, opts.Window)
}

// FeaturesOptions configure the features command.
type FeaturesOptions struct {
	Options
}

// RunFeatures prints the module's yang-version and feature state.
func RunFeatures(opts FeaturesOptions) error {
	logger, err := newLogger(opts.Options)
	if err != nil {
		return err
	}
	defer logger.Close()

	cfg, err := LoadCampaign(opts.Options)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext(logger)
	defer cancel()

	var b *Build
	if online(opts.Options, cfg) {
		conn, sess, err := connect(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer conn.Close()
		defer sess.Close()
		b, err = loadModule(ctx, cfg, sess, logger)
		if err != nil {
			return err
		}
	} else {
		b, err = loadModule(ctx, cfg, nil, logger)
		if err != nil {
			return err
		}
	}

	out := opts.out()
	fmt.Fprintf(out, "Module: %s\n", b.Module.Name())
	fmt.Fprintf(out, "  YANG version: %s\n", b.YangVersion)
	fmt.Fprintf(out, "  Declared: %s\n", listOrNone(b.Declared))
	fmt.Fprintf(out, "  Reported by target: %s\n", listOrNone(b.Enabled))
	fmt.Fprintf(out, "  Enabled: %s\n", listOrNone(b.Applied))
	return nil
}

func listOrNone(names []string) string {
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}

func seedValue(seed *int64) int64 {
	if seed == nil {
		return 0
	}
	return *seed
}
