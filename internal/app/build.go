package app

import (
	"context"
	"fmt"
	"os"

	"github.com/tturner/yangfuzz/internal/config"
	yferrors "github.com/tturner/yangfuzz/internal/errors"
	"github.com/tturner/yangfuzz/internal/features"
	"github.com/tturner/yangfuzz/internal/logging"
	"github.com/tturner/yangfuzz/internal/message"
	"github.com/tturner/yangfuzz/internal/netconf"
	"github.com/tturner/yangfuzz/internal/report"
	"github.com/tturner/yangfuzz/internal/schema"
)

// Build is a loaded, feature-resolved module and its skeleton.
type Build struct {
	Module      schema.Module
	YangVersion string
	Declared    []string
	Enabled     []string // Features reported by the target
	Applied     []string // Enabled features the module declares
	Skeleton    *message.Skeleton
}

// Meta returns the report metadata for b.
func (b *Build) Meta(cfg *config.Campaign, version string) report.Meta {
	return report.Meta{
		Version:     version,
		YangVersion: b.YangVersion,
		Features:    b.Applied,
		Filter:      cfg.Generator.Filter,
		Seed:        cfg.Generator.Seed,
	}
}

// loadModule resolves the campaign module and its feature state. sess may
// be nil, in which case only offline data from the campaign is used.
func loadModule(ctx context.Context, cfg *config.Campaign, sess features.Session, logger *logging.Logger) (*Build, error) {
	m, err := schema.Load(cfg.Module.SearchDirs, cfg.Module.Name)
	if err != nil {
		return nil, yferrors.WrapSchemaError(err, cfg.Module.Name)
	}
	logger.Verbose("Loaded module %s from %s", m.Name(), m.File())

	resolver := &features.Resolver{Session: sess, Logger: logger}
	if cfg.CapabilitiesFile != "" {
		data, err := os.ReadFile(cfg.CapabilitiesFile)
		if err != nil {
			return nil, yferrors.WrapConfigError(fmt.Errorf("read capabilities file: %w", err), cfg.CapabilitiesFile)
		}
		caps, err := netconf.ParseCapabilities(data)
		if err != nil {
			return nil, yferrors.WrapConfigError(err, cfg.CapabilitiesFile)
		}
		resolver.Capabilities = caps
	}
	if cfg.YangLibraryFile != "" {
		data, err := os.ReadFile(cfg.YangLibraryFile)
		if err != nil {
			return nil, yferrors.WrapConfigError(fmt.Errorf("read yang-library file: %w", err), cfg.YangLibraryFile)
		}
		resolver.Library = data
	}
	if sess == nil && resolver.Capabilities == nil && resolver.Library == nil {
		logger.Info("No target or saved capabilities; resolving %s without a feature source", m.Name())
	}

	enabled, err := resolver.Resolve(ctx, m)
	if err != nil {
		return nil, yferrors.WrapResolutionError(err, m.Name())
	}
	applied, err := features.Apply(m, enabled)
	if err != nil {
		return nil, yferrors.WrapResolutionError(err, m.Name())
	}
	for _, name := range applied {
		logger.Debug("feature %s enabled", name)
	}

	return &Build{
		Module:      m,
		YangVersion: features.DetectVersion(m.Source()),
		Declared:    m.Features(),
		Enabled:     enabled,
		Applied:     applied,
	}, nil
}

// assemble builds the skeleton for a resolved module.
func (b *Build) assemble(cfg *config.Campaign) error {
	opts := message.Options{
		Namespace:    cfg.Module.Namespace,
		Filter:       cfg.Generator.Filter,
		MaxMutations: cfg.Generator.MaxMutations,
	}
	if cfg.Seeded() {
		opts.Seed = *cfg.Generator.Seed
		opts.Seeded = true
	}
	sk, err := message.Assemble(b.Module, opts)
	if err != nil {
		return yferrors.WrapSchemaError(err, b.Module.Name())
	}
	b.Skeleton = sk
	return nil
}

// Prepare loads, resolves and assembles the campaign module. A session is
// opened only when the campaign names a target and carries no offline
// feature data.
func Prepare(ctx context.Context, opts Options, cfg *config.Campaign, logger *logging.Logger) (*Build, error) {
	var sess features.Session
	if online(opts, cfg) {
		conn, s, err := connect(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		defer conn.Close()
		defer s.Close()
		sess = s
	}
	return prepareWith(ctx, cfg, sess, logger)
}

func prepareWith(ctx context.Context, cfg *config.Campaign, sess features.Session, logger *logging.Logger) (*Build, error) {
	b, err := loadModule(ctx, cfg, sess, logger)
	if err != nil {
		return nil, err
	}
	if err := b.assemble(cfg); err != nil {
		return nil, err
	}
	if b.Skeleton.Empty() {
		logger.Info("Skeleton for %s has no entries", b.Module.Name())
	}
	return b, nil
}
