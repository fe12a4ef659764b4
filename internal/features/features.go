// Package features resolves which YANG features a NETCONF server has
// enabled for a module and applies them to the in-memory schema.
package features

import (
	"bufio"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"slices"
	"strings"

	"github.com/tturner/yangfuzz/internal/errors"
	"github.com/tturner/yangfuzz/internal/logging"
	"github.com/tturner/yangfuzz/internal/schema"
)

const (
	Version10 = "1.0"
	Version11 = "1.1"

	// YangLibraryNS is the ietf-yang-library namespace.
	YangLibraryNS = "urn:ietf:params:xml:ns:yang:ietf-yang-library"
	// YangLibraryFilter is the subtree filter for the module-set inventory.
	YangLibraryFilter = `<yang-library xmlns="` + YangLibraryNS + `"/>`
)

// Session is the part of a NETCONF session the resolver needs.
type Session interface {
	Capabilities() []string
	// Get issues a <get> with the given subtree filter and returns the
	// raw reply.
	Get(ctx context.Context, filter string) ([]byte, error)
}

// DetectVersion reads the yang-version statement from module source.
// Only a line consisting of exactly "yang-version 1.1;" selects 1.1.
func DetectVersion(source []byte) string {
	sc := bufio.NewScanner(bytes.NewReader(source))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 2 && fields[0] == "yang-version" && fields[1] == "1.1;" {
			return Version11
		}
	}
	return Version10
}

// FromCapabilities returns the features advertised for module in a
// hello capability list. A module with no matching capability has no
// enabled features.
func FromCapabilities(capabilities []string, module string) []string {
	needle := "?module=" + module + "&"
	for _, c := range capabilities {
		if strings.Contains(c, needle) {
			return parseFeatureParam(c)
		}
	}
	return nil
}

func parseFeatureParam(capability string) []string {
	_, rest, ok := strings.Cut(capability, "&features=")
	if !ok {
		return nil
	}
	rest, _, _ = strings.Cut(rest, "&")
	var out []string
	for _, f := range strings.Split(rest, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

type libraryModule struct {
	Name     string   `xml:"name"`
	Revision string   `xml:"revision"`
	Features []string `xml:"feature"`
}

type yangLibrary struct {
	Sets []struct {
		Name    string          `xml:"name"`
		Modules []libraryModule `xml:"module"`
	} `xml:"module-set"`
}

type modulesState struct {
	Modules []libraryModule `xml:"module"`
}

// libraryReply accepts a full <rpc-reply> as well as a bare <data>
// element, as saved by "get" tooling.
type libraryReply struct {
	Library      *yangLibrary  `xml:"data>yang-library"`
	ModulesState *modulesState `xml:"data>modules-state"`
	BareLibrary  *yangLibrary  `xml:"yang-library"`
	BareState    *modulesState `xml:"modules-state"`
}

// FromYangLibrary extracts the features of module from a yang-library
// <get> reply. Both the module-set tree and the older modules-state tree
// are read. A reply without the module fails with ErrModuleNotFound.
func FromYangLibrary(reply []byte, module string) ([]string, error) {
	var r libraryReply
	if err := xml.Unmarshal(reply, &r); err != nil {
		return nil, fmt.Errorf("parse yang-library reply: %w", err)
	}
	var modules []libraryModule
	for _, lib := range []*yangLibrary{r.Library, r.BareLibrary} {
		if lib == nil {
			continue
		}
		for _, s := range lib.Sets {
			modules = append(modules, s.Modules...)
		}
	}
	for _, st := range []*modulesState{r.ModulesState, r.BareState} {
		if st != nil {
			modules = append(modules, st.Modules...)
		}
	}
	for _, m := range modules {
		if m.Name == module {
			out := make([]string, 0, len(m.Features))
			for _, f := range m.Features {
				if f = strings.TrimSpace(f); f != "" {
					out = append(out, f)
				}
			}
			return out, nil
		}
	}
	return nil, fmt.Errorf("module %s not in yang-library (%d modules listed): %w",
		module, len(modules), errors.ErrModuleNotFound)
}

// Resolver picks the resolution path from the module's yang-version.
// Capabilities and Library hold offline data; when unset the Session is
// consulted.
type Resolver struct {
	Session      Session
	Capabilities []string
	Library      []byte
	Logger       *logging.Logger
}

// Resolve returns the features enabled on the target for m.
func (r *Resolver) Resolve(ctx context.Context, m schema.Module) ([]string, error) {
	log := r.Logger
	if log == nil {
		log = logging.Nop()
	}
	version := DetectVersion(m.Source())
	log.Verbose("module %s uses yang-version %s", m.Name(), version)

	if version != Version11 {
		caps := r.Capabilities
		if caps == nil && r.Session != nil {
			caps = r.Session.Capabilities()
		}
		enabled := FromCapabilities(caps, m.Name())
		log.Debug("capabilities list %d features for %s", len(enabled), m.Name())
		return enabled, nil
	}

	reply := r.Library
	if reply == nil {
		if r.Session == nil {
			return nil, fmt.Errorf("resolve features of %s: yang-library query needs a session: %w",
				m.Name(), errors.ErrUnsupported)
		}
		var err error
		reply, err = r.Session.Get(ctx, YangLibraryFilter)
		if err != nil {
			return nil, fmt.Errorf("query yang-library: %w", err)
		}
	}
	enabled, err := FromYangLibrary(reply, m.Name())
	if err != nil {
		return nil, err
	}
	log.Debug("yang-library lists %d features for %s", len(enabled), m.Name())
	return enabled, nil
}

// Apply enables every name m declares and ignores the rest. It returns the
// names that were applied.
func Apply(m schema.Module, names []string) ([]string, error) {
	declared := m.Features()
	var applied []string
	for _, n := range names {
		if !slices.Contains(declared, n) || slices.Contains(applied, n) {
			continue
		}
		if err := m.EnableFeature(n); err != nil {
			return applied, fmt.Errorf("enable feature %s: %w", n, err)
		}
		applied = append(applied, n)
	}
	return applied, nil
}
