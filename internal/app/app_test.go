package app

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tturner/yangfuzz/internal/config"
	yferrors "github.com/tturner/yangfuzz/internal/errors"
	"github.com/tturner/yangfuzz/internal/message"
	"github.com/tturner/yangfuzz/internal/report"
	"github.com/tturner/yangfuzz/internal/schema"
)

const exampleYang = `module example {
  namespace "urn:example";
  prefix ex;

  feature advanced;

  container cfg {
    leaf name {
      type string {
        length "1..8";
        pattern "[a-z]+";
      }
    }
    leaf port {
      type uint16 {
        range "1..1024";
      }
    }
    leaf extra {
      if-feature advanced;
      type boolean;
    }
  }
}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// offlineOptions returns options for the example module with the given
// module source and capability list.
func offlineOptions(t *testing.T, yang, caps string) Options {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "example.yang", yang)
	seed := int64(7)
	opts := Options{
		Module:     "example",
		SearchDirs: []string{dir},
		Seed:       &seed,
		Offline:    true,
	}
	if caps != "" {
		opts.CapabilitiesFile = writeFile(t, dir, "hello.txt", caps)
	}
	return opts
}

func TestLoadCampaignOverrides(t *testing.T) {
	seed := int64(3)
	cfg, err := LoadCampaign(Options{
		Host:       "router1",
		Port:       2830,
		Module:     "example",
		SearchDirs: []string{"yang"},
		Filter:     "/example:cfg",
		Seed:       &seed,
	})
	if err != nil {
		t.Fatalf("LoadCampaign: %v", err)
	}
	if cfg.Target.Host != "router1" || cfg.Target.Port != 2830 {
		t.Errorf("target = %+v", cfg.Target)
	}
	if cfg.Target.Datastore != "running" || cfg.Generator.MaxMutations != 1000 {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if !cfg.Seeded() || *cfg.Generator.Seed != 3 {
		t.Errorf("seed = %v", cfg.Generator.Seed)
	}
	seed = 9
	if *cfg.Generator.Seed != 3 {
		t.Error("campaign seed aliases the option")
	}
}

func TestLoadCampaignFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "campaign.yaml")
	if err := InitConfig(path, false); err != nil {
		t.Fatalf("InitConfig: %v", err)
	}
	cfg, err := LoadCampaign(Options{ConfigPath: path, Host: "override", Insecure: true})
	if err != nil {
		t.Fatalf("LoadCampaign: %v", err)
	}
	if cfg.Module.Name != "example" {
		t.Errorf("module = %q", cfg.Module.Name)
	}
	if cfg.Target.Host != "override" || !cfg.Target.Insecure {
		t.Errorf("target = %+v", cfg.Target)
	}
}

func TestLoadCampaignErrors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"no module", Options{}},
		{"missing file", Options{ConfigPath: filepath.Join(t.TempDir(), "none.yaml"), Module: "example"}},
		{"bad port", Options{Module: "example", Port: 70000}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadCampaign(tt.opts)
			if err == nil {
				t.Fatal("expected error")
			}
			var ufe yferrors.UserFriendlyError
			if !errors.As(err, &ufe) {
				t.Fatalf("error %T is not user friendly: %v", err, err)
			}
		})
	}
}

func TestInitConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "campaign.yaml")
	if err := InitConfig(path, false); err != nil {
		t.Fatalf("InitConfig: %v", err)
	}
	if err := InitConfig(path, false); err == nil {
		t.Fatal("expected error for existing file")
	}
	if err := InitConfig(path, true); err != nil {
		t.Fatalf("InitConfig force: %v", err)
	}
}

func TestInitConfigWith(t *testing.T) {
	path := filepath.Join(t.TempDir(), "campaign.yaml")
	err := InitConfigWith(path, false, func(c *config.Campaign) error {
		c.Module.Name = "ietf-interfaces"
		c.Target.Datastore = "candidate"
		return nil
	})
	if err != nil {
		t.Fatalf("InitConfigWith: %v", err)
	}
	cfg, err := config.LoadCampaign(path, false)
	if err != nil {
		t.Fatalf("LoadCampaign: %v", err)
	}
	if cfg.Module.Name != "ietf-interfaces" || cfg.Target.Datastore != "candidate" {
		t.Errorf("written campaign = %+v", cfg)
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	err = InitConfigWith(bad, false, func(c *config.Campaign) error {
		c.Target.Datastore = "scratch"
		return nil
	})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if _, statErr := os.Stat(bad); statErr == nil {
		t.Error("invalid campaign was written")
	}
}

func TestRunSkeletonText(t *testing.T) {
	var out bytes.Buffer
	opts := offlineOptions(t, exampleYang, "urn:example?module=example&features=advanced\n")
	opts.Out = &out
	if err := RunSkeleton(SkeletonOptions{Options: opts}); err != nil {
		t.Fatalf("RunSkeleton: %v", err)
	}
	text := out.String()
	for _, want := range []string{
		"Skeleton for example",
		"Features: advanced",
		"Entries: 1, slots: 3",
		"{{/example:cfg/extra}}",
		"enum {true, false}",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
}

func TestRunSkeletonFeatureDisabled(t *testing.T) {
	var out bytes.Buffer
	opts := offlineOptions(t, exampleYang, "urn:example?module=example\n")
	opts.Out = &out
	if err := RunSkeleton(SkeletonOptions{Options: opts}); err != nil {
		t.Fatalf("RunSkeleton: %v", err)
	}
	if strings.Contains(out.String(), "extra") {
		t.Errorf("feature-gated leaf emitted:\n%s", out.String())
	}
}

func TestRunSkeletonJSONDeterministic(t *testing.T) {
	opts := offlineOptions(t, exampleYang, "urn:example?module=example&features=advanced\n")
	run := func() report.SkeletonReport {
		var out bytes.Buffer
		o := opts
		o.Out = &out
		if err := RunSkeleton(SkeletonOptions{Options: o, JSON: true, Version: "test"}); err != nil {
			t.Fatalf("RunSkeleton: %v", err)
		}
		var r report.SkeletonReport
		if err := json.Unmarshal(out.Bytes(), &r); err != nil {
			t.Fatalf("decode report: %v", err)
		}
		return r
	}
	a, b := run(), run()
	if len(a.Entries) != 1 || a.YangfuzzVersion != "test" {
		t.Fatalf("report = %+v", a)
	}
	if a.Entries[0].Initial != b.Entries[0].Initial {
		t.Errorf("seeded runs differ:\n%s\n%s", a.Entries[0].Initial, b.Entries[0].Initial)
	}
}

func TestRunSkeletonYang11(t *testing.T) {
	yang11 := strings.Replace(exampleYang, "module example {", "module example {\n  yang-version 1.1;", 1)

	t.Run("no library", func(t *testing.T) {
		opts := offlineOptions(t, yang11, "")
		opts.Out = &bytes.Buffer{}
		err := RunSkeleton(SkeletonOptions{Options: opts})
		if !yferrors.Is(err, yferrors.ErrUnsupported) {
			t.Fatalf("err = %v, want ErrUnsupported", err)
		}
	})

	t.Run("saved library", func(t *testing.T) {
		opts := offlineOptions(t, yang11, "")
		opts.YangLibraryFile = writeFile(t, opts.SearchDirs[0], "library.xml", `<rpc-reply message-id="1">
  <data>
    <yang-library xmlns="urn:ietf:params:xml:ns:yang:ietf-yang-library">
      <module-set><name>default</name>
        <module><name>example</name><feature>advanced</feature></module>
      </module-set>
    </yang-library>
  </data>
</rpc-reply>`)
		var out bytes.Buffer
		opts.Out = &out
		if err := RunSkeleton(SkeletonOptions{Options: opts}); err != nil {
			t.Fatalf("RunSkeleton: %v", err)
		}
		if !strings.Contains(out.String(), "YANG version: 1.1") || !strings.Contains(out.String(), "extra") {
			t.Errorf("output:\n%s", out.String())
		}
	})

	t.Run("module missing from library", func(t *testing.T) {
		opts := offlineOptions(t, yang11, "")
		opts.YangLibraryFile = writeFile(t, opts.SearchDirs[0], "library.xml",
			`<data><modules-state><module><name>other</name></module></modules-state></data>`)
		opts.Out = &bytes.Buffer{}
		err := RunSkeleton(SkeletonOptions{Options: opts})
		if !yferrors.Is(err, yferrors.ErrModuleNotFound) {
			t.Fatalf("err = %v, want ErrModuleNotFound", err)
		}
	})
}

func TestRunSkeletonMissingModule(t *testing.T) {
	opts := Options{Module: "absent", SearchDirs: []string{t.TempDir()}, Offline: true, Out: &bytes.Buffer{}}
	err := RunSkeleton(SkeletonOptions{Options: opts})
	var ufe yferrors.UserFriendlyError
	if !errors.As(err, &ufe) || !strings.Contains(ufe.Message, "absent") {
		t.Fatalf("err = %v", err)
	}
}

func TestRunRender(t *testing.T) {
	var out bytes.Buffer
	opts := offlineOptions(t, exampleYang, "urn:example?module=example\n")
	opts.Out = &out
	if err := RunRender(RenderOptions{Options: opts, Count: 3}); err != nil {
		t.Fatalf("RunRender: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d instances, want 3:\n%s", len(lines), out.String())
	}
	for _, l := range lines {
		if !strings.HasPrefix(l, `<cfg xmlns="urn:example"><name>`) {
			t.Errorf("instance = %s", l)
		}
	}
}

func TestRenderInstances(t *testing.T) {
	m := schema.NewStaticModule("example", "urn:example",
		schema.Container("cfg",
			schema.Leaf("mode", &schema.Type{Base: schema.TypeEnum, Enums: []string{"a", "b"}}),
			schema.Leaf("flag", &schema.Type{Base: schema.TypeEmpty}),
		),
	)
	sk, err := message.Assemble(m, message.Options{Seeded: true, Seed: 1, MaxMutations: 2})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	e := &sk.Entries[0]
	got, err := RenderInstances(e, 5)
	if err != nil {
		t.Fatalf("RenderInstances: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("got %d instances", len(got))
	}
	first, _ := e.RenderInitial()
	if got[0] != first {
		t.Errorf("instance 0 = %s, want %s", got[0], first)
	}
	if got[1] == first {
		t.Errorf("instance 1 repeats the initial values: %s", got[1])
	}
	// Sequences hold two values; later instances fall back to initial values.
	if got[3] != first || got[4] != first {
		t.Errorf("exhausted instances = %s, %s", got[3], got[4])
	}

	one, err := RenderInstances(e, 0)
	if err != nil || len(one) != 1 {
		t.Errorf("count 0 = %v, %v", one, err)
	}
}

func TestRunFeaturesOffline(t *testing.T) {
	var out bytes.Buffer
	opts := offlineOptions(t, exampleYang, "urn:example?module=example&features=advanced,unknown\n")
	opts.Out = &out
	if err := RunFeatures(FeaturesOptions{Options: opts}); err != nil {
		t.Fatalf("RunFeatures: %v", err)
	}
	text := out.String()
	for _, want := range []string{
		"YANG version: 1.0",
		"Declared: advanced",
		"Reported by target: advanced, unknown",
		"Enabled: advanced",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
}

func TestRunSendNeedsHost(t *testing.T) {
	opts := offlineOptions(t, exampleYang, "")
	if _, err := RunSend(SendOptions{Options: opts}); err == nil {
		t.Fatal("expected error without host")
	}
}

func TestRunFetchModulesLocal(t *testing.T) {
	src := t.TempDir()
	writeFile(t, src, "a.yang", exampleYang)
	writeFile(t, src, "b.yang", exampleYang)
	writeFile(t, src, "notes.txt", "x")
	dest := filepath.Join(t.TempDir(), "yang")

	var out bytes.Buffer
	paths, err := RunFetchModules(FetchOptions{
		Options: Options{Module: "example", Out: &out},
		From:    "local",
		Dir:     src,
		Dest:    dest,
	})
	if err != nil {
		t.Fatalf("RunFetchModules: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("paths = %v", paths)
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("fetched file: %v", err)
		}
	}
	if !strings.Contains(out.String(), "Fetched 2 files") {
		t.Errorf("output = %s", out.String())
	}
}

func TestRunFetchModulesNoSource(t *testing.T) {
	_, err := RunFetchModules(FetchOptions{Options: Options{Module: "example", Out: &bytes.Buffer{}}, Dir: "/x"})
	if err == nil {
		t.Fatal("expected error without a source")
	}
}
