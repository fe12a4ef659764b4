package ui

import (
	"reflect"
	"strings"
	"testing"

	"github.com/tturner/yangfuzz/internal/config"
)

func TestAnswersRoundTrip(t *testing.T) {
	c := config.CreateDefaultCampaign()
	a := AnswersFrom(c)
	if a.Auth != "password" || a.Seed != "1" || a.Port != "830" {
		t.Fatalf("answers = %+v", a)
	}
	got := config.CreateDefaultCampaign()
	if err := a.Apply(got); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !reflect.DeepEqual(got, c) {
		t.Errorf("round trip changed campaign:\n got %+v\nwant %+v", got, c)
	}
}

func TestApply(t *testing.T) {
	c := config.CreateDefaultCampaign()
	a := &CampaignAnswers{
		Host:       " 10.0.0.5 ",
		Port:       "2022",
		User:       "ops",
		Auth:       "key",
		Password:   "ignored",
		KeyFile:    "~/.ssh/id_ed25519",
		Datastore:  "candidate",
		Module:     "ietf-interfaces",
		SearchDirs: "yang, vendor/yang,,",
		Filter:     "/interfaces",
		Seed:       "",
		MaxMut:     "50",
	}
	if err := a.Apply(c); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if c.Target.Host != "10.0.0.5" || c.Target.Port != 2022 || c.Target.Password != "" || c.Target.KeyFile != "~/.ssh/id_ed25519" {
		t.Errorf("target = %+v", c.Target)
	}
	if !reflect.DeepEqual(c.Module.SearchDirs, []string{"yang", "vendor/yang"}) {
		t.Errorf("search dirs = %q", c.Module.SearchDirs)
	}
	if c.Generator.Seed != nil || c.Generator.MaxMutations != 50 || c.Generator.Filter != "/interfaces" {
		t.Errorf("generator = %+v", c.Generator)
	}
	if err := config.ValidateCampaign(c); err != nil {
		t.Errorf("applied campaign invalid: %v", err)
	}
}

func TestApplyErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CampaignAnswers)
		want   string
	}{
		{"port", func(a *CampaignAnswers) { a.Port = "ssh" }, "port"},
		{"max mutations", func(a *CampaignAnswers) { a.MaxMut = "" }, "max mutations"},
		{"seed", func(a *CampaignAnswers) { a.Seed = "0x10" }, "seed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := AnswersFrom(config.CreateDefaultCampaign())
			tt.mutate(a)
			err := a.Apply(config.CreateDefaultCampaign())
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Apply error = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestValidators(t *testing.T) {
	if validatePort("830") != nil || validatePort("0") == nil || validatePort("x") == nil {
		t.Error("validatePort")
	}
	if validateOptionalInt("") != nil || validateOptionalInt("-3") != nil || validateOptionalInt("a") == nil {
		t.Error("validateOptionalInt")
	}
	if validateRequired("module")(" ") == nil {
		t.Error("validateRequired accepted blank")
	}
}

func TestBuildCampaignForm(t *testing.T) {
	if BuildCampaignForm(AnswersFrom(config.CreateDefaultCampaign())) == nil {
		t.Fatal("nil form")
	}
}
