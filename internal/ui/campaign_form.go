// Package ui holds the interactive campaign form used by
// "yangfuzz config init --interactive".
package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/tturner/yangfuzz/internal/config"
)

// CampaignAnswers are the raw form values. Numbers stay strings until
// Apply so the form can show what the user typed.
type CampaignAnswers struct {
	Host       string
	Port       string
	User       string
	Auth       string // "password" or "key"
	Password   string
	KeyFile    string
	Datastore  string
	Module     string
	SearchDirs string // Comma separated
	Filter     string
	Seed       string // Empty means unseeded
	MaxMut     string
}

// AnswersFrom seeds the form from an existing campaign.
func AnswersFrom(c *config.Campaign) *CampaignAnswers {
	a := &CampaignAnswers{
		Host:       c.Target.Host,
		Port:       strconv.Itoa(c.Target.Port),
		User:       c.Target.User,
		Auth:       "password",
		Password:   c.Target.Password,
		KeyFile:    c.Target.KeyFile,
		Datastore:  c.Target.Datastore,
		Module:     c.Module.Name,
		SearchDirs: strings.Join(c.Module.SearchDirs, ", "),
		Filter:     c.Generator.Filter,
		MaxMut:     strconv.Itoa(c.Generator.MaxMutations),
	}
	if c.Target.KeyFile != "" {
		a.Auth = "key"
	}
	if c.Generator.Seed != nil {
		a.Seed = strconv.FormatInt(*c.Generator.Seed, 10)
	}
	return a
}

// Apply copies the answers into c. Numeric fields are parsed here.
func (a *CampaignAnswers) Apply(c *config.Campaign) error {
	port, err := strconv.Atoi(strings.TrimSpace(a.Port))
	if err != nil {
		return fmt.Errorf("port %q: %w", a.Port, err)
	}
	maxMut, err := strconv.Atoi(strings.TrimSpace(a.MaxMut))
	if err != nil {
		return fmt.Errorf("max mutations %q: %w", a.MaxMut, err)
	}

	c.Target.Host = strings.TrimSpace(a.Host)
	c.Target.Port = port
	c.Target.User = strings.TrimSpace(a.User)
	c.Target.Datastore = a.Datastore
	if a.Auth == "key" {
		c.Target.KeyFile = strings.TrimSpace(a.KeyFile)
		c.Target.Password = ""
	} else {
		c.Target.Password = a.Password
		c.Target.KeyFile = ""
	}

	c.Module.Name = strings.TrimSpace(a.Module)
	c.Module.SearchDirs = nil
	for _, d := range strings.Split(a.SearchDirs, ",") {
		if d = strings.TrimSpace(d); d != "" {
			c.Module.SearchDirs = append(c.Module.SearchDirs, d)
		}
	}

	c.Generator.Filter = strings.TrimSpace(a.Filter)
	c.Generator.MaxMutations = maxMut
	c.Generator.Seed = nil
	if s := strings.TrimSpace(a.Seed); s != "" {
		seed, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("seed %q: %w", a.Seed, err)
		}
		c.Generator.Seed = &seed
	}
	return nil
}

func validatePort(s string) error {
	port, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("port must be 1-65535")
	}
	return nil
}

func validateOptionalInt(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if _, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err != nil {
		return fmt.Errorf("must be an integer")
	}
	return nil
}

func validateRequired(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}

// BuildCampaignForm returns the form bound to a.
func BuildCampaignForm(a *CampaignAnswers) *huh.Form {
	targetGroup := huh.NewGroup(
		huh.NewInput().
			Title("Target host").
			Description("NETCONF server address; leave empty for offline use.").
			Key("host").
			Value(&a.Host),
		huh.NewInput().
			Title("Port").
			Key("port").
			Validate(validatePort).
			Value(&a.Port),
		huh.NewInput().
			Title("User").
			Key("user").
			Value(&a.User),
		huh.NewSelect[string]().
			Title("Authentication").
			Key("auth").
			Options(
				huh.NewOption("Password", "password"),
				huh.NewOption("Private key", "key"),
			).
			Value(&a.Auth),
	)

	passwordGroup := huh.NewGroup(
		huh.NewInput().
			Title("Password").
			Key("password").
			Password(true).
			Value(&a.Password),
	).WithHideFunc(func() bool { return a.Auth != "password" })

	keyGroup := huh.NewGroup(
		huh.NewInput().
			Title("Private key file").
			Key("key_file").
			Validate(validateRequired("key file")).
			Value(&a.KeyFile),
	).WithHideFunc(func() bool { return a.Auth != "key" })

	moduleGroup := huh.NewGroup(
		huh.NewInput().
			Title("Module").
			Description("Name of the YANG module to fuzz.").
			Key("module").
			Validate(validateRequired("module")).
			Value(&a.Module),
		huh.NewInput().
			Title("Search directories").
			Description("Comma separated directories holding .yang files.").
			Key("search_dirs").
			Validate(validateRequired("search directory")).
			Value(&a.SearchDirs),
		huh.NewSelect[string]().
			Title("Datastore").
			Key("datastore").
			Options(
				huh.NewOption("running", "running"),
				huh.NewOption("candidate", "candidate"),
				huh.NewOption("startup", "startup"),
			).
			Value(&a.Datastore),
	)

	generatorGroup := huh.NewGroup(
		huh.NewInput().
			Title("Filter").
			Description("Schema path to restrict generation to, e.g. /interfaces/interface.").
			Key("filter").
			Value(&a.Filter),
		huh.NewInput().
			Title("Seed").
			Description("Empty for a fresh random sequence each run.").
			Key("seed").
			Validate(validateOptionalInt).
			Value(&a.Seed),
		huh.NewInput().
			Title("Max mutations per leaf").
			Key("max_mutations").
			Validate(validateOptionalInt).
			Value(&a.MaxMut),
	)

	return huh.NewForm(targetGroup, passwordGroup, keyGroup, moduleGroup, generatorGroup)
}

// RunCampaignForm edits c interactively on the terminal.
func RunCampaignForm(c *config.Campaign) error {
	a := AnswersFrom(c)
	if err := BuildCampaignForm(a).Run(); err != nil {
		return err
	}
	return a.Apply(c)
}
