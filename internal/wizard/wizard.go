// Package wizard asks the questions behind `modesync init` and writes the
// resulting configuration file.
package wizard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/charmbracelet/huh"
	"github.com/flemzord/modesync/internal/config"
	"github.com/flemzord/modesync/internal/mode"
	"github.com/flemzord/modesync/internal/ordering"
	"gopkg.in/yaml.v3"
)

// ErrExists is returned by Write when the file exists and force is off.
var ErrExists = errors.New("wizard: configuration file already exists")

// ErrAborted is returned by Run when the user cancels the form.
var ErrAborted = errors.New("wizard: aborted")

// Answers holds everything the wizard asks.
type Answers struct {
	ModesDir      string
	Strategy      string
	CategoryOrder []string
	CustomOrder   []string
	PriorityModes []string
	ExcludeModes  []string
	Scope         string
	ProjectDir    string
}

// DefaultAnswers pre-fills the form with the built-in defaults.
func DefaultAnswers() Answers {
	cats := make([]string, 0, len(mode.AllCategories()))
	for _, c := range mode.AllCategories() {
		cats = append(cats, c.String())
	}
	return Answers{
		ModesDir:      config.DefaultModesDir,
		Strategy:      string(ordering.StrategyStrategic),
		CategoryOrder: cats,
		Scope:         config.ScopeGlobal,
	}
}

// Config turns the answers into a configuration. Lists that only matter
// to another strategy are dropped.
func (a Answers) Config() *config.Config {
	cfg := &config.Config{ModesDir: a.ModesDir}
	cfg.Strategy = ordering.Strategy(a.Strategy)
	cfg.PriorityModes = slices.Clone(a.PriorityModes)
	cfg.ExcludeModes = slices.Clone(a.ExcludeModes)

	switch cfg.Strategy {
	case ordering.StrategyCategory:
		for _, c := range a.CategoryOrder {
			cfg.CategoryOrder = append(cfg.CategoryOrder, mode.Category(c))
		}
	case ordering.StrategyCustom:
		cfg.CustomOrder = slices.Clone(a.CustomOrder)
	}

	if a.Scope == config.ScopeLocal {
		cfg.Target = config.TargetConfig{Scope: config.ScopeLocal, ProjectDir: a.ProjectDir}
	}
	return cfg
}

// Options configures an interactive run.
type Options struct {
	// Slugs are the discovered modes offered for priority, exclusion and
	// custom ordering. Without them those questions are skipped.
	Slugs []string

	// Defaults pre-fill the form. The zero value uses DefaultAnswers.
	Defaults *Answers

	// Accessible renders plain prompts instead of the TUI.
	Accessible bool

	In  io.Reader
	Out io.Writer
}

// NewForm builds the form that fills a.
func NewForm(a *Answers, slugs []string) *huh.Form {
	strategies := make([]huh.Option[string], 0, len(ordering.Strategies()))
	for _, s := range ordering.Strategies() {
		strategies = append(strategies, huh.NewOption(fmt.Sprintf("%s: %s", s, s.Description()), string(s)))
	}

	categories := make([]huh.Option[string], 0, len(mode.AllCategories()))
	for _, c := range mode.AllCategories() {
		categories = append(categories, huh.NewOption(c.Info().Name, c.String()))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Modes directory").
				Description("Directory holding one YAML file per mode.").
				Value(&a.ModesDir).
				Validate(notEmpty("modes directory")),
			huh.NewSelect[string]().
				Title("Ordering strategy").
				Options(strategies...).
				Value(&a.Strategy),
		),
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Category order").
				Description("Selected categories come first; the rest follow in default order.").
				Options(categories...).
				Value(&a.CategoryOrder),
		).WithHideFunc(func() bool { return a.Strategy != string(ordering.StrategyCategory) }),
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Custom order").
				Description("Modes not selected are appended alphabetically.").
				Options(huh.NewOptions(slugs...)...).
				Value(&a.CustomOrder).
				Validate(func(s []string) error {
					if len(s) == 0 {
						return errors.New("custom strategy requires at least one mode")
					}
					return nil
				}),
		).WithHideFunc(func() bool {
			return len(slugs) == 0 || a.Strategy != string(ordering.StrategyCustom)
		}),
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Priority modes").
				Description("Always placed first.").
				Options(huh.NewOptions(slugs...)...).
				Value(&a.PriorityModes),
			huh.NewMultiSelect[string]().
				Title("Excluded modes").
				Description("Never written.").
				Options(huh.NewOptions(slugs...)...).
				Value(&a.ExcludeModes),
		).WithHideFunc(func() bool { return len(slugs) == 0 }),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Target").
				Options(
					huh.NewOption("Global editor settings", config.ScopeGlobal),
					huh.NewOption("Project .roomodes file", config.ScopeLocal),
				).
				Value(&a.Scope),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Project directory").
				Value(&a.ProjectDir).
				Validate(notEmpty("project directory")),
		).WithHideFunc(func() bool { return a.Scope != config.ScopeLocal }),
	)
}

// Run asks the questions and returns the answers.
func Run(ctx context.Context, opts Options) (Answers, error) {
	a := DefaultAnswers()
	if opts.Defaults != nil {
		a = *opts.Defaults
	}

	form := NewForm(&a, opts.Slugs).WithAccessible(opts.Accessible)
	if opts.In != nil {
		form = form.WithInput(opts.In)
	}
	if opts.Out != nil {
		form = form.WithOutput(opts.Out)
	}

	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return Answers{}, ErrAborted
		}
		return Answers{}, fmt.Errorf("wizard: %w", err)
	}
	return a, nil
}

const header = "# modesync configuration. See `modesync validate` to check it.\n"

// Write validates cfg and writes it to path as YAML. An existing file is
// only replaced when force is set.
func Write(path string, cfg *config.Config, force bool) error {
	probe := *cfg
	if err := config.Finalize(&probe, ""); err != nil {
		return fmt.Errorf("wizard: %w", err)
	}

	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrExists, path)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("wizard: stat %s: %w", path, err)
		}
	}

	var buf bytes.Buffer
	buf.WriteString(header)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("wizard: encoding config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("wizard: encoding config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("wizard: creating %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("wizard: writing %s: %w", path, err)
	}
	return nil
}

func notEmpty(what string) func(string) error {
	return func(s string) error {
		if s == "" {
			return fmt.Errorf("%s must not be empty", what)
		}
		return nil
	}
}
