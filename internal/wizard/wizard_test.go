package wizard

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/flemzord/modesync/internal/config"
	"github.com/flemzord/modesync/internal/mode"
	"github.com/flemzord/modesync/internal/ordering"
	"github.com/google/go-cmp/cmp"
)

func TestAnswers_Config(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   Answers
		want func(*config.Config)
	}{
		{
			name: "defaults",
			in:   DefaultAnswers(),
			want: func(c *config.Config) {
				c.ModesDir = config.DefaultModesDir
				c.Strategy = ordering.StrategyStrategic
			},
		},
		{
			name: "category keeps its order",
			in: Answers{
				ModesDir:      "modes",
				Strategy:      "category",
				CategoryOrder: []string{"specialized", "core"},
				CustomOrder:   []string{"ignored"},
			},
			want: func(c *config.Config) {
				c.ModesDir = "modes"
				c.Strategy = ordering.StrategyCategory
				c.CategoryOrder = []mode.Category{mode.CategorySpecialized, mode.CategoryCore}
			},
		},
		{
			name: "custom with lists and local target",
			in: Answers{
				ModesDir:      "modes",
				Strategy:      "custom",
				CategoryOrder: []string{"core"},
				CustomOrder:   []string{"debug", "code"},
				PriorityModes: []string{"code"},
				ExcludeModes:  []string{"zeta"},
				Scope:         config.ScopeLocal,
				ProjectDir:    "/src/app",
			},
			want: func(c *config.Config) {
				c.ModesDir = "modes"
				c.Strategy = ordering.StrategyCustom
				c.CustomOrder = []string{"debug", "code"}
				c.PriorityModes = []string{"code"}
				c.ExcludeModes = []string{"zeta"}
				c.Target = config.TargetConfig{Scope: config.ScopeLocal, ProjectDir: "/src/app"}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			want := &config.Config{}
			tt.want(want)
			if diff := cmp.Diff(want, tt.in.Config()); diff != "" {
				t.Errorf("Config() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWrite(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "modesync.yaml")
	a := DefaultAnswers()
	a.Strategy = "alphabetical"
	a.ExcludeModes = []string{"zeta"}

	if err := Write(path, a.Config(), false); err != nil {
		t.Fatalf("Write: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(raw), "# modesync configuration") {
		t.Errorf("header missing:\n%s", raw)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := config.Validate(cfg); err != nil {
		t.Fatalf("written config does not validate: %v", err)
	}
	if cfg.Strategy != ordering.StrategyAlphabetical || cfg.ModesDir != config.DefaultModesDir {
		t.Errorf("round trip = %+v", cfg)
	}
	if diff := cmp.Diff([]string{"zeta"}, cfg.ExcludeModes); diff != "" {
		t.Errorf("exclude_modes mismatch (-want +got):\n%s", diff)
	}
}

func TestWrite_Exists(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "modesync.yaml")
	if err := os.WriteFile(path, []byte("strategy: custom\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := DefaultAnswers().Config()

	if err := Write(path, cfg, false); !errors.Is(err, ErrExists) {
		t.Fatalf("error = %v, want ErrExists", err)
	}
	if err := Write(path, cfg, true); err != nil {
		t.Fatalf("Write with force: %v", err)
	}
	raw, _ := os.ReadFile(path)
	if strings.Contains(string(raw), "custom") {
		t.Errorf("file not replaced:\n%s", raw)
	}
}

func TestWrite_Invalid(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "modesync.yaml")
	a := DefaultAnswers()
	a.Strategy = "custom"

	err := Write(path, a.Config(), false)
	if !errors.Is(err, ordering.ErrConfiguration) {
		t.Fatalf("error = %v, want ErrConfiguration", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("invalid configuration was written")
	}
}

func TestNewForm(t *testing.T) {
	t.Parallel()

	a := DefaultAnswers()
	if NewForm(&a, []string{"code", "debug"}) == nil {
		t.Fatal("NewForm returned nil")
	}
	if NewForm(&a, nil) == nil {
		t.Fatal("NewForm without slugs returned nil")
	}
}
