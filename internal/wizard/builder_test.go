package wizard

import (
	"reflect"
	"testing"

	"github.com/lynxprompt/lynxprompt/internal/detect"
)

func TestFinalizeDefaults(t *testing.T) {
	cfg, err := NewBuilder().Finalize(TierBasic)
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if cfg.Name != DefaultName {
		t.Errorf("Name = %q, want %q", cfg.Name, DefaultName)
	}
	if !reflect.DeepEqual(cfg.Platforms, DefaultPlatforms) {
		t.Errorf("Platforms = %v, want %v", cfg.Platforms, DefaultPlatforms)
	}
	if cfg.Boundaries.Preset != DefaultBoundaries {
		t.Errorf("Boundaries.Preset = %q, want %q", cfg.Boundaries.Preset, DefaultBoundaries)
	}
}

func TestFinalizeTierGating(t *testing.T) {
	build := func() *Builder {
		return NewBuilder().
			SetName("svc").
			SetCommands(detect.Commands{Build: "make", Test: "make test"}).
			SetNamingConvention("snake_case").
			SetErrorHandling("explicit error values").
			SetBoundaries(Boundaries{Preset: "conservative", Never: []string{"touch prod"}}).
			SetTestLevels([]string{"unit"}).
			SetTestFrameworks([]string{"go test"}).
			SetCoverageTarget(80).
			SetAIBehaviorRules([]string{"ask first"}).
			SetStaticFiles([]string{"docs/arch.md"})
	}

	t.Run("basic drops intermediate and advanced fields", func(t *testing.T) {
		cfg, err := build().Finalize(TierBasic)
		if err != nil {
			t.Fatalf("Finalize: %v", err)
		}
		if !cfg.Commands.Empty() {
			t.Errorf("Commands survived basic tier: %+v", cfg.Commands)
		}
		if cfg.NamingConvention != "" || cfg.ErrorHandling != "" {
			t.Error("conventions survived basic tier")
		}
		if cfg.Boundaries.Preset != DefaultBoundaries || len(cfg.Boundaries.Never) != 0 {
			t.Errorf("Boundaries = %+v, want plain default preset", cfg.Boundaries)
		}
		if cfg.TestLevels != nil || cfg.TestFrameworks != nil || cfg.CoverageTarget != 0 {
			t.Error("testing fields survived basic tier")
		}
		if cfg.AIBehaviorRules != nil || cfg.StaticFiles != nil {
			t.Error("advanced fields survived basic tier")
		}
	})

	t.Run("intermediate keeps its fields, drops advanced", func(t *testing.T) {
		cfg, err := build().Finalize(TierIntermediate)
		if err != nil {
			t.Fatalf("Finalize: %v", err)
		}
		if cfg.Commands.Empty() {
			t.Error("Commands dropped at intermediate tier")
		}
		if cfg.Boundaries.Preset != "conservative" {
			t.Errorf("Boundaries.Preset = %q, want conservative", cfg.Boundaries.Preset)
		}
		if cfg.TestLevels != nil || cfg.AIBehaviorRules != nil {
			t.Error("advanced fields survived intermediate tier")
		}
	})

	t.Run("advanced keeps everything", func(t *testing.T) {
		cfg, err := build().Finalize(TierAdvanced)
		if err != nil {
			t.Fatalf("Finalize: %v", err)
		}
		if cfg.CoverageTarget != 80 || len(cfg.TestLevels) != 1 || len(cfg.AIBehaviorRules) != 1 {
			t.Errorf("advanced fields dropped: %+v", cfg)
		}
	})
}

func TestFinalizeValidation(t *testing.T) {
	if _, err := NewBuilder().SetBoundaries(Boundaries{Preset: "reckless"}).Finalize(TierAdvanced); err == nil {
		t.Error("invalid boundaries preset accepted")
	}
	if _, err := NewBuilder().SetCoverageTarget(120).Finalize(TierAdvanced); err == nil {
		t.Error("coverage target 120 accepted")
	}
	if _, err := NewBuilder().SetCoverageTarget(-1).Finalize(TierAdvanced); err == nil {
		t.Error("coverage target -1 accepted")
	}
}

func TestFromDetection(t *testing.T) {
	p := &detect.Project{
		Name:          "api-gw",
		Description:   "edge gateway",
		Stack:         []string{"Go", "chi"},
		Databases:     []string{"PostgreSQL"},
		Commands:      detect.Commands{Build: "go build ./...", Test: "go test ./..."},
		TestFramework: "go test",
	}
	cfg := FromDetection(p).Preview()
	if cfg.Name != "api-gw" || cfg.Description != "edge gateway" {
		t.Errorf("identity not carried over: %+v", cfg)
	}
	if len(cfg.Stack) != 2 || len(cfg.Databases) != 1 {
		t.Errorf("stack not carried over: %+v", cfg)
	}
	if cfg.Commands.Build == "" {
		t.Error("commands not carried over")
	}
	if len(cfg.TestFrameworks) != 1 || cfg.TestFrameworks[0] != "go test" {
		t.Errorf("TestFrameworks = %v", cfg.TestFrameworks)
	}

	if got := FromDetection(nil).Preview(); got.Name != "" {
		t.Errorf("FromDetection(nil) = %+v, want zero", got)
	}
}

func TestFromConfigRefinalize(t *testing.T) {
	// A client-supplied config with advanced fields must lose them when
	// re-finalized at a lower tier.
	cfg := Config{
		Name:            "svc",
		Platforms:       []string{"claude"},
		TestLevels:      []string{"unit", "e2e"},
		AIBehaviorRules: []string{"rule"},
		Boundaries:      Boundaries{Preset: "permissive"},
	}
	out, err := FromConfig(cfg).Finalize(TierBasic)
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if out.TestLevels != nil || out.AIBehaviorRules != nil {
		t.Error("advanced fields survived re-finalize at basic tier")
	}
	if out.Boundaries.Preset != DefaultBoundaries {
		t.Errorf("Boundaries.Preset = %q, want %q", out.Boundaries.Preset, DefaultBoundaries)
	}
	if out.Name != "svc" || out.Platforms[0] != "claude" {
		t.Error("basic fields altered by re-finalize")
	}
}
