package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func writeManifest(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultManifest)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

func TestDefaultDescribesMTGCardBot(t *testing.T) {
	target := Default()

	if target.Credential != "MTG_DISCORD_TOKEN" {
		t.Fatalf("unexpected credential: %q", target.Credential)
	}
	wantCmd := []string{"uv", "run", "python", "-m", "mtg_card_bot"}
	if !reflect.DeepEqual(target.Runner.Command, wantCmd) {
		t.Fatalf("unexpected runner command: %v", target.Runner.Command)
	}
	if !reflect.DeepEqual(target.Runner.Version, []string{"uv", "--version"}) {
		t.Fatalf("unexpected version command: %v", target.Runner.Version)
	}
	if target.Timing.Grace.Duration != 5*time.Second {
		t.Fatalf("unexpected grace window: %s", target.Timing.Grace.Duration)
	}
	if target.Timing.ForcePause.Duration != 500*time.Millisecond {
		t.Fatalf("unexpected force pause: %s", target.Timing.ForcePause.Duration)
	}
	if target.Timing.RestartDelay.Duration != 2*time.Second {
		t.Fatalf("unexpected restart delay: %s", target.Timing.RestartDelay.Duration)
	}
	if err := target.Validate(); err != nil {
		t.Fatalf("default target should validate: %v", err)
	}
}

func TestLoadResolvesPathsAndKeepsExplicitZeroDurations(t *testing.T) {
	path := writeManifest(t, `name: Echo Worker
tag: ECHO
credential: ECHO_TOKEN
envFile: secrets.env
runner:
  command: ["python3", "-m", "echo_worker"]
match:
  signatures: ["-m echo_worker"]
timing:
  grace: 250ms
  settle: 0s
`)

	target, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	dir := filepath.Dir(path)
	if target.Workdir != dir {
		t.Fatalf("expected workdir %s, got %s", dir, target.Workdir)
	}
	if target.EnvFile != filepath.Join(dir, "secrets.env") {
		t.Fatalf("unexpected env file: %s", target.EnvFile)
	}
	if target.Timing.Grace.Duration != 250*time.Millisecond {
		t.Fatalf("unexpected grace: %s", target.Timing.Grace.Duration)
	}
	if target.Timing.Settle.Duration != 0 {
		t.Fatalf("explicit zero settle should be kept, got %s", target.Timing.Settle.Duration)
	}
	if target.Timing.ForcePause.Duration != DefaultForcePause {
		t.Fatalf("unset force pause should default, got %s", target.Timing.ForcePause.Duration)
	}
	if !reflect.DeepEqual(target.Runner.Version, []string{"python3", "--version"}) {
		t.Fatalf("unexpected version command: %v", target.Runner.Version)
	}
	if len(target.Match.Suffixes) != 0 {
		t.Fatalf("explicit signatures should not pull in default suffixes: %v", target.Match.Suffixes)
	}
}

func TestLoadRejectsSchemaViolations(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
		want     string
	}{
		{name: "unknownField", manifest: "name: x\nreplicas: 2\n", want: "replicas"},
		{name: "numericDuration", manifest: "timing:\n  grace: 5\n", want: "timing.grace"},
		{name: "emptyCommand", manifest: "runner:\n  command: []\n", want: "runner.command"},
		{name: "badDirectory", manifest: "directory: wmi\n", want: "directory"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeManifest(t, tc.manifest))
			if err == nil {
				t.Fatalf("expected error for manifest %q", tc.manifest)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error to mention %q, got %v", tc.want, err)
			}
		})
	}
}

func TestLoadOrDefaultFallsBackWhenManifestMissing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), DefaultManifest)

	target, err := LoadOrDefault(missing, false)
	if err != nil {
		t.Fatalf("LoadOrDefault returned error: %v", err)
	}
	if target.Source != "" {
		t.Fatalf("expected defaults, got manifest from %s", target.Source)
	}

	if _, err := LoadOrDefault(missing, true); err == nil {
		t.Fatalf("expected error when an explicit manifest is missing")
	}
}

func TestValidateRejectsNegativeDurations(t *testing.T) {
	target := Default()
	target.Timing.Grace.Duration = -time.Second
	if err := target.Validate(); err == nil || !strings.Contains(err.Error(), "timing.grace") {
		t.Fatalf("expected timing.grace error, got %v", err)
	}
}
