package config

import (
	"fmt"
	"time"
)

// Duration wraps time.Duration for YAML unmarshalling.
type Duration struct {
	time.Duration
	explicit bool
}

// UnmarshalText parses a textual duration, accepting empty strings.
func (d *Duration) UnmarshalText(text []byte) error {
	d.explicit = true
	if len(text) == 0 {
		d.Duration = 0
		return nil
	}
	dur, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = dur
	return nil
}

// MarshalText renders the duration using time.Duration formatting.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// IsSet reports whether the duration was explicitly provided or non-zero.
func (d Duration) IsSet() bool {
	return d.explicit || d.Duration != 0
}

// DirectoryKind selects the backend used to inspect the process table.
type DirectoryKind string

const (
	DirectoryAuto   DirectoryKind = "auto"
	DirectoryPS     DirectoryKind = "ps"
	DirectoryProcfs DirectoryKind = "procfs"
)

// Target mirrors the botctl.yaml document structure. It describes the single
// worker program managed by botctl.
type Target struct {
	Name        string        `yaml:"name"`
	Tag         string        `yaml:"tag"`
	Credential  string        `yaml:"credential"`
	EnvFile     string        `yaml:"envFile"`
	ProjectFile string        `yaml:"projectFile"`
	Workdir     string        `yaml:"workdir"`
	Directory   DirectoryKind `yaml:"directory"`
	Runner      Runner        `yaml:"runner"`
	Match       Match         `yaml:"match"`
	Sweep       []string      `yaml:"sweep"`
	Timing      Timing        `yaml:"timing"`

	// Source is the manifest path the target was read from. Empty when the
	// built-in defaults are in use.
	Source string `yaml:"-"`
}

// Runner describes how the worker is launched.
type Runner struct {
	Command []string `yaml:"command"`
	Version []string `yaml:"version"`
}

// Match holds the signatures used to recognise worker processes in the
// process table.
type Match struct {
	Signatures []string `yaml:"signatures"`
	Suffixes   []string `yaml:"suffixes"`
	Self       []string `yaml:"self"`
}

// Timing groups the waits used by the supervisor.
type Timing struct {
	Grace        Duration `yaml:"grace"`
	ForcePause   Duration `yaml:"forcePause"`
	Settle       Duration `yaml:"settle"`
	RestartDelay Duration `yaml:"restartDelay"`
	LogPoll      Duration `yaml:"logPoll"`
	OutputPoll   Duration `yaml:"outputPoll"`
}

const (
	DefaultManifest     = "botctl.yaml"
	DefaultEnvFile      = ".env"
	DefaultGrace        = 5 * time.Second
	DefaultForcePause   = 500 * time.Millisecond
	DefaultSettle       = time.Second
	DefaultRestartDelay = 2 * time.Second
	DefaultLogPoll      = time.Second
	DefaultOutputPoll   = 100 * time.Millisecond
)

// Default returns the built-in target describing the MTG Card Bot.
func Default() *Target {
	t := &Target{}
	t.ApplyDefaults()
	return t
}

// ApplyDefaults fills every unset field with the MTG Card Bot defaults.
func (t *Target) ApplyDefaults() {
	if t.Name == "" {
		t.Name = "MTG Card Bot"
	}
	if t.Tag == "" {
		t.Tag = "MTG BOT"
	}
	if t.Credential == "" {
		t.Credential = "MTG_DISCORD_TOKEN"
	}
	if t.EnvFile == "" {
		t.EnvFile = DefaultEnvFile
	}
	if t.ProjectFile == "" {
		t.ProjectFile = "pyproject.toml"
	}
	if t.Directory == "" {
		t.Directory = DirectoryAuto
	}
	if len(t.Runner.Command) == 0 {
		t.Runner.Command = []string{"uv", "run", "python", "-m", "mtg_card_bot"}
	}
	if len(t.Runner.Version) == 0 {
		t.Runner.Version = []string{t.Runner.Command[0], "--version"}
	}
	if len(t.Match.Signatures) == 0 && len(t.Match.Suffixes) == 0 {
		t.Match.Signatures = []string{"python -m mtg_card_bot", "python3 -m mtg_card_bot"}
		t.Match.Suffixes = []string{"mtg-card-bot"}
	}
	if len(t.Match.Self) == 0 {
		t.Match.Self = []string{"manage_bot.py"}
	}
	if t.Sweep == nil {
		t.Sweep = []string{"python -m mtg_card_bot", "python3 -m mtg_card_bot", "uv run.*mtg-card-bot$"}
	}
	defaultDuration(&t.Timing.Grace, DefaultGrace)
	defaultDuration(&t.Timing.ForcePause, DefaultForcePause)
	defaultDuration(&t.Timing.Settle, DefaultSettle)
	defaultDuration(&t.Timing.RestartDelay, DefaultRestartDelay)
	defaultDuration(&t.Timing.LogPoll, DefaultLogPoll)
	defaultDuration(&t.Timing.OutputPoll, DefaultOutputPoll)
}

func defaultDuration(d *Duration, fallback time.Duration) {
	if !d.IsSet() {
		d.Duration = fallback
	}
}
