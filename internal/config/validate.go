package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks that the target carries everything the supervisor needs.
func (t *Target) Validate() error {
	if t == nil {
		return errors.New("target manifest is empty")
	}
	if strings.TrimSpace(t.Credential) == "" {
		return errors.New("credential: variable name must not be empty")
	}
	if len(t.Runner.Command) == 0 || strings.TrimSpace(t.Runner.Command[0]) == "" {
		return errors.New("runner.command: at least one argument is required")
	}
	for i, sig := range t.Match.Signatures {
		if strings.TrimSpace(sig) == "" {
			return fmt.Errorf("match.signatures[%d]: must not be blank", i)
		}
	}
	for i, suffix := range t.Match.Suffixes {
		if strings.TrimSpace(suffix) == "" {
			return fmt.Errorf("match.suffixes[%d]: must not be blank", i)
		}
	}
	if len(t.Match.Signatures) == 0 && len(t.Match.Suffixes) == 0 {
		return errors.New("match: at least one signature or suffix is required")
	}
	switch t.Directory {
	case DirectoryAuto, DirectoryPS, DirectoryProcfs:
	default:
		return fmt.Errorf("directory: unsupported backend %q", t.Directory)
	}

	durations := map[string]Duration{
		"timing.grace":        t.Timing.Grace,
		"timing.forcePause":   t.Timing.ForcePause,
		"timing.settle":       t.Timing.Settle,
		"timing.restartDelay": t.Timing.RestartDelay,
		"timing.logPoll":      t.Timing.LogPoll,
		"timing.outputPoll":   t.Timing.OutputPoll,
	}
	for field, d := range durations {
		if d.Duration < 0 {
			return fmt.Errorf("%s: must not be negative", field)
		}
	}
	if t.Timing.LogPoll.Duration == 0 {
		return errors.New("timing.logPoll: must be positive")
	}
	if t.Timing.OutputPoll.Duration == 0 {
		return errors.New("timing.outputPoll: must be positive")
	}
	return nil
}
