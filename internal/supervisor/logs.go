package supervisor

import (
	"context"

	"github.com/cenkalti/backoff/v4"

	"github.com/Paintersrp/botctl/internal/cliutil"
)

// Logs lists the running workers and then watches them until they have all
// exited or ctx is cancelled. No log file is read; only liveness is shown.
func (s *Supervisor) Logs(ctx context.Context) error {
	matches := s.Find(ctx)
	if len(matches) == 0 {
		s.printf("No running %s processes found\n", s.target.Name)
		return nil
	}

	s.printf("Monitoring %d process(es)...\n", len(matches))
	s.println("Press Ctrl+C to stop monitoring")
	s.println(cliutil.Rule(60))
	for _, m := range matches {
		s.printf("[PID %d] Process: %s\n", m.PID, cliutil.Truncate(m.Command, 50))
	}
	s.println()
	s.println("Note: this only tracks whether the processes are alive. For historical")
	s.println("logs, check the worker's configured log files or the system journal.")
	s.println(cliutil.Rule(60))

	ticker := backoff.NewTicker(backoff.WithContext(backoff.NewConstantBackOff(s.target.Timing.LogPoll.Duration), ctx))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.println("\nStopped monitoring")
			return nil
		case _, ok := <-ticker.C:
			if !ok {
				s.println("\nStopped monitoring")
				return nil
			}
			if len(s.Find(ctx)) == 0 {
				s.println("\nAll processes have stopped.")
				return nil
			}
		}
	}
}
