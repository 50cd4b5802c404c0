package supervisor

import "context"

// Restart stops every running worker and, only when that left nothing
// behind, starts a fresh one after the restart delay.
func (s *Supervisor) Restart(ctx context.Context) error {
	s.printf("Restarting %s...\n", s.target.Name)

	if _, err := s.Stop(ctx); err != nil {
		s.println("Failed to stop existing processes")
		return err
	}

	delay := s.target.Timing.RestartDelay.Duration
	s.printf("Waiting %s before restart...\n", delay)
	if err := s.sleep(ctx, delay); err != nil {
		return err
	}
	return s.Start(ctx)
}
