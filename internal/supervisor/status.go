package supervisor

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"text/tabwriter"

	units "github.com/docker/go-units"

	"github.com/Paintersrp/botctl/internal/cliutil"
	"github.com/Paintersrp/botctl/internal/process"
)

// StatusReport is the result of the read-only status checks.
type StatusReport struct {
	CredentialPresent  bool
	EnvFilePresent     bool
	ProjectFilePresent bool
	Matches            []process.Match
	RunnerVersion      string
	RunnerErr          error
}

// Status inspects the credential, configuration files, running workers and
// runner availability and prints a summary. It has no side effects.
func (s *Supervisor) Status(ctx context.Context) *StatusReport {
	t := s.target
	report := &StatusReport{
		CredentialPresent:  s.getenv(t.Credential) != "",
		EnvFilePresent:     s.fileExists(t.EnvFile),
		ProjectFilePresent: s.fileExists(t.ProjectFile),
		Matches:            s.Find(ctx),
	}
	report.RunnerVersion, report.RunnerErr = s.runVersion(ctx, t.Runner.Version)

	s.printf("Status of %s\n", t.Name)
	s.println(cliutil.Rule(40))

	if report.CredentialPresent {
		s.printf("Credential (%s): present\n", t.Credential)
	} else {
		s.printf("Credential (%s): missing\n", t.Credential)
		s.printf("   Set %s in %s or the environment\n", t.Credential, t.EnvFile)
	}
	s.printf("Env file (%s): %s\n", t.EnvFile, presence(report.EnvFilePresent, "found", "not found"))

	if len(report.Matches) == 0 {
		s.println("Running processes: none found")
	} else {
		s.printf("Running processes: %d found\n", len(report.Matches))
		w := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "   PID\tUSER\tRSS\tCOMMAND")
		for _, m := range report.Matches {
			rss := "-"
			if m.RSS > 0 {
				rss = units.BytesSize(float64(m.RSS))
			}
			fmt.Fprintf(w, "   %d\t%s\t%s\t%s\n", m.PID, m.Owner, rss, cliutil.Truncate(m.Command, 70))
		}
		w.Flush()
	}

	s.printf("Project config (%s): %s\n", t.ProjectFile, presence(report.ProjectFilePresent, "found", "not found"))

	runner := t.Runner.Version[0]
	var exitErr *exec.ExitError
	switch {
	case report.RunnerErr == nil:
		s.printf("Runner (%s): %s\n", runner, report.RunnerVersion)
	case errors.Is(report.RunnerErr, exec.ErrNotFound):
		s.printf("Runner (%s): not installed\n", runner)
	case errors.As(report.RunnerErr, &exitErr):
		s.printf("Runner (%s): not working properly (exit %d)\n", runner, exitErr.ExitCode())
	default:
		s.printf("Runner (%s): unavailable: %v\n", runner, report.RunnerErr)
	}
	return report
}

func presence(ok bool, yes, no string) string {
	if ok {
		return yes
	}
	return no
}
