package cli

import (
	"bufio"
	stdcontext "context"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

type lineResult struct {
	line string
	err  error
}

// lineReader reads operator input one line at a time without blocking past
// cancellation. At most one read is outstanding; an abandoned read is picked
// up by the next call.
type lineReader struct {
	r       *bufio.Reader
	pending chan lineResult
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{r: bufio.NewReader(r)}
}

// ReadLine returns the next line without its terminator. io.EOF is returned
// once the input is exhausted.
func (l *lineReader) ReadLine(ctx stdcontext.Context) (string, error) {
	if l.pending == nil {
		ch := make(chan lineResult, 1)
		l.pending = ch
		go func() {
			line, err := l.r.ReadString('\n')
			ch <- lineResult{line: line, err: err}
		}()
	}

	select {
	case res := <-l.pending:
		l.pending = nil
		if res.err != nil && (res.err != io.EOF || res.line == "") {
			return "", res.err
		}
		return strings.TrimRight(res.line, "\r\n"), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
