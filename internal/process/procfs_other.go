//go:build !linux

package process

import (
	"fmt"
	stdruntime "runtime"
)

const procRoot = "/proc"

func newProcfsDirectory(root string) (Directory, error) {
	return nil, fmt.Errorf("procfs backend is not available on %s", stdruntime.GOOS)
}
