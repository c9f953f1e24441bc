//go:build !darwin && !dragonfly && !freebsd && !linux && !netbsd && !openbsd && !windows

package clock

import (
	"fmt"
	"runtime"

	"go.uber.org/zap"
)

func NewSystemWriter(logger *zap.Logger) (Writer, error) {
	return nil, &PlatformError{
		Op:  "select writer",
		Err: fmt.Errorf("no clock writer for %s", runtime.GOOS),
	}
}
