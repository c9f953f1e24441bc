//go:build darwin || dragonfly || freebsd || linux || netbsd || openbsd

package clock

import (
	"errors"
	"fmt"
	"os/exec"
	"time"

	"golang.org/x/sys/unix"
)

const dateLayout = "2006-01-02 15:04:05"

// commandWriter shells out to date(1), the last resort when the syscall
// path is refused. date -s parses its argument as local time.
type commandWriter struct{}

func (commandWriter) Name() string { return "date" }

func (commandWriter) Set(t time.Time) error {
	cmd := exec.Command("sudo", "date", "-s", t.Local().Format(dateLayout))
	if output, err := cmd.CombinedOutput(); err != nil {
		return &PlatformError{
			Op:  "date",
			Err: fmt.Errorf("%w: %s", err, string(output)),
		}
	}
	return nil
}

func classifyErrno(op string, err error) error {
	switch {
	case errors.Is(err, unix.EPERM):
		return &PrivilegeError{Op: op, Err: err}
	case errors.Is(err, unix.ENOSYS), errors.Is(err, unix.ENOTSUP):
		return &PlatformError{Op: op, Err: fmt.Errorf("%w: %w", ErrUnavailable, err)}
	default:
		return &PlatformError{Op: op, Err: err}
	}
}
