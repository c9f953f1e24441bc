//go:build windows

package clock

import (
	"errors"
	"time"
	"unsafe"

	"go.uber.org/zap"
	"golang.org/x/sys/windows"
)

var (
	modkernel32       = windows.NewLazySystemDLL("kernel32.dll")
	procSetSystemTime = modkernel32.NewProc("SetSystemTime")
)

type systemTimeWriter struct{}

func (systemTimeWriter) Name() string { return "SetSystemTime" }

// SetSystemTime wants UTC wall-clock fields, millisecond resolution.
func (systemTimeWriter) Set(t time.Time) error {
	utc := t.UTC()
	systemTime := windows.Systemtime{
		Year:         uint16(utc.Year()),
		Month:        uint16(utc.Month()),
		DayOfWeek:    uint16(utc.Weekday()),
		Day:          uint16(utc.Day()),
		Hour:         uint16(utc.Hour()),
		Minute:       uint16(utc.Minute()),
		Second:       uint16(utc.Second()),
		Milliseconds: uint16(utc.Nanosecond() / int(time.Millisecond)),
	}

	ret, _, err := procSetSystemTime.Call(uintptr(unsafe.Pointer(&systemTime)))
	if ret == 0 {
		if errors.Is(err, windows.ERROR_PRIVILEGE_NOT_HELD) {
			return &PrivilegeError{Op: "SetSystemTime", Err: err}
		}
		return &PlatformError{Op: "SetSystemTime", Err: err}
	}
	return nil
}

func NewSystemWriter(logger *zap.Logger) (Writer, error) {
	return systemTimeWriter{}, nil
}
