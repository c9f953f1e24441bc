//go:build !linux

package clock

import (
	"errors"
	"time"

	"go.uber.org/zap"
)

func SyncRTC(logger *zap.Logger, t time.Time) error {
	return errors.New("RTC sync is only supported on linux")
}
