//go:build linux

package clock

import (
	"fmt"
	"time"

	"github.com/u-root/u-root/pkg/rtc"
	"go.uber.org/zap"
)

// SyncRTC copies t into the hardware clock so a step survives reboot on
// hosts that trust the RTC at boot.
func SyncRTC(logger *zap.Logger, t time.Time) error {
	rtcClock, err := rtc.OpenRTC()
	if err != nil {
		return fmt.Errorf("failed to open RTC device: %w", err)
	}
	defer rtcClock.Close()

	if err := rtcClock.Set(t); err != nil {
		return fmt.Errorf("failed to set RTC: %w", err)
	}

	logger.Info("synchronized RTC")
	return nil
}
