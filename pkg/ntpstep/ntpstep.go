package ntpstep

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ntpstep/ntpstep/internal/clock"
	"github.com/ntpstep/ntpstep/internal/ntp"
)

const (
	DefaultTimeout   = 5 * time.Second
	DefaultThreshold = time.Second
)

// DefaultServers returns the candidates tried, in order, when the
// caller names no server.
func DefaultServers() []string {
	return []string{"pool.ntp.org", "time.google.com", "time.windows.com"}
}

type Config struct {
	Servers   []string      /* tried in order; nil means DefaultServers */
	Timeout   time.Duration /* per-attempt send+receive deadline */
	Threshold time.Duration /* minimum |offset| before stepping */
	Version   byte          /* NTP version to speak, 3 or 4 */
	SetSystem bool          /* step the system clock after a query */
	SyncRTC   bool          /* also write the hardware clock after a step */
	Writer    clock.Writer  /* nil selects the platform writer */
}

type QueryFunc func(server string) (*SyncResult, error)

type SyncResult struct {
	Time    time.Time     /* synchronized local time, T4' + offset */
	Offset  time.Duration /* signed, server minus local */
	Delay   time.Duration /* round trip minus server processing */
	Server  string
	Stratum byte
	Leap    byte
	RefID   string
}

type System struct {
	logger  *zap.Logger
	config  Config
	servers []string
	setter  *clock.Setter

	// overridable in tests
	CurrentTime func() time.Time
	NTPQuery    QueryFunc

	// receives one event per fallback attempt; sends never block
	Progress chan Attempt
}

func NewSystem(logger *zap.Logger, config Config) (*System, error) {
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	if config.Threshold <= 0 {
		config.Threshold = DefaultThreshold
	}
	if config.Version == 0 {
		config.Version = ntp.VERSION
	}
	if config.Version < ntp.MINVERSION || config.Version > ntp.VERSION {
		return nil, fmt.Errorf("unsupported NTP version %d", config.Version)
	}

	servers := config.Servers
	if len(servers) == 0 {
		servers = DefaultServers()
	}

	system := &System{
		logger:  logger,
		config:  config,
		servers: servers,
	}
	system.CurrentTime = time.Now
	system.NTPQuery = system.Query

	if config.SetSystem {
		writer := config.Writer
		if writer == nil {
			var err error
			writer, err = clock.NewSystemWriter(logger)
			if err != nil {
				return nil, err
			}
		}
		system.setter = clock.NewSetter(logger, config.Threshold, writer)
	}

	return system, nil
}

// Sync runs one full cycle: fallback query, then the optional threshold
// gated clock step. A failed step still returns the query result, the
// measurement is good even when the clock write is not.
func (system *System) Sync(ctx context.Context) (*SyncResult, *clock.Outcome, error) {
	result, err := system.ResolveTime(ctx)
	if err != nil {
		return nil, nil, err
	}

	if system.setter == nil {
		return result, nil, nil
	}

	// re-anchor on a fresh reading so time spent deciding is not
	// written into the clock
	local := system.CurrentTime()
	outcome, err := system.setter.ApplyIfNeeded(local.Add(result.Offset), local)
	if err != nil {
		return result, nil, err
	}

	if outcome.Applied && system.config.SyncRTC {
		if err := clock.SyncRTC(system.logger, system.CurrentTime()); err != nil {
			system.logger.Warn("RTC sync failed", zap.Error(err))
		}
	}

	return result, outcome, nil
}
