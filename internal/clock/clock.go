package clock

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Writer steps the system clock to an absolute instant. Implementations
// wrap one privileged mechanism each; NewSystemWriter picks the right
// one for the platform at startup.
type Writer interface {
	Name() string
	Set(t time.Time) error
}

type Outcome struct {
	Applied bool
	Delta   time.Duration /* signed target - local at decision time */
	Writer  string        /* empty when skipped */
}

// ErrUnavailable marks a mechanism the OS does not provide, such as a
// syscall answered with ENOSYS. ChainWriter treats it like a privilege
// refusal and moves on to the fallback.
var ErrUnavailable = errors.New("clock mechanism unavailable")

type PrivilegeError struct {
	Op  string
	Err error
}

func (e *PrivilegeError) Error() string {
	return fmt.Sprintf("%s: insufficient privileges: %v", e.Op, e.Err)
}

func (e *PrivilegeError) Unwrap() error { return e.Err }

type PlatformError struct {
	Op  string
	Err error
}

func (e *PlatformError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PlatformError) Unwrap() error { return e.Err }

// Setter gates clock writes behind a minimum-offset threshold so hosts
// that are already close never pay for a privileged call.
type Setter struct {
	logger    *zap.Logger
	threshold time.Duration
	writer    Writer
}

func NewSetter(logger *zap.Logger, threshold time.Duration, writer Writer) *Setter {
	return &Setter{
		logger:    logger,
		threshold: threshold,
		writer:    writer,
	}
}

func (setter *Setter) ApplyIfNeeded(target, local time.Time) (*Outcome, error) {
	delta := target.Sub(local)

	magnitude := delta
	if magnitude < 0 {
		magnitude = -magnitude
	}
	if magnitude < setter.threshold {
		setter.logger.Debug("offset below threshold, leaving clock alone",
			zap.Duration("delta", delta),
			zap.Duration("threshold", setter.threshold))
		return &Outcome{Delta: delta}, nil
	}

	if err := setter.writer.Set(target); err != nil {
		return nil, err
	}

	setter.logger.Info("stepped system clock",
		zap.Duration("delta", delta),
		zap.String("writer", setter.writer.Name()))
	return &Outcome{Applied: true, Delta: delta, Writer: setter.writer.Name()}, nil
}

// ChainWriter attempts primary, then fallback, but only when primary was
// refused for lack of privileges or its mechanism is unavailable. Any
// other primary failure is final.
type ChainWriter struct {
	logger   *zap.Logger
	primary  Writer
	fallback Writer
}

func NewChainWriter(logger *zap.Logger, primary, fallback Writer) *ChainWriter {
	return &ChainWriter{
		logger:   logger,
		primary:  primary,
		fallback: fallback,
	}
}

func (chain *ChainWriter) Name() string {
	return chain.primary.Name() + "+" + chain.fallback.Name()
}

func (chain *ChainWriter) Set(t time.Time) error {
	err := chain.primary.Set(t)
	if err == nil {
		return nil
	}

	var privilegeError *PrivilegeError
	if !errors.As(err, &privilegeError) && !errors.Is(err, ErrUnavailable) {
		return err
	}

	chain.logger.Debug("clock write refused, trying fallback",
		zap.String("writer", chain.primary.Name()),
		zap.Error(err))

	fallbackErr := chain.fallback.Set(t)
	if fallbackErr == nil {
		return nil
	}

	return &PlatformError{Op: chain.Name(), Err: errors.Join(err, fallbackErr)}
}
