package clock_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ntpstep/ntpstep/internal/clock"
)

type fakeWriter struct {
	name  string
	err   error
	calls int
	got   time.Time
}

func (writer *fakeWriter) Name() string { return writer.name }

func (writer *fakeWriter) Set(t time.Time) error {
	writer.calls++
	writer.got = t
	return writer.err
}

func TestApplyIfNeededSkipsBelowThreshold(t *testing.T) {
	writer := &fakeWriter{name: "fake"}
	setter := clock.NewSetter(zaptest.NewLogger(t), time.Second, writer)

	local := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	outcome, err := setter.ApplyIfNeeded(local.Add(300*time.Millisecond), local)

	require.NoError(t, err)
	assert.False(t, outcome.Applied)
	assert.Equal(t, 300*time.Millisecond, outcome.Delta)
	assert.Empty(t, outcome.Writer)
	assert.Zero(t, writer.calls, "skipped outcome must not touch the writer")
}

func TestApplyIfNeededSteps(t *testing.T) {
	writer := &fakeWriter{name: "fake"}
	setter := clock.NewSetter(zaptest.NewLogger(t), time.Second, writer)

	local := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	target := local.Add(2 * time.Second)
	outcome, err := setter.ApplyIfNeeded(target, local)

	require.NoError(t, err)
	assert.True(t, outcome.Applied)
	assert.Equal(t, 2*time.Second, outcome.Delta)
	assert.Equal(t, "fake", outcome.Writer)
	assert.Equal(t, 1, writer.calls)
	assert.Equal(t, target, writer.got)
}

func TestApplyIfNeededStepsBackward(t *testing.T) {
	writer := &fakeWriter{name: "fake"}
	setter := clock.NewSetter(zaptest.NewLogger(t), time.Second, writer)

	local := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	outcome, err := setter.ApplyIfNeeded(local.Add(-90*time.Second), local)

	require.NoError(t, err)
	assert.True(t, outcome.Applied)
	assert.Equal(t, -90*time.Second, outcome.Delta)
	assert.Equal(t, 1, writer.calls)
}

func TestApplyIfNeededThresholdBoundary(t *testing.T) {
	// delta strictly below the threshold skips; exactly at it steps
	writer := &fakeWriter{name: "fake"}
	setter := clock.NewSetter(zaptest.NewLogger(t), time.Second, writer)

	local := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	outcome, err := setter.ApplyIfNeeded(local.Add(time.Second), local)

	require.NoError(t, err)
	assert.True(t, outcome.Applied)
	assert.Equal(t, 1, writer.calls)
}

func TestApplyIfNeededPrivilegeError(t *testing.T) {
	denied := &clock.PrivilegeError{Op: "fake", Err: errors.New("operation not permitted")}
	writer := &fakeWriter{name: "fake", err: denied}
	setter := clock.NewSetter(zaptest.NewLogger(t), time.Second, writer)

	local := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	outcome, err := setter.ApplyIfNeeded(local.Add(5*time.Second), local)

	require.Error(t, err)
	assert.Nil(t, outcome)

	var privilegeError *clock.PrivilegeError
	assert.ErrorAs(t, err, &privilegeError)

	var platformError *clock.PlatformError
	assert.False(t, errors.As(err, &platformError))
}

func TestChainWriterFallsBackOnPrivilegeError(t *testing.T) {
	primary := &fakeWriter{
		name: "syscall",
		err:  &clock.PrivilegeError{Op: "syscall", Err: errors.New("operation not permitted")},
	}
	fallback := &fakeWriter{name: "cmd"}
	chain := clock.NewChainWriter(zaptest.NewLogger(t), primary, fallback)

	target := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, chain.Set(target))
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, fallback.calls)
	assert.Equal(t, target, fallback.got)
}

func TestChainWriterFallsBackWhenUnavailable(t *testing.T) {
	// a kernel without the syscall behaves like a privilege refusal:
	// the date command still gets its chance
	primary := &fakeWriter{
		name: "clock_settime",
		err: &clock.PlatformError{
			Op:  "clock_settime",
			Err: fmt.Errorf("%w: function not implemented", clock.ErrUnavailable),
		},
	}
	fallback := &fakeWriter{name: "date"}
	chain := clock.NewChainWriter(zaptest.NewLogger(t), primary, fallback)

	target := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, chain.Set(target))
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, fallback.calls)
	assert.Equal(t, target, fallback.got)
}

func TestChainWriterBothFail(t *testing.T) {
	primaryErr := &clock.PrivilegeError{Op: "syscall", Err: errors.New("operation not permitted")}
	fallbackErr := errors.New("exit status 1")
	chain := clock.NewChainWriter(zaptest.NewLogger(t),
		&fakeWriter{name: "syscall", err: primaryErr},
		&fakeWriter{name: "cmd", err: fallbackErr})

	err := chain.Set(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	require.Error(t, err)

	var platformError *clock.PlatformError
	require.ErrorAs(t, err, &platformError)
	assert.ErrorIs(t, err, fallbackErr)

	var privilegeError *clock.PrivilegeError
	assert.ErrorAs(t, err, &privilegeError)
}

func TestChainWriterStopsOnOtherErrors(t *testing.T) {
	primary := &fakeWriter{
		name: "syscall",
		err:  &clock.PlatformError{Op: "syscall", Err: errors.New("invalid argument")},
	}
	fallback := &fakeWriter{name: "cmd"}
	chain := clock.NewChainWriter(zaptest.NewLogger(t), primary, fallback)

	err := chain.Set(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	require.Error(t, err)
	assert.Zero(t, fallback.calls, "fallback is for privilege refusals only")
}

func TestChainWriterName(t *testing.T) {
	chain := clock.NewChainWriter(zaptest.NewLogger(t),
		&fakeWriter{name: "clock_settime"}, &fakeWriter{name: "date"})
	assert.Equal(t, "clock_settime+date", chain.Name())
}
