package ntpstep

import (
	"errors"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"

	"github.com/ntpstep/ntpstep/internal/ntp"
)

var (
	ErrResolution = errors.New("could not resolve server")
	ErrNetwork    = errors.New("network failure")
	ErrTimeout    = errors.New("server did not respond")
)

// Query performs one request/response exchange with a single server and
// derives offset and delay from the four timestamps.
func (system *System) Query(server string) (*SyncResult, error) {
	host, port := server, ntp.Port
	if splitHost, splitPort, err := net.SplitHostPort(server); err == nil {
		host, port = splitHost, splitPort
	}

	addr, err := net.ResolveUDPAddr("udp", net.JoinHostPort(host, port))
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrResolution, server, err)
	}

	con, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer con.Close()

	// one absolute deadline covers the whole exchange
	if err := con.SetDeadline(time.Now().Add(system.config.Timeout)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}

	t1 := system.CurrentTime()
	packet := ntp.NewClientPacket(system.config.Version)
	packet.Xmt = ntp.TimestampFromTime(t1)

	if _, err := con.Write(packet.Encode()); err != nil {
		return nil, classifyNetError(err)
	}

	encoded := make([]byte, 256)
	n, err := con.Read(encoded)
	t4 := system.CurrentTime()
	if err != nil {
		return nil, classifyNetError(err)
	}

	response, err := ntp.DecodePacket(encoded[:n])
	if err != nil {
		return nil, fmt.Errorf("response from %s: %w", server, err)
	}

	t2 := ntp.TimeFromTimestamp(response.Rec, t4)
	t3 := ntp.TimeFromTimestamp(response.Xmt, t4)
	offset, delay := computeOffset(t1, t2, t3, t4)

	if delay < 0 {
		system.logger.Debug("negative delay, local clock stepped mid-query?",
			zap.String("server", server),
			zap.Duration("delay", delay))
	}
	if response.Leap == ntp.NOSYNC {
		system.logger.Warn("server reports it is not synchronized",
			zap.String("server", server))
	}

	result := &SyncResult{
		Time:    t4.Add(offset),
		Offset:  offset,
		Delay:   delay,
		Server:  server,
		Stratum: response.Stratum,
		Leap:    response.Leap,
		RefID:   ntp.RefidString(response.Stratum, response.Refid),
	}

	system.logger.Debug("server answered",
		zap.String("server", server),
		zap.Duration("offset", result.Offset),
		zap.Duration("delay", result.Delay),
		zap.Uint8("stratum", result.Stratum),
		zap.Uint8("leap", result.Leap),
		zap.String("refid", result.RefID),
		zap.Float64("precision", ntp.Log2ToDouble(response.Precision)),
		zap.Float64("rootdelay", ntp.ShortToDouble(response.Rootdelay)),
		zap.Float64("rootdisp", ntp.ShortToDouble(response.Rootdisp)))

	return result, nil
}

// offset = ((T2-T1) + (T3-T4)) / 2, delay = (T4-T1) - (T3-T2). Working
// in time.Time space keeps 2036 era handling out of the arithmetic.
func computeOffset(t1, t2, t3, t4 time.Time) (offset, delay time.Duration) {
	offset = (t2.Sub(t1) + t3.Sub(t4)) / 2
	delay = t4.Sub(t1) - t3.Sub(t2)
	return offset, delay
}

func classifyNetError(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %w", ErrNetwork, err)
}
