package ntpstep_test

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ntpstep/ntpstep/internal/ntp"
	"github.com/ntpstep/ntpstep/pkg/ntpstep"
)

// fakeServer runs a loopback NTP responder; handler maps each request
// datagram to a reply, nil meaning stay silent.
func fakeServer(t *testing.T, handler func(request []byte) []byte) string {
	t.Helper()

	con, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	t.Cleanup(func() { con.Close() })

	go func() {
		buffer := make([]byte, 256)
		for {
			n, addr, err := con.ReadFromUDP(buffer)
			if err != nil {
				return
			}
			request := append([]byte(nil), buffer[:n]...)
			if reply := handler(request); reply != nil {
				con.WriteToUDP(reply, addr)
			}
		}
	}()

	return con.LocalAddr().String()
}

func serverReply(request []byte, serverNow time.Time, stratum byte) []byte {
	response := ntp.Packet{
		Version: ntp.VERSION,
		Mode:    ntp.SERVER,
		NtpFieldsEncoded: ntp.NtpFieldsEncoded{
			Stratum:   stratum,
			Precision: -20,
			Refid:     0xc0a80001,
			Reftime:   ntp.TimestampFromTime(serverNow.Add(-10 * time.Second)),
			Rec:       ntp.TimestampFromTime(serverNow),
			Xmt:       ntp.TimestampFromTime(serverNow),
		},
	}
	if decoded, err := ntp.DecodePacket(request); err == nil {
		response.Org = decoded.Xmt
	}
	return response.Encode()
}

func TestQueryMeasuresOffset(t *testing.T) {
	const skew = 5 * time.Second

	addr := fakeServer(t, func(request []byte) []byte {
		return serverReply(request, time.Now().Add(skew), 2)
	})

	system := newTestSystem(t, ntpstep.Config{Timeout: 2 * time.Second})
	result, err := system.Query(addr)
	require.NoError(t, err)

	assert.InDelta(t, skew.Seconds(), result.Offset.Seconds(), 0.5)
	assert.InDelta(t, skew.Seconds(), time.Until(result.Time).Seconds(), 0.5)
	assert.GreaterOrEqual(t, result.Delay, time.Duration(0))
	assert.Less(t, result.Delay, time.Second)
	assert.Equal(t, addr, result.Server)
	assert.Equal(t, byte(2), result.Stratum)
	assert.Equal(t, "192.168.0.1", result.RefID)
}

func TestQueryRequestShape(t *testing.T) {
	requests := make(chan []byte, 1)
	addr := fakeServer(t, func(request []byte) []byte {
		select {
		case requests <- request:
		default:
		}
		return serverReply(request, time.Now(), 2)
	})

	system := newTestSystem(t, ntpstep.Config{Version: 3, Timeout: 2 * time.Second})
	_, err := system.Query(addr)
	require.NoError(t, err)

	request := <-requests
	require.Len(t, request, ntp.PacketSize)
	assert.Equal(t, byte(0x1b), request[0])
	// only the transmit timestamp carries data
	assert.Equal(t, make([]byte, 39), request[1:40])
	assert.NotEqual(t, make([]byte, 8), request[40:48])
}

func TestQueryShortResponse(t *testing.T) {
	addr := fakeServer(t, func(request []byte) []byte {
		return []byte{0x1c, 0x02, 0x03, 0x04}
	})

	system := newTestSystem(t, ntpstep.Config{Timeout: 2 * time.Second})
	_, err := system.Query(addr)
	require.Error(t, err)
	assert.ErrorIs(t, err, ntp.ErrShortPacket)
}

func TestQueryTimeout(t *testing.T) {
	addr := fakeServer(t, func(request []byte) []byte {
		return nil
	})

	system := newTestSystem(t, ntpstep.Config{Timeout: 100 * time.Millisecond})
	_, err := system.Query(addr)
	require.Error(t, err)
	assert.ErrorIs(t, err, ntpstep.ErrTimeout)
	assert.NotErrorIs(t, err, ntpstep.ErrNetwork)
}

func TestQueryResolutionError(t *testing.T) {
	system := newTestSystem(t, ntpstep.Config{Timeout: time.Second})
	_, err := system.Query("127.0.0.1:notaport")
	require.Error(t, err)
	assert.ErrorIs(t, err, ntpstep.ErrResolution)
}
