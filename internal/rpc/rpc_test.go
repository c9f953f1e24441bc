package rpc_test

import (
	stdrpc "net/rpc"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ntpstep/ntpstep/internal/rpc"
)

func TestDefaultSocketAvoidsTmp(t *testing.T) {
	// the run dir is root-owned; /tmp would let anyone squat the name
	assert.Equal(t, "/var/run/ntpstepd.sock", rpc.DefaultSocket)
}

func TestStatusRoundTrip(t *testing.T) {
	socket := filepath.Join(t.TempDir(), "ntpstepd.sock")
	server := rpc.NewStatusServer(socket)

	go server.Listen()
	t.Cleanup(func() { server.Close() })

	require.Eventually(t, func() bool {
		_, err := os.Stat(socket)
		return err == nil
	}, time.Second, 10*time.Millisecond, "socket never appeared")

	want := rpc.Status{
		LastSync:  time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		NextSync:  time.Date(2024, 6, 1, 12, 0, 30, 0, time.UTC),
		Server:    "pool.ntp.org",
		Offset:    -220 * time.Millisecond,
		Delay:     34 * time.Millisecond,
		Stratum:   2,
		RefID:     "192.168.0.1",
		Applied:   false,
		LastError: "",
		Cycles:    17,
	}
	server.Record(want)

	client, err := stdrpc.Dial("unix", socket)
	require.NoError(t, err)
	defer client.Close()

	var got rpc.Status
	require.NoError(t, client.Call("StatusServer.FetchStatus", 0, &got))
	assert.Equal(t, want, got)

	// a later cycle replaces the published view
	want.Cycles = 18
	want.LastError = "server did not respond"
	server.Record(want)

	require.NoError(t, client.Call("StatusServer.FetchStatus", 0, &got))
	assert.Equal(t, uint64(18), got.Cycles)
	assert.Equal(t, "server did not respond", got.LastError)
}
