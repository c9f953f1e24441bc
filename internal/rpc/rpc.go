package rpc

import (
	"errors"
	"fmt"
	"net"
	"net/rpc"
	"os"
	"sync"
	"time"
)

// DefaultSocket lives beside the daemon's pid file, not in a
// world-writable directory where the name could be squatted.
const DefaultSocket = "/var/run/ntpstepd.sock"

// Status is the monitor daemon's view of its most recent cycle, served
// over a unix socket for the status command.
type Status struct {
	LastSync  time.Time
	NextSync  time.Time
	Server    string
	Offset    time.Duration
	Delay     time.Duration
	Stratum   byte
	RefID     string
	Applied   bool
	LastError string
	Cycles    uint64
}

type StatusServer struct {
	Socket string

	server   *rpc.Server
	listener net.Listener

	mu     sync.Mutex
	status Status
}

func NewStatusServer(socket string) *StatusServer {
	return &StatusServer{
		Socket: socket,
		server: rpc.NewServer(),
	}
}

// Record replaces the published status; the monitor loop calls it once
// per cycle.
func (server *StatusServer) Record(status Status) {
	server.mu.Lock()
	defer server.mu.Unlock()
	server.status = status
}

func (server *StatusServer) FetchStatus(args int, reply *Status) error {
	server.mu.Lock()
	defer server.mu.Unlock()
	*reply = server.status
	return nil
}

// Listen serves until Close. A stale socket from a dead daemon is
// removed before binding.
func (server *StatusServer) Listen() error {
	if err := server.server.RegisterName("StatusServer", server); err != nil {
		return err
	}

	err := os.Remove(server.Socket)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("bind error: %w", err)
	}

	listener, err := net.Listen("unix", server.Socket)
	if err != nil {
		return fmt.Errorf("listen error: %w", err)
	}
	server.listener = listener

	server.server.Accept(listener)
	return nil
}

func (server *StatusServer) Close() error {
	if server.listener == nil {
		return nil
	}
	return server.listener.Close()
}
