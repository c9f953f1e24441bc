package ntpstep

import (
	"fmt"
	"net"
	"strconv"
	"time"

	beevikntp "github.com/beevik/ntp"

	"github.com/ntpstep/ntpstep/internal/ntp"
)

type Comparison struct {
	Native       *SyncResult
	Reference    *SyncResult
	Disagreement time.Duration /* |native offset - reference offset| */
}

// ReferenceQuery measures the same server with an independent client,
// useful for sanity-checking our own packet handling.
func (system *System) ReferenceQuery(server string) (*SyncResult, error) {
	host := server
	options := beevikntp.QueryOptions{
		Timeout: system.config.Timeout,
		Version: int(system.config.Version),
	}
	if splitHost, splitPort, err := net.SplitHostPort(server); err == nil {
		port, err := strconv.Atoi(splitPort)
		if err != nil {
			return nil, fmt.Errorf("%w %s: %w", ErrResolution, server, err)
		}
		host, options.Port = splitHost, port
	}

	response, err := beevikntp.QueryWithOptions(host, options)
	if err != nil {
		return nil, fmt.Errorf("reference query %s: %w", server, err)
	}
	if err := response.Validate(); err != nil {
		return nil, fmt.Errorf("reference query %s: %w", server, err)
	}

	return &SyncResult{
		Time:    system.CurrentTime().Add(response.ClockOffset),
		Offset:  response.ClockOffset,
		Delay:   response.RTT,
		Server:  server,
		Stratum: response.Stratum,
		Leap:    byte(response.Leap),
		RefID:   ntp.RefidString(response.Stratum, response.ReferenceID),
	}, nil
}

// Compare measures one server with both clients and reports how far
// apart the two offsets land.
func (system *System) Compare(server string) (*Comparison, error) {
	native, err := system.NTPQuery(server)
	if err != nil {
		return nil, err
	}

	reference, err := system.ReferenceQuery(server)
	if err != nil {
		return nil, err
	}

	disagreement := native.Offset - reference.Offset
	if disagreement < 0 {
		disagreement = -disagreement
	}

	return &Comparison{
		Native:       native,
		Reference:    reference,
		Disagreement: disagreement,
	}, nil
}
