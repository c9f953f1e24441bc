package ntpstep

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// Attempt announces that a candidate is about to be queried.
type Attempt struct {
	Server string
	Index  int
	Total  int
}

type ServerFailure struct {
	Server string
	Err    error
}

type AllServersFailedError struct {
	Failures []ServerFailure /* one per candidate, in candidate order */
}

func (e *AllServersFailedError) Error() string {
	parts := make([]string, len(e.Failures))
	for i, failure := range e.Failures {
		parts[i] = failure.Server + ": " + failure.Err.Error()
	}
	return "all servers failed: " + strings.Join(parts, "; ")
}

func (e *AllServersFailedError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, failure := range e.Failures {
		errs[i] = failure.Err
	}
	return errs
}

// ResolveTime walks the candidate list in order and returns the first
// successful measurement. No retries, no reordering: a host that wants
// a different priority supplies a different list.
func (system *System) ResolveTime(ctx context.Context) (*SyncResult, error) {
	failures := make([]ServerFailure, 0, len(system.servers))

	for i, server := range system.servers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		system.pushProgress(Attempt{Server: server, Index: i, Total: len(system.servers)})
		system.logger.Debug("querying server",
			zap.String("server", server),
			zap.Int("attempt", i+1),
			zap.Int("candidates", len(system.servers)))

		result, err := system.NTPQuery(server)
		if err != nil {
			system.logger.Warn("query failed, trying next server",
				zap.String("server", server),
				zap.Error(err))
			failures = append(failures, ServerFailure{Server: server, Err: err})
			continue
		}

		return result, nil
	}

	return nil, &AllServersFailedError{Failures: failures}
}

func (system *System) pushProgress(attempt Attempt) {
	if system.Progress == nil {
		return
	}
	select {
	case system.Progress <- attempt:
	default:
	}
}
