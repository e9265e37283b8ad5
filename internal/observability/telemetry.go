// Package observability starts the process-wide tracing and profiling
// sinks and stops them in reverse order.
package observability

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/riskibarqy/asset-draft/internal/config"
	"github.com/riskibarqy/asset-draft/internal/platform/logging"
)

// Telemetry owns the sinks started by Start.
type Telemetry struct {
	logger *logging.Logger
	stops  []namedStop
}

type namedStop struct {
	name string
	stop func(context.Context) error
}

// Start brings up uptrace, pyroscope and the pprof listener as configured.
// On error everything already started is stopped again.
func Start(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Telemetry, error) {
	if logger == nil {
		logger = logging.Default()
	}
	t := &Telemetry{logger: logger}

	starters := []struct {
		name  string
		start func(config.Config, *logging.Logger) (func(context.Context) error, error)
	}{
		{"uptrace", startUptrace},
		{"pyroscope", startPyroscope},
		{"pprof", startPprof},
	}
	for _, s := range starters {
		stop, err := s.start(cfg, logger)
		if err != nil {
			_ = t.Shutdown(ctx)
			return nil, fmt.Errorf("start %s: %w", s.name, err)
		}
		if stop != nil {
			t.stops = append(t.stops, namedStop{name: s.name, stop: stop})
		}
	}
	return t, nil
}

// Enabled lists the sinks that are running.
func (t *Telemetry) Enabled() []string {
	names := make([]string, 0, len(t.stops))
	for _, s := range t.stops {
		names = append(names, s.name)
	}
	return names
}

// Shutdown flushes and stops every running sink, last started first.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil {
		return nil
	}
	var errs []error
	for i := len(t.stops) - 1; i >= 0; i-- {
		s := t.stops[i]
		if err := s.stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("stop %s: %w", s.name, err))
			continue
		}
		t.logger.Info("telemetry sink stopped", "sink", s.name)
	}
	t.stops = nil
	return errors.Join(errs...)
}

func disabled(logger *logging.Logger, sink, reason string) (func(context.Context) error, error) {
	logger.Info("telemetry sink disabled", "sink", sink, "reason", reason)
	return nil, nil
}

func blank(value string) bool {
	return strings.TrimSpace(value) == ""
}
